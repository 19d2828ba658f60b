package services

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"edunexa-backend/models"
)

// ExportQuizExcel renders a cached quiz as an .xlsx workbook for teachers
// to hand out or edit offline.
func ExportQuizExcel(file *models.File) (*bytes.Buffer, error) {
	if len(file.Quiz) == 0 {
		return nil, fmt.Errorf("file %s has no quiz to export", file.ID.Hex())
	}

	wb := excelize.NewFile()
	defer wb.Close()

	sheet := "Quiz"
	if err := wb.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	headers := []string{"#", "Question", "Option A", "Option B", "Option C", "Option D", "Answer"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := wb.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}

	for row, q := range file.Quiz {
		values := []interface{}{row + 1, q.Question}
		for i := 0; i < 4; i++ {
			if i < len(q.Options) {
				values = append(values, q.Options[i])
			} else {
				values = append(values, "")
			}
		}
		values = append(values, q.Answer)

		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := wb.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	// Widen the question column for readability
	if err := wb.SetColWidth(sheet, "B", "B", 60); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := wb.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %v", err)
	}

	return &buf, nil
}
