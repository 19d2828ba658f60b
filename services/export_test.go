package services

import (
	"fmt"
	"testing"

	"github.com/xuri/excelize/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"edunexa-backend/models"
)

func TestExportQuizExcel(t *testing.T) {
	file := &models.File{
		ID:    primitive.NewObjectID(),
		Title: "Chemistry",
	}
	for i := 0; i < models.QuizLength; i++ {
		file.Quiz = append(file.Quiz, models.QuizQuestion{
			Question: fmt.Sprintf("Question %d", i+1),
			Options:  []string{"w", "x", "y", "z"},
			Answer:   "C",
		})
	}

	buf, err := ExportQuizExcel(file)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}

	wb, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("exported workbook does not open: %v", err)
	}
	defer wb.Close()

	rows, err := wb.GetRows("Quiz")
	if err != nil {
		t.Fatalf("failed to read sheet: %v", err)
	}
	if len(rows) != models.QuizLength+1 {
		t.Fatalf("expected %d rows, got %d", models.QuizLength+1, len(rows))
	}
	if rows[0][1] != "Question" {
		t.Fatalf("unexpected header row: %v", rows[0])
	}
	if rows[1][1] != "Question 1" {
		t.Fatalf("unexpected first data row: %v", rows[1])
	}
	if rows[1][6] != "C" {
		t.Fatalf("unexpected answer cell: %v", rows[1])
	}
}

func TestExportQuizExcelEmptyQuiz(t *testing.T) {
	file := &models.File{ID: primitive.NewObjectID(), Title: "Empty"}
	if _, err := ExportQuizExcel(file); err == nil {
		t.Fatal("expected error for a file without a quiz")
	}
}
