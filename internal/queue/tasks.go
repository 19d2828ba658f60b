package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.mongodb.org/mongo-driver/bson"

	"edunexa-backend/internal/database"
	"edunexa-backend/internal/logger"
	"edunexa-backend/models"
	"edunexa-backend/services"
	"edunexa-backend/utils"
)

const TaskExtractText = "file:extract_text"

// compressThreshold is the extracted-text size above which the worker
// stores a brotli-compressed copy instead of the plain string.
const compressThreshold = 64 * 1024

type ExtractTextPayload struct {
	FileID   string `json:"file_id"`
	FilePath string `json:"file_path"`
}

// NewExtractTextTask enqueues background text extraction for an uploaded
// document.
func NewExtractTextTask(fileID, filePath string) (*asynq.Task, error) {
	payload, err := json.Marshal(ExtractTextPayload{
		FileID:   fileID,
		FilePath: filePath,
	})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskExtractText,
		payload,
		asynq.MaxRetry(3),
		asynq.Timeout(10*time.Minute),
		asynq.Queue("critical"),
	), nil
}

// TaskProcessor handles background jobs against the document store.
type TaskProcessor struct {
	files *database.FileStore
}

func NewTaskProcessor(files *database.FileStore) *TaskProcessor {
	return &TaskProcessor{files: files}
}

// ExtractText runs PDF text extraction for a stored document and writes
// the result back onto the record. Large text is stored compressed.
func (p *TaskProcessor) ExtractText(ctx context.Context, t *asynq.Task) error {
	var payload ExtractTextPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	logger.Info("extracting text", "file_id", payload.FileID)

	if err := p.files.SaveExtraction(ctx, payload.FileID, bson.M{
		"extract_status": models.ExtractRunning,
	}); err != nil {
		return err
	}

	result, err := services.ExtractPDFText(payload.FilePath)
	if err != nil {
		logger.Warn("text extraction failed", "file_id", payload.FileID, "error", err)
		return p.files.SaveExtraction(ctx, payload.FileID, bson.M{
			"extract_status": models.ExtractFailed,
		})
	}

	fields := bson.M{"extract_status": models.ExtractCompleted}
	if len(result.Text) > compressThreshold {
		compressed, err := utils.CompressData([]byte(result.Text), utils.CompressionBrotli)
		if err != nil {
			return fmt.Errorf("failed to compress extracted text: %v", err)
		}
		fields["compressed_text"] = compressed
		fields["text_compression"] = string(utils.CompressionBrotli)
		fields["extracted_text"] = ""
	} else {
		fields["extracted_text"] = result.Text
	}

	if err := p.files.SaveExtraction(ctx, payload.FileID, fields); err != nil {
		return err
	}

	logger.Info("text extraction completed",
		"file_id", payload.FileID,
		"pages", result.Pages,
		"words", result.WordCount)

	return nil
}
