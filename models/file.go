package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// QuizLength is the number of questions a complete quiz holds. A cached
// quiz is only served when it has exactly this many entries.
const QuizLength = 10

// File is a stored study material with optional cached AI-generated
// summary and quiz. Summary and Quiz are absent until the first successful
// generation and are always overwritten whole, never merged.
type File struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title         string             `bson:"title" json:"title"`
	Description   string             `bson:"description,omitempty" json:"description,omitempty"`
	Subject       string             `bson:"subject" json:"subject"`
	FileURL       string             `bson:"file_url" json:"file_url"`
	StorageKey    string             `bson:"storage_key" json:"-"`
	Size          int64              `bson:"size" json:"size"`
	CreatedBy     primitive.ObjectID `bson:"created_by" json:"created_by"`
	ExtractedText string             `bson:"extracted_text,omitempty" json:"-"`
	// CompressedText replaces ExtractedText for large documents.
	CompressedText  []byte         `bson:"compressed_text,omitempty" json:"-"`
	TextCompression string         `bson:"text_compression,omitempty" json:"-"`
	ExtractStatus   string         `bson:"extract_status" json:"extract_status"`
	Summary         *Summary       `bson:"summary,omitempty" json:"summary,omitempty"`
	Quiz            []QuizQuestion `bson:"quiz,omitempty" json:"quiz,omitempty"`
	CreatedAt       time.Time      `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `bson:"updated_at" json:"updated_at"`
}

// Summary is the structured study-material summary returned by the model.
type Summary struct {
	Title          string   `bson:"title" json:"title"`
	Overview       string   `bson:"overview" json:"overview"`
	KeyPoints      []string `bson:"keyPoints" json:"keyPoints"`
	ImportantTerms []string `bson:"importantTerms" json:"importantTerms"`
	Conclusion     string   `bson:"conclusion" json:"conclusion"`
}

type QuizQuestion struct {
	Question string   `bson:"question" json:"question"`
	Options  []string `bson:"options" json:"options"`
	Answer   string   `bson:"answer" json:"answer"`
}

// Extraction status constants
const (
	ExtractPending   = "pending"
	ExtractRunning   = "processing"
	ExtractCompleted = "completed"
	ExtractFailed    = "failed"
)

type UploadResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	File    *File  `json:"file"`
}
