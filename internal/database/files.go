package database

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"edunexa-backend/models"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("document not found")

// FileStore is the Mongo-backed repository for study-material documents.
type FileStore struct {
	col *mongo.Collection
}

func NewFileStore(db *mongo.Database) *FileStore {
	return &FileStore{col: db.Collection("files")}
}

func (s *FileStore) Insert(ctx context.Context, file *models.File) (primitive.ObjectID, error) {
	now := time.Now()
	file.CreatedAt = now
	file.UpdatedAt = now

	result, err := s.col.InsertOne(ctx, file)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return result.InsertedID.(primitive.ObjectID), nil
}

func (s *FileStore) FindByID(ctx context.Context, id string) (*models.File, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var file models.File
	if err := s.col.FindOne(ctx, bson.M{"_id": objID}).Decode(&file); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &file, nil
}

func (s *FileStore) FindAll(ctx context.Context) ([]models.File, error) {
	return s.find(ctx, bson.M{})
}

func (s *FileStore) FindByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]models.File, error) {
	return s.find(ctx, bson.M{"created_by": ownerID})
}

func (s *FileStore) find(ctx context.Context, filter bson.M) ([]models.File, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var files []models.File
	if err := cursor.All(ctx, &files); err != nil {
		return nil, err
	}
	return files, nil
}

// SaveSummary overwrites the cached summary whole. Partial writes never
// happen: a failed parse aborts before this point.
func (s *FileStore) SaveSummary(ctx context.Context, id string, summary *models.Summary) error {
	return s.update(ctx, id, bson.M{"summary": summary})
}

// SaveQuiz overwrites the cached quiz, even when fewer than the full set
// of questions parsed; validity is only enforced on cache reads.
func (s *FileStore) SaveQuiz(ctx context.Context, id string, quiz []models.QuizQuestion) error {
	return s.update(ctx, id, bson.M{"quiz": quiz})
}

// SaveExtraction stores the extraction outcome produced by the worker.
func (s *FileStore) SaveExtraction(ctx context.Context, id string, fields bson.M) error {
	return s.update(ctx, id, fields)
}

func (s *FileStore) update(ctx context.Context, id string, fields bson.M) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	fields["updated_at"] = time.Now()
	result, err := s.col.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	result, err := s.col.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
