package ai

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserQuota tracks per-user daily Gemini usage. This is local accounting
// for operator visibility and alerting; the hard quota is enforced
// upstream by the API itself.
type UserQuota struct {
	UserID          string    `bson:"user_id"`
	DailyTokenLimit int       `bson:"daily_token_limit"`
	TokensUsedToday int       `bson:"tokens_used_today"`
	RequestsToday   int       `bson:"requests_today"`
	LastResetDate   time.Time `bson:"last_reset_date"`
	CreatedAt       time.Time `bson:"created_at"`
	UpdatedAt       time.Time `bson:"updated_at"`
}

// RecordUsage adds tokens to the user's daily counters, resetting them
// when the day rolled over.
func RecordUsage(ctx context.Context, db *mongo.Database, userID string, tokens, dailyLimit int) error {
	col := db.Collection("gemini_quotas")

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	// Reset if new day
	_, err := col.UpdateOne(ctx,
		bson.M{"user_id": userID, "last_reset_date": bson.M{"$lt": today}},
		bson.M{"$set": bson.M{
			"tokens_used_today": 0,
			"requests_today":    0,
			"last_reset_date":   today,
			"updated_at":        now,
		}},
	)
	if err != nil {
		return err
	}

	_, err = col.UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{
			"$inc": bson.M{
				"tokens_used_today": tokens,
				"requests_today":    1,
			},
			"$set": bson.M{"updated_at": now},
			"$setOnInsert": bson.M{
				"daily_token_limit": dailyLimit,
				"last_reset_date":   today,
				"created_at":        now,
			},
		},
		options.Update().SetUpsert(true),
	)

	return err
}

// ListQuotas returns all per-user usage records, for the alert scanner.
func ListQuotas(ctx context.Context, db *mongo.Database) ([]UserQuota, error) {
	col := db.Collection("gemini_quotas")

	cursor, err := col.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var quotas []UserQuota
	if err := cursor.All(ctx, &quotas); err != nil {
		return nil, err
	}
	return quotas, nil
}

// GetUserQuotaStatus returns current usage for a single user.
func GetUserQuotaStatus(ctx context.Context, db *mongo.Database, userID string) (*UserQuota, error) {
	col := db.Collection("gemini_quotas")

	var quota UserQuota
	if err := col.FindOne(ctx, bson.M{"user_id": userID}).Decode(&quota); err != nil {
		return nil, err
	}
	return &quota, nil
}
