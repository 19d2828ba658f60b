package services

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"edunexa-backend/internal/ai"
	"edunexa-backend/internal/config"
	"edunexa-backend/internal/logger"
)

// AlertEvaluator scans per-user Gemini usage and mails the operators when
// a user crosses the warn threshold.
type AlertEvaluator struct {
	config      *config.Config
	emailSender EmailSender
	db          *mongo.Database

	// notified remembers which users were alerted today so a scan every
	// few minutes does not re-send the same mail.
	notified map[string]string
}

func NewAlertEvaluator(cfg *config.Config, emailSender EmailSender, db *mongo.Database) *AlertEvaluator {
	return &AlertEvaluator{
		config:      cfg,
		emailSender: emailSender,
		db:          db,
		notified:    make(map[string]string),
	}
}

// ScanAll walks every usage record and evaluates it.
func (a *AlertEvaluator) ScanAll(ctx context.Context) error {
	quotas, err := ai.ListQuotas(ctx, a.db)
	if err != nil {
		return fmt.Errorf("failed to list quotas: %w", err)
	}

	for _, quota := range quotas {
		if quota.DailyTokenLimit == 0 {
			continue
		}

		percentUsed := float64(quota.TokensUsedToday) / float64(quota.DailyTokenLimit) * 100
		if percentUsed < float64(a.config.QuotaWarnPercent) {
			continue
		}

		day := quota.LastResetDate.Format("2006-01-02")
		if a.notified[quota.UserID] == day {
			continue
		}

		err := a.emailSender.SendQuotaAlert(a.config.AdminEmails, quota.UserID,
			quota.TokensUsedToday, quota.DailyTokenLimit)
		if err != nil {
			logger.Error("failed to send quota alert", "user_id", quota.UserID, "error", err)
			continue
		}

		a.notified[quota.UserID] = day
		logger.Warn("quota alert sent",
			"user_id", quota.UserID,
			"percent_used", fmt.Sprintf("%.0f", percentUsed))
	}

	return nil
}
