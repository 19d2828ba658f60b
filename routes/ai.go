package routes

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"edunexa-backend/internal/ai"
	"edunexa-backend/internal/database"
	"edunexa-backend/internal/logger"
	"edunexa-backend/internal/telemetry"
	"edunexa-backend/middleware"
	"edunexa-backend/services"
	"edunexa-backend/utils"
)

// GenerationRunner is the slice of the generation service the AI routes
// need. Narrowed to an interface so handlers can be tested with a stub.
type GenerationRunner interface {
	GenerateSummary(ctx context.Context, fileID, requesterID string) (*services.SummaryResult, error)
	GenerateQuiz(ctx context.Context, fileID, requesterID string) (*services.QuizResult, error)
}

func SetupAIRoutes(router *gin.Engine, generation GenerationRunner, metrics *telemetry.Metrics, authMW *middleware.AuthMiddleware) {
	aiGroup := router.Group("/api/ai", authMW.RequireAuth())

	// Generate (or return the cached) summary for a document
	aiGroup.POST("/summary/:fileId", func(c *gin.Context) {
		fileID := c.Param("fileId")

		result, err := generation.GenerateSummary(c.Request.Context(), fileID, middleware.GetUserID(c))
		if err != nil {
			respondGenerationError(c, metrics, "summary", err)
			return
		}

		if metrics != nil {
			metrics.RecordGeneration("summary", "success", result.Cached)
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"cached":  result.Cached,
			"summary": result.Summary,
		})
	})

	// Generate (or return the cached) quiz for a document
	aiGroup.POST("/quiz/:fileId", func(c *gin.Context) {
		fileID := c.Param("fileId")

		result, err := generation.GenerateQuiz(c.Request.Context(), fileID, middleware.GetUserID(c))
		if err != nil {
			respondGenerationError(c, metrics, "quiz", err)
			return
		}

		// Quota exhaustion on the quiz path is reported in-band with an
		// empty quiz, so clients can show a retry-later message instead
		// of an error page.
		if result.QuotaExceeded {
			if metrics != nil {
				metrics.RecordGeneration("quiz", "quota_exceeded", false)
			}
			c.JSON(http.StatusOK, gin.H{
				"success": false,
				"quiz":    result.Quiz,
				"message": "AI quota exceeded. Please try again later.",
			})
			return
		}

		if metrics != nil {
			metrics.RecordGeneration("quiz", "success", result.Cached)
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"cached":  result.Cached,
			"quiz":    result.Quiz,
		})
	})
}

// respondGenerationError maps pipeline failures onto HTTP responses.
func respondGenerationError(c *gin.Context, metrics *telemetry.Metrics, kind string, err error) {
	if metrics != nil {
		metrics.RecordGeneration(kind, "error", false)
	}

	switch {
	case err == database.ErrNotFound:
		utils.RespondWithNotFound(c, "File not found")

	case ai.IsInvalidResponse(err):
		var ie *ai.InvalidResponseError
		var rawText string
		if errors.As(err, &ie) {
			rawText = ie.RawText
		}
		logger.Error("model returned unparseable output", "kind", kind, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "AI returned invalid JSON",
			"rawText": rawText,
		})

	case ai.IsQuotaExceeded(err):
		utils.RespondWithError(c, http.StatusTooManyRequests,
			"AI quota exceeded. Please try again later.", nil)

	case ai.IsTransientOverload(err):
		utils.RespondWithError(c, http.StatusServiceUnavailable,
			"AI service is overloaded. Please try again later.", nil)

	default:
		logger.Error("generation failed", "kind", kind, "error", err)
		utils.RespondWithInternalError(c, "Failed to generate content", nil)
	}
}
