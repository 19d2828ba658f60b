package routes

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"edunexa-backend/internal/config"
	"edunexa-backend/internal/database"
	"edunexa-backend/internal/logger"
	"edunexa-backend/internal/queue"
	"edunexa-backend/middleware"
	"edunexa-backend/models"
	"edunexa-backend/services"
	"edunexa-backend/utils"
)

func SetupFileRoutes(router *gin.Engine, cfg *config.Config, files *database.FileStore, storage *services.FileStorage, asynqClient *asynq.Client, authMW *middleware.AuthMiddleware) {
	fileGroup := router.Group("/api/files")

	// Upload endpoint (teachers only)
	fileGroup.POST("", authMW.RequireAuth(), middleware.RequireRole(models.RoleTeacher), func(c *gin.Context) {
		title := c.PostForm("title")
		subject := c.PostForm("subject")
		if title == "" || subject == "" {
			utils.RespondWithBadRequest(c, "Title and subject are required", nil)
			return
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			utils.RespondWithBadRequest(c, "File is required", gin.H{"error": err.Error()})
			return
		}

		if fileHeader.Size > cfg.MaxFileSize {
			utils.RespondWithError(c, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("File exceeds the %d MB limit", cfg.MaxFileSize/(1024*1024)), nil)
			return
		}

		contentType := fileHeader.Header.Get("Content-Type")
		allowed := false
		for _, t := range cfg.AllowedTypes {
			if contentType == t {
				allowed = true
				break
			}
		}
		if !allowed {
			utils.RespondWithBadRequest(c, "Only PDF files are allowed", gin.H{"content_type": contentType})
			return
		}

		src, err := fileHeader.Open()
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to read uploaded file", nil)
			return
		}
		defer src.Close()

		key, size, err := storage.Save(src)
		if err != nil {
			logger.Error("failed to store upload", "error", err)
			utils.RespondWithInternalError(c, "Failed to store file", nil)
			return
		}

		ownerID, err := primitive.ObjectIDFromHex(middleware.GetUserID(c))
		if err != nil {
			utils.RespondWithUnauthorized(c, "Unauthorized")
			return
		}

		// Pre-assign the id so the public URL can be built before insert
		fileID := primitive.NewObjectID()
		file := models.File{
			ID:            fileID,
			Title:         title,
			Description:   c.PostForm("description"),
			Subject:       subject,
			FileURL:       fmt.Sprintf("%s/api/files/%s/download", cfg.PublicBaseURL, fileID.Hex()),
			StorageKey:    key,
			Size:          size,
			CreatedBy:     ownerID,
			ExtractStatus: models.ExtractPending,
		}

		if _, err := files.Insert(c.Request.Context(), &file); err != nil {
			storage.Remove(key)
			logger.Error("failed to insert file record", "error", err)
			utils.RespondWithInternalError(c, "Failed to save file", nil)
			return
		}

		// Text extraction runs in the background worker
		task, err := queue.NewExtractTextTask(fileID.Hex(), storage.Path(key))
		if err == nil {
			if _, err := asynqClient.Enqueue(task); err != nil {
				logger.Warn("failed to enqueue text extraction", "file_id", fileID.Hex(), "error", err)
			}
		}

		logger.Info("file uploaded", "file_id", fileID.Hex(), "size", size)
		c.JSON(http.StatusCreated, models.UploadResponse{
			Success: true,
			Message: "File uploaded successfully",
			File:    &file,
		})
	})

	// List all files
	fileGroup.GET("", authMW.RequireAuth(), func(c *gin.Context) {
		list, err := files.FindAll(c.Request.Context())
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to fetch files", nil)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"files":   list,
		})
	})

	// List the caller's own files
	fileGroup.GET("/my", authMW.RequireAuth(), func(c *gin.Context) {
		ownerID, err := primitive.ObjectIDFromHex(middleware.GetUserID(c))
		if err != nil {
			utils.RespondWithUnauthorized(c, "Unauthorized")
			return
		}

		list, err := files.FindByOwner(c.Request.Context(), ownerID)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to fetch files", nil)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"files":   list,
		})
	})

	// Get a single file record
	fileGroup.GET("/:id", authMW.RequireAuth(), func(c *gin.Context) {
		file, err := files.FindByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			if err == database.ErrNotFound {
				utils.RespondWithNotFound(c, "File not found")
				return
			}
			utils.RespondWithInternalError(c, "Failed to fetch file", nil)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"file":    file,
		})
	})

	// Download the stored document. Unauthenticated: file URLs are handed
	// out to the generation pipeline, which fetches them over plain HTTP.
	fileGroup.GET("/:id/download", func(c *gin.Context) {
		file, err := files.FindByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			if err == database.ErrNotFound {
				utils.RespondWithNotFound(c, "File not found")
				return
			}
			utils.RespondWithInternalError(c, "Failed to fetch file", nil)
			return
		}

		path := storage.Path(file.StorageKey)
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.pdf"`, file.Title))
		c.Header("Content-Type", "application/pdf")
		c.File(path)
	})

	// Export the cached quiz as an Excel workbook (teachers only)
	fileGroup.GET("/:id/quiz/export", authMW.RequireAuth(), middleware.RequireRole(models.RoleTeacher), func(c *gin.Context) {
		file, err := files.FindByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			if err == database.ErrNotFound {
				utils.RespondWithNotFound(c, "File not found")
				return
			}
			utils.RespondWithInternalError(c, "Failed to fetch file", nil)
			return
		}

		buf, err := services.ExportQuizExcel(file)
		if err != nil {
			utils.RespondWithBadRequest(c, "No quiz available to export", nil)
			return
		}

		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s-quiz.xlsx"`, file.Title))
		c.Data(http.StatusOK,
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			buf.Bytes())
	})

	// Delete a file (owner only)
	fileGroup.DELETE("/:id", authMW.RequireAuth(), func(c *gin.Context) {
		file, err := files.FindByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			if err == database.ErrNotFound {
				utils.RespondWithNotFound(c, "File not found")
				return
			}
			utils.RespondWithInternalError(c, "Failed to fetch file", nil)
			return
		}

		if file.CreatedBy.Hex() != middleware.GetUserID(c) {
			utils.RespondWithForbidden(c, "You can only delete your own files")
			return
		}

		if err := files.Delete(c.Request.Context(), c.Param("id")); err != nil {
			utils.RespondWithInternalError(c, "Failed to delete file", nil)
			return
		}

		if err := storage.Remove(file.StorageKey); err != nil {
			logger.Warn("failed to remove stored blob", "file_id", c.Param("id"), "error", err)
		}

		logger.Info("file deleted", "file_id", c.Param("id"))
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "File deleted successfully",
		})
	})
}
