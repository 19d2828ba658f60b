package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"edunexa-backend/internal/auth"
	"edunexa-backend/internal/config"
	"edunexa-backend/internal/database"
	"edunexa-backend/internal/logger"
	"edunexa-backend/middleware"
	"edunexa-backend/models"
	"edunexa-backend/services"
	"edunexa-backend/utils"
)

func SetupAuthRoutes(router *gin.Engine, cfg *config.Config, users *database.UserStore, otpStore auth.OTPStore, email services.EmailSender, authMW *middleware.AuthMiddleware) {
	authGroup := router.Group("/api/auth")

	// Send OTP endpoint
	authGroup.POST("/signup/send-otp", func(c *gin.Context) {
		var req models.SendOTPRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Email is required", gin.H{"error": err.Error()})
			return
		}

		req.Email = strings.ToLower(strings.TrimSpace(req.Email))

		// Never issue a signup OTP for an email that already has an account
		if _, err := users.FindByEmail(c.Request.Context(), req.Email); err == nil {
			utils.RespondWithError(c, http.StatusConflict, "User already exists", nil)
			return
		} else if err != database.ErrNotFound {
			utils.RespondWithInternalError(c, "Failed to check existing user", nil)
			return
		}

		otp, err := utils.GenerateOTP()
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to generate OTP", nil)
			return
		}

		if err := otpStore.Set(c.Request.Context(), req.Email, otp); err != nil {
			logger.Error("failed to store OTP", "email", req.Email, "error", err)
			utils.RespondWithInternalError(c, "Failed to send OTP", nil)
			return
		}

		if err := email.SendOTP(req.Email, req.Name, otp); err != nil {
			logger.Error("failed to send OTP email", "email", req.Email, "error", err)
			utils.RespondWithInternalError(c, "Failed to send OTP email", nil)
			return
		}

		logger.Info("OTP sent", "email", req.Email)
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "OTP sent to email",
		})
	})

	// Verify OTP endpoint
	authGroup.POST("/signup/verify-otp", func(c *gin.Context) {
		var req models.VerifyOTPRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Email and OTP are required", gin.H{"error": err.Error()})
			return
		}

		req.Email = strings.ToLower(strings.TrimSpace(req.Email))

		err := otpStore.Verify(c.Request.Context(), req.Email, req.OTP)
		switch err {
		case nil:
			c.JSON(http.StatusOK, gin.H{
				"success": true,
				"message": "Email verified successfully",
			})
		case auth.ErrOTPNotFound, auth.ErrOTPExpired:
			utils.RespondWithBadRequest(c, "OTP expired or not found", nil)
		case auth.ErrOTPMismatch:
			utils.RespondWithBadRequest(c, "Invalid OTP", nil)
		default:
			utils.RespondWithInternalError(c, "Failed to verify OTP", nil)
		}
	})

	// Signup endpoint (requires a verified OTP for the email)
	authGroup.POST("/signup", func(c *gin.Context) {
		var req models.SignupRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid signup data", gin.H{"error": err.Error()})
			return
		}

		req.Email = strings.ToLower(strings.TrimSpace(req.Email))
		if req.Role == "" {
			req.Role = models.RoleStudent
		}
		if req.Username == "" {
			req.Username = req.Name
		}
		if req.Username == "" {
			req.Username = strings.Split(req.Email, "@")[0]
		}

		verified, err := otpStore.IsVerified(c.Request.Context(), req.Email)
		if err != nil || !verified {
			utils.RespondWithForbidden(c, "Email not verified. Please verify OTP first.")
			return
		}

		if _, err := users.FindByEmail(c.Request.Context(), req.Email); err == nil {
			utils.RespondWithError(c, http.StatusConflict, "User already exists", nil)
			return
		} else if err != database.ErrNotFound {
			utils.RespondWithInternalError(c, "Failed to check existing user", nil)
			return
		}

		hashedPassword, err := utils.HashPassword(req.Password, cfg.BcryptCost)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to process password", nil)
			return
		}

		user := models.User{
			Username:        req.Username,
			Email:           req.Email,
			PasswordHash:    hashedPassword,
			Role:            req.Role,
			IsEmailVerified: true,
		}

		userID, err := users.Insert(c.Request.Context(), &user)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to create user", nil)
			return
		}

		// One-shot verification: the OTP record is consumed by signup
		_ = otpStore.Delete(c.Request.Context(), req.Email)

		duration, _ := time.ParseDuration(cfg.JWTExpiresIn)
		token, err := utils.GenerateJWT(userID.Hex(), user.Role, cfg.JWTSecret, duration)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to generate token", nil)
			return
		}

		logger.Info("user signed up", "user_id", userID.Hex(), "role", user.Role)
		c.JSON(http.StatusCreated, models.AuthResponse{
			Success: true,
			Message: "Signup successful",
			Token:   token,
			User: models.UserInfo{
				ID:       userID.Hex(),
				Username: user.Username,
				Email:    user.Email,
				Role:     user.Role,
			},
		})
	})

	// Login endpoint
	authGroup.POST("/login", func(c *gin.Context) {
		var req models.LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Email and password are required", gin.H{"error": err.Error()})
			return
		}

		req.Email = strings.ToLower(strings.TrimSpace(req.Email))

		user, err := users.FindByEmail(c.Request.Context(), req.Email)
		if err != nil {
			utils.RespondWithUnauthorized(c, "Invalid email or password")
			return
		}

		if !utils.CheckPassword(req.Password, user.PasswordHash) {
			utils.RespondWithUnauthorized(c, "Invalid email or password")
			return
		}

		duration, _ := time.ParseDuration(cfg.JWTExpiresIn)
		token, err := utils.GenerateJWT(user.ID.Hex(), user.Role, cfg.JWTSecret, duration)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to generate token", nil)
			return
		}

		c.JSON(http.StatusOK, models.AuthResponse{
			Success: true,
			Message: "Login successful",
			Token:   token,
			User: models.UserInfo{
				ID:       user.ID.Hex(),
				Username: user.Username,
				Email:    user.Email,
				Role:     user.Role,
			},
		})
	})

	// Get user by id. Students may only read their own record.
	authGroup.GET("/:id", authMW.RequireAuth(), func(c *gin.Context) {
		requestedID := c.Param("id")

		if middleware.GetRole(c) == models.RoleStudent && middleware.GetUserID(c) != requestedID {
			utils.RespondWithForbidden(c, "Access denied")
			return
		}

		user, err := users.FindByID(c.Request.Context(), requestedID)
		if err != nil {
			if err == database.ErrNotFound {
				utils.RespondWithNotFound(c, "User not found")
				return
			}
			utils.RespondWithInternalError(c, "Failed to fetch user", nil)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"user": models.UserInfo{
				ID:       user.ID.Hex(),
				Username: user.Username,
				Email:    user.Email,
				Role:     user.Role,
			},
		})
	})

	// Delete account. Re-authenticates with email and password before the
	// destructive write, independent of the bearer token.
	authGroup.DELETE("/delete-account-password", authMW.RequireAuth(), func(c *gin.Context) {
		var req models.DeleteAccountRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Email and password are required", gin.H{"error": err.Error()})
			return
		}

		req.Email = strings.ToLower(strings.TrimSpace(req.Email))

		user, err := users.FindByEmail(c.Request.Context(), req.Email)
		if err != nil {
			utils.RespondWithNotFound(c, "User not found")
			return
		}

		if user.ID.Hex() != middleware.GetUserID(c) {
			utils.RespondWithForbidden(c, "You can only delete your own account")
			return
		}

		if !utils.CheckPassword(req.Password, user.PasswordHash) {
			utils.RespondWithUnauthorized(c, "Incorrect password")
			return
		}

		if err := users.DeleteByEmail(c.Request.Context(), req.Email); err != nil {
			utils.RespondWithInternalError(c, "Failed to delete account", nil)
			return
		}

		logger.Info("account deleted", "user_id", user.ID.Hex())
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Account deleted successfully",
		})
	})
}
