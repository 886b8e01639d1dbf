package handlers

import (
	"database/sql"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ledgerise/ledgerise-api/models"
	"github.com/ledgerise/ledgerise-api/utils"
)

const (
	sessionTTL       = 7 * 24 * time.Hour
	passwordResetTTL = time.Hour
)

type AuthHandler struct {
	DB *sql.DB
}

// createSession opens a session with one refresh token for the user.
func (h *AuthHandler) createSession(userID string) (string, error) {
	refreshToken, err := utils.GenerateRefreshToken()
	if err != nil {
		return "", err
	}

	sessionID := uuid.New().String()
	expiresAt := time.Now().Add(sessionTTL)

	err = utils.WithTransaction(h.DB, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`
			INSERT INTO sessions (id, user_id, expires_at) VALUES ($1, $2, $3)
		`, sessionID, userID, expiresAt); err != nil {
			return err
		}
		_, err := tx.Exec(`
			INSERT INTO refresh_tokens (id, session_id, token, expires_at) VALUES ($1, $2, $3, $4)
		`, uuid.New().String(), sessionID, refreshToken, expiresAt)
		return err
	})
	if err != nil {
		return "", err
	}

	return refreshToken, nil
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	// Email uniqueness is case-insensitive across users and credentials
	var exists bool
	err := h.DB.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM users WHERE LOWER(TRIM(email)) = $1)
		    OR EXISTS(SELECT 1 FROM credentials WHERE provider = 'password' AND LOWER(TRIM(account_identifier)) = $1)
	`, email).Scan(&exists)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if exists {
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
		return
	}

	passwordHash, err := utils.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	// RETURNING hands back the stored row so the response carries the
	// DB-defaulted currency and timestamps
	var user models.User
	err = utils.WithTransaction(h.DB, func(tx *sql.Tx) error {
		if err := tx.QueryRow(`
			INSERT INTO users (id, email, name) VALUES ($1, $2, $3)
			RETURNING id, email, name, currency, totp_enabled, created_at, updated_at
		`, uuid.New().String(), email, req.Name).Scan(&user.ID, &user.Email, &user.Name,
			&user.Currency, &user.TOTPEnabled, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return err
		}
		_, err := tx.Exec(`
			INSERT INTO credentials (id, user_id, provider, account_identifier, password_hash)
			VALUES ($1, $2, 'password', $3, $4)
		`, uuid.New().String(), user.ID, email, passwordHash)
		return err
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	accessToken, err := utils.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	refreshToken, err := h.createSession(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}

	c.JSON(http.StatusCreated, models.AuthResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	var passwordHash string
	var totpSecret sql.NullString
	err := h.DB.QueryRow(`
		SELECT u.id, u.email, u.name, u.currency, u.totp_secret, u.totp_enabled, u.created_at, u.updated_at,
		       cr.password_hash
		FROM users u
		JOIN credentials cr ON cr.user_id = u.id AND cr.provider = 'password'
		WHERE LOWER(TRIM(u.email)) = $1
		ORDER BY cr.created_at DESC
		LIMIT 1
	`, email).Scan(&user.ID, &user.Email, &user.Name, &user.Currency, &totpSecret,
		&user.TOTPEnabled, &user.CreatedAt, &user.UpdatedAt, &passwordHash)

	if err == sql.ErrNoRows {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if !utils.CheckPassword(req.Password, passwordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if user.TOTPEnabled {
		if req.TOTPCode == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "2FA code required", "requires_2fa": true})
			return
		}
		if totpSecret.Valid {
			valid, err := utils.VerifyTOTP(totpSecret.String, req.TOTPCode)
			if err != nil || !valid {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid 2FA code"})
				return
			}
		}
	}

	accessToken, err := utils.GenerateAccessToken(user.ID, user.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	refreshToken, err := h.createSession(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}

	c.JSON(http.StatusOK, models.AuthResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})
}

// Refresh rotates the refresh token and issues a new access token.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req models.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var sessionID, userID, email string
	err := h.DB.QueryRow(`
		SELECT s.id, u.id, u.email
		FROM refresh_tokens rt
		JOIN sessions s ON rt.session_id = s.id
		JOIN users u ON s.user_id = u.id
		WHERE rt.token = $1 AND rt.expires_at > NOW() AND s.expires_at > NOW()
	`, req.RefreshToken).Scan(&sessionID, &userID, &email)

	if err == sql.ErrNoRows {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	newRefreshToken, err := utils.GenerateRefreshToken()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate refresh token"})
		return
	}

	err = utils.WithTransaction(h.DB, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM refresh_tokens WHERE token = $1`, req.RefreshToken); err != nil {
			return err
		}
		_, err := tx.Exec(`
			INSERT INTO refresh_tokens (id, session_id, token, expires_at) VALUES ($1, $2, $3, $4)
		`, uuid.New().String(), sessionID, newRefreshToken, time.Now().Add(sessionTTL))
		return err
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to rotate refresh token"})
		return
	}

	accessToken, err := utils.GenerateAccessToken(userID, email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token":  accessToken,
		"refresh_token": newRefreshToken,
	})
}

// Logout revokes the session behind the presented refresh token.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req models.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	_, err := h.DB.Exec(`
		DELETE FROM sessions s
		USING refresh_tokens rt
		WHERE rt.session_id = s.id AND rt.token = $1
	`, req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log out"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// ForgotPassword always answers the same way so the endpoint cannot be
// used to probe registered emails.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req models.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	response := gin.H{"message": "If the email is registered, a reset link has been sent"}

	var userID, name string
	err := h.DB.QueryRow(`
		SELECT id, name FROM users WHERE LOWER(TRIM(email)) = $1
	`, email).Scan(&userID, &name)
	if err != nil {
		c.JSON(http.StatusOK, response)
		return
	}

	resetToken := uuid.New().String()
	_, err = h.DB.Exec(`
		INSERT INTO password_resets (id, user_id, token, expires_at) VALUES ($1, $2, $3, $4)
	`, uuid.New().String(), userID, resetToken, time.Now().Add(passwordResetTTL))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create reset token"})
		return
	}

	if err := utils.SendPasswordResetEmail(email, name, resetToken); err != nil {
		log.Printf("⚠️ Failed to send reset email to %s: %v", email, err)
	}

	c.JSON(http.StatusOK, response)
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req models.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var userID string
	err := h.DB.QueryRow(`
		SELECT user_id FROM password_resets WHERE token = $1 AND expires_at > NOW()
	`, req.Token).Scan(&userID)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired reset token"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	passwordHash, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	err = utils.WithTransaction(h.DB, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`
			UPDATE credentials SET password_hash = $1 WHERE user_id = $2 AND provider = 'password'
		`, passwordHash, userID); err != nil {
			return err
		}
		if _, err := tx.Exec(`DELETE FROM password_resets WHERE user_id = $1`, userID); err != nil {
			return err
		}
		// Revoke every open session after a password reset
		_, err := tx.Exec(`DELETE FROM sessions WHERE user_id = $1`, userID)
		return err
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset password"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
}
