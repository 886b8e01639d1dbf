package models

import "time"

// ============================================================================
// USER MODEL
// ============================================================================

type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	Currency    string    `json:"currency"`
	TOTPSecret  string    `json:"-"` // Never expose in JSON
	TOTPEnabled bool      `json:"totp_enabled"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ValidCurrencies is the fixed set of supported currency codes.
var ValidCurrencies = []string{"SLE", "USD", "GBP", "EUR", "NGN"}

func IsValidCurrency(code string) bool {
	for _, c := range ValidCurrencies {
		if c == code {
			return true
		}
	}
	return false
}

// ============================================================================
// AUTHENTICATION REQUESTS
// ============================================================================

type SignupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	TOTPCode string `json:"totp_code,omitempty"`
}

type AuthResponse struct {
	User         User   `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

// ============================================================================
// PASSWORD & 2FA
// ============================================================================

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=6"`
}

type TOTPSetupResponse struct {
	Secret string `json:"secret"`
	URL    string `json:"url"`
}

type VerifyTOTPRequest struct {
	Code string `json:"code" binding:"required,len=6"`
}

// ============================================================================
// PROFILE & ONBOARDING
// ============================================================================

type UpdateCurrencyRequest struct {
	Currency string `json:"currency" binding:"required"`
}

type OnboardingRequest struct {
	Income   int64  `json:"income" binding:"min=0"`
	Currency string `json:"currency" binding:"required"`
}

type OnboardingStatus struct {
	NeedsOnboarding bool  `json:"needs_onboarding"`
	User            *User `json:"user"`
}
