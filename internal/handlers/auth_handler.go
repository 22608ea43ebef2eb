package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"auraleen/internal/middleware"
	"auraleen/internal/models"
	"auraleen/internal/services"
	"auraleen/internal/utils"
)

const (
	accessTokenTTL  = 24 * time.Hour
	refreshTokenTTL = 30 * 24 * time.Hour
)

type AuthHandler struct {
	accounts services.AccountService
	resets   services.PasswordResetService
}

func NewAuthHandler(accounts services.AccountService, resets services.PasswordResetService) *AuthHandler {
	return &AuthHandler{accounts: accounts, resets: resets}
}

// @Summary      Sign up
// @Description  Creates an unverified account and emails a 6-digit verification code
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        signup  body      models.SignupRequest  true  "Signup data"
// @Success      201  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.accounts.Signup(req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrEmailTaken):
			c.JSON(http.StatusConflict, gin.H{"error": "An account with this email already exists."})
		default:
			log.Printf("[auth][signup] error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong while creating the account."})
		}
		return
	}

	body := gin.H{
		"message":              "Account created. We have sent a 6-digit code to your email to verify your account.",
		"requiresVerification": true,
	}
	if res.DevCode != "" {
		body["message"] = "Account created but verification email could not be sent. Use the code shown to verify in development."
		body["devCode"] = res.DevCode
	}
	c.JSON(http.StatusCreated, body)
}

// @Summary      Resend verification code
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /auth/resend-otp [post]
func (h *AuthHandler) ResendOTP(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email is required."})
		return
	}

	res, err := h.accounts.ResendCode(req.Email)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "No account found for this email."})
		case errors.Is(err, services.ErrAlreadyVerified):
			c.JSON(http.StatusBadRequest, gin.H{"error": "This account is already verified."})
		case errors.Is(err, services.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			log.Printf("[auth][resend-otp] error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong while resending the verification code."})
		}
		return
	}

	body := gin.H{"message": "A new verification code has been sent to your email."}
	if res.DevCode != "" {
		body["message"] = "Verification code regenerated, but email could not be sent. Use the code shown to verify in development."
		body["devCode"] = res.DevCode
	}
	c.JSON(http.StatusOK, body)
}

// @Summary      Verify email with OTP
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /auth/verify-otp [post]
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
		Code  string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and verification code are required."})
		return
	}

	if err := h.accounts.VerifyCode(req.Email, req.Code); err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "No account found for this email."})
		case errors.Is(err, services.ErrNoActiveCode):
			c.JSON(http.StatusBadRequest, gin.H{"error": "No active verification code. Please sign up again."})
		case errors.Is(err, services.ErrCodeInvalid):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired verification code."})
		case errors.Is(err, services.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			log.Printf("[auth][verify-otp] error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong while verifying the code."})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Email verified successfully. You can now sign in."})
}

// @Summary      Log in
// @Description  Exchanges verified credentials for a signed session
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        login  body      models.LoginRequest  true  "Credentials"
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.accounts.Login(req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	accessTokenString, err := h.issueSession(c, user.ID, user.Email)
	if err != nil {
		log.Printf("[auth][login] sign access token failed for userID=%d: err=%v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate access token"})
		return
	}

	// Refresh (opaque) -> хранится в БД
	rt, err := utils.NewSecureToken(32)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate refresh token"})
		return
	}
	if err := h.accounts.StoreRefresh(user.ID, rt, time.Now().Add(refreshTokenTTL)); err != nil {
		log.Printf("[auth][login] store refresh token failed for userID=%d: err=%v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store refresh token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user":    user, // у модели PasswordHash помечен json:"-", наружу не уйдет
		"tokens": gin.H{
			"access_token":  accessTokenString,
			"refresh_token": rt,
		},
	})
}

func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refresh_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	old := strings.TrimSpace(req.RefreshToken)
	user, err := h.accounts.GetByRefreshToken(old)
	if err != nil || user == nil || user.RefreshToken == nil || user.RefreshExpiresAt == nil || user.RefreshRevoked {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		return
	}
	if time.Now().After(*user.RefreshExpiresAt) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Refresh token expired"})
		return
	}

	// rotate refresh
	newRT, err := utils.NewSecureToken(32)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to rotate refresh token"})
		return
	}
	rotatedUser, err := h.accounts.RotateRefresh(old, newRT, time.Now().Add(refreshTokenTTL))
	if err != nil || rotatedUser == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid refresh token"})
		return
	}

	accessTokenString, err := h.issueSession(c, rotatedUser.ID, rotatedUser.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate access token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token":  accessTokenString,
		"refresh_token": newRT, // возвращаем новый (ротация)
	})
}

// @Summary      Forgot password
// @Description  Always answers with the same message regardless of account existence
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email is required."})
		return
	}

	res, err := h.resets.RequestReset(req.Email)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		// внутренние сбои не должны выдавать, существует ли аккаунт
		log.Printf("[auth][forgot-password] error: %v", err)
		res = &services.ForgotResult{}
	}

	body := gin.H{"message": "If an account exists for this email, a reset link has been sent."}
	if res.DevResetURL != "" {
		body["message"] = "Reset link generated. Email could not be sent, please contact support."
		body["devResetUrl"] = res.DevResetURL
	}
	c.JSON(http.StatusOK, body)
}

// @Summary      Reset password
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Router       /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req struct {
		Token    string `json:"token" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Token and new password are required."})
		return
	}

	if err := h.resets.ResetPassword(req.Token, req.Password); err != nil {
		switch {
		case errors.Is(err, services.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, services.ErrResetTokenInvalid):
			c.JSON(http.StatusBadRequest, gin.H{"error": "This reset link is invalid or has expired."})
		default:
			log.Printf("[auth][reset-password] error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong while resetting the password."})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully. You can now sign in."})
}

// issueSession подписывает access JWT и кладёт его в сессионную cookie.
func (h *AuthHandler) issueSession(c *gin.Context, userID int, email string) (string, error) {
	claims := &middleware.Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(accessTokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(middleware.JWTKey)
	if err != nil {
		return "", err
	}
	c.SetCookie(middleware.SessionCookieName, signed, int(accessTokenTTL.Seconds()), "/", "", false, true)
	return signed, nil
}
