package handler

import (
	"errors"
	"fmt"
	"net/http"

	"wallet-ledger/internal/adapter/http/dto"
	"wallet-ledger/internal/adapter/http/middleware"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"
	"wallet-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authSvc ports.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authSvc ports.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	dto.SanitizeStruct(&req)

	accountID, err := h.authSvc.Register(c.Request.Context(), ports.RegisterRequest{
		Email:    req.Email,
		Password: req.Password,
		Pin:      req.Pin,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Set(middleware.CtxAuditResourceID, accountID.String())
	response.Created(c, dto.RegisterResponse{
		Message:   "Account created",
		AccountID: accountID.String(),
	})
}

// Login handles POST /auth/login. A correct password triggers OTP delivery; the token
// is issued by VerifyOTP.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	dto.SanitizeStruct(&req)

	if err := h.authSvc.Login(c.Request.Context(), req.Email, req.Password); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.MessageResponse{Message: "OTP sent"})
}

// VerifyOTP handles POST /auth/verify-otp.
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req dto.VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// Malformed codes fail like wrong ones.
		response.Error(c, apperror.ErrInvalidCredentials())
		return
	}
	dto.SanitizeStruct(&req)

	token, expiry, err := h.authSvc.VerifyLoginOTP(c.Request.Context(), req.Email, req.OTP)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.TokenResponse{
		Token:  token,
		Expiry: expiry.Unix(),
	})
}

// HealthCheck handles GET /health and pings every dependency.
func HealthCheck(checkers ...ports.HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		deps := make(map[string]ports.DependencyHealth, len(checkers))
		allHealthy := true

		for _, checker := range checkers {
			if err := checker.Ping(c.Request.Context()); err != nil {
				deps[checker.Name()] = ports.DependencyHealth{Status: ports.HealthUnhealthy, Error: err.Error()}
				allHealthy = false
			} else {
				deps[checker.Name()] = ports.DependencyHealth{Status: ports.HealthHealthy}
			}
		}

		status := ports.HealthHealthy
		httpCode := http.StatusOK
		if !allHealthy {
			status = ports.HealthDegraded
			httpCode = http.StatusServiceUnavailable
		}

		c.JSON(httpCode, gin.H{
			"status":       status,
			"dependencies": deps,
		})
	}
}

// bindError turns a binding failure into a VAL_001 naming the first offending field.
func bindError(err error) *apperror.AppError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		switch fe.Tag() {
		case "required":
			return apperror.ErrInvalidInput(fmt.Sprintf("%s is required", fe.Field()))
		case "pin":
			return apperror.ErrInvalidInput("PIN must be 4 to 12 digits")
		case "email":
			return apperror.ErrInvalidInput("Email address is invalid")
		default:
			return apperror.ErrInvalidInput(fmt.Sprintf("%s is invalid", fe.Field()))
		}
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperror.New(apperror.CodeInvalidInput, "Request body too large", http.StatusRequestEntityTooLarge)
	}
	return apperror.ErrInvalidInput("Malformed request body")
}
