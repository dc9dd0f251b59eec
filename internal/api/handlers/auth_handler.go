package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campuspool/carpool/internal/api/dto"
	"github.com/campuspool/carpool/internal/domain/user"
)

// SendOTP handles POST /api/auth/send-otp
func (h *Handlers) SendOTP(c *gin.Context) {
	var req dto.SendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	if err := h.Auth.SendOTP(c.Request.Context(), req.Email); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "Verification code sent"})
}

// VerifyOTP handles POST /api/auth/verify-otp
func (h *Handlers) VerifyOTP(c *gin.Context) {
	var req dto.VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	if err := h.Auth.VerifyOTP(c.Request.Context(), req.Email, req.Code); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "Email verified"})
}

// Register handles POST /api/auth/register
func (h *Handlers) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	userID, err := h.Auth.Register(c.Request.Context(), req.FullName, req.Email, req.Phone, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.SuccessResponse{
		Message: "Account created",
		Data:    gin.H{"user_id": userID},
	})
}

// Login handles POST /api/auth/login
func (h *Handlers) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	result, err := h.Auth.Login(c.Request.Context(), req.Email, req.Password, user.Role(req.Role))
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
