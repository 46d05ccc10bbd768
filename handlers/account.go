package handlers

import (
	"net/http"

	"resolvo/middleware"
	"resolvo/models"
	"resolvo/services/account"
	"resolvo/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AccountHandler exposes registration and sign-in.
type AccountHandler struct {
	Service account.AccountService
	Logger  *zap.Logger
}

// NewAccountHandler constructs an AccountHandler.
func NewAccountHandler(svc account.AccountService, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{Service: svc, Logger: logger}
}

type registerRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	DisplayName string `json:"displayName" binding:"required"`
	Role        string `json:"role" binding:"required"`
}

// RegisterHandler handles POST /api/accounts/register.
func (h *AccountHandler) RegisterHandler(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, utils.CodeInvalidInput, "invalid registration payload: "+err.Error())
		return
	}

	result, err := h.Service.Register(c.Request.Context(), account.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
		Role:        models.AccountRole(req.Role),
	})
	if err != nil {
		utils.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

type signInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// SignInHandler handles POST /api/accounts/login.
func (h *AccountHandler) SignInHandler(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, utils.CodeInvalidInput, "invalid login payload: "+err.Error())
		return
	}

	result, err := h.Service.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.Logger.Warn("sign-in failed", zap.String("email", req.Email), zap.Error(err))
		utils.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetMeHandler handles GET /api/accounts/me.
func (h *AccountHandler) GetMeHandler(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing caller identity"})
		return
	}

	acct, err := h.Service.GetByID(c.Request.Context(), actorID)
	if err != nil {
		utils.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, acct)
}

type fcmTokenRequest struct {
	FCMToken string `json:"fcmToken" binding:"required"`
}

// UpdateFCMTokenHandler handles PUT /api/accounts/fcm-token.
func (h *AccountHandler) UpdateFCMTokenHandler(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing caller identity"})
		return
	}

	var req fcmTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, utils.CodeInvalidInput, "invalid token payload: "+err.Error())
		return
	}

	if err := h.Service.UpdateFCMToken(c.Request.Context(), actorID, req.FCMToken); err != nil {
		utils.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "push token updated"})
}
