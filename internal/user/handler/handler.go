package handler

import (
	"errors"
	"net/http"

	"marketplace-auth/internal/logger"
	"marketplace-auth/internal/middleware"
	"marketplace-auth/internal/user/model"
	"marketplace-auth/internal/user/service"
	apperrors "marketplace-auth/pkg/errors"
	"marketplace-auth/pkg/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UserHandler struct {
	service *service.UserService
}

func NewHandler(service *service.UserService) *UserHandler {
	return &UserHandler{service: service}
}

func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/login", h.Login)
	router.POST("/register", h.Register)
	router.POST("/google-login", h.GoogleLogin)
	router.POST("/whoami", h.Whoami)
}

func (h *UserHandler) Login(c *gin.Context) {
	var request model.LoginRequest

	if err := c.ShouldBindJSON(&request); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	request.Email = utils.SanitizeEmail(request.Email)

	authResponse, err := h.service.Login(c.Request.Context(), &request)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Login successful", authResponse)
}

func (h *UserHandler) Register(c *gin.Context) {
	var request model.RegisterRequest

	if err := c.ShouldBindJSON(&request); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	request.Email = utils.SanitizeEmail(request.Email)
	request.Username = utils.SanitizeString(request.Username)
	request.FullName = utils.SanitizeString(request.FullName)
	if request.Phone != nil {
		sanitized := utils.SanitizePhone(*request.Phone)
		request.Phone = &sanitized
	}

	if err := h.service.Register(c.Request.Context(), &request); err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "User created successfully", nil)
}

func (h *UserHandler) GoogleLogin(c *gin.Context) {
	var request model.GoogleLoginRequest

	if err := c.ShouldBindJSON(&request); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	request.Email = utils.SanitizeEmail(request.Email)
	request.DisplayName = utils.SanitizeString(request.DisplayName)

	authResponse, err := h.service.GoogleLogin(c.Request.Context(), &request)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Login successful", authResponse)
}

func (h *UserHandler) Whoami(c *gin.Context) {
	var request model.WhoamiRequest

	if err := c.ShouldBindJSON(&request); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.service.Whoami(c.Request.Context(), &request)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if result.Identity != nil {
		utils.SuccessResponse(c, http.StatusOK, "Token is valid", gin.H{
			"user": result.Identity,
		})
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Token refreshed successfully", result.Tokens)
}

func respondWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	switch {
	case errors.Is(err, apperrors.ErrUserAlreadyExists):
		utils.ErrorResponse(c, http.StatusConflict, err.Error())
	case errors.Is(err, apperrors.ErrPasswordMismatch):
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, apperrors.ErrMissingTokens),
		errors.Is(err, apperrors.ErrAccessTokenInvalid),
		errors.Is(err, apperrors.ErrRefreshTokenExpired),
		errors.Is(err, apperrors.ErrRefreshTokenInvalid),
		errors.Is(err, apperrors.ErrUnauthorized):
		utils.ErrorResponse(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, apperrors.ErrUserNotFound),
		errors.Is(err, apperrors.ErrSessionNotFound):
		utils.ErrorResponse(c, http.StatusNotFound, err.Error())
	default:
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			utils.ErrorResponse(c, http.StatusBadRequest, appErr.Message)
			return
		}

		requestID := middleware.GetRequestID(c)
		logger.Error("Internal server error",
			zap.String("request_id", requestID),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
			zap.Error(err),
		)
		utils.ErrorResponse(c, http.StatusInternalServerError, "Internal server error")
	}
}
