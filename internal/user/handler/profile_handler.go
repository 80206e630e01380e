package handler

import (
	"net/http"

	"marketplace-auth/internal/user/model"
	"marketplace-auth/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (h *UserHandler) RegisterProfileRoutes(router *gin.RouterGroup) {
	profile := router.Group("/profile")
	{
		profile.GET("", h.GetProfile)
		profile.PUT("", h.UpdateProfile)
	}
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := authenticatedUserID(c)
	if !ok {
		return
	}

	profile, err := h.service.GetProfile(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Profile retrieved successfully", profile)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := authenticatedUserID(c)
	if !ok {
		return
	}

	var request model.UpdateProfileRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if request.FullName != nil {
		sanitized := utils.SanitizeString(*request.FullName)
		request.FullName = &sanitized
	}
	if request.PhoneNumber != nil {
		sanitized := utils.SanitizePhone(*request.PhoneNumber)
		request.PhoneNumber = &sanitized
	}
	if request.Location != nil {
		sanitized := utils.SanitizeString(*request.Location)
		request.Location = &sanitized
	}

	profile, err := h.service.UpdateProfile(c.Request.Context(), userID, &request)
	if err != nil {
		respondWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Profile updated successfully", profile)
}

func authenticatedUserID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get("userID")
	if !exists {
		utils.ErrorResponse(c, http.StatusUnauthorized, "User not authenticated")
		return uuid.Nil, false
	}

	userID, ok := value.(uuid.UUID)
	if !ok {
		utils.ErrorResponse(c, http.StatusInternalServerError, "Invalid user identifier")
		return uuid.Nil, false
	}

	return userID, true
}
