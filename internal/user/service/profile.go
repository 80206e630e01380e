package service

import (
	"context"

	"marketplace-auth/internal/user/model"
	"marketplace-auth/internal/user/validator"
	apperrors "marketplace-auth/pkg/errors"

	"github.com/google/uuid"
)

func (s *UserService) GetProfile(ctx context.Context, userID uuid.UUID) (*model.UserResponse, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return user.ToResponse(), nil
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, request *model.UpdateProfileRequest) (*model.UserResponse, error) {
	if err := validator.ValidateStruct(request); err != nil {
		return nil, apperrors.NewAppError("VALIDATION_ERROR", "Invalid input", err)
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if request.FullName != nil {
		user.FullName = *request.FullName
	}
	if request.PhoneNumber != nil {
		user.PhoneNumber = request.PhoneNumber
	}
	if request.Location != nil {
		user.Location = request.Location
	}
	if request.AvatarURL != nil {
		user.AvatarURL = request.AvatarURL
	}

	if err := s.repo.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}

	return user.ToResponse(), nil
}
