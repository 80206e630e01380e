// Package service implements the session protocol: credential login,
// registration, Google-identity login, and access-token renewal against
// the refresh token stored on the user row.
package service

import (
	"context"
	"errors"
	"fmt"

	"marketplace-auth/internal/token"
	"marketplace-auth/internal/user/model"
	"marketplace-auth/internal/user/validator"
	apperrors "marketplace-auth/pkg/errors"
	"marketplace-auth/pkg/utils"

	"github.com/google/uuid"
)

// UserStore abstracts user persistence for the service layer.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, userID uuid.UUID) (*model.User, error)
	UpdateRefreshToken(ctx context.Context, userID uuid.UUID, refreshToken string) error
	UpdateProfile(ctx context.Context, user *model.User) error
}

// WhoamiResult is the outcome of a renewal check. Exactly one field is set:
// Identity when the presented access token is still valid, Tokens when the
// pair was rotated through the refresh token.
type WhoamiResult struct {
	Identity *token.Claims
	Tokens   *token.Pair
}

type UserService struct {
	repo   UserStore
	tokens *token.Service
}

func NewService(repo UserStore, tokens *token.Service) *UserService {
	return &UserService{
		repo:   repo,
		tokens: tokens,
	}
}

func (s *UserService) Register(ctx context.Context, request *model.RegisterRequest) error {
	if err := validator.ValidateStruct(request); err != nil {
		return apperrors.NewAppError("VALIDATION_ERROR", "Invalid input", err)
	}

	existingUser, err := s.repo.GetUserByEmail(ctx, request.Email)
	if err != nil && !errors.Is(err, apperrors.ErrUserNotFound) {
		return fmt.Errorf("failed to check existing user: %w", err)
	}
	if existingUser != nil {
		return apperrors.ErrUserAlreadyExists
	}

	hashedPassword, err := utils.HashPassword(request.Password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Username:       request.Username,
		Email:          request.Email,
		PasswordHashed: hashedPassword,
		FullName:       request.FullName,
		Role:           request.Role,
		PhoneNumber:    request.Phone,
	}

	return s.repo.CreateUser(ctx, user)
}

func (s *UserService) Login(ctx context.Context, request *model.LoginRequest) (*model.AuthResponse, error) {
	if err := validator.ValidateStruct(request); err != nil {
		return nil, apperrors.NewAppError("VALIDATION_ERROR", "Invalid input", err)
	}

	user, err := s.repo.GetUserByEmail(ctx, request.Email)
	if err != nil {
		return nil, err
	}

	if !utils.CheckPassword(user.PasswordHashed, request.Password) {
		return nil, apperrors.ErrPasswordMismatch
	}

	return s.issueSession(ctx, user)
}

// GoogleLogin is the identity-provider path. The email was already verified
// upstream, so an unseen address creates the account on the spot with an
// empty password hash. Calling it again for the same email just signs in.
func (s *UserService) GoogleLogin(ctx context.Context, request *model.GoogleLoginRequest) (*model.AuthResponse, error) {
	if err := validator.ValidateStruct(request); err != nil {
		return nil, apperrors.NewAppError("VALIDATION_ERROR", "Invalid input", err)
	}

	user, err := s.repo.GetUserByEmail(ctx, request.Email)
	if err != nil && !errors.Is(err, apperrors.ErrUserNotFound) {
		return nil, err
	}

	if user == nil {
		role := request.Role
		if role == "" {
			role = "User"
		}

		user = &model.User{
			Username:      request.DisplayName,
			Email:         request.Email,
			FullName:      request.DisplayName,
			Role:          role,
			EmailVerified: request.EmailVerified,
		}
		if request.PhotoURL != "" {
			photo := request.PhotoURL
			user.AvatarURL = &photo
		}

		if err := s.repo.CreateUser(ctx, user); err != nil {
			return nil, err
		}
	}

	return s.issueSession(ctx, user)
}

// Whoami runs the renewal ladder: a valid access token settles the call
// without touching the store; an expired one falls back to the refresh
// token, which must match the value stored on the user row before a new
// pair is issued.
func (s *UserService) Whoami(ctx context.Context, request *model.WhoamiRequest) (*WhoamiResult, error) {
	if request.AccessToken == "" || request.RefreshToken == "" {
		return nil, apperrors.ErrMissingTokens
	}

	claims, err := s.tokens.VerifyAccess(request.AccessToken)
	if err == nil {
		return &WhoamiResult{Identity: claims}, nil
	}
	if !errors.Is(err, apperrors.ErrTokenExpired) {
		return nil, apperrors.ErrAccessTokenInvalid
	}

	refreshClaims, err := s.tokens.VerifyRefresh(request.RefreshToken)
	if errors.Is(err, apperrors.ErrTokenExpired) {
		return nil, apperrors.ErrRefreshTokenExpired
	}
	if err != nil {
		return nil, apperrors.ErrRefreshTokenInvalid
	}

	user, err := s.repo.GetUserByID(ctx, refreshClaims.UserID)
	if errors.Is(err, apperrors.ErrUserNotFound) {
		return nil, apperrors.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	// A cryptographically valid refresh token that is not the stored one
	// belongs to a rotated-out session.
	if user.RefreshToken == nil || *user.RefreshToken != request.RefreshToken {
		return nil, apperrors.ErrSessionNotFound
	}

	pair, err := s.tokens.IssuePair(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	if err := s.repo.UpdateRefreshToken(ctx, user.ID, pair.RefreshToken); err != nil {
		return nil, err
	}

	return &WhoamiResult{Tokens: pair}, nil
}

func (s *UserService) issueSession(ctx context.Context, user *model.User) (*model.AuthResponse, error) {
	pair, err := s.tokens.IssuePair(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	if err := s.repo.UpdateRefreshToken(ctx, user.ID, pair.RefreshToken); err != nil {
		return nil, err
	}

	return &model.AuthResponse{
		User:         user.ToResponse(),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    pair.ExpiresAt,
	}, nil
}
