package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"marketplace-auth/internal/database"
	"marketplace-auth/internal/user/model"
	apperrors "marketplace-auth/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *database.Database
}

func NewRepository(db *database.Database) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) CreateUser(ctx context.Context, user *model.User) error {
	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()

	if err := r.db.DB.WithContext(ctx).Create(user).Error; err != nil {
		if isDuplicateEmail(err) {
			return apperrors.ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) GetUserByID(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	var user model.User
	err := r.db.DB.WithContext(ctx).First(&user, "id = ?", userID).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// UpdateRefreshToken overwrites the stored refresh token, invalidating
// whatever session held the previous value.
func (r *UserRepository) UpdateRefreshToken(ctx context.Context, userID uuid.UUID, refreshToken string) error {
	result := r.db.DB.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"refresh_token": refreshToken,
			"updated_at":    time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update refresh token: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, user *model.User) error {
	user.UpdatedAt = time.Now()

	result := r.db.DB.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]interface{}{
			"full_name":    user.FullName,
			"phone_number": user.PhoneNumber,
			"location":     user.Location,
			"avatar_url":   user.AvatarURL,
			"updated_at":   user.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update user: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return apperrors.ErrUserNotFound
	}

	return nil
}

// isDuplicateEmail matches the unique-violation wording of both Postgres
// ("duplicate key value violates unique constraint") and the sqlite driver
// used in tests ("UNIQUE constraint failed: users.email").
func isDuplicateEmail(err error) bool {
	errStr := strings.ToLower(err.Error())
	if !strings.Contains(errStr, "email") {
		return false
	}
	return strings.Contains(errStr, "duplicate key") || strings.Contains(errStr, "unique constraint")
}
