package model

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	Username       string    `json:"username" gorm:"not null"`
	Email          string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHashed string    `json:"-"`
	FullName       string    `json:"full_name"`
	PhoneNumber    *string   `json:"phone_number,omitempty"`
	Location       *string   `json:"location,omitempty"`
	AvatarURL      *string   `json:"avatar_url,omitempty"`
	Role           string    `json:"role"`
	EmailVerified  bool      `json:"email_verified"`
	PhoneVerified  bool      `json:"phone_verified"`
	// Latest issued refresh token, stored verbatim. Issuing a new pair
	// overwrites it, which invalidates the previous session.
	RefreshToken *string   `json:"-" gorm:"type:varchar(500)"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
