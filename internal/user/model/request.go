package model

type RegisterRequest struct {
	Username string  `json:"username" validate:"required,min=2,max=100"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=8,max=20"`
	FullName string  `json:"fullname" validate:"required,min=2,max=255"`
	Role     string  `json:"role" validate:"required,user_role"`
	Phone    *string `json:"phone" validate:"required,min=10,phone"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// GoogleLoginRequest carries the profile fields of an identity already
// verified by Google upstream. Role is optional here: provider-created
// accounts default to the plain User role.
type GoogleLoginRequest struct {
	DisplayName   string `json:"displayName" validate:"required,min=2"`
	Email         string `json:"email" validate:"required,email"`
	EmailVerified bool   `json:"emailVerified"`
	PhotoURL      string `json:"photoURL"`
	Role          string `json:"role"`
}

type WhoamiRequest struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type UpdateProfileRequest struct {
	FullName    *string `json:"full_name" validate:"omitempty,min=2,max=255"`
	PhoneNumber *string `json:"phone_number" validate:"omitempty,phone"`
	Location    *string `json:"location" validate:"omitempty,max=255"`
	AvatarURL   *string `json:"avatar_url" validate:"omitempty,url"`
}
