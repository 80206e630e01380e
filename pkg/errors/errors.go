package errors

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound      = errors.New("user with the provided email doesn't exist")
	ErrUserAlreadyExists = errors.New("a user with the same email exists")
	ErrPasswordMismatch  = errors.New("passwords do not match")
	ErrUnauthorized      = errors.New("unauthorized access")

	ErrMissingTokens       = errors.New("no tokens provided")
	ErrAccessTokenInvalid  = errors.New("invalid access token")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
	ErrRefreshTokenInvalid = errors.New("invalid refresh token")
	ErrSessionNotFound     = errors.New("user with the provided refresh token doesn't exist")

	ErrTokenExpired = errors.New("token has expired")
	ErrTokenInvalid = errors.New("token is invalid")
)

type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func NewAppError(code, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
