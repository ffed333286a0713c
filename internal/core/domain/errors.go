package domain

import "errors"

var (
	ErrUnauthorized       = errors.New("missing or invalid credential")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already in use")
	ErrValidation         = errors.New("invalid payload")
	ErrInvalidUserID      = errors.New("invalid user id")
	ErrUserNotFound       = errors.New("user not found")
	ErrMessageNotFound    = errors.New("message not found")
	ErrPersistence        = errors.New("store failure")
)
