package users

import "errors"

var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrEmailTaken          = errors.New("email already in use")
	ErrOldPasswordRequired = errors.New("old password is required to set a new one")
	ErrOldPasswordMismatch = errors.New("old password does not match")
	ErrInvalidInput        = errors.New("invalid input")
)
