package service

import "errors"

var (
	ErrEmailExists         = errors.New("email in use")
	ErrInvalidCredentials  = errors.New("email or password is wrong")
	ErrUserNotFound        = errors.New("user not found")
	ErrAlreadyVerified     = errors.New("verification has already been passed")
	ErrUnauthorized        = errors.New("not authorized")
	ErrInvalidSubscription = errors.New("invalid subscription")
	ErrPasswordTooLong     = errors.New("password exceeds 72 bytes")
)
