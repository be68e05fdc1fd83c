package service

import "errors"

var (
	ErrForbidden      = errors.New("forbidden")
	ErrUserNotFound   = errors.New("user not found")
	ErrClientNotFound = errors.New("client not found")
	ErrInvalidInput   = errors.New("invalid input")
)
