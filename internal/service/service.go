// Package service provides business logic for the application.
package service

import "errors"

// Service errors.
var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInactiveAccount    = errors.New("account is inactive")
	ErrUserNotFound       = errors.New("user not found")
	ErrNoteNotFound       = errors.New("note not found")
	ErrSynthesisNotFound  = errors.New("synthesis not found")
	ErrContentRequired    = errors.New("content is required")
	ErrURLRequired        = errors.New("url is required")
	ErrSearchTermRequired = errors.New("search term is required")
)
