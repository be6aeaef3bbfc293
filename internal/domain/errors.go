package domain

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrNotOwner            = errors.New("entry belongs to another user")
	ErrDuplicateCredential = errors.New("username or email already exists")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrWrongPassword       = errors.New("current password is incorrect")
	ErrInvalidInput        = errors.New("invalid input")
)
