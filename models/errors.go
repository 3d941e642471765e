package models

import "errors"

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrDuplicateEmail       = errors.New("email already exists")
	ErrConversationNotFound = errors.New("conversation not found")
)
