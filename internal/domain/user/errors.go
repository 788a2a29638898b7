package user

import "errors"

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrImportRunNotFound = errors.New("import run not found")
	ErrDuplicateUsername = errors.New("username already taken")
	ErrDuplicateEmail    = errors.New("email already taken")
	ErrNoRolesSelected   = errors.New("no roles selected")
	ErrInvalidRole       = errors.New("invalid role")
)
