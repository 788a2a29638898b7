package user

import "errors"

var (
	ErrInvalidImportSource     = errors.New("invalid import source")
	ErrReadImportSource        = errors.New("failed to read import source")
	ErrImportInProgress        = errors.New("another import is in progress")
	ErrStartImportRun          = errors.New("failed to start import run")
	ErrUsernameProbesExhausted = errors.New("no free username found")
	ErrInvalidUserID           = errors.New("invalid user id")
	ErrUserNotFound            = errors.New("user not found")
	ErrGetUserByID             = errors.New("failed to get user by id")
	ErrUsernameRequired        = errors.New("username is required")
	ErrFindUsersByUsername     = errors.New("failed to find users by username")
	ErrInvalidImportRunID      = errors.New("invalid import run id")
	ErrImportRunNotFound       = errors.New("import run not found")
	ErrGetImportRun            = errors.New("failed to get import run")
)
