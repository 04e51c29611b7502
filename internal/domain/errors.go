package domain

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrForbidden          = errors.New("forbidden")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionExpired     = errors.New("session expired")

	ErrProfileNotFound      = errors.New("profile not found")
	ErrProfileAlreadyExists = errors.New("profile already exists")

	ErrConnectionNotFound  = errors.New("connection not found")
	ErrDuplicateConnection = errors.New("already connected to this user")
	ErrCannotConnectSelf   = errors.New("cannot connect to yourself")
	ErrInvalidCoordinates  = errors.New("invalid coordinates")
	ErrInvalidMethod       = errors.New("invalid connection method")

	ErrSettingsNotFound     = errors.New("settings not found")
	ErrInvalidFollowUp      = errors.New("invalid follow-up delay")
	ErrNotificationNotFound = errors.New("notification not found")
)
