package hub

import "errors"

var (
	ErrHubNotRunning       = errors.New("hub is not running")
	ErrHubAlreadyRunning   = errors.New("hub is already running")
	ErrDuplicateConnection = errors.New("connection already registered")
	ErrConnectionClosed    = errors.New("connection is closed")
)
