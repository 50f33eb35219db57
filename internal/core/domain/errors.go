package domain

import "errors"

var (
	ErrEmptyApplicationID = errors.New("application id is empty")
	ErrClientShutdown     = errors.New("client has been shut down")
)
