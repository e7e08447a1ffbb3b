package model

import "errors"

var (
	ErrSessionRequired = errors.New("session id is required")
)
