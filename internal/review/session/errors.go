package session

import "errors"

var (
	ErrSessionNotFound = errors.New("review session not found")
	ErrNotOpen         = errors.New("document is not open in this session")
)
