package domain

import (
	"context"
	"errors"
)

// ErrSessionNotFound is returned when no in-progress session exists for a key.
var ErrSessionNotFound = errors.New("session not found")

// StateRepository stores in-progress booking sessions.
type StateRepository interface {
	Get(ctx context.Context, key SessionKey) (*Session, error)
	Save(ctx context.Context, session *Session) error
	Delete(ctx context.Context, key SessionKey) error
}
