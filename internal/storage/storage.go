// Package storage defines the durable string key-value store the client
// persists its leaderboard and last nickname in.
package storage

import (
	"context"
	"errors"
)

// Well-known keys.
const (
	KeyHighScores = "highScores"
	KeyNickname   = "nickname"
)

// ErrNotFound is returned by Get for absent keys.
var ErrNotFound = errors.New("storage: key not found")

// Store is a string-valued key-value store that survives process restarts.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
