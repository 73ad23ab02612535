// Package replay caches finished webhook responses so a platform retry of
// the same message gets the same answer without running the handler twice.
package replay

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNotFound   = errors.New("replay entry not found")
	ErrInvalidKey = errors.New("replay key is empty")
)

const (
	defaultKeyPrefix = "voice-diary:turn:"
	defaultTTL       = 10 * time.Minute
)

// Store keeps encoded responses keyed by Key.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, body []byte) error
}

// Key identifies one platform message.
func Key(sessionID string, messageID int64) (string, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return "", ErrInvalidKey
	}
	return fmt.Sprintf("%s:%d", sessionID, messageID), nil
}

func checkKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	return nil
}
