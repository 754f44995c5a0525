package artifact

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrNotFound = errors.New("artifact not found")

const (
	keyPrefix = "audio_"
	keyExt    = ".wav"
)

// Store keeps raw audio answers keyed by session and ordinal
type Store interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	// Delete is a no-op for a missing key
	Delete(ctx context.Context, key string) error
	// DeleteSession removes every artifact of a session and returns how many were removed
	DeleteSession(ctx context.Context, sessionID string) (int, error)
	List(ctx context.Context) ([]string, error)
}

// Key names the artifact of one answer
func Key(sessionID string, ordinal int) string {
	return fmt.Sprintf("%s%s_%d%s", keyPrefix, sessionID, ordinal, keyExt)
}

// SessionPrefix is shared by every key of a session
func SessionPrefix(sessionID string) string {
	return keyPrefix + sessionID + "_"
}

// ParseKey splits a key produced by Key
func ParseKey(key string) (sessionID string, ordinal int, ok bool) {
	if !strings.HasPrefix(key, keyPrefix) || !strings.HasSuffix(key, keyExt) {
		return "", 0, false
	}
	body := strings.TrimSuffix(strings.TrimPrefix(key, keyPrefix), keyExt)
	if strings.ContainsAny(body, `/\`) {
		return "", 0, false
	}
	i := strings.LastIndex(body, "_")
	if i <= 0 {
		return "", 0, false
	}
	n, err := strconv.Atoi(body[i+1:])
	if err != nil || n < 1 {
		return "", 0, false
	}
	return body[:i], n, true
}

func validKey(key string) error {
	if _, _, ok := ParseKey(key); !ok {
		return fmt.Errorf("invalid artifact key %q", key)
	}
	return nil
}
