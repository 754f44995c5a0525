package repository

import (
	"context"
	"errors"
	"time"

	"mockinterview/internal/model"
)

var ErrNotFound = errors.New("not found")

// Tx is the set of operations that commit or roll back together
type Tx interface {
	GetSession(ctx context.Context, id string) (*model.Session, error)
	ListAnswers(ctx context.Context, sessionID string) ([]*model.Answer, error)

	CreateSession(ctx context.Context, session *model.Session) error
	UpdateSession(ctx context.Context, session *model.Session) error
	InsertAnswer(ctx context.Context, answer *model.Answer) error
	// DeleteSession removes the session and every answer it owns
	DeleteSession(ctx context.Context, id string) error
}

// Store persists sessions and answers. Operations called directly on the
// store run in their own implicit transaction.
type Store interface {
	Tx

	// WithTx runs fn atomically; any error discards every write made through tx
	WithTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error

	ListSessionsByUser(ctx context.Context, userID string) ([]*model.Session, error)
	ListStaleSessions(ctx context.Context, idleSince time.Time) ([]*model.Session, error)
	SessionExists(ctx context.Context, id string) (bool, error)
}
