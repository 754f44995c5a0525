package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"mockinterview/internal/model"
)

// MemoryStore keeps everything in process. Transactions are serialized and
// staged, so a failed transaction leaves no trace.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*model.Session
	answers  map[string][]*model.Answer
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*model.Session),
		answers:  make(map[string][]*model.Answer),
	}
}

// WithTx holds the store lock for the whole of fn; fn must only use tx.
func (s *MemoryStore) WithTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memoryTx{
		store:    s,
		sessions: make(map[string]*model.Session),
		answers:  make(map[string][]*model.Answer),
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	tx.commit()
	return nil
}

func (s *MemoryStore) run(ctx context.Context, fn func(tx Tx) error) error {
	return s.WithTx(ctx, func(_ context.Context, tx Tx) error { return fn(tx) })
}

func (s *MemoryStore) GetSession(ctx context.Context, id string) (sess *model.Session, err error) {
	err = s.run(ctx, func(tx Tx) error {
		sess, err = tx.GetSession(ctx, id)
		return err
	})
	return sess, err
}

func (s *MemoryStore) ListAnswers(ctx context.Context, sessionID string) (answers []*model.Answer, err error) {
	err = s.run(ctx, func(tx Tx) error {
		answers, err = tx.ListAnswers(ctx, sessionID)
		return err
	})
	return answers, err
}

func (s *MemoryStore) CreateSession(ctx context.Context, session *model.Session) error {
	return s.run(ctx, func(tx Tx) error { return tx.CreateSession(ctx, session) })
}

func (s *MemoryStore) UpdateSession(ctx context.Context, session *model.Session) error {
	return s.run(ctx, func(tx Tx) error { return tx.UpdateSession(ctx, session) })
}

func (s *MemoryStore) InsertAnswer(ctx context.Context, answer *model.Answer) error {
	return s.run(ctx, func(tx Tx) error { return tx.InsertAnswer(ctx, answer) })
}

func (s *MemoryStore) DeleteSession(ctx context.Context, id string) error {
	return s.run(ctx, func(tx Tx) error { return tx.DeleteSession(ctx, id) })
}

func (s *MemoryStore) ListSessionsByUser(ctx context.Context, userID string) ([]*model.Session, error) {
	return s.filterSessions(func(sess *model.Session) bool { return sess.UserID == userID }), nil
}

func (s *MemoryStore) ListStaleSessions(ctx context.Context, idleSince time.Time) ([]*model.Session, error) {
	return s.filterSessions(func(sess *model.Session) bool {
		return !sess.Completed && sess.UpdatedAt.Before(idleSince)
	}), nil
}

func (s *MemoryStore) SessionExists(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[id]
	return ok, nil
}

// filterSessions returns matching sessions, newest first
func (s *MemoryStore) filterSessions(match func(*model.Session) bool) []*model.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*model.Session
	for _, sess := range s.sessions {
		if match(sess) {
			out = append(out, sess.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	return out
}

// memoryTx stages writes; a nil session marks a deletion
type memoryTx struct {
	store    *MemoryStore
	sessions map[string]*model.Session
	answers  map[string][]*model.Answer
}

func (tx *memoryTx) session(id string) (*model.Session, bool) {
	if sess, staged := tx.sessions[id]; staged {
		return sess, sess != nil
	}
	sess, ok := tx.store.sessions[id]
	return sess, ok
}

func (tx *memoryTx) answerList(sessionID string) []*model.Answer {
	if list, staged := tx.answers[sessionID]; staged {
		return list
	}
	return tx.store.answers[sessionID]
}

func (tx *memoryTx) GetSession(ctx context.Context, id string) (*model.Session, error) {
	sess, ok := tx.session(id)
	if !ok {
		return nil, ErrNotFound
	}
	return sess.Clone(), nil
}

func (tx *memoryTx) ListAnswers(ctx context.Context, sessionID string) ([]*model.Answer, error) {
	list := tx.answerList(sessionID)
	out := make([]*model.Answer, len(list))
	for i, a := range list {
		c := *a
		out[i] = &c
	}
	return out, nil
}

func (tx *memoryTx) CreateSession(ctx context.Context, session *model.Session) error {
	if _, exists := tx.session(session.ID); exists {
		return fmt.Errorf("session %s already exists", session.ID)
	}
	tx.sessions[session.ID] = session.Clone()
	return nil
}

func (tx *memoryTx) UpdateSession(ctx context.Context, session *model.Session) error {
	if _, exists := tx.session(session.ID); !exists {
		return ErrNotFound
	}
	tx.sessions[session.ID] = session.Clone()
	return nil
}

func (tx *memoryTx) InsertAnswer(ctx context.Context, answer *model.Answer) error {
	if _, exists := tx.session(answer.SessionID); !exists {
		return ErrNotFound
	}
	list := tx.answerList(answer.SessionID)
	for _, a := range list {
		if a.Ordinal == answer.Ordinal {
			return fmt.Errorf("answer %d of session %s already exists", answer.Ordinal, answer.SessionID)
		}
	}
	c := *answer
	staged := make([]*model.Answer, 0, len(list)+1)
	staged = append(staged, list...)
	staged = append(staged, &c)
	sort.Slice(staged, func(i, j int) bool { return staged[i].Ordinal < staged[j].Ordinal })
	tx.answers[answer.SessionID] = staged
	return nil
}

func (tx *memoryTx) DeleteSession(ctx context.Context, id string) error {
	if _, exists := tx.session(id); !exists {
		return ErrNotFound
	}
	tx.sessions[id] = nil
	tx.answers[id] = nil
	return nil
}

func (tx *memoryTx) commit() {
	for id, sess := range tx.sessions {
		if sess == nil {
			delete(tx.store.sessions, id)
			continue
		}
		tx.store.sessions[id] = sess
	}
	for id, list := range tx.answers {
		if list == nil {
			delete(tx.store.answers, id)
			continue
		}
		tx.store.answers[id] = list
	}
}
