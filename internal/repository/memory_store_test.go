package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"mockinterview/internal/model"
)

func newSession(id, user string, started time.Time) *model.Session {
	return &model.Session{ID: id, UserID: user, Mode: model.ModeText, StartedAt: started, UpdatedAt: started}
}

func TestMemoryStoreCRUD(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Now()

	if err := store.CreateSession(ctx, newSession("s1", "u1", now)); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.CreateSession(ctx, newSession("s1", "u1", now)); err == nil {
		t.Fatalf("expected duplicate create to fail")
	}

	for _, ord := range []int{2, 1} {
		if err := store.InsertAnswer(ctx, &model.Answer{ID: "a", SessionID: "s1", Ordinal: ord}); err != nil {
			t.Fatalf("insert %d: %v", ord, err)
		}
	}
	if err := store.InsertAnswer(ctx, &model.Answer{SessionID: "s1", Ordinal: 1}); err == nil {
		t.Fatalf("expected duplicate ordinal to fail")
	}
	if err := store.InsertAnswer(ctx, &model.Answer{SessionID: "missing", Ordinal: 1}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	answers, err := store.ListAnswers(ctx, "s1")
	if err != nil {
		t.Fatalf("list answers: %v", err)
	}
	if len(answers) != 2 || answers[0].Ordinal != 1 || answers[1].Ordinal != 2 {
		t.Fatalf("expected answers ordered by ordinal, got %+v", answers)
	}

	sess, err := store.GetSession(ctx, "s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	sess.QuestionCount = 2
	sess.MarkCategory("goals")
	if err := store.UpdateSession(ctx, sess); err != nil {
		t.Fatalf("update: %v", err)
	}

	// returned values are copies
	sess.CategoriesAsked[0] = "mutated"
	again, _ := store.GetSession(ctx, "s1")
	if again.QuestionCount != 2 || again.CategoriesAsked[0] != "goals" {
		t.Fatalf("unexpected stored session %+v", again)
	}

	if err := store.DeleteSession(ctx, "s1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.DeleteSession(ctx, "s1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
	if answers, _ := store.ListAnswers(ctx, "s1"); len(answers) != 0 {
		t.Fatalf("answers must be deleted with the session")
	}
	if ok, _ := store.SessionExists(ctx, "s1"); ok {
		t.Fatalf("session still exists")
	}
}

func TestMemoryStoreRollback(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()
	_ = store.CreateSession(ctx, newSession("s1", "u1", time.Now()))

	boom := errors.New("boom")
	err := store.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		if err := tx.InsertAnswer(ctx, &model.Answer{SessionID: "s1", Ordinal: 1}); err != nil {
			return err
		}
		sess, err := tx.GetSession(ctx, "s1")
		if err != nil {
			return err
		}
		sess.QuestionCount = 1
		if err := tx.UpdateSession(ctx, sess); err != nil {
			return err
		}

		// staged writes are visible inside the transaction
		staged, _ := tx.ListAnswers(ctx, "s1")
		if len(staged) != 1 {
			t.Errorf("expected staged answer to be visible, got %d", len(staged))
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	sess, _ := store.GetSession(ctx, "s1")
	answers, _ := store.ListAnswers(ctx, "s1")
	if sess.QuestionCount != 0 || len(answers) != 0 {
		t.Fatalf("rolled back transaction leaked: count=%d answers=%d", sess.QuestionCount, len(answers))
	}
}

func TestMemoryStoreDeleteInsideTx(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()
	_ = store.CreateSession(ctx, newSession("s1", "u1", time.Now()))
	_ = store.InsertAnswer(ctx, &model.Answer{SessionID: "s1", Ordinal: 1})

	err := store.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		if err := tx.DeleteSession(ctx, "s1"); err != nil {
			return err
		}
		if _, err := tx.GetSession(ctx, "s1"); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected deleted session to be gone inside tx, got %v", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("tx: %v", err)
	}
	if _, err := store.GetSession(ctx, "s1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStoreListings(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	_ = store.CreateSession(ctx, newSession("old", "u1", base))
	_ = store.CreateSession(ctx, newSession("new", "u1", base.Add(time.Hour)))
	_ = store.CreateSession(ctx, newSession("other", "u2", base))
	done := newSession("done", "u1", base.Add(-time.Hour))
	done.Completed = true
	_ = store.CreateSession(ctx, done)

	list, _ := store.ListSessionsByUser(ctx, "u1")
	if len(list) != 3 || list[0].ID != "new" || list[2].ID != "done" {
		t.Fatalf("unexpected listing %+v", list)
	}

	stale, _ := store.ListStaleSessions(ctx, base.Add(30*time.Minute))
	ids := map[string]bool{}
	for _, s := range stale {
		ids[s.ID] = true
	}
	if len(stale) != 2 || !ids["old"] || !ids["other"] {
		t.Fatalf("unexpected stale sessions %+v", ids)
	}
}

func TestMemoryStoreCancelledContextRollsBack(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())

	err := store.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		cancel()
		return tx.CreateSession(ctx, newSession("s1", "u1", time.Now()))
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if ok, _ := store.SessionExists(context.Background(), "s1"); ok {
		t.Fatalf("cancelled transaction must not commit")
	}
}
