package cmd

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	appkg "mockinterview/internal/app"
	"mockinterview/internal/config"
	"mockinterview/internal/model"
)

func newPracticeApp(t *testing.T) *appkg.App {
	t.Helper()

	cfg := config.Default()
	cfg.Interview.Seed = 3
	cfg.Janitor.Schedule = ""

	a, err := appkg.New(context.Background(), cfg, &config.Secrets{JWTSecret: "secret"}, zap.NewNop(), appkg.WithFs(afero.NewMemMapFs()))
	if err != nil {
		t.Fatalf("app.New: %v", err)
	}
	t.Cleanup(func() { a.Close(context.Background()) })
	return a
}

func TestRunInterviewCompletes(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	a := newPracticeApp(t)

	calls := 0
	read := func(mode model.Mode) (*model.SubmitAnswerRequest, error) {
		if mode != model.ModeText {
			t.Fatalf("mode = %q, want text", mode)
		}
		sessions, err := a.Interview.ListSessions(ctx, practiceUser)
		if err != nil || len(sessions) != 1 {
			t.Fatalf("ListSessions = %v, %v", sessions, err)
		}
		if sessions[0].QuestionCount != calls {
			t.Fatalf("answer %d asked with %d answers recorded", calls+1, sessions[0].QuestionCount)
		}
		calls++
		return &model.SubmitAnswerRequest{
			InputType: model.InputText,
			Response:  fmt.Sprintf("I led the team through release number %d and we shipped on time.", calls),
		}, nil
	}

	stats, err := runInterview(ctx, a.Interview, model.ModeText, read)
	if err != nil {
		t.Fatalf("runInterview: %v", err)
	}

	want := a.Interview.MaxQuestions()
	if calls != want {
		t.Fatalf("answered %d questions, want %d", calls, want)
	}
	if stats == nil || !stats.Completed || stats.TotalQuestions != want {
		t.Fatalf("stats = %+v", stats)
	}
	for i, d := range stats.DetailedResponses {
		if d.Ordinal != i+1 {
			t.Fatalf("answer %d has question number %d", i, d.Ordinal)
		}
	}
}

func TestRunInterviewStopsOnExit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	a := newPracticeApp(t)

	calls := 0
	read := func(model.Mode) (*model.SubmitAnswerRequest, error) {
		calls++
		if calls == 3 {
			return nil, errExit
		}
		return &model.SubmitAnswerRequest{InputType: model.InputText, Response: "Good question."}, nil
	}

	if _, err := runInterview(ctx, a.Interview, model.ModeText, read); !errors.Is(err, errExit) {
		t.Fatalf("runInterview error = %v, want errExit", err)
	}

	sessions, err := a.Interview.ListSessions(ctx, practiceUser)
	if err != nil || len(sessions) != 1 {
		t.Fatalf("ListSessions = %v, %v", sessions, err)
	}
	if sessions[0].QuestionCount != 2 || sessions[0].Completed {
		t.Fatalf("session after exit = %+v", sessions[0])
	}
}
