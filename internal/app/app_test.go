package app

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"mockinterview/internal/config"
	"mockinterview/internal/model"
)

const catalog = `questions:
  - {type: initial, question: "Introduce yourself in two sentences.", follow_up_trigger: introduction}
  - {type: initial, question: "Describe your last project.", follow_up_trigger: project}
`

func TestNewInMemory(t *testing.T) {
	t.Parallel()
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/etc/questions.yaml", []byte(catalog), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}

	cfg := config.Default()
	cfg.Questions.Path = "/etc/questions.yaml"
	cfg.Classifier.CorpusPath = "/etc/missing-corpus.yaml"
	cfg.Janitor.Schedule = ""

	a, err := New(context.Background(), cfg, &config.Secrets{JWTSecret: "secret"}, zap.NewNop(), WithFs(fs))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	started, err := a.Interview.StartSession(context.Background(), "user_alice", model.ModeText)
	if err != nil {
		t.Fatalf("StartSession: %v", err)
	}
	if started.FirstQuestion != "Introduce yourself in two sentences." {
		t.Fatalf("first question = %q, catalog file not used", started.FirstQuestion)
	}
	if started.TotalQuestions != cfg.Interview.MaxQuestions {
		t.Fatalf("total questions = %d, want %d", started.TotalQuestions, cfg.Interview.MaxQuestions)
	}

	if a.Router() == nil {
		t.Fatal("Router returned nil")
	}
	if err := a.Janitor.Start(); err != nil {
		t.Fatalf("disabled janitor Start: %v", err)
	}
	a.Janitor.Stop()

	if err := a.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := a.Close(context.Background()); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestNewAudioOnSeparateFs(t *testing.T) {
	t.Parallel()
	catalogFs := afero.NewMemMapFs()
	audioFs := afero.NewMemMapFs()

	cfg := config.Default()
	cfg.Audio.Dir = "/spool"

	a, err := New(context.Background(), cfg, &config.Secrets{JWTSecret: "secret"}, zap.NewNop(), WithFs(catalogFs), WithAudioFs(audioFs))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close(context.Background())

	if ok, _ := afero.DirExists(audioFs, "/spool"); !ok {
		t.Fatal("audio directory not created on the audio filesystem")
	}
	if ok, _ := afero.DirExists(catalogFs, "/spool"); ok {
		t.Fatal("audio directory created on the catalog filesystem")
	}
}
