package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func newViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	BindEnv(v)
	return v
}

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(newViper())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Interview.MaxQuestions != 10 {
		t.Fatalf("expected 10 questions, got %d", cfg.Interview.MaxQuestions)
	}
	if cfg.Storage.Backend != StorageMemory || cfg.Audio.Backend != AudioFS {
		t.Fatalf("unexpected backends %+v %+v", cfg.Storage, cfg.Audio)
	}
	if cfg.Lock.Wait != 5*time.Second || cfg.Audio.Timeout != 20*time.Second {
		t.Fatalf("durations not decoded: %+v %+v", cfg.Lock, cfg.Audio)
	}
}

func TestLoadFromYAML(t *testing.T) {
	t.Parallel()

	v := newViper()
	v.SetConfigType("yaml")
	err := v.ReadConfig(strings.NewReader(`
storage:
  backend: mongo
  database: interviews
audio:
  backend: gridfs
  timeout: 45s
interview:
  max_questions: 12
janitor:
  stale_after: 72h
`))
	if err != nil {
		t.Fatalf("ReadConfig: %v", err)
	}

	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage.Database != "interviews" || cfg.Interview.MaxQuestions != 12 {
		t.Fatalf("yaml values not applied: %+v", cfg)
	}
	if cfg.Audio.Timeout != 45*time.Second || cfg.Janitor.StaleAfter != 72*time.Hour {
		t.Fatalf("yaml durations not applied: %+v %+v", cfg.Audio, cfg.Janitor)
	}
	if cfg.Audio.Workers != 2 {
		t.Fatalf("unset keys should keep defaults, got %d workers", cfg.Audio.Workers)
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("MOCKINTERVIEW_INTERVIEW_MAX_QUESTIONS", "5")
	t.Setenv("MOCKINTERVIEW_HTTP_ADDR", ":9090")

	cfg, err := Load(newViper())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Interview.MaxQuestions != 5 || cfg.HTTP.Addr != ":9090" {
		t.Fatalf("env overrides not applied: %+v %+v", cfg.Interview, cfg.HTTP)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		key    string
		value  interface{}
		expect string
	}{
		{"unknown storage", "storage.backend", "postgres", "storage.backend"},
		{"gridfs without mongo", "audio.backend", "gridfs", "requires storage.backend mongo"},
		{"mongo questions without mongo", "questions.source", "mongo", "requires storage.backend mongo"},
		{"zero questions", "interview.max_questions", 0, "max_questions"},
		{"zero workers", "audio.workers", 0, "audio.workers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			v := newViper()
			v.Set(tt.key, tt.value)
			_, err := Load(v)
			if err == nil || !strings.Contains(err.Error(), tt.expect) {
				t.Fatalf("expected error containing %q, got %v", tt.expect, err)
			}
		})
	}
}

func TestLoadSecrets(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("REDIS_ADDR", "redis:6379")

	s, err := LoadSecrets()
	if err != nil {
		t.Fatalf("LoadSecrets: %v", err)
	}
	if s.JWTSecret != "s3cret" || s.RedisAddr != "redis:6379" {
		t.Fatalf("unexpected secrets %+v", s)
	}
	if s.MongoURI == "" {
		t.Fatalf("MongoURI should fall back to its default")
	}
}

func TestLoadDotEnvSkipsMissingFile(t *testing.T) {
	t.Parallel()

	if err := LoadDotEnv("does-not-exist.env"); err != nil {
		t.Fatalf("missing dotenv file should be skipped: %v", err)
	}
}

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()
	cfg := Default()
	if cfg.Storage.Backend != StorageMemory || cfg.Audio.Backend != AudioFS {
		t.Fatalf("Default backends = %q/%q", cfg.Storage.Backend, cfg.Audio.Backend)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}
