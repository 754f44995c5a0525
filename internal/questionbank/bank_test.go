package questionbank

import (
	"errors"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"mockinterview/internal/model"
)

func TestDefaultCatalog(t *testing.T) {
	t.Parallel()

	bank, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if got := bank.Opening(); got != FallbackQuestion {
		t.Fatalf("expected opening %q, got %q", FallbackQuestion, got)
	}

	categories := map[string]bool{}
	for _, r := range bank.Filter(model.QuestionTypeInitial, "", nil) {
		categories[r.TriggerCategory] = true
	}
	for _, c := range []string{"introduction", "strengths", "experience", "project", "goals", "motivation",
		"teamwork", "leadership", "problem_solving", "learning", "stress", "company", "task_management"} {
		if !categories[c] {
			t.Fatalf("expected an initial question for %q", c)
		}
	}
}

func TestNewRejectsInvalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		records []model.QuestionRecord
	}{
		{name: "empty", records: nil},
		{name: "missing text", records: []model.QuestionRecord{{Type: model.QuestionTypeInitial}}},
		{name: "unknown type", records: []model.QuestionRecord{{Type: "bonus", Text: "x"}}},
		{name: "duplicate", records: []model.QuestionRecord{
			{Type: model.QuestionTypeInitial, Text: "Q"},
			{Type: model.QuestionTypeFollowUp, Text: " Q "},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := New(tt.records); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestFilterAndLookup(t *testing.T) {
	t.Parallel()

	bank, err := New([]model.QuestionRecord{
		{Type: model.QuestionTypeInitial, Text: "A", TriggerCategory: "goals"},
		{Type: model.QuestionTypeFollowUp, Text: "B", TriggerCategory: "goals"},
		{Type: model.QuestionTypeFollowUp, Text: "C", TriggerCategory: "goals"},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	got := bank.Filter(model.QuestionTypeFollowUp, "goals", map[string]bool{"B": true})
	if len(got) != 1 || got[0].Text != "C" {
		t.Fatalf("unexpected filter result: %+v", got)
	}
	if r, ok := bank.Lookup("A"); !ok || r.TriggerCategory != "goals" {
		t.Fatalf("lookup failed: %+v %v", r, ok)
	}
	if _, ok := bank.Lookup("missing"); ok {
		t.Fatalf("expected miss")
	}
	if bank.Opening() != FallbackQuestion {
		t.Fatalf("expected literal fallback opening without introduction question")
	}
}

func TestLoadFileCSV(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	csv := "type,question,follow_up_trigger\n" +
		"initial,Tell me about yourself.,introduction\n" +
		"follow_up,\"Why, exactly?\",introduction\n"
	if err := afero.WriteFile(fs, "/bank.csv", []byte(csv), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	bank, err := LoadFile(fs, "/bank.csv")
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if bank.Len() != 2 {
		t.Fatalf("expected 2 questions, got %d", bank.Len())
	}
	r, ok := bank.Lookup("Why, exactly?")
	if !ok || r.Type != model.QuestionTypeFollowUp || r.TriggerCategory != "introduction" {
		t.Fatalf("unexpected record: %+v", r)
	}
}

func TestLoadFileYAML(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	doc := strings.Join([]string{
		"questions:",
		"  - type: initial",
		"    question: What motivates you?",
		"    follow_up_trigger: motivation",
	}, "\n")
	if err := afero.WriteFile(fs, "/bank.yml", []byte(doc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	bank, err := LoadFile(fs, "/bank.yml")
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if bank.Len() != 1 {
		t.Fatalf("expected 1 question, got %d", bank.Len())
	}

	if _, err := LoadFile(fs, "/bank.json"); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}

func TestLoadDegrades(t *testing.T) {
	t.Parallel()

	failing := func() ([]model.QuestionRecord, error) { return nil, errors.New("mongo down") }
	invalid := func() ([]model.QuestionRecord, error) { return nil, nil }
	good := func() ([]model.QuestionRecord, error) {
		return []model.QuestionRecord{{Type: model.QuestionTypeInitial, Text: "Only", TriggerCategory: "introduction"}}, nil
	}

	bank := Load(zap.NewNop(), failing, invalid, good)
	if bank.Len() != 1 || bank.Opening() != "Only" {
		t.Fatalf("expected the first working source, got %d questions", bank.Len())
	}

	bank = Load(zap.NewNop(), failing, FileSource(afero.NewMemMapFs(), "/missing.yaml"))
	def, _ := Default()
	if bank.Len() != def.Len() {
		t.Fatalf("expected embedded catalog, got %d questions", bank.Len())
	}
}

func TestFallback(t *testing.T) {
	t.Parallel()

	bank := Fallback()
	if bank.Len() != 1 || bank.Opening() != FallbackQuestion {
		t.Fatalf("unexpected fallback bank")
	}
}
