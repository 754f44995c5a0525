package questionbank

import (
	"errors"
	"fmt"
	"strings"

	"mockinterview/internal/model"
)

// FallbackQuestion is served when no catalog could be loaded
const FallbackQuestion = "Tell me about yourself."

// IntroductionCategory is the trigger category of the opening question
const IntroductionCategory = "introduction"

var ErrEmptyBank = errors.New("question bank is empty")

// Bank is the immutable question catalog. Safe for concurrent reads.
type Bank struct {
	records []model.QuestionRecord
	byText  map[string]int
}

// New validates records and builds a bank. Duplicate texts are rejected.
func New(records []model.QuestionRecord) (*Bank, error) {
	b := &Bank{
		records: make([]model.QuestionRecord, 0, len(records)),
		byText:  make(map[string]int, len(records)),
	}
	for i, r := range records {
		r.Text = strings.TrimSpace(r.Text)
		r.TriggerCategory = strings.TrimSpace(r.TriggerCategory)
		if !r.IsValid() {
			return nil, fmt.Errorf("question %d: invalid record (type=%q, text=%q)", i, r.Type, r.Text)
		}
		if _, dup := b.byText[r.Text]; dup {
			return nil, fmt.Errorf("question %d: duplicate text %q", i, r.Text)
		}
		b.byText[r.Text] = len(b.records)
		b.records = append(b.records, r)
	}
	if len(b.records) == 0 {
		return nil, ErrEmptyBank
	}
	return b, nil
}

// Fallback returns the single built-in question bank
func Fallback() *Bank {
	b, _ := New([]model.QuestionRecord{{
		Type:            model.QuestionTypeInitial,
		Text:            FallbackQuestion,
		TriggerCategory: IntroductionCategory,
	}})
	return b
}

// Len returns the number of questions
func (b *Bank) Len() int {
	return len(b.records)
}

// All returns a copy of every record in catalog order
func (b *Bank) All() []model.QuestionRecord {
	return append([]model.QuestionRecord(nil), b.records...)
}

// Lookup finds a record by its text
func (b *Bank) Lookup(text string) (model.QuestionRecord, bool) {
	i, ok := b.byText[strings.TrimSpace(text)]
	if !ok {
		return model.QuestionRecord{}, false
	}
	return b.records[i], true
}

// Filter returns records of the given type and trigger category (empty
// means any) whose text is not in exclude, in catalog order.
func (b *Bank) Filter(qType model.QuestionType, category string, exclude map[string]bool) []model.QuestionRecord {
	var out []model.QuestionRecord
	for _, r := range b.records {
		if qType != "" && r.Type != qType {
			continue
		}
		if category != "" && r.TriggerCategory != category {
			continue
		}
		if exclude[r.Text] {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Opening returns the first initial introduction question, or the literal
// fallback when the catalog has none.
func (b *Bank) Opening() string {
	intro := b.Filter(model.QuestionTypeInitial, IntroductionCategory, nil)
	if len(intro) == 0 {
		return FallbackQuestion
	}
	return intro[0].Text
}
