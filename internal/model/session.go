package model

import "time"

// Mode is the answer medium chosen when the interview starts
type Mode string

const (
	ModeText  Mode = "text"
	ModeAudio Mode = "audio"
)

// ParseMode maps a client value to a Mode, defaulting to text
func ParseMode(v string) Mode {
	if Mode(v) == ModeAudio {
		return ModeAudio
	}
	return ModeText
}

// Session is the per-interview mutable record.
// Completed is true iff QuestionCount has reached the interview length.
type Session struct {
	ID              string     `json:"id" bson:"_id"`
	UserID          string     `json:"userId" bson:"userId"`
	Mode            Mode       `json:"interviewMode" bson:"interviewMode"`
	QuestionCount   int        `json:"questionCount" bson:"questionCount"`
	TotalScore      float64    `json:"totalScore" bson:"totalScore"`
	Completed       bool       `json:"completed" bson:"completed"`
	LastCategory    string     `json:"lastCategory,omitempty" bson:"lastCategory,omitempty"`
	CategoriesAsked []string   `json:"categoriesAsked" bson:"categoriesAsked"` // insertion order = selection order
	PendingQuestion string     `json:"pendingQuestion,omitempty" bson:"pendingQuestion,omitempty"`
	StartedAt       time.Time  `json:"startedAt" bson:"startedAt"`
	UpdatedAt       time.Time  `json:"updatedAt" bson:"updatedAt"`
	CompletedAt     *time.Time `json:"completedAt,omitempty" bson:"completedAt,omitempty"`
}

// HasAskedCategory reports whether the category was already used
func (s *Session) HasAskedCategory(category string) bool {
	for _, c := range s.CategoriesAsked {
		if c == category {
			return true
		}
	}
	return false
}

// MarkCategory records a newly used category and makes it the last one.
// Returns false when the category was already present.
func (s *Session) MarkCategory(category string) bool {
	if category == "" || s.HasAskedCategory(category) {
		return false
	}
	s.CategoriesAsked = append(s.CategoriesAsked, category)
	s.LastCategory = category
	return true
}

// AverageScore returns TotalScore/QuestionCount, or 0 before the first answer
func (s *Session) AverageScore() float64 {
	if s.QuestionCount == 0 {
		return 0
	}
	return s.TotalScore / float64(s.QuestionCount)
}

// Clone returns a deep copy safe to mutate
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.CategoriesAsked = append([]string(nil), s.CategoriesAsked...)
	if s.CompletedAt != nil {
		t := *s.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}

// SessionSummary is the list view of a session
type SessionSummary struct {
	ID            string    `json:"id"`
	StartedAt     time.Time `json:"startTime"`
	QuestionCount int       `json:"questionCount"`
	AverageScore  float64   `json:"totalScore"`
	Completed     bool      `json:"completed"`
	Mode          Mode      `json:"interviewMode"`
}
