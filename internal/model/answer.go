package model

import (
	"fmt"
	"strings"
	"time"
)

// InputType is the medium of a single answer
type InputType string

const (
	InputText  InputType = "text"
	InputAudio InputType = "audio"
)

// Sentiment labels produced by the classifiers
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
)

// CategoryGeneral is the fallback topic label
const CategoryGeneral = "general"

// Answer is one submitted answer. Created once, in increasing Ordinal order.
type Answer struct {
	ID         string    `json:"id" bson:"_id"`
	SessionID  string    `json:"sessionId" bson:"sessionId"`
	Ordinal    int       `json:"questionNumber" bson:"ordinal"`
	Question   string    `json:"question" bson:"question"`
	Response   string    `json:"response" bson:"response"`                     // text, or placeholder for audio
	AudioKey   string    `json:"audioKey,omitempty" bson:"audioKey,omitempty"` // artifact reference
	InputType  InputType `json:"inputType" bson:"inputType"`
	Sentiment  string    `json:"sentiment" bson:"sentiment"`
	Category   string    `json:"category" bson:"category"`
	Score      float64   `json:"score" bson:"score"`
	Degraded   bool      `json:"degraded,omitempty" bson:"degraded,omitempty"` // a classifier fell back to defaults
	AnsweredAt time.Time `json:"timestamp" bson:"answeredAt"`
}

// WordCount counts whitespace separated words of the stored response
func (a *Answer) WordCount() int {
	return len(strings.Fields(a.Response))
}

// AudioPlaceholder is the response text stored for spoken answers
func AudioPlaceholder(ordinal int) string {
	return fmt.Sprintf("[Audio Response for Question %d]", ordinal)
}
