package service

// Session events pushed to live listeners
const (
	EventAnswerScored       = "answer_scored"
	EventNextQuestion       = "next_question"
	EventInterviewCompleted = "interview_completed"
	EventSessionDeleted     = "session_deleted"
)

// Broadcaster interface for WebSocket broadcasting (avoids import cycle)
type Broadcaster interface {
	Publish(sessionID string, msgType string, payload interface{})
	CloseSession(sessionID string)
}

type noopBroadcaster struct{}

func (noopBroadcaster) Publish(string, string, interface{}) {}

func (noopBroadcaster) CloseSession(string) {}

// AnswerScoredPayload is sent after every stored answer
type AnswerScoredPayload struct {
	QuestionNumber int     `json:"question_number"`
	Question       string  `json:"question"`
	Sentiment      string  `json:"sentiment"`
	Category       string  `json:"category"`
	Score          float64 `json:"score"`
	Degraded       bool    `json:"degraded,omitempty"`
}

// NextQuestionPayload announces the pending question
type NextQuestionPayload struct {
	Question       string `json:"question"`
	QuestionNumber int    `json:"question_number"`
}
