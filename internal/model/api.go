package model

// StartSessionRequest is the body of POST /v1/interviews
type StartSessionRequest struct {
	Mode string `json:"mode"`
}

// StartSessionResponse is returned when an interview starts
type StartSessionResponse struct {
	SessionID      string `json:"session_id"`
	FirstQuestion  string `json:"next_question"`
	QuestionNumber int    `json:"question_number"`
	TotalQuestions int    `json:"total_questions"`
	Mode           Mode   `json:"interview_mode"`
}

// SubmitAnswerRequest carries one answer. Audio is the raw WAV payload.
type SubmitAnswerRequest struct {
	SessionID string    `json:"session_id"`
	Question  string    `json:"current_question"`
	Response  string    `json:"response"`
	InputType InputType `json:"inputType"`
	Audio     []byte    `json:"-"`
}

// SubmitAnswerResponse is the outcome of a submission. Exactly one of
// NextQuestion and Stats is set, depending on Completed.
type SubmitAnswerResponse struct {
	Completed      bool          `json:"completed"`
	NextQuestion   string        `json:"next_question,omitempty"`
	QuestionNumber int           `json:"question_number,omitempty"`
	Stats          *SessionStats `json:"stats,omitempty"`
	Sentiment      string        `json:"sentiment"`
	Category       string        `json:"category"`
	Score          float64       `json:"score"`
}

// SessionDetail is the full view of one session
type SessionDetail struct {
	Session *Session  `json:"session"`
	Answers []*Answer `json:"responses"`
}

// NextQuestionResponse is the pending question of a session
type NextQuestionResponse struct {
	SessionID      string `json:"session_id"`
	Question       string `json:"next_question"`
	QuestionNumber int    `json:"question_number"`
	Completed      bool   `json:"completed"`
}
