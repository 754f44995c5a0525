package model

// AnswerDetail is one row of the ordered answer list in SessionStats
type AnswerDetail struct {
	Ordinal   int     `json:"questionNumber"`
	Question  string  `json:"question"`
	Response  string  `json:"response"`
	Sentiment string  `json:"sentiment"`
	Category  string  `json:"category"`
	Score     float64 `json:"score"`
}

// SessionStats is the aggregate read model of a session
type SessionStats struct {
	SessionID             string         `json:"sessionId"`
	TotalQuestions        int            `json:"total_questions"`
	AverageScore          float64        `json:"average_score"`
	AverageResponseLength float64        `json:"average_response_length"`
	SentimentDistribution map[string]int `json:"sentiment_distribution"`
	CategoryDistribution  map[string]int `json:"category_distribution"`
	ResponseLengths       []int          `json:"response_lengths"`
	DetailedResponses     []AnswerDetail `json:"detailed_responses"`
	Completed             bool           `json:"completed"`
	Mode                  Mode           `json:"interview_mode"`
}

// BuildStats aggregates a session snapshot and its ordered answers
func BuildStats(sess *Session, answers []*Answer) *SessionStats {
	stats := &SessionStats{
		SessionID:             sess.ID,
		TotalQuestions:        sess.QuestionCount,
		AverageScore:          sess.AverageScore(),
		SentimentDistribution: make(map[string]int),
		CategoryDistribution:  make(map[string]int),
		ResponseLengths:       make([]int, 0, len(answers)),
		DetailedResponses:     make([]AnswerDetail, 0, len(answers)),
		Completed:             sess.Completed,
		Mode:                  sess.Mode,
	}

	totalWords := 0
	for _, a := range answers {
		if a.Sentiment != "" {
			stats.SentimentDistribution[a.Sentiment]++
		}
		if a.Category != "" {
			stats.CategoryDistribution[a.Category]++
		}
		words := a.WordCount()
		stats.ResponseLengths = append(stats.ResponseLengths, words)
		totalWords += words

		stats.DetailedResponses = append(stats.DetailedResponses, AnswerDetail{
			Ordinal:   a.Ordinal,
			Question:  a.Question,
			Response:  a.Response,
			Sentiment: a.Sentiment,
			Category:  a.Category,
			Score:     a.Score,
		})
	}
	if len(answers) > 0 {
		stats.AverageResponseLength = float64(totalWords) / float64(len(answers))
	}
	return stats
}
