package model

// QuestionType defines where a question sits in the interview flow
type QuestionType string

const (
	QuestionTypeInitial  QuestionType = "initial"   // Opens a category
	QuestionTypeFollowUp QuestionType = "follow_up" // Digs into the last category
)

// QuestionRecord is one entry of the static question bank.
// Text is unique within a bank and doubles as the question identity.
type QuestionRecord struct {
	ID              string       `json:"id" bson:"_id,omitempty" yaml:"id" mapstructure:"id"`
	Text            string       `json:"question" bson:"question" yaml:"question" mapstructure:"question"`
	Type            QuestionType `json:"type" bson:"type" yaml:"type" mapstructure:"type"`
	TriggerCategory string       `json:"followUpTrigger" bson:"followUpTrigger" yaml:"follow_up_trigger" mapstructure:"follow_up_trigger"`
}

// IsValid reports whether the record can be served
func (q QuestionRecord) IsValid() bool {
	if q.Text == "" {
		return false
	}
	return q.Type == QuestionTypeInitial || q.Type == QuestionTypeFollowUp
}
