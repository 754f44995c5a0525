package scheduler

import (
	"math/rand/v2"
	"sync"

	"mockinterview/internal/model"
	"mockinterview/internal/questionbank"
)

// ClosingPrompt is returned once every question in the bank has been asked
const ClosingPrompt = "Thank you for your responses. Do you have any questions for me?"

// Step tells which rule produced a selection
type Step int

const (
	StepOpening     Step = iota // no session history yet
	StepNewCategory             // weighted draw over unused categories
	StepFollowUp                // follow-up for the last category
	StepAny                     // any unasked question
	StepClosing                 // bank exhausted
)

func (s Step) String() string {
	switch s {
	case StepOpening:
		return "opening"
	case StepNewCategory:
		return "new_category"
	case StepFollowUp:
		return "follow_up"
	case StepAny:
		return "any"
	case StepClosing:
		return "closing"
	default:
		return "unknown"
	}
}

// Selection is the outcome of one scheduling decision.
// Category is set only when the session must record it (StepOpening, StepNewCategory).
type Selection struct {
	Question string
	Step     Step
	Category string
}

// Apply records the selection's category bookkeeping on sess
func (sel Selection) Apply(sess *model.Session) bool {
	if sel.Category == "" {
		return false
	}
	return sess.MarkCategory(sel.Category)
}

// WeightedCategory is one entry of the priority list
type WeightedCategory struct {
	Name   string
	Weight int
}

// DefaultPriorities is the category order used to steer an interview
var DefaultPriorities = []WeightedCategory{
	{"introduction", 2},
	{"strengths", 2},
	{"experience", 2},
	{"project", 2},
	{"goals", 1},
	{"motivation", 1},
	{"teamwork", 1},
	{"leadership", 1},
	{"problem_solving", 1},
	{"learning", 1},
	{"stress", 1},
	{"company", 1},
	{"task_management", 1},
}

// NewRand returns a deterministic random source for the given seed
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Scheduler picks the next question for a session. It never mutates the
// session itself; callers apply Selection inside their own transaction.
type Scheduler struct {
	bank       *questionbank.Bank
	priorities []WeightedCategory

	mu  sync.Mutex // guards rng
	rng *rand.Rand
}

type Option func(*Scheduler)

// WithPriorities overrides the category priority list
func WithPriorities(p []WeightedCategory) Option {
	return func(s *Scheduler) {
		s.priorities = append([]WeightedCategory(nil), p...)
	}
}

// New creates a scheduler over bank. A nil rng uses an unseeded source.
func New(bank *questionbank.Bank, rng *rand.Rand, opts ...Option) *Scheduler {
	if bank == nil {
		bank = questionbank.Fallback()
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	s := &Scheduler{
		bank:       bank,
		priorities: DefaultPriorities,
		rng:        rng,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Bank exposes the catalog the scheduler draws from
func (s *Scheduler) Bank() *questionbank.Bank {
	return s.bank
}

// First returns the opening question of a new interview
func (s *Scheduler) First() Selection {
	sel := Selection{Question: s.bank.Opening(), Step: StepOpening}
	if r, ok := s.bank.Lookup(sel.Question); ok && r.TriggerCategory == questionbank.IntroductionCategory {
		sel.Category = questionbank.IntroductionCategory
	}
	return sel
}

// Next chooses the question following the session's history.
// asked holds every question text already answered in the session.
func (s *Scheduler) Next(sess *model.Session, asked []string) Selection {
	if sess == nil {
		return s.First()
	}

	exclude := make(map[string]bool, len(asked))
	for _, q := range asked {
		exclude[q] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if pool := s.weightedPool(sess); len(pool) > 0 {
		category := pool[s.rng.IntN(len(pool))]
		candidates := s.bank.Filter(model.QuestionTypeInitial, category, exclude)
		if len(candidates) > 0 {
			return Selection{
				Question: s.pick(candidates),
				Step:     StepNewCategory,
				Category: category,
			}
		}
	}

	if sess.LastCategory != "" {
		candidates := s.bank.Filter(model.QuestionTypeFollowUp, sess.LastCategory, exclude)
		if len(candidates) > 0 {
			return Selection{Question: s.pick(candidates), Step: StepFollowUp}
		}
	}

	if candidates := s.bank.Filter("", "", exclude); len(candidates) > 0 {
		return Selection{Question: s.pick(candidates), Step: StepAny}
	}

	return Selection{Question: ClosingPrompt, Step: StepClosing}
}

// weightedPool repeats every unused category by its weight
func (s *Scheduler) weightedPool(sess *model.Session) []string {
	var pool []string
	for _, c := range s.priorities {
		if sess.HasAskedCategory(c.Name) {
			continue
		}
		for i := 0; i < c.Weight; i++ {
			pool = append(pool, c.Name)
		}
	}
	return pool
}

func (s *Scheduler) pick(candidates []model.QuestionRecord) string {
	return candidates[s.rng.IntN(len(candidates))].Text
}
