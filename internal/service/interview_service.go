package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"mockinterview/internal/artifact"
	"mockinterview/internal/cache"
	"mockinterview/internal/classifier"
	"mockinterview/internal/logger"
	"mockinterview/internal/model"
	"mockinterview/internal/repository"
	"mockinterview/internal/scheduler"
	"mockinterview/internal/scoring"
)

// DefaultMaxQuestions is the interview length
const DefaultMaxQuestions = 10

const cleanupTimeout = 5 * time.Second

// InterviewService owns every change to sessions and their answers
type InterviewService struct {
	store       repository.Store
	artifacts   artifact.Store
	locks       cache.SessionLock
	statsCache  cache.StatsCache
	scheduler   *scheduler.Scheduler
	text        *classifier.TextClassifier
	audio       *classifier.AudioClassifier
	extractor   *ExtractionPool
	broadcaster Broadcaster
	logger      *zap.Logger

	maxQuestions int
	now          func() time.Time
}

// NewInterviewService creates a new interview service
func NewInterviewService(
	store repository.Store,
	artifacts artifact.Store,
	locks cache.SessionLock,
	sched *scheduler.Scheduler,
	text *classifier.TextClassifier,
	audio *classifier.AudioClassifier,
	extractor *ExtractionPool,
	logger *zap.Logger,
	maxQuestions int,
) *InterviewService {
	if maxQuestions <= 0 {
		maxQuestions = DefaultMaxQuestions
	}
	return &InterviewService{
		store:        store,
		artifacts:    artifacts,
		locks:        locks,
		statsCache:   cache.NewNoopStatsCache(),
		scheduler:    sched,
		text:         text,
		audio:        audio,
		extractor:    extractor,
		broadcaster:  noopBroadcaster{},
		logger:       logger,
		maxQuestions: maxQuestions,
		now:          time.Now,
	}
}

// SetBroadcaster sets the broadcaster for WebSocket events
func (s *InterviewService) SetBroadcaster(b Broadcaster) {
	if b == nil {
		b = noopBroadcaster{}
	}
	s.broadcaster = b
}

// SetStatsCache enables caching of completed session stats
func (s *InterviewService) SetStatsCache(c cache.StatsCache) {
	if c == nil {
		c = cache.NewNoopStatsCache()
	}
	s.statsCache = c
}

// MaxQuestions returns the number of answers that completes an interview
func (s *InterviewService) MaxQuestions() int {
	return s.maxQuestions
}

// StartSession creates an empty session and returns its opening question
func (s *InterviewService) StartSession(ctx context.Context, userID string, mode model.Mode) (*model.StartSessionResponse, error) {
	if userID == "" {
		return nil, invalid("user id is required")
	}

	now := s.now().UTC()
	first := s.scheduler.First()
	sess := &model.Session{
		ID:              uuid.New().String(),
		UserID:          userID,
		Mode:            mode,
		CategoriesAsked: []string{},
		PendingQuestion: first.Question,
		StartedAt:       now,
		UpdatedAt:       now,
	}
	first.Apply(sess)

	if err := s.store.CreateSession(ctx, sess); err != nil {
		s.logger.Error("failed to create session", zap.String("user_id", userID), zap.Error(err))
		return nil, storageErr("start session", err)
	}

	s.logger.Info("interview started",
		zap.String("session_id", sess.ID),
		zap.String("user_id", userID),
		zap.String("mode", string(mode)),
	)

	return &model.StartSessionResponse{
		SessionID:      sess.ID,
		FirstQuestion:  first.Question,
		QuestionNumber: 1,
		TotalQuestions: s.maxQuestions,
		Mode:           mode,
	}, nil
}

// SubmitAnswer classifies and scores one answer, then records it together
// with the session counters and the next question in one transaction.
func (s *InterviewService) SubmitAnswer(ctx context.Context, userID string, req *model.SubmitAnswerRequest) (*model.SubmitAnswerResponse, error) {
	if req == nil || req.SessionID == "" {
		return nil, invalid("session_id is required")
	}
	inputType := req.InputType
	if inputType == "" {
		inputType = model.InputText
	}
	switch inputType {
	case model.InputText:
	case model.InputAudio:
		if len(req.Audio) == 0 {
			return nil, invalid("audio payload is empty")
		}
	default:
		return nil, invalid("unknown input type %q", req.InputType)
	}

	release, err := s.acquire(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	defer release()

	sess, err := s.ownedSession(ctx, s.store, userID, req.SessionID)
	if err != nil {
		return nil, s.mapErr("load session", err)
	}
	if sess.Completed {
		return nil, ErrAlreadyCompleted
	}

	// The stored pending question wins over the client's copy.
	question := sess.PendingQuestion
	if claimed := strings.TrimSpace(req.Question); claimed != "" && claimed != question {
		if question == "" {
			question = claimed
		} else {
			s.logger.Debug("client question differs from pending question",
				zap.String("session_id", sess.ID),
				zap.String("claimed", logger.TruncateForLog(claimed, 120)),
				zap.String("pending", question),
			)
		}
	}

	answer := &model.Answer{
		ID:         uuid.New().String(),
		SessionID:  sess.ID,
		Ordinal:    sess.QuestionCount + 1,
		Question:   question,
		InputType:  inputType,
		AnsweredAt: s.now().UTC(),
	}

	if inputType == model.InputAudio {
		key := artifact.Key(sess.ID, answer.Ordinal)
		if err := s.artifacts.Put(ctx, key, req.Audio); err != nil {
			s.logger.Error("failed to store audio", zap.String("session_id", sess.ID), zap.String("key", key), zap.Error(err))
			return nil, storageErr("store audio", err)
		}
		answer.AudioKey = key
		s.scoreAudio(ctx, answer, req.Audio)
	} else {
		answer.Response = req.Response
		s.scoreText(answer)
	}

	var (
		updated *model.Session
		next    scheduler.Selection
		stats   *model.SessionStats
	)
	err = s.store.WithTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		updated, stats = nil, nil

		cur, err := tx.GetSession(ctx, sess.ID)
		if err != nil {
			return err
		}
		if cur.Completed {
			return ErrAlreadyCompleted
		}
		if cur.QuestionCount != sess.QuestionCount {
			return ErrSessionBusy
		}
		if err := tx.InsertAnswer(ctx, answer); err != nil {
			return err
		}
		answers, err := tx.ListAnswers(ctx, cur.ID)
		if err != nil {
			return err
		}

		cur.QuestionCount++
		cur.TotalScore += answer.Score
		cur.UpdatedAt = answer.AnsweredAt

		if cur.QuestionCount >= s.maxQuestions {
			completedAt := answer.AnsweredAt
			cur.Completed = true
			cur.CompletedAt = &completedAt
			cur.PendingQuestion = ""
			stats = model.BuildStats(cur, answers)
		} else {
			asked := make([]string, 0, len(answers))
			for _, a := range answers {
				asked = append(asked, a.Question)
			}
			next = s.scheduler.Next(cur, asked)
			next.Apply(cur)
			cur.PendingQuestion = next.Question
		}

		if err := tx.UpdateSession(ctx, cur); err != nil {
			return err
		}
		updated = cur
		return nil
	})
	if err != nil {
		if answer.AudioKey != "" {
			s.discardArtifact(ctx, answer.AudioKey)
		}
		return nil, s.mapErr("record answer", err)
	}

	fields := append(logger.Answer(sess.ID, answer.Ordinal, answer.Response),
		zap.String("input_type", string(answer.InputType)),
		zap.String("sentiment", answer.Sentiment),
		zap.String("category", answer.Category),
		zap.Float64("score", answer.Score),
		zap.Bool("completed", updated.Completed),
	)
	if !updated.Completed {
		fields = append(fields, zap.Stringer("next_step", next.Step))
	}
	s.logger.Info("answer recorded", fields...)

	resp := &model.SubmitAnswerResponse{
		Completed: updated.Completed,
		Sentiment: answer.Sentiment,
		Category:  answer.Category,
		Score:     answer.Score,
	}

	s.broadcaster.Publish(sess.ID, EventAnswerScored, AnswerScoredPayload{
		QuestionNumber: answer.Ordinal,
		Question:       answer.Question,
		Sentiment:      answer.Sentiment,
		Category:       answer.Category,
		Score:          answer.Score,
		Degraded:       answer.Degraded,
	})

	if updated.Completed {
		resp.Stats = stats
		if err := s.statsCache.Set(ctx, stats); err != nil {
			s.logger.Warn("failed to cache stats", zap.String("session_id", sess.ID), zap.Error(err))
		}
		s.broadcaster.Publish(sess.ID, EventInterviewCompleted, stats)
		return resp, nil
	}

	resp.NextQuestion = next.Question
	resp.QuestionNumber = updated.QuestionCount + 1
	s.broadcaster.Publish(sess.ID, EventNextQuestion, NextQuestionPayload{
		Question:       next.Question,
		QuestionNumber: resp.QuestionNumber,
	})
	return resp, nil
}

func (s *InterviewService) scoreText(answer *model.Answer) {
	sentiment := s.text.Sentiment(answer.Response)
	category := s.text.Category(answer.Response)

	answer.Sentiment = sentiment.Value
	answer.Category = category.Value
	answer.Score = scoring.Text(answer.Response, sentiment.Value)

	s.noteDegraded(answer, "sentiment", sentiment.Degraded, sentiment.Cause)
	s.noteDegraded(answer, "category", category.Degraded, category.Cause)
}

func (s *InterviewService) scoreAudio(ctx context.Context, answer *model.Answer, wav []byte) {
	answer.Response = model.AudioPlaceholder(answer.Ordinal)

	features, err := s.extractor.Extract(ctx, wav)
	sentiment := s.audio.Sentiment(features, err)
	category := s.audio.Category(answer.Question)
	score := scoring.Audio(features, err)

	answer.Sentiment = sentiment.Value
	answer.Category = category.Value
	answer.Score = score.Value

	s.noteDegraded(answer, "audio_sentiment", sentiment.Degraded, sentiment.Cause)
	s.noteDegraded(answer, "audio_category", category.Degraded, category.Cause)
	s.noteDegraded(answer, "audio_score", score.Degraded, score.Cause)
}

func (s *InterviewService) noteDegraded(answer *model.Answer, stage string, degraded bool, cause error) {
	if !degraded {
		return
	}
	answer.Degraded = true
	s.logger.Warn("classification degraded to default",
		zap.String("session_id", answer.SessionID),
		zap.Int("ordinal", answer.Ordinal),
		zap.String("stage", stage),
		zap.Error(cause),
	)
}

// GetStats aggregates a session from one consistent snapshot
func (s *InterviewService) GetStats(ctx context.Context, userID, sessionID string) (*model.SessionStats, error) {
	var (
		stats  *model.SessionStats
		cached bool
	)
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		stats, cached = nil, false

		sess, err := s.ownedSession(ctx, tx, userID, sessionID)
		if err != nil {
			return err
		}
		if sess.Completed {
			if hit, err := s.statsCache.Get(ctx, sessionID); err == nil && hit != nil {
				stats, cached = hit, true
				return nil
			}
		}
		answers, err := tx.ListAnswers(ctx, sessionID)
		if err != nil {
			return err
		}
		stats = model.BuildStats(sess, answers)
		return nil
	})
	if err != nil {
		return nil, s.mapErr("get stats", err)
	}

	if stats.Completed && !cached {
		if err := s.statsCache.Set(ctx, stats); err != nil {
			s.logger.Warn("failed to cache stats", zap.String("session_id", sessionID), zap.Error(err))
		}
	}
	return stats, nil
}

// DeleteSession removes a session with its answers, then its audio artifacts
func (s *InterviewService) DeleteSession(ctx context.Context, userID, sessionID string) error {
	if sessionID == "" {
		return invalid("session id is required")
	}

	release, err := s.acquire(ctx, sessionID)
	if err != nil {
		return err
	}
	defer release()

	err = s.store.WithTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		if _, err := s.ownedSession(ctx, tx, userID, sessionID); err != nil {
			return err
		}
		return tx.DeleteSession(ctx, sessionID)
	})
	if err != nil {
		return s.mapErr("delete session", err)
	}

	s.afterDelete(ctx, sessionID)
	s.logger.Info("session deleted", zap.String("session_id", sessionID), zap.String("user_id", userID))
	return nil
}

// afterDelete clears everything kept outside the store. Artifacts that
// fail to delete are left to the janitor sweep.
func (s *InterviewService) afterDelete(ctx context.Context, sessionID string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()

	if n, err := s.artifacts.DeleteSession(ctx, sessionID); err != nil {
		s.logger.Warn("failed to delete session audio", zap.String("session_id", sessionID), zap.Error(err))
	} else if n > 0 {
		s.logger.Debug("session audio deleted", zap.String("session_id", sessionID), zap.Int("count", n))
	}
	if err := s.statsCache.Delete(ctx, sessionID); err != nil {
		s.logger.Warn("failed to drop cached stats", zap.String("session_id", sessionID), zap.Error(err))
	}

	s.broadcaster.Publish(sessionID, EventSessionDeleted, map[string]string{"session_id": sessionID})
	s.broadcaster.CloseSession(sessionID)
}

// ListSessions returns the caller's sessions, newest first
func (s *InterviewService) ListSessions(ctx context.Context, userID string) ([]model.SessionSummary, error) {
	sessions, err := s.store.ListSessionsByUser(ctx, userID)
	if err != nil {
		return nil, s.mapErr("list sessions", err)
	}

	out := make([]model.SessionSummary, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, model.SessionSummary{
			ID:            sess.ID,
			StartedAt:     sess.StartedAt,
			QuestionCount: sess.QuestionCount,
			AverageScore:  scoring.Round2(sess.AverageScore()),
			Completed:     sess.Completed,
			Mode:          sess.Mode,
		})
	}
	return out, nil
}

// GetSession returns a session with its ordered answers. Sessions of other
// users are reported as missing.
func (s *InterviewService) GetSession(ctx context.Context, userID, sessionID string) (*model.SessionDetail, error) {
	var detail *model.SessionDetail
	err := s.store.WithTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		sess, err := s.ownedSession(ctx, tx, userID, sessionID)
		if errors.Is(err, ErrUnauthorized) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		answers, err := tx.ListAnswers(ctx, sessionID)
		if err != nil {
			return err
		}
		detail = &model.SessionDetail{Session: sess, Answers: answers}
		return nil
	})
	if err != nil {
		return nil, s.mapErr("get session", err)
	}
	return detail, nil
}

// NextQuestion returns the question waiting for an answer
func (s *InterviewService) NextQuestion(ctx context.Context, userID, sessionID string) (*model.NextQuestionResponse, error) {
	sess, err := s.ownedSession(ctx, s.store, userID, sessionID)
	if err != nil {
		return nil, s.mapErr("next question", err)
	}

	resp := &model.NextQuestionResponse{
		SessionID:      sess.ID,
		Question:       sess.PendingQuestion,
		QuestionNumber: sess.QuestionCount + 1,
		Completed:      sess.Completed,
	}
	if sess.Completed {
		resp.Question = scheduler.ClosingPrompt
		resp.QuestionNumber = sess.QuestionCount
	} else if resp.Question == "" {
		resp.Question = s.scheduler.Bank().Opening()
	}
	return resp, nil
}

type sessionReader interface {
	GetSession(ctx context.Context, id string) (*model.Session, error)
}

func (s *InterviewService) ownedSession(ctx context.Context, r sessionReader, userID, sessionID string) (*model.Session, error) {
	if sessionID == "" {
		return nil, invalid("session id is required")
	}
	sess, err := r.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if sess.UserID != userID {
		return nil, ErrUnauthorized
	}
	return sess, nil
}

func (s *InterviewService) acquire(ctx context.Context, sessionID string) (func(), error) {
	release, err := s.locks.Acquire(ctx, sessionID)
	switch {
	case err == nil:
		return release, nil
	case errors.Is(err, cache.ErrLocked):
		return nil, ErrSessionBusy
	case ctx.Err() != nil:
		return nil, ctx.Err()
	default:
		s.logger.Error("failed to lock session", zap.String("session_id", sessionID), zap.Error(err))
		return nil, storageErr("lock session", err)
	}
}

// mapErr keeps service errors as they are and wraps the rest as storage failures
func (s *InterviewService) mapErr(op string, err error) error {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrAlreadyCompleted),
		errors.Is(err, ErrSessionBusy),
		errors.Is(err, ErrInvalidInput):
		return err
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%s: %w", op, err)
	}
	s.logger.Error("storage failure", zap.String("op", op), zap.Error(err))
	return storageErr(op, err)
}

func (s *InterviewService) discardArtifact(ctx context.Context, key string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()
	if err := s.artifacts.Delete(ctx, key); err != nil {
		s.logger.Warn("failed to discard audio of rejected answer", zap.String("key", key), zap.Error(err))
	}
}
