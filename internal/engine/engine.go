// Package engine assigns quizzes to students, scores their submissions and
// keeps their progress records. It has no knowledge of HTTP.
package engine

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/zaktec/haibl-sub000/internal/grading"
	"github.com/zaktec/haibl-sub000/internal/progress"
	"github.com/zaktec/haibl-sub000/internal/quiz"
)

type Engine struct {
	quizzes  quiz.Reader
	store    progress.Store
	scorer   grading.Scorer
	log      zerolog.Logger
	validate *validator.Validate
}

// New wires an engine. A nil scorer selects the exact-match scorer.
func New(quizzes quiz.Reader, store progress.Store, scorer grading.Scorer, log zerolog.Logger) *Engine {
	if scorer == nil {
		scorer = grading.NewScorer()
	}
	return &Engine{
		quizzes:  quizzes,
		store:    store,
		scorer:   scorer,
		log:      log.With().Str("component", "engine").Logger(),
		validate: validator.New(),
	}
}

func (e *Engine) check(in any) error {
	if err := e.validate.Struct(in); err != nil {
		return fromValidator(err)
	}
	return nil
}

// loadQuiz maps a missing or empty quiz to ErrQuizNotFound. Reader failures
// are storage failures.
func (e *Engine) loadQuiz(ctx context.Context, quizID int64, requireQuestions bool) (quiz.Quiz, error) {
	z, err := e.quizzes.GetQuiz(ctx, quizID)
	if errors.Is(err, quiz.ErrNotFound) {
		return quiz.Quiz{}, ErrQuizNotFound
	}
	if err != nil {
		e.log.Error().Err(err).Int64("quiz_id", quizID).Msg("load quiz")
		return quiz.Quiz{}, &progress.StorageError{Op: "load quiz", Err: err}
	}
	if requireQuestions && len(z.Questions) == 0 {
		return quiz.Quiz{}, ErrQuizNotFound
	}
	return z, nil
}

// storeErr logs storage failures once, at the point they leave the engine.
func (e *Engine) storeErr(err error, op string, userID, contentID int64) error {
	if errors.Is(err, progress.ErrStorageUnavailable) {
		e.log.Error().Err(err).Str("op", op).Int64("user_id", userID).Int64("content_id", contentID).Msg("progress store")
	}
	return err
}

func (e *Engine) Get(ctx context.Context, userID, contentID int64) (progress.Record, error) {
	rec, err := e.store.Get(ctx, userID, contentID)
	return rec, e.storeErr(err, "get", userID, contentID)
}

// GetByID looks a record up by its stable id.
func (e *Engine) GetByID(ctx context.Context, id string) (progress.Record, error) {
	rec, err := e.store.GetByID(ctx, id)
	return rec, e.storeErr(err, "get by id", 0, 0)
}

func (e *Engine) ListByUser(ctx context.Context, userID int64) ([]progress.Record, error) {
	recs, err := e.store.ListByUser(ctx, userID)
	return recs, e.storeErr(err, "list by user", userID, 0)
}

func (e *Engine) ListByQuiz(ctx context.Context, quizID int64) ([]progress.Record, error) {
	recs, err := e.store.ListByQuiz(ctx, quizID)
	return recs, e.storeErr(err, "list by quiz", 0, 0)
}

// Quiz returns a quiz definition including correct answers. Callers that
// show it to students should use StripAnswers.
func (e *Engine) Quiz(ctx context.Context, quizID int64) (quiz.Quiz, error) {
	return e.loadQuiz(ctx, quizID, false)
}
