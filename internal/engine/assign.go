package engine

import (
	"context"

	"github.com/zaktec/haibl-sub000/internal/progress"
)

type AssignInput struct {
	UserID        int64           `json:"user_id" validate:"gt=0"`
	ContentID     int64           `json:"content_id" validate:"gt=0"`
	QuizID        *int64          `json:"quiz_id,omitempty" validate:"omitempty,gt=0"`
	InitialStatus progress.Status `json:"initial_status,omitempty" validate:"omitempty,oneof=assigned not_started"`
}

// Assign creates the record for (UserID, ContentID). An existing record is
// never replaced: the call fails with ErrDuplicateAssignment.
func (e *Engine) Assign(ctx context.Context, in AssignInput) (progress.Record, error) {
	if err := e.check(in); err != nil {
		return progress.Record{}, err
	}
	if in.QuizID != nil {
		// quizzes still being authored may have no questions yet
		if _, err := e.loadQuiz(ctx, *in.QuizID, false); err != nil {
			return progress.Record{}, err
		}
	}
	status := in.InitialStatus
	if status == "" {
		status = progress.Assigned
	}
	rec, err := e.store.Create(ctx, progress.Record{
		UserID:    in.UserID,
		ContentID: in.ContentID,
		QuizID:    in.QuizID,
		Status:    status,
	})
	if err != nil {
		return progress.Record{}, e.storeErr(err, "assign", in.UserID, in.ContentID)
	}
	e.log.Info().Int64("user_id", in.UserID).Int64("content_id", in.ContentID).Str("status", string(status)).Msg("content assigned")
	return rec, nil
}

// Reset clears answers, scores and completion and returns the record to
// not_started. Resetting a reset record changes nothing visible.
func (e *Engine) Reset(ctx context.Context, userID, contentID int64) (progress.Record, error) {
	rec, err := e.store.Reset(ctx, userID, contentID)
	if err != nil {
		return progress.Record{}, e.storeErr(err, "reset", userID, contentID)
	}
	e.log.Info().Int64("user_id", userID).Int64("content_id", contentID).Msg("progress reset")
	return rec, nil
}

// ResetByQuiz resets every record of userID that is linked to quizID.
func (e *Engine) ResetByQuiz(ctx context.Context, userID, quizID int64) ([]progress.Record, error) {
	recs, err := e.store.ResetByQuiz(ctx, userID, quizID)
	if err != nil {
		return nil, e.storeErr(err, "reset by quiz", userID, 0)
	}
	e.log.Info().Int64("user_id", userID).Int64("quiz_id", quizID).Int("records", len(recs)).Msg("progress reset")
	return recs, nil
}

type GradeInput struct {
	UserID    int64    `json:"user_id" validate:"gt=0"`
	ContentID int64    `json:"content_id" validate:"gt=0"`
	Grade     *float64 `json:"grade" validate:"omitempty,gte=0"`
}

// RecordGrade stores a tutor's manual grade. A nil grade clears it. The
// quiz score is not touched.
func (e *Engine) RecordGrade(ctx context.Context, in GradeInput) (progress.Record, error) {
	if err := e.check(in); err != nil {
		return progress.Record{}, err
	}
	rec, err := e.store.SetGrade(ctx, in.UserID, in.ContentID, in.Grade)
	if err != nil {
		return progress.Record{}, e.storeErr(err, "grade", in.UserID, in.ContentID)
	}
	ev := e.log.Info().Int64("user_id", in.UserID).Int64("content_id", in.ContentID)
	if in.Grade != nil {
		ev = ev.Float64("grade", *in.Grade)
	}
	ev.Msg("grade recorded")
	return rec, nil
}

func (e *Engine) Delete(ctx context.Context, userID, contentID int64) error {
	if err := e.store.Delete(ctx, userID, contentID); err != nil {
		return e.storeErr(err, "delete", userID, contentID)
	}
	e.log.Info().Int64("user_id", userID).Int64("content_id", contentID).Msg("progress deleted")
	return nil
}
