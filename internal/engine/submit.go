package engine

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/zaktec/haibl-sub000/internal/grading"
	"github.com/zaktec/haibl-sub000/internal/progress"
	"github.com/zaktec/haibl-sub000/internal/quiz"
)

type SubmitInput struct {
	UserID    int64            `json:"user_id" validate:"gt=0"`
	QuizID    int64            `json:"quiz_id" validate:"gt=0"`
	ContentID int64            `json:"content_id" validate:"gt=0"`
	Answers   progress.Answers `json:"answers"`
}

type SubmissionResult struct {
	Score        *int                  `json:"score,omitempty"`
	Completion   int                   `json:"completion"`
	Status       progress.Status       `json:"status"`
	MarksAwarded int                   `json:"marks_awarded"`
	MaxMarks     int                   `json:"max_marks"`
	Answered     int                   `json:"answered"`
	Total        int                   `json:"total"`
	Passed       *bool                 `json:"passed,omitempty"`
	AnswerScores progress.AnswerScores `json:"answer_scores"`
	Record       progress.Record       `json:"record"`
}

// Submit scores every question of the quiz against in.Answers and writes
// the outcome to the (user, content) record in one atomic update. Nothing
// is written if the input or the quiz is rejected.
func (e *Engine) Submit(ctx context.Context, in SubmitInput) (SubmissionResult, error) {
	if err := e.check(in); err != nil {
		return SubmissionResult{}, err
	}
	z, err := e.loadQuiz(ctx, in.QuizID, true)
	if err != nil {
		return SubmissionResult{}, err
	}
	if err := unknownQuestions(in.Answers, z.Questions); err != nil {
		return SubmissionResult{}, err
	}

	var (
		res      = SubmissionResult{Total: len(z.Questions), AnswerScores: progress.AnswerScores{}}
		needHelp bool
	)
	for _, q := range z.Questions {
		k := progress.QuestionKey(q.ID)
		a := in.Answers[k] // absent means blank
		r := e.scorer.Score(grading.Q{Type: string(q.Type), CorrectAnswer: q.CorrectAnswer, Marks: q.Marks}, a.FinalAnswer)
		res.AnswerScores[k] = progress.AnswerScore{IsCorrect: r.IsCorrect, MarksAwarded: r.MarksAwarded, MaxMarks: r.MaxMarks}
		res.MarksAwarded += r.MarksAwarded
		res.MaxMarks += r.MaxMarks
		if grading.Answered(a.FinalAnswer) {
			res.Answered++
		}
		needHelp = needHelp || a.NeedHelp
	}

	if res.MaxMarks > 0 {
		s := int(math.Round(100 * float64(res.MarksAwarded) / float64(res.MaxMarks)))
		res.Score = &s
		passed := s >= z.PassMarkPercent
		res.Passed = &passed
	}
	res.Completion = 100 * res.Answered / res.Total
	switch {
	case needHelp:
		res.Status = progress.NeedsHelp
	case res.Completion == 100:
		res.Status = progress.Completed
	default:
		res.Status = progress.InProgress
	}

	answers := progress.Answers{}
	for k, a := range in.Answers {
		answers[k] = a
	}
	rec, err := e.store.ApplySubmission(ctx, in.UserID, in.ContentID, progress.Submission{
		QuizID:       in.QuizID,
		Answers:      answers,
		AnswerScores: res.AnswerScores,
		Score:        res.Score,
		Completion:   res.Completion,
		Status:       res.Status,
	})
	if err != nil {
		return SubmissionResult{}, e.storeErr(err, "submit", in.UserID, in.ContentID)
	}
	res.Record = rec

	ev := e.log.Debug().
		Int64("user_id", in.UserID).
		Int64("content_id", in.ContentID).
		Int64("quiz_id", in.QuizID).
		Int("marks", res.MarksAwarded).
		Int("max_marks", res.MaxMarks).
		Int("completion", res.Completion).
		Str("status", string(res.Status))
	if res.Score != nil {
		ev = ev.Int("score", *res.Score)
	}
	ev.Msg("submission scored")
	return res, nil
}

// unknownQuestions rejects answer keys that do not name a question in the quiz.
func unknownQuestions(answers progress.Answers, qs []quiz.Question) error {
	known := make(map[string]struct{}, len(qs))
	for _, q := range qs {
		known[progress.QuestionKey(q.ID)] = struct{}{}
	}
	var bad []string
	for k := range answers {
		if _, ok := known[k]; !ok {
			bad = append(bad, k)
		}
	}
	if len(bad) == 0 {
		return nil
	}
	sort.Strings(bad)
	flds := make([]FieldError, len(bad))
	for i, k := range bad {
		flds[i] = FieldError{Field: "answers." + k, Error: "unknown question"}
	}
	return NewValidationError(fmt.Errorf("answers reference %d unknown question(s)", len(bad)), flds...)
}
