package quiz

import (
	"errors"
	"fmt"
)

type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	TrueFalse      QuestionType = "true_false"
	ShortAnswer    QuestionType = "short_answer"
	Open           QuestionType = "open"
)

func (t QuestionType) Valid() bool {
	switch t {
	case MultipleChoice, TrueFalse, ShortAnswer, Open:
		return true
	}
	return false
}

type Question struct {
	ID            int64        `json:"id"`
	Text          string       `json:"text"`
	Type          QuestionType `json:"type"`
	CorrectAnswer string       `json:"correct_answer,omitempty"`
	Options       []string     `json:"options,omitempty"` // multiple_choice only
	Marks         int          `json:"marks"`
	GradeMin      int          `json:"grade_min"`
	GradeMax      int          `json:"grade_max"`
}

// Validate checks the authoring invariants of a question. Scoring never
// calls it: a quiz under construction may hold questions that fail it.
func (q Question) Validate() error {
	var errs []error
	if !q.Type.Valid() {
		errs = append(errs, fmt.Errorf("question %d: unknown type %q", q.ID, q.Type))
	}
	if q.Marks < 1 {
		errs = append(errs, fmt.Errorf("question %d: marks must be >= 1", q.ID))
	}
	if q.GradeMin < 1 || q.GradeMax > 9 || q.GradeMin > q.GradeMax {
		errs = append(errs, fmt.Errorf("question %d: grade band %d-%d outside 1-9", q.ID, q.GradeMin, q.GradeMax))
	}
	if q.Type == MultipleChoice && !containsOption(q.Options, q.CorrectAnswer) {
		errs = append(errs, fmt.Errorf("question %d: correct answer is not one of the options", q.ID))
	}
	return errors.Join(errs...)
}

func containsOption(opts []string, answer string) bool {
	for _, o := range opts {
		if o == answer {
			return true
		}
	}
	return false
}

type Quiz struct {
	ID                int64      `json:"id"`
	Title             string     `json:"title"`
	TimeLimitMinutes  int        `json:"time_limit_minutes"`
	PassMarkPercent   int        `json:"pass_mark_percent"`
	CalculatorAllowed bool       `json:"calculator_allowed"`
	ShuffleQuestions  bool       `json:"shuffle_questions"`
	AttemptLimit      int        `json:"attempt_limit"` // 0 = unlimited
	Published         bool       `json:"published"`
	Questions         []Question `json:"questions"` // order_num order
}

// StripAnswers returns a copy safe to show to someone who may not see the
// correct answers.
func (z Quiz) StripAnswers() Quiz {
	qs := make([]Question, len(z.Questions))
	copy(qs, z.Questions)
	for i := range qs {
		qs[i].CorrectAnswer = ""
	}
	z.Questions = qs
	return z
}
