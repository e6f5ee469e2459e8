package progress

import (
	"fmt"
	"strconv"
)

type Status string

const (
	NotStarted Status = "not_started"
	Assigned   Status = "assigned"
	InProgress Status = "in_progress"
	Review     Status = "review"
	Completed  Status = "completed"
	NeedsHelp  Status = "needs_help"
)

func (s Status) Valid() bool {
	switch s {
	case NotStarted, Assigned, InProgress, Review, Completed, NeedsHelp:
		return true
	}
	return false
}

// Answer is what a student submitted for one question. Only FinalAnswer
// is scored; WorkingOut is kept for tutor review.
type Answer struct {
	WorkingOut  string `json:"working_out"`
	FinalAnswer string `json:"final_answer"`
	NeedHelp    bool   `json:"need_help"`
}

type AnswerScore struct {
	IsCorrect    bool `json:"is_correct"`
	MarksAwarded int  `json:"marks_awarded"`
	MaxMarks     int  `json:"max_marks"`
}

// Answers and AnswerScores are keyed by question id in decimal.
type (
	Answers      map[string]Answer
	AnswerScores map[string]AnswerScore
)

// QuestionKey is the map key used for a question id.
func QuestionKey(questionID int64) string {
	return strconv.FormatInt(questionID, 10)
}

// Record is the state of one student against one content item. The pair
// (UserID, ContentID) is unique; QuizID is informational.
type Record struct {
	ID            string       `json:"id"`
	UserID        int64        `json:"user_id"`
	ContentID     int64        `json:"content_id"`
	QuizID        *int64       `json:"quiz_id,omitempty"`
	Completion    int          `json:"completion"`
	Status        Status       `json:"status"`
	Score         *int         `json:"score,omitempty"`
	Grade         *float64     `json:"grade,omitempty"`
	Answers       Answers      `json:"answers"`
	AnswerScores  AnswerScores `json:"answer_scores"`
	SessionsCount int          `json:"sessions_count"`
	CreatedAt     int64        `json:"created_at"`
	UpdatedAt     int64        `json:"updated_at"`
}

// Submission is the full result of scoring one quiz submission. A store
// writes all of it or none of it.
type Submission struct {
	QuizID       int64
	Answers      Answers
	AnswerScores AnswerScores
	Score        *int
	Completion   int
	Status       Status
}

func eventKey(userID, contentID int64) string {
	return fmt.Sprintf("%d:%d", userID, contentID)
}

func (a Answers) clone() Answers {
	out := make(Answers, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

func (s AnswerScores) clone() AnswerScores {
	out := make(AnswerScores, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

func (r Record) clone() Record {
	r.Answers = r.Answers.clone()
	r.AnswerScores = r.AnswerScores.clone()
	if r.QuizID != nil {
		q := *r.QuizID
		r.QuizID = &q
	}
	if r.Score != nil {
		s := *r.Score
		r.Score = &s
	}
	if r.Grade != nil {
		g := *r.Grade
		r.Grade = &g
	}
	return r
}
