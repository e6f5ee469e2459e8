package engine

import (
	"context"

	"github.com/zaktec/haibl-sub000/internal/progress"
)

type Summary struct {
	UserID            int64                   `json:"user_id"`
	Records           int                     `json:"records"`
	ByStatus          map[progress.Status]int `json:"by_status"`
	Completed         int                     `json:"completed"`
	AverageCompletion float64                 `json:"average_completion"`
	// AverageScore covers only records that have a score.
	AverageScore *float64 `json:"average_score,omitempty"`
}

// Summary aggregates every record of one student.
func (e *Engine) Summary(ctx context.Context, userID int64) (Summary, error) {
	recs, err := e.ListByUser(ctx, userID)
	if err != nil {
		return Summary{}, err
	}
	return summarize(userID, recs), nil
}

func summarize(userID int64, recs []progress.Record) Summary {
	s := Summary{UserID: userID, Records: len(recs), ByStatus: map[progress.Status]int{}}
	var completion, scoreSum, scored int
	for _, r := range recs {
		s.ByStatus[r.Status]++
		completion += r.Completion
		if r.Score != nil {
			scoreSum += *r.Score
			scored++
		}
	}
	s.Completed = s.ByStatus[progress.Completed]
	if len(recs) > 0 {
		s.AverageCompletion = float64(completion) / float64(len(recs))
	}
	if scored > 0 {
		avg := float64(scoreSum) / float64(scored)
		s.AverageScore = &avg
	}
	return s
}
