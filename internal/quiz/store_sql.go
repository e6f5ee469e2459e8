package quiz

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

type SQLReader struct {
	db *sql.DB
}

func NewSQLReader(db *sql.DB) *SQLReader {
	return &SQLReader{db: db}
}

func (r *SQLReader) GetQuiz(ctx context.Context, id int64) (Quiz, error) {
	var z Quiz
	err := r.db.QueryRowContext(ctx, `
		SELECT id, title, time_limit_minutes, pass_mark_percent, calculator_allowed,
		       shuffle_questions, attempt_limit, published
		FROM quizzes WHERE id=$1`, id).
		Scan(&z.ID, &z.Title, &z.TimeLimitMinutes, &z.PassMarkPercent, &z.CalculatorAllowed,
			&z.ShuffleQuestions, &z.AttemptLimit, &z.Published)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Quiz{}, ErrNotFound
		}
		return Quiz{}, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT q.id, q.text, q.type, q.correct_answer, q.options_json, q.marks, q.grade_min, q.grade_max
		FROM quiz_questions qq
		JOIN questions q ON q.id = qq.question_id
		WHERE qq.quiz_id=$1
		ORDER BY qq.order_num`, id)
	if err != nil {
		return Quiz{}, err
	}
	defer rows.Close()

	z.Questions = []Question{}
	for rows.Next() {
		var q Question
		var optsJSON string
		if err := rows.Scan(&q.ID, &q.Text, &q.Type, &q.CorrectAnswer, &optsJSON, &q.Marks, &q.GradeMin, &q.GradeMax); err != nil {
			return Quiz{}, err
		}
		if optsJSON != "" {
			if err := json.Unmarshal([]byte(optsJSON), &q.Options); err != nil {
				return Quiz{}, fmt.Errorf("question %d options: %w", q.ID, err)
			}
		}
		z.Questions = append(z.Questions, q)
	}
	return z, rows.Err()
}
