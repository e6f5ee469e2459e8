package progress

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/zaktec/haibl-sub000/internal/db"
	syncx "github.com/zaktec/haibl-sub000/internal/sync"
)

const recordColumns = `id, user_id, content_id, quiz_id, completion, status, score, grade,
	answers, answer_scores, sessions_count, created_at, updated_at`

// SQLStore keeps records in the user_progress table. Each mutation is one
// keyed statement run in a transaction with its event_log row, so there is
// no read-modify-write window between concurrent requests.
type SQLStore struct {
	db     *sql.DB
	events *syncx.EventRepo // optional
}

func NewSQLStore(dbh *sql.DB, events *syncx.EventRepo) *SQLStore {
	return &SQLStore{db: dbh, events: events}
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *SQLStore) Create(ctx context.Context, rec Record) (Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Answers == nil {
		rec.Answers = Answers{}
	}
	if rec.AnswerScores == nil {
		rec.AnswerScores = AnswerScores{}
	}
	ans, scores, err := encodeJSON(rec.Answers, rec.AnswerScores)
	if err != nil {
		return Record{}, err
	}
	now := time.Now().Unix()
	rec.CreatedAt, rec.UpdatedAt = now, now

	err = db.WithTx(ctx, s.db, nil, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO user_progress (`+recordColumns+`)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
			ON CONFLICT (user_id, content_id) DO NOTHING`,
			rec.ID, rec.UserID, rec.ContentID, rec.QuizID, rec.Completion, string(rec.Status),
			rec.Score, rec.Grade, ans, scores, rec.SessionsCount, rec.CreatedAt, rec.UpdatedAt)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return ErrDuplicateAssignment
		}
		return s.appendEvent(ctx, tx, syncx.TypeProgressAssigned, rec.UserID, rec.ContentID, map[string]any{
			"id": rec.ID, "quiz_id": rec.QuizID, "status": rec.Status,
		})
	})
	if err != nil {
		return Record{}, wrapStorage("create", err)
	}
	return rec, nil
}

func (s *SQLStore) Get(ctx context.Context, userID, contentID int64) (Record, error) {
	rec, err := getRecord(ctx, s.db, userID, contentID)
	return rec, wrapStorage("get", err)
}

func (s *SQLStore) GetByID(ctx context.Context, id string) (Record, error) {
	rec, err := scanRecord(s.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM user_progress WHERE id=$1`, id))
	return rec, wrapStorage("get by id", err)
}

func (s *SQLStore) ListByUser(ctx context.Context, userID int64) ([]Record, error) {
	recs, err := listRecords(ctx, s.db,
		`SELECT `+recordColumns+` FROM user_progress WHERE user_id=$1 ORDER BY content_id`, userID)
	return recs, wrapStorage("list by user", err)
}

func (s *SQLStore) ListByQuiz(ctx context.Context, quizID int64) ([]Record, error) {
	recs, err := listRecords(ctx, s.db,
		`SELECT `+recordColumns+` FROM user_progress WHERE quiz_id=$1 ORDER BY user_id, content_id`, quizID)
	return recs, wrapStorage("list by quiz", err)
}

func (s *SQLStore) ApplySubmission(ctx context.Context, userID, contentID int64, sub Submission) (Record, error) {
	ans, scores, err := encodeJSON(sub.Answers, sub.AnswerScores)
	if err != nil {
		return Record{}, err
	}
	var rec Record
	err = db.WithTx(ctx, s.db, nil, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE user_progress
			   SET quiz_id=$1, answers=$2, answer_scores=$3, score=$4, completion=$5, status=$6, updated_at=$7
			 WHERE user_id=$8 AND content_id=$9`,
			sub.QuizID, ans, scores, sub.Score, sub.Completion, string(sub.Status), time.Now().Unix(),
			userID, contentID)
		if err := expectRows(res, err); err != nil {
			return err
		}
		if err := s.appendEvent(ctx, tx, syncx.TypeProgressSubmitted, userID, contentID, map[string]any{
			"quiz_id": sub.QuizID, "score": sub.Score, "completion": sub.Completion, "status": sub.Status,
		}); err != nil {
			return err
		}
		rec, err = getRecord(ctx, tx, userID, contentID)
		return err
	})
	if err != nil {
		return Record{}, wrapStorage("apply submission", err)
	}
	return rec, nil
}

func (s *SQLStore) Reset(ctx context.Context, userID, contentID int64) (Record, error) {
	var rec Record
	err := db.WithTx(ctx, s.db, nil, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE user_progress
			   SET answers='{}', answer_scores='{}', score=NULL, completion=0, status=$1, updated_at=$2
			 WHERE user_id=$3 AND content_id=$4`,
			string(NotStarted), time.Now().Unix(), userID, contentID)
		if err := expectRows(res, err); err != nil {
			return err
		}
		if err := s.appendEvent(ctx, tx, syncx.TypeProgressReset, userID, contentID, map[string]any{}); err != nil {
			return err
		}
		rec, err = getRecord(ctx, tx, userID, contentID)
		return err
	})
	if err != nil {
		return Record{}, wrapStorage("reset", err)
	}
	return rec, nil
}

func (s *SQLStore) ResetByQuiz(ctx context.Context, userID, quizID int64) ([]Record, error) {
	var recs []Record
	err := db.WithTx(ctx, s.db, nil, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE user_progress
			   SET answers='{}', answer_scores='{}', score=NULL, completion=0, status=$1, updated_at=$2
			 WHERE user_id=$3 AND quiz_id=$4`,
			string(NotStarted), time.Now().Unix(), userID, quizID)
		if err := expectRows(res, err); err != nil {
			return err
		}
		recs, err = listRecords(ctx, tx,
			`SELECT `+recordColumns+` FROM user_progress WHERE user_id=$1 AND quiz_id=$2 ORDER BY content_id`,
			userID, quizID)
		if err != nil {
			return err
		}
		for _, r := range recs {
			if err := s.appendEvent(ctx, tx, syncx.TypeProgressReset, r.UserID, r.ContentID, map[string]any{"quiz_id": quizID}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, wrapStorage("reset by quiz", err)
	}
	return recs, nil
}

func (s *SQLStore) SetGrade(ctx context.Context, userID, contentID int64, grade *float64) (Record, error) {
	var rec Record
	err := db.WithTx(ctx, s.db, nil, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE user_progress SET grade=$1, updated_at=$2 WHERE user_id=$3 AND content_id=$4`,
			grade, time.Now().Unix(), userID, contentID)
		if err := expectRows(res, err); err != nil {
			return err
		}
		if err := s.appendEvent(ctx, tx, syncx.TypeGradeRecorded, userID, contentID, map[string]any{"grade": grade}); err != nil {
			return err
		}
		rec, err = getRecord(ctx, tx, userID, contentID)
		return err
	})
	if err != nil {
		return Record{}, wrapStorage("set grade", err)
	}
	return rec, nil
}

func (s *SQLStore) Delete(ctx context.Context, userID, contentID int64) error {
	err := db.WithTx(ctx, s.db, nil, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`DELETE FROM user_progress WHERE user_id=$1 AND content_id=$2`, userID, contentID)
		if err := expectRows(res, err); err != nil {
			return err
		}
		return s.appendEvent(ctx, tx, syncx.TypeProgressDeleted, userID, contentID, map[string]any{})
	})
	return wrapStorage("delete", err)
}

func (s *SQLStore) appendEvent(ctx context.Context, tx *sql.Tx, typ string, userID, contentID int64, data any) error {
	if s.events == nil {
		return nil
	}
	return s.events.Append(ctx, tx, typ, eventKey(userID, contentID), data)
}

func expectRows(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func getRecord(ctx context.Context, q queryer, userID, contentID int64) (Record, error) {
	return scanRecord(q.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM user_progress WHERE user_id=$1 AND content_id=$2`, userID, contentID))
}

func listRecords(ctx context.Context, q queryer, query string, args ...any) ([]Record, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (Record, error) {
	var (
		rec           Record
		status        string
		quizID, score sql.NullInt64
		grade         sql.NullFloat64
		ans, scores   string
	)
	err := row.Scan(&rec.ID, &rec.UserID, &rec.ContentID, &quizID, &rec.Completion, &status, &score, &grade,
		&ans, &scores, &rec.SessionsCount, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	rec.Status = Status(status)
	if quizID.Valid {
		v := quizID.Int64
		rec.QuizID = &v
	}
	if score.Valid {
		v := int(score.Int64)
		rec.Score = &v
	}
	if grade.Valid {
		v := grade.Float64
		rec.Grade = &v
	}
	rec.Answers = Answers{}
	rec.AnswerScores = AnswerScores{}
	if err := json.Unmarshal([]byte(ans), &rec.Answers); err != nil {
		return Record{}, fmt.Errorf("record %s answers: %w", rec.ID, err)
	}
	if err := json.Unmarshal([]byte(scores), &rec.AnswerScores); err != nil {
		return Record{}, fmt.Errorf("record %s answer scores: %w", rec.ID, err)
	}
	return rec, nil
}

func encodeJSON(a Answers, s AnswerScores) (string, string, error) {
	if a == nil {
		a = Answers{}
	}
	if s == nil {
		s = AnswerScores{}
	}
	ab, err := json.Marshal(a)
	if err != nil {
		return "", "", err
	}
	sb, err := json.Marshal(s)
	if err != nil {
		return "", "", err
	}
	return string(ab), string(sb), nil
}
