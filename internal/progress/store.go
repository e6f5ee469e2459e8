package progress

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store exclusively owns mutation of progress records. Every write is
// atomic per record: it is applied completely or not at all.
type Store interface {
	// Create inserts rec. It fails with ErrDuplicateAssignment when a
	// record for (rec.UserID, rec.ContentID) exists.
	Create(ctx context.Context, rec Record) (Record, error)
	Get(ctx context.Context, userID, contentID int64) (Record, error)
	GetByID(ctx context.Context, id string) (Record, error)
	ListByUser(ctx context.Context, userID int64) ([]Record, error)
	ListByQuiz(ctx context.Context, quizID int64) ([]Record, error)

	// ApplySubmission overwrites the scored fields in a single write.
	ApplySubmission(ctx context.Context, userID, contentID int64, sub Submission) (Record, error)
	Reset(ctx context.Context, userID, contentID int64) (Record, error)
	// ResetByQuiz resets every record of userID linked to quizID.
	ResetByQuiz(ctx context.Context, userID, quizID int64) ([]Record, error)
	SetGrade(ctx context.Context, userID, contentID int64, grade *float64) (Record, error)
	Delete(ctx context.Context, userID, contentID int64) error
}

type key struct{ userID, contentID int64 }

type memoryStore struct {
	mu      sync.RWMutex
	records map[key]Record
	now     func() time.Time
}

func NewInMemoryStore() Store {
	return &memoryStore{records: map[key]Record{}, now: time.Now}
}

func (m *memoryStore) Create(_ context.Context, rec Record) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := key{rec.UserID, rec.ContentID}
	if _, ok := m.records[k]; ok {
		return Record{}, ErrDuplicateAssignment
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Answers == nil {
		rec.Answers = Answers{}
	}
	if rec.AnswerScores == nil {
		rec.AnswerScores = AnswerScores{}
	}
	ts := m.now().Unix()
	rec.CreatedAt, rec.UpdatedAt = ts, ts
	m.records[k] = rec.clone()
	return rec.clone(), nil
}

func (m *memoryStore) Get(_ context.Context, userID, contentID int64) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[key{userID, contentID}]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec.clone(), nil
}

func (m *memoryStore) GetByID(_ context.Context, id string) (Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, rec := range m.records {
		if rec.ID == id {
			return rec.clone(), nil
		}
	}
	return Record{}, ErrNotFound
}

func (m *memoryStore) ListByUser(_ context.Context, userID int64) ([]Record, error) {
	return m.filter(func(r Record) bool { return r.UserID == userID }), nil
}

func (m *memoryStore) ListByQuiz(_ context.Context, quizID int64) ([]Record, error) {
	return m.filter(func(r Record) bool { return r.QuizID != nil && *r.QuizID == quizID }), nil
}

func (m *memoryStore) filter(keep func(Record) bool) []Record {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Record{}
	for _, rec := range m.records {
		if keep(rec) {
			out = append(out, rec.clone())
		}
	}
	sortRecords(out)
	return out
}

func (m *memoryStore) ApplySubmission(_ context.Context, userID, contentID int64, sub Submission) (Record, error) {
	return m.update(userID, contentID, func(r *Record) {
		quizID := sub.QuizID
		r.QuizID = &quizID
		r.Answers = sub.Answers.clone()
		r.AnswerScores = sub.AnswerScores.clone()
		r.Score = nil
		if sub.Score != nil {
			s := *sub.Score
			r.Score = &s
		}
		r.Completion = sub.Completion
		r.Status = sub.Status
	})
}

func (m *memoryStore) Reset(_ context.Context, userID, contentID int64) (Record, error) {
	return m.update(userID, contentID, resetRecord)
}

func (m *memoryStore) ResetByQuiz(_ context.Context, userID, quizID int64) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Record
	for k, rec := range m.records {
		if rec.UserID != userID || rec.QuizID == nil || *rec.QuizID != quizID {
			continue
		}
		resetRecord(&rec)
		rec.UpdatedAt = m.now().Unix()
		m.records[k] = rec
		out = append(out, rec.clone())
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	sortRecords(out)
	return out, nil
}

func (m *memoryStore) SetGrade(_ context.Context, userID, contentID int64, grade *float64) (Record, error) {
	return m.update(userID, contentID, func(r *Record) {
		r.Grade = nil
		if grade != nil {
			g := *grade
			r.Grade = &g
		}
	})
}

func (m *memoryStore) Delete(_ context.Context, userID, contentID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := key{userID, contentID}
	if _, ok := m.records[k]; !ok {
		return ErrNotFound
	}
	delete(m.records, k)
	return nil
}

func (m *memoryStore) update(userID, contentID int64, fn func(*Record)) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := key{userID, contentID}
	rec, ok := m.records[k]
	if !ok {
		return Record{}, ErrNotFound
	}
	rec = rec.clone()
	fn(&rec)
	rec.UpdatedAt = m.now().Unix()
	m.records[k] = rec
	return rec.clone(), nil
}

func resetRecord(r *Record) {
	r.Answers = Answers{}
	r.AnswerScores = AnswerScores{}
	r.Score = nil
	r.Completion = 0
	r.Status = NotStarted
}

func sortRecords(recs []Record) {
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].UserID != recs[j].UserID {
			return recs[i].UserID < recs[j].UserID
		}
		return recs[i].ContentID < recs[j].ContentID
	})
}
