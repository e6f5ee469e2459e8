package progress

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/zaktec/haibl-sub000/internal/db"
	syncx "github.com/zaktec/haibl-sub000/internal/sync"
)

var dbSeq atomic.Int64

func newSQLStore(t *testing.T) (*SQLStore, *syncx.EventRepo) {
	t.Helper()
	ctx := context.Background()
	dsn := fmt.Sprintf("file:progress_%d?mode=memory&cache=shared", dbSeq.Add(1))
	dbh, err := db.Open(ctx, db.DriverSQLite, dsn)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = dbh.Close() })
	events := syncx.NewEventRepo(dbh, "test")
	return NewSQLStore(dbh, events), events
}

// stores runs fn against every Store implementation.
func stores(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Run("memory", func(t *testing.T) { fn(t, NewInMemoryStore()) })
	t.Run("sql", func(t *testing.T) {
		s, _ := newSQLStore(t)
		fn(t, s)
	})
}

func ptr[T any](v T) *T { return &v }

func TestCreateRejectsDuplicate(t *testing.T) {
	stores(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		rec, err := s.Create(ctx, Record{UserID: 6, ContentID: 10, QuizID: ptr(int64(3)), Status: Assigned})
		if err != nil {
			t.Fatal(err)
		}
		if rec.ID == "" || rec.CreatedAt == 0 {
			t.Fatalf("created record missing id or timestamp: %+v", rec)
		}
		if rec.Answers == nil || rec.AnswerScores == nil {
			t.Fatal("answers maps must be initialised")
		}

		_, err = s.Create(ctx, Record{UserID: 6, ContentID: 10, Status: NotStarted})
		if !errors.Is(err, ErrDuplicateAssignment) {
			t.Fatalf("second create error = %v, want ErrDuplicateAssignment", err)
		}

		got, err := s.Get(ctx, 6, 10)
		if err != nil {
			t.Fatal(err)
		}
		if got.ID != rec.ID || got.Status != Assigned {
			t.Fatalf("duplicate create changed the record: %+v", got)
		}
	})
}

func TestGetMissing(t *testing.T) {
	stores(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		if _, err := s.Get(ctx, 1, 1); !errors.Is(err, ErrNotFound) {
			t.Fatalf("Get error = %v, want ErrNotFound", err)
		}
		if _, err := s.GetByID(ctx, "nope"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("GetByID error = %v, want ErrNotFound", err)
		}
		if _, err := s.ApplySubmission(ctx, 1, 1, Submission{QuizID: 1, Status: Completed}); !errors.Is(err, ErrNotFound) {
			t.Fatalf("ApplySubmission error = %v, want ErrNotFound", err)
		}
		if err := s.Delete(ctx, 1, 1); !errors.Is(err, ErrNotFound) {
			t.Fatalf("Delete error = %v, want ErrNotFound", err)
		}
	})
}

func TestApplySubmissionAndReset(t *testing.T) {
	stores(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		created, err := s.Create(ctx, Record{UserID: 6, ContentID: 10, Status: Assigned, SessionsCount: 2})
		if err != nil {
			t.Fatal(err)
		}
		if _, err := s.SetGrade(ctx, 6, 10, ptr(7.5)); err != nil {
			t.Fatal(err)
		}

		sub := Submission{
			QuizID:  3,
			Answers: Answers{"1": {WorkingOut: "2+2", FinalAnswer: "4"}, "2": {FinalAnswer: "10"}},
			AnswerScores: AnswerScores{
				"1": {IsCorrect: true, MarksAwarded: 2, MaxMarks: 2},
				"2": {IsCorrect: false, MarksAwarded: 0, MaxMarks: 3},
			},
			Score:      ptr(40),
			Completion: 100,
			Status:     Completed,
		}
		rec, err := s.ApplySubmission(ctx, 6, 10, sub)
		if err != nil {
			t.Fatal(err)
		}
		if rec.Score == nil || *rec.Score != 40 || rec.Completion != 100 || rec.Status != Completed {
			t.Fatalf("unexpected submitted record: %+v", rec)
		}
		if rec.QuizID == nil || *rec.QuizID != 3 {
			t.Fatalf("quiz id not recorded: %v", rec.QuizID)
		}
		if rec.Answers["1"].WorkingOut != "2+2" || rec.AnswerScores["2"].MaxMarks != 3 {
			t.Fatalf("answers not stored: %+v %+v", rec.Answers, rec.AnswerScores)
		}
		if rec.ID != created.ID {
			t.Fatalf("id changed: %s -> %s", created.ID, rec.ID)
		}

		for i := 0; i < 2; i++ {
			rec, err = s.Reset(ctx, 6, 10)
			if err != nil {
				t.Fatalf("reset #%d: %v", i+1, err)
			}
			if rec.Status != NotStarted || rec.Completion != 0 || rec.Score != nil {
				t.Fatalf("reset #%d left state: %+v", i+1, rec)
			}
			if len(rec.Answers) != 0 || len(rec.AnswerScores) != 0 {
				t.Fatalf("reset #%d left answers: %+v", i+1, rec)
			}
			if rec.Grade == nil || *rec.Grade != 7.5 || rec.SessionsCount != 2 {
				t.Fatalf("reset #%d touched grade or sessions: %+v", i+1, rec)
			}
		}
	})
}

func TestStoreReturnsCopies(t *testing.T) {
	s := NewInMemoryStore()
	ctx := context.Background()
	if _, err := s.Create(ctx, Record{UserID: 1, ContentID: 1, Status: Assigned}); err != nil {
		t.Fatal(err)
	}
	got, _ := s.Get(ctx, 1, 1)
	got.Answers["9"] = Answer{FinalAnswer: "x"}
	again, _ := s.Get(ctx, 1, 1)
	if len(again.Answers) != 0 {
		t.Fatal("caller mutation leaked into the store")
	}
}

func TestListAndResetByQuiz(t *testing.T) {
	stores(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		seed := []Record{
			{UserID: 2, ContentID: 11, QuizID: ptr(int64(7)), Status: Assigned},
			{UserID: 1, ContentID: 12, QuizID: ptr(int64(7)), Status: Assigned},
			{UserID: 1, ContentID: 10, QuizID: ptr(int64(7)), Status: Assigned},
			{UserID: 1, ContentID: 13, QuizID: ptr(int64(8)), Status: Assigned},
			{UserID: 1, ContentID: 14, Status: NotStarted},
		}
		for _, r := range seed {
			if _, err := s.Create(ctx, r); err != nil {
				t.Fatal(err)
			}
		}

		byUser, err := s.ListByUser(ctx, 1)
		if err != nil {
			t.Fatal(err)
		}
		if len(byUser) != 4 || byUser[0].ContentID != 10 || byUser[3].ContentID != 14 {
			t.Fatalf("ListByUser = %+v", byUser)
		}

		byQuiz, err := s.ListByQuiz(ctx, 7)
		if err != nil {
			t.Fatal(err)
		}
		want := [][2]int64{{1, 10}, {1, 12}, {2, 11}}
		if len(byQuiz) != len(want) {
			t.Fatalf("ListByQuiz len = %d, want %d", len(byQuiz), len(want))
		}
		for i, w := range want {
			if byQuiz[i].UserID != w[0] || byQuiz[i].ContentID != w[1] {
				t.Fatalf("ListByQuiz[%d] = (%d,%d), want %v", i, byQuiz[i].UserID, byQuiz[i].ContentID, w)
			}
		}

		empty, err := s.ListByUser(ctx, 99)
		if err != nil || empty == nil || len(empty) != 0 {
			t.Fatalf("ListByUser(99) = %v, %v; want empty non-nil slice", empty, err)
		}

		if _, err := s.ApplySubmission(ctx, 1, 10, Submission{QuizID: 7, Score: ptr(50), Completion: 50, Status: InProgress}); err != nil {
			t.Fatal(err)
		}
		reset, err := s.ResetByQuiz(ctx, 1, 7)
		if err != nil {
			t.Fatal(err)
		}
		if len(reset) != 2 {
			t.Fatalf("ResetByQuiz touched %d records, want 2", len(reset))
		}
		for _, r := range reset {
			if r.Status != NotStarted || r.Score != nil || r.Completion != 0 {
				t.Fatalf("not reset: %+v", r)
			}
		}
		other, _ := s.Get(ctx, 2, 11)
		if other.Status != Assigned {
			t.Fatalf("another user's record was reset: %+v", other)
		}
		if _, err := s.ResetByQuiz(ctx, 1, 999); !errors.Is(err, ErrNotFound) {
			t.Fatalf("ResetByQuiz unknown quiz error = %v, want ErrNotFound", err)
		}
	})
}

func TestDelete(t *testing.T) {
	stores(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		if _, err := s.Create(ctx, Record{UserID: 3, ContentID: 4, Status: Assigned}); err != nil {
			t.Fatal(err)
		}
		if err := s.Delete(ctx, 3, 4); err != nil {
			t.Fatal(err)
		}
		if _, err := s.Get(ctx, 3, 4); !errors.Is(err, ErrNotFound) {
			t.Fatalf("Get after delete = %v, want ErrNotFound", err)
		}
		// the pair can be assigned again once deleted
		if _, err := s.Create(ctx, Record{UserID: 3, ContentID: 4, Status: Assigned}); err != nil {
			t.Fatal(err)
		}
	})
}

func TestSQLStoreWritesEvents(t *testing.T) {
	s, events := newSQLStore(t)
	ctx := context.Background()
	if _, err := s.Create(ctx, Record{UserID: 6, ContentID: 10, Status: Assigned}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.ApplySubmission(ctx, 6, 10, Submission{QuizID: 1, Completion: 100, Status: Completed, Score: ptr(100)}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Reset(ctx, 6, 10); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Create(ctx, Record{UserID: 6, ContentID: 10, Status: Assigned}); !errors.Is(err, ErrDuplicateAssignment) {
		t.Fatalf("duplicate create error = %v", err)
	}

	got, err := events.ListByKey(ctx, "6:10")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{syncx.TypeProgressAssigned, syncx.TypeProgressSubmitted, syncx.TypeProgressReset}
	if len(got) != len(want) {
		t.Fatalf("events = %+v, want types %v", got, want)
	}
	for i, e := range got {
		if e.Type != want[i] || e.SiteID != "test" {
			t.Fatalf("event[%d] = %+v, want type %s", i, e, want[i])
		}
	}
}

func TestSQLStoreRollsBackWhenEventFails(t *testing.T) {
	s, _ := newSQLStore(t)
	ctx := context.Background()
	if _, err := s.Create(ctx, Record{UserID: 6, ContentID: 10, Status: Assigned}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.db.ExecContext(ctx, `DROP TABLE event_log`); err != nil {
		t.Fatal(err)
	}

	_, err := s.ApplySubmission(ctx, 6, 10, Submission{QuizID: 1, Completion: 100, Status: Completed, Score: ptr(100)})
	if !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("error = %v, want ErrStorageUnavailable", err)
	}
	var se *StorageError
	if !errors.As(err, &se) || se.Op != "apply submission" {
		t.Fatalf("error = %#v, want *StorageError for apply submission", err)
	}

	rec, err := s.Get(ctx, 6, 10)
	if err != nil {
		t.Fatal(err)
	}
	if rec.Status != Assigned || rec.Score != nil || rec.Completion != 0 {
		t.Fatalf("failed submission left partial state: %+v", rec)
	}
}

func TestSQLStoreClosedDB(t *testing.T) {
	s, _ := newSQLStore(t)
	_ = s.db.Close()
	_, err := s.Get(context.Background(), 1, 1)
	if !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("error = %v, want ErrStorageUnavailable", err)
	}
}
