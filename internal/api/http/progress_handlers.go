package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/zaktec/haibl-sub000/internal/engine"
	"github.com/zaktec/haibl-sub000/internal/progress"
	"github.com/zaktec/haibl-sub000/internal/rbac"
)

// POST /progress
func AssignHandler(eng *engine.Engine, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in engine.AssignInput
		if err := decodeStrict(r, &in); err != nil {
			badRequest(w, "bad json: "+err.Error())
			return
		}
		rec, err := eng.Assign(r.Context(), in)
		if err != nil {
			respondError(w, log, err)
			return
		}
		respondJSON(w, http.StatusCreated, rec)
	}
}

// GET /progress?user_id=&quiz_id=
//
// Callers limited to their own records always get their own, whatever
// user_id says.
func ListProgressHandler(eng *engine.Engine, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		var (
			userID, quizID int64
			ok             bool
		)
		if v := q.Get("user_id"); v != "" {
			if userID, ok = parseID(v); !ok {
				badRequest(w, "user_id must be a positive integer")
				return
			}
		}
		if v := q.Get("quiz_id"); v != "" {
			if quizID, ok = parseID(v); !ok {
				badRequest(w, "quiz_id must be a positive integer")
				return
			}
		}
		if !rbac.Has(r.Context(), rbac.PermProgressViewAll) {
			sub, ok := subjectID(r)
			if !ok {
				forbidden(w)
				return
			}
			userID = sub
		}

		var (
			recs []progress.Record
			err  error
		)
		switch {
		case quizID != 0:
			recs, err = eng.ListByQuiz(r.Context(), quizID)
			if err == nil && userID != 0 {
				recs = filterUser(recs, userID)
			}
		case userID != 0:
			recs, err = eng.ListByUser(r.Context(), userID)
		default:
			badRequest(w, "user_id or quiz_id required")
			return
		}
		if err != nil {
			respondError(w, log, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{"items": recs})
	}
}

func filterUser(recs []progress.Record, userID int64) []progress.Record {
	out := recs[:0]
	for _, rec := range recs {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	return out
}

// GET /progress/{userID}/summary
func SummaryHandler(eng *engine.Engine, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := pathID(r, "userID")
		if !ok {
			badRequest(w, "bad userID")
			return
		}
		if !mayActFor(r, userID, rbac.PermProgressViewAll, rbac.PermProgressViewOwn) {
			forbidden(w)
			return
		}
		sum, err := eng.Summary(r.Context(), userID)
		if err != nil {
			respondError(w, log, err)
			return
		}
		respondJSON(w, http.StatusOK, sum)
	}
}

// GET /progress/{userID}/{contentID}
func GetProgressHandler(eng *engine.Engine, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, contentID, ok := recordKey(w, r)
		if !ok {
			return
		}
		if !mayActFor(r, userID, rbac.PermProgressViewAll, rbac.PermProgressViewOwn) {
			forbidden(w)
			return
		}
		rec, err := eng.Get(r.Context(), userID, contentID)
		if err != nil {
			respondError(w, log, err)
			return
		}
		respondJSON(w, http.StatusOK, rec)
	}
}

// GET /progress/records/{recordID}
func GetRecordHandler(eng *engine.Engine, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "recordID")
		if id == "" {
			badRequest(w, "bad recordID")
			return
		}
		rec, err := eng.GetByID(r.Context(), id)
		if err != nil {
			respondError(w, log, err)
			return
		}
		if !mayActFor(r, rec.UserID, rbac.PermProgressViewAll, rbac.PermProgressViewOwn) {
			forbidden(w)
			return
		}
		respondJSON(w, http.StatusOK, rec)
	}
}

type submitReq struct {
	QuizID  int64            `json:"quiz_id,omitempty"` // defaults to the record's quiz
	Answers progress.Answers `json:"answers"`
}

// POST /progress/{userID}/{contentID}/submit
func SubmitHandler(eng *engine.Engine, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, contentID, ok := recordKey(w, r)
		if !ok {
			return
		}
		if !mayActFor(r, userID, rbac.PermProgressViewAll, rbac.PermProgressSubmit) {
			forbidden(w)
			return
		}
		var req submitReq
		if err := decodeStrict(r, &req); err != nil {
			badRequest(w, "bad json: "+err.Error())
			return
		}
		rec, err := eng.Get(r.Context(), userID, contentID)
		if err != nil {
			respondError(w, log, err)
			return
		}
		quizID, err := submitQuiz(r, rec, req.QuizID)
		if err != nil {
			respondError(w, log, err)
			return
		}
		res, err := eng.Submit(r.Context(), engine.SubmitInput{
			UserID:    userID,
			QuizID:    quizID,
			ContentID: contentID,
			Answers:   req.Answers,
		})
		if err != nil {
			respondError(w, log, err)
			return
		}
		respondJSON(w, http.StatusOK, res)
	}
}

// submitQuiz picks the quiz a submission is scored against. Only callers
// who manage everyone's progress may point a record at a different quiz.
func submitQuiz(r *http.Request, rec progress.Record, bodyQuiz int64) (int64, error) {
	switch {
	case rec.QuizID == nil && bodyQuiz == 0:
		return 0, engine.NewValidationError(nil,
			engine.FieldError{Field: "quiz_id", Error: "required: no quiz assigned to this content"})
	case rec.QuizID == nil:
		return bodyQuiz, nil
	case bodyQuiz == 0 || bodyQuiz == *rec.QuizID:
		return *rec.QuizID, nil
	case rbac.Has(r.Context(), rbac.PermProgressViewAll):
		return bodyQuiz, nil
	default:
		return 0, engine.NewValidationError(nil,
			engine.FieldError{Field: "quiz_id", Error: "does not match the assigned quiz"})
	}
}

// POST /progress/{userID}/{contentID}/reset
func ResetHandler(eng *engine.Engine, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, contentID, ok := recordKey(w, r)
		if !ok {
			return
		}
		rec, err := eng.Reset(r.Context(), userID, contentID)
		if err != nil {
			respondError(w, log, err)
			return
		}
		respondJSON(w, http.StatusOK, rec)
	}
}

// POST /progress/{userID}/quizzes/{quizID}/reset
func ResetByQuizHandler(eng *engine.Engine, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok1 := pathID(r, "userID")
		quizID, ok2 := pathID(r, "quizID")
		if !ok1 || !ok2 {
			badRequest(w, "bad userID or quizID")
			return
		}
		recs, err := eng.ResetByQuiz(r.Context(), userID, quizID)
		if err != nil {
			respondError(w, log, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{"items": recs})
	}
}

type gradeReq struct {
	Grade *float64 `json:"grade"`
}

// PUT /progress/{userID}/{contentID}/grade
func GradeHandler(eng *engine.Engine, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, contentID, ok := recordKey(w, r)
		if !ok {
			return
		}
		var req gradeReq
		if err := decodeStrict(r, &req); err != nil {
			badRequest(w, "bad json: "+err.Error())
			return
		}
		rec, err := eng.RecordGrade(r.Context(), engine.GradeInput{UserID: userID, ContentID: contentID, Grade: req.Grade})
		if err != nil {
			respondError(w, log, err)
			return
		}
		respondJSON(w, http.StatusOK, rec)
	}
}

// DELETE /progress/{userID}/{contentID}
func DeleteHandler(eng *engine.Engine, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, contentID, ok := recordKey(w, r)
		if !ok {
			return
		}
		if err := eng.Delete(r.Context(), userID, contentID); err != nil {
			respondError(w, log, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func recordKey(w http.ResponseWriter, r *http.Request) (userID, contentID int64, ok bool) {
	userID, ok1 := pathID(r, "userID")
	contentID, ok2 := pathID(r, "contentID")
	if !ok1 || !ok2 {
		badRequest(w, "bad userID or contentID")
		return 0, 0, false
	}
	return userID, contentID, true
}
