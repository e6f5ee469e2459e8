package http

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/zaktec/haibl-sub000/internal/engine"
	"github.com/zaktec/haibl-sub000/internal/rbac"
)

// GET /quizzes/{quizID}
// Correct answers are only included for callers with quiz:view-answers.
func GetQuizHandler(eng *engine.Engine, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quizID, ok := pathID(r, "quizID")
		if !ok {
			badRequest(w, "bad quizID")
			return
		}
		z, err := eng.Quiz(r.Context(), quizID)
		if err != nil {
			respondError(w, log, err)
			return
		}
		if !rbac.Has(r.Context(), rbac.PermQuizViewAnswers) {
			z = z.StripAnswers()
		}
		respondJSON(w, http.StatusOK, z)
	}
}
