package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/zaktec/haibl-sub000/internal/auth"
	"github.com/zaktec/haibl-sub000/internal/engine"
	"github.com/zaktec/haibl-sub000/internal/rbac"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

type errorBody struct {
	Error  string              `json:"error"`
	Fields []engine.FieldError `json:"fields,omitempty"`
}

// respondError maps engine errors onto status codes. A failed submission is
// never reported with a 2xx.
func respondError(w http.ResponseWriter, log zerolog.Logger, err error) {
	var ve *engine.ValidationError
	switch {
	case errors.As(err, &ve):
		respondJSON(w, http.StatusBadRequest, errorBody{Error: ve.Error(), Fields: ve.Fields})
	case errors.Is(err, engine.ErrQuizNotFound), errors.Is(err, engine.ErrNotFound):
		respondJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	case errors.Is(err, engine.ErrDuplicateAssignment):
		respondJSON(w, http.StatusConflict, errorBody{Error: err.Error()})
	case errors.Is(err, engine.ErrStorageUnavailable):
		respondJSON(w, http.StatusServiceUnavailable, errorBody{Error: "storage unavailable"})
	default:
		log.Error().Err(err).Msg("unhandled error")
		respondJSON(w, http.StatusInternalServerError, errorBody{Error: http.StatusText(http.StatusInternalServerError)})
	}
}

func badRequest(w http.ResponseWriter, msg string) {
	respondJSON(w, http.StatusBadRequest, errorBody{Error: msg})
}

func forbidden(w http.ResponseWriter) {
	respondJSON(w, http.StatusForbidden, errorBody{Error: "forbidden"})
}

// decodeStrict rejects bodies with fields the target does not declare.
func decodeStrict(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func pathID(r *http.Request, name string) (int64, bool) {
	return parseID(chi.URLParam(r, name))
}

func parseID(s string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// subjectID is the numeric user id of the caller, if the token carries one.
func subjectID(r *http.Request) (int64, bool) {
	return parseID(auth.SubjectFromContext(r.Context()))
}

// mayActFor reports whether the caller can touch userID's records: either
// with allPerm, or with ownPerm when userID is the caller.
func mayActFor(r *http.Request, userID int64, allPerm, ownPerm string) bool {
	if rbac.Has(r.Context(), allPerm) {
		return true
	}
	sub, ok := subjectID(r)
	return ok && sub == userID && rbac.Has(r.Context(), ownPerm)
}
