package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/zaktec/haibl-sub000/internal/progress"
)

var (
	// ErrQuizNotFound means the quiz does not exist or has no linked questions.
	ErrQuizNotFound = errors.New("quiz not found")

	ErrNotFound            = progress.ErrNotFound
	ErrDuplicateAssignment = progress.ErrDuplicateAssignment
	ErrStorageUnavailable  = progress.ErrStorageUnavailable
)

// FieldError is used to indicate an error with a specific input field.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// ValidationError rejects a malformed request before anything is written.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{Err: err, Fields: flds}
}

func (e *ValidationError) Error() string {
	if e.Err == nil {
		return "validation failed"
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// fromValidator converts validator output into a ValidationError. Any
// other error is returned unchanged.
func fromValidator(err error) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	flds := make([]FieldError, 0, len(ve))
	names := make([]string, 0, len(ve))
	for _, fe := range ve {
		msg := "failed " + fe.Tag()
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}
		flds = append(flds, FieldError{Field: fe.Field(), Error: msg})
		names = append(names, fe.Field())
	}
	return NewValidationError(fmt.Errorf("invalid %s", strings.Join(names, ", ")), flds...)
}
