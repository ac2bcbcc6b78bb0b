package photo

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrConstraintViolation = errors.New("constraint violation")
	ErrNotFound            = errors.New("photo not found")
	ErrAssetMissing        = errors.New("asset missing")
	ErrBatchRejected       = errors.New("batch rejected")
)

// FieldError is one violation. Kind is one of the sentinels above and is what
// errors.Is matches against.
type FieldError struct {
	Row    int // 1-based input row; 0 outside batch context or for the CSV header
	Field  Column
	Reason string
	Kind   error
}

func (e *FieldError) Error() string {
	var b strings.Builder
	if e.Row > 0 {
		fmt.Fprintf(&b, "row %d: ", e.Row)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, "%s: ", e.Field)
	}
	b.WriteString(e.Reason)
	return b.String()
}

func (e *FieldError) Unwrap() error { return e.Kind }

func newFieldError(row int, field Column, kind error, format string, args ...interface{}) *FieldError {
	return &FieldError{Row: row, Field: field, Reason: fmt.Sprintf(format, args...), Kind: kind}
}

// ValidationErrors is the complete set of violations found in one pass
type ValidationErrors []*FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

func (v ValidationErrors) Unwrap() []error {
	errs := make([]error, len(v))
	for i, e := range v {
		errs[i] = e
	}
	return errs
}

// BatchError rejects a whole multi-row operation. Nothing was written.
type BatchError struct {
	Errors ValidationErrors
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("batch rejected with %d error(s): %s", len(e.Errors), e.Errors.Error())
}

func (e *BatchError) Is(target error) bool { return target == ErrBatchRejected }

func (e *BatchError) Unwrap() []error { return e.Errors.Unwrap() }

// Rows returns the distinct row numbers that failed, ascending
func (e *BatchError) Rows() []int {
	var rows []int
	seen := make(map[int]bool)
	for _, fe := range e.Errors {
		if !seen[fe.Row] {
			seen[fe.Row] = true
			rows = append(rows, fe.Row)
		}
	}
	return rows
}
