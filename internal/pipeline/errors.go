package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

// Stage identifies one step of the booking pipeline.
type Stage string

const (
	StageValidate Stage = "validate"
	StagePersist  Stage = "persist"
	StageNotify   Stage = "notify"
	StageSchedule Stage = "schedule"
)

// StageError reports which pipeline stage failed and why.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// FailedStage extracts the failed stage from a pipeline error.
func FailedStage(err error) (Stage, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return "", false
}

// IncompleteRequestError lists the required fields missing from a request.
// It is always wrapped in a StageError for StageValidate.
type IncompleteRequestError struct {
	Missing []string
}

func (e *IncompleteRequestError) Error() string {
	return "missing required fields: " + strings.Join(e.Missing, ", ")
}

// IsIncomplete checks whether the error is a validation rejection.
func IsIncomplete(err error) (*IncompleteRequestError, bool) {
	var ie *IncompleteRequestError
	if errors.As(err, &ie) {
		return ie, true
	}
	return nil, false
}
