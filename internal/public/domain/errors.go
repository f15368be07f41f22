package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by the application and interface layers.
var (
	// ErrSurveyNotFound covers both absent and inactive surveys; the two are
	// deliberately indistinguishable so status does not leak.
	ErrSurveyNotFound = errors.New("survey not found or inactive")

	// ErrDuplicateSubmission means the responder already answered at least one
	// question of the target survey.
	ErrDuplicateSubmission = errors.New("answers already submitted for this survey")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email has already been taken")
	ErrResponderNotFound  = errors.New("responder not found")
)

// ValidationError carries field-level detail for structurally invalid input.
// It maps to HTTP 422 at the interface layer.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	return "validation failed"
}

// NewValidationError builds a single-field validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string][]string{field: {message}}}
}

// Add appends a message for a field.
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = map[string][]string{}
	}
	e.Fields[field] = append(e.Fields[field], message)
}

// Empty reports whether no field has been flagged.
func (e *ValidationError) Empty() bool { return len(e.Fields) == 0 }

// RejectionReason enumerates why a submission payload was refused. Validation
// returns these as values; no panics or sentinel-free control flow.
type RejectionReason string

const (
	RejectionEmptyAnswers      RejectionReason = "empty_answers"
	RejectionMissingQuestionID RejectionReason = "missing_question_id"
	RejectionMissingResponse   RejectionReason = "missing_response"
	RejectionDuplicateInBatch  RejectionReason = "duplicate_question_in_batch"
	RejectionForeignQuestion   RejectionReason = "question_not_in_survey"
	RejectionBadFormat         RejectionReason = "invalid_answer_format"
)

// SubmissionRejection is the structured refusal produced by submission
// validation. QuestionID and QuestionText identify the offending question
// where applicable.
type SubmissionRejection struct {
	Reason       RejectionReason
	QuestionID   string
	QuestionText string
	Message      string
}

func (r *SubmissionRejection) Error() string {
	if r.QuestionText != "" {
		return fmt.Sprintf("%s (question: %s)", r.Message, r.QuestionText)
	}
	return r.Message
}
