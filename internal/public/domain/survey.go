package domain

import (
	"encoding/json"
	"time"
)

// QuestionType determines which format rule applies to a submitted response.
type QuestionType string

const (
	QuestionTypeText           QuestionType = "text"
	QuestionTypeScale          QuestionType = "scale"
	QuestionTypeMultipleChoice QuestionType = "multiple_choice"
)

// SurveyStatus gates both read and write visibility. Inactive surveys are
// indistinguishable from absent ones to callers.
type SurveyStatus string

const (
	SurveyStatusActive   SurveyStatus = "active"
	SurveyStatusInactive SurveyStatus = "inactive"
)

// Survey represents a statused collection of questions.
type Survey struct {
	ID          string
	Title       string
	Description string
	Status      SurveyStatus
	Questions   []Question
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Question belongs to exactly one survey and is immutable once created.
type Question struct {
	ID           string
	SurveyID     string
	Type         QuestionType
	QuestionText string
}

// QuestionIDs returns the ids of every question owned by the survey.
func (s Survey) QuestionIDs() []string {
	ids := make([]string, 0, len(s.Questions))
	for _, q := range s.Questions {
		ids = append(ids, q.ID)
	}
	return ids
}

// QuestionByID looks up an owned question; ok is false for foreign ids.
func (s Survey) QuestionByID(id string) (Question, bool) {
	for _, q := range s.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

// Responder is an authenticated end user who answers surveys.
// PasswordHash is a bcrypt digest and never leaves the service.
type Responder struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Answer is one responder's response to one question. Response carries the
// submitted JSON value verbatim; this is the canonical stored encoding, so a
// value read back is byte-identical to what the client sent.
type Answer struct {
	ID          string
	SurveyID    string
	QuestionID  string
	ResponderID string
	Response    json.RawMessage
	CreatedAt   time.Time
}
