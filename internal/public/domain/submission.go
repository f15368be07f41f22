package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	// MaxTextAnswerRunes bounds free-text responses, counted in characters.
	MaxTextAnswerRunes = 10000
	// MinScaleValue and MaxScaleValue bound scale responses (closed range).
	MinScaleValue = 1
	MaxScaleValue = 5
)

// AnswerInput is one raw entry of a submission payload before validation.
type AnswerInput struct {
	QuestionID string
	Response   json.RawMessage
}

// ValidatedAnswer is an accepted (question, response) pair. Order follows the
// submitted payload with in-batch duplicates removed.
type ValidatedAnswer struct {
	Question Question
	Response json.RawMessage
}

// ValidateSubmission checks a raw payload against the target survey and
// returns either the ordered, deduplicated set of validated answers or the
// first rejection encountered. Checks run in a fixed order and each failure
// short-circuits: payload structure, in-batch duplicates, survey membership,
// then per-question-type format.
func ValidateSubmission(survey Survey, entries []AnswerInput) ([]ValidatedAnswer, *SubmissionRejection) {
	if len(entries) == 0 {
		return nil, &SubmissionRejection{
			Reason:  RejectionEmptyAnswers,
			Message: "answers are required and must be a non-empty list",
		}
	}

	seen := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		id := strings.TrimSpace(entry.QuestionID)
		if id == "" {
			return nil, &SubmissionRejection{
				Reason:  RejectionMissingQuestionID,
				Message: "every answer must reference a question_id",
			}
		}
		if len(entry.Response) == 0 || string(entry.Response) == "null" {
			return nil, &SubmissionRejection{
				Reason:     RejectionMissingResponse,
				QuestionID: id,
				Message:    "every answer must carry a response value",
			}
		}
		if _, dup := seen[id]; dup {
			return nil, &SubmissionRejection{
				Reason:     RejectionDuplicateInBatch,
				QuestionID: id,
				Message:    "the same question may only be answered once per submission",
			}
		}
		seen[id] = struct{}{}
	}

	// Membership: the set of owned questions matching the request must cover
	// every distinct requested id.
	matched := 0
	for id := range seen {
		if _, ok := survey.QuestionByID(id); ok {
			matched++
		}
	}
	if matched != len(seen) {
		return nil, &SubmissionRejection{
			Reason:  RejectionForeignQuestion,
			Message: "some questions do not belong to this survey",
		}
	}

	validated := make([]ValidatedAnswer, 0, len(entries))
	for _, entry := range entries {
		question, _ := survey.QuestionByID(strings.TrimSpace(entry.QuestionID))
		if !answerFormatValid(question.Type, entry.Response) {
			return nil, &SubmissionRejection{
				Reason:       RejectionBadFormat,
				QuestionID:   question.ID,
				QuestionText: question.QuestionText,
				Message:      fmt.Sprintf("invalid answer format for question: %s", question.QuestionText),
			}
		}
		validated = append(validated, ValidatedAnswer{Question: question, Response: entry.Response})
	}

	return validated, nil
}

// answerFormatValid applies the per-type format rule to a raw JSON value.
func answerFormatValid(qt QuestionType, raw json.RawMessage) bool {
	switch qt {
	case QuestionTypeText:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return false
		}
		n := utf8.RuneCountInString(s)
		return n >= 1 && n <= MaxTextAnswerRunes

	case QuestionTypeScale:
		value, ok := numericValue(raw)
		return ok && value >= MinScaleValue && value <= MaxScaleValue

	case QuestionTypeMultipleChoice:
		s, ok := stringForm(raw)
		if !ok {
			return false
		}
		switch s {
		case "1", "2", "3", "4", "5":
			return true
		}
		return false
	}

	// Unknown question types always reject.
	return false
}

// numericValue accepts JSON numbers and numeric JSON strings alike, matching
// the admission rule of the wire contract.
func numericValue(raw json.RawMessage) (float64, bool) {
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// stringForm converts a JSON string or number to its string representation.
// Other JSON types have no string form here.
func stringForm(raw json.RawMessage) (string, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return "", false
	}
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10), true
	}
	return strconv.FormatFloat(f, 'f', -1, 64), true
}
