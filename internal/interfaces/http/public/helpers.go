package public

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/Drivakos/survey-feedback-api/internal/interfaces/http/common"
	publicdomain "github.com/Drivakos/survey-feedback-api/internal/public/domain"
)

// decodeBody parses a JSON request body with a size cap and strict fields.
func decodeBody(r *http.Request, limit int64, v any) error {
	defer r.Body.Close()
	decoder := json.NewDecoder(io.LimitReader(r.Body, limit))
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

// writeServiceError maps application errors onto the HTTP error contract.
// Absent and inactive surveys share one 404; rejection and duplicate errors
// are 422 in the validation shape; anything unrecognised is a generic 500
// so no partial-state detail leaks.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	var verr *publicdomain.ValidationError
	if errors.As(err, &verr) {
		common.WriteFieldErrors(h.logger, w, "Validation failed", verr.Fields)
		return
	}

	var rejection *publicdomain.SubmissionRejection
	if errors.As(err, &rejection) {
		common.WriteError(h.logger, w, http.StatusUnprocessableEntity, rejectionMessage(rejection))
		return
	}

	switch {
	case errors.Is(err, publicdomain.ErrSurveyNotFound):
		common.WriteError(h.logger, w, http.StatusNotFound, "Survey not found or inactive")
	case errors.Is(err, publicdomain.ErrDuplicateSubmission):
		common.WriteError(h.logger, w, http.StatusUnprocessableEntity, "You have already submitted answers for this survey")
	case errors.Is(err, publicdomain.ErrInvalidCredentials):
		common.WriteError(h.logger, w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, publicdomain.ErrResponderNotFound):
		common.WriteError(h.logger, w, http.StatusUnauthorized, "Unauthenticated")
	default:
		h.logger.Printf("リクエスト処理に失敗: %v", err)
		common.WriteError(h.logger, w, http.StatusInternalServerError, "Internal server error")
	}
}

func rejectionMessage(rejection *publicdomain.SubmissionRejection) string {
	switch rejection.Reason {
	case publicdomain.RejectionForeignQuestion:
		return "Some questions do not belong to this survey"
	case publicdomain.RejectionBadFormat:
		return "Invalid answer format for question: " + rejection.QuestionText
	default:
		return "Validation failed: " + rejection.Message
	}
}
