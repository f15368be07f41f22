package public

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Drivakos/survey-feedback-api/internal/interfaces/http/common"
	"github.com/Drivakos/survey-feedback-api/internal/interfaces/http/middleware"
	publicapp "github.com/Drivakos/survey-feedback-api/internal/public/application"
	publicdomain "github.com/Drivakos/survey-feedback-api/internal/public/domain"
)

func (h *Handler) surveySubmitHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := common.UserFromContext(r.Context())
		if !ok {
			common.WriteError(h.logger, w, http.StatusUnauthorized, "Unauthenticated")
			return
		}

		var req submitRequest
		if err := decodeBody(r, common.MaxSubmissionRequestBody, &req); err != nil {
			common.WriteFieldErrors(h.logger, w, "Validation failed", map[string][]string{
				"answers": {"answers are required and must be a list of {question_id, response}"},
			})
			return
		}

		answers := make([]publicdomain.AnswerInput, 0, len(req.Answers))
		for _, payload := range req.Answers {
			answers = append(answers, publicdomain.AnswerInput{
				QuestionID: payload.QuestionID,
				Response:   payload.Response,
			})
		}

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		receipt, err := h.submissions.Submit(ctx, publicapp.SubmitAnswersCommand{
			SurveyID:       strings.TrimSpace(chi.URLParam(r, "id")),
			ResponderID:    user.ID,
			ResponderEmail: user.Email,
			Answers:        answers,
			ClientIP:       middleware.ClientIP(r),
			UserAgent:      r.UserAgent(),
		})
		if err != nil {
			h.writeServiceError(w, err)
			return
		}

		common.WriteSuccess(h.logger, w, http.StatusCreated, "Survey answers submitted successfully", submitDataResponse{
			SurveyID:     receipt.SurveyID,
			AnswersCount: receipt.AnswersCount,
		})
	}
}
