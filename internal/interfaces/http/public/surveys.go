package public

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Drivakos/survey-feedback-api/internal/interfaces/http/common"
)

func (h *Handler) surveyListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		surveys, err := h.surveyQueries.List(ctx)
		if err != nil {
			h.logger.Printf("アンケート一覧の取得に失敗: %v", err)
			common.WriteError(h.logger, w, http.StatusInternalServerError, "Internal server error")
			return
		}

		items := make([]surveySummaryResponse, 0, len(surveys))
		for _, survey := range surveys {
			items = append(items, buildSurveySummaryResponse(survey))
		}

		common.WriteSuccess(h.logger, w, http.StatusOK, "Active surveys retrieved successfully", items)
	}
}

func (h *Handler) surveyDetailHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		id := strings.TrimSpace(chi.URLParam(r, "id"))
		survey, err := h.surveyQueries.Detail(ctx, id)
		if err != nil {
			h.writeServiceError(w, err)
			return
		}

		common.WriteSuccess(h.logger, w, http.StatusOK, "Survey details retrieved successfully", buildSurveyDetailResponse(*survey))
	}
}
