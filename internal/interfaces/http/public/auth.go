package public

import (
	"context"
	"net/http"
	"time"

	"github.com/Drivakos/survey-feedback-api/internal/interfaces/http/common"
	publicapp "github.com/Drivakos/survey-feedback-api/internal/public/application"
)

func (h *Handler) registerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := decodeBody(r, common.MaxAuthRequestBody, &req); err != nil {
			common.WriteFieldErrors(h.logger, w, "Validation failed", map[string][]string{
				"body": {"request body must be valid JSON"},
			})
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		session, err := h.auth.Register(ctx, publicapp.RegisterCommand{
			Email:                req.Email,
			Password:             req.Password,
			PasswordConfirmation: req.PasswordConfirmation,
		})
		if err != nil {
			h.writeServiceError(w, err)
			return
		}

		common.WriteSuccess(h.logger, w, http.StatusCreated, "Responder registered successfully", buildAuthDataResponse(*session))
	}
}

func (h *Handler) loginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := decodeBody(r, common.MaxAuthRequestBody, &req); err != nil {
			common.WriteFieldErrors(h.logger, w, "Validation failed", map[string][]string{
				"body": {"request body must be valid JSON"},
			})
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		session, err := h.auth.Login(ctx, publicapp.LoginCommand{
			Email:    req.Email,
			Password: req.Password,
		})
		if err != nil {
			h.writeServiceError(w, err)
			return
		}

		common.WriteSuccess(h.logger, w, http.StatusOK, "Login successful", buildAuthDataResponse(*session))
	}
}

func (h *Handler) meHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := common.UserFromContext(r.Context())
		if !ok {
			common.WriteError(h.logger, w, http.StatusUnauthorized, "Unauthenticated")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		responder, err := h.auth.Profile(ctx, user.ID)
		if err != nil {
			h.writeServiceError(w, err)
			return
		}

		common.WriteSuccess(h.logger, w, http.StatusOK, "Responder details retrieved successfully", buildResponderResponse(*responder))
	}
}
