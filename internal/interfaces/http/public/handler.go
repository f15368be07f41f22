package public

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	publicapp "github.com/Drivakos/survey-feedback-api/internal/public/application"
)

// Handler wires public HTTP endpoints to application services.
type Handler struct {
	logger        *log.Logger
	surveyQueries publicapp.SurveyQueryService
	submissions   publicapp.SubmissionService
	auth          publicapp.AuthService
}

// Config defines dependencies required by Handler.
type Config struct {
	Logger        *log.Logger
	SurveyQueries publicapp.SurveyQueryService
	Submissions   publicapp.SubmissionService
	Auth          publicapp.AuthService
}

// NewHandler constructs a public HTTP handler set.
func NewHandler(cfg Config) *Handler {
	return &Handler{
		logger:        cfg.Logger,
		surveyQueries: cfg.SurveyQueries,
		submissions:   cfg.Submissions,
		auth:          cfg.Auth,
	}
}

// Register mounts all public routes onto the router.
func (h *Handler) Register(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Post("/register", h.registerHandler())
	r.Post("/login", h.loginHandler())
	r.Get("/surveys", h.surveyListHandler())
	r.Get("/surveys/{id}", h.surveyDetailHandler())
	r.With(authMiddleware).Post("/surveys/{id}/submit", h.surveySubmitHandler())
	r.With(authMiddleware).Get("/me", h.meHandler())
}
