package application

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Drivakos/survey-feedback-api/internal/public/domain"
)

// SurveyRepository is the read port for surveys backed by the record store.
// SurveyRepository は Public コンテキストでアンケートを読み取るためのポート。
type SurveyRepository interface {
	// FindActive returns every active survey without questions.
	FindActive(ctx context.Context) ([]domain.Survey, error)
	// FindActiveByID returns one active survey with its questions, or
	// domain.ErrSurveyNotFound for absent and inactive surveys alike.
	FindActiveByID(ctx context.Context, id string) (*domain.Survey, error)
}

// ResponderRepository handles responder reads/writes.
type ResponderRepository interface {
	// Create persists a responder; domain.ErrEmailTaken on a duplicate email.
	Create(ctx context.Context, email, passwordHash string) (*domain.Responder, error)
	FindByEmail(ctx context.Context, email string) (*domain.Responder, error)
	FindByID(ctx context.Context, id string) (*domain.Responder, error)
}

// AnswerRepository is the write port of the submission guard. SubmitAnswers
// must persist the whole batch exactly once: it checks the responder against
// the survey's full question set and inserts atomically, returning
// domain.ErrDuplicateSubmission when any prior answer exists, with no partial
// write in any outcome.
type AnswerRepository interface {
	SubmitAnswers(ctx context.Context, responderID string, survey domain.Survey, validated []domain.ValidatedAnswer) ([]domain.Answer, error)
}

// CacheStore abstracts the TTL key-value layer in front of survey reads.
// A nil or failing store degrades to direct repository reads.
type CacheStore interface {
	// Get returns the cached payload and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// AuditSink receives a durable record of every completed submission. Sinks
// handle their own degradation; a returned error is operational telemetry
// only and must never surface to the submitting client.
type AuditSink interface {
	Record(ctx context.Context, event SubmissionEvent) error
}

// SubmissionEvent mirrors the audit document shape of the collector index.
type SubmissionEvent struct {
	Timestamp time.Time               `json:"timestamp"`
	Survey    SubmissionEventSurvey   `json:"survey"`
	Responder SubmissionEventAccount  `json:"responder"`
	Answers   []SubmissionEventAnswer `json:"answers"`
	Metadata  SubmissionEventMetadata `json:"metadata"`
}

type SubmissionEventSurvey struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type SubmissionEventAccount struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type SubmissionEventAnswer struct {
	QuestionID  string          `json:"question_id"`
	Response    json.RawMessage `json:"response"`
	SubmittedAt time.Time       `json:"submitted_at"`
}

type SubmissionEventMetadata struct {
	TotalQuestions int    `json:"total_questions"`
	UserAgent      string `json:"user_agent"`
	IPAddress      string `json:"ip_address"`
}

// SurveyQueryService describes survey read use-cases behind the cache.
// SurveyQueryService はアンケート参照ユースケースを提供するリーダーモデル。
type SurveyQueryService interface {
	List(ctx context.Context) ([]domain.Survey, error)
	Detail(ctx context.Context, id string) (*domain.Survey, error)
}

// SubmissionService handles the one write use-case of the system.
type SubmissionService interface {
	Submit(ctx context.Context, cmd SubmitAnswersCommand) (*SubmissionReceipt, error)
}

// SubmitAnswersCommand captures an authenticated submission request.
type SubmitAnswersCommand struct {
	SurveyID       string
	ResponderID    string
	ResponderEmail string
	Answers        []domain.AnswerInput
	ClientIP       string
	UserAgent      string
}

// SubmissionReceipt is the success summary returned to the client.
type SubmissionReceipt struct {
	SurveyID     string
	AnswersCount int
}

// AuthService covers responder registration, login and profile lookup.
type AuthService interface {
	Register(ctx context.Context, cmd RegisterCommand) (*AuthSession, error)
	Login(ctx context.Context, cmd LoginCommand) (*AuthSession, error)
	Profile(ctx context.Context, responderID string) (*domain.Responder, error)
}

// RegisterCommand carries the registration payload.
type RegisterCommand struct {
	Email                string
	Password             string
	PasswordConfirmation string
}

// LoginCommand carries login credentials.
type LoginCommand struct {
	Email    string
	Password string
}

// AuthSession is a responder plus a freshly minted bearer token.
type AuthSession struct {
	Responder domain.Responder
	Token     string
	ExpiresIn int
}
