package application

import (
	"context"
	"log"
	"time"

	"github.com/Drivakos/survey-feedback-api/internal/public/domain"
)

// submissionService runs the submission pipeline: structural and per-type
// validation, duplicate-guarded persistence, cache invalidation and audit
// forwarding. Failures before the write leave no side effects; the write
// itself commits the whole batch or nothing.
type submissionService struct {
	surveys SurveyRepository
	answers AnswerRepository
	cache   CacheStore
	audit   AuditSink
	logger  *log.Logger
}

// NewSubmissionService wires the submission pipeline. Cache and audit may be
// nil; both are best-effort collaborators that never fail a submission.
func NewSubmissionService(surveys SurveyRepository, answers AnswerRepository, cache CacheStore, audit AuditSink, logger *log.Logger) SubmissionService {
	return &submissionService{surveys: surveys, answers: answers, cache: cache, audit: audit, logger: logger}
}

func (s *submissionService) Submit(ctx context.Context, cmd SubmitAnswersCommand) (*SubmissionReceipt, error) {
	survey, err := s.surveys.FindActiveByID(ctx, cmd.SurveyID)
	if err != nil {
		return nil, err
	}

	validated, rejection := domain.ValidateSubmission(*survey, cmd.Answers)
	if rejection != nil {
		return nil, rejection
	}

	saved, err := s.answers.SubmitAnswers(ctx, cmd.ResponderID, *survey, validated)
	if err != nil {
		return nil, err
	}

	s.invalidateCache(ctx, survey.ID)
	s.recordAudit(ctx, *survey, cmd, saved)

	return &SubmissionReceipt{SurveyID: survey.ID, AnswersCount: len(saved)}, nil
}

// invalidateCache drops the listing and detail keys so the next read
// repopulates from the record store. Listing contents never depend on
// answers; dropping the list key just bounds staleness uniformly.
func (s *submissionService) invalidateCache(ctx context.Context, surveyID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, SurveyListCacheKey, SurveyDetailCacheKey(surveyID)); err != nil && s.logger != nil {
		s.logger.Printf("キャッシュ無効化に失敗 survey=%s: %v", surveyID, err)
	}
}

// recordAudit forwards the completed submission to the audit sink. The sink
// degrades on its own; errors here are telemetry only. The parent context's
// cancellation is detached so a client disconnect after commit cannot drop
// the audit record.
func (s *submissionService) recordAudit(ctx context.Context, survey domain.Survey, cmd SubmitAnswersCommand, saved []domain.Answer) {
	if s.audit == nil {
		return
	}

	answers := make([]SubmissionEventAnswer, 0, len(saved))
	for _, answer := range saved {
		answers = append(answers, SubmissionEventAnswer{
			QuestionID:  answer.QuestionID,
			Response:    answer.Response,
			SubmittedAt: answer.CreatedAt,
		})
	}

	event := SubmissionEvent{
		Timestamp: time.Now().UTC(),
		Survey: SubmissionEventSurvey{
			ID:          survey.ID,
			Title:       survey.Title,
			Description: survey.Description,
		},
		Responder: SubmissionEventAccount{
			ID:    cmd.ResponderID,
			Email: cmd.ResponderEmail,
		},
		Answers: answers,
		Metadata: SubmissionEventMetadata{
			TotalQuestions: len(saved),
			UserAgent:      cmd.UserAgent,
			IPAddress:      cmd.ClientIP,
		},
	}

	if err := s.audit.Record(context.WithoutCancel(ctx), event); err != nil && s.logger != nil {
		s.logger.Printf("監査イベントの記録に失敗 survey=%s responder=%s: %v", survey.ID, cmd.ResponderID, err)
	}
}
