package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Drivakos/survey-feedback-api/internal/public/domain"
)

type fakeSurveyRepository struct {
	mu            sync.Mutex
	surveys       map[string]domain.Survey
	listCalls     int
	detailCalls   int
	listErr       error
	detailErrByID map[string]error
}

func newFakeSurveyRepository(surveys ...domain.Survey) *fakeSurveyRepository {
	repo := &fakeSurveyRepository{surveys: map[string]domain.Survey{}}
	for _, s := range surveys {
		repo.surveys[s.ID] = s
	}
	return repo
}

func (r *fakeSurveyRepository) FindActive(ctx context.Context) ([]domain.Survey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls++
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]domain.Survey, 0, len(r.surveys))
	for _, s := range r.surveys {
		if s.Status == domain.SurveyStatusActive {
			summary := s
			summary.Questions = nil
			out = append(out, summary)
		}
	}
	return out, nil
}

func (r *fakeSurveyRepository) FindActiveByID(ctx context.Context, id string) (*domain.Survey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.detailCalls++
	if err := r.detailErrByID[id]; err != nil {
		return nil, err
	}
	s, ok := r.surveys[id]
	if !ok || s.Status != domain.SurveyStatusActive {
		return nil, domain.ErrSurveyNotFound
	}
	copied := s
	return &copied, nil
}

// fakeAnswerRepository enforces the same exactly-once guarantee as the real
// store: the first submission per (responder, survey) wins, later ones fail
// with no partial write.
type fakeAnswerRepository struct {
	mu        sync.Mutex
	submitted map[string][]domain.Answer
	submitErr error
	calls     int
}

func newFakeAnswerRepository() *fakeAnswerRepository {
	return &fakeAnswerRepository{submitted: map[string][]domain.Answer{}}
}

func (r *fakeAnswerRepository) SubmitAnswers(ctx context.Context, responderID string, survey domain.Survey, validated []domain.ValidatedAnswer) ([]domain.Answer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.submitErr != nil {
		return nil, r.submitErr
	}
	key := responderID + "/" + survey.ID
	if _, ok := r.submitted[key]; ok {
		return nil, domain.ErrDuplicateSubmission
	}
	now := time.Now().UTC()
	saved := make([]domain.Answer, 0, len(validated))
	for i, v := range validated {
		saved = append(saved, domain.Answer{
			ID:          key + "/" + v.Question.ID,
			SurveyID:    survey.ID,
			QuestionID:  v.Question.ID,
			ResponderID: responderID,
			Response:    append(json.RawMessage(nil), v.Response...),
			CreatedAt:   now.Add(time.Duration(i)),
		})
	}
	r.submitted[key] = saved
	return saved, nil
}

type fakeCacheStore struct {
	mu      sync.Mutex
	entries map[string][]byte
	getErr  error
	setErr  error
	delErr  error
	deleted []string
}

func newFakeCacheStore() *fakeCacheStore {
	return &fakeCacheStore{entries: map[string][]byte{}}
}

func (c *fakeCacheStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	payload, ok := c.entries[key]
	return payload, ok, nil
}

func (c *fakeCacheStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.setErr != nil {
		return c.setErr
	}
	c.entries[key] = append([]byte(nil), value...)
	return nil
}

func (c *fakeCacheStore) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.delErr != nil {
		return c.delErr
	}
	for _, key := range keys {
		delete(c.entries, key)
		c.deleted = append(c.deleted, key)
	}
	return nil
}

func (c *fakeCacheStore) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}

type fakeAuditSink struct {
	mu     sync.Mutex
	events []SubmissionEvent
	err    error
}

func (s *fakeAuditSink) Record(ctx context.Context, event SubmissionEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, event)
	return nil
}

func (s *fakeAuditSink) recorded() []SubmissionEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SubmissionEvent(nil), s.events...)
}

type fakeResponderRepository struct {
	mu         sync.Mutex
	byEmail    map[string]domain.Responder
	byID       map[string]domain.Responder
	nextID     int
	createErr  error
	lookupErrs map[string]error
}

func newFakeResponderRepository() *fakeResponderRepository {
	return &fakeResponderRepository{
		byEmail: map[string]domain.Responder{},
		byID:    map[string]domain.Responder{},
		nextID:  1,
	}
}

func (r *fakeResponderRepository) Create(ctx context.Context, email, passwordHash string) (*domain.Responder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	if _, ok := r.byEmail[email]; ok {
		return nil, domain.ErrEmailTaken
	}
	responder := domain.Responder{
		ID:           fmt.Sprintf("responder-%d", r.nextID),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	r.nextID++
	r.byEmail[email] = responder
	r.byID[responder.ID] = responder
	return &responder, nil
}

func (r *fakeResponderRepository) FindByEmail(ctx context.Context, email string) (*domain.Responder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.lookupErrs[email]; err != nil {
		return nil, err
	}
	responder, ok := r.byEmail[email]
	if !ok {
		return nil, domain.ErrResponderNotFound
	}
	copied := responder
	return &copied, nil
}

func (r *fakeResponderRepository) FindByID(ctx context.Context, id string) (*domain.Responder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	responder, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrResponderNotFound
	}
	copied := responder
	return &copied, nil
}

var errStoreDown = errors.New("store unavailable")
