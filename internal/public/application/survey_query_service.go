package application

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/Drivakos/survey-feedback-api/internal/public/domain"
)

const (
	// SurveyListCacheKey holds the active-survey listing.
	SurveyListCacheKey = "surveys:active"
	// surveyDetailCachePrefix + id holds one active survey with questions.
	surveyDetailCachePrefix = "surveys:detail:"
)

// SurveyDetailCacheKey returns the cache key of one survey's detail view.
func SurveyDetailCacheKey(surveyID string) string {
	return surveyDetailCachePrefix + surveyID
}

// surveyQueryService implements SurveyQueryService as a read-through cache:
// on miss it populates from the repository with a fixed TTL. "Not found" is
// never cached, and any cache failure degrades to a direct repository read.
type surveyQueryService struct {
	repo   SurveyRepository
	cache  CacheStore
	ttl    time.Duration
	logger *log.Logger
}

// NewSurveyQueryService builds the cached survey reader. A nil cache disables
// caching entirely.
func NewSurveyQueryService(repo SurveyRepository, cache CacheStore, ttl time.Duration, logger *log.Logger) SurveyQueryService {
	return &surveyQueryService{repo: repo, cache: cache, ttl: ttl, logger: logger}
}

func (s *surveyQueryService) List(ctx context.Context) ([]domain.Survey, error) {
	if payload, ok := s.cacheGet(ctx, SurveyListCacheKey); ok {
		var surveys []domain.Survey
		if err := json.Unmarshal(payload, &surveys); err == nil {
			return surveys, nil
		}
		// 壊れたキャッシュはリポジトリから読み直す。
	}

	surveys, err := s.repo.FindActive(ctx)
	if err != nil {
		return nil, err
	}

	s.cachePut(ctx, SurveyListCacheKey, surveys)
	return surveys, nil
}

func (s *surveyQueryService) Detail(ctx context.Context, id string) (*domain.Survey, error) {
	key := SurveyDetailCacheKey(id)
	if payload, ok := s.cacheGet(ctx, key); ok {
		var survey domain.Survey
		if err := json.Unmarshal(payload, &survey); err == nil {
			return &survey, nil
		}
	}

	survey, err := s.repo.FindActiveByID(ctx, id)
	if err != nil {
		// Absent and inactive surveys both surface as not-found and are
		// deliberately not cached.
		return nil, err
	}

	s.cachePut(ctx, key, survey)
	return survey, nil
}

func (s *surveyQueryService) cacheGet(ctx context.Context, key string) ([]byte, bool) {
	if s.cache == nil {
		return nil, false
	}
	payload, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		if s.logger != nil {
			s.logger.Printf("キャッシュ読み取りに失敗 key=%q: %v", key, err)
		}
		return nil, false
	}
	return payload, ok
}

func (s *surveyQueryService) cachePut(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, payload, s.ttl); err != nil && s.logger != nil {
		s.logger.Printf("キャッシュ書き込みに失敗 key=%q: %v", key, err)
	}
}
