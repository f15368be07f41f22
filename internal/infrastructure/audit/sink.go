package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Drivakos/survey-feedback-api/internal/public/application"
)

// Sink forwards submission events to an HTTP audit collector and degrades to
// an append-only JSON-lines file when delivery fails. It never propagates
// delivery problems to the submission path; a returned error means both the
// collector and the fallback file were unavailable.
type Sink struct {
	client       *http.Client
	endpoint     string
	fallbackPath string
	attempts     int
	retryDelay   time.Duration
	logger       *log.Logger
	now          func() time.Time
}

// Config defines dependencies and tuning for the sink.
type Config struct {
	Client       *http.Client
	Endpoint     string
	FallbackPath string
	Attempts     int
	RetryDelay   time.Duration
	Logger       *log.Logger
}

// NewSink builds an audit sink. An empty endpoint sends every event straight
// to the fallback file.
func NewSink(cfg Config) *Sink {
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: 3 * time.Second}
	}
	attempts := cfg.Attempts
	if attempts < 1 {
		attempts = 3
	}
	retryDelay := cfg.RetryDelay
	if retryDelay < 0 {
		retryDelay = 0
	}
	return &Sink{
		client:       client,
		endpoint:     strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/"),
		fallbackPath: cfg.FallbackPath,
		attempts:     attempts,
		retryDelay:   retryDelay,
		logger:       cfg.Logger,
		now:          time.Now,
	}
}

// envelope is the wire document sent to the collector: the submission event
// plus a sink-assigned id for dedup on the collector side.
type envelope struct {
	EventID string `json:"event_id"`
	application.SubmissionEvent
}

// Record implements application.AuditSink.
func (s *Sink) Record(ctx context.Context, event application.SubmissionEvent) error {
	doc := envelope{EventID: uuid.NewString(), SubmissionEvent: event}
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("監査イベントのエンコードに失敗: %w", err)
	}

	if s.endpoint != "" {
		var lastErr error
		for i := 0; i < s.attempts; i++ {
			if lastErr = s.deliver(ctx, body); lastErr == nil {
				return nil
			}
			if s.retryDelay > 0 {
				time.Sleep(s.retryDelay)
			}
		}
		if s.logger != nil {
			s.logger.Printf("監査コレクタへの送信に失敗、ファイルへ退避します: %v", lastErr)
		}
	}

	return s.fallbackToFile(body)
}

func (s *Sink) deliver(ctx context.Context, body []byte) error {
	timeout := s.client.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, s.endpoint+"/events", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		message, _ := io.ReadAll(io.LimitReader(res.Body, 1<<16))
		return fmt.Errorf("audit collector rejected event: status=%d body=%s", res.StatusCode, strings.TrimSpace(string(message)))
	}
	return nil
}

// fallbackToFile appends the document as one JSON line to a dated file under
// the fallback directory.
func (s *Sink) fallbackToFile(body []byte) error {
	if s.fallbackPath == "" {
		return fmt.Errorf("audit fallback path not configured")
	}
	if err := os.MkdirAll(s.fallbackPath, 0o755); err != nil {
		return fmt.Errorf("監査フォールバックディレクトリの作成に失敗: %w", err)
	}

	name := fmt.Sprintf("audit-fallback-%s.jsonl", s.now().UTC().Format("2006-01-02"))
	file, err := os.OpenFile(filepath.Join(s.fallbackPath, name), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("監査フォールバックファイルのオープンに失敗: %w", err)
	}
	defer file.Close()

	if _, err := file.Write(append(body, '\n')); err != nil {
		return fmt.Errorf("監査フォールバックファイルへの書き込みに失敗: %w", err)
	}
	return nil
}
