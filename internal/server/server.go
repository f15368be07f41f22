package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	goredis "github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/Drivakos/survey-feedback-api/internal/config"
	"github.com/Drivakos/survey-feedback-api/internal/infrastructure/audit"
	mongodoc "github.com/Drivakos/survey-feedback-api/internal/infrastructure/mongo"
	redisinfra "github.com/Drivakos/survey-feedback-api/internal/infrastructure/redis"
	"github.com/Drivakos/survey-feedback-api/internal/interfaces/http/common"
	apimiddleware "github.com/Drivakos/survey-feedback-api/internal/interfaces/http/middleware"
	publichttp "github.com/Drivakos/survey-feedback-api/internal/interfaces/http/public"
	publicapp "github.com/Drivakos/survey-feedback-api/internal/public/application"
)

// Server は HTTP サーバーのライフサイクルを管理し、各ハンドラへ依存注入するコンポジションルート。
// アプリケーションサービスをルータへ接続する責務のみを担い、ドメインロジックは持たない。
type Server struct {
	logger         *log.Logger
	client         *mongo.Client
	rdb            *goredis.Client
	responderRepo  *mongodoc.ResponderRepository
	answerRepo     *mongodoc.AnswerRepository
	surveyQueries  publicapp.SurveyQueryService
	submissions    publicapp.SubmissionService
	authService    publicapp.AuthService
	counterStore   *redisinfra.CounterStore
	jwtSecret      []byte
	jwtIssuer      string
	rateLimit      int64
	rateWindow     time.Duration
	addr           string
	allowedOrigins []string
}

type authenticatedUser = common.AuthenticatedUser

// New は Config と Mongo/Redis クライアントを受け取り、サービスとハンドラを組み立てた Server を返す。
// 依存解決の起点となるファクトリとして機能する。
func New(cfg config.Config, client *mongo.Client, rdb *goredis.Client) *Server {
	database := client.Database(cfg.MongoDatabase)

	surveyRepo := mongodoc.NewSurveyRepository(database, cfg.SurveyCollection)
	responderRepo := mongodoc.NewResponderRepository(database, cfg.ResponderCollection)
	answerRepo := mongodoc.NewAnswerRepository(database, cfg.AnswerCollection)

	cacheStore := redisinfra.NewCacheStore(rdb)
	counterStore := redisinfra.NewCounterStore(rdb)

	auditSink := audit.NewSink(audit.Config{
		Client:       &http.Client{Timeout: cfg.AuditTimeout},
		Endpoint:     cfg.AuditEndpoint,
		FallbackPath: cfg.AuditFallbackPath,
		RetryDelay:   200 * time.Millisecond,
		Logger:       cfg.ServerLog,
	})

	return &Server{
		logger:        cfg.ServerLog,
		client:        client,
		rdb:           rdb,
		responderRepo: responderRepo,
		answerRepo:    answerRepo,
		surveyQueries: publicapp.NewSurveyQueryService(surveyRepo, cacheStore, cfg.CacheTTL, cfg.ServerLog),
		submissions:   publicapp.NewSubmissionService(surveyRepo, answerRepo, cacheStore, auditSink, cfg.ServerLog),
		authService: publicapp.NewAuthService(responderRepo, publicapp.TokenConfig{
			Secret: cfg.JWTSecret,
			Issuer: cfg.JWTIssuer,
			TTL:    cfg.JWTTTL,
		}),
		counterStore:   counterStore,
		jwtSecret:      cfg.JWTSecret,
		jwtIssuer:      cfg.JWTIssuer,
		rateLimit:      cfg.RateLimit,
		rateWindow:     cfg.RateWindow,
		addr:           cfg.Addr,
		allowedOrigins: append([]string(nil), cfg.AllowedOrigins...),
	}
}

// Run はHTTPサーバーを起動し、ルーティングやミドルウェアを組み立てる。
// レート制限は全エンドポイントの前段に入る。
func (s *Server) Run() error {
	if err := s.ensureIndexes(context.Background()); err != nil {
		return fmt.Errorf("インデックスの作成に失敗しました: %w", err)
	}

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Logger)
	router.Use(chimiddleware.Recoverer)
	router.Use(withCORS(s.allowedOrigins))
	router.Use(apimiddleware.RateLimit(apimiddleware.RateLimitOptions{
		Store:  s.counterStore,
		Limit:  s.rateLimit,
		Window: s.rateWindow,
		Logger: s.logger,
	}))

	router.Get("/healthz", s.healthHandler())

	publicHandler := publichttp.NewHandler(publichttp.Config{
		Logger:        s.logger,
		SurveyQueries: s.surveyQueries,
		Submissions:   s.submissions,
		Auth:          s.authService,
	})
	publicHandler.Register(router, s.authMiddleware)

	httpServer := &http.Server{
		Addr:              s.addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Printf("HTTP サーバー起動: http://%s", s.addr)
		errChan <- httpServer.ListenAndServe()
	}()

	waitForShutdown(httpServer, errChan, s)
	return nil
}

// ensureIndexes はユニーク制約を起動時に保証する。重複提出防止と email の一意性は
// ここで張るインデックスが前提になる。
func (s *Server) ensureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.responderRepo.EnsureIndexes(ctx); err != nil {
		return err
	}
	return s.answerRepo.EnsureIndexes(ctx)
}

// withCORS は許可されたオリジン情報をもとに CORS ヘッダーを付与するミドルウェアを返す。
func withCORS(origins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{})
	allowAll := false
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		if origin == "*" {
			allowAll = true
			continue
		}
		allowed[origin] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := strings.TrimSpace(r.Header.Get("Origin"))
			if origin == "" || (!allowAll && len(allowed) > 0 && !originAllowed(origin, allowed)) {
				if r.Method == http.MethodOptions {
					w.WriteHeader(http.StatusNoContent)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Authorization,Content-Type")
			w.Header().Set("Access-Control-Max-Age", "300")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// originAllowed は指定された Origin が許可リストに含まれるか判定する。
func originAllowed(origin string, allowed map[string]struct{}) bool {
	if len(allowed) == 0 {
		return true
	}
	_, ok := allowed[origin]
	return ok
}

// healthHandler は MongoDB と Redis への疎通確認を行い、監視系からのヘルスチェック要求に応える。
func (s *Server) healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
			common.WriteJSON(s.logger, w, http.StatusServiceUnavailable, map[string]string{
				"status": "degraded",
				"error":  err.Error(),
			})
			return
		}
		if err := s.rdb.Ping(ctx).Err(); err != nil {
			common.WriteJSON(s.logger, w, http.StatusServiceUnavailable, map[string]string{
				"status": "degraded",
				"error":  err.Error(),
			})
			return
		}

		common.WriteJSON(s.logger, w, http.StatusOK, map[string]string{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	}
}

// authMiddleware は Authorization ヘッダーから JWT を検証し、認証済み回答者をコンテキストへ詰める。
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
		if authHeader == "" {
			common.WriteError(s.logger, w, http.StatusUnauthorized, "Unauthenticated")
			return
		}

		const bearerPrefix = "Bearer "
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			common.WriteError(s.logger, w, http.StatusUnauthorized, "Unauthenticated")
			return
		}

		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, bearerPrefix))
		if tokenString == "" {
			common.WriteError(s.logger, w, http.StatusUnauthorized, "Unauthenticated")
			return
		}

		claims, err := s.parseAuthToken(tokenString)
		if err != nil {
			common.WriteError(s.logger, w, http.StatusUnauthorized, "Unauthenticated")
			return
		}

		user := authenticatedUser{
			ID:    claims.Subject,
			Email: claims.Email,
		}

		ctx := common.ContextWithUser(r.Context(), user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// parseAuthToken は署名検証と Issuer/Subject の整合性を確認する。
func (s *Server) parseAuthToken(tokenString string) (*authClaims, error) {
	claims := &authClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %s", token.Method.Alg())
		}
		return s.jwtSecret, nil
	}, jwt.WithLeeway(30*time.Second))

	if err != nil || !token.Valid {
		return nil, fmt.Errorf("アクセストークンが無効です")
	}
	if s.jwtIssuer != "" && claims.Issuer != s.jwtIssuer {
		return nil, fmt.Errorf("アクセストークンの発行者が一致しません")
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("アクセストークンに subject がありません")
	}

	return claims, nil
}

type authClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
}

// shutdown は MongoDB/Redis クライアントをタイムアウト付きで切断し、終了時のリソースリークを防ぐ。
func (s *Server) shutdown(ctx context.Context) {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.client.Disconnect(shutdownCtx); err != nil {
		s.logger.Printf("MongoDB 切断時にエラー: %v", err)
	}
	if err := s.rdb.Close(); err != nil {
		s.logger.Printf("Redis 切断時にエラー: %v", err)
	}
}

// waitForShutdown は ListenAndServe の終了と OS シグナルを監視し、graceful shutdown を実現する。
func waitForShutdown(httpServer *http.Server, errChan <-chan error, srv *Server) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			srv.logger.Fatalf("サーバーが異常終了: %v", err)
		}
	case sig := <-sigChan:
		srv.logger.Printf("シグナル %s を受信。サーバー停止処理を開始します。", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			srv.logger.Printf("サーバー停止時にエラー: %v", err)
		}
	}

	srv.shutdown(context.Background())
}
