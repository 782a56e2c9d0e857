package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/crowdlog/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	CORSAllowedOrigin string
	TokenVerifier     middleware.TokenVerifier
	RateLimiter       *middleware.RateLimiter

	// メトリクス
	MetricsRecorder middleware.HTTPMetricsRecorder
	MetricsHandler  http.Handler

	// 認証
	AuthService AuthServiceInterface
	DBChecker   DBChecker

	// 検出履歴
	HistoryService HistoryServiceInterface

	// 開発モード（500レスポンスにエラー詳細を含めるか）
	Dev bool
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Metrics → Logging
//
// 認証ルート（/api/auth/*）はトークン不要。
// 履歴ルート（/api/history/*）はローカル検証のBearerトークンとレート制限を要求する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	if deps.MetricsRecorder != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.MetricsRecorder))
	}
	if deps.Logger != nil {
		r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	}

	authHandler := NewAuthHandler(deps.AuthService, deps.DBChecker, deps.Dev)
	historyHandler := NewHistoryHandler(deps.HistoryService, deps.Dev)

	// ヘルスチェック（認証不要）
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Prometheusメトリクス
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	// --- 認証ルート（トークン不要） ---
	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Get("/me", authHandler.Me)
		r.Get("/test-db", authHandler.TestDB)
	})

	// --- 検出履歴ルート（ローカル検証のBearerトークン必須） ---
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(deps.TokenVerifier))
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.Middleware())
		}

		r.Route("/api/history", func(r chi.Router) {
			r.Post("/", historyHandler.Record)
			r.Get("/", historyHandler.List)
			r.Get("/summary", historyHandler.Summary)
		})
	})

	// 未定義ルートは404
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
	})

	return r
}
