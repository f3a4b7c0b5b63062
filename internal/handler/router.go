package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/storeblog/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	Metrics           middleware.StatusRecorder
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter

	// ブログ管理
	BlogService BlogServiceInterface
	Importer    FeedImporterInterface

	// ストアフロント
	PublishedFinder PublishedPostFinder
	Renderer        HTMLRenderer

	// 運用エンドポイント
	MetricsHandler http.Handler
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Logging → RateLimit(General)
//
// 書き込み系エンドポイント（作成・更新・削除・取り込み）には
// さらに書き込み専用レート制限を追加で適用する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewLoggingMiddleware(deps.Logger, deps.Metrics))

	blogHandler := NewBlogHandler(deps.BlogService, deps.Importer)
	storefrontHandler := NewStorefrontHandler(deps.PublishedFinder, deps.Renderer)

	// --- 運用エンドポイント（レート制限の外） ---

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	// --- APIルート ---
	// ミドルウェアスタック: RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimiter.GeneralMiddleware())

		writeLimit := deps.RateLimiter.WriteMiddleware()

		// ブログ管理（管理ダッシュボード向け）
		r.Route("/api/admin/blogs", func(r chi.Router) {
			r.Get("/", blogHandler.ListPosts)
			r.With(writeLimit).Post("/", blogHandler.CreatePost)

			// POST /api/admin/blogs/import - フィード取り込み
			r.With(writeLimit).Post("/import", blogHandler.ImportFeed)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", blogHandler.GetPost)
				r.With(writeLimit).Patch("/", blogHandler.UpdatePost)
				r.With(writeLimit).Delete("/", blogHandler.DeletePost)
			})
		})

		// ストアフロント（公開記事の閲覧）
		r.Get("/api/blogs/{slug}", storefrontHandler.GetBySlug)
	})

	return r
}
