package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hitoshi/storeblog/internal/blog"
	"github.com/hitoshi/storeblog/internal/importer"
	"github.com/hitoshi/storeblog/internal/middleware"
	"github.com/hitoshi/storeblog/internal/model"
)

// newTestRouterDeps はテスト用の依存関係一式を返す。
func newTestRouterDeps(t *testing.T) (*RouterDeps, *middleware.RateLimiter) {
	t.Helper()

	rl := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		GeneralRate:     100,
		GeneralBurst:    200,
		WriteRate:       100,
		WriteBurst:      200,
		CleanupInterval: 1 * time.Minute,
	})

	service := &mockBlogService{
		createFn: func(ctx context.Context, input blog.CreatePostInput) (*model.BlogPost, error) {
			return samplePost(), nil
		},
		getFn: func(ctx context.Context, id string) (*model.BlogPost, error) {
			return samplePost(), nil
		},
		listFn: func(ctx context.Context, status model.Status, cursor time.Time, limit int) ([]*model.BlogPost, error) {
			return []*model.BlogPost{samplePost()}, nil
		},
	}

	imp := &mockFeedImporter{
		importFn: func(ctx context.Context, feedURL string, authorID string) (*importer.Result, error) {
			return &importer.Result{Imported: 1}, nil
		},
	}

	finder := &mockPublishedFinder{
		findFn: func(ctx context.Context, slug string) (*model.BlogPost, error) {
			return samplePost(), nil
		},
	}

	deps := &RouterDeps{
		Logger:            slog.New(slog.NewJSONHandler(io.Discard, nil)),
		CORSAllowedOrigin: "http://localhost:3000",
		RateLimiter:       rl,
		BlogService:       service,
		Importer:          imp,
		PublishedFinder:   finder,
		Renderer:          stubRenderer{},
	}
	return deps, rl
}

func TestRouter_HealthEndpoint(t *testing.T) {
	deps, rl := newTestRouterDeps(t)
	defer rl.Stop()

	router := NewRouter(deps)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}

	var body map[string]string
	if err := json.NewDecoder(w.Result().Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status = %q, want %q", body["status"], "ok")
	}
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	deps, rl := newTestRouterDeps(t)
	defer rl.Stop()

	deps.MetricsHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("storeblog_posts_created_total 0\n"))
	})

	router := NewRouter(deps)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}
}

func TestRouter_AdminRoutesWired(t *testing.T) {
	deps, rl := newTestRouterDeps(t)
	defer rl.Stop()

	router := NewRouter(deps)

	tests := []struct {
		name       string
		method     string
		target     string
		body       string
		wantStatus int
	}{
		{"list posts", http.MethodGet, "/api/admin/blogs", "", http.StatusOK},
		{"create post", http.MethodPost, "/api/admin/blogs", `{"title":"T","content":"C"}`, http.StatusCreated},
		{"get post", http.MethodGet, "/api/admin/blogs/post-1", "", http.StatusOK},
		{"import feed", http.MethodPost, "/api/admin/blogs/import", `{"feed_url":"https://tea.example.com/feed.xml"}`, http.StatusOK},
		{"storefront post", http.MethodGet, "/api/blogs/brewing-sencha", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req *http.Request
			if tt.body != "" {
				req = httptest.NewRequest(tt.method, tt.target, bytes.NewBufferString(tt.body))
			} else {
				req = httptest.NewRequest(tt.method, tt.target, nil)
			}
			req.RemoteAddr = "203.0.113.5:51234"
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Result().StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Result().StatusCode, tt.wantStatus)
			}
		})
	}
}

func TestRouter_SecurityHeadersApplied(t *testing.T) {
	deps, rl := newTestRouterDeps(t)
	defer rl.Stop()

	router := NewRouter(deps)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	resp := w.Result()
	if got := resp.Header.Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want %q", got, "nosniff")
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, "http://localhost:3000")
	}
}

func TestRouter_WriteRateLimitOnCreate(t *testing.T) {
	deps, rl := newTestRouterDeps(t)
	defer rl.Stop()

	// 書き込みレートのみ極端に絞る
	tight := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		GeneralRate:     100,
		GeneralBurst:    200,
		WriteRate:       1,
		WriteBurst:      1,
		CleanupInterval: 1 * time.Minute,
	})
	defer tight.Stop()
	deps.RateLimiter = tight

	router := NewRouter(deps)

	// 1回目の作成は通る
	req1 := httptest.NewRequest(http.MethodPost, "/api/admin/blogs",
		bytes.NewBufferString(`{"title":"T","content":"C"}`))
	req1.RemoteAddr = "203.0.113.6:51234"
	w1 := httptest.NewRecorder()
	router.ServeHTTP(w1, req1)

	if w1.Result().StatusCode != http.StatusCreated {
		t.Fatalf("first create: status = %d, want %d", w1.Result().StatusCode, http.StatusCreated)
	}

	// 2回目の作成は書き込みレート制限で429
	req2 := httptest.NewRequest(http.MethodPost, "/api/admin/blogs",
		bytes.NewBufferString(`{"title":"T","content":"C"}`))
	req2.RemoteAddr = "203.0.113.6:51234"
	w2 := httptest.NewRecorder()
	router.ServeHTTP(w2, req2)

	if w2.Result().StatusCode != http.StatusTooManyRequests {
		t.Errorf("second create: status = %d, want %d", w2.Result().StatusCode, http.StatusTooManyRequests)
	}

	// 読み取りは一般レート制限のみで引き続き通る
	req3 := httptest.NewRequest(http.MethodGet, "/api/admin/blogs", nil)
	req3.RemoteAddr = "203.0.113.6:51234"
	w3 := httptest.NewRecorder()
	router.ServeHTTP(w3, req3)

	if w3.Result().StatusCode != http.StatusOK {
		t.Errorf("list after write limit: status = %d, want %d", w3.Result().StatusCode, http.StatusOK)
	}
}

func TestRouter_UnknownRoute_Returns404(t *testing.T) {
	deps, rl := newTestRouterDeps(t)
	defer rl.Stop()

	router := NewRouter(deps)

	req := httptest.NewRequest(http.MethodGet, "/api/unknown", nil)
	req.RemoteAddr = "203.0.113.7:51234"
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusNotFound)
	}
}
