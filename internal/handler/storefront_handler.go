package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/storeblog/internal/model"
)

// PublishedPostFinder はストアフロントの閲覧パスが必要とするサービスインターフェース。
// 公開済み記事のみを返し、未公開記事は存在しないものとして扱う。
type PublishedPostFinder interface {
	GetPublishedBySlug(ctx context.Context, slug string) (*model.BlogPost, error)
}

// HTMLRenderer はMarkdown本文を表示用HTMLへ変換するインターフェース。
type HTMLRenderer interface {
	HTML(markdown string) string
}

// StorefrontHandler はストアフロント向けの公開記事閲覧ハンドラー。
// 管理APIと異なり本文をレンダリング済みHTMLで返す。
type StorefrontHandler struct {
	finder   PublishedPostFinder
	renderer HTMLRenderer
}

// NewStorefrontHandler はStorefrontHandlerを生成する。
func NewStorefrontHandler(finder PublishedPostFinder, renderer HTMLRenderer) *StorefrontHandler {
	return &StorefrontHandler{
		finder:   finder,
		renderer: renderer,
	}
}

// publishedPostResponse はストアフロント向けの記事レスポンス。
type publishedPostResponse struct {
	Slug               string            `json:"slug"`
	Title              string            `json:"title"`
	ContentHTML        string            `json:"content_html"`
	Excerpt            string            `json:"excerpt"`
	ReadingTimeMinutes int               `json:"reading_time_minutes"`
	Thumbnail          *thumbnailPayload `json:"thumbnail"`
	Keywords           []string          `json:"keywords"`
	SEOMeta            seoMetaPayload    `json:"seo_meta"`
	PublishedAt        *time.Time        `json:"published_at"`
}

// GetBySlug は公開済み記事をスラッグで取得する。
// GET /api/blogs/:slug
func (h *StorefrontHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	post, err := h.finder.GetPublishedBySlug(r.Context(), slug)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := publishedPostResponse{
		Slug:               post.Slug,
		Title:              post.Title,
		ContentHTML:        h.renderer.HTML(post.Content),
		Excerpt:            post.Excerpt,
		ReadingTimeMinutes: post.ReadingTimeMinutes,
		Keywords:           post.Keywords,
		SEOMeta: seoMetaPayload{
			Title:       post.SEOMeta.Title,
			Description: post.SEOMeta.Description,
			Keywords:    post.SEOMeta.Keywords,
		},
		PublishedAt: post.PublishedAt,
	}
	if post.Thumbnail != nil {
		resp.Thumbnail = &thumbnailPayload{
			URL: post.Thumbnail.URL,
			Alt: post.Thumbnail.Alt,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
