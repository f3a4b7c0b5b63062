package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/storeblog/internal/blog"
	"github.com/hitoshi/storeblog/internal/importer"
	"github.com/hitoshi/storeblog/internal/model"
)

// BlogServiceInterface はブログ管理ハンドラーが必要とするサービスインターフェース。
type BlogServiceInterface interface {
	// CreatePost は新規記事を作成する。
	CreatePost(ctx context.Context, input blog.CreatePostInput) (*model.BlogPost, error)
	// UpdatePost は既存記事を更新する。
	UpdatePost(ctx context.Context, id string, input blog.UpdatePostInput) (*model.BlogPost, error)
	// GetPost は記事をIDで取得する。
	GetPost(ctx context.Context, id string) (*model.BlogPost, error)
	// ListPosts は記事一覧をcreated_at降順で返す。
	ListPosts(ctx context.Context, status model.Status, cursor time.Time, limit int) ([]*model.BlogPost, error)
	// DeletePost は記事を削除する。
	DeletePost(ctx context.Context, id string) error
}

// FeedImporterInterface はフィード取り込みのインターフェース。
type FeedImporterInterface interface {
	// Import はフィードURLの各記事を下書きとして取り込む。
	Import(ctx context.Context, feedURL string, authorID string) (*importer.Result, error)
}

// BlogHandler は管理ダッシュボード向けのブログ記事HTTPハンドラー。
type BlogHandler struct {
	service  BlogServiceInterface
	importer FeedImporterInterface
}

// NewBlogHandler はBlogHandlerを生成する。
func NewBlogHandler(service BlogServiceInterface, imp FeedImporterInterface) *BlogHandler {
	return &BlogHandler{
		service:  service,
		importer: imp,
	}
}

// thumbnailPayload はサムネイルのリクエスト/レスポンス表現。
type thumbnailPayload struct {
	URL string `json:"url"`
	Alt string `json:"alt"`
}

// seoMetaPayload はSEOメタデータのリクエスト/レスポンス表現。
type seoMetaPayload struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
}

// createPostRequest は記事作成リクエストのボディ。
// thumbnail、keywords、seo_metaは任意で、省略時は本文から導出される。
type createPostRequest struct {
	Title      string            `json:"title"`
	Content    string            `json:"content"`
	Status     string            `json:"status"`
	AuthorID   string            `json:"author_id"`
	CategoryID string            `json:"category_id"`
	Thumbnail  *thumbnailPayload `json:"thumbnail"`
	Keywords   []string          `json:"keywords"`
	SEOMeta    *seoMetaPayload   `json:"seo_meta"`
}

// updatePostRequest は記事更新リクエストのボディ。
// nilのフィールドは「ペイロードに含まれていない」として変更されない。
type updatePostRequest struct {
	Title             *string           `json:"title"`
	Content           *string           `json:"content"`
	Status            *string           `json:"status"`
	CategoryID        *string           `json:"category_id"`
	Thumbnail         *thumbnailPayload `json:"thumbnail"`
	Keywords          []string          `json:"keywords"`
	SEOMeta           *seoMetaPayload   `json:"seo_meta"`
	PreserveOverrides bool              `json:"preserve_overrides"`
}

// importFeedRequest はフィード取り込みリクエストのボディ。
type importFeedRequest struct {
	FeedURL  string `json:"feed_url"`
	AuthorID string `json:"author_id"`
}

// blogPostResponse はブログ記事のAPIレスポンス。
type blogPostResponse struct {
	ID                 string            `json:"id"`
	Title              string            `json:"title"`
	Slug               string            `json:"slug"`
	Content            string            `json:"content"`
	Excerpt            string            `json:"excerpt"`
	ReadingTimeMinutes int               `json:"reading_time_minutes"`
	Thumbnail          *thumbnailPayload `json:"thumbnail"`
	Keywords           []string          `json:"keywords"`
	SEOMeta            seoMetaPayload    `json:"seo_meta"`
	Status             string            `json:"status"`
	PublishedAt        *time.Time        `json:"published_at"`
	AuthorID           string            `json:"author_id"`
	CategoryID         string            `json:"category_id"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

// listPostsResponse は記事一覧のAPIレスポンス。
type listPostsResponse struct {
	Posts []blogPostResponse `json:"posts"`
}

// apiErrorResponse は統一エラーフォーマットのレスポンス。
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// CreatePost は記事作成を処理する。
// POST /api/admin/blogs
func (h *BlogHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req createPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestError(w)
		return
	}

	post, err := h.service.CreatePost(r.Context(), blog.CreatePostInput{
		Title:      req.Title,
		Content:    req.Content,
		Status:     model.Status(req.Status),
		AuthorID:   req.AuthorID,
		CategoryID: req.CategoryID,
		Thumbnail:  toThumbnailModel(req.Thumbnail),
		Keywords:   req.Keywords,
		SEOMeta:    toSEOMetaModel(req.SEOMeta),
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toBlogPostResponse(post))
}

// GetPost は記事詳細を取得する。
// GET /api/admin/blogs/:id
func (h *BlogHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "id")

	post, err := h.service.GetPost(r.Context(), postID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toBlogPostResponse(post))
}

// ListPosts は記事一覧を取得する。
// GET /api/admin/blogs?status=draft&cursor=2026-01-01T00:00:00Z&limit=20
func (h *BlogHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	status := model.Status(r.URL.Query().Get("status"))

	cursor := time.Time{}
	if raw := r.URL.Query().Get("cursor"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
				Code:     "INVALID_REQUEST",
				Message:  "cursorの解析に失敗しました。",
				Category: "validation",
				Action:   "cursorにはRFC3339形式の日時を指定してください。",
			})
			return
		}
		cursor = parsed
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
				Code:     "INVALID_REQUEST",
				Message:  "limitの解析に失敗しました。",
				Category: "validation",
				Action:   "limitには1以上の整数を指定してください。",
			})
			return
		}
		limit = parsed
	}

	posts, err := h.service.ListPosts(r.Context(), status, cursor, limit)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := listPostsResponse{Posts: make([]blogPostResponse, 0, len(posts))}
	for _, post := range posts {
		resp.Posts = append(resp.Posts, toBlogPostResponse(post))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// UpdatePost は記事更新を処理する。
// PATCH /api/admin/blogs/:id
func (h *BlogHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "id")

	var req updatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestError(w)
		return
	}

	input := blog.UpdatePostInput{
		Title:             req.Title,
		Content:           req.Content,
		CategoryID:        req.CategoryID,
		Thumbnail:         toThumbnailModel(req.Thumbnail),
		Keywords:          req.Keywords,
		SEOMeta:           toSEOMetaModel(req.SEOMeta),
		PreserveOverrides: req.PreserveOverrides,
	}
	if req.Status != nil {
		status := model.Status(*req.Status)
		input.Status = &status
	}

	post, err := h.service.UpdatePost(r.Context(), postID, input)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toBlogPostResponse(post))
}

// DeletePost は記事削除を処理する。
// DELETE /api/admin/blogs/:id
func (h *BlogHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "id")

	if err := h.service.DeletePost(r.Context(), postID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ImportFeed はRSS/Atomフィードからの記事取り込みを処理する。
// POST /api/admin/blogs/import
func (h *BlogHandler) ImportFeed(w http.ResponseWriter, r *http.Request) {
	var req importFeedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestError(w)
		return
	}

	if req.FeedURL == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidURLError("フィードURLが空です"))
		return
	}

	result, err := h.importer.Import(r.Context(), req.FeedURL, req.AuthorID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// --- ヘルパー関数 ---

// toBlogPostResponse はmodel.BlogPostからAPIレスポンスに変換する。
func toBlogPostResponse(post *model.BlogPost) blogPostResponse {
	resp := blogPostResponse{
		ID:                 post.ID,
		Title:              post.Title,
		Slug:               post.Slug,
		Content:            post.Content,
		Excerpt:            post.Excerpt,
		ReadingTimeMinutes: post.ReadingTimeMinutes,
		Keywords:           post.Keywords,
		SEOMeta: seoMetaPayload{
			Title:       post.SEOMeta.Title,
			Description: post.SEOMeta.Description,
			Keywords:    post.SEOMeta.Keywords,
		},
		Status:      string(post.Status),
		PublishedAt: post.PublishedAt,
		AuthorID:    post.AuthorID,
		CategoryID:  post.CategoryID,
		CreatedAt:   post.CreatedAt,
		UpdatedAt:   post.UpdatedAt,
	}
	if post.Thumbnail != nil {
		resp.Thumbnail = &thumbnailPayload{
			URL: post.Thumbnail.URL,
			Alt: post.Thumbnail.Alt,
		}
	}
	return resp
}

// toThumbnailModel はリクエスト表現からmodel.Thumbnailに変換する。
func toThumbnailModel(p *thumbnailPayload) *model.Thumbnail {
	if p == nil {
		return nil
	}
	return &model.Thumbnail{URL: p.URL, Alt: p.Alt}
}

// toSEOMetaModel はリクエスト表現からmodel.SEOMetaに変換する。
func toSEOMetaModel(p *seoMetaPayload) *model.SEOMeta {
	if p == nil {
		return nil
	}
	return &model.SEOMeta{
		Title:       p.Title,
		Description: p.Description,
		Keywords:    p.Keywords,
	}
}

// writeInvalidRequestError はJSONボディの解析失敗エラーを書き込む。
func writeInvalidRequestError(w http.ResponseWriter) {
	writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
		Code:     "INVALID_REQUEST",
		Message:  "リクエストボディの解析に失敗しました。",
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	})
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		statusCode := mapAPIErrorToHTTPStatus(apiErr)
		writeAPIErrorResponse(w, statusCode, apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	})
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodePostNotFound:
		return http.StatusNotFound
	case model.ErrCodeSlugConflict:
		return http.StatusConflict
	case model.ErrCodeEmptySlug:
		return http.StatusUnprocessableEntity
	case model.ErrCodeMissingField, model.ErrCodeInvalidStatus, model.ErrCodeInvalidURL:
		return http.StatusBadRequest
	case model.ErrCodeSSRFBlocked:
		return http.StatusForbidden
	case model.ErrCodeImportFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
