package blog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/storeblog/internal/derive"
	"github.com/hitoshi/storeblog/internal/model"
	"github.com/hitoshi/storeblog/internal/repository"
)

// MetricsRecorder はサービス層が記録するメトリクスのインターフェース。
type MetricsRecorder interface {
	RecordPostCreated()
	RecordPostUpdated()
	RecordSlugRetry()
	RecordSlugConflict()
}

// ServiceConfig はServiceの動作設定を保持する。
type ServiceConfig struct {
	ExcerptMaxLength int // 抜粋の最大文字数
	KeywordMaxCount  int // キーワードの最大件数
	WordsPerMinute   int // 読了時間の推定に使う読書速度
	SlugMaxRetries   int // ユニーク制約違反時のスラッグ再解決の上限回数
}

// DefaultServiceConfig は既定のServiceConfigを返す。
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		ExcerptMaxLength: derive.DefaultExcerptLength,
		KeywordMaxCount:  derive.DefaultKeywordCount,
		WordsPerMinute:   derive.DefaultWordsPerMinute,
		SlugMaxRetries:   5,
	}
}

// CreatePostInput は記事作成リクエストを表す。
// Thumbnail、Keywords、SEOMetaは任意で、未指定の場合はContentから導出される。
type CreatePostInput struct {
	Title      string
	Content    string
	Status     model.Status // 空の場合はdraft
	AuthorID   string
	CategoryID string
	Thumbnail  *model.Thumbnail
	Keywords   []string
	SEOMeta    *model.SEOMeta
}

// UpdatePostInput は記事更新リクエストを表す。
// nilのフィールドは「ペイロードに含まれていない」ことを意味し、変更されない。
// ペイロードで明示された値は常に再導出より優先される。
// PreserveOverridesがtrueの場合、Content変更時でも保存済みの
// Excerpt・Keywords・Thumbnail・SEOMetaを再導出で上書きしない。
type UpdatePostInput struct {
	Title             *string
	Content           *string
	Status            *model.Status
	CategoryID        *string
	Thumbnail         *model.Thumbnail
	Keywords          []string // nilまたは空は未指定として扱う
	SEOMeta           *model.SEOMeta
	PreserveOverrides bool
}

// Service はブログ記事のライフサイクルを調停するサービス層。
// 作成・更新時の導出フィールド再計算ポリシーと公開日時の遷移を所有する。
type Service struct {
	repo       repository.BlogPostRepository
	normalizer *derive.Normalizer
	resolver   *SlugResolver
	metrics    MetricsRecorder
	config     ServiceConfig
}

// NewService はServiceの新しいインスタンスを生成する。
// metricsはnil可（記録をスキップする）。
func NewService(
	repo repository.BlogPostRepository,
	normalizer *derive.Normalizer,
	resolver *SlugResolver,
	metrics MetricsRecorder,
	config ServiceConfig,
) *Service {
	return &Service{
		repo:       repo,
		normalizer: normalizer,
		resolver:   resolver,
		metrics:    metrics,
		config:     config,
	}
}

// CreatePost は新規記事を作成する。
// タイトルからスラッグを解決し、本文から全導出フィールドを計算して永続化する。
// 初期状態がpublishedの場合はpublished_atを設定する。
// スラッグのユニーク制約違反時はサフィックスを進めて再解決し、
// SlugMaxRetries回を超えた場合はSLUG_CONFLICTエラーを返す。
func (s *Service) CreatePost(ctx context.Context, input CreatePostInput) (*model.BlogPost, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, model.NewMissingFieldError("title")
	}
	if strings.TrimSpace(input.Content) == "" {
		return nil, model.NewMissingFieldError("content")
	}

	status := input.Status
	if status == "" {
		status = model.StatusDraft
	}
	if !status.IsValid() {
		return nil, model.NewInvalidStatusError(string(status))
	}

	base := derive.Slug(input.Title)
	if base == "" {
		return nil, model.NewEmptySlugError(input.Title)
	}

	now := time.Now()
	post := &model.BlogPost{
		ID:         uuid.New().String(),
		Title:      input.Title,
		Content:    input.Content,
		Status:     status,
		AuthorID:   input.AuthorID,
		CategoryID: input.CategoryID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	// 本文からの導出フィールド計算。作成時にオーバーライドで
	// スキップされるのはThumbnail・Keywords・SEOMetaのみ。
	s.deriveTextFields(post, input.Content)

	if len(input.Keywords) > 0 {
		post.Keywords = input.Keywords
	}
	if input.Thumbnail != nil {
		post.Thumbnail = input.Thumbnail
	}
	post.SEOMeta = derive.SEODefaults(post.Title, post.Excerpt, post.Keywords, input.SEOMeta)

	if status == model.StatusPublished {
		post.PublishedAt = &now
	}

	if err := s.persistWithSlugRetry(ctx, base, post, s.repo.Create); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordPostCreated()
	}
	slog.Info("blog post created",
		slog.String("post_id", post.ID),
		slog.String("slug", post.Slug),
		slog.String("status", string(post.Status)),
	)

	return post, nil
}

// UpdatePost は既存記事を更新する。
//   - Title変更時はスラッグを再解決する（公開URLが変わる）
//   - Content変更時は全導出フィールドを再計算する。ただしペイロードで
//     明示された値が優先され、PreserveOverridesがtrueの場合は保存済みの
//     Excerpt・Keywords・Thumbnail・SEOMetaを維持する
//   - 非公開状態からpublishedへの初回遷移時のみpublished_atを設定する
//
// Content未変更の更新では導出フィールドは一切再計算されない。
func (s *Service) UpdatePost(ctx context.Context, id string, input UpdatePostInput) (*model.BlogPost, error) {
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("記事の取得に失敗しました: %w", err)
	}
	if post == nil {
		return nil, model.NewPostNotFoundError(id)
	}

	slugBase := ""
	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, model.NewMissingFieldError("title")
		}
		if *input.Title != post.Title {
			base := derive.Slug(*input.Title)
			if base == "" {
				return nil, model.NewEmptySlugError(*input.Title)
			}
			post.Title = *input.Title
			// タイトル変更でもスラッグが同一に畳み込まれる場合は維持する
			// （自身の行との衝突を避ける）
			if base != post.Slug {
				slugBase = base
			}
		}
	}

	contentChanged := false
	if input.Content != nil {
		if strings.TrimSpace(*input.Content) == "" {
			return nil, model.NewMissingFieldError("content")
		}
		contentChanged = *input.Content != post.Content
		if contentChanged {
			post.Content = *input.Content
		}
	}

	if contentChanged {
		prevExcerpt := post.Excerpt
		prevKeywords := post.Keywords
		prevThumbnail := post.Thumbnail
		prevSEOMeta := post.SEOMeta

		s.deriveTextFields(post, post.Content)

		if input.PreserveOverrides {
			// 著者が編集済みの値を再導出で破壊しない。
			// 読了時間は本文に追随する。
			post.Excerpt = prevExcerpt
			post.Keywords = prevKeywords
			post.Thumbnail = prevThumbnail
			post.SEOMeta = prevSEOMeta
		}
	}

	// ペイロードで明示された値は再導出より常に優先される
	if len(input.Keywords) > 0 {
		post.Keywords = input.Keywords
	}
	if input.Thumbnail != nil {
		post.Thumbnail = input.Thumbnail
	}
	// SEOメタは本文変更による再導出時、または明示オーバーライド時に組み立て直す
	if (contentChanged && !input.PreserveOverrides) || input.SEOMeta != nil {
		post.SEOMeta = derive.SEODefaults(post.Title, post.Excerpt, post.Keywords, input.SEOMeta)
	}
	if input.CategoryID != nil {
		post.CategoryID = *input.CategoryID
	}

	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, model.NewInvalidStatusError(string(*input.Status))
		}
		// publishedへの初回遷移でのみpublished_atを設定する。
		// 一度設定された値は非公開化や再公開でも変更されない。
		if *input.Status == model.StatusPublished && post.PublishedAt == nil {
			now := time.Now()
			post.PublishedAt = &now
		}
		post.Status = *input.Status
	}

	post.UpdatedAt = time.Now()

	if slugBase != "" {
		if err := s.persistWithSlugRetry(ctx, slugBase, post, s.repo.Update); err != nil {
			return nil, err
		}
	} else {
		if err := s.repo.Update(ctx, post); err != nil {
			if errors.Is(err, model.ErrPostNotFound) {
				return nil, model.NewPostNotFoundError(id)
			}
			return nil, fmt.Errorf("記事の更新に失敗しました: %w", err)
		}
	}

	if s.metrics != nil {
		s.metrics.RecordPostUpdated()
	}
	slog.Info("blog post updated",
		slog.String("post_id", post.ID),
		slog.String("slug", post.Slug),
		slog.Bool("content_changed", contentChanged),
	)

	return post, nil
}

// GetPost は指定IDの記事を返す。存在しない場合はPOST_NOT_FOUNDエラーを返す。
func (s *Service) GetPost(ctx context.Context, id string) (*model.BlogPost, error) {
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("記事の取得に失敗しました: %w", err)
	}
	if post == nil {
		return nil, model.NewPostNotFoundError(id)
	}
	return post, nil
}

// GetPublishedBySlug はストアフロントの閲覧パス用に公開済み記事をスラッグで返す。
// 未公開（draft/archived）の記事は存在しないものとして扱う。
func (s *Service) GetPublishedBySlug(ctx context.Context, slug string) (*model.BlogPost, error) {
	post, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("記事の取得に失敗しました: %w", err)
	}
	if post == nil || post.Status != model.StatusPublished {
		return nil, model.NewPostNotFoundError(slug)
	}
	return post, nil
}

// ListPosts は記事一覧をcreated_at降順で返す。
// statusが空の場合は全状態を対象とする。
func (s *Service) ListPosts(ctx context.Context, status model.Status, cursor time.Time, limit int) ([]*model.BlogPost, error) {
	if status != "" && !status.IsValid() {
		return nil, model.NewInvalidStatusError(string(status))
	}
	posts, err := s.repo.List(ctx, status, cursor, limit)
	if err != nil {
		return nil, fmt.Errorf("記事一覧の取得に失敗しました: %w", err)
	}
	return posts, nil
}

// DeletePost は指定IDの記事を削除する。
// 存在しない場合はPOST_NOT_FOUNDエラーを返す（暗黙のno-opにはしない）。
func (s *Service) DeletePost(ctx context.Context, id string) error {
	post, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("記事の取得に失敗しました: %w", err)
	}
	if post == nil {
		return model.NewPostNotFoundError(id)
	}

	if err := s.repo.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, model.ErrPostNotFound) {
			return model.NewPostNotFoundError(id)
		}
		return fmt.Errorf("記事の削除に失敗しました: %w", err)
	}

	slog.Info("blog post deleted", slog.String("post_id", id))
	return nil
}

// deriveTextFields は本文からExcerpt・ReadingTimeMinutes・Keywords・Thumbnailを
// 再計算してpostに設定する。同一本文に対して常に同一の結果を返す（冪等）。
func (s *Service) deriveTextFields(post *model.BlogPost, content string) {
	plain := s.normalizer.PlainText(content)
	post.ReadingTimeMinutes = derive.ReadingTime(plain, s.config.WordsPerMinute)
	post.Excerpt = derive.Excerpt(plain, s.config.ExcerptMaxLength)
	post.Keywords = derive.Keywords(plain, s.config.KeywordMaxCount)
	post.Thumbnail = derive.FirstImage(content)
}

// persistWithSlugRetry はスラッグを解決しながらpersistを実行する。
// ユニーク制約違反（並行書き込みとの競合）を受けた場合はサフィックスを
// 進めて再解決し、SlugMaxRetries回まで再試行する。
func (s *Service) persistWithSlugRetry(
	ctx context.Context,
	base string,
	post *model.BlogPost,
	persist func(context.Context, *model.BlogPost) error,
) error {
	slug, suffix, err := s.resolver.Resolve(ctx, base, 0)
	if err != nil {
		return err
	}

	for attempt := 0; ; attempt++ {
		post.Slug = slug

		err := persist(ctx, post)
		if err == nil {
			return nil
		}
		if errors.Is(err, model.ErrPostNotFound) {
			return model.NewPostNotFoundError(post.ID)
		}
		if !errors.Is(err, model.ErrSlugTaken) {
			return fmt.Errorf("記事の永続化に失敗しました: %w", err)
		}

		if attempt >= s.config.SlugMaxRetries {
			if s.metrics != nil {
				s.metrics.RecordSlugConflict()
			}
			slog.Warn("slug resolution retries exhausted",
				slog.String("base", base),
				slog.Int("attempts", attempt+1),
			)
			return model.NewSlugConflictError(base)
		}

		if s.metrics != nil {
			s.metrics.RecordSlugRetry()
		}
		slog.Info("slug conflict detected, retrying",
			slog.String("slug", slug),
			slog.Int("attempt", attempt+1),
		)

		slug, suffix, err = s.resolver.Resolve(ctx, base, suffix+1)
		if err != nil {
			return err
		}
	}
}
