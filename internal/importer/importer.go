// Package importer はRSS/Atomフィードからのブログ記事取り込みを提供する。
// 外部フィードの各記事を下書き状態のブログ記事として作成し、
// スラッグ・抜粋などの導出フィールドは通常の作成フローに委ねる。
package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/hitoshi/storeblog/internal/blog"
	"github.com/hitoshi/storeblog/internal/model"
)

// PostCreator は記事作成のインターフェース。
// blog.Serviceを抽象化してテスタビリティを向上させる。
type PostCreator interface {
	CreatePost(ctx context.Context, input blog.CreatePostInput) (*model.BlogPost, error)
}

// SSRFValidator はSSRF検証のインターフェース。
type SSRFValidator interface {
	ValidateURL(rawURL string) error
	NewSafeClient(timeout time.Duration, maxResponseSize int64) *http.Client
}

// Sanitizer はHTMLサニタイズのインターフェース。
type Sanitizer interface {
	Sanitize(rawHTML string) string
}

// Result は取り込み結果の集計を表す。
type Result struct {
	Imported int `json:"imported"` // 作成された記事数
	Skipped  int `json:"skipped"`  // タイトル不備等でスキップされた記事数
}

// Importer は外部フィードのHTTPフェッチとパース、記事作成を行う。
// SSRF検証付きクライアントでフィードを取得し、gofeedでパースした
// 各記事をサニタイズ後に下書きとして保存する。
type Importer struct {
	creator     PostCreator
	ssrfGuard   SSRFValidator
	sanitizer   Sanitizer
	logger      *slog.Logger
	timeout     time.Duration
	maxBodySize int64
}

// NewImporter はImporterの新しいインスタンスを生成する。
func NewImporter(
	creator PostCreator,
	ssrfGuard SSRFValidator,
	sanitizer Sanitizer,
	logger *slog.Logger,
	timeout time.Duration,
	maxBodySize int64,
) *Importer {
	return &Importer{
		creator:     creator,
		ssrfGuard:   ssrfGuard,
		sanitizer:   sanitizer,
		logger:      logger,
		timeout:     timeout,
		maxBodySize: maxBodySize,
	}
}

// Import はfeedURLのフィードを取得し、各記事を下書きとして作成する。
// タイトルが空、スラッグを導出できない、または本文が空の記事はスキップする。
// 個別記事の作成失敗は取り込み全体を中断せず、スキップとして集計する。
func (i *Importer) Import(ctx context.Context, feedURL string, authorID string) (*Result, error) {
	parsed, err := url.Parse(feedURL)
	if err != nil {
		return nil, model.NewInvalidURLError(err.Error())
	}
	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return nil, model.NewInvalidURLError(fmt.Sprintf("未対応のスキームです: %s", parsed.Scheme))
	}

	// SSRF検証: プライベートIP・ループバック・メタデータIP等を拒否
	if err := i.ssrfGuard.ValidateURL(feedURL); err != nil {
		i.logger.Warn("feed url blocked by ssrf guard",
			slog.String("feed_url", feedURL),
			slog.String("error", err.Error()),
		)
		return nil, model.NewSSRFBlockedError()
	}

	client := i.ssrfGuard.NewSafeClient(i.timeout, i.maxBodySize)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, model.NewImportFailedError(err.Error())
	}
	req.Header.Set("User-Agent", "Storeblog/1.0 Feed Importer")
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml, */*")

	resp, err := client.Do(req)
	if err != nil {
		i.logger.Error("feed fetch failed",
			slog.String("feed_url", feedURL),
			slog.String("error", err.Error()),
		)
		return nil, model.NewImportFailedError(err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, model.NewImportFailedError(fmt.Sprintf("HTTPステータス %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, i.maxBodySize))
	if err != nil {
		return nil, model.NewImportFailedError(err.Error())
	}

	parser := gofeed.NewParser()
	parsedFeed, err := parser.ParseString(string(body))
	if err != nil {
		i.logger.Error("feed parse failed",
			slog.String("feed_url", feedURL),
			slog.String("error", err.Error()),
		)
		return nil, model.NewImportFailedError(fmt.Sprintf("パースエラー: %s", err.Error()))
	}

	result := &Result{}
	for _, item := range parsedFeed.Items {
		if item == nil {
			continue
		}
		if i.importItem(ctx, item, authorID) {
			result.Imported++
		} else {
			result.Skipped++
		}
	}

	i.logger.Info("feed import completed",
		slog.String("feed_url", feedURL),
		slog.Int("imported", result.Imported),
		slog.Int("skipped", result.Skipped),
		slog.Int("items_total", len(parsedFeed.Items)),
	)

	return result, nil
}

// importItem はフィードの1記事を下書きとして作成する。
// 作成できた場合はtrue、スキップした場合はfalseを返す。
func (i *Importer) importItem(ctx context.Context, item *gofeed.Item, authorID string) bool {
	title := strings.TrimSpace(item.Title)
	if title == "" {
		i.logger.Warn("feed item skipped: empty title", slog.String("link", item.Link))
		return false
	}

	// Contentが空の場合はDescriptionを使用する
	content := item.Content
	if content == "" {
		content = item.Description
	}
	content = strings.TrimSpace(i.sanitizer.Sanitize(content))
	if content == "" {
		i.logger.Warn("feed item skipped: empty content", slog.String("title", title))
		return false
	}

	_, err := i.creator.CreatePost(ctx, blog.CreatePostInput{
		Title:    title,
		Content:  content,
		Status:   model.StatusDraft,
		AuthorID: authorID,
	})
	if err != nil {
		// 空スラッグやスラッグ衝突を含め、個別記事の失敗は取り込みを止めない
		i.logger.Warn("feed item skipped: create failed",
			slog.String("title", title),
			slog.String("error", err.Error()),
		)
		return false
	}
	return true
}
