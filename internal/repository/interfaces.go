// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/hitoshi/storeblog/internal/model"
)

// BlogPostRepository はブログ記事の永続化インターフェース。
// コンテンツ導出パイプラインが必要とする最小のストア能力を表す。
type BlogPostRepository interface {
	// FindByID は指定IDの記事を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.BlogPost, error)

	// FindBySlug はスラッグで記事を検索する。見つからない場合はnilを返す。
	FindBySlug(ctx context.Context, slug string) (*model.BlogPost, error)

	// ExistsBySlug は指定スラッグの記事が存在するかを返す。
	// スラッグ解決時のプローブに使用される。チェック時点の値であり、
	// 並行書き込みに対する一意性はDBのユニーク制約が最終的に保証する。
	ExistsBySlug(ctx context.Context, slug string) (bool, error)

	// Create は記事を作成する。
	// slugのユニーク制約違反の場合はmodel.ErrSlugTakenを返す。
	Create(ctx context.Context, post *model.BlogPost) error

	// Update は記事を全フィールド上書き更新する。
	// 対象行が存在しない場合はmodel.ErrPostNotFoundを、
	// slugのユニーク制約違反の場合はmodel.ErrSlugTakenを返す。
	Update(ctx context.Context, post *model.BlogPost) error

	// DeleteByID は指定IDの記事を削除する。
	// 対象行が存在しない場合はmodel.ErrPostNotFoundを返す。
	DeleteByID(ctx context.Context, id string) error

	// List は記事一覧をcreated_at降順でカーソルベースページネーション付きで返す。
	// statusが空文字列の場合は全状態を対象とする。
	// cursorがゼロ値の場合は先頭から取得する。
	List(ctx context.Context, status model.Status, cursor time.Time, limit int) ([]*model.BlogPost, error)
}
