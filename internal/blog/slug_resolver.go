// Package blog はブログ記事のライフサイクル管理を提供する。
// タイトル・本文からの導出フィールド計算（deriveパッケージ）と
// ストアへの永続化を調停し、スラッグの一意性を保証する。
package blog

import (
	"context"
	"fmt"
)

// SlugExistser はスラッグの存在確認能力のインターフェース。
// repository.BlogPostRepositoryを抽象化してテスタビリティを向上させる。
type SlugExistser interface {
	ExistsBySlug(ctx context.Context, slug string) (bool, error)
}

// SlugResolver はスラッグ候補の一意性を解決する。
// base、base-1、base-2、…と順にプローブし、未使用の値を返す。
//
// このcheck-then-actはストアへの挿入とアトミックではないため、
// 同一タイトルの並行作成では両者が同じ候補を空きと観測しうる。
// 一意性の最終的な保証はDBのユニーク制約であり、制約違反を受けた
// 呼び出し側がサフィックスを進めて再解決する（Serviceの永続化リトライ）。
type SlugResolver struct {
	store SlugExistser
}

// NewSlugResolver はSlugResolverを生成する。
func NewSlugResolver(store SlugExistser) *SlugResolver {
	return &SlugResolver{store: store}
}

// Resolve はbaseから始まる未使用スラッグを解決する。
// startSuffixが0の場合はbase自体から、1以上の場合はbase-{startSuffix}から
// プローブを開始する。戻り値は解決したスラッグと、そのスラッグに使用した
// サフィックス番号（0はサフィックスなし）。
func (r *SlugResolver) Resolve(ctx context.Context, base string, startSuffix int) (string, int, error) {
	if startSuffix < 0 {
		startSuffix = 0
	}

	for suffix := startSuffix; ; suffix++ {
		candidate := base
		if suffix > 0 {
			candidate = fmt.Sprintf("%s-%d", base, suffix)
		}

		exists, err := r.store.ExistsBySlug(ctx, candidate)
		if err != nil {
			return "", 0, fmt.Errorf("スラッグの存在確認に失敗しました: %w", err)
		}
		if !exists {
			return candidate, suffix, nil
		}
	}
}
