package derive

import "github.com/hitoshi/storeblog/internal/model"

const (
	// MaxSEOTitleLength はSEOタイトルの上限文字数（ハード制限）。
	MaxSEOTitleLength = 60
	// MaxSEODescriptionLength はSEOディスクリプションの上限文字数（ハード制限）。
	MaxSEODescriptionLength = 160
)

// SEODefaults は記事タイトル・抜粋・キーワードと著者指定のオーバーライドから
// 完全なSEOメタデータを組み立てる。
// フィールド単位の優先順位: オーバーライドが非空値を与えたフィールドは
// そのまま採用し、空のフィールドのみ導出値で補完する。
// 上限文字数の切り詰めはオーバーライド値にも適用される。
func SEODefaults(title, excerpt string, keywords []string, override *model.SEOMeta) model.SEOMeta {
	var meta model.SEOMeta
	if override != nil {
		meta = *override
	}

	if meta.Title == "" {
		meta.Title = title
	}
	if meta.Description == "" {
		meta.Description = excerpt
	}
	if len(meta.Keywords) == 0 {
		meta.Keywords = keywords
	}

	meta.Title = truncateRunes(meta.Title, MaxSEOTitleLength)
	meta.Description = truncateRunes(meta.Description, MaxSEODescriptionLength)

	return meta
}

// truncateRunes は文字列をルーン単位で最大maxLen文字に切り詰める。
func truncateRunes(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen])
}
