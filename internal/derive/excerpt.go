package derive

import "strings"

// DefaultExcerptLength は抜粋の既定の最大文字数。
const DefaultExcerptLength = 200

// ellipsis は抜粋が切り詰められた場合に付加される省略記号。
const ellipsis = "..."

// Excerpt はプレーンテキストから先頭maxLen文字の抜粋を生成する。
// 入力はトリムされ、maxLenを超える場合は切り詰めて省略記号を付加する。
// 切り詰めはルーン単位で行うためUTF-8のコードポイントを分断しないが、
// 単語境界は考慮しない（互換性のため仕様通りの挙動）。
// maxLenが0以下の場合はDefaultExcerptLengthを使用する。
func Excerpt(text string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultExcerptLength
	}

	trimmed := strings.TrimSpace(text)
	runes := []rune(trimmed)
	if len(runes) <= maxLen {
		return trimmed
	}
	return string(runes[:maxLen]) + ellipsis
}

// ExcerptAtWordBoundary は単語境界を考慮した抜粋を生成する。
// maxLen文字以内に収まる最後の空白位置で切り詰めて省略記号を付加する。
// maxLen以内に空白が存在しない場合はExcerptと同じルーン単位の切り詰めに
// フォールバックする。パイプラインの既定では使用されない。
func ExcerptAtWordBoundary(text string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultExcerptLength
	}

	trimmed := strings.TrimSpace(text)
	runes := []rune(trimmed)
	if len(runes) <= maxLen {
		return trimmed
	}

	cut := -1
	for i := maxLen; i > 0; i-- {
		if runes[i] == ' ' {
			cut = i
			break
		}
	}
	if cut <= 0 {
		return string(runes[:maxLen]) + ellipsis
	}
	return strings.TrimRight(string(runes[:cut]), " ") + ellipsis
}
