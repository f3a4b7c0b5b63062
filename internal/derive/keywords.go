package derive

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultKeywordCount はキーワード抽出の既定の最大件数。
const DefaultKeywordCount = 10

// minKeywordLength はキーワードとして採用するトークンの最小長（これ以下は破棄）。
const minKeywordLength = 3

// Keywords はプレーンテキストから出現頻度順のキーワード一覧を抽出する。
// 処理手順: 小文字化 → 句読点・記号の除去 → 空白で分割 →
// 長さ3以下のトークンを破棄 → 頻度を集計 → 頻度降順に安定ソート
// （同頻度は初出順を維持）→ 先頭maxCount件を返す。
// 安定ソートにより同一入力に対する出力順序は常に一致する。
// maxCountが0以下の場合はDefaultKeywordCountを使用する。
func Keywords(plain string, maxCount int) []string {
	if maxCount <= 0 {
		maxCount = DefaultKeywordCount
	}

	var cleaned strings.Builder
	cleaned.Grow(len(plain))
	for _, r := range strings.ToLower(plain) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), unicode.IsSpace(r):
			cleaned.WriteRune(r)
		}
		// 句読点・記号は除去（空白には置換しない。"don't" → "dont"）
	}

	counts := make(map[string]int)
	var order []string // 初出順のトークン一覧
	for _, token := range strings.Fields(cleaned.String()) {
		if utf8.RuneCountInString(token) <= minKeywordLength {
			continue
		}
		if _, seen := counts[token]; !seen {
			order = append(order, token)
		}
		counts[token]++
	}

	// 頻度降順の安定ソート。同頻度のトークンは初出順を保つ。
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if len(order) > maxCount {
		order = order[:maxCount]
	}
	return order
}
