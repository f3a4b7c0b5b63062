// Package derive はブログ記事の導出フィールド（スラッグ、抜粋、読了時間、
// キーワード、サムネイル、SEOメタ）を計算する純粋関数群を提供する。
// このパッケージの関数は副作用を持たず、同一入力に対して常に同一出力を返す。
package derive

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// baseLetterOverrides は正規分解（NFD）でダイアクリティカルマークが
// 分離されない文字の明示的な変換表。
// ベトナム語の đ/Đ はストローク付き文字でありNFDでは分解されないため、
// 分解前に基底文字へ変換する必要がある。
var baseLetterOverrides = map[rune]rune{
	'đ': 'd',
	'Đ': 'D',
	'ø': 'o',
	'Ø': 'O',
	'ł': 'l',
	'Ł': 'L',
}

// Slug は任意のタイトル文字列からURL安全なスラッグ候補を生成する。
// 出力は ^[a-z0-9]+(-[a-z0-9]+)*$ にマッチするか、入力が英数字を
// 含まない場合は空文字列となる。一意性の検証は行わない（blogパッケージの
// SlugResolverが担当する）。
//
// 処理手順:
//  1. NFDで分解されない文字（đ等）を基底文字へ明示変換
//  2. NFDで正規分解し、結合ダイアクリティカルマークを除去
//  3. 小文字化
//  4. [a-z0-9]と空白・ハイフン以外の文字を除去
//  5. 空白・ハイフンの連続を単一ハイフンに畳み込み
//  6. 先頭・末尾のハイフンを除去
func Slug(title string) string {
	var mapped strings.Builder
	mapped.Grow(len(title))
	for _, r := range title {
		if base, ok := baseLetterOverrides[r]; ok {
			mapped.WriteRune(base)
		} else {
			mapped.WriteRune(r)
		}
	}

	decomposed := norm.NFD.String(mapped.String())

	var b strings.Builder
	b.Grow(len(decomposed))
	pendingHyphen := false
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			// 結合ダイアクリティカルマークを除去
			continue
		}
		r = unicode.ToLower(r)
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		case unicode.IsSpace(r), r == '-':
			pendingHyphen = true
		}
		// それ以外の文字（記号・絵文字・非ラテン文字）は捨てる
	}

	return b.String()
}
