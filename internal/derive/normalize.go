package derive

import (
	"bytes"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Normalizer はMarkdown原文をテキスト解析用のプレーンテキストへ正規化する。
// goldmarkでHTMLへレンダリングし、bluemondayのStrictPolicyで全タグを
// 除去する2段構成。内部状態はイミュータブルであり、複数のリクエストから
// 並行に呼び出しても安全。
type Normalizer struct {
	md    goldmark.Markdown
	strip *bluemonday.Policy
}

// NewNormalizer はNormalizerの新しいインスタンスを生成する。
// GFM拡張（テーブル、取り消し線、自動リンク）を有効にする。
func NewNormalizer() *Normalizer {
	return &Normalizer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
		),
		strip: bluemonday.StrictPolicy(),
	}
}

// PlainText はMarkdown原文からMarkdown記法と埋め込みHTMLタグを除去した
// プレーンテキストを返す。空白は単一スペースに正規化される。
// 不正なMarkdownでもエラーは返さない。レンダリングに失敗した場合は
// 原文からタグのみを除去するフォールバックを行う。
func (n *Normalizer) PlainText(markdown string) string {
	source := markdown

	var buf bytes.Buffer
	if err := n.md.Convert([]byte(markdown), &buf); err == nil {
		source = buf.String()
	}

	stripped := n.strip.Sanitize(source)
	unescaped := html.UnescapeString(stripped)

	return strings.Join(strings.Fields(unescaped), " ")
}
