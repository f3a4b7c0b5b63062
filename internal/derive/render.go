package derive

import (
	"bytes"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"
)

// Renderer はストアフロントの閲覧パス向けにMarkdownを表示用HTMLへ
// レンダリングする。出力はbluemondayのUGCPolicyでサニタイズされる。
// Normalizerと同様にイミュータブルで並行呼び出し安全。
type Renderer struct {
	md       goldmark.Markdown
	sanitize *bluemonday.Policy
}

// NewRenderer はRendererの新しいインスタンスを生成する。
func NewRenderer() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(htmlrenderer.WithHardWraps()),
		),
		sanitize: bluemonday.UGCPolicy(),
	}
}

// HTML はMarkdown原文をサニタイズ済みの表示用HTMLへ変換する。
// レンダリングに失敗した場合は原文をサニタイズして返す（ベストエフォート）。
func (r *Renderer) HTML(markdown string) string {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(markdown), &buf); err != nil {
		return r.sanitize.Sanitize(markdown)
	}
	return r.sanitize.Sanitize(buf.String())
}
