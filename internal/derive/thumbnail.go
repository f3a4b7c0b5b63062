package derive

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/hitoshi/storeblog/internal/model"
)

// DefaultThumbnailAlt はalt属性を持たない画像に与える既定の代替テキスト。
const DefaultThumbnailAlt = "thumbnail"

// markdownImagePattern はMarkdownの画像記法 ![alt](url) にマッチする。
// URLに続くタイトル（ "..." ）は無視する。
var markdownImagePattern = regexp.MustCompile(`!\[([^\]]*)\]\(\s*([^)\s]+)(?:\s+"[^"]*")?\s*\)`)

// FirstImage はMarkdown原文から最初の埋め込み画像参照を抽出する。
// 画像が存在しない場合はnilを返す。
//
// 以下の3パターンを優先順に検査し、文書中のどこかで最初にマッチした
// パターンを採用する:
//  1. Markdown画像記法 ![alt](url)
//  2. srcとalt両属性を持つHTMLのimgタグ
//  3. src属性のみを持つHTMLのimgタグ
//
// alt属性が空の場合はDefaultThumbnailAltで補完する。
// パースツリーを構築しないパターンマッチングのため、フェンスコードブロック
// 内の画像風テキストも検出対象になる（既知の制限）。
func FirstImage(markdown string) *model.Thumbnail {
	if m := markdownImagePattern.FindStringSubmatch(markdown); m != nil {
		alt := m[1]
		if alt == "" {
			alt = DefaultThumbnailAlt
		}
		return &model.Thumbnail{URL: m[2], Alt: alt}
	}

	if thumb := firstImgTag(markdown, true); thumb != nil {
		return thumb
	}
	return firstImgTag(markdown, false)
}

// firstImgTag はHTMLのimgタグを走査して最初の画像参照を返す。
// requireAltがtrueの場合はsrcとaltの両方を持つタグのみを対象とする。
func firstImgTag(doc string, requireAlt bool) *model.Thumbnail {
	tok := html.NewTokenizer(strings.NewReader(doc))
	for {
		switch tok.Next() {
		case html.ErrorToken:
			// EOFまたは不正なHTML。いずれも画像なしとして扱う
			return nil
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := tok.TagName()
			if string(name) != "img" || !hasAttr {
				continue
			}
			var src, alt string
			for {
				key, val, more := tok.TagAttr()
				switch string(key) {
				case "src":
					src = string(val)
				case "alt":
					alt = string(val)
				}
				if !more {
					break
				}
			}
			if src == "" {
				continue
			}
			if requireAlt && alt == "" {
				continue
			}
			if alt == "" {
				alt = DefaultThumbnailAlt
			}
			return &model.Thumbnail{URL: src, Alt: alt}
		}
	}
}
