package derive

import (
	"strings"
	"testing"
)

func TestHTML_RendersMarkdown(t *testing.T) {
	r := NewRenderer()

	html := r.HTML("# Brewing Sencha\n\nSteep at **seventy** degrees.")

	if !strings.Contains(html, "<h1") {
		t.Errorf("HTML() = %q, should contain heading", html)
	}
	if !strings.Contains(html, "<strong>seventy</strong>") {
		t.Errorf("HTML() = %q, should contain strong emphasis", html)
	}
}

func TestHTML_RendersGFMTable(t *testing.T) {
	r := NewRenderer()

	html := r.HTML("| Tea | Temp |\n| --- | --- |\n| Sencha | 70 |\n")

	if !strings.Contains(html, "<table>") {
		t.Errorf("HTML() = %q, should render GFM table", html)
	}
}

func TestHTML_StripsScriptTags(t *testing.T) {
	r := NewRenderer()

	html := r.HTML("Safe text.\n\n<script>alert(1)</script>")

	if strings.Contains(html, "<script>") {
		t.Errorf("HTML() = %q, should not contain script tags", html)
	}
	if !strings.Contains(html, "Safe text.") {
		t.Errorf("HTML() = %q, should keep safe text", html)
	}
}

func TestHTML_KeepsImages(t *testing.T) {
	r := NewRenderer()

	html := r.HTML("![sencha](https://cdn.example.com/sencha.png)")

	if !strings.Contains(html, "<img") {
		t.Errorf("HTML() = %q, should keep image tags", html)
	}
	if !strings.Contains(html, "https://cdn.example.com/sencha.png") {
		t.Errorf("HTML() = %q, should keep image URL", html)
	}
}

func TestHTML_EmptyInput(t *testing.T) {
	r := NewRenderer()

	if got := strings.TrimSpace(r.HTML("")); got != "" {
		t.Errorf("HTML(empty) = %q, want empty", got)
	}
}
