// Package render turns parsed answers into markdown for the terminal.
package render

import (
	"fmt"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"github.com/PuerkitoBio/goquery"

	"github.com/custodia-labs/omniq-cli/internal/core/domain"
)

// citationRule renders <sup>n</sup> markers as [n].
var citationRule = md.Rule{
	Filter: []string{"sup"},
	Replacement: func(content string, _ *goquery.Selection, _ *md.Options) *string {
		return md.String("[" + strings.TrimSpace(content) + "]")
	},
}

// Renderer converts answer HTML to markdown.
// A Renderer is not safe for concurrent use.
type Renderer struct {
	converter *md.Converter
}

// New creates a renderer.
func New() *Renderer {
	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())
	converter.AddRules(citationRule)
	return &Renderer{converter: converter}
}

// Answer renders the body of a parsed answer.
func (r *Renderer) Answer(parsed domain.ParsedAnswer) (string, error) {
	if len(parsed.Segments) == 0 {
		return "", nil
	}
	out, err := r.converter.ConvertString(parsed.HTML())
	if err != nil {
		return "", fmt.Errorf("render answer: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// Answer renders parsed with a fresh Renderer.
func Answer(parsed domain.ParsedAnswer) (string, error) {
	return New().Answer(parsed)
}

// Citations lists the citations as "[n] name  url" lines.
func Citations(parsed domain.ParsedAnswer) string {
	var b strings.Builder
	for _, c := range parsed.Citations {
		fmt.Fprintf(&b, "[%d] %s", c.Number, c.Name)
		if c.BaseURL != "" {
			fmt.Fprintf(&b, "  %s", c.URL())
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Followups lists follow-up questions numbered from 1.
func Followups(parsed domain.ParsedAnswer) string {
	var b strings.Builder
	for i, q := range parsed.FollowupQuestions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, q)
	}
	return b.String()
}

// Sources lists the supporting content of a response, one entry per data point.
// Content longer than width runes is shortened. Zero width keeps it whole.
func Sources(resp *domain.ApproachResponse, width int) string {
	if resp == nil {
		return ""
	}
	var b strings.Builder
	for _, dp := range resp.DataPoints {
		fmt.Fprintf(&b, "- %s: %s\n", dp.Title, truncate(strings.Join(strings.Fields(dp.Content), " "), width))
	}
	for _, img := range resp.Images {
		fmt.Fprintf(&b, "- %s (image): %s\n", img.Title, img.URL)
	}
	if resp.Thoughts != nil && strings.TrimSpace(*resp.Thoughts) != "" {
		fmt.Fprintf(&b, "\nThoughts:\n%s\n", strings.TrimSpace(*resp.Thoughts))
	}
	return b.String()
}

func truncate(s string, width int) string {
	r := []rune(s)
	if width <= 0 || len(r) <= width {
		return s
	}
	if width <= 3 {
		return string(r[:width])
	}
	return string(r[:width-3]) + "..."
}
