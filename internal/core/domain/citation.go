package domain

import (
	"html"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// CitationFragment opens a PDF at its first page, fitted to the viewport.
const CitationFragment = "view-fitV"

var (
	lineBreakRe = regexp.MustCompile(`(?im)^(\s*<br\s*/?>\s*)+|(\s*<br\s*/?>\s*)+$`)
	followupRe  = regexp.MustCompile(`<<([^<>]+)>>`)
	citationRe  = regexp.MustCompile(`\[([^\[\]]+)\]`)
)

// CitationDetails identifies the document a citation marker points at.
type CitationDetails struct {
	Name    string
	BaseURL string

	// Number is the 1-based display number, stable within one answer.
	Number int
}

// URL returns the hyperlink for the citation outside the in-app viewer.
func (c CitationDetails) URL() string {
	return CitationURL(c.BaseURL, c.Name)
}

// CitationURL composes baseURL + "/" + name + "#view-fitV".
func CitationURL(baseURL, name string) string {
	u, err := url.Parse(baseURL)
	if err != nil {
		return strings.TrimRight(baseURL, "/") + "/" + name + "#" + CitationFragment
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/" + name
	u.RawPath = ""
	u.Fragment = CitationFragment
	u.RawFragment = ""
	return u.String()
}

// TrimLineBreaks strips runs of <br> elements bordering the text and its lines.
func TrimLineBreaks(s string) string {
	return lineBreakRe.ReplaceAllString(s, "")
}

// SegmentKind tells text and citations apart.
type SegmentKind int

// Segment kinds.
const (
	SegmentText SegmentKind = iota
	SegmentCitation
)

// AnswerSegment is one render-ready piece of an answer.
type AnswerSegment struct {
	Kind SegmentKind

	// Text is literal answer markup for text segments.
	Text string

	// Citation is set for citation segments.
	Citation *CitationDetails
}

// ParsedAnswer is an answer split into text and resolved citations.
type ParsedAnswer struct {
	Segments          []AnswerSegment
	Citations         []CitationDetails
	FollowupQuestions []string
}

// ParseAnswer converts a raw answer into segments with resolved citations.
//
// A marker resolves when the response carried no data points, or when one of
// the data points is titled with the marker's name. Anything else stays as
// literal text. Follow-up questions written as <<question>> are collected and
// removed; an unterminated trailing << fragment is dropped.
func ParseAnswer(answer, citationBaseURL string, dataPoints []SupportingContent) ParsedAnswer {
	text := strings.TrimSpace(answer)

	parsed := ParsedAnswer{}
	seenFollowup := make(map[string]bool)
	text = followupRe.ReplaceAllStringFunc(text, func(m string) string {
		q := strings.TrimSpace(m[2 : len(m)-2])
		if q != "" && !seenFollowup[q] {
			seenFollowup[q] = true
			parsed.FollowupQuestions = append(parsed.FollowupQuestions, q)
		}
		return ""
	})
	if i := strings.Index(text, "<<"); i >= 0 {
		text = text[:i]
	}
	text = strings.TrimSpace(TrimLineBreaks(text))

	numbers := make(map[string]int)
	var pending strings.Builder
	flush := func() {
		if pending.Len() > 0 {
			parsed.Segments = append(parsed.Segments, AnswerSegment{Kind: SegmentText, Text: pending.String()})
			pending.Reset()
		}
	}

	last := 0
	for _, loc := range citationRe.FindAllStringSubmatchIndex(text, -1) {
		pending.WriteString(text[last:loc[0]])
		last = loc[1]

		name := strings.TrimSpace(text[loc[2]:loc[3]])
		if name == "" || !resolvesTo(name, dataPoints) {
			pending.WriteString(text[loc[0]:loc[1]])
			continue
		}

		n, ok := numbers[name]
		if !ok {
			n = len(parsed.Citations) + 1
			numbers[name] = n
			parsed.Citations = append(parsed.Citations, CitationDetails{
				Name:    name,
				BaseURL: citationBaseURL,
				Number:  n,
			})
		}
		flush()
		c := parsed.Citations[n-1]
		parsed.Segments = append(parsed.Segments, AnswerSegment{Kind: SegmentCitation, Citation: &c})
	}
	pending.WriteString(text[last:])
	flush()

	return parsed
}

func resolvesTo(name string, dataPoints []SupportingContent) bool {
	if len(dataPoints) == 0 {
		return true
	}
	for _, dp := range dataPoints {
		if strings.EqualFold(strings.TrimSpace(dp.Title), name) {
			return true
		}
	}
	return false
}

// HTML renders the answer with citations as numbered superscripts.
func (p ParsedAnswer) HTML() string {
	var b strings.Builder
	for _, seg := range p.Segments {
		if seg.Kind == SegmentCitation && seg.Citation != nil {
			b.WriteString(`<sup title="`)
			b.WriteString(html.EscapeString(seg.Citation.Name))
			b.WriteString(`">`)
			b.WriteString(strconv.Itoa(seg.Citation.Number))
			b.WriteString("</sup>")
			continue
		}
		b.WriteString(seg.Text)
	}
	return b.String()
}

// PlainText renders the answer with citations as [n].
func (p ParsedAnswer) PlainText() string {
	var b strings.Builder
	for _, seg := range p.Segments {
		if seg.Kind == SegmentCitation && seg.Citation != nil {
			b.WriteString("[" + strconv.Itoa(seg.Citation.Number) + "]")
			continue
		}
		b.WriteString(seg.Text)
	}
	return b.String()
}

// Citation returns the citation with the given display number.
func (p ParsedAnswer) Citation(number int) (CitationDetails, bool) {
	if number < 1 || number > len(p.Citations) {
		return CitationDetails{}, false
	}
	return p.Citations[number-1], true
}
