// Package richtext turns user supplied bodies into stored HTML and extracts
// the plain text used for length rules and search indexing.
package richtext

import (
	"bytes"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
)

const (
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
)

var (
	md = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			goldmarkhtml.WithHardWraps(),
			goldmarkhtml.WithXHTML(),
		),
	)
	ugc    = bluemonday.UGCPolicy()
	strict = bluemonday.StrictPolicy()

	blockClosers = strings.NewReplacer(
		"</p>", "</p> ",
		"<br>", "<br> ",
		"<br/>", "<br/> ",
		"<br />", "<br /> ",
		"</div>", "</div> ",
		"</li>", "</li> ",
		"</h1>", "</h1> ",
		"</h2>", "</h2> ",
		"</h3>", "</h3> ",
		"</pre>", "</pre> ",
		"</blockquote>", "</blockquote> ",
	)
)

func init() {
	ugc.AllowImages()
	ugc.AddTargetBlankToFullyQualifiedLinks(true)
	ugc.RequireNoReferrerOnLinks(true)
}

// Sanitize strips scripts, handlers and unknown tags from editor HTML.
func Sanitize(s string) string {
	return ugc.Sanitize(s)
}

// FromMarkdown renders markdown and sanitizes the result.
func FromMarkdown(src string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return string(ugc.SanitizeBytes(buf.Bytes())), nil
}

// Prepare converts content in the given format to the sanitized HTML that is stored.
// An empty format is treated as HTML.
func Prepare(content, format string) (string, error) {
	if format == FormatMarkdown {
		return FromMarkdown(content)
	}
	return Sanitize(content), nil
}

// PlainText drops all markup, unescapes entities and collapses whitespace.
func PlainText(s string) string {
	s = blockClosers.Replace(s)
	s = html.UnescapeString(strict.Sanitize(s))
	return strings.Join(strings.Fields(s), " ")
}

// PlainLen is the character count of PlainText(s).
func PlainLen(s string) int {
	return utf8.RuneCountInString(PlainText(s))
}
