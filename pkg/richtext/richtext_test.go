package richtext

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeRemovesScripts(t *testing.T) {
	out := Sanitize(`<p>hello</p><script>alert(1)</script><img src="x" onerror="steal()">`)

	assert.Contains(t, out, "<p>hello</p>")
	assert.NotContains(t, out, "script")
	assert.NotContains(t, out, "onerror")
}

func TestPlainText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "paragraphs do not merge", in: "<p>one</p><p>two</p>", want: "one two"},
		{name: "entities are unescaped", in: "<p>a &amp; b &lt;c&gt;</p>", want: "a & b <c>"},
		{name: "whitespace collapses", in: "  lots\n\nof   space ", want: "lots of space"},
		{name: "markup only", in: "<p><br></p>", want: ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, PlainText(tc.in))
		})
	}
}

func TestPlainLenCountsRunes(t *testing.T) {
	assert.Equal(t, 5, PlainLen("<b>héllo</b>"))
	assert.Equal(t, 0, PlainLen("<p></p>"))
}

func TestFromMarkdown(t *testing.T) {
	out, err := FromMarkdown("# Title\n\nSome **bold** text\n\n<script>x()</script>")
	require.NoError(t, err)

	assert.Contains(t, out, "<strong>bold</strong>")
	assert.NotContains(t, out, "<script>")
	assert.Equal(t, "Title Some bold text", PlainText(out))
}

func TestPrepareDefaultsToHTML(t *testing.T) {
	out, err := Prepare("<p>**not markdown**</p>", "")
	require.NoError(t, err)
	assert.Equal(t, "<p>**not markdown**</p>", out)
}
