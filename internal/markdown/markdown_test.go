package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderer_ToHTML_Basic(t *testing.T) {
	r := NewRenderer()

	html, err := r.ToHTML("# Heading\n\nsome **bold** text")
	require.NoError(t, err)

	assert.Contains(t, html, "<h1")
	assert.Contains(t, html, "Heading")
	assert.Contains(t, html, "<strong>bold</strong>")
}

func TestRenderer_ToHTML_StripsScripts(t *testing.T) {
	r := NewRenderer()

	html, err := r.ToHTML("hello <script>alert('xss')</script> world")
	require.NoError(t, err)

	assert.NotContains(t, html, "<script>")
	assert.NotContains(t, html, "alert")
	assert.Contains(t, html, "hello")
}

func TestRenderer_ToHTML_StripsEventHandlers(t *testing.T) {
	r := NewRenderer()

	html, err := r.ToHTML(`<img src="x" onerror="alert(1)">`)
	require.NoError(t, err)

	assert.NotContains(t, html, "onerror")
}

func TestRenderer_ToMarkdown_RoundTrip(t *testing.T) {
	r := NewRenderer()

	html, err := r.ToHTML("plain text with **bold** inside")
	require.NoError(t, err)

	back, err := r.ToMarkdown(html)
	require.NoError(t, err)

	assert.Contains(t, back, "**bold**")
	assert.Contains(t, back, "plain text")
}

func TestRenderer_ConcurrentUse(t *testing.T) {
	r := NewRenderer()

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 50; j++ {
				_, err := r.ToHTML("a *little* markdown")
				assert.NoError(t, err)
			}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}
