package scrape

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExcludeMatcher_Hosts(t *testing.T) {
	t.Parallel()
	m := NewExcludeMatcher([]string{"youtube.com", "*.reddit.com"})

	assert.True(t, m.IsExcluded("https://youtube.com/watch?v=x"))
	assert.True(t, m.IsExcluded("https://www.youtube.com/watch?v=x"))
	assert.True(t, m.IsExcluded("https://old.reddit.com/r/running"))
	assert.False(t, m.IsExcluded("https://reddit.com/r/running"))
	assert.False(t, m.IsExcluded("https://runnersworld.example/plan"))
}

func TestExcludeMatcher_Paths(t *testing.T) {
	t.Parallel()
	m := NewExcludeMatcher([]string{"/*.pdf", "/tag/*"})

	assert.True(t, m.IsExcluded("https://example.com/guide.pdf"))
	assert.True(t, m.IsExcluded("https://example.com/tag/running"))
	assert.True(t, m.IsExcluded("https://example.com/tag/running/page/2"))
	assert.False(t, m.IsExcluded("https://example.com/guide"))
}

func TestExcludeMatcher_Empty(t *testing.T) {
	t.Parallel()
	m := NewExcludeMatcher(nil)

	assert.False(t, m.IsExcluded("https://anything.example/path"))
	assert.False(t, m.IsExcluded("not even a url"))
}

func TestExcludeMatcher_CaseInsensitive(t *testing.T) {
	t.Parallel()
	m := NewExcludeMatcher([]string{"YouTube.com"})

	assert.True(t, m.IsExcluded("https://YOUTUBE.com/watch"))
}

func TestExcludeMatcher_Patterns(t *testing.T) {
	t.Parallel()
	m := NewExcludeMatcher([]string{"/blog/*", "youtube.com", " ", "/*.pdf"})

	assert.Equal(t, []string{"youtube.com", "/blog/*", "/*.pdf"}, m.Patterns())
}

func TestExcludeMatcher_UnparseableURL(t *testing.T) {
	t.Parallel()
	m := NewExcludeMatcher([]string{"youtube.com"})

	assert.True(t, m.IsExcluded("http://bad url with spaces"))
}

func TestExcludeMatcher_Nil(t *testing.T) {
	t.Parallel()
	var m *ExcludeMatcher

	assert.False(t, m.IsExcluded("https://example.com"))
}
