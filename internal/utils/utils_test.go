package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderMarkdownSanitizes(t *testing.T) {
	out := string(RenderMarkdown("**bold** <script>alert(1)</script>\n\n![x](https://example.com/a.png)"))

	assert.Contains(t, out, "<strong>bold</strong>")
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, `loading="lazy"`)
}

func TestRenderMarkdownCodeLanguage(t *testing.T) {
	out := string(RenderMarkdown("```go\nfmt.Println(1)\n```"))
	assert.Contains(t, out, `data-lang="go"`)
}

func TestEnhanceWrapsTables(t *testing.T) {
	out := string(EnhanceHTMLContent("<table><tr><td>1</td></tr></table>"))
	assert.True(t, strings.HasPrefix(out, `<div class="table-wrapper"><table>`), out)
	assert.Equal(t, "", string(EnhanceHTMLContent("")))
}

func TestCacheExpiry(t *testing.T) {
	c := NewCache(2)
	c.Set("a", 1, time.Minute)
	c.Set("b", 2, -time.Second)

	assert.Equal(t, 1, c.Get("a"))
	assert.Nil(t, c.Get("b"))

	c.Set("c", 3, time.Minute)
	c.Set("d", 4, time.Minute)
	// capacity 2 evicts the oldest
	assert.Nil(t, c.Get("a"))

	c.Delete("c")
	assert.Nil(t, c.Get("c"))
}

func TestReputationTier(t *testing.T) {
	cases := map[int]string{
		-50:   "newcomer",
		0:     "newcomer",
		50:    "apprentice",
		499:   "apprentice",
		500:   "contributor",
		2000:  "expert",
		10000: "luminary",
	}
	for rep, want := range cases {
		name, _ := ReputationTier(rep)
		assert.Equal(t, want, name, "reputation %d", rep)
	}
}

func TestParseID(t *testing.T) {
	id, err := ParseID("42")
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)

	for _, bad := range []string{"", "0", "-1", "abc"} {
		_, err := ParseID(bad)
		assert.Error(t, err, bad)
	}
	assert.Equal(t, 7, StringToInt("x", 7))
}

func TestHotScoreDecays(t *testing.T) {
	fresh := CalculateHotScore(time.Now(), 50, 2, 5)
	old := CalculateHotScore(time.Now().Add(-72*time.Hour), 50, 2, 5)
	assert.Greater(t, fresh, old)
	assert.Equal(t, 0.0, CalculateHotScore(time.Now(), -100, 0, 0))
}
