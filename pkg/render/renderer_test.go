package render

import (
	"strings"
	"testing"

	"github.com/entrhq/nblog/pkg/model"
	"github.com/stretchr/testify/assert"
)

func TestPlainSectionOrder(t *testing.T) {
	c := model.Content{
		Intro:         "intro line",
		Body:          "main body",
		SectionTitle1: "First stop",
		SectionBody1:  "about the first stop",
		Quote:         "a memorable quote",
		Address:       "1 Example-ro, Seoul",
		Hours:         "10:00-22:00",
	}

	out := Plain(c)

	wantOrder := []string{
		"intro line",
		"main body",
		"=== First stop ===",
		"about the first stop",
		`"a memorable quote"`,
		"Address: 1 Example-ro, Seoul",
		"Hours: 10:00-22:00",
	}
	last := -1
	for _, fragment := range wantOrder {
		idx := strings.Index(out, fragment)
		assert.GreaterOrEqual(t, idx, 0, "missing fragment %q", fragment)
		assert.Greater(t, idx, last, "fragment %q out of order", fragment)
		last = idx
	}
}

func TestPlainSkipsEmptySections(t *testing.T) {
	out := Plain(model.Content{Body: "only body"})
	assert.Equal(t, "only body", out)
}

func TestPlainIsDeterministic(t *testing.T) {
	c := model.Content{Intro: "a", Body: "b", Quote: "c"}
	assert.Equal(t, Plain(c), Plain(c))
}

func TestHTMLEscapesAndIncludesImages(t *testing.T) {
	c := model.Content{
		Intro:      `5 < 6 & "quotes"`,
		TitleImage: "https://example.com/a.png",
	}

	out := HTML(c)
	assert.Contains(t, out, "5 &lt; 6 &amp; &quot;quotes&quot;")
	assert.Contains(t, out, `<img src="https://example.com/a.png" alt="" />`)
	assert.NotContains(t, out, `"quotes"`)
}

func TestHTMLAddressBlock(t *testing.T) {
	out := HTML(model.Content{Address: "somewhere", Address2: "floor 2"})
	assert.Contains(t, out, `<div class="address-info">`)
	assert.Contains(t, out, "<strong>Address:</strong> somewhere")
	assert.Contains(t, out, "<p>floor 2</p>")
}

func TestContentFormatSelection(t *testing.T) {
	c := model.Content{Body: "text & more"}

	assert.Equal(t, Plain(c), Content(c, FormatPlain))
	assert.Equal(t, HTML(c), Content(c, FormatHTML))
	// Unknown format falls back to plain.
	assert.Equal(t, Plain(c), Content(c, Format("???")))
}
