// Package render converts structured post content into the payload typed
// into the editor. Rendering is pure and deterministic: the same content
// always yields the same output.
package render

import (
	"fmt"
	"strings"

	"github.com/entrhq/nblog/pkg/model"
)

// Format selects the rendering output.
type Format string

const (
	// FormatPlain renders the body as plain text, the payload injected into
	// the editor via the text-insertion primitive.
	FormatPlain Format = "plain"

	// FormatHTML renders the body as HTML markup.
	FormatHTML Format = "html"
)

// Content renders a post body in the requested format. Unknown formats fall
// back to plain text.
func Content(c model.Content, format Format) string {
	if format == FormatHTML {
		return HTML(c)
	}
	return Plain(c)
}

// Plain renders the content fields as plain text in fixed section order,
// separating populated sections with blank lines.
func Plain(c model.Content) string {
	var lines []string
	para := func(text string) {
		if text != "" {
			lines = append(lines, text, "")
		}
	}

	para(c.Intro)
	para(c.Intro2)
	para(c.Body)
	para(c.Feature)

	if c.SectionTitle1 != "" {
		lines = append(lines, fmt.Sprintf("=== %s ===", c.SectionTitle1))
	}
	para(c.SectionBody1)

	if c.Quote != "" {
		lines = append(lines, fmt.Sprintf("%q", c.Quote), "")
	}

	if c.SectionTitle2 != "" {
		lines = append(lines, fmt.Sprintf("=== %s ===", c.SectionTitle2))
	}
	para(c.SectionBody2)

	if c.Address != "" {
		lines = append(lines, "Address: "+c.Address)
	}
	if c.Address2 != "" {
		lines = append(lines, c.Address2)
	}
	if c.Hours != "" {
		lines = append(lines, "Hours: "+c.Hours)
	}
	if c.Business != "" {
		lines = append(lines, c.Business)
	}

	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}

// HTML renders the content fields as escaped HTML markup in the same section
// order as Plain, with images included.
func HTML(c model.Content) string {
	var sections []string
	img := func(url string) {
		if url != "" {
			sections = append(sections, fmt.Sprintf(`<img src="%s" alt="" />`, escape(url)))
		}
	}
	p := func(text string) {
		if text != "" {
			sections = append(sections, "<p>"+escape(text)+"</p>")
		}
	}
	h3 := func(text string) {
		if text != "" {
			sections = append(sections, "<h3>"+escape(text)+"</h3>")
		}
	}

	img(c.TitleImage)
	p(c.Intro)
	p(c.Intro2)
	img(c.TitleImage2)
	p(c.Body)
	p(c.Feature)
	img(c.TitleImage3)

	h3(c.SectionTitle1)
	p(c.SectionBody1)
	img(c.SectionImage1)

	if c.Quote != "" {
		sections = append(sections, "<blockquote>"+escape(c.Quote)+"</blockquote>")
	}

	h3(c.SectionTitle2)
	p(c.SectionBody2)
	img(c.SectionImage2)

	if c.Address != "" || c.Address2 != "" {
		var b strings.Builder
		b.WriteString(`<div class="address-info">`)
		if c.Address != "" {
			b.WriteString("<p><strong>Address:</strong> " + escape(c.Address) + "</p>")
		}
		if c.Address2 != "" {
			b.WriteString("<p>" + escape(c.Address2) + "</p>")
		}
		b.WriteString("</div>")
		sections = append(sections, b.String())
	}

	img(c.ContactImage)
	if c.Hours != "" {
		sections = append(sections, "<p><strong>Hours:</strong> "+escape(c.Hours)+"</p>")
	}
	p(c.Business)

	return strings.Join(sections, "\n")
}

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

func escape(s string) string {
	return htmlEscaper.Replace(s)
}
