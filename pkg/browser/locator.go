package browser

import (
	"encoding/json"
	"fmt"
)

// LocatorKind names one heuristic for finding a UI element.
type LocatorKind string

const (
	// ByImageAlt matches an image whose src or alt contains the value; the
	// position (and href, when present) come from its enclosing link.
	ByImageAlt LocatorKind = "image"

	// ByClassSubstring matches elements whose class attribute contains the value.
	ByClassSubstring LocatorKind = "class"

	// ByHrefSubstring matches links whose href contains the value.
	ByHrefSubstring LocatorKind = "href"

	// ByLinkText matches links whose trimmed text equals the value.
	ByLinkText LocatorKind = "text"

	// ByPlaceholder matches inputs whose placeholder contains the value.
	ByPlaceholder LocatorKind = "placeholder"

	// BySelector matches a raw CSS selector.
	BySelector LocatorKind = "selector"
)

// Locator is one candidate rule for finding an element. Multiple locators
// are evaluated in priority order; the first visible match wins. A single
// selector is brittle against markup drift, an ordered list degrades
// gracefully.
type Locator struct {
	Kind  LocatorKind `json:"kind"`
	Value string      `json:"value"`
}

// Match is a resolved on-screen position, with the element's href and text
// when it exposes them. Coordinates are viewport coordinates of the element
// center, offset-corrected for elements found inside a nested frame.
type Match struct {
	X    float64
	Y    float64
	Href string
	Text string
}

// resolvePositionScript evaluates candidate locators in order across the top
// document and any same-origin frames, returning the first visible match.
const resolvePositionScript = `
(function(candidates, searchFrames) {
    function visible(el) {
        if (!el || el.offsetParent === null) return false;
        const rect = el.getBoundingClientRect();
        return rect.width > 0 && rect.height > 0;
    }
    function center(el, offsetX, offsetY) {
        const rect = el.getBoundingClientRect();
        return {
            x: rect.left + rect.width / 2 + offsetX,
            y: rect.top + rect.height / 2 + offsetY
        };
    }
    function query(doc, c) {
        switch (c.kind) {
        case "image": {
            const imgs = doc.querySelectorAll("img");
            for (const img of imgs) {
                const src = img.getAttribute("src") || "";
                const alt = img.getAttribute("alt") || "";
                if (src.includes(c.value) || alt.includes(c.value)) {
                    return img.closest("a") || img;
                }
            }
            return null;
        }
        case "class": {
            const els = doc.querySelectorAll('[class*="' + c.value + '"]');
            for (const el of els) if (visible(el)) return el;
            return null;
        }
        case "href": {
            const links = doc.querySelectorAll("a[href]");
            for (const a of links) {
                if (a.href && a.href.includes(c.value)) return a;
            }
            return null;
        }
        case "text": {
            const links = doc.querySelectorAll("a");
            for (const a of links) {
                if (a.textContent.trim() === c.value) return a;
            }
            return null;
        }
        case "placeholder": {
            const inputs = doc.querySelectorAll("input, textarea");
            for (const el of inputs) {
                const ph = el.getAttribute("placeholder") || "";
                if (ph.includes(c.value) && visible(el)) return el;
            }
            return null;
        }
        case "selector":
            return doc.querySelector(c.value);
        }
        return null;
    }

    const docs = [{doc: document, x: 0, y: 0}];
    if (searchFrames) {
        for (const frame of document.querySelectorAll("iframe")) {
            try {
                if (frame.contentDocument) {
                    const rect = frame.getBoundingClientRect();
                    docs.push({doc: frame.contentDocument, x: rect.left, y: rect.top});
                }
            } catch (e) { /* cross-origin frame */ }
        }
    }

    for (const c of candidates) {
        for (const d of docs) {
            const el = query(d.doc, c);
            if (!el) continue;
            const pos = center(el, d.x, d.y);
            return {
                found: true,
                x: pos.x,
                y: pos.y,
                href: el.href || "",
                text: (el.textContent || "").trim().substring(0, 100)
            };
        }
    }
    return {found: false};
})
`

// ResolvePosition evaluates candidate locators in priority order and returns
// the first visible match's on-screen position. All coordinate math for the
// automaton goes through here; state machine logic never does geometry.
func ResolvePosition(d Driver, candidates []Locator, searchFrames bool) (Match, bool) {
	encoded, err := json.Marshal(candidates)
	if err != nil {
		return Match{}, false
	}
	script := fmt.Sprintf("%s(%s, %t)", resolvePositionScript, encoded, searchFrames)

	obj, err := EvalObject(d, script)
	if err != nil || !ObjBool(obj, "found") {
		return Match{}, false
	}
	return Match{
		X:    ObjFloat(obj, "x"),
		Y:    ObjFloat(obj, "y"),
		Href: ObjString(obj, "href"),
		Text: ObjString(obj, "text"),
	}, true
}
