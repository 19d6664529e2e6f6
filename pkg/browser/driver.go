// Package browser owns the remote browser surface: session lifecycle, the
// login sub-protocol, and the primitive protocol operations the editor
// automaton is built on.
package browser

import (
	"fmt"

	"github.com/playwright-community/playwright-go"
)

// Driver is the remote automation protocol consumed by the login flow and
// the editor automaton: navigation, location/markup reads, script
// evaluation, and the three primitive input operations. Coordinate-based
// actions operate on viewport coordinates resolved via Evaluate.
type Driver interface {
	// Navigate loads a URL and waits for the load event.
	Navigate(url string) error

	// URL returns the current location.
	URL() string

	// Content returns the full rendered markup of the current document.
	Content() (string, error)

	// Evaluate runs a script expression in the page and returns its value.
	Evaluate(script string) (any, error)

	// ClickAt dispatches a mouse click at viewport coordinates.
	ClickAt(x, y float64) error

	// InsertText injects literal text at the current focus. Unlike simulated
	// keystrokes this preserves multi-byte text exactly.
	InsertText(text string) error

	// PressKey dispatches a key press ("Enter", "Escape", "Control+v", ...).
	PressKey(key string) error

	// Fill populates the first element matching a CSS selector.
	Fill(selector, value string) error
}

// pageDriver adapts a Playwright page to the Driver protocol.
type pageDriver struct {
	page playwright.Page
}

func newPageDriver(page playwright.Page) *pageDriver {
	return &pageDriver{page: page}
}

func (d *pageDriver) Navigate(url string) error {
	_, err := d.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
	})
	if err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	return nil
}

func (d *pageDriver) URL() string {
	return d.page.URL()
}

func (d *pageDriver) Content() (string, error) {
	content, err := d.page.Content()
	if err != nil {
		return "", fmt.Errorf("content read failed: %w", err)
	}
	return content, nil
}

func (d *pageDriver) Evaluate(script string) (any, error) {
	value, err := d.page.Evaluate(script)
	if err != nil {
		return nil, fmt.Errorf("evaluate failed: %w", err)
	}
	return value, nil
}

func (d *pageDriver) ClickAt(x, y float64) error {
	if err := d.page.Mouse().Click(x, y); err != nil {
		return fmt.Errorf("click at (%.0f, %.0f) failed: %w", x, y, err)
	}
	return nil
}

func (d *pageDriver) InsertText(text string) error {
	if err := d.page.Keyboard().InsertText(text); err != nil {
		return fmt.Errorf("text insertion failed: %w", err)
	}
	return nil
}

func (d *pageDriver) PressKey(key string) error {
	if err := d.page.Keyboard().Press(key); err != nil {
		return fmt.Errorf("key press %q failed: %w", key, err)
	}
	return nil
}

func (d *pageDriver) Fill(selector, value string) error {
	if err := d.page.Fill(selector, value, playwright.PageFillOptions{
		Timeout: playwright.Float(5000),
	}); err != nil {
		return fmt.Errorf("fill failed: %w", err)
	}
	return nil
}

// EvalObject evaluates a script expected to return an object and coerces the
// result into a map. A null result yields an empty map.
func EvalObject(d Driver, script string) (map[string]any, error) {
	value, err := d.Evaluate(script)
	if err != nil {
		return nil, err
	}
	if value == nil {
		return map[string]any{}, nil
	}
	obj, ok := value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("script returned %T, expected object", value)
	}
	return obj, nil
}

// ObjBool reads a boolean field from an evaluated object.
func ObjBool(obj map[string]any, key string) bool {
	b, _ := obj[key].(bool)
	return b
}

// ObjString reads a string field from an evaluated object.
func ObjString(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return s
}

// ObjFloat reads a numeric field from an evaluated object. Evaluation
// results may surface as int or float64 depending on the value.
func ObjFloat(obj map[string]any, key string) float64 {
	switch v := obj[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}
