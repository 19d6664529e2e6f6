package editor

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/entrhq/nblog/pkg/config"
	"github.com/entrhq/nblog/pkg/model"
)

// scriptedDriver answers script evaluations by matching markers that are
// unique to each step's script, so tests can shape individual steps without
// replaying real editor markup.
type scriptedDriver struct {
	overrides  []scriptRule
	insertErr  func(text string) error
	postListOK bool
	postURL    string
	content    string

	url       string
	navigated []string
	evaluated []string
	clicks    int
	inserted  []string
	presses   []string
}

type scriptRule struct {
	marker string
	result map[string]any
}

func position(x, y float64) map[string]any {
	return map[string]any{"found": true, "x": x, "y": y}
}

func (d *scriptedDriver) Navigate(url string) error {
	d.navigated = append(d.navigated, url)
	d.url = url
	return nil
}

func (d *scriptedDriver) URL() string { return d.url }

func (d *scriptedDriver) Content() (string, error) { return d.content, nil }

func (d *scriptedDriver) Evaluate(script string) (any, error) {
	d.evaluated = append(d.evaluated, script)
	for _, rule := range d.overrides {
		if strings.Contains(script, rule.marker) {
			return rule.result, nil
		}
	}
	switch {
	case strings.Contains(script, "img_write_btn"):
		return map[string]any{"found": true, "href": "https://blog.naver.com/writer/postwrite"}, nil
	case strings.Contains(script, "__se-body"):
		return map[string]any{"ready": true}, nil
	case strings.Contains(script, "작성 중인 글이 있습니다"):
		return map[string]any{"found": false}, nil
	case strings.Contains(script, "help_panel"):
		return map[string]any{"closed": 0}, nil
	case strings.Contains(script, "se-documentTitle"):
		return position(400, 500), nil
	case strings.Contains(script, "se-title-text"):
		return position(400, 300), nil
	case strings.Contains(script, "publish_btn_area"):
		return position(1800, 50), nil
	case strings.Contains(script, "publish_layer"):
		return map[string]any{"found": true}, nil
	case strings.Contains(script, "seOnePublishBtn"):
		return map[string]any{"found": true}, nil
	case strings.Contains(script, "tag_input"):
		return position(900, 600), nil
	case strings.Contains(script, `type="radio"`):
		return position(700, 400), nil
	case strings.Contains(script, "innerHTML"):
		return map[string]any{"found": false}, nil
	case strings.Contains(script, "searchTitle"):
		if d.postListOK {
			return map[string]any{"found": true, "href": d.postURL}, nil
		}
		return map[string]any{"found": false}, nil
	default:
		return map[string]any{"found": false}, nil
	}
}

func (d *scriptedDriver) ClickAt(x, y float64) error {
	d.clicks++
	return nil
}

func (d *scriptedDriver) InsertText(text string) error {
	if d.insertErr != nil {
		if err := d.insertErr(text); err != nil {
			return err
		}
	}
	d.inserted = append(d.inserted, text)
	return nil
}

func (d *scriptedDriver) Fill(selector, value string) error { return nil }

func (d *scriptedDriver) PressKey(key string) error {
	d.presses = append(d.presses, key)
	return nil
}

func (d *scriptedDriver) countEvaluated(marker string) int {
	n := 0
	for _, script := range d.evaluated {
		if strings.Contains(script, marker) {
			n++
		}
	}
	return n
}

func newTestAutomaton(drv *scriptedDriver, maxRetries int) *Automaton {
	cfg := config.Default()
	cfg.MaxRetries = maxRetries
	a := NewAutomaton(drv, "writer", cfg, zap.NewNop())
	a.sleep = func(time.Duration) {}
	return a
}

func happyDriver() *scriptedDriver {
	return &scriptedDriver{
		postListOK: true,
		postURL:    "https://blog.naver.com/writer/224000000001",
	}
}

func testPost() Post {
	return Post{
		Title:    "오늘의 가게 소개",
		Body:     "본문입니다.",
		Category: "",
		Tags:     []string{"맛집", "후기"},
		Settings: model.DefaultPublishSettings(),
	}
}

func TestPublishHappyPath(t *testing.T) {
	drv := happyDriver()
	a := newTestAutomaton(drv, 2)

	result := a.Publish(testPost())

	require.True(t, result.Success)
	assert.Equal(t, 1, result.Attempts)
	assert.Equal(t, StateSucceeded, result.State)
	assert.Equal(t, "https://blog.naver.com/writer/224000000001", result.PostURL)
	assert.NoError(t, result.Err)

	require.Len(t, drv.navigated, 3)
	assert.Equal(t, "https://blog.naver.com/writer", drv.navigated[0])
	assert.Equal(t, "https://blog.naver.com/writer/postwrite", drv.navigated[1])
	assert.Contains(t, drv.navigated[2], "PostList.naver?blogId=writer")

	assert.Contains(t, drv.inserted, "오늘의 가게 소개")
	assert.Contains(t, drv.inserted, "본문입니다.")
	assert.Contains(t, drv.inserted, "맛집")
	assert.Contains(t, drv.inserted, "후기")
	// Space is the tag input's delimiter.
	assert.GreaterOrEqual(t, countOf(drv.presses, "Space"), 2)
}

func countOf(values []string, want string) int {
	n := 0
	for _, v := range values {
		if v == want {
			n++
		}
	}
	return n
}

func TestPublishFallsBackToDirectEditorURL(t *testing.T) {
	drv := happyDriver()
	drv.overrides = []scriptRule{
		{marker: "img_write_btn", result: map[string]any{"found": false}},
	}
	a := newTestAutomaton(drv, 0)

	result := a.Publish(testPost())

	require.True(t, result.Success)
	assert.Equal(t, "https://blog.naver.com/writer/postwrite", drv.navigated[1])
}

func TestPublishRetriesAfterBodyInsertFailure(t *testing.T) {
	drv := happyDriver()
	bodyFailures := 0
	drv.insertErr = func(text string) error {
		if text == "본문입니다." && bodyFailures < 2 {
			bodyFailures++
			return errors.New("node detached")
		}
		return nil
	}
	a := newTestAutomaton(drv, 2)

	result := a.Publish(testPost())

	require.True(t, result.Success)
	assert.Equal(t, 3, result.Attempts)
	// Each retry replays the whole pipeline from navigation.
	assert.Equal(t, 3, countOf(drv.navigated, "https://blog.naver.com/writer"))
}

func TestPublishFailsWhenTitleAreaNeverFound(t *testing.T) {
	drv := happyDriver()
	drv.overrides = []scriptRule{
		{marker: "se-documentTitle", result: map[string]any{"found": false}},
		{marker: "se-title-text", result: map[string]any{"found": false}},
	}
	a := newTestAutomaton(drv, 2)

	result := a.Publish(testPost())

	assert.False(t, result.Success)
	assert.Equal(t, 3, result.Attempts)
	assert.Equal(t, StateFailed, result.State)
	assert.ErrorIs(t, result.Err, ErrLocatorNotFound)
	// Nothing was inserted without a focused title area.
	assert.Empty(t, drv.inserted)
}

func TestPublishFailsWhenHeaderButtonMissing(t *testing.T) {
	drv := happyDriver()
	drv.overrides = []scriptRule{
		{marker: "publish_btn_area", result: map[string]any{"found": false}},
	}
	a := newTestAutomaton(drv, 0)

	result := a.Publish(testPost())

	assert.False(t, result.Success)
	assert.Equal(t, 1, result.Attempts)
	assert.ErrorIs(t, result.Err, ErrLocatorNotFound)
}

func TestPublishVerificationViaLinkScan(t *testing.T) {
	drv := happyDriver()
	drv.postListOK = false
	drv.content = `<html><body><div class="post-list">
		<a href="https://blog.naver.com/writer/224000000042">오늘의 가게 소개</a>
	</body></html>`
	a := newTestAutomaton(drv, 0)

	result := a.Publish(testPost())

	require.True(t, result.Success)
	assert.Equal(t, "https://blog.naver.com/writer/224000000042", result.PostURL)
}

func TestPublishVerificationFailureRetriesWholePipeline(t *testing.T) {
	drv := happyDriver()
	drv.postListOK = false
	a := newTestAutomaton(drv, 1)

	result := a.Publish(testPost())

	assert.False(t, result.Success)
	assert.Equal(t, 2, result.Attempts)
	assert.ErrorIs(t, result.Err, ErrVerificationFailed)
	// Verification failure re-enters from the top, not from VerifyPublished.
	assert.Equal(t, 2, countOf(drv.navigated, "https://blog.naver.com/writer/postwrite"))
}

func TestDraftPromptDiscarded(t *testing.T) {
	drv := happyDriver()
	drv.overrides = []scriptRule{
		{marker: "작성 중인 글이 있습니다", result: map[string]any{"found": true, "clicked": "작성 취소"}},
	}
	a := newTestAutomaton(drv, 0)

	result := a.Publish(testPost())

	require.True(t, result.Success)
}

func TestTogglesClickOnlyDeviationsFromDefaults(t *testing.T) {
	drv := happyDriver()
	a := newTestAutomaton(drv, 0)

	result := a.Publish(testPost())

	require.True(t, result.Success)
	assert.Zero(t, drv.countEvaluated(`type="checkbox"`))
}

func TestTogglesApplyDisabledComment(t *testing.T) {
	drv := happyDriver()
	post := testPost()
	post.Settings.AllowComment = false
	a := newTestAutomaton(drv, 0)

	result := a.Publish(post)

	require.True(t, result.Success)
	assert.Equal(t, 1, drv.countEvaluated(`type="checkbox"`))
}

func TestVisibilityLabelMapping(t *testing.T) {
	cases := []struct {
		visibility model.Visibility
		label      string
	}{
		{model.VisibilityPublic, "전체공개"},
		{model.VisibilityNeighbor, "이웃공개"},
		{model.VisibilityMutual, "서로이웃공개"},
		{model.VisibilityPrivate, "비공개"},
	}
	for _, tc := range cases {
		t.Run(string(tc.visibility), func(t *testing.T) {
			drv := happyDriver()
			post := testPost()
			post.Settings.Visibility = tc.visibility
			a := newTestAutomaton(drv, 0)

			result := a.Publish(post)

			require.True(t, result.Success)
			found := false
			for _, script := range drv.evaluated {
				if strings.Contains(script, fmt.Sprintf("%q", tc.label)) {
					found = true
					break
				}
			}
			assert.True(t, found, "visibility script should target %s", tc.label)
		})
	}
}

func TestStateNames(t *testing.T) {
	assert.Equal(t, "Initial", StateInitial.String())
	assert.Equal(t, "VerifyPublished", StateVerifyPublished.String())
	assert.Equal(t, "Unknown", State(99).String())
}
