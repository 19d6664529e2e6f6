package editor

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/entrhq/nblog/pkg/browser"
	"github.com/entrhq/nblog/pkg/config"
	"github.com/entrhq/nblog/pkg/model"
)

const (
	blogBaseURL = "https://blog.naver.com"

	navigationSettle = 4 * time.Second
	dialogSettle     = 2 * time.Second
	clickSettle      = 300 * time.Millisecond
	editorLoadWait   = 15 * time.Second
	editorPollEvery  = 500 * time.Millisecond
)

var visibilityLabels = map[model.Visibility]string{
	model.VisibilityPublic:   "전체공개",
	model.VisibilityNeighbor: "이웃공개",
	model.VisibilityMutual:   "서로이웃공개",
	model.VisibilityPrivate:  "비공개",
}

// Result is the outcome of one Publish call, including how many attempts it
// took and where the automaton stopped.
type Result struct {
	Success  bool
	Attempts int
	State    State
	PostURL  string
	Err      error
}

// Automaton drives the write-and-publish pipeline for one post on an
// authenticated session. A fresh Automaton is built per job; it is not safe
// for concurrent use.
type Automaton struct {
	drv    browser.Driver
	blogID string
	cfg    config.Config
	log    *zap.Logger
	sleep  func(time.Duration)
	state  State
}

func NewAutomaton(drv browser.Driver, blogID string, cfg config.Config, log *zap.Logger) *Automaton {
	return &Automaton{
		drv:    drv,
		blogID: blogID,
		cfg:    cfg,
		log:    log.With(zap.String("blog", blogID)),
		sleep:  time.Sleep,
	}
}

// State returns the automaton's current pipeline position.
func (a *Automaton) State() State {
	return a.state
}

// Publish runs the full pipeline for one post, retrying the whole pipeline
// from the start on any failure. Partial progress is never resumed: a failed
// attempt may have left the editor in an unknown condition, so each retry
// re-navigates and replays every step.
func (a *Automaton) Publish(post Post) Result {
	maxAttempts := a.cfg.MaxRetries + 1
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			a.log.Warn("retrying publish pipeline",
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", maxAttempts),
				zap.Error(lastErr))
		}
		a.state = StateInitial

		postURL, err := a.runAttempt(post)
		if err == nil {
			a.state = StateSucceeded
			return Result{Success: true, Attempts: attempt, State: StateSucceeded, PostURL: postURL}
		}
		lastErr = err
		a.log.Warn("publish attempt failed",
			zap.Int("attempt", attempt),
			zap.Stringer("state", a.state),
			zap.Error(err))
	}

	a.state = StateFailed
	return Result{Success: false, Attempts: maxAttempts, State: StateFailed, Err: lastErr}
}

func (a *Automaton) runAttempt(post Post) (string, error) {
	if err := a.navigateToEditor(); err != nil {
		return "", err
	}
	a.dismissDraftPrompt()
	a.dismissHelpOverlay()
	if err := a.enterTitle(post.Title); err != nil {
		return "", err
	}
	if err := a.enterBody(post.Body); err != nil {
		return "", err
	}
	if err := a.openPublishDialog(); err != nil {
		return "", err
	}
	a.configureCategory(post.Category)
	a.configureTags(post.Tags)
	a.configureVisibility(post.Settings.Visibility)
	a.configurePublishToggles(post.Settings)
	a.sleep(time.Second)
	if err := a.confirmPublish(); err != nil {
		return "", err
	}
	return a.verifyPublished(post.Title)
}

// navigateToEditor opens the blog main page, follows the write link found
// inside the mainFrame, and falls back to the direct postwrite URL when the
// link cannot be located.
func (a *Automaton) navigateToEditor() error {
	a.state = StateNavigateToEditor

	mainURL := fmt.Sprintf("%s/%s", blogBaseURL, a.blogID)
	if err := a.drv.Navigate(mainURL); err != nil {
		return fmt.Errorf("%w: open blog main: %v", ErrStepFailed, err)
	}
	a.sleep(navigationSettle)

	writeURL := fmt.Sprintf("%s/%s/postwrite", blogBaseURL, a.blogID)
	if obj, err := browser.EvalObject(a.drv, writeLinkScript); err == nil && browser.ObjBool(obj, "found") {
		if href := browser.ObjString(obj, "href"); href != "" {
			writeURL = href
		}
	}

	a.log.Debug("opening editor", zap.String("url", writeURL))
	if err := a.drv.Navigate(writeURL); err != nil {
		return fmt.Errorf("%w: open editor: %v", ErrStepFailed, err)
	}
	a.sleep(navigationSettle)

	if !a.waitForEditor() {
		// The surface sometimes loads without any recognized marker; the
		// title step will fail cleanly if the editor truly is not there.
		a.log.Warn("editor markers not detected, continuing")
	}
	return nil
}

func (a *Automaton) waitForEditor() bool {
	polls := int(editorLoadWait / editorPollEvery)
	for i := 0; i < polls; i++ {
		if obj, err := browser.EvalObject(a.drv, editorReadyScript); err == nil && browser.ObjBool(obj, "ready") {
			return true
		}
		a.sleep(editorPollEvery)
	}
	return false
}

// dismissDraftPrompt discards any resume-draft modal. Best effort: absence
// of the prompt is the common case.
func (a *Automaton) dismissDraftPrompt() {
	a.state = StateDismissDraftPrompt
	a.sleep(dialogSettle)

	obj, err := browser.EvalObject(a.drv, draftPromptScript)
	if err != nil {
		a.log.Debug("draft prompt check failed", zap.Error(err))
		return
	}
	if browser.ObjBool(obj, "found") {
		a.log.Info("discarded draft prompt", zap.String("button", browser.ObjString(obj, "clicked")))
		a.sleep(dialogSettle)
	}
}

// dismissHelpOverlay closes onboarding overlays and presses Escape for any
// that lack a close control. Best effort.
func (a *Automaton) dismissHelpOverlay() {
	a.state = StateDismissHelpOverlay

	if obj, err := browser.EvalObject(a.drv, helpOverlayScript); err == nil {
		if closed := browser.ObjFloat(obj, "closed"); closed > 0 {
			a.log.Debug("closed help overlays", zap.Int("count", int(closed)))
			a.sleep(time.Second)
		}
	}
	if err := a.drv.PressKey("Escape"); err != nil {
		a.log.Debug("escape press failed", zap.Error(err))
	}
	a.sleep(500 * time.Millisecond)
}

// enterTitle clicks the title paragraph and inserts the title text. The
// double click works around the editor swallowing the first focus click.
func (a *Automaton) enterTitle(title string) error {
	a.state = StateEnterTitle

	obj, err := browser.EvalObject(a.drv, titlePositionScript)
	if err != nil || !browser.ObjBool(obj, "found") {
		return fmt.Errorf("%w: title area", ErrLocatorNotFound)
	}
	x, y := browser.ObjFloat(obj, "x"), browser.ObjFloat(obj, "y")
	for i := 0; i < 2; i++ {
		if err := a.drv.ClickAt(x, y); err != nil {
			return fmt.Errorf("%w: click title area: %v", ErrStepFailed, err)
		}
		a.sleep(clickSettle)
	}
	if err := a.drv.InsertText(title); err != nil {
		return fmt.Errorf("%w: insert title: %v", ErrStepFailed, err)
	}
	a.sleep(clickSettle)
	return nil
}

// enterBody focuses the first non-title paragraph and inserts the body.
// Focus is best effort (insertion targets the current caret), but a failed
// insertion aborts the attempt.
func (a *Automaton) enterBody(body string) error {
	a.state = StateEnterBody

	if obj, err := browser.EvalObject(a.drv, bodyPositionScript); err == nil && browser.ObjBool(obj, "found") {
		x, y := browser.ObjFloat(obj, "x"), browser.ObjFloat(obj, "y")
		for i := 0; i < 2; i++ {
			if err := a.drv.ClickAt(x, y); err != nil {
				return fmt.Errorf("%w: click body area: %v", ErrStepFailed, err)
			}
			a.sleep(clickSettle)
		}
	} else {
		a.log.Warn("body area not located, inserting at current focus")
	}
	if err := a.drv.InsertText(body); err != nil {
		return fmt.Errorf("%w: insert body: %v", ErrStepFailed, err)
	}
	a.sleep(clickSettle)
	return nil
}

// openPublishDialog clicks the header publish button and waits for the
// dialog. A missing header button is fatal; a dialog that never signals
// readiness is not, since the confirm step has its own detection.
func (a *Automaton) openPublishDialog() error {
	a.state = StateOpenPublishDialog

	a.dismissHelpOverlay()
	a.state = StateOpenPublishDialog

	obj, err := browser.EvalObject(a.drv, headerPublishScript)
	if err != nil || !browser.ObjBool(obj, "found") {
		return fmt.Errorf("%w: header publish button", ErrLocatorNotFound)
	}
	if err := a.drv.ClickAt(browser.ObjFloat(obj, "x"), browser.ObjFloat(obj, "y")); err != nil {
		return fmt.Errorf("%w: click publish button: %v", ErrStepFailed, err)
	}
	a.sleep(dialogSettle)

	if !a.waitForDialog() {
		a.log.Warn("publish dialog not detected, continuing")
		a.sleep(time.Second)
	}
	return nil
}

func (a *Automaton) waitForDialog() bool {
	polls := int(a.cfg.DialogTimeout / a.cfg.DialogPollInterval)
	for i := 0; i < polls; i++ {
		if obj, err := browser.EvalObject(a.drv, dialogPresenceScript); err == nil && browser.ObjBool(obj, "found") {
			return true
		}
		a.sleep(a.cfg.DialogPollInterval)
	}
	return false
}

// configureCategory selects the target category in the dialog. Best effort:
// a missing category leaves the blog's default in place.
func (a *Automaton) configureCategory(category string) {
	a.state = StateConfigureCategory
	if category == "" {
		return
	}

	obj, err := browser.EvalObject(a.drv, categoryOpenScript)
	if err != nil || !browser.ObjBool(obj, "clicked") {
		a.log.Warn("category dropdown not found", zap.String("category", category))
		return
	}
	a.sleep(500 * time.Millisecond)

	if obj, err := browser.EvalObject(a.drv, categorySelectScript(category)); err != nil || !browser.ObjBool(obj, "clicked") {
		a.log.Warn("category entry not found", zap.String("category", category))
	}
	a.sleep(clickSettle)
}

// configureTags types each tag into the dialog's tag input, separated by
// Space, which is the input's tag delimiter.
func (a *Automaton) configureTags(tags []string) {
	a.state = StateConfigureTags
	if len(tags) == 0 {
		return
	}

	obj, err := browser.EvalObject(a.drv, tagInputScript)
	if err != nil || !browser.ObjBool(obj, "found") {
		a.log.Warn("tag input not found", zap.Int("tags", len(tags)))
		return
	}
	if err := a.drv.ClickAt(browser.ObjFloat(obj, "x"), browser.ObjFloat(obj, "y")); err != nil {
		a.log.Warn("tag input click failed", zap.Error(err))
		return
	}
	a.sleep(clickSettle)

	for _, tag := range tags {
		if err := a.drv.InsertText(tag); err != nil {
			a.log.Warn("tag insert failed", zap.String("tag", tag), zap.Error(err))
			return
		}
		if err := a.drv.PressKey("Space"); err != nil {
			a.log.Warn("tag delimiter failed", zap.Error(err))
			return
		}
		a.sleep(200 * time.Millisecond)
	}
}

// configureVisibility clicks the radio control for the requested audience.
// Best effort: an unmatched label keeps the dialog's current selection.
func (a *Automaton) configureVisibility(visibility model.Visibility) {
	a.state = StateConfigureVisibility

	label, ok := visibilityLabels[visibility]
	if !ok {
		label = visibilityLabels[model.VisibilityPublic]
	}

	obj, err := browser.EvalObject(a.drv, visibilityScript(label))
	if err != nil || !browser.ObjBool(obj, "found") {
		a.log.Warn("visibility control not found", zap.String("visibility", label))
		return
	}
	if err := a.drv.ClickAt(browser.ObjFloat(obj, "x"), browser.ObjFloat(obj, "y")); err != nil {
		a.log.Warn("visibility click failed", zap.Error(err))
		return
	}
	a.sleep(clickSettle)
}

// configurePublishToggles reconciles the dialog's checkboxes with the
// requested settings. The dialog defaults everything to allowed, so only
// deviations from the defaults produce clicks.
func (a *Automaton) configurePublishToggles(settings model.PublishSettings) {
	a.state = StateConfigurePublishToggles

	toggles := []struct {
		enabled bool
		texts   []string
	}{
		{settings.AllowComment, []string{"댓글", "댓글허용", "댓글 허용"}},
		{settings.AllowSympathy, []string{"공감", "공감허용", "공감 허용"}},
		{settings.AllowSearch, []string{"검색", "검색허용", "검색 허용"}},
		{settings.AllowExternalShare, []string{"외부", "외부 공유", "외부공유"}},
	}
	for _, t := range toggles {
		if !t.enabled {
			a.applyToggle(t.texts, false)
		}
	}

	switch settings.BlogCafeShare {
	case model.ShareContent:
		a.selectShareMode("본문")
	case model.ShareNone:
		a.applyToggle([]string{"블로그", "카페", "공유"}, false)
	}

	if settings.IsNotice {
		a.applyToggle([]string{"공지사항", "공지 사항", "공지"}, true)
	}
}

func (a *Automaton) applyToggle(texts []string, check bool) {
	obj, err := browser.EvalObject(a.drv, toggleScript(texts, check))
	if err != nil || !browser.ObjBool(obj, "found") {
		a.log.Warn("toggle not found", zap.Strings("texts", texts))
		return
	}
	if browser.ObjBool(obj, "noChange") {
		return
	}
	if err := a.drv.ClickAt(browser.ObjFloat(obj, "x"), browser.ObjFloat(obj, "y")); err != nil {
		a.log.Warn("toggle click failed", zap.Error(err))
		return
	}
	a.sleep(200 * time.Millisecond)
}

func (a *Automaton) selectShareMode(option string) {
	obj, err := browser.EvalObject(a.drv, shareDropdownScript)
	if err != nil || !browser.ObjBool(obj, "found") {
		a.log.Warn("share dropdown not found")
		return
	}
	if err := a.drv.ClickAt(browser.ObjFloat(obj, "x"), browser.ObjFloat(obj, "y")); err != nil {
		return
	}
	a.sleep(clickSettle)

	obj, err = browser.EvalObject(a.drv, shareOptionScript(option))
	if err != nil || !browser.ObjBool(obj, "found") {
		a.log.Warn("share option not found", zap.String("option", option))
		return
	}
	if err := a.drv.ClickAt(browser.ObjFloat(obj, "x"), browser.ObjFloat(obj, "y")); err != nil {
		a.log.Warn("share option click failed", zap.Error(err))
	}
	a.sleep(200 * time.Millisecond)
}

// confirmPublish clicks the dialog's final publish button and waits for the
// editor to navigate away. Still sitting on the postwrite URL afterwards is
// inconclusive rather than fatal; verification settles it.
func (a *Automaton) confirmPublish() error {
	a.state = StateConfirmPublish

	obj, err := browser.EvalObject(a.drv, confirmPublishScript)
	if err != nil {
		return fmt.Errorf("%w: confirm publish: %v", ErrStepFailed, err)
	}
	if !browser.ObjBool(obj, "found") {
		return fmt.Errorf("%w: dialog publish button", ErrLocatorNotFound)
	}
	a.sleep(3 * time.Second)

	location := strings.ToLower(a.drv.URL())
	if strings.Contains(location, "postwrite") && !strings.Contains(location, "logno") {
		a.sleep(dialogSettle)
		if strings.Contains(strings.ToLower(a.drv.URL()), "postwrite") {
			a.log.Warn("editor did not navigate away after publish")
		}
	}
	return nil
}
