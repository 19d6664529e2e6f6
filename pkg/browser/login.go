package browser

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/entrhq/nblog/pkg/config"
)

const (
	loginURL = "https://nid.naver.com/nidlogin.login"

	// loginSurface marks the login page in the current location; leaving it
	// is the success signal.
	loginSurface = "nidlogin"
)

// Login page selectors, several markup generations deep. Tried in order.
var (
	idFieldCandidates = []string{
		"#id",
		`input[name="id"]`,
		`input[placeholder*="아이디"]`,
		`input[placeholder*="ID"]`,
	}
	pwFieldCandidates = []string{
		"#pw",
		`input[name="pw"]`,
		`input[type="password"]`,
	}
	submitCandidates = []Locator{
		{Kind: BySelector, Value: `#log\.login`},
		{Kind: ByClassSubstring, Value: "btn_login"},
		{Kind: BySelector, Value: `button[type="submit"]`},
		{Kind: ByClassSubstring, Value: "btn_global"},
	}
)

// loginOutcome classifies the post-submit location.
type loginOutcome int

const (
	loginPending loginOutcome = iota
	loginSucceeded
	loginChallenged
)

// loginFlow drives one login attempt against the login surface. The site's
// anti-automation defenses can non-deterministically demand interactive
// verification, so automated entry falls back to a bounded manual-login
// wait instead of failing fast.
type loginFlow struct {
	drv       Driver
	clipboard Clipboard
	headless  bool
	cfg       config.Config
	log       *zap.Logger
	sleep     func(time.Duration)
}

func (f *loginFlow) run(accountID, secret string) error {
	if err := f.drv.Navigate(loginURL); err != nil {
		return fmt.Errorf("%w: %v", ErrAuthenticationFailed, err)
	}
	f.sleep(2 * time.Second)

	// Clipboard paste looks less like automation than protocol-level field
	// population, but needs a visible window to receive the paste.
	entered := false
	if !f.headless && f.clipboard.Available() {
		entered = f.enterViaClipboard(accountID, secret)
	}
	if !entered {
		entered = f.enterDirect(accountID, secret)
	}
	if entered {
		f.submit()
		f.sleep(3 * time.Second)
	} else {
		f.log.Warn("credential entry failed, waiting for manual login")
	}

	switch f.classify() {
	case loginSucceeded:
		f.log.Info("login succeeded")
		return nil
	case loginChallenged:
		return ErrBotChallenge
	default:
		return f.waitForManualLogin()
	}
}

// enterDirect populates the credential fields through the remote protocol.
func (f *loginFlow) enterDirect(accountID, secret string) bool {
	if !f.fillFirst(idFieldCandidates, accountID) {
		f.log.Warn("login id field not found")
		return false
	}
	if !f.fillFirst(pwFieldCandidates, secret) {
		f.log.Warn("login password field not found")
		return false
	}
	return true
}

func (f *loginFlow) fillFirst(selectors []string, value string) bool {
	for _, sel := range selectors {
		if err := f.drv.Fill(sel, value); err == nil {
			return true
		}
	}
	return false
}

// enterViaClipboard types each credential by focusing the field and pasting
// from the system clipboard. The clipboard is cleared afterwards.
func (f *loginFlow) enterViaClipboard(accountID, secret string) bool {
	ok := f.pasteInto(idFieldCandidates, accountID) && f.pasteInto(pwFieldCandidates, secret)
	if err := f.clipboard.Write(""); err != nil {
		f.log.Debug("clipboard clear failed", zap.Error(err))
	}
	if !ok {
		f.log.Warn("clipboard credential entry failed, falling back to direct entry")
	}
	return ok
}

func (f *loginFlow) pasteInto(selectors []string, value string) bool {
	candidates := make([]Locator, len(selectors))
	for i, sel := range selectors {
		candidates[i] = Locator{Kind: BySelector, Value: sel}
	}
	match, found := ResolvePosition(f.drv, candidates, false)
	if !found {
		return false
	}
	if err := f.drv.ClickAt(match.X, match.Y); err != nil {
		return false
	}
	f.sleep(500 * time.Millisecond)
	if err := f.clipboard.Write(value); err != nil {
		return false
	}
	if err := f.drv.PressKey("Control+v"); err != nil {
		return false
	}
	f.sleep(500 * time.Millisecond)
	return true
}

func (f *loginFlow) submit() {
	if match, found := ResolvePosition(f.drv, submitCandidates, false); found {
		if err := f.drv.ClickAt(match.X, match.Y); err == nil {
			return
		}
	}
	// No submit control matched; the form accepts Enter.
	if err := f.drv.PressKey("Enter"); err != nil {
		f.log.Warn("login submit failed", zap.Error(err))
	}
}

func (f *loginFlow) classify() loginOutcome {
	location := strings.ToLower(f.drv.URL())
	if strings.Contains(location, "captcha") || strings.Contains(location, "protect") {
		return loginChallenged
	}
	if !strings.Contains(location, loginSurface) {
		return loginSucceeded
	}
	return loginPending
}

// waitForManualLogin polls the current location until the login surface is
// left or the timeout expires. Blocking the batch here is deliberate:
// failing fast would make the whole run unusable whenever the site demands
// interactive verification.
func (f *loginFlow) waitForManualLogin() error {
	f.log.Info("waiting for manual login",
		zap.Duration("timeout", f.cfg.LoginTimeout))

	polls := int(f.cfg.LoginTimeout / f.cfg.LoginPollInterval)
	for i := 0; i < polls; i++ {
		f.sleep(f.cfg.LoginPollInterval)
		switch f.classify() {
		case loginSucceeded:
			f.log.Info("manual login detected")
			return nil
		case loginChallenged:
			return ErrBotChallenge
		}
	}
	return fmt.Errorf("%w: manual login timed out after %s", ErrAuthenticationFailed, f.cfg.LoginTimeout)
}
