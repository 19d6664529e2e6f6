package browser

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"

	"github.com/entrhq/nblog/pkg/config"
)

// Browser fingerprint used for every session. The target site profiles
// automated clients, so sessions present a fixed desktop viewport, a
// realistic user agent, and the site's locale.
const (
	viewportWidth  = 1920
	viewportHeight = 1080
	userAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
	pageLocale     = "ko-KR"
)

// launchArgs disable the browser's automation-detection signals.
var launchArgs = []string{
	"--disable-blink-features=AutomationControlled",
	"--no-sandbox",
	"--disable-dev-shm-usage",
	"--disable-gpu",
	"--disable-extensions",
	"--lang=" + pageLocale,
}

// Launcher owns the Playwright runtime and opens browser sessions. One
// launcher serves the whole batch; sessions are opened and closed per
// account group.
type Launcher struct {
	pw        *playwright.Playwright
	clipboard Clipboard
	cfg       config.Config
	log       *zap.Logger
}

// NewLauncher installs and starts the Playwright runtime. The clipboard
// capability is injected here and threaded into every session's login flow.
func NewLauncher(cfg config.Config, clip Clipboard, log *zap.Logger) (*Launcher, error) {
	opts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}
	if err := playwright.Install(opts); err != nil {
		return nil, fmt.Errorf("%w: install: %v", ErrSessionLaunch, err)
	}
	pw, err := playwright.Run(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: start: %v", ErrSessionLaunch, err)
	}
	return &Launcher{pw: pw, clipboard: clip, cfg: cfg, log: log}, nil
}

// Open launches a configured browser instance and returns a live session.
func (l *Launcher) Open(headless bool) (*Session, error) {
	browser, err := l.pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(headless),
		Args:     launchArgs,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionLaunch, err)
	}

	context, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport:  &playwright.Size{Width: viewportWidth, Height: viewportHeight},
		UserAgent: playwright.String(userAgent),
		Locale:    playwright.String(pageLocale),
	})
	if err != nil {
		browser.Close()
		return nil, fmt.Errorf("%w: context: %v", ErrSessionLaunch, err)
	}

	page, err := context.NewPage()
	if err != nil {
		context.Close()
		browser.Close()
		return nil, fmt.Errorf("%w: page: %v", ErrSessionLaunch, err)
	}
	page.SetDefaultTimeout(30000)

	// The webdriver flag is the cheapest automation tell; clear it before
	// any target page scripts run.
	if err := page.AddInitScript(playwright.Script{
		Content: playwright.String("Object.defineProperty(navigator, 'webdriver', {get: () => undefined})"),
	}); err != nil {
		l.log.Debug("init script injection failed", zap.Error(err))
	}

	return &Session{
		browser:   browser,
		context:   context,
		page:      page,
		driver:    newPageDriver(page),
		clipboard: l.clipboard,
		cfg:       l.cfg,
		log:       l.log,
		headless:  headless,
		createdAt: time.Now(),
	}, nil
}

// Shutdown stops the Playwright runtime. Best-effort, like session close.
func (l *Launcher) Shutdown() {
	if err := l.pw.Stop(); err != nil {
		l.log.Warn("playwright shutdown failed", zap.Error(err))
	}
}

// Session wraps one live remote browser handle. A session is bound to
// exactly one account for its whole lifetime and must be closed exactly
// once, on every exit path.
type Session struct {
	browser   playwright.Browser
	context   playwright.BrowserContext
	page      playwright.Page
	driver    Driver
	clipboard Clipboard
	cfg       config.Config
	log       *zap.Logger
	headless  bool
	createdAt time.Time

	accountID     string
	authenticated bool
	closeOnce     sync.Once
}

// Driver exposes the protocol surface for the automaton.
func (s *Session) Driver() Driver {
	return s.driver
}

// AccountID returns the account this session is bound to, empty before login.
func (s *Session) AccountID() string {
	return s.accountID
}

// Authenticated reports whether the login sub-protocol has succeeded.
func (s *Session) Authenticated() bool {
	return s.authenticated
}

// Login runs the login sub-protocol and binds the session to the account.
// Returns ErrBotChallenge when a challenge surface blocks automation and
// ErrAuthenticationFailed when the manual-login wait times out.
func (s *Session) Login(accountID, secret string) error {
	if s.accountID != "" && s.accountID != accountID {
		return fmt.Errorf("session already bound to account %s", s.accountID)
	}
	s.accountID = accountID

	flow := &loginFlow{
		drv:       s.driver,
		clipboard: s.clipboard,
		headless:  s.headless,
		cfg:       s.cfg,
		log:       s.log.With(zap.String("account", accountID)),
		sleep:     time.Sleep,
	}
	if err := flow.run(accountID, secret); err != nil {
		return err
	}
	s.authenticated = true
	return nil
}

// IsHealthy is a best-effort liveness probe: can the current location still
// be read. Diagnostics only, never control flow.
func (s *Session) IsHealthy() bool {
	_, err := s.driver.Evaluate("window.location.href")
	return err == nil
}

// Close tears the session down. It never fails: teardown errors are logged
// and swallowed so they cannot mask a real failure being propagated.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		if err := s.page.Close(); err != nil {
			s.log.Debug("page close failed", zap.Error(err))
		}
		if err := s.context.Close(); err != nil {
			s.log.Debug("context close failed", zap.Error(err))
		}
		if err := s.browser.Close(); err != nil {
			s.log.Warn("browser close failed", zap.Error(err))
		}
		s.log.Info("session closed",
			zap.String("account", s.accountID),
			zap.Duration("lifetime", time.Since(s.createdAt)))
	})
}
