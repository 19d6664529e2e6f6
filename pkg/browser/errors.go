package browser

import "errors"

var (
	// ErrSessionLaunch reports that the remote browser could not be started.
	ErrSessionLaunch = errors.New("browser session launch failed")

	// ErrBotChallenge reports that login was redirected to a bot-challenge
	// or CAPTCHA surface. This needs human intervention and is not retried.
	ErrBotChallenge = errors.New("login blocked by bot challenge")

	// ErrAuthenticationFailed reports that login did not reach an
	// authenticated state within its timeout.
	ErrAuthenticationFailed = errors.New("login did not reach an authenticated state")
)
