package editor

import "errors"

var (
	// ErrLocatorNotFound indicates that none of a step's candidate locators
	// resolved to a visible element.
	ErrLocatorNotFound = errors.New("no candidate locator matched")

	// ErrStepFailed indicates a required automaton step could not complete.
	ErrStepFailed = errors.New("automation step failed")

	// ErrVerificationFailed indicates the published post could not be found
	// on the blog after a confirmed publish click.
	ErrVerificationFailed = errors.New("published post not found")
)
