package browser

import "github.com/atotto/clipboard"

// Clipboard is the optional input-simulation capability used by the
// clipboard-paste login strategy. It is injected at launcher construction;
// callers branch on Available rather than probing global state.
type Clipboard interface {
	Available() bool
	Write(text string) error
}

// SystemClipboard returns the OS clipboard capability. On platforms without
// clipboard support it reports unavailable and the login flow falls back to
// the direct strategy.
func SystemClipboard() Clipboard {
	return systemClipboard{}
}

type systemClipboard struct{}

func (systemClipboard) Available() bool {
	return !clipboard.Unsupported
}

func (systemClipboard) Write(text string) error {
	return clipboard.WriteAll(text)
}

// NoClipboard returns the unavailable variant of the capability.
func NoClipboard() Clipboard {
	return noClipboard{}
}

type noClipboard struct{}

func (noClipboard) Available() bool    { return false }
func (noClipboard) Write(string) error { return nil }
