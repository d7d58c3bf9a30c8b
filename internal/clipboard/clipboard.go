// Package clipboard writes exported mod lists to the host clipboard.
package clipboard

import (
	"errors"

	"github.com/atotto/clipboard"

	"github.com/shinji-kodama/ferium-companion/internal/model"
)

// writeAll and unsupported are package-level variables to allow mocking
// in tests.
var (
	writeAll    = clipboard.WriteAll
	unsupported = func() bool { return clipboard.Unsupported }
)

// errUnsupported is returned when no clipboard backend exists on the
// host (for example a headless Linux box without xclip, xsel or
// wl-clipboard installed).
var errUnsupported = errors.New("no clipboard utility available on this system")

// Writer puts text on a clipboard.
type Writer interface {
	WriteText(text string) error
}

// System is the host clipboard.
type System struct{}

// WriteText copies text to the host clipboard. Failures are returned as
// *model.ClipboardError.
func (System) WriteText(text string) error {
	if unsupported() {
		return &model.ClipboardError{Err: errUnsupported}
	}
	if err := writeAll(text); err != nil {
		return &model.ClipboardError{Err: err}
	}
	return nil
}

// Ensure System implements Writer.
var _ Writer = System{}
