package tui

import (
	"errors"

	"github.com/atotto/clipboard"
)

// ErrNoClipboard is returned when no system clipboard utility is installed
var ErrNoClipboard = errors.New("no system clipboard available")

// SystemClipboard writes to the OS clipboard (pbcopy, xclip, wl-copy, ...)
type SystemClipboard struct{}

// WriteAll implements note.Clipboard
func (SystemClipboard) WriteAll(text string) error {
	if clipboard.Unsupported {
		return ErrNoClipboard
	}
	return clipboard.WriteAll(text)
}
