package desktop

import "github.com/atotto/clipboard"

// Clipboard holds text for pasting elsewhere.
type Clipboard interface {
	WriteAll(text string) error
}

// SystemClipboard is the host clipboard.
type SystemClipboard struct{}

// WriteAll copies text to the clipboard.
func (SystemClipboard) WriteAll(text string) error {
	if clipboard.Unsupported {
		return ErrUnavailable
	}
	return clipboard.WriteAll(text)
}
