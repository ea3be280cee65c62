// Package dictation models voice input for the chat box. Speech recognition
// is an environment capability, not something this process provides, so the
// default recognizer reports unsupported and callers surface that at the
// moment dictation is attempted.
package dictation

import "errors"

var ErrUnsupported = errors.New("dictation: speech recognition is not supported in this environment")

// Recognizer captures speech and streams transcripts. Partial transcripts may
// arrive repeatedly with growing text; the final transcript arrives once.
type Recognizer interface {
	Supported() bool
	// Start begins capture and returns a cancel function. When the
	// recognizer is unsupported it returns ErrUnsupported and no capture
	// starts.
	Start(onPartial, onFinal func(text string)) (cancel func(), err error)
}

// Unsupported is the recognizer for environments without speech capture.
type Unsupported struct{}

func (Unsupported) Supported() bool { return false }

func (Unsupported) Start(_, _ func(text string)) (func(), error) {
	return nil, ErrUnsupported
}
