// Package speaker plays interview questions and short notification cues.
package speaker

import (
	"context"
	"errors"
)

// ErrPlayback wraps every text-to-speech or audio output failure.
var ErrPlayback = errors.New("question playback failed")

// Noop discards speech. It is used when tts.enable is false.
type Noop struct{}

// Speak implements session.Speaker.
func (Noop) Speak(context.Context, string) error { return nil }
