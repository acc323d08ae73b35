package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultVoiceTimeout bounds one voice capture round trip.
const DefaultVoiceTimeout = 15 * time.Second

var (
	// ErrTranscription wraps every voice capture failure.
	ErrTranscription = errors.New("voice not recognized")
	// ErrRecognizerUnavailable indicates no speech recognizer is wired.
	ErrRecognizerUnavailable = errors.New("speech recognizer not configured")
	// ErrEmptyTranscript indicates recognition finished without usable text.
	ErrEmptyTranscript = errors.New("no speech recognized")
)

// Sample is one captured utterance as 16-bit little-endian mono PCM.
type Sample struct {
	PCM        []byte
	SampleRate int
}

// Recognizer turns an audio sample into text.
//
//go:generate mockgen -source=voice.go -destination=mock_recognizer_test.go -package=session
type Recognizer interface {
	Recognize(ctx context.Context, sample Sample) (string, error)
}

// RecognizerFunc adapts a function to the Recognizer interface.
type RecognizerFunc func(context.Context, Sample) (string, error)

func (f RecognizerFunc) Recognize(ctx context.Context, sample Sample) (string, error) {
	return f(ctx, sample)
}

// UnavailableRecognizer fails every request; used when STT is not wired.
type UnavailableRecognizer struct{}

func (UnavailableRecognizer) Recognize(context.Context, Sample) (string, error) {
	return "", ErrRecognizerUnavailable
}

// VoiceResult is the outcome of CaptureVoice: text on success, Err otherwise.
type VoiceResult struct {
	Text string
	Err  error
}

// OK reports whether the capture produced text.
func (r VoiceResult) OK() bool {
	return r.Err == nil
}

// Message returns the user-facing line for the result.
func (r VoiceResult) Message() string {
	switch {
	case r.Err == nil:
		return "You said: " + r.Text
	case errors.Is(r.Err, ErrTranscription):
		return "Voice not recognized. Type your answer."
	default:
		return r.Err.Error()
	}
}

// CaptureVoice transcribes sample within timeout and stores the text as the
// pending answer draft. On failure the session is returned unchanged.
func (s Session) CaptureVoice(ctx context.Context, recognizer Recognizer, sample Sample, timeout time.Duration) (Session, VoiceResult) {
	if s.Completed() {
		return s, VoiceResult{Err: ErrCompleted}
	}
	if recognizer == nil {
		recognizer = UnavailableRecognizer{}
	}
	if timeout <= 0 {
		timeout = DefaultVoiceTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		text string
		err  error
	}
	done := make(chan outcome, 1)
	go func() {
		text, err := recognizer.Recognize(ctx, sample)
		done <- outcome{text: text, err: err}
	}()

	var out outcome
	select {
	case out = <-done:
	case <-ctx.Done():
		out.err = ctx.Err()
	}

	if out.err != nil {
		return s, VoiceResult{Err: fmt.Errorf("%w: %w", ErrTranscription, out.err)}
	}
	text := strings.TrimSpace(out.text)
	if text == "" {
		return s, VoiceResult{Err: fmt.Errorf("%w: %w", ErrTranscription, ErrEmptyTranscript)}
	}

	next := s
	next.pendingVoiceText = text
	return next, VoiceResult{Text: text}
}
