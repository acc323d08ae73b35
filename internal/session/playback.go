package session

import (
	"context"
	"log/slog"
	"time"
)

const playbackTimeout = 2 * time.Minute

// Speaker renders text as audio and blocks until playback ends.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}

// SpeakerFunc adapts a function to the Speaker interface.
type SpeakerFunc func(context.Context, string) error

func (f SpeakerFunc) Speak(ctx context.Context, text string) error {
	return f(ctx, text)
}

// PlayQuestion speaks the current question on a detached goroutine and returns
// immediately. Playback errors are logged and never reach the session.
func (s Session) PlayQuestion(speaker Speaker, logger *slog.Logger) error {
	question, err := s.CurrentQuestion()
	if err != nil {
		return err
	}
	if speaker == nil {
		return nil
	}

	sessionID := s.id
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), playbackTimeout)
		defer cancel()

		if err := speaker.Speak(ctx, question); err != nil && logger != nil {
			logger.Debug("question playback failed", "session", sessionID, "error", err.Error())
		}
	}()
	return nil
}
