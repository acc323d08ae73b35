package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestCaptureVoiceSuccessSetsPendingText(t *testing.T) {
	ctrl := gomock.NewController(t)
	recognizer := NewMockRecognizer(ctrl)
	sample := Sample{PCM: []byte{1, 2, 3, 4}, SampleRate: 16000}
	recognizer.EXPECT().Recognize(gomock.Any(), sample).Return("  polymorphism means many forms ", nil)

	s := newSession(t, "Engineer", "Technical")
	next, result := s.CaptureVoice(context.Background(), recognizer, sample, time.Second)

	require.True(t, result.OK())
	require.Equal(t, "polymorphism means many forms", result.Text)
	require.Equal(t, "You said: polymorphism means many forms", result.Message())
	require.Equal(t, "polymorphism means many forms", next.PendingVoiceText())
	require.Equal(t, s.Index(), next.Index())
}

func TestCaptureVoiceFailureLeavesPendingTextUnchanged(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		err     error
		wantErr error
	}{
		{name: "recognizer error", err: errors.New("backend down"), wantErr: ErrTranscription},
		{name: "empty transcript", text: "   ", wantErr: ErrEmptyTranscript},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			recognizer := NewMockRecognizer(ctrl)
			recognizer.EXPECT().Recognize(gomock.Any(), gomock.Any()).Return(tc.text, tc.err)

			s := newSession(t, "Engineer", "Technical")
			s.pendingVoiceText = "earlier draft"

			next, result := s.CaptureVoice(context.Background(), recognizer, Sample{}, time.Second)
			require.False(t, result.OK())
			require.ErrorIs(t, result.Err, ErrTranscription)
			require.ErrorIs(t, result.Err, tc.wantErr)
			require.Equal(t, "Voice not recognized. Type your answer.", result.Message())
			require.Equal(t, s, next)
		})
	}
}

func TestCaptureVoiceTimeoutIsBounded(t *testing.T) {
	ctrl := gomock.NewController(t)
	recognizer := NewMockRecognizer(ctrl)
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	// Ignores ctx on purpose; CaptureVoice must still return on time.
	recognizer.EXPECT().Recognize(gomock.Any(), gomock.Any()).DoAndReturn(func(context.Context, Sample) (string, error) {
		<-release
		return "too late", nil
	})

	s := newSession(t, "Engineer", "Technical")
	started := time.Now()
	next, result := s.CaptureVoice(context.Background(), recognizer, Sample{}, 50*time.Millisecond)

	require.Less(t, time.Since(started), 2*time.Second)
	require.ErrorIs(t, result.Err, ErrTranscription)
	require.ErrorIs(t, result.Err, context.DeadlineExceeded)
	require.Empty(t, next.PendingVoiceText())
}

func TestCaptureVoiceNilRecognizer(t *testing.T) {
	s := newSession(t, "Engineer", "Technical")

	_, result := s.CaptureVoice(context.Background(), nil, Sample{}, 0)
	require.ErrorIs(t, result.Err, ErrTranscription)
	require.ErrorIs(t, result.Err, ErrRecognizerUnavailable)
}

func TestCaptureVoiceWhenCompleted(t *testing.T) {
	s := newSession(t, "Empty", "Technical")
	calls := 0
	recognizer := RecognizerFunc(func(context.Context, Sample) (string, error) {
		calls++
		return "text", nil
	})

	next, result := s.CaptureVoice(context.Background(), recognizer, Sample{}, time.Second)
	require.ErrorIs(t, result.Err, ErrCompleted)
	require.NotErrorIs(t, result.Err, ErrTranscription)
	require.Equal(t, "interview already completed", result.Message())
	require.Zero(t, calls)
	require.Equal(t, s, next)
}
