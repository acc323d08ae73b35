package stt

import (
	"context"
	"sync"

	"github.com/rbright/mockview/internal/session"
)

// Lazy dials on first use and redials after a failed recognition.
type Lazy struct {
	cfg Config

	mu     sync.Mutex
	client *Client
}

// NewLazy returns a recognizer that defers dialing until the first capture.
func NewLazy(cfg Config) *Lazy {
	return &Lazy{cfg: cfg}
}

// Recognize implements session.Recognizer.
func (l *Lazy) Recognize(ctx context.Context, sample session.Sample) (string, error) {
	if len(sample.PCM) == 0 {
		return "", ErrEmptyAudio
	}

	client, err := l.connect(ctx)
	if err != nil {
		return "", err
	}

	text, err := client.Recognize(ctx, sample)
	if err != nil {
		l.reset(client)
		return "", err
	}
	return text, nil
}

// Health dials if needed and checks the transcriber health service.
func (l *Lazy) Health(ctx context.Context) error {
	client, err := l.connect(ctx)
	if err != nil {
		return err
	}
	return client.Health(ctx)
}

// Close releases the current connection, if any.
func (l *Lazy) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	err := l.client.Close()
	l.client = nil
	return err
}

func (l *Lazy) connect(ctx context.Context) (*Client, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.client != nil {
		return l.client, nil
	}
	client, err := Dial(ctx, l.cfg)
	if err != nil {
		return nil, err
	}
	l.client = client
	return client, nil
}

func (l *Lazy) reset(stale *Client) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.client == stale {
		_ = l.client.Close()
		l.client = nil
	}
}
