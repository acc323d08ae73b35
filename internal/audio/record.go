package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/jfreymuth/pulse"
	pulseproto "github.com/jfreymuth/pulse/proto"
)

const (
	// PhraseLimit bounds one spoken answer.
	PhraseLimit = 15 * time.Second

	fragmentSizeBytes = 640 // 20ms @ 16kHz mono s16
)

// ErrNoAudio reports a recording that ended before any PCM arrived.
var ErrNoAudio = errors.New("no audio captured")

// Recording accumulates PCM from one Pulse source up to a fixed duration.
type Recording struct {
	device Device

	client *pulse.Client
	stream *pulse.RecordStream

	capBytes int
	full     chan struct{}

	mu      sync.Mutex
	pcm     []byte
	stopped bool
}

// StartRecording opens a 16kHz mono s16 record stream on device.
func StartRecording(device Device, limit time.Duration) (*Recording, error) {
	client, err := Connect("audio-input-microphone")
	if err != nil {
		return nil, err
	}

	source, err := client.SourceByID(device.ID)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("resolve source %q: %w", device.ID, err)
	}

	rec := newRecording(device, limit)
	rec.client = client

	writer := pulse.NewWriter(writerFunc(rec.onPCM), pulseproto.FormatInt16LE)
	stream, err := client.NewRecord(
		writer,
		pulse.RecordSource(source),
		pulse.RecordMono,
		pulse.RecordSampleRate(SampleRate),
		pulse.RecordBufferFragmentSize(fragmentSizeBytes),
		pulse.RecordMediaName("mockview answer"),
	)
	if err != nil {
		_ = rec.Stop()
		return nil, fmt.Errorf("create pulse record stream: %w", err)
	}

	rec.stream = stream
	stream.Start()
	return rec, nil
}

func newRecording(device Device, limit time.Duration) *Recording {
	if limit <= 0 {
		limit = PhraseLimit
	}
	return &Recording{
		device:   device,
		capBytes: int(limit * BytesPerSecond / time.Second),
		full:     make(chan struct{}),
	}
}

// Device returns the recorded source.
func (r *Recording) Device() Device {
	return r.device
}

// Full is closed once the duration cap has been captured.
func (r *Recording) Full() <-chan struct{} {
	return r.full
}

// PCM returns a copy of the captured little-endian samples.
func (r *Recording) PCM() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]byte(nil), r.pcm...)
}

// Stop halts the stream and releases the Pulse client. It is safe to call twice.
func (r *Recording) Stop() error {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return nil
	}
	r.stopped = true
	r.mu.Unlock()

	if r.stream != nil {
		r.stream.Stop()
		r.stream.Close()
	}
	if r.client != nil {
		r.client.Close()
	}
	return nil
}

func (r *Recording) onPCM(buffer []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stopped || len(r.pcm) >= r.capBytes {
		return 0, io.EOF
	}

	room := r.capBytes - len(r.pcm)
	r.pcm = append(r.pcm, buffer[:min(room, len(buffer))]...)
	if len(r.pcm) >= r.capBytes {
		close(r.full)
	}
	return len(buffer), nil
}

// Record captures from device until limit elapses or ctx ends and returns the PCM.
func Record(ctx context.Context, device Device, limit time.Duration) ([]byte, error) {
	if limit <= 0 {
		limit = PhraseLimit
	}
	rec, err := StartRecording(device, limit)
	if err != nil {
		return nil, err
	}
	return waitRecording(ctx, rec, limit)
}

func waitRecording(ctx context.Context, rec *Recording, limit time.Duration) ([]byte, error) {
	timer := time.NewTimer(limit)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		_ = rec.Stop()
		return nil, fmt.Errorf("record %q: %w", rec.device.ID, ctx.Err())
	case <-timer.C:
	case <-rec.Full():
	}

	_ = rec.Stop()
	pcm := rec.PCM()
	if len(pcm) == 0 {
		return nil, ErrNoAudio
	}
	return pcm, nil
}

// writerFunc adapts a function to io.Writer for pulse.NewWriter.
type writerFunc func([]byte) (int, error)

func (f writerFunc) Write(b []byte) (int, error) {
	return f(b)
}
