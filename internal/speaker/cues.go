package speaker

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"
)

// Cue names a short synthesized notification tone.
type Cue int

const (
	CueAccepted Cue = iota + 1
	CueCompleted
)

const (
	cueSampleRate = 16000
	cueTimeout    = 4 * time.Second
)

type toneSpec struct {
	frequencyHz float64
	duration    time.Duration
	volume      float64
}

var (
	acceptedCuePCM = synthesizeCue([]toneSpec{
		{frequencyHz: 880, duration: 70 * time.Millisecond, volume: 0.18},
		{frequencyHz: 1175, duration: 70 * time.Millisecond, volume: 0.18},
	})
	completedCuePCM = synthesizeCue([]toneSpec{
		{frequencyHz: 740, duration: 65 * time.Millisecond, volume: 0.18},
		{frequencyHz: 988, duration: 90 * time.Millisecond, volume: 0.18},
		{frequencyHz: 1318, duration: 120 * time.Millisecond, volume: 0.18},
	})
)

func (c Cue) String() string {
	switch c {
	case CueAccepted:
		return "accepted"
	case CueCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

func (c Cue) samples() []int16 {
	switch c {
	case CueAccepted:
		return acceptedCuePCM
	case CueCompleted:
		return completedCuePCM
	default:
		return nil
	}
}

// Cues plays notification tones one at a time without blocking callers.
// A nil *Cues is silent.
type Cues struct {
	logger *slog.Logger
	play   playFunc

	mu sync.Mutex
}

// NewCues returns nil when disabled.
func NewCues(enabled bool, logger *slog.Logger) *Cues {
	if !enabled {
		return nil
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Cues{
		logger: logger,
		play: func(ctx context.Context, samples []int16, rate int) error {
			return playPCM(ctx, samples, rate, "mockview cue")
		},
	}
}

// Play starts cue in the background. Failures are logged at debug level.
func (c *Cues) Play(cue Cue) {
	if c == nil {
		return
	}
	samples := cue.samples()
	if len(samples) == 0 {
		return
	}

	go func() {
		c.mu.Lock()
		defer c.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), cueTimeout)
		defer cancel()
		if err := c.play(ctx, samples, cueSampleRate); err != nil {
			c.logger.Debug("cue playback failed", "cue", cue.String(), "error", err.Error())
		}
	}()
}

func synthesizeCue(parts []toneSpec) []int16 {
	if len(parts) == 0 {
		return nil
	}
	gap := make([]int16, samplesForDuration(22*time.Millisecond))

	var pcm []int16
	for i, part := range parts {
		if i > 0 {
			pcm = append(pcm, gap...)
		}
		pcm = append(pcm, synthesizeTone(part)...)
	}
	return pcm
}

func synthesizeTone(spec toneSpec) []int16 {
	n := samplesForDuration(spec.duration)
	if n <= 0 || spec.frequencyHz <= 0 || spec.volume <= 0 {
		return nil
	}

	ramp := min(max(n/10, 1), cueSampleRate/200) // at most 5ms

	pcm := make([]int16, n)
	for i := range n {
		envelope := min(1.0, float64(i)/float64(ramp), float64(n-i-1)/float64(ramp))
		t := float64(i) / cueSampleRate
		sample := math.Sin(2 * math.Pi * spec.frequencyHz * t)
		pcm[i] = int16(math.Round(sample * spec.volume * envelope * 32767))
	}
	return pcm
}

func samplesForDuration(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Round(d.Seconds() * cueSampleRate))
}
