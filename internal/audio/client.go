// Package audio handles Pulse device discovery, selection, and bounded PCM capture.
package audio

import (
	"fmt"

	"github.com/jfreymuth/pulse"
)

const (
	// AppName tags every Pulse client and stream opened by mockview.
	AppName = "mockview"
	// SampleRate is the capture and speech-to-text rate in Hz.
	SampleRate = 16000
	// BytesPerSecond is the PCM rate for 16-bit mono at SampleRate.
	BytesPerSecond = SampleRate * 2
)

// Connect opens a Pulse client with the given application icon.
func Connect(icon string) (*pulse.Client, error) {
	client, err := pulse.NewClient(
		pulse.ClientApplicationName(AppName),
		pulse.ClientApplicationIconName(icon),
	)
	if err != nil {
		return nil, fmt.Errorf("connect pulse server: %w", err)
	}
	return client, nil
}
