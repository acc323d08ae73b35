package speaker

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// defaultRawSampleRate matches espeak-ng when it writes headerless PCM.
const defaultRawSampleRate = 22050

type playFunc func(ctx context.Context, samples []int16, sampleRate int) error

// Command synthesizes speech with an external program and plays the result.
// The program reads text on stdin and writes WAV or raw s16le mono PCM to stdout.
type Command struct {
	argv []string
	play playFunc
}

// NewCommand builds a speaker around argv, for example ["espeak-ng", "--stdout"].
func NewCommand(argv []string) *Command {
	return &Command{
		argv: append([]string(nil), argv...),
		play: func(ctx context.Context, samples []int16, rate int) error {
			return playPCM(ctx, samples, rate, "mockview question")
		},
	}
}

// Speak implements session.Speaker.
func (c *Command) Speak(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(c.argv) == 0 {
		return fmt.Errorf("%w: tts command is empty", ErrPlayback)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.argv[0], c.argv[1:]...)
	cmd.Stdin = strings.NewReader(text)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%w: run %s: %w: %s", ErrPlayback, c.argv[0], err, msg)
		}
		return fmt.Errorf("%w: run %s: %w", ErrPlayback, c.argv[0], err)
	}

	samples, rate, err := decodeSpeech(stdout.Bytes())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPlayback, err)
	}
	if len(samples) == 0 {
		return fmt.Errorf("%w: %s produced no audio", ErrPlayback, c.argv[0])
	}
	if err := c.play(ctx, samples, rate); err != nil {
		return fmt.Errorf("%w: %w", ErrPlayback, err)
	}
	return nil
}

// Binary returns the program name, or "" when unset.
func (c *Command) Binary() string {
	if len(c.argv) == 0 {
		return ""
	}
	return c.argv[0]
}
