// Package doctor runs readiness diagnostics for config, questions, speech, and audio.
package doctor

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/rbright/mockview/internal/audio"
	"github.com/rbright/mockview/internal/config"
	"github.com/rbright/mockview/internal/questionbank"
	"github.com/rbright/mockview/internal/stt"
)

const probeTimeout = 2 * time.Second

// Check is one doctor assertion result.
type Check struct {
	Name    string
	Pass    bool
	Message string
}

// Report is the full doctor output contract.
type Report struct {
	Checks []Check
}

// OK returns true when all checks pass.
func (r Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Pass {
			return false
		}
	}
	return true
}

// String renders the report as user-facing text output.
func (r Report) String() string {
	var b strings.Builder
	for _, check := range r.Checks {
		status := "OK"
		if !check.Pass {
			status = "FAIL"
		}
		fmt.Fprintf(&b, "[%s] %s: %s\n", status, check.Name, check.Message)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Run executes every check for a loaded config.
func Run(ctx context.Context, loaded config.Loaded) Report {
	cfg := loaded.Config
	checks := []Check{checkConfig(loaded), checkQuestions(cfg.Questions)}

	if cfg.TTS.Enable {
		checks = append(checks, checkCommand(cfg.TTS.Command.Argv, "tts.command"))
	} else {
		checks = append(checks, Check{Name: "tts.command", Pass: true, Message: "playback disabled"})
	}

	checks = append(checks, checkSTTHealth(ctx, cfg.STT))

	if cfg.Audio.ServerCapture {
		checks = append(checks, checkAudioSelection(ctx, cfg.Audio))
	}
	return Report{Checks: checks}
}

func checkConfig(loaded config.Loaded) Check {
	if !loaded.Exists {
		return Check{Name: "config", Pass: true, Message: fmt.Sprintf("%q not found; using defaults", loaded.Path)}
	}
	return Check{Name: "config", Pass: true, Message: fmt.Sprintf("loaded %q", loaded.Path)}
}

// checkQuestions loads the configured bank, or reports the built-in one.
func checkQuestions(cfg config.QuestionsConfig) Check {
	bank := questionbank.Default()
	source := "built-in"
	if path := strings.TrimSpace(cfg.File); path != "" {
		loaded, err := questionbank.Load(path)
		if err != nil {
			return Check{Name: "questions", Pass: false, Message: err.Error()}
		}
		bank, source = loaded, path
	}
	return Check{
		Name: "questions",
		Pass: true,
		Message: fmt.Sprintf("%s bank: %d roles, %d interview types, %d questions",
			source, len(bank.Roles()), len(bank.Types()), bank.Total()),
	}
}

// checkCommand validates that argv contains a runnable command.
func checkCommand(argv []string, name string) Check {
	if len(argv) == 0 {
		return Check{Name: name, Pass: false, Message: "command is empty"}
	}
	path, err := exec.LookPath(argv[0])
	if err != nil {
		return Check{Name: name, Pass: false, Message: fmt.Sprintf("binary not found in PATH: %s", argv[0])}
	}
	return Check{Name: name, Pass: true, Message: fmt.Sprintf("found at %s", path)}
}

// checkSTTHealth dials the transcriber and queries the gRPC health service.
func checkSTTHealth(ctx context.Context, cfg config.STTConfig) Check {
	const name = "stt.health"
	endpoint := strings.TrimSpace(cfg.GRPC)
	if endpoint == "" {
		return Check{Name: name, Pass: false, Message: "stt.grpc is empty"}
	}

	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	client, err := stt.Dial(ctx, stt.Config{
		Endpoint:     endpoint,
		LanguageCode: cfg.LanguageCode,
		DialTimeout:  probeTimeout,
	})
	if err != nil {
		return Check{Name: name, Pass: false, Message: err.Error()}
	}
	defer client.Close()

	if err := client.Health(ctx); err != nil {
		return Check{Name: name, Pass: false, Message: err.Error()}
	}
	return Check{Name: name, Pass: true, Message: fmt.Sprintf("serving at %s", endpoint)}
}

// checkAudioSelection runs live device selection to surface fallback issues.
func checkAudioSelection(ctx context.Context, cfg config.AudioConfig) Check {
	selection, err := audio.SelectDevice(ctx, cfg.Input, cfg.Fallback)
	if err != nil {
		return Check{Name: "audio.device", Pass: false, Message: err.Error()}
	}
	message := fmt.Sprintf("selected %q", selection.Device.ID)
	if selection.Warning != "" {
		message = message + " (" + selection.Warning + ")"
	}
	return Check{Name: "audio.device", Pass: true, Message: message}
}
