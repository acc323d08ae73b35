// Package app wires parsed commands to configuration, logging, and the runtime components.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rbright/mockview/internal/audio"
	"github.com/rbright/mockview/internal/cli"
	"github.com/rbright/mockview/internal/config"
	"github.com/rbright/mockview/internal/doctor"
	"github.com/rbright/mockview/internal/logging"
	"github.com/rbright/mockview/internal/metrics"
	"github.com/rbright/mockview/internal/questionbank"
	"github.com/rbright/mockview/internal/server"
	"github.com/rbright/mockview/internal/session"
	"github.com/rbright/mockview/internal/speaker"
	"github.com/rbright/mockview/internal/stt"
	"github.com/rbright/mockview/internal/version"
)

const binaryName = "mockview"

type Runner struct {
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	r := Runner{Stdout: stdout, Stderr: stderr}
	return r.Execute(ctx, args)
}

func (r Runner) Execute(ctx context.Context, args []string) int {
	parsed, err := cli.Parse(args)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n\n", err)
		fmt.Fprint(r.Stderr, cli.HelpText(binaryName))
		return 2
	}

	if parsed.ShowHelp {
		fmt.Fprint(r.Stdout, cli.HelpText(binaryName))
		return 0
	}

	if parsed.Command == cli.CommandVersion {
		fmt.Fprintln(r.Stdout, version.String())
		return 0
	}

	opts := logging.Options{}
	if parsed.Command == cli.CommandServe {
		opts.Console = r.Stderr
	}
	logRuntime, err := logging.New(opts)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: setup logging: %v\n", err)
		return 1
	}
	defer func() { _ = logRuntime.Close() }()

	logger := r.Logger
	if logger == nil {
		logger = logRuntime.Logger
	}

	cfgLoaded, err := config.Load(parsed.ConfigPath)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("load config failed", "error", err.Error())
		return 1
	}
	for _, w := range cfgLoaded.Warnings {
		msg := w.Message
		if w.Line > 0 {
			msg = fmt.Sprintf("line %d: %s", w.Line, w.Message)
		}
		fmt.Fprintf(r.Stderr, "warning: %s\n", msg)
		logger.Warn("config warning", "line", w.Line, "message", w.Message)
	}

	logger.Info("command start",
		"command", parsed.Command,
		"config", cfgLoaded.Path,
		"log", logRuntime.Path,
	)

	switch parsed.Command {
	case cli.CommandServe:
		return r.commandServe(ctx, cfgLoaded.Config, logger)
	case cli.CommandQuestions:
		return r.commandQuestions(cfgLoaded.Config)
	case cli.CommandDevices:
		return r.commandDevices(ctx)
	case cli.CommandDoctor:
		report := doctor.Run(ctx, cfgLoaded)
		fmt.Fprintln(r.Stdout, report.String())
		if report.OK() {
			return 0
		}
		return 1
	default:
		fmt.Fprintf(r.Stderr, "error: unsupported command %q\n", parsed.Command)
		return 2
	}
}

func (r Runner) commandServe(ctx context.Context, cfg config.Config, logger *slog.Logger) int {
	bank, err := loadBank(cfg.Questions)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("load question bank failed", "error", err.Error())
		return 1
	}

	recognizer := stt.NewLazy(stt.Config{
		Endpoint:            cfg.STT.GRPC,
		LanguageCode:        cfg.STT.LanguageCode,
		DialTimeout:         cfg.STT.DialTimeout(),
		CapitalizeSentences: cfg.STT.CapitalizeSentences,
	})
	defer func() { _ = recognizer.Close() }()

	voiceTimeout := cfg.STT.Timeout()
	var capture server.CaptureFunc
	if cfg.Audio.ServerCapture {
		capture = hostCapture(cfg.Audio, logger)
		voiceTimeout += audio.PhraseLimit
	}

	srv := server.New(server.Config{
		Addr:            cfg.Server.Addr,
		AllowedOrigins:  cfg.Server.AllowedOrigins,
		SessionTTL:      cfg.Server.SessionTTL(),
		CleanupInterval: cfg.Server.CleanupInterval(),
		VoiceTimeout:    voiceTimeout,
		Bank:            bank,
		Recognizer:      recognizer,
		Speaker:         newSpeaker(cfg.TTS),
		Cues:            speaker.NewCues(cfg.Sound.Enable, logger),
		Capture:         capture,
		Metrics:         metrics.NewMetrics(),
		Logger:          logger,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.ListenAndServe(gctx) })
	g.Go(func() error { return srv.RunJanitor(gctx) })
	if cfg.Questions.Watch {
		g.Go(func() error { return questionbank.Watch(gctx, cfg.Questions.File, logger, srv.SetBank) })
	}

	if err := g.Wait(); err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("serve failed", "error", err.Error())
		return 1
	}
	logger.Info("serve stopped")
	return 0
}

func (r Runner) commandQuestions(cfg config.Config) int {
	bank, err := loadBank(cfg.Questions)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	writeQuestionTable(r.Stdout, bank, terminalWidth(r.Stdout))
	return 0
}

func (r Runner) commandDevices(ctx context.Context) int {
	devices, err := audio.ListDevices(ctx)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if len(devices) == 0 {
		fmt.Fprintln(r.Stdout, "no audio devices found")
		return 1
	}

	for _, device := range devices {
		mark := " "
		if device.Default {
			mark = "*"
		}
		fmt.Fprintf(r.Stdout, "%s %s | %q | state=%s | available=%s | muted=%s\n",
			mark, device.ID, device.Description, device.State,
			yesNo(device.Available), yesNo(device.Muted))
	}
	return 0
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func loadBank(cfg config.QuestionsConfig) (*questionbank.Bank, error) {
	if path := strings.TrimSpace(cfg.File); path != "" {
		return questionbank.Load(path)
	}
	return questionbank.Default(), nil
}

func newSpeaker(cfg config.TTSConfig) session.Speaker {
	if !cfg.Enable {
		return speaker.Noop{}
	}
	return timedSpeaker{next: speaker.NewCommand(cfg.Command.Argv), timeout: cfg.Timeout()}
}

// timedSpeaker bounds each playback by tts.timeout_ms.
type timedSpeaker struct {
	next    session.Speaker
	timeout time.Duration
}

func (s timedSpeaker) Speak(ctx context.Context, text string) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return s.next.Speak(ctx, text)
}

// hostCapture records from the configured Pulse source for one phrase.
func hostCapture(cfg config.AudioConfig, logger *slog.Logger) server.CaptureFunc {
	return func(ctx context.Context) ([]byte, error) {
		selection, err := audio.SelectDevice(ctx, cfg.Input, cfg.Fallback)
		if err != nil {
			return nil, err
		}
		if selection.Warning != "" {
			logger.Warn("audio device fallback", "warning", selection.Warning)
		}
		return audio.Record(ctx, selection.Device, audio.PhraseLimit)
	}
}
