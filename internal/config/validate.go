package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate enforces config invariants and returns non-fatal warnings.
func Validate(cfg Config) ([]Warning, error) {
	var warnings []Warning

	if strings.TrimSpace(cfg.Server.Addr) == "" {
		return nil, errors.New("server.addr must not be empty")
	}
	if cfg.Server.SessionTTLMinutes <= 0 {
		return nil, errors.New("server.session_ttl_minutes must be > 0")
	}
	if cfg.Server.CleanupIntervalMinutes <= 0 {
		return nil, errors.New("server.cleanup_interval_minutes must be > 0")
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		warnings = append(warnings, Warning{Message: "server.allowed_origins is empty; cross-origin requests will be rejected"})
	}

	if cfg.Questions.Watch && strings.TrimSpace(cfg.Questions.File) == "" {
		return nil, errors.New("questions.watch requires questions.file")
	}

	if strings.TrimSpace(cfg.STT.GRPC) == "" {
		return nil, errors.New("stt.grpc must not be empty")
	}
	if strings.TrimSpace(cfg.STT.LanguageCode) == "" {
		return nil, errors.New("stt.language_code must not be empty")
	}
	if cfg.STT.TimeoutMS <= 0 {
		return nil, errors.New("stt.timeout_ms must be > 0")
	}
	if cfg.STT.DialTimeoutMS <= 0 {
		return nil, errors.New("stt.dial_timeout_ms must be > 0")
	}

	if cfg.TTS.TimeoutMS <= 0 {
		return nil, errors.New("tts.timeout_ms must be > 0")
	}
	if cfg.TTS.Enable && len(cfg.TTS.Command.Argv) == 0 {
		return nil, errors.New("tts.command must not be empty when tts.enable=true")
	}

	if cfg.Audio.ServerCapture && strings.TrimSpace(cfg.Audio.Input) == "" {
		return nil, fmt.Errorf("audio.input must not be empty when audio.server_capture=true")
	}

	return warnings, nil
}
