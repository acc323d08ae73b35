package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	warnings, err := Validate(Default())
	require.NoError(t, err)
	require.Empty(t, warnings)

	cfg := Default()
	require.Equal(t, 24*time.Hour, cfg.Server.SessionTTL())
	require.Equal(t, time.Hour, cfg.Server.CleanupInterval())
	require.Equal(t, 15*time.Second, cfg.STT.Timeout())
	require.Equal(t, 3*time.Second, cfg.STT.DialTimeout())
	require.Equal(t, 30*time.Second, cfg.TTS.Timeout())
	require.Equal(t, []string{"espeak-ng", "--stdout"}, cfg.TTS.Command.Argv)
}

func TestValidateRejectsInvalidFields(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "empty addr", mutate: func(c *Config) { c.Server.Addr = " " }, wantErr: "server.addr"},
		{name: "zero ttl", mutate: func(c *Config) { c.Server.SessionTTLMinutes = 0 }, wantErr: "session_ttl_minutes"},
		{name: "negative cleanup", mutate: func(c *Config) { c.Server.CleanupIntervalMinutes = -1 }, wantErr: "cleanup_interval_minutes"},
		{name: "watch without file", mutate: func(c *Config) { c.Questions.Watch = true }, wantErr: "questions.watch"},
		{name: "empty stt grpc", mutate: func(c *Config) { c.STT.GRPC = "" }, wantErr: "stt.grpc"},
		{name: "empty language", mutate: func(c *Config) { c.STT.LanguageCode = "" }, wantErr: "language_code"},
		{name: "zero stt timeout", mutate: func(c *Config) { c.STT.TimeoutMS = 0 }, wantErr: "stt.timeout_ms"},
		{name: "zero dial timeout", mutate: func(c *Config) { c.STT.DialTimeoutMS = 0 }, wantErr: "dial_timeout_ms"},
		{name: "zero tts timeout", mutate: func(c *Config) { c.TTS.TimeoutMS = 0 }, wantErr: "tts.timeout_ms"},
		{name: "empty tts command", mutate: func(c *Config) { c.TTS.Command = CommandConfig{} }, wantErr: "tts.command"},
		{name: "server capture without input", mutate: func(c *Config) {
			c.Audio.ServerCapture = true
			c.Audio.Input = ""
		}, wantErr: "audio.input"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)

			_, err := Validate(cfg)
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestValidateAllowsDisabledTTSWithoutCommand(t *testing.T) {
	cfg := Default()
	cfg.TTS.Enable = false
	cfg.TTS.Command = CommandConfig{}

	_, err := Validate(cfg)
	require.NoError(t, err)
}

func TestValidateWarnsOnEmptyOrigins(t *testing.T) {
	cfg := Default()
	cfg.Server.AllowedOrigins = nil

	warnings, err := Validate(cfg)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	require.Contains(t, warnings[0].Message, "allowed_origins")
}
