// Package config resolves, parses, validates, and defaults mockview configuration.
package config

import "time"

// Config is the fully materialized runtime configuration.
type Config struct {
	Server    ServerConfig
	Questions QuestionsConfig
	STT       STTConfig
	TTS       TTSConfig
	Audio     AudioConfig
	Sound     SoundConfig
}

// ServerConfig controls the HTTP listener and the session registry.
type ServerConfig struct {
	Addr                   string
	AllowedOrigins         []string
	SessionTTLMinutes      int
	CleanupIntervalMinutes int
}

// SessionTTL is the inactivity window after which a session is dropped.
func (c ServerConfig) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

// CleanupInterval is the janitor period.
func (c ServerConfig) CleanupInterval() time.Duration {
	return time.Duration(c.CleanupIntervalMinutes) * time.Minute
}

// QuestionsConfig selects an external question bank file.
type QuestionsConfig struct {
	File  string
	Watch bool
}

// STTConfig controls the speech-to-text gRPC client.
type STTConfig struct {
	GRPC                string
	LanguageCode        string
	TimeoutMS           int
	DialTimeoutMS       int
	CapitalizeSentences bool
}

// Timeout bounds one voice capture.
func (c STTConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// DialTimeout bounds connection readiness.
func (c STTConfig) DialTimeout() time.Duration {
	return time.Duration(c.DialTimeoutMS) * time.Millisecond
}

// TTSConfig controls question playback.
type TTSConfig struct {
	Enable    bool
	Command   CommandConfig
	TimeoutMS int
}

// Timeout bounds one playback.
func (c TTSConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// AudioConfig controls preferred and fallback input-source selection.
type AudioConfig struct {
	Input         string
	Fallback      string
	ServerCapture bool
}

// SoundConfig controls notification cues.
type SoundConfig struct {
	Enable bool
}

// CommandConfig stores a raw command string and its parsed argv form.
type CommandConfig struct {
	Raw  string
	Argv []string
}

// Warning is a non-fatal parse/validation message.
type Warning struct {
	Line    int
	Message string
}
