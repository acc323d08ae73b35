package config

// Default returns the runtime configuration used when no file is present.
func Default() Config {
	tts := "espeak-ng --stdout"

	return Config{
		Server: ServerConfig{
			Addr:                   "127.0.0.1:8080",
			AllowedOrigins:         []string{"http://127.0.0.1:8080", "http://localhost:8080"},
			SessionTTLMinutes:      24 * 60,
			CleanupIntervalMinutes: 60,
		},
		STT: STTConfig{
			GRPC:                "127.0.0.1:50051",
			LanguageCode:        "en-US",
			TimeoutMS:           15000,
			DialTimeoutMS:       3000,
			CapitalizeSentences: true,
		},
		TTS: TTSConfig{
			Enable:    true,
			Command:   CommandConfig{Raw: tts, Argv: mustParseArgv(tts)},
			TimeoutMS: 30000,
		},
		Audio: AudioConfig{
			Input:    "default",
			Fallback: "default",
		},
		Sound: SoundConfig{Enable: true},
	}
}
