package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

type jsoncConfig struct {
	Server    *jsoncServer    `json:"server"`
	Questions *jsoncQuestions `json:"questions"`
	STT       *jsoncSTT       `json:"stt"`
	TTS       *jsoncTTS       `json:"tts"`
	Audio     *jsoncAudio     `json:"audio"`
	Sound     *jsoncSound     `json:"sound"`
}

type jsoncServer struct {
	Addr                   *string          `json:"addr"`
	AllowedOrigins         *jsoncStringList `json:"allowed_origins"`
	SessionTTLMinutes      *int             `json:"session_ttl_minutes"`
	CleanupIntervalMinutes *int             `json:"cleanup_interval_minutes"`
}

type jsoncQuestions struct {
	File  *string `json:"file"`
	Watch *bool   `json:"watch"`
}

type jsoncSTT struct {
	GRPC                *string `json:"grpc"`
	LanguageCode        *string `json:"language_code"`
	TimeoutMS           *int    `json:"timeout_ms"`
	DialTimeoutMS       *int    `json:"dial_timeout_ms"`
	CapitalizeSentences *bool   `json:"capitalize_sentences"`
}

type jsoncTTS struct {
	Enable    *bool   `json:"enable"`
	Command   *string `json:"command"`
	TimeoutMS *int    `json:"timeout_ms"`
}

type jsoncAudio struct {
	Input         *string `json:"input"`
	Fallback      *string `json:"fallback"`
	ServerCapture *bool   `json:"server_capture"`
}

type jsoncSound struct {
	Enable *bool `json:"enable"`
}

// jsoncStringList accepts a string array or a comma-delimited string.
type jsoncStringList []string

func (l *jsoncStringList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*l = trimNonEmpty(list)
		return nil
	}

	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*l = trimNonEmpty(strings.Split(single, ","))
		return nil
	}

	return fmt.Errorf("expected string array or comma-delimited string")
}

func trimNonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func parseJSONC(content string, base Config) (Config, []Warning, error) {
	normalized, err := normalizeJSONC(content)
	if err != nil {
		return Config{}, nil, err
	}

	decoder := json.NewDecoder(strings.NewReader(normalized))
	decoder.DisallowUnknownFields()

	var payload jsoncConfig
	if err := decoder.Decode(&payload); err != nil {
		return Config{}, nil, wrapJSONDecodeError(normalized, err)
	}
	if err := ensureSingleJSONValue(decoder); err != nil {
		return Config{}, nil, wrapJSONDecodeError(normalized, err)
	}

	cfg := base
	if err := payload.applyTo(&cfg); err != nil {
		return Config{}, nil, err
	}

	warnings, err := Validate(cfg)
	if err != nil {
		return Config{}, nil, err
	}
	return cfg, warnings, nil
}

func setIfPresent[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func (payload jsoncConfig) applyTo(cfg *Config) error {
	if s := payload.Server; s != nil {
		if s.Addr != nil {
			cfg.Server.Addr = strings.TrimSpace(*s.Addr)
		}
		if s.AllowedOrigins != nil {
			cfg.Server.AllowedOrigins = []string(*s.AllowedOrigins)
		}
		setIfPresent(&cfg.Server.SessionTTLMinutes, s.SessionTTLMinutes)
		setIfPresent(&cfg.Server.CleanupIntervalMinutes, s.CleanupIntervalMinutes)
	}

	if q := payload.Questions; q != nil {
		if q.File != nil {
			cfg.Questions.File = strings.TrimSpace(*q.File)
		}
		setIfPresent(&cfg.Questions.Watch, q.Watch)
	}

	if s := payload.STT; s != nil {
		if s.GRPC != nil {
			cfg.STT.GRPC = strings.TrimSpace(*s.GRPC)
		}
		if s.LanguageCode != nil {
			cfg.STT.LanguageCode = strings.TrimSpace(*s.LanguageCode)
		}
		setIfPresent(&cfg.STT.TimeoutMS, s.TimeoutMS)
		setIfPresent(&cfg.STT.DialTimeoutMS, s.DialTimeoutMS)
		setIfPresent(&cfg.STT.CapitalizeSentences, s.CapitalizeSentences)
	}

	if t := payload.TTS; t != nil {
		setIfPresent(&cfg.TTS.Enable, t.Enable)
		setIfPresent(&cfg.TTS.TimeoutMS, t.TimeoutMS)
		if t.Command != nil {
			argv, err := parseArgv(*t.Command)
			if err != nil {
				return fmt.Errorf("invalid tts.command: %w", err)
			}
			cfg.TTS.Command = CommandConfig{Raw: *t.Command, Argv: argv}
		}
	}

	if a := payload.Audio; a != nil {
		setIfPresent(&cfg.Audio.Input, a.Input)
		setIfPresent(&cfg.Audio.Fallback, a.Fallback)
		setIfPresent(&cfg.Audio.ServerCapture, a.ServerCapture)
	}

	if s := payload.Sound; s != nil {
		setIfPresent(&cfg.Sound.Enable, s.Enable)
	}

	return nil
}

// stringTracker follows JSON string literals byte by byte.
type stringTracker struct {
	inString bool
	escape   bool
}

// consume reports whether ch is part of a string literal, quotes included.
func (s *stringTracker) consume(ch byte) bool {
	if !s.inString {
		s.inString = ch == '"'
		return s.inString
	}
	switch {
	case s.escape:
		s.escape = false
	case ch == '\\':
		s.escape = true
	case ch == '"':
		s.inString = false
	}
	return true
}

// normalizeJSONC blanks comments and trailing commas with spaces so decode
// offsets still point into the original text.
func normalizeJSONC(content string) (string, error) {
	out := []byte(content)

	var strs stringTracker
	for i := 0; i < len(out); i++ {
		if strs.consume(out[i]) || out[i] != '/' || i+1 >= len(out) {
			continue
		}
		switch out[i+1] {
		case '/':
			for ; i < len(out) && out[i] != '\n' && out[i] != '\r'; i++ {
				out[i] = ' '
			}
		case '*':
			end := strings.Index(content[i+2:], "*/")
			if end < 0 {
				return "", errors.New("unterminated block comment in JSONC")
			}
			stop := i + 2 + end + 2
			for ; i < stop; i++ {
				if !isJSONWhitespace(out[i]) {
					out[i] = ' '
				}
			}
			i--
		}
	}

	strs = stringTracker{}
	for i := range out {
		if strs.consume(out[i]) || out[i] != ',' {
			continue
		}
		j := i + 1
		for j < len(out) && isJSONWhitespace(out[j]) {
			j++
		}
		if j < len(out) && (out[j] == '}' || out[j] == ']') {
			out[i] = ' '
		}
	}

	return string(out), nil
}

func isJSONWhitespace(ch byte) bool {
	switch ch {
	case ' ', '\n', '\r', '\t':
		return true
	default:
		return false
	}
}

func ensureSingleJSONValue(decoder *json.Decoder) error {
	var extra struct{}
	err := decoder.Decode(&extra)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err == nil {
		return fmt.Errorf("multiple JSON values are not allowed")
	}
	return err
}

func wrapJSONDecodeError(content string, err error) error {
	var offset int64
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxErr):
		offset = syntaxErr.Offset
	case errors.As(err, &typeErr):
		offset = typeErr.Offset
	default:
		return err
	}

	line, col := offsetToLineCol(content, offset)
	return fmt.Errorf("line %d column %d: %w", line, col, err)
}

func offsetToLineCol(content string, offset int64) (int, int) {
	if offset <= 0 {
		return 1, 1
	}

	prefix := content[:min(int(offset), len(content))-1]
	line := strings.Count(prefix, "\n") + 1
	col := len(prefix) - strings.LastIndexByte(prefix, '\n')
	return line, col
}
