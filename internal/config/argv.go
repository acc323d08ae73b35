package config

import (
	"fmt"
	"strings"
	"unicode"
)

// parseArgv splits a command line with single/double quotes and backslash
// escapes. A line starting with # is treated as unset.
func parseArgv(input string) ([]string, error) {
	input = strings.TrimSpace(input)
	if input == "" || strings.HasPrefix(input, "#") {
		return nil, nil
	}

	var (
		argv   []string
		word   strings.Builder
		inWord bool
		quote  rune
		escape bool
	)

	for _, r := range input {
		switch {
		case escape:
			escape = false
		case r == '\\':
			escape, inWord = true, true
			continue
		case quote != 0 && r == quote:
			quote = 0
			continue
		case quote != 0:
		case r == '\'' || r == '"':
			quote, inWord = r, true
			continue
		case unicode.IsSpace(r):
			if inWord {
				argv = append(argv, word.String())
				word.Reset()
				inWord = false
			}
			continue
		}
		word.WriteRune(r)
		inWord = true
	}

	switch {
	case escape:
		return nil, fmt.Errorf("unterminated escape sequence in command: %q", input)
	case quote != 0:
		return nil, fmt.Errorf("unterminated quote in command: %q", input)
	}
	if inWord {
		argv = append(argv, word.String())
	}
	return argv, nil
}

func mustParseArgv(input string) []string {
	argv, err := parseArgv(input)
	if err != nil {
		panic(err)
	}
	return argv
}
