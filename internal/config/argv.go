package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// ParseCommand splits a shell-style command line into argv. Single quotes
// are literal, double quotes honor \" and \\, and a leading ~/ on the
// program is expanded to the user's home directory. Blank and #-prefixed
// lines yield an empty command.
func ParseCommand(raw string) (CommandConfig, error) {
	argv, err := splitCommand(raw)
	if err != nil {
		return CommandConfig{}, err
	}
	if len(argv) > 0 {
		argv[0] = expandHome(argv[0])
	}
	return CommandConfig{Raw: raw, Argv: argv}, nil
}

func mustCommand(raw string) CommandConfig {
	cmd, err := ParseCommand(raw)
	if err != nil {
		panic(err)
	}
	return cmd
}

type splitState int

const (
	stateBare splitState = iota
	stateSingle
	stateDouble
)

func splitCommand(input string) ([]string, error) {
	input = strings.TrimSpace(input)
	if input == "" || strings.HasPrefix(input, "#") {
		return nil, nil
	}

	var (
		argv    []string
		word    strings.Builder
		inWord  bool
		state   = stateBare
		escaped bool
	)

	for _, r := range input {
		if escaped {
			if state == stateDouble && r != '"' && r != '\\' {
				word.WriteRune('\\')
			}
			word.WriteRune(r)
			escaped = false
			continue
		}

		switch state {
		case stateSingle:
			if r == '\'' {
				state = stateBare
				continue
			}
			word.WriteRune(r)
		case stateDouble:
			switch r {
			case '"':
				state = stateBare
			case '\\':
				escaped = true
			default:
				word.WriteRune(r)
			}
		default:
			switch {
			case r == '\\':
				escaped, inWord = true, true
			case r == '\'':
				state, inWord = stateSingle, true
			case r == '"':
				state, inWord = stateDouble, true
			case unicode.IsSpace(r):
				if inWord {
					argv = append(argv, word.String())
					word.Reset()
					inWord = false
				}
			default:
				word.WriteRune(r)
				inWord = true
			}
		}
	}

	if escaped {
		return nil, fmt.Errorf("unterminated escape sequence in command: %q", input)
	}
	if state != stateBare {
		return nil, fmt.Errorf("unterminated quote in command: %q", input)
	}
	if inWord {
		argv = append(argv, word.String())
	}
	return argv, nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
