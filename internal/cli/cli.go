// Package cli parses alphavoice command-line arguments.
package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type Command string

const (
	CommandRun     Command = "run"
	CommandToggle  Command = "toggle"
	CommandCancel  Command = "cancel"
	CommandStatus  Command = "status"
	CommandStats   Command = "stats"
	CommandSet     Command = "set"
	CommandSubmit  Command = "submit"
	CommandDevices Command = "devices"
	CommandDoctor  Command = "doctor"
	CommandVersion Command = "version"
	CommandHelp    Command = "help"
)

var validCommands = map[Command]struct{}{
	CommandRun:     {},
	CommandToggle:  {},
	CommandCancel:  {},
	CommandStatus:  {},
	CommandStats:   {},
	CommandSet:     {},
	CommandSubmit:  {},
	CommandDevices: {},
	CommandDoctor:  {},
	CommandVersion: {},
	CommandHelp:    {},
}

// SetFlags are the settings changes requested by `set`; nil means unchanged.
type SetFlags struct {
	APIKey        *string
	Provider      *string
	Hotkey        *string
	ShowIndicator *bool
}

// Empty reports whether no setting was named.
func (s SetFlags) Empty() bool {
	return s.APIKey == nil && s.Provider == nil && s.Hotkey == nil && s.ShowIndicator == nil
}

type Parsed struct {
	Command    Command
	ConfigPath string
	ShowHelp   bool
	Set        SetFlags
	AudioPath  string
}

func Parse(args []string) (Parsed, error) {
	parsed := Parsed{Command: CommandHelp, ShowHelp: true}

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch arg {
		case "-h", "--help":
			parsed.ShowHelp = true
			parsed.Command = CommandHelp
		case "--version":
			parsed.ShowHelp = false
			parsed.Command = CommandVersion
		case "--config":
			i++
			if i >= len(args) {
				return Parsed{}, errors.New("--config requires a path")
			}
			parsed.ConfigPath = args[i]
		default:
			if strings.HasPrefix(arg, "-") {
				return Parsed{}, fmt.Errorf("unknown flag: %s", arg)
			}

			cmd := Command(arg)
			if _, ok := validCommands[cmd]; !ok {
				return Parsed{}, fmt.Errorf("unknown command: %s", arg)
			}

			parsed.Command = cmd
			parsed.ShowHelp = cmd == CommandHelp
			rest := args[i+1:]
			switch cmd {
			case CommandSet:
				set, err := parseSetFlags(rest)
				if err != nil {
					return Parsed{}, err
				}
				parsed.Set = set
			case CommandSubmit:
				if len(rest) != 1 || strings.TrimSpace(rest[0]) == "" {
					return Parsed{}, errors.New("submit requires exactly one audio file path")
				}
				parsed.AudioPath = rest[0]
			default:
				if len(rest) > 0 {
					return Parsed{}, fmt.Errorf("unexpected arguments after command %q", arg)
				}
			}
			return parsed, nil
		}
	}

	return parsed, nil
}

func parseSetFlags(args []string) (SetFlags, error) {
	var set SetFlags
	for i := 0; i < len(args); i++ {
		name, value, hasValue := strings.Cut(args[i], "=")
		switch name {
		case "--api-key", "--provider", "--hotkey", "--indicator":
		default:
			return SetFlags{}, fmt.Errorf("unknown set flag: %s", args[i])
		}
		if !hasValue {
			i++
			if i >= len(args) {
				return SetFlags{}, fmt.Errorf("%s requires a value", name)
			}
			value = args[i]
		}

		switch name {
		case "--api-key":
			set.APIKey = &value
		case "--provider":
			set.Provider = &value
		case "--hotkey":
			set.Hotkey = &value
		case "--indicator":
			show, err := parseSwitch(value)
			if err != nil {
				return SetFlags{}, fmt.Errorf("--indicator: %w", err)
			}
			set.ShowIndicator = &show
		}
	}
	if set.Empty() {
		return SetFlags{}, errors.New("set requires at least one of --api-key, --provider, --hotkey, --indicator")
	}
	return set, nil
}

func parseSwitch(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "on", "yes":
		return true, nil
	case "off", "no":
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("expected on|off, got %q", raw)
	}
	return v, nil
}

func HelpText(binaryName string) string {
	return fmt.Sprintf(`Usage:
  %[1]s [--config PATH] <command> [args]

Commands:
  run       Start the menu-bar owner (hotkey, tray, control socket)
  toggle    Start recording, or stop and transcribe when already recording
  cancel    Cancel the active recording and discard it
  status    Print current state
  stats     Print the running word count
  set       Update settings: --api-key KEY --provider openai|groq
            --hotkey Option+Space --indicator on|off
  submit    Transcribe an existing audio file: submit PATH
  devices   List available input devices
  doctor    Run configuration and environment checks
  version   Print version information
  help      Show this help

Flags:
  --config PATH   Config file path (default: $XDG_CONFIG_HOME/alphavoice/config.jsonc)
  -h, --help      Show help
  --version       Show version
`, binaryName)
}
