// Package hotkey parses shortcut descriptors and keeps exactly one global
// shortcut registered with the OS.
package hotkey

import (
	"fmt"
	"strings"
)

// Modifier is a platform-neutral modifier key.
type Modifier string

const (
	ModControl Modifier = "Control"
	ModOption  Modifier = "Option"
	ModShift   Modifier = "Shift"
	ModCommand Modifier = "Command"
)

// modifierOrder fixes the canonical rendering order.
var modifierOrder = []Modifier{ModControl, ModOption, ModShift, ModCommand}

var modifierAliases = map[string]Modifier{
	"ctrl":    ModControl,
	"control": ModControl,
	"option":  ModOption,
	"opt":     ModOption,
	"alt":     ModOption,
	"shift":   ModShift,
	"cmd":     ModCommand,
	"command": ModCommand,
	"super":   ModCommand,
	"meta":    ModCommand,
}

var namedKeys = map[string]string{
	"space":     "Space",
	"return":    "Return",
	"enter":     "Return",
	"escape":    "Escape",
	"esc":       "Escape",
	"tab":       "Tab",
	"delete":    "Delete",
	"backspace": "Delete",
	"left":      "Left",
	"right":     "Right",
	"up":        "Up",
	"down":      "Down",
}

// Binding is a parsed shortcut: zero or more modifiers and one key.
type Binding struct {
	Modifiers []Modifier
	Key       string
}

// Parse reads descriptors such as "Option+Space" or "Control+Shift+D".
// "CommandOrControl" resolves to Command, matching the macOS reading.
func Parse(descriptor string) (Binding, error) {
	raw := strings.TrimSpace(descriptor)
	if raw == "" {
		return Binding{}, fmt.Errorf("empty hotkey")
	}

	parts := strings.Split(raw, "+")
	seen := make(map[Modifier]bool, len(parts))
	var key string

	for i, part := range parts {
		token := strings.TrimSpace(part)
		if token == "" {
			return Binding{}, fmt.Errorf("hotkey %q has an empty segment", raw)
		}
		lower := strings.ToLower(token)
		if lower == "commandorcontrol" || lower == "cmdorctrl" {
			lower = "command"
		}

		if mod, ok := modifierAliases[lower]; ok {
			if i == len(parts)-1 {
				return Binding{}, fmt.Errorf("hotkey %q has no key after modifiers", raw)
			}
			seen[mod] = true
			continue
		}

		if i != len(parts)-1 {
			return Binding{}, fmt.Errorf("hotkey %q: %q is not a modifier", raw, token)
		}
		normalized, err := normalizeKey(token)
		if err != nil {
			return Binding{}, fmt.Errorf("hotkey %q: %w", raw, err)
		}
		key = normalized
	}

	mods := make([]Modifier, 0, len(seen))
	for _, mod := range modifierOrder {
		if seen[mod] {
			mods = append(mods, mod)
		}
	}
	return Binding{Modifiers: mods, Key: key}, nil
}

// String renders the canonical descriptor, e.g. "Control+Shift+D".
func (b Binding) String() string {
	parts := make([]string, 0, len(b.Modifiers)+1)
	for _, mod := range b.Modifiers {
		parts = append(parts, string(mod))
	}
	parts = append(parts, b.Key)
	return strings.Join(parts, "+")
}

// Has reports whether mod is part of the binding.
func (b Binding) Has(mod Modifier) bool {
	for _, m := range b.Modifiers {
		if m == mod {
			return true
		}
	}
	return false
}

func normalizeKey(token string) (string, error) {
	lower := strings.ToLower(token)
	if named, ok := namedKeys[lower]; ok {
		return named, nil
	}
	if len(token) == 1 {
		c := token[0]
		switch {
		case c >= 'a' && c <= 'z':
			return strings.ToUpper(token), nil
		case c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			return token, nil
		}
	}
	if len(lower) >= 2 && lower[0] == 'f' {
		var n int
		if _, err := fmt.Sscanf(lower[1:], "%d", &n); err == nil && n >= 1 && n <= 12 && fmt.Sprintf("f%d", n) == lower {
			return fmt.Sprintf("F%d", n), nil
		}
	}
	return "", fmt.Errorf("unsupported key %q", token)
}
