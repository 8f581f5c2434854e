package main

import (
	"fmt"
	"os"
	"strings"
)

// toggle is the value of the tri-state --ui and --color flags.
type toggle string

const (
	toggleAuto toggle = "auto"
	toggleOn   toggle = "on"
	toggleOff  toggle = "off"
)

func readToggle(flag, value string) (toggle, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return toggleAuto, nil
	case "on", "always", "true":
		return toggleOn, nil
	case "off", "never", "false":
		return toggleOff, nil
	default:
		return "", fmt.Errorf("invalid %s value %q (expected auto|on|off)", flag, value)
	}
}

// enabled resolves auto against whether the output is a terminal.
func (t toggle) enabled(tty bool) bool {
	switch t {
	case toggleOn:
		return true
	case toggleOff:
		return false
	default:
		return tty
	}
}

func shouldUseTUI(mode toggle) bool {
	return mode.enabled(isTerminal(os.Stdout))
}
