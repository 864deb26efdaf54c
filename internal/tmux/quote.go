package tmux

import (
	"fmt"
	"strings"
)

// shellQuote wraps a string in single quotes, escaping any single quotes
// inside.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "'\"'\"'") + "'"
}

// windowTarget renders a quoted session:index window target.
func windowTarget(sessionName string, index int) string {
	return shellQuote(fmt.Sprintf("%s:%d", sessionName, index))
}

// confArg renders the tmux config path for use in a shell command, keeping
// a leading ~/ expandable.
func confArg(path string) string {
	if strings.HasPrefix(path, "~/") {
		return "\"$HOME/" + strings.TrimPrefix(path, "~/") + "\""
	}
	return shellQuote(path)
}
