// Package terminal provides helpers for terminal-specific behavior.
package terminal

import (
	"fmt"
	"os"
)

// SetTitle sets the terminal window title so long-running deploys are easy
// to spot across windows.
func SetTitle(title string) {
	if title == "" {
		return
	}

	_, _ = fmt.Fprintf(os.Stdout, "\033]0;%s\007", title) //nolint:errcheck
}
