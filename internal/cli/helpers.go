package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Flags shared by every authguard command, set by the root command
var (
	quiet       bool
	noColor     bool
	skipConfirm bool
	dataDir     string
)

// Destinations for command messages. Tests swap them for buffers.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// SetGlobalFlags records --quiet, --no-color, --yes and --data-dir
func SetGlobalFlags(q, nc, sc bool, dir string) {
	quiet = q
	noColor = nc
	skipConfirm = sc
	dataDir = dir
}

// Confirm asks a yes/no question on stdin. --yes answers it without asking.
func Confirm(prompt string, defaultYes bool) (bool, error) {
	return confirmFrom(os.Stdin, prompt, defaultYes)
}

func confirmFrom(in io.Reader, prompt string, defaultYes bool) (bool, error) {
	if skipConfirm {
		return true, nil
	}

	choices := "[y/N]"
	if defaultYes {
		choices = "[Y/n]"
	}
	fmt.Fprintf(stdout, "%s %s: ", prompt, choices)

	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "":
		return defaultYes, nil
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// messageKind pairs the symbol shown on a terminal with the label used
// under --no-color
type messageKind struct {
	symbol, label string
	toStderr      bool
	always        bool
}

var (
	successKind = messageKind{symbol: "✓", label: "OK:"}
	infoKind    = messageKind{symbol: "ℹ", label: "INFO:"}
	warningKind = messageKind{symbol: "⚠", label: "WARNING:", toStderr: true, always: true}
	errorKind   = messageKind{symbol: "✗", label: "ERROR:", toStderr: true, always: true}
)

func printMessage(kind messageKind, format string, args ...interface{}) {
	if quiet && !kind.always {
		return
	}
	w := stdout
	if kind.toStderr {
		w = stderr
	}
	prefix := kind.symbol
	if noColor {
		prefix = kind.label
	}
	fmt.Fprintf(w, "%s %s\n", prefix, fmt.Sprintf(format, args...))
}

// PrintSuccess reports a completed action. Silenced by --quiet.
func PrintSuccess(format string, args ...interface{}) {
	printMessage(successKind, format, args...)
}

// PrintInfo prints a hint or secondary detail. Silenced by --quiet.
func PrintInfo(format string, args ...interface{}) {
	printMessage(infoKind, format, args...)
}

// PrintWarning goes to stderr even under --quiet
func PrintWarning(format string, args ...interface{}) {
	printMessage(warningKind, format, args...)
}

// PrintError reports a failed command on stderr
func PrintError(format string, args ...interface{}) {
	printMessage(errorKind, format, args...)
}
