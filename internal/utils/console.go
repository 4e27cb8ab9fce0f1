package utils

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// DebugMode controls whether PrintDebug output is visible.
var DebugMode = false

// QuietMode controls whether verbose messages are suppressed (errors/warnings still shown)
var QuietMode = false

// Stdout and Stderr are where the printers write; tests swap them out.
var (
	Stdout io.Writer = os.Stdout
	Stderr io.Writer = os.Stderr
)

// projectPrefix is the standard tag for all logs.
const projectPrefix = "[HPM]"

// ---------------------------------------------------------
// 1. Private Color Definitions
//    (We hide these so we don't use raw colors in logic)
// ---------------------------------------------------------

var (
	red      = color.New(color.FgRed).SprintFunc()
	green    = color.New(color.FgGreen).SprintFunc()
	yellow   = color.New(color.FgYellow).SprintFunc()
	blueBold = color.New(color.FgBlue, color.Bold).SprintFunc()
	magenta  = color.New(color.FgMagenta).SprintFunc()
	cyan     = color.New(color.FgCyan).SprintFunc()
	gray     = color.New(color.FgWhite).SprintFunc() // FgWhite = Gray in ANSI
	bold     = color.New(color.Bold).SprintFunc()
)

// ---------------------------------------------------------
// 2. Semantic Styles
// ---------------------------------------------------------

// StyleError formats critical failure messages (Red).
func StyleError(msg string) string { return red(msg) }

// StyleSuccess formats success messages (Green).
func StyleSuccess(msg string) string { return green(msg) }

// StyleWarning formats non-critical warnings (Yellow).
func StyleWarning(msg string) string { return yellow(msg) }

// StyleHint formats helpful tips or suggestions (Cyan).
func StyleHint(msg string) string { return cyan(msg) }

// StyleNote formats neutral notes (Magenta).
func StyleNote(msg string) string { return magenta(msg) }

// StyleInfo formats status labels or source names (Magenta).
func StyleInfo(msg string) string { return magenta(msg) }

// StyleDebug formats low-level technical info (Gray).
func StyleDebug(msg string) string { return gray(msg) }

// StyleCommand formats shell commands or flags (Gray).
func StyleCommand(cmd string) string { return gray(cmd) }

// StyleTitle formats section headings.
func StyleTitle(title string) string { return bold(cyan(title)) }

// StyleNumber formats counts and core numbers (Magenta).
func StyleNumber(num interface{}) string {
	return magenta(fmt.Sprintf("%v", num))
}

// StylePath formats file paths (Bold Blue).
func StylePath(path string) string { return blueBold(path) }

// StyleName formats host names, variables and keys (Yellow).
func StyleName(name string) string { return yellow(name) }

// ---------------------------------------------------------
// 3. Log Printers
// ---------------------------------------------------------

// PrintMessage prints a standard info message.
// Output: [HPM] Message...
func PrintMessage(format string, a ...interface{}) {
	if QuietMode {
		return
	}
	fmt.Fprintf(Stdout, "%s %s\n", projectPrefix, fmt.Sprintf(format, a...))
}

// PrintSuccess prints a success message with a Green tag.
// Output: [HPM][PASS] Operation complete.
func PrintSuccess(format string, a ...interface{}) {
	if QuietMode {
		return
	}
	fmt.Fprintf(Stdout, "%s%s %s\n", projectPrefix, StyleSuccess("[PASS]"), fmt.Sprintf(format, a...))
}

// PrintError prints an error message with a Red tag to Stderr.
// Output: [HPM][ERR]  Something failed.
func PrintError(format string, a ...interface{}) {
	fmt.Fprintf(Stderr, "%s%s %s\n", projectPrefix, StyleError("[ERR] "), fmt.Sprintf(format, a...))
}

// PrintWarning prints a warning with a Yellow tag to Stderr.
// Output: [HPM][WARN] Host not reachable.
func PrintWarning(format string, a ...interface{}) {
	fmt.Fprintf(Stderr, "%s%s %s\n", projectPrefix, StyleWarning("[WARN]"), fmt.Sprintf(format, a...))
}

// PrintHint prints a helpful hint with a Cyan tag.
// Output: [HPM][HINT] Try running with --no-probe.
func PrintHint(format string, a ...interface{}) {
	if QuietMode {
		return
	}
	fmt.Fprintf(Stdout, "%s%s %s\n", projectPrefix, StyleHint("[HINT]"), fmt.Sprintf(format, a...))
}

// PrintNote prints a note with a Magenta tag.
// Output: [HPM][NOTE] Using local host.
func PrintNote(format string, a ...interface{}) {
	if QuietMode {
		return
	}
	fmt.Fprintf(Stdout, "%s%s %s\n", projectPrefix, StyleNote("[NOTE]"), fmt.Sprintf(format, a...))
}

// PrintDebug prints a debug message with a Gray tag (only if DebugMode is true).
// Output: [HPM][DBG]  Executing: ssh node1 /bin/true
func PrintDebug(format string, a ...interface{}) {
	if DebugMode {
		fmt.Fprintf(Stderr, "%s%s %s\n", projectPrefix, StyleDebug("[DBG] "), fmt.Sprintf(format, a...))
	}
}

// ---------------------------------------------------------
// 4. Terminal Detection
// ---------------------------------------------------------

// IsInteractiveShell checks if stdout is connected to a TTY (interactive terminal).
func IsInteractiveShell() bool {
	fileInfo, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}
