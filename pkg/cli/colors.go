/*
 * Copyright (c) 2026 Firefly Software Solutions Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

/*
Package cli provides the terminal output helpers shared by the LarkMQ
command line tools: ANSI color and style codes, status icons, and
formatted message printers (Success, Error, Warning, Info and friends).
Status messages go to stdout, error messages to stderr.

USAGE:
======

	cli.Success("Created topic %s", name)
	cli.ErrorWithHint("topic not found", "larkmq-admin topic list shows what exists")
	fmt.Printf("%s broker %d\n", cli.IconDot, id)

Colors are disabled automatically when NO_COLOR is set or stdout is not
a terminal, and can be toggled explicitly with SetColorsEnabled.
*/
package cli

import (
	"fmt"
	"os"
)

// ANSI color codes for terminal output.
const (
	Reset     = "\033[0m"
	Bold      = "\033[1m"
	Dim       = "\033[2m"
	Italic    = "\033[3m"
	Underline = "\033[4m"

	// Foreground colors
	Black   = "\033[30m"
	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	White   = "\033[37m"

	// Bright foreground colors
	BrightBlack  = "\033[90m"
	BrightRed    = "\033[91m"
	BrightGreen  = "\033[92m"
	BrightYellow = "\033[93m"
	BrightBlue   = "\033[94m"
	BrightCyan   = "\033[96m"
	BrightWhite  = "\033[97m"
)

// Icons for CLI output
const (
	IconSuccess = "✓"
	IconError   = "✗"
	IconWarning = "⚠"
	IconInfo    = "ℹ"
	IconArrow   = "→"
	IconDot     = "●"
)

var colorsEnabled = true

func init() {
	if os.Getenv("NO_COLOR") != "" {
		colorsEnabled = false
	}
	if fileInfo, _ := os.Stdout.Stat(); (fileInfo.Mode() & os.ModeCharDevice) == 0 {
		colorsEnabled = false
	}
}

// SetColorsEnabled enables or disables color output.
func SetColorsEnabled(enabled bool) {
	colorsEnabled = enabled
}

func colorize(color, text string) string {
	if !colorsEnabled {
		return text
	}
	return color + text + Reset
}

// Success prints a success message.
func Success(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(colorize(Green, IconSuccess+" "+msg))
}

// Error prints an error message.
func Error(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, colorize(Red, IconError+" "+msg))
}

// ErrorWithHint prints an error message with a helpful hint.
func ErrorWithHint(message string, hint string) {
	fmt.Fprintln(os.Stderr, colorize(Red, IconError+" "+message))
	if hint != "" {
		fmt.Fprintln(os.Stderr, colorize(Dim, "  "+IconArrow+" Hint: "+hint))
	}
}

// ErrorWithSuggestion prints an error with a suggested command.
func ErrorWithSuggestion(message string, suggestion string) {
	fmt.Fprintln(os.Stderr, colorize(Red, IconError+" "+message))
	if suggestion != "" {
		fmt.Fprintln(os.Stderr, colorize(Cyan, "  "+IconArrow+" Try: "+suggestion))
	}
}

// Warning prints a warning message.
func Warning(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(colorize(Yellow, IconWarning+" "+msg))
}

// Info prints an info message.
func Info(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(colorize(Cyan, IconInfo+" "+msg))
}

// Header prints a header/title.
func Header(text string) {
	fmt.Println(colorize(Bold+Cyan, text))
}

// KeyValue prints a key-value pair.
func KeyValue(key string, value interface{}) {
	fmt.Printf("  %s: %v\n", colorize(Dim, key), value)
}

// Separator prints a horizontal line.
func Separator() {
	fmt.Println(colorize(Dim, "────────────────────────────────────────"))
}
