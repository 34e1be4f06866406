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
Package banner provides the startup banner display for LarkMQ.

OVERVIEW:
=========
Displays an ASCII art banner with version information when
the server or CLI starts. Uses ANSI escape codes for colors.

USAGE:
======

	banner.Print()           // Print to stdout
	banner.PrintTo(writer)   // Print to custom writer
	banner.PrintServerWithConfig(cfg)  // Print server banner with configuration

The banner text is embedded at compile time from banner.txt.
*/
package banner

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"

	"larkmq/internal/config"
)

//go:embed banner.txt
var bannerText string

// ANSI escape codes for terminal text formatting.
const (
	AnsiRed    = "\033[31m"
	AnsiGreen  = "\033[32m"
	AnsiYellow = "\033[33m"
	AnsiCyan   = "\033[36m"
	AnsiReset  = "\033[0m"
	AnsiBold   = "\033[1m"
	AnsiDim    = "\033[2m"
)

// Version information
const (
	Version   = "0.9.3"
	Copyright = "Copyright (c) 2026 Firefly Software Solutions Inc."
	License   = "Licensed under Apache License 2.0"
)

// GetBanner returns the raw ASCII banner text.
func GetBanner() string {
	return bannerText
}

// GetBannerLines returns the banner as individual lines.
func GetBannerLines() []string {
	return strings.Split(strings.TrimRight(bannerText, "\n"), "\n")
}

// Print displays the startup banner with version and copyright information.
func Print() {
	PrintTo(os.Stdout)
}

// PrintTo writes the banner to the specified writer.
func PrintTo(w io.Writer) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, AnsiCyan+AnsiBold)
	for _, line := range GetBannerLines() {
		fmt.Fprintln(w, "  "+line)
	}
	fmt.Fprintln(w, AnsiReset)
	fmt.Fprintln(w, AnsiGreen+AnsiBold+"  LarkMQ"+AnsiReset+" "+AnsiDim+"v"+Version+AnsiReset)
	fmt.Fprintln(w, AnsiDim+"  Cluster Topic Metadata Service"+AnsiReset)
	fmt.Fprintln(w)
	fmt.Fprintln(w, AnsiDim+"  "+Copyright+AnsiReset)
	fmt.Fprintln(w)
}

// PrintCompact prints a compact version of the banner.
func PrintCompact() {
	fmt.Println(AnsiCyan + AnsiBold + "LarkMQ" + AnsiReset + " v" + Version)
}

// PrintCLI prints the banner suitable for CLI startup.
func PrintCLI() {
	fmt.Println()
	fmt.Println(AnsiCyan + AnsiBold)
	for _, line := range GetBannerLines() {
		fmt.Println("  " + line)
	}
	fmt.Println(AnsiReset)
	fmt.Println(AnsiGreen + AnsiBold + "  LarkMQ CLI" + AnsiReset + " " + AnsiDim + "v" + Version + AnsiReset)
	fmt.Println()
}

// PrintServerWithConfig prints the server banner with the effective
// configuration.
func PrintServerWithConfig(cfg *config.Config) {
	PrintServerWithConfigTo(os.Stdout, cfg)
}

// PrintServerWithConfigTo writes the server banner with configuration to the
// specified writer.
func PrintServerWithConfigTo(w io.Writer, cfg *config.Config) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, AnsiCyan+AnsiBold)
	for _, line := range GetBannerLines() {
		fmt.Fprintln(w, "  "+line)
	}
	fmt.Fprintln(w, AnsiReset)
	fmt.Fprintln(w, AnsiGreen+AnsiBold+"  LarkMQ Server"+AnsiReset+" "+AnsiDim+"v"+Version+AnsiReset)
	fmt.Fprintln(w, AnsiDim+"  Cluster Topic Metadata Service"+AnsiReset)
	fmt.Fprintln(w)

	printConfigSource(w, cfg)
	printCompactConfig(w, cfg)

	fmt.Fprintln(w, AnsiDim+"  "+Copyright+AnsiReset)
	fmt.Fprintln(w)

	printLogSeparator(w)
}

// PrintLogSeparator prints a visual separator before logs start.
func PrintLogSeparator() {
	printLogSeparator(os.Stdout)
}

func printLogSeparator(w io.Writer) {
	const lineWidth = 78
	arrow := "v"
	text := " LOGS START HERE "
	padding := (lineWidth - len(text) - 4) / 2 // 4 for arrows on each side
	if padding < 0 {
		padding = 0
	}
	line := strings.Repeat("-", padding)
	fmt.Fprintf(w, "  %s%s %s%s%s %s%s%s\n",
		AnsiYellow, arrow+arrow+line,
		AnsiBold, text, AnsiReset+AnsiYellow,
		line+arrow+arrow, AnsiReset, "")
	fmt.Fprintln(w)
}

func printConfigSource(w io.Writer, cfg *config.Config) {
	fmt.Fprint(w, "  "+AnsiDim+"Config: "+AnsiReset)
	if cfg.ConfigFile != "" {
		fmt.Fprintln(w, AnsiYellow+cfg.ConfigFile+AnsiReset)
	} else {
		fmt.Fprintln(w, AnsiDim+"defaults + environment"+AnsiReset)
	}
	fmt.Fprintln(w)
}

func printCompactConfig(w io.Writer, cfg *config.Config) {
	const lineWidth = 78

	printSectionHeader(w, "Server", lineWidth)
	col1 := fmtKV("Listen", AnsiGreen+cfg.BindAddr+AnsiReset)
	col2 := fmtKV("Node", fmt.Sprintf("%d", cfg.NodeID))
	col3 := fmtKV("Log", cfg.LogLevel)
	printRow3(w, col1, col2, col3)
	if cfg.AdvertiseAddr != "" {
		printRow3(w, fmtKV("Advertise", cfg.AdvertiseAddr), "", "")
	}

	fmt.Fprintln(w)

	printSectionHeader(w, "Store", lineWidth)
	printStoreInfo(w, cfg)

	fmt.Fprintln(w)

	printSectionHeader(w, "Endpoints", lineWidth)
	printEndpointsInfo(w, cfg)

	fmt.Fprintln(w)

	printSectionHeader(w, "Features", lineWidth)
	printFeaturesInfo(w, cfg)

	fmt.Fprintln(w)
}

func printSectionHeader(w io.Writer, title string, width int) {
	titleLen := len(title) + 4 // "[ title ]"
	leftPad := 2
	rightPad := width - leftPad - titleLen
	if rightPad < 0 {
		rightPad = 0
	}
	fmt.Fprintf(w, "  %s[ %s%s%s ]%s%s\n",
		AnsiDim+strings.Repeat("-", leftPad),
		AnsiReset+AnsiCyan+AnsiBold, title, AnsiReset+AnsiDim,
		strings.Repeat("-", rightPad),
		AnsiReset)
}

func fmtKV(key, value string) string {
	return fmt.Sprintf("%s%s:%s %s", AnsiDim, key, AnsiReset, value)
}

func printRow3(w io.Writer, col1, col2, col3 string) {
	fmt.Fprintf(w, "  %-32s %-26s %s\n", col1, col2, col3)
}

func printStoreInfo(w io.Writer, cfg *config.Config) {
	backend := cfg.Store.Backend
	if backend == config.StoreBackendMemory {
		backend = AnsiYellow + backend + AnsiReset
	} else {
		backend = AnsiGreen + backend + AnsiReset
	}
	col1 := fmtKV("Backend", backend)
	col2 := fmtKV("Namespace", cfg.Store.Namespace)
	col3 := ""
	if len(cfg.Store.Endpoints) > 0 {
		col3 = fmtKV("Endpoints", fmt.Sprintf("%d", len(cfg.Store.Endpoints)))
	}
	printRow3(w, col1, col2, col3)
}

func printEndpointsInfo(w io.Writer, cfg *config.Config) {
	col1 := fmtKV("Client", AnsiGreen+cfg.BindAddr+AnsiReset)
	col2 := ""
	col3 := ""
	if cfg.Admin.Enabled {
		col2 = fmtKV("Admin", cfg.Admin.Addr)
	}
	if cfg.Metrics.Enabled && cfg.Admin.Enabled {
		col3 = fmtKV("Metrics", cfg.Admin.Addr+"/metrics")
	}
	printRow3(w, col1, col2, col3)
}

func printFeaturesInfo(w io.Writer, cfg *config.Config) {
	var enabled []string
	var disabled []string

	if cfg.Admin.Enabled {
		enabled = append(enabled, "Admin")
	} else {
		disabled = append(disabled, "Admin")
	}
	if cfg.Metrics.Enabled {
		enabled = append(enabled, "Metrics")
	} else {
		disabled = append(disabled, "Metrics")
	}
	if cfg.Notify.ReplayExisting {
		enabled = append(enabled, "Replay")
	}
	if cfg.Discovery.Enabled {
		enabled = append(enabled, "mDNS")
	} else {
		disabled = append(disabled, "mDNS")
	}

	if len(enabled) > 0 {
		fmt.Fprintf(w, "  %sEnabled:%s  %s%s%s\n", AnsiDim, AnsiReset, AnsiGreen, strings.Join(enabled, ", "), AnsiReset)
	}
	if len(disabled) > 0 {
		fmt.Fprintf(w, "  %sDisabled:%s %s\n", AnsiDim, AnsiReset, AnsiDim+strings.Join(disabled, ", ")+AnsiReset)
	}
}
