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
larkmq-discover - LarkMQ Node Discovery Tool

This tool discovers LarkMQ nodes on the local network using mDNS
(Bonjour/Avahi). Useful for finding the admin endpoints of an existing
cluster.

Usage:
    larkmq-discover                    # Discover nodes (5 second timeout)
    larkmq-discover --timeout 10       # Custom timeout in seconds
    larkmq-discover --json             # Output as JSON
    larkmq-discover --quiet            # Only output addresses (for scripting)
*/
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"larkmq/internal/banner"
	"larkmq/internal/discovery"
	"larkmq/pkg/cli"
)

func main() {
	timeout := flag.Int("timeout", 5, "Discovery timeout in seconds")
	jsonOutput := flag.Bool("json", false, "Output as JSON")
	quiet := flag.Bool("quiet", false, "Only output client addresses (for scripting)")
	cluster := flag.String("cluster", "", "Only show nodes of this cluster id")
	help := flag.Bool("help", false, "Show help")
	version := flag.Bool("version", false, "Show version information")
	flag.BoolVar(help, "h", false, "Show help")
	flag.BoolVar(version, "v", false, "Show version information")

	flag.Parse()

	if *help {
		printUsage()
		os.Exit(0)
	}

	if *version {
		printVersion()
		os.Exit(0)
	}

	// Suppress mDNS library logging (it logs IPv6 errors that are not critical)
	log.SetOutput(io.Discard)

	if !*quiet && !*jsonOutput {
		printBanner()
	}

	// Discovery-only service: no advertising.
	disco := discovery.NewService(discovery.Config{
		ClusterID: *cluster,
		Enabled:   false,
	})

	if !*quiet && !*jsonOutput {
		cli.Info("Scanning for LarkMQ nodes on the network (timeout: %ds)...", *timeout)
		fmt.Println()
	}

	nodes, err := disco.DiscoverNodes(time.Duration(*timeout) * time.Second)
	if err != nil {
		if !*quiet {
			cli.Error("Discovery failed: %v", err)
		}
		os.Exit(1)
	}

	if len(nodes) == 0 {
		if !*quiet && !*jsonOutput {
			cli.Warning("No LarkMQ nodes found on the network.")
			fmt.Println()
			fmt.Println(cli.Bold + cli.Cyan + "TROUBLESHOOTING" + cli.Reset)
			fmt.Println()
			fmt.Println(cli.Dim + "  Common issues:" + cli.Reset)
			fmt.Println("    " + cli.Yellow + "•" + cli.Reset + " LarkMQ nodes are not running with discovery enabled")
			fmt.Println("    " + cli.Yellow + "•" + cli.Reset + " mDNS/Bonjour is blocked by firewall (UDP port 5353)")
			fmt.Println("    " + cli.Yellow + "•" + cli.Reset + " Nodes are on a different network segment")
			fmt.Println()
			fmt.Println(cli.Dim + "  Try:" + cli.Reset)
			fmt.Println("    " + cli.Green + "larkmq-discover --timeout 10" + cli.Reset + "   # Increase timeout")
			fmt.Println()
		}
		os.Exit(0)
	}

	if *jsonOutput {
		outputJSON(nodes)
	} else if *quiet {
		outputQuiet(nodes)
	} else {
		outputHuman(nodes)
	}
}

func printBanner() {
	fmt.Println()
	fmt.Println(cli.Cyan + cli.Bold)
	for _, line := range banner.GetBannerLines() {
		fmt.Println("  " + line)
	}
	fmt.Println(cli.Reset)
	fmt.Println(cli.Green + cli.Bold + "  LarkMQ Discover" + cli.Reset + " " + cli.Dim + "v" + banner.Version + cli.Reset)
	fmt.Println(cli.Dim + "  Network Node Discovery Tool" + cli.Reset)
	fmt.Println()
}

func printVersion() {
	fmt.Println()
	fmt.Println(cli.Cyan + cli.Bold + "  LarkMQ Discover" + cli.Reset + " " + cli.Dim + "v" + banner.Version + cli.Reset)
	fmt.Println(cli.Dim + "  Network Node Discovery Tool" + cli.Reset)
	fmt.Println()
	fmt.Println(cli.Dim + "  " + banner.Copyright + cli.Reset)
	fmt.Println()
}

func printUsage() {
	fmt.Println()
	fmt.Println(cli.Cyan + cli.Bold)
	for _, line := range banner.GetBannerLines() {
		fmt.Println("  " + line)
	}
	fmt.Println(cli.Reset)
	fmt.Println(cli.Green + cli.Bold + "  LarkMQ Discover" + cli.Reset + " " + cli.Dim + "v" + banner.Version + cli.Reset)
	fmt.Println(cli.Dim + "  Network Node Discovery Tool" + cli.Reset)
	fmt.Println()

	fmt.Println(cli.Dim + "  Discovers LarkMQ nodes on the local network using mDNS (Bonjour/Avahi)." + cli.Reset)
	fmt.Println(cli.Dim + "  Useful for finding the admin endpoints of an existing cluster." + cli.Reset)
	fmt.Println()

	fmt.Println(cli.Bold + "Usage:" + cli.Reset + " larkmq-discover [options]")
	fmt.Println()

	fmt.Println(cli.Bold + cli.Cyan + "OPTIONS" + cli.Reset)
	fmt.Println()
	fmt.Println("    " + cli.Green + "--timeout" + cli.Reset + " <seconds>   Discovery timeout (default: 5)")
	fmt.Println("    " + cli.Green + "--cluster" + cli.Reset + " <id>        Only show nodes of this cluster id")
	fmt.Println("    " + cli.Green + "--json" + cli.Reset + "               Output results as JSON")
	fmt.Println("    " + cli.Green + "--quiet" + cli.Reset + ", " + cli.Green + "-q" + cli.Reset + "          Only output addresses (for scripting)")
	fmt.Println("    " + cli.Green + "--version" + cli.Reset + ", " + cli.Green + "-v" + cli.Reset + "        Show version information")
	fmt.Println("    " + cli.Green + "--help" + cli.Reset + ", " + cli.Green + "-h" + cli.Reset + "           Show this help message")
	fmt.Println()

	fmt.Println(cli.Bold + cli.Cyan + "EXAMPLES" + cli.Reset)
	fmt.Println()
	fmt.Println(cli.Dim + "    # Discover nodes with default timeout" + cli.Reset)
	fmt.Println("    larkmq-discover")
	fmt.Println()
	fmt.Println(cli.Dim + "    # Increase timeout for slower networks" + cli.Reset)
	fmt.Println("    larkmq-discover --timeout 10")
	fmt.Println()
	fmt.Println(cli.Dim + "    # Get JSON output for automation" + cli.Reset)
	fmt.Println("    larkmq-discover --json")
	fmt.Println()
	fmt.Println(cli.Dim + "    # Get just addresses for scripting" + cli.Reset)
	fmt.Println("    SERVERS=$(larkmq-discover --quiet)")
	fmt.Println()

	fmt.Println(cli.Bold + cli.Cyan + "NETWORK REQUIREMENTS" + cli.Reset)
	fmt.Println()
	fmt.Println("    " + cli.Yellow + "•" + cli.Reset + " mDNS uses UDP port 5353 (multicast)")
	fmt.Println("    " + cli.Yellow + "•" + cli.Reset + " Nodes must be on the same network segment")
	fmt.Println("    " + cli.Yellow + "•" + cli.Reset + " Firewalls must allow mDNS traffic")
	fmt.Println()
}

func outputJSON(nodes []*discovery.DiscoveredNode) {
	type nodeOutput struct {
		NodeID     int    `json:"node_id"`
		ClusterID  string `json:"cluster_id,omitempty"`
		ClientAddr string `json:"client_addr"`
		Version    string `json:"version,omitempty"`
	}

	output := make([]nodeOutput, len(nodes))
	for i, n := range nodes {
		output[i] = nodeOutput{
			NodeID:     n.NodeID,
			ClusterID:  n.ClusterID,
			ClientAddr: n.ClientAddr,
			Version:    n.Version,
		}
	}

	data, _ := json.MarshalIndent(output, "", "  ")
	fmt.Println(string(data))
}

func outputQuiet(nodes []*discovery.DiscoveredNode) {
	addrs := make([]string, len(nodes))
	for i, n := range nodes {
		addrs[i] = n.ClientAddr
	}
	fmt.Println(strings.Join(addrs, ","))
}

func outputHuman(nodes []*discovery.DiscoveredNode) {
	cli.Success("Found %d LarkMQ node(s)", len(nodes))
	fmt.Println()

	for i, n := range nodes {
		fmt.Printf("  %s[%d]%s %snode %d%s\n",
			cli.Dim, i+1, cli.Reset,
			cli.Bold+cli.Cyan, n.NodeID, cli.Reset)

		fmt.Printf("      %sClient Address:%s %s%s%s\n",
			cli.Dim, cli.Reset,
			cli.Green, n.ClientAddr, cli.Reset)

		if n.ClusterID != "" {
			fmt.Printf("      %sCluster ID:%s     %s\n",
				cli.Dim, cli.Reset, n.ClusterID)
		}

		if n.Version != "" {
			fmt.Printf("      %sVersion:%s        %s\n",
				cli.Dim, cli.Reset, n.Version)
		}

		fmt.Println()
	}

	fmt.Println(cli.Dim + "  Tip: Use --json for machine-readable output" + cli.Reset)
	fmt.Println()
}
