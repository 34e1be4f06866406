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
LarkMQ Server - Main Entry Point.

USAGE:
======

	larkmq [options]

OPTIONS:
========

	-config string    Path to configuration file (YAML format)
	-version          Show version information
	-help             Show help message

STARTUP SEQUENCE:
=================
1. Parse command line flags and config file
2. Initialize logging
3. Connect the coordination store
4. Register this node's broker descriptor
5. Start the config-change watcher
6. Start mDNS discovery and the admin API
7. Wait for shutdown signal
*/
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"larkmq/internal/admin"
	"larkmq/internal/banner"
	"larkmq/internal/config"
	"larkmq/internal/coord"
	"larkmq/internal/discovery"
	"larkmq/internal/logging"
	"larkmq/internal/metadata"
	"larkmq/internal/metrics"
	"larkmq/internal/notify"
)

func printHelp() {
	banner.Print()
	fmt.Println()
	fmt.Println("\033[1;36mUsage:\033[0m")
	fmt.Println("  larkmq [options]")
	fmt.Println()
	fmt.Println("\033[1;36mOptions:\033[0m")
	fmt.Println("  -config string    Path to configuration file (YAML format)")
	fmt.Println("  -human-readable   Use human-readable log format instead of JSON")
	fmt.Println("  -quiet            Skip banner and config display, output logs only")
	fmt.Println("  -version          Show version information")
	fmt.Println("  -help, -h         Show this help message")
	fmt.Println()
	fmt.Println("\033[1;36mEnvironment Variables:\033[0m")
	fmt.Println("  LARKMQ_NODE_ID           Unique node identifier")
	fmt.Println("  LARKMQ_BIND_ADDR         Client listener address (default: :9092)")
	fmt.Println("  LARKMQ_ADVERTISE_ADDR    Address published to clients")
	fmt.Println("  LARKMQ_LOG_LEVEL         Log level: debug, info, warn, error")
	fmt.Println("  LARKMQ_LOG_JSON          Enable JSON log output (default: true)")
	fmt.Println("  LARKMQ_STORE_BACKEND     Coordination store: memory or etcd")
	fmt.Println("  LARKMQ_STORE_ENDPOINTS   Comma-separated etcd endpoints")
	fmt.Println("  LARKMQ_STORE_NAMESPACE   Key prefix inside a shared etcd")
	fmt.Println("  LARKMQ_ADMIN_ADDR        Admin API listener (default: :9096)")
	fmt.Println("  LARKMQ_DISCOVERY_ENABLED Advertise this node over mDNS (true/false)")
	fmt.Println()
	fmt.Println("\033[1;36mExamples:\033[0m")
	fmt.Println("  # Start standalone with an in-memory store")
	fmt.Println("  larkmq")
	fmt.Println()
	fmt.Println("  # Start against etcd with human-readable logs")
	fmt.Println("  LARKMQ_STORE_BACKEND=etcd LARKMQ_STORE_ENDPOINTS=127.0.0.1:2379 larkmq -human-readable")
	fmt.Println()
	fmt.Println("  # Start with custom config file")
	fmt.Println("  larkmq -config /etc/larkmq/larkmq.yaml")
	fmt.Println()
}

func main() {
	for _, arg := range os.Args[1:] {
		if arg == "-h" || arg == "--help" || arg == "-help" || arg == "help" {
			printHelp()
			return
		}
	}

	configPath := flag.String("config", "", "Path to configuration file")
	humanReadable := flag.Bool("human-readable", false, "Use human-readable log format instead of JSON")
	quietMode := flag.Bool("quiet", false, "Skip banner and config display, output logs only")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Usage = printHelp
	flag.Parse()

	if *showVersion {
		banner.Print()
		return
	}

	cfgMgr := config.Global()
	if *configPath != "" {
		if err := cfgMgr.LoadFromFile(*configPath); err != nil {
			fmt.Printf("Error loading config file: %v\n", err)
			os.Exit(1)
		}
	}
	cfgMgr.LoadFromEnv()
	cfg := cfgMgr.Get()

	if *humanReadable {
		cfg.LogJSON = false
	}
	if err := cfg.Validate(); err != nil {
		fmt.Printf("Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	if !*quietMode {
		banner.PrintServerWithConfig(cfg)
	}

	logging.SetGlobalLevel(logging.ParseLevel(cfg.LogLevel))
	logging.SetJSONMode(cfg.LogJSON)
	logger := logging.NewLogger("main")

	logger.Info("Starting LarkMQ", "version", banner.Version, "node_id", cfg.NodeID)

	store, err := openStore(cfg)
	if err != nil {
		logger.Error("Failed to open coordination store", "error", err)
		os.Exit(1)
	}

	host, port, err := cfg.AdvertisedHostPort()
	if err != nil {
		logger.Error("Failed to resolve advertise address", "error", err)
		os.Exit(1)
	}
	desc := &metadata.BrokerDescriptor{
		ID: cfg.NodeID,
		Endpoints: map[metadata.SecurityProtocol]metadata.Endpoint{
			metadata.ProtocolPlaintext: {Host: host, Port: port},
		},
	}
	if err := metadata.RegisterBroker(store, desc); err != nil {
		logger.Error("Failed to register broker", "error", err)
		os.Exit(1)
	}
	logger.Info("Broker registered", "id", cfg.NodeID, "addr", fmt.Sprintf("%s:%d", host, port))

	adminAPI := metadata.NewAdmin(store, metadata.NewStoreDirectory(store))

	watcher := notify.NewWatcher(store, notify.Config{
		PollInterval:   time.Duration(cfg.Notify.PollIntervalMs) * time.Millisecond,
		ReplayExisting: cfg.Notify.ReplayExisting,
	})
	if err := watcher.Start(); err != nil {
		logger.Error("Failed to start config change watcher", "error", err)
		os.Exit(1)
	}

	disco := discovery.NewService(discovery.Config{
		NodeID:     cfg.NodeID,
		ClusterID:  cfg.Discovery.ClusterID,
		ClientAddr: fmt.Sprintf("%s:%d", host, port),
		Version:    banner.Version,
		Enabled:    cfg.Discovery.Enabled,
	})
	if err := disco.Start(); err != nil {
		logger.Error("Failed to start discovery", "error", err)
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}
	adminServer := admin.NewServer(&cfg.Admin, adminAPI, watcher, m)
	if err := adminServer.Start(); err != nil {
		logger.Error("Failed to start admin server", "error", err)
		os.Exit(1)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("Shutting down...")

	if err := adminServer.Stop(); err != nil {
		logger.Error("Error stopping admin server", "error", err)
	}
	if err := disco.Stop(); err != nil {
		logger.Error("Error stopping discovery", "error", err)
	}
	watcher.Stop()

	if err := metadata.DeregisterBroker(store, cfg.NodeID); err != nil {
		logger.Error("Error deregistering broker", "error", err)
	}
	if closer, ok := store.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Error closing coordination store", "error", err)
		}
	}
}

// openStore builds the configured coordination store backend.
func openStore(cfg *config.Config) (coord.Store, error) {
	switch cfg.Store.Backend {
	case config.StoreBackendEtcd:
		return coord.NewEtcdStore(coord.EtcdConfig{
			Endpoints:   cfg.Store.Endpoints,
			Namespace:   cfg.Store.Namespace,
			DialTimeout: time.Duration(cfg.Store.DialTimeoutMs) * time.Millisecond,
			OpTimeout:   time.Duration(cfg.Store.OpTimeoutMs) * time.Millisecond,
		})
	default:
		return coord.NewMemoryStore(), nil
	}
}
