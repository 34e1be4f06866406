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
Package config provides configuration management for LarkMQ.

CONFIGURATION SOURCES (in order of precedence):
===============================================
1. Command-line flags (highest priority)
2. Environment variables (LARKMQ_* prefix)
3. Configuration file (YAML format)
4. Default values (lowest priority)

EXAMPLE CONFIGURATION FILE:
===========================

	node_id: 1
	bind_addr: ":9092"
	admin:
	  enabled: true
	  addr: ":9096"
	store:
	  backend: etcd
	  endpoints: ["etcd-1:2379", "etcd-2:2379"]
	  namespace: /larkmq

ENVIRONMENT VARIABLES:
======================
All settings can be configured via environment variables with LARKMQ_ prefix.
Example: LARKMQ_BIND_ADDR=":9092" LARKMQ_LOG_LEVEL="debug"
*/
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Environment variable names
const (
	EnvNodeID        = "LARKMQ_NODE_ID"
	EnvBindAddr      = "LARKMQ_BIND_ADDR"
	EnvAdvertiseAddr = "LARKMQ_ADVERTISE_ADDR"
	EnvLogLevel      = "LARKMQ_LOG_LEVEL"
	EnvLogJSON       = "LARKMQ_LOG_JSON"

	// Coordination store configuration
	EnvStoreBackend   = "LARKMQ_STORE_BACKEND"
	EnvStoreEndpoints = "LARKMQ_STORE_ENDPOINTS"
	EnvStoreNamespace = "LARKMQ_STORE_NAMESPACE"

	// Admin API configuration
	EnvAdminEnabled = "LARKMQ_ADMIN_ENABLED"
	EnvAdminAddr    = "LARKMQ_ADMIN_ADDR"

	// Observability configuration
	EnvMetricsEnabled = "LARKMQ_METRICS_ENABLED"

	// Change notification configuration
	EnvNotifyPollInterval = "LARKMQ_NOTIFY_POLL_INTERVAL"

	// Discovery configuration
	EnvDiscoveryEnabled = "LARKMQ_DISCOVERY_ENABLED"
	EnvDiscoveryCluster = "LARKMQ_DISCOVERY_CLUSTER_ID"
)

// Default config file locations, searched in order.
var DefaultConfigPaths = []string{
	"/etc/larkmq/larkmq.yaml",
	"$HOME/.config/larkmq/larkmq.yaml",
	"./larkmq.yaml",
}

// Coordination store backends.
const (
	StoreBackendMemory = "memory"
	StoreBackendEtcd   = "etcd"
)

// StoreConfig selects and tunes the coordination store backend.
type StoreConfig struct {
	// Backend is "memory" (single node, volatile) or "etcd".
	Backend string `yaml:"backend" json:"backend"`

	// Endpoints are the etcd client endpoints. Ignored for the memory
	// backend.
	Endpoints []string `yaml:"endpoints" json:"endpoints"`

	// Namespace is a path prefix isolating this cluster's tree inside a
	// shared etcd.
	Namespace string `yaml:"namespace" json:"namespace"`

	// DialTimeoutMs bounds the initial etcd connection.
	DialTimeoutMs int `yaml:"dial_timeout_ms" json:"dial_timeout_ms"`

	// OpTimeoutMs bounds each individual store operation.
	OpTimeoutMs int `yaml:"op_timeout_ms" json:"op_timeout_ms"`
}

// AdminConfig holds admin API configuration.
type AdminConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"` // Enable the admin HTTP API
	Addr    string `yaml:"addr" json:"addr"`       // Admin API listen address
}

// MetricsConfig holds Prometheus metrics configuration. Metrics are served
// on the admin listener at /metrics.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
}

// NotifyConfig tunes the config-change watcher.
type NotifyConfig struct {
	// PollIntervalMs is how often the change log is scanned. Zero means
	// one second.
	PollIntervalMs int `yaml:"poll_interval_ms" json:"poll_interval_ms"`

	// ReplayExisting delivers events already in the log at startup.
	ReplayExisting bool `yaml:"replay_existing" json:"replay_existing"`
}

// DiscoveryConfig holds configuration for mDNS service discovery.
type DiscoveryConfig struct {
	Enabled   bool   `yaml:"enabled" json:"enabled"`       // Enable mDNS service discovery
	ClusterID string `yaml:"cluster_id" json:"cluster_id"` // Cluster identifier for discovery filtering
}

// Config holds the configuration for a LarkMQ metadata node.
type Config struct {
	// NodeID is this broker's unique numeric id, used for its registration
	// in the coordination store.
	NodeID int `yaml:"node_id" json:"node_id"`

	// BindAddr is the client listener address registered for this broker.
	BindAddr string `yaml:"bind_addr" json:"bind_addr"`

	// AdvertiseAddr is the address published to clients. Auto-detected
	// from BindAddr when empty.
	AdvertiseAddr string `yaml:"advertise_addr" json:"advertise_addr"`

	// Logging
	LogLevel string `yaml:"log_level" json:"log_level"`
	LogJSON  bool   `yaml:"log_json" json:"log_json"`

	Store     StoreConfig     `yaml:"store" json:"store"`
	Admin     AdminConfig     `yaml:"admin" json:"admin"`
	Metrics   MetricsConfig   `yaml:"metrics" json:"metrics"`
	Notify    NotifyConfig    `yaml:"notify" json:"notify"`
	Discovery DiscoveryConfig `yaml:"discovery" json:"discovery"`

	// ConfigFile records where the config was loaded from.
	ConfigFile string `yaml:"-" json:"-"`
}

// DefaultConfig returns defaults.
func DefaultConfig() *Config {
	return &Config{
		NodeID:   0,
		BindAddr: ":9092",
		LogLevel: "info",
		LogJSON:  true, // JSON by default for production/parsing
		Store: StoreConfig{
			Backend:       StoreBackendMemory,
			Namespace:     "/larkmq",
			DialTimeoutMs: 5000,
			OpTimeoutMs:   3000,
		},
		Admin: AdminConfig{
			Enabled: true,
			Addr:    ":9096",
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
		Notify: NotifyConfig{
			PollIntervalMs: 1000,
		},
		Discovery: DiscoveryConfig{
			Enabled:   false, // Disabled by default, enable for cluster auto-discovery
			ClusterID: "",    // Empty means accept any cluster
		},
	}
}

// Manager handles configuration loading.
type Manager struct {
	config *Config
	mu     sync.RWMutex
}

var globalManager = &Manager{
	config: DefaultConfig(),
}

// Global returns the global manager.
func Global() *Manager {
	return globalManager
}

// Get returns a copy of current config.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cfg := *m.config
	return &cfg
}

// Set updates the config.
func (m *Manager) Set(cfg *Config) {
	m.mu.Lock()
	m.config = cfg
	m.mu.Unlock()
}

// LoadFromFile loads configuration from a YAML file. JSON files also parse,
// YAML being a superset.
func (m *Manager) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	cfg.ConfigFile = path
	m.Set(cfg)
	return nil
}

// LoadFromEnv loads configuration from environment variables.
func (m *Manager) LoadFromEnv() {
	cfg := m.Get()

	if v := os.Getenv(EnvNodeID); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.NodeID = i
		}
	}
	if v := os.Getenv(EnvBindAddr); v != "" {
		cfg.BindAddr = v
	}
	if v := os.Getenv(EnvAdvertiseAddr); v != "" {
		cfg.AdvertiseAddr = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv(EnvLogJSON); v != "" {
		cfg.LogJSON = isTrue(v)
	}

	// Coordination store environment variables
	if v := os.Getenv(EnvStoreBackend); v != "" {
		cfg.Store.Backend = v
	}
	if v := os.Getenv(EnvStoreEndpoints); v != "" {
		cfg.Store.Endpoints = nil
		for _, p := range strings.Split(v, ",") {
			if strings.TrimSpace(p) != "" {
				cfg.Store.Endpoints = append(cfg.Store.Endpoints, strings.TrimSpace(p))
			}
		}
	}
	if v := os.Getenv(EnvStoreNamespace); v != "" {
		cfg.Store.Namespace = v
	}

	// Admin API environment variables
	if v := os.Getenv(EnvAdminEnabled); v != "" {
		cfg.Admin.Enabled = isTrue(v)
	}
	if v := os.Getenv(EnvAdminAddr); v != "" {
		cfg.Admin.Addr = v
	}

	// Observability environment variables
	if v := os.Getenv(EnvMetricsEnabled); v != "" {
		cfg.Metrics.Enabled = isTrue(v)
	}

	// Notification environment variables
	if v := os.Getenv(EnvNotifyPollInterval); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Notify.PollIntervalMs = i
		}
	}

	// Discovery environment variables
	if v := os.Getenv(EnvDiscoveryEnabled); v != "" {
		cfg.Discovery.Enabled = isTrue(v)
	}
	if v := os.Getenv(EnvDiscoveryCluster); v != "" {
		cfg.Discovery.ClusterID = v
	}

	m.Set(cfg)
}

func isTrue(v string) bool {
	return strings.ToLower(v) == "true" || v == "1"
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	if c.NodeID < 0 {
		return fmt.Errorf("node_id must be non-negative")
	}
	if c.BindAddr == "" {
		return fmt.Errorf("bind_addr is required")
	}

	switch c.Store.Backend {
	case StoreBackendMemory:
	case StoreBackendEtcd:
		if len(c.Store.Endpoints) == 0 {
			return fmt.Errorf("store.endpoints is required for the etcd backend")
		}
	default:
		return fmt.Errorf("store.backend must be 'memory' or 'etcd', got %q", c.Store.Backend)
	}

	if c.Store.DialTimeoutMs < 0 || c.Store.OpTimeoutMs < 0 {
		return fmt.Errorf("store timeouts must be non-negative")
	}
	if c.Notify.PollIntervalMs < 0 {
		return fmt.Errorf("notify.poll_interval_ms must be non-negative")
	}
	if c.Admin.Enabled && c.Admin.Addr == "" {
		return fmt.Errorf("admin.addr is required when the admin API is enabled")
	}
	return nil
}

// GetAdvertiseAddr returns the address published to clients. If not
// explicitly set, it is derived from the bind address; binding to all
// interfaces triggers local IP detection.
func (c *Config) GetAdvertiseAddr() string {
	if c.AdvertiseAddr != "" {
		return c.AdvertiseAddr
	}
	return resolveAdvertiseAddr(c.BindAddr)
}

// AdvertisedHostPort splits the advertised address into a host and numeric
// port for broker registration.
func (c *Config) AdvertisedHostPort() (string, int, error) {
	host, portStr, err := splitHostPort(c.GetAdvertiseAddr())
	if err != nil {
		return "", 0, err
	}
	if host == "" {
		host = "localhost"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid advertised port %q: %w", portStr, err)
	}
	return host, port, nil
}

// resolveAdvertiseAddr resolves an address to an advertisable address.
// If the address binds to all interfaces (0.0.0.0 or ::), it attempts to
// detect the local IP address.
func resolveAdvertiseAddr(addr string) string {
	host, port, err := splitHostPort(addr)
	if err != nil {
		return addr
	}

	// If binding to all interfaces, try to detect local IP
	if host == "" || host == "0.0.0.0" || host == "::" {
		if localIP := detectLocalIP(); localIP != "" {
			return localIP + ":" + port
		}
	}

	return addr
}

// splitHostPort splits an address into host and port.
// Handles addresses like ":9092", "0.0.0.0:9092", "[::]:9092"
func splitHostPort(addr string) (host, port string, err error) {
	// Handle IPv6 addresses
	if strings.HasPrefix(addr, "[") {
		end := strings.Index(addr, "]")
		if end == -1 {
			return "", "", fmt.Errorf("invalid address: %s", addr)
		}
		host = addr[1:end]
		if len(addr) > end+1 && addr[end+1] == ':' {
			port = addr[end+2:]
		}
		return host, port, nil
	}

	// Handle IPv4 addresses and simple port-only addresses
	lastColon := strings.LastIndex(addr, ":")
	if lastColon == -1 {
		return addr, "", nil
	}
	if lastColon == 0 {
		return "", addr[1:], nil
	}
	return addr[:lastColon], addr[lastColon+1:], nil
}

// detectLocalIP attempts to detect the local IP address.
// It prefers non-loopback IPv4 addresses.
func detectLocalIP() string {
	// Try to get the IP by connecting to a known address
	// This doesn't actually make a connection, just determines the route
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err == nil {
		defer conn.Close()
		if addr, ok := conn.LocalAddr().(*net.UDPAddr); ok {
			return addr.IP.String()
		}
	}

	// Fallback: iterate through interfaces
	interfaces, err := net.Interfaces()
	if err != nil {
		return ""
	}

	for _, iface := range interfaces {
		// Skip loopback and down interfaces
		if iface.Flags&net.FlagLoopback != 0 || iface.Flags&net.FlagUp == 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			var ip net.IP
			switch v := addr.(type) {
			case *net.IPNet:
				ip = v.IP
			case *net.IPAddr:
				ip = v.IP
			}

			// Prefer IPv4 non-loopback addresses
			if ip != nil && ip.To4() != nil && !ip.IsLoopback() {
				return ip.String()
			}
		}
	}

	return ""
}
