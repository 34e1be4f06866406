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

// Package discovery advertises LarkMQ nodes on the local network via mDNS
// (Bonjour/Avahi) and finds other nodes the same way. Discovery is a
// bootstrap convenience; cluster membership itself lives in the
// coordination store.
package discovery

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/mdns"

	"larkmq/internal/logging"
)

// serviceName is the mDNS service type LarkMQ nodes register under.
const serviceName = "_larkmq._tcp"

// Config controls advertising and discovery.
type Config struct {
	// NodeID identifies this node in its TXT record.
	NodeID int

	// ClusterID filters discovery to one cluster. Empty matches any.
	ClusterID string

	// ClientAddr is the advertised client endpoint (host:port).
	ClientAddr string

	// Version is the node's reported software version.
	Version string

	// Enabled controls whether Start advertises this node. A
	// discovery-only client leaves it false.
	Enabled bool
}

// DiscoveredNode is one node found on the network.
type DiscoveredNode struct {
	NodeID     int
	ClusterID  string
	ClientAddr string
	Version    string
}

// Service advertises this node over mDNS and queries for others.
type Service struct {
	config Config
	server *mdns.Server
	logger *logging.Logger
}

// NewService creates a discovery service. Nothing is advertised until
// Start.
func NewService(cfg Config) *Service {
	return &Service{
		config: cfg,
		logger: logging.NewLogger("discovery"),
	}
}

// Start begins advertising this node. A service with Enabled=false starts
// successfully but stays silent.
func (s *Service) Start() error {
	if !s.config.Enabled {
		return nil
	}

	host, port, err := splitClientAddr(s.config.ClientAddr)
	if err != nil {
		return fmt.Errorf("invalid client address %q: %w", s.config.ClientAddr, err)
	}

	txt := []string{
		"node_id=" + strconv.Itoa(s.config.NodeID),
		"client_addr=" + s.config.ClientAddr,
	}
	if s.config.ClusterID != "" {
		txt = append(txt, "cluster_id="+s.config.ClusterID)
	}
	if s.config.Version != "" {
		txt = append(txt, "version="+s.config.Version)
	}

	instance := fmt.Sprintf("larkmq-%d", s.config.NodeID)
	zone, err := mdns.NewMDNSService(instance, serviceName, "", "", port, nil, txt)
	if err != nil {
		return fmt.Errorf("creating mDNS service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: zone})
	if err != nil {
		return fmt.Errorf("starting mDNS server: %w", err)
	}
	s.server = server
	s.logger.Info("Advertising node", "instance", instance, "host", host, "port", port)
	return nil
}

// Stop ends advertising.
func (s *Service) Stop() error {
	if s.server == nil {
		return nil
	}
	err := s.server.Shutdown()
	s.server = nil
	return err
}

// DiscoverNodes queries the network for LarkMQ nodes, collecting answers
// until the timeout elapses. Nodes from other clusters are filtered out
// when a ClusterID is configured.
func (s *Service) DiscoverNodes(timeout time.Duration) ([]*DiscoveredNode, error) {
	entries := make(chan *mdns.ServiceEntry, 32)
	done := make(chan []*DiscoveredNode)

	go func() {
		var nodes []*DiscoveredNode
		seen := make(map[int]bool)
		for entry := range entries {
			node := parseEntry(entry)
			if node == nil {
				continue
			}
			if s.config.ClusterID != "" && node.ClusterID != s.config.ClusterID {
				continue
			}
			if seen[node.NodeID] {
				continue
			}
			seen[node.NodeID] = true
			nodes = append(nodes, node)
		}
		done <- nodes
	}()

	params := &mdns.QueryParam{
		Service:     serviceName,
		Timeout:     timeout,
		Entries:     entries,
		DisableIPv6: true,
	}
	err := mdns.Query(params)
	close(entries)
	nodes := <-done
	if err != nil {
		return nodes, fmt.Errorf("mDNS query: %w", err)
	}
	return nodes, nil
}

// parseEntry converts an mDNS answer into a node, or nil when the TXT
// record is not one of ours.
func parseEntry(entry *mdns.ServiceEntry) *DiscoveredNode {
	node := &DiscoveredNode{NodeID: -1}
	for _, field := range entry.InfoFields {
		key, value, found := strings.Cut(field, "=")
		if !found {
			continue
		}
		switch key {
		case "node_id":
			id, err := strconv.Atoi(value)
			if err != nil {
				return nil
			}
			node.NodeID = id
		case "cluster_id":
			node.ClusterID = value
		case "client_addr":
			node.ClientAddr = value
		case "version":
			node.Version = value
		}
	}
	if node.NodeID < 0 {
		return nil
	}
	if node.ClientAddr == "" && entry.AddrV4 != nil {
		node.ClientAddr = fmt.Sprintf("%s:%d", entry.AddrV4, entry.Port)
	}
	return node
}

func splitClientAddr(addr string) (string, int, error) {
	idx := strings.LastIndex(addr, ":")
	if idx < 0 {
		return "", 0, fmt.Errorf("missing port")
	}
	port, err := strconv.Atoi(addr[idx+1:])
	if err != nil {
		return "", 0, err
	}
	host := addr[:idx]
	if host == "" {
		host = "localhost"
	}
	return host, port, nil
}
