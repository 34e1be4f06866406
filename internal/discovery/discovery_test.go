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

package discovery

import (
	"testing"

	"github.com/hashicorp/mdns"
)

func TestParseEntry(t *testing.T) {
	entry := &mdns.ServiceEntry{
		InfoFields: []string{
			"node_id=3",
			"cluster_id=prod",
			"client_addr=10.0.0.3:9092",
			"version=1.2.0",
		},
	}
	node := parseEntry(entry)
	if node == nil {
		t.Fatal("parseEntry returned nil")
	}
	if node.NodeID != 3 || node.ClusterID != "prod" || node.ClientAddr != "10.0.0.3:9092" || node.Version != "1.2.0" {
		t.Errorf("node = %+v", node)
	}
}

func TestParseEntryForeignService(t *testing.T) {
	// An mDNS answer without our node_id TXT field is not a LarkMQ node.
	entry := &mdns.ServiceEntry{InfoFields: []string{"path=/printer"}}
	if node := parseEntry(entry); node != nil {
		t.Errorf("parseEntry = %+v, want nil", node)
	}

	entry = &mdns.ServiceEntry{InfoFields: []string{"node_id=banana"}}
	if node := parseEntry(entry); node != nil {
		t.Errorf("parseEntry with bad node_id = %+v, want nil", node)
	}
}

func TestSplitClientAddr(t *testing.T) {
	host, port, err := splitClientAddr("broker-1:9092")
	if err != nil {
		t.Fatalf("splitClientAddr failed: %v", err)
	}
	if host != "broker-1" || port != 9092 {
		t.Errorf("got %s:%d, want broker-1:9092", host, port)
	}

	host, port, err = splitClientAddr(":9092")
	if err != nil {
		t.Fatalf("splitClientAddr failed: %v", err)
	}
	if host != "localhost" || port != 9092 {
		t.Errorf("got %s:%d, want localhost:9092", host, port)
	}

	if _, _, err := splitClientAddr("no-port"); err == nil {
		t.Error("expected error for address without port")
	}
}

func TestDisabledServiceStartsSilently(t *testing.T) {
	s := NewService(Config{NodeID: 1, Enabled: false})
	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if s.server != nil {
		t.Error("disabled service must not advertise")
	}
	if err := s.Stop(); err != nil {
		t.Errorf("Stop failed: %v", err)
	}
}
