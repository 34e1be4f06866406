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

package metadata

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"larkmq/internal/coord"
)

// SecurityProtocol identifies one of a broker's listener endpoints.
type SecurityProtocol string

const (
	// ProtocolPlaintext is the unencrypted listener.
	ProtocolPlaintext SecurityProtocol = "PLAINTEXT"
	// ProtocolSSL is the TLS listener.
	ProtocolSSL SecurityProtocol = "SSL"
)

// Endpoint is one network address a broker listens on.
type Endpoint struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// String returns the endpoint in host:port form.
func (e Endpoint) String() string {
	return fmt.Sprintf("%s:%d", e.Host, e.Port)
}

// BrokerDescriptor describes one live broker: its id and the set of
// endpoints it listens on, keyed by security protocol. Brokers write their
// descriptor at startup; the metadata service only reads them.
type BrokerDescriptor struct {
	ID        int                           `json:"id"`
	Endpoints map[SecurityProtocol]Endpoint `json:"endpoints"`
}

// Endpoint returns the broker's endpoint for the given protocol.
func (b *BrokerDescriptor) Endpoint(protocol SecurityProtocol) (Endpoint, bool) {
	ep, ok := b.Endpoints[protocol]
	return ep, ok
}

// Directory is the read-only broker lookup the metadata service depends on.
// Both lookups are backed by the coordination store but exposed through
// this narrow interface so tests can substitute fixed broker sets.
type Directory interface {
	// BrokerInfo returns the descriptor of the broker with the given id.
	// A deregistered broker yields ok=false, not an error.
	BrokerInfo(id int) (desc *BrokerDescriptor, ok bool, err error)

	// SortedBrokerIDs returns the ids of all live brokers in ascending
	// order.
	SortedBrokerIDs() ([]int, error)
}

// StoreDirectory is the coordination-store-backed Directory, reading broker
// registrations under /brokers/ids.
type StoreDirectory struct {
	store coord.Store
}

// NewStoreDirectory creates a Directory reading from the given store.
func NewStoreDirectory(store coord.Store) *StoreDirectory {
	return &StoreDirectory{store: store}
}

// BrokerInfo reads and decodes one broker registration.
func (d *StoreDirectory) BrokerInfo(id int) (*BrokerDescriptor, bool, error) {
	data, err := d.store.ReadData(BrokerIDPath(id))
	if errors.Is(err, coord.ErrNoNode) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, wrapError(KindOperationFailed, err, "reading broker %d", id)
	}
	desc, err := decodeBroker(id, data)
	if err != nil {
		return nil, false, err
	}
	return desc, true, nil
}

// SortedBrokerIDs lists the registered broker ids in ascending order.
// Registration nodes whose names are not numeric are skipped.
func (d *StoreDirectory) SortedBrokerIDs() ([]int, error) {
	children, err := d.store.Children(BrokerIDsPath)
	if err != nil {
		return nil, wrapError(KindOperationFailed, err, "listing brokers")
	}
	ids := make([]int, 0, len(children))
	for _, name := range children {
		id, err := strconv.Atoi(name)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids, nil
}

// BrokerIDs returns the ids of all registered brokers in ascending order.
func (a *Admin) BrokerIDs() ([]int, error) {
	return a.directory.SortedBrokerIDs()
}

// Brokers returns the descriptors of all registered brokers. Brokers that
// deregister between the listing and the lookup are skipped.
func (a *Admin) Brokers() ([]*BrokerDescriptor, error) {
	ids, err := a.directory.SortedBrokerIDs()
	if err != nil {
		return nil, err
	}
	brokers := make([]*BrokerDescriptor, 0, len(ids))
	for _, id := range ids {
		desc, ok, err := a.directory.BrokerInfo(id)
		if err != nil {
			return nil, err
		}
		if ok {
			brokers = append(brokers, desc)
		}
	}
	return brokers, nil
}

// RegisterBroker writes a broker's descriptor at its registration path.
// Called by brokers at startup; re-registration overwrites the previous
// descriptor.
func RegisterBroker(store coord.Store, desc *BrokerDescriptor) error {
	data, err := encodeBroker(desc)
	if err != nil {
		return wrapError(KindOperationFailed, err, "encoding broker %d", desc.ID)
	}
	if err := store.UpdatePersistent(BrokerIDPath(desc.ID), data); err != nil {
		return wrapError(KindOperationFailed, err, "registering broker %d", desc.ID)
	}
	return nil
}

// DeregisterBroker removes a broker's registration, used when a broker
// shuts down cleanly.
func DeregisterBroker(store coord.Store, id int) error {
	if err := store.DeleteRecursive(BrokerIDPath(id)); err != nil {
		return wrapError(KindOperationFailed, err, "deregistering broker %d", id)
	}
	return nil
}
