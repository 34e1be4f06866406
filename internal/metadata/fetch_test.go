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
	"testing"

	"larkmq/internal/coord"
)

// writePartitionState stores a leader/ISR record for one partition.
func writePartitionState(t *testing.T, store coord.Store, topic string, partition, leader int, isr []int) {
	t.Helper()
	data, err := encodePartitionState(leader, isr)
	if err != nil {
		t.Fatalf("encodePartitionState failed: %v", err)
	}
	if err := store.UpdatePersistent(TopicPartitionStatePath(topic, partition), data); err != nil {
		t.Fatalf("writing partition state failed: %v", err)
	}
}

func TestFetchTopicMetadata(t *testing.T) {
	admin, store := newTestAdmin(t, 0, 1, 2)

	if err := admin.CreateTopicWithAssignment("orders", map[int][]int{0: {0, 1}, 1: {1, 2}}, nil); err != nil {
		t.Fatalf("CreateTopicWithAssignment failed: %v", err)
	}
	writePartitionState(t, store, "orders", 0, 0, []int{0, 1})
	writePartitionState(t, store, "orders", 1, 1, []int{1})

	results := admin.FetchTopicMetadata([]string{"orders"}, ProtocolPlaintext)
	if len(results) != 1 {
		t.Fatalf("got %d topics, want 1", len(results))
	}
	tm := results[0]
	if tm.Err != CodeNone {
		t.Fatalf("topic error = %v, want none", tm.Err)
	}
	if len(tm.Partitions) != 2 {
		t.Fatalf("got %d partitions, want 2", len(tm.Partitions))
	}

	p0 := tm.Partitions[0]
	if p0.ID != 0 || p0.Err != CodeNone {
		t.Errorf("partition 0 = %+v, want id 0 with no error", p0)
	}
	if p0.Leader == nil || p0.Leader.Port != 9092 {
		t.Errorf("partition 0 leader = %v, want broker 0 on port 9092", p0.Leader)
	}
	if len(p0.Replicas) != 2 || len(p0.ISR) != 2 {
		t.Errorf("partition 0 replicas/isr = %v/%v, want 2/2 endpoints", p0.Replicas, p0.ISR)
	}

	p1 := tm.Partitions[1]
	if p1.Leader == nil || p1.Leader.Port != 9093 {
		t.Errorf("partition 1 leader = %v, want broker 1 on port 9093", p1.Leader)
	}
	if len(p1.ISR) != 1 {
		t.Errorf("partition 1 isr = %v, want 1 endpoint", p1.ISR)
	}
}

func TestFetchTopicMetadataUnknownTopic(t *testing.T) {
	admin, _ := newTestAdmin(t, 0)

	results := admin.FetchTopicMetadata([]string{"ghost"}, ProtocolPlaintext)
	if len(results) != 1 {
		t.Fatalf("got %d topics, want 1", len(results))
	}
	if results[0].Err != CodeUnknownTopic {
		t.Errorf("topic error = %v, want CodeUnknownTopic", results[0].Err)
	}
	if len(results[0].Partitions) != 0 {
		t.Errorf("unknown topic carried %d partitions", len(results[0].Partitions))
	}
}

// A partition with no elected leader still reports its replicas; only the
// error code says the leader is unavailable.
func TestFetchTopicMetadataLeaderNotElected(t *testing.T) {
	admin, _ := newTestAdmin(t, 0, 1)

	if err := admin.CreateTopicWithAssignment("orders", map[int][]int{0: {0, 1}}, nil); err != nil {
		t.Fatalf("CreateTopicWithAssignment failed: %v", err)
	}

	results := admin.FetchTopicMetadata([]string{"orders"}, ProtocolPlaintext)
	p := results[0].Partitions[0]
	if p.Err != CodeLeaderNotAvailable {
		t.Errorf("error = %v, want CodeLeaderNotAvailable", p.Err)
	}
	if p.Leader != nil {
		t.Errorf("leader = %v, want nil", p.Leader)
	}
	if len(p.Replicas) != 2 {
		t.Errorf("replicas = %v, want both endpoints despite missing leader", p.Replicas)
	}
}

func TestFetchTopicMetadataLeaderDeregistered(t *testing.T) {
	admin, store := newTestAdmin(t, 0, 1)

	if err := admin.CreateTopicWithAssignment("orders", map[int][]int{0: {0, 1}}, nil); err != nil {
		t.Fatalf("CreateTopicWithAssignment failed: %v", err)
	}
	writePartitionState(t, store, "orders", 0, 0, []int{0, 1})
	if err := DeregisterBroker(store, 0); err != nil {
		t.Fatalf("DeregisterBroker failed: %v", err)
	}

	results := admin.FetchTopicMetadata([]string{"orders"}, ProtocolPlaintext)
	p := results[0].Partitions[0]
	if p.Err != CodeLeaderNotAvailable {
		t.Errorf("error = %v, want CodeLeaderNotAvailable", p.Err)
	}
	if p.Leader != nil {
		t.Errorf("leader = %v, want nil", p.Leader)
	}
	// Broker 1 still resolves.
	if len(p.Replicas) != 1 || p.Replicas[0].Port != 9093 {
		t.Errorf("replicas = %v, want only broker 1", p.Replicas)
	}
}

func TestFetchTopicMetadataReplicaDeregistered(t *testing.T) {
	admin, store := newTestAdmin(t, 0, 1, 2)

	if err := admin.CreateTopicWithAssignment("orders", map[int][]int{0: {0, 1, 2}}, nil); err != nil {
		t.Fatalf("CreateTopicWithAssignment failed: %v", err)
	}
	writePartitionState(t, store, "orders", 0, 0, []int{0, 1})
	if err := DeregisterBroker(store, 2); err != nil {
		t.Fatalf("DeregisterBroker failed: %v", err)
	}

	results := admin.FetchTopicMetadata([]string{"orders"}, ProtocolPlaintext)
	p := results[0].Partitions[0]
	if p.Err != CodeReplicaNotAvailable {
		t.Errorf("error = %v, want CodeReplicaNotAvailable", p.Err)
	}
	if p.Leader == nil || p.Leader.Port != 9092 {
		t.Errorf("leader = %v, want broker 0", p.Leader)
	}
	if len(p.Replicas) != 2 {
		t.Errorf("replicas = %v, want the two resolvable endpoints", p.Replicas)
	}
}

// One failing topic never poisons its siblings in the same fetch.
func TestFetchTopicMetadataMixedTopics(t *testing.T) {
	admin, store := newTestAdmin(t, 0, 1)

	if err := admin.CreateTopicWithAssignment("orders", map[int][]int{0: {0}}, nil); err != nil {
		t.Fatalf("CreateTopicWithAssignment failed: %v", err)
	}
	writePartitionState(t, store, "orders", 0, 0, []int{0})

	results := admin.FetchTopicMetadata([]string{"ghost", "orders"}, ProtocolPlaintext)
	if len(results) != 2 {
		t.Fatalf("got %d topics, want 2", len(results))
	}
	if results[0].Name != "ghost" || results[0].Err != CodeUnknownTopic {
		t.Errorf("topic 0 = %+v, want ghost/unknown", results[0])
	}
	if results[1].Name != "orders" || results[1].Err != CodeNone {
		t.Errorf("topic 1 = %+v, want orders/none", results[1])
	}
	if results[1].Partitions[0].Err != CodeNone {
		t.Errorf("orders partition error = %v, want none", results[1].Partitions[0].Err)
	}
}

func TestFetchTopicMetadataMissingListener(t *testing.T) {
	store := coord.NewMemoryStore()
	desc := &BrokerDescriptor{
		ID:        0,
		Endpoints: map[SecurityProtocol]Endpoint{ProtocolPlaintext: {Host: "b0", Port: 9092}},
	}
	if err := RegisterBroker(store, desc); err != nil {
		t.Fatalf("RegisterBroker failed: %v", err)
	}
	admin := NewAdmin(store, NewStoreDirectory(store))

	if err := admin.CreateTopicWithAssignment("orders", map[int][]int{0: {0}}, nil); err != nil {
		t.Fatalf("CreateTopicWithAssignment failed: %v", err)
	}
	writePartitionState(t, store, "orders", 0, 0, []int{0})

	// The broker is registered but has no SSL listener.
	results := admin.FetchTopicMetadata([]string{"orders"}, ProtocolSSL)
	p := results[0].Partitions[0]
	if p.Err != CodeLeaderNotAvailable {
		t.Errorf("error = %v, want CodeLeaderNotAvailable", p.Err)
	}
}

// countingDirectory records how many broker lookups reach the backing
// directory, to observe the per-call cache.
type countingDirectory struct {
	inner   Directory
	lookups int
}

func (d *countingDirectory) BrokerInfo(id int) (*BrokerDescriptor, bool, error) {
	d.lookups++
	return d.inner.BrokerInfo(id)
}

func (d *countingDirectory) SortedBrokerIDs() ([]int, error) {
	return d.inner.SortedBrokerIDs()
}

func TestFetchTopicMetadataCachesBrokerLookups(t *testing.T) {
	admin, store := newTestAdmin(t, 0)

	assignment := map[int][]int{0: {0}, 1: {0}, 2: {0}, 3: {0}}
	if err := admin.CreateTopicWithAssignment("orders", assignment, nil); err != nil {
		t.Fatalf("CreateTopicWithAssignment failed: %v", err)
	}
	for id := 0; id < 4; id++ {
		writePartitionState(t, store, "orders", id, 0, []int{0})
	}

	counting := &countingDirectory{inner: NewStoreDirectory(store)}
	admin.directory = counting

	results := admin.FetchTopicMetadata([]string{"orders"}, ProtocolPlaintext)
	if got := results[0].Partitions; len(got) != 4 {
		t.Fatalf("got %d partitions, want 4", len(got))
	}
	if counting.lookups != 1 {
		t.Errorf("broker 0 looked up %d times, want 1", counting.lookups)
	}
}
