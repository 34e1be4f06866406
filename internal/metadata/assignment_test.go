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
	"math/rand"
	"reflect"
	"strings"
	"testing"
)

func TestAssignReplicasProducesValidPlacement(t *testing.T) {
	brokers := []int{0, 1, 2, 3, 4}
	rng := rand.New(rand.NewSource(7))

	assignment, err := AssignReplicasToBrokers(brokers, 10, 3, -1, 0, rng)
	if err != nil {
		t.Fatalf("AssignReplicasToBrokers failed: %v", err)
	}

	if len(assignment) != 10 {
		t.Fatalf("got %d partitions, want 10", len(assignment))
	}
	inFleet := make(map[int]bool)
	for _, b := range brokers {
		inFleet[b] = true
	}
	for p := 0; p < 10; p++ {
		replicas, ok := assignment[p]
		if !ok {
			t.Fatalf("partition %d missing from assignment", p)
		}
		if len(replicas) != 3 {
			t.Errorf("partition %d has %d replicas, want 3", p, len(replicas))
		}
		seen := make(map[int]bool)
		for _, b := range replicas {
			if !inFleet[b] {
				t.Errorf("partition %d placed on unknown broker %d", p, b)
			}
			if seen[b] {
				t.Errorf("partition %d has duplicate broker %d", p, b)
			}
			seen[b] = true
		}
	}
}

// Placement with a fixed start index of 0 over 5 brokers reproduces the
// canonical rotation table: leaders advance one broker per partition and
// the follower shift grows by one per full pass over the fleet.
func TestAssignReplicasCanonicalTable(t *testing.T) {
	brokers := []int{0, 1, 2, 3, 4}

	assignment, err := AssignReplicasToBrokers(brokers, 10, 3, 0, 0, nil)
	if err != nil {
		t.Fatalf("AssignReplicasToBrokers failed: %v", err)
	}

	want := map[int][]int{
		0: {0, 1, 2},
		1: {1, 2, 3},
		2: {2, 3, 4},
		3: {3, 4, 0},
		4: {4, 0, 1},
		5: {0, 2, 3},
		6: {1, 3, 4},
		7: {2, 4, 0},
		8: {3, 0, 1},
		9: {4, 1, 2},
	}
	if !reflect.DeepEqual(assignment, want) {
		t.Errorf("assignment = %v, want %v", assignment, want)
	}
}

func TestAssignReplicasDeterministicWithFixedStart(t *testing.T) {
	brokers := []int{10, 20, 30, 40}

	first, err := AssignReplicasToBrokers(brokers, 8, 2, 2, 0, nil)
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	second, err := AssignReplicasToBrokers(brokers, 8, 2, 2, 0, nil)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("fixed start index produced differing placements:\n%v\n%v", first, second)
	}
}

func TestAssignReplicasLeaderRotation(t *testing.T) {
	brokers := []int{0, 1, 2}

	// With a random start the preferred leader of partition 0 should land
	// on every broker across enough seeds.
	leaders := make(map[int]bool)
	for seed := int64(0); seed < 64; seed++ {
		rng := rand.New(rand.NewSource(seed))
		assignment, err := AssignReplicasToBrokers(brokers, 1, 1, -1, 0, rng)
		if err != nil {
			t.Fatalf("seed %d failed: %v", seed, err)
		}
		leaders[assignment[0][0]] = true
	}
	for _, b := range brokers {
		if !leaders[b] {
			t.Errorf("broker %d never chosen as preferred leader across seeds", b)
		}
	}
}

func TestAssignReplicasStartPartitionID(t *testing.T) {
	brokers := []int{0, 1, 2, 3, 4}

	assignment, err := AssignReplicasToBrokers(brokers, 2, 2, 0, 3, nil)
	if err != nil {
		t.Fatalf("AssignReplicasToBrokers failed: %v", err)
	}
	if len(assignment) != 2 {
		t.Fatalf("got %d partitions, want 2", len(assignment))
	}
	for _, id := range []int{3, 4} {
		if _, ok := assignment[id]; !ok {
			t.Errorf("expected partition %d in assignment %v", id, assignment)
		}
	}
}

func TestAssignReplicasInvalidArguments(t *testing.T) {
	brokers := []int{0, 1, 2}
	rng := rand.New(rand.NewSource(1))

	tests := []struct {
		name       string
		partitions int
		rf         int
	}{
		{"zero partitions", 0, 1},
		{"negative partitions", -3, 1},
		{"zero replication factor", 4, 0},
		{"replication factor beyond fleet", 4, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := AssignReplicasToBrokers(brokers, tt.partitions, tt.rf, -1, 0, rng)
			if !IsKind(err, KindInvalidArgument) {
				t.Errorf("got %v, want KindInvalidArgument", err)
			}
		})
	}
}

func TestParseManualAssignment(t *testing.T) {
	got, err := ParseManualAssignment("0:1:2,1:3:4", []int{1, 2, 3, 4}, 0, true)
	if err != nil {
		t.Fatalf("ParseManualAssignment failed: %v", err)
	}
	want := map[int][]int{0: {1, 2}, 1: {3, 4}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("assignment = %v, want %v", got, want)
	}
}

func TestParseManualAssignmentOffset(t *testing.T) {
	got, err := ParseManualAssignment("0:1:2,1:3:4", []int{1, 2, 3, 4}, 5, true)
	if err != nil {
		t.Fatalf("ParseManualAssignment failed: %v", err)
	}
	want := map[int][]int{5: {1, 2}, 6: {3, 4}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("assignment = %v, want %v", got, want)
	}
}

func TestParseManualAssignmentUnavailableBroker(t *testing.T) {
	_, err := ParseManualAssignment("0:1:2,1:3:5", []int{1, 2, 3, 4}, 0, true)
	if !IsKind(err, KindValidation) {
		t.Errorf("got %v, want KindValidation", err)
	}

	// The same input passes with availability checking disabled.
	if _, err := ParseManualAssignment("0:1:2,1:3:5", []int{1, 2, 3, 4}, 0, false); err != nil {
		t.Errorf("availability check disabled, got %v, want nil", err)
	}
}

func TestParseManualAssignmentErrors(t *testing.T) {
	avail := []int{1, 2, 3, 4}
	tests := []struct {
		name  string
		input string
	}{
		{"empty group", "0:1,"},
		{"no brokers", "0"},
		{"duplicate broker in group", "0:1:1"},
		{"mismatched replication factor", "0:1:2,1:3"},
		{"duplicate partition", "0:1:2,0:3:4"},
		{"non-numeric broker", "0:one"},
		{"non-numeric partition", "x:1"},
		{"negative partition", "-1:1:2"},
		{"negative partition among valid groups", "0:1:2,-2:3:2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseManualAssignment(tt.input, avail, 0, true); !IsKind(err, KindValidation) {
				t.Errorf("ParseManualAssignment(%q) = %v, want KindValidation", tt.input, err)
			}
		})
	}
}

func TestParseManualAssignmentMismatchNamesPartition(t *testing.T) {
	_, err := ParseManualAssignment("0:1:2,1:3", []int{1, 2, 3}, 0, true)
	if err == nil {
		t.Fatal("expected error")
	}
	if got := err.Error(); !strings.Contains(got, "partition 1") || !strings.Contains(got, "partition 0") {
		t.Errorf("error %q should name both the offending and reference partitions", got)
	}
}
