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
	"strconv"
	"strings"
)

// AssignReplicasToBrokers computes a replica placement for nPartitions new
// partitions across brokerList, replicationFactor replicas each.
//
// The first replica of partition p lands on broker (p + startIndex) mod N,
// so the preferred-leader role rotates evenly across the fleet. The
// remaining replicas are placed with an increasing shift: the shift grows
// by one each time the partition counter completes a full pass over the
// broker list, which keeps a leader from always being paired with the same
// followers.
//
// When fixedStartIndex is negative, startIndex and the initial shift are
// drawn from rng, and the placement is randomized. A non-negative
// fixedStartIndex pins both, making the placement fully deterministic;
// topic expansion uses this to continue an existing topic's rotation.
// startPartitionID is the id of the first partition produced (0 for a new
// topic, the current partition count when extending).
func AssignReplicasToBrokers(brokerList []int, nPartitions, replicationFactor, fixedStartIndex, startPartitionID int, rng *rand.Rand) (map[int][]int, error) {
	if nPartitions <= 0 {
		return nil, newError(KindInvalidArgument, "number of partitions must be positive, got %d", nPartitions)
	}
	if replicationFactor <= 0 {
		return nil, newError(KindInvalidArgument, "replication factor must be positive, got %d", replicationFactor)
	}
	if replicationFactor > len(brokerList) {
		return nil, newError(KindInvalidArgument, "replication factor %d cannot exceed the number of available brokers %d", replicationFactor, len(brokerList))
	}

	nBrokers := len(brokerList)
	startIndex := fixedStartIndex
	nextReplicaShift := fixedStartIndex
	if fixedStartIndex < 0 {
		if rng == nil {
			return nil, newError(KindInvalidArgument, "randomized placement requires a random source")
		}
		startIndex = rng.Intn(nBrokers)
		nextReplicaShift = rng.Intn(nBrokers)
	}
	if startPartitionID < 0 {
		startPartitionID = 0
	}

	assignment := make(map[int][]int, nPartitions)
	currentPartitionID := startPartitionID
	for i := 0; i < nPartitions; i++ {
		if currentPartitionID > 0 && currentPartitionID%nBrokers == 0 {
			nextReplicaShift++
		}
		firstReplicaIndex := (currentPartitionID + startIndex) % nBrokers
		replicas := make([]int, 0, replicationFactor)
		replicas = append(replicas, brokerList[firstReplicaIndex])
		for j := 0; j < replicationFactor-1; j++ {
			replicas = append(replicas, brokerList[followerIndex(firstReplicaIndex, nextReplicaShift, j, nBrokers)])
		}
		assignment[currentPartitionID] = replicas
		currentPartitionID++
	}
	return assignment, nil
}

// followerIndex places the j-th follower of a partition whose leader sits
// at firstReplicaIndex. The "-1" keeps a follower from landing on the
// leader's own broker.
func followerIndex(firstReplicaIndex, shift, j, nBrokers int) int {
	step := 1 + (shift+j)%(nBrokers-1)
	return (firstReplicaIndex + step) % nBrokers
}

// ParseManualAssignment parses an explicit partition placement of the form
// "partition:broker:broker,partition:broker:broker". Groups are separated
// by commas; within a group the first colon-separated token is the
// partition id (relative to startPartitionID) and the remaining tokens are
// that partition's replica brokers in preference order.
//
// Every group must name at least one broker, list no broker twice, use a
// non-negative partition id, and carry the same replication factor as the
// first group. When
// checkBrokerAvailable is set (disabled only in test scenarios), every
// referenced broker must appear in availableBrokers.
func ParseManualAssignment(input string, availableBrokers []int, startPartitionID int, checkBrokerAvailable bool) (map[int][]int, error) {
	available := make(map[int]bool, len(availableBrokers))
	for _, id := range availableBrokers {
		available[id] = true
	}

	assignment := make(map[int][]int)
	firstRF := -1
	firstPartition := 0
	for _, group := range strings.Split(input, ",") {
		tokens := strings.Split(strings.TrimSpace(group), ":")
		if len(tokens) < 2 {
			return nil, newError(KindValidation, "assignment group %q must name a partition and at least one broker", group)
		}

		relative, err := strconv.Atoi(strings.TrimSpace(tokens[0]))
		if err != nil {
			return nil, wrapError(KindValidation, err, "assignment group %q has a non-numeric partition id", group)
		}
		if relative < 0 {
			return nil, newError(KindValidation, "assignment group %q has a negative partition id", group)
		}
		partitionID := startPartitionID + relative

		replicas := make([]int, 0, len(tokens)-1)
		seen := make(map[int]bool, len(tokens)-1)
		for _, tok := range tokens[1:] {
			id, err := strconv.Atoi(strings.TrimSpace(tok))
			if err != nil {
				return nil, wrapError(KindValidation, err, "assignment group %q has a non-numeric broker id", group)
			}
			if seen[id] {
				return nil, newError(KindValidation, "partition %d lists broker %d more than once", partitionID, id)
			}
			if checkBrokerAvailable && !available[id] {
				return nil, newError(KindValidation, "partition %d references broker %d which is not available", partitionID, id)
			}
			seen[id] = true
			replicas = append(replicas, id)
		}

		if _, dup := assignment[partitionID]; dup {
			return nil, newError(KindValidation, "partition %d is assigned more than once", partitionID)
		}
		if firstRF < 0 {
			firstRF = len(replicas)
			firstPartition = partitionID
		} else if len(replicas) != firstRF {
			return nil, newError(KindValidation, "partition %d has replication factor %d, but partition %d has %d", partitionID, len(replicas), firstPartition, firstRF)
		}
		assignment[partitionID] = replicas
	}
	return assignment, nil
}
