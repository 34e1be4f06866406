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

	"larkmq/internal/coord"
)

// PartitionMetadata is the externally visible state of one partition:
// leader endpoint (nil when unavailable), replica and in-sync-replica
// endpoints, and a per-partition error code. A partition always produces a
// record; lookup problems are encoded in Err, never raised.
type PartitionMetadata struct {
	ID       int        `json:"id"`
	Leader   *Endpoint  `json:"leader,omitempty"`
	Replicas []Endpoint `json:"replicas"`
	ISR      []Endpoint `json:"isr"`
	Err      ErrorCode  `json:"error_code"`
}

// TopicMetadata is the consolidated metadata view of one topic. Partitions
// are ordered by ascending id.
type TopicMetadata struct {
	Name       string              `json:"name"`
	Partitions []PartitionMetadata `json:"partitions"`
	Err        ErrorCode           `json:"error_code"`
}

// BrokerInfoCache memoizes broker descriptor lookups for the duration of
// one metadata-assembly call. Assembling metadata for many partitions
// touches the same brokers repeatedly; the cache turns those into one
// remote read each. The cache is owned by a single call and is discarded
// at its end, so it needs no synchronization.
type BrokerInfoCache struct {
	directory Directory
	brokers   map[int]*BrokerDescriptor
}

// NewBrokerInfoCache creates an empty cache over the given directory.
func NewBrokerInfoCache(directory Directory) *BrokerInfoCache {
	return &BrokerInfoCache{
		directory: directory,
		brokers:   make(map[int]*BrokerDescriptor),
	}
}

// Get resolves a broker id, consulting the directory and caching the
// descriptor on first use. Only successful lookups are cached: a broker
// missing now may register before the next partition asks for it.
func (c *BrokerInfoCache) Get(id int) (*BrokerDescriptor, bool, error) {
	if desc, ok := c.brokers[id]; ok {
		return desc, true, nil
	}
	desc, ok, err := c.directory.BrokerInfo(id)
	if err != nil || !ok {
		return nil, false, err
	}
	c.brokers[id] = desc
	return desc, true, nil
}

// FetchTopicMetadata assembles the metadata view for the given topics,
// resolving endpoints for the given security protocol. The call never
// fails as a whole: unknown topics and unreachable brokers degrade into
// per-topic and per-partition error codes so that one unavailable broker
// cannot take down an entire metadata response.
func (a *Admin) FetchTopicMetadata(topics []string, protocol SecurityProtocol) []TopicMetadata {
	cache := NewBrokerInfoCache(a.directory)
	results := make([]TopicMetadata, 0, len(topics))
	for _, topic := range topics {
		results = append(results, a.fetchOneTopic(topic, protocol, cache))
	}
	return results
}

func (a *Admin) fetchOneTopic(topic string, protocol SecurityProtocol, cache *BrokerInfoCache) TopicMetadata {
	result := TopicMetadata{Name: topic, Partitions: []PartitionMetadata{}}

	assignment, err := a.TopicAssignment(topic)
	if err != nil {
		if IsKind(err, KindNotFound) {
			// A normal, expected outcome, not a system failure.
			result.Err = CodeUnknownTopic
		} else {
			a.logger.Warn("Failed to read topic assignment", "topic", topic, "error", err)
			result.Err = CodeUnknown
		}
		return result
	}

	for _, id := range sortedPartitionIDs(assignment) {
		result.Partitions = append(result.Partitions, a.fetchOnePartition(topic, id, assignment[id], protocol, cache))
	}
	return result
}

// fetchOnePartition resolves one partition's leader, replicas and ISR. The
// partial-failure policy is evaluated per partition, independent of its
// siblings: a missing or unresolvable leader records LeaderNotAvailable; an
// unresolvable replica or in-sync replica records ReplicaNotAvailable.
// Whatever did resolve is still reported.
func (a *Admin) fetchOnePartition(topic string, id int, replicas []int, protocol SecurityProtocol, cache *BrokerInfoCache) PartitionMetadata {
	pm := PartitionMetadata{
		ID:       id,
		Replicas: []Endpoint{},
		ISR:      []Endpoint{},
	}

	leader := -1
	var isr []int
	stateData, err := a.store.ReadData(TopicPartitionStatePath(topic, id))
	switch {
	case errors.Is(err, coord.ErrNoNode):
		// No state yet: the partition has never had a leader elected.
	case err != nil:
		a.logger.Warn("Failed to read partition state", "topic", topic, "partition", id, "error", err)
	default:
		if l, i, derr := decodePartitionState(stateData); derr != nil {
			a.logger.Warn("Malformed partition state", "topic", topic, "partition", id, "error", derr)
		} else {
			leader, isr = l, i
		}
	}

	replicaMissing := false
	for _, broker := range replicas {
		if ep, ok := a.resolveEndpoint(broker, protocol, cache); ok {
			pm.Replicas = append(pm.Replicas, ep)
		} else {
			replicaMissing = true
		}
	}
	for _, broker := range isr {
		if ep, ok := a.resolveEndpoint(broker, protocol, cache); ok {
			pm.ISR = append(pm.ISR, ep)
		} else {
			replicaMissing = true
		}
	}

	switch {
	case leader < 0:
		pm.Err = CodeLeaderNotAvailable
	default:
		ep, ok := a.resolveEndpoint(leader, protocol, cache)
		if !ok {
			pm.Err = CodeLeaderNotAvailable
		} else {
			pm.Leader = &ep
			if replicaMissing {
				pm.Err = CodeReplicaNotAvailable
			}
		}
	}
	return pm
}

// resolveEndpoint maps a broker id to its endpoint for the requested
// protocol via the call-scoped cache. Any failure (deregistered broker,
// store error, missing listener) reads as "not resolvable"; the caller
// encodes that in the partition's error code.
func (a *Admin) resolveEndpoint(broker int, protocol SecurityProtocol, cache *BrokerInfoCache) (Endpoint, bool) {
	desc, ok, err := cache.Get(broker)
	if err != nil {
		a.logger.Warn("Failed to resolve broker", "broker", broker, "error", err)
		return Endpoint{}, false
	}
	if !ok {
		return Endpoint{}, false
	}
	ep, ok := desc.Endpoint(protocol)
	return ep, ok
}
