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
Package metadata is the topic-administration and metadata-coordination core
of LarkMQ.

It computes how a topic's partitions are placed across the broker fleet,
creates and extends topic metadata in the coordination store under
collision and uniqueness invariants, propagates configuration changes
through an ordered notification log, and assembles the partition-indexed
metadata view served to clients.

The package performs no background work and holds no cross-call state: all
operations are synchronous calls against the coordination store, and safety
under concurrent callers comes entirely from the store's atomic
create-if-absent and sequential-append primitives.
*/
package metadata

import (
	"errors"
	"math/rand"
	"time"

	"larkmq/internal/coord"
	"larkmq/internal/logging"
)

// GroupChecker is the minimal consumer-group lookup used to gate topic
// deletion. Group tracking itself lives elsewhere in the cluster.
type GroupChecker interface {
	// TopicHasGroups reports whether any consumer group is currently
	// consuming from the topic.
	TopicHasGroups(topic string) (bool, error)
}

// Admin is the transactional facade over the coordination store for topic
// administration. It is safe for concurrent use; consistency across
// concurrent callers is provided by the store's conditional-write
// semantics, not by in-process locking.
type Admin struct {
	store     coord.Store
	directory Directory
	groups    GroupChecker
	rng       *rand.Rand
	logger    *logging.Logger
}

// NewAdmin creates an Admin over the given store and broker directory.
func NewAdmin(store coord.Store, directory Directory) *Admin {
	return &Admin{
		store:     store,
		directory: directory,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		logger:    logging.NewLogger("metadata.admin"),
	}
}

// SetGroupChecker installs the consumer-group existence check that gates
// topic deletion. Without one, deletion is never gated.
func (a *Admin) SetGroupChecker(groups GroupChecker) {
	a.groups = groups
}

// SetRand replaces the random source used for placement start indexes.
// Tests use a seeded source to make placements reproducible.
func (a *Admin) SetRand(rng *rand.Rand) {
	a.rng = rng
}

// CreateTopic computes an automatic replica placement for a new topic and
// persists it together with the topic's configuration.
func (a *Admin) CreateTopic(name string, partitions, replicationFactor int, config map[string]string) error {
	brokerIDs, err := a.directory.SortedBrokerIDs()
	if err != nil {
		return err
	}
	assignment, err := AssignReplicasToBrokers(brokerIDs, partitions, replicationFactor, -1, 0, a.rng)
	if err != nil {
		return err
	}
	return a.writeTopicAssignment(name, assignment, config, false)
}

// CreateTopicWithAssignment persists a new topic with a caller-supplied
// placement, typically parsed from a manual assignment string.
func (a *Admin) CreateTopicWithAssignment(name string, assignment map[int][]int, config map[string]string) error {
	return a.writeTopicAssignment(name, assignment, config, false)
}

// AddPartitions grows an existing topic to totalPartitions partitions. The
// new partitions' placement is computed automatically unless
// manualAssignment is non-empty, in which case it is parsed with the
// existing partition count as the id offset.
//
// Automatic placement continues the existing topic's rotation: the first
// replica broker of partition 0 is passed as the fixed start index, so the
// new partitions extend the original distribution instead of starting a
// fresh randomized one.
func (a *Admin) AddPartitions(topic string, totalPartitions int, manualAssignment string, checkBrokerAvailable bool) error {
	existing, err := a.TopicAssignment(topic)
	if err != nil {
		return err
	}

	existingCount := len(existing)
	toAdd := totalPartitions - existingCount
	if toAdd <= 0 {
		return newError(KindInvalidArgument, "topic %q already has %d partitions, %d requested", topic, existingCount, totalPartitions)
	}

	head, ok := existing[0]
	if !ok || len(head) == 0 {
		return newError(KindProtocol, "topic %q has no partition 0 in its assignment record", topic)
	}
	replicationFactor := len(head)

	brokerIDs, err := a.directory.SortedBrokerIDs()
	if err != nil {
		return err
	}

	var added map[int][]int
	if manualAssignment != "" {
		added, err = ParseManualAssignment(manualAssignment, brokerIDs, existingCount, checkBrokerAvailable)
	} else {
		added, err = AssignReplicasToBrokers(brokerIDs, toAdd, replicationFactor, head[0], existingCount, a.rng)
	}
	if err != nil {
		return err
	}

	for id, replicas := range added {
		if len(replicas) != replicationFactor {
			return newError(KindValidation, "partition %d has %d replicas, existing topic has replication factor %d", id, len(replicas), replicationFactor)
		}
	}

	merged := make(map[int][]int, existingCount+len(added))
	for id, replicas := range existing {
		merged[id] = replicas
	}
	for id, replicas := range added {
		if _, taken := merged[id]; taken {
			return newError(KindValidation, "partition %d already exists and cannot be reassigned through growth", id)
		}
		merged[id] = replicas
	}
	if len(merged) != totalPartitions {
		return newError(KindValidation, "assignment covers %d partitions, growth to %d requires ids %d through %d", len(merged), totalPartitions, existingCount, totalPartitions-1)
	}

	a.logger.Info("Adding partitions", "topic", topic, "existing", existingCount, "added", len(added))
	return a.writeTopicAssignment(topic, merged, nil, true)
}

// TopicAssignment reads a topic's current partition assignment. A missing
// topic is a NotFound failure.
func (a *Admin) TopicAssignment(topic string) (map[int][]int, error) {
	data, err := a.store.ReadData(TopicPath(topic))
	if errors.Is(err, coord.ErrNoNode) {
		return nil, newError(KindNotFound, "topic %q does not exist", topic)
	}
	if err != nil {
		return nil, wrapError(KindOperationFailed, err, "reading assignment for topic %q", topic)
	}
	return decodeAssignment(data)
}

// TopicExists reports whether the topic is present in the store.
func (a *Admin) TopicExists(topic string) (bool, error) {
	exists, err := a.store.Exists(TopicPath(topic))
	if err != nil {
		return false, wrapError(KindOperationFailed, err, "checking topic %q", topic)
	}
	return exists, nil
}

// ListTopics returns the names of all topics, sorted.
func (a *Admin) ListTopics() ([]string, error) {
	topics, err := a.store.Children(BrokerTopicsPath)
	if err != nil {
		return nil, wrapError(KindOperationFailed, err, "listing topics")
	}
	return topics, nil
}

// DeleteTopic queues a topic for deletion by writing its deletion marker.
// Deletion is gated on the topic having no active consumer groups. A
// marker already present (from a concurrent delete) is AlreadyExists.
func (a *Admin) DeleteTopic(topic string) error {
	exists, err := a.TopicExists(topic)
	if err != nil {
		return err
	}
	if !exists {
		return newError(KindNotFound, "topic %q does not exist", topic)
	}

	if a.groups != nil {
		hasGroups, err := a.groups.TopicHasGroups(topic)
		if err != nil {
			return wrapError(KindOperationFailed, err, "checking consumer groups for topic %q", topic)
		}
		if hasGroups {
			return newError(KindValidation, "topic %q still has active consumer groups", topic)
		}
	}

	err = a.store.CreatePersistent(DeleteTopicPath(topic), nil)
	if errors.Is(err, coord.ErrNodeExists) {
		return newError(KindAlreadyExists, "topic %q is already marked for deletion", topic)
	}
	if err != nil {
		return wrapError(KindOperationFailed, err, "marking topic %q for deletion", topic)
	}
	a.logger.Info("Topic marked for deletion", "topic", topic)
	return nil
}

// writeTopicAssignment is the shared write path behind topic creation and
// partition addition.
//
// For a create it enforces the uniqueness invariants (existing path,
// normalized-name collision) and writes the topic's configuration record;
// configuration cannot be altered through this path on update. The config
// record is written before the assignment record and the pair is not
// transactional: a crash between the two writes leaves a config record
// without an assignment, an accepted inconsistency window resolved by the
// next create attempt overwriting the config.
func (a *Admin) writeTopicAssignment(topic string, assignment map[int][]int, config map[string]string, update bool) error {
	if err := ValidateTopicName(topic); err != nil {
		return err
	}
	if len(assignment) == 0 {
		return newError(KindInvalidArgument, "topic %q has an empty partition assignment", topic)
	}

	// Partition ids must be dense from 0: a map of n partitions whose every
	// id lies in [0, n) covers exactly 0..n-1.
	replicationFactor := -1
	for id, replicas := range assignment {
		if id < 0 || id >= len(assignment) {
			return newError(KindValidation, "partition ids must be contiguous from 0: id %d is outside [0, %d)", id, len(assignment))
		}
		if replicationFactor < 0 {
			replicationFactor = len(replicas)
		} else if len(replicas) != replicationFactor {
			return newError(KindValidation, "partition %d has %d replicas, other partitions have %d: all partitions must share one replication factor", id, len(replicas), replicationFactor)
		}
		seen := make(map[int]bool, len(replicas))
		for _, broker := range replicas {
			if seen[broker] {
				return newError(KindValidation, "partition %d lists duplicate replica broker %d", id, broker)
			}
			seen[broker] = true
		}
	}

	if !update {
		exists, err := a.TopicExists(topic)
		if err != nil {
			return err
		}
		if exists {
			return newError(KindAlreadyExists, "topic %q already exists", topic)
		}

		existing, err := a.ListTopics()
		if err != nil {
			return err
		}
		normalized := normalizeTopicName(topic)
		for _, other := range existing {
			if other != topic && normalizeTopicName(other) == normalized {
				return newError(KindNamingCollision, "topic %q collides with existing topic %q: '.' and '_' map to the same storage path", topic, other)
			}
		}

		if err := ValidateTopicConfig(config); err != nil {
			return err
		}
		configData, err := encodeConfig(config)
		if err != nil {
			return wrapError(KindOperationFailed, err, "encoding config for topic %q", topic)
		}
		// Config before assignment: readers discover the topic through the
		// assignment record, so its config must already be in place then.
		if err := a.store.UpdatePersistent(EntityConfigPath(EntityTopic, topic), configData); err != nil {
			return wrapError(KindOperationFailed, err, "writing config for topic %q", topic)
		}
	}

	data, err := encodeAssignment(assignment)
	if err != nil {
		return wrapError(KindOperationFailed, err, "encoding assignment for topic %q", topic)
	}

	if update {
		if err := a.store.UpdatePersistent(TopicPath(topic), data); err != nil {
			return wrapError(KindOperationFailed, err, "updating assignment for topic %q", topic)
		}
		a.logger.Info("Topic assignment updated", "topic", topic, "partitions", len(assignment))
		return nil
	}

	err = a.store.CreatePersistent(TopicPath(topic), data)
	if errors.Is(err, coord.ErrNodeExists) {
		// Lost a race with a concurrent creator.
		return newError(KindAlreadyExists, "topic %q already exists", topic)
	}
	if err != nil {
		return wrapError(KindOperationFailed, err, "creating assignment for topic %q", topic)
	}
	a.logger.Info("Topic created", "topic", topic, "partitions", len(assignment), "replication_factor", replicationFactor)
	return nil
}
