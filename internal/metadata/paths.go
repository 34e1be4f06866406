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
	"fmt"
	"strings"
)

// Coordination-store path layout. Topic names become path components, which
// is why naming validation below is strict: a name that normalizes to the
// same storage path as another topic must be rejected.
const (
	// BrokerIDsPath holds one child per live broker, named by broker id.
	BrokerIDsPath = "/brokers/ids"
	// BrokerTopicsPath holds one child per topic with its assignment record.
	BrokerTopicsPath = "/brokers/topics"
	// ConfigChangesPath is the ordered config-change notification log.
	ConfigChangesPath = "/config/changes"
	// ConfigChangePrefix is the name prefix of sequential notification nodes.
	ConfigChangePrefix = "config_change_"
	// DeleteTopicsPath holds one deletion-marker child per topic queued for
	// deletion.
	DeleteTopicsPath = "/admin/delete_topics"
)

// maxTopicNameLength is the longest legal topic name.
const maxTopicNameLength = 249

// BrokerIDPath returns the registration path for one broker.
func BrokerIDPath(id int) string {
	return fmt.Sprintf("%s/%d", BrokerIDsPath, id)
}

// TopicPath returns the path of a topic's partition-assignment record.
func TopicPath(topic string) string {
	return BrokerTopicsPath + "/" + topic
}

// TopicPartitionsPath returns the parent path of a topic's partition state
// nodes.
func TopicPartitionsPath(topic string) string {
	return TopicPath(topic) + "/partitions"
}

// TopicPartitionStatePath returns the path of one partition's leader/ISR
// state record.
func TopicPartitionStatePath(topic string, partition int) string {
	return fmt.Sprintf("%s/%d/state", TopicPartitionsPath(topic), partition)
}

// EntityConfigPath returns the configuration path for a topic or client.
func EntityConfigPath(entityType EntityType, name string) string {
	return fmt.Sprintf("/config/%ss/%s", entityType, name)
}

// DeleteTopicPath returns the deletion-marker path for a topic.
func DeleteTopicPath(topic string) string {
	return DeleteTopicsPath + "/" + topic
}

// ValidateTopicName checks a topic name against the naming rules: non-empty,
// at most 249 characters, only ASCII alphanumerics plus '.', '_' and '-',
// and not "." or "..".
func ValidateTopicName(name string) error {
	if name == "" {
		return newError(KindValidation, "topic name is empty")
	}
	if name == "." || name == ".." {
		return newError(KindValidation, "topic name cannot be %q", name)
	}
	if len(name) > maxTopicNameLength {
		return newError(KindValidation, "topic name is %d characters, limit is %d", len(name), maxTopicNameLength)
	}
	for _, r := range name {
		if !legalNameRune(r) {
			return newError(KindValidation, "topic name %q contains illegal character %q", name, r)
		}
	}
	return nil
}

func legalNameRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z':
		return true
	case r >= 'A' && r <= 'Z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == '.' || r == '_' || r == '-':
		return true
	default:
		return false
	}
}

// normalizeTopicName folds the separator characters '.' and '_' together.
// Two distinct topic names whose normalized forms are equal would map to
// the same internal storage and metric identifiers, so creation rejects
// them as a naming collision.
func normalizeTopicName(name string) string {
	return strings.ReplaceAll(name, ".", "_")
}
