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
	"encoding/json"
	"sort"
	"strconv"
)

// recordVersion is the only record format version this service reads or
// writes. Readers reject any other version with a protocol error rather
// than guessing at the layout.
const recordVersion = 1

// assignmentRecord is the stored form of a topic's partition assignment:
// {"version":1,"partitions":{"0":[1,2],"1":[2,3]}}.
type assignmentRecord struct {
	Version    int              `json:"version"`
	Partitions map[string][]int `json:"partitions"`
}

func encodeAssignment(assignment map[int][]int) ([]byte, error) {
	rec := assignmentRecord{
		Version:    recordVersion,
		Partitions: make(map[string][]int, len(assignment)),
	}
	for id, replicas := range assignment {
		rec.Partitions[strconv.Itoa(id)] = replicas
	}
	return json.Marshal(rec)
}

func decodeAssignment(data []byte) (map[int][]int, error) {
	var rec assignmentRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, wrapError(KindProtocol, err, "malformed assignment record")
	}
	if rec.Version != recordVersion {
		return nil, newError(KindProtocol, "assignment record has version %d, expected %d", rec.Version, recordVersion)
	}
	out := make(map[int][]int, len(rec.Partitions))
	for idStr, replicas := range rec.Partitions {
		id, err := strconv.Atoi(idStr)
		if err != nil {
			return nil, wrapError(KindProtocol, err, "assignment record has non-numeric partition id %q", idStr)
		}
		out[id] = replicas
	}
	return out, nil
}

// configRecord is the stored form of an entity's configuration:
// {"version":1,"config":{"retention.ms":"86400000"}}.
type configRecord struct {
	Version int               `json:"version"`
	Config  map[string]string `json:"config"`
}

func encodeConfig(config map[string]string) ([]byte, error) {
	if config == nil {
		config = map[string]string{}
	}
	return json.Marshal(configRecord{Version: recordVersion, Config: config})
}

func decodeConfig(data []byte) (map[string]string, error) {
	var rec configRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, wrapError(KindProtocol, err, "malformed config record")
	}
	if rec.Version != recordVersion {
		return nil, newError(KindProtocol, "config record has version %d, expected %d", rec.Version, recordVersion)
	}
	if rec.Config == nil {
		rec.Config = map[string]string{}
	}
	return rec.Config, nil
}

// brokerRecord is the stored form of a broker registration:
// {"version":1,"endpoints":{"PLAINTEXT":{"host":"b1","port":9092}}}.
type brokerRecord struct {
	Version   int                           `json:"version"`
	Endpoints map[SecurityProtocol]Endpoint `json:"endpoints"`
}

func encodeBroker(desc *BrokerDescriptor) ([]byte, error) {
	return json.Marshal(brokerRecord{Version: recordVersion, Endpoints: desc.Endpoints})
}

func decodeBroker(id int, data []byte) (*BrokerDescriptor, error) {
	var rec brokerRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, wrapError(KindProtocol, err, "malformed broker record for broker %d", id)
	}
	if rec.Version != recordVersion {
		return nil, newError(KindProtocol, "broker record for broker %d has version %d, expected %d", id, rec.Version, recordVersion)
	}
	return &BrokerDescriptor{ID: id, Endpoints: rec.Endpoints}, nil
}

// partitionStateRecord is the stored leader/ISR state of one partition:
// {"version":1,"leader":1,"isr":[1,2]}. A leader of -1 means none.
type partitionStateRecord struct {
	Version int   `json:"version"`
	Leader  int   `json:"leader"`
	ISR     []int `json:"isr"`
}

func encodePartitionState(leader int, isr []int) ([]byte, error) {
	return json.Marshal(partitionStateRecord{Version: recordVersion, Leader: leader, ISR: isr})
}

func decodePartitionState(data []byte) (leader int, isr []int, err error) {
	var rec partitionStateRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return 0, nil, wrapError(KindProtocol, err, "malformed partition state record")
	}
	if rec.Version != recordVersion {
		return 0, nil, newError(KindProtocol, "partition state record has version %d, expected %d", rec.Version, recordVersion)
	}
	return rec.Leader, rec.ISR, nil
}

// ConfigChangeEvent is one record of the ordered configuration-change
// notification log. Events are append-only and immutable; other cluster
// members observe them to learn that an entity's configuration changed.
type ConfigChangeEvent struct {
	Version    int        `json:"version"`
	EntityType EntityType `json:"entity_type"`
	EntityName string     `json:"entity_name"`
}

func encodeConfigChange(entityType EntityType, entityName string) ([]byte, error) {
	return json.Marshal(ConfigChangeEvent{
		Version:    recordVersion,
		EntityType: entityType,
		EntityName: entityName,
	})
}

// DecodeConfigChangeEvent parses a stored notification record, enforcing
// the record version.
func DecodeConfigChangeEvent(data []byte) (ConfigChangeEvent, error) {
	var ev ConfigChangeEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return ConfigChangeEvent{}, wrapError(KindProtocol, err, "malformed config change record")
	}
	if ev.Version != recordVersion {
		return ConfigChangeEvent{}, newError(KindProtocol, "config change record has version %d, expected %d", ev.Version, recordVersion)
	}
	return ev, nil
}

// sortedPartitionIDs returns a topic assignment's partition ids in
// ascending numeric order.
func sortedPartitionIDs(assignment map[int][]int) []int {
	ids := make([]int, 0, len(assignment))
	for id := range assignment {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
