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
	"bytes"
	"strings"
	"testing"
)

func TestChangeTopicConfig(t *testing.T) {
	admin, store := newTestAdmin(t, 0, 1)

	if err := admin.CreateTopic("orders", 1, 1, nil); err != nil {
		t.Fatalf("CreateTopic failed: %v", err)
	}
	if err := admin.ChangeTopicConfig("orders", map[string]string{ConfigRetentionMs: "3600000"}); err != nil {
		t.Fatalf("ChangeTopicConfig failed: %v", err)
	}

	config, err := admin.EntityConfig(EntityTopic, "orders")
	if err != nil {
		t.Fatalf("EntityConfig failed: %v", err)
	}
	if config[ConfigRetentionMs] != "3600000" {
		t.Errorf("config = %v, want retention.ms=3600000", config)
	}

	events, err := store.Children(ConfigChangesPath)
	if err != nil {
		t.Fatalf("Children failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d notification events, want 1", len(events))
	}
	if !strings.HasPrefix(events[0], ConfigChangePrefix) {
		t.Errorf("event node %q lacks prefix %q", events[0], ConfigChangePrefix)
	}

	data, err := store.ReadData(ConfigChangesPath + "/" + events[0])
	if err != nil {
		t.Fatalf("ReadData failed: %v", err)
	}
	ev, err := DecodeConfigChangeEvent(data)
	if err != nil {
		t.Fatalf("DecodeConfigChangeEvent failed: %v", err)
	}
	if ev.EntityType != EntityTopic || ev.EntityName != "orders" {
		t.Errorf("event = %+v, want topic/orders", ev)
	}
}

// Repeating an identical config change is harmless: the stored record is
// byte-identical afterwards, and each call appends its own notification.
func TestChangeTopicConfigIdempotentOverwrite(t *testing.T) {
	admin, store := newTestAdmin(t, 0, 1)

	if err := admin.CreateTopic("orders", 1, 1, nil); err != nil {
		t.Fatalf("CreateTopic failed: %v", err)
	}
	config := map[string]string{ConfigRetentionMs: "3600000", ConfigCleanupPolicy: "delete"}

	if err := admin.ChangeTopicConfig("orders", config); err != nil {
		t.Fatalf("first ChangeTopicConfig failed: %v", err)
	}
	first, err := store.ReadData(EntityConfigPath(EntityTopic, "orders"))
	if err != nil {
		t.Fatalf("ReadData failed: %v", err)
	}

	if err := admin.ChangeTopicConfig("orders", config); err != nil {
		t.Fatalf("second ChangeTopicConfig failed: %v", err)
	}
	second, err := store.ReadData(EntityConfigPath(EntityTopic, "orders"))
	if err != nil {
		t.Fatalf("ReadData failed: %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Errorf("config record changed across identical writes:\n%s\n%s", first, second)
	}

	events, err := store.Children(ConfigChangesPath)
	if err != nil {
		t.Fatalf("Children failed: %v", err)
	}
	if len(events) != 2 {
		t.Errorf("got %d notification events, want 2", len(events))
	}
}

func TestChangeTopicConfigOrderedEvents(t *testing.T) {
	admin, store := newTestAdmin(t, 0, 1)

	if err := admin.CreateTopic("orders", 1, 1, nil); err != nil {
		t.Fatalf("CreateTopic failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := admin.ChangeTopicConfig("orders", map[string]string{ConfigRetentionMs: "1000"}); err != nil {
			t.Fatalf("ChangeTopicConfig %d failed: %v", i, err)
		}
	}

	events, err := store.Children(ConfigChangesPath)
	if err != nil {
		t.Fatalf("Children failed: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	for i := 1; i < len(events); i++ {
		if !(events[i-1] < events[i]) {
			t.Errorf("event names not strictly increasing: %v", events)
		}
	}
}

func TestChangeTopicConfigUnknownTopic(t *testing.T) {
	admin, _ := newTestAdmin(t, 0)

	err := admin.ChangeTopicConfig("ghost", map[string]string{ConfigRetentionMs: "1000"})
	if !IsKind(err, KindNotFound) {
		t.Errorf("ChangeTopicConfig on missing topic = %v, want KindNotFound", err)
	}
}

func TestChangeTopicConfigRejectsBadValues(t *testing.T) {
	admin, store := newTestAdmin(t, 0, 1)

	if err := admin.CreateTopic("orders", 1, 1, nil); err != nil {
		t.Fatalf("CreateTopic failed: %v", err)
	}

	tests := []struct {
		name   string
		config map[string]string
	}{
		{"unknown key", map[string]string{"flux.capacitance": "1"}},
		{"non-numeric retention", map[string]string{ConfigRetentionMs: "soon"}},
		{"retention below -1", map[string]string{ConfigRetentionBytes: "-2"}},
		{"zero segment bytes", map[string]string{ConfigSegmentBytes: "0"}},
		{"bad cleanup policy", map[string]string{ConfigCleanupPolicy: "shred"}},
		{"zero min isr", map[string]string{ConfigMinInSyncReplicas: "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := admin.ChangeTopicConfig("orders", tt.config); !IsKind(err, KindValidation) {
				t.Errorf("got %v, want KindValidation", err)
			}
		})
	}

	// Rejected changes leave no notification behind.
	events, err := store.Children(ConfigChangesPath)
	if err != nil {
		t.Fatalf("Children failed: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("rejected changes appended %d events", len(events))
	}
}

func TestChangeClientIDConfig(t *testing.T) {
	admin, store := newTestAdmin(t, 0)

	if err := admin.ChangeClientIDConfig("etl-loader", map[string]string{ConfigProducerByteRate: "1048576"}); err != nil {
		t.Fatalf("ChangeClientIDConfig failed: %v", err)
	}

	config, err := admin.EntityConfig(EntityClient, "etl-loader")
	if err != nil {
		t.Fatalf("EntityConfig failed: %v", err)
	}
	if config[ConfigProducerByteRate] != "1048576" {
		t.Errorf("config = %v, want producer_byte_rate=1048576", config)
	}

	events, err := store.Children(ConfigChangesPath)
	if err != nil {
		t.Fatalf("Children failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	data, _ := store.ReadData(ConfigChangesPath + "/" + events[0])
	ev, err := DecodeConfigChangeEvent(data)
	if err != nil {
		t.Fatalf("DecodeConfigChangeEvent failed: %v", err)
	}
	if ev.EntityType != EntityClient || ev.EntityName != "etl-loader" {
		t.Errorf("event = %+v, want client/etl-loader", ev)
	}
}

func TestChangeClientIDConfigValidation(t *testing.T) {
	admin, _ := newTestAdmin(t, 0)

	if err := admin.ChangeClientIDConfig("", nil); !IsKind(err, KindInvalidArgument) {
		t.Errorf("empty client id = %v, want KindInvalidArgument", err)
	}
	if err := admin.ChangeClientIDConfig("c1", map[string]string{ConfigConsumerByteRate: "-1"}); !IsKind(err, KindValidation) {
		t.Errorf("negative byte rate = %v, want KindValidation", err)
	}
	if err := admin.ChangeClientIDConfig("c1", map[string]string{ConfigRetentionMs: "1"}); !IsKind(err, KindValidation) {
		t.Errorf("topic key on client entity = %v, want KindValidation", err)
	}
}

func TestEntityConfigMissingIsEmpty(t *testing.T) {
	admin, _ := newTestAdmin(t, 0)

	config, err := admin.EntityConfig(EntityTopic, "ghost")
	if err != nil {
		t.Fatalf("EntityConfig failed: %v", err)
	}
	if len(config) != 0 {
		t.Errorf("config = %v, want empty map", config)
	}
}
