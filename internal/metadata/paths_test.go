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
	"strings"
	"testing"
)

func TestPathLayout(t *testing.T) {
	tests := []struct {
		got  string
		want string
	}{
		{BrokerIDPath(3), "/brokers/ids/3"},
		{TopicPath("orders"), "/brokers/topics/orders"},
		{TopicPartitionStatePath("orders", 2), "/brokers/topics/orders/partitions/2/state"},
		{EntityConfigPath(EntityTopic, "orders"), "/config/topics/orders"},
		{EntityConfigPath(EntityClient, "etl"), "/config/clients/etl"},
		{DeleteTopicPath("orders"), "/admin/delete_topics/orders"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}

func TestValidateTopicName(t *testing.T) {
	valid := []string{"orders", "web.events", "a", "A-1_b.2", strings.Repeat("x", 249)}
	for _, name := range valid {
		if err := ValidateTopicName(name); err != nil {
			t.Errorf("ValidateTopicName(%q) = %v, want nil", name, err)
		}
	}

	invalid := []string{"", ".", "..", "has space", "slash/y", "tab\tname", "ünicode", strings.Repeat("x", 250)}
	for _, name := range invalid {
		if err := ValidateTopicName(name); !IsKind(err, KindValidation) {
			t.Errorf("ValidateTopicName(%q) = %v, want KindValidation", name, err)
		}
	}
}

func TestNormalizeTopicName(t *testing.T) {
	if normalizeTopicName("web.events") != normalizeTopicName("web_events") {
		t.Error("'.' and '_' must normalize to the same form")
	}
	if normalizeTopicName("orders") == normalizeTopicName("events") {
		t.Error("distinct names must not collide")
	}
}
