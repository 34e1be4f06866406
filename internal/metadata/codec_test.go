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
	"reflect"
	"testing"
)

func TestDecodeAssignment(t *testing.T) {
	data := []byte(`{"version":1,"partitions":{"0":[1,2],"1":[2,3]}}`)
	got, err := decodeAssignment(data)
	if err != nil {
		t.Fatalf("decodeAssignment failed: %v", err)
	}
	want := map[int][]int{0: {1, 2}, 1: {2, 3}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("assignment = %v, want %v", got, want)
	}
}

func TestDecodeRejectsWrongVersion(t *testing.T) {
	tests := []struct {
		name   string
		decode func([]byte) error
		data   string
	}{
		{"assignment", func(d []byte) error { _, err := decodeAssignment(d); return err }, `{"version":2,"partitions":{}}`},
		{"config", func(d []byte) error { _, err := decodeConfig(d); return err }, `{"version":0,"config":{}}`},
		{"broker", func(d []byte) error { _, err := decodeBroker(1, d); return err }, `{"version":7,"endpoints":{}}`},
		{"partition state", func(d []byte) error { _, _, err := decodePartitionState(d); return err }, `{"version":2,"leader":0,"isr":[]}`},
		{"change event", func(d []byte) error { _, err := DecodeConfigChangeEvent(d); return err }, `{"version":3,"entity_type":"topic","entity_name":"t"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.decode([]byte(tt.data)); !IsKind(err, KindProtocol) {
				t.Errorf("got %v, want KindProtocol", err)
			}
		})
	}
}

func TestDecodeRejectsMalformedInput(t *testing.T) {
	if _, err := decodeAssignment([]byte(`not json`)); !IsKind(err, KindProtocol) {
		t.Errorf("malformed assignment = %v, want KindProtocol", err)
	}
	if _, err := decodeAssignment([]byte(`{"version":1,"partitions":{"x":[1]}}`)); !IsKind(err, KindProtocol) {
		t.Errorf("non-numeric partition id = %v, want KindProtocol", err)
	}
}

func TestEncodeConfigNilMap(t *testing.T) {
	data, err := encodeConfig(nil)
	if err != nil {
		t.Fatalf("encodeConfig(nil) failed: %v", err)
	}
	got, err := decodeConfig(data)
	if err != nil {
		t.Fatalf("decodeConfig failed: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("round-tripped nil config = %v, want empty map", got)
	}
}
