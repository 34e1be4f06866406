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
	"strconv"
)

// Per-topic configuration keys understood by the brokers. Values are kept
// as strings in the stored record; validation checks they parse into the
// expected type and range before anything is written.
const (
	ConfigRetentionMs       = "retention.ms"
	ConfigRetentionBytes    = "retention.bytes"
	ConfigSegmentBytes      = "segment.bytes"
	ConfigCleanupPolicy     = "cleanup.policy"
	ConfigMinInSyncReplicas = "min.insync.replicas"
	ConfigMaxMessageBytes   = "max.message.bytes"
)

// Per-client configuration keys (quota overrides).
const (
	ConfigProducerByteRate = "producer_byte_rate"
	ConfigConsumerByteRate = "consumer_byte_rate"
)

// ValidateTopicConfig checks a per-topic configuration map against the
// schema of known keys. Unknown keys and out-of-range values are rejected.
func ValidateTopicConfig(config map[string]string) error {
	for key, value := range config {
		switch key {
		case ConfigRetentionMs, ConfigRetentionBytes:
			// -1 means unbounded.
			if err := validateInt64(key, value, -1); err != nil {
				return err
			}
		case ConfigSegmentBytes, ConfigMaxMessageBytes:
			if err := validateInt64(key, value, 1); err != nil {
				return err
			}
		case ConfigMinInSyncReplicas:
			if err := validateInt64(key, value, 1); err != nil {
				return err
			}
		case ConfigCleanupPolicy:
			if value != "delete" && value != "compact" {
				return newError(KindValidation, "config %s must be \"delete\" or \"compact\", got %q", key, value)
			}
		default:
			return newError(KindValidation, "unknown topic config key %q", key)
		}
	}
	return nil
}

// ValidateClientConfig checks a per-client configuration map (quota
// overrides) against the schema of known keys.
func ValidateClientConfig(config map[string]string) error {
	for key, value := range config {
		switch key {
		case ConfigProducerByteRate, ConfigConsumerByteRate:
			if err := validateInt64(key, value, 0); err != nil {
				return err
			}
		default:
			return newError(KindValidation, "unknown client config key %q", key)
		}
	}
	return nil
}

func validateInt64(key, value string, min int64) error {
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return wrapError(KindValidation, err, "config %s must be an integer, got %q", key, value)
	}
	if n < min {
		return newError(KindValidation, "config %s must be at least %d, got %d", key, min, n)
	}
	return nil
}
