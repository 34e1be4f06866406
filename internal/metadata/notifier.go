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

// EntityType names the kind of entity a configuration record belongs to.
type EntityType string

const (
	// EntityTopic is a per-topic configuration entity.
	EntityTopic EntityType = "topic"
	// EntityClient is a per-client-id configuration entity (quotas).
	EntityClient EntityType = "client"
)

// ChangeTopicConfig replaces a topic's full configuration record and
// appends a change notification. Callers merge add/remove semantics into
// the full map before calling; this operation always overwrites.
func (a *Admin) ChangeTopicConfig(topic string, config map[string]string) error {
	if err := ValidateTopicName(topic); err != nil {
		return err
	}
	if err := ValidateTopicConfig(config); err != nil {
		return err
	}
	exists, err := a.TopicExists(topic)
	if err != nil {
		return err
	}
	if !exists {
		return newError(KindNotFound, "topic %q does not exist", topic)
	}
	return a.changeEntityConfig(EntityTopic, topic, config)
}

// ChangeClientIDConfig replaces a client id's full configuration record
// (quota overrides) and appends a change notification.
func (a *Admin) ChangeClientIDConfig(clientID string, config map[string]string) error {
	if clientID == "" {
		return newError(KindInvalidArgument, "client id is empty")
	}
	if err := ValidateClientConfig(config); err != nil {
		return err
	}
	return a.changeEntityConfig(EntityClient, clientID, config)
}

// EntityConfig reads the current configuration record of a topic or
// client. A missing record yields an empty map.
func (a *Admin) EntityConfig(entityType EntityType, name string) (map[string]string, error) {
	data, err := a.store.ReadData(EntityConfigPath(entityType, name))
	if errors.Is(err, coord.ErrNoNode) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, wrapError(KindOperationFailed, err, "reading %s config for %q", entityType, name)
	}
	return decodeConfig(data)
}

// changeEntityConfig writes the entity's configuration record and then
// appends one notification event to the ordered change log. The config
// write happens-before the notification append so that any reader woken by
// the notification observes the new configuration. The two writes are
// separate store operations; a crash in between leaves a config that other
// members discover on their next full reload.
func (a *Admin) changeEntityConfig(entityType EntityType, name string, config map[string]string) error {
	data, err := encodeConfig(config)
	if err != nil {
		return wrapError(KindOperationFailed, err, "encoding %s config for %q", entityType, name)
	}
	if err := a.store.UpdatePersistent(EntityConfigPath(entityType, name), data); err != nil {
		return wrapError(KindOperationFailed, err, "writing %s config for %q", entityType, name)
	}

	event, err := encodeConfigChange(entityType, name)
	if err != nil {
		return wrapError(KindOperationFailed, err, "encoding change notification for %s %q", entityType, name)
	}
	allocated, err := a.store.CreatePersistentSequential(ConfigChangesPath+"/"+ConfigChangePrefix, event)
	if err != nil {
		return wrapError(KindOperationFailed, err, "appending change notification for %s %q", entityType, name)
	}

	a.logger.Info("Config changed", "entity_type", string(entityType), "entity_name", name, "notification", allocated)
	return nil
}
