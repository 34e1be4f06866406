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
	"fmt"
)

// Kind classifies a metadata operation failure. Every error crossing the
// package boundary carries exactly one Kind so callers can react without
// string matching.
type Kind int

const (
	// KindInvalidArgument: malformed partition counts or replication factors.
	KindInvalidArgument Kind = iota + 1
	// KindValidation: manual assignment mismatches, duplicate replicas,
	// illegal topic names.
	KindValidation
	// KindAlreadyExists: the topic (or deletion marker) is already present,
	// including concurrent creation detected by the coordination store.
	KindAlreadyExists
	// KindNamingCollision: the topic name collides with an existing topic
	// under normalized-name comparison.
	KindNamingCollision
	// KindNotFound: the operation targets a topic that does not exist.
	KindNotFound
	// KindProtocol: a stored record is malformed or has the wrong version.
	KindProtocol
	// KindOperationFailed: an opaque coordination-store failure.
	KindOperationFailed
)

// String returns the string representation of the failure kind.
func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid_argument"
	case KindValidation:
		return "validation_error"
	case KindAlreadyExists:
		return "already_exists"
	case KindNamingCollision:
		return "naming_collision"
	case KindNotFound:
		return "not_found"
	case KindProtocol:
		return "protocol_error"
	case KindOperationFailed:
		return "operation_failed"
	default:
		return "unknown"
	}
}

// Error is the typed failure returned by metadata operations.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the underlying cause to errors.Is / errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// newError creates a typed error without an underlying cause.
func newError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// wrapError creates a typed error wrapping cause.
func wrapError(kind Kind, cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// KindOf returns the Kind carried by err, or 0 if err is not a metadata
// error.
func KindOf(err error) Kind {
	var me *Error
	if errors.As(err, &me) {
		return me.Kind
	}
	return 0
}

// IsKind reports whether err carries the given failure kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// ErrorCode is the per-topic / per-partition status embedded in metadata
// query results. Unlike Error values these are data, not failures: a
// metadata query degrades gracefully instead of aborting when part of the
// cluster is unavailable. The numeric values follow the broker wire
// protocol's error-code table.
type ErrorCode int16

const (
	// CodeUnknown reports an unclassified failure while assembling one
	// topic's metadata.
	CodeUnknown ErrorCode = -1
	// CodeNone means the partition or topic resolved cleanly.
	CodeNone ErrorCode = 0
	// CodeUnknownTopic means the topic does not exist in the store.
	CodeUnknownTopic ErrorCode = 3
	// CodeLeaderNotAvailable means the partition currently has no leader.
	CodeLeaderNotAvailable ErrorCode = 5
	// CodeReplicaNotAvailable means a replica or in-sync replica could not
	// be resolved to a live broker.
	CodeReplicaNotAvailable ErrorCode = 9
)

// String returns the string representation of the result code.
func (c ErrorCode) String() string {
	switch c {
	case CodeUnknown:
		return "unknown"
	case CodeNone:
		return "none"
	case CodeUnknownTopic:
		return "unknown_topic"
	case CodeLeaderNotAvailable:
		return "leader_not_available"
	case CodeReplicaNotAvailable:
		return "replica_not_available"
	default:
		return fmt.Sprintf("code(%d)", int16(c))
	}
}
