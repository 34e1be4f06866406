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
Package coord provides the client-side interface to the coordination store:
a hierarchical, path-addressed, strongly consistent key-value tree.

The metadata service relies on the store's atomic create-if-absent and
ordered sequential-node primitives for all cross-process safety; it never
holds in-process locks across store calls. Two implementations are provided:
an in-memory tree for tests and single-node development, and an etcd-backed
store for production clusters.
*/
package coord

import (
	"errors"
	"strings"
)

// Sentinel errors returned by Store implementations.
var (
	// ErrNodeExists is returned by CreatePersistent when the path is
	// already present.
	ErrNodeExists = errors.New("coord: node already exists")
	// ErrNoNode is returned by ReadData when the path is absent.
	ErrNoNode = errors.New("coord: node does not exist")
	// ErrBadPath is returned when a path is not absolute or is malformed.
	ErrBadPath = errors.New("coord: malformed path")
)

// Store is the coordination-store client interface.
//
// Paths are absolute, slash-separated and never end in a slash. Writes
// create missing parent nodes implicitly. Implementations must provide
// linearizable semantics for CreatePersistent (create-if-absent) and
// CreatePersistentSequential (ordered, collision-free allocation); all
// cross-caller coordination in the metadata service depends on them.
type Store interface {
	// Exists reports whether the node at path is present.
	Exists(path string) (bool, error)

	// CreatePersistent atomically creates the node at path with the given
	// payload. Returns ErrNodeExists if the node is already present.
	CreatePersistent(path string, data []byte) error

	// CreatePersistentSequential creates a node whose name is pathPrefix
	// followed by a monotonically increasing, zero-padded sequence number,
	// and returns the allocated path. Concurrent callers never collide and
	// allocation order matches sequence order.
	CreatePersistentSequential(pathPrefix string, data []byte) (string, error)

	// ReadData returns the payload of the node at path, or ErrNoNode.
	ReadData(path string) ([]byte, error)

	// UpdatePersistent writes the payload at path, creating the node if it
	// does not exist and overwriting it if it does.
	UpdatePersistent(path string, data []byte) error

	// Children returns the names of the node's immediate children in
	// lexicographic order. A missing node yields an empty slice, not an
	// error: callers routinely list directories that may not exist yet.
	Children(path string) ([]string, error)

	// DeleteRecursive removes the node at path and everything below it.
	// Deleting a missing node is a no-op.
	DeleteRecursive(path string) error

	// Close releases any resources held by the store client.
	Close() error
}

// splitPath breaks an absolute path into its components.
// "/brokers/topics/orders" -> ["brokers", "topics", "orders"].
func splitPath(path string) ([]string, error) {
	if path == "" || path[0] != '/' || (len(path) > 1 && strings.HasSuffix(path, "/")) {
		return nil, ErrBadPath
	}
	if path == "/" {
		return nil, nil
	}
	parts := strings.Split(path[1:], "/")
	for _, p := range parts {
		if p == "" {
			return nil, ErrBadPath
		}
	}
	return parts, nil
}

// parentAndName splits a path into its parent path and final component.
func parentAndName(path string) (string, string, error) {
	parts, err := splitPath(path)
	if err != nil {
		return "", "", err
	}
	if len(parts) == 0 {
		return "", "", ErrBadPath
	}
	name := parts[len(parts)-1]
	parent := "/" + strings.Join(parts[:len(parts)-1], "/")
	if len(parts) == 1 {
		parent = "/"
	}
	return parent, name, nil
}
