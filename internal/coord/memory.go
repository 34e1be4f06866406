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

package coord

import (
	"fmt"
	"sort"
	"sync"
)

// node is one entry in the in-memory tree.
type node struct {
	data     []byte
	children map[string]*node
	// nextSeq is the per-parent counter backing sequential creation.
	// It only ever increases, so sequence numbers are never reused even
	// after children are deleted.
	nextSeq uint64
}

func newNode() *node {
	return &node{children: make(map[string]*node)}
}

// MemoryStore is an in-process Store backed by a mutex-guarded tree.
// It is used by tests and by single-node development deployments.
type MemoryStore struct {
	mu   sync.Mutex
	root *node
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{root: newNode()}
}

// lookup walks the tree to the node at path. Returns nil if absent.
func (s *MemoryStore) lookup(parts []string) *node {
	cur := s.root
	for _, p := range parts {
		next, ok := cur.children[p]
		if !ok {
			return nil
		}
		cur = next
	}
	return cur
}

// ensure walks the tree to the node at path, creating missing nodes with
// empty payloads along the way.
func (s *MemoryStore) ensure(parts []string) *node {
	cur := s.root
	for _, p := range parts {
		next, ok := cur.children[p]
		if !ok {
			next = newNode()
			cur.children[p] = next
		}
		cur = next
	}
	return cur
}

// Exists reports whether the node at path is present.
func (s *MemoryStore) Exists(path string) (bool, error) {
	parts, err := splitPath(path)
	if err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookup(parts) != nil, nil
}

// CreatePersistent creates the node at path, failing with ErrNodeExists if
// it is already present. Missing parents are created implicitly.
func (s *MemoryStore) CreatePersistent(path string, data []byte) error {
	parts, err := splitPath(path)
	if err != nil {
		return err
	}
	if len(parts) == 0 {
		return ErrNodeExists // the root always exists
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	parent := s.ensure(parts[:len(parts)-1])
	name := parts[len(parts)-1]
	if _, ok := parent.children[name]; ok {
		return ErrNodeExists
	}
	n := newNode()
	n.data = append([]byte(nil), data...)
	parent.children[name] = n
	return nil
}

// CreatePersistentSequential appends a zero-padded sequence number to
// pathPrefix and creates the resulting node, returning its full path.
func (s *MemoryStore) CreatePersistentSequential(pathPrefix string, data []byte) (string, error) {
	parentPath, namePrefix, err := parentAndName(pathPrefix)
	if err != nil {
		return "", err
	}
	parentParts, err := splitPath(parentPath)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	parent := s.ensure(parentParts)
	name := fmt.Sprintf("%s%010d", namePrefix, parent.nextSeq)
	parent.nextSeq++

	n := newNode()
	n.data = append([]byte(nil), data...)
	parent.children[name] = n

	if parentPath == "/" {
		return "/" + name, nil
	}
	return parentPath + "/" + name, nil
}

// ReadData returns the payload of the node at path, or ErrNoNode.
func (s *MemoryStore) ReadData(path string) ([]byte, error) {
	parts, err := splitPath(path)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.lookup(parts)
	if n == nil {
		return nil, ErrNoNode
	}
	return append([]byte(nil), n.data...), nil
}

// UpdatePersistent writes the payload at path, creating the node if needed.
func (s *MemoryStore) UpdatePersistent(path string, data []byte) error {
	parts, err := splitPath(path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.ensure(parts)
	n.data = append([]byte(nil), data...)
	return nil
}

// Children returns the names of the node's immediate children, sorted.
// A missing node yields an empty slice.
func (s *MemoryStore) Children(path string) ([]string, error) {
	parts, err := splitPath(path)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.lookup(parts)
	if n == nil {
		return nil, nil
	}
	names := make([]string, 0, len(n.children))
	for name := range n.children {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// DeleteRecursive removes the node at path and its whole subtree.
func (s *MemoryStore) DeleteRecursive(path string) error {
	parts, err := splitPath(path)
	if err != nil {
		return err
	}
	if len(parts) == 0 {
		return ErrBadPath // refuse to delete the root
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	parent := s.lookup(parts[:len(parts)-1])
	if parent == nil {
		return nil
	}
	delete(parent.children, parts[len(parts)-1])
	return nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}

// Dump returns a flat listing of all paths and payload sizes, useful in
// test failure output.
func (s *MemoryStore) Dump() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []string
	var walk func(prefix string, n *node)
	walk = func(prefix string, n *node) {
		names := make([]string, 0, len(n.children))
		for name := range n.children {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			child := n.children[name]
			p := prefix + "/" + name
			out = append(out, fmt.Sprintf("%s (%d bytes)", p, len(child.data)))
			walk(p, child)
		}
	}
	walk("", s.root)
	if out == nil {
		out = []string{}
	}
	return out
}
