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
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"

	"larkmq/internal/logging"
)

// seqKeyspace is the etcd key prefix holding sequence counters. Counters
// live outside the node tree so they never show up in Children listings.
const seqKeyspace = "/__larkmq_seq"

// EtcdConfig holds connection settings for the etcd-backed store.
type EtcdConfig struct {
	// Endpoints are the etcd cluster endpoints, e.g. ["127.0.0.1:2379"].
	Endpoints []string
	// Namespace is prepended to every key so several LarkMQ clusters can
	// share one etcd cluster. May be empty.
	Namespace string
	// DialTimeout bounds the initial connection attempt.
	DialTimeout time.Duration
	// OpTimeout bounds each individual store operation. The metadata
	// service itself never retries; a timed-out operation surfaces to the
	// caller as a failure.
	OpTimeout time.Duration
}

// EtcdStore implements Store on top of an etcd cluster.
//
// Each tree node maps to one etcd key with the same path. Atomic
// create-if-absent is a transaction comparing the key's create revision to
// zero; sequential allocation is a compare-and-swap loop on a counter key
// kept under a separate keyspace.
type EtcdStore struct {
	client    *clientv3.Client
	namespace string
	opTimeout time.Duration
	logger    *logging.Logger
}

// NewEtcdStore connects to etcd and returns a Store backed by it.
func NewEtcdStore(cfg EtcdConfig) (*EtcdStore, error) {
	if len(cfg.Endpoints) == 0 {
		return nil, fmt.Errorf("coord: no etcd endpoints configured")
	}
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = 5 * time.Second
	}
	if cfg.OpTimeout == 0 {
		cfg.OpTimeout = 5 * time.Second
	}

	client, err := clientv3.New(clientv3.Config{
		Endpoints:   cfg.Endpoints,
		DialTimeout: cfg.DialTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("coord: connecting to etcd: %w", err)
	}

	return &EtcdStore{
		client:    client,
		namespace: strings.TrimSuffix(cfg.Namespace, "/"),
		opTimeout: cfg.OpTimeout,
		logger:    logging.NewLogger("coord.etcd"),
	}, nil
}

func (s *EtcdStore) opCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.opTimeout)
}

func (s *EtcdStore) key(path string) string {
	return s.namespace + path
}

// Exists reports whether the node at path is present.
func (s *EtcdStore) Exists(path string) (bool, error) {
	if _, err := splitPath(path); err != nil {
		return false, err
	}
	ctx, cancel := s.opCtx()
	defer cancel()

	resp, err := s.client.Get(ctx, s.key(path), clientv3.WithCountOnly())
	if err != nil {
		return false, fmt.Errorf("coord: exists %s: %w", path, err)
	}
	return resp.Count > 0, nil
}

// ensureParents creates any missing ancestor nodes of path with empty
// payloads. Races with concurrent creators are harmless: a lost
// create-if-absent just means someone else made the parent first.
func (s *EtcdStore) ensureParents(ctx context.Context, path string) error {
	parts, err := splitPath(path)
	if err != nil {
		return err
	}
	prefix := ""
	for _, p := range parts[:len(parts)-1] {
		prefix += "/" + p
		key := s.key(prefix)
		_, err := s.client.Txn(ctx).
			If(clientv3.Compare(clientv3.CreateRevision(key), "=", 0)).
			Then(clientv3.OpPut(key, "")).
			Commit()
		if err != nil {
			return fmt.Errorf("coord: creating parent %s: %w", prefix, err)
		}
	}
	return nil
}

// CreatePersistent atomically creates the node at path, failing with
// ErrNodeExists when the key is already present.
func (s *EtcdStore) CreatePersistent(path string, data []byte) error {
	ctx, cancel := s.opCtx()
	defer cancel()

	if err := s.ensureParents(ctx, path); err != nil {
		return err
	}

	key := s.key(path)
	resp, err := s.client.Txn(ctx).
		If(clientv3.Compare(clientv3.CreateRevision(key), "=", 0)).
		Then(clientv3.OpPut(key, string(data))).
		Commit()
	if err != nil {
		return fmt.Errorf("coord: create %s: %w", path, err)
	}
	if !resp.Succeeded {
		return ErrNodeExists
	}
	return nil
}

// CreatePersistentSequential allocates the next sequence number for
// pathPrefix with a compare-and-swap on a counter key and creates the node
// in the same transaction, so concurrent writers never collide or reorder.
func (s *EtcdStore) CreatePersistentSequential(pathPrefix string, data []byte) (string, error) {
	parentPath, _, err := parentAndName(pathPrefix)
	if err != nil {
		return "", err
	}

	ctx, cancel := s.opCtx()
	defer cancel()

	if err := s.ensureParents(ctx, pathPrefix); err != nil {
		return "", err
	}
	counterKey := seqKeyspace + s.key(pathPrefix)

	for {
		getResp, err := s.client.Get(ctx, counterKey)
		if err != nil {
			return "", fmt.Errorf("coord: reading sequence counter %s: %w", pathPrefix, err)
		}

		var next uint64
		var cmp clientv3.Cmp
		if len(getResp.Kvs) == 0 {
			next = 0
			cmp = clientv3.Compare(clientv3.CreateRevision(counterKey), "=", 0)
		} else {
			cur, perr := parseSeq(string(getResp.Kvs[0].Value))
			if perr != nil {
				return "", fmt.Errorf("coord: corrupt sequence counter %s: %w", pathPrefix, perr)
			}
			next = cur + 1
			cmp = clientv3.Compare(clientv3.ModRevision(counterKey), "=", getResp.Kvs[0].ModRevision)
		}

		allocated := fmt.Sprintf("%s%010d", pathPrefix, next)
		txnResp, err := s.client.Txn(ctx).
			If(cmp).
			Then(
				clientv3.OpPut(counterKey, fmt.Sprintf("%d", next)),
				clientv3.OpPut(s.key(allocated), string(data)),
			).
			Commit()
		if err != nil {
			return "", fmt.Errorf("coord: sequential create %s: %w", pathPrefix, err)
		}
		if txnResp.Succeeded {
			s.logger.Debug("Allocated sequential node", "path", allocated, "parent", parentPath)
			return allocated, nil
		}
		// Another writer won the counter; take the next number.
	}
}

// ReadData returns the payload of the node at path, or ErrNoNode.
func (s *EtcdStore) ReadData(path string) ([]byte, error) {
	if _, err := splitPath(path); err != nil {
		return nil, err
	}
	ctx, cancel := s.opCtx()
	defer cancel()

	resp, err := s.client.Get(ctx, s.key(path))
	if err != nil {
		return nil, fmt.Errorf("coord: read %s: %w", path, err)
	}
	if len(resp.Kvs) == 0 {
		return nil, ErrNoNode
	}
	return resp.Kvs[0].Value, nil
}

// UpdatePersistent writes the payload at path, creating the node if needed.
func (s *EtcdStore) UpdatePersistent(path string, data []byte) error {
	ctx, cancel := s.opCtx()
	defer cancel()

	if err := s.ensureParents(ctx, path); err != nil {
		return err
	}
	if _, err := s.client.Put(ctx, s.key(path), string(data)); err != nil {
		return fmt.Errorf("coord: update %s: %w", path, err)
	}
	return nil
}

// Children lists the immediate children of the node at path, sorted.
func (s *EtcdStore) Children(path string) ([]string, error) {
	if _, err := splitPath(path); err != nil {
		return nil, err
	}
	ctx, cancel := s.opCtx()
	defer cancel()

	prefix := s.key(path) + "/"
	if path == "/" {
		prefix = s.key("/")
	}
	resp, err := s.client.Get(ctx, prefix, clientv3.WithPrefix(), clientv3.WithKeysOnly())
	if err != nil {
		return nil, fmt.Errorf("coord: children %s: %w", path, err)
	}

	seen := make(map[string]struct{})
	for _, kv := range resp.Kvs {
		name, ok := childName(prefix, string(kv.Key))
		if !ok {
			continue
		}
		seen[name] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// DeleteRecursive removes the node at path and its whole subtree.
func (s *EtcdStore) DeleteRecursive(path string) error {
	parts, err := splitPath(path)
	if err != nil {
		return err
	}
	if len(parts) == 0 {
		return ErrBadPath
	}
	ctx, cancel := s.opCtx()
	defer cancel()

	key := s.key(path)
	if _, err := s.client.Delete(ctx, key); err != nil {
		return fmt.Errorf("coord: delete %s: %w", path, err)
	}
	if _, err := s.client.Delete(ctx, key+"/", clientv3.WithPrefix()); err != nil {
		return fmt.Errorf("coord: delete subtree %s: %w", path, err)
	}
	return nil
}

// Close shuts down the etcd client.
func (s *EtcdStore) Close() error {
	return s.client.Close()
}

// childName extracts the immediate child component from a key found under
// prefix. Keys nested deeper than one level report their top component, so
// "/a/b/c" under prefix "/a/" yields "b".
func childName(prefix, key string) (string, bool) {
	rest := strings.TrimPrefix(key, prefix)
	if rest == key || rest == "" {
		return "", false
	}
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		rest = rest[:i]
	}
	if rest == "" {
		return "", false
	}
	return rest, true
}

// parseSeq parses a sequence counter payload.
func parseSeq(s string) (uint64, error) {
	var n uint64
	if _, err := fmt.Sscanf(s, "%d", &n); err != nil {
		return 0, err
	}
	return n, nil
}
