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
	"errors"
	"fmt"
	"sync"
	"testing"
)

func TestMemoryStoreCreateAndRead(t *testing.T) {
	s := NewMemoryStore()

	if err := s.CreatePersistent("/brokers/topics/orders", []byte("payload")); err != nil {
		t.Fatalf("CreatePersistent failed: %v", err)
	}

	data, err := s.ReadData("/brokers/topics/orders")
	if err != nil {
		t.Fatalf("ReadData failed: %v", err)
	}
	if string(data) != "payload" {
		t.Errorf("ReadData = %q, want %q", data, "payload")
	}

	// Parents are created implicitly.
	exists, err := s.Exists("/brokers/topics")
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if !exists {
		t.Error("parent /brokers/topics should exist")
	}
}

func TestMemoryStoreCreateExisting(t *testing.T) {
	s := NewMemoryStore()

	if err := s.CreatePersistent("/a/b", nil); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	if err := s.CreatePersistent("/a/b", nil); !errors.Is(err, ErrNodeExists) {
		t.Errorf("second create = %v, want ErrNodeExists", err)
	}
}

func TestMemoryStoreReadMissing(t *testing.T) {
	s := NewMemoryStore()
	if _, err := s.ReadData("/nope"); !errors.Is(err, ErrNoNode) {
		t.Errorf("ReadData missing = %v, want ErrNoNode", err)
	}
}

func TestMemoryStoreUpdateCreatesAndOverwrites(t *testing.T) {
	s := NewMemoryStore()

	if err := s.UpdatePersistent("/config/topics/orders", []byte("v1")); err != nil {
		t.Fatalf("UpdatePersistent create failed: %v", err)
	}
	if err := s.UpdatePersistent("/config/topics/orders", []byte("v2")); err != nil {
		t.Fatalf("UpdatePersistent overwrite failed: %v", err)
	}
	data, err := s.ReadData("/config/topics/orders")
	if err != nil {
		t.Fatalf("ReadData failed: %v", err)
	}
	if string(data) != "v2" {
		t.Errorf("ReadData = %q, want v2", data)
	}
}

func TestMemoryStoreChildrenSorted(t *testing.T) {
	s := NewMemoryStore()

	for _, topic := range []string{"zulu", "alpha", "mike"} {
		if err := s.CreatePersistent("/brokers/topics/"+topic, nil); err != nil {
			t.Fatalf("create %s failed: %v", topic, err)
		}
	}

	children, err := s.Children("/brokers/topics")
	if err != nil {
		t.Fatalf("Children failed: %v", err)
	}
	want := []string{"alpha", "mike", "zulu"}
	if len(children) != len(want) {
		t.Fatalf("Children = %v, want %v", children, want)
	}
	for i := range want {
		if children[i] != want[i] {
			t.Errorf("Children[%d] = %s, want %s", i, children[i], want[i])
		}
	}
}

func TestMemoryStoreChildrenMissingParent(t *testing.T) {
	s := NewMemoryStore()
	children, err := s.Children("/does/not/exist")
	if err != nil {
		t.Fatalf("Children on missing path failed: %v", err)
	}
	if len(children) != 0 {
		t.Errorf("Children = %v, want empty", children)
	}
}

func TestMemoryStoreSequentialOrderedAndGapless(t *testing.T) {
	s := NewMemoryStore()

	var paths []string
	for i := 0; i < 5; i++ {
		p, err := s.CreatePersistentSequential("/config/changes/config_change_", []byte(fmt.Sprintf("event-%d", i)))
		if err != nil {
			t.Fatalf("sequential create %d failed: %v", i, err)
		}
		paths = append(paths, p)
	}

	for i, p := range paths {
		want := fmt.Sprintf("/config/changes/config_change_%010d", i)
		if p != want {
			t.Errorf("allocation %d = %s, want %s", i, p, want)
		}
	}

	// Numbers are not reused after deletion.
	if err := s.DeleteRecursive(paths[len(paths)-1]); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	p, err := s.CreatePersistentSequential("/config/changes/config_change_", nil)
	if err != nil {
		t.Fatalf("sequential create after delete failed: %v", err)
	}
	if want := fmt.Sprintf("/config/changes/config_change_%010d", 5); p != want {
		t.Errorf("allocation after delete = %s, want %s", p, want)
	}
}

func TestMemoryStoreSequentialConcurrent(t *testing.T) {
	s := NewMemoryStore()

	const writers = 20
	var wg sync.WaitGroup
	results := make(chan string, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := s.CreatePersistentSequential("/config/changes/config_change_", nil)
			if err != nil {
				t.Errorf("sequential create failed: %v", err)
				return
			}
			results <- p
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[string]bool)
	for p := range results {
		if seen[p] {
			t.Errorf("duplicate allocation %s", p)
		}
		seen[p] = true
	}
	if len(seen) != writers {
		t.Errorf("got %d distinct allocations, want %d", len(seen), writers)
	}
}

func TestMemoryStoreDeleteRecursive(t *testing.T) {
	s := NewMemoryStore()

	paths := []string{
		"/brokers/topics/orders",
		"/brokers/topics/orders/partitions/0/state",
		"/brokers/topics/orders/partitions/1/state",
	}
	for _, p := range paths {
		if err := s.UpdatePersistent(p, []byte("x")); err != nil {
			t.Fatalf("setup write %s failed: %v", p, err)
		}
	}

	if err := s.DeleteRecursive("/brokers/topics/orders"); err != nil {
		t.Fatalf("DeleteRecursive failed: %v", err)
	}
	for _, p := range paths {
		exists, err := s.Exists(p)
		if err != nil {
			t.Fatalf("Exists failed: %v", err)
		}
		if exists {
			t.Errorf("%s still exists after recursive delete", p)
		}
	}

	// Deleting a missing subtree is a no-op.
	if err := s.DeleteRecursive("/brokers/topics/orders"); err != nil {
		t.Errorf("second DeleteRecursive = %v, want nil", err)
	}
}

func TestMemoryStoreBadPaths(t *testing.T) {
	s := NewMemoryStore()

	for _, p := range []string{"", "relative/path", "/trailing/", "//double"} {
		if _, err := s.ReadData(p); !errors.Is(err, ErrBadPath) {
			t.Errorf("ReadData(%q) = %v, want ErrBadPath", p, err)
		}
	}
}
