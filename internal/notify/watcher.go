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

// Package notify observes the ordered configuration-change log in the
// coordination store and delivers change events to in-process subscribers.
package notify

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"larkmq/internal/coord"
	"larkmq/internal/logging"
	"larkmq/internal/metadata"
)

// Event is one observed configuration change, tagged with the sequence
// number the store assigned to its notification node.
type Event struct {
	Seq        int64
	EntityType metadata.EntityType
	EntityName string
}

// Handler receives change events. Handlers run on the watcher's poll
// goroutine and must not block.
type Handler func(Event)

// Config controls watcher behavior.
type Config struct {
	// PollInterval is how often the change log is scanned. Zero means one
	// second.
	PollInterval time.Duration

	// ReplayExisting delivers events already present in the log when the
	// watcher starts. By default the watcher starts at the tail and only
	// delivers changes made after Start.
	ReplayExisting bool
}

// Watcher polls the configuration-change log and fans events out to
// subscribers in sequence order. Every subscriber sees every event exactly
// once, in the order the store assigned.
type Watcher struct {
	mu       sync.RWMutex
	store    coord.Store
	config   Config
	handlers map[int]Handler
	nextID   int
	lastSeq  int64
	logger   *logging.Logger
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewWatcher creates a watcher over the given store.
func NewWatcher(store coord.Store, cfg Config) *Watcher {
	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		store:    store,
		config:   cfg,
		handlers: make(map[int]Handler),
		lastSeq:  -1,
		logger:   logging.NewLogger("notify"),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Subscribe registers a handler for future events and returns a function
// that removes it again. Subscribing after Start is allowed; the new
// handler sees events from the next poll onward. Callers with a bounded
// lifetime (a network stream, a request) must call the returned function
// when they are done, or their handler keeps firing forever.
func (w *Watcher) Subscribe(h Handler) (unsubscribe func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	id := w.nextID
	w.nextID++
	w.handlers[id] = h
	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		delete(w.handlers, id)
	}
}

// SubscriberCount reports how many handlers are currently registered.
func (w *Watcher) SubscriberCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.handlers)
}

// Start positions the watcher in the change log and begins polling.
func (w *Watcher) Start() error {
	if !w.config.ReplayExisting {
		seq, err := w.tailSeq()
		if err != nil {
			return err
		}
		w.lastSeq = seq
	}

	w.wg.Add(1)
	go w.pollLoop()
	w.logger.Info("Config change watcher started", "last_seq", w.lastSeq, "replay", w.config.ReplayExisting)
	return nil
}

// Stop terminates the poll loop and waits for it to exit.
func (w *Watcher) Stop() {
	w.cancel()
	w.wg.Wait()
	w.logger.Info("Config change watcher stopped")
}

// tailSeq returns the highest sequence number currently in the log, or -1
// when the log is empty.
func (w *Watcher) tailSeq() (int64, error) {
	names, err := w.store.Children(metadata.ConfigChangesPath)
	if err != nil {
		return 0, err
	}
	tail := int64(-1)
	for _, name := range names {
		seq, ok := parseChangeSeq(name)
		if !ok {
			continue
		}
		if seq > tail {
			tail = seq
		}
	}
	return tail, nil
}

func (w *Watcher) pollLoop() {
	defer w.wg.Done()

	interval := w.config.PollInterval
	if interval == 0 {
		interval = time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			w.poll()
		}
	}
}

// poll scans the change log once and delivers everything newer than the
// last delivered sequence number, in order.
func (w *Watcher) poll() {
	names, err := w.store.Children(metadata.ConfigChangesPath)
	if err != nil {
		w.logger.Warn("Failed to list config changes", "error", err)
		return
	}

	pending := make([]int64, 0, len(names))
	for _, name := range names {
		seq, ok := parseChangeSeq(name)
		if !ok {
			continue
		}
		if seq > w.lastSeq {
			pending = append(pending, seq)
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i] < pending[j] })

	for _, seq := range pending {
		path := metadata.ConfigChangesPath + "/" + changeNodeName(seq)
		data, err := w.store.ReadData(path)
		if err != nil {
			// The node may have been purged between listing and reading.
			w.logger.Warn("Failed to read config change", "seq", seq, "error", err)
			w.lastSeq = seq
			continue
		}
		ev, err := metadata.DecodeConfigChangeEvent(data)
		if err != nil {
			w.logger.Warn("Skipping malformed config change", "seq", seq, "error", err)
			w.lastSeq = seq
			continue
		}

		w.dispatch(Event{Seq: seq, EntityType: ev.EntityType, EntityName: ev.EntityName})
		w.lastSeq = seq
	}
}

func (w *Watcher) dispatch(ev Event) {
	w.mu.RLock()
	handlers := make([]Handler, 0, len(w.handlers))
	for _, h := range w.handlers {
		handlers = append(handlers, h)
	}
	w.mu.RUnlock()

	for _, h := range handlers {
		h(ev)
	}
}

// parseChangeSeq extracts the sequence number from a notification node
// name like "config_change_0000000007".
func parseChangeSeq(name string) (int64, bool) {
	suffix, found := strings.CutPrefix(name, metadata.ConfigChangePrefix)
	if !found {
		return 0, false
	}
	seq, err := strconv.ParseInt(suffix, 10, 64)
	if err != nil {
		return 0, false
	}
	return seq, true
}

func changeNodeName(seq int64) string {
	return fmt.Sprintf("%s%010d", metadata.ConfigChangePrefix, seq)
}
