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

package admin

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"larkmq/internal/notify"
)

// WebSocket keepalive tuning for the /watch stream.
const (
	watchPingInterval = 30 * time.Second
	watchPongTimeout  = 10 * time.Second
	watchWriteTimeout = 10 * time.Second
	watchSendBuffer   = 64
)

var watchUpgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// The admin API is an internal surface; origin filtering happens at
	// the network layer.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// watchEvent is one config-change record pushed to a stream client.
type watchEvent struct {
	Seq        int64  `json:"seq"`
	EntityType string `json:"entity_type"`
	EntityName string `json:"entity_name"`
}

// handleWatch upgrades to a WebSocket and streams config-change events
// until the client disconnects. Events observed while the client's buffer
// is full are dropped for that client; the ordered log in the store
// remains the source of truth.
func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	if s.watcher == nil {
		s.writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "change notifications are not enabled"})
		return
	}

	conn, err := watchUpgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("WebSocket upgrade failed", "error", err)
		return
	}

	client := newWatchConn(conn)
	defer client.Close()

	events := make(chan notify.Event, watchSendBuffer)
	unsubscribe := s.watcher.Subscribe(func(ev notify.Event) {
		select {
		case events <- ev:
		default:
		}
	})
	defer unsubscribe()

	if s.metrics != nil {
		s.metrics.WatchStreams.Inc()
		defer s.metrics.WatchStreams.Dec()
	}
	s.logger.Info("Watch stream connected", "remote", r.RemoteAddr)

	// Drain the read side so close frames and pongs are processed.
	readClosed := make(chan struct{})
	go func() {
		defer close(readClosed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-readClosed:
			s.logger.Info("Watch stream disconnected", "remote", r.RemoteAddr)
			return
		case ev := <-events:
			push := watchEvent{Seq: ev.Seq, EntityType: string(ev.EntityType), EntityName: ev.EntityName}
			if err := client.WriteJSON(push); err != nil {
				s.logger.Info("Watch stream write failed", "remote", r.RemoteAddr, "error", err)
				return
			}
			if s.metrics != nil {
				s.metrics.NotifyEvents.Inc()
			}
		}
	}
}

// watchConn wraps a WebSocket connection with thread-safe writes and a
// ping/pong keepalive.
type watchConn struct {
	conn       *websocket.Conn
	mu         sync.Mutex
	lastPong   time.Time
	pingTicker *time.Ticker
	done       chan struct{}
}

func newWatchConn(conn *websocket.Conn) *watchConn {
	c := &watchConn{
		conn:     conn,
		lastPong: time.Now(),
		done:     make(chan struct{}),
	}

	conn.SetPongHandler(func(string) error {
		c.mu.Lock()
		c.lastPong = time.Now()
		c.mu.Unlock()
		return nil
	})

	c.pingTicker = time.NewTicker(watchPingInterval)
	go c.pingLoop()
	return c
}

// pingLoop sends periodic ping frames and closes connections whose pongs
// stop arriving.
func (c *watchConn) pingLoop() {
	for {
		select {
		case <-c.done:
			return
		case <-c.pingTicker.C:
			c.mu.Lock()
			if time.Since(c.lastPong) > watchPingInterval+watchPongTimeout {
				c.mu.Unlock()
				c.conn.Close()
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(watchWriteTimeout))
			err := c.conn.WriteMessage(websocket.PingMessage, nil)
			c.mu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

func (c *watchConn) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(watchWriteTimeout))
	return c.conn.WriteJSON(v)
}

func (c *watchConn) Close() error {
	select {
	case <-c.done:
	default:
		close(c.done)
	}
	c.pingTicker.Stop()
	return c.conn.Close()
}
