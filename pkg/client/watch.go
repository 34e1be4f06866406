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

package client

import (
	"context"
	"fmt"
	"strings"

	"github.com/gorilla/websocket"
)

// ConfigChange is one event from the config-change stream.
type ConfigChange struct {
	Seq        int64  `json:"seq"`
	EntityType string `json:"entity_type"`
	EntityName string `json:"entity_name"`
}

// WatchStream is an open connection to the admin API's config-change
// stream.
type WatchStream struct {
	conn *websocket.Conn
}

// Watch opens the config-change stream. The caller must Close the
// returned stream.
func (c *Client) Watch(ctx context.Context) (*WatchStream, error) {
	wsURL := c.baseURL + "/api/v1/watch"
	switch {
	case strings.HasPrefix(wsURL, "https://"):
		wsURL = "wss://" + strings.TrimPrefix(wsURL, "https://")
	case strings.HasPrefix(wsURL, "http://"):
		wsURL = "ws://" + strings.TrimPrefix(wsURL, "http://")
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("opening watch stream: %w (HTTP %d)", err, resp.StatusCode)
		}
		return nil, fmt.Errorf("opening watch stream: %w", err)
	}
	return &WatchStream{conn: conn}, nil
}

// Next blocks until the next config-change event arrives or the stream
// closes.
func (s *WatchStream) Next() (ConfigChange, error) {
	var ev ConfigChange
	if err := s.conn.ReadJSON(&ev); err != nil {
		return ConfigChange{}, err
	}
	return ev, nil
}

// Close terminates the stream.
func (s *WatchStream) Close() error {
	return s.conn.Close()
}
