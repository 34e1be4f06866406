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
Package client provides the LarkMQ admin API Go client.

QUICK START:
============

	c := client.New("http://localhost:9096")

	err := c.CreateTopic(ctx, client.CreateTopicRequest{
	    Name:              "orders",
	    Partitions:        8,
	    ReplicationFactor: 3,
	})

	topics, err := c.ListTopics(ctx)

ERROR HANDLING:
===============
Failed API calls return *APIError carrying the HTTP status and the
server's error kind:

	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusConflict {
	    // topic already exists
	}

THREAD SAFETY:
==============
The client is safe for concurrent use by multiple goroutines.
*/
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultTimeout = 10 * time.Second

// Options configures the client.
type Options struct {
	// Timeout bounds each request. Zero means ten seconds.
	Timeout time.Duration

	// HTTPClient overrides the underlying HTTP client. When set, Timeout
	// is ignored.
	HTTPClient *http.Client
}

// Client talks to the LarkMQ admin REST API.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the admin API at the given base URL, for
// example "http://localhost:9096".
func New(baseURL string) *Client {
	return NewWithOptions(baseURL, Options{})
}

// NewWithOptions creates a client with custom options.
func NewWithOptions(baseURL string, opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout == 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// APIError is a non-2xx reply from the admin API.
type APIError struct {
	Status  int
	Kind    string
	Message string
}

func (e *APIError) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("admin API: %s (%s, HTTP %d)", e.Message, e.Kind, e.Status)
	}
	return fmt.Sprintf("admin API: %s (HTTP %d)", e.Message, e.Status)
}

// CreateTopicRequest describes a topic to create. When Assignment is set
// it overrides automatic placement; the format is one partition per
// comma-separated group, brokers colon-separated: "0:1:2,1:2:0".
type CreateTopicRequest struct {
	Name              string            `json:"name"`
	Partitions        int               `json:"partitions"`
	ReplicationFactor int               `json:"replication_factor"`
	Assignment        string            `json:"assignment,omitempty"`
	Config            map[string]string `json:"config,omitempty"`
}

// Topic is a topic's replica assignment and configuration.
type Topic struct {
	Name       string            `json:"name"`
	Partitions map[string][]int  `json:"partitions"`
	Config     map[string]string `json:"config"`
}

// Broker is one registered broker with its listener endpoints keyed by
// security protocol.
type Broker struct {
	ID        int                 `json:"id"`
	Endpoints map[string]Endpoint `json:"endpoints"`
}

// Endpoint is one host:port a broker listens on.
type Endpoint struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// PartitionMetadata describes one partition: its leader and replica
// endpoints as resolved against the live broker set.
type PartitionMetadata struct {
	ID       int        `json:"id"`
	Err      int16      `json:"error_code"`
	Leader   *Endpoint  `json:"leader,omitempty"`
	Replicas []Endpoint `json:"replicas"`
	ISR      []Endpoint `json:"isr"`
}

// TopicMetadata describes one topic's partitions for client bootstrap.
type TopicMetadata struct {
	Name       string              `json:"name"`
	Err        int16               `json:"error_code"`
	Partitions []PartitionMetadata `json:"partitions"`
}

// Health verifies the admin API is reachable.
func (c *Client) Health(ctx context.Context) error {
	return c.call(ctx, http.MethodGet, "/api/v1/health", nil, nil)
}

// CreateTopic creates a topic.
func (c *Client) CreateTopic(ctx context.Context, req CreateTopicRequest) error {
	return c.call(ctx, http.MethodPost, "/api/v1/topics", req, nil)
}

// ListTopics returns all topic names in ascending order.
func (c *Client) ListTopics(ctx context.Context) ([]string, error) {
	var resp struct {
		Topics []string `json:"topics"`
	}
	if err := c.call(ctx, http.MethodGet, "/api/v1/topics", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Topics, nil
}

// DescribeTopic returns a topic's assignment and configuration.
func (c *Client) DescribeTopic(ctx context.Context, name string) (*Topic, error) {
	var topic Topic
	if err := c.call(ctx, http.MethodGet, "/api/v1/topics/"+url.PathEscape(name), nil, &topic); err != nil {
		return nil, err
	}
	return &topic, nil
}

// DeleteTopic marks a topic for deletion. Deletion is asynchronous;
// brokers observe the marker and tear the topic down.
func (c *Client) DeleteTopic(ctx context.Context, name string) error {
	return c.call(ctx, http.MethodDelete, "/api/v1/topics/"+url.PathEscape(name), nil, nil)
}

// AddPartitions grows a topic to totalPartitions. An optional manual
// assignment pins the new partitions; its first group maps to the first
// new partition id.
func (c *Client) AddPartitions(ctx context.Context, name string, totalPartitions int, assignment string) error {
	body := struct {
		TotalPartitions int    `json:"total_partitions"`
		Assignment      string `json:"assignment,omitempty"`
	}{totalPartitions, assignment}
	return c.call(ctx, http.MethodPut, "/api/v1/topics/"+url.PathEscape(name)+"/partitions", body, nil)
}

// SetTopicConfig replaces a topic's config overrides and notifies
// watchers.
func (c *Client) SetTopicConfig(ctx context.Context, name string, config map[string]string) error {
	body := struct {
		Config map[string]string `json:"config"`
	}{config}
	return c.call(ctx, http.MethodPut, "/api/v1/configs/topics/"+url.PathEscape(name), body, nil)
}

// SetClientConfig replaces a client id's quota overrides and notifies
// watchers.
func (c *Client) SetClientConfig(ctx context.Context, clientID string, config map[string]string) error {
	body := struct {
		Config map[string]string `json:"config"`
	}{config}
	return c.call(ctx, http.MethodPut, "/api/v1/configs/clients/"+url.PathEscape(clientID), body, nil)
}

// GetConfig reads an entity's config overrides. The entity type is
// "topics" or "clients".
func (c *Client) GetConfig(ctx context.Context, entityType, name string) (map[string]string, error) {
	var resp struct {
		Config map[string]string `json:"config"`
	}
	path := "/api/v1/configs/" + url.PathEscape(entityType) + "/" + url.PathEscape(name)
	if err := c.call(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Config, nil
}

// FetchMetadata resolves the given topics' partition leadership against
// the live broker set. Protocol selects the listener ("PLAINTEXT" when
// empty). Unknown topics come back with a per-topic error code rather
// than failing the call.
func (c *Client) FetchMetadata(ctx context.Context, topics []string, protocol string) ([]TopicMetadata, error) {
	q := url.Values{}
	q.Set("topics", strings.Join(topics, ","))
	if protocol != "" {
		q.Set("protocol", protocol)
	}
	var resp struct {
		Topics []TopicMetadata `json:"topics"`
	}
	if err := c.call(ctx, http.MethodGet, "/api/v1/metadata?"+q.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Topics, nil
}

// Brokers returns all registered brokers in ascending id order.
func (c *Client) Brokers(ctx context.Context) ([]Broker, error) {
	var resp struct {
		Brokers []Broker `json:"brokers"`
	}
	if err := c.call(ctx, http.MethodGet, "/api/v1/brokers", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Brokers, nil
}

// call performs one request and decodes the response into out when both
// are non-nil. Non-2xx replies become *APIError.
func (c *Client) call(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	var body struct {
		Error string `json:"error"`
		Kind  string `json:"kind"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
		apiErr.Message = body.Error
		apiErr.Kind = body.Kind
	} else {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
