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
Package admin provides the REST API for LarkMQ topic administration.

ENDPOINTS:
==========
Topics:

	GET    /api/v1/topics                      - List topics
	POST   /api/v1/topics                      - Create topic
	GET    /api/v1/topics/{name}               - Get topic assignment and config
	DELETE /api/v1/topics/{name}               - Mark topic for deletion
	PUT    /api/v1/topics/{name}/partitions    - Grow partition count

Configuration:

	GET    /api/v1/configs/{type}/{name}       - Get entity config
	PUT    /api/v1/configs/topics/{name}       - Change topic config
	PUT    /api/v1/configs/clients/{id}        - Change client quota config

Metadata:

	GET    /api/v1/metadata?topics=a,b         - Fetch topic metadata
	GET    /api/v1/brokers                     - List registered brokers

Notifications:

	GET    /api/v1/watch                       - WebSocket config-change stream

Operational:

	GET    /api/v1/health                      - Health check
	GET    /metrics                            - Prometheus metrics
*/
package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"larkmq/internal/config"
	"larkmq/internal/logging"
	"larkmq/internal/metadata"
	"larkmq/internal/metrics"
	"larkmq/internal/notify"
)

// Server provides the admin REST API over a metadata Admin.
type Server struct {
	config  *config.AdminConfig
	admin   *metadata.Admin
	watcher *notify.Watcher
	metrics *metrics.Metrics
	server  *http.Server
	logger  *logging.Logger
}

// NewServer creates the admin API server. The watcher and metrics are
// optional; without a watcher the /watch endpoint reports unavailable, and
// without metrics the /metrics endpoint is absent.
func NewServer(cfg *config.AdminConfig, admin *metadata.Admin, watcher *notify.Watcher, m *metrics.Metrics) *Server {
	return &Server{
		config:  cfg,
		admin:   admin,
		watcher: watcher,
		metrics: m,
		logger:  logging.NewLogger("admin"),
	}
}

// Start starts the admin API server.
func (s *Server) Start() error {
	if !s.config.Enabled {
		s.logger.Info("Admin API server disabled")
		return nil
	}

	s.server = &http.Server{
		Addr:    s.config.Addr,
		Handler: s.Router(),
	}

	go func() {
		s.logger.Info("Starting admin API server", "addr", s.config.Addr)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("Admin API server error", "error", err)
		}
	}()
	return nil
}

// Stop shuts the admin API server down gracefully.
func (s *Server) Stop() error {
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.logger.Info("Stopping admin API server")
	return s.server.Shutdown(ctx)
}

// Router builds the route tree. Exposed so tests can drive the API through
// httptest without a listener.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.logRequests)

	r.Get("/api/v1/health", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/topics", s.handleListTopics)
		r.Post("/topics", s.handleCreateTopic)
		r.Get("/topics/{name}", s.handleGetTopic)
		r.Delete("/topics/{name}", s.handleDeleteTopic)
		r.Put("/topics/{name}/partitions", s.handleAddPartitions)

		r.Get("/configs/{type}/{name}", s.handleGetConfig)
		r.Put("/configs/topics/{name}", s.handleChangeTopicConfig)
		r.Put("/configs/clients/{id}", s.handleChangeClientConfig)

		r.Get("/metadata", s.handleMetadata)
		r.Get("/brokers", s.handleBrokers)

		r.Get("/watch", s.handleWatch)
	})
	return r
}

// createTopicRequest is the body of POST /api/v1/topics. Assignment, when
// set, overrides automatic placement.
type createTopicRequest struct {
	Name              string            `json:"name"`
	Partitions        int               `json:"partitions"`
	ReplicationFactor int               `json:"replication_factor"`
	Assignment        string            `json:"assignment,omitempty"`
	Config            map[string]string `json:"config,omitempty"`
}

// addPartitionsRequest is the body of PUT /api/v1/topics/{name}/partitions.
type addPartitionsRequest struct {
	TotalPartitions int    `json:"total_partitions"`
	Assignment      string `json:"assignment,omitempty"`
}

// configRequest is the body of the config change endpoints.
type configRequest struct {
	Config map[string]string `json:"config"`
}

// topicResponse is the response of GET /api/v1/topics/{name}.
type topicResponse struct {
	Name       string            `json:"name"`
	Partitions map[string][]int  `json:"partitions"`
	Config     map[string]string `json:"config"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListTopics(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	topics, err := s.admin.ListTopics()
	s.observe("list_topics", start, err)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"topics": topics})
}

func (s *Server) handleCreateTopic(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req createTopicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeBadRequest(w, "malformed request body")
		return
	}

	var err error
	if req.Assignment != "" {
		err = s.createWithManualAssignment(req)
	} else {
		err = s.admin.CreateTopic(req.Name, req.Partitions, req.ReplicationFactor, req.Config)
	}
	s.observe("create_topic", start, err)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]string{"name": req.Name})
}

func (s *Server) createWithManualAssignment(req createTopicRequest) error {
	brokers, err := s.admin.BrokerIDs()
	if err != nil {
		return err
	}
	assignment, err := metadata.ParseManualAssignment(req.Assignment, brokers, 0, true)
	if err != nil {
		return err
	}
	return s.admin.CreateTopicWithAssignment(req.Name, assignment, req.Config)
}

func (s *Server) handleGetTopic(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	assignment, err := s.admin.TopicAssignment(name)
	if err != nil {
		s.writeError(w, err)
		return
	}
	cfg, err := s.admin.EntityConfig(metadata.EntityTopic, name)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := topicResponse{Name: name, Partitions: make(map[string][]int, len(assignment)), Config: cfg}
	for id, replicas := range assignment {
		resp.Partitions[strconv.Itoa(id)] = replicas
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteTopic(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	err := s.admin.DeleteTopic(chi.URLParam(r, "name"))
	s.observe("delete_topic", start, err)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleAddPartitions(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	name := chi.URLParam(r, "name")

	var req addPartitionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeBadRequest(w, "malformed request body")
		return
	}

	err := s.admin.AddPartitions(name, req.TotalPartitions, req.Assignment, true)
	s.observe("add_partitions", start, err)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]int{"total_partitions": req.TotalPartitions})
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	entityType, ok := parseEntityType(chi.URLParam(r, "type"))
	if !ok {
		s.writeBadRequest(w, "entity type must be 'topics' or 'clients'")
		return
	}

	cfg, err := s.admin.EntityConfig(entityType, chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]map[string]string{"config": cfg})
}

func (s *Server) handleChangeTopicConfig(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req configRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeBadRequest(w, "malformed request body")
		return
	}

	err := s.admin.ChangeTopicConfig(chi.URLParam(r, "name"), req.Config)
	s.observe("change_config", start, err)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if s.metrics != nil {
		s.metrics.ConfigChanges.WithLabelValues(string(metadata.EntityTopic)).Inc()
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleChangeClientConfig(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req configRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeBadRequest(w, "malformed request body")
		return
	}

	err := s.admin.ChangeClientIDConfig(chi.URLParam(r, "id"), req.Config)
	s.observe("change_config", start, err)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if s.metrics != nil {
		s.metrics.ConfigChanges.WithLabelValues(string(metadata.EntityClient)).Inc()
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMetadata(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	topicsParam := r.URL.Query().Get("topics")
	if topicsParam == "" {
		s.writeBadRequest(w, "query parameter 'topics' is required")
		return
	}
	topics := strings.Split(topicsParam, ",")

	protocol := metadata.ProtocolPlaintext
	if p := r.URL.Query().Get("protocol"); p != "" {
		protocol = metadata.SecurityProtocol(p)
	}

	results := s.admin.FetchTopicMetadata(topics, protocol)
	s.observe("fetch_metadata", start, nil)
	s.writeJSON(w, http.StatusOK, map[string][]metadata.TopicMetadata{"topics": results})
}

func (s *Server) handleBrokers(w http.ResponseWriter, r *http.Request) {
	brokers, err := s.admin.Brokers()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string][]*metadata.BrokerDescriptor{"brokers": brokers})
}

func parseEntityType(s string) (metadata.EntityType, bool) {
	switch s {
	case "topics":
		return metadata.EntityTopic, true
	case "clients":
		return metadata.EntityClient, true
	default:
		return "", false
	}
}

func (s *Server) observe(operation string, start time.Time, err error) {
	if s.metrics != nil {
		s.metrics.ObserveOperation(operation, start, err)
	}
}

// errorResponse is the JSON body of every error reply.
type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// writeError maps a metadata error kind to an HTTP status: conflicts to
// 409, missing entities to 404, caller mistakes to 400, store failures to
// 502, anything unrecognized to 500.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	kind := metadata.KindOf(err)
	status := http.StatusInternalServerError
	switch kind {
	case metadata.KindAlreadyExists, metadata.KindNamingCollision:
		status = http.StatusConflict
	case metadata.KindNotFound:
		status = http.StatusNotFound
	case metadata.KindInvalidArgument, metadata.KindValidation:
		status = http.StatusBadRequest
	case metadata.KindOperationFailed, metadata.KindProtocol:
		status = http.StatusBadGateway
		if s.metrics != nil {
			s.metrics.StoreErrors.Inc()
		}
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error(), Kind: kind.String()})
}

func (s *Server) writeBadRequest(w http.ResponseWriter, msg string) {
	s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("Failed to encode response", "error", err)
	}
}

