// Package server streams assembled scenes to browser clients over websockets.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	spherevis "github.com/kat-mg/spherical-pf-vis"
)

const (
	writeTimeout    = 10 * time.Second
	shutdownTimeout = 5 * time.Second
)

// Builder loads and assembles a fresh scene.
type Builder func(ctx context.Context) (*spherevis.Scene, error)

// ClientMessage is sent by clients. Absent toggles leave the layer as is.
type ClientMessage struct {
	ShowResults      *bool `json:"showResults,omitempty"`
	ShowSearchNodes  *bool `json:"showSearchNodes,omitempty"`
	ShowFaceEdges    *bool `json:"showFaceEdges,omitempty"`
	ShowVertices     *bool `json:"showVertices,omitempty"`
	ShowVertexLabels *bool `json:"showVertexLabels,omitempty"`
	Reload           bool  `json:"reload,omitempty"`
}

type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type client struct {
	id uuid.UUID
	mu sync.Mutex
}

// Server holds the current scene and the set of connected clients.
type Server struct {
	log      *slog.Logger
	metrics  *Collector
	build    Builder
	upgrader websocket.Upgrader

	mu     sync.RWMutex
	scene  *spherevis.Scene
	layers spherevis.LayerOptions

	clientsMu sync.RWMutex
	clients   map[*websocket.Conn]*client
}

func New(build Builder, layers spherevis.LayerOptions, metrics *Collector, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		log:     logger,
		metrics: metrics,
		build:   build,
		layers:  layers,
		clients: make(map[*websocket.Conn]*client),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Reload rebuilds the scene and broadcasts it. On failure the previous scene
// is kept.
func (s *Server) Reload(ctx context.Context) error {
	start := time.Now()
	scene, err := s.build(ctx)
	if err != nil {
		s.metrics.ObserveBuild(start, 0, err)
		return errors.Wrap(err, "could not build scene")
	}
	s.metrics.ObserveBuild(start, scene.TriangleCount(), nil)

	s.mu.Lock()
	s.scene = scene
	s.mu.Unlock()

	s.log.Info("scene reloaded", "triangles", scene.TriangleCount(), "elapsed", time.Since(start))
	s.broadcast()
	return nil
}

// Layers returns the current visibility toggles.
func (s *Server) Layers() spherevis.LayerOptions {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.layers
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/scene", s.handleScene)
	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics.Handler())
	}
	return mux
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler()}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server starting", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "server stopped")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.closeClients()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	return nil
}

func (s *Server) message() (*SceneMessage, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.scene == nil {
		return nil, false
	}
	return NewSceneMessage(s.scene, s.layers), true
}

func (s *Server) handleScene(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	msg, ok := s.message()
	if !ok {
		http.Error(w, "scene not loaded", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(msg); err != nil {
		s.log.Warn("could not encode scene", "err", err)
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	c := &client{id: uuid.New()}
	log := s.log.With("client", c.id.String())

	s.clientsMu.Lock()
	s.clients[conn] = c
	s.clientsMu.Unlock()
	s.metrics.clientConnected()
	log.Info("client connected", "remote", r.RemoteAddr)

	defer func() {
		s.clientsMu.Lock()
		delete(s.clients, conn)
		s.clientsMu.Unlock()
		s.metrics.clientDisconnected()
		log.Info("client disconnected")
	}()

	if msg, ok := s.message(); ok {
		s.send(conn, c, msg.Type, msg)
	} else {
		s.send(conn, c, "error", ErrorMessage{Type: "error", Message: "scene not loaded"})
	}

	for {
		var msg ClientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("websocket read error", "err", err)
			}
			return
		}
		s.handleMessage(r.Context(), conn, c, log, msg)
	}
}

func (s *Server) handleMessage(ctx context.Context, conn *websocket.Conn, c *client, log *slog.Logger, msg ClientMessage) {
	if msg.Reload {
		log.Info("reload requested")
		if err := s.Reload(ctx); err != nil {
			log.Error("reload failed", "err", err)
			s.send(conn, c, "error", ErrorMessage{Type: "error", Message: err.Error()})
		}
		return
	}

	changed := false
	s.mu.Lock()
	apply := func(flag *bool, target *bool, name string) {
		if flag != nil && *flag != *target {
			*target = *flag
			changed = true
			log.Info("layer toggled", "layer", name, "visible", *flag)
		}
	}
	apply(msg.ShowResults, &s.layers.ShowResults, spherevis.LayerResults)
	apply(msg.ShowSearchNodes, &s.layers.ShowSearchNodes, spherevis.LayerSearch)
	apply(msg.ShowFaceEdges, &s.layers.ShowFaceEdges, spherevis.LayerEdges)
	apply(msg.ShowVertices, &s.layers.ShowVertices, spherevis.LayerVertices)
	apply(msg.ShowVertexLabels, &s.layers.ShowVertexLabels, spherevis.LayerVertices)
	s.mu.Unlock()

	if changed {
		s.broadcast()
	}
}

func (s *Server) send(conn *websocket.Conn, c *client, msgType string, v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteJSON(v); err != nil {
		return err
	}
	s.metrics.messageSent(msgType)
	return nil
}

func (s *Server) broadcast() {
	msg, ok := s.message()
	if !ok {
		return
	}

	var failed []*websocket.Conn
	s.clientsMu.RLock()
	for conn, c := range s.clients {
		if err := s.send(conn, c, msg.Type, msg); err != nil {
			s.log.Warn("broadcast failed", "client", c.id.String(), "err", err)
			failed = append(failed, conn)
		}
	}
	s.clientsMu.RUnlock()

	for _, conn := range failed {
		conn.Close()
	}
}

func (s *Server) closeClients() {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	for conn, c := range s.clients {
		c.mu.Lock()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		c.mu.Unlock()
	}
}
