// Package server exposes the graph compiler over HTTP and relays raid rooms
// over WebSockets.
package server

import (
	"context"
	"database/sql"
	"net/http"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/devtycoon/forge/am"
	"github.com/devtycoon/forge/compiler"
	"github.com/devtycoon/forge/logger"
	"github.com/devtycoon/forge/metrics"
	"github.com/devtycoon/forge/raid"
	"github.com/devtycoon/forge/storage"
)

// Server owns the compiler, the raid registry and the sockets attached to it
type Server struct {
	db            *sql.DB
	store         *storage.GraphStore
	compiler      *compiler.Compiler
	raids         *raid.Registry
	metrics       *metrics.Collector
	configWatcher *am.ConfigWatcher // nil when no config file is in use

	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex

	// Guarded by mu; replaced on config reload
	allowedOrigins []string
	eventRate      rateSettings

	logger  *zap.SugaredLogger
	handler http.Handler

	// HTTP server with timeouts
	httpServer *http.Server

	// Lifecycle management
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	state  atomic.Int32
}

// handleClientRegister handles a new raid socket
func (s *Server) handleClientRegister(client *Client) {
	s.mu.Lock()

	if len(s.clients) >= MaxClients {
		s.mu.Unlock()
		s.logger.Warnw("Max clients reached, rejecting connection",
			logger.FieldClientID, client.id,
			"max_clients", MaxClients,
		)
		client.close()
		return
	}

	s.clients[client] = true
	total := len(s.clients)
	s.mu.Unlock()

	s.logger.Infow("Client connected",
		logger.FieldClientID, client.id,
		"total_clients", total,
	)
}

// handleClientUnregister removes a socket and leaves every raid it joined.
// A socket rejected at registration may still have joined a raid.
func (s *Server) handleClientUnregister(client *Client) {
	s.mu.Lock()
	_, registered := s.clients[client]
	delete(s.clients, client)
	total := len(s.clients)
	s.mu.Unlock()

	client.close()
	for raidID, playerID := range client.takeMemberships() {
		if err := s.raids.Leave(raidID, playerID, client); err != nil {
			s.logger.Debugw("Leave on disconnect skipped",
				logger.FieldRaidID, raidID,
				logger.FieldPlayerID, playerID,
				logger.FieldError, err.Error(),
			)
		}
	}

	if registered {
		s.logger.Infow("Client disconnected",
			logger.FieldClientID, client.id,
			"total_clients", total,
		)
	}
}

// Run starts the hub event loop
func (s *Server) Run() {
	for {
		select {
		case <-s.ctx.Done():
			s.logger.Debugw("Server hub stopping due to context cancellation")
			return
		case client := <-s.register:
			s.handleClientRegister(client)
		case client := <-s.unregister:
			s.handleClientUnregister(client)
		}
	}
}

// clientCount returns the number of attached sockets
func (s *Server) clientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Raids returns the registry, e.g. for the CLI banner
func (s *Server) Raids() *raid.Registry { return s.raids }

// Handler returns the HTTP handler with every route, CORS and metrics
func (s *Server) Handler() http.Handler { return s.handler }
