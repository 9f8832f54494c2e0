package server

import (
	"net/http"

	grapherr "github.com/devtycoon/forge/graph/error"
	"github.com/devtycoon/forge/internal/idgen"
	"github.com/devtycoon/forge/logger"
)

// HandleListRaids lists open raid rooms
func (s *Server) HandleListRaids(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.raids.Rooms())
}

// HandleGetRaid returns one room's participants and event log
func (s *Server) HandleGetRaid(w http.ResponseWriter, r *http.Request) {
	snap, err := s.raids.Snapshot(r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// HandleRaidWebSocket upgrades to the raid sync protocol
func (s *Server) HandleRaidWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.getState() != ServerStateRunning {
		http.Error(w, "server is shutting down", http.StatusServiceUnavailable)
		return
	}

	upgrader := s.upgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error
		ge := grapherr.New(grapherr.CategoryWebSocket, err, "").
			WithSubcategory(grapherr.SubcategoryWSUpgrade)
		s.logger.Warnw("WebSocket upgrade failed", ge.ToLogFields()...)
		return
	}

	s.mu.RLock()
	settings := s.eventRate
	s.mu.RUnlock()

	client := newClient(s, conn, idgen.MustNew(idgen.PrefixClient), settings)

	select {
	case s.register <- client:
	case <-s.ctx.Done():
		conn.Close()
		return
	}

	s.logger.Debugw("Raid socket opened",
		logger.FieldClientID, client.id,
		"remote_addr", r.RemoteAddr,
	)

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		client.writePump()
	}()
	go func() {
		defer s.wg.Done()
		client.readPump()
	}()
}
