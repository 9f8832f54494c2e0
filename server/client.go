package server

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	grapherr "github.com/devtycoon/forge/graph/error"
	"github.com/devtycoon/forge/logger"
	"github.com/devtycoon/forge/raid"
)

// Socket deadlines and limits
// See: https://github.com/gorilla/websocket/blob/master/examples/chat/client.go
const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer; payloads are small game events
	maxMessageSize = 64 * 1024
)

// pendingJoin buffers fan-out that races a join's snapshot
type pendingJoin struct {
	events []raid.Event
	closed bool
	reason string
}

// Client is one raid socket. It is the raid.Sink for every room it joins.
type Client struct {
	server    *Server
	conn      *websocket.Conn
	send      chan interface{}
	done      chan struct{}
	id        string
	limiter   *rate.Limiter
	closeOnce sync.Once

	mu          sync.Mutex
	memberships map[string]string // raid id -> player id
	pending     map[string]*pendingJoin
}

var _ raid.Sink = (*Client)(nil)

func newClient(s *Server, conn *websocket.Conn, id string, rs rateSettings) *Client {
	return &Client{
		server:      s,
		conn:        conn,
		send:        make(chan interface{}, MaxClientMessageQueueSize),
		done:        make(chan struct{}),
		id:          id,
		limiter:     rate.NewLimiter(rs.limit, rs.burst),
		memberships: make(map[string]string),
		pending:     make(map[string]*pendingJoin),
	}
}

// close stops the pumps. The write pump flushes queued messages and sends
// a close frame before closing the connection.
func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// enqueue queues msg without blocking. The send channel is never closed, so
// a late enqueue after close is dropped instead of panicking.
func (c *Client) enqueue(msg interface{}) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// Deliver implements raid.Sink
func (c *Client) Deliver(ev raid.Event) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.pending[ev.RoomID]; ok {
		p.events = append(p.events, ev)
		return true
	}
	return c.enqueue(RaidEventMessage{Type: MsgRaidEvent, Event: ev})
}

// RoomClosed implements raid.Sink
func (c *Client) RoomClosed(roomID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.pending[roomID]; ok {
		p.closed = true
		return
	}
	delete(c.memberships, roomID)
	c.enqueue(RaidClosedMessage{Type: MsgRaidClosed, RaidID: roomID})
}

// Replaced implements raid.Sink. The player rejoined on another socket, so
// this one drops the membership and must not leave on disconnect.
func (c *Client) Replaced(roomID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.pending[roomID]; ok {
		p.closed = true
		p.reason = ClosedReasonReplaced
		return
	}
	delete(c.memberships, roomID)
	c.enqueue(RaidClosedMessage{Type: MsgRaidClosed, RaidID: roomID, Reason: ClosedReasonReplaced})
}

// takeMemberships returns and forgets every joined room
func (c *Client) takeMemberships() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	m := c.memberships
	c.memberships = make(map[string]string)
	return m
}

func (c *Client) setRate(rs rateSettings) {
	c.limiter.SetLimit(rs.limit)
	c.limiter.SetBurst(rs.burst)
}

// readPump handles reading messages from the WebSocket connection
func (c *Client) readPump() {
	defer func() {
		select {
		case c.server.unregister <- c:
		case <-c.server.ctx.Done():
		}
		c.close()
	}()

	// Read limit, deadline and pong handler
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, messageBytes, err := c.conn.ReadMessage()
		if err != nil {
			c.handleReadError(err)
			return
		}

		var msg RaidMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			c.sendError("", grapherr.New(grapherr.CategoryWebSocket, err, "Messages must be JSON objects").
				WithSubcategory(grapherr.SubcategoryWSMessage))
			continue
		}

		c.routeMessage(&msg)
	}
}

// handleReadError logs unexpected WebSocket read errors.
// Expected closure codes (going away, abnormal, no status) are silently ignored.
func (c *Client) handleReadError(err error) {
	if websocket.IsUnexpectedCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseAbnormalClosure,
		websocket.CloseNoStatusReceived,
	) {
		graphErr := grapherr.New(
			grapherr.CategoryWebSocket,
			err,
			"WebSocket connection closed unexpectedly",
		).WithSubcategory(grapherr.SubcategoryWSRead)

		c.server.logger.Warnw("WebSocket read error",
			append(graphErr.ToLogFields(), logger.FieldClientID, c.id)...,
		)
	}
}

// routeMessage dispatches one client message
func (c *Client) routeMessage(msg *RaidMessage) {
	switch msg.Type {
	case MsgJoinRaid:
		c.handleJoin(msg)
	case MsgLeaveRaid:
		c.handleLeave(msg)
	case MsgRaidEvent:
		c.handleEvent(msg)
	case MsgPing:
		c.enqueue(PongMessage{Type: MsgPong, Timestamp: time.Now().UnixMilli()})
	default:
		c.sendError(msg.RaidID, grapherr.Newf(grapherr.CategoryWebSocket,
			"Unknown message type", "unknown message type %q", msg.Type).
			WithSubcategory(grapherr.SubcategoryWSMessage))
	}
}

func (c *Client) handleJoin(msg *RaidMessage) {
	c.mu.Lock()
	if prev, ok := c.memberships[msg.RaidID]; ok && prev != msg.PlayerID {
		c.mu.Unlock()
		c.sendError(msg.RaidID, notJoinedError("This connection already joined as "+prev,
			"connection joined %s as %s, not %s", msg.RaidID, prev, msg.PlayerID))
		return
	}
	c.pending[msg.RaidID] = &pendingJoin{}
	c.mu.Unlock()

	snap, err := c.server.raids.Join(msg.RaidID, raid.Participant{ID: msg.PlayerID, Name: msg.Name}, c)

	c.mu.Lock()
	p := c.pending[msg.RaidID]
	delete(c.pending, msg.RaidID)
	if err != nil {
		c.mu.Unlock()
		c.sendError(msg.RaidID, err)
		return
	}

	var lastSeq int64
	if n := len(snap.Events); n > 0 {
		lastSeq = snap.Events[n-1].Seq
	}
	queued := c.enqueue(RaidJoinedMessage{Type: MsgRaidJoined, PlayerID: msg.PlayerID, Raid: snap})
	for _, ev := range p.events {
		if ev.Seq > lastSeq {
			c.enqueue(RaidEventMessage{Type: MsgRaidEvent, Event: ev})
		}
	}
	if p.closed {
		c.enqueue(RaidClosedMessage{Type: MsgRaidClosed, RaidID: msg.RaidID, Reason: p.reason})
	} else {
		c.memberships[msg.RaidID] = msg.PlayerID
	}
	c.mu.Unlock()

	if !queued {
		c.server.logger.Warnw("Raid snapshot dropped, client queue full",
			logger.FieldClientID, c.id,
			logger.FieldRaidID, msg.RaidID,
		)
	}
}

func (c *Client) handleLeave(msg *RaidMessage) {
	c.mu.Lock()
	playerID, ok := c.memberships[msg.RaidID]
	c.mu.Unlock()
	if !ok {
		c.sendError(msg.RaidID, notJoinedError("You are not in this raid", "leave %s before join", msg.RaidID))
		return
	}

	err := c.server.raids.Leave(msg.RaidID, playerID, c)

	c.mu.Lock()
	delete(c.memberships, msg.RaidID)
	c.mu.Unlock()

	if err != nil {
		c.sendError(msg.RaidID, err)
	}
}

func (c *Client) handleEvent(msg *RaidMessage) {
	c.mu.Lock()
	playerID, ok := c.memberships[msg.RaidID]
	c.mu.Unlock()
	if !ok {
		c.sendError(msg.RaidID, notJoinedError("Join the raid before sending events",
			"event for %s before join", msg.RaidID))
		return
	}
	if msg.PlayerID != "" && msg.PlayerID != playerID {
		c.sendError(msg.RaidID, notJoinedError("This connection joined as "+playerID,
			"event as %s on a connection joined as %s", msg.PlayerID, playerID))
		return
	}
	if !c.limiter.Allow() {
		c.sendError(msg.RaidID, grapherr.Newf(grapherr.CategoryRaid,
			"Slow down - too many raid events", "client %s exceeded its event rate", c.id).
			WithSubcategory(grapherr.SubcategoryRaidRateLimit))
		return
	}

	err := c.server.raids.Emit(msg.RaidID, raid.Event{
		Type:     msg.Event,
		PlayerID: playerID,
		Payload:  msg.Payload,
	})
	if err != nil {
		c.sendError(msg.RaidID, err)
	}
}

func notJoinedError(userMsg, format string, args ...interface{}) *grapherr.GraphError {
	return grapherr.Newf(grapherr.CategoryRaid, userMsg, format, args...).
		WithSubcategory(grapherr.SubcategoryRaidNotJoined)
}

// sendError reports a rejected message to this client only
func (c *Client) sendError(raidID string, err error) {
	ge := toGraphError(err)
	c.server.logger.Debugw("Raid message rejected",
		logger.FieldClientID, c.id,
		logger.FieldRaidID, raidID,
		logger.FieldError, ge.Error(),
	)
	c.enqueue(ErrorMessage{Type: MsgError, RaidID: raidID, Error: ge.ToResponse()})
}

// writePump sends queued messages and keepalive pings
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		c.close()
	}()

	for {
		select {
		case <-c.done:
			c.drain()
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return

		case msg := <-c.send:
			if err := c.write(msg); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// drain writes whatever is already queued, e.g. raid_closed on shutdown
func (c *Client) drain() {
	for {
		select {
		case msg := <-c.send:
			if err := c.write(msg); err != nil {
				return
			}
		default:
			return
		}
	}
}

func (c *Client) write(msg interface{}) error {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteJSON(msg); err != nil {
		graphErr := grapherr.New(grapherr.CategoryWebSocket, err, "").
			WithSubcategory(grapherr.SubcategoryWSWrite)
		c.server.logger.Debugw("WebSocket write failed",
			append(graphErr.ToLogFields(), logger.FieldClientID, c.id)...,
		)
		return err
	}
	return nil
}
