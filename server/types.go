package server

import (
	"encoding/json"
	"time"

	"github.com/devtycoon/forge/codegen"
	"github.com/devtycoon/forge/graph"
	grapherr "github.com/devtycoon/forge/graph/error"
	"github.com/devtycoon/forge/raid"
)

const (
	// MaxClients is the maximum number of concurrent raid sockets
	MaxClients = 500
	// MaxClientMessageQueueSize is the size of per-client message queues
	MaxClientMessageQueueSize = 256
	// ShutdownTimeout is how long Stop waits for goroutines and in-flight requests
	ShutdownTimeout = 10 * time.Second
	// maxRequestBody caps graph documents posted to the API
	maxRequestBody = 4 << 20
)

// ServerState represents the server lifecycle state
type ServerState int

const (
	ServerStateRunning  ServerState = iota // Normal operation
	ServerStateDraining                    // Graceful shutdown in progress
	ServerStateStopped                     // Shutdown complete
)

// Client message types on /ws/raid
const (
	MsgJoinRaid  = "join_raid"
	MsgLeaveRaid = "leave_raid"
	MsgRaidEvent = "raid_event"
	MsgPing      = "ping"
)

// Server message types on /ws/raid
const (
	MsgRaidJoined = "raid_joined"
	MsgRaidClosed = "raid_closed"
	MsgPong       = "pong"
	MsgError      = "error"
)

// RaidMessage is a client message on the raid socket
type RaidMessage struct {
	Type     string          `json:"type"`      // join_raid, leave_raid, raid_event, ping
	RaidID   string          `json:"raid_id"`   // every type but ping
	PlayerID string          `json:"player_id"` // join_raid; optional afterwards
	Name     string          `json:"name"`      // join_raid display name
	Event    raid.EventType  `json:"event"`     // raid_event
	Payload  json.RawMessage `json:"payload"`   // raid_event, relayed untouched
}

// RaidJoinedMessage answers join_raid with the room as the joiner sees it
type RaidJoinedMessage struct {
	Type     string        `json:"type"`
	PlayerID string        `json:"player_id"`
	Raid     raid.Snapshot `json:"raid"`
}

// RaidEventMessage carries one fanned-out room event
type RaidEventMessage struct {
	Type  string     `json:"type"`
	Event raid.Event `json:"event"`
}

// ClosedReasonReplaced marks a raid_closed sent because the player rejoined
// on another connection
const ClosedReasonReplaced = "replaced"

// RaidClosedMessage tells a member the room was torn down, or that this
// connection no longer holds its place in it
type RaidClosedMessage struct {
	Type   string `json:"type"`
	RaidID string `json:"raid_id"`
	Reason string `json:"reason,omitempty"`
}

// PongMessage answers ping
type PongMessage struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`
}

// ErrorMessage reports a rejected client message
type ErrorMessage struct {
	Type   string            `json:"type"`
	RaidID string            `json:"raid_id,omitempty"`
	Error  grapherr.Response `json:"error"`
}

// CompileRequest is the body of POST /api/compile
type CompileRequest struct {
	Graph    *graph.Graph   `json:"graph"`
	Language graph.Language `json:"language"`
}

// CompileResponse is a generated file with traversal stats
type CompileResponse struct {
	Language string        `json:"language"`
	Filename string        `json:"filename"`
	Source   string        `json:"source"`
	Stats    codegen.Stats `json:"stats"`
	Warnings []graph.Issue `json:"warnings,omitempty"`
}

// InstallResponse reports a compiled file stored for a graph
type InstallResponse struct {
	GraphID  string        `json:"graph_id"`
	Filename string        `json:"filename"`
	Language string        `json:"language"`
	Stats    codegen.Stats `json:"stats"`
}
