// Package events republishes raid room activity to a message broker so
// other services (leaderboards, replays, moderation) can follow raids
// without holding a socket.
package events

import (
	"context"
	"strings"
)

// Subject tokens below the configured prefix
const (
	TokenJoin   = "join"
	TokenLeave  = "leave"
	TokenClosed = "closed"
)

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, subject string, event any) error
	Close() error
}

// Subject builds "<prefix>.<room>.<event>". Characters NATS treats as
// token separators or wildcards are replaced in the room id.
func Subject(prefix, room, event string) string {
	return prefix + "." + token(room) + "." + token(event)
}

// RoomWildcard matches every event of one room
func RoomWildcard(prefix, room string) string {
	return prefix + "." + token(room) + ".>"
}

// AllRooms matches every event under prefix
func AllRooms(prefix string) string {
	return prefix + ".>"
}

var subjectReplacer = strings.NewReplacer(".", "_", "*", "_", ">", "_", " ", "_", "\t", "_")

func token(s string) string {
	if s == "" {
		return "_"
	}
	return subjectReplacer.Replace(s)
}
