// Package raid relays live raid events between the players in a room.
//
// A Registry owns every room. Rooms are created by the first join, keep an
// in-memory event log, and fan each event out to every member's Sink. A
// room is torn down after a grace period once it completes or empties.
// Nothing is persisted and delivery is best effort: a slow member's full
// sink drops the event.
package raid

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/devtycoon/forge/errors"
	"github.com/devtycoon/forge/events"
	grapherror "github.com/devtycoon/forge/graph/error"
	"github.com/devtycoon/forge/logger"
)

// DefaultTeardownGrace is the delay between complete (or the last leave)
// and teardown
const DefaultTeardownGrace = 5 * time.Second

// Limits bound room size and history. Zero means unlimited.
type Limits struct {
	TeardownGrace   time.Duration // 0 means DefaultTeardownGrace
	MaxParticipants int
	EventLogLimit   int
}

// Options configures a Registry
type Options struct {
	Limits
	Publisher     events.Publisher // nil means events stay in-process
	SubjectPrefix string           // NATS subject root, e.g. "devtycoon.raid"
	Observer      Observer
}

type member struct {
	Participant
	sink Sink
}

type room struct {
	id        string
	members   []*member
	log       []Event
	seq       int64
	completed bool
	createdAt time.Time

	teardown   *time.Timer
	closingAt  time.Time
	generation uint64
}

func (rm *room) member(id string) (int, *member) {
	for i, m := range rm.members {
		if m.ID == id {
			return i, m
		}
	}
	return -1, nil
}

// Registry maps room ids to rooms. All room state changes are serialised
// by one mutex; sinks are called with it held, so they must not block.
type Registry struct {
	mu     sync.Mutex
	rooms  map[string]*room
	limits Limits
	closed bool

	publisher events.Publisher
	prefix    string
	observer  Observer
	logger    *zap.SugaredLogger
}

// NewRegistry creates an empty registry
func NewRegistry(opts Options, log *zap.SugaredLogger) *Registry {
	if log == nil {
		log = logger.Logger.Named("raid")
	}
	if opts.Publisher == nil {
		opts.Publisher = &events.NoopPublisher{}
	}
	if opts.SubjectPrefix == "" {
		opts.SubjectPrefix = "devtycoon.raid"
	}
	if opts.Observer == nil {
		opts.Observer = nopObserver{}
	}
	return &Registry{
		rooms:     make(map[string]*room),
		limits:    normalize(opts.Limits),
		publisher: opts.Publisher,
		prefix:    opts.SubjectPrefix,
		observer:  opts.Observer,
		logger:    log,
	}
}

func normalize(l Limits) Limits {
	if l.TeardownGrace <= 0 {
		l.TeardownGrace = DefaultTeardownGrace
	}
	return l
}

// SetLimits applies new limits. Existing rooms over a lowered participant
// limit keep their members; pending teardowns keep their original delay.
func (r *Registry) SetLimits(l Limits) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.limits = normalize(l)
	for _, rm := range r.rooms {
		r.trimLog(rm)
	}
}

// Limits returns the limits in force
func (r *Registry) Limits() Limits {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.limits
}

func raidError(sub string, userMsg, format string, args ...interface{}) *grapherror.GraphError {
	return grapherror.Newf(grapherror.CategoryRaid, userMsg, format, args...).WithSubcategory(sub)
}

// Join adds p to the room, creating it if needed, and returns the room as
// the joiner sees it. Joining again with the same id replaces the sink
// (a reconnect) without a second join event; the old sink is told it was
// replaced. A join cancels a pending
// teardown and reopens a completed room.
func (r *Registry) Join(roomID string, p Participant, sink Sink) (Snapshot, error) {
	if roomID == "" || p.ID == "" {
		return Snapshot{}, grapherror.New(grapherror.CategoryRaid,
			errors.NewInvalidRequestError("raid id and player id are required"),
			"Raid and player ids are required")
	}
	if sink == nil {
		return Snapshot{}, errors.New("raid: nil sink")
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return Snapshot{}, raidError(grapherror.SubcategoryRaidNotFound, "The raid server is shutting down", "registry closed")
	}

	rm, exists := r.rooms[roomID]
	if !exists {
		rm = &room{id: roomID, createdAt: time.Now()}
		r.rooms[roomID] = rm
		r.observer.RoomOpened()
		r.logger.Infow("Raid room opened", logger.FieldRaidID, roomID)
	}

	if _, m := rm.member(p.ID); m != nil {
		if m.sink != sink {
			m.sink.Replaced(roomID)
			m.sink = sink
		}
		if p.Name != "" {
			m.Name = p.Name
		}
		snap := r.snapshot(rm)
		r.mu.Unlock()
		r.logger.Debugw("Raid participant reconnected", logger.FieldRaidID, roomID, logger.FieldPlayerID, p.ID)
		return snap, nil
	}

	if limit := r.limits.MaxParticipants; limit > 0 && len(rm.members) >= limit {
		r.mu.Unlock()
		return Snapshot{}, raidError(grapherror.SubcategoryRaidFull, "This raid is full",
			"room %s has %d participants, limit is %d", roomID, len(rm.members), limit).
			WithContext("raid_id", roomID)
	}

	if rm.teardown != nil {
		r.cancelTeardown(rm)
		r.logger.Infow("Raid teardown cancelled by join", logger.FieldRaidID, roomID, logger.FieldPlayerID, p.ID)
	}
	rm.completed = false

	p.JoinedAt = time.Now()
	rm.members = append(rm.members, &member{Participant: p, sink: sink})
	r.observer.ParticipantJoined()

	ev := r.append(rm, EventJoin, p.ID, nil)
	r.fanout(rm, ev, p.ID)
	snap := r.snapshot(rm)
	r.mu.Unlock()

	r.logger.Infow("Raid participant joined",
		logger.FieldRaidID, roomID,
		logger.FieldPlayerID, p.ID,
		logger.FieldParticipants, len(snap.Participants))
	r.publish(roomID, events.TokenJoin, ev)
	return snap, nil
}

// Leave removes a participant joined through sink. A sink that has since
// been replaced by a reconnect leaves nothing. The last leave schedules
// teardown.
func (r *Registry) Leave(roomID, participantID string, sink Sink) error {
	r.mu.Lock()
	rm, ok := r.rooms[roomID]
	if !ok {
		r.mu.Unlock()
		return raidError(grapherror.SubcategoryRaidNotFound, "That raid no longer exists", "room %s not found", roomID)
	}
	i, m := rm.member(participantID)
	if m == nil {
		r.mu.Unlock()
		return raidError(grapherror.SubcategoryRaidNotJoined, "You are not in this raid",
			"%s is not in room %s", participantID, roomID)
	}
	if m.sink != sink {
		r.mu.Unlock()
		return raidError(grapherror.SubcategoryRaidNotJoined, "This raid was rejoined from another connection",
			"%s in room %s is held by a newer connection", participantID, roomID)
	}

	rm.members = append(rm.members[:i], rm.members[i+1:]...)
	r.observer.ParticipantLeft()
	ev := r.append(rm, EventLeave, participantID, nil)
	r.fanout(rm, ev, "")
	remaining := len(rm.members)
	if remaining == 0 {
		r.scheduleTeardown(rm)
	}
	r.mu.Unlock()

	r.logger.Infow("Raid participant left",
		logger.FieldRaidID, roomID,
		logger.FieldPlayerID, participantID,
		logger.FieldParticipants, remaining)
	r.publish(roomID, events.TokenLeave, ev)
	return nil
}

// Emit appends a player event to the room log and delivers it to every
// member, the sender included. complete schedules teardown.
func (r *Registry) Emit(roomID string, ev Event) error {
	if !ev.Type.Emittable() {
		return raidError(grapherror.SubcategoryRaidEventType, "Unknown raid event",
			"event type %q is not one of hack_attempt, progress, damage, loot, complete", ev.Type).
			WithContext("event_type", string(ev.Type))
	}

	r.mu.Lock()
	rm, ok := r.rooms[roomID]
	if !ok {
		r.mu.Unlock()
		return raidError(grapherror.SubcategoryRaidNotFound, "That raid no longer exists", "room %s not found", roomID)
	}
	if _, m := rm.member(ev.PlayerID); m == nil {
		r.mu.Unlock()
		return raidError(grapherror.SubcategoryRaidNotJoined, "Join the raid before sending events",
			"%q is not in room %s", ev.PlayerID, roomID)
	}
	if rm.completed {
		r.mu.Unlock()
		return raidError(grapherror.SubcategoryRaidCompleted, "This raid is already complete",
			"room %s is closing", roomID)
	}

	stored := r.append(rm, ev.Type, ev.PlayerID, ev.Payload)
	r.fanout(rm, stored, "")
	if ev.Type == EventComplete {
		rm.completed = true
		r.scheduleTeardown(rm)
	}
	r.mu.Unlock()

	r.observer.EventRelayed(ev.Type)
	r.logger.Debugw("Raid event relayed",
		logger.FieldRaidID, roomID,
		logger.FieldPlayerID, ev.PlayerID,
		logger.FieldEventType, string(ev.Type))
	r.publish(roomID, string(ev.Type), stored)
	return nil
}

// Snapshot returns a copy of one room
func (r *Registry) Snapshot(roomID string) (Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rm, ok := r.rooms[roomID]
	if !ok {
		return Snapshot{}, raidError(grapherror.SubcategoryRaidNotFound, "That raid no longer exists", "room %s not found", roomID)
	}
	return r.snapshot(rm), nil
}

// Rooms lists every open room, sorted by id
func (r *Registry) Rooms() []Summary {
	r.mu.Lock()
	out := make([]Summary, 0, len(r.rooms))
	for _, rm := range r.rooms {
		out = append(out, Summary{
			RoomID:       rm.id,
			Participants: len(rm.members),
			Events:       len(rm.log),
			Completed:    rm.completed,
			CreatedAt:    rm.createdAt,
			ClosingAt:    closingAt(rm),
		})
	}
	r.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].RoomID < out[j].RoomID })
	return out
}

// Close tears every room down immediately and rejects further joins
func (r *Registry) Close() {
	r.mu.Lock()
	r.closed = true
	rooms := make([]*room, 0, len(r.rooms))
	for id, rm := range r.rooms {
		if rm.teardown != nil {
			rm.teardown.Stop()
		}
		rooms = append(rooms, rm)
		delete(r.rooms, id)
	}
	r.mu.Unlock()

	for _, rm := range rooms {
		r.closeRoom(rm)
	}
}

// append adds an event to the log. Callers hold r.mu.
func (r *Registry) append(rm *room, t EventType, playerID string, payload []byte) Event {
	rm.seq++
	ev := Event{
		Seq:       rm.seq,
		RoomID:    rm.id,
		Type:      t,
		PlayerID:  playerID,
		Payload:   append([]byte(nil), payload...),
		Timestamp: time.Now(),
	}
	if len(payload) == 0 {
		ev.Payload = nil
	}
	rm.log = append(rm.log, ev)
	r.trimLog(rm)
	return ev
}

func (r *Registry) trimLog(rm *room) {
	if limit := r.limits.EventLogLimit; limit > 0 && len(rm.log) > limit {
		rm.log = append([]Event(nil), rm.log[len(rm.log)-limit:]...)
	}
}

// fanout delivers ev to every member except skip. Callers hold r.mu.
func (r *Registry) fanout(rm *room, ev Event, skip string) {
	for _, m := range rm.members {
		if m.ID == skip {
			continue
		}
		if !m.sink.Deliver(ev) {
			r.observer.MessageDropped()
			r.logger.Warnw("Raid event dropped for slow participant",
				logger.FieldRaidID, rm.id,
				logger.FieldPlayerID, m.ID,
				logger.FieldEventType, string(ev.Type))
		}
	}
}

func (r *Registry) snapshot(rm *room) Snapshot {
	snap := Snapshot{
		RoomID:       rm.id,
		Participants: make([]Participant, 0, len(rm.members)),
		Events:       append([]Event(nil), rm.log...),
		Completed:    rm.completed,
		CreatedAt:    rm.createdAt,
		ClosingAt:    closingAt(rm),
	}
	for _, m := range rm.members {
		snap.Participants = append(snap.Participants, m.Participant)
	}
	return snap
}

func closingAt(rm *room) *time.Time {
	if rm.teardown == nil {
		return nil
	}
	t := rm.closingAt
	return &t
}

// scheduleTeardown (re)arms the room's teardown timer. Callers hold r.mu.
func (r *Registry) scheduleTeardown(rm *room) {
	if rm.teardown != nil {
		rm.teardown.Stop()
	}
	rm.generation++
	gen := rm.generation
	grace := r.limits.TeardownGrace
	rm.closingAt = time.Now().Add(grace)
	rm.teardown = time.AfterFunc(grace, func() { r.expire(rm.id, gen) })
	r.logger.Debugw("Raid teardown scheduled", logger.FieldRaidID, rm.id, logger.FieldDurationMS, grace.Milliseconds())
}

// cancelTeardown disarms a pending teardown. Callers hold r.mu.
func (r *Registry) cancelTeardown(rm *room) {
	rm.teardown.Stop()
	rm.teardown = nil
	rm.closingAt = time.Time{}
	rm.generation++
}

// expire runs when a teardown timer fires. A timer that lost the race
// with a join sees a newer generation and does nothing.
func (r *Registry) expire(roomID string, gen uint64) {
	r.mu.Lock()
	rm, ok := r.rooms[roomID]
	if !ok || rm.generation != gen {
		r.mu.Unlock()
		return
	}
	delete(r.rooms, roomID)
	r.mu.Unlock()

	r.closeRoom(rm)
}

func (r *Registry) closeRoom(rm *room) {
	for _, m := range rm.members {
		m.sink.RoomClosed(rm.id)
		r.observer.ParticipantLeft()
	}
	r.observer.RoomClosed()
	r.logger.Infow("Raid room closed",
		logger.FieldRaidID, rm.id,
		logger.FieldParticipants, len(rm.members),
		"events", rm.seq)
	r.publish(rm.id, events.TokenClosed, map[string]interface{}{
		"raid_id":   rm.id,
		"completed": rm.completed,
		"events":    rm.seq,
	})
}

func (r *Registry) publish(roomID, token string, payload interface{}) {
	subject := events.Subject(r.prefix, roomID, token)
	if err := r.publisher.Publish(context.Background(), subject, payload); err != nil {
		r.logger.Warnw("Failed to republish raid event", "subject", subject, logger.FieldError, err.Error())
	}
}
