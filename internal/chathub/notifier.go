package chathub

import (
	"fmt"
	"log"
	"sync"

	"welcomewindow/backend/internal/models"
)

// AdminRoom is the room every host connection joins after join_admin.
const AdminRoom = "admin"

// AccessRoom is the room a visitor waiting for approval listens on.
func AccessRoom(visitorID uint) string {
	return fmt.Sprintf("access:%d", visitorID)
}

// Audience selects the connections an event is delivered to. Audiences can be
// combined with Plus; a connection matched twice still receives one copy.
type Audience struct {
	everyone bool
	conns    []string
	rooms    []string
}

// ToConnection addresses a single connection.
func ToConnection(connID string) Audience {
	return Audience{conns: []string{connID}}
}

// ToRoom addresses every member of a room.
func ToRoom(room string) Audience {
	return Audience{rooms: []string{room}}
}

// ToEveryone addresses every connection that joined with Join.
func ToEveryone() Audience {
	return Audience{everyone: true}
}

// Plus returns the union of both audiences.
func (a Audience) Plus(b Audience) Audience {
	return Audience{
		everyone: a.everyone || b.everyone,
		conns:    append(append([]string{}, a.conns...), b.conns...),
		rooms:    append(append([]string{}, a.rooms...), b.rooms...),
	}
}

// EventMirror receives a copy of every delivered event. Implementations must
// not block.
type EventMirror interface {
	Mirror(ev models.Event)
}

// Notifier fans events out to connections. Membership is snapshotted when an
// event is delivered; late joiners never see earlier events.
type Notifier struct {
	mu     sync.Mutex
	seq    uint64
	peers  map[string]Client
	public map[string]struct{}
	rooms  map[string]map[string]struct{}
	mirror EventMirror
}

// NewNotifier Constructor. mirror may be nil.
func NewNotifier(mirror EventMirror) *Notifier {
	return &Notifier{
		peers:  make(map[string]Client),
		public: make(map[string]struct{}),
		rooms:  make(map[string]map[string]struct{}),
		mirror: mirror,
	}
}

// Join makes the client addressable by connection id and by ToEveryone.
func (n *Notifier) Join(c Client) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.peers[c.ConnID()] = c
	n.public[c.ConnID()] = struct{}{}
}

// JoinPrivate makes the client addressable by connection id and by the rooms
// it joins, but not by ToEveryone.
func (n *Notifier) JoinPrivate(c Client) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.peers[c.ConnID()] = c
	delete(n.public, c.ConnID())
}

// JoinRoom adds a joined connection to a room. Unknown connections are ignored.
func (n *Notifier) JoinRoom(connID, room string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, ok := n.peers[connID]; !ok {
		return
	}
	members, ok := n.rooms[room]
	if !ok {
		members = make(map[string]struct{})
		n.rooms[room] = members
	}
	members[connID] = struct{}{}
}

// Leave removes the connection from every room. After Leave returns no further
// event is written to its send channel, so the channel may be closed.
func (n *Notifier) Leave(connID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.peers, connID)
	delete(n.public, connID)
	for room, members := range n.rooms {
		delete(members, connID)
		if len(members) == 0 {
			delete(n.rooms, room)
		}
	}
}

// Peers returns the joined connections.
func (n *Notifier) Peers() []Client {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Client, 0, len(n.peers))
	for _, c := range n.peers {
		out = append(out, c)
	}
	return out
}

// RoomSize returns the number of connections in a room.
func (n *Notifier) RoomSize(room string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.rooms[room])
}

// Deliver stamps the next sequence number on the event and enqueues it for
// every connection in the audience. A member whose buffer is full is skipped.
// It returns the delivered event and the number of members that accepted it.
func (n *Notifier) Deliver(aud Audience, typ models.EventType, data any) (models.Event, int) {
	n.mu.Lock()
	n.seq++
	ev := models.Event{Type: typ, Seq: n.seq, Data: data}

	targets := make(map[string]Client)
	if aud.everyone {
		for id := range n.public {
			targets[id] = n.peers[id]
		}
	}
	for _, id := range aud.conns {
		if c, ok := n.peers[id]; ok {
			targets[id] = c
		}
	}
	for _, room := range aud.rooms {
		for id := range n.rooms[room] {
			if c, ok := n.peers[id]; ok {
				targets[id] = c
			}
		}
	}

	delivered := 0
	for id, c := range targets {
		select {
		case c.GetSendChannel() <- ev:
			delivered++
		default:
			log.Printf("WARN: [Notifier] send buffer full for %s, dropping %s #%d", id, typ, ev.Seq)
		}
	}
	n.mu.Unlock()

	if n.mirror != nil {
		n.mirror.Mirror(ev)
	}
	return ev, delivered
}
