// Package gateway fans server events out to every connection joined to a
// room. It owns the room-id → connection-set mapping and nothing else; game
// logic never touches a socket directly.
package gateway

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/hideandseek/session-server/pkg/protocol"
)

// Gateway delivers marshaled events to per-connection outboxes. Sends are
// non-blocking: a connection whose outbox is full misses that event rather
// than stalling the room.
type Gateway struct {
	mu    sync.RWMutex
	rooms map[string]map[string]chan<- []byte
	log   *zap.Logger
}

func New(log *zap.Logger) *Gateway {
	return &Gateway{
		rooms: make(map[string]map[string]chan<- []byte),
		log:   log,
	}
}

// Join registers a connection's outbox under a room group.
func (g *Gateway) Join(roomID, connID string, outbox chan<- []byte) {
	g.mu.Lock()
	defer g.mu.Unlock()
	conns, ok := g.rooms[roomID]
	if !ok {
		conns = make(map[string]chan<- []byte)
		g.rooms[roomID] = conns
	}
	conns[connID] = outbox
}

// Leave removes a connection from a room group.
func (g *Gateway) Leave(roomID, connID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if conns, ok := g.rooms[roomID]; ok {
		delete(conns, connID)
		if len(conns) == 0 {
			delete(g.rooms, roomID)
		}
	}
}

// DropRoom removes the whole room group and returns the connection ids that
// were in it.
func (g *Gateway) DropRoom(roomID string) []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	conns := g.rooms[roomID]
	delete(g.rooms, roomID)
	ids := make([]string, 0, len(conns))
	for id := range conns {
		ids = append(ids, id)
	}
	return ids
}

// Broadcast sends a named event to every connection in the room except those
// listed in exclude.
func (g *Gateway) Broadcast(roomID, event string, data any, exclude ...string) {
	payload, err := json.Marshal(protocol.ServerEvent{Event: event, Data: data})
	if err != nil {
		g.log.Error("marshal broadcast", zap.String("event", event), zap.Error(err))
		return
	}

	g.mu.RLock()
	defer g.mu.RUnlock()
	for connID, outbox := range g.rooms[roomID] {
		if excluded(connID, exclude) {
			continue
		}
		select {
		case outbox <- payload:
		default:
			g.log.Warn("outbox full, dropping event",
				zap.String("room", roomID),
				zap.String("conn", connID),
				zap.String("event", event))
		}
	}
}

// RoomSize reports how many connections are joined to the room.
func (g *Gateway) RoomSize(roomID string) int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.rooms[roomID])
}

func excluded(connID string, exclude []string) bool {
	for _, id := range exclude {
		if id == connID {
			return true
		}
	}
	return false
}
