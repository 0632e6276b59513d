// Package registry is the room/game session coordinator. The Registry owns
// the process-wide maps (room id → room, join code → room id, connection id
// → room id) behind a brief lock; everything that mutates an individual
// room's state runs on that room's actor goroutine (see room.go).
package registry

import (
	"crypto/rand"
	"math/big"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hideandseek/session-server/internal/config"
	"github.com/hideandseek/session-server/internal/game"
	"github.com/hideandseek/session-server/internal/gamemap"
	"github.com/hideandseek/session-server/internal/gateway"
	"github.com/hideandseek/session-server/internal/rules"
	"github.com/hideandseek/session-server/internal/timer"
	"github.com/hideandseek/session-server/pkg/protocol"
)

type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Room
	codes map[string]string
	conns map[string]string

	catalog *gamemap.Catalog
	gw      *gateway.Gateway
	timers  *timer.Service
	cfg     config.Config
	log     *zap.Logger
}

func New(cfg config.Config, catalog *gamemap.Catalog, gw *gateway.Gateway, timers *timer.Service, log *zap.Logger) *Registry {
	return &Registry{
		rooms:   make(map[string]*Room),
		codes:   make(map[string]string),
		conns:   make(map[string]string),
		catalog: catalog,
		gw:      gw,
		timers:  timers,
		cfg:     cfg,
		log:     log,
	}
}

// CreateRoom builds a new room with the caller as sole host and returns its
// snapshot. The join code is regenerated until unique among active rooms.
func (reg *Registry) CreateRoom(connID, playerName, avatar string, maxPlayers int, isPrivate bool, mapID string, outbox chan<- []byte) (game.Room, error) {
	if err := rules.ValidateCapacity(maxPlayers); err != nil {
		return game.Room{}, err
	}
	m, ok := reg.catalog.ByID(mapID)
	if !ok {
		return game.Room{}, rules.ErrUnknownMap
	}

	state := &game.Room{
		ID:   uuid.NewString(),
		Code: "",
		Players: []game.Player{{
			ID:       connID,
			Username: playerName,
			Avatar:   avatar,
			ConnID:   connID,
			IsAlive:  true,
			IsHost:   true,
		}},
		Map:        m,
		MaxPlayers: maxPlayers,
		IsPrivate:  isPrivate,
		Status:     game.PhaseWaiting,
	}

	reg.mu.Lock()
	for {
		code, err := generateCode()
		if err != nil {
			reg.mu.Unlock()
			return game.Room{}, err
		}
		if _, taken := reg.codes[code]; !taken {
			state.Code = code
			break
		}
	}
	// snapshot before the actor goroutine takes ownership of state
	snap := state.Clone()
	reg.gw.Join(state.ID, connID, outbox)
	r := newRoom(reg, state)
	reg.rooms[state.ID] = r
	reg.codes[state.Code] = state.ID
	reg.conns[connID] = state.ID
	reg.mu.Unlock()

	reg.log.Info("room created",
		zap.String("room", snap.ID),
		zap.String("code", snap.Code),
		zap.String("host", playerName),
		zap.String("map", mapID))
	return snap, nil
}

func (reg *Registry) RoomByID(roomID string) (*Room, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	r, ok := reg.rooms[roomID]
	return r, ok
}

func (reg *Registry) RoomByCode(code string) (*Room, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	id, ok := reg.codes[code]
	if !ok {
		return nil, false
	}
	r, ok := reg.rooms[id]
	return r, ok
}

func (reg *Registry) RoomByConn(connID string) (*Room, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	id, ok := reg.conns[connID]
	if !ok {
		return nil, false
	}
	r, ok := reg.rooms[id]
	return r, ok
}

// LeaveRoom removes the connection's player from whatever room it is in.
// Unknown connections are a no-op, not an error.
func (reg *Registry) LeaveRoom(connID string) (wasHost bool) {
	r, ok := reg.RoomByConn(connID)
	if !ok {
		return false
	}
	wasHost, _ = r.Leave(connID)
	return wasHost
}

// Disconnect is the transport's notification that a connection dropped; it
// runs the same cleanup as an explicit leave.
func (reg *Registry) Disconnect(connID string) {
	if r, ok := reg.RoomByConn(connID); ok {
		reg.log.Info("disconnected mid-session, leaving room", zap.String("conn", connID))
		r.Leave(connID)
	}
}

// AvailableRooms lists every public room still in the waiting phase,
// computed fresh on each call from per-room snapshots.
func (reg *Registry) AvailableRooms() []protocol.RoomSummary {
	reg.mu.RLock()
	handles := make([]*Room, 0, len(reg.rooms))
	for _, r := range reg.rooms {
		handles = append(handles, r)
	}
	reg.mu.RUnlock()

	out := make([]protocol.RoomSummary, 0, len(handles))
	for _, r := range handles {
		if sum, listed, ok := r.Summary(); ok && listed {
			out = append(out, sum)
		}
	}
	return out
}

// RoomCount reports how many rooms are currently active.
func (reg *Registry) RoomCount() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.rooms)
}

// Cleanup tears down every room; used on process shutdown.
func (reg *Registry) Cleanup() {
	reg.mu.Lock()
	handles := make([]*Room, 0, len(reg.rooms))
	for _, r := range reg.rooms {
		handles = append(handles, r)
	}
	reg.mu.Unlock()

	for _, r := range handles {
		r.Shutdown()
	}
	reg.timers.CancelAll()
	reg.log.Info("registry cleaned up", zap.Int("rooms", len(handles)))
}

// ---- callbacks from room actors ----

func (reg *Registry) bindConn(connID, roomID string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.conns[connID] = roomID
}

func (reg *Registry) releaseConn(connID string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	delete(reg.conns, connID)
}

func (reg *Registry) removeRoom(roomID, code string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	delete(reg.rooms, roomID)
	delete(reg.codes, code)
}

const codeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func generateCode() (string, error) {
	code := make([]byte, 6)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeCharset))))
		if err != nil {
			return "", err
		}
		code[i] = codeCharset[n.Int64()]
	}
	return string(code), nil
}
