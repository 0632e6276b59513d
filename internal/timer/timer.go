// Package timer provides the per-room countdown driving timed game phases.
// Remaining time is recomputed from a captured start timestamp on every tick
// rather than decremented, so scheduler jitter never accumulates into drift.
package timer

import (
	"sync"
	"time"
)

type handle struct {
	stop chan struct{}
	once sync.Once
}

func (h *handle) cancel() {
	h.once.Do(func() { close(h.stop) })
}

// Service owns at most one active countdown per room id. Starting a new
// countdown for a room implicitly cancels any prior one.
type Service struct {
	mu     sync.Mutex
	timers map[string]*handle
}

func NewService() *Service {
	return &Service{timers: make(map[string]*handle)}
}

// Start arms a countdown for roomID. onTick fires every interval with the
// remaining duration; onExpire fires once when the countdown reaches zero.
// Callbacks run on the timer goroutine.
func (s *Service) Start(roomID string, duration, interval time.Duration, onTick func(remaining time.Duration), onExpire func()) {
	h := &handle{stop: make(chan struct{})}

	s.mu.Lock()
	if prev, ok := s.timers[roomID]; ok {
		prev.cancel()
	}
	s.timers[roomID] = h
	s.mu.Unlock()

	go s.run(roomID, h, duration, interval, onTick, onExpire)
}

func (s *Service) run(roomID string, h *handle, duration, interval time.Duration, onTick func(time.Duration), onExpire func()) {
	start := time.Now()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-h.stop:
			return
		case <-ticker.C:
			remaining := duration - time.Since(start)
			if remaining < 0 {
				remaining = 0
			}
			if onTick != nil {
				onTick(remaining)
			}
			if remaining == 0 {
				s.remove(roomID, h)
				// cancelled concurrently: suppress the expiry
				select {
				case <-h.stop:
					return
				default:
				}
				if onExpire != nil {
					onExpire()
				}
				return
			}
		}
	}
}

// Cancel stops the room's countdown if one is active. Safe to call for rooms
// with no timer.
func (s *Service) Cancel(roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if h, ok := s.timers[roomID]; ok {
		h.cancel()
		delete(s.timers, roomID)
	}
}

// CancelAll stops every active countdown.
func (s *Service) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, h := range s.timers {
		h.cancel()
		delete(s.timers, id)
	}
}

// Active reports whether the room currently has an armed countdown.
func (s *Service) Active(roomID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.timers[roomID]
	return ok
}

// remove drops the handle only if it is still the current one for the room.
func (s *Service) remove(roomID string, h *handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.timers[roomID]; ok && cur == h {
		delete(s.timers, roomID)
	}
}
