// Package app holds the in-memory room plumbing: who is connected
// where, and how room events reach them.
package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/PraverBajaj/PulsePlay/internal/domain"
)

// Session is one live viewer connection as the room layer sees it.
// TrySend must never block; a full buffer is an error, not a stall.
// The transport adapter owns the underlying socket and its Close.
type Session interface {
	TrySend(data []byte) error
	Close()
}

// Registry indexes live sessions by creator room. Purely in-memory and
// rebuilt from zero on restart; rooms exist exactly as long as they
// have at least one session.
type Registry struct {
	mu    sync.RWMutex
	rooms map[domain.CreatorID]map[Session]struct{}
}

func NewRegistry() *Registry {
	return &Registry{rooms: make(map[domain.CreatorID]map[Session]struct{})}
}

func (r *Registry) Admit(creator domain.CreatorID, s Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[creator]
	if !ok {
		room = make(map[Session]struct{})
		r.rooms[creator] = room
	}
	room[s] = struct{}{}
	log.Info().Str("module", "app.registry").Str("creator", string(creator)).Int("sessions", len(room)).Msg("session admitted")
}

// Evict removes a session and garbage-collects the room entry once it
// is empty, so churn never grows the map.
func (r *Registry) Evict(creator domain.CreatorID, s Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[creator]
	if !ok {
		return
	}
	if _, ok := room[s]; !ok {
		return
	}
	delete(room, s)
	if len(room) == 0 {
		delete(r.rooms, creator)
		log.Info().Str("module", "app.registry").Str("creator", string(creator)).Msg("room closed (empty)")
		return
	}
	log.Info().Str("module", "app.registry").Str("creator", string(creator)).Int("sessions", len(room)).Msg("session evicted")
}

// SessionsOf snapshots the live set so callers can fan out without
// holding the registry lock.
func (r *Registry) SessionsOf(creator domain.CreatorID) []Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room := r.rooms[creator]
	out := make([]Session, 0, len(room))
	for s := range room {
		out = append(out, s)
	}
	return out
}

func (r *Registry) Count(creator domain.CreatorID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[creator])
}

func (r *Registry) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}
