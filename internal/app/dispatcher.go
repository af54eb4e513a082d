package app

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/PraverBajaj/PulsePlay/internal/domain"
)

// Dispatcher is the only path by which state changes become visible to
// viewers. Both the websocket handler and the REST API hold the same
// instance, passed at construction; there is no ambient global hook.
type Dispatcher struct {
	registry *Registry
	policy   Policy
}

func NewDispatcher(registry *Registry, policy Policy) *Dispatcher {
	return &Dispatcher{registry: registry, policy: policy}
}

// Broadcast fans a room event out to every session in the creator's
// room. The payload is marshalled once; delivery is non-blocking, so a
// slow client stalls nobody. Sessions that cannot keep up are handled
// per policy.
func (d *Dispatcher) Broadcast(creator domain.CreatorID, event any) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("module", "app.dispatcher").Msg("marshal broadcast")
		return
	}

	sent, dropped := 0, 0
	for _, s := range d.registry.SessionsOf(creator) {
		if err := s.TrySend(data); err == nil {
			sent++
			continue
		}
		dropped++
		switch d.policy.OnBackpressure(creator, s) {
		case KickSession:
			d.registry.Evict(creator, s)
			s.Close()
		case DropEvent, NoAction:
		}
	}
	log.Debug().Str("module", "app.dispatcher").Str("creator", string(creator)).Int("sent_to", sent).Int("dropped", dropped).Msg("broadcast result")
}

// SendTo delivers an event to a single session, used for snapshots,
// PONG replies and sender-scoped errors.
func (d *Dispatcher) SendTo(s Session, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return s.TrySend(data)
}
