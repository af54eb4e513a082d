package app

import "github.com/PraverBajaj/PulsePlay/internal/domain"

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	DropEvent
	KickSession
)

// Policy decides what happens to a session whose send buffer is full
// during a broadcast.
type Policy interface {
	OnBackpressure(creator domain.CreatorID, s Session) BackpressureAction
}

// KickPolicy disconnects slow sessions. A dropped delta would leave the
// client silently out of sync; a kick makes it reconnect and resync
// from the snapshot.
type KickPolicy struct{}

func (KickPolicy) OnBackpressure(domain.CreatorID, Session) BackpressureAction {
	return KickSession
}
