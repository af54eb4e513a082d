// Package queue derives the authoritative pending order for a room and
// owns the mutations that can change it. Every mutation runs under a
// per-creator lock so a vote racing a promote can never observe a
// half-applied transition.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/PraverBajaj/PulsePlay/internal/domain"
	"github.com/PraverBajaj/PulsePlay/internal/store"
)

type Engine struct {
	streams store.StreamRepository
	votes   store.VoteRepository
	timeout time.Duration

	mu    sync.Mutex
	rooms map[domain.CreatorID]*sync.Mutex
}

func NewEngine(streams store.StreamRepository, votes store.VoteRepository, timeout time.Duration) *Engine {
	return &Engine{
		streams: streams,
		votes:   votes,
		timeout: timeout,
		rooms:   make(map[domain.CreatorID]*sync.Mutex),
	}
}

// roomLock hands out one mutex per creator. Locks are tiny and rooms
// are few, so entries are never reclaimed.
func (e *Engine) roomLock(creator domain.CreatorID) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.rooms[creator]
	if !ok {
		l = &sync.Mutex{}
		e.rooms[creator] = l
	}
	return l
}

func (e *Engine) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, e.timeout)
}

// AddStream creates a pending stream in the creator's queue.
func (e *Engine) AddStream(ctx context.Context, s *domain.Stream) error {
	l := e.roomLock(s.CreatorID)
	l.Lock()
	defer l.Unlock()

	ctx, cancel := e.bound(ctx)
	defer cancel()

	if err := e.streams.CreateStream(ctx, s); err != nil {
		return err
	}
	log.Info().Str("module", "queue").Str("creator", string(s.CreatorID)).Str("stream", string(s.ID)).Msg("stream added")
	return nil
}

// VoteResult is the outcome of a vote mutation together with the
// pending order recomputed in the same critical section.
type VoteResult struct {
	Count int
	Voted bool
	Queue []domain.Stream
}

// ToggleVote flips the voter's vote on a stream: voting again retracts.
// notify, when non-nil, runs before the room lock is released, so
// frames enqueued inside it reach sessions in mutation order. It must
// not block.
func (e *Engine) ToggleVote(ctx context.Context, creator domain.CreatorID, voter domain.UserID, stream domain.StreamID, notify func(VoteResult)) (VoteResult, error) {
	return e.vote(ctx, creator, voter, stream, false, notify)
}

// RetractVote removes the voter's standing vote. With no vote to
// remove it mutates nothing and still reports current state.
func (e *Engine) RetractVote(ctx context.Context, creator domain.CreatorID, voter domain.UserID, stream domain.StreamID, notify func(VoteResult)) (VoteResult, error) {
	return e.vote(ctx, creator, voter, stream, true, notify)
}

func (e *Engine) vote(ctx context.Context, creator domain.CreatorID, voter domain.UserID, stream domain.StreamID, retractOnly bool, notify func(VoteResult)) (VoteResult, error) {
	l := e.roomLock(creator)
	l.Lock()
	defer l.Unlock()

	ctx, cancel := e.bound(ctx)
	defer cancel()

	if _, err := e.streams.StreamByID(ctx, stream); err != nil {
		return VoteResult{}, err
	}

	has, err := e.votes.HasVoted(ctx, voter, stream)
	if err != nil {
		return VoteResult{}, err
	}

	voted := false
	switch {
	case has:
		if err := e.votes.RemoveVote(ctx, voter, stream); err != nil {
			return VoteResult{}, err
		}
	case retractOnly:
		// Nothing to retract; report state as it stands.
	default:
		if err := e.votes.AddVote(ctx, voter, stream); err != nil {
			return VoteResult{}, err
		}
		voted = true
	}

	count, err := e.votes.CountVotes(ctx, stream)
	if err != nil {
		return VoteResult{}, err
	}
	queue, err := e.streams.PendingByCreator(ctx, creator)
	if err != nil {
		return VoteResult{}, err
	}

	res := VoteResult{Count: count, Voted: voted, Queue: queue}
	if notify != nil {
		notify(res)
	}
	log.Debug().Str("module", "queue").Str("stream", string(stream)).Bool("voted", voted).Int("count", count).Msg("vote applied")
	return res, nil
}

// Pending re-derives the room's queue order: votes descending, stream
// id ascending. Read-only, so it skips the room lock.
func (e *Engine) Pending(ctx context.Context, creator domain.CreatorID) ([]domain.Stream, error) {
	ctx, cancel := e.bound(ctx)
	defer cancel()
	return e.streams.PendingByCreator(ctx, creator)
}

// Stream looks up a single stream by id.
func (e *Engine) Stream(ctx context.Context, id domain.StreamID) (*domain.Stream, error) {
	ctx, cancel := e.bound(ctx)
	defer cancel()
	return e.streams.StreamByID(ctx, id)
}

// Current returns the room's active stream, nil when idle.
func (e *Engine) Current(ctx context.Context, creator domain.CreatorID) (*domain.Stream, error) {
	ctx, cancel := e.bound(ctx)
	defer cancel()
	return e.streams.ActiveByCreator(ctx, creator)
}

// PromoteNext retires the active stream and promotes the head of the
// pending order. Returns nil when nothing is pending; the room then
// sits idle until the next add. notify, when non-nil, runs under the
// room lock with the promoted stream and the fresh pending order.
func (e *Engine) PromoteNext(ctx context.Context, creator domain.CreatorID, notify func(next *domain.Stream, queue []domain.Stream)) (*domain.Stream, error) {
	l := e.roomLock(creator)
	l.Lock()
	defer l.Unlock()

	ctx, cancel := e.bound(ctx)
	defer cancel()

	next, err := e.streams.PromoteNext(ctx, creator)
	if err != nil {
		return nil, err
	}
	queue, err := e.streams.PendingByCreator(ctx, creator)
	if err != nil {
		return nil, err
	}
	if notify != nil {
		notify(next, queue)
	}

	if next == nil {
		log.Info().Str("module", "queue").Str("creator", string(creator)).Msg("queue empty, room idle")
		return nil, nil
	}
	log.Info().Str("module", "queue").Str("creator", string(creator)).Str("stream", string(next.ID)).Msg("now playing")
	return next, nil
}
