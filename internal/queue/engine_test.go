package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PraverBajaj/PulsePlay/internal/domain"
	"github.com/PraverBajaj/PulsePlay/internal/store"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	db, err := store.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewEngine(db, db, time.Second)
}

func addStream(t *testing.T, e *Engine, id string, creator domain.CreatorID) *domain.Stream {
	t.Helper()
	s := &domain.Stream{
		ID:          domain.StreamID(id),
		CreatorID:   creator,
		SubmittedBy: "viewer-1",
		URL:         "https://youtu.be/dQw4w9WgXcQ",
		ExtractedID: "dQw4w9WgXcQ",
		CreatedAt:   time.Now().UTC(),
	}
	require.NoError(t, e.AddStream(context.Background(), s))
	return s
}

// Scenario: empty room, one added item, a joiner's snapshot sees it.
func TestSnapshotAfterSingleAdd(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	addStream(t, e, "i1", "r")

	pending, err := e.Pending(ctx, "r")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, domain.StreamID("i1"), pending[0].ID)

	current, err := e.Current(ctx, "r")
	require.NoError(t, err)
	assert.Nil(t, current)
}

// Scenario: i1 and i2 at zero votes, one upvote on i2 reorders to [i2 i1].
func TestVoteReordersQueue(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	addStream(t, e, "i1", "r")
	addStream(t, e, "i2", "r")

	res, err := e.ToggleVote(ctx, "r", "u1", "i2", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Count)
	assert.True(t, res.Voted)

	pending, err := e.Pending(ctx, "r")
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, domain.StreamID("i2"), pending[0].ID)
	assert.Equal(t, domain.StreamID("i1"), pending[1].ID)
}

// Scenario: the same voter upvoting twice ends where it started.
func TestToggleVoteIdempotentPair(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	addStream(t, e, "i1", "r")

	res, err := e.ToggleVote(ctx, "r", "u1", "i1", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Count)
	assert.True(t, res.Voted)

	res, err = e.ToggleVote(ctx, "r", "u1", "i1", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Count)
	assert.False(t, res.Voted)
}

// Scenario: a retraction from a voter with no standing vote changes
// nothing; it only reports the state as it stands.
func TestRetractVoteWithoutStandingVoteIsNoop(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	addStream(t, e, "i1", "r")
	_, err := e.ToggleVote(ctx, "r", "u1", "i1", nil)
	require.NoError(t, err)

	res, err := e.RetractVote(ctx, "r", "u2", "i1", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Count, "someone else's vote must survive")
	assert.False(t, res.Voted)

	db := e.votes
	n, err := db.CountVotes(ctx, "i1")
	require.NoError(t, err)
	assert.Equal(t, 1, n, "retraction must never create a vote")
}

// Scenario: a retraction with a standing vote removes it, same as the
// second half of a toggle.
func TestRetractVoteRemovesStandingVote(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	addStream(t, e, "i1", "r")
	_, err := e.ToggleVote(ctx, "r", "u1", "i1", nil)
	require.NoError(t, err)

	res, err := e.RetractVote(ctx, "r", "u1", "i1", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Count)
	assert.False(t, res.Voted)
}

func TestToggleVoteUnknownStream(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.ToggleVote(context.Background(), "r", "u1", "missing", nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// The notify callback must observe the room still serialized and the
// pending order recomputed after the mutation, so frames enqueued
// inside it cannot carry a stale queue.
func TestVoteNotifyRunsUnderRoomLock(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	addStream(t, e, "i1", "r")
	addStream(t, e, "i2", "r")

	called := false
	_, err := e.ToggleVote(ctx, "r", "u1", "i2", func(res VoteResult) {
		called = true
		if e.roomLock("r").TryLock() {
			e.roomLock("r").Unlock()
			t.Error("room lock released before notify ran")
		}
		require.Len(t, res.Queue, 2)
		assert.Equal(t, domain.StreamID("i2"), res.Queue[0].ID, "notify must see the post-vote order")
	})
	require.NoError(t, err)
	require.True(t, called)
}

func TestPromoteNotifyRunsUnderRoomLock(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	addStream(t, e, "i1", "r")

	called := false
	_, err := e.PromoteNext(ctx, "r", func(next *domain.Stream, queue []domain.Stream) {
		called = true
		if e.roomLock("r").TryLock() {
			e.roomLock("r").Unlock()
			t.Error("room lock released before notify ran")
		}
		require.NotNil(t, next)
		assert.Equal(t, domain.StreamID("i1"), next.ID)
		assert.Empty(t, queue, "notify must see the post-promote order")
	})
	require.NoError(t, err)
	require.True(t, called)
}

// Scenario: i1 active, i2 pending; promote retires i1 and plays i2.
func TestPromoteReplacesActive(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	addStream(t, e, "i1", "r")
	addStream(t, e, "i2", "r")

	first, err := e.PromoteNext(ctx, "r", nil)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, domain.StreamID("i1"), first.ID)

	second, err := e.PromoteNext(ctx, "r", nil)
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, domain.StreamID("i2"), second.ID)

	retired, err := e.Stream(ctx, "i1")
	require.NoError(t, err)
	assert.True(t, retired.Played)
	assert.False(t, retired.Active)

	pending, err := e.Pending(ctx, "r")
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestPromoteEmptyQueueReturnsNil(t *testing.T) {
	e := newTestEngine(t)

	next, err := e.PromoteNext(context.Background(), "r", nil)
	require.NoError(t, err)
	assert.Nil(t, next)
}

// Votes arriving concurrently with promotes must never yield two active
// streams or a corrupted count.
func TestConcurrentVotesAndPromotes(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c", "d"} {
		addStream(t, e, id, "r")
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			voter := domain.UserID(rune('u' + i%5))
			if i%4 == 0 {
				_, _ = e.PromoteNext(ctx, "r", nil)
				return
			}
			_, _ = e.ToggleVote(ctx, "r", voter, "b", nil)
		}(i)
	}
	wg.Wait()

	pending, err := e.Pending(ctx, "r")
	require.NoError(t, err)
	for _, p := range pending {
		assert.False(t, p.Active, "pending stream %s marked active", p.ID)
	}
}

func TestVotesScopedPerRoomLock(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	addStream(t, e, "x", "room-a")
	addStream(t, e, "y", "room-b")

	// Locks are per creator; cross-room operations interleave freely.
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_, _ = e.ToggleVote(ctx, "room-a", "u1", "x", nil)
			} else {
				_, _ = e.ToggleVote(ctx, "room-b", "u1", "y", nil)
			}
		}(i)
	}
	wg.Wait()

	if l1, l2 := e.roomLock("room-a"), e.roomLock("room-b"); l1 == l2 {
		t.Fatal("rooms must not share a lock")
	}
}

type failingStore struct{ store.Store }

func (failingStore) HasVoted(context.Context, domain.UserID, domain.StreamID) (bool, error) {
	return false, domain.ErrUnavailable
}

func TestToggleVoteStoreUnavailable(t *testing.T) {
	db, err := store.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	e := NewEngine(db, failingStore{db}, time.Second)
	s := &domain.Stream{
		ID: "i1", CreatorID: "r", SubmittedBy: "v", URL: "u", ExtractedID: "e",
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, e.AddStream(context.Background(), s))

	_, err = e.ToggleVote(context.Background(), "r", "u1", "i1", func(VoteResult) {
		t.Error("notify must not run for a failed mutation")
	})
	assert.ErrorIs(t, err, domain.ErrUnavailable)

	// The failed mutation left no partial state behind.
	n, err := db.CountVotes(context.Background(), "i1")
	require.NoError(t, err)
	assert.Zero(t, n)
}
