package app

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PraverBajaj/PulsePlay/internal/domain"
)

var errBufferFull = errors.New("buffer full")

type testEvent struct {
	Type string `json:"type"`
	N    int    `json:"n"`
}

func TestDispatcherBroadcastFanOut(t *testing.T) {
	r := NewRegistry()
	d := NewDispatcher(r, KickPolicy{})

	s1 := &fakeSession{}
	s2 := &fakeSession{}
	other := &fakeSession{}
	r.Admit("creator-1", s1)
	r.Admit("creator-1", s2)
	r.Admit("creator-2", other)

	d.Broadcast("creator-1", testEvent{Type: "QUEUE_UPDATED", N: 1})

	require.Len(t, s1.Received(), 1)
	require.Len(t, s2.Received(), 1)
	assert.Empty(t, other.Received(), "other rooms must not see the event")

	var got testEvent
	require.NoError(t, json.Unmarshal(s1.Received()[0], &got))
	assert.Equal(t, "QUEUE_UPDATED", got.Type)
}

func TestDispatcherKicksSlowSession(t *testing.T) {
	r := NewRegistry()
	d := NewDispatcher(r, KickPolicy{})

	slow := &fakeSession{full: true}
	ok := &fakeSession{}
	r.Admit("creator-1", slow)
	r.Admit("creator-1", ok)

	d.Broadcast("creator-1", testEvent{Type: "VIDEO_ADDED"})

	assert.True(t, slow.Closed(), "slow session should be closed")
	assert.Equal(t, 1, r.Count("creator-1"), "slow session should be evicted")
	assert.Len(t, ok.Received(), 1, "healthy session still gets the event")
}

func TestDispatcherDropPolicyKeepsSession(t *testing.T) {
	r := NewRegistry()
	d := NewDispatcher(r, dropPolicy{})

	slow := &fakeSession{full: true}
	r.Admit("creator-1", slow)

	d.Broadcast("creator-1", testEvent{Type: "VIDEO_ADDED"})

	assert.False(t, slow.Closed())
	assert.Equal(t, 1, r.Count("creator-1"))
}

type dropPolicy struct{}

func (dropPolicy) OnBackpressure(domain.CreatorID, Session) BackpressureAction {
	return DropEvent
}

func TestDispatcherSendTo(t *testing.T) {
	r := NewRegistry()
	d := NewDispatcher(r, KickPolicy{})

	s := &fakeSession{}
	require.NoError(t, d.SendTo(s, testEvent{Type: "PONG"}))
	require.Len(t, s.Received(), 1)

	full := &fakeSession{full: true}
	assert.Error(t, d.SendTo(full, testEvent{Type: "PONG"}))
}
