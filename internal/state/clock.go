package state

import (
	"sync/atomic"

	"github.com/google/uuid"
)

// Clock hands out origin tags for actions created by the local peer.
// Each clock is its own session, so a peer that restarts under the same id
// starts a fresh sequence that receivers track separately.
type Clock struct {
	peer    string
	session string
	seq     atomic.Uint64
}

// NewClock returns a clock for peer. An empty peer gets a random id.
func NewClock(peer string) *Clock {
	if peer == "" {
		peer = NewPeerID()
	}
	return &Clock{peer: peer, session: uuid.NewString()}
}

// NewPeerID returns a fresh random peer id.
func NewPeerID() string {
	return uuid.NewString()
}

// Peer returns the id this clock stamps on actions.
func (c *Clock) Peer() string {
	return c.peer
}

// Session returns the id of this clock's session.
func (c *Clock) Session() string {
	return c.session
}

// Stamp returns a tagged with the next local sequence number.
func (c *Clock) Stamp(a Action) Action {
	return a.WithOrigin(Origin{Peer: c.peer, Session: c.session, Seq: c.seq.Add(1)})
}

// Last returns the most recently issued sequence number.
func (c *Clock) Last() uint64 {
	return c.seq.Load()
}
