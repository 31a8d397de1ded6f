// Package net moves drawing actions between peers. Every transport delivers
// remote actions in per-sender FIFO order and never hands a peer its own
// actions back.
package net

import (
	"sync"

	"localboard/internal/logging"
	"localboard/internal/state"
)

// Channel is a reliable broadcast medium shared by the peers of one room.
type Channel interface {
	// Broadcast sends a to every other peer. It never blocks on the network;
	// when the channel is down the action is dropped.
	Broadcast(a state.Action)
	// OnReceive registers the handler called once per remote action.
	OnReceive(fn func(state.Action))
}

// Dedup filters deliveries: actions from the local peer and actions whose
// (peer, session, seq) was already delivered are dropped. Actions without a
// sequence number are always accepted unless they carry the local peer id.
type Dedup struct {
	self string

	mu   sync.Mutex
	last map[sessionKey]uint64
}

type sessionKey struct {
	peer, session string
}

func NewDedup(self string) *Dedup {
	return &Dedup{self: self, last: map[sessionKey]uint64{}}
}

// Accept reports whether a should be delivered and records it.
func (d *Dedup) Accept(a state.Action) bool {
	if a.Origin.Peer != "" && a.Origin.Peer == d.self {
		return false
	}
	if a.Origin.Seq == 0 {
		return true
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	k := sessionKey{peer: a.Origin.Peer, session: a.Origin.Session}
	if a.Origin.Seq <= d.last[k] {
		return false
	}
	d.last[k] = a.Origin.Seq
	return true
}

// inbox decodes frames read by a transport and hands accepted actions to the
// registered handler.
type inbox struct {
	dedup *Dedup

	mu sync.Mutex
	fn func(state.Action)
}

func newInbox(self string) *inbox {
	return &inbox{dedup: NewDedup(self)}
}

func (in *inbox) set(fn func(state.Action)) {
	in.mu.Lock()
	in.fn = fn
	in.mu.Unlock()
}

func (in *inbox) deliver(data []byte) {
	a, err := state.Unmarshal(data)
	if err != nil {
		logging.Logger().Warn("dropping malformed frame", "err", err, "bytes", len(data))
		return
	}
	if !in.dedup.Accept(a) {
		logging.Logger().Debug("dropping echo or duplicate", "peer", a.Origin.Peer, "seq", a.Origin.Seq)
		return
	}
	in.mu.Lock()
	fn := in.fn
	in.mu.Unlock()
	if fn == nil {
		logging.Logger().Warn("no receive handler, dropping action", "peer", a.Origin.Peer, "seq", a.Origin.Seq)
		return
	}
	fn(a)
}
