package net

import (
	"slices"
	"sync"

	"localboard/internal/logging"
	"localboard/internal/state"
)

// MemoryBus is an in-process room. Broadcasts are encoded to the wire format,
// recorded, and delivered synchronously to every other joined channel in join
// order.
type MemoryBus struct {
	mu       sync.Mutex
	members  []*MemoryChannel
	messages [][]byte
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{}
}

// Join attaches a new channel for peer.
func (b *MemoryBus) Join(peer string) *MemoryChannel {
	c := &MemoryChannel{bus: b, peer: peer, in: newInbox(peer)}
	b.mu.Lock()
	b.members = append(b.members, c)
	b.mu.Unlock()
	return c
}

// Messages returns every frame broadcast on the bus so far.
func (b *MemoryBus) Messages() [][]byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.messages)
}

func (b *MemoryBus) leave(c *MemoryChannel) {
	b.mu.Lock()
	b.members = slices.DeleteFunc(b.members, func(m *MemoryChannel) bool { return m == c })
	b.mu.Unlock()
}

func (b *MemoryBus) publish(from *MemoryChannel, data []byte) {
	b.mu.Lock()
	b.messages = append(b.messages, data)
	targets := slices.Clone(b.members)
	b.mu.Unlock()

	for _, c := range targets {
		if c == from {
			continue
		}
		c.in.deliver(data)
	}
}

// MemoryChannel is one peer's view of a MemoryBus.
type MemoryChannel struct {
	bus  *MemoryBus
	peer string
	in   *inbox

	mu     sync.Mutex
	closed bool
}

func (c *MemoryChannel) Broadcast(a state.Action) {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		logging.Logger().Warn("channel closed, dropping action", "peer", c.peer, "kind", a.Kind)
		return
	}
	data, err := state.Marshal(a)
	if err != nil {
		logging.Logger().Error("encoding action failed", "err", err)
		return
	}
	c.bus.publish(c, data)
}

func (c *MemoryChannel) OnReceive(fn func(state.Action)) {
	c.in.set(fn)
}

// Close leaves the bus. Later broadcasts are dropped.
func (c *MemoryChannel) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.bus.leave(c)
	return nil
}
