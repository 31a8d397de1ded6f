package net

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"localboard/internal/logging"
	"localboard/internal/state"
)

// RedisChannel is a Channel that fans actions out through a Redis pub/sub
// channel per room. Redis echoes a publisher's own messages back; the inbox
// drops them.
type RedisChannel struct {
	rdb    *redis.Client
	pubsub *redis.PubSub
	topic  string
	peer   string
	in     *inbox

	send      chan []byte
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
	closeErr  error
}

// RoomTopic is the pub/sub channel name used for room.
func RoomTopic(room string) string {
	return "localboard:room:" + room
}

// NewRedisChannel connects to the Redis server at addr and subscribes to room.
func NewRedisChannel(ctx context.Context, addr, room, peer string) (*RedisChannel, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("could not connect to redis at %s: %w", addr, err)
	}
	topic := RoomTopic(room)
	pubsub := rdb.Subscribe(ctx, topic)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}
	logging.Logger().Info("connected to redis", "addr", addr, "topic", topic, "peer", peer)

	c := newRedisChannel(rdb, pubsub, topic, peer, sendBuffer)
	go c.publishLoop()
	go c.readLoop()
	return c, nil
}

func newRedisChannel(rdb *redis.Client, pubsub *redis.PubSub, topic, peer string, buffer int) *RedisChannel {
	ctx, cancel := context.WithCancel(context.Background())
	return &RedisChannel{
		rdb:    rdb,
		pubsub: pubsub,
		topic:  topic,
		peer:   peer,
		in:     newInbox(peer),
		send:   make(chan []byte, buffer),
		ctx:    ctx,
		cancel: cancel,
	}
}

func (c *RedisChannel) Broadcast(a state.Action) {
	if c.ctx.Err() != nil {
		logging.Logger().Warn("redis channel closed, dropping action", "peer", c.peer, "seq", a.Origin.Seq)
		return
	}
	data, err := state.Marshal(a)
	if err != nil {
		logging.Logger().Error("encoding action failed", "err", err)
		return
	}
	select {
	case c.send <- data:
	default:
		logging.Logger().Error("send buffer full, disconnecting", "peer", c.peer, "seq", a.Origin.Seq)
		_ = c.Close()
	}
}

func (c *RedisChannel) OnReceive(fn func(state.Action)) {
	c.in.set(fn)
}

// Done is closed once the channel is closed, including when Redis could not
// keep up and an action had to be dropped.
func (c *RedisChannel) Done() <-chan struct{} {
	return c.ctx.Done()
}

func (c *RedisChannel) Close() error {
	c.closeOnce.Do(func() {
		c.cancel()
		if err := c.pubsub.Close(); err != nil {
			_ = c.rdb.Close()
			c.closeErr = fmt.Errorf("failed to close subscription: %w", err)
			return
		}
		c.closeErr = c.rdb.Close()
	})
	return c.closeErr
}

// publishLoop publishes from a single goroutine so one peer's actions reach
// Redis in order.
func (c *RedisChannel) publishLoop() {
	for {
		select {
		case data := <-c.send:
			if err := c.rdb.Publish(c.ctx, c.topic, data).Err(); err != nil {
				logging.Logger().Warn("error publishing to redis", "topic", c.topic, "err", err)
			}
		case <-c.ctx.Done():
			return
		}
	}
}

func (c *RedisChannel) readLoop() {
	for msg := range c.pubsub.Channel() {
		c.in.deliver([]byte(msg.Payload))
	}
	logging.Logger().Debug("redis subscription ended", "topic", c.topic)
}
