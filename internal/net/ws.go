package net

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/gorilla/websocket"

	"localboard/internal/logging"
	"localboard/internal/state"
)

// DialTimeout bounds the retries of the initial connection to a hub.
var DialTimeout = 10 * time.Second

// RoomURL returns the websocket address of room on the hub listening at addr.
func RoomURL(addr, room, peer string) string {
	u := url.URL{
		Scheme:   "ws",
		Host:     addr,
		Path:     "/rooms/" + url.PathEscape(room) + "/ws",
		RawQuery: url.Values{"peer": {peer}}.Encode(),
	}
	return u.String()
}

// WSChannel is a Channel backed by one websocket connection to a Hub.
type WSChannel struct {
	conn *websocket.Conn
	peer string
	in   *inbox

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
	readOnce  sync.Once
}

// Dial connects to the hub at rawURL as peer. Only this initial connect is
// retried; once established, a lost connection is not re-dialed.
func Dial(ctx context.Context, rawURL, peer string) (*WSChannel, error) {
	var conn *websocket.Conn
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.MaxElapsedTime = DialTimeout
	err := backoff.Retry(func() error {
		var err error
		conn, _, err = websocket.DefaultDialer.DialContext(ctx, rawURL, nil)
		if err != nil {
			logging.Logger().Debug("dial failed, retrying", "url", rawURL, "err", err)
		}
		return err
	}, backoff.WithContext(b, ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", rawURL, err)
	}
	logging.Logger().Info("connected to hub", "url", rawURL, "peer", peer)

	c := newWSChannel(conn, peer, sendBuffer)
	go c.writePump()
	return c, nil
}

func newWSChannel(conn *websocket.Conn, peer string, buffer int) *WSChannel {
	return &WSChannel{
		conn: conn,
		peer: peer,
		in:   newInbox(peer),
		send: make(chan []byte, buffer),
		done: make(chan struct{}),
	}
}

func (c *WSChannel) Broadcast(a state.Action) {
	data, err := state.Marshal(a)
	if err != nil {
		logging.Logger().Error("encoding action failed", "err", err)
		return
	}
	select {
	case <-c.done:
		logging.Logger().Warn("disconnected, dropping action", "peer", c.peer, "seq", a.Origin.Seq)
		return
	default:
	}
	select {
	case c.send <- data:
	default:
		// Peers would silently diverge if the action were skipped, so the
		// connection is dropped instead and Done reports it.
		logging.Logger().Error("send buffer full, disconnecting", "peer", c.peer, "seq", a.Origin.Seq)
		_ = c.Close()
	}
}

// OnReceive registers fn and starts reading from the hub.
func (c *WSChannel) OnReceive(fn func(state.Action)) {
	c.in.set(fn)
	c.readOnce.Do(func() { go c.readPump() })
}

// Done is closed once the connection is gone, including when the hub could
// not keep up and an action had to be dropped.
func (c *WSChannel) Done() <-chan struct{} {
	return c.done
}

func (c *WSChannel) Close() error {
	c.shutdown()
	return c.conn.Close()
}

func (c *WSChannel) shutdown() {
	c.closeOnce.Do(func() { close(c.done) })
}

func (c *WSChannel) readPump() {
	defer c.shutdown()
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
			default:
				logging.Logger().Warn("connection to hub lost", "peer", c.peer, "err", err)
			}
			return
		}
		c.in.deliver(message)
	}
}

func (c *WSChannel) writePump() {
	defer c.conn.Close()
	for {
		select {
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logging.Logger().Warn("write to hub failed", "peer", c.peer, "err", err)
				c.shutdown()
				return
			}
		case <-c.done:
			return
		}
	}
}
