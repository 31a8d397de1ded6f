package board

import (
	"context"
	"image"
	"sync"

	"localboard/internal/state"
)

// Loop serializes every access to a Session on the goroutine running Run.
// Pointer events, deliveries from the channel, resizes and undo/redo are all
// posted to it. Post never blocks.
type Loop struct {
	session *Session

	mu      sync.Mutex
	queue   []func(*Session)
	wake    chan struct{}
	onFrame func(*image.NRGBA)
}

// NewLoop wraps s and subscribes it to its channel.
func NewLoop(s *Session) *Loop {
	l := &Loop{session: s, wake: make(chan struct{}, 1)}
	if ch := s.Channel(); ch != nil {
		ch.OnReceive(func(a state.Action) {
			l.Post(func(s *Session) { s.Receive(a) })
		})
	}
	return l
}

// OnFrame registers fn to receive a copy of the picture after every event
// that changed it. fn runs on the loop goroutine.
func (l *Loop) OnFrame(fn func(*image.NRGBA)) {
	l.mu.Lock()
	l.onFrame = fn
	l.mu.Unlock()
}

// Post queues fn to run on the loop.
func (l *Loop) Post(fn func(*Session)) {
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Call runs fn on the loop and waits for it.
func (l *Loop) Call(ctx context.Context, fn func(*Session)) error {
	done := make(chan struct{})
	l.Post(func(s *Session) {
		defer close(done)
		fn(s)
	})
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run services the queue until ctx is done. A first frame is published
// right away.
func (l *Loop) Run(ctx context.Context) error {
	l.publish()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
		for {
			l.mu.Lock()
			batch := l.queue
			l.queue = nil
			l.mu.Unlock()
			if len(batch) == 0 {
				break
			}
			for _, fn := range batch {
				fn(l.session)
			}
			l.publish()
		}
	}
}

func (l *Loop) publish() {
	if !l.session.takeDirty() {
		return
	}
	l.mu.Lock()
	fn := l.onFrame
	l.mu.Unlock()
	if fn != nil {
		fn(l.session.Frame())
	}
}

func (l *Loop) PointerDown(p state.Point)  { l.Post(func(s *Session) { s.PointerDown(p) }) }
func (l *Loop) PointerMove(p state.Point)  { l.Post(func(s *Session) { s.PointerMove(p) }) }
func (l *Loop) PointerUp(p state.Point)    { l.Post(func(s *Session) { s.PointerUp(p) }) }
func (l *Loop) PointerLeave(p state.Point) { l.Post(func(s *Session) { s.PointerLeave(p) }) }
func (l *Loop) Resize(width, height int)   { l.Post(func(s *Session) { s.Resize(width, height) }) }
func (l *Loop) Undo()                      { l.Post(func(s *Session) { s.Undo() }) }
func (l *Loop) Redo()                      { l.Post(func(s *Session) { s.Redo() }) }

// SetParams changes the tool settings for the next gesture.
func (l *Loop) SetParams(p Params) { l.Post(func(s *Session) { s.Input().SetParams(p) }) }
