// Package board ties one drawing session together: the action log, the
// renderer, the sync channel and the input and history controllers.
//
// A Session is not safe for concurrent use. Drive it from a Loop, which runs
// every handler on one goroutine.
package board

import (
	"errors"
	"fmt"
	"image"

	"localboard/internal/logging"
	"localboard/internal/net"
	"localboard/internal/render"
	"localboard/internal/state"
)

// Policy decides where a remote action lands while the local log has a redo
// tail.
type Policy string

const (
	// PreserveRedo inserts remote actions at the cursor, ahead of the redo tail.
	PreserveRedo Policy = "preserve-redo"
	// Overwrite appends remote actions like local ones, discarding the redo tail.
	Overwrite Policy = "overwrite"
)

var ErrUnknownPolicy = errors.New("unknown remote policy")

// ParsePolicy validates a policy name. The empty string is PreserveRedo.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(s); p {
	case "":
		return PreserveRedo, nil
	case PreserveRedo, Overwrite:
		return p, nil
	}
	return "", fmt.Errorf("%q: %w", s, ErrUnknownPolicy)
}

// Config sets up a Session. A zero KeyframeInterval uses the renderer
// default; a negative one disables snapshots.
type Config struct {
	Width, Height    int
	Peer             string
	Policy           Policy
	KeyframeInterval int
	Params           Params
}

// Session is one participant's view of the shared canvas.
type Session struct {
	log      *state.Log
	renderer *render.Renderer
	clock    *state.Clock
	channel  net.Channel
	policy   Policy
	input    *Input
	history  *History

	dirty bool
}

// NewSession builds a session that broadcasts on ch. A nil ch works offline.
// Remote actions reach the session through Receive; a Loop subscribes it.
func NewSession(cfg Config, ch net.Channel) *Session {
	opts := []render.Option{}
	if cfg.KeyframeInterval != 0 {
		opts = append(opts, render.WithKeyframeInterval(cfg.KeyframeInterval))
	}
	if cfg.Policy == "" {
		cfg.Policy = PreserveRedo
	}
	s := &Session{
		log:      state.NewLog(),
		renderer: render.NewRenderer(cfg.Width, cfg.Height, opts...),
		clock:    state.NewClock(cfg.Peer),
		channel:  ch,
		policy:   cfg.Policy,
		dirty:    true,
	}
	s.input = NewInput(s, cfg.Params)
	s.history = NewHistory(s.log, s.renderer)
	return s
}

func (s *Session) Peer() string { return s.clock.Peer() }

func (s *Session) Channel() net.Channel { return s.channel }

func (s *Session) Input() *Input { return s.input }

// Commit applies a locally created action and broadcasts it.
func (s *Session) Commit(a state.Action) {
	a = s.clock.Stamp(a)
	s.apply(a, s.log.Append)
	if s.channel != nil {
		s.channel.Broadcast(a)
	}
}

// Receive applies a remote action according to the session policy.
func (s *Session) Receive(a state.Action) {
	add := s.log.Insert
	if s.policy == Overwrite {
		add = s.log.Append
	}
	s.apply(a, add)
	logging.Logger().Debug("applied remote action", "peer", a.Origin.Peer, "seq", a.Origin.Seq, "kind", a.Kind, "cursor", s.log.Cursor())
}

// apply adds a at the cursor. The committed surface shows exactly the
// active prefix, so drawing a on top of it is enough.
func (s *Session) apply(a state.Action, add func(state.Action) int) {
	at := s.log.Cursor()
	add(a)
	s.renderer.Invalidate(at)
	s.renderer.Augment(a)
	s.dirty = true
}

func (s *Session) Preview(a state.Action) {
	s.renderer.Preview(a)
	s.dirty = true
}

func (s *Session) ClearPreview() {
	if s.renderer.Previewing() {
		s.renderer.ClearPreview()
		s.dirty = true
	}
}

func (s *Session) PointerDown(p state.Point)  { s.input.PointerDown(p) }
func (s *Session) PointerMove(p state.Point)  { s.input.PointerMove(p) }
func (s *Session) PointerUp(p state.Point)    { s.input.PointerUp(p) }
func (s *Session) PointerLeave(p state.Point) { s.input.PointerLeave(p) }

// Undo steps the cursor back locally. It reports whether anything changed.
func (s *Session) Undo() bool {
	ok := s.history.Undo()
	s.dirty = s.dirty || ok
	return ok
}

// Redo steps the cursor forward locally. It reports whether anything changed.
func (s *Session) Redo() bool {
	ok := s.history.Redo()
	s.dirty = s.dirty || ok
	return ok
}

func (s *Session) CanUndo() bool { return s.log.CanUndo() }
func (s *Session) CanRedo() bool { return s.log.CanRedo() }

// Resize replays the active prefix at the new viewport size. An in-progress
// gesture keeps going but its preview is dropped.
func (s *Session) Resize(width, height int) {
	if w, h := s.renderer.Size(); w == width && h == height {
		return
	}
	s.renderer.Resize(width, height, s.log.Active())
	s.dirty = true
}

// Size returns the viewport size.
func (s *Session) Size() (width, height int) { return s.renderer.Size() }

// Actions returns the active prefix.
func (s *Session) Actions() []state.Action { return s.log.Active() }

// Cursor returns the log cursor.
func (s *Session) Cursor() int { return s.log.Cursor() }

// Len returns the full log length, redo tail included.
func (s *Session) Len() int { return s.log.Len() }

// Load replaces the log with actions, all active. Nothing is broadcast.
func (s *Session) Load(actions []state.Action) {
	s.log.Reset(actions)
	s.renderer.Invalidate(0)
	s.renderer.Replay(s.log.Active())
	s.dirty = true
}

// Import commits actions as if drawn locally, so peers receive them too.
func (s *Session) Import(actions []state.Action) {
	for _, a := range actions {
		if a.Kind == state.KindUnknown {
			continue
		}
		s.Commit(a.WithOrigin(state.Origin{}))
	}
	logging.Logger().Info("imported actions", "count", len(actions), "peer", s.Peer())
}

// Frame returns a copy of what should be on screen.
func (s *Session) Frame() *image.NRGBA { return s.renderer.Image() }

// takeDirty reports whether pixels changed since the last call.
func (s *Session) takeDirty() bool {
	d := s.dirty
	s.dirty = false
	return d
}
