package render

import (
	"image"

	"localboard/internal/logging"
	"localboard/internal/state"
)

// DefaultKeyframeInterval is how many actions separate two replay snapshots.
const DefaultKeyframeInterval = 256

// Renderer keeps the committed surface for one session plus the preview
// overlay shown while a discrete gesture is in progress.
//
// The committed surface always shows exactly the actions last passed to
// Replay followed by every Augment since. The preview is drawn on a separate
// frame and never reaches the committed surface.
type Renderer struct {
	base    *Surface
	frame   *Surface
	keys    *keyframes
	preview *state.Action
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithKeyframeInterval sets the replay snapshot interval. Zero disables
// snapshots.
func WithKeyframeInterval(n int) Option {
	return func(r *Renderer) {
		r.keys.interval = n
	}
}

// NewRenderer returns a renderer for a width x height viewport. An empty
// viewport is allowed; drawing is a no-op until Resize gives it a size.
func NewRenderer(width, height int, opts ...Option) *Renderer {
	r := &Renderer{keys: newKeyframes(DefaultKeyframeInterval)}
	for _, opt := range opts {
		opt(r)
	}
	r.base = NewSurface(width, height)
	return r
}

// Size returns the current viewport size.
func (r *Renderer) Size() (int, int) {
	return r.base.Width(), r.base.Height()
}

// Resize reallocates the surfaces at the new size, discards any preview and
// replays actions from scratch.
func (r *Renderer) Resize(width, height int, actions []state.Action) {
	r.base.Close()
	r.frame.Close()
	r.base, r.frame, r.preview = NewSurface(width, height), nil, nil
	r.keys.reset()
	logging.Logger().Debug("surface resized", "width", width, "height", height, "actions", len(actions))
	r.Replay(actions)
}

// Replay redraws the committed surface from actions, starting from the
// longest valid snapshot.
func (r *Renderer) Replay(actions []state.Action) {
	if r.base == nil {
		return
	}
	start, px := r.keys.nearest(len(actions))
	if px != nil {
		r.base.load(px)
	} else {
		r.base.Clear()
	}
	for i := start; i < len(actions); i++ {
		Draw(r.base, actions[i])
		if n := i + 1; r.keys.due(n) {
			r.keys.store(n, r.base.snapshot())
		}
	}
	r.compose()
}

// Augment draws a on top of the committed surface.
func (r *Renderer) Augment(a state.Action) {
	Draw(r.base, a)
	r.compose()
}

// Invalidate tells the renderer that the log changed at index from, so no
// snapshot of a longer prefix may be reused.
func (r *Renderer) Invalidate(from int) {
	r.keys.invalidate(from)
}

// Preview shows p on top of the committed content until ClearPreview.
func (r *Renderer) Preview(p state.Action) {
	r.preview = &p
	r.compose()
}

// ClearPreview drops the preview overlay.
func (r *Renderer) ClearPreview() {
	r.preview = nil
}

// Previewing reports whether a preview overlay is shown.
func (r *Renderer) Previewing() bool {
	return r.preview != nil
}

// Image returns a copy of what should be on screen.
func (r *Renderer) Image() *image.NRGBA {
	if r.preview != nil {
		return r.frame.Image()
	}
	return r.base.Image()
}

func (r *Renderer) compose() {
	if r.preview == nil || r.base == nil {
		return
	}
	if r.frame == nil {
		r.frame = NewSurface(r.base.Width(), r.base.Height())
	}
	r.frame.CopyFrom(r.base)
	Draw(r.frame, *r.preview)
}
