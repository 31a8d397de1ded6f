package board

import (
	"localboard/internal/render"
	"localboard/internal/state"
)

// History moves the log cursor and resynchronizes the renderer. Undo and
// redo stay local; nothing is broadcast.
type History struct {
	log      *state.Log
	renderer *render.Renderer
}

func NewHistory(log *state.Log, renderer *render.Renderer) *History {
	return &History{log: log, renderer: renderer}
}

// Undo reports whether the cursor moved.
func (h *History) Undo() bool {
	if !h.log.Undo() {
		return false
	}
	h.renderer.Replay(h.log.Active())
	return true
}

// Redo reports whether the cursor moved.
func (h *History) Redo() bool {
	if !h.log.Redo() {
		return false
	}
	h.renderer.Replay(h.log.Active())
	return true
}
