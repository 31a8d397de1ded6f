package board

import (
	"localboard/internal/state"
)

// Params are the tool settings chosen in the toolbar.
type Params struct {
	Tool      string
	Color     string
	Size      float64
	Text      string
	FontSize  float64
	FontColor string
}

// DefaultParams is a 1px black brush with 16px black text.
func DefaultParams() Params {
	return Params{
		Tool:      state.ToolBrush,
		Color:     state.DefaultColor,
		Size:      1,
		FontSize:  16,
		FontColor: state.DefaultColor,
	}
}

// Sink receives what the input state machine produces.
type Sink interface {
	// Commit records a finished action.
	Commit(a state.Action)
	// Preview shows a not yet committed shape.
	Preview(a state.Action)
	ClearPreview()
}

// gesture is the Drawing state. Its params are fixed when the pointer goes
// down so toolbar changes only affect the next gesture.
type gesture struct {
	params Params
	anchor state.Point
	last   state.Point
}

// Input turns pointer events into actions. A nil gesture means Idle.
type Input struct {
	sink    Sink
	params  Params
	gesture *gesture
}

func NewInput(sink Sink, params Params) *Input {
	return &Input{sink: sink, params: params}
}

func (in *Input) Params() Params { return in.params }

func (in *Input) SetParams(p Params) { in.params = p }

func (in *Input) SetTool(tool string) { in.params.Tool = tool }

func (in *Input) SetColor(c string) { in.params.Color = c }

func (in *Input) SetSize(size float64) { in.params.Size = size }

func (in *Input) SetText(text string) { in.params.Text = text }

func (in *Input) SetFontSize(size float64) { in.params.FontSize = size }

func (in *Input) SetFontColor(c string) { in.params.FontColor = c }

// Drawing reports whether a gesture is in progress.
func (in *Input) Drawing() bool { return in.gesture != nil }

// PointerDown starts a gesture at p. A gesture still open from a missed
// release is ended at its last position first.
func (in *Input) PointerDown(p state.Point) {
	if in.gesture != nil {
		in.PointerUp(in.gesture.last)
	}
	if !knownTool(in.params.Tool) {
		return
	}
	g := &gesture{params: in.params, anchor: p, last: p}
	in.gesture = g
	if g.params.Tool == state.ToolText && g.params.Text != "" {
		in.sink.Commit(state.NewTextStamp(p, g.params.Text, g.params.FontSize, g.params.FontColor))
	}
}

func (in *Input) PointerMove(p state.Point) {
	g := in.gesture
	if g == nil {
		return
	}
	switch tool := g.params.Tool; {
	case tool == state.ToolBrush:
		if p == g.last {
			return
		}
		in.sink.Commit(state.NewStroke(g.last, p, g.params.Color, g.params.Size))
	case tool == state.ToolEraser:
		if p == g.last {
			return
		}
		in.sink.Commit(state.NewErase(g.last, p, g.params.Size))
	case state.ShapeKind(tool).Valid():
		in.sink.Preview(state.NewShape(state.ShapeKind(tool), g.anchor, p, g.params.Color, g.params.Size))
	}
	g.last = p
}

// PointerUp ends the gesture at p. Shape tools commit exactly one shape from
// the anchor to p.
func (in *Input) PointerUp(p state.Point) {
	g := in.gesture
	if g == nil {
		return
	}
	in.gesture = nil
	if kind := state.ShapeKind(g.params.Tool); kind.Valid() {
		in.sink.ClearPreview()
		in.sink.Commit(state.NewShape(kind, g.anchor, p, g.params.Color, g.params.Size))
	}
}

// PointerLeave ends the gesture like a release at p.
func (in *Input) PointerLeave(p state.Point) {
	in.PointerUp(p)
}

func knownTool(tool string) bool {
	switch tool {
	case state.ToolBrush, state.ToolEraser, state.ToolText:
		return true
	}
	return state.ShapeKind(tool).Valid()
}
