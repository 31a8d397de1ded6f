// Package render rasterizes an ordered sequence of drawing actions.
//
// Render is a pure function of the surface size and the action sequence:
// calling it twice with the same inputs yields identical pixels. Content is
// always reconstructed from the actions, never scaled from older pixels.
package render

import (
	"image/color"
	"math"

	"github.com/gogpu/gg"

	"localboard/internal/logging"
	"localboard/internal/state"
)

const (
	defaultWidth    = 1
	defaultFontSize = 16
	polygonSides    = 5
)

// Render clears s and draws actions in order.
func Render(s *Surface, actions []state.Action) {
	if s == nil {
		return
	}
	s.Clear()
	for _, a := range actions {
		Draw(s, a)
	}
}

// RenderWithPreview renders actions and then draws preview on top. The
// preview is not part of any log.
func RenderWithPreview(s *Surface, actions []state.Action, preview *state.Action) {
	Render(s, actions)
	if preview != nil {
		Draw(s, *preview)
	}
}

// Draw adds a single action on top of the current content of s. Actions
// entirely outside the surface and actions of unknown kind are skipped.
func Draw(s *Surface, a state.Action) {
	if s == nil {
		return
	}
	b := Bounds(a)
	if b.Empty() || !b.Overlaps(s.viewport()) {
		if a.Kind == state.KindUnknown {
			logging.Logger().Debug("skipping unknown action", "tool", a.Tool, "peer", a.Origin.Peer, "seq", a.Origin.Seq)
		}
		return
	}

	switch a.Kind {
	case state.KindStroke, state.KindErase:
		from, to, ok := clipSegment(a.From, a.To, s.viewport().Pad(lineWidth(a.Width)/2+aaPadding+1))
		if !ok {
			return
		}
		if a.Kind == state.KindErase {
			erase(s, from, to, a.Width, b)
			return
		}
		drawSegment(s.dc, from, to, state.ParseColor(colorOf(a.Color)), a.Width)
	case state.KindShape:
		drawShape(s.dc, a)
	case state.KindText:
		drawText(s.dc, a)
	}
}

func drawSegment(dc *gg.Context, from, to state.Point, c color.Color, width float64) {
	dc.SetColor(c)
	dc.SetLineWidth(lineWidth(width))
	dc.SetLineCap(gg.LineCapRound)
	dc.SetLineJoin(gg.LineJoinRound)
	dc.DrawLine(from.X, from.Y, to.X, to.Y)
	stroke(dc)
}

func drawShape(dc *gg.Context, a state.Action) {
	dc.SetColor(state.ParseColor(colorOf(a.Color)))
	dc.SetLineWidth(lineWidth(a.Width))
	dc.SetLineCap(gg.LineCapButt)
	dc.SetLineJoin(gg.LineJoinMiter)

	switch a.Shape {
	case state.ShapeLine:
		dc.DrawLine(a.From.X, a.From.Y, a.To.X, a.To.Y)
	case state.ShapeRectangle:
		x, y := math.Min(a.From.X, a.To.X), math.Min(a.From.Y, a.To.Y)
		dc.DrawRectangle(x, y, math.Abs(a.To.X-a.From.X), math.Abs(a.To.Y-a.From.Y))
	case state.ShapeCircle:
		r := a.Radius()
		if r == 0 {
			return
		}
		dc.DrawCircle(a.From.X, a.From.Y, r)
	case state.ShapePolygon:
		vs := PolygonVertices(a.From, a.To, polygonSides)
		if vs == nil {
			return
		}
		dc.MoveTo(vs[0].X, vs[0].Y)
		for _, v := range vs[1:] {
			dc.LineTo(v.X, v.Y)
		}
		dc.ClosePath()
	default:
		return
	}
	stroke(dc)
}

func drawText(dc *gg.Context, a state.Action) {
	if a.Text == "" {
		return
	}
	f := face(fontSize(a.FontSize))
	if f == nil {
		return
	}
	dc.SetFont(f)
	dc.SetColor(state.ParseColor(colorOf(a.Color)))
	dc.DrawString(a.Text, a.From.X, a.From.Y)
}

// PolygonVertices returns the corners of a regular polygon centered on
// center with one corner at corner. It returns nil for a degenerate polygon.
func PolygonVertices(center, corner state.Point, sides int) []state.Point {
	r := center.Dist(corner)
	if r == 0 || sides < 3 {
		return nil
	}
	start := math.Atan2(corner.Y-center.Y, corner.X-center.X)
	vs := make([]state.Point, sides)
	for i := range vs {
		theta := start + 2*math.Pi*float64(i)/float64(sides)
		vs[i] = state.Point{X: center.X + r*math.Cos(theta), Y: center.Y + r*math.Sin(theta)}
	}
	vs[0] = corner
	return vs
}

func stroke(dc *gg.Context) {
	if err := dc.Stroke(); err != nil {
		logging.Logger().Warn("stroke failed", "err", err)
	}
}

func lineWidth(w float64) float64 {
	if w <= 0 || math.IsNaN(w) {
		return defaultWidth
	}
	return w
}

func fontSize(size float64) float64 {
	if size <= 0 || math.IsNaN(size) {
		return defaultFontSize
	}
	return size
}

func colorOf(c string) string {
	if c == "" {
		return state.DefaultColor
	}
	return c
}
