package render

import (
	"math"

	"localboard/internal/state"
)

// antialias padding around every footprint, in pixels.
const aaPadding = 2

// Rect is an axis-aligned area in canvas space.
type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

// Empty reports whether r covers no area.
func (r Rect) Empty() bool {
	return r.MaxX <= r.MinX || r.MaxY <= r.MinY
}

// Overlaps reports whether r and o share any area.
func (r Rect) Overlaps(o Rect) bool {
	return !(r.MaxX < o.MinX || o.MaxX < r.MinX ||
		r.MaxY < o.MinY || o.MaxY < r.MinY)
}

// Pad grows r by d on every side.
func (r Rect) Pad(d float64) Rect {
	return Rect{MinX: r.MinX - d, MinY: r.MinY - d, MaxX: r.MaxX + d, MaxY: r.MaxY + d}
}

// Union returns the smallest rect covering r and o.
func (r Rect) Union(o Rect) Rect {
	return Rect{
		MinX: math.Min(r.MinX, o.MinX),
		MinY: math.Min(r.MinY, o.MinY),
		MaxX: math.Max(r.MaxX, o.MaxX),
		MaxY: math.Max(r.MaxY, o.MaxY),
	}
}

// pixels clamps r to a width x height raster and returns integer bounds.
// The clamping happens in float space so far away coordinates cannot
// overflow the conversion.
func (r Rect) pixels(width, height int) (x0, y0, x1, y1 int) {
	w, h := float64(width), float64(height)
	x0 = int(math.Floor(clamp(r.MinX, 0, w)))
	y0 = int(math.Floor(clamp(r.MinY, 0, h)))
	x1 = min(width, int(math.Ceil(clamp(r.MaxX, 0, w)))+1)
	y1 = min(height, int(math.Ceil(clamp(r.MaxY, 0, h)))+1)
	return
}

// clamp limits v to [lo, hi]. NaN becomes lo.
func clamp(v, lo, hi float64) float64 {
	if !(v > lo) {
		return lo
	}
	return math.Min(v, hi)
}

// clipSegment cuts the segment from -> to down to the part inside r. It
// reports false when nothing of the segment lies inside.
func clipSegment(from, to state.Point, r Rect) (state.Point, state.Point, bool) {
	dx, dy := to.X-from.X, to.Y-from.Y
	t0, t1 := 0.0, 1.0
	edges := [4][2]float64{
		{-dx, from.X - r.MinX},
		{dx, r.MaxX - from.X},
		{-dy, from.Y - r.MinY},
		{dy, r.MaxY - from.Y},
	}
	for _, e := range edges {
		p, q := e[0], e[1]
		if math.IsNaN(p) || math.IsNaN(q) {
			return from, to, false
		}
		if p == 0 {
			if q < 0 {
				return from, to, false
			}
			continue
		}
		t := q / p
		if p < 0 {
			t0 = math.Max(t0, t)
		} else {
			t1 = math.Min(t1, t)
		}
		if t0 > t1 {
			return from, to, false
		}
	}
	a, b := from, to
	if t0 > 0 {
		a = state.Point{X: from.X + t0*dx, Y: from.Y + t0*dy}
	}
	if t1 < 1 {
		b = state.Point{X: from.X + t1*dx, Y: from.Y + t1*dy}
	}
	return a, b, true
}

func pointsRect(points ...state.Point) Rect {
	r := Rect{MinX: points[0].X, MinY: points[0].Y, MaxX: points[0].X, MaxY: points[0].Y}
	for _, p := range points[1:] {
		r.MinX = math.Min(r.MinX, p.X)
		r.MinY = math.Min(r.MinY, p.Y)
		r.MaxX = math.Max(r.MaxX, p.X)
		r.MaxY = math.Max(r.MaxY, p.Y)
	}
	return r
}

// Bounds returns a conservative footprint of everything a may touch when
// drawn. Unknown actions have an empty footprint.
func Bounds(a state.Action) Rect {
	w := lineWidth(a.Width)
	switch a.Kind {
	case state.KindStroke, state.KindErase:
		return pointsRect(a.From, a.To).Pad(w/2 + aaPadding)
	case state.KindShape:
		if a.Shape == state.ShapeCircle || a.Shape == state.ShapePolygon {
			r := a.Radius()
			return Rect{
				MinX: a.From.X - r, MinY: a.From.Y - r,
				MaxX: a.From.X + r, MaxY: a.From.Y + r,
			}.Pad(w + aaPadding)
		}
		// miter joins on rectangle corners reach past w/2
		return pointsRect(a.From, a.To).Pad(w + aaPadding)
	case state.KindText:
		size := fontSize(a.FontSize)
		n := float64(len([]rune(a.Text)))
		return Rect{
			MinX: a.From.X - size/2,
			MinY: a.From.Y - 1.5*size,
			MaxX: a.From.X + 1.2*size*n + size/2,
			MaxY: a.From.Y + size/2,
		}.Pad(aaPadding)
	}
	return Rect{}
}
