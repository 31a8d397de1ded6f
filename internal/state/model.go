package state

import "math"

// Point is a position in canvas space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

// Kind discriminates the Action variants.
type Kind int

const (
	KindUnknown Kind = iota
	KindStroke
	KindErase
	KindShape
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindStroke:
		return "stroke"
	case KindErase:
		return "erase"
	case KindShape:
		return "shape"
	case KindText:
		return "text"
	}
	return "unknown"
}

// ShapeKind selects the outline drawn for a KindShape action.
type ShapeKind string

const (
	ShapeLine      ShapeKind = "line"
	ShapeRectangle ShapeKind = "rectangle"
	ShapeCircle    ShapeKind = "circle"
	ShapePolygon   ShapeKind = "polygon"
)

// Valid reports whether s names a known shape.
func (s ShapeKind) Valid() bool {
	switch s {
	case ShapeLine, ShapeRectangle, ShapeCircle, ShapePolygon:
		return true
	}
	return false
}

// Origin identifies who created an action. Peer is the creating peer's id,
// Session is unique per process run of that peer and Seq counts the actions
// of that session, starting at 1.
type Origin struct {
	Peer    string
	Session string
	Seq     uint64
}

// IsZero reports whether the origin was never assigned.
func (o Origin) IsZero() bool {
	return o == Origin{}
}

// Action is one immutable drawing event. Which fields are meaningful depends
// on Kind:
//
//	KindStroke: From, To, Color, Width
//	KindErase:  From, To, Width
//	KindShape:  Shape, From (origin), To (endpoint), Color, Width
//	KindText:   From (origin), Text, FontSize, Color
//	KindUnknown: Tool carries the unrecognized wire tag
//
// Actions are passed by value and never modified once they are in a Log.
type Action struct {
	Kind     Kind
	Shape    ShapeKind
	From     Point
	To       Point
	Color    string
	Width    float64
	Text     string
	FontSize float64
	Tool     string
	Origin   Origin
}

// NewStroke returns one freehand segment.
func NewStroke(from, to Point, color string, width float64) Action {
	return Action{Kind: KindStroke, From: from, To: to, Color: color, Width: width}
}

// NewErase returns one erase segment.
func NewErase(from, to Point, width float64) Action {
	return Action{Kind: KindErase, From: from, To: to, Width: width}
}

// NewShape returns one committed discrete primitive spanning origin to endpoint.
func NewShape(kind ShapeKind, origin, endpoint Point, color string, width float64) Action {
	return Action{Kind: KindShape, Shape: kind, From: origin, To: endpoint, Color: color, Width: width}
}

// NewTextStamp returns one committed text placement.
func NewTextStamp(origin Point, text string, fontSize float64, color string) Action {
	return Action{Kind: KindText, From: origin, Text: text, FontSize: fontSize, Color: color}
}

// WithOrigin returns a copy of a tagged with o.
func (a Action) WithOrigin(o Origin) Action {
	a.Origin = o
	return a
}

// Radius is the circle radius of a shape action.
func (a Action) Radius() float64 {
	return a.From.Dist(a.To)
}
