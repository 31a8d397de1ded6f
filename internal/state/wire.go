package state

import (
	"encoding/json"
	"fmt"
)

// Wire tool tags. A message without a tool is a brush segment.
const (
	ToolBrush     = "brush"
	ToolEraser    = "eraser"
	ToolLine      = "line"
	ToolRectangle = "rectangle"
	ToolCircle    = "circle"
	ToolPolygon   = "polygon"
	ToolText      = "text"
)

// Message is the flat JSON form of one action:
//
//	{x0,y0,x1,y1,color,size,tool}           strokes, erase, shapes
//	{x0,y0,text,fontSize,fontColor,tool}     text
//
// sender, session and seq carry the action's origin.
type Message struct {
	X0        float64 `json:"x0"`
	Y0        float64 `json:"y0"`
	X1        float64 `json:"x1,omitempty"`
	Y1        float64 `json:"y1,omitempty"`
	Color     string  `json:"color,omitempty"`
	Size      float64 `json:"size,omitempty"`
	Text      string  `json:"text,omitempty"`
	FontSize  float64 `json:"fontSize,omitempty"`
	FontColor string  `json:"fontColor,omitempty"`
	Tool      string  `json:"tool,omitempty"`
	Sender    string  `json:"sender,omitempty"`
	Session   string  `json:"session,omitempty"`
	Seq       uint64  `json:"seq,omitempty"`
}

// Encode converts a to its wire message.
func Encode(a Action) Message {
	m := Message{
		X0:     a.From.X,
		Y0:     a.From.Y,
		Sender:  a.Origin.Peer,
		Session: a.Origin.Session,
		Seq:     a.Origin.Seq,
	}
	switch a.Kind {
	case KindStroke:
		m.X1, m.Y1, m.Color, m.Size, m.Tool = a.To.X, a.To.Y, a.Color, a.Width, ToolBrush
	case KindErase:
		m.X1, m.Y1, m.Size, m.Tool = a.To.X, a.To.Y, a.Width, ToolEraser
	case KindShape:
		m.X1, m.Y1, m.Color, m.Size, m.Tool = a.To.X, a.To.Y, a.Color, a.Width, string(a.Shape)
	case KindText:
		m.Text, m.FontSize, m.FontColor, m.Tool = a.Text, a.FontSize, a.Color, ToolText
	default:
		m.X1, m.Y1, m.Tool = a.To.X, a.To.Y, a.Tool
	}
	return m
}

// Decode converts a wire message to an action. Unrecognized tools decode to
// KindUnknown so the action still occupies its slot in the log.
func Decode(m Message) Action {
	from, to := Point{X: m.X0, Y: m.Y0}, Point{X: m.X1, Y: m.Y1}
	var a Action
	switch tool := m.Tool; {
	case tool == "" || tool == ToolBrush:
		a = NewStroke(from, to, m.Color, m.Size)
	case tool == ToolEraser:
		a = NewErase(from, to, m.Size)
	case tool == ToolText:
		a = NewTextStamp(from, m.Text, m.FontSize, m.FontColor)
	case ShapeKind(tool).Valid():
		a = NewShape(ShapeKind(tool), from, to, m.Color, m.Size)
	default:
		a = Action{Kind: KindUnknown, From: from, To: to, Tool: tool}
	}
	return a.WithOrigin(Origin{Peer: m.Sender, Session: m.Session, Seq: m.Seq})
}

// Marshal encodes a as JSON.
func Marshal(a Action) ([]byte, error) {
	return json.Marshal(Encode(a))
}

// Unmarshal decodes one JSON message.
func Unmarshal(data []byte) (Action, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return Action{}, fmt.Errorf("decode action: %w", err)
	}
	return Decode(m), nil
}
