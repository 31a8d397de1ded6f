package render

import (
	"image"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"localboard/internal/state"
)

func pt(x, y float64) state.Point { return state.Point{X: x, Y: y} }

func renderImage(w, h int, actions []state.Action) *image.NRGBA {
	s := NewSurface(w, h)
	defer s.Close()
	Render(s, actions)
	return s.Image()
}

func alphaAt(img *image.NRGBA, x, y int) uint8 {
	return img.NRGBAAt(x, y).A
}

func sampleActions() []state.Action {
	return []state.Action{
		state.NewStroke(pt(10, 10), pt(80, 60), "#ff0000", 4),
		state.NewStroke(pt(80, 60), pt(90, 20), "#ff0000", 4),
		state.NewShape(state.ShapeCircle, pt(50, 50), pt(70, 50), "blue", 3),
		state.NewShape(state.ShapeRectangle, pt(5, 70), pt(40, 95), "#00ff00", 2),
		state.NewErase(pt(40, 0), pt(40, 100), 8),
		state.NewShape(state.ShapeLine, pt(0, 99), pt(99, 0), "black", 1),
		state.NewShape(state.ShapePolygon, pt(70, 75), pt(85, 75), "#123456", 2),
		state.NewTextStamp(pt(5, 30), "hi", 16, "#000000"),
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	actions := sampleActions()
	first := renderImage(100, 100, actions)
	second := renderImage(100, 100, actions)
	assert.Equal(t, first.Pix, second.Pix)

	s := NewSurface(100, 100)
	Render(s, actions)
	Render(s, actions)
	assert.Equal(t, first.Pix, s.Image().Pix)
}

func TestRenderStroke(t *testing.T) {
	img := renderImage(100, 100, []state.Action{
		state.NewStroke(pt(10, 50), pt(90, 50), "#ff0000", 5),
	})
	c := img.NRGBAAt(50, 50)
	assert.Equal(t, uint8(255), c.A)
	assert.Equal(t, uint8(255), c.R)
	assert.Equal(t, uint8(0), c.G)
	assert.Zero(t, alphaAt(img, 50, 10))
}

func TestRenderErase(t *testing.T) {
	img := renderImage(100, 100, []state.Action{
		state.NewStroke(pt(10, 50), pt(90, 50), "#000000", 10),
		state.NewErase(pt(50, 20), pt(50, 80), 20),
	})
	assert.Zero(t, alphaAt(img, 50, 50))
	assert.Equal(t, uint8(255), alphaAt(img, 20, 50))
	assert.Equal(t, uint8(255), alphaAt(img, 80, 50))
}

func TestRenderEraseOnEmptyAddsNothing(t *testing.T) {
	img := renderImage(60, 60, []state.Action{state.NewErase(pt(0, 0), pt(60, 60), 30)})
	assert.Equal(t, make([]uint8, len(img.Pix)), img.Pix)
}

func TestRenderEraseDoesNotLeakIntoLaterErases(t *testing.T) {
	withErase := renderImage(100, 100, []state.Action{
		state.NewErase(pt(10, 10), pt(20, 10), 6),
		state.NewStroke(pt(0, 80), pt(100, 80), "#000000", 6),
		state.NewErase(pt(90, 90), pt(95, 95), 2),
	})
	without := renderImage(100, 100, []state.Action{
		state.NewStroke(pt(0, 80), pt(100, 80), "#000000", 6),
	})
	assert.Equal(t, without.Pix, withErase.Pix)
}

func TestRenderShapes(t *testing.T) {
	tests := []struct {
		name    string
		action  state.Action
		covered []image.Point
		empty   []image.Point
	}{
		{
			name:    "circle",
			action:  state.NewShape(state.ShapeCircle, pt(50, 50), pt(80, 50), "#000000", 4),
			covered: []image.Point{{80, 50}, {20, 50}, {50, 80}},
			empty:   []image.Point{{50, 50}, {5, 5}},
		},
		{
			name:    "rectangle",
			action:  state.NewShape(state.ShapeRectangle, pt(60, 40), pt(20, 20), "#000000", 2),
			covered: []image.Point{{40, 20}, {40, 40}, {20, 30}, {60, 30}},
			empty:   []image.Point{{40, 30}, {90, 90}},
		},
		{
			name:    "line",
			action:  state.NewShape(state.ShapeLine, pt(10, 50), pt(90, 50), "#000000", 4),
			covered: []image.Point{{50, 50}, {15, 50}},
			empty:   []image.Point{{50, 40}},
		},
		{
			name:    "polygon",
			action:  state.NewShape(state.ShapePolygon, pt(50, 50), pt(80, 50), "#000000", 4),
			covered: []image.Point{{79, 50}},
			empty:   []image.Point{{50, 50}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := renderImage(100, 100, []state.Action{tt.action})
			for _, p := range tt.covered {
				assert.NotZero(t, alphaAt(img, p.X, p.Y), "expected ink at %v", p)
			}
			for _, p := range tt.empty {
				assert.Zero(t, alphaAt(img, p.X, p.Y), "expected no ink at %v", p)
			}
		})
	}
}

func TestRenderText(t *testing.T) {
	a := state.NewTextStamp(pt(10, 40), "Hello", 24, "#000000")
	img := renderImage(200, 100, []state.Action{a})

	b := Bounds(a)
	x0, y0, x1, y1 := b.pixels(200, 100)
	inked := 0
	for y := 0; y < 100; y++ {
		for x := 0; x < 200; x++ {
			if alphaAt(img, x, y) == 0 {
				continue
			}
			inked++
			assert.True(t, x >= x0 && x < x1 && y >= y0 && y < y1, "ink at (%d,%d) outside bounds", x, y)
		}
	}
	assert.Positive(t, inked)
}

func TestRenderSkipsUnknown(t *testing.T) {
	known := state.NewStroke(pt(10, 10), pt(50, 50), "#000000", 3)
	unknown := state.Action{Kind: state.KindUnknown, Tool: "spray", From: pt(0, 0), To: pt(100, 100)}

	assert.Equal(t,
		renderImage(64, 64, []state.Action{known}).Pix,
		renderImage(64, 64, []state.Action{unknown, known, unknown}).Pix,
	)
}

func TestRenderNilSurface(t *testing.T) {
	assert.Nil(t, NewSurface(0, 10))
	assert.NotPanics(t, func() {
		Render(nil, sampleActions())
		RenderWithPreview(nil, sampleActions(), &sampleActions()[0])
		Draw(nil, sampleActions()[0])
	})
}

func TestRenderWithPreview(t *testing.T) {
	actions := sampleActions()[:2]
	preview := state.NewShape(state.ShapeCircle, pt(30, 30), pt(40, 30), "#000000", 2)

	s := NewSurface(100, 100)
	RenderWithPreview(s, actions, &preview)
	assert.Equal(t, renderImage(100, 100, append(append([]state.Action{}, actions...), preview)).Pix, s.Image().Pix)

	RenderWithPreview(s, actions, nil)
	assert.Equal(t, renderImage(100, 100, actions).Pix, s.Image().Pix)
}

func TestResizeReplaysAtLogicalPositions(t *testing.T) {
	actions := []state.Action{
		state.NewStroke(pt(10, 10), pt(60, 40), "#ff0000", 4),
		state.NewShape(state.ShapeCircle, pt(40, 40), pt(55, 40), "blue", 2),
	}
	small := renderImage(80, 80, actions)

	r := NewRenderer(80, 80)
	r.Replay(actions)
	r.Resize(200, 150, actions)
	w, h := r.Size()
	require.Equal(t, 200, w)
	require.Equal(t, 150, h)

	big := r.Image()
	for y := 0; y < 70; y++ {
		for x := 0; x < 70; x++ {
			require.Equal(t, small.NRGBAAt(x, y), big.NRGBAAt(x, y), "pixel (%d,%d)", x, y)
		}
	}

	r.Resize(80, 80, actions)
	assert.Equal(t, small.Pix, r.Image().Pix)
}

func TestRendererKeyframesMatchFullReplay(t *testing.T) {
	actions := append(sampleActions(), sampleActions()...)
	r := NewRenderer(100, 100, WithKeyframeInterval(3))

	r.Replay(actions)
	assert.Equal(t, renderImage(100, 100, actions).Pix, r.Image().Pix)
	assert.Equal(t, []int{3, 6, 9, 12, 15}, r.keys.keys())

	// undo back to 7 actions reuses the snapshot at 6
	r.Replay(actions[:7])
	assert.Equal(t, renderImage(100, 100, actions[:7]).Pix, r.Image().Pix)

	// the log changes at index 4: snapshots past it are stale
	changed := append(append([]state.Action{}, actions[:4]...), state.NewStroke(pt(0, 0), pt(99, 99), "#000000", 9))
	r.Invalidate(4)
	assert.Equal(t, []int{3}, r.keys.keys())
	r.Replay(changed)
	assert.Equal(t, renderImage(100, 100, changed).Pix, r.Image().Pix)
}

func TestRendererAugmentMatchesReplay(t *testing.T) {
	actions := sampleActions()
	r := NewRenderer(100, 100)
	for _, a := range actions {
		r.Augment(a)
	}
	assert.Equal(t, renderImage(100, 100, actions).Pix, r.Image().Pix)
}

func TestRendererPreviewIsNotCommitted(t *testing.T) {
	actions := sampleActions()[:3]
	preview := state.NewShape(state.ShapeRectangle, pt(10, 10), pt(90, 90), "#000000", 3)

	r := NewRenderer(100, 100)
	r.Replay(actions)
	committed := r.Image()

	r.Preview(preview)
	assert.True(t, r.Previewing())
	assert.NotEqual(t, committed.Pix, r.Image().Pix)

	next := state.NewStroke(pt(0, 50), pt(100, 50), "#00ff00", 2)
	r.Augment(next)
	assert.Equal(t, renderImage(100, 100, []state.Action{actions[0], actions[1], actions[2], next, preview}).Pix, r.Image().Pix)

	r.ClearPreview()
	assert.Equal(t, renderImage(100, 100, []state.Action{actions[0], actions[1], actions[2], next}).Pix, r.Image().Pix)

	r.Preview(preview)
	r.Resize(100, 100, actions)
	assert.False(t, r.Previewing())
	assert.Equal(t, committed.Pix, r.Image().Pix)
}

func TestRendererEmptyViewport(t *testing.T) {
	r := NewRenderer(0, 0)
	assert.NotPanics(t, func() {
		r.Replay(sampleActions())
		r.Augment(sampleActions()[0])
		r.Preview(sampleActions()[0])
	})
	assert.Equal(t, 0, r.Image().Bounds().Dx())
}

func TestPolygonVertices(t *testing.T) {
	vs := PolygonVertices(pt(0, 0), pt(10, 0), 5)
	require.Len(t, vs, 5)
	assert.Equal(t, pt(10, 0), vs[0])
	for _, v := range vs {
		assert.InDelta(t, 10, pt(0, 0).Dist(v), 1e-9)
	}
	assert.Nil(t, PolygonVertices(pt(1, 1), pt(1, 1), 5))
}

func TestBoundsCulling(t *testing.T) {
	surface := Rect{MaxX: 100, MaxY: 100}
	off := state.NewStroke(pt(-50, -50), pt(-20, -20), "#000000", 4)
	assert.False(t, Bounds(off).Overlaps(surface))

	// circle centered off screen still reaches in
	reach := state.NewShape(state.ShapeCircle, pt(-20, 50), pt(10, 50), "#000000", 4)
	assert.True(t, Bounds(reach).Overlaps(surface))
	img := renderImage(100, 100, []state.Action{reach})
	assert.NotZero(t, alphaAt(img, 10, 50))

	assert.True(t, Bounds(state.Action{Kind: state.KindUnknown}).Empty())
}

func TestRenderEraseFarEndpoint(t *testing.T) {
	line := state.NewStroke(pt(0, 50), pt(100, 50), "#000000", 20)
	far := state.NewErase(pt(10, 50), pt(1e20, 50), 10)
	small := state.NewErase(pt(80, 50), pt(81, 50), 4)

	img := renderImage(100, 100, []state.Action{line, far})
	assert.Zero(t, alphaAt(img, 30, 50))
	assert.Zero(t, alphaAt(img, 95, 50))
	assert.Equal(t, uint8(255), alphaAt(img, 2, 50))

	fresh := renderImage(100, 100, []state.Action{line, small})
	s := NewSurface(100, 100)
	defer s.Close()
	Render(s, []state.Action{line, far})
	Render(s, []state.Action{line, small})
	reused := s.Image()
	assert.Equal(t, fresh.Pix, reused.Pix)
	assert.Equal(t, uint8(255), alphaAt(reused, 80, 47))
}

func TestClipSegment(t *testing.T) {
	view := Rect{MaxX: 100, MaxY: 100}
	tests := []struct {
		name     string
		from, to state.Point
		ok       bool
		a, b     state.Point
	}{
		{"inside", pt(10, 10), pt(20, 20), true, pt(10, 10), pt(20, 20)},
		{"far right", pt(10, 50), pt(1e20, 50), true, pt(10, 50), pt(100, 50)},
		{"crossing", pt(-50, 50), pt(150, 50), true, pt(0, 50), pt(100, 50)},
		{"outside", pt(-50, -50), pt(-10, -10), false, state.Point{}, state.Point{}},
		{"nan", pt(0, 0), pt(math.NaN(), 1), false, state.Point{}, state.Point{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b, ok := clipSegment(tt.from, tt.to, view)
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.InDelta(t, tt.a.X, a.X, 1e-6)
				assert.InDelta(t, tt.a.Y, a.Y, 1e-6)
				assert.InDelta(t, tt.b.X, b.X, 1e-6)
				assert.InDelta(t, tt.b.Y, b.Y, 1e-6)
			}
		})
	}
}

func TestPixelsClampsFarBounds(t *testing.T) {
	x0, y0, x1, y1 := Rect{MinX: -1e20, MinY: 10, MaxX: 1e20, MaxY: math.Inf(1)}.pixels(100, 80)
	assert.Equal(t, [4]int{0, 10, 100, 80}, [4]int{x0, y0, x1, y1})
}

func TestFaceCacheIsBounded(t *testing.T) {
	require.NotNil(t, face(12))
	for size := 1; size <= maxFaces+10; size++ {
		require.NotNil(t, face(float64(size)+0.5))
	}
	assert.LessOrEqual(t, faces.Len(), maxFaces)
	assert.True(t, faces.Contains(float64(maxFaces+10)+0.5))
	assert.False(t, faces.Contains(1.5))
}
