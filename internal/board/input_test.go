package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"localboard/internal/state"
)

type sinkRecorder struct {
	commits  []state.Action
	previews []state.Action
	cleared  int
}

func (r *sinkRecorder) Commit(a state.Action)  { r.commits = append(r.commits, a) }
func (r *sinkRecorder) Preview(a state.Action) { r.previews = append(r.previews, a) }
func (r *sinkRecorder) ClearPreview()          { r.cleared++ }

func pt(x, y float64) state.Point { return state.Point{X: x, Y: y} }

func newTestInput(tool string) (*Input, *sinkRecorder) {
	rec := &sinkRecorder{}
	p := DefaultParams()
	p.Tool = tool
	p.Color = "#ff0000"
	p.Size = 3
	return NewInput(rec, p), rec
}

func TestInputBrushEmitsSegments(t *testing.T) {
	in, rec := newTestInput(state.ToolBrush)
	in.PointerDown(pt(0, 0))
	assert.True(t, in.Drawing())
	in.PointerMove(pt(1, 1))
	in.PointerMove(pt(1, 1))
	in.PointerMove(pt(2, 3))
	in.PointerUp(pt(2, 3))
	assert.False(t, in.Drawing())

	assert.Equal(t, []state.Action{
		state.NewStroke(pt(0, 0), pt(1, 1), "#ff0000", 3),
		state.NewStroke(pt(1, 1), pt(2, 3), "#ff0000", 3),
	}, rec.commits)
	assert.Empty(t, rec.previews)
}

func TestInputEraser(t *testing.T) {
	in, rec := newTestInput(state.ToolEraser)
	in.PointerDown(pt(5, 5))
	in.PointerMove(pt(10, 5))
	in.PointerLeave(pt(20, 5))

	assert.Equal(t, []state.Action{state.NewErase(pt(5, 5), pt(10, 5), 3)}, rec.commits)
	assert.False(t, in.Drawing())
}

func TestInputShapePreviewsThenCommitsOnce(t *testing.T) {
	for _, tool := range []string{state.ToolLine, state.ToolRectangle, state.ToolCircle, state.ToolPolygon} {
		t.Run(tool, func(t *testing.T) {
			in, rec := newTestInput(tool)
			in.PointerDown(pt(10, 10))
			in.PointerMove(pt(12, 12))
			in.PointerMove(pt(13, 14))
			assert.Empty(t, rec.commits)
			require.Len(t, rec.previews, 2)
			assert.Equal(t, state.NewShape(state.ShapeKind(tool), pt(10, 10), pt(13, 14), "#ff0000", 3), rec.previews[1])

			in.PointerUp(pt(20, 20))
			assert.Equal(t, 1, rec.cleared)
			assert.Equal(t, []state.Action{state.NewShape(state.ShapeKind(tool), pt(10, 10), pt(20, 20), "#ff0000", 3)}, rec.commits)
		})
	}
}

func TestInputTextStampsOnPointerDown(t *testing.T) {
	in, rec := newTestInput(state.ToolText)
	in.SetText("hi")
	in.SetFontSize(24)
	in.SetFontColor("#0000ff")

	in.PointerDown(pt(5, 5))
	assert.Equal(t, []state.Action{state.NewTextStamp(pt(5, 5), "hi", 24, "#0000ff")}, rec.commits)
	in.PointerMove(pt(30, 30))
	in.PointerUp(pt(30, 30))
	assert.Len(t, rec.commits, 1)

	in.SetText("")
	in.PointerDown(pt(1, 1))
	in.PointerUp(pt(1, 1))
	assert.Len(t, rec.commits, 1)
}

func TestInputToolSwitchMidGesture(t *testing.T) {
	in, rec := newTestInput(state.ToolBrush)
	in.PointerDown(pt(0, 0))
	in.PointerMove(pt(1, 0))
	in.SetTool(state.ToolCircle)
	in.SetColor("#00ff00")
	in.PointerMove(pt(2, 0))
	in.PointerUp(pt(2, 0))

	require.Len(t, rec.commits, 2)
	for _, a := range rec.commits {
		assert.Equal(t, state.KindStroke, a.Kind)
		assert.Equal(t, "#ff0000", a.Color)
	}
	assert.Empty(t, rec.previews)

	in.PointerDown(pt(0, 0))
	in.PointerMove(pt(3, 4))
	in.PointerUp(pt(3, 4))
	require.Len(t, rec.commits, 3)
	assert.Equal(t, state.NewShape(state.ShapeCircle, pt(0, 0), pt(3, 4), "#00ff00", 3), rec.commits[2])
}

func TestInputIgnoresIdleAndUnknown(t *testing.T) {
	in, rec := newTestInput("spray")
	in.PointerMove(pt(1, 1))
	in.PointerUp(pt(1, 1))
	in.PointerDown(pt(0, 0))
	assert.False(t, in.Drawing())
	in.PointerMove(pt(5, 5))
	assert.Empty(t, rec.commits)
	assert.Empty(t, rec.previews)
}

func TestInputPointerDownClosesOpenGesture(t *testing.T) {
	in, rec := newTestInput(state.ToolRectangle)
	in.PointerDown(pt(0, 0))
	in.PointerMove(pt(4, 4))
	in.PointerDown(pt(10, 10))

	assert.Equal(t, []state.Action{state.NewShape(state.ShapeRectangle, pt(0, 0), pt(4, 4), "#ff0000", 3)}, rec.commits)
	assert.True(t, in.Drawing())
}
