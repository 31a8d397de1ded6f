package export

import (
	"bytes"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"localboard/internal/state"
)

func pt(x, y float64) state.Point { return state.Point{X: x, Y: y} }

func sample() []state.Action {
	return []state.Action{
		state.NewStroke(pt(5, 20), pt(55, 20), "#ff0000", 6).WithOrigin(state.Origin{Peer: "alice", Seq: 1}),
		state.NewErase(pt(30, 0), pt(30, 40), 4),
		state.NewShape(state.ShapeRectangle, pt(10, 30), pt(50, 38), "#0000ff", 2),
		state.NewShape(state.ShapeCircle, pt(40, 10), pt(45, 10), "black", 1),
		state.NewShape(state.ShapePolygon, pt(15, 10), pt(20, 10), "#00ff00", 1),
		state.NewShape(state.ShapeLine, pt(0, 0), pt(60, 40), "#000000", 1),
		state.NewTextStamp(pt(2, 38), "hi", 12, "#000000"),
		{Kind: state.KindUnknown, Tool: "spray", From: pt(1, 1), To: pt(2, 2)},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.json")
	require.NoError(t, SaveFile(path, sample()))

	got, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, sample(), got)
}

func TestLoadRejectsGarbage(t *testing.T) {
	_, err := Load(strings.NewReader(`{"x0": 1}`))
	assert.Error(t, err)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadAcceptsHandWrittenBoards(t *testing.T) {
	got, err := Load(strings.NewReader(`[
		{"x0": 1, "y0": 2, "x1": 3, "y1": 4},
		{"x0": 5, "y0": 6, "text": "note", "tool": "text"}
	]`))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, state.KindStroke, got[0].Kind)
	assert.Equal(t, state.KindText, got[1].Kind)
	assert.Equal(t, "note", got[1].Text)
}

func TestFlattenOverWhite(t *testing.T) {
	img, err := Flatten(60, 40, sample()[:1])
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, img.NRGBAAt(30, 5))
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, img.NRGBAAt(30, 20))

	_, err = Flatten(0, 40, sample())
	assert.Error(t, err)
}

func TestPNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PNG(&buf, 60, 40, sample()))
	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 60, img.Bounds().Dx())
	assert.Equal(t, 40, img.Bounds().Dy())
}

func TestPDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PDF(&buf, 60, 40, sample()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))

	assert.Error(t, PDF(&buf, 0, 0, sample()))
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.json", "b.png", "b.pdf"} {
		path := filepath.Join(dir, name)
		require.NoError(t, WriteFile(path, 60, 40, sample()), name)
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Positive(t, info.Size(), name)
	}
	assert.ErrorIs(t, WriteFile(filepath.Join(dir, "b.bmp"), 60, 40, sample()), ErrUnknownFormat)
}

func TestDump(t *testing.T) {
	out := Dump(sample()[6:7])
	assert.Contains(t, out, "Action{")
	assert.Contains(t, out, `"hi"`)
}

func TestWriteByExtension(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, ".JSON", 60, 40, sample()[:1]))
	got, err := Load(&buf)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	assert.ErrorIs(t, Write(&buf, ".svg", 60, 40, nil), ErrUnknownFormat)
}
