package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"localboard/internal/board"
	"localboard/internal/state"
)

// Tools lists the tool names offered by the toolbar, in display order.
var Tools = []string{
	state.ToolBrush,
	state.ToolEraser,
	state.ToolLine,
	state.ToolRectangle,
	state.ToolCircle,
	state.ToolPolygon,
	state.ToolText,
}

// Palette is the set of swatches shown in the toolbar.
var Palette = []color.Color{
	color.Black,
	color.NRGBA{R: 255, A: 255},
	color.NRGBA{G: 255, A: 255},
	color.NRGBA{B: 255, A: 255},
	color.NRGBA{R: 255, G: 255, A: 255},
}

// ParamSink takes the tool settings for the next gesture. *board.Loop
// implements it.
type ParamSink interface {
	SetParams(p board.Params)
}

// Controls holds the toolbar selection and pushes every change to the
// session. Use it from the UI goroutine only.
type Controls struct {
	sink   ParamSink
	params board.Params
}

func NewControls(sink ParamSink, params board.Params) *Controls {
	return &Controls{sink: sink, params: params}
}

func (c *Controls) Params() board.Params { return c.params }

func (c *Controls) SelectTool(tool string) {
	c.params.Tool = tool
	c.push()
}

// SetColor picks the text color while the text tool is selected and the
// stroke color otherwise.
func (c *Controls) SetColor(col color.Color) {
	if c.params.Tool == state.ToolText {
		c.params.FontColor = state.ColorString(col)
	} else {
		c.params.Color = state.ColorString(col)
	}
	c.push()
}

func (c *Controls) SetSize(size float64) {
	c.params.Size = size
	c.push()
}

func (c *Controls) SetText(text string) {
	c.params.Text = text
	c.push()
}

func (c *Controls) SetFontSize(size float64) {
	c.params.FontSize = size
	c.push()
}

func (c *Controls) push() { c.sink.SetParams(c.params) }

type colorSwatch struct {
	widget.BaseWidget
	Color    color.Color
	OnTapped func(color.Color)
}

func newColorSwatch(c color.Color, tapped func(color.Color)) *colorSwatch {
	s := &colorSwatch{Color: c, OnTapped: tapped}
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	rect := canvas.NewRectangle(s.Color)
	rect.SetMinSize(fyne.NewSize(32, 32))

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = color.Gray{Y: 150}
	border.StrokeWidth = 1

	return widget.NewSimpleRenderer(container.NewStack(rect, border))
}

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.Color)
	}
}

// Actions are the toolbar buttons that are not tool settings.
type Actions struct {
	Undo, Redo func()
	Save, Open func()
}

func NewToolbar(c *Controls, actions Actions) fyne.CanvasObject {
	toolSelect := widget.NewSelect(Tools, c.SelectTool)
	toolSelect.SetSelected(c.Params().Tool)

	tb := widget.NewToolbar(
		widget.NewToolbarAction(theme.DocumentCreateIcon(), func() { toolSelect.SetSelected(state.ToolBrush) }),
		widget.NewToolbarAction(theme.DeleteIcon(), func() { toolSelect.SetSelected(state.ToolEraser) }),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ContentUndoIcon(), actions.Undo),
		widget.NewToolbarAction(theme.ContentRedoIcon(), actions.Redo),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.FolderOpenIcon(), actions.Open),
		widget.NewToolbarAction(theme.DocumentSaveIcon(), actions.Save),
	)

	swatches := make([]fyne.CanvasObject, len(Palette))
	for i, col := range Palette {
		swatches[i] = newColorSwatch(col, c.SetColor)
	}
	colorBox := container.NewHBox(swatches...)

	sizeSlider := widget.NewSlider(1.0, 50.0)
	sizeSlider.SetValue(c.Params().Size)
	sizeSlider.OnChanged = c.SetSize
	sliderContainer := container.New(layout.NewGridWrapLayout(fyne.NewSize(150, 35)), sizeSlider)

	fontSlider := widget.NewSlider(8.0, 96.0)
	fontSlider.SetValue(c.Params().FontSize)
	fontSlider.OnChanged = c.SetFontSize
	fontContainer := container.New(layout.NewGridWrapLayout(fyne.NewSize(100, 35)), fontSlider)

	textEntry := widget.NewEntry()
	textEntry.SetPlaceHolder("Text")
	textEntry.SetText(c.Params().Text)
	textEntry.OnChanged = c.SetText
	textContainer := container.New(layout.NewGridWrapLayout(fyne.NewSize(150, 35)), textEntry)

	return container.NewHBox(
		widget.NewLabel("Tool:"),
		toolSelect,
		tb,
		widget.NewSeparator(),
		widget.NewLabel("Color:"),
		colorBox,
		widget.NewSeparator(),
		widget.NewLabel("Size:"),
		sliderContainer,
		widget.NewSeparator(),
		textContainer,
		fontContainer,
		layout.NewSpacer(),
	)
}
