package ui

import (
	"image"
	"image/color"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"localboard/internal/state"
)

// Driver is what the board widget forwards pointer input to. *board.Loop
// implements it.
type Driver interface {
	PointerDown(p state.Point)
	PointerMove(p state.Point)
	PointerUp(p state.Point)
	PointerLeave(p state.Point)
	Resize(width, height int)
	OnFrame(fn func(*image.NRGBA))
}

// BoardWidget shows the frames rendered by the session and turns mouse
// events into pointer events. It never draws anything itself.
type BoardWidget struct {
	widget.BaseWidget
	driver Driver

	mu      sync.Mutex
	frame   *canvas.Image
	pressed bool
	last    fyne.Position
}

var _ fyne.Widget = (*BoardWidget)(nil)
var _ fyne.Draggable = (*BoardWidget)(nil)
var _ desktop.Mouseable = (*BoardWidget)(nil)
var _ desktop.Hoverable = (*BoardWidget)(nil)

func NewBoardWidget(d Driver) *BoardWidget {
	b := &BoardWidget{driver: d}
	b.frame = canvas.NewImageFromImage(image.NewNRGBA(image.Rect(0, 0, 1, 1)))
	b.frame.FillMode = canvas.ImageFillStretch
	b.frame.ScaleMode = canvas.ImageScalePixels
	b.ExtendBaseWidget(b)
	d.OnFrame(b.showFrame)
	return b
}

// showFrame is called from the loop goroutine.
func (b *BoardWidget) showFrame(img *image.NRGBA) {
	fyne.Do(func() {
		b.frame.Image = img
		b.frame.Refresh()
	})
}

func toPoint(p fyne.Position) state.Point {
	return state.Point{X: float64(p.X), Y: float64(p.Y)}
}

func (b *BoardWidget) Resize(size fyne.Size) {
	b.BaseWidget.Resize(size)
	if w, h := int(size.Width), int(size.Height); w > 0 && h > 0 {
		b.driver.Resize(w, h)
	}
}

func (b *BoardWidget) MouseDown(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	b.mu.Lock()
	b.pressed = true
	b.last = e.Position
	b.mu.Unlock()
	b.driver.PointerDown(toPoint(e.Position))
}

func (b *BoardWidget) Dragged(e *fyne.DragEvent) {
	b.mu.Lock()
	pressed := b.pressed
	b.last = e.Position
	b.mu.Unlock()
	if pressed {
		b.driver.PointerMove(toPoint(e.Position))
	}
}

func (b *BoardWidget) MouseUp(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary || !b.release(e.Position) {
		return
	}
	b.driver.PointerUp(toPoint(e.Position))
}

// DragEnd covers touch input, where no MouseUp arrives.
func (b *BoardWidget) DragEnd() {
	b.mu.Lock()
	last := b.last
	b.mu.Unlock()
	if b.release(last) {
		b.driver.PointerUp(toPoint(last))
	}
}

func (b *BoardWidget) MouseOut() {
	b.mu.Lock()
	last := b.last
	b.mu.Unlock()
	if b.release(last) {
		b.driver.PointerLeave(toPoint(last))
	}
}

func (b *BoardWidget) release(p fyne.Position) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	was := b.pressed
	b.pressed = false
	b.last = p
	return was
}

func (b *BoardWidget) MouseIn(*desktop.MouseEvent)    {}
func (b *BoardWidget) MouseMoved(*desktop.MouseEvent) {}

func (b *BoardWidget) CreateRenderer() fyne.WidgetRenderer {
	background := canvas.NewRectangle(color.White)
	return widget.NewSimpleRenderer(container.NewStack(background, b.frame))
}

func (b *BoardWidget) MinSize() fyne.Size {
	return fyne.NewSize(300, 300)
}
