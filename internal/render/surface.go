package render

import (
	"image"

	"github.com/gogpu/gg"
)

// Surface is a raster buffer sized to the viewport. Pixels are straight
// (non-premultiplied) RGBA. A nil *Surface is valid and ignores every call.
type Surface struct {
	dc     *gg.Context
	mask   *gg.Context
	width  int
	height int
}

// NewSurface allocates a transparent surface. It returns nil for an empty size.
func NewSurface(width, height int) *Surface {
	if width <= 0 || height <= 0 {
		return nil
	}
	return &Surface{
		dc:     gg.NewContext(width, height),
		width:  width,
		height: height,
	}
}

func (s *Surface) Width() int {
	if s == nil {
		return 0
	}
	return s.width
}

func (s *Surface) Height() int {
	if s == nil {
		return 0
	}
	return s.height
}

func (s *Surface) viewport() Rect {
	return Rect{MaxX: float64(s.width), MaxY: float64(s.height)}
}

// Clear makes every pixel transparent.
func (s *Surface) Clear() {
	if s == nil {
		return
	}
	s.dc.Clear()
}

// Image returns a copy of the pixels.
func (s *Surface) Image() *image.NRGBA {
	if s == nil {
		return image.NewNRGBA(image.Rectangle{})
	}
	img := image.NewNRGBA(image.Rect(0, 0, s.width, s.height))
	copy(img.Pix, s.pixels())
	return img
}

// CopyFrom overwrites s with the pixels of o. Sizes must match.
func (s *Surface) CopyFrom(o *Surface) {
	if s == nil || o == nil || s.width != o.width || s.height != o.height {
		return
	}
	copy(s.pixels(), o.pixels())
}

// Close releases the drawing contexts.
func (s *Surface) Close() {
	if s == nil {
		return
	}
	_ = s.dc.Close()
	if s.mask != nil {
		_ = s.mask.Close()
	}
}

func (s *Surface) pixels() []uint8 {
	return s.dc.ResizeTarget().Data()
}

func (s *Surface) snapshot() []uint8 {
	px := make([]uint8, len(s.pixels()))
	copy(px, s.pixels())
	return px
}

func (s *Surface) load(px []uint8) {
	copy(s.pixels(), px)
}

// maskContext returns the scratch context erase segments are rasterized on.
// It is kept fully transparent between uses.
func (s *Surface) maskContext() *gg.Context {
	if s.mask == nil {
		s.mask = gg.NewContext(s.width, s.height)
	}
	return s.mask
}
