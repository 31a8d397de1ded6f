package render

import (
	"github.com/gogpu/gg"

	"localboard/internal/state"
)

// erase removes coverage along the segment from -> to: every pixel keeps
// (1 - m) of its alpha, where m is the segment's coverage at that pixel.
// The coverage is rasterized on the surface's scratch mask, which is fully
// cleared again afterwards.
func erase(s *Surface, from, to state.Point, width float64, footprint Rect) {
	m := s.maskContext()
	m.SetRGBA(1, 1, 1, 1)
	m.SetLineWidth(lineWidth(width))
	m.SetLineCap(gg.LineCapRound)
	m.SetLineJoin(gg.LineJoinRound)
	m.DrawLine(from.X, from.Y, to.X, to.Y)
	stroke(m)

	mask := m.ResizeTarget().Data()
	dst := s.pixels()
	x0, y0, x1, y1 := footprint.pixels(s.width, s.height)
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			i := (y*s.width + x) * 4
			cov := uint16(mask[i+3])
			if cov == 0 {
				continue
			}

			alpha := uint16(dst[i+3]) * (255 - cov) / 255
			dst[i+3] = uint8(alpha)
			if alpha == 0 {
				dst[i], dst[i+1], dst[i+2] = 0, 0, 0
			}
		}
	}
	m.Clear()
}
