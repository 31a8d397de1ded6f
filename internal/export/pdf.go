// Package export writes the active drawing to files: JSON for saving and
// reloading a board, PNG and PDF for sharing it.
package export

import (
	"fmt"
	"io"
	"math"

	"github.com/jung-kurt/gofpdf"

	"localboard/internal/render"
	"localboard/internal/state"
)

// PDF writes actions as vector graphics on a single page the size of the
// canvas, one point per pixel. Erase segments are painted in white.
func PDF(w io.Writer, width, height int, actions []state.Action) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("export pdf: empty page %dx%d", width, height)
	}
	orientation := "P"
	if width > height {
		orientation = "L"
	}
	p := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: orientation,
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: float64(width), Ht: float64(height)},
	})
	p.SetMargins(0, 0, 0)
	p.SetAutoPageBreak(false, 0)
	p.AddPage()

	for _, a := range actions {
		drawPDF(p, a)
	}
	if err := p.Output(w); err != nil {
		return fmt.Errorf("export pdf: %w", err)
	}
	return nil
}

func drawPDF(p *gofpdf.Fpdf, a state.Action) {
	switch a.Kind {
	case state.KindStroke:
		setDrawColor(p, a.Color)
		segmentPDF(p, a)
	case state.KindErase:
		p.SetDrawColor(255, 255, 255)
		segmentPDF(p, a)
	case state.KindShape:
		setDrawColor(p, a.Color)
		p.SetLineWidth(width(a.Width))
		p.SetLineCapStyle("butt")
		p.SetLineJoinStyle("miter")
		switch a.Shape {
		case state.ShapeLine:
			p.Line(a.From.X, a.From.Y, a.To.X, a.To.Y)
		case state.ShapeRectangle:
			x, y := math.Min(a.From.X, a.To.X), math.Min(a.From.Y, a.To.Y)
			p.Rect(x, y, math.Abs(a.To.X-a.From.X), math.Abs(a.To.Y-a.From.Y), "D")
		case state.ShapeCircle:
			if r := a.Radius(); r > 0 {
				p.Circle(a.From.X, a.From.Y, r, "D")
			}
		case state.ShapePolygon:
			vs := render.PolygonVertices(a.From, a.To, 5)
			if vs == nil {
				return
			}
			pts := make([]gofpdf.PointType, len(vs))
			for i, v := range vs {
				pts[i] = gofpdf.PointType{X: v.X, Y: v.Y}
			}
			p.Polygon(pts, "D")
		}
	case state.KindText:
		if a.Text == "" {
			return
		}
		c := state.ParseColor(a.Color)
		p.SetTextColor(int(c.R), int(c.G), int(c.B))
		size := a.FontSize
		if size <= 0 {
			size = 16
		}
		p.SetFont("Helvetica", "", size)
		p.Text(a.From.X, a.From.Y, p.UnicodeTranslatorFromDescriptor("")(a.Text))
	}
}

func segmentPDF(p *gofpdf.Fpdf, a state.Action) {
	p.SetLineWidth(width(a.Width))
	p.SetLineCapStyle("round")
	p.SetLineJoinStyle("round")
	p.Line(a.From.X, a.From.Y, a.To.X, a.To.Y)
}

func setDrawColor(p *gofpdf.Fpdf, s string) {
	c := state.ParseColor(s)
	p.SetDrawColor(int(c.R), int(c.G), int(c.B))
}

func width(w float64) float64 {
	if w <= 0 {
		return 1
	}
	return w
}
