package export

import (
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"

	"localboard/internal/render"
	"localboard/internal/state"
)

// Flatten renders actions at width x height over a white background.
func Flatten(width, height int, actions []state.Action) (*image.NRGBA, error) {
	s := render.NewSurface(width, height)
	if s == nil {
		return nil, fmt.Errorf("export png: empty canvas %dx%d", width, height)
	}
	defer s.Close()
	render.Render(s, actions)

	out := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.Draw(out, out.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(out, out.Bounds(), s.Image(), image.Point{}, draw.Over)
	return out, nil
}

// PNG writes the flattened drawing as a PNG image.
func PNG(w io.Writer, width, height int, actions []state.Action) error {
	img, err := Flatten(width, height, actions)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("export png: %w", err)
	}
	return nil
}
