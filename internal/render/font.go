package render

import (
	"sync"

	"github.com/gogpu/gg/text"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/image/font/gofont/goregular"

	"localboard/internal/logging"
)

// maxFaces bounds how many font sizes keep a face around.
const maxFaces = 32

// Text is always set in Go Regular so every peer rasterizes the same glyphs.
var (
	sourceOnce sync.Once
	source     *text.FontSource
	faces      *lru.Cache[float64, text.Face]
)

func face(size float64) text.Face {
	sourceOnce.Do(func() {
		var err error
		source, err = text.NewFontSource(goregular.TTF)
		if err != nil {
			logging.Logger().Error("loading embedded font failed", "err", err)
			return
		}
		faces, _ = lru.New[float64, text.Face](maxFaces)
	})
	if source == nil {
		return nil
	}

	if f, ok := faces.Get(size); ok {
		return f
	}
	f := source.Face(size)
	faces.Add(size, f)
	return f
}
