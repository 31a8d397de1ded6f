package ui

import (
	"context"
	"fmt"
	"io"

	"localboard/internal/board"
	"localboard/internal/export"
	"localboard/internal/state"
)

// Runner runs functions against the session. *board.Loop implements it.
type Runner interface {
	Call(ctx context.Context, fn func(*board.Session)) error
	Post(fn func(*board.Session))
}

// saveBoard writes the active actions to w in the format named by ext and
// returns how many were written.
func saveBoard(ctx context.Context, r Runner, w io.Writer, ext string) (int, error) {
	var (
		actions       []state.Action
		width, height int
	)
	err := r.Call(ctx, func(s *board.Session) {
		actions = s.Actions()
		width, height = s.Size()
	})
	if err != nil {
		return 0, err
	}
	return len(actions), export.Write(w, ext, width, height, actions)
}

// openBoard reads a saved board. Shared, it is drawn as if drawn locally so
// every peer gets it; otherwise it replaces the local board and nothing is
// sent.
func openBoard(r Runner, src io.Reader, share bool) (int, error) {
	actions, err := export.Load(src)
	if err != nil {
		return 0, fmt.Errorf("could not open board: %w", err)
	}
	if share {
		r.Post(func(s *board.Session) { s.Import(actions) })
	} else {
		r.Post(func(s *board.Session) { s.Load(actions) })
	}
	return len(actions), nil
}
