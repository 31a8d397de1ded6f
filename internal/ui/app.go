package ui

import (
	"context"
	"fmt"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"localboard/internal/board"
	"localboard/internal/export"
	"localboard/internal/logging"
)

// fileTimeout bounds how long a save waits for the session loop.
const fileTimeout = 5 * time.Second

type Options struct {
	Title     string
	ShareLink string
	Width     int
	Height    int
	Params    board.Params
}

// RunApp shows the board window and blocks until it is closed or ctx is
// done.
func RunApp(ctx context.Context, opts Options, loop *board.Loop) {
	myApp := app.New()
	title := opts.Title
	if title == "" {
		title = "Local Whiteboard"
	}
	myWindow := myApp.NewWindow(title)
	myWindow.Resize(fyne.NewSize(float32(opts.Width), float32(opts.Height)))

	status := widget.NewLabel("Ready")
	setStatus := func(text string) { fyne.Do(func() { status.SetText(text) }) }

	boardWidget := NewBoardWidget(loop)
	controls := NewControls(loop, opts.Params)
	toolbar := NewToolbar(controls, Actions{
		Undo: loop.Undo,
		Redo: loop.Redo,
		Save: func() { showSave(myWindow, loop, setStatus) },
		Open: func() { showOpen(myWindow, loop, setStatus) },
	})

	footer := []fyne.CanvasObject{status}
	if opts.ShareLink != "" {
		footer = append(footer, widget.NewSeparator(), widget.NewLabel("Share: "+opts.ShareLink))
	}

	addShortcuts(myWindow.Canvas(), loop)

	content := container.NewBorder(toolbar, container.NewHBox(footer...), nil, nil, boardWidget)
	myWindow.SetContent(content)

	closed := make(chan struct{})
	defer close(closed)
	go func() {
		select {
		case <-ctx.Done():
			fyne.Do(myApp.Quit)
		case <-closed:
		}
	}()
	myWindow.ShowAndRun()
}

func addShortcuts(c fyne.Canvas, loop *board.Loop) {
	undo := &desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierShortcutDefault}
	redo := &desktop.CustomShortcut{KeyName: fyne.KeyY, Modifier: fyne.KeyModifierShortcutDefault}
	redoShift := &desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierShortcutDefault | fyne.KeyModifierShift}
	c.AddShortcut(undo, func(fyne.Shortcut) { loop.Undo() })
	c.AddShortcut(redo, func(fyne.Shortcut) { loop.Redo() })
	c.AddShortcut(redoShift, func(fyne.Shortcut) { loop.Redo() })
}

func showSave(win fyne.Window, r Runner, setStatus func(string)) {
	d := dialog.NewFileSave(func(w fyne.URIWriteCloser, err error) {
		if err != nil || w == nil {
			return
		}
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), fileTimeout)
			defer cancel()
			n, err := saveBoard(ctx, r, w, w.URI().Extension())
			if cerr := w.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				logging.Logger().Error("save failed", "uri", w.URI().String(), "error", err)
				fyne.Do(func() { dialog.ShowError(err, win) })
				return
			}
			logging.Logger().Info("saved board", "uri", w.URI().String(), "actions", n)
			setStatus(fmt.Sprintf("Saved %d actions to %s", n, w.URI().Name()))
		}()
	}, win)
	d.SetFilter(storage.NewExtensionFileFilter(export.Formats))
	d.SetFileName("board.json")
	d.Show()
}

func showOpen(win fyne.Window, r Runner, setStatus func(string)) {
	d := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil || rc == nil {
			return
		}
		dialog.ShowConfirm("Share board",
			"Draw "+rc.URI().Name()+" for everyone in the room? Otherwise it only replaces your own view.",
			func(share bool) {
				defer rc.Close()
				n, err := openBoard(r, rc, share)
				if err != nil {
					logging.Logger().Error("open failed", "uri", rc.URI().String(), "error", err)
					dialog.ShowError(err, win)
					return
				}
				logging.Logger().Info("opened board", "uri", rc.URI().String(), "actions", n, "shared", share)
				if share {
					setStatus(fmt.Sprintf("Shared %d actions", n))
				} else {
					setStatus(fmt.Sprintf("Loaded %d actions locally", n))
				}
			}, win)
	}, win)
	d.SetFilter(storage.NewExtensionFileFilter([]string{".json"}))
	d.Show()
}
