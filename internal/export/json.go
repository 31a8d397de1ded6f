package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"localboard/internal/state"
)

// ErrUnknownFormat is returned by WriteFile for unsupported extensions.
var ErrUnknownFormat = errors.New("unknown export format")

// Save writes actions as a JSON array of wire messages.
func Save(w io.Writer, actions []state.Action) error {
	msgs := make([]state.Message, len(actions))
	for i, a := range actions {
		msgs[i] = state.Encode(a)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(msgs); err != nil {
		return fmt.Errorf("save board: %w", err)
	}
	return nil
}

// Load reads a board written by Save.
func Load(r io.Reader) ([]state.Action, error) {
	var msgs []state.Message
	if err := json.NewDecoder(r).Decode(&msgs); err != nil {
		return nil, fmt.Errorf("load board: %w", err)
	}
	actions := make([]state.Action, len(msgs))
	for i, m := range msgs {
		actions[i] = state.Decode(m)
	}
	return actions, nil
}

// SaveFile writes actions to path, replacing it.
func SaveFile(path string, actions []state.Action) error {
	return writeFile(path, func(w io.Writer) error { return Save(w, actions) })
}

// LoadFile reads a board from path.
func LoadFile(path string) ([]state.Action, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load board: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Formats lists the extensions Write understands.
var Formats = []string{".json", ".png", ".pdf"}

// Write encodes actions to w in the format named by ext.
func Write(w io.Writer, ext string, width, height int, actions []state.Action) error {
	switch strings.ToLower(ext) {
	case ".json":
		return Save(w, actions)
	case ".png":
		return PNG(w, width, height, actions)
	case ".pdf":
		return PDF(w, width, height, actions)
	}
	return fmt.Errorf("%q: %w", ext, ErrUnknownFormat)
}

// WriteFile picks the format from the extension of path.
func WriteFile(path string, width, height int, actions []state.Action) error {
	ext := filepath.Ext(path)
	if !slices.Contains(Formats, strings.ToLower(ext)) {
		return fmt.Errorf("export %s: %w", path, ErrUnknownFormat)
	}
	return writeFile(path, func(w io.Writer) error { return Write(w, ext, width, height, actions) })
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
