// SPDX-License-Identifier: MIT

// Package state persists parameter targets and display geometry between
// runs. Sessions are stored as JSON keyed by stable parameter IDs, so a
// session written by an older build stays loadable as long as the IDs
// survive.
package state

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	applog "sidegain/internal/log"
	"sidegain/internal/param"
)

// Version identifies the session format. Bump only on incompatible changes.
const Version = 1

// EditorState holds the last known display geometry.
type EditorState struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Session is the serialized form of a parameter set.
type Session struct {
	Version int                    `json:"version"`
	Params  map[string]float64     `json:"params"`
	Fields  map[string]EditorState `json:"fields,omitempty"`
}

// editorStateKey names the display geometry entry in Fields.
const editorStateKey = "editor-state"

// Save writes the current parameter targets and editor geometry to w.
// Values are stored as plain (unnormalized) target values.
func Save(w io.Writer, reg *param.Registry, editor EditorState) error {
	s := Session{
		Version: Version,
		Params:  make(map[string]float64, reg.Count()),
	}
	for _, p := range reg.All() {
		s.Params[p.ID()] = p.Target()
	}
	if editor != (EditorState{}) {
		s.Fields = map[string]EditorState{editorStateKey: editor}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(&s); err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	return nil
}

// Load reads a session from r and applies it to the registry. Parameter IDs
// not present in the registry are skipped; out-of-range values are rejected
// and leave the parameter's previous target in place. Returns the stored
// editor geometry, if any.
func Load(r io.Reader, reg *param.Registry) (EditorState, error) {
	var s Session
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return EditorState{}, fmt.Errorf("failed to decode session: %w", err)
	}
	if s.Version > Version {
		return EditorState{}, fmt.Errorf("session version %d is newer than supported version %d", s.Version, Version)
	}

	for id, value := range s.Params {
		p := reg.Get(id)
		if p == nil {
			applog.Warnf("Session: skipping unknown parameter %q", id)
			continue
		}
		if err := p.SetTarget(value); err != nil {
			applog.Warnf("Session: rejecting stored value for %q: %v", id, err)
		}
	}

	return s.Fields[editorStateKey], nil
}

// SaveFile writes a session to path, creating or truncating the file.
func SaveFile(path string, reg *param.Registry, editor EditorState) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create session file: %w", err)
	}
	defer f.Close()
	return Save(f, reg, editor)
}

// LoadFile reads a session from path and applies it to the registry.
// A missing file is not an error; the registry keeps its defaults.
func LoadFile(path string, reg *param.Registry) (EditorState, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return EditorState{}, nil
		}
		return EditorState{}, fmt.Errorf("failed to open session file: %w", err)
	}
	defer f.Close()
	return Load(f, reg)
}
