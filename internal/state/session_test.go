// SPDX-License-Identifier: MIT
package state

import (
	"bytes"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"sidegain/internal/param"
)

func newTestRegistry(t *testing.T) *param.Registry {
	t.Helper()
	reg := param.NewRegistry()
	reg.Add(
		param.New("gain", "Gain", param.GainRange(-30, 30), 1.0),
		param.New("side_chain_gain", "SC Gain", param.GainRange(-30, 30), 1.0),
	)
	return reg
}

func TestSessionRoundTrip(t *testing.T) {
	reg := newTestRegistry(t)
	if err := reg.Get("gain").SetTarget(0.5); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := Save(&buf, reg, EditorState{Width: 400, Height: 200}); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	// Fresh registry at defaults, then restore.
	reg2 := newTestRegistry(t)
	editor, err := Load(&buf, reg2)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if got := reg2.Get("gain").Target(); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("restored gain = %v, want 0.5", got)
	}
	if got := reg2.Get("side_chain_gain").Target(); math.Abs(got-1.0) > 1e-12 {
		t.Errorf("restored side-chain gain = %v, want 1.0", got)
	}
	if editor.Width != 400 || editor.Height != 200 {
		t.Errorf("restored editor state = %+v", editor)
	}
}

func TestLoadSkipsUnknownParams(t *testing.T) {
	reg := newTestRegistry(t)
	input := `{"version":1,"params":{"gain":0.25,"vanished_param":0.9}}`

	if _, err := Load(strings.NewReader(input), reg); err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if got := reg.Get("gain").Target(); math.Abs(got-0.25) > 1e-12 {
		t.Errorf("gain = %v, want 0.25", got)
	}
}

func TestLoadRejectsOutOfRangeValues(t *testing.T) {
	reg := newTestRegistry(t)
	if err := reg.Get("gain").SetTarget(0.5); err != nil {
		t.Fatal(err)
	}

	// 1000 linear is far outside the +30 dB ceiling; the previous target
	// must survive.
	input := `{"version":1,"params":{"gain":1000.0}}`
	if _, err := Load(strings.NewReader(input), reg); err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if got := reg.Get("gain").Target(); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("gain = %v, want prior value 0.5", got)
	}
}

func TestLoadRejectsNewerVersion(t *testing.T) {
	reg := newTestRegistry(t)
	input := `{"version":99,"params":{}}`
	if _, err := Load(strings.NewReader(input), reg); err == nil {
		t.Error("expected error for newer session version")
	}
}

func TestLoadMalformedJSON(t *testing.T) {
	reg := newTestRegistry(t)
	if _, err := Load(strings.NewReader("{not json"), reg); err == nil {
		t.Error("expected decode error")
	}
}

func TestFileHelpers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.json")
	reg := newTestRegistry(t)
	if err := reg.Get("gain").SetTarget(2.0); err != nil {
		t.Fatal(err)
	}

	if err := SaveFile(path, reg, EditorState{}); err != nil {
		t.Fatalf("SaveFile error: %v", err)
	}

	reg2 := newTestRegistry(t)
	if _, err := LoadFile(path, reg2); err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}
	if got := reg2.Get("gain").Target(); math.Abs(got-2.0) > 1e-12 {
		t.Errorf("gain = %v, want 2.0", got)
	}
}

func TestLoadFileMissingIsNotError(t *testing.T) {
	reg := newTestRegistry(t)
	editor, err := LoadFile(filepath.Join(t.TempDir(), "absent.json"), reg)
	if err != nil {
		t.Errorf("missing session file should not error: %v", err)
	}
	if editor != (EditorState{}) {
		t.Errorf("editor state = %+v, want zero", editor)
	}
}
