package main

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/wippyai/cairobind/cairo"
	"github.com/wippyai/cairobind/native"
	"github.com/wippyai/cairobind/native/sim"
)

func TestOpenLibrary(t *testing.T) {
	tests := []struct {
		backend string
		wasm    string
		wantErr bool
	}{
		{"sim", "", false},
		{"wasm", "", true},
		{"gpu", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			lib, err := openLibrary(tt.backend, tt.wasm)
			if (err != nil) != tt.wantErr {
				t.Fatalf("openLibrary(%q) error = %v, wantErr %v", tt.backend, err, tt.wantErr)
			}
			if lib != nil {
				lib.Close()
			}
		})
	}
}

func TestShowPath(t *testing.T) {
	b := cairo.NewWithDefaults(sim.New())
	defer b.Close()

	var out bytes.Buffer
	if err := showPath(&out, b, "M 10 20 L 30 40 Z"); err != nil {
		t.Fatalf("showPath: %v", err)
	}
	if !strings.Contains(out.String(), "Decoded: M 10 20 L 30 40 Z") {
		t.Errorf("output:\n%s", out.String())
	}
	if err := showPath(io.Discard, b, "Q 1 2"); err == nil {
		t.Error("showPath accepted an unknown op")
	}
}

func TestRunStreamsPNGToStdout(t *testing.T) {
	b := cairo.NewWithDefaults(sim.New())
	defer b.Close()

	var stdout, stderr bytes.Buffer
	err := run(b, actions{path: "M 0 0 L 1 1", pngOut: "-", width: 4, height: 4}, &stdout, &stderr)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !bytes.HasPrefix(stdout.Bytes(), []byte("\x89PNG\r\n\x1a\n")) {
		t.Errorf("stdout starts with %q, want the PNG signature", stdout.Bytes()[:min(16, stdout.Len())])
	}
	if !strings.Contains(stderr.String(), "Engine: cairo") || !strings.Contains(stderr.String(), "Records") {
		t.Errorf("text output not on stderr:\n%s", stderr.String())
	}
}

func TestRunTextGoesToStdout(t *testing.T) {
	b := cairo.NewWithDefaults(sim.New())
	defer b.Close()

	var stdout, stderr bytes.Buffer
	if err := run(b, actions{path: "M 0 0 Z"}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.HasPrefix(stdout.String(), "Engine: cairo ") {
		t.Errorf("stdout = %q", stdout.String())
	}
	if stderr.Len() != 0 {
		t.Errorf("stderr = %q", stderr.String())
	}
}

func TestCheckTerminal(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	defer w.Close()

	tests := []struct {
		name        string
		pngOut      string
		interactive bool
		wantErr     bool
	}{
		{"png to pipe", "-", false, false},
		{"png to file", "out.png", false, false},
		{"inspector without terminal", "", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkTerminal(tt.pngOut, tt.interactive, r, w)
			if (err != nil) != tt.wantErr {
				t.Errorf("checkTerminal = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestInspectorFlow(t *testing.T) {
	e := sim.New()
	events := &eventLog{}
	opts := cairo.DefaultOptions()
	opts.KeepAlive = events
	b := cairo.New(e, opts)
	defer b.Close()

	m := newInspectorModel(b, e, events)
	if m.engine != e {
		t.Fatal("sim engine not detected")
	}

	m.Update(runes("i"))
	m.Update(runes("c"))
	if len(m.wrappers) != 2 || m.err != nil {
		t.Fatalf("wrappers = %d, err = %v", len(m.wrappers), m.err)
	}
	if _, ok := m.current().w.(*cairo.Context); !ok {
		t.Fatal("context not selected after creation")
	}

	m.Update(runes("p"))
	if !m.editing {
		t.Fatal("p did not open the path prompt")
	}
	m.input.SetValue("M 1 1 L 2 2")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.editing || m.err != nil {
		t.Fatalf("editing = %v, err = %v", m.editing, m.err)
	}
	if !strings.Contains(m.result, "M 1 1 L 2 2") {
		t.Errorf("result = %q", m.result)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m.Update(runes("m"))
	if m.err != nil {
		t.Fatalf("mime: %v", m.err)
	}
	if len(b.LiveSet().Entries()) == 0 {
		t.Error("mime data not kept alive")
	}
	if len(events.recent()) == 0 {
		t.Error("no keep-alive events observed")
	}

	if v := m.View(); !strings.Contains(v, "cairo inspector") || !strings.Contains(v, "Native objects") {
		t.Errorf("view missing sections:\n%s", v)
	}

	m.Update(runes("g"))
	if m.err != nil || len(m.wrappers) != 3 {
		t.Fatalf("gradient: wrappers = %d, err = %v", len(m.wrappers), m.err)
	}
	if _, ok := m.current().w.(*cairo.LinearGradient); !ok {
		t.Fatalf("selected %T after g", m.current().w)
	}

	m.Update(runes("x"))
	m.Update(runes("x"))
	m.Update(runes("x"))
	if len(m.wrappers) != 0 {
		t.Fatalf("wrappers left: %d", len(m.wrappers))
	}
	for _, kind := range []native.Kind{native.KindSurface, native.KindContext, native.KindPattern} {
		if n := e.Live(kind); n != 0 {
			t.Errorf("%s live = %d after closing all", kind, n)
		}
	}
}
