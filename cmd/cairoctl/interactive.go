package main

import (
	"bytes"
	"fmt"
	"runtime"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/cairobind/cairo"
	"github.com/wippyai/cairobind/handle"
	"github.com/wippyai/cairobind/keepalive"
	"github.com/wippyai/cairobind/native"
	"github.com/wippyai/cairobind/native/sim"
	"github.com/wippyai/cairobind/path"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	kindStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// maxEvents bounds the keep-alive event history shown.
const maxEvents = 8

// eventLog records keep-alive events for display.
type eventLog struct {
	events []keepalive.Event
	mu     sync.Mutex
}

func (l *eventLog) OnKeepAliveEvent(e keepalive.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
	if len(l.events) > maxEvents {
		l.events = l.events[len(l.events)-maxEvents:]
	}
}

func (l *eventLog) recent() []keepalive.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]keepalive.Event(nil), l.events...)
}

type wrapper interface {
	Object() *handle.Object
	Close() error
}

type tracked struct {
	w     wrapper
	label string
	out   *bytes.Buffer
}

type inspectorModel struct {
	err      error
	b        *cairo.Binding
	engine   *sim.Engine
	events   *eventLog
	result   string
	wrappers []tracked
	input    textinput.Model
	selected int
	editing  bool
}

func newInspectorModel(b *cairo.Binding, lib native.Library, events *eventLog) *inspectorModel {
	ti := textinput.New()
	ti.Placeholder = "M 0 0 L 10 10 Z"
	ti.Prompt = "path: "
	ti.Width = 40

	m := &inspectorModel{b: b, events: events, input: ti}
	if e, ok := lib.(*sim.Engine); ok {
		m.engine = e
	}
	return m
}

func (m *inspectorModel) Init() tea.Cmd {
	return nil
}

func (m *inspectorModel) current() *tracked {
	if m.selected < 0 || m.selected >= len(m.wrappers) {
		return nil
	}
	return &m.wrappers[m.selected]
}

func (m *inspectorModel) add(w wrapper, label string, out *bytes.Buffer) {
	m.wrappers = append(m.wrappers, tracked{w: w, label: label, out: out})
	m.selected = len(m.wrappers) - 1
}

func (m *inspectorModel) report(result string, err error) {
	m.result, m.err = result, err
}

func (m *inspectorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.editing {
		switch key.String() {
		case "enter":
			m.editing = false
			m.input.Blur()
			m.appendPath(m.input.Value())
			return m, nil
		case "esc":
			m.editing = false
			m.input.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch key.String() {
	case "ctrl+c", "q":
		m.closeAll()
		return m, tea.Quit

	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}

	case "down", "j":
		if m.selected < len(m.wrappers)-1 {
			m.selected++
		}

	case "i":
		s, err := m.b.NewImageSurface(native.FormatARGB32, 32, 32)
		if err == nil {
			m.add(s, "image 32x32", nil)
		}
		m.report("created image surface", err)

	case "s":
		var out bytes.Buffer
		s, err := m.b.NewSVGSurfaceForStream(&out, 32, 32)
		if err == nil {
			m.add(s, "svg stream", &out)
		}
		m.report("created SVG stream surface", err)

	case "g":
		m.newGradient()

	case "c":
		m.newContext()

	case "m":
		m.attachMime()

	case "p":
		if t := m.current(); t != nil {
			if _, ok := t.w.(*cairo.Context); ok {
				m.editing = true
				m.input.SetValue("")
				m.input.Focus()
				return m, textinput.Blink
			}
		}
		m.report("", fmt.Errorf("select a context to append a path"))

	case "x":
		m.closeSelected()

	case "G":
		runtime.GC()
		m.report("ran GC", nil)
	}
	return m, nil
}

func (m *inspectorModel) newGradient() {
	p, err := m.b.NewLinearGradient(0, 0, 32, 32)
	if err != nil {
		m.report("", err)
		return
	}
	if err := p.AddColorStopRGB(0, 1, 0, 0); err != nil {
		p.Close()
		m.report("", err)
		return
	}
	if err := p.AddColorStopRGB(1, 0, 0, 1); err != nil {
		p.Close()
		m.report("", err)
		return
	}
	m.add(p, "linear gradient", nil)
	m.report("created linear gradient", nil)
}

func (m *inspectorModel) newContext() {
	t := m.current()
	if t == nil {
		m.report("", fmt.Errorf("select a surface first"))
		return
	}
	s, ok := t.w.(cairo.Surface)
	if !ok {
		m.report("", fmt.Errorf("%s is not a surface", t.label))
		return
	}
	cr, err := m.b.NewContext(s)
	if err == nil {
		m.add(cr, "context on "+t.label, nil)
	}
	m.report("created context", err)
}

func (m *inspectorModel) attachMime() {
	t := m.current()
	if t == nil {
		m.report("", fmt.Errorf("select a surface first"))
		return
	}
	s, ok := t.w.(interface {
		SetMimeData(mimeType string, data []byte) error
	})
	if !ok {
		m.report("", fmt.Errorf("%s is not a surface", t.label))
		return
	}
	err := s.SetMimeData(cairo.MimeTypeUniqueID, []byte(fmt.Sprintf("cairoctl-%d", m.selected)))
	m.report("attached "+cairo.MimeTypeUniqueID, err)
}

func (m *inspectorModel) appendPath(s string) {
	cr, ok := m.current().w.(*cairo.Context)
	if !ok {
		return
	}
	ops, err := path.Parse(s)
	if err != nil {
		m.report("", err)
		return
	}
	if err := cr.AppendPath(ops); err != nil {
		m.report("", err)
		return
	}
	back, err := cr.CopyPath()
	m.report("current path: "+path.Format(back), err)
}

func (m *inspectorModel) closeSelected() {
	t := m.current()
	if t == nil {
		return
	}
	err := t.w.Close()
	result := "closed " + t.label
	if t.out != nil {
		result += fmt.Sprintf(" (%d bytes written)", t.out.Len())
	}
	m.wrappers = append(m.wrappers[:m.selected], m.wrappers[m.selected+1:]...)
	if m.selected >= len(m.wrappers) && m.selected > 0 {
		m.selected--
	}
	m.report(result, err)
}

func (m *inspectorModel) closeAll() {
	for i := len(m.wrappers) - 1; i >= 0; i-- {
		m.wrappers[i].w.Close()
	}
	m.wrappers = nil
}

func (m *inspectorModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("cairo inspector"))
	b.WriteString(" engine ")
	b.WriteString(m.b.Version())
	b.WriteString("\n\n")

	b.WriteString("Wrappers:\n")
	if len(m.wrappers) == 0 {
		b.WriteString(helpStyle.Render("  none yet"))
		b.WriteString("\n")
	}
	for i, t := range m.wrappers {
		line := m.formatWrapper(t)
		if i == m.selected {
			b.WriteString(selectedStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	if m.engine != nil {
		b.WriteString("\nNative objects:\n")
		for _, o := range m.engine.Objects() {
			fmt.Fprintf(&b, "  %#06x %s tag %s refs %d %s\n",
				uint32(o.Handle), kindStyle.Render(o.Kind.String()), typeStyle.Render(fmt.Sprint(o.Tag)), o.Refs, o.Status)
		}
	}

	entries := m.b.LiveSet().Entries()
	fmt.Fprintf(&b, "\nKeep-alive entries: %d, open streams: %d\n", len(entries), m.b.Streams().Len())
	for _, e := range entries {
		fmt.Fprintf(&b, "  closure %d on %s %#06x: %d object(s)", e.Closure, e.Kind, uint32(e.Owner), len(e.Objects))
		if e.Mime != "" {
			b.WriteString(" mime " + typeStyle.Render(e.Mime))
		}
		b.WriteString("\n")
	}
	if m.events != nil {
		for _, e := range m.events.recent() {
			fmt.Fprintf(&b, "  %s closure %d\n", helpStyle.Render(e.Type.String()), e.Entry.Closure)
		}
	}

	b.WriteString("\n")
	if m.editing {
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter append • esc cancel"))
		return b.String()
	}
	if m.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	} else if m.result != "" {
		b.WriteString(resultStyle.Render(m.result))
	}
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("i image • s svg stream • g gradient • c context • m mime • p path • x close • G gc • q quit"))
	return b.String()
}

func (m *inspectorModel) formatWrapper(t tracked) string {
	obj := t.w.Object()
	if obj.Released() {
		return kindStyle.Render(t.label) + " released"
	}
	return fmt.Sprintf("%s %s %#06x refs %d",
		kindStyle.Render(t.label), typeStyle.Render(obj.Kind().String()), uint32(obj.Handle()), obj.ReferenceCount())
}

func runInteractive(b *cairo.Binding, lib native.Library, events *eventLog) error {
	p := tea.NewProgram(newInspectorModel(b, lib, events), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
