package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.bytecodealliance.org/wit"

	"github.com/wippyai/box2d-bridge/bridge"
	"github.com/wippyai/box2d-bridge/handle"
	"github.com/wippyai/box2d-bridge/host"
	"github.com/wippyai/box2d-bridge/marshal"
	"github.com/wippyai/box2d-bridge/scene"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	funcStyle = lipgloss.NewStyle().
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

type modelState int

const (
	stateWorld modelState = iota
	stateSelectFunc
	stateInputArgs
	stateShowResult
)

// listHeight is the number of host functions shown around the cursor.
const listHeight = 20

type interactiveModel struct {
	ctx      context.Context
	err      error
	callErr  error
	rt       wazero.Runtime
	hostMod  api.Module
	world    *bridge.World
	built    *scene.Built
	watcher  *scene.Watcher
	cfg      config
	result   string
	funcs    []host.Func
	inputs   []textinput.Model
	bodies   table.Model
	contacts table.Model
	frame    int
	selected int
	focusIdx int
	state    modelState
	running  bool
}

type tickMsg struct{}

type sceneChangedMsg struct{ path string }

type watchErrMsg struct{ err error }

type callResultMsg struct {
	err    error
	result string
}

func newInteractiveModel(ctx context.Context, cfg config) (*interactiveModel, error) {
	m := &interactiveModel{
		ctx:   ctx,
		cfg:   cfg,
		rt:    wazero.NewRuntime(ctx),
		state: stateWorld,
	}
	m.bodies = table.New(
		table.WithColumns(columns(bodyColumns, 10)),
		table.WithHeight(8),
		table.WithFocused(true),
	)
	m.contacts = table.New(
		table.WithColumns(columns(contactColumns, 14)),
		table.WithHeight(6),
	)

	s, err := loadScene(cfg.Scene)
	if err != nil {
		m.close()
		return nil, err
	}
	if err := m.rebuild(s); err != nil {
		m.close()
		return nil, err
	}
	if cfg.Watch {
		w, err := scene.NewWatcher(cfg.Scene)
		if err != nil {
			m.close()
			return nil, err
		}
		m.watcher = w
	}
	return m, nil
}

func columns(titles []string, width int) []table.Column {
	cols := make([]table.Column, len(titles))
	for i, t := range titles {
		cols[i] = table.Column{Title: t, Width: width}
	}
	return cols
}

var contactColumns = []string{"contact", "fixture a", "fixture b", "touching", "points"}

// rebuild replaces the world and rebinds the host module to it.
func (m *interactiveModel) rebuild(s *scene.Scene) error {
	w, built, err := s.NewWorld(bridge.WithIterations(m.cfg.Velocity, m.cfg.Position))
	if err != nil {
		return err
	}
	if m.hostMod != nil {
		_ = m.hostMod.Close(m.ctx)
		m.hostMod = nil
	}
	if m.world != nil {
		_ = m.world.Close()
	}
	m.world, m.built, m.frame = w, built, 0

	hm := host.New(w)
	mod, err := hm.Instantiate(m.ctx, m.rt)
	if err != nil {
		return err
	}
	m.hostMod = mod
	m.funcs = hm.Functions()
	m.refresh()
	return nil
}

func (m *interactiveModel) refresh() {
	rows, err := bodyRows(m.world, m.built)
	if err != nil {
		m.err = err
		return
	}
	m.bodies.SetRows(toRows(rows))

	handles, err := m.world.ContactList(nil)
	if err != nil {
		m.err = err
		return
	}
	crows := make([]table.Row, 0, len(handles))
	for _, h := range handles {
		crows = append(crows, m.contactRow(h))
	}
	m.contacts.SetRows(crows)
}

func (m *interactiveModel) contactRow(h handle.Handle) table.Row {
	w := m.world
	fa, _ := w.Contacts.FixtureA(h)
	fb, _ := w.Contacts.FixtureB(h)
	touching, _ := w.Contacts.IsTouching(h)
	var wm marshal.WorldManifold
	points, _ := w.Contacts.WorldManifold(h, &wm)
	return table.Row{h.String(), fa.String(), fb.String(), strconv.FormatBool(touching), strconv.Itoa(int(points))}
}

func toRows(rows [][]string) []table.Row {
	out := make([]table.Row, len(rows))
	for i, r := range rows {
		out[i] = table.Row(r)
	}
	return out
}

func (m *interactiveModel) close() {
	if m.watcher != nil {
		_ = m.watcher.Close()
		m.watcher = nil
	}
	if m.hostMod != nil {
		_ = m.hostMod.Close(m.ctx)
		m.hostMod = nil
	}
	if m.world != nil {
		_ = m.world.Close()
	}
	if m.rt != nil {
		_ = m.rt.Close(m.ctx)
		m.rt = nil
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.waitForChange()
}

func (m *interactiveModel) waitForChange() tea.Cmd {
	if m.watcher == nil {
		return nil
	}
	w := m.watcher
	return func() tea.Msg {
		select {
		case name, ok := <-w.Events:
			if !ok {
				return nil
			}
			return sceneChangedMsg{path: name}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return watchErrMsg{err: err}
		}
	}
}

func (m *interactiveModel) tick() tea.Cmd {
	return tea.Tick(time.Duration(m.cfg.DT*float64(time.Second)), func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func (m *interactiveModel) step() {
	if err := m.world.Step(float32(m.cfg.DT), 0, 0); err != nil {
		m.err = err
		m.running = false
		return
	}
	m.frame++
	m.refresh()
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || (msg.String() == "q" && m.state != stateInputArgs) {
			m.close()
			return m, tea.Quit
		}
		switch m.state {
		case stateWorld:
			return m.updateWorld(msg)
		case stateSelectFunc:
			return m.updateSelect(msg)
		case stateInputArgs:
			return m.updateInputs(msg)
		case stateShowResult:
			if s := msg.String(); s == "enter" || s == "esc" {
				m.state = stateSelectFunc
				m.result = ""
				m.callErr = nil
			}
		}

	case tickMsg:
		if !m.running {
			return m, nil
		}
		m.step()
		if m.running && (m.cfg.Steps == 0 || m.frame < m.cfg.Steps) {
			return m, m.tick()
		}
		m.running = false

	case sceneChangedMsg:
		s, err := scene.Load(m.cfg.Scene)
		if err == nil {
			err = m.rebuild(s)
		}
		m.err = err
		return m, m.waitForChange()

	case watchErrMsg:
		m.err = msg.err
		return m, m.waitForChange()

	case callResultMsg:
		m.result = msg.result
		m.callErr = msg.err
		m.state = stateShowResult
		m.refresh()
	}
	return m, nil
}

func (m *interactiveModel) updateWorld(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case " ":
		if !m.running {
			m.step()
		}
		return m, nil
	case "r":
		m.running = !m.running
		if m.running {
			return m, m.tick()
		}
		return m, nil
	case "f":
		m.running = false
		m.state = stateSelectFunc
		return m, nil
	}
	var cmd tea.Cmd
	m.bodies, cmd = m.bodies.Update(msg)
	return m, cmd
}

func (m *interactiveModel) updateSelect(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.selected < len(m.funcs)-1 {
			m.selected++
		}
	case "enter":
		m.prepareInputs()
		if len(m.inputs) == 0 {
			return m, m.callFunction
		}
		m.state = stateInputArgs
	case "esc", "f":
		m.state = stateWorld
	}
	return m, nil
}

func (m *interactiveModel) updateInputs(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		return m, m.callFunction
	case "esc":
		m.state = stateSelectFunc
		m.inputs = nil
		return m, nil
	case "tab":
		if len(m.inputs) > 1 {
			m.inputs[m.focusIdx].Blur()
			m.focusIdx = (m.focusIdx + 1) % len(m.inputs)
			m.inputs[m.focusIdx].Focus()
		}
		return m, nil
	}
	var cmds []tea.Cmd
	for i := range m.inputs {
		var cmd tea.Cmd
		m.inputs[i], cmd = m.inputs[i].Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m *interactiveModel) prepareInputs() {
	f := m.funcs[m.selected]
	m.inputs = make([]textinput.Model, len(f.Params))
	for i, p := range f.Params {
		ti := textinput.New()
		ti.Placeholder = host.TypeName(p)
		ti.Prompt = fmt.Sprintf("arg%d: ", i)
		ti.Width = 40
		if i == 0 {
			ti.Focus()
		}
		m.inputs[i] = ti
	}
	m.focusIdx = 0
}

// callFunction invokes the selected host export directly. Functions that
// take guest pointers trap here since no guest memory is attached.
func (m *interactiveModel) callFunction() tea.Msg {
	f := m.funcs[m.selected]
	fn := m.hostMod.ExportedFunction(f.Name)
	if fn == nil {
		return callResultMsg{err: fmt.Errorf("%s is not exported", f.Name)}
	}

	args := make([]uint64, len(m.inputs))
	for i, input := range m.inputs {
		v, err := encodeArg(input.Value(), f.Params[i])
		if err != nil {
			return callResultMsg{err: fmt.Errorf("arg%d: %w", i, err)}
		}
		args[i] = v
	}

	results, err := fn.Call(m.ctx, args...)
	if err != nil {
		return callResultMsg{err: err}
	}
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = decodeResult(r, f.Results[i])
	}
	return callResultMsg{result: strings.Join(out, ", ")}
}

func encodeArg(value string, t wit.Type) (uint64, error) {
	switch t.(type) {
	case wit.U8, wit.U16, wit.U32:
		v, err := strconv.ParseUint(value, 0, 32)
		return api.EncodeU32(uint32(v)), err
	case wit.S8, wit.S16, wit.S32:
		v, err := strconv.ParseInt(value, 0, 32)
		return api.EncodeI32(int32(v)), err
	case wit.U64:
		return strconv.ParseUint(value, 0, 64)
	case wit.S64:
		v, err := strconv.ParseInt(value, 0, 64)
		return api.EncodeI64(v), err
	case wit.F32:
		v, err := strconv.ParseFloat(value, 32)
		return api.EncodeF32(float32(v)), err
	case wit.F64:
		v, err := strconv.ParseFloat(value, 64)
		return api.EncodeF64(v), err
	case wit.Bool:
		if value == "true" || value == "1" {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, fmt.Errorf("unsupported parameter type %s", host.TypeName(t))
	}
}

func decodeResult(v uint64, t wit.Type) string {
	switch t.(type) {
	case wit.Bool:
		return strconv.FormatBool(v != 0)
	case wit.U8, wit.U16, wit.U32:
		return strconv.FormatUint(uint64(api.DecodeU32(v)), 10)
	case wit.S8, wit.S16, wit.S32:
		return strconv.Itoa(int(api.DecodeI32(v)))
	case wit.U64:
		return handle.Handle(v).String()
	case wit.S64:
		return strconv.FormatInt(int64(v), 10)
	case wit.F32:
		return strconv.FormatFloat(float64(api.DecodeF32(v)), 'g', -1, 32)
	case wit.F64:
		return strconv.FormatFloat(api.DecodeF64(v), 'g', -1, 64)
	default:
		return strconv.FormatUint(v, 10)
	}
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Box2D Bridge"))
	b.WriteString(" ")
	if m.cfg.Scene != "" {
		b.WriteString(m.cfg.Scene)
	} else {
		b.WriteString("built-in scene")
	}
	b.WriteString("\n\n")

	switch m.state {
	case stateWorld:
		status := "paused"
		if m.running {
			status = "running"
		}
		b.WriteString(fmt.Sprintf("frame %d • %s • live handles %d\n\n", m.frame, status, m.world.Handles().Len()))
		b.WriteString(m.bodies.View())
		b.WriteString("\n\n")
		b.WriteString(m.contacts.View())
		b.WriteString("\n\n")
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
			b.WriteString("\n\n")
		}
		b.WriteString(helpStyle.Render("space step • r run/pause • f host functions • q quit"))

	case stateSelectFunc:
		b.WriteString("Select a host function to call:\n\n")
		start := max(0, m.selected-listHeight/2)
		end := min(len(m.funcs), start+listHeight)
		for i := start; i < end; i++ {
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + host.Signature(m.funcs[i])))
			} else {
				b.WriteString("  " + m.formatFunc(m.funcs[i]))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter call • esc world • q quit"))

	case stateInputArgs:
		f := m.funcs[m.selected]
		b.WriteString(fmt.Sprintf("Calling %s\n\n", funcStyle.Render(f.Name)))
		for i, input := range m.inputs {
			b.WriteString(input.View())
			b.WriteString(" ")
			b.WriteString(typeStyle.Render(host.TypeName(f.Params[i])))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("tab next field • enter call • esc back"))

	case stateShowResult:
		f := m.funcs[m.selected]
		b.WriteString(fmt.Sprintf("Result of %s:\n\n", funcStyle.Render(f.Name)))
		switch {
		case m.callErr != nil:
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.callErr)))
		case m.result == "":
			b.WriteString(resultStyle.Render("ok"))
		default:
			b.WriteString(resultStyle.Render(m.result))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter continue • q quit"))
	}

	return b.String()
}

func (m *interactiveModel) formatFunc(f host.Func) string {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = typeStyle.Render(host.TypeName(p))
	}
	result := ""
	if len(f.Results) > 0 {
		result = " -> " + typeStyle.Render(host.TypeName(f.Results[0]))
	}
	return funcStyle.Render(f.Name) + "(" + strings.Join(params, ", ") + ")" + result
}

func runInteractive(cfg config) error {
	m, err := newInteractiveModel(context.Background(), cfg)
	if err != nil {
		return err
	}
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	m.close()
	return err
}
