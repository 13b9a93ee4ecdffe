package progress

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/isobin/isobin/internal/util"
)

type targetState int

const (
	stateWaiting targetState = iota
	stateInstalling
	stateUninstalling
	stateDoneInstall
	stateDoneUninstall
	stateFailed
	stateAlready
)

// Interactive renders a live status line per target using a bubbletea
// program, one spinner frame tick driving redraws for every line still in
// flight.
type Interactive struct {
	mu      sync.Mutex
	program *tea.Program
	order   []string
	lines   map[string]*lineState
	done    chan struct{}
}

type lineState struct {
	name    string
	state   targetState
	note    string
	started time.Time
}

// NewInteractive starts a bubbletea program rendering to out.
func NewInteractive(out io.Writer) *Interactive {
	i := &Interactive{lines: map[string]*lineState{}, done: make(chan struct{})}
	m := model{i: i, spin: spinner.New(spinner.WithSpinner(spinner.Dot))}
	i.program = tea.NewProgram(m, tea.WithOutput(out))
	go func() {
		_, _ = i.program.Run()
		close(i.done)
	}()
	return i
}

func (i *Interactive) MakeProgress(target string) Progress {
	i.mu.Lock()
	if _, ok := i.lines[target]; !ok {
		i.order = append(i.order, target)
		i.lines[target] = &lineState{name: target, state: stateWaiting}
	}
	i.mu.Unlock()
	return &targetProgress{i: i, name: target}
}

func (i *Interactive) Close() {
	i.program.Quit()
	<-i.done
}

func (i *Interactive) set(name string, state targetState, note string) {
	i.mu.Lock()
	if l, ok := i.lines[name]; ok {
		if (state == stateInstalling || state == stateUninstalling) && l.started.IsZero() {
			l.started = time.Now()
		}
		if state == stateDoneInstall || state == stateDoneUninstall {
			if !l.started.IsZero() {
				note = util.FormatDuration(time.Since(l.started))
			}
		}
		l.state = state
		l.note = note
	}
	i.mu.Unlock()
	i.program.Send(redrawMsg{})
}

func (i *Interactive) snapshot() []lineState {
	i.mu.Lock()
	defer i.mu.Unlock()
	out := make([]lineState, 0, len(i.order))
	for _, name := range i.order {
		out = append(out, *i.lines[name])
	}
	return out
}

// targetProgress implements Progress for one target name, forwarding every
// lifecycle call into the shared Interactive model.
type targetProgress struct {
	i    *Interactive
	name string
}

func (p *targetProgress) PrepareInstall() { p.i.set(p.name, stateWaiting, "") }
func (p *targetProgress) StartInstall()   { p.i.set(p.name, stateInstalling, "") }
func (p *targetProgress) ReadyInstall()   { p.i.set(p.name, stateInstalling, "") }
func (p *targetProgress) DoneInstall()    { p.i.set(p.name, stateDoneInstall, "") }
func (p *targetProgress) FailedInstall(err error) {
	p.i.set(p.name, stateFailed, err.Error())
}

func (p *targetProgress) StartUninstall() { p.i.set(p.name, stateUninstalling, "") }
func (p *targetProgress) ReadyUninstall() { p.i.set(p.name, stateUninstalling, "") }
func (p *targetProgress) DoneUninstall()  { p.i.set(p.name, stateDoneUninstall, "") }
func (p *targetProgress) FailedUninstall(err error) {
	p.i.set(p.name, stateFailed, err.Error())
}

func (p *targetProgress) AlreadyInstalled() { p.i.set(p.name, stateAlready, "") }

// --- bubbletea model ---

type redrawMsg struct{}

type model struct {
	i    *Interactive
	spin spinner.Model
}

func (m model) Init() tea.Cmd {
	return m.spin.Tick
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	case redrawMsg:
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m model) View() string {
	lines := m.i.snapshot()
	out := ""
	for _, l := range lines {
		switch l.state {
		case stateInstalling, stateUninstalling:
			out += fmt.Sprintf("%s %s\n", m.spin.View(), l.name)
		case stateFailed:
			out += fmt.Sprintf("%s %s: %s\n", icon(l.state), l.name, l.note)
		case stateDoneInstall, stateDoneUninstall:
			if l.note != "" {
				out += fmt.Sprintf("%s %s (%s)\n", icon(l.state), l.name, l.note)
			} else {
				out += fmt.Sprintf("%s %s\n", icon(l.state), l.name)
			}
		default:
			out += fmt.Sprintf("%s %s\n", icon(l.state), l.name)
		}
	}
	return out
}
