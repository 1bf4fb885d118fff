package viz

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/dynint/internal/analysis"
	"github.com/san-kum/dynint/internal/dynamo"
	"github.com/san-kum/dynint/internal/sim"
)

const (
	historyCapacity = 600
	plotWidth       = 60
	plotHeight      = 12
	maxTraces       = 4
	maxStepsPerTick = 1024
	frameInterval   = time.Second / 30
)

type TickMsg time.Time

// LiveOptions configures a live view.
type LiveOptions struct {
	Title    string
	Stepper  sim.Stepper
	Init     dynamo.Value
	ArgNames []string
	Args     []dynamo.Value
	Seed     int64
	// Code steps through the generated unit.
	Code          bool
	StepsPerFrame int
	Theme         string
}

// Model steps an integrator on every tick and plots the recent history of
// the state components.
type Model struct {
	title   string
	stepper sim.Stepper
	step    sim.StepFunc
	seed    int64
	src     rand.Source

	y0, y dynamo.Value
	t     float64
	steps int

	argNames    []string
	args        []dynamo.Value
	initialArgs []dynamo.Value
	selected    int
	perFrame    int
	history     [][]float64
	canvas      *Canvas
	theme       Theme
	running     bool
	phase       bool
	showHelp    bool
	err         error
}

func NewModel(opts LiveOptions) (Model, error) {
	if opts.Stepper == nil {
		return Model{}, errors.New("viz: nil stepper")
	}
	if opts.Init == nil || opts.Init.Len() == 0 {
		return Model{}, dynamo.ErrEmptyValue
	}
	step := sim.StepFunc(opts.Stepper.Step)
	if opts.Code {
		cs, ok := opts.Stepper.(sim.CodeStepper)
		if !ok {
			return Model{}, sim.ErrNoCode
		}
		step = cs.StepCode
	}
	names := opts.ArgNames
	if len(names) != len(opts.Args) {
		names = make([]string, len(opts.Args))
		for i := range names {
			names[i] = fmt.Sprintf("arg%d", i)
		}
	}
	title := opts.Title
	if title == "" {
		title = opts.Stepper.Name()
	}

	m := Model{
		title:       title,
		stepper:     opts.Stepper,
		step:        step,
		seed:        opts.Seed,
		y0:          opts.Init.Clone(),
		argNames:    names,
		initialArgs: cloneValues(opts.Args),
		perFrame:    max(opts.StepsPerFrame, 1),
		canvas:      NewCanvas(plotWidth/2, plotHeight/2+2),
		theme:       GetTheme(opts.Theme),
	}
	m.reset()
	return m, nil
}

// RunLive opens the live view on the alternate screen until the user quits.
func RunLive(opts LiveOptions) error {
	m, err := NewModel(opts)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func (m Model) State() dynamo.Value  { return m.y }
func (m Model) Time() float64        { return m.t }
func (m Model) Steps() int           { return m.steps }
func (m Model) Running() bool        { return m.running }
func (m Model) Err() error           { return m.err }
func (m Model) Args() []dynamo.Value { return m.args }

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd { return tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running && m.err == nil
		case "r":
			m.reset()
		case "tab":
			if len(m.args) > 0 {
				m.selected = (m.selected + 1) % len(m.args)
			}
		case "up", "k":
			m.scaleArg(1.05)
		case "down", "j":
			m.scaleArg(0.95)
		case "+", "=":
			m.perFrame = min(m.perFrame*2, maxStepsPerTick)
		case "-", "_":
			m.perFrame = max(m.perFrame/2, 1)
		case "p":
			m.phase = !m.phase
		case "t":
			m.theme = NextTheme(m.theme.Name)
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			m.advance()
		}
		return m, tick()
	}
	return m, nil
}

// advance takes up to perFrame steps and stops on the first failure.
func (m *Model) advance() {
	dt := m.stepper.Dt()
	for range m.perFrame {
		y, _, err := m.step(m.src, m.y, m.t, m.args...)
		if err != nil {
			m.fail(err)
			return
		}
		if !dynamo.IsValid(y) {
			m.fail(sim.SimError{Time: m.t, Step: m.steps, Message: "invalid state (NaN/Inf)"})
			return
		}
		m.y = y
		m.steps++
		m.t = float64(m.steps) * dt
		m.record()
	}
}

func (m *Model) fail(err error) {
	m.err = err
	m.running = false
}

func (m *Model) record() {
	for i := range m.history {
		h := append(m.history[i], m.y.At(i))
		if len(h) > historyCapacity {
			h = h[1:]
		}
		m.history[i] = h
	}
}

// reset restores the initial state, arguments and noise stream.
func (m *Model) reset() {
	m.y = m.y0.Clone()
	m.t, m.steps = 0, 0
	m.src = dynamo.NewSource(m.seed, 0)
	m.args = cloneValues(m.initialArgs)
	m.history = make([][]float64, min(m.y0.Len(), maxTraces))
	m.err = nil
	m.running = true
	m.record()
}

// scaleArg multiplies the selected argument. Arguments at zero stay there.
func (m *Model) scaleArg(factor float64) {
	if len(m.args) == 0 {
		return
	}
	m.args[m.selected] = dynamo.Scale(m.args[m.selected], factor)
}

func (m Model) View() string {
	title := lipgloss.NewStyle().Bold(true).Foreground(m.theme.Primary).Render(strings.ToUpper(m.title))

	var plot string
	switch {
	case len(m.history[0]) < 2:
		plot = Subtle.Render("waiting for data")
	case m.phase && len(m.history) >= 2:
		points := make([]analysis.Point, len(m.history[0]))
		for i := range points {
			points[i] = analysis.Point{X: m.history[0][i], Y: m.history[1][i]}
		}
		m.canvas.Clear()
		m.canvas.Plot(points)
		plot = lipgloss.NewStyle().Foreground(m.theme.Accent).Render(m.canvas.String()) + Subtle.Render("x0 vs x1")
	default:
		legends := make([]string, len(m.history))
		for i := range legends {
			legends[i] = fmt.Sprintf("x%d", i)
		}
		plot = asciigraph.PlotMany(m.history,
			asciigraph.Height(plotHeight),
			asciigraph.Width(plotWidth),
			asciigraph.SeriesColors(m.theme.Trace[:min(len(m.history), len(m.theme.Trace))]...),
			asciigraph.SeriesLegends(legends...),
			asciigraph.Caption(fmt.Sprintf("last %d steps", len(m.history[0]))))
	}

	var s strings.Builder
	s.WriteString(m.status() + "\n\n")
	s.WriteString(MetricLabel.Render("Method") + MetricValue.Render(m.stepper.Name()) + "\n")
	s.WriteString(MetricLabel.Render("Time") + MetricValue.Render(fmt.Sprintf("%.3f", m.t)) + "\n")
	s.WriteString(MetricLabel.Render("Steps") + MetricValue.Render(fmt.Sprintf("%d (x%d)", m.steps, m.perFrame)) + "\n\n")
	for i := range m.history {
		s.WriteString(MetricLabel.Render(fmt.Sprintf("x%d", i)) +
			MetricValue.Render(fmt.Sprintf("%-10.4g", m.y.At(i))) + " " +
			SparkMid.Render(Sparkline(m.history[i], 20)) + "\n")
	}
	if len(m.args) > 0 {
		s.WriteString("\n")
		for i, name := range m.argNames {
			line := fmt.Sprintf("%-8s %s", name, m.args[i])
			if i == m.selected {
				s.WriteString(StatusPaused.Render("> "+line) + "\n")
			} else {
				s.WriteString("  " + Subtle.Render(line) + "\n")
			}
		}
	}
	if m.err != nil {
		s.WriteString("\n" + StatusFailed.Render(m.err.Error()) + "\n")
	}
	s.WriteString("\n" + KeyHint.Render("space pause  r reset  q quit  ? help"))

	view := lipgloss.JoinVertical(lipgloss.Left, title,
		lipgloss.JoinHorizontal(lipgloss.Top, plot, Panel.Render(s.String())))
	if m.showHelp {
		return view + "\n\n" + Panel.Render(helpText)
	}
	return view
}

func (m Model) status() string {
	switch {
	case m.err != nil:
		return StatusFailed.Render("FAILED")
	case m.running:
		return StatusRunning.Render("RUNNING")
	}
	return StatusPaused.Render("PAUSED")
}

const helpText = `space    pause or resume
r        reset state, arguments and noise
tab      select next argument
up/k     scale argument by 1.05
down/j   scale argument by 0.95
+/-      double or halve steps per frame
p        toggle x0 vs x1 phase view
t        cycle themes
q        quit`

func cloneValues(vs []dynamo.Value) []dynamo.Value {
	out := make([]dynamo.Value, len(vs))
	for i, v := range vs {
		out[i] = v.Clone()
	}
	return out
}
