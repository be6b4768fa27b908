package viz

import (
	"fmt"
	"image"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/spinsim/internal/dynamo"
	"github.com/san-kum/spinsim/internal/physics"
)

const (
	width       = 60
	height      = 22
	trailLength = 400
	chartWidth  = 30
	maxSpeed    = 64
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model replays a trajectory one sample per tick (times the speed).
type Model struct {
	title      string
	tr         *dynamo.Trajectory
	nutation   []float64
	precession []float64
	metrics    map[string]float64

	frame    int
	speed    int
	running  bool
	showHelp bool
	theme    Theme
	canvas   *Canvas
	camera   *Camera

	recording bool
	frames    []*image.Paletted
	gifPath   string
	message   string
}

// NewModel validates that the angle series align with the trajectory.
func NewModel(title string, tr *dynamo.Trajectory, nutation, precession []float64, metrics map[string]float64) (Model, error) {
	if tr == nil || tr.Len() == 0 {
		return Model{}, fmt.Errorf("%w: empty trajectory", dynamo.ErrInvalidInput)
	}
	if len(nutation) != tr.Len() || len(precession) != tr.Len() {
		return Model{}, fmt.Errorf("%w: %d samples but %d nutation and %d precession values",
			dynamo.ErrInvalidInput, tr.Len(), len(nutation), len(precession))
	}
	for i, x := range tr.States {
		if len(x) != physics.StateDim {
			return Model{}, fmt.Errorf("%w: state %d has dimension %d", dynamo.ErrInvalidInput, i, len(x))
		}
	}

	return Model{
		title:      title,
		tr:         tr,
		nutation:   nutation,
		precession: precession,
		metrics:    metrics,
		speed:      1,
		running:    true,
		theme:      Themes[0],
		canvas:     NewCanvas(width, height),
		camera:     NewCamera(),
		gifPath:    "spinsim.gif",
	}, nil
}

// WithGIFPath sets where recordings are written.
func (m Model) WithGIFPath(path string) Model {
	m.gifPath = path
	return m
}

func (m Model) Frame() int    { return m.frame }
func (m Model) Running() bool { return m.running }

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ", "space":
			m.running = !m.running
			if m.running && m.frame == m.last() {
				m.frame = 0
			}
		case "r":
			m.frame = 0
			m.running = true
		case "[":
			m.seek(-m.speed)
		case "]":
			m.seek(m.speed)
		case "<":
			m.speed = max(1, m.speed/2)
		case ">":
			m.speed = min(maxSpeed, m.speed*2)
		case "x":
			m.camera.RotateX(0.1)
		case "X":
			m.camera.RotateX(-0.1)
		case "y":
			m.camera.RotateY(0.1)
		case "Y":
			m.camera.RotateY(-0.1)
		case "z":
			m.camera.RotateZ(0.1)
		case "Z":
			m.camera.RotateZ(-0.1)
		case "+", "=":
			m.camera.ZoomIn()
		case "-", "_":
			m.camera.ZoomOut()
		case "t":
			m.theme = m.theme.next()
		case "g":
			m.toggleRecording()
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			m.seek(m.speed)
			if m.frame == m.last() {
				m.running = false
			}
		}
		if m.recording {
			m.draw()
			m.frames = append(m.frames, captureFrame(m.canvas))
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) last() int { return m.tr.Len() - 1 }

func (m *Model) seek(delta int) {
	m.frame = max(0, min(m.last(), m.frame+delta))
}

func (m *Model) toggleRecording() {
	if !m.recording {
		m.recording = true
		m.frames = m.frames[:0]
		m.message = "recording"
		return
	}
	m.recording = false
	if err := saveGIF(m.gifPath, m.frames); err != nil {
		m.message = "gif: " + err.Error()
	} else {
		m.message = fmt.Sprintf("saved %d frames to %s", len(m.frames), m.gifPath)
	}
	m.frames = nil
}

// draw renders the vehicle at the current frame and the recent coning trail
// of its spin axis.
func (m *Model) draw() {
	m.canvas.Clear()
	x := physics.BodyStateOf(m.tr.States[m.frame])

	wf := AxesWireframe(1.5)
	wf.Merge(VehicleWireframe(x.Psi, x.Theta, x.Phi, 0.35, 2.4))

	const tipLength = 2.0
	for i := max(0, m.frame-trailLength); i <= m.frame; i++ {
		s := physics.BodyStateOf(m.tr.States[i])
		wf.AddPoint(SpinAxis(s.Psi, s.Theta, s.Phi).Scale(tipLength))
	}
	Render3D(m.canvas, wf, m.camera)
}

func (m Model) View() string {
	st := m.theme.styles()
	m.draw()

	i := m.frame
	x := physics.BodyStateOf(m.tr.States[i])

	var s strings.Builder
	s.WriteString(st.header.Render(strings.ToUpper(m.title)) + "\n")

	status := "PLAYING"
	if !m.running {
		status = "PAUSED"
	}
	if m.recording {
		status += " ● REC"
	}
	s.WriteString(fmt.Sprintf("%s  x%d\n", status, m.speed))
	s.WriteString(ProgressBar(float64(i)/float64(max(1, m.last())), chartWidth) + "\n\n")

	row := func(label, value string) {
		s.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.3f s", m.tr.Times[i]))
	row("wx wy", fmt.Sprintf("%+.4f %+.4f rad/s", x.WX, x.WY))
	row("wz (spin)", fmt.Sprintf("%.3f rad/s", x.WZ))
	row("Precession", fmt.Sprintf("%.3f°", m.precession[i]))
	s.WriteString(st.label.Render("Nutation") + m.nutationStyle(st, m.nutation[i]).Render(fmt.Sprintf("%.3f°", m.nutation[i])) + "\n")

	lo := max(0, i-200)
	if hist := m.nutation[lo : i+1]; len(hist) > 1 {
		chart := asciigraph.Plot(hist, asciigraph.Height(5), asciigraph.Width(chartWidth), asciigraph.Caption("nutation (deg)"))
		s.WriteString(st.graph.Render(chart) + "\n")
	}

	s.WriteString(st.label.Render("Spin-up") + st.value.Render(Sparkline(m.tr.Component(physics.WZ)[:i+1], chartWidth)) + "\n")

	if len(m.metrics) > 0 {
		s.WriteString("\nRUN\n")
		keys := make([]string, 0, len(m.metrics))
		for k := range m.metrics {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			s.WriteString(st.value.Render(fmt.Sprintf("%-22s %.4g", k, m.metrics[k])) + "\n")
		}
	}

	if m.message != "" {
		s.WriteString("\n" + m.message + "\n")
	}
	s.WriteString(st.help.Render("SP:Pause R:Restart Q:Quit  [ ]:Step < >:Speed  ?:Help"))

	main := lipgloss.JoinHorizontal(lipgloss.Top, st.canvas.Render(m.canvas.String()), st.panel.Render(s.String()))
	if m.showHelp {
		return helpText + "\n" + main
	}
	return main
}

func (m Model) nutationStyle(st styles, deg float64) lipgloss.Style {
	switch {
	case deg < 1:
		return st.good
	case deg < 5:
		return st.warn
	default:
		return st.bad
	}
}

const helpText = `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume playback    ║
║  R        - Restart                  ║
║  [ / ]    - Step backward/forward    ║
║  < / >    - Halve/double speed       ║
║  x y z    - Rotate camera            ║
║  + / -    - Zoom                     ║
║  G        - Toggle GIF recording     ║
║  T        - Cycle themes             ║
║  Q        - Quit                     ║
╚══════════════════════════════════════╝`

// Run starts the viewer in the alternate screen and blocks until it exits.
func Run(m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
