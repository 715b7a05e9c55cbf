package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rmax-ai/wavefront/pkg/export"
	"github.com/rmax-ai/wavefront/pkg/narrator"
	"github.com/rmax-ai/wavefront/pkg/narrator/openai"
	"github.com/rmax-ai/wavefront/pkg/traversal"
)

// Config
const (
	stepInterval    = time.Second
	canvasWidth     = 64
	canvasHeight    = 18
	narrationHeight = 5
	clickRadius     = 1

	// Canvas interior origin on screen: two header lines plus the
	// top border, and the left border column. Click translation
	// depends on these matching View exactly.
	canvasOffsetX = 1
	canvasOffsetY = 3
)

// Msgs

type stepTickMsg time.Time

type narrationMsg narrator.Update

type exportDoneMsg struct {
	path string
	err  error
}

// Styles

type styles struct {
	header    lipgloss.Style
	pane      lipgloss.Style
	canvasDot lipgloss.Style
	node      lipgloss.Style
	nodeStart lipgloss.Style
	nodeFront lipgloss.Style
	nodeSeen  lipgloss.Style
	nodePend  lipgloss.Style
	subtle    lipgloss.Style
	status    lipgloss.Style
	errText   lipgloss.Style
}

func newStyles(dark bool) styles {
	if dark {
		return styles{
			header:    lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true).BorderStyle(lipgloss.NormalBorder()).BorderBottom(true),
			pane:      lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("63")),
			canvasDot: lipgloss.NewStyle().Foreground(lipgloss.Color("236")),
			node:      lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Bold(true),
			nodeStart: lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
			nodeFront: lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true),
			nodeSeen:  lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
			nodePend:  lipgloss.NewStyle().Foreground(lipgloss.Color("213")).Bold(true).Underline(true),
			subtle:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
			status:    lipgloss.NewStyle().Bold(true),
			errText:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		}
	}
	return styles{
		header:    lipgloss.NewStyle().Foreground(lipgloss.Color("161")).Bold(true).BorderStyle(lipgloss.NormalBorder()).BorderBottom(true),
		pane:      lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("61")),
		canvasDot: lipgloss.NewStyle().Foreground(lipgloss.Color("253")),
		node:      lipgloss.NewStyle().Foreground(lipgloss.Color("235")).Bold(true),
		nodeStart: lipgloss.NewStyle().Foreground(lipgloss.Color("130")).Bold(true),
		nodeFront: lipgloss.NewStyle().Foreground(lipgloss.Color("26")).Bold(true),
		nodeSeen:  lipgloss.NewStyle().Foreground(lipgloss.Color("28")).Bold(true),
		nodePend:  lipgloss.NewStyle().Foreground(lipgloss.Color("127")).Bold(true).Underline(true),
		subtle:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		status:    lipgloss.NewStyle().Bold(true),
		errText:   lipgloss.NewStyle().Foreground(lipgloss.Color("124")),
	}
}

// Model

type model struct {
	run  *traversal.Run
	narr *narrator.Narrator

	spinner  spinner.Model
	viewport viewport.Model
	styles   styles

	dark        bool
	muted       bool
	narrPending bool
	narrVersion uint64
	statusMsg   string
	ticking     bool
}

func initialModel(narr *narrator.Narrator) model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	vp := viewport.New(canvasWidth+2, narrationHeight)

	return model{
		run:      traversal.NewRun(),
		narr:     narr,
		spinner:  s,
		viewport: vp,
		styles:   newStyles(true),
		dark:     true,
	}
}

func (m model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			return m.handleClick(msg.X, msg.Y)
		}

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case stepTickMsg:
		return m.handleStepTick()

	case narrationMsg:
		m.narrPending = false
		if msg.Version >= m.narrVersion {
			m.narrVersion = msg.Version
			m.run.SetNarration(msg.Text, msg.Version)
			m.viewport.SetContent(msg.Text)
		}

	case exportDoneMsg:
		if msg.err != nil {
			m.statusMsg = m.styles.errText.Render(fmt.Sprintf("export failed: %v", msg.err))
		} else {
			m.statusMsg = fmt.Sprintf("exported to %s", msg.path)
		}
	}

	return m, tea.Batch(cmds...)
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case " ":
		m.run.Toggle()
		m.statusMsg = ""
		return m, m.kickTick()

	case "r":
		m.run.Reset()
		m.ticking = false
		// In-flight narration for the pre-reset state must not land.
		m.narrVersion = m.run.Version()
		m.viewport.SetContent("")
		m.statusMsg = ""
		return m, nil

	case "t":
		m.dark = !m.dark
		m.styles = newStyles(m.dark)
		return m, nil

	case "m":
		m.muted = !m.muted
		return m, nil

	case "e":
		snap := m.run.Snapshot()
		return m, func() tea.Msg {
			path := fmt.Sprintf("wavefront-%d.html", time.Now().Unix())
			err := export.RenderToFile(snap, path)
			return exportDoneMsg{path: path, err: err}
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m model) handleClick(screenX, screenY int) (tea.Model, tea.Cmd) {
	gx := screenX - canvasOffsetX
	gy := screenY - canvasOffsetY
	if gx < 0 || gx >= canvasWidth || gy < 0 || gy >= canvasHeight {
		return m, nil
	}

	if node := m.run.NodeAt(gx, gy, clickRadius); node != nil {
		wasAwaiting := m.run.Mode() == traversal.ModeAwaitingStart
		if m.run.ClickNode(node.ID) && wasAwaiting {
			// Start node chosen: seed narration and begin ticking.
			return m, tea.Batch(m.requestNarration(), m.kickTick())
		}
		return m, nil
	}

	m.run.AddNodeAt(gx, gy)
	return m, nil
}

func (m model) handleStepTick() (tea.Model, tea.Cmd) {
	if m.run.Mode() != traversal.ModeRunning {
		m.ticking = false
		return m, nil
	}

	var cmds []tea.Cmd
	if m.run.Step() {
		cmds = append(cmds, m.requestNarration())
	}

	if m.run.Done() {
		m.ticking = false
	} else {
		cmds = append(cmds, stepTick())
	}
	return m, tea.Batch(cmds...)
}

// kickTick schedules the stepping loop if running and not already
// scheduled.
func (m *model) kickTick() tea.Cmd {
	if m.ticking || m.run.Mode() != traversal.ModeRunning {
		return nil
	}
	m.ticking = true
	return stepTick()
}

func stepTick() tea.Cmd {
	return tea.Tick(stepInterval, func(t time.Time) tea.Msg {
		return stepTickMsg(t)
	})
}

// requestNarration resolves narration for the current snapshot unless
// muted.
func (m *model) requestNarration() tea.Cmd {
	if m.muted {
		return nil
	}
	snap := m.run.Snapshot()
	if len(snap.Visited) == 0 {
		return nil
	}
	m.narrPending = true
	narr := m.narr
	return func() tea.Msg {
		update, ok := narr.Narrate(context.Background(), snap)
		if !ok {
			return nil
		}
		return narrationMsg(update)
	}
}

func (m model) View() string {
	snap := m.run.Snapshot()

	header := m.styles.header.Width(canvasWidth + 2).Render("wavefront — breadth-first search, narrated")
	canvas := m.styles.pane.Render(m.renderCanvas(snap))
	side := m.styles.pane.Render(m.renderSidePanel(snap))
	narration := m.styles.pane.Width(canvasWidth + 2).Render(m.renderNarration(snap))
	footer := m.renderFooter(snap)

	body := lipgloss.JoinHorizontal(lipgloss.Top, canvas, side)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, narration, footer)
}

func (m model) renderCanvas(snap traversal.Snapshot) string {
	type cell struct {
		ch    string
		style lipgloss.Style
	}

	grid := make([][]cell, canvasHeight)
	for y := range grid {
		grid[y] = make([]cell, canvasWidth)
		for x := range grid[y] {
			grid[y][x] = cell{ch: "·", style: m.styles.canvasDot}
		}
	}

	visited := snap.VisitedSet()
	frontier := snap.FrontierSet()

	for _, n := range snap.Nodes {
		style := m.styles.node
		switch {
		case n.ID == snap.Pending:
			style = m.styles.nodePend
		case n.ID == snap.Start:
			style = m.styles.nodeStart
		case frontier[n.ID]:
			style = m.styles.nodeFront
		case visited[n.ID]:
			style = m.styles.nodeSeen
		}

		label := n.ID
		for i, r := range label {
			x := n.X + i
			if x >= canvasWidth || n.Y < 0 || n.Y >= canvasHeight {
				break
			}
			grid[n.Y][x] = cell{ch: string(r), style: style}
		}
	}

	var sb strings.Builder
	for y, row := range grid {
		for _, c := range row {
			sb.WriteString(c.style.Render(c.ch))
		}
		if y < canvasHeight-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func (m model) renderSidePanel(snap traversal.Snapshot) string {
	var sb strings.Builder

	sb.WriteString(m.styles.status.Render("Queue") + "\n")
	if len(snap.Frontier) == 0 {
		sb.WriteString(m.styles.subtle.Render("(empty)") + "\n")
	} else {
		sb.WriteString(strings.Join(snap.Frontier, " → ") + "\n")
	}

	sb.WriteString("\n" + m.styles.status.Render("Visited") + "\n")
	if len(snap.Visited) == 0 {
		sb.WriteString(m.styles.subtle.Render("(none)") + "\n")
	} else {
		sb.WriteString(strings.Join(snap.Visited, ", ") + "\n")
	}

	sb.WriteString("\n" + m.styles.status.Render("Edges") + "\n")
	if len(snap.Edges) == 0 {
		sb.WriteString(m.styles.subtle.Render("(none)") + "\n")
	} else {
		for _, e := range snap.Edges {
			sb.WriteString(fmt.Sprintf("%s — %s\n", e.From, e.To))
		}
	}

	return lipgloss.NewStyle().Width(24).Height(canvasHeight).Render(sb.String())
}

func (m model) renderNarration(snap traversal.Snapshot) string {
	title := m.styles.status.Render("Narration")
	if m.muted {
		return title + "\n" + m.styles.subtle.Render("(muted)")
	}
	if m.narrPending {
		title = title + " " + m.spinner.View()
	}
	if snap.Narration == "" {
		return title + "\n" + m.styles.subtle.Render("Pick a start node to hear about the traversal.")
	}
	m.viewport.SetContent(snap.Narration)
	return title + "\n" + m.viewport.View()
}

func (m model) renderFooter(snap traversal.Snapshot) string {
	mode := string(snap.Mode)
	if snap.Done() && snap.Start != "" {
		mode = "complete"
	}

	parts := []string{
		m.styles.status.Render(fmt.Sprintf("[%s]", mode)),
		fmt.Sprintf("%d nodes, %d edges", len(snap.Nodes), len(snap.Edges)),
	}
	if m.statusMsg != "" {
		parts = append(parts, m.statusMsg)
	}

	help := "click: add/select • space: run/pause • r: reset • t: theme • m: mute • e: export • q: quit"
	return strings.Join(parts, "  ") + "\n" + m.styles.subtle.Render(help)
}

func buildNarrator() *narrator.Narrator {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return narrator.New(narrator.NewMockProvider())
	}
	provider, err := openai.New(apiKey, os.Getenv("WAVEFRONT_OPENAI_MODEL"))
	if err != nil {
		return narrator.New(narrator.NewMockProvider())
	}
	return narrator.New(provider)
}

func main() {
	p := tea.NewProgram(
		initialModel(buildNarrator()),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := p.Run(); err != nil {
		fmt.Printf("Alas, there's been an error: %v", err)
		os.Exit(1)
	}
}
