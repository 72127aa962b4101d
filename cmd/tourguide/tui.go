package main

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/NimbleMarkets/ntcharts/canvas/runes"
	"github.com/NimbleMarkets/ntcharts/linechart/streamlinechart"

	"github.com/gwillem/tourguide/pkg/control"
	"github.com/gwillem/tourguide/pkg/nav"
	"github.com/gwillem/tourguide/pkg/tour"
)

const (
	headerHeight = 4 // title, status, blank line
	legendHeight = 2 // legend row + blank
	footerHeight = 7 // log box height
	maxLogs      = 5 // number of log messages to show
	borderSize   = 2 // chart border
	tableWidth   = 46
)

// Chart series
const (
	seriesForward = "forward"
	seriesTurn    = "turn"
)

var seriesColors = map[string]string{
	seriesForward: "46", // green
	seriesTurn:    "51", // cyan
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	chartStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	stateStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	helpText    = "space gait · g start · s stop · 0-6 exhibit · arrows drive · q arm · esc quit"
)

type runModel struct {
	ctrl      *control.Controller
	chart     *streamlinechart.Model
	waypoints []tour.Waypoint
	state     control.State
	width     int      // terminal width
	height    int      // terminal height
	logs      []string // last N log messages
	quitting  bool
	charted   bool
	lastCmd   nav.Command
}

func (m *runModel) addLog(msg string) {
	m.logs = append(m.logs, msg)
	if len(m.logs) > maxLogs {
		m.logs = m.logs[len(m.logs)-maxLogs:]
	}
}

// Messages from the controller
type stateMsg control.State
type logMsg string

func waitForState(ctrl *control.Controller) tea.Cmd {
	return func() tea.Msg {
		return stateMsg(<-ctrl.States())
	}
}

func waitForLog(ctrl *control.Controller) tea.Cmd {
	return func() tea.Msg {
		return logMsg(<-ctrl.Logs())
	}
}

// chartSize calculates the size of the chart based on terminal dimensions
func (m *runModel) chartSize() (width, height int) {
	if m.width == 0 || m.height == 0 {
		return 60, 16 // default size before we know terminal size
	}
	width = m.width - tableWidth - borderSize - 4
	if width < 30 {
		width = 30
	}
	height = m.height - headerHeight - legendHeight - footerHeight - borderSize
	if height < 8 {
		height = 8
	}
	return width, height
}

func (m *runModel) resizeChart() {
	w, h := m.chartSize()
	m.chart.Resize(w, h)
}

func initialRunModel(ctrl *control.Controller, waypoints []tour.Waypoint) runModel {
	chart := streamlinechart.New(60, 16,
		streamlinechart.WithYRange(-1.5, 1.5),
	)
	for _, name := range []string{seriesForward, seriesTurn} {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(seriesColors[name]))
		chart.SetDataSetStyles(name, runes.ThinLineStyle, style)
	}

	return runModel{
		ctrl:      ctrl,
		chart:     &chart,
		waypoints: waypoints,
		state:     control.State{Target: -1, Selected: -1},
	}
}

func (m runModel) Init() tea.Cmd {
	return tea.Batch(
		waitForState(m.ctrl),
		waitForLog(m.ctrl),
	)
}

func (m runModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeChart()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}
		if k, ok := control.ParseKey(msg.String()); ok {
			if !m.ctrl.Press(k) {
				m.addLog("Key dropped: controller busy")
			}
		}
		return m, nil

	case stateMsg:
		s := control.State(msg)
		// Only advance the chart while something moves (freeze when idle)
		if !m.charted || s.Walking || s.Command != m.lastCmd {
			m.chart.PushDataSet(seriesForward, s.Command.Forward)
			m.chart.PushDataSet(seriesTurn, s.Command.Turn)
			m.chart.DrawAll()
			m.charted, m.lastCmd = true, s.Command
		}
		m.state = s
		return m, waitForState(m.ctrl)

	case logMsg:
		m.addLog(string(msg))
		return m, waitForLog(m.ctrl)
	}

	return m, nil
}

func (m runModel) View() string {
	if m.quitting {
		return "Tour guide stopped.\n"
	}

	s := m.state
	var sb strings.Builder

	// Header
	sb.WriteString(titleStyle.Render("Tour Guide"))
	sb.WriteString(fmt.Sprintf(" - %d Hz", m.ctrl.Hz()))
	sb.WriteString("  ")
	sb.WriteString(stateStyle.Render(s.Tour.String()))
	if s.Detour {
		sb.WriteString(stateStyle.Render(" (detour)"))
	}
	sb.WriteString(statusStyle.Render(fmt.Sprintf("  t=%s  x=%.2f y=%.2f yaw=%.2f  gait=%s",
		s.Elapsed.Truncate(100*time.Millisecond), s.Pose.Position.X, s.Pose.Position.Y, s.Pose.Yaw, onOff(s.Walking))))
	sb.WriteString("\n")
	sb.WriteString(s.Status)
	sb.WriteString("\n\n")

	// Chart next to the waypoint table
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		chartStyle.Render(m.chart.View()),
		"  ",
		renderWaypoints(m.waypoints, s),
	))
	sb.WriteString("\n")

	// Legend
	sb.WriteString(renderLegend())
	sb.WriteString("\n")

	// Log box
	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(max(m.width-4, 20)).
		Foreground(lipgloss.Color("9")) // bright red

	var logLines string
	if len(m.logs) == 0 {
		logLines = statusStyle.Render(helpText)
	} else {
		logLines = strings.Join(m.logs, "\n")
	}
	sb.WriteString(logStyle.Render(logLines))
	sb.WriteString("\n")

	return sb.String()
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func renderLegend() string {
	var items []string
	for _, name := range []string{seriesForward, seriesTurn} {
		colorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(seriesColors[name])).Bold(true)
		items = append(items, colorStyle.Render("━━")+" "+name)
	}
	items = append(items, statusStyle.Render(helpText))
	return strings.Join(items, "  ")
}

func renderWaypoints(waypoints []tour.Waypoint, s control.State) string {
	tableHeaderStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	routeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Padding(0, 1)
	targetStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10")).Padding(0, 1)

	onRoute := make(map[int]bool, len(s.Route))
	for _, idx := range s.Route {
		onRoute[idx] = true
	}

	rows := make([][]string, 0, len(waypoints))
	for i, w := range waypoints {
		mark := ""
		switch {
		case i == s.Target:
			mark = "▶"
		case onRoute[i]:
			mark = "·"
		}
		rows = append(rows, []string{
			mark,
			fmt.Sprintf("%d", i),
			w.Name,
			fmt.Sprintf("%.1f, %.1f", w.Position.X, w.Position.Y),
			w.Heading.String(),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(statusStyle).
		Headers("", "#", "Name", "Position", "Heading").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return tableHeaderStyle
			case row == s.Target:
				return targetStyle
			case onRoute[row]:
				return routeStyle
			default:
				return cellStyle
			}
		})
	return t.Render()
}
