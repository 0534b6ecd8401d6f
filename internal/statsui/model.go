// Package statsui provides the Bubble Tea progress browser.
package statsui

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/davrk/sharpen/internal/model"
	"github.com/davrk/sharpen/internal/progress"
	"github.com/davrk/sharpen/internal/stats"
	"github.com/davrk/sharpen/internal/store"
)

const (
	tabOverview = iota
	tabGames
	tabHistory
)

const historyRows = 200

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// Model implements the Bubble Tea progress browser.
type Model struct {
	progress *progress.Store
	sessions *store.Store

	data    model.UserData
	records []model.SessionRecord
	errMsg  string

	tabs         []string
	activeTab    int
	viewports    []viewport.Model
	historyTable table.Model

	width  int
	height int
}

// NewModel constructs a progress browser over the local stores.
func NewModel(prog *progress.Store, sessions *store.Store) *Model {
	m := &Model{
		progress: prog,
		sessions: sessions,
		tabs:     []string{"Overview", "Games", "History"},
	}
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
	m.historyTable = buildHistoryTable(nil, 0, 1)
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" || msg.String() == "esc" {
			return m, tea.Quit
		}
		switch msg.String() {
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "g", "home":
			if m.activeTab == tabHistory {
				m.historyTable.GotoTop()
			} else {
				m.viewports[m.activeTab].GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabHistory {
				m.historyTable.GotoBottom()
			} else {
				m.viewports[m.activeTab].GotoBottom()
			}
			return m, nil
		default:
			if m.activeTab == tabHistory {
				var cmd tea.Cmd
				m.historyTable, cmd = m.historyTable.Update(msg)
				return m, cmd
			}
			vp := m.viewports[m.activeTab]
			var cmd tea.Cmd
			vp, cmd = vp.Update(msg)
			m.viewports[m.activeTab] = vp
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) refresh() {
	ctx := context.Background()
	data, err := m.progress.Load(ctx)
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	m.data = data
	if m.sessions != nil {
		records, err := m.sessions.ListSessions(ctx, historyRows)
		if err != nil {
			m.errMsg = err.Error()
		} else {
			m.records = records
		}
	}
	m.applyHistoryTable()
	m.renderTabContents()
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight
	footerHeight = 1
	if m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = bodyHeight
	}
	m.historyTable.SetWidth(m.width)
	m.historyTable.SetHeight(maxInt(1, bodyHeight-1))
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
	if m.activeTab == tabHistory {
		m.historyTable.Focus()
	} else {
		m.historyTable.Blur()
	}
}

func (m *Model) renderHeader() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderFooter() string {
	help := headerStyle.Render("Nav: left/right  Scroll: up/down/pgup/pgdn  Quit: q")
	if m.errMsg != "" {
		return help + "\n" + errorStyle.Render(m.errMsg)
	}
	return help
}

func (m *Model) renderBody() string {
	if m.activeTab == tabHistory {
		if len(m.records) == 0 {
			return "No sessions recorded yet."
		}
		return tableMutedStyle.Render(m.historyTable.View())
	}
	return m.viewports[m.activeTab].View()
}

func (m *Model) renderTabContents() {
	width := m.width
	if width <= 0 {
		// No WindowSizeMsg yet. Probe the terminal directly.
		width = stats.TerminalWidth(80)
	}
	m.viewports[tabOverview].SetContent(m.renderOverview(width))
	m.viewports[tabGames].SetContent(m.renderGames())
}

func (m *Model) renderOverview(width int) string {
	now := time.Now()
	cards := []string{
		metricCard("Brain Speed", strconv.Itoa(progress.BrainSpeedScore(m.data))),
		metricCard("Streak", fmt.Sprintf("%d days", m.data.DailyStreak)),
		metricCard("Sessions", strconv.Itoa(progress.TotalSessions(m.data))),
		metricCard("This Week", fmt.Sprintf("%d/7", progress.WeeklySessionCount(m.data, now))),
		metricCard("Trained", stats.FormatMinutes(m.data.TotalTrainingMinutes)),
	}
	var summary string
	if width < 80 {
		summary = strings.Join(cards, "\n")
	} else {
		row1 := lipgloss.JoinHorizontal(lipgloss.Top, cards[0], cards[1], cards[2])
		row2 := lipgloss.JoinHorizontal(lipgloss.Top, cards[3], cards[4])
		summary = lipgloss.JoinVertical(lipgloss.Left, row1, row2)
	}
	lines := stats.BoosterLines(m.data, now.Format(stats.DateLayout))
	if len(lines) == 0 {
		return summary
	}
	return summary + "\n\n" + headerStyle.Render(strings.Join(lines, "\n"))
}

func (m *Model) renderGames() string {
	var buf bytes.Buffer
	if err := stats.RenderGameTable(&buf, m.data); err != nil {
		return fmt.Sprintf("Failed to render game stats: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func (m *Model) applyHistoryTable() {
	cols, rows := buildHistoryTableData(m.records)
	m.historyTable.SetColumns(cols)
	m.historyTable.SetRows(rows)
}

func buildHistoryTable(records []model.SessionRecord, width, height int) table.Model {
	cols, rows := buildHistoryTableData(records)
	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithHeight(maxInt(1, height-1)),
	)
	t.SetWidth(width)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	t.SetStyles(styles)
	return t
}

func buildHistoryTableData(records []model.SessionRecord) ([]table.Column, []table.Row) {
	columns := []table.Column{
		{Title: "Date", Width: 10},
		{Title: "Game", Width: 18},
		{Title: "Accuracy", Width: 8},
		{Title: "Avg RT", Width: 8},
		{Title: "Best RT", Width: 8},
		{Title: "Level", Width: 5},
		{Title: "Trials", Width: 6},
	}
	rows := make([]table.Row, 0, len(records))
	for _, r := range records {
		name := string(r.GameID)
		if cfg, ok := model.GameConfigs[r.GameID]; ok {
			name = cfg.Name
		}
		rows = append(rows, table.Row{
			r.Date,
			name,
			fmt.Sprintf("%d%%", r.Accuracy),
			stats.FormatMs(r.AverageReactionMs),
			stats.FormatMs(r.BestReactionMs),
			strconv.Itoa(r.FinalLevel),
			strconv.Itoa(r.TrialCount),
		})
	}
	return columns, rows
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if lineWidth := lipgloss.Width(line); lineWidth < width {
			lines[i] = line + strings.Repeat(" ", width-lineWidth)
		}
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}
