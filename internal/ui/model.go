package ui

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/nconklindev/sway/internal/chart"
	"github.com/nconklindev/sway/internal/config"
	"github.com/nconklindev/sway/internal/pipeline"
	"github.com/nconklindev/sway/internal/types"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type state int

const (
	stateFilePicker state = iota
	stateModeSelection
	stateProcessing
	stateDashboard
	stateError
)

type modeOption struct {
	mode  types.Mode
	label string
}

var modeOptions = []modeOption{
	{pipeline.ModeAuto, "Detect automatically"},
	{types.ModeChangeImpact, "Change impact assessment (impact & perception by stakeholder)"},
	{types.ModeStakeholder, "Stakeholder analysis (sentiment vs. influence)"},
}

// Options preset parts of the flow from the command line.
type Options struct {
	// Path skips the file picker.
	Path string
	// Mode skips the mode selection when set.
	Mode types.Mode
	// ExportDir overrides the default <file>_charts export directory.
	ExportDir string
}

type Model struct {
	state        state
	cfg          *config.Config
	opts         Options
	filepicker   filepicker.Model
	spinner      spinner.Model
	viewport     viewport.Model
	table        table.Model
	selectedFile string
	mode         types.Mode
	cursor       int
	report       *pipeline.Report
	showTable    bool
	exported     []string
	exportErr    error
	err          error
	width        int
	height       int
}

type reportMsg struct {
	report *pipeline.Report
	err    error
}

type exportMsg struct {
	files []string
	err   error
}

func InitialModel(cfg *config.Config, opts Options) Model {
	fp := filepicker.New()
	fp.AllowedTypes = []string{".xlsx"}
	fp.CurrentDirectory, _ = os.Getwd()

	// Set filepicker colors to match theme
	fp.Styles.Cursor = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF8C42"))
	fp.Styles.Symlink = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB84D"))
	fp.Styles.Directory = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB84D"))
	fp.Styles.File = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF"))
	fp.Styles.Permission = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	fp.Styles.Selected = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF8C42")).Bold(true)
	fp.Styles.FileSize = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF8C42"))

	m := Model{
		state:      stateFilePicker,
		cfg:        cfg,
		opts:       opts,
		filepicker: fp,
		spinner:    sp,
		viewport:   viewport.New(80, 20),
		mode:       opts.Mode,
	}
	if opts.Path != "" {
		m.selectedFile = opts.Path
		m.state = stateModeSelection
		if opts.Mode != "" {
			m.state = stateProcessing
		}
	}
	return m
}

func (m Model) Init() tea.Cmd {
	switch m.state {
	case stateProcessing:
		return tea.Batch(m.spinner.Tick, m.run())
	case stateModeSelection:
		return nil
	}
	return m.filepicker.Init()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		// Subtract space for title, subtitle, help text, and padding
		height := msg.Height - 14
		if height < 5 {
			height = 5 // Minimum height
		}
		m.filepicker.SetHeight(height)

		m.viewport.Width = max(msg.Width-2, 20)
		m.viewport.Height = max(msg.Height-8, 5)
		if m.report != nil {
			m.table.SetHeight(max(msg.Height-10, 5))
			m.viewport.SetContent(m.dashboardContent())
		}
		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case stateFilePicker:
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			}

		case stateModeSelection:
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "up", "k":
				if m.cursor > 0 {
					m.cursor--
				}
			case "down", "j":
				if m.cursor < len(modeOptions)-1 {
					m.cursor++
				}
			case "esc":
				return m.reset()
			case "enter":
				m.mode = modeOptions[m.cursor].mode
				m.state = stateProcessing
				return m, tea.Batch(m.spinner.Tick, m.run())
			}
			return m, nil

		case stateProcessing:
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			return m, nil

		case stateDashboard:
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "o":
				return m.reset()
			case "e":
				m.exportErr = nil
				return m, m.export()
			case "tab":
				if len(m.report.Strategies) > 0 {
					m.showTable = !m.showTable
				}
				return m, nil
			}
			var cmd tea.Cmd
			if m.showTable {
				m.table, cmd = m.table.Update(msg)
			} else {
				m.viewport, cmd = m.viewport.Update(msg)
			}
			return m, cmd

		case stateError:
			switch msg.String() {
			case "o", "enter":
				return m.reset()
			case "ctrl+c", "q", "esc":
				return m, tea.Quit
			}
			return m, nil
		}

	case reportMsg:
		if msg.err != nil {
			m.err = msg.err
			m.state = stateError
			return m, nil
		}
		m.report = msg.report
		m.table = newStrategyTable(msg.report, max(m.height-10, 5))
		m.viewport.SetContent(m.dashboardContent())
		m.viewport.GotoTop()
		m.state = stateDashboard
		return m, nil

	case exportMsg:
		m.exported, m.exportErr = msg.files, msg.err
		return m, nil

	case spinner.TickMsg:
		if m.state != stateProcessing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	// Handle filepicker updates
	if m.state == stateFilePicker {
		var cmd tea.Cmd
		m.filepicker, cmd = m.filepicker.Update(msg)

		if didSelect, path := m.filepicker.DidSelectFile(msg); didSelect {
			m.selectedFile = path
			if m.opts.Mode != "" {
				m.mode = m.opts.Mode
				m.state = stateProcessing
				return m, tea.Batch(m.spinner.Tick, m.run())
			}
			m.state = stateModeSelection
			return m, nil
		}

		return m, cmd
	}

	return m, nil
}

// reset discards the current report and returns to the file picker.
func (m Model) reset() (Model, tea.Cmd) {
	m.state = stateFilePicker
	m.report = nil
	m.err = nil
	m.exported = nil
	m.exportErr = nil
	m.showTable = false
	m.selectedFile = ""
	m.mode = m.opts.Mode
	m.cursor = 0
	return m, m.filepicker.Init()
}

func (m Model) run() tea.Cmd {
	cfg, path, mode := m.cfg, m.selectedFile, m.mode
	return func() tea.Msg {
		report, err := pipeline.RunFile(cfg, path, mode)
		return reportMsg{report: report, err: err}
	}
}

func (m Model) export() tea.Cmd {
	dir := m.exportDir()
	report, vocab := m.report, m.cfg.Vocabulary
	return func() tea.Msg {
		files, err := chart.Export(dir, report, vocab)
		return exportMsg{files: files, err: err}
	}
}

func (m Model) exportDir() string {
	if m.opts.ExportDir != "" {
		return m.opts.ExportDir
	}
	ext := filepath.Ext(m.selectedFile)
	return strings.TrimSuffix(m.selectedFile, ext) + "_charts"
}

func newStrategyTable(report *pipeline.Report, height int) table.Model {
	columns := []table.Column{
		{Title: "Stakeholder Name", Width: 22},
		{Title: "Group", Width: 16},
		{Title: "Sentiment", Width: 10},
		{Title: "Influence", Width: 10},
		{Title: "Engagement Strategy", Width: 24},
	}

	rows := make([]table.Row, len(report.Strategies))
	for i, r := range report.Strategies {
		rows[i] = table.Row{r.Stakeholder, r.Group, r.Sentiment, r.Influence, r.Strategy}
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(height),
	)

	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#6B7280")).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color("#FF8C42"))
	t.SetStyles(styles)

	return t
}

func (m Model) View() string {
	switch m.state {
	case stateFilePicker:
		return m.viewFilePicker()
	case stateModeSelection:
		return m.viewModeSelection()
	case stateProcessing:
		return m.viewProcessing()
	case stateDashboard:
		return m.viewDashboard()
	case stateError:
		return m.viewError()
	}
	return ""
}
