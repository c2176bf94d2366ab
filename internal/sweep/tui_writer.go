package sweep

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
)

// teaProgram abstracts bubbletea.Program for testing.
type teaProgram interface {
	Send(tea.Msg)
}

type pointMsg struct{ Record }
type summaryMsg struct{ Summary }
type totalMsg struct{ total int }

const maxTableRows = 15

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	jammedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	clearStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	summaryStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// TUIWriter renders sweep progress using a bubbletea TUI.
type TUIWriter struct {
	program teaProgram
	done    chan struct{}
}

// NewTUIWriter starts a bubbletea program expecting total points.
func NewTUIWriter(title string, total int) *TUIWriter {
	w := &TUIWriter{done: make(chan struct{})}
	p := tea.NewProgram(newTUIModel(title, total), tea.WithAltScreen())
	w.program = p
	go func() {
		_, _ = p.Run()
		close(w.done)
	}()
	return w
}

// WriteRecord implements Writer.
func (w *TUIWriter) WriteRecord(r Record) error {
	w.program.Send(pointMsg{r})
	return nil
}

// WriteSummary shows the sweep outcome.
func (w *TUIWriter) WriteSummary(s Summary) error {
	w.program.Send(summaryMsg{s})
	return nil
}

// SetTotal resets the progress bar for a new sweep of n points.
func (w *TUIWriter) SetTotal(n int) {
	w.program.Send(totalMsg{n})
}

// Close stops the program and waits for the terminal to be restored.
func (w *TUIWriter) Close() error {
	if p, ok := w.program.(*tea.Program); ok {
		p.Quit()
	}
	if w.done != nil {
		<-w.done
	}
	return nil
}

type tuiModel struct {
	title   string
	total   int
	seen    int
	jammed  int
	rows    []table.Row
	tbl     table.Model
	bar     progress.Model
	summary string
	safe    bool
	width   int
	wrap    bool
}

var tuiColumns = []table.Column{
	{Title: "#", Width: 4},
	{Title: "coord", Width: 8},
	{Title: "tx-rx m", Width: 9},
	{Title: "rx-jam m", Width: 9},
	{Title: "body dBm", Width: 10},
	{Title: "jam dBm", Width: 10},
	{Title: "p1", Width: 6},
	{Title: "p2", Width: 6},
	{Title: "state", Width: 7},
}

func newTUIModel(title string, total int) tuiModel {
	t := table.New(
		table.WithColumns(tuiColumns),
		table.WithRows(nil),
		table.WithHeight(maxTableRows),
		table.WithFocused(true),
	)
	return tuiModel{
		title: title,
		total: total,
		tbl:   t,
		bar:   progress.New(progress.WithDefaultGradient()),
		width: 80,
		wrap:  true,
	}
}

func (m tuiModel) Init() tea.Cmd { return nil }

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.bar.Width = max(10, msg.Width-4)
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "w":
			m.wrap = !m.wrap
			return m, nil
		}
	case totalMsg:
		m.total = msg.total
		m.seen = 0
		m.jammed = 0
		m.rows = nil
		m.summary = ""
		m.tbl.SetRows(nil)
		return m, nil
	case pointMsg:
		m.seen++
		state := "clear"
		if msg.IsJammed {
			m.jammed++
			state = "JAMMED"
		}
		m.rows = append(m.rows, table.Row{
			fmt.Sprint(msg.Index),
			FormatFloat(msg.ScanCoordinate),
			FormatFloat(msg.TxRxDistance),
			FormatFloat(msg.RxJamDistance),
			FormatFloat(msg.BodyRxPowerDbm),
			FormatFloat(msg.JamRxPowerDbm),
			fmt.Sprintf("%.3f", msg.NoJamSuccessRate),
			fmt.Sprintf("%.3f", msg.JamSuccessRate),
			state,
		})
		m.tbl.SetRows(m.rows)
		m.tbl.GotoBottom()
		return m, nil
	case summaryMsg:
		m.summary = msg.Report()
		m.safe = msg.Safe
		return m, nil
	}
	var cmd tea.Cmd
	m.tbl, cmd = m.tbl.Update(msg)
	return m, cmd
}

func (m tuiModel) fraction() float64 {
	if m.total <= 0 {
		return 0
	}
	return min(1, float64(m.seen)/float64(m.total))
}

func (m tuiModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n")
	fmt.Fprintf(&b, "points %d/%d  jammed %d\n", m.seen, m.total, m.jammed)
	b.WriteString(m.bar.ViewAs(m.fraction()))
	b.WriteString("\n\n")
	b.WriteString(m.tbl.View())
	b.WriteString("\n")
	if m.summary != "" {
		text := m.summary
		if m.wrap && m.width > 4 {
			text = wordwrap.String(text, m.width-4)
		}
		style := jammedStyle
		if m.safe {
			style = clearStyle
		}
		b.WriteString(summaryStyle.Render(style.Render(text)))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("q: quit  w: toggle wrap  up/down: scroll"))
	return b.String()
}
