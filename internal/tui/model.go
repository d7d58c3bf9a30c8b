// Package tui is the interactive terminal front end.
//
// The Model has one tab per operation (import, export, upgrade). Starting
// an operation hands it to a tea.Cmd, which Bubble Tea runs off the UI
// goroutine, and marks the model busy until the matching done message
// arrives. While busy, new requests are refused. The service writes
// progress into a status.Slot, which the model polls on a timer so the
// status line follows each tool invocation of a long batch.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/shinji-kodama/ferium-companion/internal/classify"
	"github.com/shinji-kodama/ferium-companion/internal/model"
	"github.com/shinji-kodama/ferium-companion/internal/status"
)

// PollInterval is how often the status slot is read.
const PollInterval = 200 * time.Millisecond

const busyNotice = "Busy: wait for the current operation to finish"

// Service is the subset of companion.Service the TUI drives.
type Service interface {
	ImportAll(ctx context.Context, identifiers []string) model.ImportResult
	Export(ctx context.Context) (model.ExportResult, error)
	Upgrade(ctx context.Context) (model.UpgradeResult, error)
}

type tab int

const (
	tabImport tab = iota
	tabExport
	tabUpgrade
	tabCount
)

var tabNames = [tabCount]string{"Import", "Export", "Upgrade"}

// Messages delivered back to Update.
type (
	importDoneMsg struct {
		result model.ImportResult
	}
	exportDoneMsg struct {
		result model.ExportResult
		err    error
	}
	upgradeDoneMsg struct {
		result model.UpgradeResult
		err    error
	}
	statusTickMsg time.Time
)

// output is the last result shown on a tab.
type output struct {
	text    string
	isError bool
}

// Model is the Bubble Tea model of the companion UI.
type Model struct {
	ctx  context.Context
	svc  Service
	slot *status.Slot
	tool string

	keys    keyMap
	help    help.Model
	input   textarea.Model
	spinner spinner.Model

	active   tab
	busy     bool
	status   string
	revision uint64
	notice   string
	outputs  [tabCount]output
	width    int
}

// New creates the model. ctx bounds every operation the UI starts; slot
// must be the same slot the service reports into.
func New(ctx context.Context, svc Service, slot *status.Slot, toolName string) Model {
	input := textarea.New()
	input.Placeholder = "sodium\nlithium\nAANobbMI"
	input.ShowLineNumbers = false
	input.CharLimit = 0
	input.MaxHeight = 0
	input.SetHeight(8)
	input.SetWidth(60)
	keys := defaultKeyMap()
	input.KeyMap.InsertNewline = keys.Newline
	input.Focus()

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = lipgloss.NewStyle().Foreground(accent)

	if slot == nil {
		slot = status.NewSlot("")
	}
	snap := slot.Snapshot()

	return Model{
		ctx:      ctx,
		svc:      svc,
		slot:     slot,
		tool:     toolName,
		keys:     keys,
		help:     help.New(),
		input:    input,
		spinner:  sp,
		status:   snap.Message,
		revision: snap.Revision,
	}
}

// Init starts the status poll and the cursor blink.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.poll(), textarea.Blink)
}

func (m Model) poll() tea.Cmd {
	return tea.Tick(PollInterval, func(t time.Time) tea.Msg {
		return statusTickMsg(t)
	})
}

// Busy reports whether an operation is running.
func (m Model) Busy() bool {
	return m.busy
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		m.input.SetWidth(clamp(msg.Width-10, 20, 100))
		return m, nil

	case statusTickMsg:
		m.refreshStatus()
		return m, m.poll()

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case importDoneMsg:
		m.busy = false
		m.refreshStatus()
		m.outputs[tabImport] = output{text: formatImport(msg.result), isError: !msg.result.Success}
		if msg.result.Success {
			m.input.Reset()
		}
		return m, nil

	case exportDoneMsg:
		m.busy = false
		m.refreshStatus()
		m.outputs[tabExport] = formatExport(msg.result, msg.err)
		return m, nil

	case upgradeDoneMsg:
		m.busy = false
		m.refreshStatus()
		m.outputs[tabUpgrade] = formatUpgrade(msg.result, msg.err)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.active == tabImport {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.NextTab):
		return m.switchTab((m.active + 1) % tabCount), nil

	case key.Matches(msg, m.keys.PrevTab):
		return m.switchTab((m.active + tabCount - 1) % tabCount), nil

	case key.Matches(msg, m.keys.Submit):
		return m.start()

	case key.Matches(msg, m.keys.Clear):
		if m.active == tabImport {
			m.input.Reset()
		}
		m.outputs[m.active] = output{}
		m.notice = ""
		return m, nil
	}

	if m.active == tabImport {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) switchTab(t tab) Model {
	m.active = t
	m.notice = ""
	if t == tabImport {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
	return m
}

// start launches the operation of the active tab unless one is running.
func (m Model) start() (tea.Model, tea.Cmd) {
	if m.busy {
		m.notice = busyNotice
		return m, nil
	}

	var work tea.Cmd
	switch m.active {
	case tabImport:
		ids := classify.SplitIdentifiers(m.input.Value())
		if len(ids) == 0 {
			m.notice = "Enter at least one mod identifier"
			return m, nil
		}
		work = importCmd(m.ctx, m.svc, ids)
	case tabExport:
		work = exportCmd(m.ctx, m.svc)
	case tabUpgrade:
		work = upgradeCmd(m.ctx, m.svc)
	}

	m.busy = true
	m.notice = ""
	m.outputs[m.active] = output{}
	return m, tea.Batch(work, m.spinner.Tick)
}

func (m *Model) refreshStatus() {
	snap := m.slot.Snapshot()
	if snap.Revision != m.revision {
		m.revision = snap.Revision
		m.status = snap.Message
	}
}

func importCmd(ctx context.Context, svc Service, ids []string) tea.Cmd {
	return func() tea.Msg {
		return importDoneMsg{result: svc.ImportAll(ctx, ids)}
	}
}

func exportCmd(ctx context.Context, svc Service) tea.Cmd {
	return func() tea.Msg {
		result, err := svc.Export(ctx)
		return exportDoneMsg{result: result, err: err}
	}
}

func upgradeCmd(ctx context.Context, svc Service) tea.Cmd {
	return func() tea.Msg {
		result, err := svc.Upgrade(ctx)
		return upgradeDoneMsg{result: result, err: err}
	}
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	title := "ferium-companion"
	if m.tool != "" {
		title += " · " + m.tool
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")

	tabs := make([]string, 0, tabCount)
	for i, name := range tabNames {
		if tab(i) == m.active {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, tabStyle.Render(name))
		}
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...))
	b.WriteString("\n")
	b.WriteString(bodyStyle.Render(m.body()))
	b.WriteString("\n")

	statusLine := m.status
	if m.busy {
		statusLine = m.spinner.View() + " " + statusLine
	}
	if statusLine != "" {
		b.WriteString(statusStyle.Render(statusLine))
		b.WriteString("\n")
	}
	if m.notice != "" {
		b.WriteString(errorStyle.Render(m.notice))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) body() string {
	var b strings.Builder
	switch m.active {
	case tabImport:
		b.WriteString("Mod identifiers, one per line:\n\n")
		b.WriteString(m.input.View())
	case tabExport:
		b.WriteString("Press enter to copy the installed mod list to the clipboard.")
	case tabUpgrade:
		b.WriteString("Press enter to upgrade every mod in the active profile.")
	}

	if out := m.outputs[m.active]; out.text != "" {
		b.WriteString("\n\n")
		if out.isError {
			b.WriteString(errorStyle.Render(out.text))
		} else {
			b.WriteString(out.text)
		}
	}
	return b.String()
}

func formatImport(r model.ImportResult) string {
	var b strings.Builder
	b.WriteString(r.Message)
	if len(r.Processed) > 0 {
		b.WriteString("\n\nImported:\n")
		b.WriteString(listStyle.Render("✓ " + strings.Join(r.Processed, "\n✓ ")))
	}
	if len(r.Failed) > 0 {
		b.WriteString("\n\nFailed:\n")
		b.WriteString(listStyle.Render("✗ " + strings.Join(r.Failed, "\n✗ ")))
	}
	return b.String()
}

func formatExport(r model.ExportResult, err error) output {
	if err != nil {
		return output{text: fmt.Sprintf("Export failed: %v", err), isError: true}
	}
	text := fmt.Sprintf("%s (%s)", r.Message, r.Timestamp)
	if r.ModList != "" {
		text += "\n\n" + listStyle.Render(r.ModList)
	}
	return output{text: text, isError: !r.Success}
}

func formatUpgrade(r model.UpgradeResult, err error) output {
	if err != nil {
		return output{text: fmt.Sprintf("Upgrade failed: %v", err), isError: true}
	}
	text := r.Message
	if raw := strings.TrimSpace(r.RawOutput); raw != "" {
		text += "\n\n" + raw
	}
	return output{text: text, isError: !r.Success}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
