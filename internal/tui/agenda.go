// Package tui implements the live agenda view over the pending store.
package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/twiced-technology-gmbh/taskwatch/internal/config"
	"github.com/twiced-technology-gmbh/taskwatch/internal/task"
)

// view represents the current screen state.
type view int

const (
	viewAgenda view = iota
	viewConfirmDelete
)

// Key and layout constants.
const (
	keyEsc = "esc"

	agendaChrome = 4           // title + column header + blank line + status bar
	errorChrome  = 1           // extra line when the error toast is displayed
	tickInterval = time.Second // countdown refresh
)

// Row layout widths; the task name takes whatever remains.
const (
	cursorW  = 2
	timeW    = 21
	leftW    = 10
	prioW    = 10
	minNameW = 8
)

// Agenda is the top-level bubbletea model.
type Agenda struct {
	cfg       *config.Config
	store     *task.Store
	rows      []*task.Task
	selected  int
	scrollOff int
	view      view
	width     int
	height    int
	err       error
	now       func() time.Time // clock for countdown display; defaults to time.Now

	// Delete confirmation. The task is re-identified by name and time
	// at delete time because the store may change underneath the view.
	deleteName string
	deleteTime string
}

// NewAgenda creates the agenda model over the given store.
func NewAgenda(cfg *config.Config, store *task.Store) *Agenda {
	a := &Agenda{cfg: cfg, store: store, now: time.Now}
	a.loadTasks()
	return a
}

// SetNow overrides the clock used for countdown display (for testing).
func (a *Agenda) SetNow(fn func() time.Time) {
	a.now = fn
}

// Init implements tea.Model.
func (a *Agenda) Init() tea.Cmd {
	return tickCmd()
}

// Update implements tea.Model.
func (a *Agenda) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKey(msg)
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ensureVisible()
		return a, nil
	case ReloadMsg:
		a.reloadConfig()
		a.loadTasks()
		return a, nil
	case TickMsg:
		return a, tickCmd()
	case errMsg:
		a.err = msg.err
		return a, nil
	}
	return a, nil
}

// View implements tea.Model.
func (a *Agenda) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	switch a.view {
	case viewConfirmDelete:
		return a.viewDeleteConfirm()
	default:
		return a.viewAgenda()
	}
}

func (a *Agenda) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global keys.
	if key.Matches(msg, key.NewBinding(key.WithKeys("ctrl+c"))) {
		return a, tea.Quit
	}

	switch a.view {
	case viewAgenda:
		return a.handleAgendaKey(msg)
	case viewConfirmDelete:
		return a.handleDeleteKey(msg)
	}

	return a, nil
}

func (a *Agenda) handleAgendaKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", keyEsc:
		return a, tea.Quit
	case "j", "down":
		if a.selected < len(a.rows)-1 {
			a.selected++
			a.ensureVisible()
		}
	case "k", "up":
		if a.selected > 0 {
			a.selected--
			a.ensureVisible()
		}
	case "g", "home":
		a.selected = 0
		a.ensureVisible()
	case "G", "end":
		if len(a.rows) > 0 {
			a.selected = len(a.rows) - 1
			a.ensureVisible()
		}
	case "r":
		a.loadTasks()
	case "d", "D":
		a.handleDeleteStart()
	}
	return a, nil
}

func (a *Agenda) handleDeleteStart() {
	if t := a.selectedTask(); t != nil {
		a.deleteName = t.Name
		a.deleteTime = t.Time.String()
		a.view = viewConfirmDelete
	}
}

func (a *Agenda) handleDeleteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		return a.executeDelete()
	case "n", "N", keyEsc, "q":
		a.view = viewAgenda
	}
	return a, nil
}

// executeDelete removes the confirmed task under the store lock. The
// first entry matching the captured name and time goes; a task that
// disappeared in the meantime is a no-op.
func (a *Agenda) executeDelete() (tea.Model, tea.Cmd) {
	unlock, err := a.store.Lock()
	if err != nil {
		a.err = fmt.Errorf("acquiring store lock: %w", err)
		a.view = viewAgenda
		return a, nil
	}
	defer unlock() //nolint:errcheck // best-effort unlock on exit

	tasks, _, err := a.store.Load()
	if err != nil {
		a.err = fmt.Errorf("reading tasks: %w", err)
		a.view = viewAgenda
		return a, nil
	}

	kept := tasks[:0]
	removed := false
	for _, t := range tasks {
		if !removed && t.Name == a.deleteName && t.Time.String() == a.deleteTime {
			removed = true
			continue
		}
		kept = append(kept, t)
	}

	if removed {
		if err := a.store.Save(kept); err != nil {
			a.err = fmt.Errorf("saving tasks: %w", err)
		} else {
			task.LogActivity(a.cfg.Dir(), "delete", a.deleteName, "deleted from live view")
		}
	}

	a.view = viewAgenda
	a.loadTasks()
	return a, nil
}

// loadTasks reads the pending store. Reads skip the store lock: writers
// replace the document atomically, so a reader never sees a partial
// write.
func (a *Agenda) loadTasks() {
	tasks, warnings, err := a.store.Load()
	if err != nil {
		a.err = err
		return
	}
	a.err = nil
	if len(warnings) > 0 {
		a.err = warnings[0].Err
	}

	task.Sort(tasks)
	a.rows = tasks
	a.clampRow()
}

// reloadConfig picks up edited scan thresholds so row urgency tracks
// the config file.
func (a *Agenda) reloadConfig() {
	fresh, err := config.Load(a.cfg.Dir())
	if fresh == nil || (err != nil && !errors.Is(err, config.ErrInvalid)) {
		return
	}
	a.cfg = fresh
}

func (a *Agenda) selectedTask() *task.Task {
	if a.selected >= 0 && a.selected < len(a.rows) {
		return a.rows[a.selected]
	}
	return nil
}

func (a *Agenda) clampRow() {
	if len(a.rows) == 0 {
		a.selected = 0
		a.scrollOff = 0
		return
	}
	if a.selected >= len(a.rows) {
		a.selected = len(a.rows) - 1
	}
	a.ensureVisible()
}

// visibleRows returns how many task rows fit between the header and the
// status bar, leaving room for scroll indicators when they appear.
func (a *Agenda) visibleRows() int {
	budget := a.height - agendaChrome
	if a.err != nil {
		budget -= errorChrome
	}
	if a.scrollOff > 0 {
		budget--
	}
	if a.scrollOff+budget < len(a.rows) {
		budget--
	}
	if budget < 1 {
		return 1
	}
	return budget
}

// ensureVisible adjusts the scroll offset so the selected row is within
// the visible window.
func (a *Agenda) ensureVisible() {
	maxVis := a.visibleRows()
	switch {
	case a.selected >= a.scrollOff+maxVis:
		a.scrollOff = a.selected - maxVis + 1
	case a.selected < a.scrollOff:
		a.scrollOff = a.selected
	}
}

// WatchPaths returns the files whose changes should refresh the view.
func (a *Agenda) WatchPaths() []string {
	return []string{a.store.TasksPath(), a.cfg.ConfigPath()}
}

// --- Messages ---

// ReloadMsg is sent by the file watcher to trigger an agenda refresh.
type ReloadMsg struct{}

type errMsg struct{ err error }

// TickMsg is sent every second to refresh the countdown column.
type TickMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(time.Time) tea.Msg { return TickMsg{} })
}

// --- Styles ---

var (
	titleStyle = lipgloss.NewStyle().Bold(true)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))

	normalStyle  = lipgloss.NewStyle()
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	overdueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	dueSoonStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))

	statusBarStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)

	dialogPadY = 1
	dialogPadX = 2

	dialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(dialogPadY, dialogPadX)
)

// --- View rendering ---

func (a *Agenda) viewAgenda() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Taskwatch"))
	b.WriteString("\n")
	b.WriteString(a.renderHeader())
	b.WriteString("\n")

	maxVis := a.visibleRows()
	start := a.scrollOff
	end := min(start+maxVis, len(a.rows))

	if start > 0 {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  ↑ %d more", start)))
		b.WriteString("\n")
	}

	if len(a.rows) == 0 {
		b.WriteString(dimStyle.Render("  No tasks scheduled."))
		b.WriteString("\n")
	} else {
		now := a.now()
		for i := start; i < end; i++ {
			b.WriteString(a.renderRow(a.rows[i], i == a.selected, now))
			b.WriteString("\n")
		}
	}

	if end < len(a.rows) {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  ↓ %d more", len(a.rows)-end)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(a.renderStatusBar())
	return b.String()
}

func (a *Agenda) renderHeader() string {
	header := strings.Repeat(" ", cursorW) +
		padRight("TIME", timeW) +
		padRight("LEFT", leftW) +
		padRight("PRIORITY", prioW) +
		"TASK"
	return headerStyle.Render(truncate(header, a.width))
}

func (a *Agenda) renderRow(t *task.Task, active bool, now time.Time) string {
	nameW := a.width - cursorW - timeW - leftW - prioW
	if nameW < minNameW {
		nameW = minNameW
	}

	cursor := "  "
	if active {
		cursor = "> "
	}

	line := cursor +
		padRight(truncate(t.Time.String(), timeW-1), timeW) +
		padRight(countdownLabel(now, t), leftW) +
		padRight(task.PriorityLabel(t.Priority), prioW) +
		truncate(t.Name, nameW)

	style := a.rowStyle(t, now)
	if active {
		style = style.Bold(true)
	}
	return style.Render(truncate(line, a.width))
}

// rowStyle picks the urgency color: overdue red, due soon orange,
// unreadable time dim.
func (a *Agenda) rowStyle(t *task.Task, now time.Time) lipgloss.Style {
	if !t.Time.Valid() {
		return dimStyle
	}

	d := t.Time.Time().Sub(now)
	switch {
	case d <= 0:
		return overdueStyle
	case d <= a.cfg.DueSoonThreshold():
		return dueSoonStyle
	}
	return normalStyle
}

func (a *Agenda) renderStatusBar() string {
	now := a.now()
	dueSoon := 0
	overdue := 0
	for _, t := range a.rows {
		if !t.Time.Valid() {
			continue
		}
		d := t.Time.Time().Sub(now)
		switch {
		case d <= 0:
			overdue++
		case d <= a.cfg.DueSoonThreshold():
			dueSoon++
		}
	}

	status := fmt.Sprintf(" %d pending | %d due soon | %d overdue | j/k:move d:delete r:reload q:quit",
		len(a.rows), dueSoon, overdue)
	status = truncate(status, a.width)

	if a.err != nil {
		errStr := errorStyle.Render(truncate("Error: "+a.err.Error(), a.width))
		return errStr + "\n" + statusBarStyle.Render(status)
	}

	return statusBarStyle.Render(status)
}

func (a *Agenda) viewDeleteConfirm() string {
	content := errorStyle.Render("Delete task?") + "\n\n" +
		fmt.Sprintf("  %s\n  due %s", a.deleteName, a.deleteTime) + "\n\n" +
		dimStyle.Render("y:yes  n:no")

	return dialogStyle.Render(content)
}

// countdownLabel formats how far a task is from firing.
func countdownLabel(now time.Time, t *task.Task) string {
	if !t.Time.Valid() {
		return "--"
	}

	d := t.Time.Time().Sub(now)
	switch {
	case d <= -time.Minute:
		return "over " + compactDuration(-d)
	case d <= 0:
		return "due now"
	}
	return "in " + compactDuration(d)
}

// compactDuration formats a duration as a short label.
// Examples: "45s", "5m", "2h", "3d", "2w".
func compactDuration(d time.Duration) string {
	const (
		day  = 24 * time.Hour
		week = 7 * day
	)

	switch {
	case d < time.Minute:
		return strconv.Itoa(int(d.Seconds())) + "s"
	case d < time.Hour:
		return strconv.Itoa(int(d.Minutes())) + "m"
	case d < day:
		return strconv.Itoa(int(d.Hours())) + "h"
	case d < week:
		return strconv.Itoa(int(d/day)) + "d"
	default:
		return strconv.Itoa(int(d/week)) + "w"
	}
}

func padRight(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visible)
}

func truncate(s string, maxLen int) string {
	if maxLen < 4 { //nolint:mnd // minimum length for truncation
		maxLen = 4
	}
	if lipgloss.Width(s) <= maxLen {
		return s
	}
	// Slice by runes to avoid breaking multi-byte UTF-8 characters.
	runes := []rune(s)
	target := maxLen - 3 //nolint:mnd // room for "..."
	if target > len(runes) {
		target = len(runes)
	}
	for target > 0 && lipgloss.Width(string(runes[:target])) > maxLen-3 {
		target--
	}
	return string(runes[:target]) + "..."
}
