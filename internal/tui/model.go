package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/mmcdole/kinocache/internal/domain"
	"github.com/mmcdole/kinocache/internal/service"
	"github.com/mmcdole/kinocache/internal/tui/styles"
)

// View selects which cache the model is browsing
type View int

const (
	ViewListing View = iota
	ViewQueue
)

func (v View) String() string {
	if v == ViewQueue {
		return "Queue"
	}
	return "Listing"
}

// lines taken by title, status and help
const chromeLines = 3

// row is one decoded, rendered line. n is the record number in the cache being shown.
type row struct {
	n        int
	typ      domain.ItemType
	name     string
	duration string
}

func newRow(n int, item *domain.Item) row {
	r := row{n: n, typ: item.Type, name: item.Name}
	if item.RuntimeTicks > 0 {
		r.duration = item.FormattedDuration()
	}
	return r
}

// Model is the bubbletea model for browsing the cached listing and queue.
// Only the rows on screen are decoded; everything else stays in the cache.
type Model struct {
	lib  *service.LibraryService
	keys KeyMap

	view   View
	count  int // records in the cache being shown
	cursor int
	offset int
	window []row // decoded rows offset..offset+maxVisible

	filterActive bool
	filterInput  textinput.Model
	names        []string // lowercased names, held only while filtering
	filteredIdx  []int    // record numbers matching the filter; nil when no filter applies

	queueLeft time.Duration

	width  int
	height int
	status string
	err    error
}

// NewModel creates a model showing the listing held by lib
func NewModel(lib *service.LibraryService) Model {
	ti := textinput.New()
	ti.Placeholder = "type to filter..."
	ti.Prompt = "/ "
	ti.PromptStyle = styles.FilterPromptStyle
	ti.TextStyle = styles.FilterStyle

	m := Model{
		lib:         lib,
		keys:        DefaultKeyMap(),
		filterInput: ti,
	}
	if err := m.reset(); err != nil {
		m.setErr(err)
	} else if err := m.loadWindow(); err != nil {
		m.setErr(err)
	}
	return m
}

// Err returns the cache error that stopped the program, if any
func (m Model) Err() error {
	return m.err
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ensureVisible()
		return m.refresh(nil)
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}
	return m, nil
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.filterActive && m.filterInput.Focused() {
		switch {
		case key.Matches(msg, m.keys.Escape):
			m.clearFilter()
			return m.refresh(nil)
		case msg.Type == tea.KeyEnter:
			m.filterInput.Blur()
			return m, nil
		}
		// Route to textinput
		var cmd tea.Cmd
		m.filterInput, cmd = m.filterInput.Update(msg)
		m.applyFilter()
		return m.refresh(cmd)
	}

	var cmd tea.Cmd
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Escape):
		m.clearFilter()
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.PageUp):
		m.moveCursor(-m.maxVisible())
	case key.Matches(msg, m.keys.PageDown):
		m.moveCursor(m.maxVisible())
	case key.Matches(msg, m.keys.Home):
		m.moveCursor(-m.visibleCount())
	case key.Matches(msg, m.keys.End):
		m.moveCursor(m.visibleCount())
	case key.Matches(msg, m.keys.Filter):
		if err := m.loadNames(); err != nil {
			return m.fail(err)
		}
		m.filterActive = true
		m.filterInput.Focus()
		m.ensureVisible()
		cmd = textinput.Blink
	case key.Matches(msg, m.keys.SwitchView):
		if m.view == ViewListing {
			m.view = ViewQueue
		} else {
			m.view = ViewListing
		}
		m.clearFilter()
		if err := m.reset(); err != nil {
			return m.fail(err)
		}
	case key.Matches(msg, m.keys.Enqueue):
		return m.enqueue(false)
	case key.Matches(msg, m.keys.EnqueueFrom):
		return m.enqueue(true)
	default:
		return m, nil
	}
	return m.refresh(cmd)
}

// enqueue queues the selected listing item, or every playable item from it on
func (m Model) enqueue(from bool) (tea.Model, tea.Cmd) {
	if m.view != ViewListing {
		return m, nil
	}
	r, ok := m.selected()
	if !ok {
		return m, nil
	}

	if from {
		queued, err := m.lib.EnqueueFrom(r.n)
		if err != nil {
			return m.fail(err)
		}
		m.status = fmt.Sprintf("queued %d items", queued)
		return m, nil
	}

	// type query first so containers are turned away without a decode
	if m.lib.ItemType(r.n).IsFolder() {
		m.status = fmt.Sprintf("%s cannot be queued", r.name)
		return m, nil
	}
	ok, err := m.lib.Enqueue(r.n)
	if err != nil {
		return m.fail(err)
	}
	if ok {
		m.status = fmt.Sprintf("queued %s", r.name)
	} else {
		m.status = fmt.Sprintf("%s cannot be queued", r.name)
	}
	return m, nil
}

func (m *Model) setErr(err error) {
	m.err = err
	m.status = err.Error()
}

// fail stops the program; cache errors mean the files cannot be trusted
func (m Model) fail(err error) (tea.Model, tea.Cmd) {
	m.setErr(err)
	return m, tea.Quit
}

// refresh decodes the rows now on screen
func (m Model) refresh(cmd tea.Cmd) (tea.Model, tea.Cmd) {
	if err := m.loadWindow(); err != nil {
		return m.fail(err)
	}
	return m, cmd
}

// reset points the model at the top of the current view's cache.
// The queue total is computed here, once per switch to the queue.
func (m *Model) reset() error {
	m.cursor = 0
	m.offset = 0
	m.queueLeft = 0
	if m.view == ViewQueue {
		m.count = m.lib.QueueCount()
		left, err := m.lib.QueueRemaining()
		if err != nil {
			return err
		}
		m.queueLeft = left
		return nil
	}
	m.count = m.lib.Count()
	return nil
}

func (m Model) get(n int) (*domain.Item, error) {
	if m.view == ViewQueue {
		return m.lib.QueueItem(n)
	}
	return m.lib.Item(n)
}

// loadWindow decodes the visible rows
func (m *Model) loadWindow() error {
	end := m.offset + m.maxVisible()
	if end > m.visibleCount() {
		end = m.visibleCount()
	}
	window := make([]row, 0, max(end-m.offset, 0))
	for i := m.offset; i < end; i++ {
		n := m.recordAt(i)
		item, err := m.get(n)
		if err != nil {
			return err
		}
		window = append(window, newRow(n, item))
	}
	m.window = window
	return nil
}

// loadNames reads the names the filter matches against
func (m *Model) loadNames() error {
	var names []string
	if m.view == ViewQueue {
		queue, err := m.lib.Queue()
		if err != nil {
			return err
		}
		names = make([]string, len(queue))
		for i, item := range queue {
			names[i] = item.Name
		}
	} else {
		var err error
		if names, err = m.lib.Names(); err != nil {
			return err
		}
	}
	for i, name := range names {
		names[i] = strings.ToLower(name)
	}
	m.names = names
	return nil
}

func (m *Model) clearFilter() {
	m.filterActive = false
	m.names = nil
	m.filteredIdx = nil
	m.filterInput.SetValue("")
	m.filterInput.Blur()
	m.cursor = 0
	m.offset = 0
}

func (m *Model) applyFilter() {
	query := m.filterInput.Value()
	m.cursor = 0
	m.offset = 0
	if query == "" {
		m.filteredIdx = nil
		return
	}

	matches := fuzzy.Find(strings.ToLower(query), m.names)

	m.filteredIdx = make([]int, len(matches))
	for i, match := range matches {
		m.filteredIdx[i] = match.Index + 1
	}
}

func (m Model) visibleCount() int {
	if m.filteredIdx != nil {
		return len(m.filteredIdx)
	}
	return m.count
}

// recordAt maps a visible position to its record number
func (m Model) recordAt(i int) int {
	if m.filteredIdx != nil {
		return m.filteredIdx[i]
	}
	return i + 1
}

func (m Model) selected() (row, bool) {
	i := m.cursor - m.offset
	if i < 0 || i >= len(m.window) {
		return row{}, false
	}
	return m.window[i], true
}

func (m Model) maxVisible() int {
	visible := m.height - chromeLines
	if m.filterActive {
		visible--
	}
	if visible < 1 {
		visible = 1
	}
	return visible
}

func (m *Model) moveCursor(delta int) {
	m.cursor += delta
	if last := m.visibleCount() - 1; m.cursor > last {
		m.cursor = last
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.ensureVisible()
}

func (m *Model) ensureVisible() {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if visible := m.maxVisible(); m.cursor >= m.offset+visible {
		m.offset = m.cursor - visible + 1
	}
}

// View implements tea.Model
func (m Model) View() string {
	var b strings.Builder

	title := fmt.Sprintf("%s (%d)", m.view, m.count)
	b.WriteString(styles.TitleStyle.Render(title))
	if m.view == ViewQueue && m.queueLeft > 0 {
		b.WriteString(" " + styles.SubtitleStyle.Render(domain.FormatDuration(m.queueLeft)+" left"))
	}
	b.WriteString("\n")

	if m.filterActive {
		b.WriteString(m.filterInput.View())
		b.WriteString("\n")
	}

	if len(m.window) == 0 {
		b.WriteString(styles.DimStyle.Render("  (empty)"))
		b.WriteString("\n")
	}
	for i, r := range m.window {
		b.WriteString(m.renderRow(r, m.offset+i == m.cursor))
		b.WriteString("\n")
	}

	if m.err != nil {
		b.WriteString(styles.ErrorStyle.Render(m.status))
	} else {
		b.WriteString(styles.SuccessStyle.Render(m.status))
	}
	b.WriteString("\n")
	b.WriteString(m.renderHelp())
	return b.String()
}

func (m Model) renderRow(r row, selected bool) string {
	marker := styles.UnknownChar
	markerStyle := styles.DimStyle
	switch {
	case r.typ == domain.ItemTypeNone:
	case r.typ.IsFolder():
		marker, markerStyle = styles.FolderChar, styles.FolderStyle
	default:
		marker, markerStyle = styles.PlayableChar, styles.PlayableStyle
	}

	name := r.name
	if r.duration != "" {
		name += "  " + r.duration
	}
	num := fmt.Sprintf("%4d", r.n)

	var line string
	if selected {
		line = styles.SelectedStyle.Render(num + " " + marker + " " + name)
	} else {
		line = styles.DimStyle.Render(num) + " " + markerStyle.Render(marker) + " " + name
	}
	if m.width > 0 {
		line = lipgloss.NewStyle().MaxWidth(m.width).Render(line)
	}
	return line
}

func (m Model) renderHelp() string {
	parts := make([]string, 0, len(m.keys.ShortHelp()))
	for _, b := range m.keys.ShortHelp() {
		h := b.Help()
		parts = append(parts, styles.AccentStyle.Render(h.Key)+" "+styles.DimStyle.Render(h.Desc))
	}
	return strings.Join(parts, "  ")
}
