// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package trackerui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bureau-foundation/lattice/lib/keymap"
	"github.com/bureau-foundation/lattice/lib/tracker"
	"github.com/bureau-foundation/lattice/lib/tui"
)

// FocusRegion identifies which pane has keyboard focus.
type FocusRegion int

const (
	// FocusList means navigation keys move the key list cursor.
	FocusList FocusRegion = iota
	// FocusDetail means navigation keys scroll the detail pane.
	FocusDetail
	// FocusFilter means keystrokes go to the filter input.
	FocusFilter
)

// listSplitRatio is the fraction of the terminal width given to the
// key list; the detail pane takes the rest.
const listSplitRatio = 0.38

// Model is the bubbletea model for the tracker browser.
type Model struct {
	theme tui.Theme
	keys  KeyMap

	trackers    []*tracker.Tracker
	keyMap      *keymap.Map
	projectRoot string
	active      int

	// items are the active tracker's keys with resolved paths;
	// visible is the filtered, ranked view of them.
	items   []Item
	visible []visibleItem

	filter FilterModel
	focus  FocusRegion

	cursor       int
	listOffset   int
	detailOffset int

	// showPreview swaps the detail pane's relationship view for a
	// syntax-highlighted view of the selected key's file.
	showPreview bool
	preview     []string
	previewFor  string

	width  int
	height int
}

// New builds a browser over the given trackers. At least one tracker
// is required; the first one is active initially. The key map resolves
// foreign keys (keys defined in other trackers) to their paths, and
// projectRoot anchors the file preview.
func New(trackers []*tracker.Tracker, keyMap *keymap.Map, projectRoot string) (Model, error) {
	if len(trackers) == 0 {
		return Model{}, fmt.Errorf("no trackers to browse")
	}
	model := Model{
		theme:       tui.DefaultTheme,
		keys:        DefaultKeyMap,
		trackers:    trackers,
		keyMap:      keyMap,
		projectRoot: projectRoot,
	}
	model.loadActive()
	return model, nil
}

// Run starts the browser in the alternate screen and blocks until the
// user quits.
func Run(model Model) error {
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}

// SetActiveByPath switches the active tracker to the one saved at
// path, when present. Unknown paths leave the selection alone.
func (m *Model) SetActiveByPath(path string) {
	for i, t := range m.trackers {
		if t.Path == path {
			m.active = i
			m.cursor = 0
			m.listOffset = 0
			m.loadActive()
			return
		}
	}
}

// Active returns the tracker currently displayed.
func (m *Model) Active() *tracker.Tracker {
	return m.trackers[m.active]
}

// loadActive rebuilds the item list from the active tracker and
// reapplies the filter. The cursor is clamped, not reset, so tracker
// switches keep the user near their previous position.
func (m *Model) loadActive() {
	active := m.Active()
	keys := active.Keys()
	m.items = make([]Item, 0, len(keys))
	for _, k := range keys {
		path, _ := active.PathFor(k)
		m.items = append(m.items, Item{Key: k, Path: path})
	}
	m.refilter()
}

// refilter reapplies the filter to the item list and clamps the
// cursor and scroll offsets into the new visible range.
func (m *Model) refilter() {
	m.visible = m.filter.Apply(m.items)
	if m.cursor >= len(m.visible) {
		m.cursor = len(m.visible) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.detailOffset = 0
	m.clampListOffset()
	m.ensurePreview()
}

// selected returns the item under the cursor, or false when the
// filter has emptied the list.
func (m *Model) selected() (Item, bool) {
	if m.cursor < 0 || m.cursor >= len(m.visible) {
		return Item{}, false
	}
	return m.visible[m.cursor].item, true
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.clampListOffset()
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.focus == FocusFilter {
		return m.handleFilterKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.FilterActivate):
		m.focus = FocusFilter
		m.filter.Active = true
		return m, nil

	case key.Matches(msg, m.keys.FilterClear):
		if m.filter.Input != "" {
			m.filter.Input = ""
			m.refilter()
		}
		return m, nil

	case key.Matches(msg, m.keys.FocusToggle):
		if m.focus == FocusList {
			m.focus = FocusDetail
		} else {
			m.focus = FocusList
		}
		return m, nil

	case key.Matches(msg, m.keys.NextTracker):
		m.switchTracker(+1)
		return m, nil

	case key.Matches(msg, m.keys.PreviousTracker):
		m.switchTracker(-1)
		return m, nil

	case key.Matches(msg, m.keys.Follow):
		m.followDetailKey()
		return m, nil

	case key.Matches(msg, m.keys.Preview):
		m.showPreview = !m.showPreview
		m.detailOffset = 0
		m.ensurePreview()
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.move(-1)
		return m, nil
	case key.Matches(msg, m.keys.Down):
		m.move(+1)
		return m, nil
	case key.Matches(msg, m.keys.PageUp):
		m.move(-m.pageSize())
		return m, nil
	case key.Matches(msg, m.keys.PageDown):
		m.move(+m.pageSize())
		return m, nil
	case key.Matches(msg, m.keys.Home):
		m.moveTo(0)
		return m, nil
	case key.Matches(msg, m.keys.End):
		m.moveTo(len(m.visible) - 1)
		return m, nil
	}
	return m, nil
}

// handleFilterKey routes keystrokes to the filter input. Enter keeps
// the filter and returns focus to the list; escape clears it.
func (m Model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.focus = FocusList
		m.filter.Active = false
		return m, nil
	case tea.KeyEscape:
		m.focus = FocusList
		m.filter.Active = false
		m.filter.Input = ""
		m.refilter()
		return m, nil
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyBackspace:
		if m.filter.Input != "" {
			runes := []rune(m.filter.Input)
			m.filter.Input = string(runes[:len(runes)-1])
			m.refilter()
		}
		return m, nil
	case tea.KeyRunes, tea.KeySpace:
		m.filter.Input += string(msg.Runes)
		if msg.Type == tea.KeySpace {
			m.filter.Input += " "
		}
		m.refilter()
		return m, nil
	}
	return m, nil
}

// move shifts the cursor (list focus) or scrolls the detail pane
// (detail focus) by delta.
func (m *Model) move(delta int) {
	if m.focus == FocusDetail {
		m.detailOffset += delta
		if m.detailOffset < 0 {
			m.detailOffset = 0
		}
		return
	}
	m.moveTo(m.cursor + delta)
}

func (m *Model) moveTo(index int) {
	if m.focus == FocusDetail {
		if index <= 0 {
			m.detailOffset = 0
		}
		return
	}
	if index < 0 {
		index = 0
	}
	if index > len(m.visible)-1 {
		index = len(m.visible) - 1
	}
	if index < 0 {
		index = 0
	}
	m.cursor = index
	m.detailOffset = 0
	m.clampListOffset()
	m.ensurePreview()
}

// switchTracker cycles the active tracker by delta, wrapping.
func (m *Model) switchTracker(delta int) {
	n := len(m.trackers)
	m.active = ((m.active+delta)%n + n) % n
	m.loadActive()
}

// followDetailKey jumps the cursor to the related key selected in the
// detail pane. The detail pane has no cursor of its own, so "follow"
// uses the first visible relationship row: with the detail pane
// scrolled, that is the row at the top of the viewport.
func (m *Model) followDetailKey() {
	if m.focus != FocusDetail || m.showPreview {
		return
	}
	item, ok := m.selected()
	if !ok {
		return
	}
	relations := m.relationships(item.Key)
	if len(relations) == 0 {
		return
	}
	index := m.detailOffset
	if index >= len(relations) {
		index = len(relations) - 1
	}
	target := relations[index].Key
	// Clear the filter if it hides the target.
	for pass := 0; pass < 2; pass++ {
		for i, vis := range m.visible {
			if vis.item.Key == target {
				m.cursor = i
				m.detailOffset = 0
				m.focus = FocusList
				m.clampListOffset()
				return
			}
		}
		if m.filter.Input == "" {
			return
		}
		m.filter.Input = ""
		m.refilter()
	}
}

// pageSize is how many rows a page movement covers.
func (m *Model) pageSize() int {
	size := m.listHeight() - 1
	if size < 1 {
		size = 1
	}
	return size
}

// clampListOffset keeps the cursor inside the visible window.
func (m *Model) clampListOffset() {
	height := m.listHeight()
	if height <= 0 {
		return
	}
	if m.cursor < m.listOffset {
		m.listOffset = m.cursor
	}
	if m.cursor >= m.listOffset+height {
		m.listOffset = m.cursor - height + 1
	}
	if m.listOffset < 0 {
		m.listOffset = 0
	}
}
