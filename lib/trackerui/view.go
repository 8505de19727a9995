// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package trackerui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/bureau-foundation/lattice/lib/tui"
)

// View implements tea.Model.
func (m Model) View() string {
	if m.width <= 0 || m.height <= 0 {
		return ""
	}

	listWidth := int(float64(m.width) * listSplitRatio)
	if listWidth < 20 {
		listWidth = 20
	}
	detailWidth := m.width - listWidth - 2
	if detailWidth < 10 {
		detailWidth = 10
	}
	bodyHeight := m.listHeight()

	title := m.renderTitle()
	list := m.renderList(listWidth, bodyHeight)
	scrollbar := m.renderScrollbar(bodyHeight)
	detail := m.renderDetail(detailWidth, bodyHeight)
	footer := m.renderFooter()

	body := lipgloss.JoinHorizontal(lipgloss.Top, list, scrollbar, " ", detail)
	return title + "\n" + body + "\n" + footer
}

// listHeight is the row count available to the list and detail panes:
// total height minus the title and footer lines.
func (m *Model) listHeight() int {
	return m.height - 2
}

func (m Model) renderTitle() string {
	headerStyle := lipgloss.NewStyle().
		Foreground(m.theme.HeaderForeground).
		Bold(true)
	activeStyle := lipgloss.NewStyle().
		Foreground(m.theme.AccentColor).
		Bold(true)
	faintStyle := lipgloss.NewStyle().Foreground(m.theme.FaintText)

	segments := make([]string, 0, len(m.trackers))
	for i, t := range m.trackers {
		label := fmt.Sprintf("%s (%s)", t.Name, t.Kind)
		if i == m.active {
			segments = append(segments, activeStyle.Render(label))
		} else {
			segments = append(segments, faintStyle.Render(label))
		}
	}
	line := headerStyle.Render("lattice") + "  " +
		strings.Join(segments, faintStyle.Render(" │ "))
	return ansi.Truncate(line, m.width, "…")
}

func (m Model) renderList(width, height int) string {
	normalStyle := lipgloss.NewStyle().Foreground(m.theme.NormalText)
	selectedStyle := lipgloss.NewStyle().
		Foreground(m.theme.SelectedForeground).
		Background(m.theme.SelectedBackground)
	highlightStyle := lipgloss.NewStyle().
		Background(m.theme.SearchHighlightBackground)

	lines := make([]string, height)
	for row := 0; row < height; row++ {
		index := m.listOffset + row
		if index >= len(m.visible) {
			lines[row] = strings.Repeat(" ", width)
			continue
		}
		vis := m.visible[index]
		base := normalStyle
		if index == m.cursor {
			base = selectedStyle
		}
		text := renderHighlighted(searchText(vis.item), vis.positions, base, highlightStyle)
		text = ansi.Truncate(text, width-1, "…")
		pad := width - ansi.StringWidth(text)
		if pad > 0 {
			text += base.Render(strings.Repeat(" ", pad))
		}
		lines[row] = text
	}
	return strings.Join(lines, "\n")
}

// renderHighlighted styles text rune by rune, switching to the
// highlight style at matched positions. Runs of same-styled runes are
// batched so the output stays compact.
func renderHighlighted(text string, positions []int, base, highlight lipgloss.Style) string {
	if len(positions) == 0 {
		return base.Render(text)
	}
	matched := make(map[int]bool, len(positions))
	for _, p := range positions {
		matched[p] = true
	}

	var out strings.Builder
	var run []rune
	var runHot bool
	flush := func() {
		if len(run) == 0 {
			return
		}
		if runHot {
			out.WriteString(highlight.Inherit(base).Render(string(run)))
		} else {
			out.WriteString(base.Render(string(run)))
		}
		run = run[:0]
	}
	for i, r := range []rune(text) {
		hot := matched[i]
		if hot != runHot {
			flush()
			runHot = hot
		}
		run = append(run, r)
	}
	flush()
	return out.String()
}

func (m Model) renderScrollbar(height int) string {
	return tui.RenderScrollbar(m.theme, height, len(m.visible), height,
		m.listOffset, m.focus == FocusList)
}

func (m Model) renderDetail(width, height int) string {
	faintStyle := lipgloss.NewStyle().Foreground(m.theme.FaintText)
	normalStyle := lipgloss.NewStyle().Foreground(m.theme.NormalText)
	headerStyle := lipgloss.NewStyle().
		Foreground(m.theme.AccentColor).
		Bold(true)

	lines := make([]string, 0, height)
	item, ok := m.selected()
	if !ok {
		lines = append(lines, faintStyle.Render("no keys match the filter"))
		return padColumn(lines, width, height)
	}

	lines = append(lines,
		headerStyle.Render(item.Key)+"  "+normalStyle.Render(item.Path))

	if m.showPreview {
		content := m.previewLines(item)
		start := m.detailOffset
		if start > len(content)-1 {
			start = len(content) - 1
		}
		if start < 0 {
			start = 0
		}
		lines = append(lines,
			faintStyle.Render(fmt.Sprintf("preview · %d lines", len(content))), "")
		for _, row := range content[start:] {
			if len(lines) >= height {
				break
			}
			lines = append(lines, ansi.Truncate(row, width, "…"))
		}
		return padColumn(lines, width, height)
	}

	relations := m.relationships(item.Key)
	if len(relations) == 0 {
		lines = append(lines, "",
			faintStyle.Render("no recorded relationships"))
		return padColumn(lines, width, height)
	}
	lines = append(lines,
		faintStyle.Render(fmt.Sprintf("%d relationships", len(relations))), "")

	start := m.detailOffset
	if start > len(relations)-1 {
		start = len(relations) - 1
	}
	for _, rel := range relations[start:] {
		if len(lines) >= height {
			break
		}
		charStyle := lipgloss.NewStyle().
			Foreground(m.theme.CharColor(rel.Outgoing)).
			Bold(rel.Outgoing.IsVerified())
		line := charStyle.Render(rel.Outgoing.String()) + " " +
			normalStyle.Render(fmt.Sprintf("%-8s", rel.Key)) +
			faintStyle.Render(fmt.Sprintf("%-20s", charDescription(rel.Outgoing))) +
			faintStyle.Render(rel.Path)
		lines = append(lines, ansi.Truncate(line, width, "…"))
	}
	return padColumn(lines, width, height)
}

// padColumn pads a column of lines to exactly height rows so the
// horizontal join stays rectangular.
func padColumn(lines []string, width, height int) string {
	for len(lines) < height {
		lines = append(lines, "")
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderFooter() string {
	helpStyle := lipgloss.NewStyle().Foreground(m.theme.HelpText)
	accentStyle := lipgloss.NewStyle().Foreground(m.theme.AccentColor)

	if m.focus == FocusFilter || m.filter.Input != "" {
		prompt := accentStyle.Render("/") + m.filter.Input
		if m.focus == FocusFilter {
			prompt += accentStyle.Render("█")
		}
		count := helpStyle.Render(
			fmt.Sprintf("  %d/%d", len(m.visible), len(m.items)))
		return ansi.Truncate(prompt+count, m.width, "…")
	}

	help := "j/k move · tab pane · [/] tracker · / filter · enter jump · p preview · q quit"
	return ansi.Truncate(helpStyle.Render(help), m.width, "…")
}
