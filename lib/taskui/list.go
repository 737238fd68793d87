// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package taskui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/bureau-foundation/taskboard/lib/schema"
)

// checkboxWidth covers the focus marker, the checkbox, and the gap:
// "▌[x] ".
const checkboxWidth = 5

// ListRenderer draws task rows at a fixed width.
type ListRenderer struct {
	theme Theme
	width int
}

// NewListRenderer creates a ListRenderer for the given width.
func NewListRenderer(theme Theme, width int) ListRenderer {
	return ListRenderer{theme: theme, width: width}
}

// RenderRow renders one task. matchPositions are rune indices in the
// title to highlight; busy marks a task with a request in flight.
//
//	▌[x] Buy milk  2 litres, semi-skimmed
//	 [ ] Call the plumber …
func (renderer ListRenderer) RenderRow(task schema.Task, selected, busy bool, matchPositions []int) string {
	background := lipgloss.NewStyle()
	marker := " "
	if selected {
		background = background.Background(renderer.theme.SelectedBackground)
		marker = "▌"
	}

	checkbox := background.Foreground(renderer.theme.Pending).Render("[ ]")
	titleStyle := background.Foreground(renderer.theme.NormalText)
	if selected {
		titleStyle = titleStyle.Foreground(renderer.theme.SelectedForeground).Bold(true)
	}
	if task.Completed {
		checkbox = background.Foreground(renderer.theme.Completed).Render("[x]")
		titleStyle = titleStyle.Foreground(renderer.theme.FaintText).Strikethrough(true)
	}

	var row strings.Builder
	row.WriteString(background.Foreground(renderer.theme.HeaderForeground).Render(marker))
	row.WriteString(checkbox)
	row.WriteString(background.Render(" "))
	row.WriteString(renderer.highlight(task.Title, titleStyle, matchPositions))
	if busy {
		row.WriteString(background.Foreground(renderer.theme.BusyText).Render(" …"))
	}
	if task.Description != "" {
		description := strings.Join(strings.Fields(task.Description), " ")
		row.WriteString(background.Foreground(renderer.theme.FaintText).Render("  " + description))
	}

	line := ansi.Truncate(row.String(), renderer.width, "…")
	if padding := renderer.width - ansi.StringWidth(line); padding > 0 {
		line += background.Render(strings.Repeat(" ", padding))
	}
	return line
}

// highlight renders text with the characters at positions on the match
// background.
func (renderer ListRenderer) highlight(text string, style lipgloss.Style, positions []int) string {
	if len(positions) == 0 {
		return style.Render(text)
	}
	matched := make(map[int]bool, len(positions))
	for _, position := range positions {
		matched[position] = true
	}
	highlighted := style.Background(renderer.theme.MatchHighlightBackground)

	var builder strings.Builder
	var run []rune
	runMatched := false
	flush := func() {
		if len(run) == 0 {
			return
		}
		if runMatched {
			builder.WriteString(highlighted.Render(string(run)))
		} else {
			builder.WriteString(style.Render(string(run)))
		}
		run = run[:0]
	}
	for index, character := range []rune(text) {
		if matched[index] != runMatched {
			flush()
			runMatched = matched[index]
		}
		run = append(run, character)
	}
	flush()
	return builder.String()
}
