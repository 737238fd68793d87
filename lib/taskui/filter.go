// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package taskui

import (
	"cmp"
	"slices"

	"github.com/charmbracelet/lipgloss"
	"github.com/junegunn/fzf/src/util"

	"github.com/bureau-foundation/taskboard/lib/schema"
)

// FilterModel narrows the task list client-side as the user types.
type FilterModel struct {
	// Input is the current query.
	Input string

	// Active is true while the filter has keyboard focus.
	Active bool

	slab *util.Slab
}

// FilterMatch is a task that passed the filter. TitlePositions holds
// the matched rune indices in the title, if the title matched.
type FilterMatch struct {
	Task           schema.Task
	Score          int
	TitlePositions []int
}

// Apply returns the matching tasks best first. Title matches outrank
// description matches of equal score; ties keep list order. An empty
// query matches everything in order.
func (filter *FilterModel) Apply(tasks []schema.Task) []FilterMatch {
	if filter.Input == "" {
		matches := make([]FilterMatch, len(tasks))
		for index, task := range tasks {
			matches[index] = FilterMatch{Task: task}
		}
		return matches
	}
	if filter.slab == nil {
		filter.slab = util.MakeSlab(100*1024, 2048)
	}

	pattern := []rune(filter.Input)
	var matches []FilterMatch
	for _, task := range tasks {
		title := fuzzyMatch(task.Title, pattern, filter.slab)
		description := fuzzyMatch(task.Description, pattern, filter.slab)
		if title.Score == 0 && description.Score == 0 {
			continue
		}
		match := FilterMatch{Task: task, Score: description.Score}
		if title.Score > 0 && title.Score >= description.Score {
			match.Score = title.Score + 1
			match.TitlePositions = title.Positions
		}
		matches = append(matches, match)
	}
	slices.SortStableFunc(matches, func(a, b FilterMatch) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return matches
}

// HandleRune appends a typed character.
func (filter *FilterModel) HandleRune(character rune) {
	filter.Input += string(character)
}

// HandleBackspace removes the last character. Returns true if the
// input changed.
func (filter *FilterModel) HandleBackspace() bool {
	if filter.Input == "" {
		return false
	}
	runes := []rune(filter.Input)
	filter.Input = string(runes[:len(runes)-1])
	return true
}

// Clear resets the query and releases focus.
func (filter *FilterModel) Clear() {
	filter.Input = ""
	filter.Active = false
}

// View renders the filter bar, or "" when there is nothing to show.
func (filter *FilterModel) View(theme Theme, width int) string {
	if !filter.Active && filter.Input == "" {
		return ""
	}
	if filter.Active {
		cursor := lipgloss.NewStyle().
			Foreground(theme.HeaderForeground).
			Bold(true).
			Render("▎")
		return lipgloss.NewStyle().Foreground(theme.NormalText).Width(width).
			Render(" / " + filter.Input + cursor)
	}
	return lipgloss.NewStyle().Foreground(theme.FaintText).Width(width).
		Render(" filter: " + filter.Input)
}
