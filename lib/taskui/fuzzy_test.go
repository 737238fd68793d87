// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package taskui

import (
	"slices"
	"testing"

	"github.com/bureau-foundation/taskboard/lib/schema"
)

func TestFuzzyMatch(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		pattern string
		match   bool
	}{
		{"substring", "Call the plumber", "plumb", true},
		{"non-contiguous", "Renew passport", "rnwp", true},
		{"case-insensitive", "BUY MILK", "milk", true},
		{"uppercase pattern", "buy milk", "MILK", true},
		{"no match", "Buy milk", "xyz", false},
		{"empty pattern", "anything", "", false},
		{"empty text", "", "a", false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := fuzzyMatch(test.text, []rune(test.pattern), nil)
			if got := result.Score > 0; got != test.match {
				t.Fatalf("fuzzyMatch(%q, %q) score = %d, want match=%v", test.text, test.pattern, result.Score, test.match)
			}
			if test.match && len(result.Positions) != len([]rune(test.pattern)) {
				t.Errorf("positions = %v, want one per pattern rune", result.Positions)
			}
			if !slices.IsSorted(result.Positions) {
				t.Errorf("positions %v are not ascending", result.Positions)
			}
		})
	}
}

func TestFuzzyMatchPositions(t *testing.T) {
	result := fuzzyMatch("Buy milk", []rune("milk"), nil)
	if want := []int{4, 5, 6, 7}; !slices.Equal(result.Positions, want) {
		t.Errorf("positions = %v, want %v", result.Positions, want)
	}
}

func TestFilterApply(t *testing.T) {
	tasks := []schema.Task{
		{ID: "1", Title: "Water the plants"},
		{ID: "2", Title: "Pay rent", Description: "before the plumber arrives"},
		{ID: "3", Title: "Call the plumber"},
	}

	var filter FilterModel
	all := filter.Apply(tasks)
	if len(all) != 3 || all[0].Task.ID != "1" || all[2].Task.ID != "3" {
		t.Fatalf("empty filter = %+v, want every task in order", all)
	}

	filter.Input = "plumber"
	matches := filter.Apply(tasks)
	if len(matches) != 2 {
		t.Fatalf("filter %q matched %d tasks, want 2", filter.Input, len(matches))
	}
	if matches[0].Task.ID != "3" {
		t.Errorf("best match = %s, want the title match 3", matches[0].Task.ID)
	}
	if len(matches[0].TitlePositions) == 0 {
		t.Error("title match has no highlight positions")
	}
	if matches[1].Task.ID != "2" || len(matches[1].TitlePositions) != 0 {
		t.Errorf("second match = %+v, want description-only match 2", matches[1])
	}

	filter.Input = "zzz"
	if got := filter.Apply(tasks); len(got) != 0 {
		t.Errorf("filter %q matched %+v", filter.Input, got)
	}
}

func TestFilterEditing(t *testing.T) {
	var filter FilterModel
	if filter.HandleBackspace() {
		t.Error("backspace on empty input reported a change")
	}
	for _, character := range "mïlk" {
		filter.HandleRune(character)
	}
	if !filter.HandleBackspace() || filter.Input != "mïl" {
		t.Errorf("after backspace input = %q, want %q", filter.Input, "mïl")
	}
	filter.Active = true
	filter.Clear()
	if filter.Input != "" || filter.Active {
		t.Errorf("Clear left %+v", filter)
	}
}
