// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package taskui

import (
	"slices"
	"strings"
	"sync"

	"github.com/junegunn/fzf/src/algo"
	"github.com/junegunn/fzf/src/util"
)

var initScoring sync.Once

// FuzzyResult is one fzf match. Score is zero when the pattern did not
// match. Positions are ascending rune indices into the matched text.
type FuzzyResult struct {
	Score     int
	Positions []int
}

// fuzzyMatch runs fzf's v2 algorithm case-insensitively. slab may be
// nil; passing one reuses scratch memory across calls.
func fuzzyMatch(text string, pattern []rune, slab *util.Slab) FuzzyResult {
	if len(pattern) == 0 {
		return FuzzyResult{}
	}
	initScoring.Do(func() { algo.Init("default") })

	lowered := make([]rune, len(pattern))
	for index, character := range pattern {
		lowered[index] = []rune(strings.ToLower(string(character)))[0]
	}

	chars := util.ToChars([]byte(text))
	result, positions := algo.FuzzyMatchV2(false, false, true, &chars, lowered, true, slab)
	if result.Score <= 0 || positions == nil {
		return FuzzyResult{}
	}
	sorted := slices.Clone(*positions)
	slices.Sort(sorted)
	return FuzzyResult{Score: result.Score, Positions: sorted}
}
