// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func TestCommand_Execute_DispatchesToSubcommand(t *testing.T) {
	var called string
	var receivedArgs []string

	root := &Command{
		Name: "taskboard",
		Subcommands: []*Command{
			{Name: "list", Run: func(args []string) error { called = "list"; return nil }},
			{Name: "show", Run: func(args []string) error {
				called = "show"
				receivedArgs = args
				return nil
			}},
		},
	}

	if err := root.Execute([]string{"show", "task-1"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if called != "show" {
		t.Errorf("dispatched to %q, want %q", called, "show")
	}
	if len(receivedArgs) != 1 || receivedArgs[0] != "task-1" {
		t.Errorf("args = %v, want [task-1]", receivedArgs)
	}
}

func TestCommand_Execute_FlagParsing(t *testing.T) {
	var limit int
	var asJSON bool
	var remaining []string

	command := &Command{
		Name: "list",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("list", pflag.ContinueOnError)
			flagSet.IntVarP(&limit, "limit", "n", 100, "page size")
			flagSet.BoolVar(&asJSON, "json", false, "json output")
			return flagSet
		},
		Run: func(args []string) error {
			remaining = args
			return nil
		},
	}

	if err := command.Execute([]string{"-n", "5", "extra", "--json"}); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if limit != 5 || !asJSON {
		t.Errorf("limit = %d, json = %v; want 5, true", limit, asJSON)
	}
	if len(remaining) != 1 || remaining[0] != "extra" {
		t.Errorf("remaining args = %v, want [extra]", remaining)
	}
}

func TestCommand_Execute_UnknownCommandSuggests(t *testing.T) {
	root := &Command{
		Name: "taskboard",
		Subcommands: []*Command{
			{Name: "list", Run: func([]string) error { return nil }},
			{Name: "login", Run: func([]string) error { return nil }},
		},
	}

	err := root.Execute([]string{"lsit"})
	if err == nil {
		t.Fatal("expected error for unknown command")
	}
	if !strings.Contains(err.Error(), `did you mean "list"?`) {
		t.Errorf("error = %q, want a suggestion of list", err)
	}
	if ExitCode(err) != 2 {
		t.Errorf("exit code = %d, want 2", ExitCode(err))
	}

	err = root.Execute([]string{"frobnicate"})
	if err == nil || strings.Contains(err.Error(), "did you mean") {
		t.Errorf("distant command got a suggestion: %v", err)
	}
}

func TestCommand_Execute_UnknownFlagSuggests(t *testing.T) {
	command := &Command{
		Name: "list",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("list", pflag.ContinueOnError)
			flagSet.Int("limit", 0, "page size")
			return flagSet
		},
		Run: func([]string) error { return nil },
	}

	err := command.Execute([]string{"--limt", "3"})
	if err == nil {
		t.Fatal("expected error for unknown flag")
	}
	if !strings.Contains(err.Error(), "did you mean --limit?") {
		t.Errorf("error = %q, want a suggestion of --limit", err)
	}
}

func TestCommand_Execute_Help(t *testing.T) {
	var output bytes.Buffer
	ran := false
	root := &Command{
		Name:       "taskboard",
		HelpOutput: &output,
		Subcommands: []*Command{
			{
				Name:    "add",
				Summary: "Create a task",
				Usage:   "taskboard add <title...> [flags]",
				Examples: []Example{
					{Description: "Add with a description", Command: "taskboard add Buy milk -d two"},
				},
				Flags: func() *pflag.FlagSet {
					flagSet := pflag.NewFlagSet("add", pflag.ContinueOnError)
					flagSet.StringP("description", "d", "", "task description")
					return flagSet
				},
				Run: func([]string) error { ran = true; return nil },
			},
		},
	}

	for _, args := range [][]string{{"--help"}, {"add", "-h"}, {"add", "--help"}} {
		output.Reset()
		if err := root.Execute(args); err != nil {
			t.Fatalf("Execute(%v) error: %v", args, err)
		}
		if output.Len() == 0 {
			t.Errorf("Execute(%v) printed no help", args)
		}
	}
	if ran {
		t.Error("help flag ran the command")
	}

	help := output.String()
	for _, want := range []string{
		"Usage:\n  taskboard add <title...> [flags]",
		"--description",
		"# Add with a description",
	} {
		if !strings.Contains(help, want) {
			t.Errorf("help missing %q:\n%s", want, help)
		}
	}
}

func TestCommand_Execute_GroupRequiresSubcommand(t *testing.T) {
	var output bytes.Buffer
	root := &Command{
		Name:       "taskboard",
		HelpOutput: &output,
		Subcommands: []*Command{
			{Name: "list", Summary: "List your tasks", Run: func([]string) error { return nil }},
		},
	}

	err := root.Execute(nil)
	var toolError *ToolError
	if !errors.As(err, &toolError) || toolError.Category != CategoryValidation {
		t.Fatalf("Execute(nil) = %v, want a validation error", err)
	}
	if !strings.Contains(output.String(), "list") || !strings.Contains(output.String(), "List your tasks") {
		t.Errorf("help output does not list subcommands:\n%s", output.String())
	}
}

func TestFullName(t *testing.T) {
	root := &Command{Name: "taskboard"}
	child := &Command{Name: "list", parent: root}
	if got := child.fullName(); got != "taskboard list" {
		t.Errorf("fullName() = %q", got)
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"list", "", 4},
		{"list", "list", 0},
		{"lsit", "list", 2},
		{"lgout", "logout", 1},
		{"kitten", "sitting", 3},
	}
	for _, test := range tests {
		if got := levenshtein(test.a, test.b); got != test.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", test.a, test.b, got, test.want)
		}
	}
}
