// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/taskboard/cmd/taskboard/cli"
	"github.com/bureau-foundation/taskboard/lib/schema"
	"github.com/bureau-foundation/taskboard/lib/taskclient"
)

type taskOutputParams struct {
	connectionParams
	cli.JSONOutput
}

// withSession connects, checks for a saved session, and runs fn with
// a signal-aware context.
func (e *environment) withSession(params connectionParams, fn func(context.Context, *taskclient.Client) error) error {
	client, _, err := e.connect(params)
	if err != nil {
		return err
	}
	if _, err := requireSession(client); err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()
	return fn(ctx, client)
}

type listParams struct {
	taskOutputParams
	Skip  int `flag:"skip" desc:"number of tasks to skip"`
	Limit int `flag:"limit,n" desc:"maximum number of tasks (server default 100, max 1000)"`
}

func listCommand(env *environment) *cli.Command {
	var params listParams
	return &cli.Command{
		Name:    "list",
		Summary: "List your tasks, newest first",
		Usage:   "taskboard list [flags]",
		Examples: []cli.Example{
			{Description: "The ten most recent tasks", Command: "taskboard list --limit 10"},
			{Description: "Open tasks as JSON", Command: "taskboard list --json | jq '.[] | select(.completed | not)'"},
		},
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("list", &params) },
		Run: func(args []string) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			if params.Skip < 0 || params.Limit < 0 {
				return cli.Validation("--skip and --limit must not be negative")
			}
			return env.withSession(params.connectionParams, func(ctx context.Context, client *taskclient.Client) error {
				list, err := client.ListTasks(ctx, taskclient.ListOptions{Skip: params.Skip, Limit: params.Limit})
				if err != nil {
					return apiFailure("list tasks", err)
				}
				if done, err := params.EmitJSON(env.stdout, list); done {
					return err
				}
				if len(list) == 0 {
					fmt.Fprintln(env.stdout, "No tasks.")
					return nil
				}
				return writeTaskTable(env.stdout, list)
			})
		},
	}
}

func writeTaskTable(w io.Writer, list []schema.Task) error {
	writer := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(writer, "ID\tDONE\tTITLE\tCREATED")
	for _, task := range list {
		fmt.Fprintf(writer, "%s\t%s\t%s\t%s\n",
			task.ID, checkbox(task.Completed), task.Title, task.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	return writer.Flush()
}

func checkbox(completed bool) string {
	if completed {
		return "[x]"
	}
	return "[ ]"
}

type addParams struct {
	taskOutputParams
	Description string `flag:"description,d" desc:"task description"`
}

func addCommand(env *environment) *cli.Command {
	var params addParams
	return &cli.Command{
		Name:    "add",
		Summary: "Create a task",
		Usage:   "taskboard add <title...> [flags]",
		Examples: []cli.Example{
			{Command: `taskboard add Buy milk -d "two litres"`},
		},
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("add", &params) },
		Run: func(args []string) error {
			request, err := schema.NewTask{
				Title:       strings.Join(args, " "),
				Description: params.Description,
			}.Normalize()
			if err != nil {
				return cli.Validation("%v", err)
			}
			return env.withSession(params.connectionParams, func(ctx context.Context, client *taskclient.Client) error {
				task, err := client.CreateTask(ctx, request)
				if err != nil {
					return apiFailure("create task", err)
				}
				if done, err := params.EmitJSON(env.stdout, task); done {
					return err
				}
				fmt.Fprintf(env.stdout, "Created task %s: %s\n", task.ID, task.Title)
				return nil
			})
		},
	}
}

func showCommand(env *environment) *cli.Command {
	var params taskOutputParams
	return &cli.Command{
		Name:    "show",
		Summary: "Show one task",
		Usage:   "taskboard show <id> [flags]",
		Flags:   func() *pflag.FlagSet { return cli.FlagsFromParams("show", &params) },
		Run: func(args []string) error {
			id, err := singleID(args)
			if err != nil {
				return err
			}
			return env.withSession(params.connectionParams, func(ctx context.Context, client *taskclient.Client) error {
				task, err := client.GetTask(ctx, id)
				if err != nil {
					return apiFailure("show task", err)
				}
				if done, err := params.EmitJSON(env.stdout, task); done {
					return err
				}
				return writeTaskDetail(env.stdout, task)
			})
		},
	}
}

func writeTaskDetail(w io.Writer, task schema.Task) error {
	writer := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(writer, "ID:\t%s\n", task.ID)
	fmt.Fprintf(writer, "Title:\t%s\n", task.Title)
	fmt.Fprintf(writer, "Done:\t%s\n", checkbox(task.Completed))
	if task.Description != "" {
		fmt.Fprintf(writer, "Description:\t%s\n", task.Description)
	}
	fmt.Fprintf(writer, "Created:\t%s\n", task.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(writer, "Updated:\t%s\n", task.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
	return writer.Flush()
}

type editParams struct {
	taskOutputParams
	Title       string `flag:"title,t" desc:"new title"`
	Description string `flag:"description,d" desc:"new description (empty clears it)"`
	Completed   string `flag:"completed" desc:"true or false"`
}

func editCommand(env *environment) *cli.Command {
	var params editParams
	var flagSet *pflag.FlagSet
	return &cli.Command{
		Name:    "edit",
		Summary: "Change a task's title, description, or state",
		Description: `Change the fields given as flags and leave the rest as they are.
At least one of --title, --description, or --completed is required.`,
		Usage: "taskboard edit <id> [flags]",
		Examples: []cli.Example{
			{Command: `taskboard edit 0193a7c2-... --title "Buy oat milk"`},
			{Description: "Reopen a task", Command: "taskboard edit 0193a7c2-... --completed=false"},
		},
		Flags: func() *pflag.FlagSet {
			flagSet = cli.FlagsFromParams("edit", &params)
			return flagSet
		},
		Run: func(args []string) error {
			id, err := singleID(args)
			if err != nil {
				return err
			}

			var patch schema.TaskPatch
			if flagSet.Changed("title") {
				patch.Title = &params.Title
			}
			if flagSet.Changed("description") {
				patch.Description = &params.Description
			}
			if flagSet.Changed("completed") {
				completed, err := strconv.ParseBool(params.Completed)
				if err != nil {
					return cli.Validation("--completed must be true or false, got %q", params.Completed)
				}
				patch.Completed = &completed
			}
			if patch.Empty() {
				return cli.Validation("nothing to change: pass --title, --description, or --completed")
			}
			if patch, err = patch.Normalize(); err != nil {
				return cli.Validation("%v", err)
			}

			return env.withSession(params.connectionParams, func(ctx context.Context, client *taskclient.Client) error {
				task, err := client.UpdateTask(ctx, id, patch)
				if err != nil {
					return apiFailure("update task", err)
				}
				if done, err := params.EmitJSON(env.stdout, task); done {
					return err
				}
				fmt.Fprintf(env.stdout, "Updated task %s: %s\n", task.ID, task.Title)
				return nil
			})
		},
	}
}

func toggleCommand(env *environment) *cli.Command {
	var params taskOutputParams
	return &cli.Command{
		Name:    "toggle",
		Summary: "Flip a task between done and open",
		Usage:   "taskboard toggle <id> [flags]",
		Flags:   func() *pflag.FlagSet { return cli.FlagsFromParams("toggle", &params) },
		Run: func(args []string) error {
			id, err := singleID(args)
			if err != nil {
				return err
			}
			return env.withSession(params.connectionParams, func(ctx context.Context, client *taskclient.Client) error {
				task, err := client.ToggleTask(ctx, id)
				if err != nil {
					return apiFailure("toggle task", err)
				}
				if done, err := params.EmitJSON(env.stdout, task); done {
					return err
				}
				state := "open"
				if task.Completed {
					state = "done"
				}
				fmt.Fprintf(env.stdout, "%s %s: %s\n", checkbox(task.Completed), task.Title, state)
				return nil
			})
		},
	}
}

func deleteCommand(env *environment) *cli.Command {
	var params taskOutputParams
	return &cli.Command{
		Name:    "delete",
		Summary: "Delete a task",
		Usage:   "taskboard delete <id> [flags]",
		Flags:   func() *pflag.FlagSet { return cli.FlagsFromParams("delete", &params) },
		Run: func(args []string) error {
			id, err := singleID(args)
			if err != nil {
				return err
			}
			return env.withSession(params.connectionParams, func(ctx context.Context, client *taskclient.Client) error {
				task, err := client.DeleteTask(ctx, id)
				if err != nil {
					return apiFailure("delete task", err)
				}
				if done, err := params.EmitJSON(env.stdout, task); done {
					return err
				}
				fmt.Fprintf(env.stdout, "Deleted task %s: %s\n", task.ID, task.Title)
				return nil
			})
		},
	}
}

func singleID(args []string) (string, error) {
	switch len(args) {
	case 0:
		return "", cli.Validation("task id is required")
	case 1:
		return args[0], nil
	default:
		return "", cli.Validation("unexpected argument: %s", args[1])
	}
}
