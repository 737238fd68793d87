// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package taskui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bureau-foundation/taskboard/lib/clientstate"
	"github.com/bureau-foundation/taskboard/lib/schema"
)

// Store is the part of *clientstate.Store the view drives.
type Store interface {
	Snapshot() clientstate.State
	Busy(id string) bool
	Load(ctx context.Context) error
	AddTask(ctx context.Context, request schema.NewTask) (schema.Task, error)
	UpdateTask(ctx context.Context, id string, patch schema.TaskPatch) (schema.Task, error)
	ToggleTask(ctx context.Context, id string) (schema.Task, error)
	DeleteTask(ctx context.Context, id string) (schema.Task, error)
}

// FocusRegion identifies where keystrokes go.
type FocusRegion int

const (
	// FocusList means navigation and action keys apply to the list.
	FocusList FocusRegion = iota
	// FocusFilter means keystrokes edit the filter query.
	FocusFilter
	// FocusInput means keystrokes edit a task title (add or edit).
	FocusInput
	// FocusConfirmDelete waits for y to confirm deleting confirmID.
	FocusConfirmDelete
)

// chromeHeight is the number of non-list lines: header, separator,
// footer.
const chromeHeight = 3

// loadedMsg reports the end of a Store.Load.
type loadedMsg struct {
	err error
}

// mutationResultMsg reports the end of an add, edit, toggle or delete.
// selectID, when set, moves the cursor to that task.
type mutationResultMsg struct {
	err      error
	selectID string
}

// Model is the top-level bubbletea model.
type Model struct {
	store Store
	ctx   context.Context
	theme Theme
	keys  KeyMap

	width  int
	height int
	ready  bool

	state   clientstate.State
	matches []FilterMatch
	filter  FilterModel

	cursor       int
	scrollOffset int
	selectedID   string

	focus     FocusRegion
	input     textinput.Model
	editID    string // empty while adding
	confirmID string

	// notice is a local message (a busy task, an empty title) shown
	// when the store has no error of its own.
	notice string
}

// NewModel returns a model over store. ctx bounds every request the
// view issues.
func NewModel(ctx context.Context, store Store) Model {
	input := textinput.New()
	input.CharLimit = schema.MaxTitleLength
	input.Prompt = " title: "

	model := Model{
		store: store,
		ctx:   ctx,
		theme: DefaultTheme,
		keys:  DefaultKeyMap,
		input: input,
	}
	model.refresh()
	return model
}

// Init starts the initial load.
func (model Model) Init() tea.Cmd {
	return model.load()
}

func (model Model) load() tea.Cmd {
	store, ctx := model.store, model.ctx
	return func() tea.Msg {
		return loadedMsg{err: store.Load(ctx)}
	}
}

// mutate runs call off the UI goroutine.
func (model Model) mutate(call func(ctx context.Context, store Store) (string, error)) tea.Cmd {
	store, ctx := model.store, model.ctx
	return func() tea.Msg {
		selectID, err := call(ctx, store)
		return mutationResultMsg{err: err, selectID: selectID}
	}
}

func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.WindowSizeMsg:
		model.width = message.Width
		model.height = message.Height
		model.ready = true
		model.input.Width = max(message.Width-len(model.input.Prompt)-2, 10)
		model.ensureCursorVisible()
		return model, nil

	case loadedMsg:
		model.notice = ""
		model.refresh()
		return model, nil

	case mutationResultMsg:
		model.notice = ""
		if errors.Is(message.err, clientstate.ErrBusy) {
			model.notice = "Task is busy, try again"
		}
		if message.selectID != "" {
			model.selectedID = message.selectID
		}
		model.refresh()
		return model, nil

	case tea.KeyMsg:
		switch model.focus {
		case FocusFilter:
			return model.handleFilterKeys(message)
		case FocusInput:
			return model.handleInputKeys(message)
		case FocusConfirmDelete:
			return model.handleConfirmKeys(message)
		default:
			return model.handleListKeys(message)
		}
	}

	if model.focus == FocusInput {
		var command tea.Cmd
		model.input, command = model.input.Update(message)
		return model, command
	}
	return model, nil
}

func (model Model) handleListKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, model.keys.Quit):
		return model, tea.Quit

	case key.Matches(message, model.keys.Up):
		model.moveCursor(-1)
	case key.Matches(message, model.keys.Down):
		model.moveCursor(1)
	case key.Matches(message, model.keys.PageUp):
		model.moveCursor(-model.visibleHeight())
	case key.Matches(message, model.keys.PageDown):
		model.moveCursor(model.visibleHeight())
	case key.Matches(message, model.keys.Home):
		model.moveCursor(-len(model.matches))
	case key.Matches(message, model.keys.End):
		model.moveCursor(len(model.matches))

	case key.Matches(message, model.keys.FilterActivate):
		model.filter.Active = true
		model.focus = FocusFilter
	case key.Matches(message, model.keys.FilterClear):
		if model.filter.Input != "" {
			model.filter.Clear()
			model.refresh()
		}

	case key.Matches(message, model.keys.Reload):
		return model, model.load()

	case key.Matches(message, model.keys.Add):
		if !model.state.LoggedIn {
			return model, nil
		}
		model.editID = ""
		model.input.Placeholder = "What needs doing?"
		model.input.SetValue("")
		model.focus = FocusInput
		return model, model.input.Focus()

	case key.Matches(message, model.keys.Edit):
		task, ok := model.selected()
		if !ok {
			return model, nil
		}
		model.editID = task.ID
		model.input.Placeholder = ""
		model.input.SetValue(task.Title)
		model.input.CursorEnd()
		model.focus = FocusInput
		return model, model.input.Focus()

	case key.Matches(message, model.keys.Toggle):
		task, ok := model.selected()
		if !ok {
			return model, nil
		}
		id := task.ID
		return model, model.mutate(func(ctx context.Context, store Store) (string, error) {
			_, err := store.ToggleTask(ctx, id)
			return "", err
		})

	case key.Matches(message, model.keys.Delete):
		task, ok := model.selected()
		if !ok {
			return model, nil
		}
		model.confirmID = task.ID
		model.focus = FocusConfirmDelete
	}
	return model, nil
}

func (model Model) handleFilterKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case message.Type == tea.KeyCtrlC:
		return model, tea.Quit

	case key.Matches(message, model.keys.FilterClear):
		// Esc with text clears it; Esc on an empty query leaves filter mode.
		if model.filter.Input != "" {
			model.filter.Input = ""
		} else {
			model.filter.Active = false
			model.focus = FocusList
		}
		model.refresh()

	case message.Type == tea.KeyEnter:
		model.filter.Active = false
		model.focus = FocusList

	case message.Type == tea.KeyBackspace:
		if model.filter.HandleBackspace() {
			model.applyFilter()
		}

	case message.Type == tea.KeyRunes || message.Type == tea.KeySpace:
		for _, character := range message.Runes {
			model.filter.HandleRune(character)
		}
		model.applyFilter()
	}
	return model, nil
}

func (model Model) handleInputKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch message.Type {
	case tea.KeyCtrlC:
		return model, tea.Quit

	case tea.KeyEsc:
		model.closeInput()
		return model, nil

	case tea.KeyEnter:
		title := strings.TrimSpace(model.input.Value())
		editID := model.editID
		model.closeInput()
		if title == "" {
			model.notice = "Title is required"
			return model, nil
		}
		if editID == "" {
			return model, model.mutate(func(ctx context.Context, store Store) (string, error) {
				task, err := store.AddTask(ctx, schema.NewTask{Title: title})
				return task.ID, err
			})
		}
		return model, model.mutate(func(ctx context.Context, store Store) (string, error) {
			_, err := store.UpdateTask(ctx, editID, schema.TaskPatch{Title: &title})
			return "", err
		})
	}

	var command tea.Cmd
	model.input, command = model.input.Update(message)
	return model, command
}

func (model Model) handleConfirmKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	id := model.confirmID
	model.confirmID = ""
	model.focus = FocusList
	if message.Type == tea.KeyCtrlC {
		return model, tea.Quit
	}
	if message.Type != tea.KeyRunes || string(message.Runes) != "y" {
		return model, nil
	}
	return model, model.mutate(func(ctx context.Context, store Store) (string, error) {
		_, err := store.DeleteTask(ctx, id)
		return "", err
	})
}

func (model *Model) closeInput() {
	model.input.Blur()
	model.input.SetValue("")
	model.editID = ""
	model.focus = FocusList
}

// refresh takes a new snapshot and re-applies the filter.
func (model *Model) refresh() {
	model.state = model.store.Snapshot()
	model.matches = model.filter.Apply(model.state.Tasks)
	model.restoreSelection()
}

// applyFilter re-filters and snaps to the best match.
func (model *Model) applyFilter() {
	model.matches = model.filter.Apply(model.state.Tasks)
	model.cursor = 0
	model.scrollOffset = 0
	model.selectedID = ""
	if len(model.matches) > 0 {
		model.selectedID = model.matches[0].Task.ID
	}
}

// restoreSelection keeps the cursor on the same task across refreshes,
// falling back to the nearest row when it is gone.
func (model *Model) restoreSelection() {
	for index, match := range model.matches {
		if match.Task.ID == model.selectedID {
			model.cursor = index
			model.ensureCursorVisible()
			return
		}
	}
	model.cursor = min(model.cursor, len(model.matches)-1)
	model.cursor = max(model.cursor, 0)
	model.selectedID = ""
	if len(model.matches) > 0 {
		model.selectedID = model.matches[model.cursor].Task.ID
	}
	model.ensureCursorVisible()
}

func (model *Model) moveCursor(delta int) {
	if len(model.matches) == 0 {
		return
	}
	model.cursor = max(0, min(model.cursor+delta, len(model.matches)-1))
	model.selectedID = model.matches[model.cursor].Task.ID
	model.ensureCursorVisible()
}

func (model Model) selected() (schema.Task, bool) {
	if model.cursor < 0 || model.cursor >= len(model.matches) {
		return schema.Task{}, false
	}
	return model.matches[model.cursor].Task, true
}

func (model Model) visibleHeight() int {
	height := model.height - chromeHeight
	if model.filter.View(model.theme, model.width) != "" {
		height--
	}
	return max(height, 1)
}

func (model *Model) ensureCursorVisible() {
	visible := model.visibleHeight()
	if model.cursor < model.scrollOffset {
		model.scrollOffset = model.cursor
	}
	if model.cursor >= model.scrollOffset+visible {
		model.scrollOffset = model.cursor - visible + 1
	}
	model.scrollOffset = max(0, min(model.scrollOffset, len(model.matches)-visible))
}

func (model Model) View() string {
	if !model.ready {
		return "Loading..."
	}

	sections := []string{model.renderHeader()}
	if filterView := model.filter.View(model.theme, model.width); filterView != "" {
		sections = append(sections, filterView)
	}
	sections = append(sections, model.renderList())
	sections = append(sections, lipgloss.NewStyle().
		Foreground(model.theme.BorderColor).
		Render(strings.Repeat("─", model.width)))
	sections = append(sections, model.renderFooter())
	return strings.Join(sections, "\n")
}

func (model Model) renderHeader() string {
	style := lipgloss.NewStyle().Foreground(model.theme.HeaderForeground).Bold(true)
	header := " taskboard"
	if model.state.User != nil {
		header += "  " + model.state.User.Email
	}
	done := 0
	for _, task := range model.state.Tasks {
		if task.Completed {
			done++
		}
	}
	counts := fmt.Sprintf("  %d tasks, %d done", len(model.state.Tasks), done)
	if model.filter.Input != "" {
		counts += fmt.Sprintf(", %d shown", len(model.matches))
	}
	result := style.Render(header) + lipgloss.NewStyle().Foreground(model.theme.FaintText).Render(counts)
	if model.state.Loading {
		result += lipgloss.NewStyle().Foreground(model.theme.Pending).Render("  loading…")
	}
	return result
}

func (model Model) renderList() string {
	visible := model.visibleHeight()
	lines := make([]string, 0, visible)

	switch {
	case !model.state.LoggedIn && !model.state.Loading:
		lines = append(lines, lipgloss.NewStyle().Foreground(model.theme.FaintText).
			Render(" Not logged in. Run taskboard login, then reopen this view."))
	case len(model.matches) == 0 && model.filter.Input != "":
		lines = append(lines, lipgloss.NewStyle().Foreground(model.theme.FaintText).
			Render(" No tasks match the filter."))
	case len(model.matches) == 0:
		lines = append(lines, lipgloss.NewStyle().Foreground(model.theme.FaintText).
			Render(" No tasks yet. Press a to add one."))
	default:
		renderer := NewListRenderer(model.theme, model.width)
		end := min(model.scrollOffset+visible, len(model.matches))
		for index := model.scrollOffset; index < end; index++ {
			match := model.matches[index]
			lines = append(lines, renderer.RenderRow(
				match.Task,
				index == model.cursor,
				model.store.Busy(match.Task.ID),
				match.TitlePositions,
			))
		}
	}

	for len(lines) < visible {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func (model Model) renderFooter() string {
	switch model.focus {
	case FocusInput:
		return model.input.View()
	case FocusConfirmDelete:
		title := ""
		for _, match := range model.matches {
			if match.Task.ID == model.confirmID {
				title = match.Task.Title
			}
		}
		return lipgloss.NewStyle().Foreground(model.theme.ErrorText).Bold(true).
			Render(fmt.Sprintf(" Delete %q? y to confirm, any other key to cancel", title))
	}

	focusIndicator := "LIST"
	if model.focus == FocusFilter {
		focusIndicator = "FILTER"
	}
	help := lipgloss.NewStyle().Foreground(model.theme.HelpText).Render(fmt.Sprintf(
		" [%s] q quit  ↑↓ navigate  space toggle  a add  e edit  d delete  r reload  / filter",
		focusIndicator))
	if len(model.matches) > 0 {
		help += lipgloss.NewStyle().Foreground(model.theme.HelpText).
			Render(fmt.Sprintf("  %d/%d", model.cursor+1, len(model.matches)))
	}

	message := model.state.Error
	if message == "" {
		message = model.notice
	}
	if message != "" {
		help += "  " + lipgloss.NewStyle().Foreground(model.theme.ErrorText).Bold(true).
			Render("Error: "+message)
	}
	return help
}

// Run drives the model full-screen until the user quits or ctx ends.
func Run(ctx context.Context, store Store) error {
	program := tea.NewProgram(NewModel(ctx, store), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
