// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package taskui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/cursor"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/bureau-foundation/taskboard/lib/clientstate"
	"github.com/bureau-foundation/taskboard/lib/schema"
)

func TestMain(m *testing.M) {
	// Plain text output so views can be compared with strings.Contains.
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}

// fakeStore is an in-memory Store. busy marks ids whose mutations
// fail with ErrBusy.
type fakeStore struct {
	state  clientstate.State
	busy   map[string]bool
	nextID int
	loads  int
}

func newFakeStore(titles ...string) *fakeStore {
	store := &fakeStore{
		state: clientstate.State{
			LoggedIn: true,
			User:     &clientstate.User{ID: "u-1", Email: "ada@example.com"},
			Tasks:    []schema.Task{},
		},
		busy: map[string]bool{},
	}
	for _, title := range titles {
		store.nextID++
		store.state.Tasks = append(store.state.Tasks, schema.Task{ID: fmt.Sprintf("t-%d", store.nextID), Title: title})
	}
	return store
}

func (f *fakeStore) Snapshot() clientstate.State {
	snapshot := f.state
	snapshot.Tasks = append([]schema.Task(nil), f.state.Tasks...)
	return snapshot
}

func (f *fakeStore) Busy(id string) bool { return f.busy[id] }

func (f *fakeStore) Load(ctx context.Context) error {
	f.loads++
	f.state.Loading = false
	return nil
}

func (f *fakeStore) AddTask(ctx context.Context, request schema.NewTask) (schema.Task, error) {
	f.nextID++
	task := schema.Task{ID: fmt.Sprintf("t-%d", f.nextID), Title: request.Title}
	f.state.Tasks = append([]schema.Task{task}, f.state.Tasks...)
	return task, nil
}

func (f *fakeStore) find(id string) (int, error) {
	if f.busy[id] {
		return 0, clientstate.ErrBusy
	}
	for index, task := range f.state.Tasks {
		if task.ID == id {
			return index, nil
		}
	}
	return 0, errors.New("not found")
}

func (f *fakeStore) UpdateTask(ctx context.Context, id string, patch schema.TaskPatch) (schema.Task, error) {
	index, err := f.find(id)
	if err != nil {
		return schema.Task{}, err
	}
	patch.Apply(&f.state.Tasks[index])
	return f.state.Tasks[index], nil
}

func (f *fakeStore) ToggleTask(ctx context.Context, id string) (schema.Task, error) {
	index, err := f.find(id)
	if err != nil {
		return schema.Task{}, err
	}
	f.state.Tasks[index].Completed = !f.state.Tasks[index].Completed
	return f.state.Tasks[index], nil
}

func (f *fakeStore) DeleteTask(ctx context.Context, id string) (schema.Task, error) {
	index, err := f.find(id)
	if err != nil {
		return schema.Task{}, err
	}
	task := f.state.Tasks[index]
	f.state.Tasks = append(f.state.Tasks[:index], f.state.Tasks[index+1:]...)
	return task, nil
}

func runeKey(characters string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(characters)}
}

// send applies message and runs any returned command synchronously,
// feeding its message back in, the way the bubbletea loop would.
func send(t *testing.T, model Model, message tea.Msg) Model {
	t.Helper()
	updated, command := model.Update(message)
	model = updated.(Model)
	if command == nil {
		return model
	}
	switch result := command().(type) {
	case loadedMsg, mutationResultMsg:
		updated, _ = model.Update(result)
		model = updated.(Model)
	}
	return model
}

// sized returns a model with a 100x12 terminal and a static cursor, so
// text input never schedules blink ticks.
func sized(t *testing.T, store *fakeStore) Model {
	t.Helper()
	model := NewModel(context.Background(), store)
	model.input.Cursor.SetMode(cursor.CursorStatic)
	return send(t, model, tea.WindowSizeMsg{Width: 100, Height: 12})
}

func TestModelView(t *testing.T) {
	store := newFakeStore("Buy milk", "Call the plumber")
	store.state.Tasks[1].Completed = true
	model := NewModel(context.Background(), store)

	if view := model.View(); view != "Loading..." {
		t.Errorf("view before WindowSizeMsg = %q", view)
	}
	model = send(t, model, tea.WindowSizeMsg{Width: 100, Height: 12})
	view := model.View()

	for _, want := range []string{"ada@example.com", "2 tasks, 1 done", "[ ] Buy milk", "[x] Call the plumber", "q quit", "1/2"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
	if lines := strings.Count(view, "\n") + 1; lines != 12 {
		t.Errorf("view has %d lines, want the full height 12", lines)
	}
}

func TestModelEmptyAndLoggedOut(t *testing.T) {
	empty := sized(t, newFakeStore())
	if view := empty.View(); !strings.Contains(view, "No tasks yet") {
		t.Errorf("empty view:\n%s", view)
	}

	store := newFakeStore()
	store.state = clientstate.State{Tasks: []schema.Task{}}
	loggedOut := sized(t, store)
	if view := loggedOut.View(); !strings.Contains(view, "Not logged in") {
		t.Errorf("logged-out view:\n%s", view)
	}
	loggedOut = send(t, loggedOut, runeKey("a"))
	if loggedOut.focus != FocusList {
		t.Error("add opened the input while logged out")
	}
}

func TestModelNavigation(t *testing.T) {
	model := sized(t, newFakeStore("one", "two", "three"))

	steps := []struct {
		message tea.Msg
		cursor  int
	}{
		{runeKey("j"), 1},
		{runeKey("j"), 2},
		{runeKey("j"), 2},
		{runeKey("k"), 1},
		{runeKey("g"), 0},
		{runeKey("G"), 2},
		{tea.KeyMsg{Type: tea.KeyUp}, 1},
	}
	for index, step := range steps {
		model = send(t, model, step.message)
		if model.cursor != step.cursor {
			t.Fatalf("step %d: cursor = %d, want %d", index, model.cursor, step.cursor)
		}
	}
	if model.selectedID != "t-2" {
		t.Errorf("selectedID = %q, want t-2", model.selectedID)
	}
}

func TestModelScrolling(t *testing.T) {
	var titles []string
	for index := range 30 {
		titles = append(titles, fmt.Sprintf("task %02d", index))
	}
	model := sized(t, newFakeStore(titles...))
	visible := model.visibleHeight()

	model = send(t, model, runeKey("G"))
	if model.scrollOffset != 30-visible {
		t.Errorf("scrollOffset at end = %d, want %d", model.scrollOffset, 30-visible)
	}
	if view := model.View(); !strings.Contains(view, "task 29") || strings.Contains(view, "task 00") {
		t.Errorf("view at end:\n%s", view)
	}
	model = send(t, model, tea.KeyMsg{Type: tea.KeyPgUp})
	if model.cursor != 29-visible {
		t.Errorf("cursor after page up = %d, want %d", model.cursor, 29-visible)
	}
}

func TestModelToggle(t *testing.T) {
	store := newFakeStore("Buy milk")
	model := sized(t, store)

	model = send(t, model, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	if !store.state.Tasks[0].Completed {
		t.Fatal("space did not toggle the task")
	}
	if view := model.View(); !strings.Contains(view, "[x] Buy milk") {
		t.Errorf("view after toggle:\n%s", view)
	}
}

func TestModelAddSelectsNewTask(t *testing.T) {
	store := newFakeStore("existing")
	model := sized(t, store)

	model = send(t, model, runeKey("a"))
	if model.focus != FocusInput {
		t.Fatalf("focus = %v, want FocusInput", model.focus)
	}
	model = send(t, model, runeKey("q"))
	if model.focus != FocusInput {
		t.Fatal("q quit the title input")
	}
	model = send(t, model, runeKey("uick note"))
	model = send(t, model, tea.KeyMsg{Type: tea.KeyEnter})

	if model.focus != FocusList {
		t.Errorf("focus after submit = %v", model.focus)
	}
	if len(store.state.Tasks) != 2 || store.state.Tasks[0].Title != "quick note" {
		t.Fatalf("tasks = %+v", store.state.Tasks)
	}
	if model.selectedID != store.state.Tasks[0].ID || model.cursor != 0 {
		t.Errorf("selection = %q at %d, want the new task at 0", model.selectedID, model.cursor)
	}
}

func TestModelAddRejectsBlankTitle(t *testing.T) {
	store := newFakeStore()
	model := sized(t, store)
	model = send(t, model, runeKey("a"))
	model = send(t, model, runeKey("   "))
	model = send(t, model, tea.KeyMsg{Type: tea.KeyEnter})
	if len(store.state.Tasks) != 0 {
		t.Errorf("blank title created %+v", store.state.Tasks)
	}
	if view := model.View(); !strings.Contains(view, "Title is required") {
		t.Errorf("view:\n%s", view)
	}
}

func TestModelEdit(t *testing.T) {
	store := newFakeStore("Buy milk")
	model := sized(t, store)

	model = send(t, model, runeKey("e"))
	if got := model.input.Value(); got != "Buy milk" {
		t.Fatalf("edit input = %q, want the current title", got)
	}
	model = send(t, model, runeKey(" and eggs"))
	model = send(t, model, tea.KeyMsg{Type: tea.KeyEnter})
	if got := store.state.Tasks[0].Title; got != "Buy milk and eggs" {
		t.Errorf("title = %q", got)
	}

	model = send(t, model, runeKey("e"))
	model = send(t, model, tea.KeyMsg{Type: tea.KeyEsc})
	if model.focus != FocusList || store.state.Tasks[0].Title != "Buy milk and eggs" {
		t.Errorf("escape did not cancel the edit: focus=%v title=%q", model.focus, store.state.Tasks[0].Title)
	}
}

func TestModelDeleteConfirmation(t *testing.T) {
	store := newFakeStore("keep", "drop")
	model := sized(t, store)
	model = send(t, model, runeKey("j"))

	model = send(t, model, runeKey("d"))
	if view := model.View(); !strings.Contains(view, `Delete "drop"?`) {
		t.Errorf("confirmation prompt missing:\n%s", view)
	}
	model = send(t, model, runeKey("n"))
	if len(store.state.Tasks) != 2 {
		t.Fatal("n confirmed the delete")
	}

	model = send(t, model, runeKey("d"))
	model = send(t, model, runeKey("y"))
	if len(store.state.Tasks) != 1 || store.state.Tasks[0].Title != "keep" {
		t.Fatalf("tasks after delete = %+v", store.state.Tasks)
	}
	if model.cursor != 0 || model.selectedID != "t-1" {
		t.Errorf("selection after delete = %q at %d", model.selectedID, model.cursor)
	}
}

func TestModelBusyNotice(t *testing.T) {
	store := newFakeStore("slow")
	store.busy["t-1"] = true
	model := sized(t, store)

	if view := model.View(); !strings.Contains(view, "slow …") {
		t.Errorf("busy marker missing:\n%s", view)
	}
	model = send(t, model, runeKey("x"))
	if view := model.View(); !strings.Contains(view, "Task is busy") {
		t.Errorf("busy notice missing:\n%s", view)
	}
}

func TestModelStoreErrorShown(t *testing.T) {
	store := newFakeStore("a")
	store.state.Error = "Task not found or access denied"
	model := sized(t, store)
	if view := model.View(); !strings.Contains(view, "Error: Task not found or access denied") {
		t.Errorf("store error missing:\n%s", view)
	}
}

func TestModelFilter(t *testing.T) {
	model := sized(t, newFakeStore("Water the plants", "Call the plumber", "Pay rent"))

	model = send(t, model, runeKey("/"))
	if model.focus != FocusFilter {
		t.Fatalf("focus = %v, want FocusFilter", model.focus)
	}
	for _, character := range "plmb" {
		model = send(t, model, runeKey(string(character)))
	}
	if len(model.matches) != 1 || model.matches[0].Task.Title != "Call the plumber" {
		t.Fatalf("matches = %+v", model.matches)
	}
	if view := model.View(); !strings.Contains(view, "1 shown") {
		t.Errorf("view:\n%s", view)
	}

	model = send(t, model, tea.KeyMsg{Type: tea.KeyBackspace})
	if model.filter.Input != "plm" {
		t.Errorf("input after backspace = %q", model.filter.Input)
	}

	model = send(t, model, tea.KeyMsg{Type: tea.KeyEnter})
	if model.focus != FocusList || model.filter.Input != "plm" {
		t.Errorf("enter: focus=%v input=%q", model.focus, model.filter.Input)
	}

	model = send(t, model, tea.KeyMsg{Type: tea.KeyEsc})
	if model.filter.Input != "" || len(model.matches) != 3 {
		t.Errorf("esc did not clear the filter: %q, %d matches", model.filter.Input, len(model.matches))
	}
}

func TestModelReloadAndQuit(t *testing.T) {
	store := newFakeStore("a")
	model := sized(t, store)
	model = send(t, model, runeKey("r"))
	if store.loads != 1 {
		t.Errorf("loads = %d, want 1", store.loads)
	}

	_, command := model.Update(runeKey("q"))
	if command == nil {
		t.Fatal("q returned no command")
	}
	if _, isQuit := command().(tea.QuitMsg); !isQuit {
		t.Error("q did not quit")
	}
}

func TestInitLoads(t *testing.T) {
	store := newFakeStore()
	command := NewModel(context.Background(), store).Init()
	if _, ok := command().(loadedMsg); !ok || store.loads != 1 {
		t.Errorf("Init did not load (loads=%d)", store.loads)
	}
}
