// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		want      string
		wantError bool
	}{
		{name: "simple", input: "Buy milk", want: "Buy milk"},
		{name: "trimmed", input: "  Buy milk \t", want: "Buy milk"},
		{name: "exactly_200", input: strings.Repeat("a", 200), want: strings.Repeat("a", 200)},
		{name: "201", input: strings.Repeat("a", 201), wantError: true},
		{name: "200_after_trim", input: "  " + strings.Repeat("a", 200) + "  ", want: strings.Repeat("a", 200)},
		{name: "multibyte_200", input: strings.Repeat("é", 200), want: strings.Repeat("é", 200)},
		{name: "multibyte_201", input: strings.Repeat("é", 201), wantError: true},
		{name: "empty", input: "", wantError: true},
		{name: "whitespace_only", input: "   \n", wantError: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := NormalizeTitle(test.input)
			if test.wantError {
				var validation *ValidationError
				if !errors.As(err, &validation) {
					t.Fatalf("NormalizeTitle error = %v, want *ValidationError", err)
				}
				if validation.Field != "title" {
					t.Errorf("Field = %q, want title", validation.Field)
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizeTitle: %v", err)
			}
			if got != test.want {
				t.Errorf("NormalizeTitle = %q, want %q", got, test.want)
			}
		})
	}
}

func TestNormalizeDescription(t *testing.T) {
	if got, err := NormalizeDescription(""); err != nil || got != "" {
		t.Errorf("NormalizeDescription(\"\") = %q, %v; want empty, nil", got, err)
	}
	if _, err := NormalizeDescription(strings.Repeat("d", 1000)); err != nil {
		t.Errorf("1000 characters: %v", err)
	}

	_, err := NormalizeDescription(strings.Repeat("d", 1001))
	var validation *ValidationError
	if !errors.As(err, &validation) || validation.Field != "description" {
		t.Fatalf("1001 characters error = %v, want description ValidationError", err)
	}
}

func TestTaskPatchNormalize(t *testing.T) {
	title := "  new title "
	done := true
	patch, err := TaskPatch{Title: &title, Completed: &done}.Normalize()
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if patch.Title == nil || *patch.Title != "new title" {
		t.Errorf("Title = %v, want trimmed", patch.Title)
	}
	if patch.Description != nil {
		t.Errorf("Description = %v, want nil (not supplied)", patch.Description)
	}
	if patch.Completed == nil || !*patch.Completed {
		t.Errorf("Completed = %v, want true", patch.Completed)
	}

	blank := " "
	if _, err := (TaskPatch{Title: &blank}).Normalize(); err == nil {
		t.Error("blank title accepted in patch")
	}
}

func TestTaskPatchApply(t *testing.T) {
	task := Task{Title: "old", Description: "keep", Completed: false}
	title := "new"
	done := true
	TaskPatch{Title: &title, Completed: &done}.Apply(&task)

	if task.Title != "new" || task.Description != "keep" || !task.Completed {
		t.Errorf("Apply result = %+v", task)
	}
}

func TestTaskPatchDecodesExplicitFalse(t *testing.T) {
	var patch TaskPatch
	if err := json.Unmarshal([]byte(`{"completed":false}`), &patch); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if patch.Completed == nil || *patch.Completed {
		t.Fatalf("Completed = %v, want pointer to false", patch.Completed)
	}
	if patch.Empty() {
		t.Error("patch with completed=false reported Empty")
	}
}

func TestTaskJSONShape(t *testing.T) {
	data, err := json.Marshal(Task{ID: "t1", Title: "x", OwnerID: "u1"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	for _, key := range []string{"id", "title", "completed", "userId", "createdAt", "updatedAt"} {
		if _, ok := fields[key]; !ok {
			t.Errorf("task JSON missing %q: %s", key, data)
		}
	}
	if _, ok := fields["description"]; ok {
		t.Errorf("empty description serialized: %s", data)
	}
}
