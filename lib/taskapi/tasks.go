// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package taskapi

import (
	"net/http"
	"strconv"

	"github.com/bureau-foundation/taskboard/lib/netutil"
	"github.com/bureau-foundation/taskboard/lib/schema"
	"github.com/bureau-foundation/taskboard/lib/tasks"
)

// parsePage reads the optional skip and limit query parameters.
func parsePage(request *http.Request) (tasks.Page, error) {
	var page tasks.Page
	query := request.URL.Query()
	for _, field := range []struct {
		name   string
		target *int
	}{
		{"skip", &page.Skip},
		{"limit", &page.Limit},
	} {
		raw := query.Get(field.name)
		if raw == "" {
			continue
		}
		value, err := strconv.Atoi(raw)
		if err != nil {
			return tasks.Page{}, &schema.ValidationError{Field: field.name, Message: field.name + " must be an integer"}
		}
		*field.target = value
	}
	if raw := query.Get("limit"); raw != "" && page.Limit == 0 {
		return tasks.Page{}, &schema.ValidationError{Field: "limit", Message: "limit must be at least 1"}
	}
	return page, page.Validate()
}

func (a *API) handleListTasks(writer http.ResponseWriter, request *http.Request) {
	page, err := parsePage(request)
	if err != nil {
		a.fail(writer, request, err, messageTaskNotFound)
		return
	}
	list, err := a.tasks.List(request.Context(), currentUser(request).ID, page)
	if err != nil {
		a.fail(writer, request, err, messageTaskNotFound)
		return
	}
	writeJSON(writer, http.StatusOK, list)
}

func (a *API) handleCreateTask(writer http.ResponseWriter, request *http.Request) {
	var body schema.NewTask
	if err := netutil.DecodeRequest(writer, request, MaxRequestBody, &body); err != nil {
		writeDecodeError(writer, err)
		return
	}
	task, err := a.tasks.Create(request.Context(), currentUser(request).ID, body)
	if err != nil {
		a.fail(writer, request, err, messageTaskNotFound)
		return
	}
	writeJSON(writer, http.StatusCreated, task)
}

func (a *API) handleGetTask(writer http.ResponseWriter, request *http.Request) {
	task, err := a.tasks.Get(request.Context(), currentUser(request).ID, request.PathValue("id"))
	if err != nil {
		a.fail(writer, request, err, messageTaskNotFound)
		return
	}
	writeJSON(writer, http.StatusOK, task)
}

func (a *API) handleUpdateTask(writer http.ResponseWriter, request *http.Request) {
	var patch schema.TaskPatch
	if err := netutil.DecodeRequest(writer, request, MaxRequestBody, &patch); err != nil {
		writeDecodeError(writer, err)
		return
	}
	task, err := a.tasks.Update(request.Context(), currentUser(request).ID, request.PathValue("id"), patch)
	if err != nil {
		a.fail(writer, request, err, messageTaskNotFound)
		return
	}
	writeJSON(writer, http.StatusOK, task)
}

func (a *API) handleToggleTask(writer http.ResponseWriter, request *http.Request) {
	task, err := a.tasks.Toggle(request.Context(), currentUser(request).ID, request.PathValue("id"))
	if err != nil {
		a.fail(writer, request, err, messageTaskNotFound)
		return
	}
	writeJSON(writer, http.StatusOK, task)
}

func (a *API) handleDeleteTask(writer http.ResponseWriter, request *http.Request) {
	task, err := a.tasks.Delete(request.Context(), currentUser(request).ID, request.PathValue("id"))
	if err != nil {
		a.fail(writer, request, err, messageTaskNotFound)
		return
	}
	writeJSON(writer, http.StatusOK, schema.DeleteResponse{
		Message: "Task deleted successfully",
		Task:    task,
	})
}
