package task

import (
	"context"
	"strings"

	"tasksync/internal/gateway"
	"tasksync/internal/util"
)

// EditorMode is determined purely by whether a task is supplied on open.
type EditorMode int

const (
	ModeCreate EditorMode = iota
	ModeEdit
)

// Draft is the ephemeral, unsaved edit state of one dialog instance.
type Draft struct {
	Title       string
	Description string
}

// Editor creates or updates a single task and signals completion back to
// the list controller. Submit never alters the completed state.
type Editor struct {
	gw *gateway.Client

	mode   EditorMode
	taskID string
	Draft  Draft

	// OnSaved is invoked after a successful submit (close + refresh in the
	// parent). A failed submit keeps the draft so the user can retry.
	OnSaved func(ctx context.Context) error
}

func NewEditor(gw *gateway.Client) *Editor {
	return &Editor{gw: gw}
}

// Open initializes the draft: from the given task in edit mode, empty in
// create mode. Re-opening always re-initializes; draft state is never
// retained across tasks.
func (e *Editor) Open(t *Task) {
	if t == nil {
		e.mode = ModeCreate
		e.taskID = ""
		e.Draft = Draft{}
		return
	}
	e.mode = ModeEdit
	e.taskID = t.ID
	e.Draft = Draft{Title: t.Title, Description: t.Description}
}

// Mode reports whether the editor will create or update on submit.
func (e *Editor) Mode() EditorMode {
	return e.mode
}

// Submit validates the draft and issues the create or update operation.
// On success the draft is cleared and OnSaved runs; on failure the draft
// stays intact.
func (e *Editor) Submit(ctx context.Context, userID string) (*Task, error) {
	title := strings.TrimSpace(e.Draft.Title)
	if err := util.ValidateTitle(title); err != nil {
		return nil, err
	}
	description := strings.TrimSpace(e.Draft.Description)

	var saved *Task
	var err error
	if e.mode == ModeEdit {
		saved, err = e.update(ctx, title, description)
	} else {
		saved, err = e.create(ctx, title, description, userID)
	}
	if err != nil {
		return nil, err
	}

	e.Draft = Draft{}
	if e.OnSaved != nil {
		if err := e.OnSaved(ctx); err != nil {
			return saved, err
		}
	}
	return saved, nil
}

func (e *Editor) create(ctx context.Context, title, description, userID string) (*Task, error) {
	vars := gateway.Variables{
		"title":  title,
		"userId": userID,
	}
	if description != "" {
		vars["description"] = description
	}

	var out struct {
		InsertTasksOne *Task `json:"insert_tasks_one"`
	}
	if err := e.gw.Mutate(ctx, gateway.CreateTask, vars, &out); err != nil {
		return nil, err
	}
	return out.InsertTasksOne, nil
}

func (e *Editor) update(ctx context.Context, title, description string) (*Task, error) {
	var out struct {
		UpdateTasksByPk *Task `json:"update_tasks_by_pk"`
	}
	if err := e.gw.Mutate(ctx, gateway.UpdateTask, gateway.Variables{
		"id":          e.taskID,
		"title":       title,
		"description": description,
	}, &out); err != nil {
		return nil, err
	}
	return out.UpdateTasksByPk, nil
}
