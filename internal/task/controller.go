package task

import (
	"context"
	"errors"

	"tasksync/internal/gateway"
	"tasksync/internal/session"
)

var (
	// ErrNotAuthenticated means the session holds no user; the caller
	// should navigate to the login flow and render nothing further.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrDeleteCancelled means the user declined the confirmation step.
	ErrDeleteCancelled = errors.New("delete cancelled")
)

// Controller orchestrates the authenticated task view. Each mutating
// operation re-issues the fetch on success so the view always reflects
// server truth; nothing is patched locally.
type Controller struct {
	gw    *gateway.Client
	store session.Store

	tasks []Task
}

func NewController(gw *gateway.Client, store session.Store) *Controller {
	return &Controller{gw: gw, store: store}
}

// userID resolves the current user id from the session, or "" when the
// session is absent. A fetch is never issued without a known user id.
func (c *Controller) userID() string {
	if !c.store.IsAuthenticated() {
		return ""
	}
	user := c.store.User()
	if user == nil {
		return ""
	}
	return user.ID
}

// Load fetches all tasks for the current user, newest first as returned
// by the server.
func (c *Controller) Load(ctx context.Context) error {
	userID := c.userID()
	if userID == "" {
		return ErrNotAuthenticated
	}

	var out struct {
		Tasks []Task `json:"tasks"`
	}
	if err := c.gw.Query(ctx, gateway.GetTasks, gateway.Variables{"userId": userID}, &out); err != nil {
		return err
	}
	c.tasks = out.Tasks
	return nil
}

// refresh bypasses the cache after a mutation completed.
func (c *Controller) refresh(ctx context.Context) error {
	userID := c.userID()
	if userID == "" {
		return ErrNotAuthenticated
	}

	var out struct {
		Tasks []Task `json:"tasks"`
	}
	if err := c.gw.Refetch(ctx, gateway.GetTasks, gateway.Variables{"userId": userID}, &out); err != nil {
		return err
	}
	c.tasks = out.Tasks
	return nil
}

// Tasks returns the last fetched task list.
func (c *Controller) Tasks() []Task {
	return c.tasks
}

// Partition returns the pending/completed split of the current view.
func (c *Controller) Partition() (pending, completed []Task) {
	return Partition(c.tasks)
}

// Toggle flips a task's completed state to the given value, then refetches.
func (c *Controller) Toggle(ctx context.Context, id string, completed bool) error {
	if c.userID() == "" {
		return ErrNotAuthenticated
	}

	var out struct {
		UpdateTasksByPk *struct {
			ID        string `json:"id"`
			Completed bool   `json:"completed"`
		} `json:"update_tasks_by_pk"`
	}
	if err := c.gw.Mutate(ctx, gateway.ToggleTask, gateway.Variables{
		"id":        id,
		"completed": completed,
	}, &out); err != nil {
		return err
	}
	return c.refresh(ctx)
}

// Delete removes a task after an explicit confirmation step, then
// refetches. A declined confirmation issues no request.
func (c *Controller) Delete(ctx context.Context, id string, confirm func() bool) error {
	if c.userID() == "" {
		return ErrNotAuthenticated
	}
	if confirm != nil && !confirm() {
		return ErrDeleteCancelled
	}

	var out struct {
		DeleteTasksByPk *struct {
			ID string `json:"id"`
		} `json:"delete_tasks_by_pk"`
	}
	if err := c.gw.Mutate(ctx, gateway.DeleteTask, gateway.Variables{"id": id}, &out); err != nil {
		return err
	}
	return c.refresh(ctx)
}

// Refresh re-synchronizes the view; the editor signals completion through
// this after a create or update.
func (c *Controller) Refresh(ctx context.Context) error {
	return c.refresh(ctx)
}

// Logout clears the session and reports the login route. No API call is
// made.
func (c *Controller) Logout() (string, error) {
	c.tasks = nil
	if err := c.store.Clear(); err != nil {
		return "", err
	}
	return "/auth/login", nil
}
