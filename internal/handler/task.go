package handler

import (
	"strings"
	"time"

	"tasksync/internal/middleware"
	"tasksync/internal/models"
	"tasksync/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type taskResp struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toTaskResp(t *models.Task) taskResp {
	return taskResp{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// canActFor reports whether the caller may act on rows owned by userID:
// either the admin secret was presented or the JWT identity matches.
func canActFor(c *gin.Context, userID string) bool {
	if middleware.IsAdmin(c) {
		return true
	}
	user := middleware.CurrentUser(c)
	return user != nil && user.ID == userID
}

// loadOwned fetches a task and checks the caller may act on it. A missing
// row yields (nil, true): Hasura-style *_by_pk operations return null data
// rather than an error for unknown ids.
func (h *GraphQLHandler) loadOwned(c *gin.Context, id string) (*models.Task, bool) {
	var t models.Task
	if err := h.DB.First(&t, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, true
		}
		util.GraphQLError(c, "failed to query task")
		return nil, false
	}
	if !canActFor(c, t.UserID) {
		util.GraphQLError(c, "permission denied")
		return nil, false
	}
	return &t, true
}

// ---------- GetTasks ----------

func (h *GraphQLHandler) listTasks(c *gin.Context, vars map[string]interface{}) {
	userID := strVar(vars, "userId")
	if userID == "" {
		util.GraphQLError(c, "userId is required")
		return
	}
	if !canActFor(c, userID) {
		util.GraphQLError(c, "permission denied")
		return
	}

	var tasks []models.Task
	if err := h.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&tasks).Error; err != nil {
		util.GraphQLError(c, "failed to query tasks")
		return
	}

	resp := make([]taskResp, 0, len(tasks))
	for i := range tasks {
		resp = append(resp, toTaskResp(&tasks[i]))
	}
	util.GraphQLData(c, util.Data{"tasks": resp})
}

// ---------- CreateTask ----------

func (h *GraphQLHandler) createTask(c *gin.Context, vars map[string]interface{}) {
	title := strings.TrimSpace(strVar(vars, "title"))
	description := strings.TrimSpace(strVar(vars, "description"))
	userID := strVar(vars, "userId")

	if err := util.ValidateTitle(title); err != nil {
		util.GraphQLError(c, err.Error())
		return
	}
	if userID == "" {
		util.GraphQLError(c, "userId is required")
		return
	}
	if !canActFor(c, userID) {
		util.GraphQLError(c, "permission denied")
		return
	}

	var count int64
	if err := h.DB.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil || count == 0 {
		util.GraphQLError(c, "unknown user")
		return
	}

	t := models.Task{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       title,
		Description: description,
	}
	if err := h.DB.Create(&t).Error; err != nil {
		util.GraphQLError(c, "failed to create task")
		return
	}

	util.GraphQLData(c, util.Data{"insert_tasks_one": toTaskResp(&t)})
}

// ---------- UpdateTask ----------

func (h *GraphQLHandler) updateTask(c *gin.Context, vars map[string]interface{}) {
	id := strVar(vars, "id")
	if id == "" {
		util.GraphQLError(c, "id is required")
		return
	}

	t, ok := h.loadOwned(c, id)
	if !ok {
		return
	}
	if t == nil {
		util.GraphQLData(c, util.Data{"update_tasks_by_pk": nil})
		return
	}

	if title, ok := strVarOK(vars, "title"); ok {
		title = strings.TrimSpace(title)
		if err := util.ValidateTitle(title); err != nil {
			util.GraphQLError(c, err.Error())
			return
		}
		t.Title = title
	}
	if description, ok := strVarOK(vars, "description"); ok {
		t.Description = strings.TrimSpace(description)
	}

	if err := h.DB.Save(t).Error; err != nil {
		util.GraphQLError(c, "failed to update task")
		return
	}

	util.GraphQLData(c, util.Data{"update_tasks_by_pk": toTaskResp(t)})
}

// ---------- ToggleTask ----------

func (h *GraphQLHandler) toggleTask(c *gin.Context, vars map[string]interface{}) {
	id := strVar(vars, "id")
	completed, ok := boolVar(vars, "completed")
	if id == "" || !ok {
		util.GraphQLError(c, "id and completed are required")
		return
	}

	t, found := h.loadOwned(c, id)
	if !found {
		return
	}
	if t == nil {
		util.GraphQLData(c, util.Data{"update_tasks_by_pk": nil})
		return
	}

	t.Completed = completed
	if err := h.DB.Save(t).Error; err != nil {
		util.GraphQLError(c, "failed to update task")
		return
	}

	util.GraphQLData(c, util.Data{
		"update_tasks_by_pk": gin.H{
			"id":        t.ID,
			"completed": t.Completed,
		},
	})
}

// ---------- DeleteTask ----------

func (h *GraphQLHandler) deleteTask(c *gin.Context, vars map[string]interface{}) {
	id := strVar(vars, "id")
	if id == "" {
		util.GraphQLError(c, "id is required")
		return
	}

	t, ok := h.loadOwned(c, id)
	if !ok {
		return
	}
	if t == nil {
		util.GraphQLData(c, util.Data{"delete_tasks_by_pk": nil})
		return
	}

	if err := h.DB.Delete(&models.Task{}, "id = ?", id).Error; err != nil {
		util.GraphQLError(c, "failed to delete task")
		return
	}

	util.GraphQLData(c, util.Data{
		"delete_tasks_by_pk": gin.H{"id": id},
	})
}
