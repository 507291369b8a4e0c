package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tasksync/internal/middleware"
	"tasksync/internal/models"
	"tasksync/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	testJWTSecret   = "test-jwt-secret"
	testAdminSecret = "dev-admin-secret"
)

type testEnv struct {
	db     *gorm.DB
	engine *gin.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Task{}, &models.OpLog{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	gql := NewGraphQLHandler(db, testJWTSecret, "tasksync-test", 1)
	engine := gin.New()
	engine.POST("/v1/graphql",
		middleware.Identity(testJWTSecret, testAdminSecret, db),
		middleware.OpLog(db),
		gql.Handle,
	)
	return &testEnv{db: db, engine: engine}
}

type gqlResp struct {
	Data   map[string]json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func (e *testEnv) do(t *testing.T, op string, vars map[string]interface{}, headers map[string]string) gqlResp {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{
		"query":         op,
		"variables":     vars,
		"operationName": op,
	})
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/graphql", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("%s: status = %d, body = %s", op, w.Code, w.Body.String())
	}
	var resp gqlResp
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("%s: decode response: %v", op, err)
	}
	return resp
}

func firstError(resp gqlResp) string {
	if len(resp.Errors) == 0 {
		return ""
	}
	return resp.Errors[0].Message
}

func (e *testEnv) seedUser(t *testing.T, email, name, password string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &models.User{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
	}
	if err := e.db.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func (e *testEnv) seedTask(t *testing.T, userID, title string, createdAt time.Time) *models.Task {
	t.Helper()
	task := &models.Task{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     title,
		CreatedAt: createdAt,
	}
	if err := e.db.Create(task).Error; err != nil {
		t.Fatalf("seed task: %v", err)
	}
	return task
}

func bearer(t *testing.T, user *models.User) map[string]string {
	t.Helper()
	token, err := util.GenerateToken(testJWTSecret, "tasksync-test", user.ID, user.Email, time.Hour)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return map[string]string{"Authorization": "Bearer " + token}
}

func adminHeader() map[string]string {
	return map[string]string{"x-hasura-admin-secret": testAdminSecret}
}

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, "CreateUser", map[string]interface{}{
		"email":    " Alice@Example.com ",
		"name":     "Alice",
		"password": "secret1",
	}, nil)
	if msg := firstError(resp); msg != "" {
		t.Fatalf("CreateUser error = %q", msg)
	}

	var created struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	if err := json.Unmarshal(resp.Data["insert_users_one"], &created); err != nil {
		t.Fatalf("decode insert_users_one: %v", err)
	}
	if created.ID == "" {
		t.Error("created user has no id")
	}
	if created.Email != "alice@example.com" {
		t.Errorf("email = %q, want normalized lowercase", created.Email)
	}

	// duplicate registration is rejected, case-insensitively
	resp = env.do(t, "CreateUser", map[string]interface{}{
		"email":    "ALICE@example.com",
		"name":     "Alice Again",
		"password": "secret1",
	}, nil)
	if msg := firstError(resp); msg != "email already registered" {
		t.Errorf("duplicate CreateUser error = %q, want %q", msg, "email already registered")
	}

	resp = env.do(t, "LoginUser", map[string]interface{}{
		"email":    "alice@example.com",
		"password": "secret1",
	}, nil)
	if msg := firstError(resp); msg != "" {
		t.Fatalf("LoginUser error = %q", msg)
	}

	var login struct {
		Token string   `json:"token"`
		User  userResp `json:"user"`
	}
	if err := json.Unmarshal(resp.Data["login"], &login); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	if login.User.ID != created.ID {
		t.Errorf("login user id = %q, want %q", login.User.ID, created.ID)
	}

	claims, err := util.ParseToken(testJWTSecret, login.Token)
	if err != nil {
		t.Fatalf("issued token does not parse: %v", err)
	}
	if claims.UserID != created.ID || claims.Email != "alice@example.com" {
		t.Errorf("claims = %+v, want user identity", claims)
	}
}

func TestLogin_SameMessageForBothFailures(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "bob@example.com", "Bob", "correct-password")

	tests := []struct {
		name  string
		email string
	}{
		{"wrong password", "bob@example.com"},
		{"unknown email", "nobody@example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.do(t, "LoginUser", map[string]interface{}{
				"email":    tt.email,
				"password": "wrong-password",
			}, nil)
			if msg := firstError(resp); msg != "invalid email or password" {
				t.Errorf("error = %q, want %q", msg, "invalid email or password")
			}
		})
	}
}

func TestCreateUser_Validation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		vars map[string]interface{}
	}{
		{"bad email", map[string]interface{}{"email": "not-an-email", "name": "X", "password": "secret1"}},
		{"empty name", map[string]interface{}{"email": "x@example.com", "name": "  ", "password": "secret1"}},
		{"short password", map[string]interface{}{"email": "x@example.com", "name": "X", "password": "12345"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.do(t, "CreateUser", tt.vars, nil)
			if firstError(resp) == "" {
				t.Error("expected a validation error")
			}
		})
	}

	var count int64
	env.db.Model(&models.User{}).Count(&count)
	if count != 0 {
		t.Errorf("user count after rejected registrations = %d, want 0", count)
	}
}

func TestFindUserByEmail_AdminOnly(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "carol@example.com", "Carol", "secret1")

	resp := env.do(t, "FindUserByEmail", map[string]interface{}{"email": "carol@example.com"}, nil)
	if msg := firstError(resp); msg != "permission denied" {
		t.Errorf("without admin secret: error = %q, want %q", msg, "permission denied")
	}

	resp = env.do(t, "FindUserByEmail", map[string]interface{}{"email": "Carol@Example.com"}, adminHeader())
	if msg := firstError(resp); msg != "" {
		t.Fatalf("with admin secret: error = %q", msg)
	}
	var users []userResp
	if err := json.Unmarshal(resp.Data["users"], &users); err != nil {
		t.Fatalf("decode users: %v", err)
	}
	if len(users) != 1 || users[0].ID != user.ID {
		t.Errorf("users = %+v, want the seeded user", users)
	}
	if strings.Contains(string(resp.Data["users"]), user.PasswordHash) {
		t.Error("response leaks the password hash")
	}

	// unknown email is an empty list, not an error
	resp = env.do(t, "FindUserByEmail", map[string]interface{}{"email": "nobody@example.com"}, adminHeader())
	if msg := firstError(resp); msg != "" {
		t.Fatalf("unknown email: error = %q", msg)
	}
	if err := json.Unmarshal(resp.Data["users"], &users); err != nil || len(users) != 0 {
		t.Errorf("unknown email: users = %+v, want empty list", users)
	}
}

func TestTaskLifecycle(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "dave@example.com", "Dave", "secret1")
	auth := bearer(t, user)

	resp := env.do(t, "CreateTask", map[string]interface{}{
		"title":       "  Write report  ",
		"description": "quarterly numbers",
		"userId":      user.ID,
	}, auth)
	if msg := firstError(resp); msg != "" {
		t.Fatalf("CreateTask error = %q", msg)
	}
	var created taskResp
	if err := json.Unmarshal(resp.Data["insert_tasks_one"], &created); err != nil {
		t.Fatalf("decode insert_tasks_one: %v", err)
	}
	if created.Title != "Write report" {
		t.Errorf("title = %q, want trimmed", created.Title)
	}
	if created.Completed {
		t.Error("new task is completed")
	}

	resp = env.do(t, "GetTasks", map[string]interface{}{"userId": user.ID}, auth)
	var tasks []taskResp
	if err := json.Unmarshal(resp.Data["tasks"], &tasks); err != nil {
		t.Fatalf("decode tasks: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != created.ID {
		t.Fatalf("tasks = %+v, want the created task", tasks)
	}

	// partial update: title only, description untouched
	resp = env.do(t, "UpdateTask", map[string]interface{}{
		"id":    created.ID,
		"title": "Write the report",
	}, auth)
	if msg := firstError(resp); msg != "" {
		t.Fatalf("UpdateTask error = %q", msg)
	}
	var updated taskResp
	if err := json.Unmarshal(resp.Data["update_tasks_by_pk"], &updated); err != nil {
		t.Fatalf("decode update_tasks_by_pk: %v", err)
	}
	if updated.Title != "Write the report" || updated.Description != "quarterly numbers" {
		t.Errorf("updated = %+v, want new title with old description", updated)
	}

	resp = env.do(t, "ToggleTask", map[string]interface{}{
		"id":        created.ID,
		"completed": true,
	}, auth)
	if msg := firstError(resp); msg != "" {
		t.Fatalf("ToggleTask error = %q", msg)
	}
	var row models.Task
	if err := env.db.First(&row, "id = ?", created.ID).Error; err != nil {
		t.Fatalf("reload task: %v", err)
	}
	if !row.Completed {
		t.Error("task not completed after toggle")
	}

	resp = env.do(t, "DeleteTask", map[string]interface{}{"id": created.ID}, auth)
	if msg := firstError(resp); msg != "" {
		t.Fatalf("DeleteTask error = %q", msg)
	}
	resp = env.do(t, "GetTasks", map[string]interface{}{"userId": user.ID}, auth)
	if err := json.Unmarshal(resp.Data["tasks"], &tasks); err != nil || len(tasks) != 0 {
		t.Errorf("tasks after delete = %+v, want empty", tasks)
	}
}

func TestGetTasks_NewestFirst(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "erin@example.com", "Erin", "secret1")

	base := time.Now().Add(-time.Hour)
	env.seedTask(t, user.ID, "oldest", base)
	env.seedTask(t, user.ID, "newest", base.Add(2*time.Minute))
	env.seedTask(t, user.ID, "middle", base.Add(time.Minute))

	resp := env.do(t, "GetTasks", map[string]interface{}{"userId": user.ID}, bearer(t, user))
	var tasks []taskResp
	if err := json.Unmarshal(resp.Data["tasks"], &tasks); err != nil {
		t.Fatalf("decode tasks: %v", err)
	}
	var titles []string
	for _, task := range tasks {
		titles = append(titles, task.Title)
	}
	want := []string{"newest", "middle", "oldest"}
	for i := range want {
		if i >= len(titles) || titles[i] != want[i] {
			t.Fatalf("titles = %v, want %v", titles, want)
		}
	}
}

func TestTask_OwnershipEnforced(t *testing.T) {
	env := newTestEnv(t)
	owner := env.seedUser(t, "owner@example.com", "Owner", "secret1")
	intruder := env.seedUser(t, "intruder@example.com", "Intruder", "secret1")
	task := env.seedTask(t, owner.ID, "private", time.Now())
	auth := bearer(t, intruder)

	tests := []struct {
		op   string
		vars map[string]interface{}
	}{
		{"GetTasks", map[string]interface{}{"userId": owner.ID}},
		{"CreateTask", map[string]interface{}{"title": "x", "userId": owner.ID}},
		{"UpdateTask", map[string]interface{}{"id": task.ID, "title": "hijacked"}},
		{"ToggleTask", map[string]interface{}{"id": task.ID, "completed": true}},
		{"DeleteTask", map[string]interface{}{"id": task.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			resp := env.do(t, tt.op, tt.vars, auth)
			if msg := firstError(resp); msg != "permission denied" {
				t.Errorf("error = %q, want %q", msg, "permission denied")
			}
		})
	}

	var row models.Task
	if err := env.db.First(&row, "id = ?", task.ID).Error; err != nil {
		t.Fatalf("task row is gone: %v", err)
	}
	if row.Title != "private" || row.Completed {
		t.Errorf("row = %+v, want untouched", row)
	}

	// the admin secret bypasses ownership
	resp := env.do(t, "GetTasks", map[string]interface{}{"userId": owner.ID}, adminHeader())
	if msg := firstError(resp); msg != "" {
		t.Errorf("admin GetTasks error = %q", msg)
	}
}

func TestTask_UnknownIDReturnsNull(t *testing.T) {
	env := newTestEnv(t)
	missing := uuid.New().String()

	tests := []struct {
		op      string
		vars    map[string]interface{}
		dataKey string
	}{
		{"UpdateTask", map[string]interface{}{"id": missing, "title": "x"}, "update_tasks_by_pk"},
		{"ToggleTask", map[string]interface{}{"id": missing, "completed": true}, "update_tasks_by_pk"},
		{"DeleteTask", map[string]interface{}{"id": missing}, "delete_tasks_by_pk"},
	}
	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			resp := env.do(t, tt.op, tt.vars, adminHeader())
			if msg := firstError(resp); msg != "" {
				t.Fatalf("error = %q, want null data", msg)
			}
			raw, ok := resp.Data[tt.dataKey]
			if !ok {
				t.Fatalf("data has no %q key", tt.dataKey)
			}
			if string(raw) != "null" {
				t.Errorf("%s = %s, want null", tt.dataKey, raw)
			}
		})
	}
}

func TestOpLog_RecordsIdentifiedRequests(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "frank@example.com", "Frank", "secret1")

	// anonymous login attempt is not recorded
	env.do(t, "LoginUser", map[string]interface{}{"email": "frank@example.com", "password": "bad"}, nil)
	var count int64
	env.db.Model(&models.OpLog{}).Count(&count)
	if count != 0 {
		t.Errorf("op log after anonymous request = %d rows, want 0", count)
	}

	env.do(t, "GetTasks", map[string]interface{}{"userId": user.ID}, bearer(t, user))
	var entry models.OpLog
	if err := env.db.Last(&entry).Error; err != nil {
		t.Fatalf("no op log row after authenticated request: %v", err)
	}
	if entry.Operation != "GetTasks" {
		t.Errorf("operation = %q, want GetTasks", entry.Operation)
	}
	if entry.UserID == nil || *entry.UserID != user.ID {
		t.Errorf("user id = %v, want %q", entry.UserID, user.ID)
	}

	// admin requests are recorded without a user id
	env.do(t, "GetTasks", map[string]interface{}{"userId": user.ID}, adminHeader())
	if err := env.db.Last(&entry).Error; err != nil {
		t.Fatalf("no op log row after admin request: %v", err)
	}
	if entry.UserID != nil {
		t.Errorf("admin op log user id = %v, want nil", *entry.UserID)
	}
}

func TestDetectOperation(t *testing.T) {
	query := "mutation CreateTask($title: String!) { insert_tasks_one(object: {title: $title}) { id } }"
	if got := detectOperation(query); got != "CreateTask" {
		t.Errorf("detectOperation = %q, want CreateTask", got)
	}
	if got := detectOperation("query Whatever { x }"); got != "" {
		t.Errorf("detectOperation on unknown query = %q, want empty", got)
	}
}
