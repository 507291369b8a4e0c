package task

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"tasksync/internal/gateway"
	"tasksync/internal/session"
)

// fakeTask is the server-side row held by the stateful fake backend.
type fakeTask struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
}

type recordedOp struct {
	Name string
	Vars map[string]interface{}
}

// taskBackend is a stateful single-user fake of the GraphQL endpoint. It
// records every operation in order and applies mutations to its own task
// set, so refetch-after-mutation is observable end to end.
type taskBackend struct {
	mu      sync.Mutex
	ops     []recordedOp
	tasks   []fakeTask
	failOps map[string]string
	nextID  int
}

func (b *taskBackend) seed(tasks ...fakeTask) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tasks = append(b.tasks, tasks...)
}

func (b *taskBackend) opNames() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	names := make([]string, 0, len(b.ops))
	for _, op := range b.ops {
		names = append(names, op.Name)
	}
	return names
}

func (b *taskBackend) lastOp(name string) *recordedOp {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := len(b.ops) - 1; i >= 0; i-- {
		if b.ops[i].Name == name {
			return &b.ops[i]
		}
	}
	return nil
}

func (b *taskBackend) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var env struct {
			OperationName string                 `json:"operationName"`
			Variables     map[string]interface{} `json:"variables"`
		}
		_ = json.NewDecoder(r.Body).Decode(&env)

		b.mu.Lock()
		defer b.mu.Unlock()
		b.ops = append(b.ops, recordedOp{Name: env.OperationName, Vars: env.Variables})

		w.Header().Set("Content-Type", "application/json")
		writeJSON := func(v interface{}) {
			_ = json.NewEncoder(w).Encode(v)
		}

		if msg, ok := b.failOps[env.OperationName]; ok {
			writeJSON(map[string]interface{}{
				"errors": []map[string]string{{"message": msg}},
			})
			return
		}

		vars := env.Variables
		strVar := func(key string) string {
			s, _ := vars[key].(string)
			return s
		}

		find := func(id string) *fakeTask {
			for i := range b.tasks {
				if b.tasks[i].ID == id {
					return &b.tasks[i]
				}
			}
			return nil
		}

		switch env.OperationName {
		case "GetTasks":
			writeJSON(map[string]interface{}{
				"data": map[string]interface{}{"tasks": b.tasks},
			})

		case "CreateTask":
			b.nextID++
			t := fakeTask{
				ID:          fmt.Sprintf("t%d", b.nextID),
				Title:       strVar("title"),
				Description: strVar("description"),
				CreatedAt:   time.Now(),
			}
			// newest first, matching the server's created_at desc order
			b.tasks = append([]fakeTask{t}, b.tasks...)
			writeJSON(map[string]interface{}{
				"data": map[string]interface{}{"insert_tasks_one": t},
			})

		case "UpdateTask":
			t := find(strVar("id"))
			if t == nil {
				writeJSON(map[string]interface{}{
					"data": map[string]interface{}{"update_tasks_by_pk": nil},
				})
				return
			}
			t.Title = strVar("title")
			t.Description = strVar("description")
			writeJSON(map[string]interface{}{
				"data": map[string]interface{}{"update_tasks_by_pk": *t},
			})

		case "ToggleTask":
			t := find(strVar("id"))
			if t == nil {
				writeJSON(map[string]interface{}{
					"data": map[string]interface{}{"update_tasks_by_pk": nil},
				})
				return
			}
			completed, _ := vars["completed"].(bool)
			t.Completed = completed
			writeJSON(map[string]interface{}{
				"data": map[string]interface{}{
					"update_tasks_by_pk": map[string]interface{}{
						"id":        t.ID,
						"completed": t.Completed,
					},
				},
			})

		case "DeleteTask":
			id := strVar("id")
			kept := b.tasks[:0]
			for _, t := range b.tasks {
				if t.ID != id {
					kept = append(kept, t)
				}
			}
			b.tasks = kept
			writeJSON(map[string]interface{}{
				"data": map[string]interface{}{
					"delete_tasks_by_pk": map[string]string{"id": id},
				},
			})

		default:
			writeJSON(map[string]interface{}{
				"errors": []map[string]string{{"message": "unknown operation: " + env.OperationName}},
			})
		}
	}
}

// newAuthedFixture wires a controller against the fake backend with an
// authenticated session for user u1.
func newAuthedFixture(t *testing.T, backend *taskBackend) (*Controller, *gateway.Client, session.Store) {
	t.Helper()
	srv := httptest.NewServer(backend.handler())
	t.Cleanup(srv.Close)

	store := session.NewMemoryStore()
	_ = store.SetToken("tok")
	_ = store.SetUser(&session.User{ID: "u1", Email: "a@b.com", Name: "A"})

	gw := gateway.New(srv.URL, "", store)
	return NewController(gw, store), gw, store
}
