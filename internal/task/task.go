package task

import "time"

// Task is a titled, optionally described, completable unit of work owned
// by a user. The client never holds it as authoritative state: every view
// is a fresh read of the server after any mutation.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Completed   bool       `json:"completed"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// Partition splits tasks into pending and completed subsets. The split is
// exhaustive, disjoint and order-preserving.
func Partition(tasks []Task) (pending, completed []Task) {
	for _, t := range tasks {
		if t.Completed {
			completed = append(completed, t)
		} else {
			pending = append(pending, t)
		}
	}
	return pending, completed
}
