package tasks

import "time"

type ClassInfo struct {
	Name              string `json:"name"`
	Difficulty        int    `json:"difficulty"`
	TeacherStrictness int    `json:"teacher_strictness"`
	Color             string `json:"color,omitempty"`
}

type Task struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	DueDate       time.Time  `json:"due_date"`
	Priority      int        `json:"priority"`
	EstimatedTime float64    `json:"estimated_time"` // hours
	Status        string     `json:"status"`
	ClassID       string     `json:"class_id,omitempty"`
	Class         *ClassInfo `json:"class,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Task statuses.
const (
	StatusPending    = "PENDING"
	StatusInProgress = "IN_PROGRESS"
	StatusCompleted  = "COMPLETED"
	StatusOverdue    = "OVERDUE"
)

func validStatus(s string) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusOverdue:
		return true
	}
	return false
}
