package schedule

import "time"

// Class is the class context attached to a task. Difficulty and
// TeacherStrictness are 1-10 ratings.
type Class struct {
	Name              string  `json:"name"`
	Difficulty        float64 `json:"difficulty"`
	TeacherStrictness float64 `json:"teacher_strictness"`
	Color             string  `json:"color,omitempty"`
}

// Task is the raw task record as handed over by the persistence layer.
// Priority and EstimatedTime are `any` on purpose: the rows come out of
// loosely typed JSON (a number, a numeric string, "2 hours", "low"), and
// the validator owns all coercion. After ValidateTasks an accepted task
// carries DueDate as RFC3339 UTC, EstimatedTime as float64 hours and
// Priority as int.
type Task struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description,omitempty"`
	DueDate       string `json:"due_date"`
	Priority      any    `json:"priority"`
	Status        string `json:"status,omitempty"`
	EstimatedTime any    `json:"estimated_time"`
	ClassID       string `json:"class_id,omitempty"`
	Class         *Class `json:"class,omitempty"`
}

// Session is one quantized block of work assigned to a calendar date.
// Duration is minutes, always a positive multiple of the time increment.
type Session struct {
	TaskID       string    `json:"task_id"`
	Date         time.Time `json:"date"`
	Duration     int       `json:"duration"`
	OriginalTask Task      `json:"original_task"`
	Completed    bool      `json:"completed"`
}

// SkippedTask is a task rejected by validation together with the reasons.
type SkippedTask struct {
	Task   Task     `json:"task"`
	Issues []string `json:"issues"`
}

// daySchedule accumulates what has been committed to one calendar date.
// Created lazily by the tracker, thrown away at the end of a run.
type daySchedule struct {
	date       time.Time
	sessions   []Session
	totalHours float64
	energy     float64
	breaks     int
}
