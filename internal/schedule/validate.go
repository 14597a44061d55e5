package schedule

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	hoursRe   = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*hours?`)
	minutesRe = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*minutes?`)
)

// dueDateLayouts are the timestamp formats we accept from the outside.
var dueDateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseDueDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseTimeString coerces an estimated-time value into hours. Accepts a
// plain number, "X hours", "X minutes" or a bare numeric string.
// Returns 0 when nothing parses.
func parseTimeString(v any) float64 {
	switch t := v.(type) {
	case nil:
		return 0
	case float64:
		return t
	case float32:
		return float64(t)
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case string:
		if m := hoursRe.FindStringSubmatch(t); m != nil {
			n, _ := strconv.ParseFloat(m[1], 64)
			return n
		}
		if m := minutesRe.FindStringSubmatch(t); m != nil {
			n, _ := strconv.ParseFloat(m[1], 64)
			return n / 60
		}
		n, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// parsePriority coerces a priority value into the 1-5 scale. Text labels map
// low=1 / medium=3 / high=5; an unknown label falls back to medium instead
// of rejecting. Numeric values pass through unchanged and get range-checked
// by the validator.
func parsePriority(v any) float64 {
	switch t := v.(type) {
	case nil:
		return 3
	case float64:
		return t
	case float32:
		return float64(t)
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "low":
			return 1
		case "medium":
			return 3
		case "high":
			return 5
		}
		if n, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			return n
		}
		return 3 // default to medium
	default:
		return 3
	}
}

// ValidateTasks splits a batch into schedulable tasks and rejected ones.
// Accepted tasks come back normalized: due date as RFC3339 UTC, estimated
// time as plain hours, priority as a plain int. Rejection never aborts the
// batch; every skipped task carries its full list of issues.
func ValidateTasks(tasks []Task) (validTasks []Task, skippedTasks []SkippedTask) {
	for _, task := range tasks {
		var issues []string

		if task.ID == "" {
			issues = append(issues, "Missing task ID")
		}
		if task.Title == "" {
			issues = append(issues, "Missing title")
		}
		if task.DueDate == "" {
			issues = append(issues, "Missing due date")
		}

		dueDate, dueOK := parseDueDate(task.DueDate)
		if task.DueDate != "" && !dueOK {
			issues = append(issues, "Invalid due date format")
		}

		estimated := parseTimeString(task.EstimatedTime)
		if math.IsNaN(estimated) || estimated <= 0 {
			issues = append(issues, "Invalid estimated time")
		}

		priority := parsePriority(task.Priority)
		if math.IsNaN(priority) || priority < 1 || priority > 5 {
			issues = append(issues, "Invalid priority")
		}

		if task.ClassID != "" && (task.Class == nil || task.Class.Difficulty == 0 || task.Class.TeacherStrictness == 0) {
			issues = append(issues, "Missing class data")
		}

		if len(issues) > 0 {
			skippedTasks = append(skippedTasks, SkippedTask{Task: task, Issues: issues})
			continue
		}

		valid := task
		valid.DueDate = dueDate.UTC().Format(time.RFC3339)
		valid.EstimatedTime = estimated
		valid.Priority = int(priority)
		validTasks = append(validTasks, valid)
	}
	return validTasks, skippedTasks
}

// estimatedHours reads the normalized estimated time off a validated task.
func estimatedHours(task Task) float64 {
	return parseTimeString(task.EstimatedTime)
}

// priorityValue reads the normalized priority off a validated task.
func priorityValue(task Task) float64 {
	return parsePriority(task.Priority)
}

func issuesText(s SkippedTask) string {
	return fmt.Sprintf("task %q (%s): %s", s.Task.Title, s.Task.ID, strings.Join(s.Issues, "; "))
}
