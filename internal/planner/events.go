package planner

import (
	"fmt"
	"time"

	"studyplan-backend/internal/schedule"
)

type EventClass struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// CalendarEvent is the calendar-displayable shape of one work session.
type CalendarEvent struct {
	ID            string      `json:"id"`
	Title         string      `json:"title"`
	Start         time.Time   `json:"start"`
	End           time.Time   `json:"end"`
	Duration      int         `json:"duration"`
	Priority      any         `json:"priority"`
	Class         *EventClass `json:"class,omitempty"`
	Completed     bool        `json:"completed"`
	TaskID        string      `json:"task_id"`
	TaskDueDate   string      `json:"task_due_date"`
	TaskEstimated any         `json:"task_estimated_time"`
}

// ToCalendarEvents maps sessions to calendar events. End is start plus the
// session duration; sessions for the same task are independent events and
// need not be contiguous or same-length.
func ToCalendarEvents(sessions []schedule.Session) []CalendarEvent {
	events := make([]CalendarEvent, 0, len(sessions))
	for _, s := range sessions {
		ev := CalendarEvent{
			ID:            fmt.Sprintf("%s-%s", s.TaskID, s.Date.Format("2006-01-02")),
			Title:         s.OriginalTask.Title,
			Start:         s.Date,
			End:           s.Date.Add(time.Duration(s.Duration) * time.Minute),
			Duration:      s.Duration,
			Priority:      s.OriginalTask.Priority,
			Completed:     s.Completed,
			TaskID:        s.TaskID,
			TaskDueDate:   s.OriginalTask.DueDate,
			TaskEstimated: s.OriginalTask.EstimatedTime,
		}
		if c := s.OriginalTask.Class; c != nil {
			ev.Class = &EventClass{Name: c.Name, Color: c.Color}
		}
		events = append(events, ev)
	}
	return events
}
