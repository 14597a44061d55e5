package schedule

import (
	"context"
	"time"
)

func sameDate(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// SessionsOnDate filters a plan down to the sessions placed on one calendar
// date.
func SessionsOnDate(sessions []Session, date time.Time) []Session {
	var out []Session
	for _, s := range sessions {
		if sameDate(s.Date, date) {
			out = append(out, s)
		}
	}
	return out
}

// MarkCompleted flags the session matching taskID+date as completed, then
// rebuilds the whole plan from scratch over the originating tasks of the
// sessions that are still incomplete, starting from "today". Completing one
// slot of a multi-day task therefore replaces that task's entire remaining
// plan with a fresh distribution, it does not just drop the one slot.
// When nothing incomplete remains the flagged list is returned as is.
func (s *Scheduler) MarkCompleted(ctx context.Context, taskID string, date time.Time, sessions []Session, today time.Time) []Session {
	updated := make([]Session, len(sessions))
	copy(updated, sessions)
	for i := range updated {
		if updated[i].TaskID == taskID && sameDate(updated[i].Date, date) {
			updated[i].Completed = true
		}
	}

	// Recompute over the incomplete sessions' source tasks, one entry per
	// task regardless of how many sessions it still has.
	var (
		remaining []Task
		seen      = make(map[string]bool)
	)
	for _, sess := range updated {
		if sess.Completed || seen[sess.TaskID] {
			continue
		}
		seen[sess.TaskID] = true
		remaining = append(remaining, sess.OriginalTask)
	}

	if len(remaining) == 0 {
		return updated
	}

	plan, _ := s.ScheduleAll(ctx, remaining, today)
	return plan
}
