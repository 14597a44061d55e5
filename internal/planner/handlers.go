package planner

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"studyplan-backend/internal/analytics"
	"studyplan-backend/internal/auth"
	"studyplan-backend/internal/schedule"
	"studyplan-backend/internal/tasks"
)

// loadPendingTasks pulls the user's not-yet-completed tasks with their class
// context, in the loose shape the engine validates.
func loadPendingTasks(dbx *sql.DB, uid int) ([]schedule.Task, error) {
	rows, err := dbx.Query(`
		SELECT
			t.id, t.title, t.description, t.due_date, t.priority, t.estimated_time,
			COALESCE(t.class_id, ''),
			c.name, c.difficulty, c.teacher_strictness, c.color
		FROM tasks t
		LEFT JOIN classes c ON c.id = t.class_id
		WHERE t.user_id = $1 AND t.status != $2
		ORDER BY t.due_date ASC
	`, uid, tasks.StatusCompleted)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []schedule.Task
	for rows.Next() {
		var (
			task       schedule.Task
			dueDate    time.Time
			priority   int
			estimated  float64
			name       sql.NullString
			difficulty sql.NullInt64
			strictness sql.NullInt64
			color      sql.NullString
		)
		if err := rows.Scan(
			&task.ID, &task.Title, &task.Description, &dueDate, &priority, &estimated,
			&task.ClassID,
			&name, &difficulty, &strictness, &color,
		); err != nil {
			return nil, err
		}
		task.DueDate = dueDate.UTC().Format(time.RFC3339)
		task.Priority = float64(priority)
		task.EstimatedTime = estimated
		if name.Valid {
			task.Class = &schedule.Class{
				Name:              name.String,
				Difficulty:        float64(difficulty.Int64),
				TeacherStrictness: float64(strictness.Int64),
				Color:             color.String,
			}
		}
		result = append(result, task)
	}
	return result, rows.Err()
}

type scheduleResponse struct {
	Sessions []schedule.Session     `json:"sessions"`
	Skipped  []schedule.SkippedTask `json:"skipped,omitempty"`
}

// GetScheduleHandler computes a fresh plan for the user's pending tasks.
// Every call recomputes from scratch with today = now.
func GetScheduleHandler(dbx *sql.DB, s *schedule.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		pending, err := loadPendingTasks(dbx, uid)
		if err != nil {
			http.Error(w, "db error: "+err.Error(), 500)
			return
		}

		sessions, skipped := s.ScheduleAll(r.Context(), pending, time.Now())

		// analytics: schedule_computed
		{
			env := analytics.FromRequest(r)
			env.UserID = uid
			props := map[string]any{
				"tasks":    len(pending),
				"sessions": len(sessions),
				"skipped":  len(skipped),
			}
			_ = analytics.Log(r.Context(), dbx, env, "schedule_computed", props, analytics.SourceEventKeyFromRequest(r))
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(scheduleResponse{Sessions: sessions, Skipped: skipped})
	}
}

// GetDayHandler returns the sessions falling on one date (?date=YYYY-MM-DD,
// defaults to today).
func GetDayHandler(dbx *sql.DB, s *schedule.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		date := time.Now()
		if q := r.URL.Query().Get("date"); q != "" {
			var err error
			date, err = time.Parse("2006-01-02", q)
			if err != nil {
				http.Error(w, "invalid date, want YYYY-MM-DD", http.StatusBadRequest)
				return
			}
		}

		pending, err := loadPendingTasks(dbx, uid)
		if err != nil {
			http.Error(w, "db error: "+err.Error(), 500)
			return
		}

		sessions, _ := s.ScheduleAll(r.Context(), pending, time.Now())

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(schedule.SessionsOnDate(sessions, date))
	}
}

// GetEventsHandler returns the plan as calendar events for the dashboard.
func GetEventsHandler(dbx *sql.DB, s *schedule.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		pending, err := loadPendingTasks(dbx, uid)
		if err != nil {
			http.Error(w, "db error: "+err.Error(), 500)
			return
		}

		sessions, _ := s.ScheduleAll(r.Context(), pending, time.Now())

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(ToCalendarEvents(sessions))
	}
}

// CompleteSessionHandler marks one session done and returns the freshly
// recomputed plan for everything still pending.
func CompleteSessionHandler(dbx *sql.DB, s *schedule.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var body struct {
			TaskID string `json:"task_id"`
			Date   string `json:"date"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if body.TaskID == "" || body.Date == "" {
			http.Error(w, "task_id & date required", http.StatusBadRequest)
			return
		}
		date, err := time.Parse("2006-01-02", body.Date)
		if err != nil {
			http.Error(w, "invalid date, want YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		pending, err := loadPendingTasks(dbx, uid)
		if err != nil {
			http.Error(w, "db error: "+err.Error(), 500)
			return
		}

		now := time.Now()
		sessions, _ := s.ScheduleAll(r.Context(), pending, now)
		plan := s.MarkCompleted(r.Context(), body.TaskID, date, sessions, now)

		// analytics: session_completed
		{
			env := analytics.FromRequest(r)
			env.UserID = uid
			props := map[string]any{
				"task_id": body.TaskID,
				"date":    body.Date,
			}
			_ = analytics.Log(r.Context(), dbx, env, "session_completed", props, analytics.SourceEventKeyFromRequest(r))
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(scheduleResponse{Sessions: plan})
	}
}
