package tasks

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"studyplan-backend/internal/analytics"
	"studyplan-backend/internal/auth"
)

// parsePriority accepts the 1-5 scale directly or the form labels.
func parsePriority(v any) (int, bool) {
	switch t := v.(type) {
	case float64:
		p := int(t)
		return p, p >= 1 && p <= 5
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "low":
			return 1, true
		case "medium":
			return 3, true
		case "high":
			return 5, true
		}
		if p, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
			return p, p >= 1 && p <= 5
		}
	}
	return 0, false
}

// parseEstimated accepts hours as a number or a numeric string.
func parseEstimated(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, t > 0
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil && f > 0
	}
	return 0, false
}

const taskColumns = `
	t.id, t.title, t.description, t.due_date, t.priority, t.estimated_time,
	t.status, COALESCE(t.class_id, ''),
	c.name, c.difficulty, c.teacher_strictness, c.color,
	t.created_at
`

func scanTask(scan func(...any) error) (Task, error) {
	var (
		t          Task
		name       sql.NullString
		difficulty sql.NullInt64
		strictness sql.NullInt64
		color      sql.NullString
	)
	err := scan(
		&t.ID, &t.Title, &t.Description, &t.DueDate, &t.Priority, &t.EstimatedTime,
		&t.Status, &t.ClassID,
		&name, &difficulty, &strictness, &color,
		&t.CreatedAt,
	)
	if err != nil {
		return Task{}, err
	}
	if name.Valid {
		t.Class = &ClassInfo{
			Name:              name.String,
			Difficulty:        int(difficulty.Int64),
			TeacherStrictness: int(strictness.Int64),
			Color:             color.String,
		}
	}
	return t, nil
}

// -------------------------------
// HANDLERS
// -------------------------------

func GetTasksHandler(dbx *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		rows, err := dbx.Query(`
			SELECT `+taskColumns+`
			FROM tasks t
			LEFT JOIN classes c ON c.id = t.class_id
			WHERE t.user_id = $1
			ORDER BY t.due_date ASC
		`, uid)
		if err != nil {
			http.Error(w, "db error: "+err.Error(), 500)
			return
		}
		defer rows.Close()

		var result []Task
		for rows.Next() {
			t, err := scanTask(rows.Scan)
			if err != nil {
				http.Error(w, "scan error: "+err.Error(), 500)
				return
			}
			result = append(result, t)
		}
		if err := rows.Err(); err != nil {
			http.Error(w, "db rows error", 500)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(result)
	}
}

func fetchTask(dbx *sql.DB, uid int, id string) (Task, error) {
	row := dbx.QueryRow(`
		SELECT `+taskColumns+`
		FROM tasks t
		LEFT JOIN classes c ON c.id = t.class_id
		WHERE t.user_id = $1 AND t.id = $2
	`, uid, id)
	return scanTask(row.Scan)
}

func CreateTaskHandler(dbx *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var body struct {
			Title         string `json:"title"`
			Description   string `json:"description"`
			DueDate       string `json:"due_date"`
			Priority      any    `json:"priority"`
			EstimatedTime any    `json:"estimated_time"`
			ClassID       string `json:"class_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		if strings.TrimSpace(body.Title) == "" || body.DueDate == "" {
			http.Error(w, "title & due_date required", http.StatusBadRequest)
			return
		}
		dueDate, err := time.Parse(time.RFC3339, body.DueDate)
		if err != nil {
			dueDate, err = time.Parse("2006-01-02", body.DueDate)
		}
		if err != nil {
			http.Error(w, "invalid due_date", http.StatusBadRequest)
			return
		}
		priority, ok2 := parsePriority(body.Priority)
		if !ok2 {
			http.Error(w, "priority must be 1-5 or low/medium/high", http.StatusBadRequest)
			return
		}
		estimated, ok2 := parseEstimated(body.EstimatedTime)
		if !ok2 {
			http.Error(w, "estimated_time must be positive hours", http.StatusBadRequest)
			return
		}

		// class must belong to the user
		var classID sql.NullString
		if body.ClassID != "" {
			var one int
			if err := dbx.QueryRow(`SELECT 1 FROM classes WHERE id=$1 AND user_id=$2`, body.ClassID, uid).Scan(&one); err != nil {
				http.Error(w, "class not found", http.StatusNotFound)
				return
			}
			classID = sql.NullString{String: body.ClassID, Valid: true}
		}

		id := uuid.NewString()
		_, err = dbx.Exec(`
			INSERT INTO tasks (id, user_id, class_id, title, description, due_date, priority, estimated_time)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, id, uid, classID, strings.TrimSpace(body.Title), body.Description, dueDate, priority, estimated)
		if err != nil {
			http.Error(w, "db error: "+err.Error(), 500)
			return
		}

		// analytics: task_created
		{
			env := analytics.FromRequest(r)
			env.UserID = uid
			props := map[string]any{
				"task_id":        id,
				"has_class":      classID.Valid,
				"priority":       priority,
				"estimated_time": estimated,
				"deadline_ts":    dueDate.Unix(),
			}
			_ = analytics.Log(r.Context(), dbx, env, "task_created", props, analytics.SourceEventKeyFromRequest(r))
		}

		full, err := fetchTask(dbx, uid, id)
		if err != nil {
			http.Error(w, "fetch error: "+err.Error(), 500)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(full)
	}
}

func UpdateTaskHandler(dbx *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		id := strings.TrimPrefix(r.URL.Path, "/tasks/")
		if id == "" {
			http.Error(w, "task id required", http.StatusBadRequest)
			return
		}

		var body struct {
			Title         string `json:"title"`
			Description   string `json:"description"`
			DueDate       string `json:"due_date"`
			Priority      any    `json:"priority"`
			EstimatedTime any    `json:"estimated_time"`
			ClassID       string `json:"class_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(body.Title) == "" || body.DueDate == "" {
			http.Error(w, "title & due_date required", http.StatusBadRequest)
			return
		}
		dueDate, err := time.Parse(time.RFC3339, body.DueDate)
		if err != nil {
			dueDate, err = time.Parse("2006-01-02", body.DueDate)
		}
		if err != nil {
			http.Error(w, "invalid due_date", http.StatusBadRequest)
			return
		}
		priority, ok2 := parsePriority(body.Priority)
		if !ok2 {
			http.Error(w, "priority must be 1-5 or low/medium/high", http.StatusBadRequest)
			return
		}
		estimated, ok2 := parseEstimated(body.EstimatedTime)
		if !ok2 {
			http.Error(w, "estimated_time must be positive hours", http.StatusBadRequest)
			return
		}

		var classID sql.NullString
		if body.ClassID != "" {
			var one int
			if err := dbx.QueryRow(`SELECT 1 FROM classes WHERE id=$1 AND user_id=$2`, body.ClassID, uid).Scan(&one); err != nil {
				http.Error(w, "class not found", http.StatusNotFound)
				return
			}
			classID = sql.NullString{String: body.ClassID, Valid: true}
		}

		res, err := dbx.Exec(`
			UPDATE tasks
			SET title=$1, description=$2, due_date=$3, priority=$4, estimated_time=$5, class_id=$6
			WHERE id=$7 AND user_id=$8
		`, strings.TrimSpace(body.Title), body.Description, dueDate, priority, estimated, classID, id, uid)
		if err != nil {
			http.Error(w, "db error: "+err.Error(), 500)
			return
		}
		affected, _ := res.RowsAffected()
		if affected == 0 {
			http.Error(w, "task not found", http.StatusNotFound)
			return
		}

		// analytics: task_updated
		{
			env := analytics.FromRequest(r)
			env.UserID = uid
			props := map[string]any{
				"task_id":  id,
				"priority": priority,
			}
			_ = analytics.Log(r.Context(), dbx, env, "task_updated", props, analytics.SourceEventKeyFromRequest(r))
		}

		full, err := fetchTask(dbx, uid, id)
		if err != nil {
			http.Error(w, "fetch error: "+err.Error(), 500)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(full)
	}
}

func DeleteTaskHandler(dbx *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		id := strings.TrimPrefix(r.URL.Path, "/tasks/")
		if id == "" {
			http.Error(w, "task id required", http.StatusBadRequest)
			return
		}

		res, err := dbx.Exec(`DELETE FROM tasks WHERE id=$1 AND user_id=$2`, id, uid)
		if err != nil {
			http.Error(w, "db error: "+err.Error(), 500)
			return
		}
		affected, _ := res.RowsAffected()
		if affected == 0 {
			http.Error(w, "task not found", http.StatusNotFound)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func SetTaskStatusHandler(dbx *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var body struct {
			TaskID string `json:"task_id"`
			Status string `json:"status"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if body.TaskID == "" {
			http.Error(w, "task_id required", http.StatusBadRequest)
			return
		}
		if !validStatus(body.Status) {
			http.Error(w, "invalid status", http.StatusBadRequest)
			return
		}

		var prevStatus string
		_ = dbx.QueryRow(`SELECT status FROM tasks WHERE id=$1 AND user_id=$2`, body.TaskID, uid).Scan(&prevStatus)

		res, err := dbx.Exec(`
			UPDATE tasks SET status=$1 WHERE id=$2 AND user_id=$3
		`, body.Status, body.TaskID, uid)
		if err != nil {
			http.Error(w, "db error: "+err.Error(), 500)
			return
		}
		affected, _ := res.RowsAffected()
		if affected == 0 {
			http.Error(w, "task not found", http.StatusNotFound)
			return
		}

		// analytics: task_completed / task_uncompleted
		if prevStatus != "" && prevStatus != body.Status {
			env := analytics.FromRequest(r)
			env.UserID = uid

			if prevStatus != StatusCompleted && body.Status == StatusCompleted {
				props := map[string]any{"task_id": body.TaskID}
				_ = analytics.Log(r.Context(), dbx, env, "task_completed", props, analytics.SourceEventKeyFromRequest(r))
			}
			if prevStatus == StatusCompleted && body.Status != StatusCompleted {
				props := map[string]any{"task_id": body.TaskID}
				_ = analytics.Log(r.Context(), dbx, env, "task_uncompleted", props, analytics.SourceEventKeyFromRequest(r))
			}
		}

		full, err := fetchTask(dbx, uid, body.TaskID)
		if err != nil {
			http.Error(w, "fetch error: "+err.Error(), 500)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(full)
	}
}
