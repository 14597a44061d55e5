package classes

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"studyplan-backend/internal/analytics"
	"studyplan-backend/internal/auth"
)

func ListClassesHandler(dbx *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		rows, err := dbx.Query(`
			SELECT id, name, difficulty, teacher_name, teacher_strictness, color, created_at
			FROM classes
			WHERE user_id = $1
			ORDER BY name ASC
		`, uid)
		if err != nil {
			http.Error(w, "db error: "+err.Error(), 500)
			return
		}
		defer rows.Close()

		var result []Class
		for rows.Next() {
			var c Class
			if err := rows.Scan(&c.ID, &c.Name, &c.Difficulty, &c.TeacherName, &c.TeacherStrictness, &c.Color, &c.CreatedAt); err != nil {
				http.Error(w, "scan error: "+err.Error(), 500)
				return
			}
			result = append(result, c)
		}
		if err := rows.Err(); err != nil {
			http.Error(w, "db rows error", 500)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(result)
	}
}

func CreateClassHandler(dbx *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var body struct {
			Name              string `json:"name"`
			Difficulty        int    `json:"difficulty"`
			TeacherName       string `json:"teacher_name"`
			TeacherStrictness int    `json:"teacher_strictness"`
			Color             string `json:"color"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(body.Name) == "" || body.TeacherName == "" {
			http.Error(w, "name & teacher_name required", http.StatusBadRequest)
			return
		}
		if body.Difficulty < 1 || body.Difficulty > 10 || body.TeacherStrictness < 1 || body.TeacherStrictness > 10 {
			http.Error(w, "difficulty and teacher_strictness must be 1-10", http.StatusBadRequest)
			return
		}

		c := Class{
			ID:                uuid.NewString(),
			Name:              strings.TrimSpace(body.Name),
			Difficulty:        body.Difficulty,
			TeacherName:       body.TeacherName,
			TeacherStrictness: body.TeacherStrictness,
			Color:             body.Color,
		}

		err := dbx.QueryRow(`
			INSERT INTO classes (id, user_id, name, difficulty, teacher_name, teacher_strictness, color)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING created_at
		`, c.ID, uid, c.Name, c.Difficulty, c.TeacherName, c.TeacherStrictness, c.Color).Scan(&c.CreatedAt)
		if err != nil {
			http.Error(w, "db error: "+err.Error(), 500)
			return
		}

		// analytics: class_created
		{
			env := analytics.FromRequest(r)
			env.UserID = uid
			props := map[string]any{
				"class_id":   c.ID,
				"difficulty": c.Difficulty,
				"strictness": c.TeacherStrictness,
			}
			_ = analytics.Log(r.Context(), dbx, env, "class_created", props, analytics.SourceEventKeyFromRequest(r))
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(c)
	}
}

func UpdateClassHandler(dbx *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		id := strings.TrimPrefix(r.URL.Path, "/classes/")
		if id == "" {
			http.Error(w, "class id required", http.StatusBadRequest)
			return
		}

		var body struct {
			Name              string `json:"name"`
			Difficulty        int    `json:"difficulty"`
			TeacherName       string `json:"teacher_name"`
			TeacherStrictness int    `json:"teacher_strictness"`
			Color             string `json:"color"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if body.Name == "" || body.TeacherName == "" || body.Difficulty == 0 || body.TeacherStrictness == 0 {
			http.Error(w, "missing required fields", http.StatusBadRequest)
			return
		}

		res, err := dbx.Exec(`
			UPDATE classes
			SET name=$1, difficulty=$2, teacher_name=$3, teacher_strictness=$4, color=$5
			WHERE id=$6 AND user_id=$7
		`, body.Name, body.Difficulty, body.TeacherName, body.TeacherStrictness, body.Color, id, uid)
		if err != nil {
			http.Error(w, "db error: "+err.Error(), 500)
			return
		}
		affected, _ := res.RowsAffected()
		if affected == 0 {
			http.Error(w, "class not found", http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}
}

func DeleteClassHandler(dbx *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		id := strings.TrimPrefix(r.URL.Path, "/classes/")
		if id == "" {
			http.Error(w, "class id required", http.StatusBadRequest)
			return
		}

		tx, err := dbx.Begin()
		if err != nil {
			http.Error(w, "db begin failed", 500)
			return
		}
		defer tx.Rollback()

		// tasks of this class go with it
		if _, err := tx.Exec(`DELETE FROM tasks WHERE class_id=$1 AND user_id=$2`, id, uid); err != nil {
			http.Error(w, "delete tasks failed", 500)
			return
		}

		res, err := tx.Exec(`DELETE FROM classes WHERE id=$1 AND user_id=$2`, id, uid)
		if err != nil {
			http.Error(w, "db error: "+err.Error(), 500)
			return
		}
		affected, _ := res.RowsAffected()
		if affected == 0 {
			http.Error(w, "class not found", http.StatusNotFound)
			return
		}

		if err := tx.Commit(); err != nil {
			http.Error(w, "db commit failed", 500)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
