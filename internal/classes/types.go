package classes

import "time"

type Class struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Difficulty        int       `json:"difficulty"`
	TeacherName       string    `json:"teacher_name"`
	TeacherStrictness int       `json:"teacher_strictness"`
	Color             string    `json:"color,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}
