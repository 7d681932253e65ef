package models

import "time"

// Certificate — выданный сертификат о прохождении курса.
// File — ссылка на PDF (абсолютная или относительно BaseURL).
type Certificate struct {
	ID          int64     `json:"id"`
	CourseID    int64     `json:"course"`
	CourseTitle string    `json:"course_title,omitempty"`
	File        string    `json:"file,omitempty"`
	IssuedAt    time.Time `json:"issued_at"`
}
