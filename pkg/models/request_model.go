package models

import (
	"time"

	"github.com/lib/pq"
)

// TranslationRequest is one row of the request registry. Only metadata about
// the run is kept, the extracted and translated text never leave the process.
type TranslationRequest struct {
	ID               int            `json:"id" db:"id"`
	Status           TaskStatus     `json:"status" db:"status"`
	Languages        pq.StringArray `json:"languages" db:"languages"`
	DetectedLanguage string         `json:"detected_language" db:"detected_language"`
	DestLanguage     string         `json:"dest_language" db:"dest_language"`
	Failure          string         `json:"failure" db:"failure"`
	ImageKey         string         `json:"image_key" db:"image_key"`
	CreatedAt        time.Time      `json:"created_at" db:"created_at"`
}

type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskCompleted TaskStatus = "completed"
	TaskDegraded  TaskStatus = "degraded" //translated text is the error sentinel
	TaskFailed    TaskStatus = "failed"
)
