package tasks

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/tabbed/pqtype"
)

const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

const (
	TypeVideoRender = "video_render"
	TypeUploadVideo = "upload_video"
)

// Task is one unit of queued pipeline work tied to a company or a lead.
type Task struct {
	ID               int64
	CompanyID        sql.NullInt64
	StructuredLeadID sql.NullInt64
	Type             string
	Status           string
	InstanceID       sql.NullString
	ResultData       pqtype.NullRawMessage
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ResultData is the documented shape of the task result payload.
// Unknown extra keys in stored payloads are tolerated on read.
type ResultData struct {
	OutputFilename string `json:"output_filename,omitempty"`
	ConfigUsed     string `json:"config_used,omitempty"`
	RenderedFile   string `json:"rendered_file,omitempty"`
	DriveLink      string `json:"drive_link,omitempty"`
	Error          string `json:"error,omitempty"`
}

func (rd ResultData) marshal() (pqtype.NullRawMessage, error) {
	b, err := json.Marshal(rd)
	if err != nil {
		return pqtype.NullRawMessage{}, err
	}
	return pqtype.NullRawMessage{RawMessage: b, Valid: true}, nil
}

// Result decodes the task's stored payload. A task with no payload yet
// decodes to the zero value.
func (t *Task) Result() (ResultData, error) {
	var rd ResultData
	if !t.ResultData.Valid {
		return rd, nil
	}
	err := json.Unmarshal(t.ResultData.RawMessage, &rd)
	return rd, err
}

// Terminal reports whether the task reached a final state.
func (t *Task) Terminal() bool {
	return t.Status == StatusCompleted || t.Status == StatusFailed
}

// typePriority orders eligible tasks for claiming: finishing an already
// rendered video beats starting a new render, unknown types come last.
const typePriority = `CASE task_type WHEN 'upload_video' THEN 0 WHEN 'video_render' THEN 1 ELSE 2 END`
