package task

import (
	"time"

	"github.com/jinzhu/copier"
	"github.com/reusedev/prompt-hub/internal/modules/genapi"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

func (s Status) String() string {
	return string(s)
}

// Terminal states receive no further network activity.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Task is one image-generation request and its lifecycle record. ID is local
// and stable; RemoteJobID is assigned by the provider and is non-empty once
// the task leaves pending.
type Task struct {
	ID             string    `json:"id"`
	RemoteJobID    string    `json:"remote_job_id"`
	Prompt         string    `json:"prompt"`
	Model          string    `json:"model"`
	Status         Status    `json:"status"`
	ResultImageURL string    `json:"result_image_url,omitempty"`
	ResultImageB64 string    `json:"result_image_b64,omitempty"`
	ErrorMessage   string    `json:"error_message,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (t *Task) DeepCopy() *Task {
	newT := Task{}
	copier.CopyWithOption(&newT, t, copier.Option{
		DeepCopy: true,
	})
	return &newT
}

// applyPoll folds one normalized status response into the task. Returns
// whether anything changed. Result fields only move from empty to non-empty;
// a later response missing a field never clears an earlier value.
func (t *Task) applyPoll(ret genapi.PollResult, now time.Time) bool {
	switch ret.Status {
	case genapi.StatusSucceeded:
		t.Status = StatusCompleted
		if ret.URL != "" {
			t.ResultImageURL = ret.URL
		}
		if ret.B64 != "" {
			t.ResultImageB64 = ret.B64
		}
		t.ErrorMessage = ""
		t.UpdatedAt = now
		return true
	case genapi.StatusFailed:
		t.Status = StatusFailed
		t.ErrorMessage = ret.Message
		t.UpdatedAt = now
		return true
	default:
		// Running or unrecognized: leave the task untouched this cycle.
		return false
	}
}

func (t *Task) failTimeout(now time.Time) {
	t.Status = StatusFailed
	t.ErrorMessage = TimeoutMessage
	t.UpdatedAt = now
}
