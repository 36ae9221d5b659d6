package genapi

import "fmt"

// ApiConfig is the user-maintained provider configuration. It is loaded from
// the persisted store at startup and written back on explicit save.
type ApiConfig struct {
	BaseURL string            `json:"base_url"`
	APIKey  string            `json:"api_key"`
	Model   string            `json:"model"`
	Enabled bool              `json:"enabled"`
	Headers map[string]string `json:"headers,omitempty"`
}

func (c ApiConfig) Verify() error {
	if !c.Enabled {
		return fmt.Errorf("image generation is disabled")
	}
	if c.BaseURL == "" {
		return fmt.Errorf("base_url must be set")
	}
	if c.APIKey == "" {
		return fmt.Errorf("api_key must be set")
	}
	if c.Model == "" {
		return fmt.Errorf("model must be set")
	}
	return nil
}

type Status string

const (
	// StatusUnknown means the response said nothing usable; callers leave
	// the task untouched for this cycle.
	StatusUnknown   Status = ""
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// PollResult is the normalized view of one task-status response.
type PollResult struct {
	Status  Status
	URL     string
	B64     string
	Message string
}

// SubmitResult classifies one generation-request response.
type SubmitResult struct {
	// JobID is set when the provider accepted the job asynchronously.
	JobID string
	// URL / B64 are set when the provider answered synchronously.
	URL string
	B64 string
	// ResultID is the id carried alongside a synchronous result, if any.
	ResultID string
	Failed   bool
	Message  string
}
