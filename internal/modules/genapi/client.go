package genapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/reusedev/prompt-hub/internal/consts"
	"github.com/reusedev/prompt-hub/internal/modules/http_client"
	"github.com/reusedev/prompt-hub/internal/modules/logs"
	"github.com/reusedev/prompt-hub/tools"
)

// Client talks to one OpenAI-compatible image-generation provider.
type Client struct {
	cfg    ApiConfig
	client *http_client.HttpClient
}

func NewClient(cfg ApiConfig) *Client {
	return &Client{
		cfg:    cfg,
		client: http_client.New(),
	}
}

func (c *Client) options(ctx context.Context, extra ...http_client.RequestOption) []http_client.RequestOption {
	opts := []http_client.RequestOption{
		http_client.WithContext(ctx),
		http_client.WithHeader("Authorization", "Bearer "+c.cfg.APIKey),
	}
	for k, v := range c.cfg.Headers {
		opts = append(opts, http_client.WithHeader(k, v))
	}
	return append(opts, extra...)
}

// Submit issues one generation request and classifies the response. Transport
// and provider failures land in the result, not in the error: a failed
// submission is a displayable outcome. The error return is reserved for
// request construction problems.
func (c *Client) Submit(ctx context.Context, prompt string) (SubmitResult, error) {
	body := map[string]any{
		"model":           c.cfg.Model,
		"prompt":          prompt,
		"n":               1,
		"response_format": "url",
	}
	req, err := c.client.NewRequest(
		http.MethodPost,
		tools.FullURL(c.cfg.BaseURL, consts.GenerationsPath),
		c.options(ctx,
			http_client.WithHeader("Content-Type", "application/json"),
			http_client.WithBody(body),
		)...,
	)
	if err != nil {
		return SubmitResult{}, err
	}
	reqAt := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return SubmitResult{Failed: true, Message: tools.Truncate(err.Error(), consts.ErrorBodyLimit)}, nil
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return SubmitResult{Failed: true, Message: tools.Truncate(err.Error(), consts.ErrorBodyLimit)}, nil
	}
	logs.Logger.Info().
		Str("model", c.cfg.Model).
		Str("path", consts.GenerationsPath).
		Str("method", req.Method).
		Int("status_code", resp.StatusCode).
		Dur("req_consume_ms", time.Since(reqAt)).
		Msg("generation request")
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return SubmitResult{
			Failed:  true,
			Message: fmt.Sprintf("%s: %s", resp.Status, tools.Truncate(string(respBody), consts.ErrorBodyLimit)),
		}, nil
	}
	return classifySubmitBody(respBody), nil
}

// classifySubmitBody maps a 2xx submission body to its outcome: an async job
// id, a synchronous result, or a malformed-response failure.
func classifySubmitBody(body []byte) SubmitResult {
	var s struct {
		TaskID string `json:"task_id"`
		Data   []struct {
			URL     string `json:"url,omitempty"`
			B64JSON string `json:"b64_json,omitempty"`
			TaskID  string `json:"task_id,omitempty"`
		} `json:"data"`
	}
	if err := jsoniter.Unmarshal(body, &s); err != nil {
		return SubmitResult{Failed: true, Message: "malformed response"}
	}
	for _, v := range s.Data {
		if v.URL != "" || v.B64JSON != "" {
			return SubmitResult{URL: v.URL, B64: v.B64JSON, ResultID: v.TaskID}
		}
	}
	if s.TaskID != "" {
		return SubmitResult{JobID: s.TaskID}
	}
	return SubmitResult{Failed: true, Message: "malformed response"}
}

// QueryTask fetches and normalizes one remote job's status. Any transport
// error or non-2xx response is returned as an error; callers treat it as "no
// update this cycle", never as a task failure.
func (c *Client) QueryTask(ctx context.Context, jobID string) (PollResult, error) {
	req, err := c.client.NewRequest(
		http.MethodGet,
		tools.FullURL(c.cfg.BaseURL, consts.TasksPath+"/"+jobID),
		c.options(ctx, http_client.WithHeader(consts.TaskTypeHeader, consts.TaskTypeImage))...,
	)
	if err != nil {
		return PollResult{}, err
	}
	reqAt := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return PollResult{}, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return PollResult{}, err
	}
	logs.Logger.Info().
		Str("job_id", jobID).
		Str("method", req.Method).
		Int("status_code", resp.StatusCode).
		Dur("req_consume_ms", time.Since(reqAt)).
		Msg("task status request")
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return PollResult{}, fmt.Errorf("task status %s: %s", resp.Status, tools.Truncate(string(body), consts.ErrorBodyLimit))
	}
	ret := Normalize(body)
	if ret.Status == StatusUnknown {
		logs.Logger.Warn().
			Str("job_id", jobID).
			Str("body", tools.Truncate(string(body), consts.ErrorBodyLimit)).
			Msg("unrecognized task status")
	}
	return ret, nil
}

// TestConnection validates the configuration against the models endpoint.
func (c *Client) TestConnection(ctx context.Context) (bool, string) {
	if err := c.cfg.Verify(); err != nil {
		return false, err.Error()
	}
	req, err := c.client.NewRequest(
		http.MethodGet,
		tools.FullURL(c.cfg.BaseURL, consts.ModelsPath),
		c.options(ctx)...,
	)
	if err != nil {
		return false, err.Error()
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return false, err.Error()
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return false, fmt.Sprintf("%s: %s", resp.Status, tools.Truncate(string(body), consts.ErrorBodyLimit))
	}
	return true, "connection ok"
}
