package genapi

import (
	"strings"

	jsoniter "github.com/json-iterator/go"
)

// Normalize maps one provider task-status body to a PollResult. It is a pure
// function of the body so the full matrix of provider shapes stays testable.
//
// Status is read from a flat "status" field, then a flat "task_status" field,
// then a nested "output.task_status", all case-insensitive. A body matching
// none of the vocabulary yields StatusUnknown so an in-flight job is never
// failed over an unrecognized status string.
func Normalize(body []byte) PollResult {
	status := classifyStatus(jsoniter.Get(body, "status").ToString())
	if status == StatusUnknown {
		status = classifyStatus(jsoniter.Get(body, "task_status").ToString())
	}
	if status == StatusUnknown {
		status = classifyStatus(jsoniter.Get(body, "output", "task_status").ToString())
	}

	ret := PollResult{Status: status}
	switch status {
	case StatusSucceeded:
		ret.URL, ret.B64, _ = ExtractResult(body)
	case StatusFailed:
		ret.Message = extractFailureMessage(body)
	}
	return ret
}

func classifyStatus(s string) Status {
	switch strings.ToLower(s) {
	case "completed", "success", "succeeded", "succeed":
		return StatusSucceeded
	case "failed", "error":
		return StatusFailed
	case "pending", "processing", "running":
		return StatusRunning
	default:
		return StatusUnknown
	}
}

func extractFailureMessage(body []byte) string {
	if msg := jsoniter.Get(body, "output", "message").ToString(); msg != "" {
		return msg
	}
	if msg := jsoniter.Get(body, "message").ToString(); msg != "" {
		return msg
	}
	if msg := jsoniter.Get(body, "error", "message").ToString(); msg != "" {
		return msg
	}
	if errField := jsoniter.Get(body, "error"); errField.ValueType() == jsoniter.StringValue {
		if msg := errField.ToString(); msg != "" {
			return msg
		}
	}
	return "generation failed"
}
