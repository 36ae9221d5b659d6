package request

type SubmitTask struct {
	Prompt string `json:"prompt" binding:"required"`
}
