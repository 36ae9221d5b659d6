package consts

import "time"

const (
	GenerationsPath = "/v1/images/generations"
	TasksPath       = "/v1/tasks"
	ModelsPath      = "/v1/models"

	// The task-status endpoint expects this header regardless of provider.
	TaskTypeHeader = "X-ModelScope-Task-Type"
	TaskTypeImage  = "image_generation"
)

const (
	PollInterval = 3 * time.Second
	TaskTimeout  = 5 * time.Minute

	// Error bodies are truncated before landing in a task record.
	ErrorBodyLimit = 200
)

// Logical keys of the persisted store.
const (
	KeyApiConfig  = "gen_api_config"
	KeyTasks      = "gen_tasks"
	KeyPrompts    = "prompts"
	KeyCategories = "categories"
	KeyWords      = "words"
	KeyTemplates  = "templates"
)
