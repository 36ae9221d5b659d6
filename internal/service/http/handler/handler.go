package handler

import (
	"github.com/reusedev/prompt-hub/internal/modules/prompt"
	"github.com/reusedev/prompt-hub/internal/modules/task"
)

var (
	taskEngine    *task.Engine
	promptManager *prompt.Manager
)

func Init(e *task.Engine, m *prompt.Manager) {
	taskEngine = e
	promptManager = m
}
