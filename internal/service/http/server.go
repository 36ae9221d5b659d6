package http

import (
	"github.com/gin-gonic/gin"
	"github.com/reusedev/prompt-hub/internal/service/http/handler"
	"github.com/reusedev/prompt-hub/internal/service/http/middleware"
)

func Serve(port string) {
	e := gin.New()
	initRouter(e)
	if err := e.Run(port); err != nil {
		panic(err)
	}
}

func initRouter(e *gin.Engine) {
	e.Use(gin.Recovery())
	e.Use(middleware.RequestLogger())
	v1 := e.Group("/v1")

	tasks := v1.Group("/tasks")
	{
		tasks.POST("", handler.SubmitTask)
		tasks.GET("", handler.ListTasks)
		tasks.POST("/clear-finished", handler.ClearFinishedTasks)
		tasks.POST("/:id/refresh", handler.RefreshTask)
		tasks.DELETE("/:id", handler.DeleteTask)
	}

	config := v1.Group("/config")
	{
		config.GET("", handler.GetApiConfig)
		config.PUT("", handler.SaveApiConfig)
		config.POST("/test", handler.TestApiConfig)
	}

	prompts := v1.Group("/prompts")
	{
		prompts.GET("", handler.ListPrompts)
		prompts.POST("", handler.CreatePrompt)
		prompts.GET("/search", handler.SearchPrompts)
		prompts.POST("/reorder", handler.ReorderPrompts)
		prompts.PUT("/:id", handler.UpdatePrompt)
		prompts.DELETE("/:id", handler.DeletePrompt)
		prompts.POST("/:id/favorite", handler.ToggleFavorite)
		prompts.POST("/:id/restore", handler.RestorePromptVersion)
	}

	categories := v1.Group("/categories")
	{
		categories.GET("", handler.ListCategories)
		categories.POST("", handler.CreateCategory)
		categories.PUT("/:id", handler.RenameCategory)
		categories.DELETE("/:id", handler.DeleteCategory)
	}

	words := v1.Group("/words")
	{
		words.GET("", handler.ListWords)
		words.POST("", handler.CreateWord)
		words.PUT("/:id", handler.UpdateWord)
		words.DELETE("/:id", handler.DeleteWord)
	}

	templates := v1.Group("/templates")
	{
		templates.GET("", handler.ListTemplates)
		templates.POST("", handler.CreateTemplate)
		templates.PUT("/:id", handler.UpdateTemplate)
		templates.DELETE("/:id", handler.DeleteTemplate)
		templates.POST("/:id/render", handler.RenderTemplate)
	}

	library := v1.Group("/library")
	{
		library.GET("/export", handler.ExportLibrary)
		library.POST("/import", handler.ImportLibrary)
	}
}
