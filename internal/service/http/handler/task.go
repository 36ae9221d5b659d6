package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/reusedev/prompt-hub/internal/modules/logs"
	"github.com/reusedev/prompt-hub/internal/service/http/handler/request"
	"github.com/reusedev/prompt-hub/internal/service/http/response"
)

func SubmitTask(c *gin.Context) {
	form := request.SubmitTask{}
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, response.ParamError)
		return
	}
	t, err := taskEngine.Submit(form.Prompt)
	if err != nil {
		// Precondition failure: the config must be fixed before retrying.
		c.JSON(http.StatusBadRequest, response.ConfigError(err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithData(t))
}

func ListTasks(c *gin.Context) {
	c.JSON(http.StatusOK, response.SuccessWithData(taskEngine.Store().Snapshot()))
}

func RefreshTask(c *gin.Context) {
	t, err := taskEngine.Refresh(c.Param("id"))
	if err != nil {
		logs.Logger.Warn().Err(err).Str("task_id", c.Param("id")).Msg("manual refresh failed")
		c.JSON(http.StatusBadRequest, response.ConfigError(err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithData(t))
}

func DeleteTask(c *gin.Context) {
	if err := taskEngine.Delete(c.Param("id")); err != nil {
		logs.Logger.Err(err).Msg("delete task")
		c.JSON(http.StatusInternalServerError, response.InternalError)
		return
	}
	c.JSON(http.StatusOK, response.Success())
}

func ClearFinishedTasks(c *gin.Context) {
	removed, err := taskEngine.ClearFinished()
	if err != nil {
		logs.Logger.Err(err).Msg("clear finished tasks")
		c.JSON(http.StatusInternalServerError, response.InternalError)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithData(gin.H{"removed": removed}))
}
