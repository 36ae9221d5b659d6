package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/reusedev/prompt-hub/internal/modules/genapi"
	"github.com/reusedev/prompt-hub/internal/modules/logs"
	"github.com/reusedev/prompt-hub/internal/service/http/response"
)

func GetApiConfig(c *gin.Context) {
	cfg, _, err := taskEngine.ApiConfig()
	if err != nil {
		logs.Logger.Err(err).Msg("load api config")
		c.JSON(http.StatusInternalServerError, response.InternalError)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithData(cfg))
}

func SaveApiConfig(c *gin.Context) {
	var cfg genapi.ApiConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, response.ParamError)
		return
	}
	if err := taskEngine.SaveApiConfig(cfg); err != nil {
		logs.Logger.Err(err).Msg("save api config")
		c.JSON(http.StatusInternalServerError, response.InternalError)
		return
	}
	c.JSON(http.StatusOK, response.Success())
}

func TestApiConfig(c *gin.Context) {
	cfg, _, err := taskEngine.ApiConfig()
	if err != nil {
		logs.Logger.Err(err).Msg("load api config")
		c.JSON(http.StatusInternalServerError, response.InternalError)
		return
	}
	ok, message := genapi.NewClient(cfg).TestConnection(c.Request.Context())
	c.JSON(http.StatusOK, response.SuccessWithData(gin.H{"ok": ok, "message": message}))
}
