package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/reusedev/prompt-hub/internal/modules/logs"
	"github.com/reusedev/prompt-hub/internal/modules/prompt"
	"github.com/reusedev/prompt-hub/internal/service/http/handler/request"
	"github.com/reusedev/prompt-hub/internal/service/http/response"
)

func ListPrompts(c *gin.Context) {
	c.JSON(http.StatusOK, response.SuccessWithData(promptManager.Prompts()))
}

func CreatePrompt(c *gin.Context) {
	form := request.CreatePrompt{}
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, response.ParamError)
		return
	}
	p, err := promptManager.CreatePrompt(form.Title, form.Content, form.CategoryID, form.Tags)
	if err != nil {
		logs.Logger.Err(err).Msg("create prompt")
		c.JSON(http.StatusInternalServerError, response.InternalError)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithData(p))
}

func UpdatePrompt(c *gin.Context) {
	form := request.UpdatePrompt{}
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, response.ParamError)
		return
	}
	p, err := promptManager.UpdatePrompt(c.Param("id"), form.Title, form.Content, form.CategoryID, form.Tags)
	if err != nil {
		c.JSON(http.StatusNotFound, response.NotFoundError)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithData(p))
}

func DeletePrompt(c *gin.Context) {
	if err := promptManager.DeletePrompt(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, response.NotFoundError)
		return
	}
	c.JSON(http.StatusOK, response.Success())
}

func ToggleFavorite(c *gin.Context) {
	favorite, err := promptManager.ToggleFavorite(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.NotFoundError)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithData(gin.H{"favorite": favorite}))
}

func ReorderPrompts(c *gin.Context) {
	form := request.ReorderPrompts{}
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, response.ParamError)
		return
	}
	if err := promptManager.Reorder(form.IDs); err != nil {
		logs.Logger.Err(err).Msg("reorder prompts")
		c.JSON(http.StatusInternalServerError, response.InternalError)
		return
	}
	c.JSON(http.StatusOK, response.Success())
}

func RestorePromptVersion(c *gin.Context) {
	form := request.RestoreVersion{}
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, response.ParamError)
		return
	}
	p, err := promptManager.RestoreVersion(c.Param("id"), form.Index)
	if err != nil {
		c.JSON(http.StatusNotFound, response.NotFoundError)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithData(p))
}

func SearchPrompts(c *gin.Context) {
	q := prompt.Query{}
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, response.ParamError)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithData(promptManager.Search(q)))
}

func ListCategories(c *gin.Context) {
	c.JSON(http.StatusOK, response.SuccessWithData(promptManager.Categories()))
}

func CreateCategory(c *gin.Context) {
	form := request.CreateCategory{}
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, response.ParamError)
		return
	}
	category, err := promptManager.CreateCategory(form.Name, form.ParentID)
	if err != nil {
		logs.Logger.Err(err).Msg("create category")
		c.JSON(http.StatusInternalServerError, response.InternalError)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithData(category))
}

func RenameCategory(c *gin.Context) {
	form := request.RenameCategory{}
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, response.ParamError)
		return
	}
	if err := promptManager.RenameCategory(c.Param("id"), form.Name); err != nil {
		c.JSON(http.StatusNotFound, response.NotFoundError)
		return
	}
	c.JSON(http.StatusOK, response.Success())
}

func DeleteCategory(c *gin.Context) {
	if err := promptManager.DeleteCategory(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, response.NotFoundError)
		return
	}
	c.JSON(http.StatusOK, response.Success())
}

func ListWords(c *gin.Context) {
	keyword := c.Query("keyword")
	if keyword != "" {
		c.JSON(http.StatusOK, response.SuccessWithData(promptManager.SearchWords(keyword)))
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithData(promptManager.Words()))
}

func CreateWord(c *gin.Context) {
	form := request.CreateWord{}
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, response.ParamError)
		return
	}
	w, err := promptManager.CreateWord(form.Text, form.Group)
	if err != nil {
		logs.Logger.Err(err).Msg("create word")
		c.JSON(http.StatusInternalServerError, response.InternalError)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithData(w))
}

func UpdateWord(c *gin.Context) {
	form := request.UpdateWord{}
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, response.ParamError)
		return
	}
	if err := promptManager.UpdateWord(c.Param("id"), form.Text, form.Group); err != nil {
		c.JSON(http.StatusNotFound, response.NotFoundError)
		return
	}
	c.JSON(http.StatusOK, response.Success())
}

func DeleteWord(c *gin.Context) {
	if err := promptManager.DeleteWord(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, response.NotFoundError)
		return
	}
	c.JSON(http.StatusOK, response.Success())
}

func ListTemplates(c *gin.Context) {
	c.JSON(http.StatusOK, response.SuccessWithData(promptManager.Templates()))
}

func CreateTemplate(c *gin.Context) {
	form := request.CreateTemplate{}
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, response.ParamError)
		return
	}
	t, err := promptManager.CreateTemplate(form.Name, form.Content)
	if err != nil {
		logs.Logger.Err(err).Msg("create template")
		c.JSON(http.StatusInternalServerError, response.InternalError)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithData(t))
}

func UpdateTemplate(c *gin.Context) {
	form := request.UpdateTemplate{}
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, response.ParamError)
		return
	}
	if err := promptManager.UpdateTemplate(c.Param("id"), form.Name, form.Content); err != nil {
		c.JSON(http.StatusNotFound, response.NotFoundError)
		return
	}
	c.JSON(http.StatusOK, response.Success())
}

func DeleteTemplate(c *gin.Context) {
	if err := promptManager.DeleteTemplate(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, response.NotFoundError)
		return
	}
	c.JSON(http.StatusOK, response.Success())
}

func RenderTemplate(c *gin.Context) {
	form := request.RenderTemplate{}
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, response.ParamError)
		return
	}
	rendered, err := promptManager.Render(c.Param("id"), form.Values)
	if err != nil {
		c.JSON(http.StatusNotFound, response.NotFoundError)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithData(gin.H{"content": rendered}))
}

func ExportLibrary(c *gin.Context) {
	c.JSON(http.StatusOK, response.SuccessWithData(promptManager.Export()))
}

func ImportLibrary(c *gin.Context) {
	var lib prompt.Library
	if err := c.ShouldBindJSON(&lib); err != nil {
		c.JSON(http.StatusBadRequest, response.ParamError)
		return
	}
	if err := promptManager.Import(&lib); err != nil {
		c.JSON(http.StatusBadRequest, response.ConfigError(err.Error()))
		return
	}
	c.JSON(http.StatusOK, response.Success())
}
