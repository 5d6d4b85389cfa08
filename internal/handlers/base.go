package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"blogicum/internal/middleware"
	"blogicum/internal/services"

	"github.com/gin-gonic/gin"
)

// Render 注入当前用户与路径等公共变量
func Render(c *gin.Context, code int, name string, obj gin.H) {
	if obj == nil {
		obj = gin.H{}
	}

	// CurrentUser 即使未登录也写入（nil），模板中可直接判断
	obj["CurrentUser"] = middleware.CurrentUser(c)
	obj["CurrentPath"] = c.Request.URL.Path

	c.HTML(code, name, obj)
}

// RenderError 错误页
func RenderError(c *gin.Context, code int, message string) {
	Render(c, code, "error.html", gin.H{"Code": code, "Error": message})
}

// NotFound 404 页面，同时作为 NoRoute 处理器
func NotFound(c *gin.Context) {
	RenderError(c, http.StatusNotFound, "页面不存在")
}

// handleServiceError 统一处理服务层错误：不存在 404，无权限回到文章详情，其余 500
func handleServiceError(c *gin.Context, err error, postID uint) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		NotFound(c)
	case errors.Is(err, services.ErrForbidden):
		c.Redirect(http.StatusFound, postURL(postID))
	default:
		_ = c.Error(err)
		RenderError(c, http.StatusInternalServerError, "服务器内部错误，请稍后再试")
	}
}

func postURL(id uint) string {
	return fmt.Sprintf("/posts/%d/", id)
}

func profileURL(username string) string {
	return "/profile/" + url.PathEscape(username) + "/"
}
