package middleware

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"blogicum/internal/logger"
	"blogicum/internal/models"
	"blogicum/internal/policy"
	"blogicum/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	CurrentUserKey = "user"
	ViewerKey      = "viewer"
	// SessionUserKey 会话中保存的用户 ID
	SessionUserKey = "user_id"
	LoginPath      = "/auth/login/"
)

// LoadUser 从会话中取出当前用户，同时放入 policy.Viewer
func LoadUser(users *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		if userID, ok := session.Get(SessionUserKey).(uint); ok && userID != 0 {
			user, err := users.GetByID(userID)
			switch {
			case err == nil:
				c.Set(CurrentUserKey, user)
				c.Set(ViewerKey, policy.ViewerFor(user))
			case errors.Is(err, services.ErrNotFound):
				// 用户已被删除
				session.Delete(SessionUserKey)
				_ = session.Save()
			default:
				logger.Warnw("load_session_user_failed", "user_id", userID, "error", err)
			}
		}
		c.Next()
	}
}

// CurrentUser 当前登录用户，未登录返回 nil
func CurrentUser(c *gin.Context) *models.User {
	if value, ok := c.Get(CurrentUserKey); ok {
		if user, ok := value.(*models.User); ok {
			return user
		}
	}
	return nil
}

// CurrentViewer 当前访客身份，未登录为 policy.Anonymous
func CurrentViewer(c *gin.Context) policy.Viewer {
	if value, ok := c.Get(ViewerKey); ok {
		if viewer, ok := value.(policy.Viewer); ok {
			return viewer
		}
	}
	return policy.Anonymous
}

// AuthRequired 未登录时跳转登录页并带上 next
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			c.Redirect(http.StatusFound, LoginPath+"?next="+url.QueryEscape(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}
		c.Next()
	}
}

// Login 将用户写入会话
func Login(c *gin.Context, user *models.User) error {
	session := sessions.Default(c)
	session.Clear()
	session.Set(SessionUserKey, user.ID)
	return session.Save()
}

// Logout 清空会话
func Logout(c *gin.Context) error {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	return session.Save()
}

// SafeNext 只允许站内相对路径，其余返回 fallback
func SafeNext(next, fallback string) string {
	next = strings.TrimSpace(next)
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return fallback
	}
	parsed, err := url.Parse(next)
	if err != nil || parsed.IsAbs() || parsed.Host != "" {
		return fallback
	}
	return next
}
