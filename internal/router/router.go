package router

import (
	"fmt"
	"net/http"
	"strings"

	"blogicum/internal/config"
	"blogicum/internal/handlers"
	"blogicum/internal/logger"
	"blogicum/internal/middleware"
	"blogicum/internal/repository"
	"blogicum/internal/services"
	"blogicum/internal/utils"
	"blogicum/internal/view"
	"blogicum/web"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Handlers 全部页面处理器
type Handlers struct {
	Blog    *handlers.BlogHandler
	Post    *handlers.PostHandler
	Comment *handlers.CommentHandler
	User    *handlers.UserHandler
	Auth    *handlers.AuthHandler
}

// Services 服务层依赖
type Services struct {
	Posts      *services.PostService
	Comments   *services.CommentService
	Users      *services.UserService
	Categories *services.CategoryService
	Captcha    *services.CaptchaService
}

// NewServices 基于数据库连接组装仓库与服务
func NewServices(cfg *config.Config, conn *gorm.DB) (*Services, error) {
	postRepo := repository.NewPostRepository(conn)
	commentRepo := repository.NewCommentRepository(conn)
	categoryRepo := repository.NewCategoryRepository(conn)
	locationRepo := repository.NewLocationRepository(conn)

	cache, err := utils.NewTTLCache[*services.Choices](64)
	if err != nil {
		return nil, err
	}

	s := &Services{
		Posts:      services.NewPostService(postRepo, categoryRepo, locationRepo, services.NewMediaStorage(cfg.Media), cfg.Blog.PageSize),
		Comments:   services.NewCommentService(postRepo, commentRepo),
		Users:      services.NewUserService(repository.NewUserRepository(conn)),
		Categories: services.NewCategoryService(categoryRepo, locationRepo, cache),
	}
	if cfg.Blog.Captcha {
		s.Captcha = services.NewCaptchaService()
	}
	return s, nil
}

// New 创建 HTTP 引擎
func New(cfg *config.Config, s *Services) (*gin.Engine, error) {
	loc := cfg.Blog.Location()
	renderer, err := view.New(web.Templates(), view.Options{SiteName: cfg.Server.SiteName, Location: loc})
	if err != nil {
		return nil, fmt.Errorf("load templates failed: %w", err)
	}

	r := gin.New()
	r.HTMLRender = renderer

	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger.Z()))
	if cfg.Server.Gzip {
		r.Use(gzip.Gzip(gzip.DefaultCompression))
	}

	store := cookie.NewStore([]byte(cfg.Session.Secret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   cfg.Session.MaxAge,
		HttpOnly: true,
		Secure:   cfg.Session.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(cfg.Session.Name, store))

	r.StaticFS("/static", http.FS(web.Static()))
	r.Static("/"+strings.Trim(cfg.Media.URLPrefix, "/"), cfg.Media.Dir)

	r.Use(middleware.LoadUser(s.Users))

	RegisterRoutes(r, &Handlers{
		Blog:    handlers.NewBlogHandler(s.Posts, s.Comments, s.Categories),
		Post:    handlers.NewPostHandler(s.Posts, s.Categories, loc),
		Comment: handlers.NewCommentHandler(s.Comments),
		User:    handlers.NewUserHandler(s.Users, s.Posts),
		Auth:    handlers.NewAuthHandler(s.Users, s.Captcha),
	})
	return r, nil
}

// RegisterRoutes 注册页面路由
func RegisterRoutes(r *gin.Engine, h *Handlers) {
	// 公共路由
	r.GET("/", h.Blog.Index)                        // 首页
	r.GET("/category/:slug/", h.Blog.CategoryPosts) // 分类文章
	r.GET("/posts/:id/", h.Blog.Detail)             // 文章详情
	r.GET("/profile/:username/", h.User.Profile)    // 用户主页

	auth := r.Group("/auth")
	{
		auth.GET("/login/", h.Auth.ShowLogin)
		auth.POST("/login/", h.Auth.Login)
		auth.POST("/logout/", h.Auth.Logout)
		auth.GET("/registration/", h.Auth.ShowRegister)
		auth.POST("/registration/", h.Auth.Register)
	}

	// 需要登录
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/posts/create/", h.Post.ShowCreate)
		authorized.POST("/posts/create/", h.Post.Create)
		authorized.GET("/posts/:id/edit/", h.Post.ShowEdit)
		authorized.POST("/posts/:id/edit/", h.Post.Update)
		authorized.GET("/posts/:id/delete/", h.Post.ShowDelete)
		authorized.POST("/posts/:id/delete/", h.Post.Delete)

		authorized.POST("/posts/:id/comment/", h.Comment.Add)
		authorized.GET("/posts/:id/edit_comment/:comment_id/", h.Comment.ShowEdit)
		authorized.POST("/posts/:id/edit_comment/:comment_id/", h.Comment.Update)
		authorized.GET("/posts/:id/delete_comment/:comment_id/", h.Comment.ShowDelete)
		authorized.POST("/posts/:id/delete_comment/:comment_id/", h.Comment.Delete)

		authorized.GET("/profile/:username/edit/", h.User.ShowEdit)
		authorized.POST("/profile/:username/edit/", h.User.Update)

		authorized.GET("/auth/password_change/", h.Auth.ShowPasswordChange)
		authorized.POST("/auth/password_change/", h.Auth.PasswordChange)
		authorized.GET("/auth/password_change/done/", h.Auth.PasswordChangeDone)
	}

	r.NoRoute(handlers.NotFound)
}
