package handlers

import (
	"net/http"

	"blogicum/internal/middleware"
	"blogicum/internal/repository"
	"blogicum/internal/services"
	"blogicum/internal/utils"

	"github.com/gin-gonic/gin"
)

// BlogHandler 首页、分类页与文章详情
type BlogHandler struct {
	posts      *services.PostService
	comments   *services.CommentService
	categories *services.CategoryService
}

func NewBlogHandler(posts *services.PostService, comments *services.CommentService, categories *services.CategoryService) *BlogHandler {
	return &BlogHandler{posts: posts, comments: comments, categories: categories}
}

// Index 首页文章流
func (h *BlogHandler) Index(c *gin.Context) {
	page, err := h.posts.Feed(repository.ParsePage(c.Query("page")))
	if err != nil {
		handleServiceError(c, err, 0)
		return
	}
	Render(c, http.StatusOK, "blog/index.html", gin.H{"Page": page})
}

// CategoryPosts 分类下的文章，分类不存在或未发布时 404
func (h *BlogHandler) CategoryPosts(c *gin.Context) {
	category, err := h.categories.GetPublished(c.Param("slug"))
	if err != nil {
		handleServiceError(c, err, 0)
		return
	}
	page, err := h.posts.CategoryFeed(category, repository.ParsePage(c.Query("page")))
	if err != nil {
		handleServiceError(c, err, 0)
		return
	}
	Render(c, http.StatusOK, "blog/category.html", gin.H{
		"Category": category,
		"Page":     page,
	})
}

// Detail 文章详情与评论
func (h *BlogHandler) Detail(c *gin.Context) {
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		NotFound(c)
		return
	}
	post, err := h.posts.Detail(middleware.CurrentViewer(c), id)
	if err != nil {
		handleServiceError(c, err, id)
		return
	}
	comments, err := h.comments.ListByPost(post.ID)
	if err != nil {
		handleServiceError(c, err, id)
		return
	}
	Render(c, http.StatusOK, "blog/detail.html", gin.H{
		"Post":     post,
		"Comments": comments,
	})
}
