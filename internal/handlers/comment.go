package handlers

import (
	"net/http"

	"blogicum/internal/forms"
	"blogicum/internal/middleware"
	"blogicum/internal/models"
	"blogicum/internal/services"
	"blogicum/internal/utils"

	"github.com/gin-gonic/gin"
)

// CommentHandler 发表、编辑、删除评论
type CommentHandler struct {
	comments *services.CommentService
}

func NewCommentHandler(comments *services.CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

// Add 校验失败同样回到详情页
func (h *CommentHandler) Add(c *gin.Context) {
	postID, ok := utils.ParseID(c.Param("id"))
	if !ok {
		NotFound(c)
		return
	}
	var form forms.CommentForm
	if errs := forms.Bind(c, &form); errs != nil {
		c.Redirect(http.StatusFound, postURL(postID))
		return
	}
	if _, err := h.comments.Add(middleware.CurrentViewer(c), postID, form.Text); err != nil {
		handleServiceError(c, err, postID)
		return
	}
	c.Redirect(http.StatusFound, postURL(postID))
}

func (h *CommentHandler) ShowEdit(c *gin.Context) {
	postID, commentID, ok := commentParams(c)
	if !ok {
		NotFound(c)
		return
	}
	comment, err := h.comments.Editable(middleware.CurrentViewer(c), postID, commentID)
	if err != nil {
		handleServiceError(c, err, postID)
		return
	}
	renderComment(c, comment, forms.CommentForm{Text: comment.Text}, nil, false)
}

func (h *CommentHandler) Update(c *gin.Context) {
	postID, commentID, ok := commentParams(c)
	if !ok {
		NotFound(c)
		return
	}
	viewer := middleware.CurrentViewer(c)
	comment, err := h.comments.Editable(viewer, postID, commentID)
	if err != nil {
		handleServiceError(c, err, postID)
		return
	}

	var form forms.CommentForm
	if errs := forms.Bind(c, &form); errs != nil {
		renderComment(c, comment, form, errs, false)
		return
	}
	if _, err := h.comments.Update(viewer, postID, commentID, form.Text); err != nil {
		handleServiceError(c, err, postID)
		return
	}
	c.Redirect(http.StatusFound, postURL(postID))
}

// ShowDelete 删除确认页
func (h *CommentHandler) ShowDelete(c *gin.Context) {
	postID, commentID, ok := commentParams(c)
	if !ok {
		NotFound(c)
		return
	}
	comment, err := h.comments.Editable(middleware.CurrentViewer(c), postID, commentID)
	if err != nil {
		handleServiceError(c, err, postID)
		return
	}
	renderComment(c, comment, forms.CommentForm{Text: comment.Text}, nil, true)
}

func (h *CommentHandler) Delete(c *gin.Context) {
	postID, commentID, ok := commentParams(c)
	if !ok {
		NotFound(c)
		return
	}
	if err := h.comments.Delete(middleware.CurrentViewer(c), postID, commentID); err != nil {
		handleServiceError(c, err, postID)
		return
	}
	c.Redirect(http.StatusFound, postURL(postID))
}

func commentParams(c *gin.Context) (uint, uint, bool) {
	postID, ok := utils.ParseID(c.Param("id"))
	if !ok {
		return 0, 0, false
	}
	commentID, ok := utils.ParseID(c.Param("comment_id"))
	if !ok {
		return 0, 0, false
	}
	return postID, commentID, true
}

func renderComment(c *gin.Context, comment *models.Comment, form forms.CommentForm, errs forms.FieldErrors, isDelete bool) {
	Render(c, http.StatusOK, "blog/comment.html", gin.H{
		"Comment":  comment,
		"Form":     form,
		"Errors":   errs,
		"IsDelete": isDelete,
	})
}
