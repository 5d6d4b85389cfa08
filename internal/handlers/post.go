package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"blogicum/internal/forms"
	"blogicum/internal/middleware"
	"blogicum/internal/models"
	"blogicum/internal/services"
	"blogicum/internal/utils"

	"github.com/gin-gonic/gin"
)

// PostHandler 创建、编辑、删除文章
type PostHandler struct {
	posts      *services.PostService
	categories *services.CategoryService
	loc        *time.Location
}

func NewPostHandler(posts *services.PostService, categories *services.CategoryService, loc *time.Location) *PostHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &PostHandler{posts: posts, categories: categories, loc: loc}
}

func (h *PostHandler) ShowCreate(c *gin.Context) {
	h.renderForm(c, forms.NewPostForm(nil, h.loc), nil, nil)
}

// Create 保存后跳转到作者主页
func (h *PostHandler) Create(c *gin.Context) {
	form, input, errs := h.bindForm(c)
	if errs != nil {
		h.renderForm(c, form, errs, nil)
		return
	}

	user := middleware.CurrentUser(c)
	_, err := h.posts.Create(middleware.CurrentViewer(c), input)
	if err != nil {
		if fieldErrs := postFieldErrors(err); fieldErrs != nil {
			h.renderForm(c, form, fieldErrs, nil)
			return
		}
		handleServiceError(c, err, 0)
		return
	}
	c.Redirect(http.StatusFound, profileURL(user.Username))
}

func (h *PostHandler) ShowEdit(c *gin.Context) {
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		NotFound(c)
		return
	}
	post, err := h.posts.Editable(middleware.CurrentViewer(c), id)
	if err != nil {
		handleServiceError(c, err, id)
		return
	}
	h.renderForm(c, forms.NewPostForm(post, h.loc), nil, post)
}

// Update 非作者提交时不做任何修改，直接回到详情页
func (h *PostHandler) Update(c *gin.Context) {
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		NotFound(c)
		return
	}
	viewer := middleware.CurrentViewer(c)
	post, err := h.posts.Editable(viewer, id)
	if err != nil {
		handleServiceError(c, err, id)
		return
	}

	form, input, errs := h.bindForm(c)
	if errs != nil {
		h.renderForm(c, form, errs, post)
		return
	}
	if _, err := h.posts.Update(viewer, id, input); err != nil {
		if fieldErrs := postFieldErrors(err); fieldErrs != nil {
			h.renderForm(c, form, fieldErrs, post)
			return
		}
		handleServiceError(c, err, id)
		return
	}
	c.Redirect(http.StatusFound, postURL(id))
}

// ShowDelete 删除确认页
func (h *PostHandler) ShowDelete(c *gin.Context) {
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		NotFound(c)
		return
	}
	post, err := h.posts.Editable(middleware.CurrentViewer(c), id)
	if err != nil {
		handleServiceError(c, err, id)
		return
	}
	Render(c, http.StatusOK, "blog/delete.html", gin.H{"Post": post})
}

func (h *PostHandler) Delete(c *gin.Context) {
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		NotFound(c)
		return
	}
	if err := h.posts.Delete(middleware.CurrentViewer(c), id); err != nil {
		handleServiceError(c, err, id)
		return
	}
	c.Redirect(http.StatusFound, "/")
}

func (h *PostHandler) bindForm(c *gin.Context) (forms.PostForm, services.PostInput, forms.FieldErrors) {
	var form forms.PostForm
	errs := forms.Bind(c, &form)
	if errs == nil {
		errs = forms.FieldErrors{}
	}

	input, inputErrs := form.Input(h.loc)
	for field, message := range inputErrs {
		errs.Add(field, message)
	}

	file, err := c.FormFile("image")
	switch {
	case err == nil:
		input.Image = file
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		errs.Add("image", "图片上传失败")
	}

	if errs.Empty() {
		return form, input, nil
	}
	return form, input, errs
}

func (h *PostHandler) renderForm(c *gin.Context, form forms.PostForm, errs forms.FieldErrors, post *models.Post) {
	choices, err := h.categories.ChoicesFor(post)
	if err != nil {
		handleServiceError(c, err, 0)
		return
	}
	Render(c, http.StatusOK, "blog/create.html", gin.H{
		"Form":    form,
		"Errors":  errs,
		"Choices": choices,
		"Post":    post,
		"IsEdit":  post != nil,
	})
}

// postFieldErrors 可以在表单中展示的服务层错误
func postFieldErrors(err error) forms.FieldErrors {
	var choiceErr *services.ChoiceError
	switch {
	case errors.As(err, &choiceErr):
		return forms.FieldErrors{choiceErr.Field: "请选择有效的选项"}
	case errors.Is(err, services.ErrInvalidImage):
		return forms.FieldErrors{"image": strings.TrimPrefix(err.Error(), services.ErrInvalidImage.Error()+": ")}
	}
	return nil
}
