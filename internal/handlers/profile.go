package handlers

import (
	"errors"
	"net/http"

	"blogicum/internal/forms"
	"blogicum/internal/middleware"
	"blogicum/internal/policy"
	"blogicum/internal/repository"
	"blogicum/internal/services"

	"github.com/gin-gonic/gin"
)

// UserHandler 个人主页与资料编辑
type UserHandler struct {
	users *services.UserService
	posts *services.PostService
}

func NewUserHandler(users *services.UserService, posts *services.PostService) *UserHandler {
	return &UserHandler{users: users, posts: posts}
}

// Profile 本人看到自己全部文章，其他访客只看到公开的
func (h *UserHandler) Profile(c *gin.Context) {
	profile, err := h.users.GetByUsername(c.Param("username"))
	if err != nil {
		handleServiceError(c, err, 0)
		return
	}
	viewer := middleware.CurrentViewer(c)
	page, err := h.posts.ProfileFeed(viewer, profile, repository.ParsePage(c.Query("page")))
	if err != nil {
		handleServiceError(c, err, 0)
		return
	}
	Render(c, http.StatusOK, "blog/profile.html", gin.H{
		"Profile": profile,
		"Page":    page,
		"IsOwner": policy.SeesUnpublished(viewer, profile.ID),
	})
}

// ShowEdit 只能编辑自己的资料，否则 404
func (h *UserHandler) ShowEdit(c *gin.Context) {
	user, err := h.users.EditableProfile(middleware.CurrentViewer(c), c.Param("username"))
	if err != nil {
		handleServiceError(c, err, 0)
		return
	}
	renderProfileForm(c, forms.NewProfileForm(user), nil)
}

func (h *UserHandler) Update(c *gin.Context) {
	viewer := middleware.CurrentViewer(c)
	username := c.Param("username")
	if _, err := h.users.EditableProfile(viewer, username); err != nil {
		handleServiceError(c, err, 0)
		return
	}

	var form forms.ProfileForm
	if errs := forms.Bind(c, &form); errs != nil {
		renderProfileForm(c, form, errs)
		return
	}
	user, err := h.users.UpdateProfile(viewer, username, form.Input())
	if err != nil {
		if errors.Is(err, services.ErrUsernameTaken) {
			renderProfileForm(c, form, forms.FieldErrors{"username": "该用户名已被占用"})
			return
		}
		handleServiceError(c, err, 0)
		return
	}
	c.Redirect(http.StatusFound, profileURL(user.Username))
}

func renderProfileForm(c *gin.Context, form forms.ProfileForm, errs forms.FieldErrors) {
	Render(c, http.StatusOK, "blog/user.html", gin.H{"Form": form, "Errors": errs})
}

