package handlers

import (
	"errors"
	"net/http"

	"blogicum/internal/forms"
	"blogicum/internal/logger"
	"blogicum/internal/middleware"
	"blogicum/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	captchaSessionKey = "captcha_answer"
	noticeSessionKey  = "login_notice"

	passwordChangeDonePath = "/auth/password_change/done/"
)

// AuthHandler 登录、退出与注册
type AuthHandler struct {
	users          *services.UserService
	captchaService *services.CaptchaService
}

// NewAuthHandler captcha 为 nil 时注册页不出验证码
func NewAuthHandler(users *services.UserService, captcha *services.CaptchaService) *AuthHandler {
	return &AuthHandler{users: users, captchaService: captcha}
}

// ShowLogin 注册成功后的提示只显示一次
func (h *AuthHandler) ShowLogin(c *gin.Context) {
	session := sessions.Default(c)
	notice, _ := session.Get(noticeSessionKey).(string)
	if notice != "" {
		session.Delete(noticeSessionKey)
		if err := session.Save(); err != nil {
			logger.Warnw("session_save_failed", "error", err)
		}
	}
	renderLogin(c, http.StatusOK, forms.LoginForm{Next: c.Query("next")}, nil, notice)
}

// Login 成功后跳转 next（仅限站内路径），默认回到个人主页
func (h *AuthHandler) Login(c *gin.Context) {
	var form forms.LoginForm
	if errs := forms.Bind(c, &form); errs != nil {
		renderLogin(c, http.StatusOK, form, errs, "")
		return
	}

	user, err := h.users.Authenticate(form.Username, form.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			renderLogin(c, http.StatusOK, form, forms.FieldErrors{forms.NonFieldKey: "用户名或密码错误"}, "")
			return
		}
		handleServiceError(c, err, 0)
		return
	}

	if err := middleware.Login(c, user); err != nil {
		handleServiceError(c, err, 0)
		return
	}
	logger.Infow("user_login", "user_id", user.ID)
	c.Redirect(http.StatusFound, middleware.SafeNext(form.Next, profileURL(user.Username)))
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if err := middleware.Logout(c); err != nil {
		logger.Warnw("session_clear_failed", "error", err)
	}
	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) ShowRegister(c *gin.Context) {
	h.renderRegister(c, forms.RegistrationForm{}, nil)
}

// Register 注册成功后跳转登录页
func (h *AuthHandler) Register(c *gin.Context) {
	var form forms.RegistrationForm
	errs := forms.Bind(c, &form)

	if h.captchaService != nil {
		session := sessions.Default(c)
		expected := session.Get(captchaSessionKey)
		session.Delete(captchaSessionKey)
		if err := h.captchaService.Verify(expected, form.Captcha); err != nil {
			if errs == nil {
				errs = forms.FieldErrors{}
			}
			errs.Add("captcha", "验证码错误")
		}
	}
	if errs != nil {
		h.renderRegister(c, form, errs)
		return
	}

	if _, err := h.users.Register(form.Input()); err != nil {
		if errors.Is(err, services.ErrUsernameTaken) {
			h.renderRegister(c, form, forms.FieldErrors{"username": "该用户名已被占用"})
			return
		}
		handleServiceError(c, err, 0)
		return
	}

	// 保存时一并清除已用过的验证码
	session := sessions.Default(c)
	session.Set(noticeSessionKey, "注册成功，请登录。")
	if err := session.Save(); err != nil {
		logger.Warnw("session_save_failed", "error", err)
	}
	c.Redirect(http.StatusFound, middleware.LoginPath)
}

func (h *AuthHandler) ShowPasswordChange(c *gin.Context) {
	renderPasswordChange(c, nil)
}

// PasswordChange 修改成功后跳转到完成页
func (h *AuthHandler) PasswordChange(c *gin.Context) {
	var form forms.PasswordChangeForm
	if errs := forms.Bind(c, &form); errs != nil {
		renderPasswordChange(c, errs)
		return
	}

	err := h.users.ChangePassword(middleware.CurrentViewer(c), form.OldPassword, form.NewPassword1)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			renderPasswordChange(c, forms.FieldErrors{"old_password": "旧密码不正确"})
			return
		}
		handleServiceError(c, err, 0)
		return
	}
	c.Redirect(http.StatusFound, passwordChangeDonePath)
}

func (h *AuthHandler) PasswordChangeDone(c *gin.Context) {
	Render(c, http.StatusOK, "auth/password_change_done.html", gin.H{})
}

func renderPasswordChange(c *gin.Context, errs forms.FieldErrors) {
	Render(c, http.StatusOK, "auth/password_change.html", gin.H{
		"Form":   forms.PasswordChangeForm{},
		"Errors": errs,
	})
}

// renderRegister 每次渲染都换一道新题
func (h *AuthHandler) renderRegister(c *gin.Context, form forms.RegistrationForm, errs forms.FieldErrors) {
	form.Password1, form.Password2, form.Captcha = "", "", ""
	data := gin.H{"Form": form, "Errors": errs}
	if h.captchaService != nil {
		question, answer := h.captchaService.GenerateMathProblem()
		session := sessions.Default(c)
		session.Set(captchaSessionKey, answer)
		if err := session.Save(); err != nil {
			logger.Warnw("session_save_failed", "error", err)
		}
		data["Captcha"] = question
	}
	Render(c, http.StatusOK, "auth/registration.html", data)
}

func renderLogin(c *gin.Context, code int, form forms.LoginForm, errs forms.FieldErrors, success string) {
	next := form.Next
	form.Password = ""
	Render(c, code, "auth/login.html", gin.H{
		"Form":    form,
		"Errors":  errs,
		"Next":    next,
		"Success": success,
	})
}
