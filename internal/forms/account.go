package forms

import (
	"strings"

	"blogicum/internal/models"
	"blogicum/internal/services"
)

// CommentForm 评论
type CommentForm struct {
	Text string `form:"text" binding:"notblank"`
}

// ProfileForm 个人资料
type ProfileForm struct {
	Username  string `form:"username" binding:"notblank,max=150,username"`
	FirstName string `form:"first_name" binding:"max=150"`
	LastName  string `form:"last_name" binding:"max=150"`
	Email     string `form:"email" binding:"omitempty,email,max=254"`
}

// NewProfileForm 用当前资料填充表单
func NewProfileForm(user *models.User) ProfileForm {
	return ProfileForm{
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
	}
}

func (f ProfileForm) Input() services.ProfileInput {
	return services.ProfileInput{
		Username:  strings.TrimSpace(f.Username),
		FirstName: f.FirstName,
		LastName:  f.LastName,
		Email:     f.Email,
	}
}

// RegistrationForm 注册
type RegistrationForm struct {
	Username  string `form:"username" binding:"notblank,max=150,username"`
	Email     string `form:"email" binding:"omitempty,email,max=254"`
	Password1 string `form:"password1" binding:"required,min=8,max=128"`
	Password2 string `form:"password2" binding:"required,eqfield=Password1"`
	Captcha   string `form:"captcha"`
}

func (f RegistrationForm) Input() services.RegisterInput {
	return services.RegisterInput{
		Username: strings.TrimSpace(f.Username),
		Email:    f.Email,
		Password: f.Password1,
	}
}

// PasswordChangeForm 修改密码
type PasswordChangeForm struct {
	OldPassword  string `form:"old_password" binding:"required"`
	NewPassword1 string `form:"new_password1" binding:"required,min=8,max=128"`
	NewPassword2 string `form:"new_password2" binding:"required,eqfield=NewPassword1"`
}

// LoginForm 登录
type LoginForm struct {
	Username string `form:"username" binding:"notblank"`
	Password string `form:"password" binding:"required"`
	Next     string `form:"next"`
}
