package services

import "errors"

var (
	// ErrNotFound 记录不存在或对当前访客不可见，两者对外不作区分
	ErrNotFound = errors.New("not found")
	// ErrForbidden 非作者尝试修改
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidChoice 分类或地点不存在
	ErrInvalidChoice = errors.New("invalid choice")

	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidImage       = errors.New("invalid image")
	ErrInvalidCaptcha     = errors.New("invalid captcha")
)
