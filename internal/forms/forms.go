// Package forms 绑定并校验 HTML 表单，校验失败时给出按字段归类的错误信息
package forms

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// NonFieldKey 不属于具体字段的错误
const NonFieldKey = "__all__"

// FieldErrors 字段名 -> 错误信息
type FieldErrors map[string]string

// Add 每个字段只保留第一条错误
func (e FieldErrors) Add(field, message string) {
	if _, ok := e[field]; !ok {
		e[field] = message
	}
}

func (e FieldErrors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

func (e FieldErrors) Empty() bool {
	return len(e) == 0
}

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

var setupOnce sync.Once

// Setup 注册表单校验规则，错误字段名取 form 标签
func Setup() {
	setupOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("form"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return field.Name
			}
			return name
		})
		_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			return usernamePattern.MatchString(fl.Field().String())
		})
	})
}

// Bind 绑定请求表单，成功返回 nil
func Bind(c *gin.Context, form interface{}) FieldErrors {
	Setup()
	err := c.ShouldBind(form)
	if err == nil {
		return nil
	}

	errs := FieldErrors{}
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		for _, fe := range validationErrs {
			errs.Add(fe.Field(), message(fe))
		}
		return errs
	}
	errs.Add(NonFieldKey, "提交的数据无效")
	return errs
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "此字段为必填项"
	case "max":
		return fmt.Sprintf("长度不能超过 %s 个字符", fe.Param())
	case "min":
		return fmt.Sprintf("长度不能少于 %s 个字符", fe.Param())
	case "email":
		return "请输入有效的邮箱地址"
	case "datetime":
		return "请输入有效的日期和时间"
	case "numeric":
		return "请选择有效的选项"
	case "username":
		return "用户名只能包含字母、数字和 @/./+/-/_"
	case "eqfield":
		return "两次输入的密码不一致"
	default:
		return "输入无效"
	}
}

// checked 复选框取值
func checked(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}
