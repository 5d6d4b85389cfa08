package forms

import (
	"strconv"
	"strings"
	"time"

	"blogicum/internal/models"
	"blogicum/internal/services"
)

// PubDateLayout datetime-local 输入框的格式
const PubDateLayout = "2006-01-02T15:04"

// PostForm 创建与编辑文章，图片通过 multipart 的 image 字段单独读取
type PostForm struct {
	Title       string `form:"title" binding:"notblank,max=256"`
	Text        string `form:"text" binding:"notblank"`
	PubDate     string `form:"pub_date" binding:"omitempty,datetime=2006-01-02T15:04"`
	IsPublished string `form:"is_published"`
	Category    string `form:"category" binding:"omitempty,numeric"`
	Location    string `form:"location" binding:"omitempty,numeric"`
	ClearImage  string `form:"image_clear"`
}

// NewPostForm 用已有文章填充表单
func NewPostForm(post *models.Post, loc *time.Location) PostForm {
	form := PostForm{IsPublished: "true"}
	if post == nil {
		return form
	}
	form.Title = post.Title
	form.Text = post.Text
	form.PubDate = FormatPubDate(post.PubDate, loc)
	form.IsPublished = strconv.FormatBool(post.IsPublished)
	if post.CategoryID != nil {
		form.Category = strconv.FormatUint(uint64(*post.CategoryID), 10)
	}
	if post.LocationID != nil {
		form.Location = strconv.FormatUint(uint64(*post.LocationID), 10)
	}
	return form
}

// Published 复选框是否勾选
func (f PostForm) Published() bool {
	return checked(f.IsPublished)
}

// Input 转换为服务层参数，发布时间按 loc 解析
func (f PostForm) Input(loc *time.Location) (services.PostInput, FieldErrors) {
	errs := FieldErrors{}
	input := services.PostInput{
		Title:       strings.TrimSpace(f.Title),
		Text:        f.Text,
		IsPublished: f.Published(),
		ClearImage:  checked(f.ClearImage),
	}

	if raw := strings.TrimSpace(f.PubDate); raw != "" {
		pubDate, err := time.ParseInLocation(PubDateLayout, raw, loc)
		if err != nil {
			errs.Add("pub_date", "请输入有效的日期和时间")
		} else {
			input.PubDate = pubDate
		}
	}

	var ok bool
	if input.CategoryID, ok = optionalID(f.Category); !ok {
		errs.Add("category", "请选择有效的选项")
	}
	if input.LocationID, ok = optionalID(f.Location); !ok {
		errs.Add("location", "请选择有效的选项")
	}

	if errs.Empty() {
		return input, nil
	}
	return input, errs
}

// FormatPubDate 格式化为 datetime-local 输入框的值
func FormatPubDate(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	return t.In(loc).Format(PubDateLayout)
}

func optionalID(raw string) (*uint, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return nil, false
	}
	value := uint(id)
	return &value, true
}
