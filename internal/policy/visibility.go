// Package policy decides which posts a viewer may see and which records a
// viewer may change. Every handler and query in the blog goes through these
// predicates so the rules cannot drift between views.
package policy

import (
	"time"

	"blogicum/internal/models"
)

// Viewer 当前请求的身份，UserID 为 0 表示匿名访客
type Viewer struct {
	UserID uint
}

// Anonymous 匿名访客
var Anonymous = Viewer{}

// ViewerFor 由已登录用户构造身份
func ViewerFor(user *models.User) Viewer {
	if user == nil {
		return Anonymous
	}
	return Viewer{UserID: user.ID}
}

// IsAuthenticated 是否已登录
func (v Viewer) IsAuthenticated() bool {
	return v.UserID != 0
}

// Is 判断当前身份是否为指定用户
func (v Viewer) Is(userID uint) bool {
	return v.IsAuthenticated() && v.UserID == userID
}

// Owned 拥有作者的记录（文章、评论）
type Owned interface {
	OwnerID() uint
}

// IsPubliclyVisible 对非作者可见：已发布、分类（若有）已发布、发布时间不晚于 now。
// CategoryID 已设置但 Category 未加载时按不可见处理。
func IsPubliclyVisible(post *models.Post, now time.Time) bool {
	if post == nil || !post.IsPublished {
		return false
	}
	if post.CategoryID != nil {
		if post.Category == nil || !post.Category.IsPublished {
			return false
		}
	}
	return !post.PubDate.After(now)
}

// IsVisible 作者总能看到自己的文章，其余访客按公开规则判断
func IsVisible(viewer Viewer, post *models.Post, now time.Time) bool {
	if post == nil {
		return false
	}
	if viewer.Is(post.AuthorID) {
		return true
	}
	return IsPubliclyVisible(post, now)
}

// CanMutate 只有作者本人可以编辑或删除
func CanMutate(viewer Viewer, entity Owned) bool {
	if entity == nil {
		return false
	}
	return viewer.Is(entity.OwnerID())
}

// SeesUnpublished 作者主页是否展示全部文章（仅本人访问自己的主页）
func SeesUnpublished(viewer Viewer, profileUserID uint) bool {
	return viewer.Is(profileUserID)
}
