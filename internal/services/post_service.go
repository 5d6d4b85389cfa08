package services

import (
	"errors"
	"fmt"
	"mime/multipart"
	"time"

	"blogicum/internal/logger"
	"blogicum/internal/models"
	"blogicum/internal/policy"
	"blogicum/internal/repository"

	"gorm.io/gorm"
)

// PostInput 创建或编辑文章提交的字段
type PostInput struct {
	Title       string
	Text        string
	PubDate     time.Time
	IsPublished bool
	CategoryID  *uint
	LocationID  *uint
	// Image 为空时保留原图
	Image      *multipart.FileHeader
	ClearImage bool
}

// PostService 文章的查询与修改，所有可见性与权限判断都走 policy
type PostService struct {
	posts      repository.PostRepository
	categories repository.CategoryRepository
	locations  repository.LocationRepository
	media      *MediaStorage
	pageSize   int
	now        func() time.Time
}

// NewPostService 创建文章服务
func NewPostService(posts repository.PostRepository, categories repository.CategoryRepository, locations repository.LocationRepository, media *MediaStorage, pageSize int) *PostService {
	if pageSize <= 0 {
		pageSize = repository.DefaultPageSize
	}
	return &PostService{
		posts:      posts,
		categories: categories,
		locations:  locations,
		media:      media,
		pageSize:   pageSize,
		now:        time.Now,
	}
}

// WithClock 替换时钟，测试用
func (s *PostService) WithClock(now func() time.Time) *PostService {
	s.now = now
	return s
}

// Now 当前时间
func (s *PostService) Now() time.Time {
	return s.now()
}

// Feed 首页：全部公开可见的文章
func (s *PostService) Feed(page int) (*repository.PostPage, error) {
	return s.list(repository.AllPosts(), true, page)
}

// CategoryFeed 分类页：该分类下公开可见的文章
func (s *PostService) CategoryFeed(category *models.Category, page int) (*repository.PostPage, error) {
	return s.list(repository.ByCategory(category.ID), true, page)
}

// ProfileFeed 作者主页：本人看到全部，其余访客只看到公开可见的
func (s *PostService) ProfileFeed(viewer policy.Viewer, profile *models.User, page int) (*repository.PostPage, error) {
	return s.list(repository.ByAuthor(profile.ID), !policy.SeesUnpublished(viewer, profile.ID), page)
}

func (s *PostService) list(scope repository.Scope, publicOnly bool, page int) (*repository.PostPage, error) {
	result, err := s.posts.List(repository.PostListFilter{
		Scope:      scope,
		PublicOnly: publicOnly,
		Now:        s.now(),
		Page:       page,
		PageSize:   s.pageSize,
	})
	if err != nil {
		logger.Errorw("post_list_failed", "scope", scope.Kind, "error", err)
		return nil, err
	}
	return result, nil
}

// Detail 文章详情，对当前访客不可见时返回 ErrNotFound
func (s *PostService) Detail(viewer policy.Viewer, id uint) (*models.Post, error) {
	post, err := s.posts.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("get post failed: %w", err)
	}
	if post == nil || !policy.IsVisible(viewer, post, s.now()) {
		return nil, ErrNotFound
	}
	return post, nil
}

// Create 以当前用户为作者创建文章
func (s *PostService) Create(viewer policy.Viewer, input PostInput) (*models.Post, error) {
	if !viewer.IsAuthenticated() {
		return nil, ErrForbidden
	}
	if err := resolveChoices(s.categories, s.locations, input.CategoryID, input.LocationID); err != nil {
		return nil, err
	}

	post := &models.Post{AuthorID: viewer.UserID}
	applyPostInput(post, input, s.now())

	if input.Image != nil {
		imagePath, err := s.media.Save(input.Image)
		if err != nil {
			return nil, err
		}
		post.Image = imagePath
	}

	if err := s.posts.Create(post); err != nil {
		s.media.discard(post.Image)
		logger.Errorw("post_create_failed", "user_id", viewer.UserID, "error", err)
		return nil, fmt.Errorf("create post failed: %w", err)
	}
	logger.Infow("post_created", "post_id", post.ID, "user_id", viewer.UserID)
	return post, nil
}

// Editable 取出当前用户可以修改的文章
func (s *PostService) Editable(viewer policy.Viewer, id uint) (*models.Post, error) {
	post, err := s.posts.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("get post failed: %w", err)
	}
	if post == nil {
		return nil, ErrNotFound
	}
	if !policy.CanMutate(viewer, post) {
		return nil, ErrForbidden
	}
	return post, nil
}

// Update 作者编辑文章
func (s *PostService) Update(viewer policy.Viewer, id uint, input PostInput) (*models.Post, error) {
	post, err := s.Editable(viewer, id)
	if err != nil {
		return nil, err
	}
	if err := resolveChoices(s.categories, s.locations, input.CategoryID, input.LocationID); err != nil {
		return nil, err
	}

	oldImage := post.Image
	applyPostInput(post, input, s.now())
	// 关联以外键为准，避免预加载的旧对象残留
	post.Category = nil
	post.Location = nil

	switch {
	case input.Image != nil:
		imagePath, err := s.media.Save(input.Image)
		if err != nil {
			return nil, err
		}
		post.Image = imagePath
	case input.ClearImage:
		post.Image = ""
	}

	if err := s.posts.Update(post); err != nil {
		if post.Image != oldImage {
			s.media.discard(post.Image)
		}
		logger.Errorw("post_update_failed", "post_id", id, "user_id", viewer.UserID, "error", err)
		return nil, fmt.Errorf("update post failed: %w", err)
	}
	if post.Image != oldImage {
		s.media.discard(oldImage)
	}
	logger.Infow("post_updated", "post_id", id, "user_id", viewer.UserID)

	updated, err := s.posts.GetByID(id)
	if err != nil {
		return nil, fmt.Errorf("reload post failed: %w", err)
	}
	if updated == nil {
		return nil, ErrNotFound
	}
	return updated, nil
}

// Delete 作者删除文章及其评论
func (s *PostService) Delete(viewer policy.Viewer, id uint) error {
	post, err := s.Editable(viewer, id)
	if err != nil {
		return err
	}
	if err := s.posts.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		logger.Errorw("post_delete_failed", "post_id", id, "user_id", viewer.UserID, "error", err)
		return fmt.Errorf("delete post failed: %w", err)
	}
	s.media.discard(post.Image)
	logger.Infow("post_deleted", "post_id", id, "user_id", viewer.UserID)
	return nil
}

func applyPostInput(post *models.Post, input PostInput, now time.Time) {
	post.Title = input.Title
	post.Text = input.Text
	post.PubDate = input.PubDate
	if post.PubDate.IsZero() {
		post.PubDate = now
	}
	post.IsPublished = input.IsPublished
	post.CategoryID = input.CategoryID
	post.LocationID = input.LocationID
}
