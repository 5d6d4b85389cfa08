package services

import (
	"fmt"
	"time"

	"blogicum/internal/logger"
	"blogicum/internal/models"
	"blogicum/internal/policy"
	"blogicum/internal/repository"
)

// CommentService 评论的增删改
type CommentService struct {
	posts    repository.PostRepository
	comments repository.CommentRepository
	now      func() time.Time
}

// NewCommentService 创建评论服务
func NewCommentService(posts repository.PostRepository, comments repository.CommentRepository) *CommentService {
	return &CommentService{posts: posts, comments: comments, now: time.Now}
}

// WithClock 替换时钟，测试用
func (s *CommentService) WithClock(now func() time.Time) *CommentService {
	s.now = now
	return s
}

// ListByPost 文章下的全部评论，按创建时间正序
func (s *CommentService) ListByPost(postID uint) ([]models.Comment, error) {
	comments, err := s.comments.ListByPost(postID)
	if err != nil {
		return nil, fmt.Errorf("list comments failed: %w", err)
	}
	return comments, nil
}

// Add 发表评论，文章须对当前用户可见
func (s *CommentService) Add(viewer policy.Viewer, postID uint, text string) (*models.Comment, error) {
	if !viewer.IsAuthenticated() {
		return nil, ErrForbidden
	}
	post, err := s.posts.GetByID(postID)
	if err != nil {
		return nil, fmt.Errorf("get post failed: %w", err)
	}
	if post == nil || !policy.IsVisible(viewer, post, s.now()) {
		return nil, ErrNotFound
	}

	comment := &models.Comment{PostID: post.ID, AuthorID: viewer.UserID, Text: text}
	if err := s.comments.Create(comment); err != nil {
		logger.Errorw("comment_create_failed", "post_id", postID, "user_id", viewer.UserID, "error", err)
		return nil, fmt.Errorf("create comment failed: %w", err)
	}
	logger.Infow("comment_created", "post_id", postID, "comment_id", comment.ID, "user_id", viewer.UserID)
	return comment, nil
}

// Editable 取出当前用户可以修改的评论，评论须属于该文章
func (s *CommentService) Editable(viewer policy.Viewer, postID, commentID uint) (*models.Comment, error) {
	comment, err := s.comments.GetByPost(postID, commentID)
	if err != nil {
		return nil, fmt.Errorf("get comment failed: %w", err)
	}
	if comment == nil {
		return nil, ErrNotFound
	}
	if !policy.CanMutate(viewer, comment) {
		return nil, ErrForbidden
	}
	return comment, nil
}

// Update 作者编辑评论
func (s *CommentService) Update(viewer policy.Viewer, postID, commentID uint, text string) (*models.Comment, error) {
	comment, err := s.Editable(viewer, postID, commentID)
	if err != nil {
		return nil, err
	}
	comment.Text = text
	if err := s.comments.Update(comment); err != nil {
		logger.Errorw("comment_update_failed", "comment_id", commentID, "user_id", viewer.UserID, "error", err)
		return nil, fmt.Errorf("update comment failed: %w", err)
	}
	return comment, nil
}

// Delete 作者删除评论
func (s *CommentService) Delete(viewer policy.Viewer, postID, commentID uint) error {
	if _, err := s.Editable(viewer, postID, commentID); err != nil {
		return err
	}
	if err := s.comments.Delete(commentID); err != nil {
		logger.Errorw("comment_delete_failed", "comment_id", commentID, "user_id", viewer.UserID, "error", err)
		return fmt.Errorf("delete comment failed: %w", err)
	}
	logger.Infow("comment_deleted", "post_id", postID, "comment_id", commentID, "user_id", viewer.UserID)
	return nil
}
