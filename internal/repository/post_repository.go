package repository

import (
	"errors"
	"fmt"
	"time"

	"blogicum/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ScopeKind 文章列表范围
type ScopeKind int

const (
	ScopeAll ScopeKind = iota
	ScopeCategory
	ScopeAuthor
)

// Scope 列表范围：全部、某分类、某作者
type Scope struct {
	Kind       ScopeKind
	CategoryID uint
	AuthorID   uint
}

func AllPosts() Scope {
	return Scope{Kind: ScopeAll}
}

func ByCategory(categoryID uint) Scope {
	return Scope{Kind: ScopeCategory, CategoryID: categoryID}
}

func ByAuthor(authorID uint) Scope {
	return Scope{Kind: ScopeAuthor, AuthorID: authorID}
}

// PostListFilter 文章列表查询条件
type PostListFilter struct {
	Scope Scope
	// PublicOnly 为 true 时附加公开可见条件（与 policy.IsPubliclyVisible 一致）
	PublicOnly bool
	Now        time.Time
	Page       int
	PageSize   int
}

// PostPage 一页文章
type PostPage struct {
	Pagination
	Posts []models.Post
}

// PostRepository 文章数据访问接口
type PostRepository interface {
	List(filter PostListFilter) (*PostPage, error)
	GetByID(id uint) (*models.Post, error)
	Create(post *models.Post) error
	Update(post *models.Post) error
	Delete(id uint) error
}

// GormPostRepository GORM 实现
type GormPostRepository struct {
	db *gorm.DB
}

// NewPostRepository 创建文章仓库
func NewPostRepository(db *gorm.DB) *GormPostRepository {
	return &GormPostRepository{db: db}
}

// applyPublicVisibility 已发布 且 分类为空或已发布 且 发布时间不晚于 now
func applyPublicVisibility(query *gorm.DB, now time.Time) *gorm.DB {
	return query.
		Joins("LEFT JOIN categories ON categories.id = posts.category_id").
		Where("posts.is_published = ?", true).
		Where("posts.pub_date <= ?", now.UTC()).
		Where("(posts.category_id IS NULL OR categories.is_published = ?)", true)
}

func (r *GormPostRepository) scoped(filter PostListFilter) *gorm.DB {
	query := r.db.Model(&models.Post{})
	switch filter.Scope.Kind {
	case ScopeCategory:
		query = query.Where("posts.category_id = ?", filter.Scope.CategoryID)
	case ScopeAuthor:
		query = query.Where("posts.author_id = ?", filter.Scope.AuthorID)
	}
	if filter.PublicOnly {
		now := filter.Now
		if now.IsZero() {
			now = time.Now()
		}
		query = applyPublicVisibility(query, now)
	}
	return query
}

// List 按发布时间倒序分页，预加载作者/分类/地点并填充评论数
func (r *GormPostRepository) List(filter PostListFilter) (*PostPage, error) {
	var total int64
	if err := r.scoped(filter).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count posts failed: %w", err)
	}

	page := &PostPage{Pagination: NewPagination(total, filter.PageSize, filter.Page)}
	if total == 0 {
		page.Posts = []models.Post{}
		return page, nil
	}

	var posts []models.Post
	err := r.scoped(filter).
		Select("posts.*").
		Preload("Author").
		Preload("Category").
		Preload("Location").
		Order("posts.pub_date DESC").
		Order("posts.id DESC").
		Limit(page.PageSize).
		Offset(page.Offset()).
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("list posts failed: %w", err)
	}

	if err := fillCommentCounts(r.db, posts); err != nil {
		return nil, err
	}
	page.Posts = posts
	return page, nil
}

// fillCommentCounts 批量填充帖子的评论数量
func fillCommentCounts(db *gorm.DB, posts []models.Post) error {
	if len(posts) == 0 {
		return nil
	}

	postIDs := make([]uint, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID
	}

	type countResult struct {
		PostID uint
		Count  int
	}
	var results []countResult
	err := db.Model(&models.Comment{}).
		Select("post_id, COUNT(*) as count").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&results).Error
	if err != nil {
		return fmt.Errorf("count comments failed: %w", err)
	}

	countMap := make(map[uint]int, len(results))
	for _, r := range results {
		countMap[r.PostID] = r.Count
	}
	for i := range posts {
		posts[i].CommentCount = countMap[posts[i].ID]
	}
	return nil
}

// GetByID 根据 ID 获取文章（不做可见性过滤）
func (r *GormPostRepository) GetByID(id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.Preload("Author").Preload("Category").Preload("Location").First(&post, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	posts := []models.Post{post}
	if err := fillCommentCounts(r.db, posts); err != nil {
		return nil, err
	}
	return &posts[0], nil
}

// Create 创建文章
func (r *GormPostRepository) Create(post *models.Post) error {
	return r.db.Omit(clause.Associations).Create(post).Error
}

// Update 更新文章
func (r *GormPostRepository) Update(post *models.Post) error {
	return r.db.Omit(clause.Associations).Save(post).Error
}

// Delete 删除文章及其全部评论
func (r *GormPostRepository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("delete post comments failed: %w", err)
		}
		result := tx.Delete(&models.Post{}, id)
		if result.Error != nil {
			return fmt.Errorf("delete post failed: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
