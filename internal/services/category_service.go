package services

import (
	"fmt"
	"time"

	"blogicum/internal/models"
	"blogicum/internal/repository"
	"blogicum/internal/utils"
)

const (
	choicesCacheKey = "post_form_choices"
	choicesCacheTTL = time.Minute
)

// Choices 文章表单可选的分类与地点
type Choices struct {
	Categories []models.Category
	Locations  []models.Location
}

// CategoryService 分类与地点
type CategoryService struct {
	categories repository.CategoryRepository
	locations  repository.LocationRepository
	cache      *utils.TTLCache[*Choices]
}

// NewCategoryService 创建分类服务，cache 为空时不缓存
func NewCategoryService(categories repository.CategoryRepository, locations repository.LocationRepository, cache *utils.TTLCache[*Choices]) *CategoryService {
	return &CategoryService{categories: categories, locations: locations, cache: cache}
}

// GetPublished 已发布的分类，不存在或未发布返回 ErrNotFound
func (s *CategoryService) GetPublished(slug string) (*models.Category, error) {
	category, err := s.categories.GetPublishedBySlug(slug)
	if err != nil {
		return nil, fmt.Errorf("get category failed: %w", err)
	}
	if category == nil {
		return nil, ErrNotFound
	}
	return category, nil
}

// Choices 表单下拉选项，缓存一分钟
func (s *CategoryService) Choices() (*Choices, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(choicesCacheKey); ok {
			return cached, nil
		}
	}

	categories, err := s.categories.ListPublished()
	if err != nil {
		return nil, fmt.Errorf("list categories failed: %w", err)
	}
	locations, err := s.locations.ListPublished()
	if err != nil {
		return nil, fmt.Errorf("list locations failed: %w", err)
	}

	choices := &Choices{Categories: categories, Locations: locations}
	if s.cache != nil {
		s.cache.Set(choicesCacheKey, choices, choicesCacheTTL)
	}
	return choices, nil
}

// ChoicesFor 编辑表单的选项，文章当前的分类与地点即使未发布也保留在列表中
func (s *CategoryService) ChoicesFor(post *models.Post) (*Choices, error) {
	choices, err := s.Choices()
	if err != nil || post == nil {
		return choices, err
	}

	// 缓存中的切片共享，不能原地追加
	out := &Choices{Categories: choices.Categories, Locations: choices.Locations}
	if post.Category != nil && !hasCategory(out.Categories, post.Category.ID) {
		out.Categories = append(append([]models.Category{}, out.Categories...), *post.Category)
	}
	if post.Location != nil && !hasLocation(out.Locations, post.Location.ID) {
		out.Locations = append(append([]models.Location{}, out.Locations...), *post.Location)
	}
	return out, nil
}

func hasCategory(categories []models.Category, id uint) bool {
	for _, c := range categories {
		if c.ID == id {
			return true
		}
	}
	return false
}

func hasLocation(locations []models.Location, id uint) bool {
	for _, l := range locations {
		if l.ID == id {
			return true
		}
	}
	return false
}

// ChoiceError 表单引用了不存在的分类或地点
type ChoiceError struct {
	Field string
	ID    uint
}

func (e *ChoiceError) Error() string {
	return fmt.Sprintf("invalid %s: %d", e.Field, e.ID)
}

func (e *ChoiceError) Unwrap() error {
	return ErrInvalidChoice
}

// resolveChoices 校验文章引用的分类与地点存在
func resolveChoices(categories repository.CategoryRepository, locations repository.LocationRepository, categoryID, locationID *uint) error {
	if categoryID != nil {
		category, err := categories.GetByID(*categoryID)
		if err != nil {
			return fmt.Errorf("get category failed: %w", err)
		}
		if category == nil {
			return &ChoiceError{Field: "category", ID: *categoryID}
		}
	}
	if locationID != nil {
		location, err := locations.GetByID(*locationID)
		if err != nil {
			return fmt.Errorf("get location failed: %w", err)
		}
		if location == nil {
			return &ChoiceError{Field: "location", ID: *locationID}
		}
	}
	return nil
}
