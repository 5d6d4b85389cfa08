package repository

import (
	"errors"

	"blogicum/internal/models"

	"gorm.io/gorm"
)

// CategoryRepository 分类数据访问接口
type CategoryRepository interface {
	ListPublished() ([]models.Category, error)
	GetPublishedBySlug(slug string) (*models.Category, error)
	GetByID(id uint) (*models.Category, error)
	Create(category *models.Category) error
}

// GormCategoryRepository GORM 实现
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository 创建分类仓库
func NewCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

// ListPublished 已发布的分类
func (r *GormCategoryRepository) ListPublished() ([]models.Category, error) {
	var categories []models.Category
	if err := r.db.Where("is_published = ?", true).Order("title ASC, id ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// GetPublishedBySlug 根据 slug 获取已发布分类
func (r *GormCategoryRepository) GetPublishedBySlug(slug string) (*models.Category, error) {
	var category models.Category
	if err := r.db.Where("slug = ? AND is_published = ?", slug, true).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &category, nil
}

// GetByID 根据 ID 获取分类
func (r *GormCategoryRepository) GetByID(id uint) (*models.Category, error) {
	var category models.Category
	if err := r.db.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &category, nil
}

// Create 创建分类
func (r *GormCategoryRepository) Create(category *models.Category) error {
	return r.db.Create(category).Error
}

// LocationRepository 地点数据访问接口
type LocationRepository interface {
	ListPublished() ([]models.Location, error)
	GetByID(id uint) (*models.Location, error)
	Create(location *models.Location) error
}

// GormLocationRepository GORM 实现
type GormLocationRepository struct {
	db *gorm.DB
}

// NewLocationRepository 创建地点仓库
func NewLocationRepository(db *gorm.DB) *GormLocationRepository {
	return &GormLocationRepository{db: db}
}

func (r *GormLocationRepository) ListPublished() ([]models.Location, error) {
	var locations []models.Location
	if err := r.db.Where("is_published = ?", true).Order("name ASC, id ASC").Find(&locations).Error; err != nil {
		return nil, err
	}
	return locations, nil
}

func (r *GormLocationRepository) GetByID(id uint) (*models.Location, error) {
	var location models.Location
	if err := r.db.First(&location, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &location, nil
}

func (r *GormLocationRepository) Create(location *models.Location) error {
	return r.db.Create(location).Error
}
