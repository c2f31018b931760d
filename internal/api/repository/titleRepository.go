package repository

import (
	"context"
	"fmt"

	"reviewhub/internal/api/dto"
	"reviewhub/internal/api/models"

	"gorm.io/gorm"
)

type TitleRepository interface {
	Create(ctx context.Context, title *models.Title) error
	GetAll(ctx context.Context, filters dto.TitleFilters) ([]models.Title, int64, error)
	GetByID(ctx context.Context, id int64) (*models.Title, error)
	Update(ctx context.Context, title *models.Title) error
	ReplaceGenres(ctx context.Context, titleID int64, genres []models.Genre) error
	Delete(ctx context.Context, id int64) error
}

type titleRepository struct {
	db *gorm.DB
}

func NewTitleRepository(db *gorm.DB) TitleRepository {
	return &titleRepository{db: db}
}

func (r *titleRepository) Create(ctx context.Context, title *models.Title) error {
	if err := r.db.WithContext(ctx).Create(title).Error; err != nil {
		return fmt.Errorf("create title: %w", err)
	}
	return nil
}

// GetAll lists titles with the supported filters applied. Genre and category
// filters match by slug, name is a case-insensitive substring match.
func (r *titleRepository) GetAll(ctx context.Context, filters dto.TitleFilters) ([]models.Title, int64, error) {
	var list []models.Title
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Title{})

	if filters.Category != "" {
		query = query.Joins("JOIN categories ON categories.id = titles.category_id").
			Where("categories.slug = ?", filters.Category)
	}
	if filters.Genre != "" {
		query = query.Joins("JOIN genre_titles ON genre_titles.title_id = titles.id").
			Joins("JOIN genres ON genres.id = genre_titles.genre_id").
			Where("genres.slug = ?", filters.Genre)
	}
	if filters.Name != "" {
		query = query.Where("titles.name ILIKE ?", "%"+filters.Name+"%")
	}
	if filters.Year != nil {
		query = query.Where("titles.year = ?", *filters.Year)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filters.Page - 1) * filters.PageSize
	if err := query.
		Preload("Genres").
		Preload("Category").
		Order("titles.name").
		Limit(filters.PageSize).
		Offset(offset).
		Find(&list).Error; err != nil {
		return nil, 0, err
	}

	return list, total, nil
}

func (r *titleRepository) GetByID(ctx context.Context, id int64) (*models.Title, error) {
	var title models.Title
	if err := r.db.WithContext(ctx).
		Preload("Genres").
		Preload("Category").
		First(&title, id).Error; err != nil {
		return nil, err
	}
	return &title, nil
}

func (r *titleRepository) Update(ctx context.Context, title *models.Title) error {
	// Save would also try to upsert the association slices, genres are
	// replaced explicitly through ReplaceGenres instead.
	if err := r.db.WithContext(ctx).
		Omit("Genres", "Category").
		Save(title).Error; err != nil {
		return fmt.Errorf("update title: %w", err)
	}
	return nil
}

func (r *titleRepository) ReplaceGenres(ctx context.Context, titleID int64, genres []models.Genre) error {
	tx := r.db.WithContext(ctx).Begin()
	var title models.Title
	if err := tx.First(&title, titleID).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("title not found: %w", err)
	}
	if err := tx.Model(&title).Association("Genres").Replace(&genres); err != nil {
		tx.Rollback()
		return fmt.Errorf("replace genres: %w", err)
	}
	return tx.Commit().Error
}

func (r *titleRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.Title{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete title: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
