package repository

import (
	"context"
	"fmt"

	"reviewhub/internal/api/models"

	"gorm.io/gorm"
)

type GenreRepository interface {
	Create(ctx context.Context, genre *models.Genre) error
	GetAll(ctx context.Context, page, pageSize int) ([]models.Genre, int64, error)
	GetBySlug(ctx context.Context, slug string) (*models.Genre, error)
	GetBySlugs(ctx context.Context, slugs []string) ([]models.Genre, error)
	Update(ctx context.Context, genre *models.Genre) error
	Delete(ctx context.Context, slug string) error
}

type genreRepository struct {
	db *gorm.DB
}

func NewGenreRepository(db *gorm.DB) GenreRepository {
	return &genreRepository{db: db}
}

func (r *genreRepository) Create(ctx context.Context, genre *models.Genre) error {
	if err := r.db.WithContext(ctx).Create(genre).Error; err != nil {
		return fmt.Errorf("create genre: %w", err)
	}
	return nil
}

func (r *genreRepository) GetAll(ctx context.Context, page, pageSize int) ([]models.Genre, int64, error) {
	var list []models.Genre
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Genre{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := r.db.WithContext(ctx).
		Order("name").
		Limit(pageSize).
		Offset(offset).
		Find(&list).Error; err != nil {
		return nil, 0, err
	}

	return list, total, nil
}

func (r *genreRepository) GetBySlug(ctx context.Context, slug string) (*models.Genre, error) {
	var genre models.Genre
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&genre).Error; err != nil {
		return nil, err
	}
	return &genre, nil
}

// GetBySlugs returns the genres matching the given slugs. Callers compare the
// result length against the input to detect unresolvable slugs.
func (r *genreRepository) GetBySlugs(ctx context.Context, slugs []string) ([]models.Genre, error) {
	var genres []models.Genre
	if len(slugs) == 0 {
		return genres, nil
	}
	if err := r.db.WithContext(ctx).Where("slug IN ?", slugs).Find(&genres).Error; err != nil {
		return nil, fmt.Errorf("get genres by slugs: %w", err)
	}
	return genres, nil
}

func (r *genreRepository) Update(ctx context.Context, genre *models.Genre) error {
	if err := r.db.WithContext(ctx).Save(genre).Error; err != nil {
		return fmt.Errorf("update genre: %w", err)
	}
	return nil
}

func (r *genreRepository) Delete(ctx context.Context, slug string) error {
	result := r.db.WithContext(ctx).Where("slug = ?", slug).Delete(&models.Genre{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
