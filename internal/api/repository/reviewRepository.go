package repository

import (
	"context"
	"database/sql"

	"reviewhub/internal/api/models"

	"gorm.io/gorm"
)

type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	Update(ctx context.Context, review *models.Review) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, titleID, reviewID int64) (*models.Review, error)
	GetByAuthorAndTitle(ctx context.Context, authorID string, titleID int64) (*models.Review, error)
	GetByTitle(ctx context.Context, titleID int64, page, pageSize int) ([]models.Review, int64, error)
	AverageScore(ctx context.Context, titleID int64) (*float64, error)
	AverageScores(ctx context.Context, titleIDs []int64) (map[int64]float64, error)
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

// Create inserts the review. The composite unique index on
// (author_id, title_id) makes concurrent duplicate attempts surface as
// gorm.ErrDuplicatedKey, the storage layer is the authority here.
func (r *reviewRepository) Create(ctx context.Context, review *models.Review) error {
	return r.db.WithContext(ctx).Create(review).Error
}

func (r *reviewRepository) Update(ctx context.Context, review *models.Review) error {
	return r.db.WithContext(ctx).Save(review).Error
}

func (r *reviewRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.Review{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// GetByID retrieves a review scoped to its parent title
func (r *reviewRepository) GetByID(ctx context.Context, titleID, reviewID int64) (*models.Review, error) {
	var review models.Review
	err := r.db.WithContext(ctx).
		Where("id = ? AND title_id = ?", reviewID, titleID).
		Preload("Author").
		First(&review).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) GetByAuthorAndTitle(ctx context.Context, authorID string, titleID int64) (*models.Review, error) {
	var review models.Review
	err := r.db.WithContext(ctx).
		Where("author_id = ? AND title_id = ?", authorID, titleID).
		Preload("Author").
		First(&review).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// GetByTitle retrieves all reviews for a title, newest first, with pagination
func (r *reviewRepository) GetByTitle(ctx context.Context, titleID int64, page, pageSize int) ([]models.Review, int64, error) {
	var reviews []models.Review
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Review{}).Where("title_id = ?", titleID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := r.db.WithContext(ctx).
		Where("title_id = ?", titleID).
		Preload("Author").
		Order("pub_date DESC").
		Limit(pageSize).
		Offset(offset).
		Find(&reviews).Error
	if err != nil {
		return nil, 0, err
	}

	return reviews, total, nil
}

// AverageScore computes the mean review score for a title at read time.
// AVG over zero rows is SQL NULL, which comes back as nil instead of being
// collapsed to zero.
func (r *reviewRepository) AverageScore(ctx context.Context, titleID int64) (*float64, error) {
	var avg sql.NullFloat64
	row := r.db.WithContext(ctx).Model(&models.Review{}).
		Select("AVG(score)").
		Where("title_id = ?", titleID).
		Row()
	if err := row.Scan(&avg); err != nil {
		return nil, err
	}
	if !avg.Valid {
		return nil, nil
	}
	return &avg.Float64, nil
}

// AverageScores batches the aggregation for a list read. Titles without
// reviews are simply absent from the returned map.
func (r *reviewRepository) AverageScores(ctx context.Context, titleIDs []int64) (map[int64]float64, error) {
	averages := make(map[int64]float64, len(titleIDs))
	if len(titleIDs) == 0 {
		return averages, nil
	}

	var rows []struct {
		TitleID int64
		Average float64
	}
	err := r.db.WithContext(ctx).Model(&models.Review{}).
		Select("title_id, AVG(score) as average").
		Where("title_id IN ?", titleIDs).
		Group("title_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		averages[row.TitleID] = row.Average
	}
	return averages, nil
}
