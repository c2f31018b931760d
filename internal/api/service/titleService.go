package service

import (
	"context"
	"errors"
	"fmt"

	"reviewhub/internal/api/apierrors"
	"reviewhub/internal/api/dto"
	"reviewhub/internal/api/models"
	"reviewhub/internal/api/repository"

	"gorm.io/gorm"
)

type TitleService interface {
	Create(ctx context.Context, in dto.CreateTitleDTO) (*dto.TitleResponse, error)
	List(ctx context.Context, filters dto.TitleFilters) (*dto.PaginatedTitleResponse, error)
	Get(ctx context.Context, id int64) (*dto.TitleResponse, error)
	Update(ctx context.Context, id int64, in dto.UpdateTitleDTO) (*dto.TitleResponse, error)
	Delete(ctx context.Context, id int64) error
}

type titleService struct {
	titleRepo    repository.TitleRepository
	categoryRepo repository.CategoryRepository
	genreRepo    repository.GenreRepository
	reviewRepo   repository.ReviewRepository
	limits       *Limits
}

func NewTitleService(
	titleRepo repository.TitleRepository,
	categoryRepo repository.CategoryRepository,
	genreRepo repository.GenreRepository,
	reviewRepo repository.ReviewRepository,
	limits *Limits,
) TitleService {
	return &titleService{
		titleRepo:    titleRepo,
		categoryRepo: categoryRepo,
		genreRepo:    genreRepo,
		reviewRepo:   reviewRepo,
		limits:       limits,
	}
}

// Create validates the write shape and persists the title. Genre and
// category references must resolve to existing rows, unknown slugs fail the
// whole request and nothing is persisted.
func (s *titleService) Create(ctx context.Context, in dto.CreateTitleDTO) (*dto.TitleResponse, error) {
	fe := apierrors.FieldErrors{}
	fe = validateName(fe, s.limits, in.Name)
	fe = validateYear(fe, in.Year)
	if err := fieldErrorsOrNil(fe); err != nil {
		return nil, err
	}

	category, err := s.resolveCategory(ctx, in.Category)
	if err != nil {
		return nil, err
	}
	genres, err := s.resolveGenres(ctx, in.Genre)
	if err != nil {
		return nil, err
	}

	title := &models.Title{
		Name:        in.Name,
		Year:        in.Year,
		Description: in.Description,
		CategoryID:  &category.ID,
		Category:    category,
		Genres:      genres,
	}
	if err := s.titleRepo.Create(ctx, title); err != nil {
		return nil, err
	}

	// a fresh title has no reviews yet, the rating is absent
	return dto.FromModelToTitleResponse(title, nil), nil
}

func (s *titleService) List(ctx context.Context, filters dto.TitleFilters) (*dto.PaginatedTitleResponse, error) {
	titles, total, err := s.titleRepo.GetAll(ctx, filters)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(titles))
	for i := range titles {
		ids = append(ids, titles[i].ID)
	}
	averages, err := s.reviewRepo.AverageScores(ctx, ids)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.TitleResponse, 0, len(titles))
	for i := range titles {
		var rating *float64
		if avg, ok := averages[titles[i].ID]; ok {
			rating = &avg
		}
		responses = append(responses, *dto.FromModelToTitleResponse(&titles[i], rating))
	}

	return dto.NewPaginatedTitleResponse(responses, int(total), filters.Page, filters.PageSize), nil
}

func (s *titleService) Get(ctx context.Context, id int64) (*dto.TitleResponse, error) {
	title, err := s.titleRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("title %d: %w", id, apierrors.ErrNotFound)
		}
		return nil, err
	}

	rating, err := s.reviewRepo.AverageScore(ctx, id)
	if err != nil {
		return nil, err
	}

	return dto.FromModelToTitleResponse(title, rating), nil
}

func (s *titleService) Update(ctx context.Context, id int64, in dto.UpdateTitleDTO) (*dto.TitleResponse, error) {
	title, err := s.titleRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("title %d: %w", id, apierrors.ErrNotFound)
		}
		return nil, err
	}

	fe := apierrors.FieldErrors{}
	if in.Name != nil {
		fe = validateName(fe, s.limits, *in.Name)
	}
	if in.Year != nil {
		fe = validateYear(fe, *in.Year)
	}
	if err := fieldErrorsOrNil(fe); err != nil {
		return nil, err
	}

	if in.Name != nil {
		title.Name = *in.Name
	}
	if in.Year != nil {
		title.Year = *in.Year
	}
	if in.Description != nil {
		title.Description = *in.Description
	}
	if in.Category != nil {
		category, err := s.resolveCategory(ctx, *in.Category)
		if err != nil {
			return nil, err
		}
		title.CategoryID = &category.ID
		title.Category = category
	}

	if err := s.titleRepo.Update(ctx, title); err != nil {
		return nil, err
	}

	if in.Genre != nil {
		genres, err := s.resolveGenres(ctx, *in.Genre)
		if err != nil {
			return nil, err
		}
		if err := s.titleRepo.ReplaceGenres(ctx, id, genres); err != nil {
			return nil, err
		}
	}

	// reload so the response reflects the stored associations
	updated, err := s.titleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	rating, err := s.reviewRepo.AverageScore(ctx, id)
	if err != nil {
		return nil, err
	}

	return dto.FromModelToTitleResponse(updated, rating), nil
}

func (s *titleService) Delete(ctx context.Context, id int64) error {
	if err := s.titleRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("title %d: %w", id, apierrors.ErrNotFound)
		}
		return err
	}
	return nil
}

func (s *titleService) resolveCategory(ctx context.Context, slug string) (*models.Category, error) {
	category, err := s.categoryRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierrors.NewFieldError("category", fmt.Sprintf("category %q does not exist", slug))
		}
		return nil, err
	}
	return category, nil
}

// resolveGenres maps slugs to genre rows. Every slug must resolve, a missing
// one is a validation error rather than a silently created placeholder.
func (s *titleService) resolveGenres(ctx context.Context, slugs []string) ([]models.Genre, error) {
	// dedupe, repeated slugs in the payload are not an error
	unique := make([]string, 0, len(slugs))
	seen := make(map[string]bool, len(slugs))
	for _, slug := range slugs {
		if !seen[slug] {
			seen[slug] = true
			unique = append(unique, slug)
		}
	}

	genres, err := s.genreRepo.GetBySlugs(ctx, unique)
	if err != nil {
		return nil, err
	}
	if len(genres) != len(unique) {
		found := make(map[string]bool, len(genres))
		for _, g := range genres {
			found[g.Slug] = true
		}
		fe := apierrors.FieldErrors{}
		for _, slug := range unique {
			if !found[slug] {
				fe = fe.Add("genre", fmt.Sprintf("genre %q does not exist", slug))
			}
		}
		return nil, fe
	}
	return genres, nil
}
