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

type GenreService interface {
	Create(ctx context.Context, in dto.CreateGenreDTO) (*dto.GenreResponse, error)
	List(ctx context.Context, page, pageSize int) (*dto.PaginatedGenreResponse, error)
	Get(ctx context.Context, slug string) (*dto.GenreResponse, error)
	UpdateName(ctx context.Context, slug, name string) (*dto.GenreResponse, error)
	Delete(ctx context.Context, slug string) error
}

type genreService struct {
	genreRepo repository.GenreRepository
	limits    *Limits
}

func NewGenreService(genreRepo repository.GenreRepository, limits *Limits) GenreService {
	return &genreService{
		genreRepo: genreRepo,
		limits:    limits,
	}
}

func (s *genreService) Create(ctx context.Context, in dto.CreateGenreDTO) (*dto.GenreResponse, error) {
	fe := apierrors.FieldErrors{}
	fe = validateName(fe, s.limits, in.Name)
	fe = validateSlug(fe, s.limits, in.Slug)
	if err := fieldErrorsOrNil(fe); err != nil {
		return nil, err
	}

	genre := &models.Genre{
		Name: in.Name,
		Slug: in.Slug,
	}
	if err := s.genreRepo.Create(ctx, genre); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apierrors.NewFieldError("slug", "genre with this slug already exists")
		}
		return nil, err
	}

	return dto.FromModelToGenreResponse(genre), nil
}

func (s *genreService) List(ctx context.Context, page, pageSize int) (*dto.PaginatedGenreResponse, error) {
	genres, total, err := s.genreRepo.GetAll(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.GenreResponse, 0, len(genres))
	for i := range genres {
		responses = append(responses, *dto.FromModelToGenreResponse(&genres[i]))
	}

	return dto.NewPaginatedGenreResponse(responses, int(total), page, pageSize), nil
}

func (s *genreService) Get(ctx context.Context, slug string) (*dto.GenreResponse, error) {
	genre, err := s.genreRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("genre %q: %w", slug, apierrors.ErrNotFound)
		}
		return nil, err
	}
	return dto.FromModelToGenreResponse(genre), nil
}

func (s *genreService) UpdateName(ctx context.Context, slug, name string) (*dto.GenreResponse, error) {
	fe := validateName(apierrors.FieldErrors{}, s.limits, name)
	if err := fieldErrorsOrNil(fe); err != nil {
		return nil, err
	}

	genre, err := s.genreRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("genre %q: %w", slug, apierrors.ErrNotFound)
		}
		return nil, err
	}

	genre.Name = name
	if err := s.genreRepo.Update(ctx, genre); err != nil {
		return nil, err
	}

	return dto.FromModelToGenreResponse(genre), nil
}

func (s *genreService) Delete(ctx context.Context, slug string) error {
	if err := s.genreRepo.Delete(ctx, slug); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("genre %q: %w", slug, apierrors.ErrNotFound)
		}
		return err
	}
	return nil
}
