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

type CategoryService interface {
	Create(ctx context.Context, in dto.CreateCategoryDTO) (*dto.CategoryResponse, error)
	List(ctx context.Context, page, pageSize int) (*dto.PaginatedCategoryResponse, error)
	Get(ctx context.Context, slug string) (*dto.CategoryResponse, error)
	UpdateName(ctx context.Context, slug, name string) (*dto.CategoryResponse, error)
	Delete(ctx context.Context, slug string) error
}

type categoryService struct {
	categoryRepo repository.CategoryRepository
	limits       *Limits
}

func NewCategoryService(categoryRepo repository.CategoryRepository, limits *Limits) CategoryService {
	return &categoryService{
		categoryRepo: categoryRepo,
		limits:       limits,
	}
}

func (s *categoryService) Create(ctx context.Context, in dto.CreateCategoryDTO) (*dto.CategoryResponse, error) {
	fe := apierrors.FieldErrors{}
	fe = validateName(fe, s.limits, in.Name)
	fe = validateSlug(fe, s.limits, in.Slug)
	if err := fieldErrorsOrNil(fe); err != nil {
		return nil, err
	}

	category := &models.Category{
		Name: in.Name,
		Slug: in.Slug,
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apierrors.NewFieldError("slug", "category with this slug already exists")
		}
		return nil, err
	}

	return dto.FromModelToCategoryResponse(category), nil
}

func (s *categoryService) List(ctx context.Context, page, pageSize int) (*dto.PaginatedCategoryResponse, error) {
	categories, total, err := s.categoryRepo.GetAll(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.CategoryResponse, 0, len(categories))
	for i := range categories {
		responses = append(responses, *dto.FromModelToCategoryResponse(&categories[i]))
	}

	return dto.NewPaginatedCategoryResponse(responses, int(total), page, pageSize), nil
}

func (s *categoryService) Get(ctx context.Context, slug string) (*dto.CategoryResponse, error) {
	category, err := s.categoryRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("category %q: %w", slug, apierrors.ErrNotFound)
		}
		return nil, err
	}
	return dto.FromModelToCategoryResponse(category), nil
}

func (s *categoryService) UpdateName(ctx context.Context, slug, name string) (*dto.CategoryResponse, error) {
	fe := validateName(apierrors.FieldErrors{}, s.limits, name)
	if err := fieldErrorsOrNil(fe); err != nil {
		return nil, err
	}

	category, err := s.categoryRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("category %q: %w", slug, apierrors.ErrNotFound)
		}
		return nil, err
	}

	category.Name = name
	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, err
	}

	return dto.FromModelToCategoryResponse(category), nil
}

func (s *categoryService) Delete(ctx context.Context, slug string) error {
	if err := s.categoryRepo.Delete(ctx, slug); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("category %q: %w", slug, apierrors.ErrNotFound)
		}
		return err
	}
	return nil
}
