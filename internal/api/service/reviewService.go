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

type ReviewService interface {
	Create(ctx context.Context, authorID string, titleID int64, in dto.CreateReviewDTO) (*dto.ReviewResponse, error)
	Update(ctx context.Context, callerID string, role models.Role, titleID, reviewID int64, in dto.UpdateReviewDTO) (*dto.ReviewResponse, error)
	Delete(ctx context.Context, callerID string, role models.Role, titleID, reviewID int64) error
	Get(ctx context.Context, titleID, reviewID int64) (*dto.ReviewResponse, error)
	GetByTitle(ctx context.Context, titleID int64, page, pageSize int) (*dto.PaginatedReviewResponse, error)
}

type reviewService struct {
	reviewRepo repository.ReviewRepository
	titleRepo  repository.TitleRepository
}

func NewReviewService(reviewRepo repository.ReviewRepository, titleRepo repository.TitleRepository) ReviewService {
	return &reviewService{
		reviewRepo: reviewRepo,
		titleRepo:  titleRepo,
	}
}

// Create enforces the one-review-per-(author,title) rule. The author always
// comes from the authenticated caller, never from the payload. The pre-check
// gives a friendly error, the unique constraint settles concurrent attempts.
func (s *reviewService) Create(ctx context.Context, authorID string, titleID int64, in dto.CreateReviewDTO) (*dto.ReviewResponse, error) {
	if _, err := s.titleRepo.GetByID(ctx, titleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("title %d: %w", titleID, apierrors.ErrNotFound)
		}
		return nil, err
	}

	fe := validateScore(apierrors.FieldErrors{}, in.Score)
	if err := fieldErrorsOrNil(fe); err != nil {
		return nil, err
	}

	if _, err := s.reviewRepo.GetByAuthorAndTitle(ctx, authorID, titleID); err == nil {
		return nil, fmt.Errorf("you have already reviewed this title: %w", apierrors.ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	review := &models.Review{
		Text:     in.Text,
		AuthorID: authorID,
		TitleID:  titleID,
		Score:    in.Score,
	}
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("you have already reviewed this title: %w", apierrors.ErrConflict)
		}
		return nil, err
	}

	// reload with the author preloaded for the response shape
	created, err := s.reviewRepo.GetByID(ctx, titleID, review.ID)
	if err != nil {
		return nil, err
	}

	return dto.FromModelToReviewResponse(created), nil
}

// Update mutates a review. Allowed for the author, a moderator or an admin.
// The same-author update path deliberately skips the uniqueness pre-check,
// it is the same row.
func (s *reviewService) Update(ctx context.Context, callerID string, role models.Role, titleID, reviewID int64, in dto.UpdateReviewDTO) (*dto.ReviewResponse, error) {
	review, err := s.reviewRepo.GetByID(ctx, titleID, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("review %d: %w", reviewID, apierrors.ErrNotFound)
		}
		return nil, err
	}

	if !canModify(role, review.AuthorID == callerID) {
		return nil, fmt.Errorf("only the author, a moderator or an admin may edit a review: %w", apierrors.ErrForbidden)
	}

	if in.Score != nil {
		fe := validateScore(apierrors.FieldErrors{}, *in.Score)
		if err := fieldErrorsOrNil(fe); err != nil {
			return nil, err
		}
		review.Score = *in.Score
	}
	if in.Text != nil {
		review.Text = *in.Text
	}

	if err := s.reviewRepo.Update(ctx, review); err != nil {
		return nil, err
	}

	updated, err := s.reviewRepo.GetByID(ctx, titleID, reviewID)
	if err != nil {
		return nil, err
	}

	return dto.FromModelToReviewResponse(updated), nil
}

func (s *reviewService) Delete(ctx context.Context, callerID string, role models.Role, titleID, reviewID int64) error {
	review, err := s.reviewRepo.GetByID(ctx, titleID, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("review %d: %w", reviewID, apierrors.ErrNotFound)
		}
		return err
	}

	if !canModify(role, review.AuthorID == callerID) {
		return fmt.Errorf("only the author, a moderator or an admin may delete a review: %w", apierrors.ErrForbidden)
	}

	return s.reviewRepo.Delete(ctx, review.ID)
}

func (s *reviewService) Get(ctx context.Context, titleID, reviewID int64) (*dto.ReviewResponse, error) {
	review, err := s.reviewRepo.GetByID(ctx, titleID, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("review %d: %w", reviewID, apierrors.ErrNotFound)
		}
		return nil, err
	}
	return dto.FromModelToReviewResponse(review), nil
}

func (s *reviewService) GetByTitle(ctx context.Context, titleID int64, page, pageSize int) (*dto.PaginatedReviewResponse, error) {
	if _, err := s.titleRepo.GetByID(ctx, titleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("title %d: %w", titleID, apierrors.ErrNotFound)
		}
		return nil, err
	}

	reviews, total, err := s.reviewRepo.GetByTitle(ctx, titleID, page, pageSize)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.ReviewResponse, 0, len(reviews))
	for i := range reviews {
		responses = append(responses, *dto.FromModelToReviewResponse(&reviews[i]))
	}

	return dto.NewPaginatedReviewResponse(responses, int(total), page, pageSize), nil
}
