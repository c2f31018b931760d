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

type CommentService interface {
	Create(ctx context.Context, authorID string, titleID, reviewID int64, in dto.CreateCommentDTO) (*dto.CommentResponse, error)
	Update(ctx context.Context, callerID string, role models.Role, titleID, reviewID, commentID int64, in dto.UpdateCommentDTO) (*dto.CommentResponse, error)
	Delete(ctx context.Context, callerID string, role models.Role, titleID, reviewID, commentID int64) error
	Get(ctx context.Context, titleID, reviewID, commentID int64) (*dto.CommentResponse, error)
	GetByReview(ctx context.Context, titleID, reviewID int64, page, pageSize int) (*dto.PaginatedCommentResponse, error)
}

type commentService struct {
	commentRepo repository.CommentRepository
	reviewRepo  repository.ReviewRepository
}

func NewCommentService(commentRepo repository.CommentRepository, reviewRepo repository.ReviewRepository) CommentService {
	return &commentService{
		commentRepo: commentRepo,
		reviewRepo:  reviewRepo,
	}
}

// Create attaches a comment to a review. The author is the authenticated
// caller, payload identity fields are ignored.
func (s *commentService) Create(ctx context.Context, authorID string, titleID, reviewID int64, in dto.CreateCommentDTO) (*dto.CommentResponse, error) {
	if _, err := s.reviewRepo.GetByID(ctx, titleID, reviewID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("review %d: %w", reviewID, apierrors.ErrNotFound)
		}
		return nil, err
	}

	comment := &models.Comment{
		Text:     in.Text,
		AuthorID: authorID,
		ReviewID: reviewID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	created, err := s.commentRepo.GetByID(ctx, reviewID, comment.ID)
	if err != nil {
		return nil, err
	}

	return dto.FromModelToCommentResponse(created), nil
}

func (s *commentService) Update(ctx context.Context, callerID string, role models.Role, titleID, reviewID, commentID int64, in dto.UpdateCommentDTO) (*dto.CommentResponse, error) {
	comment, err := s.getScoped(ctx, titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}

	if !canModify(role, comment.AuthorID == callerID) {
		return nil, fmt.Errorf("only the author, a moderator or an admin may edit a comment: %w", apierrors.ErrForbidden)
	}

	comment.Text = in.Text
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}

	updated, err := s.commentRepo.GetByID(ctx, reviewID, commentID)
	if err != nil {
		return nil, err
	}

	return dto.FromModelToCommentResponse(updated), nil
}

func (s *commentService) Delete(ctx context.Context, callerID string, role models.Role, titleID, reviewID, commentID int64) error {
	comment, err := s.getScoped(ctx, titleID, reviewID, commentID)
	if err != nil {
		return err
	}

	if !canModify(role, comment.AuthorID == callerID) {
		return fmt.Errorf("only the author, a moderator or an admin may delete a comment: %w", apierrors.ErrForbidden)
	}

	return s.commentRepo.Delete(ctx, comment.ID)
}

func (s *commentService) Get(ctx context.Context, titleID, reviewID, commentID int64) (*dto.CommentResponse, error) {
	comment, err := s.getScoped(ctx, titleID, reviewID, commentID)
	if err != nil {
		return nil, err
	}
	return dto.FromModelToCommentResponse(comment), nil
}

func (s *commentService) GetByReview(ctx context.Context, titleID, reviewID int64, page, pageSize int) (*dto.PaginatedCommentResponse, error) {
	if _, err := s.reviewRepo.GetByID(ctx, titleID, reviewID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("review %d: %w", reviewID, apierrors.ErrNotFound)
		}
		return nil, err
	}

	comments, total, err := s.commentRepo.GetByReview(ctx, reviewID, page, pageSize)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		responses = append(responses, *dto.FromModelToCommentResponse(&comments[i]))
	}

	return dto.NewPaginatedCommentResponse(responses, int(total), page, pageSize), nil
}

// getScoped resolves a comment while verifying the whole nesting chain:
// the review must belong to the title and the comment to the review.
func (s *commentService) getScoped(ctx context.Context, titleID, reviewID, commentID int64) (*models.Comment, error) {
	if _, err := s.reviewRepo.GetByID(ctx, titleID, reviewID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("review %d: %w", reviewID, apierrors.ErrNotFound)
		}
		return nil, err
	}

	comment, err := s.commentRepo.GetByID(ctx, reviewID, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("comment %d: %w", commentID, apierrors.ErrNotFound)
		}
		return nil, err
	}
	return comment, nil
}
