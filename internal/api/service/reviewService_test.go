package service

import (
	"context"
	"errors"
	"testing"

	"reviewhub/internal/api/apierrors"
	"reviewhub/internal/api/dto"
	"reviewhub/internal/api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

func TestCreateReview_Success(t *testing.T) {
	mockReviewRepo := new(MockReviewRepository)
	mockTitleRepo := new(MockTitleRepository)
	svc := NewReviewService(mockReviewRepo, mockTitleRepo)

	mockTitleRepo.On("GetByID", mock.Anything, int64(1)).Return(&models.Title{ID: 1, Name: "Dune"}, nil)
	mockReviewRepo.On("GetByAuthorAndTitle", mock.Anything, "user-1", int64(1)).
		Return(nil, gorm.ErrRecordNotFound)
	mockReviewRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Review")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*models.Review).ID = 7
		}).
		Return(nil)
	mockReviewRepo.On("GetByID", mock.Anything, int64(1), int64(7)).Return(&models.Review{
		ID:       7,
		Text:     "great",
		AuthorID: "user-1",
		TitleID:  1,
		Score:    8,
		Author:   models.User{ID: "user-1", Username: "alice"},
	}, nil)

	resp, err := svc.Create(context.Background(), "user-1", 1, dto.CreateReviewDTO{Text: "great", Score: 8})

	assert.NoError(t, err)
	assert.Equal(t, int64(7), resp.ID)
	assert.Equal(t, "alice", resp.Author)
	assert.Equal(t, 8, resp.Score)
	mockReviewRepo.AssertExpectations(t)
	mockTitleRepo.AssertExpectations(t)
}

func TestCreateReview_TitleNotFound(t *testing.T) {
	mockReviewRepo := new(MockReviewRepository)
	mockTitleRepo := new(MockTitleRepository)
	svc := NewReviewService(mockReviewRepo, mockTitleRepo)

	mockTitleRepo.On("GetByID", mock.Anything, int64(99)).Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.Create(context.Background(), "user-1", 99, dto.CreateReviewDTO{Text: "x", Score: 5})

	assert.ErrorIs(t, err, apierrors.ErrNotFound)
	mockReviewRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateReview_SecondReviewConflicts(t *testing.T) {
	mockReviewRepo := new(MockReviewRepository)
	mockTitleRepo := new(MockTitleRepository)
	svc := NewReviewService(mockReviewRepo, mockTitleRepo)

	mockTitleRepo.On("GetByID", mock.Anything, int64(1)).Return(&models.Title{ID: 1}, nil)
	mockReviewRepo.On("GetByAuthorAndTitle", mock.Anything, "user-1", int64(1)).
		Return(&models.Review{ID: 3, AuthorID: "user-1", TitleID: 1}, nil)

	_, err := svc.Create(context.Background(), "user-1", 1, dto.CreateReviewDTO{Text: "again", Score: 9})

	assert.ErrorIs(t, err, apierrors.ErrConflict)
	mockReviewRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// A concurrent insert can slip past the pre-check; the unique index reports
// it as a duplicated key and the service still answers with a conflict.
func TestCreateReview_DuplicateKeyRace(t *testing.T) {
	mockReviewRepo := new(MockReviewRepository)
	mockTitleRepo := new(MockTitleRepository)
	svc := NewReviewService(mockReviewRepo, mockTitleRepo)

	mockTitleRepo.On("GetByID", mock.Anything, int64(1)).Return(&models.Title{ID: 1}, nil)
	mockReviewRepo.On("GetByAuthorAndTitle", mock.Anything, "user-1", int64(1)).
		Return(nil, gorm.ErrRecordNotFound)
	mockReviewRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Review")).
		Return(gorm.ErrDuplicatedKey)

	_, err := svc.Create(context.Background(), "user-1", 1, dto.CreateReviewDTO{Text: "race", Score: 7})

	assert.ErrorIs(t, err, apierrors.ErrConflict)
}

func TestCreateReview_ScoreOutOfRange(t *testing.T) {
	mockReviewRepo := new(MockReviewRepository)
	mockTitleRepo := new(MockTitleRepository)
	svc := NewReviewService(mockReviewRepo, mockTitleRepo)

	mockTitleRepo.On("GetByID", mock.Anything, int64(1)).Return(&models.Title{ID: 1}, nil)

	_, err := svc.Create(context.Background(), "user-1", 1, dto.CreateReviewDTO{Text: "x", Score: 11})

	assert.ErrorIs(t, err, apierrors.ErrValidation)
	var fe apierrors.FieldErrors
	assert.ErrorAs(t, err, &fe)
	assert.Contains(t, fe, "score")
	mockReviewRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUpdateReview_OtherUserForbidden(t *testing.T) {
	mockReviewRepo := new(MockReviewRepository)
	mockTitleRepo := new(MockTitleRepository)
	svc := NewReviewService(mockReviewRepo, mockTitleRepo)

	mockReviewRepo.On("GetByID", mock.Anything, int64(1), int64(7)).
		Return(&models.Review{ID: 7, AuthorID: "someone-else", TitleID: 1, Score: 4}, nil)

	text := "hijacked"
	_, err := svc.Update(context.Background(), "user-1", models.RoleUser, 1, 7, dto.UpdateReviewDTO{Text: &text})

	assert.ErrorIs(t, err, apierrors.ErrForbidden)
	mockReviewRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUpdateReview_ModeratorAllowed(t *testing.T) {
	mockReviewRepo := new(MockReviewRepository)
	mockTitleRepo := new(MockTitleRepository)
	svc := NewReviewService(mockReviewRepo, mockTitleRepo)

	stored := &models.Review{ID: 7, AuthorID: "someone-else", TitleID: 1, Score: 4, Text: "meh"}
	mockReviewRepo.On("GetByID", mock.Anything, int64(1), int64(7)).Return(stored, nil)
	mockReviewRepo.On("Update", mock.Anything, mock.AnythingOfType("*models.Review")).Return(nil)

	text := "moderated"
	resp, err := svc.Update(context.Background(), "mod-1", models.RoleModerator, 1, 7, dto.UpdateReviewDTO{Text: &text})

	assert.NoError(t, err)
	assert.Equal(t, "moderated", resp.Text)
	mockReviewRepo.AssertExpectations(t)
}

func TestDeleteReview_AuthorAllowed(t *testing.T) {
	mockReviewRepo := new(MockReviewRepository)
	mockTitleRepo := new(MockTitleRepository)
	svc := NewReviewService(mockReviewRepo, mockTitleRepo)

	mockReviewRepo.On("GetByID", mock.Anything, int64(1), int64(7)).
		Return(&models.Review{ID: 7, AuthorID: "user-1", TitleID: 1}, nil)
	mockReviewRepo.On("Delete", mock.Anything, int64(7)).Return(nil)

	err := svc.Delete(context.Background(), "user-1", models.RoleUser, 1, 7)

	assert.NoError(t, err)
	mockReviewRepo.AssertExpectations(t)
}

func TestDeleteReview_NotFound(t *testing.T) {
	mockReviewRepo := new(MockReviewRepository)
	mockTitleRepo := new(MockTitleRepository)
	svc := NewReviewService(mockReviewRepo, mockTitleRepo)

	mockReviewRepo.On("GetByID", mock.Anything, int64(1), int64(404)).
		Return(nil, gorm.ErrRecordNotFound)

	err := svc.Delete(context.Background(), "user-1", models.RoleAdmin, 1, 404)

	assert.ErrorIs(t, err, apierrors.ErrNotFound)
}

func TestGetReviewsByTitle_TitleNotFound(t *testing.T) {
	mockReviewRepo := new(MockReviewRepository)
	mockTitleRepo := new(MockTitleRepository)
	svc := NewReviewService(mockReviewRepo, mockTitleRepo)

	mockTitleRepo.On("GetByID", mock.Anything, int64(99)).Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.GetByTitle(context.Background(), 99, 1, 20)

	assert.ErrorIs(t, err, apierrors.ErrNotFound)
	mockReviewRepo.AssertNotCalled(t, "GetByTitle", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGetReviewsByTitle_RepoError(t *testing.T) {
	mockReviewRepo := new(MockReviewRepository)
	mockTitleRepo := new(MockTitleRepository)
	svc := NewReviewService(mockReviewRepo, mockTitleRepo)

	mockTitleRepo.On("GetByID", mock.Anything, int64(1)).Return(&models.Title{ID: 1}, nil)
	mockReviewRepo.On("GetByTitle", mock.Anything, int64(1), 1, 20).
		Return(nil, int64(0), errors.New("connection reset"))

	_, err := svc.GetByTitle(context.Background(), 1, 1, 20)

	assert.Error(t, err)
	assert.NotErrorIs(t, err, apierrors.ErrNotFound)
}
