package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"reviewhub/internal/api/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockTitleService mocks the TitleService interface
type MockTitleService struct {
	mock.Mock
}

func (m *MockTitleService) Create(ctx context.Context, in dto.CreateTitleDTO) (*dto.TitleResponse, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.TitleResponse), args.Error(1)
}

func (m *MockTitleService) List(ctx context.Context, filters dto.TitleFilters) (*dto.PaginatedTitleResponse, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.PaginatedTitleResponse), args.Error(1)
}

func (m *MockTitleService) Get(ctx context.Context, id int64) (*dto.TitleResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.TitleResponse), args.Error(1)
}

func (m *MockTitleService) Update(ctx context.Context, id int64, in dto.UpdateTitleDTO) (*dto.TitleResponse, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.TitleResponse), args.Error(1)
}

func (m *MockTitleService) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// The rating key must be present and explicitly null for an unreviewed title.
func TestGetTitle_UnreviewedRatingIsNull(t *testing.T) {
	mockService := new(MockTitleService)
	handler := NewTitleHandler(mockService)
	router := setupRouter()
	router.GET("/titles/:title_id", handler.Get)

	mockService.On("Get", mock.Anything, int64(10)).Return(&dto.TitleResponse{
		ID:     10,
		Name:   "Dune",
		Year:   1965,
		Rating: nil,
		Genre:  []dto.GenreResponse{},
	}, nil)

	req, _ := http.NewRequest("GET", "/titles/10", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var raw map[string]json.RawMessage
	json.Unmarshal(w.Body.Bytes(), &raw)
	assert.Contains(t, raw, "rating")
	assert.Equal(t, "null", string(raw["rating"]))
}

func TestListTitles_FiltersForwarded(t *testing.T) {
	mockService := new(MockTitleService)
	handler := NewTitleHandler(mockService)
	router := setupRouter()
	router.GET("/titles", handler.List)

	year := 1965
	expected := dto.TitleFilters{
		Category: "book",
		Genre:    "sci-fi",
		Name:     "dune",
		Year:     &year,
		Page:     2,
		PageSize: 5,
	}
	mockService.On("List", mock.Anything, expected).Return(&dto.PaginatedTitleResponse{
		Data:     []dto.TitleResponse{},
		Page:     2,
		PageSize: 5,
	}, nil)

	req, _ := http.NewRequest("GET", "/titles?category=book&genre=sci-fi&name=dune&year=1965&page=2&page_size=5", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestListTitles_BadYearFilter(t *testing.T) {
	mockService := new(MockTitleService)
	handler := NewTitleHandler(mockService)
	router := setupRouter()
	router.GET("/titles", handler.List)

	req, _ := http.NewRequest("GET", "/titles?year=abc", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestGetTitle_InvalidID(t *testing.T) {
	mockService := new(MockTitleService)
	handler := NewTitleHandler(mockService)
	router := setupRouter()
	router.GET("/titles/:title_id", handler.Get)

	req, _ := http.NewRequest("GET", "/titles/abc", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}
