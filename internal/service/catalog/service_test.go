package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/allservices/marketplace-api/internal/model"
	"github.com/allservices/marketplace-api/internal/repository"
	"github.com/allservices/marketplace-api/internal/repository/mocks"
	apperrors "github.com/allservices/marketplace-api/pkg/errors"
)

func TestListCategories_Cached(t *testing.T) {
	repo := &mocks.CatalogRepository{}
	svc := NewService(repo, Config{})

	categories := []*model.ServiceCategory{{ID: uuid.New(), Name: "Plomberie", Slug: "plomberie"}}
	repo.On("ListCategories", mock.Anything).Return(categories, nil).Once()

	for i := 0; i < 3; i++ {
		got, err := svc.ListCategories(context.Background())
		require.NoError(t, err)
		assert.Equal(t, categories, got)
	}
	repo.AssertNumberOfCalls(t, "ListCategories", 1)
}

func TestCreateService(t *testing.T) {
	price := 60.0

	t.Run("defaults price type", func(t *testing.T) {
		repo := &mocks.CatalogRepository{}
		svc := NewService(repo, Config{})
		proID, catID := uuid.New(), uuid.New()

		repo.On("GetCategoryBySlug", mock.Anything, "plomberie").Return(&model.ServiceCategory{ID: catID}, nil)
		repo.On("CreateService", mock.Anything, mock.MatchedBy(func(s *model.Service) bool {
			return s.CategoryID == catID && s.PriceType == model.PriceStartingFrom && s.PriceAmount == 60
		})).Return(nil)

		out, err := svc.CreateService(context.Background(), proID, &model.CreateServiceRequest{
			CategorySlug: "plomberie",
			Title:        "Réparation fuite",
			PriceAmount:  &price,
		})
		require.NoError(t, err)
		assert.Equal(t, proID, out.ProfessionalID)
		repo.AssertExpectations(t)
	})

	t.Run("unknown category", func(t *testing.T) {
		repo := &mocks.CatalogRepository{}
		svc := NewService(repo, Config{})
		repo.On("GetCategoryBySlug", mock.Anything, "jardinage").Return(nil, repository.ErrNotFound)

		_, err := svc.CreateService(context.Background(), uuid.New(), &model.CreateServiceRequest{
			CategorySlug: "jardinage",
			Title:        "Tonte",
			PriceAmount:  &price,
		})
		assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest))
	})
}

func TestDeleteService_OtherOwner(t *testing.T) {
	repo := &mocks.CatalogRepository{}
	svc := NewService(repo, Config{})
	repo.On("DeactivateService", mock.Anything, mock.Anything, mock.Anything).Return(repository.ErrNotFound)

	err := svc.DeleteService(context.Background(), uuid.New(), uuid.New())
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}
