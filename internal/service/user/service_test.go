package user

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
	"github.com/allservices/marketplace-api/pkg/audit"
	"github.com/allservices/marketplace-api/pkg/auth"
	apperrors "github.com/allservices/marketplace-api/pkg/errors"
)

func newJWT(t *testing.T) auth.JWTService {
	t.Helper()
	jwtSvc, err := auth.NewJWTService(auth.Config{Secret: "test-secret", Issuer: "test"})
	require.NoError(t, err)
	return jwtSvc
}

func TestUpdateMe(t *testing.T) {
	ctx := context.Background()

	t.Run("names and roles", func(t *testing.T) {
		users := &mocks.UserRepository{}
		pros := &mocks.ProfessionalRepository{}
		jwtSvc := newJWT(t)
		svc := NewService(mocks.Transactor{}, users, pros, jwtSvc, audit.Nop())

		id := uuid.New()
		first := "Marie"
		users.On("UpdateNames", mock.Anything, id, &first, (*string)(nil)).Return(nil)
		users.On("GetByID", mock.Anything, id).Return(&model.User{ID: id, FirstName: first, Role: model.RoleCustomer}, nil)
		users.On("UpdateRole", mock.Anything, id, model.RolePro).Return(nil)
		pros.On("EnsureProfile", mock.Anything, id).Return(nil)

		resp, err := svc.UpdateMe(ctx, id, &model.UpdateMeRequest{FirstName: &first, Roles: []string{"artisan"}})
		require.NoError(t, err)
		assert.Equal(t, "Marie", resp.User.FirstName)
		assert.Equal(t, []model.Capability{model.CapabilityProfessional}, resp.User.Roles)

		claims, err := jwtSvc.ValidateToken(resp.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, string(model.RolePro), claims.Role, "token must carry the new role")
		users.AssertExpectations(t)
		pros.AssertExpectations(t)
	})

	t.Run("admin keeps role", func(t *testing.T) {
		users := &mocks.UserRepository{}
		svc := NewService(mocks.Transactor{}, users, &mocks.ProfessionalRepository{}, newJWT(t), audit.Nop())

		id := uuid.New()
		users.On("UpdateNames", mock.Anything, id, (*string)(nil), (*string)(nil)).Return(nil)
		users.On("GetByID", mock.Anything, id).Return(&model.User{ID: id, Role: model.RoleAdmin}, nil)

		resp, err := svc.UpdateMe(ctx, id, &model.UpdateMeRequest{Roles: []string{"customer"}})
		require.NoError(t, err)
		assert.Len(t, resp.User.Roles, 2)
		users.AssertNotCalled(t, "UpdateRole", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing user", func(t *testing.T) {
		users := &mocks.UserRepository{}
		svc := NewService(mocks.Transactor{}, users, &mocks.ProfessionalRepository{}, newJWT(t), audit.Nop())

		id := uuid.New()
		users.On("UpdateNames", mock.Anything, id, mock.Anything, mock.Anything).Return(repository.ErrNotFound)

		_, err := svc.UpdateMe(ctx, id, &model.UpdateMeRequest{})
		assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
	})
}
