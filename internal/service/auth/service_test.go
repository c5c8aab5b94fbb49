package auth

import (
	"context"
	"strings"
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
	"github.com/allservices/marketplace-api/pkg/security"
)

type fixture struct {
	svc    *Service
	users  *mocks.UserRepository
	pros   *mocks.ProfessionalRepository
	events *mocks.Emitter
	jwt    auth.JWTService
	hasher security.Hasher
}

func setup(t *testing.T) *fixture {
	t.Helper()
	jwtSvc, err := auth.NewJWTService(auth.Config{Secret: "test-secret", Issuer: "test"})
	require.NoError(t, err)

	f := &fixture{
		users:  &mocks.UserRepository{},
		pros:   &mocks.ProfessionalRepository{},
		events: &mocks.Emitter{},
		jwt:    jwtSvc,
		hasher: security.NewBcryptHasher(4),
	}
	f.svc = NewService(mocks.Transactor{}, f.users, f.pros, f.jwt, f.hasher, f.events, audit.Nop())
	return f
}

func TestRegister(t *testing.T) {
	t.Run("customer by default", func(t *testing.T) {
		f := setup(t)
		f.users.On("Create", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
			return u.Email == "jean@example.com" && u.Role == model.RoleCustomer
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*model.User).ID = uuid.New()
		}).Return(nil)

		resp, err := f.svc.Register(context.Background(), &model.RegisterRequest{
			Email:     "  Jean@Example.com ",
			Password:  "password123",
			FirstName: "Jean",
			LastName:  "Dupont",
		})
		require.NoError(t, err)
		assert.Equal(t, []model.Capability{model.CapabilityCustomer}, resp.User.Roles)

		claims, err := f.jwt.ValidateToken(resp.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, string(model.RoleCustomer), claims.Role)
		f.pros.AssertNotCalled(t, "EnsureProfile", mock.Anything, mock.Anything)
	})

	t.Run("professional alias creates profile", func(t *testing.T) {
		f := setup(t)
		f.users.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.pros.On("EnsureProfile", mock.Anything, mock.Anything).Return(nil)
		f.events.On("Emit", mock.Anything, model.EventProfessionalAdded, mock.Anything).Return(nil)

		resp, err := f.svc.Register(context.Background(), &model.RegisterRequest{
			Email:    "pro@example.com",
			Password: "password123",
			Roles:    []string{"client", "artisan"},
		})
		require.NoError(t, err)
		assert.ElementsMatch(t, []model.Capability{model.CapabilityCustomer, model.CapabilityProfessional}, resp.User.Roles)
		f.pros.AssertExpectations(t)
	})

	t.Run("unknown role", func(t *testing.T) {
		f := setup(t)
		_, err := f.svc.Register(context.Background(), &model.RegisterRequest{
			Email:    "x@example.com",
			Password: "password123",
			Roles:    []string{"wizard"},
		})
		assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest))
	})

	t.Run("password over bcrypt limit", func(t *testing.T) {
		f := setup(t)
		_, err := f.svc.Register(context.Background(), &model.RegisterRequest{
			Email:    "long@example.com",
			Password: strings.Repeat("é", 40),
		})
		assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest))
		f.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("duplicate email", func(t *testing.T) {
		f := setup(t)
		f.users.On("Create", mock.Anything, mock.Anything).Return(repository.ErrDuplicate)

		_, err := f.svc.Register(context.Background(), &model.RegisterRequest{
			Email:    "dup@example.com",
			Password: "password123",
		})
		assert.True(t, apperrors.Is(err, apperrors.ErrBadRequest))
	})
}

func TestLogin(t *testing.T) {
	f := setup(t)
	hash, err := f.hasher.Hash("password123")
	require.NoError(t, err)
	user := &model.User{ID: uuid.New(), Email: "jean@example.com", PasswordHash: hash, Role: model.RolePro}

	f.users.On("GetByEmail", mock.Anything, "jean@example.com").Return(user, nil)
	f.users.On("GetByEmail", mock.Anything, "nobody@example.com").Return(nil, repository.ErrNotFound)

	resp, err := f.svc.Login(context.Background(), &model.LoginRequest{Email: "JEAN@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, []model.Capability{model.CapabilityProfessional}, resp.User.Roles)

	_, err = f.svc.Login(context.Background(), &model.LoginRequest{Email: "jean@example.com", Password: "wrong-password"})
	assert.True(t, apperrors.Is(err, apperrors.ErrUnauthorized))

	_, err = f.svc.Login(context.Background(), &model.LoginRequest{Email: "nobody@example.com", Password: "password123"})
	assert.True(t, apperrors.Is(err, apperrors.ErrUnauthorized))
}

func TestUpgradeRoles(t *testing.T) {
	t.Run("customer becomes both", func(t *testing.T) {
		f := setup(t)
		user := &model.User{ID: uuid.New(), Email: "a@example.com", Role: model.RoleCustomer}
		f.users.On("GetByID", mock.Anything, user.ID).Return(user, nil)
		f.users.On("UpdateRole", mock.Anything, user.ID, model.RoleBoth).Return(nil)
		f.pros.On("EnsureProfile", mock.Anything, user.ID).Return(nil)
		f.events.On("Emit", mock.Anything, model.EventProfessionalAdded, mock.Anything).Return(nil)

		resp, err := f.svc.UpgradeRoles(context.Background(), user.ID, &model.UpgradeRolesRequest{Add: []string{"pro"}})
		require.NoError(t, err)

		claims, err := f.jwt.ValidateToken(resp.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, string(model.RoleBoth), claims.Role)
		f.users.AssertExpectations(t)
	})

	t.Run("no change keeps role", func(t *testing.T) {
		f := setup(t)
		user := &model.User{ID: uuid.New(), Role: model.RoleAdmin}
		f.users.On("GetByID", mock.Anything, user.ID).Return(user, nil)

		resp, err := f.svc.UpgradeRoles(context.Background(), user.ID, &model.UpgradeRolesRequest{Add: []string{"customer"}})
		require.NoError(t, err)
		assert.Len(t, resp.User.Roles, 2)
		f.users.AssertNotCalled(t, "UpdateRole", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing user", func(t *testing.T) {
		f := setup(t)
		id := uuid.New()
		f.users.On("GetByID", mock.Anything, id).Return(nil, repository.ErrNotFound)

		_, err := f.svc.UpgradeRoles(context.Background(), id, &model.UpgradeRolesRequest{Add: []string{"pro"}})
		assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
	})
}

func TestEmailExists(t *testing.T) {
	f := setup(t)
	f.users.On("EmailExists", mock.Anything, "a@example.com").Return(true, nil)

	exists, err := f.svc.EmailExists(context.Background(), " A@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = f.svc.EmailExists(context.Background(), "   ")
	require.NoError(t, err)
	assert.False(t, exists)
}
