package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/allservices/marketplace-api/internal/model"
	"github.com/allservices/marketplace-api/internal/repository"
	"github.com/allservices/marketplace-api/internal/service/event"
	"github.com/allservices/marketplace-api/pkg/audit"
	"github.com/allservices/marketplace-api/pkg/auth"
	apperrors "github.com/allservices/marketplace-api/pkg/errors"
	"github.com/allservices/marketplace-api/pkg/security"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type Service struct {
	tx       repository.Transactor
	userRepo repository.UserRepository
	proRepo  repository.ProfessionalRepository
	jwtSvc   auth.JWTService
	hasher   security.Hasher
	events   event.Emitter
	auditor  *audit.Logger
}

func NewService(
	tx repository.Transactor,
	userRepo repository.UserRepository,
	proRepo repository.ProfessionalRepository,
	jwtSvc auth.JWTService,
	hasher security.Hasher,
	events event.Emitter,
	auditor *audit.Logger,
) *Service {
	return &Service{
		tx:       tx,
		userRepo: userRepo,
		proRepo:  proRepo,
		jwtSvc:   jwtSvc,
		hasher:   hasher,
		events:   events,
		auditor:  auditor,
	}
}

// Register creates the user and, when the professional capability is
// requested, an empty professional profile.
func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error) {
	email := model.NormalizeEmail(req.Email)
	if email == "" {
		return nil, apperrors.BadRequest("email is required", nil)
	}

	caps, err := model.ParseCapabilities(req.Roles)
	if err != nil {
		return nil, apperrors.BadRequest(err.Error(), err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if errors.Is(err, security.ErrPasswordTooShort) || errors.Is(err, security.ErrPasswordTooLong) {
		return nil, apperrors.BadRequest(err.Error(), err)
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleFromCapabilities(caps),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.userRepo.Create(ctx, user); err != nil {
			return err
		}
		return s.enableProfessional(ctx, user)
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, apperrors.BadRequest("user already exists", err)
	}
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to register user: %w", err))
	}

	s.auditor.Action(ctx, user.ID, "register", "user", user.ID, zap.String("role", string(user.Role)))
	return s.authResponse(user)
}

func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, model.NormalizeEmail(req.Email))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.Unauthorized(ErrInvalidCredentials)
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		s.auditor.Denied(ctx, user.ID, "session", user.ID, "bad password")
		return nil, apperrors.Unauthorized(ErrInvalidCredentials)
	}

	return s.authResponse(user)
}

func (s *Service) Me(ctx context.Context, userID uuid.UUID) (*model.UserView, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.View(), nil
}

// UpgradeRoles adds capabilities to the caller and returns a fresh token
// carrying the new role.
func (s *Service) UpgradeRoles(ctx context.Context, userID uuid.UUID, req *model.UpgradeRolesRequest) (*model.AuthResponse, error) {
	add, err := model.ParseCapabilities(req.Add)
	if err != nil {
		return nil, apperrors.BadRequest(err.Error(), err)
	}

	var user *model.User
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		u, err := s.getUser(ctx, userID)
		if err != nil {
			return err
		}
		user = u
		next := model.MergeCapabilities(u.Role, add)
		if next == u.Role {
			return nil
		}
		if err := s.userRepo.UpdateRole(ctx, u.ID, next); err != nil {
			return err
		}
		u.Role = next
		return s.enableProfessional(ctx, u)
	})
	if err != nil {
		if _, ok := apperrors.As(err); ok {
			return nil, err
		}
		return nil, apperrors.Internal(fmt.Errorf("failed to upgrade roles: %w", err))
	}

	s.auditor.Action(ctx, user.ID, "upgrade_roles", "user", user.ID, zap.String("role", string(user.Role)))
	return s.authResponse(user)
}

func (s *Service) EmailExists(ctx context.Context, email string) (bool, error) {
	clean := model.NormalizeEmail(email)
	if clean == "" {
		return false, nil
	}
	exists, err := s.userRepo.EmailExists(ctx, clean)
	if err != nil {
		return false, apperrors.Internal(err)
	}
	return exists, nil
}

// enableProfessional makes sure a professional has a profile row.
func (s *Service) enableProfessional(ctx context.Context, user *model.User) error {
	if !user.Role.Has(model.CapabilityProfessional) {
		return nil
	}
	if err := s.proRepo.EnsureProfile(ctx, user.ID); err != nil {
		return err
	}
	return s.events.Emit(ctx, model.EventProfessionalAdded, map[string]interface{}{
		"user_id": user.ID,
	})
}

func (s *Service) getUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("user", err)
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return user, nil
}

func (s *Service) authResponse(user *model.User) (*model.AuthResponse, error) {
	token, err := s.jwtSvc.GenerateAccessToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return &model.AuthResponse{AccessToken: token, User: user.View()}, nil
}
