package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/allservices/marketplace-api/internal/model"
	"github.com/allservices/marketplace-api/internal/repository"
	"github.com/allservices/marketplace-api/pkg/audit"
	"github.com/allservices/marketplace-api/pkg/auth"
	apperrors "github.com/allservices/marketplace-api/pkg/errors"
)

type Service struct {
	tx      repository.Transactor
	repo    repository.UserRepository
	proRepo repository.ProfessionalRepository
	jwtSvc  auth.JWTService
	auditor *audit.Logger
}

func NewService(tx repository.Transactor, repo repository.UserRepository, proRepo repository.ProfessionalRepository, jwtSvc auth.JWTService, auditor *audit.Logger) *Service {
	return &Service{
		tx:      tx,
		repo:    repo,
		proRepo: proRepo,
		jwtSvc:  jwtSvc,
		auditor: auditor,
	}
}

func (s *Service) GetMe(ctx context.Context, id uuid.UUID) (*model.UserView, error) {
	user, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("user", err)
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return user.View(), nil
}

// UpdateMe patches names and, when roles are given, replaces the capability
// set. Admins keep their stored role. The returned token carries the new role,
// since capability checks read it from the JWT.
func (s *Service) UpdateMe(ctx context.Context, id uuid.UUID, req *model.UpdateMeRequest) (*model.AuthResponse, error) {
	var caps []model.Capability
	if req.Roles != nil {
		parsed, err := model.ParseCapabilities(req.Roles)
		if err != nil {
			return nil, apperrors.BadRequest(err.Error(), err)
		}
		caps = parsed
	}

	var user *model.User
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.repo.UpdateNames(ctx, id, req.FirstName, req.LastName); err != nil {
			return err
		}
		u, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		user = u

		if req.Roles == nil || u.Role == model.RoleAdmin {
			return nil
		}
		next := model.RoleFromCapabilities(caps)
		if next == u.Role {
			return nil
		}
		if err := s.repo.UpdateRole(ctx, id, next); err != nil {
			return err
		}
		u.Role = next
		if next.Has(model.CapabilityProfessional) {
			return s.proRepo.EnsureProfile(ctx, id)
		}
		return nil
	})
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NotFound("user", err)
	}
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to update user: %w", err))
	}

	s.auditor.Action(ctx, id, "update", "user", id, zap.String("role", string(user.Role)))

	token, err := s.jwtSvc.GenerateAccessToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return &model.AuthResponse{AccessToken: token, User: user.View()}, nil
}
