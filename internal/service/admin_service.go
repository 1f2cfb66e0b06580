package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/fieldops/attendance-service/internal/auth"
	"github.com/fieldops/attendance-service/internal/config"
	"github.com/fieldops/attendance-service/internal/domain"
	"github.com/fieldops/attendance-service/internal/repository"
	apperrors "github.com/fieldops/attendance-service/pkg/util"
)

// AdminService manages administrator accounts.
type AdminService struct {
	admins     repository.AdminRepository
	revoker    sessionRevoker
	bcryptCost int
	logger     *zap.Logger
}

// NewAdminService constructs the service.
func NewAdminService(cfg config.Config, deps DirectoryDependencies) *AdminService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminService{
		admins:     deps.AdminRepo,
		revoker:    sessionRevoker{registry: deps.Registry, dispatcher: deps.Dispatcher, logger: logger},
		bcryptCost: cfg.Auth.BcryptCost,
		logger:     logger,
	}
}

// Create adds an administrator; a taken username is a conflict.
func (s *AdminService) Create(ctx context.Context, username, password string) (*domain.Admin, error) {
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	admin := &domain.Admin{Username: strings.TrimSpace(username), PasswordHash: hash}
	if err := s.admins.Create(ctx, admin); err != nil {
		if apperrors.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict("username already exists", map[string]any{"username": admin.Username})
		}
		return nil, apperrors.MapError(err)
	}
	return admin, nil
}

// List returns administrators, optionally filtered by username substring.
func (s *AdminService) List(ctx context.Context, filter repository.AdminFilter) ([]domain.Admin, error) {
	admins, err := s.admins.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return admins, nil
}

// Rename changes an administrator's username.
func (s *AdminService) Rename(ctx context.Context, id int64, username string) (*domain.Admin, error) {
	admin, err := s.admins.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "admin", id)
	}
	admin.Username = strings.TrimSpace(username)
	if err := s.admins.Update(ctx, admin); err != nil {
		if apperrors.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict("username already exists", map[string]any{"username": admin.Username})
		}
		return nil, apperrors.MapError(err)
	}
	return admin, nil
}

// SetPassword overwrites another administrator's password and logs them out.
func (s *AdminService) SetPassword(ctx context.Context, actorID, id int64, newPassword string) error {
	admin, err := s.admins.GetByID(ctx, id)
	if err != nil {
		return notFound(err, "admin", id)
	}
	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	admin.PasswordHash = hash
	if err := s.admins.Update(ctx, admin); err != nil {
		return apperrors.MapError(err)
	}
	s.revoker.revoke(ctx, adminActor(actorID), id, domain.RoleAdmin, TriggerPasswordReset)
	return nil
}

// Delete removes an administrator other than the caller.
func (s *AdminService) Delete(ctx context.Context, actorID, id int64) error {
	if actorID == id {
		return apperrors.NewValidationError("cannot delete the administrator you are logged in as", map[string]any{"id": id})
	}
	if err := s.admins.Delete(ctx, id); err != nil {
		return notFound(err, "admin", id)
	}
	s.revoker.revoke(ctx, adminActor(actorID), id, domain.RoleAdmin, TriggerDeleted)
	return nil
}

// EnsureDefaultAdmin creates the bootstrap administrator when the table is
// empty. An empty password disables bootstrapping.
func (s *AdminService) EnsureDefaultAdmin(ctx context.Context, username, password string) error {
	if strings.TrimSpace(username) == "" || password == "" {
		s.logger.Info("bootstrap admin disabled")
		return nil
	}
	n, err := s.admins.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	if _, err := s.admins.GetByUsername(ctx, username); err == nil {
		return nil
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}
	admin, err := s.Create(ctx, username, password)
	if err != nil {
		return err
	}
	s.logger.Info("bootstrap admin created", zap.Int64("admin_id", admin.ID), zap.String("username", admin.Username))
	return nil
}
