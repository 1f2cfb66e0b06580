package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/fieldops/attendance-service/internal/auth"
	"github.com/fieldops/attendance-service/internal/config"
	"github.com/fieldops/attendance-service/internal/domain"
	"github.com/fieldops/attendance-service/internal/events"
	"github.com/fieldops/attendance-service/internal/observability"
	"github.com/fieldops/attendance-service/internal/repository"
	apperrors "github.com/fieldops/attendance-service/pkg/util"
)

// WeChatExchanger resolves a mini-program login code to an openid.
type WeChatExchanger interface {
	ExchangeCode(ctx context.Context, code string) (string, error)
}

// AuthService coordinates login, logout and self-service password changes.
type AuthService struct {
	employees   repository.EmployeeRepository
	admins      repository.AdminRepository
	registry    *auth.SessionRegistry
	tokens      *auth.TokenManager
	wechat      WeChatExchanger
	revoker     sessionRevoker
	dispatcher  events.Dispatcher
	employeeTTL time.Duration
	adminTTL    time.Duration
	bcryptCost  int
	logger      *zap.Logger
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	EmployeeRepo repository.EmployeeRepository
	AdminRepo    repository.AdminRepository
	Registry     *auth.SessionRegistry
	Tokens       *auth.TokenManager
	WeChat       WeChatExchanger
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
}

// LoginResult is returned by both login flows.
type LoginResult struct {
	Token    domain.Token
	Employee *domain.Employee
	Admin    *domain.Admin
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		employees:   deps.EmployeeRepo,
		admins:      deps.AdminRepo,
		registry:    deps.Registry,
		tokens:      deps.Tokens,
		wechat:      deps.WeChat,
		revoker:     sessionRevoker{registry: deps.Registry, dispatcher: deps.Dispatcher, logger: logger},
		dispatcher:  deps.Dispatcher,
		employeeTTL: cfg.Auth.EmployeeTokenTTL(),
		adminTTL:    cfg.Auth.AdminTokenTTL(),
		bcryptCost:  cfg.Auth.BcryptCost,
		logger:      logger,
	}
}

var errBadCredentials = apperrors.NewUnauthorized("invalid account or password")

// LoginEmployee checks the password, exchanges the WeChat code and binds
// the openid on first login. A different openid than the bound one is refused.
func (s *AuthService) LoginEmployee(ctx context.Context, account, password, code string) (res *LoginResult, err error) {
	defer func() { recordLogin(domain.RoleEmployee, err) }()

	employee, err := s.employees.GetByAccount(ctx, strings.TrimSpace(account))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errBadCredentials
		}
		return nil, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(employee.PasswordHash, password); err != nil {
		return nil, errBadCredentials
	}
	if !employee.IsActive {
		return nil, apperrors.NewForbidden("account has been disabled")
	}

	openID, err := s.wechat.ExchangeCode(ctx, code)
	if err != nil {
		return nil, err
	}

	switch {
	case employee.WeChatOpenID == nil || *employee.WeChatOpenID == "":
		employee.WeChatOpenID = &openID
		if err := s.employees.Update(ctx, employee); err != nil {
			if apperrors.IsUniqueViolation(err) {
				return nil, apperrors.NewConflict("this wechat user is bound to another account", nil)
			}
			return nil, apperrors.MapError(err)
		}
		s.logger.Info("wechat bound", zap.Int64("employee_id", employee.ID))
		publish(ctx, s.dispatcher, events.New(events.EventWeChatBound, employeeActor(employee.ID),
			events.WeChatBoundPayload{EmployeeID: employee.ID}))
	case *employee.WeChatOpenID != openID:
		return nil, apperrors.NewForbidden("account is bound to another wechat user, contact an administrator")
	}

	token, err := s.issue(employee.ID, domain.RoleEmployee, s.employeeTTL)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, Employee: employee}, nil
}

// LoginAdmin authenticates an administrator by username and password.
func (s *AuthService) LoginAdmin(ctx context.Context, username, password string) (res *LoginResult, err error) {
	defer func() { recordLogin(domain.RoleAdmin, err) }()

	admin, err := s.admins.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errBadCredentials
		}
		return nil, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(admin.PasswordHash, password); err != nil {
		return nil, errBadCredentials
	}

	token, err := s.issue(admin.ID, domain.RoleAdmin, s.adminTTL)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, Admin: admin}, nil
}

// Logout invalidates only the presented credential.
func (s *AuthService) Logout(_ context.Context, token string) {
	s.registry.Delete(token)
}

// ChangeEmployeePassword verifies the old password, stores the new one and
// logs the employee out everywhere.
func (s *AuthService) ChangeEmployeePassword(ctx context.Context, employeeID int64, oldPassword, newPassword string) error {
	employee, err := s.employees.GetByID(ctx, employeeID)
	if err != nil {
		return notFound(err, "employee", employeeID)
	}
	if err := auth.ComparePassword(employee.PasswordHash, oldPassword); err != nil {
		return apperrors.NewValidationError("old password is incorrect", map[string]any{"field": "old_password"})
	}
	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	employee.PasswordHash = hash
	if err := s.employees.Update(ctx, employee); err != nil {
		return apperrors.MapError(err)
	}
	s.revoker.revoke(ctx, employeeActor(employeeID), employeeID, domain.RoleEmployee, TriggerPasswordChanged)
	return nil
}

// ChangeAdminPassword is the administrator counterpart of ChangeEmployeePassword.
func (s *AuthService) ChangeAdminPassword(ctx context.Context, adminID int64, oldPassword, newPassword string) error {
	admin, err := s.admins.GetByID(ctx, adminID)
	if err != nil {
		return notFound(err, "admin", adminID)
	}
	if err := auth.ComparePassword(admin.PasswordHash, oldPassword); err != nil {
		return apperrors.NewValidationError("old password is incorrect", map[string]any{"field": "old_password"})
	}
	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	admin.PasswordHash = hash
	if err := s.admins.Update(ctx, admin); err != nil {
		return apperrors.MapError(err)
	}
	s.revoker.revoke(ctx, adminActor(adminID), adminID, domain.RoleAdmin, TriggerPasswordChanged)
	return nil
}

// issue signs a token and records the session with the same lifetime.
func (s *AuthService) issue(subjectID int64, role domain.Role, ttl time.Duration) (domain.Token, error) {
	value, expiresAt, err := s.tokens.Issue(subjectID, role, ttl)
	if err != nil {
		return domain.Token{}, apperrors.NewInternalError(err)
	}
	s.registry.Put(value, subjectID, role, ttl)
	return domain.Token{Value: value, SubjectID: subjectID, Role: role, ExpiresAt: expiresAt}, nil
}

func recordLogin(role domain.Role, err error) {
	result := "success"
	if err != nil {
		result = strings.ToLower(apperrors.ToDomainError(err).Code)
	}
	observability.LoginsTotal.WithLabelValues(role.String(), result).Inc()
}
