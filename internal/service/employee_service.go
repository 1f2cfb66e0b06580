package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/fieldops/attendance-service/internal/auth"
	"github.com/fieldops/attendance-service/internal/config"
	"github.com/fieldops/attendance-service/internal/domain"
	"github.com/fieldops/attendance-service/internal/events"
	"github.com/fieldops/attendance-service/internal/repository"
	apperrors "github.com/fieldops/attendance-service/pkg/util"
)

// EmployeeService is the administrator-facing employee directory.
type EmployeeService struct {
	employees  repository.EmployeeRepository
	revoker    sessionRevoker
	dispatcher events.Dispatcher
	bcryptCost int
}

// DirectoryDependencies bundles collaborators for the management services.
type DirectoryDependencies struct {
	EmployeeRepo repository.EmployeeRepository
	AdminRepo    repository.AdminRepository
	Registry     *auth.SessionRegistry
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
}

// EmployeeCreateInput carries a new account issued by an administrator.
type EmployeeCreateInput struct {
	Name     string
	Account  string
	Password string
}

// EmployeeUpdateInput holds optional changes; nil fields are left untouched.
type EmployeeUpdateInput struct {
	Name     *string
	IsActive *bool
}

// NewEmployeeService constructs the service.
func NewEmployeeService(cfg config.Config, deps DirectoryDependencies) *EmployeeService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmployeeService{
		employees:  deps.EmployeeRepo,
		revoker:    sessionRevoker{registry: deps.Registry, dispatcher: deps.Dispatcher, logger: logger},
		dispatcher: deps.Dispatcher,
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// Create hashes the initial password and stores an active employee.
func (s *EmployeeService) Create(ctx context.Context, input EmployeeCreateInput) (*domain.Employee, error) {
	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	employee := &domain.Employee{
		Name:         strings.TrimSpace(input.Name),
		Account:      strings.TrimSpace(input.Account),
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := s.employees.Create(ctx, employee); err != nil {
		if apperrors.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict("account already exists", map[string]any{"account": employee.Account})
		}
		return nil, apperrors.MapError(err)
	}
	return employee, nil
}

// List returns employees matching filter.
func (s *EmployeeService) List(ctx context.Context, filter repository.EmployeeFilter) ([]domain.Employee, error) {
	employees, err := s.employees.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return employees, nil
}

// Get loads one employee.
func (s *EmployeeService) Get(ctx context.Context, id int64) (*domain.Employee, error) {
	employee, err := s.employees.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "employee", id)
	}
	return employee, nil
}

// Update applies name/active changes. Disabling an active employee logs
// them out of every device immediately.
func (s *EmployeeService) Update(ctx context.Context, actorID, id int64, input EmployeeUpdateInput) (*domain.Employee, error) {
	employee, err := s.employees.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "employee", id)
	}

	wasActive := employee.IsActive
	if input.Name != nil {
		employee.Name = strings.TrimSpace(*input.Name)
	}
	if input.IsActive != nil {
		employee.IsActive = *input.IsActive
	}
	if err := s.employees.Update(ctx, employee); err != nil {
		return nil, apperrors.MapError(err)
	}

	if wasActive && !employee.IsActive {
		s.revoker.revoke(ctx, adminActor(actorID), id, domain.RoleEmployee, TriggerDisabled)
		publish(ctx, s.dispatcher, events.New(events.EventEmployeeDisabled, adminActor(actorID),
			events.EmployeeDisabledPayload{EmployeeID: id}))
	}
	return employee, nil
}

// ResetPassword sets a new password without the old one and forces re-login.
func (s *EmployeeService) ResetPassword(ctx context.Context, actorID, id int64, newPassword string) error {
	employee, err := s.employees.GetByID(ctx, id)
	if err != nil {
		return notFound(err, "employee", id)
	}
	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	employee.PasswordHash = hash
	if err := s.employees.Update(ctx, employee); err != nil {
		return apperrors.MapError(err)
	}
	s.revoker.revoke(ctx, adminActor(actorID), id, domain.RoleEmployee, TriggerPasswordReset)
	return nil
}

// UnbindWeChat clears the bound openid so the next login binds afresh.
func (s *EmployeeService) UnbindWeChat(ctx context.Context, id int64) (*domain.Employee, error) {
	employee, err := s.employees.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "employee", id)
	}
	employee.WeChatOpenID = nil
	if err := s.employees.Update(ctx, employee); err != nil {
		return nil, apperrors.MapError(err)
	}
	return employee, nil
}

// Delete removes the employee and every session they hold.
func (s *EmployeeService) Delete(ctx context.Context, actorID, id int64) error {
	if err := s.employees.Delete(ctx, id); err != nil {
		return notFound(err, "employee", id)
	}
	s.revoker.revoke(ctx, adminActor(actorID), id, domain.RoleEmployee, TriggerDeleted)
	return nil
}
