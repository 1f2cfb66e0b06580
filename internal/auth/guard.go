package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/fieldops/attendance-service/internal/domain"
	"github.com/fieldops/attendance-service/internal/observability"
	apperrors "github.com/fieldops/attendance-service/pkg/util"
)

// EmployeeLookup is the system of record for employee accounts.
type EmployeeLookup interface {
	GetByID(ctx context.Context, id int64) (*domain.Employee, error)
}

// AdminLookup is the system of record for administrator accounts.
type AdminLookup interface {
	GetByID(ctx context.Context, id int64) (*domain.Admin, error)
}

// Guard authenticates a presented credential in three steps: the session
// registry must know it, the signature must verify, and the identity must
// still exist (and be active) in the system of record. The last step runs
// on every request so administrative changes apply immediately.
type Guard struct {
	registry  *SessionRegistry
	tokens    *TokenManager
	employees EmployeeLookup
	admins    AdminLookup
	logger    *zap.Logger
}

// NewGuard wires the guard to its collaborators.
func NewGuard(registry *SessionRegistry, tokens *TokenManager, employees EmployeeLookup, admins AdminLookup, logger *zap.Logger) *Guard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guard{
		registry:  registry,
		tokens:    tokens,
		employees: employees,
		admins:    admins,
		logger:    logger,
	}
}

// AuthenticateEmployee resolves token to an active employee.
func (g *Guard) AuthenticateEmployee(ctx context.Context, token string) (*domain.Employee, error) {
	subjectID, err := g.checkCredential(token, domain.RoleEmployee)
	if err != nil {
		return nil, err
	}

	employee, err := g.employees.GetByID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			g.registry.Delete(token)
			return nil, g.reject(domain.RoleEmployee, "identity_missing",
				apperrors.NewNotFound("employee", map[string]any{"id": subjectID}))
		}
		return nil, apperrors.MapError(err)
	}

	if !employee.IsActive {
		revoked := g.registry.ClearFor(employee.ID, domain.RoleEmployee)
		observability.SessionsRevokedTotal.WithLabelValues(domain.RoleEmployee.String(), "disabled_on_request").Add(float64(revoked))
		g.logger.Info("revoked sessions of disabled employee",
			zap.Int64("employee_id", employee.ID),
			zap.Int("sessions", revoked))
		return nil, g.reject(domain.RoleEmployee, "identity_disabled",
			apperrors.NewForbidden("account has been disabled"))
	}

	return employee, nil
}

// AuthenticateAdmin resolves token to an existing administrator.
func (g *Guard) AuthenticateAdmin(ctx context.Context, token string) (*domain.Admin, error) {
	subjectID, err := g.checkCredential(token, domain.RoleAdmin)
	if err != nil {
		return nil, err
	}

	admin, err := g.admins.GetByID(ctx, subjectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			g.registry.Delete(token)
			return nil, g.reject(domain.RoleAdmin, "identity_missing",
				apperrors.NewNotFound("admin", map[string]any{"id": subjectID}))
		}
		return nil, apperrors.MapError(err)
	}
	return admin, nil
}

// checkCredential runs the registry and signature phases and returns the
// subject id carried by the token.
func (g *Guard) checkCredential(token string, required domain.Role) (int64, error) {
	if token == "" {
		return 0, g.reject(required, "missing_token", apperrors.NewUnauthorized("missing token"))
	}

	sess, ok := g.registry.Get(token)
	if !ok {
		return 0, g.reject(required, "no_session", apperrors.NewUnauthorized("session expired, please log in again"))
	}
	if sess.Role != required {
		return 0, g.reject(required, "role_mismatch", apperrors.NewForbidden("token not valid for this role"))
	}

	claims, err := g.tokens.Verify(token)
	if err != nil {
		return 0, g.reject(required, "bad_signature", apperrors.NewUnauthorized("invalid token"))
	}
	subjectID, err := claims.SubjectID()
	if err != nil {
		return 0, g.reject(required, "bad_signature", apperrors.NewUnauthorized("invalid token"))
	}
	if subjectID != sess.SubjectID || claims.Role != required.String() {
		return 0, g.reject(required, "subject_mismatch", apperrors.NewUnauthorized("invalid token"))
	}
	return subjectID, nil
}

func (g *Guard) reject(role domain.Role, reason string, err error) error {
	observability.GuardRejectionsTotal.WithLabelValues(role.String(), reason).Inc()
	return err
}
