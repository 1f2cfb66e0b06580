package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fieldops/attendance-service/internal/domain"
	apperrors "github.com/fieldops/attendance-service/pkg/util"
)

// CurrentEmployee returns the employee admitted by RequireEmployee.
func CurrentEmployee(c *fiber.Ctx) (*Principal, *domain.Employee, error) {
	principal, ok := PrincipalFromContext(c)
	if !ok || principal.Role != domain.RoleEmployee || principal.Employee == nil {
		return nil, nil, apperrors.NewUnauthorized("employee authentication required")
	}
	return principal, principal.Employee, nil
}

// CurrentAdmin returns the administrator admitted by RequireAdmin.
func CurrentAdmin(c *fiber.Ctx) (*Principal, *domain.Admin, error) {
	principal, ok := PrincipalFromContext(c)
	if !ok || principal.Role != domain.RoleAdmin || principal.Admin == nil {
		return nil, nil, apperrors.NewUnauthorized("admin authentication required")
	}
	return principal, principal.Admin, nil
}
