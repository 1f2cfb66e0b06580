package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/fieldops/attendance-service/internal/domain"
)

// TokenHeader is the request header carrying the credential.
const TokenHeader = "token"

const principalKey = "auth_principal"

// Principal represents the authenticated caller.
type Principal struct {
	Role     domain.Role
	Token    string
	Employee *domain.Employee
	Admin    *domain.Admin
}

// RequireEmployee admits only active employees.
func (g *Guard) RequireEmployee() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := tokenFromRequest(c)
		employee, err := g.AuthenticateEmployee(c.UserContext(), token)
		if err != nil {
			return err
		}
		SetPrincipal(c, &Principal{Role: domain.RoleEmployee, Token: token, Employee: employee})
		return c.Next()
	}
}

// RequireAdmin admits only administrators.
func (g *Guard) RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := tokenFromRequest(c)
		admin, err := g.AuthenticateAdmin(c.UserContext(), token)
		if err != nil {
			return err
		}
		SetPrincipal(c, &Principal{Role: domain.RoleAdmin, Token: token, Admin: admin})
		return c.Next()
	}
}

// SetPrincipal stores the authenticated caller on the request.
func SetPrincipal(c *fiber.Ctx, p *Principal) {
	c.Locals(principalKey, p)
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}

func tokenFromRequest(c *fiber.Ctx) string {
	return strings.TrimSpace(c.Get(TokenHeader))
}
