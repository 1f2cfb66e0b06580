package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/fieldops/attendance-service/internal/api/dto"
	"github.com/fieldops/attendance-service/internal/auth"
	"github.com/fieldops/attendance-service/internal/domain"
	"github.com/fieldops/attendance-service/internal/repository"
	"github.com/fieldops/attendance-service/internal/service"
)

// EmployeeDirectory is the subset of the employee service used over HTTP.
type EmployeeDirectory interface {
	Create(ctx context.Context, input service.EmployeeCreateInput) (*domain.Employee, error)
	List(ctx context.Context, filter repository.EmployeeFilter) ([]domain.Employee, error)
	Update(ctx context.Context, actorID, id int64, input service.EmployeeUpdateInput) (*domain.Employee, error)
	ResetPassword(ctx context.Context, actorID, id int64, newPassword string) error
	UnbindWeChat(ctx context.Context, id int64) (*domain.Employee, error)
	Delete(ctx context.Context, actorID, id int64) error
}

// EmployeesHandler exposes employee administration.
type EmployeesHandler struct {
	employees EmployeeDirectory
}

// NewEmployeesHandler constructs handler.
func NewEmployeesHandler(employees EmployeeDirectory) *EmployeesHandler {
	return &EmployeesHandler{employees: employees}
}

// Create handles POST /api/v1/admin/employees.
func (h *EmployeesHandler) Create(c *fiber.Ctx) error {
	var req dto.EmployeeCreateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	employee, err := h.employees.Create(c.UserContext(), service.EmployeeCreateInput{
		Name:     req.Name,
		Account:  req.Account,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, dto.NewEmployeeResponse(employee))
}

// List handles GET /api/v1/admin/employees?keyword=&is_active=&skip=&limit=.
func (h *EmployeesHandler) List(c *fiber.Ctx) error {
	limit, offset, err := page(c)
	if err != nil {
		return err
	}
	active, err := optionalBool("is_active", c.Query("is_active"))
	if err != nil {
		return err
	}
	employees, err := h.employees.List(c.UserContext(), repository.EmployeeFilter{
		Keyword: c.Query("keyword"),
		Active:  active,
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.NewEmployeeList(employees))
}

// Update handles PUT /api/v1/admin/employees/:id.
func (h *EmployeesHandler) Update(c *fiber.Ctx) error {
	_, admin, err := auth.CurrentAdmin(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var req dto.EmployeeUpdateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	employee, err := h.employees.Update(c.UserContext(), admin.ID, id, service.EmployeeUpdateInput{
		Name:     req.Name,
		IsActive: req.IsActive,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.NewEmployeeResponse(employee))
}

// ResetPassword handles POST /api/v1/admin/employees/:id/password.
func (h *EmployeesHandler) ResetPassword(c *fiber.Ctx) error {
	_, admin, err := auth.CurrentAdmin(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var req dto.PasswordSetRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := h.employees.ResetPassword(c.UserContext(), admin.ID, id, req.NewPassword); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// UnbindWeChat handles POST /api/v1/admin/employees/:id/unbind_wechat.
func (h *EmployeesHandler) UnbindWeChat(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	employee, err := h.employees.UnbindWeChat(c.UserContext(), id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, dto.NewEmployeeResponse(employee))
}

// Delete handles DELETE /api/v1/admin/employees/:id.
func (h *EmployeesHandler) Delete(c *fiber.Ctx) error {
	_, admin, err := auth.CurrentAdmin(c)
	if err != nil {
		return err
	}
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.employees.Delete(c.UserContext(), admin.ID, id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
