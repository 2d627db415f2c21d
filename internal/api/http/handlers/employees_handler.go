package handlers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/assignment-service/internal/api/dto"
	"github.com/spec-kit/assignment-service/internal/export"
	"github.com/spec-kit/assignment-service/internal/profile"
	"github.com/spec-kit/assignment-service/internal/service"
)

// EmployeesHandler serves employee and profile endpoints.
type EmployeesHandler struct {
	employees  *service.EmployeeService
	aggregator *profile.Aggregator
	now        func() time.Time
}

// NewEmployeesHandler constructs handler.
func NewEmployeesHandler(employees *service.EmployeeService, aggregator *profile.Aggregator, now func() time.Time) *EmployeesHandler {
	if now == nil {
		now = time.Now
	}
	return &EmployeesHandler{employees: employees, aggregator: aggregator, now: now}
}

// ListEmployees GET /employees.
func (h *EmployeesHandler) ListEmployees(c *fiber.Ctx) error {
	items, err := h.employees.ListEmployees(c.UserContext(), service.EmployeeListFilters{
		Role:           c.Query("role"),
		OrganizationID: c.Query("organization_id"),
	})
	if err != nil {
		return err
	}
	out := make([]dto.EmployeeResponse, 0, len(items))
	for _, e := range items {
		out = append(out, dto.NewEmployeeResponse(e))
	}
	return c.JSON(fiber.Map{"data": out})
}

// GetEmployee GET /employees/:id.
func (h *EmployeesHandler) GetEmployee(c *fiber.Ctx) error {
	employee, err := h.employees.GetEmployee(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewEmployeeResponse(*employee)})
}

// GetProfile GET /employees/:id/profile.
func (h *EmployeesHandler) GetProfile(c *fiber.Ctx) error {
	p, err := h.aggregator.LoadProfile(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewProfileResponse(*p, h.now())})
}

// GetProfilePDF GET /employees/:id/profile.pdf.
func (h *EmployeesHandler) GetProfilePDF(c *fiber.Ctx) error {
	p, err := h.aggregator.LoadProfile(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	body, err := export.RenderProfilePDF(*p, h.now())
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="profile-%s.pdf"`, p.Employee.ID))
	return c.Send(body)
}

// GetProfileCSV GET /employees/:id/profile.csv.
func (h *EmployeesHandler) GetProfileCSV(c *fiber.Ctx) error {
	p, err := h.aggregator.LoadProfile(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	body, err := export.RenderProfileCSV(*p, h.now())
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="profile-%s.csv"`, p.Employee.ID))
	return c.Send(body)
}
