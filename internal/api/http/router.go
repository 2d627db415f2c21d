package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/assignment-service/internal/api/http/handlers"
	"github.com/spec-kit/assignment-service/internal/auth"
	"github.com/spec-kit/assignment-service/internal/domain"
	"github.com/spec-kit/assignment-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Employees      *handlers.EmployeesHandler
	Assignments    *handlers.AssignmentsHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	employees := app.Group("/employees", cfg.AuthMiddleware.Handle)
	employees.Get("/", cfg.Employees.ListEmployees)
	employees.Get("/:id", cfg.Employees.GetEmployee)
	employees.Get("/:id/profile", cfg.Employees.GetProfile)
	employees.Get("/:id/profile.pdf", cfg.Employees.GetProfilePDF)
	employees.Get("/:id/profile.csv", cfg.Employees.GetProfileCSV)

	assignments := app.Group("/assignments", cfg.AuthMiddleware.Handle)
	assignments.Get("/", cfg.Assignments.ListAssignments)
	assignments.Get("/overdue", cfg.Assignments.ListOverdue)
	assignments.Get("/deadline-approaching", cfg.Assignments.ListDeadlineApproaching)
	assignments.Get("/:id", cfg.Assignments.GetAssignment)
	assignments.Get("/:id/evaluation", cfg.Assignments.GetEvaluation)
	assignments.Post("/", auth.RequireRole(domain.EmployeeRoleAdmin), cfg.Assignments.CreateAssignment)
	assignments.Post("/:id/transitions", cfg.Assignments.Transition)
}
