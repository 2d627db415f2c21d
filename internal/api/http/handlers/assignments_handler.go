package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/assignment-service/internal/api/dto"
	"github.com/spec-kit/assignment-service/internal/auth"
	"github.com/spec-kit/assignment-service/internal/service"
	"github.com/spec-kit/assignment-service/internal/workflow"
	apperrors "github.com/spec-kit/assignment-service/pkg/util/errorutil"
)

// AssignmentsHandler serves assignment reads, creation and transitions.
type AssignmentsHandler struct {
	service *service.AssignmentService
	engine  *workflow.Engine
}

// NewAssignmentsHandler constructs handler.
func NewAssignmentsHandler(assignmentService *service.AssignmentService, engine *workflow.Engine) *AssignmentsHandler {
	return &AssignmentsHandler{service: assignmentService, engine: engine}
}

// ListAssignments GET /assignments.
func (h *AssignmentsHandler) ListAssignments(c *fiber.Ctx) error {
	items, err := h.service.ListAssignments(c.UserContext(), service.AssignmentListFilters{
		AssignedTo: c.Query("assigned_to"),
		Status:     c.Query("status"),
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAssignmentList(items, h.service.Now())})
}

// ListOverdue GET /assignments/overdue.
func (h *AssignmentsHandler) ListOverdue(c *fiber.Ctx) error {
	items, err := h.service.ListOverdue(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAssignmentList(items, h.service.Now())})
}

// ListDeadlineApproaching GET /assignments/deadline-approaching.
func (h *AssignmentsHandler) ListDeadlineApproaching(c *fiber.Ctx) error {
	items, err := h.service.ListDeadlineApproaching(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAssignmentList(items, h.service.Now())})
}

// GetAssignment GET /assignments/:id.
func (h *AssignmentsHandler) GetAssignment(c *fiber.Ctx) error {
	assignment, err := h.service.GetAssignment(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAssignmentResponse(*assignment, h.service.Now())})
}

// GetEvaluation GET /assignments/:id/evaluation.
func (h *AssignmentsHandler) GetEvaluation(c *fiber.Ctx) error {
	evaluation, err := h.service.GetEvaluation(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewEvaluationResponse(*evaluation)})
}

// CreateAssignment POST /assignments.
func (h *AssignmentsHandler) CreateAssignment(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	var req dto.CreateAssignmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	assignment, err := h.service.CreateAssignment(c.UserContext(), actor, service.CreateAssignmentInput{
		Title:          req.Title,
		Description:    req.Description,
		OrganizationID: req.OrganizationID,
		AssigneeIDs:    req.AssigneeIDs,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewAssignmentResponse(*assignment, h.service.Now())})
}

// Transition POST /assignments/:id/transitions.
func (h *AssignmentsHandler) Transition(c *fiber.Ctx) error {
	actor, ok := auth.ActorFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	var req dto.TransitionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Status == "" {
		return apperrors.NewValidationError("status required", nil)
	}

	opts := workflow.TransitionOptions{SubmissionText: req.SubmissionText}
	// Without a score there is no evaluation; the engine rejects an evaluate
	// request lacking one after its ordering checks.
	if req.Score != nil {
		input := &workflow.EvaluationInput{Score: *req.Score}
		if req.Feedback != nil {
			input.Feedback = *req.Feedback
		}
		opts.Evaluation = input
	}

	result, err := h.engine.RequestTransition(c.UserContext(), actor, c.Params("id"), req.Status, opts)
	if err != nil {
		return err
	}
	resp := dto.TransitionResponse{
		Action:     result.Action,
		Assignment: dto.NewAssignmentResponse(*result.Assignment, h.service.Now()),
	}
	if result.Evaluation != nil {
		ev := dto.NewEvaluationResponse(*result.Evaluation)
		resp.Evaluation = &ev
	}
	return c.JSON(fiber.Map{"data": resp})
}
