package handler

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/dealboard/dealboard/internal/model"
	"github.com/dealboard/dealboard/internal/service"
)

// SubmissionServiceInterface defines the interface for submission business logic.
type SubmissionServiceInterface interface {
	Create(ctx context.Context, req *model.CreateSubmissionRequest) (*model.Submission, error)
	List(ctx context.Context) ([]model.Submission, error)
	Stats(ctx context.Context) (*model.SubmissionStats, error)
}

// SubmissionHandler handles HTTP requests for deal submissions and the listing.
type SubmissionHandler struct {
	service   SubmissionServiceInterface
	validator *validator.Validate
}

// NewSubmissionHandler creates a new SubmissionHandler with the given service and validator.
func NewSubmissionHandler(svc SubmissionServiceInterface, v *validator.Validate) *SubmissionHandler {
	return &SubmissionHandler{service: svc, validator: v}
}

// CreateSubmission handles POST /api/submissions requests. The submission and
// its invite consumption are applied in one server-side transaction.
func (h *SubmissionHandler) CreateSubmission(c *fiber.Ctx) error {
	var req model.CreateSubmissionRequest

	// Parse JSON body
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	// Validate request
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	sub, err := h.service.Create(c.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrMissingInvite) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invite code is required"})
		}
		if errors.Is(err, service.ErrInviteNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "invalid invite code"})
		}
		if errors.Is(err, service.ErrInviteUsed) || errors.Is(err, service.ErrSubmissionExists) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "invite code already used"})
		}
		if errors.Is(err, service.ErrInvalidRequest) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
		}
		log.Error().
			Err(err).
			Str("request_id", c.GetRespHeader("X-Request-ID")).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Str("platform", req.Platform).
			Msg("failed to create submission")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	log.Info().
		Str("request_id", c.GetRespHeader("X-Request-ID")).
		Str("submission_id", sub.ID).
		Str("invite_id", sub.InviteID).
		Msg("submission created")

	return c.Status(fiber.StatusCreated).JSON(sub)
}

// ListSubmissions handles GET /api/submissions requests, newest first.
func (h *SubmissionHandler) ListSubmissions(c *fiber.Ctx) error {
	subs, err := h.service.List(c.Context())
	if err != nil {
		log.Error().
			Err(err).
			Str("request_id", c.GetRespHeader("X-Request-ID")).
			Msg("failed to list submissions")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.JSON(model.ListSubmissionsResponse{Submissions: subs})
}

// GetStats handles GET /api/submissions/stats requests.
func (h *SubmissionHandler) GetStats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.Context())
	if err != nil {
		log.Error().
			Err(err).
			Str("request_id", c.GetRespHeader("X-Request-ID")).
			Msg("failed to compute submission stats")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.JSON(stats)
}
