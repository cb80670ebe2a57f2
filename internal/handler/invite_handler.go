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

// InviteServiceInterface defines the interface for invite business logic.
type InviteServiceInterface interface {
	Generate(ctx context.Context) (*model.InviteCode, error)
	Verify(ctx context.Context, code string) (*model.InviteCode, error)
	Consume(ctx context.Context, code string) error
	RequestInvite(ctx context.Context, req *model.CreateInviteRequestRequest) error
}

// InviteHandler handles HTTP requests for the invite-code lifecycle.
type InviteHandler struct {
	service   InviteServiceInterface
	validator *validator.Validate
}

// NewInviteHandler creates a new InviteHandler with the given service and validator.
func NewInviteHandler(svc InviteServiceInterface, v *validator.Validate) *InviteHandler {
	return &InviteHandler{service: svc, validator: v}
}

// jsonFieldNames maps struct field names to their wire names for error messages.
var jsonFieldNames = map[string]string{
	"Email":         "email",
	"Platform":      "platform",
	"Category":      "category",
	"FollowerCount": "follower_count",
	"BrandName":     "brand_name",
	"Amount":        "amount",
	"Currency":      "currency",
	"Description":   "description",
	"InviteCode":    "invite_code",
	"InviteID":      "invite_id",
}

// formatValidationError converts validator errors to descriptive client messages.
// Only the first failing field is reported.
func formatValidationError(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			field := jsonFieldNames[fe.Field()]
			if field == "" {
				field = fe.Field()
			}

			switch fe.Tag() {
			case "required":
				return "invalid request: " + field + " is required"
			case "notblank":
				return "invalid request: " + field + " cannot be whitespace only"
			case "email":
				return "invalid request: " + field + " must be a valid email address"
			case "gte":
				return "invalid request: " + field + " must not be negative"
			case "max":
				return "invalid request: " + field + " exceeds maximum length"
			default:
				return "invalid request: " + field + " is invalid"
			}
		}
	}
	return "invalid request"
}

// GenerateInvite handles POST /api/invites requests to mint a fresh invite code.
func (h *InviteHandler) GenerateInvite(c *fiber.Ctx) error {
	invite, err := h.service.Generate(c.Context())
	if err != nil {
		log.Error().
			Err(err).
			Str("request_id", c.GetRespHeader("X-Request-ID")).
			Msg("failed to generate invite")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to generate invite"})
	}

	log.Info().
		Str("request_id", c.GetRespHeader("X-Request-ID")).
		Str("invite_id", invite.ID).
		Msg("invite generated")

	return c.Status(fiber.StatusCreated).JSON(model.GenerateInviteResponse{Code: invite.Code})
}

// VerifyInvite handles GET /api/invites/:code/verify requests.
func (h *InviteHandler) VerifyInvite(c *fiber.Ctx) error {
	code := c.Params("code")
	if code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request: code is required",
		})
	}

	invite, err := h.service.Verify(c.Context(), code)
	if err != nil {
		if errors.Is(err, service.ErrInviteNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "invalid invite code"})
		}
		if errors.Is(err, service.ErrInviteUsed) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "invite code already used"})
		}
		log.Error().
			Err(err).
			Str("request_id", c.GetRespHeader("X-Request-ID")).
			Msg("failed to verify invite")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.JSON(model.VerifyInviteResponse{Valid: true, InviteID: invite.ID})
}

// ConsumeInvite handles POST /api/invites/:code/consume requests to mark an
// invite as used. Consumption is one-way; a second call gets 409.
func (h *InviteHandler) ConsumeInvite(c *fiber.Ctx) error {
	code := c.Params("code")
	if code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request: code is required",
		})
	}

	if err := h.service.Consume(c.Context(), code); err != nil {
		if errors.Is(err, service.ErrInviteNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "invalid invite code"})
		}
		if errors.Is(err, service.ErrInviteUsed) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "invite code already used"})
		}
		log.Error().
			Err(err).
			Str("request_id", c.GetRespHeader("X-Request-ID")).
			Msg("failed to consume invite")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	log.Info().
		Str("request_id", c.GetRespHeader("X-Request-ID")).
		Msg("invite consumed")

	return c.JSON(fiber.Map{"success": true})
}

// RequestInvite handles POST /api/invite-requests, the waitlist intake.
func (h *InviteHandler) RequestInvite(c *fiber.Ctx) error {
	var req model.CreateInviteRequestRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	if err := h.service.RequestInvite(c.Context(), &req); err != nil {
		if errors.Is(err, service.ErrInvalidRequest) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
		}
		log.Error().
			Err(err).
			Str("request_id", c.GetRespHeader("X-Request-ID")).
			Msg("failed to submit invite request")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	log.Info().
		Str("request_id", c.GetRespHeader("X-Request-ID")).
		Str("platform", req.Platform).
		Msg("invite request recorded")

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true})
}
