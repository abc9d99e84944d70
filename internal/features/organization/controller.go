package organization

import (
	"errors"

	"go-payables/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type OrganizationController struct {
	Service OrganizationService
}

func NewOrganizationController(service OrganizationService) *OrganizationController {
	return &OrganizationController{Service: service}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrNotMember), errors.Is(err, ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, ErrBadSetting):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// CreateOrganization godoc
// @Summary Create a new organization
// @Tags organizations
// @Accept json
// @Produce json
// @Success 201 {object} Organization
// @Failure 400 {object} map[string]string "Invalid request body"
// @Router /api/organizations [post]
func (c *OrganizationController) CreateOrganization(ctx *fiber.Ctx) error {
	var body struct {
		Name         string `json:"name"`
		BillingEmail string `json:"billing_email"`
	}
	if err := ctx.BodyParser(&body); err != nil || body.Name == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	claims := middleware.Claims(ctx)

	org, err := c.Service.Create(ctx.UserContext(), claims.UserID, body.Name, body.BillingEmail)
	if err != nil {
		return ctx.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.Status(fiber.StatusCreated).JSON(org)
}

// GetOrganization godoc
// @Summary Get an organization the acting user belongs to
// @Tags organizations
// @Produce json
// @Param id path string true "Organization ID"
// @Success 200 {object} Organization
// @Failure 403 {object} map[string]string "Not a member"
// @Failure 404 {object} map[string]string "Not found"
// @Router /api/organizations/{id} [get]
func (c *OrganizationController) GetOrganization(ctx *fiber.Ctx) error {
	claims := middleware.Claims(ctx)

	org, err := c.Service.Get(ctx.UserContext(), claims.UserID, ctx.Params("id"))
	if err != nil {
		return ctx.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(org)
}

// ListOrganizations godoc
// @Summary List organizations the acting user belongs to
// @Tags organizations
// @Produce json
// @Success 200 {array} Organization
// @Router /api/organizations [get]
func (c *OrganizationController) ListOrganizations(ctx *fiber.Ctx) error {
	claims := middleware.Claims(ctx)

	orgs, err := c.Service.ListForUser(ctx.UserContext(), claims.UserID)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(orgs)
}

// AddMember godoc
// @Summary Add a member to an organization
// @Tags organizations
// @Accept json
// @Param id path string true "Organization ID"
// @Success 201 {object} map[string]string "Member added"
// @Failure 403 {object} map[string]string "Forbidden"
// @Router /api/organizations/{id}/members [post]
func (c *OrganizationController) AddMember(ctx *fiber.Ctx) error {
	var body struct {
		Email string     `json:"email"`
		Role  MemberRole `json:"role"`
	}
	if err := ctx.BodyParser(&body); err != nil || body.Email == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if body.Role == "" {
		body.Role = RoleMember
	}

	claims := middleware.Claims(ctx)

	if err := c.Service.AddMember(ctx.UserContext(), claims.UserID, ctx.Params("id"), body.Email, body.Role); err != nil {
		return ctx.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Member added"})
}

// UpdateMemberRole godoc
// @Summary Change a member's role
// @Tags organizations
// @Accept json
// @Param id path string true "Organization ID"
// @Param userId path string true "Member user ID"
// @Success 200 {object} map[string]string "Role updated"
// @Router /api/organizations/{id}/members/{userId} [put]
func (c *OrganizationController) UpdateMemberRole(ctx *fiber.Ctx) error {
	var body struct {
		Role MemberRole `json:"role"`
	}
	if err := ctx.BodyParser(&body); err != nil || body.Role == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	claims := middleware.Claims(ctx)

	if err := c.Service.UpdateMemberRole(ctx.UserContext(), claims.UserID, ctx.Params("id"), ctx.Params("userId"), body.Role); err != nil {
		return ctx.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"message": "Role updated"})
}

// RemoveMember godoc
// @Summary Remove a member from an organization
// @Tags organizations
// @Param id path string true "Organization ID"
// @Param userId path string true "Member user ID"
// @Success 204 {object} nil "No Content"
// @Router /api/organizations/{id}/members/{userId} [delete]
func (c *OrganizationController) RemoveMember(ctx *fiber.Ctx) error {
	claims := middleware.Claims(ctx)

	if err := c.Service.RemoveMember(ctx.UserContext(), claims.UserID, ctx.Params("id"), ctx.Params("userId")); err != nil {
		return ctx.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}

// GetApprovalSettings godoc
// @Summary Get the organization's approval settings
// @Tags organizations
// @Produce json
// @Param id path string true "Organization ID"
// @Success 200 {object} ApprovalSettings
// @Router /api/organizations/{id}/approval-settings [get]
func (c *OrganizationController) GetApprovalSettings(ctx *fiber.Ctx) error {
	claims := middleware.Claims(ctx)

	settings, err := c.Service.GetApprovalSettings(ctx.UserContext(), claims.UserID, ctx.Params("id"))
	if err != nil {
		return ctx.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(settings)
}

// UpdateApprovalSettings godoc
// @Summary Replace the organization's approval settings
// @Tags organizations
// @Accept json
// @Param id path string true "Organization ID"
// @Success 200 {object} map[string]string "Settings updated"
// @Failure 400 {object} map[string]string "Invalid settings"
// @Failure 403 {object} map[string]string "Forbidden"
// @Router /api/organizations/{id}/approval-settings [put]
func (c *OrganizationController) UpdateApprovalSettings(ctx *fiber.Ctx) error {
	var settings ApprovalSettings
	if err := ctx.BodyParser(&settings); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	claims := middleware.Claims(ctx)

	if err := c.Service.UpdateApprovalSettings(ctx.UserContext(), claims.UserID, ctx.Params("id"), settings); err != nil {
		return ctx.Status(statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return ctx.JSON(fiber.Map{"message": "Settings updated"})
}
