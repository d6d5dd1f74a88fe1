package server

import (
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// SyncUser handles POST /api/users/sync. It mirrors the identity provider's
// profile into the local users table; profile fields come from the request
// body with the session claims as fallback.
func (s *Server) SyncUser(c *fiber.Ctx) error {
	ctx := c.Context()

	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
		Image string `json:"image"`
	}
	// The body is optional; claims alone can drive the sync.
	_ = c.BodyParser(&req)

	if claims, ok := c.Locals("sessionClaims").(jwt.MapClaims); ok {
		if req.Name == "" {
			req.Name, _ = claims["name"].(string)
		}
		if req.Email == "" {
			req.Email, _ = claims["email"].(string)
		}
		if req.Image == "" {
			req.Image, _ = claims["picture"].(string)
		}
	}

	user, err := s.userService.SyncUser(ctx, service.SyncUserInput{
		ExternalID: s.externalID(c),
		Name:       req.Name,
		Email:      req.Email,
		Image:      req.Image,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "User synced successfully",
		"user":    user,
	})
}

// GetMyProfile handles GET /api/users/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.userService.GetByExternalID(c.Context(), s.externalID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user)
}
