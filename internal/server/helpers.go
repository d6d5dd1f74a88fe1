package server

import (
	"errors"

	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper.  Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// Pagination holds parsed limit/offset query parameters.
type Pagination struct {
	Limit  int
	Offset int
}

const (
	maxPaginationLimit = 100
)

// parsePagination extracts limit and offset query parameters with the given default limit.
func parsePagination(c *fiber.Ctx, defaultLimit int) Pagination {
	limit := c.QueryInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxPaginationLimit {
		limit = maxPaginationLimit
	}

	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	return Pagination{
		Limit:  limit,
		Offset: offset,
	}
}

// parseID extracts a route parameter by name as a positive uint.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		label := param
		if param == "id" {
			label = "ID"
		}
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+label))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// externalID returns the authenticated identity provider subject set by
// AuthRequired. A missing value means the route was wired without auth.
func (s *Server) externalID(c *fiber.Ctx) string {
	if v, ok := c.Locals("externalID").(string); ok {
		return v
	}
	return ""
}

// respondServiceError maps service-layer errors onto HTTP responses: field
// validation failures become the 400 errors envelope, AppError codes map onto
// their canonical statuses and anything unrecognized is a 500.
func respondServiceError(c *fiber.Ctx, err error) error {
	var fieldErrs models.FieldErrors
	if errors.As(err, &fieldErrs) {
		return models.RespondWithFieldErrors(c, fieldErrs)
	}

	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return models.RespondWithError(c, statusForAppError(appErr), appErr)
	}

	return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
}

func statusForAppError(appErr *models.AppError) int {
	switch appErr.Code {
	case "VALIDATION_ERROR":
		return fiber.StatusBadRequest
	case "UNAUTHORIZED":
		return fiber.StatusUnauthorized
	case "FORBIDDEN":
		return fiber.StatusForbidden
	case "NOT_FOUND":
		return fiber.StatusNotFound
	case "UPSTREAM_ERROR":
		// Collaborator failures surface as 500 like any other server-side
		// fault; the caller cannot act on the distinction.
		return fiber.StatusInternalServerError
	default:
		return fiber.StatusInternalServerError
	}
}
