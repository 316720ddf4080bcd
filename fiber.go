package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// GetSession reads the decoded session from fiber locals when the app uses
// the fiber adapter directly instead of going through go-router contexts.
func GetSession(c *fiber.Ctx, key string) (Session, error) {
	val := c.Locals(key)
	if val == nil {
		return nil, ErrUnableToFindSession
	}

	if claims, ok := val.(AuthClaims); ok {
		return sessionFromAuthClaims(claims)
	}

	// Apps wiring gofiber's stock jwt middleware store the parsed token.
	if token, ok := val.(*jwt.Token); ok {
		if claims, ok := token.Claims.(*JWTClaims); ok {
			return sessionFromAuthClaims(claims)
		}
		return nil, ErrUnableToDecodeSession
	}

	return nil, ErrUnableToDecodeSession
}

// GetSessionUser loads the identity behind the session in fiber handlers.
func GetSessionUser(c *fiber.Ctx, key string, auther Authenticator) (Identity, error) {
	session, err := GetSession(c, key)
	if err != nil {
		return nil, err
	}
	return auther.IdentityFromSession(c.UserContext(), session)
}

// FiberStatusFromError maps rich errors onto fiber status codes. Auth
// failures always map to 401 regardless of the underlying cause.
func FiberStatusFromError(err error) int {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return fiber.StatusInternalServerError
	}

	switch richErr.Category {
	case errors.CategoryAuth:
		return fiber.StatusUnauthorized
	case errors.CategoryAuthz:
		return fiber.StatusForbidden
	case errors.CategoryNotFound:
		return fiber.StatusNotFound
	case errors.CategoryConflict:
		return fiber.StatusConflict
	case errors.CategoryValidation, errors.CategoryBadInput:
		return fiber.StatusBadRequest
	case errors.CategoryRateLimit:
		return fiber.StatusTooManyRequests
	}

	if richErr.Code > 0 {
		return richErr.Code
	}

	return fiber.StatusInternalServerError
}

// RenderFiberError writes the JSON error body fiber handlers use.
func RenderFiberError(c *fiber.Ctx, err error) error {
	status := FiberStatusFromError(err)

	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return c.Status(status).JSON(fiber.Map{
			"error": fiber.Map{"message": "Internal server error"},
		})
	}

	message := richErr.Message
	if status >= fiber.StatusInternalServerError {
		message = "Internal server error"
	}

	return c.Status(status).JSON(fiber.Map{
		"error": fiber.Map{
			"message":   message,
			"text_code": richErr.TextCode,
		},
	})
}
