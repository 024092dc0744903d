package gateway

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/paddyhq/paddy/pkg/wire"
)

const bearerPrefix = "Bearer "

// requireAuth enforces bearer authentication on completion requests.
// When no API key is configured the gateway runs open and the check is
// skipped entirely.
func (g *Gateway) requireAuth(c *fiber.Ctx) error {
	if g.config.APIKey == "" {
		return c.Next()
	}

	header := c.Get(fiber.HeaderAuthorization)
	if !strings.HasPrefix(header, bearerPrefix) {
		return unauthorized(c, "missing bearer token")
	}

	token := strings.TrimPrefix(header, bearerPrefix)
	if subtle.ConstantTimeCompare([]byte(token), []byte(g.config.APIKey)) != 1 {
		return unauthorized(c, "invalid API key")
	}

	return c.Next()
}

func unauthorized(c *fiber.Ctx, detail string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(wire.ErrorResponse{
		Error:  "authentication failed",
		Type:   wire.ErrTypeAuth,
		Detail: detail,
	})
}
