package middleware

// identity.go defines helper functions shared across middleware and handler
// code. HolderID pulls the holder identifier that JWTAuth stored in the Echo
// context; when no token was presented (public routes), "guest" is returned.

import (
	"github.com/labstack/echo/v4"
)

// HolderID extracts the authenticated holder identifier from context. It
// returns "guest" when no holder is authenticated.
func HolderID(c echo.Context) string {
	if v, ok := c.Get("holder_id").(string); ok && v != "" {
		return v
	}
	return "guest"
}
