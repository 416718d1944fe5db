package auth

import (
	"strings"

	"github.com/labstack/echo/v4"
)

// publicPaths are served without authentication.
var publicPaths = []string{
	"/health",
	"/health/db",
}

// AuthSkipper reports whether the request path is exempt from token checks.
func AuthSkipper(c echo.Context) bool {
	path := c.Request().URL.Path
	for _, p := range publicPaths {
		if path == p {
			return true
		}
	}
	return strings.HasPrefix(path, "/docs")
}
