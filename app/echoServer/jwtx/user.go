// app/echoServer/jwtx/user.go
package jwtx

import (
	"errors"

	"github.com/labstack/echo/v4"
)

// EmailFromContext returns the authenticated identity. Every cart, ledger
// and review operation is scoped by this email.
func EmailFromContext(c echo.Context) (string, error) {
	if s, ok := c.Get("user_email").(string); ok && s != "" {
		return s, nil
	}
	return "", errors.New("no authenticated user in context")
}

func RoleFromContext(c echo.Context) string {
	role, _ := c.Get("role").(string)
	return role
}

func IsAdmin(c echo.Context) bool {
	return RoleFromContext(c) == "admin"
}
