// app/echoServer/middleware.go
package echoServer

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	cartctrl "github.com/muhammedb99/eBookLibraryService/app/echoServer/controller/cart"
	jwtutil "github.com/muhammedb99/eBookLibraryService/util/jwt"
)

func RegisterMiddlewares(e *echo.Echo) {

	e.Use(middleware.Recover())

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.NewString() },
	}))

	e.Use(Slog())
}

func Slog() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			lat := time.Since(start).Milliseconds()

			rid := c.Response().Header().Get(echo.HeaderXRequestID)
			slog.Info("http",
				"method", c.Request().Method,
				"path", c.Path(),
				"status", c.Response().Status,
				"latency_ms", lat,
				"req_id", rid,
				"ip", c.RealIP(),
				"ua", c.Request().UserAgent(),
			)
			return err
		}
	}
}

// OptionalAuth serves the cart endpoints: an authenticated user gets their
// DB cart, anybody else gets a guest cart under the cart_session cookie.
func OptionalAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if h := c.Request().Header.Get("Authorization"); h != "" {
				if claims, err := jwtutil.ParseAuth(h, secret); err == nil {
					if sub, ok := claims["sub"].(string); ok && sub != "" {
						c.Set("user_email", sub)
						if role, ok := claims["role"].(string); ok {
							c.Set("role", role)
						}
						return next(c)
					}
				}
			}

			ck, err := c.Cookie(cartctrl.SessionCookie)
			if err != nil || ck.Value == "" {
				tok := uuid.NewString()
				c.SetCookie(&http.Cookie{
					Name:     cartctrl.SessionCookie,
					Value:    tok,
					Path:     "/",
					HttpOnly: true,
				})
				c.Set("guest_token", tok)
			} else {
				c.Set("guest_token", ck.Value)
			}
			return next(c)
		}
	}
}
