package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	cartctrl "github.com/muhammedb99/eBookLibraryService/app/echoServer/controller/cart"
	"github.com/muhammedb99/eBookLibraryService/model"
	authsvc "github.com/muhammedb99/eBookLibraryService/service/auth"
	cartsvc "github.com/muhammedb99/eBookLibraryService/service/cart"
)

type Controller struct {
	Svc  authsvc.Service
	Cart cartsvc.Service
	V    *validator.Validate
	Log  *slog.Logger
}

// POST /v1/users/register
func (h *Controller) Register(c echo.Context) error {
	var req model.RegisterReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}

	user, token, err := h.Svc.Register(c.Request().Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, authsvc.ErrEmailTaken):
			return c.JSON(http.StatusConflict, echo.Map{"message": "email already registered"})
		case errors.Is(err, authsvc.ErrBadInput):
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid registration payload"})
		default:
			h.Log.Error("register", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}

	h.mergeGuestCart(c, user.Email)
	return c.JSON(http.StatusCreated, echo.Map{"user": user, "token": token})
}

// POST /v1/users/login
func (h *Controller) Login(c echo.Context) error {
	var req model.LoginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}

	user, token, err := h.Svc.Login(c.Request().Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, authsvc.ErrInvalidCreds):
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid email or password"})
		case errors.Is(err, authsvc.ErrBadInput):
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "email and password are required"})
		default:
			h.Log.Error("login", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}

	h.mergeGuestCart(c, user.Email)
	return c.JSON(http.StatusOK, echo.Map{"user": user, "token": token})
}

// mergeGuestCart folds a pre-login anonymous cart into the account cart.
// Failures only cost the guest lines, never the login itself.
func (h *Controller) mergeGuestCart(c echo.Context, email string) {
	ck, err := c.Cookie(cartctrl.SessionCookie)
	if err != nil || ck.Value == "" {
		return
	}
	if err := h.Cart.MergeGuest(c.Request().Context(), ck.Value, email); err != nil {
		h.Log.Warn("guest cart merge failed", "email", email, "err", err)
		return
	}
	c.SetCookie(&http.Cookie{Name: cartctrl.SessionCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
}
