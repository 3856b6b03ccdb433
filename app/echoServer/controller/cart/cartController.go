package cart

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	cartsvc "github.com/muhammedb99/eBookLibraryService/service/cart"
)

// SessionCookie carries the anonymous cart token. Login merges the guest
// cart it points at into the user's DB cart.
const SessionCookie = "cart_session"

type Controller struct {
	Svc cartsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

func owner(c echo.Context) cartsvc.Owner {
	if email, ok := c.Get("user_email").(string); ok && email != "" {
		return cartsvc.Owner{Email: email}
	}
	token, _ := c.Get("guest_token").(string)
	return cartsvc.Owner{GuestToken: token}
}

// GET /v1/cart
func (h *Controller) Get(c echo.Context) error {
	cart, err := h.Svc.Get(c.Request().Context(), owner(c))
	if err != nil {
		h.Log.Error("cart get", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, cart)
}

// POST /v1/cart/add
func (h *Controller) Add(c echo.Context) error {
	var req AddItemReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}

	item, err := h.Svc.Add(c.Request().Context(), owner(c), req.BookID, req.IsBorrow)
	if err != nil {
		switch cartsvc.Code(err) {
		case cartsvc.ErrBookNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		case cartsvc.ErrAlreadyOwned:
			return c.JSON(http.StatusConflict, echo.Map{"message": "you already hold this book"})
		case cartsvc.ErrDuplicate:
			return c.JSON(http.StatusConflict, echo.Map{"message": "this book is already in your cart with the selected option"})
		default:
			h.Log.Error("cart add", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusCreated, item)
}

// POST /v1/cart/update
func (h *Controller) Update(c echo.Context) error {
	var req UpdateItemReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}

	item, err := h.Svc.Update(c.Request().Context(), owner(c), req.ItemID, req.IsBorrow)
	if err != nil {
		switch cartsvc.Code(err) {
		case cartsvc.ErrItemNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "cart item not found"})
		case cartsvc.ErrBookNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		default:
			h.Log.Error("cart update", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, item)
}

// POST /v1/cart/remove
func (h *Controller) Remove(c echo.Context) error {
	var req RemoveItemReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}

	if err := h.Svc.Remove(c.Request().Context(), owner(c), req.ItemID); err != nil {
		h.Log.Error("cart remove", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "removed"})
}
