package library

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/muhammedb99/eBookLibraryService/app/echoServer/jwtx"
	ledgersvc "github.com/muhammedb99/eBookLibraryService/service/ledger"
	reviewsvc "github.com/muhammedb99/eBookLibraryService/service/review"
)

type Controller struct {
	Ledger  ledgersvc.Service
	Reviews reviewsvc.Service
	V       *validator.Validate
	Log     *slog.Logger
}

// GET /v1/library
func (h *Controller) MyLibrary(c echo.Context) error {
	email, err := jwtx.EmailFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	lib, err := h.Ledger.MyLibrary(c.Request().Context(), email)
	if err != nil {
		h.Log.Error("my library", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, lib)
}

// POST /v1/library/borrow
func (h *Controller) Borrow(c echo.Context) error {
	email, req, ok := h.authAction(c)
	if !ok {
		return nil
	}

	out, err := h.Ledger.Borrow(c.Request().Context(), email, req.BookID)
	if err != nil {
		switch ledgersvc.Code(err) {
		case ledgersvc.ErrBookNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		case ledgersvc.ErrAlreadyOwned:
			return c.JSON(http.StatusConflict, echo.Map{"message": "you already hold this book"})
		case ledgersvc.ErrBorrowLimit:
			return c.JSON(http.StatusConflict, echo.Map{"message": "borrow limit reached"})
		case ledgersvc.ErrAlreadyWaiting:
			return c.JSON(http.StatusConflict, echo.Map{"message": "already on the waiting list"})
		default:
			h.Log.Error("borrow", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	if out.Waiting != nil {
		return c.JSON(http.StatusAccepted, echo.Map{
			"message": "no copies available, you were added to the waiting list",
			"waiting": out.Waiting,
		})
	}
	return c.JSON(http.StatusCreated, out.Owned)
}

// POST /v1/library/return
func (h *Controller) Return(c echo.Context) error {
	email, req, ok := h.authAction(c)
	if !ok {
		return nil
	}

	if err := h.Ledger.Return(c.Request().Context(), email, req.BookID); err != nil {
		if ledgersvc.Code(err) == ledgersvc.ErrNotBorrowed {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "no active borrow for this book"})
		}
		h.Log.Error("return", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "returned"})
}

// POST /v1/library/waiting-list
func (h *Controller) JoinWaitingList(c echo.Context) error {
	email, req, ok := h.authAction(c)
	if !ok {
		return nil
	}

	entry, err := h.Ledger.JoinWaitingList(c.Request().Context(), email, req.BookID)
	if err != nil {
		switch ledgersvc.Code(err) {
		case ledgersvc.ErrBookNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		case ledgersvc.ErrAlreadyOwned:
			return c.JSON(http.StatusConflict, echo.Map{"message": "you already hold this book"})
		case ledgersvc.ErrAlreadyWaiting:
			return c.JSON(http.StatusConflict, echo.Map{"message": "already on the waiting list"})
		default:
			h.Log.Error("join waiting list", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusCreated, entry)
}

// POST /v1/library/reviews
func (h *Controller) AddReview(c echo.Context) error {
	email, err := jwtx.EmailFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	var req ReviewReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}

	rev, err := h.Reviews.Add(c.Request().Context(), email, req.BookID, req.Rating, req.Feedback)
	if err != nil {
		switch reviewsvc.Code(err) {
		case reviewsvc.ErrBookNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		case reviewsvc.ErrOutOfRange:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "rating must be between 1 and 5"})
		case reviewsvc.ErrDuplicate:
			return c.JSON(http.StatusConflict, echo.Map{"message": "you already reviewed this book"})
		default:
			h.Log.Error("add review", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusCreated, rev)
}

// GET /v1/books/:id/reviews
func (h *Controller) ListReviews(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid book id"})
	}
	out, err := h.Reviews.ListForBook(c.Request().Context(), id)
	if err != nil {
		if reviewsvc.Code(err) == reviewsvc.ErrBookNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		}
		h.Log.Error("list reviews", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, out)
}

// authAction binds the common {book_id} payload. When ok is false the
// response has already been written.
func (h *Controller) authAction(c echo.Context) (email string, req BookActionReq, ok bool) {
	email, err := jwtx.EmailFromContext(c)
	if err != nil {
		_ = c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
		return "", req, false
	}
	if err := c.Bind(&req); err != nil {
		_ = c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
		return "", req, false
	}
	if err := h.V.Struct(req); err != nil {
		_ = c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
		return "", req, false
	}
	return email, req, true
}
