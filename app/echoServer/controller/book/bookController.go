package book

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/muhammedb99/eBookLibraryService/app/echoServer/jwtx"
	"github.com/muhammedb99/eBookLibraryService/model"
	catalogsvc "github.com/muhammedb99/eBookLibraryService/service/catalog"
)

type Controller struct {
	Svc catalogsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// GET /v1/books
func (h *Controller) List(c echo.Context) error {
	f := catalogsvc.Filter{
		Query:     c.QueryParam("q"),
		Author:    c.QueryParam("author"),
		Genre:     c.QueryParam("genre"),
		Method:    c.QueryParam("method"),
		Publisher: c.QueryParam("publisher"),
		SortOrder: c.QueryParam("sort"),
		OnSale:    c.QueryParam("on_sale") == "true",
	}
	if v := c.QueryParam("min_price"); v != "" {
		p, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "min_price must be a number"})
		}
		f.MinPrice = &p
	}
	if v := c.QueryParam("max_price"); v != "" {
		p, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "max_price must be a number"})
		}
		f.MaxPrice = &p
	}
	if v := c.QueryParam("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "year must be a number"})
		}
		f.Year = &y
	}

	books, err := h.Svc.List(c.Request().Context(), f)
	if err != nil {
		h.Log.Error("book list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"books": books, "count": len(books)})
}

// GET /v1/books/:id
func (h *Controller) Detail(c echo.Context) error {
	id, err := bookID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid book id"})
	}
	b, err := h.Svc.Detail(c.Request().Context(), id)
	if err != nil {
		if catalogsvc.Code(err) == catalogsvc.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		}
		h.Log.Error("book detail", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, b)
}

// POST /v1/books (admin)
func (h *Controller) Create(c echo.Context) error {
	if !jwtx.IsAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "admin only"})
	}
	var req BookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}

	b := req.toModel()
	id, err := h.Svc.Create(c.Request().Context(), b)
	if err != nil {
		if catalogsvc.Code(err) == catalogsvc.ErrBadPayload {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid book payload"})
		}
		h.Log.Error("book create", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	b.ID = id
	return c.JSON(http.StatusCreated, b)
}

// PUT /v1/books/:id (admin)
func (h *Controller) Update(c echo.Context) error {
	if !jwtx.IsAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "admin only"})
	}
	id, err := bookID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid book id"})
	}
	var req BookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}

	b := req.toModel()
	b.ID = id
	if err := h.Svc.Update(c.Request().Context(), b); err != nil {
		switch catalogsvc.Code(err) {
		case catalogsvc.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		case catalogsvc.ErrBadPayload:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid book payload"})
		default:
			h.Log.Error("book update", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, b)
}

// DELETE /v1/books/:id (admin)
func (h *Controller) Delete(c echo.Context) error {
	if !jwtx.IsAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "admin only"})
	}
	id, err := bookID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid book id"})
	}
	if err := h.Svc.Delete(c.Request().Context(), id); err != nil {
		if catalogsvc.Code(err) == catalogsvc.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		}
		h.Log.Error("book delete", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "deleted"})
}

// POST /v1/books/:id/stock (admin)
func (h *Controller) AdjustStock(c echo.Context) error {
	if !jwtx.IsAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "admin only"})
	}
	id, err := bookID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid book id"})
	}
	var req AdjustStockReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}

	total, err := h.Svc.AdjustStock(c.Request().Context(), id, req.Delta)
	if err != nil {
		switch catalogsvc.Code(err) {
		case catalogsvc.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		case catalogsvc.ErrStockConflict:
			return c.JSON(http.StatusConflict, echo.Map{"message": "total copies cannot drop below borrowed copies"})
		default:
			h.Log.Error("adjust stock", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"total_copies": total})
}

func bookID(c echo.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}

func (r BookReq) toModel() *model.Book {
	return &model.Book{
		Title:            r.Title,
		Author:           r.Author,
		Publisher:        r.Publisher,
		Genre:            r.Genre,
		YearOfPublishing: r.YearOfPublishing,
		AgeLimitation:    r.AgeLimitation,
		ImageURL:         r.ImageURL,
		PdfLink:          r.PdfLink,
		EpubLink:         r.EpubLink,
		MobiLink:         r.MobiLink,
		F2bLink:          r.F2bLink,
		BorrowPrice:      r.BorrowPrice,
		BuyingPrice:      r.BuyingPrice,
		DiscountPrice:    r.DiscountPrice,
		DiscountUntil:    r.DiscountUntil,
		TotalCopies:      r.TotalCopies,
	}
}
