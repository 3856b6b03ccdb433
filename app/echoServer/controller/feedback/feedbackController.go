package feedback

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/muhammedb99/eBookLibraryService/app/echoServer/jwtx"
	"github.com/muhammedb99/eBookLibraryService/model"
	feedbacksvc "github.com/muhammedb99/eBookLibraryService/service/feedback"
)

type Controller struct {
	Svc feedbacksvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

type SubmitReq struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"omitempty,email"`
	Comments string `json:"comments" validate:"required"`
	Rating   int    `json:"rating" validate:"required,gte=1,lte=5"`
}

// POST /v1/feedback
func (h *Controller) Submit(c echo.Context) error {
	var req SubmitReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}

	f := &model.ServiceFeedback{
		Name:     req.Name,
		Email:    req.Email,
		Comments: req.Comments,
		Rating:   req.Rating,
	}
	if err := h.Svc.Submit(c.Request().Context(), f); err != nil {
		if errors.Is(err, feedbacksvc.ErrBadInput) {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid feedback payload"})
		}
		h.Log.Error("feedback submit", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusCreated, f)
}

// GET /v1/feedback (admin)
func (h *Controller) List(c echo.Context) error {
	if !jwtx.IsAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "admin only"})
	}
	out, err := h.Svc.List(c.Request().Context())
	if err != nil {
		h.Log.Error("feedback list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"feedback": out, "count": len(out)})
}
