package payment

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/muhammedb99/eBookLibraryService/app/echoServer/jwtx"
	ledgersvc "github.com/muhammedb99/eBookLibraryService/service/ledger"
	paymentsvc "github.com/muhammedb99/eBookLibraryService/service/payment"
)

type Controller struct {
	Svc paymentsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /v1/payment/process
func (h *Controller) Process(c echo.Context) error {
	var req ProcessReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}

	intent, err := h.Svc.Process(req.TotalAmount, req.BookID)
	if err != nil {
		if paymentsvc.Code(err) == paymentsvc.ErrInvalidAmount {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "amount must be positive"})
		}
		h.Log.Error("payment process", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, intent)
}

// POST /v1/payment/complete
func (h *Controller) Complete(c echo.Context) error {
	var req CompleteReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}

	next, err := h.Svc.Complete(req.Method, req.TotalAmount, req.BookID)
	if err != nil {
		switch paymentsvc.Code(err) {
		case paymentsvc.ErrInvalidAmount:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "amount must be positive"})
		case paymentsvc.ErrInvalidMethod:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "unsupported payment method"})
		default:
			h.Log.Error("payment complete", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, next)
}

// POST /v1/payment/credit-card
func (h *Controller) SubmitCreditCard(c echo.Context) error {
	email, err := jwtx.EmailFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	var req CreditCardReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}

	card := paymentsvc.Card{
		Number:     req.CardNumber,
		Expiry:     req.ExpirationDate,
		CVV:        req.CVV,
		HolderName: req.CardHolderName,
	}
	receipt, err := h.Svc.SubmitCreditCard(c.Request().Context(), email, card, req.TotalAmount, req.BookID)
	if err != nil {
		switch paymentsvc.Code(err) {
		case paymentsvc.ErrInvalidAmount:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "amount must be positive"})
		case paymentsvc.ErrInvalidCard:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid card details"})
		}
		// Ledger failures surface with their own codes.
		switch ledgersvc.Code(err) {
		case ledgersvc.ErrBookNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		case ledgersvc.ErrAlreadyOwned:
			return c.JSON(http.StatusConflict, echo.Map{"message": "you already hold one of these books"})
		case ledgersvc.ErrBorrowLimit:
			return c.JSON(http.StatusConflict, echo.Map{"message": "borrow limit reached"})
		case ledgersvc.ErrNoCopies:
			return c.JSON(http.StatusConflict, echo.Map{"message": "no copies available for one of these books"})
		case ledgersvc.ErrEmptyCart:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "cart is empty"})
		default:
			h.Log.Error("credit card payment", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, receipt)
}

// GET /v1/payment/paypal?amount=36.60
func (h *Controller) PayPal(c echo.Context) error {
	amount, err := strconv.ParseFloat(c.QueryParam("amount"), 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "amount must be a number"})
	}
	link, err := h.Svc.PayPalLink(amount)
	if err != nil {
		if paymentsvc.Code(err) == paymentsvc.ErrInvalidAmount {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "amount must be positive"})
		}
		h.Log.Error("paypal link", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.Redirect(http.StatusFound, link)
}
