package paymentsvc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/muhammedb99/eBookLibraryService/repository/mailer"

	"github.com/muhammedb99/eBookLibraryService/model"
)

// errors used by controllers

type ErrCode string

const (
	ErrInvalidAmount ErrCode = "INVALID_AMOUNT"
	ErrInvalidMethod ErrCode = "INVALID_METHOD"
	ErrInvalidCard   ErrCode = "INVALID_CARD"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// PayPal amounts are converted at a fixed rate and paid through a static
// payment link; there is no server-side confirmation callback.
const (
	paypalRate    = 3.66
	paypalLinkFmt = "https://paypal.me/ebookstore22/%.2f"
)

const (
	MethodCreditCard = "credit_card"
	MethodPayPal     = "paypal"
)

// Card is the credit card form. Processing is always mocked; only the
// field validation is real.
type Card struct {
	Number     string
	Expiry     string // MM/YY
	CVV        string
	HolderName string
}

type Intent struct {
	Amount float64 `json:"amount"`
	BookID *int64  `json:"book_id,omitempty"`
}

// Next tells the client where the chosen method continues.
type Next struct {
	Method      string `json:"method"`
	RedirectURL string `json:"redirect_url,omitempty"`
}

type Receipt struct {
	Amount float64           `json:"amount"`
	Books  []model.OwnedBook `json:"books"`
}

type Ledger interface {
	Buy(ctx context.Context, email string, bookID int64, price float64) (*model.OwnedBook, error)
	Checkout(ctx context.Context, email string, items []model.CartItem) ([]model.OwnedBook, error)
}

type CartReader interface {
	Items(ctx context.Context, email string) ([]model.CartItem, error)
}

type Mailer interface {
	Send(ctx context.Context, m mailer.Mail) error
}

type Service interface {
	Process(amount float64, bookID *int64) (*Intent, error)
	Complete(method string, amount float64, bookID *int64) (*Next, error)

	// SubmitCreditCard validates the card, then materializes either the
	// single book purchase or the whole cart. The mocked gateway always
	// approves. A confirmation mail is attempted on every success.
	SubmitCreditCard(ctx context.Context, email string, card Card, amount float64, bookID *int64) (*Receipt, error)

	PayPalLink(amount float64) (string, error)
}

type service struct {
	ledger Ledger
	carts  CartReader
	mail   Mailer
}

func New(ledger Ledger, carts CartReader, mail Mailer) Service {
	return &service{ledger: ledger, carts: carts, mail: mail}
}

func (s *service) Process(amount float64, bookID *int64) (*Intent, error) {
	if amount <= 0 {
		return nil, makeErr(ErrInvalidAmount)
	}
	return &Intent{Amount: amount, BookID: bookID}, nil
}

func (s *service) Complete(method string, amount float64, bookID *int64) (*Next, error) {
	if amount <= 0 {
		return nil, makeErr(ErrInvalidAmount)
	}
	switch method {
	case MethodCreditCard:
		return &Next{Method: MethodCreditCard}, nil
	case MethodPayPal:
		link, err := s.PayPalLink(amount)
		if err != nil {
			return nil, err
		}
		return &Next{Method: MethodPayPal, RedirectURL: link}, nil
	default:
		return nil, makeErr(ErrInvalidMethod)
	}
}

func (s *service) SubmitCreditCard(ctx context.Context, email string, card Card, amount float64, bookID *int64) (*Receipt, error) {
	if amount <= 0 {
		return nil, makeErr(ErrInvalidAmount)
	}
	if err := validateCard(card, time.Now()); err != nil {
		return nil, err
	}

	var (
		books []model.OwnedBook
		err   error
	)
	if bookID != nil {
		var ob *model.OwnedBook
		ob, err = s.ledger.Buy(ctx, email, *bookID, amount)
		if err == nil {
			books = []model.OwnedBook{*ob}
		}
	} else {
		var items []model.CartItem
		items, err = s.carts.Items(ctx, email)
		if err == nil {
			books, err = s.ledger.Checkout(ctx, email, items)
		}
	}
	if err != nil {
		return nil, err
	}

	s.sendConfirmation(ctx, email, amount, books)
	return &Receipt{Amount: amount, Books: books}, nil
}

func (s *service) sendConfirmation(ctx context.Context, email string, amount float64, books []model.OwnedBook) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "<p>Your payment of $%.2f has been successfully processed.</p>", amount)
	for _, b := range books {
		verb := "purchased"
		if b.IsBorrowed {
			verb = "borrowed"
		}
		fmt.Fprintf(&sb, "<p>You %s: %s.</p>", verb, b.Title)
	}
	if err := s.mail.Send(ctx, mailer.Mail{To: email, Subject: "Payment Confirmation", HTML: sb.String()}); err != nil {
		slog.Warn("payment confirmation mail failed", "to", email, "err", err)
	}
}

func (s *service) PayPalLink(amount float64) (string, error) {
	usd := amount / paypalRate
	if usd <= 0 {
		return "", makeErr(ErrInvalidAmount)
	}
	return fmt.Sprintf(paypalLinkFmt, usd), nil
}

var (
	reCardNumber = regexp.MustCompile(`^[0-9]{16}$`)
	reCVV        = regexp.MustCompile(`^[0-9]{3}$`)
	reHolder     = regexp.MustCompile(`^[A-Za-z]+(?: [A-Za-z]+)*$`)
)

func validateCard(c Card, now time.Time) error {
	if !reCardNumber.MatchString(strings.ReplaceAll(c.Number, " ", "")) {
		return makeErr(ErrInvalidCard)
	}
	if !reCVV.MatchString(c.CVV) {
		return makeErr(ErrInvalidCard)
	}
	if !reHolder.MatchString(strings.TrimSpace(c.HolderName)) {
		return makeErr(ErrInvalidCard)
	}
	exp, err := time.Parse("01/06", c.Expiry)
	if err != nil {
		return makeErr(ErrInvalidCard)
	}
	// Valid through the end of the expiry month, at most 5 years out.
	endOfMonth := exp.AddDate(0, 1, 0)
	if !endOfMonth.After(now) || exp.After(now.AddDate(5, 0, 0)) {
		return makeErr(ErrInvalidCard)
	}
	return nil
}
