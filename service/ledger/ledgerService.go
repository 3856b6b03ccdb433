package ledgersvc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	ledgerrepo "github.com/muhammedb99/eBookLibraryService/repository/ledger"
	"github.com/muhammedb99/eBookLibraryService/repository/mailer"

	"github.com/muhammedb99/eBookLibraryService/model"
)

// errors used by controllers

type ErrCode string

const (
	ErrBookNotFound   ErrCode = "BOOK_NOT_FOUND"
	ErrAlreadyOwned   ErrCode = "ALREADY_OWNED"
	ErrBorrowLimit    ErrCode = "BORROW_LIMIT"
	ErrNoCopies       ErrCode = "NO_COPIES"
	ErrNotBorrowed    ErrCode = "NOT_BORROWED"
	ErrAlreadyWaiting ErrCode = "ALREADY_WAITING"
	ErrEmptyCart      ErrCode = "EMPTY_CART"
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

// Policy carries the configurable lending rules.
type Policy struct {
	BorrowLimit int
	BorrowDays  int
}

// BorrowOutcome: exactly one of Owned / Waiting is set. An exhausted book
// queues the user instead of failing the request.
type BorrowOutcome struct {
	Owned   *model.OwnedBook        `json:"owned,omitempty"`
	Waiting *model.WaitingListEntry `json:"waiting,omitempty"`
}

type Library struct {
	Owned    []model.OwnedBook `json:"owned"`
	Borrowed []model.OwnedBook `json:"borrowed"`
}

type Repo interface {
	HasActive(ctx context.Context, email string, bookID int64) (bool, error)
	CountActiveBorrows(ctx context.Context, email string) (int, error)
	ListOwned(ctx context.Context, email string) ([]model.OwnedBook, error)
	CreateBorrow(ctx context.Context, email string, bookID int64, price float64, due time.Time) (*model.OwnedBook, error)
	CreatePurchase(ctx context.Context, email string, bookID int64, price float64) (*model.OwnedBook, error)
	Checkout(ctx context.Context, email string, items []model.CartItem, due time.Time) ([]model.OwnedBook, error)
	ReleaseBorrow(ctx context.Context, email string, bookID int64) (*ledgerrepo.Promotion, error)
	JoinWaitingList(ctx context.Context, email string, bookID int64) (*model.WaitingListEntry, error)
	OnWaitingList(ctx context.Context, email string, bookID int64) (bool, error)
}

type BookRepo interface {
	Detail(ctx context.Context, id int64) (*model.Book, error)
}

type Mailer interface {
	Send(ctx context.Context, m mailer.Mail) error
}

type Service interface {
	// Borrow reserves a copy for the configured period, or queues the user
	// when none is available.
	Borrow(ctx context.Context, email string, bookID int64) (*BorrowOutcome, error)

	// Buy records a purchase at the given (already captured) price.
	Buy(ctx context.Context, email string, bookID int64, price float64) (*model.OwnedBook, error)

	// Checkout materializes all cart lines atomically and clears the cart.
	Checkout(ctx context.Context, email string, items []model.CartItem) ([]model.OwnedBook, error)

	// Return ends a borrow early and promotes the next waiting user.
	Return(ctx context.Context, email string, bookID int64) error

	JoinWaitingList(ctx context.Context, email string, bookID int64) (*model.WaitingListEntry, error)
	MyLibrary(ctx context.Context, email string) (*Library, error)
}

type service struct {
	r     Repo
	books BookRepo
	mail  Mailer
	p     Policy
}

func New(r Repo, books BookRepo, mail Mailer, p Policy) Service {
	return &service{r: r, books: books, mail: mail, p: p}
}

func (s *service) dueDate() time.Time {
	return time.Now().UTC().AddDate(0, 0, s.p.BorrowDays)
}

func (s *service) Borrow(ctx context.Context, email string, bookID int64) (*BorrowOutcome, error) {
	book, err := s.books.Detail(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, makeErr(ErrBookNotFound)
	}

	owned, err := s.r.HasActive(ctx, email, bookID)
	if err != nil {
		return nil, err
	}
	if owned {
		return nil, makeErr(ErrAlreadyOwned)
	}

	active, err := s.r.CountActiveBorrows(ctx, email)
	if err != nil {
		return nil, err
	}
	if active >= s.p.BorrowLimit {
		return nil, makeErr(ErrBorrowLimit)
	}

	ob, err := s.r.CreateBorrow(ctx, email, bookID, book.EffectiveBorrowPrice(), s.dueDate())
	switch {
	case err == nil:
		return &BorrowOutcome{Owned: ob}, nil
	case errors.Is(err, ledgerrepo.ErrNoCopies):
		entry, werr := s.r.JoinWaitingList(ctx, email, bookID)
		if errors.Is(werr, ledgerrepo.ErrAlreadyWaiting) {
			return nil, makeErr(ErrAlreadyWaiting)
		}
		if werr != nil {
			return nil, werr
		}
		return &BorrowOutcome{Waiting: entry}, nil
	case errors.Is(err, ledgerrepo.ErrAlreadyOwned):
		return nil, makeErr(ErrAlreadyOwned)
	default:
		return nil, err
	}
}

func (s *service) Buy(ctx context.Context, email string, bookID int64, price float64) (*model.OwnedBook, error) {
	book, err := s.books.Detail(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, makeErr(ErrBookNotFound)
	}
	ob, err := s.r.CreatePurchase(ctx, email, bookID, price)
	if errors.Is(err, ledgerrepo.ErrAlreadyOwned) {
		return nil, makeErr(ErrAlreadyOwned)
	}
	return ob, err
}

func (s *service) Checkout(ctx context.Context, email string, items []model.CartItem) ([]model.OwnedBook, error) {
	if len(items) == 0 {
		return nil, makeErr(ErrEmptyCart)
	}

	borrows := 0
	for _, it := range items {
		owned, err := s.r.HasActive(ctx, email, it.BookID)
		if err != nil {
			return nil, err
		}
		if owned {
			return nil, makeErr(ErrAlreadyOwned)
		}
		if it.IsBorrow {
			borrows++
		}
	}
	if borrows > 0 {
		active, err := s.r.CountActiveBorrows(ctx, email)
		if err != nil {
			return nil, err
		}
		if active+borrows > s.p.BorrowLimit {
			return nil, makeErr(ErrBorrowLimit)
		}
	}

	out, err := s.r.Checkout(ctx, email, items, s.dueDate())
	switch {
	case err == nil:
		return out, nil
	case errors.Is(err, ledgerrepo.ErrNoCopies):
		return nil, makeErr(ErrNoCopies)
	case errors.Is(err, ledgerrepo.ErrAlreadyOwned):
		return nil, makeErr(ErrAlreadyOwned)
	default:
		return nil, err
	}
}

func (s *service) Return(ctx context.Context, email string, bookID int64) error {
	promo, err := s.r.ReleaseBorrow(ctx, email, bookID)
	if errors.Is(err, ledgerrepo.ErrNotBorrowed) {
		return makeErr(ErrNotBorrowed)
	}
	if err != nil {
		return err
	}
	if promo != nil && promo.PromotedEmail != "" {
		s.notifyAvailable(ctx, promo.PromotedEmail, promo.Title)
	}
	return nil
}

func (s *service) notifyAvailable(ctx context.Context, email, title string) {
	err := s.mail.Send(ctx, mailer.Mail{
		To:      email,
		Subject: "A book on your waiting list is available",
		HTML:    fmt.Sprintf("<p>Good news! <b>%s</b> is now available for borrowing.</p>", title),
	})
	if err != nil {
		slog.Warn("waiting-list notification failed", "to", email, "err", err)
	}
}

func (s *service) JoinWaitingList(ctx context.Context, email string, bookID int64) (*model.WaitingListEntry, error) {
	book, err := s.books.Detail(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, makeErr(ErrBookNotFound)
	}
	owned, err := s.r.HasActive(ctx, email, bookID)
	if err != nil {
		return nil, err
	}
	if owned {
		return nil, makeErr(ErrAlreadyOwned)
	}
	entry, err := s.r.JoinWaitingList(ctx, email, bookID)
	if errors.Is(err, ledgerrepo.ErrAlreadyWaiting) {
		return nil, makeErr(ErrAlreadyWaiting)
	}
	return entry, err
}

func (s *service) MyLibrary(ctx context.Context, email string) (*Library, error) {
	rows, err := s.r.ListOwned(ctx, email)
	if err != nil {
		return nil, err
	}
	lib := &Library{Owned: []model.OwnedBook{}, Borrowed: []model.OwnedBook{}}
	for _, ob := range rows {
		if ob.IsBorrowed {
			lib.Borrowed = append(lib.Borrowed, ob)
		} else {
			lib.Owned = append(lib.Owned, ob)
		}
	}
	return lib, nil
}
