package catalogsvc

import (
	"context"
	"errors"
	"net/url"
	"strings"

	bookrepo "github.com/muhammedb99/eBookLibraryService/repository/book"

	"github.com/muhammedb99/eBookLibraryService/model"
)

type ErrCode string

const (
	ErrNotFound      ErrCode = "BOOK_NOT_FOUND"
	ErrBadPayload    ErrCode = "INVALID_PAYLOAD"
	ErrStockConflict ErrCode = "STOCK_CONFLICT"
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

// Filter = repository shape
type Filter = bookrepo.Filter

type Repo interface {
	Create(ctx context.Context, b *model.Book) (int64, error)
	Update(ctx context.Context, b *model.Book) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context, f Filter) ([]model.Book, error)
	Detail(ctx context.Context, id int64) (*model.Book, error)
	AdjustStock(ctx context.Context, id int64, delta int) (int, error)
}

type Service interface {
	List(ctx context.Context, f Filter) ([]model.Book, error)
	Detail(ctx context.Context, id int64) (*model.Book, error)
	Create(ctx context.Context, b *model.Book) (int64, error)
	Update(ctx context.Context, b *model.Book) error
	Delete(ctx context.Context, id int64) error
	AdjustStock(ctx context.Context, id int64, delta int) (int, error)
}

type service struct{ r Repo }

func New(r Repo) Service { return &service{r: r} }

func (s *service) List(ctx context.Context, f Filter) ([]model.Book, error) {
	return s.r.List(ctx, f)
}

func (s *service) Detail(ctx context.Context, id int64) (*model.Book, error) {
	b, err := s.r.Detail(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, makeErr(ErrNotFound)
	}
	return b, nil
}

func (s *service) Create(ctx context.Context, b *model.Book) (int64, error) {
	if err := validate(b); err != nil {
		return 0, err
	}
	return s.r.Create(ctx, b)
}

func (s *service) Update(ctx context.Context, b *model.Book) error {
	if err := validate(b); err != nil {
		return err
	}
	ok, err := s.r.Update(ctx, b)
	if err != nil {
		return err
	}
	if !ok {
		return makeErr(ErrNotFound)
	}
	return nil
}

func (s *service) Delete(ctx context.Context, id int64) error {
	ok, err := s.r.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return makeErr(ErrNotFound)
	}
	return nil
}

func (s *service) AdjustStock(ctx context.Context, id int64, delta int) (int, error) {
	total, err := s.r.AdjustStock(ctx, id, delta)
	if errors.Is(err, bookrepo.ErrStockBelowBorrowed) {
		// The guarded UPDATE matches no row for a missing book either.
		b, derr := s.r.Detail(ctx, id)
		if derr != nil {
			return 0, derr
		}
		if b == nil {
			return 0, makeErr(ErrNotFound)
		}
		return 0, makeErr(ErrStockConflict)
	}
	return total, err
}

func validate(b *model.Book) error {
	if strings.TrimSpace(b.Title) == "" || strings.TrimSpace(b.Author) == "" {
		return makeErr(ErrBadPayload)
	}
	if b.BuyingPrice < 0 || b.TotalCopies < 0 {
		return makeErr(ErrBadPayload)
	}
	// A borrow may never cost more than an outright purchase.
	if b.BorrowPrice != nil && *b.BorrowPrice > b.BuyingPrice {
		return makeErr(ErrBadPayload)
	}
	for _, link := range []*string{b.PdfLink, b.EpubLink, b.MobiLink, b.F2bLink} {
		if link == nil || *link == "" {
			continue
		}
		if !validURL(*link) {
			return makeErr(ErrBadPayload)
		}
	}
	if b.ImageURL != "" && !validURL(b.ImageURL) {
		return makeErr(ErrBadPayload)
	}
	return nil
}

func validURL(s string) bool {
	u, err := url.ParseRequestURI(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https")
}
