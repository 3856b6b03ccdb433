package cartsvc

import (
	"context"
	"errors"
	"time"

	"github.com/muhammedb99/eBookLibraryService/model"
)

// errors used by controllers

type ErrCode string

const (
	ErrBookNotFound ErrCode = "BOOK_NOT_FOUND"
	ErrAlreadyOwned ErrCode = "ALREADY_OWNED"
	ErrDuplicate    ErrCode = "DUPLICATE_ITEM"
	ErrItemNotFound ErrCode = "ITEM_NOT_FOUND"
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

// Owner scopes a cart: an authenticated email, or a guest session token.
type Owner struct {
	Email      string
	GuestToken string
}

func (o Owner) IsGuest() bool { return o.Email == "" }

type BookRepo interface {
	Detail(ctx context.Context, id int64) (*model.Book, error)
}

type LedgerRepo interface {
	HasActive(ctx context.Context, email string, bookID int64) (bool, error)
}

type Repo interface {
	Items(ctx context.Context, email string) ([]model.CartItem, error)
	FindByBook(ctx context.Context, email string, bookID int64) (*model.CartItem, error)
	Insert(ctx context.Context, email string, bookID int64, isBorrow bool, price float64) (*model.CartItem, error)
	UpdateItem(ctx context.Context, email string, itemID int64, isBorrow bool, price float64) (*model.CartItem, error)
	Remove(ctx context.Context, email string, itemID int64) error
	Clear(ctx context.Context, email string) error
}

type GuestStore interface {
	Get(ctx context.Context, token string) ([]model.CartItem, error)
	Save(ctx context.Context, token string, items []model.CartItem) error
	Delete(ctx context.Context, token string) error
}

type Service interface {
	Get(ctx context.Context, o Owner) (*model.Cart, error)

	// Add snapshots the price at add time. Re-adding the same (book, mode)
	// pair is rejected; adding the other mode switches the existing line.
	Add(ctx context.Context, o Owner, bookID int64, isBorrow bool) (*model.CartItem, error)

	// Update re-resolves the price for the new mode. It deliberately does
	// not re-check ownership.
	Update(ctx context.Context, o Owner, itemID int64, isBorrow bool) (*model.CartItem, error)

	Remove(ctx context.Context, o Owner, itemID int64) error
	Clear(ctx context.Context, o Owner) error

	// MergeGuest folds an anonymous cart into the user's DB cart at login.
	// Lines that would now violate duplicate/owned rules are dropped.
	MergeGuest(ctx context.Context, token, email string) error
}

type service struct {
	books  BookRepo
	ledger LedgerRepo
	r      Repo
	guests GuestStore
}

func New(books BookRepo, ledger LedgerRepo, r Repo, guests GuestStore) Service {
	return &service{books: books, ledger: ledger, r: r, guests: guests}
}

// resolvePrice applies the pricing rule: borrow price (or free) when
// borrowing, otherwise the discounted price while the discount is active.
func resolvePrice(b *model.Book, isBorrow bool) float64 {
	if isBorrow {
		return b.EffectiveBorrowPrice()
	}
	return b.EffectiveBuyPrice(time.Now())
}

func (s *service) Get(ctx context.Context, o Owner) (*model.Cart, error) {
	items, err := s.items(ctx, o)
	if err != nil {
		return nil, err
	}
	c := &model.Cart{Items: items}
	c.Total = c.Sum()
	return c, nil
}

func (s *service) items(ctx context.Context, o Owner) ([]model.CartItem, error) {
	if o.IsGuest() {
		return s.guests.Get(ctx, o.GuestToken)
	}
	return s.r.Items(ctx, o.Email)
}

func (s *service) Add(ctx context.Context, o Owner, bookID int64, isBorrow bool) (*model.CartItem, error) {
	book, err := s.books.Detail(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, makeErr(ErrBookNotFound)
	}
	if !o.IsGuest() {
		owned, err := s.ledger.HasActive(ctx, o.Email, bookID)
		if err != nil {
			return nil, err
		}
		if owned {
			return nil, makeErr(ErrAlreadyOwned)
		}
	}

	if o.IsGuest() {
		return s.guestAdd(ctx, o.GuestToken, book, isBorrow)
	}

	existing, err := s.r.FindByBook(ctx, o.Email, bookID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.IsBorrow == isBorrow {
			return nil, makeErr(ErrDuplicate)
		}
		return s.r.UpdateItem(ctx, o.Email, existing.ID, isBorrow, resolvePrice(book, isBorrow))
	}
	return s.r.Insert(ctx, o.Email, bookID, isBorrow, resolvePrice(book, isBorrow))
}

func (s *service) guestAdd(ctx context.Context, token string, book *model.Book, isBorrow bool) (*model.CartItem, error) {
	items, err := s.guests.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].BookID != book.ID {
			continue
		}
		if items[i].IsBorrow == isBorrow {
			return nil, makeErr(ErrDuplicate)
		}
		items[i].IsBorrow = isBorrow
		items[i].Price = resolvePrice(book, isBorrow)
		if err := s.guests.Save(ctx, token, items); err != nil {
			return nil, err
		}
		return &items[i], nil
	}

	it := model.CartItem{
		ID:        nextGuestID(items),
		BookID:    book.ID,
		Title:     book.Title,
		IsBorrow:  isBorrow,
		Price:     resolvePrice(book, isBorrow),
		CreatedAt: time.Now().UTC(),
	}
	items = append(items, it)
	if err := s.guests.Save(ctx, token, items); err != nil {
		return nil, err
	}
	return &it, nil
}

func nextGuestID(items []model.CartItem) int64 {
	var max int64
	for _, it := range items {
		if it.ID > max {
			max = it.ID
		}
	}
	return max + 1
}

func (s *service) Update(ctx context.Context, o Owner, itemID int64, isBorrow bool) (*model.CartItem, error) {
	if o.IsGuest() {
		return s.guestUpdate(ctx, o.GuestToken, itemID, isBorrow)
	}

	items, err := s.r.Items(ctx, o.Email)
	if err != nil {
		return nil, err
	}
	var found *model.CartItem
	for i := range items {
		if items[i].ID == itemID {
			found = &items[i]
			break
		}
	}
	if found == nil {
		return nil, makeErr(ErrItemNotFound)
	}
	book, err := s.books.Detail(ctx, found.BookID)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, makeErr(ErrBookNotFound)
	}
	return s.r.UpdateItem(ctx, o.Email, itemID, isBorrow, resolvePrice(book, isBorrow))
}

func (s *service) guestUpdate(ctx context.Context, token string, itemID int64, isBorrow bool) (*model.CartItem, error) {
	items, err := s.guests.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].ID != itemID {
			continue
		}
		book, err := s.books.Detail(ctx, items[i].BookID)
		if err != nil {
			return nil, err
		}
		if book == nil {
			return nil, makeErr(ErrBookNotFound)
		}
		items[i].IsBorrow = isBorrow
		items[i].Price = resolvePrice(book, isBorrow)
		if err := s.guests.Save(ctx, token, items); err != nil {
			return nil, err
		}
		return &items[i], nil
	}
	return nil, makeErr(ErrItemNotFound)
}

func (s *service) Remove(ctx context.Context, o Owner, itemID int64) error {
	if !o.IsGuest() {
		return s.r.Remove(ctx, o.Email, itemID)
	}
	items, err := s.guests.Get(ctx, o.GuestToken)
	if err != nil {
		return err
	}
	kept := items[:0]
	for _, it := range items {
		if it.ID != itemID {
			kept = append(kept, it)
		}
	}
	return s.guests.Save(ctx, o.GuestToken, kept)
}

func (s *service) Clear(ctx context.Context, o Owner) error {
	if o.IsGuest() {
		return s.guests.Delete(ctx, o.GuestToken)
	}
	return s.r.Clear(ctx, o.Email)
}

func (s *service) MergeGuest(ctx context.Context, token, email string) error {
	items, err := s.guests.Get(ctx, token)
	if err != nil {
		return err
	}
	owner := Owner{Email: email}
	for _, it := range items {
		if _, err := s.Add(ctx, owner, it.BookID, it.IsBorrow); err != nil {
			switch Code(err) {
			case ErrDuplicate, ErrAlreadyOwned, ErrBookNotFound:
				continue
			default:
				return err
			}
		}
	}
	return s.guests.Delete(ctx, token)
}
