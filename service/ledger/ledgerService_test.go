package ledgersvc

import (
	"context"
	"testing"
	"time"

	ledgerrepo "github.com/muhammedb99/eBookLibraryService/repository/ledger"
	"github.com/muhammedb99/eBookLibraryService/repository/mailer"

	"github.com/muhammedb99/eBookLibraryService/model"
)

type repoMock struct {
	hasActive      func(email string, bookID int64) (bool, error)
	countActive    func(email string) (int, error)
	listOwned      func(email string) ([]model.OwnedBook, error)
	createBorrow   func(email string, bookID int64, price float64, due time.Time) (*model.OwnedBook, error)
	createPurchase func(email string, bookID int64, price float64) (*model.OwnedBook, error)
	checkout       func(email string, items []model.CartItem, due time.Time) ([]model.OwnedBook, error)
	releaseBorrow  func(email string, bookID int64) (*ledgerrepo.Promotion, error)
	joinWaiting    func(email string, bookID int64) (*model.WaitingListEntry, error)
	onWaiting      func(email string, bookID int64) (bool, error)
}

func (m *repoMock) HasActive(_ context.Context, email string, bookID int64) (bool, error) {
	if m.hasActive == nil {
		return false, nil
	}
	return m.hasActive(email, bookID)
}

func (m *repoMock) CountActiveBorrows(_ context.Context, email string) (int, error) {
	if m.countActive == nil {
		return 0, nil
	}
	return m.countActive(email)
}

func (m *repoMock) ListOwned(_ context.Context, email string) ([]model.OwnedBook, error) {
	if m.listOwned == nil {
		return nil, nil
	}
	return m.listOwned(email)
}

func (m *repoMock) CreateBorrow(_ context.Context, email string, bookID int64, price float64, due time.Time) (*model.OwnedBook, error) {
	return m.createBorrow(email, bookID, price, due)
}

func (m *repoMock) CreatePurchase(_ context.Context, email string, bookID int64, price float64) (*model.OwnedBook, error) {
	return m.createPurchase(email, bookID, price)
}

func (m *repoMock) Checkout(_ context.Context, email string, items []model.CartItem, due time.Time) ([]model.OwnedBook, error) {
	return m.checkout(email, items, due)
}

func (m *repoMock) ReleaseBorrow(_ context.Context, email string, bookID int64) (*ledgerrepo.Promotion, error) {
	return m.releaseBorrow(email, bookID)
}

func (m *repoMock) JoinWaitingList(_ context.Context, email string, bookID int64) (*model.WaitingListEntry, error) {
	return m.joinWaiting(email, bookID)
}

func (m *repoMock) OnWaitingList(_ context.Context, email string, bookID int64) (bool, error) {
	if m.onWaiting == nil {
		return false, nil
	}
	return m.onWaiting(email, bookID)
}

type booksMock struct{ books map[int64]*model.Book }

func (m *booksMock) Detail(_ context.Context, id int64) (*model.Book, error) {
	return m.books[id], nil
}

type mailMock struct{ sent []mailer.Mail }

func (m *mailMock) Send(_ context.Context, msg mailer.Mail) error {
	m.sent = append(m.sent, msg)
	return nil
}

func borrowPrice(v float64) *float64 { return &v }

var testPolicy = Policy{BorrowLimit: 3, BorrowDays: 30}

const reader = "reader@example.com"

func TestBorrowSetsConfiguredDueDate(t *testing.T) {
	var gotDue time.Time
	repo := &repoMock{
		createBorrow: func(email string, bookID int64, price float64, due time.Time) (*model.OwnedBook, error) {
			gotDue = due
			return &model.OwnedBook{ID: 1, UserEmail: email, BookID: bookID, IsBorrowed: true, Price: price, BorrowDueDate: &due}, nil
		},
	}
	books := &booksMock{books: map[int64]*model.Book{7: {ID: 7, Title: "Dune", BorrowPrice: borrowPrice(5)}}}
	svc := New(repo, books, &mailMock{}, testPolicy)

	out, err := svc.Borrow(context.Background(), reader, 7)
	if err != nil {
		t.Fatalf("borrow: %v", err)
	}
	if out.Owned == nil || out.Waiting != nil {
		t.Fatalf("want owned outcome, got %+v", out)
	}
	want := time.Now().UTC().AddDate(0, 0, 30)
	if d := gotDue.Sub(want); d < -time.Minute || d > time.Minute {
		t.Fatalf("due date %v not ~30 days out", gotDue)
	}
	if out.Owned.Price != 5 {
		t.Fatalf("borrow should charge the borrow price, got %v", out.Owned.Price)
	}
}

func TestBorrowExhaustedJoinsWaitingList(t *testing.T) {
	joined := 0
	repo := &repoMock{
		createBorrow: func(string, int64, float64, time.Time) (*model.OwnedBook, error) {
			return nil, ledgerrepo.ErrNoCopies
		},
		joinWaiting: func(email string, bookID int64) (*model.WaitingListEntry, error) {
			joined++
			return &model.WaitingListEntry{ID: 1, BookID: bookID, UserEmail: email, DateAdded: time.Now()}, nil
		},
	}
	books := &booksMock{books: map[int64]*model.Book{7: {ID: 7, Title: "Dune"}}}
	svc := New(repo, books, &mailMock{}, testPolicy)

	out, err := svc.Borrow(context.Background(), reader, 7)
	if err != nil {
		t.Fatalf("borrow: %v", err)
	}
	if out.Waiting == nil || out.Owned != nil {
		t.Fatalf("want waiting outcome, got %+v", out)
	}
	if joined != 1 {
		t.Fatalf("want exactly one waiting-list entry, got %d", joined)
	}
}

func TestBorrowLimitEnforced(t *testing.T) {
	repo := &repoMock{
		countActive: func(string) (int, error) { return 3, nil },
		createBorrow: func(string, int64, float64, time.Time) (*model.OwnedBook, error) {
			t.Fatal("createBorrow must not be reached at the limit")
			return nil, nil
		},
	}
	books := &booksMock{books: map[int64]*model.Book{7: {ID: 7, Title: "Dune"}}}
	svc := New(repo, books, &mailMock{}, testPolicy)

	_, err := svc.Borrow(context.Background(), reader, 7)
	if Code(err) != ErrBorrowLimit {
		t.Fatalf("want BORROW_LIMIT, got %v", err)
	}
}

func TestBorrowAlreadyHeld(t *testing.T) {
	repo := &repoMock{
		hasActive: func(string, int64) (bool, error) { return true, nil },
	}
	books := &booksMock{books: map[int64]*model.Book{7: {ID: 7, Title: "Dune"}}}
	svc := New(repo, books, &mailMock{}, testPolicy)

	_, err := svc.Borrow(context.Background(), reader, 7)
	if Code(err) != ErrAlreadyOwned {
		t.Fatalf("want ALREADY_OWNED, got %v", err)
	}
}

func TestBuyDuplicateRejected(t *testing.T) {
	repo := &repoMock{
		createPurchase: func(string, int64, float64) (*model.OwnedBook, error) {
			return nil, ledgerrepo.ErrAlreadyOwned
		},
	}
	books := &booksMock{books: map[int64]*model.Book{7: {ID: 7, Title: "Dune", BuyingPrice: 30}}}
	svc := New(repo, books, &mailMock{}, testPolicy)

	_, err := svc.Buy(context.Background(), reader, 7, 30)
	if Code(err) != ErrAlreadyOwned {
		t.Fatalf("want ALREADY_OWNED, got %v", err)
	}
}

func TestCheckoutEmptyCart(t *testing.T) {
	svc := New(&repoMock{}, &booksMock{}, &mailMock{}, testPolicy)

	_, err := svc.Checkout(context.Background(), reader, nil)
	if Code(err) != ErrEmptyCart {
		t.Fatalf("want EMPTY_CART, got %v", err)
	}
}

func TestCheckoutCountsCartBorrowsAgainstLimit(t *testing.T) {
	repo := &repoMock{
		countActive: func(string) (int, error) { return 2, nil },
		checkout: func(string, []model.CartItem, time.Time) ([]model.OwnedBook, error) {
			t.Fatal("checkout must not run past the limit")
			return nil, nil
		},
	}
	svc := New(repo, &booksMock{}, &mailMock{}, testPolicy)

	items := []model.CartItem{
		{ID: 1, BookID: 1, IsBorrow: true},
		{ID: 2, BookID: 2, IsBorrow: true},
	}
	_, err := svc.Checkout(context.Background(), reader, items)
	if Code(err) != ErrBorrowLimit {
		t.Fatalf("want BORROW_LIMIT, got %v", err)
	}
}

func TestCheckoutMapsNoCopies(t *testing.T) {
	repo := &repoMock{
		checkout: func(string, []model.CartItem, time.Time) ([]model.OwnedBook, error) {
			return nil, ledgerrepo.ErrNoCopies
		},
	}
	svc := New(repo, &booksMock{}, &mailMock{}, testPolicy)

	_, err := svc.Checkout(context.Background(), reader, []model.CartItem{{ID: 1, BookID: 1, IsBorrow: true}})
	if Code(err) != ErrNoCopies {
		t.Fatalf("want NO_COPIES, got %v", err)
	}
}

func TestReturnNotifiesPromotedUser(t *testing.T) {
	repo := &repoMock{
		releaseBorrow: func(string, int64) (*ledgerrepo.Promotion, error) {
			return &ledgerrepo.Promotion{PromotedEmail: "next@example.com", Title: "Dune"}, nil
		},
	}
	mail := &mailMock{}
	svc := New(repo, &booksMock{}, mail, testPolicy)

	if err := svc.Return(context.Background(), reader, 7); err != nil {
		t.Fatalf("return: %v", err)
	}
	if len(mail.sent) != 1 {
		t.Fatalf("want one notification, got %d", len(mail.sent))
	}
	if mail.sent[0].To != "next@example.com" {
		t.Fatalf("notification went to %s", mail.sent[0].To)
	}
}

func TestReturnWithoutActiveBorrow(t *testing.T) {
	repo := &repoMock{
		releaseBorrow: func(string, int64) (*ledgerrepo.Promotion, error) {
			return nil, ledgerrepo.ErrNotBorrowed
		},
	}
	svc := New(repo, &booksMock{}, &mailMock{}, testPolicy)

	err := svc.Return(context.Background(), reader, 7)
	if Code(err) != ErrNotBorrowed {
		t.Fatalf("want NOT_BORROWED, got %v", err)
	}
}

func TestMyLibrarySplitsOwnedAndBorrowed(t *testing.T) {
	due := time.Now().Add(720 * time.Hour)
	repo := &repoMock{
		listOwned: func(string) ([]model.OwnedBook, error) {
			return []model.OwnedBook{
				{ID: 1, BookID: 1, Title: "Dune"},
				{ID: 2, BookID: 2, Title: "Emma", IsBorrowed: true, BorrowDueDate: &due},
			}, nil
		},
	}
	svc := New(repo, &booksMock{}, &mailMock{}, testPolicy)

	lib, err := svc.MyLibrary(context.Background(), reader)
	if err != nil {
		t.Fatalf("my library: %v", err)
	}
	if len(lib.Owned) != 1 || len(lib.Borrowed) != 1 {
		t.Fatalf("want 1 owned + 1 borrowed, got %d/%d", len(lib.Owned), len(lib.Borrowed))
	}
}
