package cartsvc

import (
	"context"
	"testing"
	"time"

	"github.com/muhammedb99/eBookLibraryService/model"
)

func f64(v float64) *float64 { return &v }

type fakeBooks struct{ books map[int64]*model.Book }

func (f *fakeBooks) Detail(_ context.Context, id int64) (*model.Book, error) {
	return f.books[id], nil
}

type fakeLedger struct{ owned map[int64]bool }

func (f *fakeLedger) HasActive(_ context.Context, _ string, bookID int64) (bool, error) {
	return f.owned[bookID], nil
}

type fakeCartRepo struct {
	items  []model.CartItem
	nextID int64
}

func (f *fakeCartRepo) Items(_ context.Context, _ string) ([]model.CartItem, error) {
	out := make([]model.CartItem, len(f.items))
	copy(out, f.items)
	return out, nil
}

func (f *fakeCartRepo) FindByBook(_ context.Context, _ string, bookID int64) (*model.CartItem, error) {
	for i := range f.items {
		if f.items[i].BookID == bookID {
			it := f.items[i]
			return &it, nil
		}
	}
	return nil, nil
}

func (f *fakeCartRepo) Insert(_ context.Context, _ string, bookID int64, isBorrow bool, price float64) (*model.CartItem, error) {
	f.nextID++
	it := model.CartItem{ID: f.nextID, BookID: bookID, IsBorrow: isBorrow, Price: price, CreatedAt: time.Now()}
	f.items = append(f.items, it)
	return &it, nil
}

func (f *fakeCartRepo) UpdateItem(_ context.Context, _ string, itemID int64, isBorrow bool, price float64) (*model.CartItem, error) {
	for i := range f.items {
		if f.items[i].ID == itemID {
			f.items[i].IsBorrow = isBorrow
			f.items[i].Price = price
			it := f.items[i]
			return &it, nil
		}
	}
	return nil, makeErr(ErrItemNotFound)
}

func (f *fakeCartRepo) Remove(_ context.Context, _ string, itemID int64) error {
	kept := f.items[:0]
	for _, it := range f.items {
		if it.ID != itemID {
			kept = append(kept, it)
		}
	}
	f.items = kept
	return nil
}

func (f *fakeCartRepo) Clear(_ context.Context, _ string) error {
	f.items = nil
	return nil
}

type fakeGuestStore struct{ carts map[string][]model.CartItem }

func (f *fakeGuestStore) Get(_ context.Context, token string) ([]model.CartItem, error) {
	return f.carts[token], nil
}

func (f *fakeGuestStore) Save(_ context.Context, token string, items []model.CartItem) error {
	f.carts[token] = items
	return nil
}

func (f *fakeGuestStore) Delete(_ context.Context, token string) error {
	delete(f.carts, token)
	return nil
}

func newFixture(books ...*model.Book) (Service, *fakeCartRepo, *fakeLedger, *fakeGuestStore) {
	bm := map[int64]*model.Book{}
	for _, b := range books {
		bm[b.ID] = b
	}
	cr := &fakeCartRepo{}
	lg := &fakeLedger{owned: map[int64]bool{}}
	gs := &fakeGuestStore{carts: map[string][]model.CartItem{}}
	return New(&fakeBooks{books: bm}, lg, cr, gs), cr, lg, gs
}

var user = Owner{Email: "reader@example.com"}

func TestAddSnapshotsBorrowPrice(t *testing.T) {
	svc, _, _, _ := newFixture(&model.Book{ID: 1, Title: "Dune", BuyingPrice: 30, BorrowPrice: f64(5)})

	it, err := svc.Add(context.Background(), user, 1, true)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if it.Price != 5 {
		t.Fatalf("want borrow price 5, got %v", it.Price)
	}
	if !it.IsBorrow {
		t.Fatal("item should be a borrow line")
	}
}

func TestAddBorrowWithoutBorrowPriceIsFree(t *testing.T) {
	svc, _, _, _ := newFixture(&model.Book{ID: 1, Title: "Dune", BuyingPrice: 30})

	it, err := svc.Add(context.Background(), user, 1, true)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if it.Price != 0 {
		t.Fatalf("borrow without borrow price should be free, got %v", it.Price)
	}
}

func TestAddUsesActiveDiscount(t *testing.T) {
	until := time.Now().Add(24 * time.Hour)
	svc, _, _, _ := newFixture(&model.Book{
		ID: 1, Title: "Dune", BuyingPrice: 30,
		DiscountPrice: f64(18), DiscountUntil: &until,
	})

	it, err := svc.Add(context.Background(), user, 1, false)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if it.Price != 18 {
		t.Fatalf("want discounted price 18, got %v", it.Price)
	}
}

func TestAddIgnoresExpiredDiscount(t *testing.T) {
	until := time.Now().Add(-24 * time.Hour)
	svc, _, _, _ := newFixture(&model.Book{
		ID: 1, Title: "Dune", BuyingPrice: 30,
		DiscountPrice: f64(18), DiscountUntil: &until,
	})

	it, err := svc.Add(context.Background(), user, 1, false)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if it.Price != 30 {
		t.Fatalf("expired discount should not apply, got %v", it.Price)
	}
}

func TestAddUnknownBook(t *testing.T) {
	svc, _, _, _ := newFixture()

	_, err := svc.Add(context.Background(), user, 99, false)
	if Code(err) != ErrBookNotFound {
		t.Fatalf("want BOOK_NOT_FOUND, got %v", err)
	}
}

func TestAddOwnedBookRejected(t *testing.T) {
	svc, _, lg, _ := newFixture(&model.Book{ID: 1, Title: "Dune", BuyingPrice: 30})
	lg.owned[1] = true

	_, err := svc.Add(context.Background(), user, 1, false)
	if Code(err) != ErrAlreadyOwned {
		t.Fatalf("want ALREADY_OWNED, got %v", err)
	}
}

func TestAddSameModeTwiceRejected(t *testing.T) {
	svc, cr, _, _ := newFixture(&model.Book{ID: 1, Title: "Dune", BuyingPrice: 30})

	if _, err := svc.Add(context.Background(), user, 1, false); err != nil {
		t.Fatalf("first add: %v", err)
	}
	_, err := svc.Add(context.Background(), user, 1, false)
	if Code(err) != ErrDuplicate {
		t.Fatalf("want DUPLICATE_ITEM, got %v", err)
	}
	if len(cr.items) != 1 {
		t.Fatalf("cart should still hold one line, got %d", len(cr.items))
	}
}

func TestAddOtherModeSwitchesLine(t *testing.T) {
	svc, cr, _, _ := newFixture(&model.Book{ID: 1, Title: "Dune", BuyingPrice: 30, BorrowPrice: f64(5)})

	first, err := svc.Add(context.Background(), user, 1, true)
	if err != nil {
		t.Fatalf("first add: %v", err)
	}
	switched, err := svc.Add(context.Background(), user, 1, false)
	if err != nil {
		t.Fatalf("second add: %v", err)
	}
	if switched.ID != first.ID {
		t.Fatalf("mode switch should reuse the line, got id %d want %d", switched.ID, first.ID)
	}
	if switched.IsBorrow || switched.Price != 30 {
		t.Fatalf("line should now be a purchase at 30, got %+v", switched)
	}
	if len(cr.items) != 1 {
		t.Fatalf("cart should hold one line, got %d", len(cr.items))
	}
}

func TestUpdateReprices(t *testing.T) {
	svc, _, _, _ := newFixture(&model.Book{ID: 1, Title: "Dune", BuyingPrice: 30, BorrowPrice: f64(5)})

	it, err := svc.Add(context.Background(), user, 1, false)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	upd, err := svc.Update(context.Background(), user, it.ID, true)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !upd.IsBorrow || upd.Price != 5 {
		t.Fatalf("update should reprice to borrow 5, got %+v", upd)
	}
}

func TestUpdateMissingItem(t *testing.T) {
	svc, _, _, _ := newFixture(&model.Book{ID: 1, Title: "Dune", BuyingPrice: 30})

	_, err := svc.Update(context.Background(), user, 42, true)
	if Code(err) != ErrItemNotFound {
		t.Fatalf("want ITEM_NOT_FOUND, got %v", err)
	}
}

func TestRemoveIsIdempotent(t *testing.T) {
	svc, cr, _, _ := newFixture(&model.Book{ID: 1, Title: "Dune", BuyingPrice: 30})

	it, err := svc.Add(context.Background(), user, 1, false)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := svc.Remove(context.Background(), user, it.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := svc.Remove(context.Background(), user, it.ID); err != nil {
		t.Fatalf("second remove should be a no-op, got %v", err)
	}
	if len(cr.items) != 0 {
		t.Fatalf("cart should be empty, got %d lines", len(cr.items))
	}
}

func TestGetSumsLockedPrices(t *testing.T) {
	svc, _, _, _ := newFixture(
		&model.Book{ID: 1, Title: "Dune", BuyingPrice: 30},
		&model.Book{ID: 2, Title: "Emma", BuyingPrice: 12, BorrowPrice: f64(4)},
	)

	if _, err := svc.Add(context.Background(), user, 1, false); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := svc.Add(context.Background(), user, 2, true); err != nil {
		t.Fatalf("add: %v", err)
	}
	cart, err := svc.Get(context.Background(), user)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if cart.Total != 34 {
		t.Fatalf("want total 34, got %v", cart.Total)
	}
}

func TestGuestCartLivesInStore(t *testing.T) {
	svc, cr, _, gs := newFixture(&model.Book{ID: 1, Title: "Dune", BuyingPrice: 30})
	guest := Owner{GuestToken: "tok-1"}

	it, err := svc.Add(context.Background(), guest, 1, false)
	if err != nil {
		t.Fatalf("guest add: %v", err)
	}
	if it.Price != 30 {
		t.Fatalf("guest line should lock price 30, got %v", it.Price)
	}
	if len(cr.items) != 0 {
		t.Fatal("guest lines must not hit the DB cart")
	}
	if len(gs.carts["tok-1"]) != 1 {
		t.Fatalf("guest store should hold one line, got %d", len(gs.carts["tok-1"]))
	}
}

func TestMergeGuestDropsConflictingLines(t *testing.T) {
	svc, cr, lg, gs := newFixture(
		&model.Book{ID: 1, Title: "Dune", BuyingPrice: 30},
		&model.Book{ID: 2, Title: "Emma", BuyingPrice: 12},
		&model.Book{ID: 3, Title: "Ulysses", BuyingPrice: 20},
	)
	lg.owned[2] = true

	// book 1 already in the account cart, book 2 owned, book 3 clean
	if _, err := svc.Add(context.Background(), user, 1, false); err != nil {
		t.Fatalf("seed: %v", err)
	}
	gs.carts["tok-1"] = []model.CartItem{
		{ID: 1, BookID: 1, Price: 30},
		{ID: 2, BookID: 2, Price: 12},
		{ID: 3, BookID: 3, Price: 20},
	}

	if err := svc.MergeGuest(context.Background(), "tok-1", user.Email); err != nil {
		t.Fatalf("merge: %v", err)
	}
	if len(cr.items) != 2 {
		t.Fatalf("want 2 lines after merge, got %d", len(cr.items))
	}
	if _, ok := gs.carts["tok-1"]; ok {
		t.Fatal("guest cart should be deleted after merge")
	}
}
