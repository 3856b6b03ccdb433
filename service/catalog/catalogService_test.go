package catalogsvc

import (
	"context"
	"testing"

	bookrepo "github.com/muhammedb99/eBookLibraryService/repository/book"

	"github.com/muhammedb99/eBookLibraryService/model"
)

type repoMock struct {
	create      func(b *model.Book) (int64, error)
	update      func(b *model.Book) (bool, error)
	delete      func(id int64) (bool, error)
	list        func(f Filter) ([]model.Book, error)
	detail      func(id int64) (*model.Book, error)
	adjustStock func(id int64, delta int) (int, error)
}

func (m *repoMock) Create(_ context.Context, b *model.Book) (int64, error) { return m.create(b) }
func (m *repoMock) Update(_ context.Context, b *model.Book) (bool, error) { return m.update(b) }
func (m *repoMock) Delete(_ context.Context, id int64) (bool, error)      { return m.delete(id) }
func (m *repoMock) List(_ context.Context, f Filter) ([]model.Book, error) {
	return m.list(f)
}
func (m *repoMock) Detail(_ context.Context, id int64) (*model.Book, error) { return m.detail(id) }
func (m *repoMock) AdjustStock(_ context.Context, id int64, delta int) (int, error) {
	return m.adjustStock(id, delta)
}

func f64(v float64) *float64 { return &v }

func validBook() *model.Book {
	return &model.Book{Title: "Dune", Author: "Frank Herbert", BuyingPrice: 30, TotalCopies: 3}
}

func TestDetailMissingBook(t *testing.T) {
	repo := &repoMock{detail: func(int64) (*model.Book, error) { return nil, nil }}
	svc := New(repo)

	_, err := svc.Detail(context.Background(), 99)
	if Code(err) != ErrNotFound {
		t.Fatalf("want BOOK_NOT_FOUND, got %v", err)
	}
}

func TestCreateValidation(t *testing.T) {
	repo := &repoMock{create: func(*model.Book) (int64, error) { return 1, nil }}
	svc := New(repo)

	cases := []struct {
		name string
		mut  func(*model.Book)
	}{
		{"empty title", func(b *model.Book) { b.Title = "  " }},
		{"empty author", func(b *model.Book) { b.Author = "" }},
		{"negative price", func(b *model.Book) { b.BuyingPrice = -1 }},
		{"negative copies", func(b *model.Book) { b.TotalCopies = -1 }},
		{"borrow above buy", func(b *model.Book) { b.BorrowPrice = f64(40) }},
		{"bad pdf link", func(b *model.Book) { s := "not a url"; b.PdfLink = &s }},
		{"bad image url", func(b *model.Book) { b.ImageURL = "ftp://files/dune.png" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := validBook()
			tc.mut(b)
			if _, err := svc.Create(context.Background(), b); Code(err) != ErrBadPayload {
				t.Fatalf("want INVALID_PAYLOAD, got %v", err)
			}
		})
	}
}

func TestCreateAcceptsValidBook(t *testing.T) {
	repo := &repoMock{create: func(*model.Book) (int64, error) { return 42, nil }}
	svc := New(repo)

	b := validBook()
	s := "https://cdn.example.com/dune.pdf"
	b.PdfLink = &s
	b.BorrowPrice = f64(5)

	id, err := svc.Create(context.Background(), b)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id != 42 {
		t.Fatalf("want id 42, got %d", id)
	}
}

func TestUpdateMissingBook(t *testing.T) {
	repo := &repoMock{update: func(*model.Book) (bool, error) { return false, nil }}
	svc := New(repo)

	err := svc.Update(context.Background(), validBook())
	if Code(err) != ErrNotFound {
		t.Fatalf("want BOOK_NOT_FOUND, got %v", err)
	}
}

func TestDeleteMissingBook(t *testing.T) {
	repo := &repoMock{delete: func(int64) (bool, error) { return false, nil }}
	svc := New(repo)

	err := svc.Delete(context.Background(), 99)
	if Code(err) != ErrNotFound {
		t.Fatalf("want BOOK_NOT_FOUND, got %v", err)
	}
}

func TestAdjustStockMapsConflict(t *testing.T) {
	repo := &repoMock{
		adjustStock: func(int64, int) (int, error) { return 0, bookrepo.ErrStockBelowBorrowed },
		detail:      func(int64) (*model.Book, error) { return validBook(), nil },
	}
	svc := New(repo)

	_, err := svc.AdjustStock(context.Background(), 7, -5)
	if Code(err) != ErrStockConflict {
		t.Fatalf("want STOCK_CONFLICT, got %v", err)
	}
}

func TestAdjustStockMissingBook(t *testing.T) {
	repo := &repoMock{
		adjustStock: func(int64, int) (int, error) { return 0, bookrepo.ErrStockBelowBorrowed },
		detail:      func(int64) (*model.Book, error) { return nil, nil },
	}
	svc := New(repo)

	_, err := svc.AdjustStock(context.Background(), 99, 1)
	if Code(err) != ErrNotFound {
		t.Fatalf("want BOOK_NOT_FOUND, got %v", err)
	}
}

func TestAdjustStockReturnsNewTotal(t *testing.T) {
	repo := &repoMock{
		adjustStock: func(id int64, delta int) (int, error) { return 5, nil },
	}
	svc := New(repo)

	total, err := svc.AdjustStock(context.Background(), 7, 2)
	if err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if total != 5 {
		t.Fatalf("want total 5, got %d", total)
	}
}
