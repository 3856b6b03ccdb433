package bookrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/muhammedb99/eBookLibraryService/model"
)

var ErrStockBelowBorrowed = errors.New("total copies cannot drop below borrowed copies")

// effective sale price: discount applies only while discount_until has not
// passed, otherwise the regular buying price.
const effectivePrice = `CASE WHEN b.discount_price IS NOT NULL AND b.discount_price > 0
		AND b.discount_until IS NOT NULL AND b.discount_until >= NOW()
	THEN b.discount_price ELSE b.buying_price END`

const bookCols = `b.id, b.title, b.author, b.publisher, b.genre, b.year_of_publishing,
	b.age_limitation, b.image_url, b.pdf_link, b.epub_link, b.mobi_link, b.f2b_link,
	b.borrow_price, b.buying_price, b.discount_price, b.discount_until,
	b.total_copies, b.borrowed_copies, b.borrow_count, b.purchase_count,
	(b.borrow_count + b.purchase_count)::BIGINT AS popularity`

// Filter mirrors the storefront browse form.
type Filter struct {
	Query     string
	Author    string
	Genre     string
	Method    string // "buy" | "borrow"
	Publisher string
	MinPrice  *float64
	MaxPrice  *float64
	OnSale    bool
	Year      *int
	SortOrder string // price_asc | price_desc | popular | genre | year
}

type Repo interface {
	Create(ctx context.Context, b *model.Book) (int64, error)
	Update(ctx context.Context, b *model.Book) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context, f Filter) ([]model.Book, error)
	Detail(ctx context.Context, id int64) (*model.Book, error)
	AdjustStock(ctx context.Context, id int64, delta int) (int, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) Create(ctx context.Context, b *model.Book) (int64, error) {
	const q = `
INSERT INTO books (title, author, publisher, genre, year_of_publishing, age_limitation,
	image_url, pdf_link, epub_link, mobi_link, f2b_link,
	borrow_price, buying_price, discount_price, discount_until, total_copies)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
RETURNING id`
	var id int64
	err := r.db.QueryRowContext(ctx, q,
		b.Title, b.Author, b.Publisher, b.Genre, b.YearOfPublishing, b.AgeLimitation,
		b.ImageURL, b.PdfLink, b.EpubLink, b.MobiLink, b.F2bLink,
		b.BorrowPrice, b.BuyingPrice, b.DiscountPrice, b.DiscountUntil, b.TotalCopies,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repo) Update(ctx context.Context, b *model.Book) (bool, error) {
	const q = `
UPDATE books SET title=$2, author=$3, publisher=$4, genre=$5, year_of_publishing=$6,
	age_limitation=$7, image_url=$8, pdf_link=$9, epub_link=$10, mobi_link=$11, f2b_link=$12,
	borrow_price=$13, buying_price=$14, discount_price=$15, discount_until=$16
WHERE id=$1`
	res, err := r.db.ExecContext(ctx, q,
		b.ID, b.Title, b.Author, b.Publisher, b.Genre, b.YearOfPublishing,
		b.AgeLimitation, b.ImageURL, b.PdfLink, b.EpubLink, b.MobiLink, b.F2bLink,
		b.BorrowPrice, b.BuyingPrice, b.DiscountPrice, b.DiscountUntil,
	)
	if err != nil {
		return false, err
	}
	aff, _ := res.RowsAffected()
	return aff > 0, nil
}

func (r *repo) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM books WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	aff, _ := res.RowsAffected()
	return aff > 0, nil
}

func (r *repo) List(ctx context.Context, f Filter) ([]model.Book, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if s := strings.TrimSpace(f.Query); s != "" {
		p := arg("%" + s + "%")
		where = append(where, fmt.Sprintf("(b.title ILIKE %s OR b.author ILIKE %s)", p, p))
	}
	if s := strings.TrimSpace(f.Author); s != "" {
		where = append(where, "b.author ILIKE "+arg("%"+s+"%"))
	}
	if s := strings.TrimSpace(f.Genre); s != "" {
		where = append(where, "b.genre = "+arg(s))
	}
	switch strings.ToLower(f.Method) {
	case "buy":
		where = append(where, "b.buying_price > 0")
	case "borrow":
		where = append(where, "b.borrow_price > 0")
	}
	if f.MinPrice != nil {
		where = append(where, effectivePrice+" >= "+arg(*f.MinPrice))
	}
	if f.MaxPrice != nil {
		where = append(where, effectivePrice+" <= "+arg(*f.MaxPrice))
	}
	if f.OnSale {
		where = append(where,
			"b.discount_price IS NOT NULL AND b.discount_price > 0 AND b.discount_price < b.buying_price AND b.discount_until >= NOW()")
	}
	if f.Year != nil {
		where = append(where, "b.year_of_publishing = "+arg(*f.Year))
	}
	if s := strings.TrimSpace(f.Publisher); s != "" {
		where = append(where, "b.publisher ILIKE "+arg("%"+s+"%"))
	}

	order := "b.id DESC"
	switch f.SortOrder {
	case "price_asc":
		order = effectivePrice + " ASC"
	case "price_desc":
		order = effectivePrice + " DESC"
	case "popular":
		order = "popularity DESC"
	case "genre":
		order = "b.genre ASC"
	case "year":
		order = "b.year_of_publishing DESC"
	}

	q := "SELECT " + bookCols + " FROM books b"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY " + order

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

func (r *repo) Detail(ctx context.Context, id int64) (*model.Book, error) {
	q := "SELECT " + bookCols + " FROM books b WHERE b.id=$1"
	b, err := scanBook(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// AdjustStock grows or shrinks total_copies. Shrinking never drops below the
// currently borrowed count; the guard lives in the UPDATE itself.
func (r *repo) AdjustStock(ctx context.Context, id int64, delta int) (int, error) {
	const q = `
UPDATE books
SET total_copies = total_copies + $2
WHERE id = $1 AND total_copies + $2 >= borrowed_copies AND total_copies + $2 >= 0
RETURNING total_copies`
	var total int
	err := r.db.QueryRowContext(ctx, q, id, delta).Scan(&total)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrStockBelowBorrowed
	}
	if err != nil {
		return 0, err
	}
	return total, nil
}

type rowScanner interface{ Scan(dest ...any) error }

func scanBook(rs rowScanner) (*model.Book, error) {
	var b model.Book
	err := rs.Scan(
		&b.ID, &b.Title, &b.Author, &b.Publisher, &b.Genre, &b.YearOfPublishing,
		&b.AgeLimitation, &b.ImageURL, &b.PdfLink, &b.EpubLink, &b.MobiLink, &b.F2bLink,
		&b.BorrowPrice, &b.BuyingPrice, &b.DiscountPrice, &b.DiscountUntil,
		&b.TotalCopies, &b.BorrowedCopies, &b.BorrowCount, &b.PurchaseCount,
		&b.Popularity,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
