package cartrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/muhammedb99/eBookLibraryService/model"
)

var ErrItemNotFound = errors.New("cart item not found")

type Repo interface {
	Items(ctx context.Context, email string) ([]model.CartItem, error)
	FindByBook(ctx context.Context, email string, bookID int64) (*model.CartItem, error)
	Insert(ctx context.Context, email string, bookID int64, isBorrow bool, price float64) (*model.CartItem, error)
	UpdateItem(ctx context.Context, email string, itemID int64, isBorrow bool, price float64) (*model.CartItem, error)
	Remove(ctx context.Context, email string, itemID int64) error
	Clear(ctx context.Context, email string) error
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) Items(ctx context.Context, email string) ([]model.CartItem, error) {
	const q = `
SELECT ci.id, ci.book_id, b.title, ci.is_borrow, ci.price, ci.created_at
FROM cart_items ci
JOIN books b ON b.id = ci.book_id
WHERE ci.user_email = $1
ORDER BY ci.id`
	rows, err := r.db.QueryContext(ctx, q, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.CartItem
	for rows.Next() {
		var it model.CartItem
		if err := rows.Scan(&it.ID, &it.BookID, &it.Title, &it.IsBorrow, &it.Price, &it.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *repo) FindByBook(ctx context.Context, email string, bookID int64) (*model.CartItem, error) {
	const q = `
SELECT id, book_id, is_borrow, price, created_at
FROM cart_items
WHERE user_email = $1 AND book_id = $2`
	var it model.CartItem
	err := r.db.QueryRowContext(ctx, q, email, bookID).
		Scan(&it.ID, &it.BookID, &it.IsBorrow, &it.Price, &it.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *repo) Insert(ctx context.Context, email string, bookID int64, isBorrow bool, price float64) (*model.CartItem, error) {
	const q = `
INSERT INTO cart_items (user_email, book_id, is_borrow, price)
VALUES ($1,$2,$3,$4)
RETURNING id, created_at`
	it := model.CartItem{BookID: bookID, IsBorrow: isBorrow, Price: price}
	if err := r.db.QueryRowContext(ctx, q, email, bookID, isBorrow, price).Scan(&it.ID, &it.CreatedAt); err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *repo) UpdateItem(ctx context.Context, email string, itemID int64, isBorrow bool, price float64) (*model.CartItem, error) {
	const q = `
UPDATE cart_items
SET is_borrow = $3, price = $4
WHERE id = $2 AND user_email = $1
RETURNING id, book_id, is_borrow, price, created_at`
	var it model.CartItem
	err := r.db.QueryRowContext(ctx, q, email, itemID, isBorrow, price).
		Scan(&it.ID, &it.BookID, &it.IsBorrow, &it.Price, &it.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// Remove is idempotent: deleting an absent line is a no-op.
func (r *repo) Remove(ctx context.Context, email string, itemID int64) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM cart_items WHERE id = $2 AND user_email = $1`, email, itemID)
	return err
}

func (r *repo) Clear(ctx context.Context, email string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE user_email = $1`, email)
	return err
}
