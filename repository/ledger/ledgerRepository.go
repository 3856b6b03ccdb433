// repository/ledger/repo.go
package ledgerrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/muhammedb99/eBookLibraryService/model"
)

var (
	ErrNoCopies       = errors.New("no available copies")
	ErrAlreadyOwned   = errors.New("user already holds this book")
	ErrAlreadyWaiting = errors.New("user already on waiting list")
	ErrNotBorrowed    = errors.New("no active borrow for this book")
)

// Expired is one reclaimed overdue borrow. PromotedEmail is set when a
// waiting-list entry was popped for the freed copy.
type Expired struct {
	BookID        int64
	Title         string
	UserEmail     string
	PromotedEmail string
}

// Reminder is a borrow approaching its due date. Read-only.
type Reminder struct {
	BookID    int64
	Title     string
	UserEmail string
	DueDate   time.Time
}

// Promotion reports the waiting-list pop triggered by an early return.
type Promotion struct {
	PromotedEmail string
	Title         string
}

type Repo interface {
	HasActive(ctx context.Context, email string, bookID int64) (bool, error)
	CountActiveBorrows(ctx context.Context, email string) (int, error)
	ListOwned(ctx context.Context, email string) ([]model.OwnedBook, error)

	CreateBorrow(ctx context.Context, email string, bookID int64, price float64, due time.Time) (*model.OwnedBook, error)
	CreatePurchase(ctx context.Context, email string, bookID int64, price float64) (*model.OwnedBook, error)
	Checkout(ctx context.Context, email string, items []model.CartItem, due time.Time) ([]model.OwnedBook, error)
	ReleaseBorrow(ctx context.Context, email string, bookID int64) (*Promotion, error)

	JoinWaitingList(ctx context.Context, email string, bookID int64) (*model.WaitingListEntry, error)
	OnWaitingList(ctx context.Context, email string, bookID int64) (bool, error)

	ExpireOverdue(ctx context.Context, now time.Time) ([]Expired, error)
	DueSoon(ctx context.Context, from, to time.Time) ([]Reminder, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) HasActive(ctx context.Context, email string, bookID int64) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM owned_books WHERE user_email=$1 AND book_id=$2)`
	var ok bool
	err := r.db.QueryRowContext(ctx, q, email, bookID).Scan(&ok)
	return ok, err
}

func (r *repo) CountActiveBorrows(ctx context.Context, email string) (int, error) {
	const q = `SELECT COUNT(*) FROM owned_books WHERE user_email=$1 AND is_borrowed`
	var n int
	err := r.db.QueryRowContext(ctx, q, email).Scan(&n)
	return n, err
}

func (r *repo) ListOwned(ctx context.Context, email string) ([]model.OwnedBook, error) {
	const q = `
SELECT ob.id, ob.user_email, ob.book_id, b.title, b.author,
       ob.is_borrowed, ob.price, ob.purchase_date, ob.borrow_due_date
FROM owned_books ob
JOIN books b ON b.id = ob.book_id
WHERE ob.user_email = $1
ORDER BY ob.purchase_date DESC, ob.id DESC`
	rows, err := r.db.QueryContext(ctx, q, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.OwnedBook
	for rows.Next() {
		var ob model.OwnedBook
		if err := rows.Scan(&ob.ID, &ob.UserEmail, &ob.BookID, &ob.Title, &ob.Author,
			&ob.IsBorrowed, &ob.Price, &ob.PurchaseDate, &ob.BorrowDueDate); err != nil {
			return nil, err
		}
		out = append(out, ob)
	}
	return out, rows.Err()
}

// CreateBorrow reserves a copy and records the borrow in one transaction.
// The reservation is a conditional update, never read-then-write.
func (r *repo) CreateBorrow(ctx context.Context, email string, bookID int64, price float64, due time.Time) (*model.OwnedBook, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var ob *model.OwnedBook
	if ob, err = insertBorrow(ctx, tx, email, bookID, price, due); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return ob, nil
}

func (r *repo) CreatePurchase(ctx context.Context, email string, bookID int64, price float64) (*model.OwnedBook, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var ob *model.OwnedBook
	if ob, err = insertPurchase(ctx, tx, email, bookID, price); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return ob, nil
}

// Checkout materializes every cart line and clears the cart in a single
// transaction. Any line failing rolls back the whole checkout.
func (r *repo) Checkout(ctx context.Context, email string, items []model.CartItem, due time.Time) ([]model.OwnedBook, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	out := make([]model.OwnedBook, 0, len(items))
	for _, it := range items {
		var ob *model.OwnedBook
		if it.IsBorrow {
			ob, err = insertBorrow(ctx, tx, email, it.BookID, it.Price, due)
		} else {
			ob, err = insertPurchase(ctx, tx, email, it.BookID, it.Price)
		}
		if err != nil {
			err = fmt.Errorf("book %d: %w", it.BookID, err)
			return nil, err
		}
		out = append(out, *ob)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM cart_items WHERE user_email=$1`, email); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repo) ReleaseBorrow(ctx context.Context, email string, bookID int64) (*Promotion, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var id int64
	err = tx.QueryRowContext(ctx, `
SELECT id FROM owned_books
WHERE user_email=$1 AND book_id=$2 AND is_borrowed
FOR UPDATE`, email, bookID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		err = ErrNotBorrowed
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM owned_books WHERE id=$1`, id); err != nil {
		return nil, err
	}
	var promoted, title string
	if promoted, title, err = releaseCopyAndPromote(ctx, tx, bookID); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return &Promotion{PromotedEmail: promoted, Title: title}, nil
}

func (r *repo) JoinWaitingList(ctx context.Context, email string, bookID int64) (*model.WaitingListEntry, error) {
	const q = `
INSERT INTO waiting_list (book_id, user_email)
VALUES ($1,$2)
RETURNING id, date_added`
	e := model.WaitingListEntry{BookID: bookID, UserEmail: email}
	err := r.db.QueryRowContext(ctx, q, bookID, email).Scan(&e.ID, &e.DateAdded)
	if isUniqueViolation(err) {
		return nil, ErrAlreadyWaiting
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *repo) OnWaitingList(ctx context.Context, email string, bookID int64) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM waiting_list WHERE book_id=$1 AND user_email=$2)`
	var ok bool
	err := r.db.QueryRowContext(ctx, q, bookID, email).Scan(&ok)
	return ok, err
}

// ExpireOverdue reclaims overdue borrows one row per transaction.
// SKIP LOCKED keeps the sweep from colliding with a concurrent return.
func (r *repo) ExpireOverdue(ctx context.Context, now time.Time) ([]Expired, error) {
	var out []Expired
	for {
		ex, done, err := r.expireOne(ctx, now)
		if err != nil {
			return out, err
		}
		if done {
			return out, nil
		}
		out = append(out, *ex)
	}
}

func (r *repo) expireOne(ctx context.Context, now time.Time) (ex *Expired, done bool, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var (
		id     int64
		bookID int64
		email  string
		title  string
	)
	err = tx.QueryRowContext(ctx, `
SELECT ob.id, ob.book_id, ob.user_email, b.title
FROM owned_books ob
JOIN books b ON b.id = ob.book_id
WHERE ob.is_borrowed AND ob.borrow_due_date <= $1
ORDER BY ob.borrow_due_date
LIMIT 1
FOR UPDATE OF ob SKIP LOCKED`, now).Scan(&id, &bookID, &email, &title)
	if errors.Is(err, sql.ErrNoRows) {
		err = tx.Rollback()
		return nil, true, err
	}
	if err != nil {
		return nil, false, err
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM owned_books WHERE id=$1`, id); err != nil {
		return nil, false, err
	}
	var promoted string
	if promoted, _, err = releaseCopyAndPromote(ctx, tx, bookID); err != nil {
		return nil, false, err
	}
	if err = tx.Commit(); err != nil {
		return nil, false, err
	}
	return &Expired{BookID: bookID, Title: title, UserEmail: email, PromotedEmail: promoted}, false, nil
}

func (r *repo) DueSoon(ctx context.Context, from, to time.Time) ([]Reminder, error) {
	const q = `
SELECT ob.book_id, b.title, ob.user_email, ob.borrow_due_date
FROM owned_books ob
JOIN books b ON b.id = ob.book_id
WHERE ob.is_borrowed AND ob.borrow_due_date > $1 AND ob.borrow_due_date <= $2
ORDER BY ob.borrow_due_date`
	rows, err := r.db.QueryContext(ctx, q, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Reminder
	for rows.Next() {
		var rem Reminder
		if err := rows.Scan(&rem.BookID, &rem.Title, &rem.UserEmail, &rem.DueDate); err != nil {
			return nil, err
		}
		out = append(out, rem)
	}
	return out, rows.Err()
}

// --- transaction helpers ---

func insertBorrow(ctx context.Context, tx *sql.Tx, email string, bookID int64, price float64, due time.Time) (*model.OwnedBook, error) {
	// Reserve one copy; the WHERE guard makes the decrement race-free.
	res, err := tx.ExecContext(ctx, `
UPDATE books
SET borrowed_copies = borrowed_copies + 1,
    borrow_count = borrow_count + 1
WHERE id = $1 AND borrowed_copies < total_copies`, bookID)
	if err != nil {
		return nil, err
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return nil, ErrNoCopies
	}

	ob := model.OwnedBook{UserEmail: email, BookID: bookID, IsBorrowed: true, Price: price, BorrowDueDate: &due}
	err = tx.QueryRowContext(ctx, `
INSERT INTO owned_books (user_email, book_id, is_borrowed, price, borrow_due_date)
VALUES ($1,$2,TRUE,$3,$4)
RETURNING id, purchase_date`, email, bookID, price, due).Scan(&ob.ID, &ob.PurchaseDate)
	if isUniqueViolation(err) {
		return nil, ErrAlreadyOwned
	}
	if err != nil {
		return nil, err
	}
	return &ob, nil
}

func insertPurchase(ctx context.Context, tx *sql.Tx, email string, bookID int64, price float64) (*model.OwnedBook, error) {
	ob := model.OwnedBook{UserEmail: email, BookID: bookID, Price: price}
	err := tx.QueryRowContext(ctx, `
INSERT INTO owned_books (user_email, book_id, is_borrowed, price)
VALUES ($1,$2,FALSE,$3)
RETURNING id, purchase_date`, email, bookID, price).Scan(&ob.ID, &ob.PurchaseDate)
	if isUniqueViolation(err) {
		return nil, ErrAlreadyOwned
	}
	if err != nil {
		return nil, err
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE books SET purchase_count = purchase_count + 1 WHERE id = $1`, bookID)
	if err != nil {
		return nil, err
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return nil, sql.ErrNoRows
	}
	return &ob, nil
}

// releaseCopyAndPromote frees one copy and pops the oldest waiting-list
// entry for the book, if any.
func releaseCopyAndPromote(ctx context.Context, tx *sql.Tx, bookID int64) (promotedEmail, title string, err error) {
	if _, err = tx.ExecContext(ctx, `
UPDATE books
SET borrowed_copies = borrowed_copies - 1
WHERE id = $1 AND borrowed_copies > 0`, bookID); err != nil {
		return "", "", err
	}

	var entryID int64
	err = tx.QueryRowContext(ctx, `
SELECT w.id, w.user_email, b.title
FROM waiting_list w
JOIN books b ON b.id = w.book_id
WHERE w.book_id = $1
ORDER BY w.date_added, w.id
LIMIT 1
FOR UPDATE OF w SKIP LOCKED`, bookID).Scan(&entryID, &promotedEmail, &title)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", nil
	}
	if err != nil {
		return "", "", err
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM waiting_list WHERE id=$1`, entryID); err != nil {
		return "", "", err
	}
	return promotedEmail, title, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
