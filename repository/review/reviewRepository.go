package reviewrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/muhammedb99/eBookLibraryService/model"
)

var ErrDuplicate = errors.New("user already reviewed this book")

type Repo interface {
	Insert(ctx context.Context, rev *model.Review) error
	HasReview(ctx context.Context, email string, bookID int64) (bool, error)
	ListForBook(ctx context.Context, bookID int64) ([]model.Review, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) Insert(ctx context.Context, rev *model.Review) error {
	const q = `
INSERT INTO reviews (book_id, user_email, rating, feedback)
VALUES ($1,$2,$3,$4)
RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, q, rev.BookID, rev.UserEmail, rev.Rating, rev.Feedback).
		Scan(&rev.ID, &rev.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return ErrDuplicate
	}
	return err
}

func (r *repo) HasReview(ctx context.Context, email string, bookID int64) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM reviews WHERE user_email=$1 AND book_id=$2)`
	var ok bool
	err := r.db.QueryRowContext(ctx, q, email, bookID).Scan(&ok)
	return ok, err
}

func (r *repo) ListForBook(ctx context.Context, bookID int64) ([]model.Review, error) {
	const q = `
SELECT id, book_id, user_email, rating, feedback, created_at
FROM reviews
WHERE book_id = $1
ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Review
	for rows.Next() {
		var rev model.Review
		if err := rows.Scan(&rev.ID, &rev.BookID, &rev.UserEmail, &rev.Rating, &rev.Feedback, &rev.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rev)
	}
	return out, rows.Err()
}
