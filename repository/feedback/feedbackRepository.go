package feedbackrepo

import (
	"context"
	"database/sql"

	"github.com/muhammedb99/eBookLibraryService/model"
)

type Repo interface {
	Insert(ctx context.Context, f *model.ServiceFeedback) error
	List(ctx context.Context) ([]model.ServiceFeedback, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) Insert(ctx context.Context, f *model.ServiceFeedback) error {
	const q = `
INSERT INTO service_feedback (name, email, comments, rating)
VALUES ($1,$2,$3,$4)
RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, q, f.Name, f.Email, f.Comments, f.Rating).
		Scan(&f.ID, &f.CreatedAt)
}

func (r *repo) List(ctx context.Context) ([]model.ServiceFeedback, error) {
	const q = `
SELECT id, name, email, comments, rating, created_at
FROM service_feedback
ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ServiceFeedback
	for rows.Next() {
		var f model.ServiceFeedback
		if err := rows.Scan(&f.ID, &f.Name, &f.Email, &f.Comments, &f.Rating, &f.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
