package reviewsvc

import (
	"context"
	"errors"
	"strings"

	reviewrepo "github.com/muhammedb99/eBookLibraryService/repository/review"

	"github.com/muhammedb99/eBookLibraryService/model"
)

type ErrCode string

const (
	ErrBookNotFound ErrCode = "BOOK_NOT_FOUND"
	ErrOutOfRange   ErrCode = "RATING_OUT_OF_RANGE"
	ErrDuplicate    ErrCode = "DUPLICATE_REVIEW"
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

type Repo interface {
	Insert(ctx context.Context, rev *model.Review) error
	HasReview(ctx context.Context, email string, bookID int64) (bool, error)
	ListForBook(ctx context.Context, bookID int64) ([]model.Review, error)
}

type BookRepo interface {
	Detail(ctx context.Context, id int64) (*model.Book, error)
}

type BookReviews struct {
	Reviews []model.Review `json:"reviews"`
	Average float64        `json:"average"`
}

type Service interface {
	Add(ctx context.Context, email string, bookID int64, rating int, feedback string) (*model.Review, error)
	ListForBook(ctx context.Context, bookID int64) (*BookReviews, error)
}

type service struct {
	r     Repo
	books BookRepo
}

func New(r Repo, books BookRepo) Service { return &service{r: r, books: books} }

func (s *service) Add(ctx context.Context, email string, bookID int64, rating int, feedback string) (*model.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, makeErr(ErrOutOfRange)
	}
	book, err := s.books.Detail(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, makeErr(ErrBookNotFound)
	}

	// Pre-check plus the unique index: either way one review per user per book.
	dup, err := s.r.HasReview(ctx, email, bookID)
	if err != nil {
		return nil, err
	}
	if dup {
		return nil, makeErr(ErrDuplicate)
	}

	rev := &model.Review{
		BookID:    bookID,
		UserEmail: email,
		Rating:    rating,
		Feedback:  strings.TrimSpace(feedback),
	}
	if err := s.r.Insert(ctx, rev); err != nil {
		if errors.Is(err, reviewrepo.ErrDuplicate) {
			return nil, makeErr(ErrDuplicate)
		}
		return nil, err
	}
	return rev, nil
}

func (s *service) ListForBook(ctx context.Context, bookID int64) (*BookReviews, error) {
	book, err := s.books.Detail(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, makeErr(ErrBookNotFound)
	}
	revs, err := s.r.ListForBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	out := &BookReviews{Reviews: revs}
	if len(revs) > 0 {
		var sum int
		for _, rev := range revs {
			sum += rev.Rating
		}
		out.Average = float64(sum) / float64(len(revs))
	}
	return out, nil
}
