package feedbacksvc

import (
	"context"
	"errors"
	"strings"

	"github.com/muhammedb99/eBookLibraryService/model"
)

var ErrBadInput = errors.New("bad input")

type Repo interface {
	Insert(ctx context.Context, f *model.ServiceFeedback) error
	List(ctx context.Context) ([]model.ServiceFeedback, error)
}

type Service interface {
	Submit(ctx context.Context, f *model.ServiceFeedback) error
	List(ctx context.Context) ([]model.ServiceFeedback, error)
}

type service struct{ r Repo }

func New(r Repo) Service { return &service{r: r} }

func (s *service) Submit(ctx context.Context, f *model.ServiceFeedback) error {
	f.Name = strings.TrimSpace(f.Name)
	f.Comments = strings.TrimSpace(f.Comments)
	if f.Name == "" || f.Comments == "" || f.Rating < 1 || f.Rating > 5 {
		return ErrBadInput
	}
	return s.r.Insert(ctx, f)
}

func (s *service) List(ctx context.Context) ([]model.ServiceFeedback, error) {
	return s.r.List(ctx)
}
