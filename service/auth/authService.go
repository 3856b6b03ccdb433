package authsvc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/muhammedb99/eBookLibraryService/model"
	"github.com/muhammedb99/eBookLibraryService/repository/mailer"
	"github.com/muhammedb99/eBookLibraryService/util/hash"
	jwtutil "github.com/muhammedb99/eBookLibraryService/util/jwt"
)

var (
	ErrEmailTaken   = errors.New("email already registered")
	ErrBadInput     = errors.New("bad input")
	ErrInvalidCreds = errors.New("invalid credentials")
)

type Repo interface {
	Create(ctx context.Context, u *model.User) error
	ByEmail(ctx context.Context, email string) (*model.User, error)
}

type Mailer interface {
	Send(ctx context.Context, m mailer.Mail) error
}

type Service interface {
	Register(ctx context.Context, req model.RegisterReq) (*model.User, string, error)
	Login(ctx context.Context, req model.LoginReq) (*model.User, string, error)
}

type service struct {
	ur     Repo
	mail   Mailer
	secret string
}

func New(ur Repo, mail Mailer, secret string) Service {
	return &service{ur: ur, mail: mail, secret: secret}
}

func (s *service) Register(ctx context.Context, req model.RegisterReq) (*model.User, string, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || len(req.Password) < 6 {
		return nil, "", ErrBadInput
	}

	hashed, err := hash.HashPassword(req.Password)
	if err != nil {
		return nil, "", err
	}

	u := &model.User{
		FullName:     strings.TrimSpace(req.FullName),
		Email:        email,
		PasswordHash: hashed,
		Role:         "user",
	}
	if err := s.ur.Create(ctx, u); err != nil {
		if isUniqueViolation(err) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", err
	}

	token, err := jwtutil.Issue(s.secret, u.Email, u.Role, 24)
	if err != nil {
		return nil, "", err
	}

	// Welcome mail is best effort; registration already succeeded.
	if err := s.mail.Send(ctx, mailer.Mail{
		To:      u.Email,
		Subject: "Welcome to the eBook Library",
		HTML:    fmt.Sprintf("<p>Hi %s, your account is ready. Happy reading!</p>", u.FullName),
	}); err != nil {
		slog.Warn("welcome mail failed", "to", u.Email, "err", err)
	}

	return u, token, nil
}

func (s *service) Login(ctx context.Context, req model.LoginReq) (*model.User, string, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, "", ErrBadInput
	}

	u, err := s.ur.ByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if u == nil || !hash.Check(u.PasswordHash, req.Password) {
		return nil, "", ErrInvalidCreds
	}

	token, err := jwtutil.Issue(s.secret, u.Email, u.Role, 24)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
