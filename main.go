package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/muhammedb99/eBookLibraryService/app/echoServer"
	authctrl "github.com/muhammedb99/eBookLibraryService/app/echoServer/controller/auth"
	bookctrl "github.com/muhammedb99/eBookLibraryService/app/echoServer/controller/book"
	cartctrl "github.com/muhammedb99/eBookLibraryService/app/echoServer/controller/cart"
	feedbackctrl "github.com/muhammedb99/eBookLibraryService/app/echoServer/controller/feedback"
	libraryctrl "github.com/muhammedb99/eBookLibraryService/app/echoServer/controller/library"
	paymentctrl "github.com/muhammedb99/eBookLibraryService/app/echoServer/controller/payment"
	"github.com/muhammedb99/eBookLibraryService/app/echoServer/validation"
	"github.com/muhammedb99/eBookLibraryService/config"
	bookrepo "github.com/muhammedb99/eBookLibraryService/repository/book"
	cartrepo "github.com/muhammedb99/eBookLibraryService/repository/cart"
	feedbackrepo "github.com/muhammedb99/eBookLibraryService/repository/feedback"
	ledgerrepo "github.com/muhammedb99/eBookLibraryService/repository/ledger"
	"github.com/muhammedb99/eBookLibraryService/repository/mailer"
	reviewrepo "github.com/muhammedb99/eBookLibraryService/repository/review"
	userrepo "github.com/muhammedb99/eBookLibraryService/repository/user"
	authsvc "github.com/muhammedb99/eBookLibraryService/service/auth"
	cartsvc "github.com/muhammedb99/eBookLibraryService/service/cart"
	catalogsvc "github.com/muhammedb99/eBookLibraryService/service/catalog"
	feedbacksvc "github.com/muhammedb99/eBookLibraryService/service/feedback"
	ledgersvc "github.com/muhammedb99/eBookLibraryService/service/ledger"
	paymentsvc "github.com/muhammedb99/eBookLibraryService/service/payment"
	reviewsvc "github.com/muhammedb99/eBookLibraryService/service/review"
	"github.com/muhammedb99/eBookLibraryService/util/database"
	"github.com/muhammedb99/eBookLibraryService/util/redisx"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	mail := mailer.NewHTTP(cfg.MailAPIURL, cfg.MailAPIKey, cfg.MailSender)

	// repositories
	users := userrepo.New(db)
	books := bookrepo.New(db)
	carts := cartrepo.New(db)
	guests := cartrepo.NewGuestStore(rdb, cfg.GuestCartTTL)
	ledger := ledgerrepo.New(db)
	reviews := reviewrepo.New(db)
	feedbacks := feedbackrepo.New(db)

	// services
	policy := ledgersvc.Policy{BorrowLimit: cfg.BorrowLimit, BorrowDays: cfg.BorrowDays}
	auth := authsvc.New(users, mail, cfg.JWTSecret)
	catalog := catalogsvc.New(books)
	cart := cartsvc.New(books, ledger, carts, guests)
	lending := ledgersvc.New(ledger, books, mail, policy)
	review := reviewsvc.New(reviews, books)
	payment := paymentsvc.New(lending, carts, mail)
	feedback := feedbacksvc.New(feedbacks)
	sweeper := ledgersvc.NewSweeper(ledger, mail, time.Duration(cfg.ReminderDays)*24*time.Hour)

	go runSweep(ctx, sweeper, cfg.SweepInterval)

	v := validator.New()
	log := slog.Default()

	e := echo.New()
	e.HideBanner = true
	e.Validator = validation.New()
	echoServer.RegisterMiddlewares(e)

	e.GET("/health", func(c echo.Context) error {
		if err := db.PingContext(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "down"})
		}
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Auth:     &authctrl.Controller{Svc: auth, Cart: cart, V: v, Log: log},
		Book:     &bookctrl.Controller{Svc: catalog, V: v, Log: log},
		Cart:     &cartctrl.Controller{Svc: cart, V: v, Log: log},
		Library:  &libraryctrl.Controller{Ledger: lending, Reviews: review, V: v, Log: log},
		Payment:  &paymentctrl.Controller{Svc: payment, V: v, Log: log},
		Feedback: &feedbackctrl.Controller{Svc: feedback, V: v, Log: log},

		JWTSecret: cfg.JWTSecret,
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			slog.Error("server stopped", "err", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown failed", "err", err)
	}
}

// runSweep reclaims overdue borrows on a fixed interval, with one pass at
// startup so a restarted instance does not wait a full period.
func runSweep(ctx context.Context, s ledgersvc.Sweeper, every time.Duration) {
	run := func() {
		if _, err := s.RunOnce(ctx); err != nil {
			slog.Error("sweep failed", "err", err)
		}
	}
	run()

	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			run()
		}
	}
}
