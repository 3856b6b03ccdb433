package ledgersvc

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	ledgerrepo "github.com/muhammedb99/eBookLibraryService/repository/ledger"
	"github.com/muhammedb99/eBookLibraryService/repository/mailer"
)

type SweepRepo interface {
	ExpireOverdue(ctx context.Context, now time.Time) ([]ledgerrepo.Expired, error)
	DueSoon(ctx context.Context, from, to time.Time) ([]ledgerrepo.Reminder, error)
}

// Sweeper reclaims overdue borrows and promotes waiting-list entrants; a
// second read-only pass mails due-soon reminders.
type Sweeper interface {
	RunOnce(ctx context.Context) (expired int, err error)
}

type sweeper struct {
	r        SweepRepo
	mail     Mailer
	remindIn time.Duration
}

func NewSweeper(r SweepRepo, mail Mailer, remindIn time.Duration) Sweeper {
	return &sweeper{r: r, mail: mail, remindIn: remindIn}
}

func (s *sweeper) RunOnce(ctx context.Context) (int, error) {
	now := time.Now().UTC()

	expired, err := s.r.ExpireOverdue(ctx, now)
	if err != nil {
		return len(expired), err
	}
	for _, ex := range expired {
		if ex.PromotedEmail == "" {
			continue
		}
		mailErr := s.mail.Send(ctx, mailer.Mail{
			To:      ex.PromotedEmail,
			Subject: "A book on your waiting list is available",
			HTML:    fmt.Sprintf("<p>Good news! <b>%s</b> is now available for borrowing.</p>", ex.Title),
		})
		if mailErr != nil {
			slog.Warn("waiting-list notification failed", "to", ex.PromotedEmail, "err", mailErr)
		}
	}
	if len(expired) > 0 {
		slog.Info("expired borrowings reclaimed", "count", len(expired))
	}

	reminders, err := s.r.DueSoon(ctx, now, now.Add(s.remindIn))
	if err != nil {
		return len(expired), err
	}
	for _, rem := range reminders {
		mailErr := s.mail.Send(ctx, mailer.Mail{
			To:      rem.UserEmail,
			Subject: "Your borrowed book is due soon",
			HTML: fmt.Sprintf("<p>Reminder: <b>%s</b> is due on %s.</p>",
				rem.Title, rem.DueDate.Format("2006-01-02")),
		})
		if mailErr != nil {
			slog.Warn("due-soon reminder failed", "to", rem.UserEmail, "err", mailErr)
		}
	}

	return len(expired), nil
}
