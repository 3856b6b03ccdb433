package ledgersvc

import (
	"context"
	"strings"
	"testing"
	"time"

	ledgerrepo "github.com/muhammedb99/eBookLibraryService/repository/ledger"
)

type sweepRepoMock struct {
	expire  func(now time.Time) ([]ledgerrepo.Expired, error)
	dueSoon func(from, to time.Time) ([]ledgerrepo.Reminder, error)
}

func (m *sweepRepoMock) ExpireOverdue(_ context.Context, now time.Time) ([]ledgerrepo.Expired, error) {
	if m.expire == nil {
		return nil, nil
	}
	return m.expire(now)
}

func (m *sweepRepoMock) DueSoon(_ context.Context, from, to time.Time) ([]ledgerrepo.Reminder, error) {
	if m.dueSoon == nil {
		return nil, nil
	}
	return m.dueSoon(from, to)
}

func TestSweepNotifiesPromotedUsers(t *testing.T) {
	repo := &sweepRepoMock{
		expire: func(time.Time) ([]ledgerrepo.Expired, error) {
			return []ledgerrepo.Expired{
				{BookID: 1, Title: "Dune", UserEmail: "late@example.com", PromotedEmail: "next@example.com"},
				{BookID: 2, Title: "Emma", UserEmail: "other@example.com"}, // nobody waiting
			}, nil
		},
	}
	mail := &mailMock{}
	s := NewSweeper(repo, mail, 5*24*time.Hour)

	n, err := s.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if n != 2 {
		t.Fatalf("want 2 expired, got %d", n)
	}
	if len(mail.sent) != 1 {
		t.Fatalf("want one promotion mail, got %d", len(mail.sent))
	}
	if mail.sent[0].To != "next@example.com" || !strings.Contains(mail.sent[0].HTML, "Dune") {
		t.Fatalf("unexpected promotion mail %+v", mail.sent[0])
	}
}

func TestSweepSendsDueSoonReminders(t *testing.T) {
	due := time.Now().Add(3 * 24 * time.Hour)
	var gotFrom, gotTo time.Time
	repo := &sweepRepoMock{
		dueSoon: func(from, to time.Time) ([]ledgerrepo.Reminder, error) {
			gotFrom, gotTo = from, to
			return []ledgerrepo.Reminder{
				{BookID: 1, Title: "Dune", UserEmail: "reader@example.com", DueDate: due},
			}, nil
		},
	}
	mail := &mailMock{}
	s := NewSweeper(repo, mail, 5*24*time.Hour)

	if _, err := s.RunOnce(context.Background()); err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if got := gotTo.Sub(gotFrom); got != 5*24*time.Hour {
		t.Fatalf("reminder window should span 5 days, got %v", got)
	}
	if len(mail.sent) != 1 {
		t.Fatalf("want one reminder, got %d", len(mail.sent))
	}
	if mail.sent[0].To != "reader@example.com" || !strings.Contains(mail.sent[0].HTML, due.Format("2006-01-02")) {
		t.Fatalf("unexpected reminder %+v", mail.sent[0])
	}
}

func TestSweepQuietWhenNothingDue(t *testing.T) {
	mail := &mailMock{}
	s := NewSweeper(&sweepRepoMock{}, mail, 5*24*time.Hour)

	n, err := s.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if n != 0 || len(mail.sent) != 0 {
		t.Fatalf("idle sweep should do nothing, got n=%d mails=%d", n, len(mail.sent))
	}
}
