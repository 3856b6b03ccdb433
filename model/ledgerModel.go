// model/ledger.go
package model

import "time"

// OwnedBook is one acquisition event: a purchase or an active borrow. A user
// holds at most one active row per book.
type OwnedBook struct {
	ID            int64      `json:"id"`
	UserEmail     string     `json:"user_email"`
	BookID        int64      `json:"book_id"`
	Title         string     `json:"title,omitempty"`
	Author        string     `json:"author,omitempty"`
	IsBorrowed    bool       `json:"is_borrowed"`
	Price         float64    `json:"price"`
	PurchaseDate  time.Time  `json:"purchase_date"`
	BorrowDueDate *time.Time `json:"borrow_due_date,omitempty"`
}

// WaitingListEntry queues a user for a book with zero available copies.
// FIFO per book by DateAdded.
type WaitingListEntry struct {
	ID        int64     `json:"id"`
	BookID    int64     `json:"book_id"`
	UserEmail string    `json:"user_email"`
	DateAdded time.Time `json:"date_added"`
}
