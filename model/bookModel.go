// model/book.go
package model

import "time"

type Book struct {
	ID               int64      `json:"id"`
	Title            string     `json:"title"`
	Author           string     `json:"author"`
	Publisher        string     `json:"publisher"`
	Genre            string     `json:"genre"`
	YearOfPublishing int        `json:"year_of_publishing"`
	AgeLimitation    *int       `json:"age_limitation,omitempty"`
	ImageURL         string     `json:"image_url,omitempty"`
	PdfLink          *string    `json:"pdf_link,omitempty"`
	EpubLink         *string    `json:"epub_link,omitempty"`
	MobiLink         *string    `json:"mobi_link,omitempty"`
	F2bLink          *string    `json:"f2b_link,omitempty"`
	BorrowPrice      *float64   `json:"borrow_price,omitempty"`
	BuyingPrice      float64    `json:"buying_price"`
	DiscountPrice    *float64   `json:"discount_price,omitempty"`
	DiscountUntil    *time.Time `json:"discount_until,omitempty"`
	TotalCopies      int        `json:"total_copies"`
	BorrowedCopies   int        `json:"borrowed_copies"`
	BorrowCount      int64      `json:"borrow_count"`
	PurchaseCount    int64      `json:"purchase_count"`

	// Derived: borrow_count + purchase_count, computed in queries.
	Popularity int64 `json:"popularity"`
}

// EffectiveBuyPrice applies the time-boxed discount when it is active.
func (b *Book) EffectiveBuyPrice(now time.Time) float64 {
	if b.DiscountPrice != nil && *b.DiscountPrice > 0 &&
		b.DiscountUntil != nil && !b.DiscountUntil.Before(now) {
		return *b.DiscountPrice
	}
	return b.BuyingPrice
}

func (b *Book) EffectiveBorrowPrice() float64 {
	if b.BorrowPrice != nil {
		return *b.BorrowPrice
	}
	return 0
}

// AvailableCopies gates new borrows. total_copies and borrowed_copies are
// the only counters consulted for availability.
func (b *Book) AvailableCopies() int {
	n := b.TotalCopies - b.BorrowedCopies
	if n < 0 {
		return 0
	}
	return n
}
