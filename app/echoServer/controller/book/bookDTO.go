package book

import "time"

type BookReq struct {
	Title            string     `json:"title" validate:"required"`
	Author           string     `json:"author" validate:"required"`
	Publisher        string     `json:"publisher"`
	Genre            string     `json:"genre"`
	YearOfPublishing int        `json:"year_of_publishing" validate:"omitempty,gte=0"`
	AgeLimitation    *int       `json:"age_limitation" validate:"omitempty,gte=0"`
	ImageURL         string     `json:"image_url"`
	PdfLink          *string    `json:"pdf_link"`
	EpubLink         *string    `json:"epub_link"`
	MobiLink         *string    `json:"mobi_link"`
	F2bLink          *string    `json:"f2b_link"`
	BorrowPrice      *float64   `json:"borrow_price" validate:"omitempty,gte=0"`
	BuyingPrice      float64    `json:"buying_price" validate:"gte=0"`
	DiscountPrice    *float64   `json:"discount_price" validate:"omitempty,gte=0"`
	DiscountUntil    *time.Time `json:"discount_until"`
	TotalCopies      int        `json:"total_copies" validate:"gte=0"`
}

type AdjustStockReq struct {
	Delta int `json:"delta" validate:"required"`
}
