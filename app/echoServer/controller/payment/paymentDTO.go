package payment

type ProcessReq struct {
	TotalAmount float64 `json:"total_amount" validate:"required"`
	BookID      *int64  `json:"book_id" validate:"omitempty,gt=0"`
}

type CompleteReq struct {
	Method      string  `json:"method" validate:"required"`
	TotalAmount float64 `json:"total_amount" validate:"required"`
	BookID      *int64  `json:"book_id" validate:"omitempty,gt=0"`
}

type CreditCardReq struct {
	CardNumber     string  `json:"card_number" validate:"required"`
	ExpirationDate string  `json:"expiration_date" validate:"required"`
	CVV            string  `json:"cvv" validate:"required"`
	CardHolderName string  `json:"card_holder_name" validate:"required"`
	TotalAmount    float64 `json:"total_amount" validate:"required"`
	BookID         *int64  `json:"book_id" validate:"omitempty,gt=0"`
}
