package library

type BookActionReq struct {
	BookID int64 `json:"book_id" validate:"required,gt=0"`
}

type ReviewReq struct {
	BookID   int64  `json:"book_id" validate:"required,gt=0"`
	Rating   int    `json:"rating" validate:"required"`
	Feedback string `json:"feedback"`
}
