package cart

type AddItemReq struct {
	BookID   int64 `json:"book_id" validate:"required,gt=0"`
	IsBorrow bool  `json:"is_borrow"`
}

type UpdateItemReq struct {
	ItemID   int64 `json:"item_id" validate:"required,gt=0"`
	IsBorrow bool  `json:"is_borrow"`
}

type RemoveItemReq struct {
	ItemID int64 `json:"item_id" validate:"required,gt=0"`
}
