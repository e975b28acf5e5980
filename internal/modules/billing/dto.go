package billing

import "dinein/internal/domain"

type ItemRequest struct {
	MenuItemID int64 `json:"menu_item_id" binding:"required" validate:"required,gt=0"`
	Quantity   int   `json:"quantity" validate:"gte=0"`
}

type GenerateBillRequest struct {
	Tip       float64 `json:"tip" validate:"gte=0"`
	SplitInto int     `json:"split_into" validate:"gte=0"`
}

type PaymentRequest struct {
	Amount float64              `json:"amount" binding:"required" validate:"required,gt=0"`
	Method domain.PaymentMethod `json:"method" binding:"required" validate:"required,oneof=CREDIT_CARD DEBIT_CARD"`
}

type OrderView struct {
	*domain.Order
	Subtotal float64 `json:"subtotal"`
}

type BillView struct {
	*domain.Bill
	SuggestedInstallment float64 `json:"suggested_installment"`
	Outstanding          float64 `json:"outstanding"`
}

func newBillView(b *domain.Bill) *BillView {
	return &BillView{
		Bill:                 b,
		SuggestedInstallment: b.SuggestedInstallment(),
		Outstanding:          b.Outstanding(),
	}
}
