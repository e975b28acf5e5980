package domain

import "time"

type PaymentMethod string

const (
	PaymentCreditCard PaymentMethod = "CREDIT_CARD"
	PaymentDebitCard  PaymentMethod = "DEBIT_CARD"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentCreditCard || m == PaymentDebitCard
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPaid    PaymentStatus = "PAID"
)

type Bill struct {
	ID            int64         `json:"id"`
	ReservationID int64         `json:"reservation_id" gorm:"uniqueIndex;not null"`
	OrderID       int64         `json:"order_id" gorm:"not null;index"`
	Amount        float64       `json:"amount" gorm:"type:decimal(10,2);not null"`
	Tax           float64       `json:"tax" gorm:"type:decimal(12,4);not null"`
	Tip           float64       `json:"tip" gorm:"type:decimal(10,2);not null;default:0"`
	SplitInto     int           `json:"split_into" gorm:"not null;default:1"`
	NetAmount     float64       `json:"net_amount" gorm:"type:decimal(10,2);not null"`
	AmountPaid    float64       `json:"amount_paid" gorm:"type:decimal(10,2);not null;default:0"`
	PaymentMethod PaymentMethod `json:"payment_method" gorm:"type:varchar(16);not null"`
	PaymentStatus PaymentStatus `json:"payment_status" gorm:"type:varchar(16);not null;index"`
	PaidAt        *time.Time    `json:"paid_at,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// Outstanding is what is still owed on the bill.
func (b *Bill) Outstanding() float64 {
	left := Round2(b.NetAmount - b.AmountPaid)
	if left < 0 {
		return 0
	}
	return left
}

// SuggestedInstallment is the per-payer amount when the bill is split.
func (b *Bill) SuggestedInstallment() float64 {
	if b.SplitInto <= 1 {
		return b.NetAmount
	}
	return Round2(b.NetAmount / float64(b.SplitInto))
}
