package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	PaymentPending   = "Pending"
	PaymentPaid      = "Paid"
	PaymentCancelled = "Cancelled"
)

var PaymentStatuses = []string{PaymentPending, PaymentPaid, PaymentCancelled}

// Payment settles a consultation. Amount must equal the sum of its active
// details; it is null until supplied or derived from them.
type Payment struct {
	ID        uint                `gorm:"primaryKey;autoIncrement;column:pay_id" json:"pay_id" form:"-"`
	PaidAt    time.Time           `gorm:"column:pay_datetime;not null" json:"pay_datetime" form:"pay_datetime"`
	Amount    decimal.NullDecimal `gorm:"column:pay_amount;type:decimal(10,2);not null" json:"pay_amount" form:"-"`
	Status    string              `gorm:"column:pay_status;size:10;not null;default:Pending;check:pay_status IN ('Pending', 'Paid', 'Cancelled')" json:"pay_status" form:"pay_status"`
	ConsultID string              `gorm:"column:consult_id;type:uuid;not null;uniqueIndex" json:"consult_id" form:"consult_id"`
	Details   []PaymentDetail     `gorm:"foreignKey:PaymentID;references:ID" json:"details" form:"-"`
	Audit
}

func (Payment) TableName() string {
	return "payments"
}

func (p Payment) PrimaryKey() any {
	return p.ID
}

func (p *Payment) EnsureID() {}

func (Payment) StatusColumn() string {
	return "pay_status"
}

func (Payment) StatusValues() []string {
	return PaymentStatuses
}

// DetailTotal sums the amounts of active details.
func (p Payment) DetailTotal() decimal.Decimal {
	total := decimal.Zero
	for _, d := range p.Details {
		if d.Status == "" || d.Status == StatusActive {
			total = total.Add(d.Amount)
		}
	}
	return total
}

// PaymentDetail is a line item of a payment.
type PaymentDetail struct {
	ID          uint            `gorm:"primaryKey;autoIncrement;column:detail_id" json:"detail_id" form:"-"`
	PaymentID   uint            `gorm:"column:pay_id;not null;index" json:"pay_id" form:"-"`
	Description *string         `gorm:"column:detail_desc;size:255" json:"detail_desc" form:"-"`
	Amount      decimal.Decimal `gorm:"column:pay_amount;type:decimal(10,2);not null" json:"pay_amount" form:"-"`
	Status      string          `gorm:"column:detail_status;size:10;not null;default:Active;check:detail_status IN ('Active', 'Inactive')" json:"detail_status" form:"-"`
	Audit
}

func (PaymentDetail) TableName() string {
	return "payments_det"
}

func (d PaymentDetail) PrimaryKey() any {
	return d.ID
}

func (d *PaymentDetail) EnsureID() {}
