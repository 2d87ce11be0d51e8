package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type Coupon struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	Code           string          `gorm:"uniqueIndex;not null" json:"code"`
	Percent        int             `json:"percent"` // 0 means fixed-amount coupon
	Amount         decimal.Decimal `gorm:"type:numeric(10,2)" json:"amount"`
	MinOrderAmount decimal.Decimal `gorm:"type:numeric(10,2)" json:"min_order_amount"`
	ExpiresAt      *time.Time      `json:"expires_at,omitempty"`
	Active         bool            `gorm:"default:true" json:"active"`
	CreatedAt      time.Time       `json:"created_at"`
}

var (
	ErrCouponInactive = errors.New("coupon is no longer active")
	ErrCouponExpired  = errors.New("coupon has expired")
	ErrCouponMinOrder = errors.New("order amount is below the coupon minimum")
)

// DiscountFor returns the discount this coupon yields for the given order
// amount. The discount never exceeds the order amount.
func (c *Coupon) DiscountFor(orderAmount decimal.Decimal) (decimal.Decimal, error) {
	if !c.Active {
		return decimal.Zero, ErrCouponInactive
	}
	if c.ExpiresAt != nil && time.Now().After(*c.ExpiresAt) {
		return decimal.Zero, ErrCouponExpired
	}
	if orderAmount.LessThan(c.MinOrderAmount) {
		return decimal.Zero, ErrCouponMinOrder
	}

	discount := c.Amount
	if c.Percent > 0 {
		discount = orderAmount.Mul(decimal.NewFromInt(int64(c.Percent))).Div(decimal.NewFromInt(100)).Round(2)
	}
	if discount.GreaterThan(orderAmount) {
		discount = orderAmount
	}
	return discount, nil
}
