package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCouponDiscountFor(t *testing.T) {
	amount := decimal.RequireFromString("40.00")

	fixed := Coupon{Code: "WELCOME5", Amount: decimal.RequireFromString("5.00"), Active: true}
	d, err := fixed.DiscountFor(amount)
	require.NoError(t, err)
	assert.Equal(t, "5.00", d.StringFixed(2))

	percent := Coupon{Code: "TENOFF", Percent: 10, Active: true}
	d, err = percent.DiscountFor(amount)
	require.NoError(t, err)
	assert.Equal(t, "4.00", d.StringFixed(2))
}

func TestCouponDiscountNeverExceedsOrder(t *testing.T) {
	big := Coupon{Code: "BIG", Amount: decimal.RequireFromString("50.00"), Active: true}
	d, err := big.DiscountFor(decimal.RequireFromString("12.00"))
	require.NoError(t, err)
	assert.Equal(t, "12.00", d.StringFixed(2))
}

func TestCouponRejections(t *testing.T) {
	amount := decimal.RequireFromString("20.00")

	inactive := Coupon{Code: "OLD", Amount: decimal.NewFromInt(5)}
	_, err := inactive.DiscountFor(amount)
	assert.ErrorIs(t, err, ErrCouponInactive)

	past := time.Now().Add(-time.Hour)
	expired := Coupon{Code: "GONE", Amount: decimal.NewFromInt(5), Active: true, ExpiresAt: &past}
	_, err = expired.DiscountFor(amount)
	assert.ErrorIs(t, err, ErrCouponExpired)

	minOrder := Coupon{Code: "BULK", Amount: decimal.NewFromInt(5), Active: true, MinOrderAmount: decimal.NewFromInt(50)}
	_, err = minOrder.DiscountFor(amount)
	assert.ErrorIs(t, err, ErrCouponMinOrder)
}
