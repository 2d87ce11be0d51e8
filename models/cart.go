package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart belongs to one owner: a signed-in user id or a guest session id.
type Cart struct {
	CartID    uint       `gorm:"primaryKey" json:"cart_id"`
	OwnerID   string     `gorm:"uniqueIndex" json:"owner_id"` // Enforces ONE cart per owner
	Items     []CartLine `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CartLine snapshots the menu item at the time it was added. ItemID may be a
// composite "<menu-item-id>:<addon>" so the same dish with different add-ons
// occupies separate lines.
type CartLine struct {
	ID       uint            `gorm:"primaryKey" json:"id"`
	CartID   uint            `gorm:"index:idx_cart_item,unique" json:"cart_id"`
	ItemID   string          `gorm:"index:idx_cart_item,unique;not null" json:"item_id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `gorm:"type:numeric(10,2)" json:"price"`
	Image    string          `json:"image"`
	Quantity int             `gorm:"check:quantity >= 1" json:"quantity"`
	AddedAt  time.Time       `json:"added_at"`
}

// Subtotal sums price * quantity over the cart.
func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.Items {
		total = total.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total
}
