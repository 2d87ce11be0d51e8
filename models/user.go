package models

import "time"

type User struct {
	ID           string  `gorm:"primaryKey" json:"id"`
	Email        string  `gorm:"unique;not null" json:"email"`
	PasswordHash string  `gorm:"not null" json:"-"`
	Name         string  `json:"name"`
	Phone        string  `json:"phone"`
	Address      Address `gorm:"embedded" json:"address"` // Embeds delivery address fields directly
	Cart         Cart    `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"cart"`
	Orders       []Order `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"orders"`
	CreatedAt    time.Time `json:"created_at"`
}

// Address model embedded in User
type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type Role string

const (
	RoleAdmin   Role = "admin"   // back-office, implies every other role
	RoleKitchen Role = "kitchen" // kitchen display board
)

// Implies reports whether holding r satisfies a requirement for other.
// Admin is the highest privilege and implies all roles.
func (r Role) Implies(other Role) bool {
	return r == other || r == RoleAdmin
}

// ParseRole validates a role string from a request.
func ParseRole(role string) (Role, bool) {
	switch Role(role) {
	case RoleAdmin, RoleKitchen:
		return Role(role), true
	default:
		return "", false
	}
}

// UserRole is one capability grant. The composite unique index keeps a grant
// from being recorded twice.
type UserRole struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	UserID string `gorm:"uniqueIndex:idx_user_role;not null" json:"user_id"`
	Role   Role   `gorm:"uniqueIndex:idx_user_role;type:VARCHAR(20);not null" json:"role"`
}

// GuestSession backs anonymous carts and checkout.
type GuestSession struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	ExpiresAt time.Time `json:"expires_at"`
}
