package workflow

import "hotel-marketplace-backend/internal/model"

// Role identifies which side of the marketplace an actor acts for.
type Role string

const (
	RoleMerchant Role = "merchant"
	RoleAdmin    Role = "admin"
)

// Actor is the authenticated identity behind a request. Merchants own a set
// of listings; admins moderate all of them.
type Actor struct {
	ID   int64
	Role Role
	Name string
}

// Owns reports whether the actor is the merchant the listing belongs to.
func (a Actor) Owns(listing *model.Listing) bool {
	return a.Role == RoleMerchant && a.ID == listing.MerchantID
}
