package workflow

import (
	"fmt"

	"hotel-marketplace-backend/internal/model"
)

// Action is one of the moderation operations that can change a listing's
// state. Submit is absent on purpose: it creates the row rather than
// transitioning an existing one.
type Action string

const (
	ActionEdit     Action = "edit"
	ActionWithdraw Action = "withdraw"
	ActionApprove  Action = "approve"
	ActionReject   Action = "reject"
	ActionOffline  Action = "offline"
	ActionDelete   Action = "delete"
)

// permission says who may perform an action from a given state.
type permission struct {
	owner bool // the owning merchant
	admin bool // any administrator
}

// transitions is the complete legal state machine. An action missing from a
// state's map is an invalid transition no matter who asks; an action present
// but not matching the actor is a permission failure.
var transitions = map[model.ListingStatus]map[Action]permission{
	model.StatusPending: {
		ActionEdit:     {owner: true},
		ActionWithdraw: {owner: true},
		ActionApprove:  {admin: true},
		ActionReject:   {admin: true},
		ActionDelete:   {admin: true},
	},
	model.StatusPublished: {
		ActionEdit:    {owner: true},
		ActionOffline: {admin: true},
		ActionDelete:  {admin: true},
	},
	model.StatusRejected: {
		ActionEdit:   {owner: true},
		ActionDelete: {owner: true},
	},
	model.StatusOffline: {
		ActionEdit:   {owner: true},
		ActionDelete: {owner: true, admin: true},
	},
}

// Authorize is the single gate in front of every state change: it checks the
// listing's current status against the transition table first, then the
// actor's role and ownership.
func Authorize(actor Actor, listing *model.Listing, action Action) error {
	perm, legal := transitions[listing.Status][action]
	if !legal {
		return fmt.Errorf("%w: cannot %s a %s listing", ErrInvalidTransition, action, listing.Status)
	}
	if perm.admin && actor.Role == RoleAdmin {
		return nil
	}
	if perm.owner && actor.Owns(listing) {
		return nil
	}
	return fmt.Errorf("%w: %s is not allowed to %s this listing", ErrPermissionDenied, actor.Role, action)
}
