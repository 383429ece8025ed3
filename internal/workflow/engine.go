package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"hotel-marketplace-backend/internal/model"
	"hotel-marketplace-backend/internal/store"
)

// Notifier receives moderation decisions for delivery to the listing's owner.
// Delivery is best-effort and must never block or fail a transition.
type Notifier interface {
	NotifyDecision(listingID int64, status model.ListingStatus, reason string)
}

// Engine enforces the listing state machine. Every mutation authorizes the
// actor, validates the transition and applies it through a compare-and-set
// write, so a concurrent operation on the same listing can never observe or
// produce a half-applied state.
type Engine struct {
	store    store.Store
	notifier Notifier
}

// NewEngine creates a workflow engine. notifier may be nil.
func NewEngine(s store.Store, notifier Notifier) *Engine {
	return &Engine{store: s, notifier: notifier}
}

// Submit creates a new listing in Pending for the submitting merchant.
func (e *Engine) Submit(ctx context.Context, actor Actor, in *ListingInput) (*model.Listing, error) {
	if actor.Role != RoleMerchant {
		return nil, fmt.Errorf("%w: only merchants submit listings", ErrPermissionDenied)
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	// Keep the merchant's display name fresh so the moderation queue can
	// always show it next to the submission.
	if err := e.store.UpsertMerchant(ctx, &model.Merchant{ID: actor.ID, DisplayName: actor.Name}); err != nil {
		return nil, err
	}

	listing := in.content()
	listing.MerchantID = actor.ID
	listing.Status = model.StatusPending
	listing.Cancellation = nil
	listing.RoomTypes = in.roomTypes()

	if err := e.store.CreateListing(ctx, listing); err != nil {
		return nil, err
	}
	return listing, nil
}

// Get returns one listing to its owner or to an admin.
func (e *Engine) Get(ctx context.Context, actor Actor, id int64) (*model.Listing, error) {
	listing, err := e.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role != RoleAdmin && !actor.Owns(listing) {
		return nil, fmt.Errorf("%w: listing belongs to another merchant", ErrPermissionDenied)
	}
	return listing, nil
}

// Edit replaces the listing's content and re-enters the moderation queue.
// Every merchant edit lands in Pending regardless of the originating state,
// so no content change ever reaches Published unreviewed.
func (e *Engine) Edit(ctx context.Context, actor Actor, id int64, in *ListingInput) (*model.Listing, error) {
	listing, err := e.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := Authorize(actor, listing, ActionEdit); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	won, err := e.store.ReplaceContent(ctx, listing, in.content(), in.roomTypes())
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, e.lostRace(ctx, id)
	}
	return e.load(ctx, id)
}

// Approve publishes a pending listing.
func (e *Engine) Approve(ctx context.Context, actor Actor, id int64) (*model.Listing, error) {
	listing, err := e.transition(ctx, actor, id, ActionApprove, model.StatusPublished, nil)
	if err != nil {
		return nil, err
	}
	e.notify(listing, "")
	return listing, nil
}

// Reject turns down a pending listing, recording the reason.
func (e *Engine) Reject(ctx context.Context, actor Actor, id int64, reason string) (*model.Listing, error) {
	normalized := normalizeReason(reason)
	listing, err := e.transition(ctx, actor, id, ActionReject, model.StatusRejected, &normalized)
	if err != nil {
		return nil, err
	}
	e.notify(listing, normalized)
	return listing, nil
}

// Offline withdraws a published listing from the public surface, recording
// the reason.
func (e *Engine) Offline(ctx context.Context, actor Actor, id int64, reason string) (*model.Listing, error) {
	normalized := normalizeReason(reason)
	listing, err := e.transition(ctx, actor, id, ActionOffline, model.StatusOffline, &normalized)
	if err != nil {
		return nil, err
	}
	e.notify(listing, normalized)
	return listing, nil
}

// Withdraw lets the owning merchant pull a pending submission back out of the
// moderation queue. The record is deleted; withdraw exists so a merchant can
// cancel before review without the destructive delete semantics.
func (e *Engine) Withdraw(ctx context.Context, actor Actor, id int64) error {
	return e.remove(ctx, actor, id, ActionWithdraw)
}

// Delete irreversibly removes a listing and its room types.
func (e *Engine) Delete(ctx context.Context, actor Actor, id int64) error {
	return e.remove(ctx, actor, id, ActionDelete)
}

// ListMine returns all listings owned by the requesting merchant.
func (e *Engine) ListMine(ctx context.Context, actor Actor) ([]model.Listing, error) {
	if actor.Role != RoleMerchant {
		return nil, fmt.Errorf("%w: merchant listing view is merchant-only", ErrPermissionDenied)
	}
	return e.store.ListByMerchant(ctx, actor.ID)
}

// ListPublished returns the admin publication queue (published + offline).
func (e *Engine) ListPublished(ctx context.Context, actor Actor) ([]model.Listing, error) {
	if actor.Role != RoleAdmin {
		return nil, fmt.Errorf("%w: publication queue is admin-only", ErrPermissionDenied)
	}
	return e.store.ListPublished(ctx)
}

// ListPending returns the moderation queue with merchant names.
func (e *Engine) ListPending(ctx context.Context, actor Actor) ([]store.PendingListing, error) {
	if actor.Role != RoleAdmin {
		return nil, fmt.Errorf("%w: moderation queue is admin-only", ErrPermissionDenied)
	}
	return e.store.ListPending(ctx)
}

// transition authorizes and applies one status change, returning the updated
// listing.
func (e *Engine) transition(ctx context.Context, actor Actor, id int64, action Action, to model.ListingStatus, cancellation *string) (*model.Listing, error) {
	listing, err := e.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := Authorize(actor, listing, action); err != nil {
		return nil, err
	}

	won, err := e.store.TransitionStatus(ctx, listing, to, cancellation)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, e.lostRace(ctx, id)
	}
	return e.load(ctx, id)
}

// remove authorizes and applies a guarded delete.
func (e *Engine) remove(ctx context.Context, actor Actor, id int64, action Action) error {
	listing, err := e.load(ctx, id)
	if err != nil {
		return err
	}
	if err := Authorize(actor, listing, action); err != nil {
		return err
	}

	won, err := e.store.DeleteListing(ctx, listing)
	if err != nil {
		return err
	}
	if !won {
		return e.lostRace(ctx, id)
	}
	return nil
}

func (e *Engine) load(ctx context.Context, id int64) (*model.Listing, error) {
	listing, err := e.store.GetListing(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: listing %d", ErrNotFound, id)
		}
		return nil, err
	}
	return listing, nil
}

// lostRace classifies a failed compare-and-set: the row either disappeared or
// moved to a state the attempted action is no longer legal from. Either way
// the operation is terminal, which is what makes retries of already-applied
// transitions safe.
func (e *Engine) lostRace(ctx context.Context, id int64) error {
	if _, err := e.store.GetListing(ctx, id); errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: listing %d", ErrNotFound, id)
	}
	return fmt.Errorf("%w: listing %d changed concurrently", ErrInvalidTransition, id)
}

func (e *Engine) notify(listing *model.Listing, reason string) {
	if e.notifier == nil {
		return
	}
	e.notifier.NotifyDecision(listing.ID, listing.Status, reason)
}

// normalizeReason trims an admin reason. Once a reject/offline has happened
// the stored reason is always a real string, so "" after a decision stays
// distinguishable from the nil of a listing that was never rejected.
func normalizeReason(reason string) string {
	return strings.TrimSpace(reason)
}
