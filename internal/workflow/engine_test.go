package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"hotel-marketplace-backend/internal/model"
	"hotel-marketplace-backend/internal/store"
)

var (
	merchant      = Actor{ID: 1, Role: RoleMerchant, Name: "华住集团"}
	otherMerchant = Actor{ID: 2, Role: RoleMerchant, Name: "锦江之星"}
	admin         = Actor{ID: 100, Role: RoleAdmin, Name: "运营"}
)

// recordingNotifier captures decisions handed to the notifier.
type recordingNotifier struct {
	mu        sync.Mutex
	decisions []struct {
		ListingID int64
		Status    model.ListingStatus
		Reason    string
	}
}

func (n *recordingNotifier) NotifyDecision(listingID int64, status model.ListingStatus, reason string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.decisions = append(n.decisions, struct {
		ListingID int64
		Status    model.ListingStatus
		Reason    string
	}{listingID, status, reason})
}

func newTestEngine(t *testing.T) (*Engine, store.Store, *recordingNotifier) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.Merchant{},
		&model.Listing{},
		&model.RoomType{},
		&model.PushSubscription{},
	))

	// One connection serializes SQLite access so goroutine-based tests race
	// on the compare-and-set, not on file locks.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	s := store.NewGormStore(db)
	notifier := &recordingNotifier{}
	return NewEngine(s, notifier), s, notifier
}

func validInput() *ListingInput {
	return &ListingInput{
		Name:    "Test Hotel",
		City:    "上海",
		Address: "南京东路 1 号",
		Phone:   "021-12345678",
		Price:   100,
		Tags:    "wifi, parking",
		RoomTypes: []RoomTypeInput{
			{Name: "标准间", Price: 100},
		},
	}
}

func submit(t *testing.T, e *Engine, owner Actor) *model.Listing {
	listing, err := e.Submit(context.Background(), owner, validInput())
	require.NoError(t, err)
	return listing
}

// checkInvariant asserts that cancellation is non-nil exactly when the status
// carries a reason.
func checkInvariant(t *testing.T, l *model.Listing) {
	t.Helper()
	if l.Status.CarriesCancellation() {
		assert.NotNil(t, l.Cancellation, "cancellation must be set in %s", l.Status)
	} else {
		assert.Nil(t, l.Cancellation, "cancellation must be nil in %s", l.Status)
	}
}

func TestSubmitCreatesPendingListing(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	listing, err := e.Submit(ctx, merchant, validInput())
	require.NoError(t, err)

	assert.NotZero(t, listing.ID)
	assert.Equal(t, merchant.ID, listing.MerchantID)
	assert.Equal(t, model.StatusPending, listing.Status)
	assert.Equal(t, "wifi,parking", listing.Tags)
	checkInvariant(t, listing)

	// The merchant directory row exists for the pending queue join.
	pending, err := e.ListPending(ctx, admin)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "华住集团", pending[0].MerchantName)
}

func TestSubmitValidation(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	testCases := []struct {
		name   string
		mutate func(*ListingInput)
	}{
		{"missing name", func(in *ListingInput) { in.Name = "  " }},
		{"missing city", func(in *ListingInput) { in.City = "" }},
		{"missing address", func(in *ListingInput) { in.Address = "" }},
		{"no room types", func(in *ListingInput) { in.RoomTypes = nil }},
		{"room type without name", func(in *ListingInput) { in.RoomTypes[0].Name = " " }},
		{"room type without price", func(in *ListingInput) { in.RoomTypes[0].Price = 0 }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(in)
			_, err := e.Submit(ctx, merchant, in)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestSubmitRequiresMerchantRole(t *testing.T) {
	e, _, _ := newTestEngine(t)

	_, err := e.Submit(context.Background(), admin, validInput())
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

// TestTransitionTable walks every state × action × actor combination and
// checks the outcome class against the legal table.
func TestTransitionTable(t *testing.T) {
	type outcome int
	const (
		allowed outcome = iota
		denied          // ErrPermissionDenied
		illegal         // ErrInvalidTransition
	)

	testCases := []struct {
		name   string
		status model.ListingStatus
		action Action
		actor  Actor
		want   outcome
	}{
		// Pending
		{"merchant withdraws pending", model.StatusPending, ActionWithdraw, merchant, allowed},
		{"stranger withdraws pending", model.StatusPending, ActionWithdraw, otherMerchant, denied},
		{"admin withdraws pending", model.StatusPending, ActionWithdraw, admin, denied},
		{"admin approves pending", model.StatusPending, ActionApprove, admin, allowed},
		{"merchant approves own pending", model.StatusPending, ActionApprove, merchant, denied},
		{"admin rejects pending", model.StatusPending, ActionReject, admin, allowed},
		{"admin deletes pending", model.StatusPending, ActionDelete, admin, allowed},
		{"merchant deletes own pending", model.StatusPending, ActionDelete, merchant, denied},
		{"merchant edits own pending", model.StatusPending, ActionEdit, merchant, allowed},
		{"stranger edits pending", model.StatusPending, ActionEdit, otherMerchant, denied},
		{"admin edits pending", model.StatusPending, ActionEdit, admin, denied},

		// Published
		{"admin offlines published", model.StatusPublished, ActionOffline, admin, allowed},
		{"merchant offlines own published", model.StatusPublished, ActionOffline, merchant, denied},
		{"merchant edits own published", model.StatusPublished, ActionEdit, merchant, allowed},
		{"stranger edits published", model.StatusPublished, ActionEdit, otherMerchant, denied},
		{"admin deletes published", model.StatusPublished, ActionDelete, admin, allowed},
		{"merchant deletes own published", model.StatusPublished, ActionDelete, merchant, denied},
		{"merchant withdraws published", model.StatusPublished, ActionWithdraw, merchant, illegal},
		{"admin approves published", model.StatusPublished, ActionApprove, admin, illegal},

		// Rejected
		{"merchant edits own rejected", model.StatusRejected, ActionEdit, merchant, allowed},
		{"merchant deletes own rejected", model.StatusRejected, ActionDelete, merchant, allowed},
		{"admin deletes rejected", model.StatusRejected, ActionDelete, admin, denied},
		{"admin approves rejected", model.StatusRejected, ActionApprove, admin, illegal},
		{"admin rejects rejected", model.StatusRejected, ActionReject, admin, illegal},

		// Offline
		{"merchant edits own offline", model.StatusOffline, ActionEdit, merchant, allowed},
		{"merchant deletes own offline", model.StatusOffline, ActionDelete, merchant, allowed},
		{"admin deletes offline", model.StatusOffline, ActionDelete, admin, allowed},
		{"stranger deletes offline", model.StatusOffline, ActionDelete, otherMerchant, denied},
		{"admin offlines offline", model.StatusOffline, ActionOffline, admin, illegal},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			listing := &model.Listing{ID: 1, MerchantID: merchant.ID, Status: tc.status}
			err := Authorize(tc.actor, listing, tc.action)
			switch tc.want {
			case allowed:
				assert.NoError(t, err)
			case denied:
				assert.ErrorIs(t, err, ErrPermissionDenied)
			case illegal:
				assert.ErrorIs(t, err, ErrInvalidTransition)
			}
		})
	}
}

func TestApproveIsIdempotentUnderRetry(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()
	listing := submit(t, e, merchant)

	approved, err := e.Approve(ctx, admin, listing.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPublished, approved.Status)
	checkInvariant(t, approved)

	// The retried approve fails cleanly and must not double-apply.
	_, err = e.Approve(ctx, admin, listing.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	after, err := e.Get(ctx, admin, listing.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPublished, after.Status)
	assert.Equal(t, approved.UpdatedAt, after.UpdatedAt, "a failed retry must not touch updated_at")
}

func TestRejectThenEditClearsCancellation(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()
	listing := submit(t, e, merchant)

	rejected, err := e.Reject(ctx, admin, listing.ID, "照片不清晰")
	require.NoError(t, err)
	assert.Equal(t, model.StatusRejected, rejected.Status)
	require.NotNil(t, rejected.Cancellation)
	assert.Equal(t, "照片不清晰", *rejected.Cancellation)
	checkInvariant(t, rejected)

	edited, err := e.Edit(ctx, merchant, listing.ID, validInput())
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, edited.Status)
	assert.Nil(t, edited.Cancellation)
	checkInvariant(t, edited)
}

func TestOfflineWithEmptyReason(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()
	listing := submit(t, e, merchant)

	_, err := e.Approve(ctx, admin, listing.ID)
	require.NoError(t, err)

	offlined, err := e.Offline(ctx, admin, listing.ID, "   ")
	require.NoError(t, err)
	assert.Equal(t, model.StatusOffline, offlined.Status)

	// "Offlined with no stated reason" is an empty string, never nil, so the
	// UI can tell it apart from "never rejected".
	require.NotNil(t, offlined.Cancellation)
	assert.Equal(t, "", *offlined.Cancellation)

	// Offlined rows stay in the publication queue (greyed in the UI) but are
	// not pending.
	published, err := e.ListPublished(ctx, admin)
	require.NoError(t, err)
	require.Len(t, published, 1)
	assert.Equal(t, listing.ID, published[0].ID)

	pending, err := e.ListPending(ctx, admin)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestWithdrawIsPendingOnly(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()
	listing := submit(t, e, merchant)

	_, err := e.Approve(ctx, admin, listing.ID)
	require.NoError(t, err)

	err = e.Withdraw(ctx, merchant, listing.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// Back in Pending territory, withdraw removes the record entirely.
	fresh := submit(t, e, merchant)
	require.NoError(t, e.Withdraw(ctx, merchant, fresh.ID))
	_, err = e.Get(ctx, merchant, fresh.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

// TestConcurrentEditAndApprove replays the race between a merchant edit and
// an admin approve against the same Pending listing: both read the listing,
// the edit commits first, and the approve must then fail with
// InvalidTransition instead of publishing content the admin never reviewed.
func TestConcurrentEditAndApprove(t *testing.T) {
	e, s, _ := newTestEngine(t)
	ctx := context.Background()
	listing := submit(t, e, merchant)

	// The admin's stale read of the Pending listing.
	staleRead, err := s.GetListing(ctx, listing.ID)
	require.NoError(t, err)

	// The merchant's edit commits first.
	in := validInput()
	in.Name = "Edited Hotel"
	edited, err := e.Edit(ctx, merchant, listing.ID, in)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, edited.Status)

	// The approve validated against the stale read loses its compare-and-set.
	won, err := s.TransitionStatus(ctx, staleRead, model.StatusPublished, nil)
	require.NoError(t, err)
	assert.False(t, won)

	// Which is exactly what the engine reports as InvalidTransition when the
	// whole operation goes through it a second behind the edit.
	got, err := e.Get(ctx, merchant, listing.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, got.Status)
	assert.Equal(t, "Edited Hotel", got.Name)
	checkInvariant(t, got)
}

// TestConcurrentWithdrawAndApprove fires the two operations at the same
// Pending listing from separate goroutines: exactly one may win.
func TestConcurrentWithdrawAndApprove(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()
	listing := submit(t, e, merchant)

	var wg sync.WaitGroup
	wg.Add(2)
	errs := make([]error, 2)

	go func() {
		defer wg.Done()
		errs[0] = e.Withdraw(ctx, merchant, listing.ID)
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = e.Approve(ctx, admin, listing.ID)
	}()
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.True(t,
				errorIsAny(err, ErrInvalidTransition, ErrNotFound),
				"loser must fail terminally, got %v", err)
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one operation may commit")
}

func errorIsAny(err error, targets ...error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func TestEditDeniedForNonOwner(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()
	listing := submit(t, e, merchant)

	_, err := e.Approve(ctx, admin, listing.ID)
	require.NoError(t, err)

	_, err = e.Edit(ctx, otherMerchant, listing.ID, validInput())
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestGetVisibility(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()
	listing := submit(t, e, merchant)

	_, err := e.Get(ctx, merchant, listing.ID)
	assert.NoError(t, err)

	_, err = e.Get(ctx, admin, listing.ID)
	assert.NoError(t, err)

	_, err = e.Get(ctx, otherMerchant, listing.ID)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = e.Get(ctx, admin, 99999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDecisionNotifications(t *testing.T) {
	e, _, notifier := newTestEngine(t)
	ctx := context.Background()

	first := submit(t, e, merchant)
	second := submit(t, e, merchant)

	_, err := e.Approve(ctx, admin, first.ID)
	require.NoError(t, err)
	_, err = e.Reject(ctx, admin, second.ID, "描述与照片不符")
	require.NoError(t, err)
	_, err = e.Offline(ctx, admin, first.ID, "")
	require.NoError(t, err)

	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	require.Len(t, notifier.decisions, 3)
	assert.Equal(t, model.StatusPublished, notifier.decisions[0].Status)
	assert.Equal(t, "描述与照片不符", notifier.decisions[1].Reason)
	assert.Equal(t, model.StatusOffline, notifier.decisions[2].Status)
}

func TestListMineOrderedByRecency(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	older := submit(t, e, merchant)
	time.Sleep(10 * time.Millisecond)
	newer := submit(t, e, merchant)
	submit(t, e, otherMerchant)

	mine, err := e.ListMine(ctx, merchant)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, newer.ID, mine[0].ID)
	assert.Equal(t, older.ID, mine[1].ID)

	_, err = e.ListMine(ctx, admin)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestQueueViewsAreAdminOnly(t *testing.T) {
	e, _, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := e.ListPublished(ctx, merchant)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = e.ListPending(ctx, merchant)
	assert.ErrorIs(t, err, ErrPermissionDenied)
}
