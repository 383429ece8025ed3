package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hotel-marketplace-backend/internal/model"
)

// PendingListing is a pending-queue row joined with the owning merchant's
// display name.
type PendingListing struct {
	model.Listing
	MerchantName string `json:"merchant_name"`
}

// Store defines the interface for all database operations.
//
// The three guarded mutations (TransitionStatus, ReplaceContent,
// DeleteListing) are compare-and-set against the listing the caller read:
// the write only applies while the row still has that status and version,
// and the whole mutation runs in a single transaction. A false return means
// the precondition no longer held when the write executed, i.e. a concurrent
// operation won the race.
type Store interface {
	DB() *gorm.DB

	UpsertMerchant(ctx context.Context, merchant *model.Merchant) error

	CreateListing(ctx context.Context, listing *model.Listing) error
	GetListing(ctx context.Context, id int64) (*model.Listing, error)

	TransitionStatus(ctx context.Context, expect *model.Listing, to model.ListingStatus, cancellation *string) (bool, error)
	ReplaceContent(ctx context.Context, expect *model.Listing, content *model.Listing, roomTypes []model.RoomType) (bool, error)
	DeleteListing(ctx context.Context, expect *model.Listing) (bool, error)

	ListByMerchant(ctx context.Context, merchantID int64) ([]model.Listing, error)
	ListPublished(ctx context.Context) ([]model.Listing, error)
	ListPending(ctx context.Context) ([]PendingListing, error)
	ListPublic(ctx context.Context) ([]model.Listing, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// UpsertMerchant creates or refreshes the merchant's display row.
func (s *gormStore) UpsertMerchant(ctx context.Context, merchant *model.Merchant) error {
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"display_name", "updated_at"}),
	}).Create(merchant).Error; err != nil {
		return fmt.Errorf("upsert merchant %d: %w", merchant.ID, err)
	}
	return nil
}

// CreateListing inserts a listing together with its room types.
func (s *gormStore) CreateListing(ctx context.Context, listing *model.Listing) error {
	if err := s.db.WithContext(ctx).Create(listing).Error; err != nil {
		return fmt.Errorf("create listing: %w", err)
	}
	return nil
}

// GetListing loads one listing with its room types.
func (s *gormStore) GetListing(ctx context.Context, id int64) (*model.Listing, error) {
	var listing model.Listing
	if err := s.db.WithContext(ctx).Preload("RoomTypes").First(&listing, id).Error; err != nil {
		return nil, err
	}
	return &listing, nil
}

// guard restricts a write to the exact row revision the caller read.
func guard(tx *gorm.DB, expect *model.Listing) *gorm.DB {
	return tx.Model(&model.Listing{}).
		Where("id = ? AND status = ? AND version = ?", expect.ID, expect.Status, expect.Version)
}

// TransitionStatus moves the listing to a new status, recording or clearing
// the cancellation reason in the same write.
func (s *gormStore) TransitionStatus(ctx context.Context, expect *model.Listing, to model.ListingStatus, cancellation *string) (bool, error) {
	res := guard(s.db.WithContext(ctx), expect).
		Updates(map[string]interface{}{
			"status":       to,
			"cancellation": cancellation,
			"version":      gorm.Expr("version + 1"),
			"updated_at":   time.Now(),
		})
	if res.Error != nil {
		return false, fmt.Errorf("transition listing %d to %s: %w", expect.ID, to, res.Error)
	}
	return res.RowsAffected == 1, nil
}

// ReplaceContent overwrites the listing's descriptive attributes, replaces its
// room types and re-enters the moderation queue, all in one transaction
// guarded on the revision the caller read.
func (s *gormStore) ReplaceContent(ctx context.Context, expect *model.Listing, content *model.Listing, roomTypes []model.RoomType) (bool, error) {
	id := expect.ID
	won := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := guard(tx, expect).
			Updates(map[string]interface{}{
				"name":         content.Name,
				"city":         content.City,
				"address":      content.Address,
				"phone":        content.Phone,
				"price":        content.Price,
				"star_level":   content.StarLevel,
				"tags":         content.Tags,
				"image_url":    content.ImageURL,
				"description":  content.Description,
				"status":       model.StatusPending,
				"cancellation": nil,
				"version":      gorm.Expr("version + 1"),
				"updated_at":   time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		if err := tx.Where("listing_id = ?", id).Delete(&model.RoomType{}).Error; err != nil {
			return err
		}
		for i := range roomTypes {
			roomTypes[i].ID = 0
			roomTypes[i].ListingID = id
		}
		if err := tx.Create(&roomTypes).Error; err != nil {
			return err
		}

		won = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("replace content of listing %d: %w", id, err)
	}
	return won, nil
}

// DeleteListing removes the listing and its room types, guarded on the
// revision the caller read. Deletion is irreversible.
func (s *gormStore) DeleteListing(ctx context.Context, expect *model.Listing) (bool, error) {
	id := expect.ID
	won := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND status = ? AND version = ?", id, expect.Status, expect.Version).
			Delete(&model.Listing{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		if err := tx.Where("listing_id = ?", id).Delete(&model.RoomType{}).Error; err != nil {
			return err
		}
		won = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("delete listing %d: %w", id, err)
	}
	return won, nil
}

// ListByMerchant returns all of the merchant's listings, newest activity first.
func (s *gormStore) ListByMerchant(ctx context.Context, merchantID int64) ([]model.Listing, error) {
	var listings []model.Listing
	if err := s.db.WithContext(ctx).Preload("RoomTypes").
		Where("merchant_id = ?", merchantID).
		Order("updated_at DESC").
		Find(&listings).Error; err != nil {
		return nil, fmt.Errorf("list listings of merchant %d: %w", merchantID, err)
	}
	return listings, nil
}

// ListPublished returns the admin publication queue: published listings plus
// offlined ones, which the UI greys out rather than hides.
func (s *gormStore) ListPublished(ctx context.Context) ([]model.Listing, error) {
	var listings []model.Listing
	if err := s.db.WithContext(ctx).Preload("RoomTypes").
		Where("status IN ?", []model.ListingStatus{model.StatusPublished, model.StatusOffline}).
		Order("updated_at DESC").
		Find(&listings).Error; err != nil {
		return nil, fmt.Errorf("list published listings: %w", err)
	}
	return listings, nil
}

// ListPublic returns what travelers may browse: published listings only.
func (s *gormStore) ListPublic(ctx context.Context) ([]model.Listing, error) {
	var listings []model.Listing
	if err := s.db.WithContext(ctx).Preload("RoomTypes").
		Where("status = ?", model.StatusPublished).
		Order("updated_at DESC").
		Find(&listings).Error; err != nil {
		return nil, fmt.Errorf("list public listings: %w", err)
	}
	return listings, nil
}

// ListPending returns the moderation queue joined with merchant display names.
func (s *gormStore) ListPending(ctx context.Context) ([]PendingListing, error) {
	var rows []PendingListing
	if err := s.db.WithContext(ctx).Model(&model.Listing{}).
		Select("listings.*, merchants.display_name AS merchant_name").
		Joins("LEFT JOIN merchants ON merchants.id = listings.merchant_id").
		Where("listings.status = ?", model.StatusPending).
		Order("listings.updated_at DESC").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("list pending listings: %w", err)
	}
	return rows, nil
}
