package notification

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"gorm.io/gorm"

	"hotel-marketplace-backend/internal/model"
)

// DecisionSender defines the interface for sending a web push notification.
type DecisionSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of DecisionSender using the webpush
// library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// Decision is one moderation outcome queued for delivery to the listing's
// owner.
type Decision struct {
	ListingID int64
	Status    model.ListingStatus
	Reason    string
}

// WorkerPool manages a pool of workers delivering moderation decisions to
// merchants' browser push subscriptions.
type WorkerPool struct {
	size    int
	jobs    chan Decision
	db      *gorm.DB
	webpush *webpush.Options
	sender  DecisionSender
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, db *gorm.DB, webpushOptions *webpush.Options) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan Decision, size*4),
		db:      db,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

// NotifyDecision queues a decision for delivery. Delivery is best-effort: a
// full queue drops the notification instead of blocking the transition that
// produced it.
func (wp *WorkerPool) NotifyDecision(listingID int64, status model.ListingStatus, reason string) {
	select {
	case wp.jobs <- Decision{ListingID: listingID, Status: status, Reason: reason}:
	default:
		log.Printf("notification queue full, dropping decision for listing %d", listingID)
	}
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan Decision {
	return wp.jobs
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("notification worker %d started", id)
	for {
		select {
		case decision := <-wp.jobs:
			wp.deliver(ctx, decision)
		case <-ctx.Done():
			log.Printf("notification worker %d shutting down", id)
			return
		}
	}
}

// deliver pushes one decision to every subscription of the listing's owner.
func (wp *WorkerPool) deliver(ctx context.Context, decision Decision) {
	var listing model.Listing
	if err := wp.db.WithContext(ctx).First(&listing, decision.ListingID).Error; err != nil {
		// The listing may have been deleted since the decision was queued.
		log.Printf("skipping notification for listing %d: %v", decision.ListingID, err)
		return
	}

	var subs []model.PushSubscription
	if err := wp.db.WithContext(ctx).Where("merchant_id = ?", listing.MerchantID).Find(&subs).Error; err != nil {
		log.Printf("failed to load subscriptions for merchant %d: %v", listing.MerchantID, err)
		return
	}

	payload := []byte(decisionMessage(listing.Name, decision.Status, decision.Reason))
	for _, sub := range subs {
		wp.push(payload, sub)
	}
}

func (wp *WorkerPool) push(payload []byte, sub model.PushSubscription) {
	resp, err := wp.sender.Send(payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}, wp.webpush)
	if err != nil {
		log.Printf("failed to push to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	// The push service reports expired subscriptions with 404/410.
	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		if err := wp.db.Delete(&model.PushSubscription{Endpoint: sub.Endpoint}).Error; err != nil {
			log.Printf("failed to remove expired subscription %s: %v", sub.Endpoint, err)
		}
		return
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("push service returned %d for %s", resp.StatusCode, sub.Endpoint)
	}
}

// decisionMessage builds the merchant-facing push text.
func decisionMessage(hotelName string, status model.ListingStatus, reason string) string {
	switch status {
	case model.StatusPublished:
		return fmt.Sprintf("您的酒店「%s」已通过审核并发布。", hotelName)
	case model.StatusRejected:
		if reason != "" {
			return fmt.Sprintf("您的酒店「%s」未通过审核：%s", hotelName, reason)
		}
		return fmt.Sprintf("您的酒店「%s」未通过审核。", hotelName)
	case model.StatusOffline:
		if reason != "" {
			return fmt.Sprintf("您的酒店「%s」已被下线：%s", hotelName, reason)
		}
		return fmt.Sprintf("您的酒店「%s」已被下线。", hotelName)
	default:
		return fmt.Sprintf("您的酒店「%s」状态已更新。", hotelName)
	}
}
