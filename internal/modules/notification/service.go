package notification

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"supperclub/internal/domain"
)

// Service stores notifications and pushes them to connected clients. All of
// the Notify* methods are best-effort from the caller's point of view: the
// booking and dispute flows ignore their errors.
type Service struct {
	db  *gorm.DB
	hub *Hub
}

func NewService(db *gorm.DB, hub *Hub) *Service {
	return &Service{db: db, hub: hub}
}

func (s *Service) NotifyBookingCreated(ctx context.Context, hostID, bookingID, slotID int64) error {
	return s.deliver(ctx, hostID, domain.NotifyBookingCreated,
		"New booking",
		fmt.Sprintf("Booking #%d was placed on your event #%d", bookingID, slotID))
}

func (s *Service) NotifyBookingCancelled(ctx context.Context, hostID, bookingID, slotID int64, reason string) error {
	body := fmt.Sprintf("Booking #%d on your event #%d was cancelled", bookingID, slotID)
	if reason != "" {
		body += ": " + reason
	}
	return s.deliver(ctx, hostID, domain.NotifyBookingCancelled, "Booking cancelled", body)
}

func (s *Service) NotifyBookingCheckedIn(ctx context.Context, guestID, bookingID int64) error {
	return s.deliver(ctx, guestID, domain.NotifyBookingCheckedIn,
		"Checked in",
		fmt.Sprintf("You were checked in for booking #%d", bookingID))
}

func (s *Service) NotifyDisputeResolved(ctx context.Context, userID, disputeID int64, resolution string) error {
	return s.deliver(ctx, userID, domain.NotifyDisputeResolved,
		"Dispute resolved",
		fmt.Sprintf("Dispute #%d: %s", disputeID, resolution))
}

func (s *Service) NotifyWithdrawalUpdate(ctx context.Context, userID, withdrawalID int64, status domain.WithdrawalStatus) error {
	return s.deliver(ctx, userID, domain.NotifyWithdrawalUpdate,
		"Withdrawal update",
		fmt.Sprintf("Withdrawal #%d is now %s", withdrawalID, status))
}

func (s *Service) deliver(ctx context.Context, userID int64, typ domain.NotificationType, title, body string) error {
	n := &domain.Notification{
		UserID: userID,
		Type:   typ,
		Title:  title,
		Body:   body,
	}
	if err := s.db.WithContext(ctx).Create(n).Error; err != nil {
		return err
	}
	if s.hub != nil {
		s.hub.SendToUser(userID, Event{Type: string(typ), Payload: n})
	}
	return nil
}

// List returns the user's notifications, newest first.
func (s *Service) List(ctx context.Context, userID int64, unreadOnly bool) ([]domain.Notification, error) {
	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}
	var rows []domain.Notification
	err := q.Order("created_at DESC").Limit(100).Find(&rows).Error
	return rows, err
}

// MarkRead is idempotent and scoped to the owner.
func (s *Service) MarkRead(ctx context.Context, userID, notificationID int64) error {
	now := time.Now()
	return s.db.WithContext(ctx).Model(&domain.Notification{}).
		Where("id = ? AND user_id = ? AND is_read = ?", notificationID, userID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": now}).Error
}

func (s *Service) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&domain.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}
