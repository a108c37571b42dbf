package dispute

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"supperclub/internal/domain"
)

// Bookings is the slice of the booking module a dispute needs: reading the
// disputed booking and, on a refund resolution, cancelling it so its seats
// return to the pool.
type Bookings interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	CancelForDispute(ctx context.Context, bookingID, refundAmount int64) error
}

// Ledger credits the guest when a dispute resolves with a refund.
type Ledger interface {
	Credit(ctx context.Context, userID, amount int64, txnType domain.WalletTransactionType, refType, refID string) (*domain.Wallet, error)
}

type Notifier interface {
	NotifyDisputeResolved(ctx context.Context, userID, disputeID int64, resolution string) error
}

type Service struct {
	db       *gorm.DB
	bookings Bookings
	ledger   Ledger
	notifs   Notifier
}

func NewService(db *gorm.DB, bookings Bookings, ledger Ledger, notifs Notifier) *Service {
	return &Service{db: db, bookings: bookings, ledger: ledger, notifs: notifs}
}

// Open files a dispute against the caller's own booking. Only bookings that
// went through (CONFIRMED or COMPLETED) can be disputed, and only one dispute
// may be live per booking at a time.
func (s *Service) Open(ctx context.Context, guestID int64, req OpenDisputeRequest) (*domain.Dispute, error) {
	if req.BookingID <= 0 || len(req.Reason) < 10 {
		return nil, ErrValidation
	}

	b, err := s.bookings.GetByID(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}
	if b.GuestID != guestID {
		return nil, ErrForbidden
	}
	if b.Status != domain.BookingConfirmed && b.Status != domain.BookingCompleted {
		return nil, ErrNotDisputable
	}

	var live int64
	err = s.db.WithContext(ctx).Model(&domain.Dispute{}).
		Where("booking_id = ? AND status IN ?", req.BookingID,
			[]domain.DisputeStatus{domain.DisputeOpen, domain.DisputeEscalated}).
		Count(&live).Error
	if err != nil {
		return nil, err
	}
	if live > 0 {
		return nil, ErrAlreadyDisputed
	}

	d := &domain.Dispute{
		BookingID: req.BookingID,
		GuestID:   guestID,
		HostID:    b.HostID,
		Reason:    req.Reason,
		Status:    domain.DisputeOpen,
	}
	if err := s.db.WithContext(ctx).Create(d).Error; err != nil {
		return nil, err
	}
	return d, nil
}

// Escalate moves OPEN -> ESCALATED for manual review.
func (s *Service) Escalate(ctx context.Context, adminID, disputeID int64) (*domain.Dispute, error) {
	if _, err := s.GetByID(ctx, disputeID); err != nil {
		return nil, err
	}

	res := s.db.WithContext(ctx).Model(&domain.Dispute{}).
		Where("id = ? AND status = ?", disputeID, domain.DisputeOpen).
		Update("status", domain.DisputeEscalated)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrInvalidTransition
	}

	s.audit(ctx, adminID, "dispute.escalate", disputeID, "")
	return s.GetByID(ctx, disputeID)
}

// Resolve closes a live dispute with a ruling. A positive refund credits the
// guest wallet and cancels the underlying booking so its seats go back on
// sale; a zero refund just records the ruling.
func (s *Service) Resolve(ctx context.Context, adminID, disputeID int64, req ResolveRequest) (*domain.Dispute, error) {
	if req.RefundAmount < 0 || req.Resolution == "" {
		return nil, ErrValidation
	}
	d, err := s.GetByID(ctx, disputeID)
	if err != nil {
		return nil, err
	}

	b, err := s.bookings.GetByID(ctx, d.BookingID)
	if err != nil {
		return nil, err
	}
	if req.RefundAmount > b.AmountTotal {
		return nil, ErrRefundTooLarge
	}

	now := time.Now()
	res := s.db.WithContext(ctx).Model(&domain.Dispute{}).
		Where("id = ? AND status IN ?", disputeID,
			[]domain.DisputeStatus{domain.DisputeOpen, domain.DisputeEscalated}).
		Updates(map[string]interface{}{
			"status":          domain.DisputeResolved,
			"resolved_refund": req.RefundAmount,
			"resolution":      req.Resolution,
			"resolved_by":     adminID,
			"resolved_at":     now,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrInvalidTransition
	}

	if req.RefundAmount > 0 {
		if _, err := s.ledger.Credit(ctx, d.GuestID, req.RefundAmount, domain.TxnDisputeCredit, "dispute", strconv.FormatInt(disputeID, 10)); err != nil {
			log.Printf("level=error msg=dispute credit failed reconcile=true dispute_id=%d guest_id=%d amount=%d err=%v", disputeID, d.GuestID, req.RefundAmount, err)
		}
		if err := s.bookings.CancelForDispute(ctx, d.BookingID, req.RefundAmount); err != nil {
			log.Printf("level=error msg=dispute booking cancel failed reconcile=true dispute_id=%d booking_id=%d err=%v", disputeID, d.BookingID, err)
		}
	}

	s.audit(ctx, adminID, "dispute.resolve", disputeID,
		fmt.Sprintf("refund=%d resolution=%s", req.RefundAmount, req.Resolution))

	if s.notifs != nil {
		_ = s.notifs.NotifyDisputeResolved(ctx, d.GuestID, disputeID, req.Resolution)
	}
	return s.GetByID(ctx, disputeID)
}

// Close ends a live dispute without any refund.
func (s *Service) Close(ctx context.Context, adminID, disputeID int64, resolution string) (*domain.Dispute, error) {
	if resolution == "" {
		return nil, ErrValidation
	}
	if _, err := s.GetByID(ctx, disputeID); err != nil {
		return nil, err
	}

	now := time.Now()
	res := s.db.WithContext(ctx).Model(&domain.Dispute{}).
		Where("id = ? AND status IN ?", disputeID,
			[]domain.DisputeStatus{domain.DisputeOpen, domain.DisputeEscalated}).
		Updates(map[string]interface{}{
			"status":      domain.DisputeClosed,
			"resolution":  resolution,
			"resolved_by": adminID,
			"resolved_at": now,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrInvalidTransition
	}

	s.audit(ctx, adminID, "dispute.close", disputeID, resolution)
	return s.GetByID(ctx, disputeID)
}

func (s *Service) GetByID(ctx context.Context, id int64) (*domain.Dispute, error) {
	var d domain.Dispute
	if err := s.db.WithContext(ctx).First(&d, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (s *Service) ListMine(ctx context.Context, guestID int64) ([]domain.Dispute, error) {
	var rows []domain.Dispute
	err := s.db.WithContext(ctx).
		Where("guest_id = ?", guestID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

// ListOpen returns the admin review queue, oldest first.
func (s *Service) ListOpen(ctx context.Context) ([]domain.Dispute, error) {
	var rows []domain.Dispute
	err := s.db.WithContext(ctx).
		Where("status IN ?", []domain.DisputeStatus{domain.DisputeOpen, domain.DisputeEscalated}).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

func (s *Service) audit(ctx context.Context, actorID int64, action string, targetID int64, description string) {
	row := &domain.AdminAction{
		ActorID:     actorID,
		Action:      action,
		TargetType:  "dispute",
		TargetID:    targetID,
		Description: description,
		Reference:   uuid.NewString(),
	}
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		log.Printf("level=error msg=admin audit write failed reconcile=true action=%s target_id=%d err=%v", action, targetID, err)
	}
}
