package slot

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"supperclub/internal/domain"
)

// Service owns per-slot seat capacity. Reserve and Release are the only
// writers of seats_remaining; both are single conditional UPDATEs so no
// lock manager is needed for cross-request safety.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

func (s *Service) Create(ctx context.Context, hostID int64, req CreateSlotRequest) (*domain.EventSlot, error) {
	if req.MaxGuests < 1 || req.PricePerSeat < 0 {
		return nil, ErrValidation
	}
	if !req.EndAt.After(req.StartAt) || !req.StartAt.After(time.Now()) {
		return nil, ErrValidation
	}

	slot := &domain.EventSlot{
		HostID:         hostID,
		Title:          req.Title,
		Description:    req.Description,
		PricePerSeat:   req.PricePerSeat,
		MaxGuests:      req.MaxGuests,
		SeatsRemaining: req.MaxGuests,
		Status:         domain.SlotOpen,
		StartAt:        req.StartAt,
		EndAt:          req.EndAt,
	}
	if err := s.db.WithContext(ctx).Create(slot).Error; err != nil {
		return nil, err
	}
	return slot, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*domain.EventSlot, error) {
	var slot domain.EventSlot
	if err := s.db.WithContext(ctx).First(&slot, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}
	return &slot, nil
}

// ListUpcoming returns open and full slots that have not started yet.
func (s *Service) ListUpcoming(ctx context.Context, limit, offset int) ([]domain.EventSlot, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var slots []domain.EventSlot
	err := s.db.WithContext(ctx).
		Where("status <> ? AND start_at > ?", domain.SlotCancelled, time.Now()).
		Order("start_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&slots).Error
	return slots, err
}

// Cancel transitions a slot to CANCELLED. Guarded by current status so a
// concurrent cancel is a clean no-op failure.
func (s *Service) Cancel(ctx context.Context, slotID, hostID int64) error {
	slot, err := s.GetByID(ctx, slotID)
	if err != nil {
		return err
	}
	if slot.HostID != hostID {
		return ErrForbidden
	}

	res := s.db.WithContext(ctx).
		Model(&domain.EventSlot{}).
		Where("id = ? AND status <> ?", slotID, domain.SlotCancelled).
		Update("status", domain.SlotCancelled)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrSlotCancelled
	}
	return nil
}

// Reserve atomically claims n seats: decrement seats_remaining and flip the
// slot to FULL when it hits zero, but only while the slot is OPEN and holds
// at least n seats. A failed condition changes nothing and yields the typed
// ErrNotEnoughSeats rejection.
func (s *Service) Reserve(ctx context.Context, slotID int64, n int) error {
	if n < 1 {
		return ErrValidation
	}

	res := s.db.WithContext(ctx).
		Model(&domain.EventSlot{}).
		Where("id = ? AND status = ? AND seats_remaining >= ?", slotID, domain.SlotOpen, n).
		Updates(map[string]interface{}{
			"seats_remaining": gorm.Expr("seats_remaining - ?", n),
			"status":          gorm.Expr("CASE WHEN seats_remaining = ? THEN ? ELSE status END", n, domain.SlotFull),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// Distinguish a missing slot from a capacity conflict.
		if _, err := s.GetByID(ctx, slotID); err != nil {
			return err
		}
		return ErrNotEnoughSeats
	}
	return nil
}

// Release is the unconditional inverse of Reserve: give n seats back and
// reopen a FULL slot. Releasing into a CANCELLED slot is a deliberate no-op
// so a dead slot can never be reopened by a late compensation.
func (s *Service) Release(ctx context.Context, slotID int64, n int) error {
	if n < 1 {
		return ErrValidation
	}

	res := s.db.WithContext(ctx).
		Model(&domain.EventSlot{}).
		Where("id = ? AND status <> ?", slotID, domain.SlotCancelled).
		Updates(map[string]interface{}{
			"seats_remaining": gorm.Expr("seats_remaining + ?", n),
			"status":          gorm.Expr("CASE WHEN status = ? THEN ? ELSE status END", domain.SlotFull, domain.SlotOpen),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := s.GetByID(ctx, slotID); err != nil {
			return err
		}
		// cancelled slot: seats stay frozen
		return nil
	}
	return nil
}
