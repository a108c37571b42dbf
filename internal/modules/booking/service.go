package booking

import (
	"context"
	"errors"
	"log"
	"strconv"
	"time"

	"gorm.io/gorm"

	"supperclub/internal/domain"
	"supperclub/internal/modules/refund"
	"supperclub/internal/modules/slot"
	"supperclub/internal/pkg/validator"
)

const defaultCheckInWindow = 2 * time.Hour

// Service orchestrates the reserve-then-persist booking saga. Seats are
// claimed first (capacity is the harder resource to compensate), the booking
// row second; a failed second step releases the claim. A compensation that
// itself fails is logged with reconcile=true for the periodic invariant
// check, never swallowed.
type Service struct {
	db            *gorm.DB
	inventory     SeatInventory
	ledger        WalletLedger
	notifs        NotificationSender
	checkInWindow time.Duration
}

func NewService(db *gorm.DB, inventory SeatInventory, ledger WalletLedger, notifs NotificationSender, checkInWindow time.Duration) *Service {
	if checkInWindow <= 0 {
		checkInWindow = defaultCheckInWindow
	}
	return &Service{
		db:            db,
		inventory:     inventory,
		ledger:        ledger,
		notifs:        notifs,
		checkInWindow: checkInWindow,
	}
}

func (s *Service) Create(ctx context.Context, guestID int64, req CreateBookingRequest) (*domain.Booking, error) {
	if req.Seats < 1 {
		return nil, ErrValidation
	}
	if req.Seats > domain.MaxSeatsPerBooking {
		return nil, ErrSeatCapExceeded
	}
	if len(req.Roster) != req.Seats {
		return nil, ErrValidation
	}
	for _, entry := range req.Roster {
		if fields := validator.Validate(entry); fields != nil {
			return nil, ErrValidation
		}
	}

	eventSlot, err := s.loadSlot(ctx, req.EventSlotID)
	if err != nil {
		return nil, err
	}
	if !eventSlot.StartAt.After(time.Now()) {
		return nil, ErrEventStarted
	}

	amount := eventSlot.PricePerSeat * int64(req.Seats)

	if err := s.inventory.Reserve(ctx, eventSlot.ID, req.Seats); err != nil {
		if errors.Is(err, slot.ErrNotEnoughSeats) {
			return nil, ErrNotEnoughSeats
		}
		return nil, err
	}

	b := &domain.Booking{
		EventSlotID: eventSlot.ID,
		GuestID:     guestID,
		HostID:      eventSlot.HostID,
		Seats:       req.Seats,
		AmountTotal: amount,
		Status:      domain.BookingPaymentPending,
		Roster:      rosterRows(req.Roster, true),
	}
	if err := s.db.WithContext(ctx).Create(b).Error; err != nil {
		// saga compensation: give the seats back
		if relErr := s.inventory.Release(ctx, eventSlot.ID, req.Seats); relErr != nil {
			log.Printf("level=error msg=booking create compensation failed reconcile=true slot_id=%d seats=%d err=%v", eventSlot.ID, req.Seats, relErr)
		}
		return nil, err
	}

	if s.notifs != nil {
		_ = s.notifs.NotifyBookingCreated(ctx, b.HostID, b.ID, b.EventSlotID)
	}

	return b, nil
}

func (s *Service) AddGuests(ctx context.Context, guestID, bookingID int64, req AddGuestsRequest) (*domain.Booking, error) {
	if req.Seats < 1 || len(req.Roster) != req.Seats {
		return nil, ErrValidation
	}
	for _, entry := range req.Roster {
		if fields := validator.Validate(entry); fields != nil {
			return nil, ErrValidation
		}
	}

	b, err := s.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.GuestID != guestID {
		return nil, ErrForbidden
	}
	if b.Status != domain.BookingPaymentPending && b.Status != domain.BookingConfirmed {
		return nil, ErrInvalidTransition
	}
	if b.Seats+req.Seats > domain.MaxSeatsPerBooking {
		return nil, ErrSeatCapExceeded
	}

	eventSlot, err := s.loadSlot(ctx, b.EventSlotID)
	if err != nil {
		return nil, err
	}
	if !eventSlot.StartAt.After(time.Now()) {
		return nil, ErrEventStarted
	}

	additional := eventSlot.PricePerSeat * int64(req.Seats)

	if err := s.inventory.Reserve(ctx, eventSlot.ID, req.Seats); err != nil {
		if errors.Is(err, slot.ErrNotEnoughSeats) {
			return nil, ErrNotEnoughSeats
		}
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Booking{}).
			Where("id = ? AND status IN ?", bookingID, []domain.BookingStatus{domain.BookingPaymentPending, domain.BookingConfirmed}).
			Updates(map[string]interface{}{
				"seats":        gorm.Expr("seats + ?", req.Seats),
				"amount_total": gorm.Expr("amount_total + ?", additional),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInvalidTransition
		}

		rows := rosterRows(req.Roster, false)
		for i := range rows {
			rows[i].BookingID = bookingID
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		if relErr := s.inventory.Release(ctx, eventSlot.ID, req.Seats); relErr != nil {
			log.Printf("level=error msg=add-guests compensation failed reconcile=true booking_id=%d slot_id=%d seats=%d err=%v", bookingID, eventSlot.ID, req.Seats, relErr)
		}
		return nil, err
	}

	return s.GetByID(ctx, bookingID)
}

// Cancel is idempotent: a second cancel returns the recorded refund outcome
// without touching seats or money again. Exactly-once seat release is
// guaranteed by the guarded terminal transition, which only one caller can
// win. The refund and the release are sized from a re-read taken after that
// transition: add-guests only admits live bookings, so CANCELLED is what
// freezes seats and amount_total, and the first read may be stale by then.
func (s *Service) Cancel(ctx context.Context, actorID, bookingID int64, reason string) (*domain.Booking, error) {
	b, err := s.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.GuestID != actorID {
		return nil, ErrForbidden
	}
	if b.Status == domain.BookingCancelled {
		return b, nil
	}
	if b.Status == domain.BookingCompleted {
		return nil, ErrInvalidTransition
	}

	eventSlot, err := s.loadSlot(ctx, b.EventSlotID)
	if err != nil {
		return nil, err
	}

	hours := refund.HoursUntil(eventSlot.StartAt, time.Now())
	if _, _, err := refund.For(b.AmountTotal, hours); err != nil {
		if errors.Is(err, refund.ErrEventStarted) {
			return nil, ErrEventStarted
		}
		return nil, err
	}

	now := time.Now()
	res := s.db.WithContext(ctx).Model(&domain.Booking{}).
		Where("id = ? AND status IN ?", bookingID, []domain.BookingStatus{domain.BookingPaymentPending, domain.BookingConfirmed}).
		Updates(map[string]interface{}{
			"status":              domain.BookingCancelled,
			"cancelled_at":        now,
			"cancellation_reason": reason,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// lost a race with another cancel; report its outcome
		b, err = s.GetByID(ctx, bookingID)
		if err != nil {
			return nil, err
		}
		if b.Status == domain.BookingCancelled {
			return b, nil
		}
		return nil, ErrInvalidTransition
	}

	// we won the guard; seats and amount_total can no longer move
	b, err = s.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	refundAmount, refundPct, _ := refund.For(b.AmountTotal, hours)
	if err := s.db.WithContext(ctx).Model(&domain.Booking{}).
		Where("id = ?", bookingID).
		Updates(map[string]interface{}{
			"refund_amount":     refundAmount,
			"refund_percentage": refundPct,
		}).Error; err != nil {
		log.Printf("level=error msg=refund record failed after cancel reconcile=true booking_id=%d amount=%d err=%v", bookingID, refundAmount, err)
	}

	if err := s.inventory.Release(ctx, b.EventSlotID, b.Seats); err != nil {
		log.Printf("level=error msg=seat release failed after cancel reconcile=true booking_id=%d slot_id=%d seats=%d err=%v", bookingID, b.EventSlotID, b.Seats, err)
	}

	if refundAmount > 0 {
		if _, err := s.ledger.Credit(ctx, b.GuestID, refundAmount, domain.TxnRefundCredit, "booking", strconv.FormatInt(bookingID, 10)); err != nil {
			log.Printf("level=error msg=refund credit failed after cancel reconcile=true booking_id=%d guest_id=%d amount=%d err=%v", bookingID, b.GuestID, refundAmount, err)
		}
	}

	if s.notifs != nil {
		_ = s.notifs.NotifyBookingCancelled(ctx, b.HostID, b.ID, b.EventSlotID, reason)
	}

	return s.GetByID(ctx, bookingID)
}

// CancelPreview reports what Cancel would refund right now, through the same
// policy function, with no side effects.
func (s *Service) CancelPreview(ctx context.Context, actorID, bookingID int64) (*CancelPreview, error) {
	b, err := s.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.GuestID != actorID {
		return nil, ErrForbidden
	}

	eventSlot, err := s.loadSlot(ctx, b.EventSlotID)
	if err != nil {
		return nil, err
	}

	hours := refund.HoursUntil(eventSlot.StartAt, time.Now())
	preview := &CancelPreview{HoursUntilEvent: hours}

	if b.Status == domain.BookingCancelled || b.Status == domain.BookingCompleted {
		return preview, nil
	}

	refundAmount, refundPct, err := refund.For(b.AmountTotal, hours)
	if err != nil {
		// event started: cancellation no longer possible
		return preview, nil
	}

	preview.CanCancel = true
	preview.RefundAmount = refundAmount
	preview.RefundPercentage = refundPct
	return preview, nil
}

// Confirm records the external payment confirmation: PAYMENT_PENDING ->
// CONFIRMED. The gateway protocol itself is out of scope; only the amount
// and reference pass through.
func (s *Service) Confirm(ctx context.Context, actorID, bookingID int64) (*domain.Booking, error) {
	b, err := s.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.GuestID != actorID {
		return nil, ErrForbidden
	}

	res := s.db.WithContext(ctx).Model(&domain.Booking{}).
		Where("id = ? AND status = ?", bookingID, domain.BookingPaymentPending).
		Update("status", domain.BookingConfirmed)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrInvalidTransition
	}
	return s.GetByID(ctx, bookingID)
}

// CheckIn records the guest's arrival. Allowed only from shortly before the
// event starts until it ends; it never touches seat counts.
func (s *Service) CheckIn(ctx context.Context, hostID, bookingID int64) (*domain.Booking, error) {
	b, err := s.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.HostID != hostID {
		return nil, ErrForbidden
	}
	if b.Status != domain.BookingConfirmed {
		return nil, ErrInvalidTransition
	}
	if b.CheckedInAt != nil {
		return b, nil
	}

	eventSlot, err := s.loadSlot(ctx, b.EventSlotID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if now.Before(eventSlot.StartAt.Add(-s.checkInWindow)) || now.After(eventSlot.EndAt) {
		return nil, ErrOutsideWindow
	}

	if err := s.db.WithContext(ctx).Model(&domain.Booking{}).
		Where("id = ?", bookingID).
		Update("checked_in_at", now).Error; err != nil {
		return nil, err
	}

	if s.notifs != nil {
		_ = s.notifs.NotifyBookingCheckedIn(ctx, b.GuestID, bookingID)
	}

	return s.GetByID(ctx, bookingID)
}

// Complete settles a confirmed booking after the event ended and credits the
// host's wallet with the booking amount.
func (s *Service) Complete(ctx context.Context, hostID, bookingID int64) (*domain.Booking, error) {
	b, err := s.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.HostID != hostID {
		return nil, ErrForbidden
	}

	eventSlot, err := s.loadSlot(ctx, b.EventSlotID)
	if err != nil {
		return nil, err
	}
	if time.Now().Before(eventSlot.EndAt) {
		return nil, ErrEventNotEnded
	}

	res := s.db.WithContext(ctx).Model(&domain.Booking{}).
		Where("id = ? AND status = ?", bookingID, domain.BookingConfirmed).
		Update("status", domain.BookingCompleted)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrInvalidTransition
	}

	if _, err := s.ledger.Credit(ctx, b.HostID, b.AmountTotal, domain.TxnHostEarning, "booking", strconv.FormatInt(bookingID, 10)); err != nil {
		log.Printf("level=error msg=host payout credit failed reconcile=true booking_id=%d host_id=%d amount=%d err=%v", bookingID, b.HostID, b.AmountTotal, err)
	}

	return s.GetByID(ctx, bookingID)
}

// CancelForDispute cancels a still-confirmed booking as part of a dispute
// resolution. The refund amount is the admin's override, recorded as-is; the
// time-based policy is not consulted. Seats go back through the same release
// path as a guest cancellation. A booking no longer CONFIRMED is left alone.
func (s *Service) CancelForDispute(ctx context.Context, bookingID, refundAmount int64) error {
	if _, err := s.GetByID(ctx, bookingID); err != nil {
		return err
	}

	now := time.Now()
	res := s.db.WithContext(ctx).Model(&domain.Booking{}).
		Where("id = ? AND status = ?", bookingID, domain.BookingConfirmed).
		Updates(map[string]interface{}{
			"status":              domain.BookingCancelled,
			"refund_amount":       refundAmount,
			"cancelled_at":        now,
			"cancellation_reason": "dispute resolution",
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return nil
	}

	// re-read after the guard: the frozen seats/amount are the ones to use
	b, err := s.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}

	refundPct := 0
	if b.AmountTotal > 0 {
		refundPct = int(refundAmount * 100 / b.AmountTotal)
	}
	if err := s.db.WithContext(ctx).Model(&domain.Booking{}).
		Where("id = ?", bookingID).
		Update("refund_percentage", refundPct).Error; err != nil {
		log.Printf("level=error msg=refund record failed after dispute cancel reconcile=true booking_id=%d err=%v", bookingID, err)
	}

	if err := s.inventory.Release(ctx, b.EventSlotID, b.Seats); err != nil {
		log.Printf("level=error msg=seat release failed after dispute cancel reconcile=true booking_id=%d slot_id=%d seats=%d err=%v", bookingID, b.EventSlotID, b.Seats, err)
	}
	return nil
}

// CancelSlot retires a host's slot and cancels every live booking on it with
// a full refund. Host-initiated, so the time-based policy does not apply.
// Seats are not released: the slot is cancelled, its capacity is moot.
func (s *Service) CancelSlot(ctx context.Context, hostID, slotID int64) error {
	if err := s.inventory.Cancel(ctx, slotID, hostID); err != nil {
		return err
	}

	var live []domain.Booking
	if err := s.db.WithContext(ctx).
		Where("event_slot_id = ? AND status IN ?", slotID, []domain.BookingStatus{domain.BookingPaymentPending, domain.BookingConfirmed}).
		Find(&live).Error; err != nil {
		return err
	}

	for i := range live {
		if err := s.cancelForHost(ctx, live[i].ID); err != nil {
			log.Printf("level=error msg=cascade cancel failed after slot cancel reconcile=true booking_id=%d slot_id=%d err=%v", live[i].ID, slotID, err)
		}
	}
	return nil
}

func (s *Service) cancelForHost(ctx context.Context, bookingID int64) error {
	now := time.Now()
	res := s.db.WithContext(ctx).Model(&domain.Booking{}).
		Where("id = ? AND status IN ?", bookingID, []domain.BookingStatus{domain.BookingPaymentPending, domain.BookingConfirmed}).
		Updates(map[string]interface{}{
			"status":              domain.BookingCancelled,
			"cancelled_at":        now,
			"cancellation_reason": "event cancelled by host",
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return nil
	}

	b, err := s.GetByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Model(&domain.Booking{}).
		Where("id = ?", bookingID).
		Updates(map[string]interface{}{
			"refund_amount":     b.AmountTotal,
			"refund_percentage": 100,
		}).Error; err != nil {
		return err
	}

	if b.AmountTotal > 0 {
		if _, err := s.ledger.Credit(ctx, b.GuestID, b.AmountTotal, domain.TxnRefundCredit, "booking", strconv.FormatInt(bookingID, 10)); err != nil {
			return err
		}
	}

	if s.notifs != nil {
		_ = s.notifs.NotifyBookingCancelled(ctx, b.HostID, b.ID, b.EventSlotID, "event cancelled by host")
	}
	return nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var b domain.Booking
	err := s.db.WithContext(ctx).Preload("Roster").First(&b, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (s *Service) ListMine(ctx context.Context, guestID int64, limit, offset int) ([]domain.Booking, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var bookings []domain.Booking
	err := s.db.WithContext(ctx).
		Preload("Roster").
		Preload("EventSlot").
		Where("guest_id = ?", guestID).
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&bookings).Error
	return bookings, err
}

func (s *Service) loadSlot(ctx context.Context, slotID int64) (*domain.EventSlot, error) {
	var eventSlot domain.EventSlot
	if err := s.db.WithContext(ctx).First(&eventSlot, slotID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, slot.ErrSlotNotFound
		}
		return nil, err
	}
	return &eventSlot, nil
}

func rosterRows(entries []RosterEntry, primaryFirst bool) []domain.BookingGuest {
	rows := make([]domain.BookingGuest, 0, len(entries))
	for i, e := range entries {
		rows = append(rows, domain.BookingGuest{
			Name:      e.Name,
			Phone:     e.Phone,
			Age:       e.Age,
			Gender:    e.Gender,
			IsPrimary: primaryFirst && i == 0,
		})
	}
	return rows
}
