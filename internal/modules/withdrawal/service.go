package withdrawal

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
	"supperclub/internal/modules/wallet"
)

// Ledger is the wallet surface a withdrawal needs: a balance check at
// request time, a hold on approval, and a settlement on payout.
type Ledger interface {
	GetOrCreate(ctx context.Context, userID int64) (*domain.Wallet, error)
	ReserveForWithdrawal(ctx context.Context, userID, amount int64, refID string) (*domain.Wallet, error)
	SettleWithdrawal(ctx context.Context, userID, amount int64, refID string) (*domain.Wallet, error)
}

// Notifier tells the host about status changes on their payout request.
// Best-effort: delivery failures never affect the transition.
type Notifier interface {
	NotifyWithdrawalUpdate(ctx context.Context, userID, withdrawalID int64, status domain.WithdrawalStatus) error
}

type Service struct {
	db     *gorm.DB
	ledger Ledger
	notifs Notifier
}

func NewService(db *gorm.DB, ledger Ledger, notifs Notifier) *Service {
	return &Service{db: db, ledger: ledger, notifs: notifs}
}

// Request opens a PENDING withdrawal. The balance check here is advisory:
// funds are only held when an admin approves.
func (s *Service) Request(ctx context.Context, userID, amount int64) (*domain.Withdrawal, error) {
	if amount <= 0 {
		return nil, ErrValidation
	}
	w, err := s.ledger.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if w.Balance < amount {
		return nil, ErrInsufficientFunds
	}

	wd := &domain.Withdrawal{
		UserID: userID,
		Amount: amount,
		Status: domain.WithdrawalPending,
	}
	if err := s.db.WithContext(ctx).Create(wd).Error; err != nil {
		return nil, err
	}
	return wd, nil
}

// Approve moves PENDING -> APPROVED and holds the amount on the host wallet.
// The status flips first so two admins cannot both reserve; if the wallet
// turns out short the transition is rolled back and the request stays PENDING.
func (s *Service) Approve(ctx context.Context, adminID, withdrawalID int64) (*domain.Withdrawal, error) {
	wd, err := s.GetByID(ctx, withdrawalID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	res := s.db.WithContext(ctx).Model(&domain.Withdrawal{}).
		Where("id = ? AND status = ?", withdrawalID, domain.WithdrawalPending).
		Updates(map[string]interface{}{
			"status":      domain.WithdrawalApproved,
			"approved_at": now,
			"approved_by": adminID,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrInvalidTransition
	}

	if _, err := s.ledger.ReserveForWithdrawal(ctx, wd.UserID, wd.Amount, strconv.FormatInt(withdrawalID, 10)); err != nil {
		revert := s.db.WithContext(ctx).Model(&domain.Withdrawal{}).
			Where("id = ? AND status = ?", withdrawalID, domain.WithdrawalApproved).
			Updates(map[string]interface{}{
				"status":      domain.WithdrawalPending,
				"approved_at": nil,
				"approved_by": nil,
			})
		if revert.Error != nil {
			log.Printf("level=error msg=withdrawal approve revert failed reconcile=true withdrawal_id=%d err=%v", withdrawalID, revert.Error)
		}
		if errors.Is(err, wallet.ErrInsufficientFunds) {
			return nil, ErrInsufficientFunds
		}
		return nil, err
	}

	s.audit(ctx, adminID, "withdrawal.approve", withdrawalID,
		fmt.Sprintf("approved payout of %d for user %d", wd.Amount, wd.UserID))
	if s.notifs != nil {
		_ = s.notifs.NotifyWithdrawalUpdate(ctx, wd.UserID, withdrawalID, domain.WithdrawalApproved)
	}
	return s.GetByID(ctx, withdrawalID)
}

// Reject moves PENDING -> REJECTED. No money moves.
func (s *Service) Reject(ctx context.Context, adminID, withdrawalID int64, reason string) (*domain.Withdrawal, error) {
	if reason == "" {
		return nil, ErrValidation
	}
	wd, err := s.GetByID(ctx, withdrawalID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	res := s.db.WithContext(ctx).Model(&domain.Withdrawal{}).
		Where("id = ? AND status = ?", withdrawalID, domain.WithdrawalPending).
		Updates(map[string]interface{}{
			"status":           domain.WithdrawalRejected,
			"rejected_at":      now,
			"rejected_by":      adminID,
			"rejection_reason": reason,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrInvalidTransition
	}

	s.audit(ctx, adminID, "withdrawal.reject", withdrawalID, reason)
	if s.notifs != nil {
		_ = s.notifs.NotifyWithdrawalUpdate(ctx, wd.UserID, withdrawalID, domain.WithdrawalRejected)
	}
	return s.GetByID(ctx, withdrawalID)
}

// MarkPaid moves APPROVED -> PAID and settles the held amount against the
// wallet, recording the external payment reference.
func (s *Service) MarkPaid(ctx context.Context, adminID, withdrawalID int64, paymentRef string) (*domain.Withdrawal, error) {
	if paymentRef == "" {
		return nil, ErrValidation
	}
	wd, err := s.GetByID(ctx, withdrawalID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	res := s.db.WithContext(ctx).Model(&domain.Withdrawal{}).
		Where("id = ? AND status = ?", withdrawalID, domain.WithdrawalApproved).
		Updates(map[string]interface{}{
			"status":            domain.WithdrawalPaid,
			"paid_at":           now,
			"paid_by":           adminID,
			"payment_reference": paymentRef,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrInvalidTransition
	}

	if _, err := s.ledger.SettleWithdrawal(ctx, wd.UserID, wd.Amount, strconv.FormatInt(withdrawalID, 10)); err != nil {
		revert := s.db.WithContext(ctx).Model(&domain.Withdrawal{}).
			Where("id = ? AND status = ?", withdrawalID, domain.WithdrawalPaid).
			Updates(map[string]interface{}{
				"status":            domain.WithdrawalApproved,
				"paid_at":           nil,
				"paid_by":           nil,
				"payment_reference": "",
			})
		if revert.Error != nil {
			log.Printf("level=error msg=withdrawal paid revert failed reconcile=true withdrawal_id=%d err=%v", withdrawalID, revert.Error)
		}
		return nil, err
	}

	s.audit(ctx, adminID, "withdrawal.mark_paid", withdrawalID,
		fmt.Sprintf("paid out %d via %s", wd.Amount, paymentRef))
	if s.notifs != nil {
		_ = s.notifs.NotifyWithdrawalUpdate(ctx, wd.UserID, withdrawalID, domain.WithdrawalPaid)
	}
	return s.GetByID(ctx, withdrawalID)
}

func (s *Service) GetByID(ctx context.Context, id int64) (*domain.Withdrawal, error) {
	var wd domain.Withdrawal
	if err := s.db.WithContext(ctx).First(&wd, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &wd, nil
}

func (s *Service) ListMine(ctx context.Context, userID int64) ([]domain.Withdrawal, error) {
	var rows []domain.Withdrawal
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

// ListByStatus returns the admin review queue; an empty status lists all.
func (s *Service) ListByStatus(ctx context.Context, status domain.WithdrawalStatus) ([]domain.Withdrawal, error) {
	q := s.db.WithContext(ctx).Model(&domain.Withdrawal{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var rows []domain.Withdrawal
	err := q.Order("created_at ASC").Find(&rows).Error
	return rows, err
}

// audit writes the admin trail row. A failed audit write never rolls back the
// money movement it describes; it is logged for reconciliation instead.
func (s *Service) audit(ctx context.Context, actorID int64, action string, targetID int64, description string) {
	row := &domain.AdminAction{
		ActorID:     actorID,
		Action:      action,
		TargetType:  "withdrawal",
		TargetID:    targetID,
		Description: description,
		Reference:   uuid.NewString(),
	}
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		log.Printf("level=error msg=admin audit write failed reconcile=true action=%s target_id=%d err=%v", action, targetID, err)
	}
}
