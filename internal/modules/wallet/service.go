package wallet

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"supperclub/internal/domain"
)

// Service owns per-user balances and the append-only history behind them.
// Every balance mutation is a guarded UPDATE plus exactly one history row,
// committed together; a failed guard is a typed rejection, never a partial
// write.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// GetOrCreate returns the user's wallet, creating an empty one on first
// touch. Lazy initialization, not a precondition failure.
func (s *Service) GetOrCreate(ctx context.Context, userID int64) (*domain.Wallet, error) {
	wallet, err := s.getByUserID(ctx, userID)
	if err == nil {
		return wallet, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	wallet = &domain.Wallet{UserID: userID}
	if err := s.db.WithContext(ctx).Create(wallet).Error; err != nil {
		if isUniqueConstraintError(err) {
			return s.getByUserID(ctx, userID)
		}
		return nil, err
	}
	return wallet, nil
}

// Credit adds amount to the spendable balance. HOST_EARNING credits also
// grow total_earned.
func (s *Service) Credit(ctx context.Context, userID, amount int64, txnType domain.WalletTransactionType, refType, refID string) (*domain.Wallet, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	var wallet domain.Wallet
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		w, err := getOrCreateTx(tx, userID)
		if err != nil {
			return err
		}

		updates := map[string]interface{}{
			"balance": gorm.Expr("balance + ?", amount),
		}
		if txnType == domain.TxnHostEarning {
			updates["total_earned"] = gorm.Expr("total_earned + ?", amount)
		}
		if err := tx.Model(&domain.Wallet{}).Where("id = ?", w.ID).Updates(updates).Error; err != nil {
			return err
		}
		if err := tx.First(&wallet, w.ID).Error; err != nil {
			return err
		}

		return appendHistory(tx, &wallet, txnType, amount, refType, refID)
	})
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

// Debit removes amount from the spendable balance, guarded by balance >=
// amount. A missing wallet is an empty wallet and fails the same guard.
func (s *Service) Debit(ctx context.Context, userID, amount int64, txnType domain.WalletTransactionType, refType, refID string) (*domain.Wallet, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	var wallet domain.Wallet
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Wallet{}).
			Where("user_id = ? AND balance >= ?", userID, amount).
			Update("balance", gorm.Expr("balance - ?", amount))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInsufficientFunds
		}
		if err := tx.Where("user_id = ?", userID).First(&wallet).Error; err != nil {
			return err
		}

		return appendHistory(tx, &wallet, txnType, -amount, refType, refID)
	})
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

// ReserveForWithdrawal moves amount from the spendable balance into the
// pending balance ahead of a payout.
func (s *Service) ReserveForWithdrawal(ctx context.Context, userID, amount int64, refID string) (*domain.Wallet, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	var wallet domain.Wallet
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Wallet{}).
			Where("user_id = ? AND balance >= ?", userID, amount).
			Updates(map[string]interface{}{
				"balance":         gorm.Expr("balance - ?", amount),
				"pending_balance": gorm.Expr("pending_balance + ?", amount),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInsufficientFunds
		}
		if err := tx.Where("user_id = ?", userID).First(&wallet).Error; err != nil {
			return err
		}

		return appendHistory(tx, &wallet, domain.TxnWithdrawalApproved, -amount, "withdrawal", refID)
	})
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

// SettleWithdrawal clears the pending hold and counts it as withdrawn. The
// spendable balance is untouched, so the history row carries a zero signed
// amount and equal before/after.
func (s *Service) SettleWithdrawal(ctx context.Context, userID, amount int64, refID string) (*domain.Wallet, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	var wallet domain.Wallet
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Wallet{}).
			Where("user_id = ? AND pending_balance >= ?", userID, amount).
			Updates(map[string]interface{}{
				"pending_balance": gorm.Expr("pending_balance - ?", amount),
				"total_withdrawn": gorm.Expr("total_withdrawn + ?", amount),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInsufficientFunds
		}
		if err := tx.Where("user_id = ?", userID).First(&wallet).Error; err != nil {
			return err
		}

		return appendHistory(tx, &wallet, domain.TxnWithdrawalPaid, 0, "withdrawal", refID)
	})
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

func (s *Service) History(ctx context.Context, userID int64) ([]domain.WalletHistory, error) {
	var rows []domain.WalletHistory
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id DESC").
		Find(&rows).Error
	return rows, err
}

// Replay recomputes the spendable balance from the signed history amounts.
// The reconciliation job compares it against the stored balance.
func (s *Service) Replay(ctx context.Context, userID int64) (int64, error) {
	var sum int64
	err := s.db.WithContext(ctx).
		Model(&domain.WalletHistory{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&sum).Error
	return sum, err
}

func (s *Service) getByUserID(ctx context.Context, userID int64) (*domain.Wallet, error) {
	var wallet domain.Wallet
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&wallet).Error; err != nil {
		return nil, err
	}
	return &wallet, nil
}

func getOrCreateTx(tx *gorm.DB, userID int64) (*domain.Wallet, error) {
	var wallet domain.Wallet
	err := tx.Where("user_id = ?", userID).First(&wallet).Error
	if err == nil {
		return &wallet, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	wallet = domain.Wallet{UserID: userID}
	if err := tx.Create(&wallet).Error; err != nil {
		if isUniqueConstraintError(err) {
			if err := tx.Where("user_id = ?", userID).First(&wallet).Error; err != nil {
				return nil, err
			}
			return &wallet, nil
		}
		return nil, err
	}
	return &wallet, nil
}

// appendHistory writes the single audit row that accompanies a balance
// mutation. It runs inside the caller's transaction: if the row cannot be
// written the balance change rolls back with it, so a balance without its
// audit trail can never be committed.
func appendHistory(tx *gorm.DB, w *domain.Wallet, txnType domain.WalletTransactionType, signedAmount int64, refType, refID string) error {
	row := domain.WalletHistory{
		WalletID:      w.ID,
		UserID:        w.UserID,
		Type:          txnType,
		Amount:        signedAmount,
		BalanceBefore: w.Balance - signedAmount,
		BalanceAfter:  w.Balance,
		ReferenceType: refType,
		ReferenceID:   refID,
	}
	return tx.Create(&row).Error
}

func isUniqueConstraintError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique constraint") || strings.Contains(msg, "unique failed")
}
