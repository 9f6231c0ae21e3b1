package wallet

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"crash-platform/internal/account"
	"crash-platform/internal/ledger"
	"crash-platform/internal/logger"
)

const (
	minDeposit    = 150
	maxDeposit    = 10000
	minWithdrawal = 200
	maxWithdrawal = 5000
)

// FirstDepositNotifier is how the referral engine learns about approved
// deposits.
type FirstDepositNotifier interface {
	OnFirstDeposit(uid int64, amount float64) error
}

type Audit interface {
	Log(uid int64, action string, metadata string)
}

type Service struct {
	db        *sql.DB
	accounts  *account.Service
	ledger    *ledger.Service
	referrals FirstDepositNotifier
	audit     Audit
}

func New(db *sql.DB, accounts *account.Service, ledgerService *ledger.Service, referrals FirstDepositNotifier, audit Audit) *Service {
	return &Service{
		db:        db,
		accounts:  accounts,
		ledger:    ledgerService,
		referrals: referrals,
		audit:     audit,
	}
}

// RequestDeposit opens a pending deposit. No funds move until an admin
// approves it.
func (s *Service) RequestDeposit(uid int64, amount float64, paymentRef string) (*ledger.Transaction, error) {
	if amount < minDeposit || amount > maxDeposit {
		return nil, account.ErrInvalidAmount
	}
	if _, err := s.accounts.Get(uid); err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}

	t, err := s.ledger.Record(tx, uid, ledger.KindDeposit, amount, ledger.StatusPending, paymentRef)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	return t, tx.Commit()
}

// RequestWithdrawal holds the funds immediately; a rejection refunds them.
func (s *Service) RequestWithdrawal(uid int64, amount float64, paymentRef string) (*ledger.Transaction, error) {
	if amount < minWithdrawal || amount > maxWithdrawal {
		return nil, account.ErrInvalidAmount
	}

	unlock := s.accounts.Lock(uid)
	defer unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}

	if err := s.accounts.DebitTx(tx, uid, amount); err != nil {
		tx.Rollback()
		return nil, err
	}

	t, err := s.ledger.Record(tx, uid, ledger.KindWithdrawal, amount, ledger.StatusPending, paymentRef)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	return t, tx.Commit()
}

// Approve finalizes a pending transaction. Deposits credit the account and
// may open a referral link; withdrawals were already held at request time.
func (s *Service) Approve(txID string) (*ledger.Transaction, error) {
	t, err := s.ledger.Get(txID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transaction: %w", err)
	}

	unlock := s.accounts.Lock(t.AccountID)
	defer unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}

	t, err = s.ledger.Resolve(tx, txID, ledger.StatusCompleted)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if t.Kind == ledger.KindDeposit {
		if err := s.accounts.CreditTx(tx, t.AccountID, t.Amount); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	if t.Kind == ledger.KindDeposit && s.referrals != nil {
		if err := s.referrals.OnFirstDeposit(t.AccountID, t.Amount); err != nil {
			logger.Log.Error("referral link creation failed",
				zap.Int64("uid", t.AccountID), zap.Error(err))
		}
	}

	if s.audit != nil {
		s.audit.Log(t.AccountID, "tx_approve", string(t.Kind)+":"+t.ID)
	}

	logger.Log.Info("transaction approved",
		zap.String("tx", t.ID), zap.String("kind", string(t.Kind)), zap.Float64("amount", t.Amount))

	return t, nil
}

// Reject fails a pending transaction. Held withdrawal funds go back to the
// account; deposits never moved money so nothing is refunded.
func (s *Service) Reject(txID string) (*ledger.Transaction, error) {
	t, err := s.ledger.Get(txID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transaction: %w", err)
	}

	unlock := s.accounts.Lock(t.AccountID)
	defer unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}

	t, err = s.ledger.Resolve(tx, txID, ledger.StatusFailed)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if t.Kind == ledger.KindWithdrawal {
		if err := s.accounts.CreditTx(tx, t.AccountID, t.Amount); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	if s.audit != nil {
		s.audit.Log(t.AccountID, "tx_reject", string(t.Kind)+":"+t.ID)
	}

	logger.Log.Info("transaction rejected",
		zap.String("tx", t.ID), zap.String("kind", string(t.Kind)), zap.Float64("amount", t.Amount))

	return t, nil
}

func (s *Service) Transactions(uid int64, limit int) ([]ledger.Transaction, error) {
	return s.ledger.ListByAccount(uid, limit)
}

func (s *Service) Pending() ([]ledger.Transaction, error) {
	return s.ledger.ListPending()
}
