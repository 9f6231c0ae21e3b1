package account

import (
	"database/sql"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"crash-platform/internal/ledger"
	"crash-platform/internal/logger"
	"crash-platform/internal/monitoring"
)

const welcomeBonus = 100

// TurnoverSink receives wager turnover deltas. The referral engine plugs in
// here so the account layer never has to know about links or bonuses.
type TurnoverSink interface {
	OnTurnover(uid int64, amount float64)
}

type Service struct {
	db     *sql.DB
	ledger *ledger.Service
	sink   TurnoverSink
	locks  sync.Map // uid -> *sync.Mutex
}

func New(db *sql.DB, ledgerService *ledger.Service) *Service {
	return &Service{db: db, ledger: ledgerService}
}

func (s *Service) SetTurnoverSink(sink TurnoverSink) {
	s.sink = sink
}

// Lock serializes balance mutations for one account. Callers hold the
// returned unlock across their whole sql transaction.
func (s *Service) Lock(uid int64) func() {
	v, _ := s.locks.LoadOrStore(uid, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// Create registers an account, resolves an optional inbound referral code and
// credits the welcome bonus as a completed deposit.
func (s *Service) Create(username, referralCode string) (*Account, error) {
	var referredBy *int64
	if referralCode != "" {
		ref, err := s.GetByReferralCode(strings.ToUpper(referralCode))
		if err != nil {
			return nil, ErrInvalidReferralCode
		}
		referredBy = &ref.ID
	}

	code, err := s.generateReferralCode(username)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}

	now := time.Now().Unix()
	res, err := tx.Exec(`
	INSERT INTO accounts(username,balance,referral_code,referred_by,is_active,created_at)
	VALUES (?,?,?,?,1,?)
	`, username, float64(welcomeBonus), code, referredBy, now)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	uid, err := res.LastInsertId()
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	if _, err := s.ledger.Record(tx, uid, ledger.KindDeposit, welcomeBonus, ledger.StatusCompleted, "welcome-bonus"); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	logger.Log.Info("account created",
		zap.Int64("uid", uid),
		zap.String("username", username),
		zap.String("referral_code", code))

	return s.Get(uid)
}

func (s *Service) generateReferralCode(username string) (string, error) {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	prefix := strings.ToUpper(username)
	if len(prefix) > 4 {
		prefix = prefix[:4]
	}

	for i := 0; i < 20; i++ {
		suffix := make([]byte, 4)
		for j := range suffix {
			suffix[j] = letters[rand.Intn(len(letters))]
		}
		code := prefix + string(suffix)

		var exists int
		err := s.db.QueryRow(`SELECT COUNT(1) FROM accounts WHERE referral_code=?`, code).Scan(&exists)
		if err != nil {
			return "", err
		}
		if exists == 0 {
			return code, nil
		}
	}
	return "", fmt.Errorf("failed to generate unique referral code for %q", username)
}

func (s *Service) Get(uid int64) (*Account, error) {
	return s.scanOne(`SELECT id, username, balance, total_won, total_lost, games_played,
		turnover, referral_code, referred_by, referral_bonus_earned, is_active, created_at
		FROM accounts WHERE id=?`, uid)
}

func (s *Service) GetByReferralCode(code string) (*Account, error) {
	return s.scanOne(`SELECT id, username, balance, total_won, total_lost, games_played,
		turnover, referral_code, referred_by, referral_bonus_earned, is_active, created_at
		FROM accounts WHERE referral_code=?`, code)
}

func (s *Service) scanOne(query string, arg interface{}) (*Account, error) {
	a := &Account{}
	err := s.db.QueryRow(query, arg).Scan(
		&a.ID, &a.Username, &a.Balance, &a.TotalWon, &a.TotalLost, &a.GamesPlayed,
		&a.Turnover, &a.ReferralCode, &a.ReferredBy, &a.ReferralBonusEarned, &a.IsActive, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrUnknownAccount
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// DebitTx removes funds inside the caller's transaction. The balance guard is
// part of the UPDATE itself so a balance can never go negative.
func (s *Service) DebitTx(tx *sql.Tx, uid int64, amount float64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	res, err := tx.Exec(`
	UPDATE accounts SET balance = balance - ?
	WHERE id=? AND balance >= ?
	`, amount, uid, amount)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var exists int
		if err := tx.QueryRow(`SELECT COUNT(1) FROM accounts WHERE id=?`, uid).Scan(&exists); err != nil {
			return err
		}
		if exists == 0 {
			return ErrUnknownAccount
		}
		return ErrInsufficientFunds
	}

	monitoring.BalanceUpdates.Inc()
	return nil
}

func (s *Service) CreditTx(tx *sql.Tx, uid int64, amount float64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	res, err := tx.Exec(`UPDATE accounts SET balance = balance + ? WHERE id=?`, amount, uid)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUnknownAccount
	}

	monitoring.BalanceUpdates.Inc()
	return nil
}

// AddStats folds a settled bet into the account's lifetime counters.
func (s *Service) AddStats(uid int64, won, lost float64) error {
	_, err := s.db.Exec(`
	UPDATE accounts SET total_won = total_won + ?, total_lost = total_lost + ?,
		games_played = games_played + 1
	WHERE id=?
	`, won, lost, uid)
	return err
}

// AddTurnover bumps cumulative wager volume and forwards the delta to the
// referral engine.
func (s *Service) AddTurnover(uid int64, amount float64) error {
	_, err := s.db.Exec(`UPDATE accounts SET turnover = turnover + ? WHERE id=?`, amount, uid)
	if err != nil {
		return err
	}
	if s.sink != nil {
		s.sink.OnTurnover(uid, amount)
	}
	return nil
}

// AddReferralBonusTx credits a paid-out bonus to the referrer inside the
// caller's transaction.
func (s *Service) AddReferralBonusTx(tx *sql.Tx, uid int64, amount float64) error {
	if err := s.CreditTx(tx, uid, amount); err != nil {
		return err
	}
	_, err := tx.Exec(`UPDATE accounts SET referral_bonus_earned = referral_bonus_earned + ? WHERE id=?`, amount, uid)
	return err
}
