package referral

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"crash-platform/internal/account"
	"crash-platform/internal/event"
	"crash-platform/internal/ledger"
	"crash-platform/internal/logger"
)

// A referred player's first approved deposit opens a link; the bonus equals
// that deposit and unlocks once they wager ten times it.
const turnoverMultiple = 10

type Service struct {
	db       *sql.DB
	accounts *account.Service
	ledger   *ledger.Service
	bus      *event.Bus
}

func New(db *sql.DB, accounts *account.Service, ledgerService *ledger.Service, bus *event.Bus) *Service {
	return &Service{db: db, accounts: accounts, ledger: ledgerService, bus: bus}
}

// OnFirstDeposit opens a link for a referred account. The UNIQUE constraint
// on referred_id makes repeat deposits a no-op.
func (s *Service) OnFirstDeposit(uid int64, amount float64) error {
	a, err := s.accounts.Get(uid)
	if err != nil {
		return err
	}
	if a.ReferredBy == nil {
		return nil
	}

	_, err = s.db.Exec(`
	INSERT OR IGNORE INTO referrals(id,referrer_id,referred_id,first_deposit,required_turnover,bonus_amount,created_at)
	VALUES (?,?,?,?,?,?,?)
	`, uuid.New().String(), *a.ReferredBy, uid, amount, amount*turnoverMultiple, amount, time.Now().Unix())

	return err
}

// OnTurnover accumulates wager volume against the player's unpaid link and
// settles the bonus once the threshold is crossed. Settlement happens at most
// once: the paid flag is flipped by a conditional UPDATE inside the same
// transaction that credits the referrer.
func (s *Service) OnTurnover(uid int64, amount float64) {
	link, err := s.unpaidLink(uid)
	if err != nil {
		if err != sql.ErrNoRows {
			logger.Log.Error("referral lookup failed", zap.Int64("uid", uid), zap.Error(err))
		}
		return
	}

	if _, err := s.db.Exec(`UPDATE referrals SET current_turnover = current_turnover + ? WHERE id=? AND paid=0`,
		amount, link.ID); err != nil {
		logger.Log.Error("referral turnover update failed", zap.String("link", link.ID), zap.Error(err))
		return
	}
	link.CurrentTurnover += amount

	if link.CurrentTurnover < link.RequiredTurnover {
		return
	}

	if err := s.settle(link); err != nil {
		logger.Log.Error("referral settlement failed", zap.String("link", link.ID), zap.Error(err))
	}
}

func (s *Service) settle(link *Link) error {
	unlock := s.accounts.Lock(link.ReferrerID)
	defer unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}

	now := time.Now().Unix()
	res, err := tx.Exec(`UPDATE referrals SET paid=1, completed_at=? WHERE id=? AND paid=0`, now, link.ID)
	if err != nil {
		tx.Rollback()
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		tx.Rollback()
		return err
	}
	if n == 0 {
		// Another settlement won the race; nothing to pay.
		tx.Rollback()
		return nil
	}

	if err := s.accounts.AddReferralBonusTx(tx, link.ReferrerID, link.BonusAmount); err != nil {
		tx.Rollback()
		return err
	}

	if _, err := s.ledger.Record(tx, link.ReferrerID, ledger.KindReferralBonus, link.BonusAmount, ledger.StatusCompleted, link.ID); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	logger.Log.Info("referral bonus paid",
		zap.String("link", link.ID),
		zap.Int64("referrer", link.ReferrerID),
		zap.Float64("bonus", link.BonusAmount))

	if s.bus != nil {
		s.bus.Publish(event.EventReferralPaid, link)
	}
	return nil
}

func (s *Service) unpaidLink(referredID int64) (*Link, error) {
	l := &Link{}
	err := s.db.QueryRow(`
	SELECT id, referrer_id, referred_id, first_deposit, required_turnover,
		current_turnover, bonus_amount, paid, created_at, completed_at
	FROM referrals WHERE referred_id=? AND paid=0
	`, referredID).Scan(&l.ID, &l.ReferrerID, &l.ReferredID, &l.FirstDeposit,
		&l.RequiredTurnover, &l.CurrentTurnover, &l.BonusAmount, &l.Paid, &l.CreatedAt, &l.CompletedAt)
	if err != nil {
		return nil, err
	}
	return l, nil
}

// Status lists the links a referrer has opened, most recent first.
func (s *Service) Status(referrerID int64) ([]Link, error) {
	rows, err := s.db.Query(`
	SELECT id, referrer_id, referred_id, first_deposit, required_turnover,
		current_turnover, bonus_amount, paid, created_at, completed_at
	FROM referrals WHERE referrer_id=? ORDER BY created_at DESC
	`, referrerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Link
	for rows.Next() {
		l := Link{}
		if err := rows.Scan(&l.ID, &l.ReferrerID, &l.ReferredID, &l.FirstDeposit,
			&l.RequiredTurnover, &l.CurrentTurnover, &l.BonusAmount, &l.Paid, &l.CreatedAt, &l.CompletedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
