package ledger

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	KindDeposit       Kind = "deposit"
	KindWithdrawal    Kind = "withdrawal"
	KindBet           Kind = "bet"
	KindWin           Kind = "win"
	KindLoss          Kind = "loss"
	KindReferralBonus Kind = "referral-bonus"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

var ErrNotPending = errors.New("transaction is not pending")

type Transaction struct {
	ID         string  `json:"id"`
	AccountID  int64   `json:"account_id"`
	Kind       Kind    `json:"kind"`
	Amount     float64 `json:"amount"`
	Status     Status  `json:"status"`
	PaymentRef string  `json:"payment_ref,omitempty"`
	CreatedAt  int64   `json:"created_at"`
}

// Service owns the append-only transaction log. Rows are only ever inserted
// or moved out of pending exactly once.
type Service struct {
	db *sql.DB
}

func New(db *sql.DB) *Service {
	return &Service{db: db}
}

// Record appends a transaction inside the caller's sql transaction so the
// log row and the balance change it describes commit together.
func (s *Service) Record(tx *sql.Tx, accountID int64, kind Kind, amount float64, status Status, paymentRef string) (*Transaction, error) {
	t := &Transaction{
		ID:         uuid.New().String(),
		AccountID:  accountID,
		Kind:       kind,
		Amount:     amount,
		Status:     status,
		PaymentRef: paymentRef,
		CreatedAt:  time.Now().Unix(),
	}

	_, err := tx.Exec(`
	INSERT INTO transactions(id,account_id,kind,amount,status,payment_ref,created_at)
	VALUES (?,?,?,?,?,?,?)
	`, t.ID, t.AccountID, t.Kind, t.Amount, t.Status, t.PaymentRef, t.CreatedAt)

	if err != nil {
		return nil, err
	}
	return t, nil
}

// Resolve flips a pending row to its final status. Returns ErrNotPending if
// the row was already decided, so approve/reject can never double-apply.
func (s *Service) Resolve(tx *sql.Tx, id string, to Status) (*Transaction, error) {
	t, err := get(tx, id)
	if err != nil {
		return nil, err
	}
	if t.Status != StatusPending {
		return nil, ErrNotPending
	}

	if _, err := tx.Exec(`UPDATE transactions SET status=? WHERE id=? AND status=?`,
		to, id, StatusPending); err != nil {
		return nil, err
	}

	t.Status = to
	return t, nil
}

func (s *Service) Get(id string) (*Transaction, error) {
	return get(s.db, id)
}

type rowQuerier interface {
	QueryRow(query string, args ...interface{}) *sql.Row
}

func get(q rowQuerier, id string) (*Transaction, error) {
	t := &Transaction{}
	err := q.QueryRow(`
	SELECT id, account_id, kind, amount, status, payment_ref, created_at
	FROM transactions WHERE id=?
	`, id).Scan(&t.ID, &t.AccountID, &t.Kind, &t.Amount, &t.Status, &t.PaymentRef, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) ListByAccount(accountID int64, limit int) ([]Transaction, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.list(`
	SELECT id, account_id, kind, amount, status, payment_ref, created_at
	FROM transactions WHERE account_id=? ORDER BY created_at DESC LIMIT ?
	`, accountID, limit)
}

func (s *Service) ListPending() ([]Transaction, error) {
	return s.list(`
	SELECT id, account_id, kind, amount, status, payment_ref, created_at
	FROM transactions WHERE status=? ORDER BY created_at
	`, StatusPending)
}

func (s *Service) list(query string, args ...interface{}) ([]Transaction, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		t := Transaction{}
		if err := rows.Scan(&t.ID, &t.AccountID, &t.Kind, &t.Amount, &t.Status, &t.PaymentRef, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
