package account

import (
	"database/sql"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"crash-platform/internal/db"
	"crash-platform/internal/ledger"
	"crash-platform/internal/logger"
)

func newTestService(t *testing.T) (*Service, *sql.DB) {
	t.Helper()
	logger.Init()

	conn, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	conn.SetMaxOpenConns(1)
	db.Migrate(conn)
	t.Cleanup(func() { conn.Close() })

	return New(conn, ledger.New(conn)), conn
}

func TestCreateWithWelcomeBonus(t *testing.T) {
	s, conn := newTestService(t)

	a, err := s.Create("alice", "")
	require.NoError(t, err)
	require.InDelta(t, 100, a.Balance, 1e-9)
	require.True(t, a.IsActive)
	require.True(t, strings.HasPrefix(a.ReferralCode, "ALIC"))
	require.Len(t, a.ReferralCode, 8)
	require.Nil(t, a.ReferredBy)

	var kind, status string
	var amount float64
	err = conn.QueryRow(`SELECT kind, status, amount FROM transactions WHERE account_id=?`, a.ID).
		Scan(&kind, &status, &amount)
	require.NoError(t, err)
	require.Equal(t, "deposit", kind)
	require.Equal(t, "completed", status)
	require.InDelta(t, 100, amount, 1e-9)
}

func TestCreateWithReferralCode(t *testing.T) {
	s, _ := newTestService(t)

	referrer, err := s.Create("alice", "")
	require.NoError(t, err)

	_, err = s.Create("bob", "NOSUCHCODE")
	require.ErrorIs(t, err, ErrInvalidReferralCode)

	b, err := s.Create("bob", strings.ToLower(referrer.ReferralCode))
	require.NoError(t, err)
	require.NotNil(t, b.ReferredBy)
	require.Equal(t, referrer.ID, *b.ReferredBy)
}

func TestDebitCredit(t *testing.T) {
	s, conn := newTestService(t)
	a, err := s.Create("alice", "")
	require.NoError(t, err)

	tx, err := conn.Begin()
	require.NoError(t, err)
	require.NoError(t, s.DebitTx(tx, a.ID, 40))
	require.NoError(t, tx.Commit())

	got, err := s.Get(a.ID)
	require.NoError(t, err)
	require.InDelta(t, 60, got.Balance, 1e-9)

	tx, err = conn.Begin()
	require.NoError(t, err)
	require.ErrorIs(t, s.DebitTx(tx, a.ID, 100), ErrInsufficientFunds)
	tx.Rollback()

	got, err = s.Get(a.ID)
	require.NoError(t, err)
	require.InDelta(t, 60, got.Balance, 1e-9, "failed debit must not move funds")

	tx, err = conn.Begin()
	require.NoError(t, err)
	require.ErrorIs(t, s.DebitTx(tx, 999, 10), ErrUnknownAccount)
	require.ErrorIs(t, s.CreditTx(tx, 999, 10), ErrUnknownAccount)
	require.ErrorIs(t, s.DebitTx(tx, a.ID, -5), ErrInvalidAmount)
	tx.Rollback()
}

type recordingSink struct {
	uid    int64
	amount float64
	calls  int
}

func (r *recordingSink) OnTurnover(uid int64, amount float64) {
	r.uid = uid
	r.amount = amount
	r.calls++
}

func TestAddTurnoverForwardsToSink(t *testing.T) {
	s, _ := newTestService(t)
	a, err := s.Create("alice", "")
	require.NoError(t, err)

	sink := &recordingSink{}
	s.SetTurnoverSink(sink)

	require.NoError(t, s.AddTurnover(a.ID, 25))

	require.Equal(t, 1, sink.calls)
	require.Equal(t, a.ID, sink.uid)
	require.InDelta(t, 25, sink.amount, 1e-9)

	got, err := s.Get(a.ID)
	require.NoError(t, err)
	require.InDelta(t, 25, got.Turnover, 1e-9)
}

func TestAddStats(t *testing.T) {
	s, _ := newTestService(t)
	a, err := s.Create("alice", "")
	require.NoError(t, err)

	require.NoError(t, s.AddStats(a.ID, 50, 0))
	require.NoError(t, s.AddStats(a.ID, 0, 20))

	got, err := s.Get(a.ID)
	require.NoError(t, err)
	require.InDelta(t, 50, got.TotalWon, 1e-9)
	require.InDelta(t, 20, got.TotalLost, 1e-9)
	require.EqualValues(t, 2, got.GamesPlayed)
}

func TestBalanceReconciliation(t *testing.T) {
	s, conn := newTestService(t)
	a, err := s.Create("alice", "")
	require.NoError(t, err)

	svcLedger := ledger.New(conn)
	apply := func(amount float64, kind ledger.Kind, debit bool) {
		tx, err := conn.Begin()
		require.NoError(t, err)
		if debit {
			require.NoError(t, s.DebitTx(tx, a.ID, amount))
		} else {
			require.NoError(t, s.CreditTx(tx, a.ID, amount))
		}
		_, err = svcLedger.Record(tx, a.ID, kind, amount, ledger.StatusCompleted, "")
		require.NoError(t, err)
		require.NoError(t, tx.Commit())
	}

	apply(30, ledger.KindBet, true)
	apply(75, ledger.KindWin, false)
	apply(10, ledger.KindBet, true)

	var credits, debits float64
	require.NoError(t, conn.QueryRow(
		`SELECT COALESCE(SUM(amount),0) FROM transactions WHERE account_id=? AND status='completed' AND kind IN ('deposit','win','referral-bonus')`,
		a.ID).Scan(&credits))
	require.NoError(t, conn.QueryRow(
		`SELECT COALESCE(SUM(amount),0) FROM transactions WHERE account_id=? AND status='completed' AND kind='bet'`,
		a.ID).Scan(&debits))

	got, err := s.Get(a.ID)
	require.NoError(t, err)
	require.InDelta(t, credits-debits, got.Balance, 1e-9)
}
