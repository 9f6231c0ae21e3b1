package referral

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"crash-platform/internal/account"
	"crash-platform/internal/db"
	"crash-platform/internal/ledger"
	"crash-platform/internal/logger"
)

type fixture struct {
	db        *sql.DB
	accounts  *account.Service
	referrals *Service
	referrer  int64
	referred  int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger.Init()

	conn, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	conn.SetMaxOpenConns(1)
	db.Migrate(conn)
	t.Cleanup(func() { conn.Close() })

	ledgerService := ledger.New(conn)
	accounts := account.New(conn, ledgerService)
	referrals := New(conn, accounts, ledgerService, nil)
	accounts.SetTurnoverSink(referrals)

	referrer, err := accounts.Create("alice", "")
	require.NoError(t, err)
	referred, err := accounts.Create("bob", referrer.ReferralCode)
	require.NoError(t, err)

	return &fixture{
		db:        conn,
		accounts:  accounts,
		referrals: referrals,
		referrer:  referrer.ID,
		referred:  referred.ID,
	}
}

func (f *fixture) referrerAccount(t *testing.T) *account.Account {
	t.Helper()
	a, err := f.accounts.Get(f.referrer)
	require.NoError(t, err)
	return a
}

func TestFirstDepositCreatesLinkOnce(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.referrals.OnFirstDeposit(f.referred, 200))
	require.NoError(t, f.referrals.OnFirstDeposit(f.referred, 900))

	links, err := f.referrals.Status(f.referrer)
	require.NoError(t, err)
	require.Len(t, links, 1)
	require.InDelta(t, 200, links[0].FirstDeposit, 1e-9)
	require.InDelta(t, 2000, links[0].RequiredTurnover, 1e-9)
	require.InDelta(t, 200, links[0].BonusAmount, 1e-9)
	require.False(t, links[0].Paid)
}

func TestUnreferredDepositIsNoop(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.referrals.OnFirstDeposit(f.referrer, 300))

	var count int
	require.NoError(t, f.db.QueryRow(`SELECT COUNT(1) FROM referrals`).Scan(&count))
	require.Equal(t, 0, count)
}

func TestTurnoverAccumulates(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.referrals.OnFirstDeposit(f.referred, 200))

	f.referrals.OnTurnover(f.referred, 500)
	f.referrals.OnTurnover(f.referred, 700)

	links, err := f.referrals.Status(f.referrer)
	require.NoError(t, err)
	require.InDelta(t, 1200, links[0].CurrentTurnover, 1e-9)
	require.False(t, links[0].Paid)
	require.InDelta(t, 100, f.referrerAccount(t).Balance, 1e-9, "no bonus below the threshold")
}

func TestBonusPaidExactlyOnce(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.referrals.OnFirstDeposit(f.referred, 200))

	f.referrals.OnTurnover(f.referred, 1999)
	require.InDelta(t, 100, f.referrerAccount(t).Balance, 1e-9)

	f.referrals.OnTurnover(f.referred, 1)

	a := f.referrerAccount(t)
	require.InDelta(t, 300, a.Balance, 1e-9)
	require.InDelta(t, 200, a.ReferralBonusEarned, 1e-9)

	links, err := f.referrals.Status(f.referrer)
	require.NoError(t, err)
	require.True(t, links[0].Paid)
	require.NotNil(t, links[0].CompletedAt)

	var count int
	require.NoError(t, f.db.QueryRow(
		`SELECT COUNT(1) FROM transactions WHERE account_id=? AND kind='referral-bonus'`,
		f.referrer).Scan(&count))
	require.Equal(t, 1, count)

	// Turnover keeps flowing after payout; the bonus never repeats.
	f.referrals.OnTurnover(f.referred, 5000)
	f.referrals.OnTurnover(f.referred, 5000)

	a = f.referrerAccount(t)
	require.InDelta(t, 300, a.Balance, 1e-9)
	require.NoError(t, f.db.QueryRow(
		`SELECT COUNT(1) FROM transactions WHERE account_id=? AND kind='referral-bonus'`,
		f.referrer).Scan(&count))
	require.Equal(t, 1, count)
}

func TestTurnoverForUnknownPlayerIsNoop(t *testing.T) {
	f := newFixture(t)

	// No link exists yet; nothing to do and nothing to pay.
	f.referrals.OnTurnover(f.referred, 10000)

	require.InDelta(t, 100, f.referrerAccount(t).Balance, 1e-9)
}
