package game

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"crash-platform/internal/config"
	"crash-platform/internal/event"
	"crash-platform/internal/ledger"
	"crash-platform/internal/logger"
	"crash-platform/internal/monitoring"
)

const (
	minStake    = 1
	curveFactor = 0.1
	historySize = 20
)

// Wallet is the slice of the account ledger the game needs.
type Wallet interface {
	Lock(uid int64) func()
	DebitTx(tx *sql.Tx, uid int64, amount float64) error
	CreditTx(tx *sql.Tx, uid int64, amount float64) error
	AddStats(uid int64, won, lost float64) error
	AddTurnover(uid int64, amount float64) error
}

// Scheduler owns the single live round of one table: its state machine
// (waiting -> flying -> crashed -> waiting), the multiplier curve and the
// bet set. One mutex serializes bets and cashouts against transitions, so a
// late cashout can never race the crash.
type Scheduler struct {
	mu sync.Mutex

	cfg      config.GameConfig
	policy   *Policy
	fixedUID int64

	db       *sql.DB
	accounts Wallet
	ledger   *ledger.Service
	bus      *event.Bus
	board    *Leaderboard

	status      RoundStatus
	roundID     string
	startTime   time.Time
	startedUnix int64
	multiplier  float64
	crashPoint  float64
	bets        map[int64]*Bet

	history []*Round
}

func NewScheduler(cfg config.GameConfig, policy *Policy, fixedUID int64, db *sql.DB, accounts Wallet, ledgerService *ledger.Service, bus *event.Bus, board *Leaderboard) *Scheduler {
	return &Scheduler{
		cfg:      cfg,
		policy:   policy,
		fixedUID: fixedUID,
		db:       db,
		accounts: accounts,
		ledger:   ledgerService,
		bus:      bus,
		board:    board,
		status:   StatusCrashed,
		bets:     make(map[int64]*Bet),
	}
}

// Start drives the round loop until the context is cancelled. Implements
// jobs.Job.
func (s *Scheduler) Start(ctx context.Context) {
	for {
		s.openRound()
		if !sleepCtx(ctx, s.cfg.WaitingDelay) {
			return
		}

		s.beginFlight(time.Now())

		ticker := time.NewTicker(s.cfg.TickInterval)
	flight:
		for {
			select {
			case <-ctx.Done():
				ticker.Stop()
				return
			case now := <-ticker.C:
				if s.tick(now) {
					break flight
				}
			}
		}
		ticker.Stop()

		if !sleepCtx(ctx, s.cfg.CrashDelay) {
			return
		}
	}
}

// sleepCtx waits out a phase delay; false means the scheduler is shutting
// down and the pending timer has been cleared.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func multiplierAt(elapsed time.Duration) float64 {
	t := elapsed.Seconds()
	return 1 + curveFactor*t*t
}

// openRound resets to waiting with a fresh round id and an empty bet set.
func (s *Scheduler) openRound() {
	s.mu.Lock()
	s.status = StatusWaiting
	s.roundID = uuid.New().String()
	s.multiplier = 1.0
	s.crashPoint = 0
	s.bets = make(map[int64]*Bet)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	logger.Log.Info("round waiting", zap.String("round", snap.RoundID))
	s.publish(event.EventRoundStarted, snap)
}

// beginFlight draws the hidden crash point from the exposure committed
// during the waiting window and starts the curve.
func (s *Scheduler) beginFlight(now time.Time) {
	s.mu.Lock()
	exposure := 0.0
	for _, b := range s.bets {
		exposure += b.Stake
	}
	_, scripted := s.bets[s.fixedUID]
	if s.fixedUID == 0 {
		scripted = false
	}

	s.crashPoint = s.policy.NextCrashPoint(exposure, scripted)
	s.status = StatusFlying
	s.startTime = now
	s.startedUnix = now.Unix()
	s.multiplier = 1.0
	snap := s.snapshotLocked()
	s.mu.Unlock()

	logger.Log.Info("round flying",
		zap.String("round", snap.RoundID),
		zap.Float64("exposure", exposure))
	s.publish(event.EventRoundTick, snap)
}

// tick advances the curve; returns true once the round has crashed.
func (s *Scheduler) tick(now time.Time) bool {
	s.mu.Lock()
	if s.status != StatusFlying {
		s.mu.Unlock()
		return true
	}

	m := multiplierAt(now.Sub(s.startTime))
	if m >= s.crashPoint {
		round := s.finishLocked(now)
		s.mu.Unlock()

		s.settleLosses(round)
		monitoring.RoundsTotal.Inc()
		logger.Log.Info("round crashed",
			zap.String("round", round.ID),
			zap.Float64("crash_point", round.CrashPoint))
		s.publish(event.EventRoundCrashed, round)
		return true
	}

	s.multiplier = m
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(event.EventRoundTick, snap)
	return false
}

// finishLocked clamps the multiplier to the crash point, marks every
// unresolved bet a loss and archives the round. Caller holds s.mu.
func (s *Scheduler) finishLocked(now time.Time) *Round {
	s.status = StatusCrashed
	s.multiplier = s.crashPoint

	round := &Round{
		ID:         s.roundID,
		CrashPoint: s.crashPoint,
		StartedAt:  s.startedUnix,
		EndedAt:    now.Unix(),
	}

	for _, b := range s.bets {
		if b.Active {
			b.Active = false
			b.CashOutAt = nil
			b.Profit = -b.Stake
		}
		round.Bets = append(round.Bets, *b)
	}

	s.history = append([]*Round{round}, s.history...)
	if len(s.history) > historySize {
		s.history = s.history[:historySize]
	}

	return round
}

// settleLosses records the loss transactions for bets the crash resolved.
// The stake was already debited at placement, so no balance moves here.
func (s *Scheduler) settleLosses(round *Round) {
	totalStaked := 0.0
	losers := make([]Bet, 0, len(round.Bets))
	for _, b := range round.Bets {
		totalStaked += b.Stake
		if b.CashOutAt == nil {
			losers = append(losers, b)
		}
	}

	tx, err := s.db.Begin()
	if err != nil {
		logger.Log.Error("loss settlement begin failed", zap.Error(err))
		return
	}

	for _, b := range losers {
		if _, err := s.ledger.Record(tx, b.UserID, ledger.KindLoss, b.Stake, ledger.StatusCompleted, round.ID); err != nil {
			tx.Rollback()
			logger.Log.Error("loss settlement failed",
				zap.String("round", round.ID), zap.Int64("uid", b.UserID), zap.Error(err))
			return
		}
	}

	if _, err := tx.Exec(`
	INSERT INTO rounds(id,crash_point,started_at,ended_at,total_staked,players)
	VALUES (?,?,?,?,?,?)
	`, round.ID, round.CrashPoint, round.StartedAt, round.EndedAt, totalStaked, len(round.Bets)); err != nil {
		tx.Rollback()
		logger.Log.Error("round persist failed", zap.String("round", round.ID), zap.Error(err))
		return
	}

	if err := tx.Commit(); err != nil {
		logger.Log.Error("loss settlement commit failed", zap.Error(err))
		return
	}

	for _, b := range losers {
		if err := s.accounts.AddStats(b.UserID, 0, b.Stake); err != nil {
			logger.Log.Error("loss stats update failed", zap.Int64("uid", b.UserID), zap.Error(err))
		}
		s.board.Record(b.UserID, -b.Stake)
	}
}

// PlaceBet accepts a stake for the round in its waiting window. The stake is
// debited immediately; one bet per account per round.
func (s *Scheduler) PlaceBet(uid int64, stake float64) (*Bet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusWaiting {
		return nil, ErrWrongState
	}
	if stake < minStake {
		return nil, ErrInvalidStake
	}
	if _, ok := s.bets[uid]; ok {
		return nil, ErrDuplicateBet
	}

	unlock := s.accounts.Lock(uid)
	defer unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}

	if err := s.accounts.DebitTx(tx, uid, stake); err != nil {
		tx.Rollback()
		return nil, err
	}

	if _, err := s.ledger.Record(tx, uid, ledger.KindBet, stake, ledger.StatusCompleted, s.roundID); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	bet := &Bet{
		UserID:   uid,
		Stake:    stake,
		Active:   true,
		PlacedAt: time.Now().Unix(),
	}
	s.bets[uid] = bet

	if err := s.accounts.AddTurnover(uid, stake); err != nil {
		logger.Log.Error("turnover update failed", zap.Int64("uid", uid), zap.Error(err))
	}

	monitoring.BetsPlaced.Inc()
	s.publish(event.EventBetPlaced, *bet)

	out := *bet
	return &out, nil
}

// CashOut locks in the current multiplier for an active bet. A second call
// for the same round finds no active bet and changes nothing.
func (s *Scheduler) CashOut(uid int64) (*Bet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusFlying {
		return nil, ErrWrongState
	}
	bet, ok := s.bets[uid]
	if !ok || !bet.Active {
		return nil, ErrNoActiveBet
	}

	m := s.multiplier
	payout := bet.Stake * m
	profit := bet.Stake * (m - 1)

	unlock := s.accounts.Lock(uid)
	defer unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}

	if err := s.accounts.CreditTx(tx, uid, payout); err != nil {
		tx.Rollback()
		return nil, err
	}

	if _, err := s.ledger.Record(tx, uid, ledger.KindWin, payout, ledger.StatusCompleted, s.roundID); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	bet.Active = false
	bet.CashOutAt = &m
	bet.Profit = profit

	if err := s.accounts.AddStats(uid, profit, 0); err != nil {
		logger.Log.Error("win stats update failed", zap.Int64("uid", uid), zap.Error(err))
	}
	s.board.Record(uid, profit)

	monitoring.Cashouts.Inc()
	s.publish(event.EventBetCashedOut, *bet)

	out := *bet
	return &out, nil
}

// Snapshot is the public round state. The crash point is never part of it.
func (s *Scheduler) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Scheduler) snapshotLocked() Snapshot {
	return Snapshot{
		RoundID:    s.roundID,
		Status:     s.status,
		Multiplier: s.multiplier,
	}
}

func (s *Scheduler) ActiveBets() []Bet {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Bet, 0, len(s.bets))
	for _, b := range s.bets {
		out = append(out, *b)
	}
	return out
}

// History returns completed rounds, most recent first, capped at 20.
func (s *Scheduler) History(limit int) []*Round {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 || limit > len(s.history) {
		limit = len(s.history)
	}
	out := make([]*Round, limit)
	copy(out, s.history[:limit])
	return out
}

func (s *Scheduler) publish(kind string, payload interface{}) {
	if s.bus != nil {
		s.bus.Publish(kind, payload)
	}
}
