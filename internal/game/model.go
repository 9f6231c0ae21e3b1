package game

type RoundStatus string

const (
	StatusWaiting RoundStatus = "waiting"
	StatusFlying  RoundStatus = "flying"
	StatusCrashed RoundStatus = "crashed"
)

type Bet struct {
	UserID    int64    `json:"uid"`
	Stake     float64  `json:"stake"`
	CashOutAt *float64 `json:"cash_out_at,omitempty"`
	Profit    float64  `json:"profit"`
	Active    bool     `json:"active"`
	PlacedAt  int64    `json:"placed_at"`
}

// Round is a completed round as kept in history. The crash point is only
// ever attached here, after the fact.
type Round struct {
	ID         string  `json:"id"`
	CrashPoint float64 `json:"crash_point"`
	StartedAt  int64   `json:"started_at"`
	EndedAt    int64   `json:"ended_at"`
	Bets       []Bet   `json:"bets"`
}

// Snapshot is the public view of the live round. No crash point.
type Snapshot struct {
	RoundID    string      `json:"round_id"`
	Status     RoundStatus `json:"status"`
	Multiplier float64     `json:"multiplier"`
}
