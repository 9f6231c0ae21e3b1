package account

type Account struct {
	ID                  int64   `json:"id"`
	Username            string  `json:"username"`
	Balance             float64 `json:"balance"`
	TotalWon            float64 `json:"total_won"`
	TotalLost           float64 `json:"total_lost"`
	GamesPlayed         int64   `json:"games_played"`
	Turnover            float64 `json:"turnover"`
	ReferralCode        string  `json:"referral_code"`
	ReferredBy          *int64  `json:"referred_by,omitempty"`
	ReferralBonusEarned float64 `json:"referral_bonus_earned"`
	IsActive            bool    `json:"is_active"`
	CreatedAt           int64   `json:"created_at"`
}
