package referral

type Link struct {
	ID               string  `json:"id"`
	ReferrerID       int64   `json:"referrer_id"`
	ReferredID       int64   `json:"referred_id"`
	FirstDeposit     float64 `json:"first_deposit"`
	RequiredTurnover float64 `json:"required_turnover"`
	CurrentTurnover  float64 `json:"current_turnover"`
	BonusAmount      float64 `json:"bonus_amount"`
	Paid             bool    `json:"paid"`
	CreatedAt        int64   `json:"created_at"`
	CompletedAt      *int64  `json:"completed_at,omitempty"`
}
