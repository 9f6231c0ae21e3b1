package event

const (
	EventRoundStarted = "round.started"
	EventRoundTick    = "round.tick"
	EventRoundCrashed = "round.crashed"
	EventBetPlaced    = "bet.placed"
	EventBetCashedOut = "bet.cashed_out"
	EventReferralPaid = "referral.paid"
)
