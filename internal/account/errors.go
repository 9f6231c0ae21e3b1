package account

import "errors"

var (
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrUnknownAccount      = errors.New("unknown account")
	ErrInvalidReferralCode = errors.New("invalid referral code")
	ErrInvalidAmount       = errors.New("invalid amount")
)
