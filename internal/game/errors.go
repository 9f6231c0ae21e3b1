package game

import "errors"

var (
	ErrWrongState   = errors.New("operation not valid in current round state")
	ErrDuplicateBet = errors.New("bet already placed this round")
	ErrNoActiveBet  = errors.New("no active bet")
	ErrInvalidStake = errors.New("invalid stake")
)
