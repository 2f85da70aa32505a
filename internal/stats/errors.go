package stats

import "errors"

var (
	ErrMissingPlayer  = errors.New("player missing from player table")
	ErrMissingTeam    = errors.New("team missing from roster table")
	ErrUnknownStatKey = errors.New("stat key has no configured category")
	ErrMissingField   = errors.New("required field missing")
	ErrInvalidConfig  = errors.New("invalid league configuration")
)
