package giveaway

import "errors"

var (
	ErrInvalidDuration  = errors.New("invalid duration")
	ErrDurationTooShort = errors.New("duration below minimum")
	ErrInvalidWinners   = errors.New("winner count must be at least 1")
	ErrDuplicate        = errors.New("giveaway already exists")
	ErrNotFound         = errors.New("giveaway not found")
	ErrAlreadyEnded     = errors.New("giveaway already ended")
	ErrStillActive      = errors.New("giveaway is still running")
	ErrNoParticipants   = errors.New("no participants")
	ErrNoEligible       = errors.New("no eligible participants")

	// ErrMessageGone is returned by a Notifier when the announcement message or
	// its channel no longer exists.
	ErrMessageGone = errors.New("announcement message gone")

	// ErrForbidden is returned by a Notifier when the bot lost access to the
	// announcement's channel.
	ErrForbidden = errors.New("announcement forbidden")
)
