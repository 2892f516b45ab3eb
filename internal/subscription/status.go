// Package subscription holds the subscription lifecycle: the derived status
// evaluator, payment reconciliation, the expiry sweep and the reminder scans.
package subscription

import (
	"math"
	"time"

	"github.com/quietroom/quiet-room-bot/internal/format"
	"github.com/quietroom/quiet-room-bot/types"
)

// StatusInfo is the computed view of a user's subscription. It is never
// stored; the stored state is only the active flag and the raw window bounds.
type StatusInfo struct {
	Status   types.SubStatus
	Active   bool
	DaysLeft int    // clamped to >= 0 for display
	EndDate  string // DD.MM.YYYY, empty when unknown
	EndRaw   string

	// rawDays keeps the unclamped value for the reminder scans; it may be
	// negative once the window has lapsed.
	rawDays int
}

// EvaluateStatus derives the subscription status from the stored flag and the
// raw end date. Pure: storage is not consulted.
//
// A lapsed end date with the flag still true reports "expired" while the flag
// stays set; the expiry sweep flips it on its next tick. That staleness
// window is tolerated by design.
func EvaluateStatus(active bool, endRaw string, now time.Time) StatusInfo {
	if endRaw == "" {
		return StatusInfo{Status: types.StatusNone}
	}

	if !active {
		return StatusInfo{
			Status:  types.StatusExpired,
			EndDate: format.UserDate(endRaw),
			EndRaw:  endRaw,
		}
	}

	end, err := format.ParseDBDate(endRaw)
	if err != nil {
		return StatusInfo{Status: types.StatusError, EndRaw: endRaw}
	}

	days := int(math.Floor(end.Sub(now).Hours() / 24))

	var status types.SubStatus
	switch {
	case days > 3:
		status = types.StatusActive
	case days >= 1:
		status = types.StatusExpiringSoon
	default:
		status = types.StatusExpired
	}

	reported := days
	if reported < 0 {
		reported = 0
	}

	return StatusInfo{
		Status:   status,
		Active:   true,
		DaysLeft: reported,
		EndDate:  format.UserDate(endRaw),
		EndRaw:   endRaw,
		rawDays:  days,
	}
}
