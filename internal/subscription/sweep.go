package subscription

import (
	"log"
	"math"
	"time"

	"github.com/quietroom/quiet-room-bot/internal/format"
	"github.com/quietroom/quiet-room-bot/types"
)

// Sweeper runs the periodic subscription passes: deactivating overdue
// subscriptions and collecting reminder cohorts.
type Sweeper struct {
	users types.UserStore
	locks *UserLocks

	Now func() time.Time
}

func NewSweeper(users types.UserStore, locks *UserLocks) *Sweeper {
	return &Sweeper{users: users, locks: locks, Now: time.Now}
}

// ExpireOverdue deactivates every user whose end date is in the past while
// the active flag is still set, and returns their ids. Users with an
// unparsable end date are left untouched and logged.
func (s *Sweeper) ExpireOverdue() ([]int64, error) {
	users, err := s.users.GetAllUsers()
	if err != nil {
		return nil, err
	}
	now := s.Now()

	expired := make([]int64, 0)
	for _, u := range users {
		if !u.SubActive || u.SubEnd == "" {
			continue
		}
		end, err := format.ParseDBDate(u.SubEnd)
		if err != nil {
			log.Printf("Sweeper: unparsable sub_end %q for user %d", u.SubEnd, u.UserID)
			continue
		}
		if !end.Before(now) {
			continue
		}

		s.locks.Lock(u.UserID)
		err = s.users.DeactivateSubscription(u.UserID)
		s.locks.Unlock(u.UserID)
		if err != nil {
			log.Printf("Sweeper: failed to deactivate user %d: %v", u.UserID, err)
			continue
		}
		expired = append(expired, u.UserID)
	}

	if len(expired) > 0 {
		log.Printf("Sweeper: deactivated %d expired subscriptions", len(expired))
	}
	return expired, nil
}

// ExpiringCohorts are the pre-expiry reminder buckets: users with exactly
// three days left and users on their last day.
type ExpiringCohorts struct {
	ThreeDays []*types.User
	LastDay   []*types.User
}

// ScanExpiring buckets still-active users by whole days remaining. The
// buckets match exact day counts, so a user is reminded at most once per
// bucket as long as the scan runs daily.
func (s *Sweeper) ScanExpiring() (ExpiringCohorts, error) {
	var cohorts ExpiringCohorts
	users, err := s.users.GetAllUsers()
	if err != nil {
		return cohorts, err
	}
	now := s.Now()

	for _, u := range users {
		if !u.SubActive || u.SubEnd == "" {
			continue
		}
		info := EvaluateStatus(u.SubActive, u.SubEnd, now)
		if info.Status == types.StatusError {
			continue
		}
		switch info.rawDays {
		case 3:
			cohorts.ThreeDays = append(cohorts.ThreeDays, u)
		case 0:
			cohorts.LastDay = append(cohorts.LastDay, u)
		}
	}
	return cohorts, nil
}

// LapsedCohorts are the post-expiry win-back buckets: users whose
// subscription ended exactly three and exactly seven days ago.
type LapsedCohorts struct {
	ThreeDays []*types.User
	SevenDays []*types.User
}

// ScanLapsed buckets deactivated users by whole days since their end date.
func (s *Sweeper) ScanLapsed() (LapsedCohorts, error) {
	var cohorts LapsedCohorts
	users, err := s.users.GetAllUsers()
	if err != nil {
		return cohorts, err
	}
	now := s.Now()

	for _, u := range users {
		if u.SubActive || u.SubEnd == "" {
			continue
		}
		end, err := format.ParseDBDate(u.SubEnd)
		if err != nil {
			continue
		}
		if end.After(now) {
			continue
		}
		elapsed := int(math.Floor(now.Sub(end).Hours() / 24))
		switch elapsed {
		case 3:
			cohorts.ThreeDays = append(cohorts.ThreeDays, u)
		case 7:
			cohorts.SevenDays = append(cohorts.SevenDays, u)
		}
	}
	return cohorts, nil
}
