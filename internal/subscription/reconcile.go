package subscription

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/quietroom/quiet-room-bot/internal/format"
	"github.com/quietroom/quiet-room-bot/internal/identity"
	"github.com/quietroom/quiet-room-bot/internal/messages"
	"github.com/quietroom/quiet-room-bot/store"
	"github.com/quietroom/quiet-room-bot/types"
)

// Reconciler matches unprocessed storefront payments to known users and
// merges their subscription windows. Every pass re-scans all unprocessed
// rows, so a group skipped by a failure is retried on the next tick
// (at-least-once, self-healing).
type Reconciler struct {
	users    types.UserStore
	payments types.PaymentStore
	cfg      types.ConfigStore
	locks    *UserLocks

	Now func() time.Time
}

func NewReconciler(users types.UserStore, payments types.PaymentStore, cfg types.ConfigStore, locks *UserLocks) *Reconciler {
	return &Reconciler{
		users:    users,
		payments: payments,
		cfg:      cfg,
		locks:    locks,
		Now:      time.Now,
	}
}

// mergedWindow is the subscription window computed from one payment group.
type mergedWindow struct {
	start string
	end   string
	email string
	phone string
}

// mergeGroup computes the window for one group: the latest parseable
// valid-until wins, contact fields are first-row-wins. ok is false when no
// row in the group carries a parseable end date.
func mergeGroup(group []*types.Payment, now time.Time) (mergedWindow, bool) {
	var maxEnd time.Time
	found := false
	for _, p := range group {
		end, err := format.ParseDBDate(p.ValidUntil)
		if err != nil {
			log.Printf("Reconciler: unparsable valid_until %q (payment %d)", p.ValidUntil, p.ID)
			continue
		}
		if !found || end.After(maxEnd) {
			maxEnd = end
			found = true
		}
	}
	if !found {
		return mergedWindow{}, false
	}

	start := strings.TrimSpace(group[0].ValidFrom)
	if start == "" {
		start = format.FormatDBDate(now)
	}

	return mergedWindow{
		start: start,
		end:   format.FormatDBDate(maxEnd),
		email: strings.TrimSpace(group[0].Email),
		phone: strings.TrimSpace(group[0].Phone),
	}, true
}

// ProcessPending reconciles all unprocessed payments and returns the ids of
// users whose subscription was extended, for notification. Rows whose handle
// matches no registered user stay unprocessed for manual review.
func (r *Reconciler) ProcessPending() ([]int64, error) {
	pending, err := r.payments.ListUnprocessed()
	if err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		return nil, nil
	}
	log.Printf("Reconciler: %d unprocessed payments", len(pending))

	groups := make(map[string][]*types.Payment)
	for _, p := range pending {
		handle := identity.Normalize(p.RawHandle)
		if handle == "" {
			continue
		}
		groups[handle] = append(groups[handle], p)
	}

	users, err := r.users.GetAllUsers()
	if err != nil {
		return nil, err
	}
	byHandle := make(map[string]*types.User, len(users))
	for _, u := range users {
		key := identity.Normalize(u.Username)
		if key == "" {
			continue
		}
		if _, ok := byHandle[key]; !ok {
			byHandle[key] = u
		}
	}

	affected := make([]int64, 0)
	for handle, group := range groups {
		user, ok := byHandle[handle]
		if !ok {
			log.Printf("Reconciler: no user for handle %q, leaving %d rows unprocessed", handle, len(group))
			continue
		}

		if r.processGroup(user, group) {
			affected = append(affected, user.UserID)
		}

		// Rows of a resolved user are consumed even when the update
		// failed; the merged window is recomputable from the user row
		// and retrying stale rows would only re-send notifications.
		ids := make([]int64, 0, len(group))
		for _, p := range group {
			ids = append(ids, p.ID)
		}
		if err := r.payments.MarkProcessed(ids); err != nil {
			log.Printf("Reconciler: failed to mark %d rows for %q: %v", len(ids), handle, err)
		}
	}

	if len(affected) > 0 {
		log.Printf("Reconciler: %d payments applied", len(affected))
	}
	return affected, nil
}

func (r *Reconciler) processGroup(user *types.User, group []*types.Payment) bool {
	merged, ok := mergeGroup(group, r.Now())
	if !ok {
		log.Printf("Reconciler: no parseable end date for %q, skipping group", user.Username)
		return false
	}

	r.locks.Lock(user.UserID)
	defer r.locks.Unlock(user.UserID)

	upd := types.SubscriptionUpdate{
		Username: ensureAtPrefix(user.Username),
		SubStart: merged.start,
		SubEnd:   merged.end,
	}
	if user.Email == "" {
		upd.Email = merged.email
	}
	if user.Phone == "" {
		upd.Phone = merged.phone
	}

	if err := r.users.ApplySubscription(user.UserID, upd); err != nil {
		log.Printf("Reconciler: failed to apply subscription for %d: %v", user.UserID, err)
		return false
	}

	if err := r.addToDiamondList(user.UserID); err != nil {
		log.Printf("Reconciler: failed to update diamond list for %d: %v", user.UserID, err)
	}
	return true
}

func (r *Reconciler) addToDiamondList(userID int64) error {
	list, err := r.cfg.GetList(types.ConfigKeyDiamondIDs)
	if err != nil {
		return err
	}
	id := formatID(userID)
	for _, v := range list {
		if v == id {
			return nil
		}
	}
	return r.cfg.SetList(types.ConfigKeyDiamondIDs, append(list, id))
}

// SyncResult is the outcome of a user-triggered payment verification.
type SyncResult struct {
	OK      bool
	Message string
	EndRaw  string
}

// SyncUser is the manual verify-payment flow: it merges only the caller's
// payment rows and, unlike the background pass, may create the user row,
// because here the Telegram id is known.
func (r *Reconciler) SyncUser(userID int64, username string) SyncResult {
	handle := identity.Normalize(username)
	if handle == "" {
		return SyncResult{Message: messages.SyncNoUsername()}
	}

	log.Printf("Reconciler: manual sync for %q (id %d)", handle, userID)

	pending, err := r.payments.ListUnprocessed()
	if err != nil {
		log.Printf("Reconciler: manual sync list failed: %v", err)
		return SyncResult{Message: messages.SyncFailed()}
	}
	if len(pending) == 0 {
		return SyncResult{Message: messages.SyncNoNewPayments()}
	}

	group := make([]*types.Payment, 0)
	for _, p := range pending {
		if identity.Normalize(p.RawHandle) == handle {
			group = append(group, p)
		}
	}
	if len(group) == 0 {
		return SyncResult{Message: messages.SyncNoMatches()}
	}

	merged, ok := mergeGroup(group, r.Now())
	if !ok {
		return SyncResult{Message: messages.SyncNoEndDate()}
	}

	r.locks.Lock(userID)
	defer r.locks.Unlock(userID)

	// Only a definitive not-found means a new user. On a transient lookup
	// failure the rows must stay unprocessed for the next attempt;
	// AddUser's conflict-ignoring insert would otherwise no-op against the
	// existing row while the rows get consumed.
	existing, err := r.users.GetUser(userID)
	if err != nil {
		if !errors.Is(err, store.ErrUserNotFound) {
			log.Printf("Reconciler: manual sync lookup failed for %d: %v", userID, err)
			return SyncResult{Message: messages.SyncFailed()}
		}
		existing = nil
	}

	var message string
	if existing != nil {
		upd := types.SubscriptionUpdate{
			Username: username,
			SubStart: merged.start,
			SubEnd:   merged.end,
		}
		if existing.Email == "" {
			upd.Email = merged.email
		}
		if existing.Phone == "" {
			upd.Phone = merged.phone
		}
		if err := r.users.ApplySubscription(userID, upd); err != nil {
			log.Printf("Reconciler: manual sync update failed for %d: %v", userID, err)
			return SyncResult{Message: messages.SyncUpdateFailed()}
		}
		message = messages.SyncUpdated(format.UserDate(merged.end))
	} else {
		now := r.Now().UTC()
		user := &types.User{
			UserID:       userID,
			Username:     username,
			Email:        merged.email,
			Phone:        merged.phone,
			JoinedAt:     now,
			LastActivity: now,
			IsDiamond:    true,
			SubActive:    true,
			SubStart:     merged.start,
			SubEnd:       merged.end,
		}
		if err := r.users.AddUser(user); err != nil {
			log.Printf("Reconciler: manual sync insert failed for %d: %v", userID, err)
			return SyncResult{Message: messages.SyncInsertFailed()}
		}
		message = messages.SyncWelcome(format.UserDate(merged.end))
	}

	ids := make([]int64, 0, len(group))
	for _, p := range group {
		ids = append(ids, p.ID)
	}
	if err := r.payments.MarkProcessed(ids); err != nil {
		log.Printf("Reconciler: manual sync failed to mark rows for %d: %v", userID, err)
	}

	return SyncResult{OK: true, Message: message, EndRaw: merged.end}
}

func ensureAtPrefix(username string) string {
	username = strings.TrimSpace(username)
	if username == "" || strings.HasPrefix(username, "@") {
		return username
	}
	return "@" + username
}
