package subscription

import (
	"fmt"
	"sort"
	"time"

	"github.com/quietroom/quiet-room-bot/store"
	"github.com/quietroom/quiet-room-bot/types"
)

// fakeUserStore keeps users in a map and records which mutations ran.
type fakeUserStore struct {
	users       map[int64]*types.User
	deactivated []int64
	getUserErr  error
}

func newFakeUserStore(users ...*types.User) *fakeUserStore {
	s := &fakeUserStore{users: make(map[int64]*types.User)}
	for _, u := range users {
		s.users[u.UserID] = u
	}
	return s
}

func (s *fakeUserStore) GetUser(userID int64) (*types.User, error) {
	if s.getUserErr != nil {
		return nil, s.getUserErr
	}
	u, ok := s.users[userID]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", userID, store.ErrUserNotFound)
	}
	copied := *u
	return &copied, nil
}

func (s *fakeUserStore) GetAllUsers() ([]*types.User, error) {
	ids := make([]int64, 0, len(s.users))
	for id := range s.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]*types.User, 0, len(ids))
	for _, id := range ids {
		copied := *s.users[id]
		out = append(out, &copied)
	}
	return out, nil
}

func (s *fakeUserStore) AddUser(user *types.User) error {
	copied := *user
	s.users[user.UserID] = &copied
	return nil
}

func (s *fakeUserStore) TouchActivity(userID int64) error {
	return nil
}

func (s *fakeUserStore) ApplySubscription(userID int64, upd types.SubscriptionUpdate) error {
	u, ok := s.users[userID]
	if !ok {
		return fmt.Errorf("user %d not found", userID)
	}
	u.Username = upd.Username
	u.SubStart = upd.SubStart
	u.SubEnd = upd.SubEnd
	u.SubActive = true
	u.IsDiamond = true
	if upd.Email != "" {
		u.Email = upd.Email
	}
	if upd.Phone != "" {
		u.Phone = upd.Phone
	}
	return nil
}

func (s *fakeUserStore) DeactivateSubscription(userID int64) error {
	u, ok := s.users[userID]
	if !ok {
		return fmt.Errorf("user %d not found", userID)
	}
	u.SubActive = false
	u.IsDiamond = false
	s.deactivated = append(s.deactivated, userID)
	return nil
}

func (s *fakeUserStore) SetVIP(userID int64, vip bool) error {
	u, ok := s.users[userID]
	if !ok {
		return fmt.Errorf("user %d not found", userID)
	}
	u.IsVIP = vip
	return nil
}

func (s *fakeUserStore) RecordRoomVisitStats(userID int64, visitedAt time.Time) error {
	return nil
}

// fakePaymentStore serves a fixed payment list and tracks processed ids.
type fakePaymentStore struct {
	payments  []*types.Payment
	processed map[int64]bool
}

func newFakePaymentStore(payments ...*types.Payment) *fakePaymentStore {
	return &fakePaymentStore{payments: payments, processed: make(map[int64]bool)}
}

func (s *fakePaymentStore) ListUnprocessed() ([]*types.Payment, error) {
	out := make([]*types.Payment, 0, len(s.payments))
	for _, p := range s.payments {
		if s.processed[p.ID] {
			continue
		}
		copied := *p
		out = append(out, &copied)
	}
	return out, nil
}

func (s *fakePaymentStore) MarkProcessed(ids []int64) error {
	for _, id := range ids {
		s.processed[id] = true
	}
	return nil
}

// fakeConfigStore is the in-memory stand-in for the config KV lists.
type fakeConfigStore struct {
	lists map[string][]string
}

func newFakeConfigStore() *fakeConfigStore {
	return &fakeConfigStore{lists: make(map[string][]string)}
}

func (s *fakeConfigStore) GetList(key string) ([]string, error) {
	return append([]string(nil), s.lists[key]...), nil
}

func (s *fakeConfigStore) SetList(key string, values []string) error {
	s.lists[key] = append([]string(nil), values...)
	return nil
}
