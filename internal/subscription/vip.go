package subscription

import (
	"log"
	"strconv"

	"github.com/quietroom/quiet-room-bot/internal/identity"
	"github.com/quietroom/quiet-room-bot/types"
)

// VIPSync keeps the per-user VIP flags aligned with the operator-managed
// id lists, and migrates provisional VIP grants (handle-only entries added
// before the user ever talked to the bot) into id entries.
type VIPSync struct {
	users types.UserStore
	cfg   types.ConfigStore
}

func NewVIPSync(users types.UserStore, cfg types.ConfigStore) *VIPSync {
	return &VIPSync{users: users, cfg: cfg}
}

// SyncVIPFlags reconciles the stored is_vip flag of every user against the
// VIP id list. Flags are written only when they differ from the list.
func (v *VIPSync) SyncVIPFlags() error {
	list, err := v.cfg.GetList(types.ConfigKeyVIPIDs)
	if err != nil {
		return err
	}
	vipIDs := make(map[int64]bool, len(list))
	for _, raw := range list {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			log.Printf("VIPSync: skipping malformed vip id %q", raw)
			continue
		}
		vipIDs[id] = true
	}

	users, err := v.users.GetAllUsers()
	if err != nil {
		return err
	}

	changed := 0
	for _, u := range users {
		want := vipIDs[u.UserID]
		if u.IsVIP == want {
			continue
		}
		if err := v.users.SetVIP(u.UserID, want); err != nil {
			log.Printf("VIPSync: failed to set vip=%t for %d: %v", want, u.UserID, err)
			continue
		}
		changed++
	}
	if changed > 0 {
		log.Printf("VIPSync: updated vip flag for %d users", changed)
	}
	return nil
}

// MigrateTempVIPs resolves provisional handle entries against registered
// users: every handle that now maps to a known user id is moved from the
// temp list to the VIP id list.
func (v *VIPSync) MigrateTempVIPs() error {
	temp, err := v.cfg.GetList(types.ConfigKeyTempVIPs)
	if err != nil {
		return err
	}
	if len(temp) == 0 {
		return nil
	}

	users, err := v.users.GetAllUsers()
	if err != nil {
		return err
	}
	byHandle := make(map[string]int64, len(users))
	for _, u := range users {
		key := identity.Normalize(u.Username)
		if key == "" {
			continue
		}
		if _, ok := byHandle[key]; !ok {
			byHandle[key] = u.UserID
		}
	}

	remaining := make([]string, 0, len(temp))
	migrated := 0
	for _, raw := range temp {
		handle := identity.Normalize(raw)
		id, ok := byHandle[handle]
		if !ok {
			remaining = append(remaining, raw)
			continue
		}
		if err := v.addVIPID(id); err != nil {
			log.Printf("VIPSync: failed to migrate temp vip %q: %v", handle, err)
			remaining = append(remaining, raw)
			continue
		}
		migrated++
	}

	if migrated == 0 {
		return nil
	}
	log.Printf("VIPSync: migrated %d temp vip entries", migrated)
	return v.cfg.SetList(types.ConfigKeyTempVIPs, remaining)
}

// IsTempVIP reports whether a handle is on the provisional VIP list.
func (v *VIPSync) IsTempVIP(username string) (bool, error) {
	handle := identity.Normalize(username)
	if handle == "" {
		return false, nil
	}
	temp, err := v.cfg.GetList(types.ConfigKeyTempVIPs)
	if err != nil {
		return false, err
	}
	for _, raw := range temp {
		if identity.Normalize(raw) == handle {
			return true, nil
		}
	}
	return false, nil
}

// MigrateSingleTempVIP moves one provisional handle to the VIP id list,
// used when the handle's owner first talks to the bot.
func (v *VIPSync) MigrateSingleTempVIP(username string, userID int64) error {
	handle := identity.Normalize(username)
	if handle == "" {
		return nil
	}
	temp, err := v.cfg.GetList(types.ConfigKeyTempVIPs)
	if err != nil {
		return err
	}
	remaining := make([]string, 0, len(temp))
	found := false
	for _, raw := range temp {
		if identity.Normalize(raw) == handle {
			found = true
			continue
		}
		remaining = append(remaining, raw)
	}
	if !found {
		return nil
	}
	if err := v.addVIPID(userID); err != nil {
		return err
	}
	if err := v.users.SetVIP(userID, true); err != nil {
		return err
	}
	log.Printf("VIPSync: migrated temp vip %q to id %d", handle, userID)
	return v.cfg.SetList(types.ConfigKeyTempVIPs, remaining)
}

func (v *VIPSync) addVIPID(userID int64) error {
	list, err := v.cfg.GetList(types.ConfigKeyVIPIDs)
	if err != nil {
		return err
	}
	id := formatID(userID)
	for _, existing := range list {
		if existing == id {
			return nil
		}
	}
	return v.cfg.SetList(types.ConfigKeyVIPIDs, append(list, id))
}

func formatID(userID int64) string {
	return strconv.FormatInt(userID, 10)
}
