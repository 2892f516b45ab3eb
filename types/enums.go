package types

// SubStatus is the derived subscription state; it is computed, never stored.
type SubStatus string

const (
	StatusNone         SubStatus = "none"
	StatusActive       SubStatus = "active"
	StatusExpiringSoon SubStatus = "expiring_soon"
	StatusExpired      SubStatus = "expired"
	StatusError        SubStatus = "error"
)

// AccessLevel orders room entitlements: free < subscriber < vip < diamond.
type AccessLevel string

const (
	AccessFree       AccessLevel = "free"
	AccessSubscriber AccessLevel = "subscriber"
	AccessVIP        AccessLevel = "vip"
	AccessDiamond    AccessLevel = "diamond"
)

var accessRank = map[AccessLevel]int{
	AccessFree:       0,
	AccessSubscriber: 1,
	AccessVIP:        2,
	AccessDiamond:    3,
}

func (l AccessLevel) Rank() int {
	return accessRank[l]
}

// MaxAccess derives the highest level a user's stored entitlement flags
// grant. The stored flags are authoritative here: a subscription whose
// computed status already lapsed keeps access until the expiry sweep flips
// is_sub_active (tolerated staleness window).
func MaxAccess(u *User) AccessLevel {
	switch {
	case u == nil:
		return AccessFree
	case u.IsDiamond:
		return AccessDiamond
	case u.IsVIP:
		return AccessVIP
	case u.SubActive:
		return AccessSubscriber
	default:
		return AccessFree
	}
}

// ChatState tracks the admin broadcast conversation.
type ChatState string

const (
	StateIdle             ChatState = "idle"
	StateBroadcastText    ChatState = "broadcast_text"
	StateBroadcastConfirm ChatState = "broadcast_confirm"
)
