package types

import "time"

// User is one row of the users table. Subscription window bounds are kept as
// raw date strings on purpose: an unparsable sub_end is a surfaced status
// ("error"), not a decoding failure at the store boundary.
type User struct {
	UserID       int64
	Username     string
	FirstName    string
	Email        string
	Phone        string
	JoinedAt     time.Time
	LastActivity time.Time
	IsVIP        bool
	IsDiamond    bool
	SubActive    bool
	SubStart     string
	SubEnd       string
	LastUpdated  time.Time

	Status          string
	FirstRoomVisit  *time.Time
	LastRoomVisit   *time.Time
	TotalRoomVisits int
}

// Payment is one checkout row from the storefront export. Rows are appended
// externally; the only field this system owns is Processed, which goes
// false -> true exactly once.
type Payment struct {
	ID         int64
	RawHandle  string
	Email      string
	Phone      string
	ValidFrom  string
	ValidUntil string
	Processed  bool
	CreatedAt  time.Time
}

type Room struct {
	RoomID      string
	RoomName    string
	RoomURL     string
	AccessLevel AccessLevel
	IsActive    bool
}

type RoomVisit struct {
	ID        string
	VisitedAt time.Time
	UserID    int64
	Username  string
	RoomID    string
	RoomName  string
	Source    string
}

// Touchpoint is an audit row for one outbound reminder/notification attempt.
type Touchpoint struct {
	ID     int64
	SentAt time.Time
	UserID int64
	Kind   string
	Status string
	Detail string
}

// SubscriptionUpdate carries the field-scoped write the reconciler applies to
// a user after merging a payment group. Empty Email/Phone mean "leave as is".
type SubscriptionUpdate struct {
	Username string
	Email    string
	Phone    string
	SubStart string
	SubEnd   string
}

type UserStore interface {
	GetUser(userID int64) (*User, error)
	GetAllUsers() ([]*User, error)
	AddUser(user *User) error
	TouchActivity(userID int64) error

	ApplySubscription(userID int64, upd SubscriptionUpdate) error
	DeactivateSubscription(userID int64) error
	SetVIP(userID int64, vip bool) error
	RecordRoomVisitStats(userID int64, visitedAt time.Time) error
}

type PaymentStore interface {
	ListUnprocessed() ([]*Payment, error)
	MarkProcessed(ids []int64) error
}

type RoomStore interface {
	GetRoom(roomID string) (*Room, error)
	GetActiveRooms() ([]*Room, error)
	LogRoomVisit(v *RoomVisit) error
}

type TouchpointStore interface {
	LogTouchpoint(t *Touchpoint) error
}

// ConfigStore holds the small operational lists that used to live in the
// config worksheet: VIP ids, diamond ids, temporary VIP handles.
type ConfigStore interface {
	GetList(key string) ([]string, error)
	SetList(key string, values []string) error
}

const (
	ConfigKeyVIPIDs     = "vip_ids"
	ConfigKeyDiamondIDs = "diamond_ids"
	ConfigKeyTempVIPs   = "temp_vip_handles"
)
