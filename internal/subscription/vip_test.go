package subscription

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quietroom/quiet-room-bot/types"
)

func TestSyncVIPFlags_FollowsList(t *testing.T) {
	users := newFakeUserStore(
		&types.User{UserID: 1},
		&types.User{UserID: 2, IsVIP: true},
		&types.User{UserID: 3, IsVIP: true},
	)
	cfg := newFakeConfigStore()
	cfg.lists[types.ConfigKeyVIPIDs] = []string{"1", "3", "мусор"}

	v := NewVIPSync(users, cfg)
	require.NoError(t, v.SyncVIPFlags())

	assert.True(t, users.users[1].IsVIP)
	assert.False(t, users.users[2].IsVIP)
	assert.True(t, users.users[3].IsVIP)
}

func TestMigrateTempVIPs_ResolvedHandlesMove(t *testing.T) {
	users := newFakeUserStore(
		&types.User{UserID: 10, Username: "@Anna"},
	)
	cfg := newFakeConfigStore()
	cfg.lists[types.ConfigKeyTempVIPs] = []string{"@anna", "ghost"}

	v := NewVIPSync(users, cfg)
	require.NoError(t, v.MigrateTempVIPs())

	assert.Equal(t, []string{"10"}, cfg.lists[types.ConfigKeyVIPIDs])
	assert.Equal(t, []string{"ghost"}, cfg.lists[types.ConfigKeyTempVIPs])
}

func TestMigrateTempVIPs_NothingToDo(t *testing.T) {
	users := newFakeUserStore()
	cfg := newFakeConfigStore()

	v := NewVIPSync(users, cfg)
	require.NoError(t, v.MigrateTempVIPs())
	assert.Empty(t, cfg.lists[types.ConfigKeyVIPIDs])
}

func TestIsTempVIP(t *testing.T) {
	cfg := newFakeConfigStore()
	cfg.lists[types.ConfigKeyTempVIPs] = []string{"@Anna"}

	v := NewVIPSync(newFakeUserStore(), cfg)

	got, err := v.IsTempVIP("https://t.me/anna")
	require.NoError(t, err)
	assert.True(t, got)

	got, err = v.IsTempVIP("bob")
	require.NoError(t, err)
	assert.False(t, got)

	got, err = v.IsTempVIP("")
	require.NoError(t, err)
	assert.False(t, got)
}

func TestMigrateSingleTempVIP(t *testing.T) {
	users := newFakeUserStore(&types.User{UserID: 10, Username: "anna"})
	cfg := newFakeConfigStore()
	cfg.lists[types.ConfigKeyTempVIPs] = []string{"@Anna", "other"}

	v := NewVIPSync(users, cfg)
	require.NoError(t, v.MigrateSingleTempVIP("anna", 10))

	assert.Equal(t, []string{"10"}, cfg.lists[types.ConfigKeyVIPIDs])
	assert.Equal(t, []string{"other"}, cfg.lists[types.ConfigKeyTempVIPs])
	assert.True(t, users.users[10].IsVIP)
}

func TestMigrateSingleTempVIP_NotOnList(t *testing.T) {
	users := newFakeUserStore(&types.User{UserID: 10, Username: "anna"})
	cfg := newFakeConfigStore()
	cfg.lists[types.ConfigKeyTempVIPs] = []string{"other"}

	v := NewVIPSync(users, cfg)
	require.NoError(t, v.MigrateSingleTempVIP("anna", 10))

	assert.Empty(t, cfg.lists[types.ConfigKeyVIPIDs])
	assert.False(t, users.users[10].IsVIP)
}
