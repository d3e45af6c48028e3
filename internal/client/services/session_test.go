package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shelfsync/internal/client/api"
	"shelfsync/internal/common"
)

func TestSession_LoginSetsAccount(t *testing.T) {
	s := NewSession(&fakeClient{}, setupStore(t), testLogger())
	require.NoError(t, s.Login(context.Background(), "alice", "secret"))
	assert.Equal(t, "alice", s.Account())
	assert.True(t, s.IsLoggedIn())
}

func TestSession_LoginFailureLeavesLoggedOut(t *testing.T) {
	s := NewSession(&fakeClient{LoginErr: api.ErrUnauthorized}, setupStore(t), testLogger())
	err := s.Login(context.Background(), "alice", "wrong")
	require.ErrorIs(t, err, api.ErrUnauthorized)
	assert.False(t, s.IsLoggedIn())
}

func TestSession_RegisterSetsAccount(t *testing.T) {
	s := NewSession(&fakeClient{}, setupStore(t), testLogger())
	require.NoError(t, s.Register(context.Background(), "bob", "bob@example.com", "secret"))
	assert.Equal(t, "bob", s.Account())
}

func TestSession_LogoutRequiresLogin(t *testing.T) {
	s := NewSession(&fakeClient{}, setupStore(t), testLogger())
	err := s.Logout(context.Background())
	require.ErrorIs(t, err, common.ErrNotLoggedIn)
}

func TestSession_LogoutDropsSyncedDataOnly(t *testing.T) {
	ctx := context.Background()
	st := setupStore(t)
	f := &fakeClient{LocationsRet: nil, CreateLocationID: 5}

	s := NewSession(f, st, testLogger())
	require.NoError(t, s.Login(ctx, "alice", "secret"))

	synced := addLocalEntry(t, st, "Milk", "4000001", 1)
	synced.ServerID = 7
	synced.InSync = true
	require.NoError(t, st.Entries.Update(ctx, synced))
	pending := addLocalEntry(t, st, "Cheese", "4000002", 1)
	require.NoError(t, st.SyncState.SetLastSync(ctx, "alice", synced.UpdatedAt))

	require.NoError(t, s.Logout(ctx))
	assert.False(t, s.IsLoggedIn())
	assert.Equal(t, 1, f.LogoutCalls)

	// synced records are gone, unpushed ones survive
	_, err := st.Entries.FindByLocalID(ctx, synced.LocalID)
	assert.ErrorIs(t, err, common.ErrorNotFound)
	kept, err := st.Entries.FindByLocalID(ctx, pending.LocalID)
	require.NoError(t, err)
	assert.False(t, kept.InSync)

	// the location lost its server identity and the watermark is cleared
	loc, err := st.Locations.GetDefault(ctx)
	require.NoError(t, err)
	assert.Zero(t, loc.ServerID)
	last, err := st.SyncState.GetLastSync(ctx, "alice")
	require.NoError(t, err)
	assert.Nil(t, last)
}

func TestSession_LogoutSucceedsWhenServerUnreachable(t *testing.T) {
	f := &fakeClient{LogoutErr: api.ErrUnavailable}
	s := NewSession(f, setupStore(t), testLogger())
	require.NoError(t, s.Login(context.Background(), "alice", "secret"))

	require.NoError(t, s.Logout(context.Background()))
	assert.False(t, s.IsLoggedIn())
}

func TestSession_LogoutSucceedsWhenSessionExpired(t *testing.T) {
	f := &fakeClient{LogoutErr: api.ErrUnauthorized}
	s := NewSession(f, setupStore(t), testLogger())
	require.NoError(t, s.Login(context.Background(), "alice", "secret"))

	require.NoError(t, s.Logout(context.Background()))
	assert.False(t, s.IsLoggedIn())
}

func TestSession_LogoutPropagatesUnexpectedServerError(t *testing.T) {
	bad := errors.New("boom")
	s := NewSession(&fakeClient{LogoutErr: bad}, setupStore(t), testLogger())
	require.NoError(t, s.Login(context.Background(), "alice", "secret"))

	err := s.Logout(context.Background())
	require.ErrorIs(t, err, bad)
	assert.True(t, s.IsLoggedIn())
}

func TestSession_SwitchingAccountDropsPreviousSyncedData(t *testing.T) {
	ctx := context.Background()
	st := setupStore(t)
	s := NewSession(&fakeClient{}, st, testLogger())
	require.NoError(t, s.Login(ctx, "alice", "secret"))

	synced := addLocalEntry(t, st, "Milk", "4000001", 1)
	synced.ServerID = 7
	synced.InSync = true
	require.NoError(t, st.Entries.Update(ctx, synced))
	require.NoError(t, st.SyncState.SetLastSync(ctx, "alice", synced.UpdatedAt))

	require.NoError(t, s.Login(ctx, "bob", "secret"))
	assert.Equal(t, "bob", s.Account())

	_, err := st.Entries.FindByLocalID(ctx, synced.LocalID)
	assert.ErrorIs(t, err, common.ErrorNotFound)
	last, err := st.SyncState.GetLastSync(ctx, "alice")
	require.NoError(t, err)
	assert.Nil(t, last)
}
