package services

import (
	"context"
	"testing"

	"courier/internal/app/registry"
	"courier/internal/core/domain"

	"github.com/stretchr/testify/require"
)

func TestPresence_BroadcastAll_ReachesEveryLiveConnection(t *testing.T) {
	req := require.New(t)
	hub := registry.NewRegistry()
	svc := NewPresenceService(testLogger(), hub)

	// Given alice connects, then bob
	aliceConn := connect(hub, "alice")
	svc.BroadcastAll(context.Background())
	bobConn := connect(hub, "bob")
	svc.BroadcastAll(context.Background())

	// Then both received the online set containing both identities
	var evt domain.PresenceEvent
	req.True(aliceConn.lastFrame(&evt))
	req.Equal(domain.TypePresence, evt.Type)
	req.Equal([]string{"alice", "bob"}, evt.OnlineUserIDs)

	req.True(bobConn.lastFrame(&evt))
	req.Equal([]string{"alice", "bob"}, evt.OnlineUserIDs)

	// And alice heard about it twice: once alone, once with bob
	req.Len(aliceConn.framesOfType(domain.TypePresence), 2)
}

func TestPresence_BroadcastAll_AfterDisconnect(t *testing.T) {
	req := require.New(t)
	hub := registry.NewRegistry()
	svc := NewPresenceService(testLogger(), hub)

	aliceConn := connect(hub, "alice")
	bobConn := connect(hub, "bob")

	// When bob disconnects
	hub.Remove(bobConn.ConnID())
	svc.BroadcastAll(context.Background())

	// Then the broadcast reflects exactly the live registry entries
	var evt domain.PresenceEvent
	req.True(aliceConn.lastFrame(&evt))
	req.Equal([]string{"alice"}, evt.OnlineUserIDs)
}

func TestPresence_Snapshot_MatchesRegistry(t *testing.T) {
	req := require.New(t)
	hub := registry.NewRegistry()
	svc := NewPresenceService(testLogger(), hub)

	connect(hub, "carol")
	connect(hub, "alice")

	req.Equal([]string{"alice", "carol"}, svc.Snapshot())
	req.True(svc.IsOnline("alice"))
	req.False(svc.IsOnline("mallory"))
}

func TestPresence_SendSnapshot_TargetsOneConnection(t *testing.T) {
	req := require.New(t)
	hub := registry.NewRegistry()
	svc := NewPresenceService(testLogger(), hub)

	aliceConn := connect(hub, "alice")
	bobConn := connect(hub, "bob")

	// When alice asks for an immediate snapshot
	svc.SendSnapshot(context.Background(), "alice")

	// Then only alice got it
	var evt domain.PresenceEvent
	req.True(aliceConn.lastFrame(&evt))
	req.Equal([]string{"alice", "bob"}, evt.OnlineUserIDs)
	req.Empty(bobConn.received())
}

func TestPresence_ReconnectKeepsSingleEntry(t *testing.T) {
	req := require.New(t)
	hub := registry.NewRegistry()
	svc := NewPresenceService(testLogger(), hub)

	// Given alice reconnects, evicting her first connection
	connect(hub, "alice")
	fresh := connect(hub, "alice")
	svc.BroadcastAll(context.Background())

	// Then the online set lists her once
	var evt domain.PresenceEvent
	req.True(fresh.lastFrame(&evt))
	req.Equal([]string{"alice"}, evt.OnlineUserIDs)
}
