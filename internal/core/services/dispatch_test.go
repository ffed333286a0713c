package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"courier/internal/app/registry"
	"courier/internal/core/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestDispatch_Send_ReceiverOnline_Delivered(t *testing.T) {
	req := require.New(t)
	hub := registry.NewRegistry()
	repo := newMemMessageRepo()
	svc := NewDispatchService(testLogger(), hub, repo)

	alice := uuid.NewString()
	bob := uuid.NewString()

	// Given both endpoints are online
	aliceConn := connect(hub, alice)
	bobConn := connect(hub, bob)

	// When alice sends to bob
	msg, err := svc.Send(context.Background(), alice, domain.SendRequest{
		ReceiverID: bob,
		Content:    "hi",
	})

	// Then the ack reports delivered
	req.NoError(err)
	req.Equal(domain.StatusDelivered, msg.Status)

	// And the stored row is delivered
	req.Equal(domain.StatusDelivered, repo.stored(msg.ID).Status)

	// And bob received message:new carrying the final status
	var evt domain.MessageEvent
	req.True(bobConn.lastFrame(&evt))
	req.Equal(domain.TypeMessageNew, evt.Type)
	req.Equal(domain.StatusDelivered, evt.Message.Status)
	req.Equal("hi", evt.Message.Content)

	// And alice got the authoritative echo with the same status
	req.True(aliceConn.lastFrame(&evt))
	req.Equal(domain.StatusDelivered, evt.Message.Status)
}

func TestDispatch_Send_ReceiverOffline_StaysSent(t *testing.T) {
	req := require.New(t)
	hub := registry.NewRegistry()
	repo := newMemMessageRepo()
	svc := NewDispatchService(testLogger(), hub, repo)

	alice := uuid.NewString()
	bob := uuid.NewString()
	aliceConn := connect(hub, alice)
	// bob never connects

	msg, err := svc.Send(context.Background(), alice, domain.SendRequest{
		ReceiverID: bob,
		Content:    "are you there?",
	})

	// Routing miss is not an error: the message stays sent
	req.NoError(err)
	req.Equal(domain.StatusSent, msg.Status)
	req.Equal(domain.StatusSent, repo.stored(msg.ID).Status)

	// The sender still gets the echo
	var evt domain.MessageEvent
	req.True(aliceConn.lastFrame(&evt))
	req.Equal(domain.StatusSent, evt.Message.Status)
}

func TestDispatch_Send_ReceiverDisconnectsBeforeFanout(t *testing.T) {
	req := require.New(t)
	hub := registry.NewRegistry()
	repo := newMemMessageRepo()
	svc := NewDispatchService(testLogger(), hub, repo)

	alice := uuid.NewString()
	bob := uuid.NewString()
	connect(hub, alice)
	bobConn := connect(hub, bob)

	// Given bob drops right before the dispatch
	hub.Remove(bobConn.ConnID())

	msg, err := svc.Send(context.Background(), alice, domain.SendRequest{
		ReceiverID: bob,
		Content:    "hello",
	})

	// The registry answer at fanout time wins: sent, nothing pushed to bob
	req.NoError(err)
	req.Equal(domain.StatusSent, msg.Status)
	req.Empty(bobConn.received())
}

func TestDispatch_Send_ReceiverPushFailureIsDropped(t *testing.T) {
	req := require.New(t)
	hub := registry.NewRegistry()
	repo := newMemMessageRepo()
	svc := NewDispatchService(testLogger(), hub, repo)

	alice := uuid.NewString()
	bob := uuid.NewString()
	aliceConn := connect(hub, alice)

	// Given bob is resolved as online but his connection dies before the
	// push lands
	bobConn := connect(hub, bob)
	bobConn.fail = true

	msg, err := svc.Send(context.Background(), alice, domain.SendRequest{
		ReceiverID: bob,
		Content:    "hi",
	})

	// Then the losing side is a dropped push, not a failed send: the
	// delivered upgrade already committed and the sender's echo stands
	req.NoError(err)
	req.Equal(domain.StatusDelivered, msg.Status)
	req.Equal(domain.StatusDelivered, repo.stored(msg.ID).Status)
	req.Empty(bobConn.received())

	var evt domain.MessageEvent
	req.True(aliceConn.lastFrame(&evt))
	req.Equal(domain.StatusDelivered, evt.Message.Status)
}

func TestDispatch_Send_Validation(t *testing.T) {
	hub := registry.NewRegistry()
	repo := newMemMessageRepo()
	svc := NewDispatchService(testLogger(), hub, repo)
	alice := uuid.NewString()

	tests := []struct {
		name string
		req  domain.SendRequest
	}{
		{"missing receiver", domain.SendRequest{Content: "hi"}},
		{"empty content", domain.SendRequest{ReceiverID: uuid.NewString()}},
		{"oversized content", domain.SendRequest{ReceiverID: uuid.NewString(), Content: strings.Repeat("x", 1001)}},
		{"malformed receiver id", domain.SendRequest{ReceiverID: "not-a-uuid", Content: "hi"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			_, err := svc.Send(context.Background(), alice, tt.req)

			// Typed validation failure, nothing persisted
			req.ErrorIs(err, domain.ErrValidation)
			req.Empty(repo.messages)
		})
	}
}

func TestDispatch_Send_ContentAtLimitAccepted(t *testing.T) {
	req := require.New(t)
	hub := registry.NewRegistry()
	repo := newMemMessageRepo()
	svc := NewDispatchService(testLogger(), hub, repo)

	alice := uuid.NewString()
	connect(hub, alice)

	msg, err := svc.Send(context.Background(), alice, domain.SendRequest{
		ReceiverID: uuid.NewString(),
		Content:    strings.Repeat("x", 1000),
	})
	req.NoError(err)
	req.Len(msg.Content, 1000)
}

func TestDispatch_Send_PersistenceFailure(t *testing.T) {
	req := require.New(t)
	hub := registry.NewRegistry()
	repo := newMemMessageRepo()
	repo.saveErr = errors.New("store down")
	svc := NewDispatchService(testLogger(), hub, repo)

	alice := uuid.NewString()
	aliceConn := connect(hub, alice)

	_, err := svc.Send(context.Background(), alice, domain.SendRequest{
		ReceiverID: uuid.NewString(),
		Content:    "hi",
	})

	// Surfaced as a persistence failure; no fanout happened
	req.ErrorIs(err, domain.ErrPersistence)
	req.Empty(aliceConn.received())
}

func TestDispatch_Send_DeliveredUpgradeFails_EchoReflectsStoredStatus(t *testing.T) {
	req := require.New(t)
	hub := registry.NewRegistry()
	repo := newMemMessageRepo()
	repo.markErr = errors.New("update failed")
	svc := NewDispatchService(testLogger(), hub, repo)

	alice := uuid.NewString()
	bob := uuid.NewString()
	aliceConn := connect(hub, alice)
	bobConn := connect(hub, bob)

	msg, err := svc.Send(context.Background(), alice, domain.SendRequest{
		ReceiverID: bob,
		Content:    "hi",
	})

	// The insert succeeded, so the send itself succeeds; the echo carries
	// the best-known persisted status.
	req.NoError(err)
	req.Equal(domain.StatusSent, msg.Status)
	req.Equal(domain.StatusSent, repo.stored(msg.ID).Status)
	req.Empty(bobConn.received())

	var evt domain.MessageEvent
	req.True(aliceConn.lastFrame(&evt))
	req.Equal(domain.StatusSent, evt.Message.Status)
}
