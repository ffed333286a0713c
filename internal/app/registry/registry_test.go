package registry

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	userID string
	connID string
}

func (f *fakeClient) UserID() string                     { return f.userID }
func (f *fakeClient) ConnID() string                     { return f.connID }
func (f *fakeClient) Send(context.Context, []byte) error { return nil }
func (f *fakeClient) Close()                             {}

func TestRegistry_Admit_SingleConnection(t *testing.T) {
	req := require.New(t)
	r := NewRegistry()
	c := &fakeClient{userID: "alice", connID: "conn-1"}

	// When a client is admitted
	r.Admit(c)

	// Then both directions of the mapping exist
	got, ok := r.Resolve("alice")
	req.True(ok)
	req.Equal(c, got)

	userID, ok := r.IdentityOf("conn-1")
	req.True(ok)
	req.Equal("alice", userID)

	req.Equal([]string{"alice"}, r.OnlineIdentities())
}

func TestRegistry_Admit_EvictsPriorConnection(t *testing.T) {
	req := require.New(t)
	r := NewRegistry()
	old := &fakeClient{userID: "alice", connID: "conn-1"}
	fresh := &fakeClient{userID: "alice", connID: "conn-2"}

	// Given an admitted connection
	r.Admit(old)

	// When the same identity is admitted again
	r.Admit(fresh)

	// Then the newer connection is the live one
	got, ok := r.Resolve("alice")
	req.True(ok)
	req.Equal(fresh, got)

	// And the old connection id is no longer mapped
	_, ok = r.IdentityOf("conn-1")
	req.False(ok)

	// And at most one live entry exists for the identity
	req.Equal([]string{"alice"}, r.OnlineIdentities())
	req.Len(r.Clients(), 1)
}

func TestRegistry_Remove_DropsBothDirections(t *testing.T) {
	req := require.New(t)
	r := NewRegistry()
	r.Admit(&fakeClient{userID: "alice", connID: "conn-1"})

	// When the live connection closes
	r.Remove("conn-1")

	// Then the identity is offline
	_, ok := r.Resolve("alice")
	req.False(ok)
	_, ok = r.IdentityOf("conn-1")
	req.False(ok)
	req.Empty(r.OnlineIdentities())
}

func TestRegistry_Remove_StaleCloseIsNoOp(t *testing.T) {
	req := require.New(t)
	r := NewRegistry()
	old := &fakeClient{userID: "alice", connID: "conn-1"}
	fresh := &fakeClient{userID: "alice", connID: "conn-2"}

	// Given a reconnect evicted the old connection
	r.Admit(old)
	r.Admit(fresh)

	// When the old connection's close finally arrives
	r.Remove("conn-1")

	// Then the fresh connection is untouched
	got, ok := r.Resolve("alice")
	req.True(ok)
	req.Equal(fresh, got)
	req.Equal([]string{"alice"}, r.OnlineIdentities())
}

func TestRegistry_OnlineIdentities_Sorted(t *testing.T) {
	req := require.New(t)
	r := NewRegistry()
	r.Admit(&fakeClient{userID: "carol", connID: "c3"})
	r.Admit(&fakeClient{userID: "alice", connID: "c1"})
	r.Admit(&fakeClient{userID: "bob", connID: "c2"})

	req.Equal([]string{"alice", "bob", "carol"}, r.OnlineIdentities())
}

func TestRegistry_ConcurrentAdmitRemove_InvariantHolds(t *testing.T) {
	req := require.New(t)
	r := NewRegistry()

	// When many goroutines churn the same identities
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			userID := fmt.Sprintf("user-%d", i%5)
			connID := fmt.Sprintf("conn-%d", i)
			r.Admit(&fakeClient{userID: userID, connID: connID})
			r.OnlineIdentities()
			if i%2 == 0 {
				r.Remove(connID)
			}
		}(i)
	}
	wg.Wait()

	// Then every remaining identity has exactly one live connection
	online := r.OnlineIdentities()
	seen := make(map[string]bool)
	for _, id := range online {
		req.False(seen[id], "identity %s registered twice", id)
		seen[id] = true
		c, ok := r.Resolve(id)
		req.True(ok)
		back, ok := r.IdentityOf(c.ConnID())
		req.True(ok)
		req.Equal(id, back)
	}
}
