package contracts

import "context"

// Registry is the authoritative live map between user identity and active
// connection. It is the single source of truth for "is X reachable right
// now"; all mutations are linearizable with respect to one another.
type Registry interface {
	// Admit installs a client, atomically evicting any prior connection
	// registered to the same identity. Eviction only changes registry
	// state; the evicted transport keeps running.
	Admit(c Client)
	// Remove drops the client's mapping if it is still the live one for
	// its identity. A stale close racing a fresher reconnect is a no-op.
	Remove(connID string)
	// Resolve returns the live connection for an identity, if any.
	Resolve(userID string) (Client, bool)
	// IdentityOf returns the identity bound to a connection id.
	IdentityOf(connID string) (string, bool)
	// OnlineIdentities snapshots the set of identities with a live entry.
	OnlineIdentities() []string
	// Clients snapshots every live connection, for fanout.
	Clients() []Client
}

// Client is the minimal surface the registry and services need to talk to an
// individual connection.
type Client interface {
	UserID() string
	ConnID() string
	Send(ctx context.Context, data []byte) error
	Close()
}

// CredentialVerifier validates a presented token and returns the subject
// identity. It is an ordinary dependency of the connection handshake.
type CredentialVerifier interface {
	Verify(token string) (userID string, err error)
}
