package services

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"

	"courier/internal/app/registry"
	"courier/internal/core/domain"

	"github.com/google/uuid"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recordingClient captures every frame pushed to a connection.
type recordingClient struct {
	mu     sync.Mutex
	userID string
	connID string
	frames [][]byte
	fail   bool
}

func newRecordingClient(userID string) *recordingClient {
	return &recordingClient{userID: userID, connID: uuid.NewString()}
}

func (c *recordingClient) UserID() string { return c.userID }
func (c *recordingClient) ConnID() string { return c.connID }
func (c *recordingClient) Close()         {}

func (c *recordingClient) Send(_ context.Context, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return context.Canceled
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	c.frames = append(c.frames, cp)
	return nil
}

func (c *recordingClient) received() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]byte, len(c.frames))
	copy(out, c.frames)
	return out
}

// lastFrame decodes the newest frame into v and reports whether one existed.
func (c *recordingClient) lastFrame(v any) bool {
	frames := c.received()
	if len(frames) == 0 {
		return false
	}
	return json.Unmarshal(frames[len(frames)-1], v) == nil
}

func (c *recordingClient) framesOfType(kind string) []json.RawMessage {
	var out []json.RawMessage
	for _, f := range c.received() {
		var probe struct {
			Type string `json:"type"`
		}
		if json.Unmarshal(f, &probe) == nil && probe.Type == kind {
			out = append(out, json.RawMessage(f))
		}
	}
	return out
}

// memMessageRepo is an in-memory MessageRepository mirroring the SQL
// predicates, including the forward-only status transitions.
type memMessageRepo struct {
	mu       sync.Mutex
	messages []*domain.Message
	saveErr  error
	markErr  error
	readErr  error
}

func newMemMessageRepo() *memMessageRepo { return &memMessageRepo{} }

func (r *memMessageRepo) SaveMessage(_ context.Context, m *domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	cp := *m
	r.messages = append(r.messages, &cp)
	return nil
}

func (r *memMessageRepo) MarkDelivered(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.markErr != nil {
		return r.markErr
	}
	for _, m := range r.messages {
		if m.ID == id && m.Status == domain.StatusSent {
			m.Status = domain.StatusDelivered
		}
	}
	return nil
}

func (r *memMessageRepo) MarkConversationRead(_ context.Context, senderID, receiverID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.readErr != nil {
		return 0, r.readErr
	}
	var n int64
	for _, m := range r.messages {
		if m.SenderID == senderID && m.ReceiverID == receiverID && m.Status != domain.StatusRead {
			m.Status = domain.StatusRead
			n++
		}
	}
	return n, nil
}

func (r *memMessageRepo) GetConversation(_ context.Context, a, b uuid.UUID) ([]domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Message
	for _, m := range r.messages {
		if (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a) {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *memMessageRepo) GetLastMessage(_ context.Context, a, b uuid.UUID) (*domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.messages) - 1; i >= 0; i-- {
		m := r.messages[i]
		if (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a) {
			cp := *m
			return &cp, nil
		}
	}
	return nil, domain.ErrMessageNotFound
}

func (r *memMessageRepo) stored(id uuid.UUID) *domain.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.messages {
		if m.ID == id {
			cp := *m
			return &cp
		}
	}
	return nil
}

// memUserRepo is an in-memory UserRepository.
type memUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[uuid.UUID]*domain.User)}
}

func (r *memUserRepo) CreateUser(_ context.Context, u *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *memUserRepo) GetUserByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *memUserRepo) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *memUserRepo) ListUsersExcept(_ context.Context, id uuid.UUID) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.User
	for _, u := range r.users {
		if u.ID != id {
			out = append(out, *u)
		}
	}
	return out, nil
}

// connect admits a recording client for the identity and returns it.
func connect(r *registry.Registry, userID string) *recordingClient {
	c := newRecordingClient(userID)
	r.Admit(c)
	return c
}
