// Package session tracks the authenticated identity for a client process.
// The manager starts unresolved, resolves to anonymous or authenticated from
// the durable mirror, and moves between the two through login, register and
// logout. Owner-scoped views consume it through snapshots and subscriptions.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/lifedash/internal/client/kps"
	"github.com/dmitrijs2005/lifedash/internal/logging"
)

// UserSlotKey is the fixed durable slot holding the persisted session
// record. It is deliberately not owner-namespaced: it is how the owner is
// discovered in the first place.
const UserSlotKey = "current_user"

// MinPasswordLength is enforced locally before any network call.
const MinPasswordLength = 6

var (
	// ErrMissingCredentials is returned when email or password is empty.
	ErrMissingCredentials = errors.New("email and password are required")
	// ErrPasswordTooShort is returned by Register before the network call.
	ErrPasswordTooShort = fmt.Errorf("password must be at least %d characters long", MinPasswordLength)
)

// User is the authenticated identity issued by the credential service.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// CredentialClient is the credential-service surface the manager needs.
type CredentialClient interface {
	Login(ctx context.Context, email, password string) (*User, error)
	Register(ctx context.Context, email, password string) (*User, error)
}

// State is the session lifecycle state.
type State int

const (
	// StateUnresolved means the durable check has not completed yet.
	// Callers must treat it as "still checking", not as "logged out".
	StateUnresolved State = iota
	StateAnonymous
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateUnresolved:
		return "unresolved"
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Snapshot is an immutable view of the manager at one point in time.
type Snapshot struct {
	State State
	User  *User
}

// OwnerID returns the authenticated owner id, or "" otherwise.
func (s Snapshot) OwnerID() string {
	if s.State == StateAuthenticated && s.User != nil {
		return s.User.ID
	}
	return ""
}

// Manager owns the current session exclusively. All methods are safe for
// concurrent use; the last initiated login/register wins, results of
// abandoned earlier calls are discarded.
type Manager struct {
	storage kps.SlotStorage
	client  CredentialClient
	logger  logging.Logger

	mu      sync.Mutex
	state   State
	user    *User
	seq     uint64
	subs    map[int]chan Snapshot
	nextSub int
}

// NewManager creates a manager in the unresolved state. Call Resolve before
// consulting it.
func NewManager(storage kps.SlotStorage, client CredentialClient, logger logging.Logger) *Manager {
	return &Manager{
		storage: storage,
		client:  client,
		logger:  logger,
		state:   StateUnresolved,
		subs:    make(map[int]chan Snapshot),
	}
}

// Resolve reads the persisted session record and settles the state to
// authenticated or anonymous. A corrupt record is cleared and treated as
// anonymous. Resolve always completes; it never leaves the manager
// unresolved.
func (m *Manager) Resolve(ctx context.Context) Snapshot {
	raw, ok, err := m.storage.Get(ctx, UserSlotKey)

	m.mu.Lock()
	defer m.mu.Unlock()

	if err != nil {
		m.logger.Error(ctx, "session slot read failed", "error", err)
		m.setLocked(StateAnonymous, nil)
		return m.snapshotLocked()
	}
	if !ok {
		m.setLocked(StateAnonymous, nil)
		return m.snapshotLocked()
	}

	var user User
	if err := json.Unmarshal([]byte(raw), &user); err != nil || user.ID == "" {
		m.logger.Warn(ctx, "corrupt session record, clearing", "error", err)
		if err := m.storage.Remove(ctx, UserSlotKey); err != nil {
			m.logger.Error(ctx, "session slot clear failed", "error", err)
		}
		m.setLocked(StateAnonymous, nil)
		return m.snapshotLocked()
	}

	m.setLocked(StateAuthenticated, &user)
	return m.snapshotLocked()
}

// Snapshot returns the current state and identity.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// OwnerID is a convenience accessor for the authenticated owner id.
func (m *Manager) OwnerID() string {
	return m.Snapshot().OwnerID()
}

// Login authenticates against the credential service. On success the
// identity is installed and mirrored durably so a restart skips the network.
// On failure the manager returns to anonymous and the error is propagated
// for display.
func (m *Manager) Login(ctx context.Context, email, password string) (*User, error) {
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}
	seq := m.begin()

	user, err := m.client.Login(ctx, email, password)
	return m.finish(ctx, seq, user, err)
}

// Register creates an identity and, like the product's register-is-login
// behavior, authenticates immediately. The password policy is checked before
// any network round trip.
func (m *Manager) Register(ctx context.Context, email, password string) (*User, error) {
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}
	if len(password) < MinPasswordLength {
		return nil, ErrPasswordTooShort
	}
	seq := m.begin()

	user, err := m.client.Register(ctx, email, password)
	return m.finish(ctx, seq, user, err)
}

// Logout clears the in-memory identity and the durable mirror, then
// notifies subscribers. Subscribers (the access gate) redirect owner-scoped
// views away; late writes from such views are already neutralized by the
// store's write guard.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.storage.Remove(ctx, UserSlotKey); err != nil {
		m.logger.Error(ctx, "session slot clear failed", "error", err)
	}
	m.setLocked(StateAnonymous, nil)
}

// Subscribe returns a channel receiving a snapshot after every state
// transition, and a cancel function. Slow consumers drop intermediate
// snapshots; the latest one is always retrievable via Snapshot.
func (m *Manager) Subscribe() (<-chan Snapshot, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextSub
	m.nextSub++
	ch := make(chan Snapshot, 8)
	m.subs[id] = ch
	cancel := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if c, ok := m.subs[id]; ok {
			delete(m.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

// begin marks the start of a credential call and returns its sequence
// number. Only the call with the highest sequence may install its result.
func (m *Manager) begin() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	return m.seq
}

// finish applies the outcome of a credential call unless a newer call has
// been initiated since, in which case the result is discarded.
func (m *Manager) finish(ctx context.Context, seq uint64, user *User, err error) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if seq != m.seq {
		m.logger.Warn(ctx, "stale credential result discarded", "seq", seq)
		return user, err
	}

	if err != nil {
		if removeErr := m.storage.Remove(ctx, UserSlotKey); removeErr != nil {
			m.logger.Error(ctx, "session slot clear failed", "error", removeErr)
		}
		m.setLocked(StateAnonymous, nil)
		return nil, err
	}

	raw, marshalErr := json.Marshal(user)
	if marshalErr != nil {
		m.logger.Error(ctx, "session record not serializable", "error", marshalErr)
	} else if setErr := m.storage.Set(ctx, UserSlotKey, string(raw)); setErr != nil {
		m.logger.Error(ctx, "session slot write failed", "error", setErr)
	}
	m.setLocked(StateAuthenticated, user)
	return user, nil
}

// setLocked installs a state and fans it out. Called with m.mu held.
func (m *Manager) setLocked(state State, user *User) {
	m.state = state
	m.user = user
	snap := m.snapshotLocked()
	for _, ch := range m.subs {
		select {
		case ch <- snap:
		default:
		}
	}
}

func (m *Manager) snapshotLocked() Snapshot {
	return Snapshot{State: m.state, User: m.user}
}
