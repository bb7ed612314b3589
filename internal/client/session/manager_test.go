package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/lifedash/internal/client/kps"
	"github.com/dmitrijs2005/lifedash/internal/logging"
)

type fakeCredentials struct {
	mu       sync.Mutex
	users    map[string]string // email -> password
	calls    int
	failWith error
	block    chan struct{} // when set, Login waits until closed
}

func newFakeCredentials() *fakeCredentials {
	return &fakeCredentials{users: map[string]string{}}
}

func (f *fakeCredentials) Login(ctx context.Context, email, password string) (*User, error) {
	f.mu.Lock()
	f.calls++
	block := f.block
	failWith := f.failWith
	stored, ok := f.users[email]
	f.mu.Unlock()

	if block != nil {
		<-block
	}
	if failWith != nil {
		return nil, failWith
	}
	if !ok || stored != password {
		return nil, errors.New("invalid credentials")
	}
	return &User{ID: "id-" + email, Email: email, CreatedAt: time.Now().UTC()}, nil
}

func (f *fakeCredentials) Register(ctx context.Context, email, password string) (*User, error) {
	f.mu.Lock()
	f.calls++
	f.users[email] = password
	f.mu.Unlock()
	return &User{ID: "id-" + email, Email: email, CreatedAt: time.Now().UTC()}, nil
}

func (f *fakeCredentials) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newTestManager(t *testing.T) (*Manager, *kps.MemStorage, *fakeCredentials) {
	t.Helper()
	storage := kps.NewMemStorage()
	creds := newFakeCredentials()
	return NewManager(storage, creds, testLogger()), storage, creds
}

func TestManager_StartsUnresolved(t *testing.T) {
	m, _, _ := newTestManager(t)
	assert.Equal(t, StateUnresolved, m.Snapshot().State)
	assert.Equal(t, "", m.OwnerID())
}

func TestResolve_NoPersistedSession(t *testing.T) {
	m, _, _ := newTestManager(t)

	snap := m.Resolve(context.Background())
	assert.Equal(t, StateAnonymous, snap.State)
	assert.Nil(t, snap.User)
}

func TestResolve_PersistedSession(t *testing.T) {
	ctx := context.Background()
	storage := kps.NewMemStorage()
	require.NoError(t, storage.Set(ctx, UserSlotKey,
		`{"id":"u1","email":"a@b.com","createdAt":"2024-01-02T03:04:05Z"}`))

	m := NewManager(storage, newFakeCredentials(), testLogger())
	snap := m.Resolve(ctx)

	require.Equal(t, StateAuthenticated, snap.State)
	assert.Equal(t, "u1", snap.User.ID)
	assert.Equal(t, "a@b.com", snap.User.Email)
	assert.Equal(t, "u1", m.OwnerID())
}

func TestResolve_CorruptRecordCleared(t *testing.T) {
	ctx := context.Background()
	storage := kps.NewMemStorage()
	require.NoError(t, storage.Set(ctx, UserSlotKey, `{broken`))

	m := NewManager(storage, newFakeCredentials(), testLogger())
	snap := m.Resolve(ctx)

	assert.Equal(t, StateAnonymous, snap.State)
	_, ok, err := storage.Get(ctx, UserSlotKey)
	require.NoError(t, err)
	assert.False(t, ok, "corrupt record must be cleared")
}

func TestLogin_SuccessPersistsSession(t *testing.T) {
	ctx := context.Background()
	m, storage, creds := newTestManager(t)
	m.Resolve(ctx)
	_, err := creds.Register(ctx, "a@b.com", "abcdef")
	require.NoError(t, err)

	user, err := m.Login(ctx, "a@b.com", "abcdef")
	require.NoError(t, err)
	assert.Equal(t, "id-a@b.com", user.ID)
	assert.Equal(t, StateAuthenticated, m.Snapshot().State)

	raw, ok, err := storage.Get(ctx, UserSlotKey)
	require.NoError(t, err)
	require.True(t, ok, "identity must be mirrored durably")
	assert.Contains(t, raw, `"a@b.com"`)
}

func TestLogin_FailureReturnsToAnonymous(t *testing.T) {
	ctx := context.Background()
	m, storage, _ := newTestManager(t)
	m.Resolve(ctx)

	_, err := m.Login(ctx, "a@b.com", "wrong")
	require.Error(t, err)
	assert.Equal(t, StateAnonymous, m.Snapshot().State)

	_, ok, err := storage.Get(ctx, UserSlotKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLogin_EmptyInputRejectedLocally(t *testing.T) {
	m, _, creds := newTestManager(t)
	m.Resolve(context.Background())

	_, err := m.Login(context.Background(), "", "secret")
	require.ErrorIs(t, err, ErrMissingCredentials)
	assert.Equal(t, 0, creds.callCount(), "no network call for empty input")
}

func TestRegister_ShortPasswordRejectedBeforeNetwork(t *testing.T) {
	m, _, creds := newTestManager(t)
	m.Resolve(context.Background())

	_, err := m.Register(context.Background(), "a@b.com", "123")
	require.ErrorIs(t, err, ErrPasswordTooShort)
	assert.Equal(t, 0, creds.callCount())
	assert.Equal(t, StateAnonymous, m.Snapshot().State)
}

func TestRegister_AuthenticatesLikeLogin(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newTestManager(t)
	m.Resolve(ctx)

	user, err := m.Register(ctx, "a@b.com", "abcdef")
	require.NoError(t, err)
	registered := m.Snapshot()
	require.Equal(t, StateAuthenticated, registered.State)

	// Logging in with the same credentials afterwards yields the same
	// authenticated state.
	m.Logout(ctx)
	loggedIn, err := m.Login(ctx, "a@b.com", "abcdef")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.Equal(t, StateAuthenticated, m.Snapshot().State)
}

func TestLogout_ClearsEverything(t *testing.T) {
	ctx := context.Background()
	m, storage, _ := newTestManager(t)
	m.Resolve(ctx)
	_, err := m.Register(ctx, "a@b.com", "abcdef")
	require.NoError(t, err)

	m.Logout(ctx)

	snap := m.Snapshot()
	assert.Equal(t, StateAnonymous, snap.State)
	assert.Nil(t, snap.User)
	_, ok, err := storage.Get(ctx, UserSlotKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLogin_StaleResultDiscarded(t *testing.T) {
	ctx := context.Background()
	m, _, creds := newTestManager(t)
	m.Resolve(ctx)
	_, err := creds.Register(ctx, "a@b.com", "abcdef")
	require.NoError(t, err)

	// First call blocks mid-flight; a second call completes first.
	release := make(chan struct{})
	creds.mu.Lock()
	creds.block = release
	creds.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = m.Login(ctx, "a@b.com", "wrong-password")
	}()

	// Wait for the first call to be in flight, then unblock future calls.
	require.Eventually(t, func() bool { return creds.callCount() >= 2 }, time.Second, time.Millisecond)
	creds.mu.Lock()
	creds.block = nil
	creds.mu.Unlock()

	user, err := m.Login(ctx, "a@b.com", "abcdef")
	require.NoError(t, err)
	require.Equal(t, StateAuthenticated, m.Snapshot().State)

	// The abandoned first call finishes with a failure, but must not
	// overwrite the newer successful login.
	close(release)
	<-done
	assert.Equal(t, StateAuthenticated, m.Snapshot().State)
	assert.Equal(t, user.ID, m.OwnerID())
}

func TestSubscribe_ReceivesTransitions(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newTestManager(t)
	snapshots, cancel := m.Subscribe()
	defer cancel()

	m.Resolve(ctx)

	select {
	case snap := <-snapshots:
		assert.Equal(t, StateAnonymous, snap.State)
	case <-time.After(time.Second):
		t.Fatal("expected a snapshot after Resolve")
	}

	_, err := m.Register(ctx, "a@b.com", "abcdef")
	require.NoError(t, err)

	select {
	case snap := <-snapshots:
		assert.Equal(t, StateAuthenticated, snap.State)
	case <-time.After(time.Second):
		t.Fatal("expected a snapshot after Register")
	}
}
