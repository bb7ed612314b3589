package gate

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/lifedash/internal/client/kps"
	"github.com/dmitrijs2005/lifedash/internal/client/session"
	"github.com/dmitrijs2005/lifedash/internal/logging"
)

type recordingNavigator struct {
	mu      sync.Mutex
	targets []string
}

func (n *recordingNavigator) Redirect(target string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.targets = append(n.targets, target)
}

func (n *recordingNavigator) last() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.targets) == 0 {
		return ""
	}
	return n.targets[len(n.targets)-1]
}

func (n *recordingNavigator) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.targets)
}

type fakeCredentials struct{}

func (fakeCredentials) Login(ctx context.Context, email, password string) (*session.User, error) {
	return &session.User{ID: "u1", Email: email}, nil
}

func (fakeCredentials) Register(ctx context.Context, email, password string) (*session.User, error) {
	return &session.User{ID: "u1", Email: email}, nil
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newTestGate(t *testing.T) (*Gate, *session.Manager, *recordingNavigator) {
	t.Helper()
	m := session.NewManager(kps.NewMemStorage(), fakeCredentials{}, testLogger())
	nav := &recordingNavigator{}
	return New(m, nav), m, nav
}

func TestEvaluate_PlaceholderWhileUnresolved(t *testing.T) {
	g, _, nav := newTestGate(t)

	assert.Equal(t, DecisionPlaceholder, g.Evaluate("/todos"))
	assert.Equal(t, 0, nav.count(), "no redirect before the session resolves")
}

func TestEvaluate_AnonymousRedirectsToLogin(t *testing.T) {
	g, m, nav := newTestGate(t)
	m.Resolve(context.Background())

	assert.Equal(t, DecisionRedirect, g.Evaluate("/todos"))
	assert.Equal(t, "/login?redirect=%2Ftodos", nav.last())
}

func TestEvaluate_AuthenticatedRenders(t *testing.T) {
	ctx := context.Background()
	g, m, nav := newTestGate(t)
	m.Resolve(ctx)
	require.Equal(t, DecisionRedirect, g.Evaluate("/todos"))
	_, err := m.Login(ctx, "a@b.com", "abcdef")
	require.NoError(t, err)

	assert.Equal(t, DecisionRender, g.Evaluate("/todos"))
	assert.Equal(t, "u1", g.OwnerID())
	assert.Equal(t, 1, nav.count(), "only the pre-login evaluation redirected")
}

func TestEvaluate_ResolveToAuthenticatedSkipsRedirect(t *testing.T) {
	ctx := context.Background()
	storage := kps.NewMemStorage()
	require.NoError(t, storage.Set(ctx, session.UserSlotKey,
		`{"id":"u1","email":"a@b.com","createdAt":"2024-01-02T03:04:05Z"}`))
	m := session.NewManager(storage, fakeCredentials{}, testLogger())
	nav := &recordingNavigator{}
	g := New(m, nav)

	assert.Equal(t, DecisionPlaceholder, g.Evaluate("/plans"))
	m.Resolve(ctx)
	assert.Equal(t, DecisionRender, g.Evaluate("/plans"))
	assert.Equal(t, 0, nav.count(), "persisted session must never bounce through login")
}

func TestWatch_LogoutWhileViewingRedirects(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g, m, nav := newTestGate(t)
	m.Resolve(ctx)
	_, err := m.Login(ctx, "a@b.com", "abcdef")
	require.NoError(t, err)
	require.Equal(t, DecisionRender, g.Evaluate("/cards"))

	g.Watch(ctx, "/cards")
	m.Logout(ctx)

	require.Eventually(t, func() bool {
		return nav.last() == "/login?redirect=%2Fcards"
	}, time.Second, 5*time.Millisecond)
}

func TestLoginTarget_EscapesPath(t *testing.T) {
	g, _, _ := newTestGate(t)
	assert.Equal(t, "/login?redirect=%2Fstory-ideas", g.LoginTarget("/story-ideas"))
}
