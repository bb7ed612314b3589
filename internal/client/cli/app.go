package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/go-redis/redis/v8"

	"github.com/dmitrijs2005/lifedash/internal/client/api"
	"github.com/dmitrijs2005/lifedash/internal/client/config"
	"github.com/dmitrijs2005/lifedash/internal/client/gate"
	"github.com/dmitrijs2005/lifedash/internal/client/kps"
	"github.com/dmitrijs2005/lifedash/internal/client/session"
	"github.com/dmitrijs2005/lifedash/internal/logging"
)

// Link is one quick-link entry kept in the local owner-scoped slot.
type Link struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// StoryIdea is one writing idea kept in the local owner-scoped slot.
type StoryIdea struct {
	Title string `json:"title"`
	Genre string `json:"genre"`
}

// consoleNavigator is the CLI rendition of a router push: it tells the user
// where they have been sent instead of switching a browser page.
type consoleNavigator struct{}

func (consoleNavigator) Redirect(target string) {
	fmt.Printf("You need to sign in first (%s)\n", target)
}

type App struct {
	config   *config.Config
	api      *api.Client
	sessions *session.Manager
	gate     *gate.Gate
	logger   logging.Logger

	storage kps.SlotStorage
	watcher kps.Watcher

	links   *kps.Cell[[]Link]
	stories *kps.Cell[[]StoryIdea]

	reader      *bufio.Reader
	cleanup     func()
	watchCancel context.CancelFunc
}

// NewApp wires the client: durable slot store (Redis when configured, local
// SQLite with polling otherwise), backend API client, session manager, access
// gate and the owner-scoped cells backing the local dashboard sections.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	var (
		storage kps.SlotStorage
		watcher kps.Watcher
		cleanup func()
	)

	if c.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: c.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		rs := kps.NewRedisStorage(rdb)
		storage, watcher = rs, rs
		cleanup = func() { _ = rdb.Close() }
	} else {
		db, err := kps.OpenSQLite(ctx, c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to open local database: %w", err)
		}
		storage = db
		watcher = kps.NewPollWatcher(db, c.PollInterval)
		cleanup = func() { _ = db.Close() }
	}

	apiClient := api.NewClient(c.ServerEndpointAddr)
	sessions := session.NewManager(storage, apiClient, logger)
	g := gate.New(sessions, consoleNavigator{})

	links, err := kps.OpenOwned(ctx, storage, watcher, logger, "quick_links", []Link{}, "")
	if err != nil {
		cleanup()
		return nil, err
	}
	stories, err := kps.OpenOwned(ctx, storage, watcher, logger, "story_ideas", []StoryIdea{}, "")
	if err != nil {
		cleanup()
		return nil, err
	}

	a := &App{
		config:   c,
		api:      apiClient,
		sessions: sessions,
		gate:     g,
		logger:   logger,
		storage:  storage,
		watcher:  watcher,
		links:    links,
		stories:  stories,
		reader:   bufio.NewReader(os.Stdin),
		cleanup:  cleanup,
	}
	a.followSession(ctx)
	return a, nil
}

// followSession keeps the owner-scoped cells pointed at the current owner.
// A logout flips them back to the empty owner, which resets their values and
// detaches them from durable storage.
func (a *App) followSession(ctx context.Context) {
	snapshots, cancel := a.sessions.Subscribe()
	go func() {
		defer cancel()
		for {
			select {
			case <-ctx.Done():
				return
			case snap, ok := <-snapshots:
				if !ok {
					return
				}
				owner := snap.OwnerID()
				a.links.SetOwner(ctx, owner)
				a.stories.SetOwner(ctx, owner)
			}
		}
	}()
}

func (a *App) Run(ctx context.Context) {
	defer a.Close()
	a.Root(ctx)
}

// Close releases the change subscriptions and the storage backend.
func (a *App) Close() {
	if a.watchCancel != nil {
		a.watchCancel()
	}
	a.links.Close()
	a.stories.Close()
	if a.cleanup != nil {
		a.cleanup()
	}
}

func (a *App) isLoggedIn() bool {
	return a.sessions.Snapshot().State == session.StateAuthenticated
}

// guard runs the access gate for an owner-scoped screen. A redirect decision
// has already told the user to sign in; the command simply stops. A rendered
// screen stays watched, so losing the session later triggers the same
// redirect notice as an anonymous mount.
func (a *App) guard(path string) bool {
	if a.gate.Evaluate(path) != gate.DecisionRender {
		return false
	}
	if a.watchCancel != nil {
		a.watchCancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.watchCancel = cancel
	a.gate.Watch(ctx, path)
	return true
}
