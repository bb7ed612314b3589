// Package gate implements the render-blocking guard wrapping owner-scoped
// views: placeholder while the session is unresolved, redirect to the login
// entry point while anonymous, render once authenticated.
package gate

import (
	"context"
	"net/url"

	"github.com/dmitrijs2005/lifedash/internal/client/session"
)

// DefaultLoginPath is the login entry point redirects target.
const DefaultLoginPath = "/login"

// RedirectParam carries the originally requested path through the login
// flow so it can be restored afterwards.
const RedirectParam = "redirect"

// Decision is what the guard tells the view layer to do.
type Decision int

const (
	// DecisionPlaceholder: still resolving, render nothing and do not
	// redirect. Redirecting here would flash the login page at users whose
	// durable session is about to resolve.
	DecisionPlaceholder Decision = iota
	// DecisionRedirect: anonymous, the navigator has been sent to login.
	DecisionRedirect
	// DecisionRender: authenticated, render the wrapped content.
	DecisionRender
)

func (d Decision) String() string {
	switch d {
	case DecisionPlaceholder:
		return "placeholder"
	case DecisionRedirect:
		return "redirect"
	case DecisionRender:
		return "render"
	default:
		return "unknown"
	}
}

// Navigator moves the client to another path. In a browser this is the
// router push; in the CLI it is a screen switch.
type Navigator interface {
	Redirect(target string)
}

// Gate evaluates the session state for a navigation path.
type Gate struct {
	sessions  *session.Manager
	nav       Navigator
	loginPath string
}

// New creates a gate over the given session manager and navigator.
func New(sessions *session.Manager, nav Navigator) *Gate {
	return &Gate{sessions: sessions, nav: nav, loginPath: DefaultLoginPath}
}

// LoginTarget builds the redirect target preserving the requested path.
func (g *Gate) LoginTarget(path string) string {
	return g.loginPath + "?" + RedirectParam + "=" + url.QueryEscape(path)
}

// Evaluate checks the current session state for a view mounted at path.
// When the session is anonymous the navigator is redirected to the login
// entry point with the original path preserved.
func (g *Gate) Evaluate(path string) Decision {
	return g.decide(g.sessions.Snapshot(), path)
}

// OwnerID exposes the resolved owner id to rendered content.
func (g *Gate) OwnerID() string {
	return g.sessions.OwnerID()
}

// Watch re-evaluates the gate on every session transition until ctx is
// cancelled. A session that turns anonymous after the initial render (logout
// while viewing) triggers the same redirect as an anonymous mount.
func (g *Gate) Watch(ctx context.Context, path string) {
	snapshots, cancel := g.sessions.Subscribe()
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
				g.decide(snap, path)
			}
		}
	}()
}

func (g *Gate) decide(snap session.Snapshot, path string) Decision {
	switch snap.State {
	case session.StateAuthenticated:
		return DecisionRender
	case session.StateAnonymous:
		g.nav.Redirect(g.LoginTarget(path))
		return DecisionRedirect
	default:
		return DecisionPlaceholder
	}
}
