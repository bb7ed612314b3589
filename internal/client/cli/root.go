package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/lifedash/internal/client/session"
)

func (a *App) getStatus() string {
	snap := a.sessions.Snapshot()
	if snap.State == session.StateAuthenticated && snap.User != nil {
		return fmt.Sprintf("(%s) ", snap.User.Email)
	}
	return ""
}

// Root resolves the persisted session and runs the REPL until exit. A user
// whose durable session is still valid lands straight in the logged-in
// command set, no prompt.
func (a *App) Root(ctx context.Context) {
	fmt.Println("Welcome to lifedash CLI (type 'help' for commands)")

	snap := a.sessions.Resolve(ctx)
	if snap.State == session.StateAuthenticated {
		fmt.Printf("Resumed session for %s\n", snap.User.Email)
	}

	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}
