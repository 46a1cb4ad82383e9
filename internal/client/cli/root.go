package cli

import (
	"bufio"
	"context"
	"fmt"
)

func (a *App) getStatus() string {
	s := ""
	if snap := a.snapshot(); snap != nil && snap.Deployment != nil {
		s = snap.Deployment.DisplayName() + " "
	}
	if m := a.mode(); m != "" {
		s = s + string(m)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// Root authenticates, opens the session and runs the REPL until the
// operator exits.
func (a *App) Root(ctx context.Context) {

	fmt.Fprintln(a.out, "Welcome to FieldLog console (type 'help' for commands)")

	if err := a.Authenticate(ctx); err != nil {
		return
	}
	_ = a.Sync(ctx, nil)

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go a.StartOnlineStatusWatcher(watchCtx, a.config.OnlineCheckInterval, a.config.PingTimeout)

	runREPL(ctx, a, a.getStatus, bufio.NewScanner(a.reader))
}
