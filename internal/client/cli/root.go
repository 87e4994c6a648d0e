package cli

import (
	"context"
	"fmt"
)

func (a *App) getStatus() string {
	s := ""
	a.mu.Lock()
	if a.account != nil {
		s = a.account.Username + " "
	}
	conn := a.conn
	a.mu.Unlock()

	if conn != nil {
		s = s + conn.State().String() + "@" + conn.Address()
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// Root prints a greeting and runs the REPL on the app's input until exit.
func (a *App) Root(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to Matthias (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader)
}
