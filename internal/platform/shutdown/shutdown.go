// Package shutdown ties process lifetime to SIGINT and SIGTERM.
package shutdown

import (
	"context"
	"os/signal"
	"syscall"
)

// NotifyContext is cancelled on the first SIGINT or SIGTERM; call stop to
// restore default signal handling so a second signal kills the process.
func NotifyContext(parent context.Context) (ctx context.Context, stop context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}
