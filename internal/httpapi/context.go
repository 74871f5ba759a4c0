package httpapi

import (
	"context"
)

// serverBaseCtx is canceled when the daemon shuts down so in-flight
// dispatches (upstream LLM calls, git clones) stop promptly. Defaults to
// Background until main wires the signal context in.
var serverBaseCtx = context.Background()

// SetBaseContext installs the daemon lifetime context joined into every
// dispatch.
func SetBaseContext(ctx context.Context) {
	if ctx == nil {
		serverBaseCtx = context.Background()
		return
	}
	serverBaseCtx = ctx
}

// joinContexts derives a context canceled when either the daemon lifetime or
// the request ends, whichever comes first. The cancel func must be called
// when the dispatch returns to release the watcher goroutine.
func joinContexts(a, b context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		select {
		case <-a.Done():
			cancel()
		case <-b.Done():
			cancel()
		}
	}()
	return ctx, cancel
}
