// Package shutdown runs cleanup hooks when fleetdesk-cli exits.
//
// Hooks run once, in reverse order of registration, whether the process
// ends normally or on SIGINT/SIGTERM:
//
//	h := shutdown.NewHandler(5 * time.Second)
//	h.OnShutdown(func(ctx context.Context) error { return store.Close() })
//	ctx, stop := shutdown.WithSignals(context.Background())
//	defer stop()
//	run(ctx)
//	h.Shutdown()
package shutdown
