// Package shutdown coordinates process termination.
//
// The development server blocks in Handler.Wait and runs its cleanup
// hooks on SIGINT or SIGTERM. The CLI uses WithSignals so that an
// interrupt during a reveal countdown hides the secret before exit.
//
// Usage:
//
//	ctx, cancel := shutdown.WithSignals(context.Background())
//	defer cancel()
//	<-ctx.Done() // Wait for shutdown signal
package shutdown
