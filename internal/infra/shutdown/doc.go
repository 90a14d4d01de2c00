// Package shutdown coordinates graceful process shutdown.
//
// A Handler waits for SIGINT, SIGTERM, context cancellation or an explicit
// Trigger, then runs the registered hooks in reverse registration order
// under a shared deadline.
//
// Usage:
//
//	h := shutdown.NewHandler(15 * time.Second)
//	h.OnShutdown("http server", srv.Shutdown)
//	h.OnShutdown("access store", func(context.Context) error { return kv.Close() })
//	err := h.Wait(ctx)
package shutdown
