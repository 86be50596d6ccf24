// Package shutdown runs ordered cleanup when ssmproxy-server is asked to
// stop.
//
//	h := shutdown.NewHandler(15 * time.Second)
//	h.OnShutdown("http", srv.Shutdown)
//	h.OnShutdown("receivers", registry.Close) // runs first
//	err := h.Wait(ctx)
package shutdown
