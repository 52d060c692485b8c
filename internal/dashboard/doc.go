// Package dashboard is the synchronization core of the fleet monitor.
//
// It owns the selection model (host, GPU, visible-host filter), the
// time-gated caches behind it, the refresh scheduler and the two transfer
// sessions. Nothing in here does I/O on its own: mutating operations return
// Requests, the driver executes them (usually inside a tea.Cmd) and hands the
// Results back through Scheduler.Apply on its single event loop.
//
// Results are only applied while their target is still selected, so a slow
// response for a host the operator already moved away from is dropped instead
// of overwriting what is on screen.
package dashboard
