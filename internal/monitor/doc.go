// Package monitor is the terminal dashboard for a GPU fleet.
//
// The left pane lists the hosts of the fleet; selecting one loads its GPU
// status into the right pane, and selecting a GPU there loads the processes
// running on it. Uploads and downloads against the selected host run in the
// background with a progress line each.
//
// # Architecture
//
// The package uses the Bubble Tea framework (Model-Update-View). All
// synchronization decisions live in the dashboard package; this package is
// only the driver:
//
//   - Scheduler operations return requests. Model.run turns each into a
//     command that calls dashboard.Execute off the event loop.
//   - The command's resultMsg is fed back through Scheduler.Apply, which may
//     return follow-up requests.
//   - The scheduler and transfer engine emit events into a queue that Update
//     drains after every message (toasts, startup selection, cursor clamps).
//
// # Message Flow
//
//  1. Init loads the host list and arms the refresh schedule.
//  2. tickMsg fires every dashboard.RefreshInterval; stale firings from a
//     re-armed schedule are dropped.
//  3. Scheduler.Tick reloads whatever is due for the current selection.
//  4. resultMsg lands; results for a selection the operator already left
//     are ignored by the scheduler.
//  5. View re-renders from the scheduler's state.
//
// Transfers stream transferMsg values from a goroutine through a buffered
// channel until the goroutine closes it.
package monitor
