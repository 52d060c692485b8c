package dashboard

import "time"

const (
	// StaleThreshold is how old status or process data may get before a
	// non-forced refresh reloads it.
	StaleThreshold = 30 * time.Second

	// RefreshInterval is the background tick period. It matches
	// StaleThreshold, so every tick refreshes each active target once.
	RefreshInterval = 30 * time.Second
)

// ShouldLoad reports whether a cached value needs reloading. A zero
// lastLoadedAt means the value was never loaded.
func ShouldLoad(lastLoadedAt, now time.Time, threshold time.Duration, force bool) bool {
	if force || lastLoadedAt.IsZero() {
		return true
	}
	return now.Sub(lastLoadedAt) >= threshold
}
