package dashboard

import "time"

// Phase is the fetch state of a cached resource.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseOK
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseOK:
		return "ok"
	case PhaseError:
		return "error"
	default:
		return "idle"
	}
}

// Resource is one time-gated cache entry. Data is the last known good payload
// and survives failed reloads; LoadedAt advances on failure too so a failing
// target is not retried on every tick.
type Resource[T any] struct {
	Phase    Phase
	Data     T
	HasData  bool
	Err      string
	LoadedAt time.Time
}

// Reset discards data and timestamp, so the next load is unconditional.
func (r *Resource[T]) Reset() {
	*r = Resource[T]{}
}

// Begin marks a load as outstanding.
func (r *Resource[T]) Begin() {
	r.Phase = PhaseLoading
}

// Succeed stores a fresh payload loaded at the given time.
func (r *Resource[T]) Succeed(data T, at time.Time) {
	r.Phase = PhaseOK
	r.Data = data
	r.HasData = true
	r.Err = ""
	r.LoadedAt = at
}

// Fail records a failed load, keeping the previous payload.
func (r *Resource[T]) Fail(msg string, at time.Time) {
	r.Phase = PhaseError
	r.Err = msg
	r.LoadedAt = at
}

// Due reports whether a reload is needed at now.
func (r *Resource[T]) Due(now time.Time, threshold time.Duration, force bool) bool {
	return ShouldLoad(r.LoadedAt, now, threshold, force)
}
