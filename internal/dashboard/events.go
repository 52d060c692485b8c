package dashboard

// EventKind identifies what changed.
type EventKind int

const (
	EventHostsChanged EventKind = iota
	EventSelectionChanged
	EventFilterChanged
	EventStatusChanged
	EventProcessesChanged
	EventFleetRefreshed
	EventTransferChanged
	EventNotice
)

// NoticeLevel is the severity of a transient notification.
type NoticeLevel int

const (
	NoticeInfo NoticeLevel = iota
	NoticeSuccess
	NoticeWarn
	NoticeError
)

// Notice is a transient message for the operator (a toast in the TUI).
type Notice struct {
	Level   NoticeLevel
	Message string
}

// FleetOutcome summarizes a refresh-all.
type FleetOutcome string

const (
	FleetUpdated         FleetOutcome = "updated"
	FleetFailed          FleetOutcome = "failed"
	FleetProcessesFailed FleetOutcome = "updated but GPU processes failed"
)

// Event is delivered to subscribers after state changes.
type Event struct {
	Kind EventKind

	// Notice is set for EventNotice.
	Notice Notice

	// Fleet is set for EventFleetRefreshed.
	Fleet FleetOutcome

	// Direction is set for EventTransferChanged.
	Direction Direction
}

// observers fans events out to subscribers. Subscribers run synchronously on
// the caller's goroutine, so they must not call back into the emitter.
type observers struct {
	next int
	subs map[int]func(Event)
}

// Subscribe registers fn for every event and returns a function that
// removes it.
func (o *observers) Subscribe(fn func(Event)) (unsubscribe func()) {
	if o.subs == nil {
		o.subs = make(map[int]func(Event))
	}
	id := o.next
	o.next++
	o.subs[id] = fn
	return func() { delete(o.subs, id) }
}

func (o *observers) emit(ev Event) {
	for i := 0; i < o.next; i++ {
		if fn, ok := o.subs[i]; ok {
			fn(ev)
		}
	}
}

func (o *observers) notify(level NoticeLevel, msg string) {
	o.emit(Event{Kind: EventNotice, Notice: Notice{Level: level, Message: msg}})
}
