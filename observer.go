package flashring

import "log"

// EventKind identifies the observable lifecycle points of the ring.
type EventKind int

// Event kinds.
const (
	// EventFormatted is emitted after the status region has been formatted
	// because no valid signature was found.
	EventFormatted EventKind = iota
	// EventCorruptDetected is emitted at startup when status bytes outside
	// the defined values exist; Count carries how many.
	EventCorruptDetected
	// EventCompacted is emitted after a compaction; Count carries the number
	// of reclaimed sectors.
	EventCompacted
	// EventPushed is emitted after a payload has been written; Sector
	// carries the data sector it occupies.
	EventPushed
	// EventPopped is emitted after a payload has been consumed; Sector
	// carries the data sector it was read from.
	EventPopped
)

func (k EventKind) String() string {
	switch k {
	case EventFormatted:
		return "formatted"
	case EventCorruptDetected:
		return "corrupt status detected"
	case EventCompacted:
		return "compacted"
	case EventPushed:
		return "pushed"
	case EventPopped:
		return "popped"
	}
	return "unknown"
}

// Event carries the details of one observable ring operation.
type Event struct {
	Kind   EventKind
	Sector int64
	Count  int64
}

// Observer receives ring events. The ring never logs on its own; anything
// resembling a debug console plugs in here.
type Observer func(Event)

// LogObserver returns an observer printing events with the standard logger.
func LogObserver() Observer {
	return func(e Event) {
		switch e.Kind {
		case EventPushed, EventPopped:
			log.Printf("[flashring] %s sector=%d", e.Kind, e.Sector)
		case EventCompacted, EventCorruptDetected:
			log.Printf("[flashring] %s count=%d", e.Kind, e.Count)
		default:
			log.Printf("[flashring] %s", e.Kind)
		}
	}
}
