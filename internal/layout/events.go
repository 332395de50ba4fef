package layout

import "track-planner/internal/piece"

// EventType identifies layout change events.
type EventType int

const (
	EventPieceAdded   EventType = iota // data: *piece.Placed
	EventPieceRemoved                  // data: string (piece id)
	EventPieceMoved                    // data: *piece.Placed
	EventConnected                     // data: Link
	EventDisconnected                  // data: Link
)

func (e EventType) String() string {
	switch e {
	case EventPieceAdded:
		return "piece-added"
	case EventPieceRemoved:
		return "piece-removed"
	case EventPieceMoved:
		return "piece-moved"
	case EventConnected:
		return "connected"
	case EventDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Link is a pair of joined ports.
type Link struct {
	A, B piece.Ref
}

// EventListener is called when an event occurs.
type EventListener func(data interface{})

type event struct {
	typ  EventType
	data interface{}
}

// On registers an event listener for the specified event type.
func (l *Layout) On(typ EventType, listener EventListener) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.listeners[typ] = append(l.listeners[typ], listener)
}

// Emit triggers all listeners for the specified event type.
func (l *Layout) Emit(typ EventType, data interface{}) {
	l.mu.Lock()
	listeners := l.listeners[typ]
	l.mu.Unlock()

	for _, listener := range listeners {
		listener(data)
	}
}

func (l *Layout) emitAll(events []event) {
	for _, e := range events {
		l.Emit(e.typ, e.data)
	}
}
