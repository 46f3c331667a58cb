package engine

import "time"

// EventType represents the kind of engine mutation an event reports
type EventType string

const (
	EventAddColumn EventType = "add_column"
	EventInsert    EventType = "insert"
	EventRemove    EventType = "remove"
	EventUpdate    EventType = "update"
	EventClear     EventType = "clear"
	EventRebuild   EventType = "rebuild"
	EventLoad      EventType = "load"
)

// Event represents a completed (or failed) engine mutation
type Event struct {
	Type      EventType              // Type of event
	Database  string                 // Database name
	TxID      string                 // Mutation ID for tracing
	Seq       uint64                 // Process-wide mutation sequence
	Started   time.Time              // When the mutation began
	Timestamp time.Time              // When the event was emitted
	Data      map[string]interface{} // Operation-specific details (positions, counts)
	Err       error                  // Non-nil if the mutation was rejected
}

// Observer interface for event subscribers.
// Events are delivered synchronously after the database lock is released.
type Observer interface {
	OnEvent(event Event)
}

// AddObserver registers an observer to receive mutation events
func (db *Database) AddObserver(observer Observer) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.observers = append(db.observers, observer)
}

// RemoveObserver unregisters an observer
func (db *Database) RemoveObserver(observer Observer) {
	db.mu.Lock()
	defer db.mu.Unlock()
	for i, o := range db.observers {
		if o == observer {
			db.observers = append(db.observers[:i], db.observers[i+1:]...)
			return
		}
	}
}
