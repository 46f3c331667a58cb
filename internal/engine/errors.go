package engine

import "fmt"

// SnapshotError reports a snapshot record that could not be replayed.
type SnapshotError struct {
	Record int // zero-based record number in the snapshot
	Err    error
}

func (e *SnapshotError) Error() string {
	return fmt.Sprintf("snapshot record %d: %v", e.Record, e.Err)
}

func (e *SnapshotError) Unwrap() error {
	return e.Err
}
