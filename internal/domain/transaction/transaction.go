package transaction

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// seqCounter orders mutations within the process.
var seqCounter uint64

// Operation names a kind of engine mutation.
type Operation string

const (
	OpAddColumn Operation = "ADD_COLUMN"
	OpInsert    Operation = "INSERT"
	OpRemove    Operation = "REMOVE"
	OpUpdate    Operation = "UPDATE"
	OpClear     Operation = "CLEAR"
	OpRebuild   Operation = "REBUILD"
	OpLoad      Operation = "LOAD"
)

// Mutation is the context of a single engine mutation. It carries no
// rollback state: failing operations are validated before anything changes.
type Mutation struct {
	ID        string    // unique identifier for log/trace correlation
	Seq       uint64    // process-wide monotonic sequence
	Op        Operation // what is being done
	StartTime time.Time // when the mutation began
}

// NewMutation creates a mutation context with a fresh ID.
func NewMutation(op Operation) *Mutation {
	return &Mutation{
		ID:        uuid.New().String(),
		Seq:       atomic.AddUint64(&seqCounter, 1),
		Op:        op,
		StartTime: time.Now(),
	}
}

// Elapsed reports how long the mutation has been running.
func (m *Mutation) Elapsed() time.Duration {
	return time.Since(m.StartTime)
}
