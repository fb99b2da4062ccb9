package executors

import (
	"github.com/ryogrid/HeapTxnDB/storage/table/schema"
	"github.com/ryogrid/HeapTxnDB/storage/tuple"
)

// Done is true once an executor has no more tuples
type Done bool

// Executor executes a plan
//
// Init initializes this executor.
// This function must be called before Next() is called!
//
// Next produces the next tuple from this executor
//
// Close releases what Init acquired, page locks stay with the transaction
type Executor interface {
	Init() error
	Next() (*tuple.Tuple, Done, error)
	GetOutputSchema() *schema.Schema
	Close()
}
