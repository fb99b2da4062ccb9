package executors

import (
	"context"

	"github.com/ryogrid/HeapTxnDB/catalog"
	"github.com/ryogrid/HeapTxnDB/storage/access"
	"github.com/ryogrid/HeapTxnDB/storage/buffer"
)

// ExecutorContext stores all the context necessary to run an executor
type ExecutorContext struct {
	ctx     context.Context
	catalog *catalog.Catalog
	bpm     *buffer.BufferPool
	txn     *access.Transaction
}

func NewExecutorContext(ctx context.Context, catalog *catalog.Catalog, bpm *buffer.BufferPool, txn *access.Transaction) *ExecutorContext {
	return &ExecutorContext{ctx, catalog, bpm, txn}
}

// GetContext is passed to every lock request made on behalf of the plan
func (e *ExecutorContext) GetContext() context.Context {
	return e.ctx
}

func (e *ExecutorContext) GetCatalog() *catalog.Catalog {
	return e.catalog
}

func (e *ExecutorContext) GetBufferPool() *buffer.BufferPool {
	return e.bpm
}

func (e *ExecutorContext) GetTransaction() *access.Transaction {
	return e.txn
}

func (e *ExecutorContext) SetTransaction(txn *access.Transaction) {
	e.txn = txn
}
