package executors

import (
	"github.com/ryogrid/HeapTxnDB/errors"
	"github.com/ryogrid/HeapTxnDB/execution/plans"
	"github.com/ryogrid/HeapTxnDB/storage/table/schema"
	"github.com/ryogrid/HeapTxnDB/storage/tuple"
	"github.com/ryogrid/HeapTxnDB/types"
)

/**
 * DeleteExecutor deletes every tuple produced by its child and then emits a
 * single tuple holding the number of deleted tuples.
 */
type DeleteExecutor struct {
	context *ExecutorContext
	plan    *plans.DeletePlanNode
	child   Executor
	done    bool
}

func NewDeleteExecutor(context *ExecutorContext, plan *plans.DeletePlanNode, child Executor) Executor {
	return &DeleteExecutor{context, plan, child, false}
}

func (e *DeleteExecutor) Init() error {
	e.done = false
	return e.child.Init()
}

func (e *DeleteExecutor) Next() (*tuple.Tuple, Done, error) {
	if e.done {
		return nil, true, nil
	}
	e.done = true

	count := int32(0)
	for {
		t, done, err := e.child.Next()
		if err != nil {
			return nil, true, err
		}
		if done {
			break
		}
		if rid := t.GetRID(); rid != nil && rid.GetPageId().TableID != e.plan.GetTableOID() {
			return nil, true, errors.Wrapf(errors.ErrTupleNotLocated, "tuple at %v is not in table %d", rid, e.plan.GetTableOID())
		}
		err = e.context.GetBufferPool().DeleteTuple(e.context.GetContext(), e.context.GetTransaction().GetTransactionId(), t)
		if err != nil {
			return nil, true, err
		}
		count++
	}

	return tuple.NewTupleFromSchema([]types.Value{types.NewInteger(count)}, e.GetOutputSchema()), false, nil
}

func (e *DeleteExecutor) GetOutputSchema() *schema.Schema { return e.plan.OutputSchema() }

func (e *DeleteExecutor) Close() {
	e.child.Close()
}
