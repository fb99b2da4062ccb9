package executors

import (
	"github.com/ryogrid/HeapTxnDB/common"
	"github.com/ryogrid/HeapTxnDB/errors"
	"github.com/ryogrid/HeapTxnDB/execution/plans"
	"github.com/ryogrid/HeapTxnDB/storage/tuple"
)

type ExecutionEngine struct {
}

// Execute runs plan to completion inside the transaction of context and
// returns every tuple produced. On error the caller has to abort the
// transaction, ErrTxnAborted in particular must never be retried inside it.
func (e *ExecutionEngine) Execute(plan plans.Plan, context *ExecutorContext) ([]*tuple.Tuple, error) {
	executor, err := e.CreateExecutor(plan, context)
	if err != nil {
		return nil, err
	}
	defer executor.Close()

	if err := executor.Init(); err != nil {
		return nil, err
	}

	tuples := make([]*tuple.Tuple, 0)
	for {
		tuple_, done, err := executor.Next()
		if err != nil {
			common.ShPrintf(common.DEBUG_INFO, "txn %d: plan %v failed: %v\n",
				context.GetTransaction().GetTransactionId(), plan.GetType(), err)
			return nil, err
		}
		if done {
			break
		}
		tuples = append(tuples, tuple_)
	}
	return tuples, nil
}

func (e *ExecutionEngine) CreateExecutor(plan plans.Plan, context *ExecutorContext) (Executor, error) {
	switch p := plan.(type) {
	case *plans.SeqScanPlanNode:
		return NewSeqScanExecutor(context, p), nil
	case *plans.InsertPlanNode:
		if p.IsRawInsert() {
			return NewInsertExecutor(context, p, nil), nil
		}
		child, err := e.CreateExecutor(p.GetChildAt(0), context)
		if err != nil {
			return nil, err
		}
		return NewInsertExecutor(context, p, child), nil
	case *plans.DeletePlanNode:
		child, err := e.CreateExecutor(p.GetChildAt(0), context)
		if err != nil {
			return nil, err
		}
		return NewDeleteExecutor(context, p, child), nil
	case *plans.AggregationPlanNode:
		child, err := e.CreateExecutor(p.GetChildAt(0), context)
		if err != nil {
			return nil, err
		}
		return NewAggregationExecutor(context, p, child), nil
	}
	return nil, errors.Errorf("plan type %v is not supported", plan.GetType())
}
