package executors

import (
	"github.com/ryogrid/HeapTxnDB/catalog"
	"github.com/ryogrid/HeapTxnDB/errors"
	"github.com/ryogrid/HeapTxnDB/execution/plans"
	"github.com/ryogrid/HeapTxnDB/storage/table/schema"
	"github.com/ryogrid/HeapTxnDB/storage/tuple"
	"github.com/ryogrid/HeapTxnDB/types"
)

// InsertExecutor inserts the raw values of its plan or the tuples of its
// child and then emits a single tuple holding the number of inserted tuples.
type InsertExecutor struct {
	context       *ExecutorContext
	plan          *plans.InsertPlanNode
	child         Executor
	tableMetadata *catalog.TableMetadata
	done          bool
}

func NewInsertExecutor(context *ExecutorContext, plan *plans.InsertPlanNode, child Executor) *InsertExecutor {
	tableMetadata := context.GetCatalog().GetTableByOID(plan.GetTableOID())
	return &InsertExecutor{context, plan, child, tableMetadata, false}
}

func (e *InsertExecutor) Init() error {
	if e.tableMetadata == nil {
		return errors.Wrapf(errors.ErrUnknownTable, "table id %d", e.plan.GetTableOID())
	}
	e.done = false
	if e.child != nil {
		if err := e.child.Init(); err != nil {
			return err
		}
		if !e.child.GetOutputSchema().Equals(e.tableMetadata.Schema()) {
			return errors.Wrapf(errors.ErrSchemaMismatch, "child produces %v for %v", e.child.GetOutputSchema(), e.tableMetadata.Schema())
		}
	}
	return nil
}

func (e *InsertExecutor) Next() (*tuple.Tuple, Done, error) {
	if e.done {
		return nil, true, nil
	}
	e.done = true

	count := int32(0)
	if e.child == nil {
		for _, values := range e.plan.GetRawValues() {
			tuple_, err := e.makeTuple(values)
			if err != nil {
				return nil, true, err
			}
			if err := e.insert(tuple_); err != nil {
				return nil, true, err
			}
			count++
		}
	} else {
		for {
			tuple_, done, err := e.child.Next()
			if err != nil {
				return nil, true, err
			}
			if done {
				break
			}
			// the child may hand out the tuple cached in its page, which keeps its own RID
			copied := tuple.NewTupleFromBytes(nil, e.tableMetadata.Schema(), tuple_.Data())
			if err := e.insert(copied); err != nil {
				return nil, true, err
			}
			count++
		}
	}

	return tuple.NewTupleFromSchema([]types.Value{types.NewInteger(count)}, e.GetOutputSchema()), false, nil
}

func (e *InsertExecutor) GetOutputSchema() *schema.Schema { return e.plan.OutputSchema() }

func (e *InsertExecutor) Close() {
	if e.child != nil {
		e.child.Close()
	}
}

func (e *InsertExecutor) insert(tuple_ *tuple.Tuple) error {
	return e.context.GetBufferPool().InsertTuple(e.context.GetContext(),
		e.context.GetTransaction().GetTransactionId(), e.tableMetadata.OID(), tuple_)
}

// makeTuple checks values against the table schema before building the tuple
func (e *InsertExecutor) makeTuple(values []types.Value) (*tuple.Tuple, error) {
	schema_ := e.tableMetadata.Schema()
	if uint32(len(values)) != schema_.GetColumnCount() {
		return nil, errors.Wrapf(errors.ErrSchemaMismatch, "%d values for %v", len(values), schema_)
	}
	for i, val := range values {
		if val.ValueType() != schema_.GetColumn(uint32(i)).GetType() {
			return nil, errors.Wrapf(errors.ErrSchemaMismatch, "value %v for column %s", val, schema_.GetColumn(uint32(i)).GetColumnName())
		}
	}
	return tuple.NewTupleFromSchema(values, schema_), nil
}
