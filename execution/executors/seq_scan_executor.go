// this code is from https://github.com/brunocalza/go-bustub
// there is license and copyright notice in licenses/go-bustub dir

package executors

import (
	"github.com/ryogrid/HeapTxnDB/catalog"
	"github.com/ryogrid/HeapTxnDB/errors"
	"github.com/ryogrid/HeapTxnDB/execution/expression"
	"github.com/ryogrid/HeapTxnDB/execution/plans"
	"github.com/ryogrid/HeapTxnDB/storage/table"
	"github.com/ryogrid/HeapTxnDB/storage/table/schema"
	"github.com/ryogrid/HeapTxnDB/storage/tuple"
	"github.com/ryogrid/HeapTxnDB/types"
)

/**
 * SeqScanExecutor executes a sequential scan over a table.
 */
type SeqScanExecutor struct {
	context       *ExecutorContext
	plan          *plans.SeqScanPlanNode
	tableMetadata *catalog.TableMetadata
	it            *table.HeapFileIterator
}

// NewSeqScanExecutor creates a new sequential executor
func NewSeqScanExecutor(context *ExecutorContext, plan *plans.SeqScanPlanNode) Executor {
	tableMetadata := context.GetCatalog().GetTableByOID(plan.GetTableOID())
	return &SeqScanExecutor{context, plan, tableMetadata, nil}
}

func (e *SeqScanExecutor) Init() error {
	if e.tableMetadata == nil {
		return errors.Wrapf(errors.ErrUnknownTable, "table id %d", e.plan.GetTableOID())
	}
	if outputSchema := e.plan.OutputSchema(); outputSchema != nil {
		tableSchema := e.tableMetadata.Schema()
		for _, col := range outputSchema.GetColumns() {
			colIndex := tableSchema.GetColIndex(col.GetColumnName())
			if colIndex >= tableSchema.GetColumnCount() || tableSchema.GetColumn(colIndex).GetType() != col.GetType() {
				return errors.Wrapf(errors.ErrSchemaMismatch, "column %s is not in %v", col.GetColumnName(), tableSchema)
			}
		}
	}
	e.it = e.tableMetadata.Table().Iterator(e.context.GetTransaction().GetTransactionId())
	return e.it.Open(e.context.GetContext())
}

// Next implements the next method for the sequential scan operator
// It uses the heap file iterator to iterate through the table
// tyring to find a tuple. It performs selection and projection on-the-fly
func (e *SeqScanExecutor) Next() (*tuple.Tuple, Done, error) {
	for {
		ok, err := e.it.HasNext()
		if err != nil {
			return nil, true, err
		}
		if !ok {
			return nil, true, nil
		}
		t, err := e.it.Next()
		if err != nil {
			return nil, true, err
		}
		if e.selects(t, e.plan.GetPredicate()) {
			return e.projects(t), false, nil
		}
	}
}

func (e *SeqScanExecutor) GetOutputSchema() *schema.Schema {
	if e.plan.OutputSchema() == nil && e.tableMetadata != nil {
		return e.tableMetadata.Schema()
	}
	return e.plan.OutputSchema()
}

func (e *SeqScanExecutor) Close() {
	if e.it != nil {
		e.it.Close()
	}
}

// select evaluates an expression on the tuple
func (e *SeqScanExecutor) selects(tuple *tuple.Tuple, predicate expression.Expression) bool {
	return predicate == nil || predicate.Evaluate(tuple, e.tableMetadata.Schema()).ToBoolean()
}

// project applies the projection operator defined by the output schema
// It transform the tuple into a new tuple that corresponds to the output schema.
// The projected tuple keeps the RID of its source.
func (e *SeqScanExecutor) projects(tuple_ *tuple.Tuple) *tuple.Tuple {
	outputSchema := e.plan.OutputSchema()
	if outputSchema == nil {
		return tuple_
	}

	values := []types.Value{}
	for i := uint32(0); i < outputSchema.GetColumnCount(); i++ {
		colIndex := e.tableMetadata.Schema().GetColIndex(outputSchema.GetColumns()[i].GetColumnName())
		values = append(values, tuple_.GetValue(e.tableMetadata.Schema(), colIndex))
	}

	ret := tuple.NewTupleFromSchema(values, outputSchema)
	ret.SetRID(tuple_.GetRID())
	return ret
}
