package heapdb

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/ryogrid/HeapTxnDB/catalog"
	"github.com/ryogrid/HeapTxnDB/common"
	"github.com/ryogrid/HeapTxnDB/errors"
	"github.com/ryogrid/HeapTxnDB/execution/executors"
	"github.com/ryogrid/HeapTxnDB/execution/plans"
	"github.com/ryogrid/HeapTxnDB/storage/table/schema"
	"github.com/ryogrid/HeapTxnDB/storage/tuple"
	"github.com/ryogrid/HeapTxnDB/types"
)

// number of times a transaction aborted by deadlock detection is started again
const DefaultMaxRetries = 20

// TxnFunc is the body of a transaction. It may run more than once.
type TxnFunc func(ec *executors.ExecutorContext) error

type HeapDB struct {
	hi_          *HeapDBInstance
	exec_engine_ *executors.ExecutionEngine
	maxRetries   int
}

func NewHeapDB(cfg *common.Config) (*HeapDB, error) {
	hi, err := NewHeapDBInstance(cfg)
	if err != nil {
		return nil, err
	}
	return &HeapDB{hi, &executors.ExecutionEngine{}, DefaultMaxRetries}, nil
}

func (hdb *HeapDB) GetInstance() *HeapDBInstance {
	return hdb.hi_
}

func (hdb *HeapDB) SetMaxRetries(n int) {
	hdb.maxRetries = n
}

func (hdb *HeapDB) CreateTable(name string, schema_ *schema.Schema) (*catalog.TableMetadata, error) {
	return hdb.hi_.GetCatalog().CreateTable(name, schema_)
}

func (hdb *HeapDB) GetTable(name string) *catalog.TableMetadata {
	return hdb.hi_.GetCatalog().GetTableByName(name)
}

// Execute runs plan in a transaction of its own and returns the produced rows.
func (hdb *HeapDB) Execute(ctx context.Context, plan plans.Plan) ([][]types.Value, error) {
	var ret [][]types.Value
	err := hdb.ExecuteInTxn(ctx, func(ec *executors.ExecutorContext) error {
		result, err := hdb.exec_engine_.Execute(plan, ec)
		if err != nil {
			return err
		}
		ret = ConvTupleListToValues(plan.OutputSchema(), result)
		return nil
	})
	return ret, err
}

// ExecutePlan runs plan inside the transaction of ec. The caller commits or aborts.
func (hdb *HeapDB) ExecutePlan(ec *executors.ExecutorContext, plan plans.Plan) ([]*tuple.Tuple, error) {
	return hdb.exec_engine_.Execute(plan, ec)
}

/**
 * ExecuteInTxn begins a transaction, passes its context to fn and commits when
 * fn returns nil. Any error aborts the transaction. When the transaction was
 * chosen as a deadlock victim, fn is run again in a new transaction after a
 * short random backoff, up to maxRetries times. fn must therefore not keep
 * state between calls.
 */
func (hdb *HeapDB) ExecuteInTxn(ctx context.Context, fn TxnFunc) error {
	var err error
	for attempt := 0; attempt <= hdb.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(rand.Intn(1<<uint(min(attempt, 6)))+1) * time.Millisecond
			select {
			case <-ctx.Done():
				return errors.NewInterrupted(ctx.Err())
			case <-time.After(backoff):
			}
		}
		if err = hdb.runTxnOnce(ctx, fn); !errors.IsTransactionAborted(err) {
			return err
		}
	}
	common.ShPrintf(common.WARN, "giving up after %d deadlock aborts\n", hdb.maxRetries+1)
	return err
}

// runTxnOnce runs fn in a new transaction and commits or aborts it
func (hdb *HeapDB) runTxnOnce(ctx context.Context, fn TxnFunc) error {
	tm := hdb.hi_.GetTransactionManager()
	txn := tm.Begin()
	ec := executors.NewExecutorContext(ctx, hdb.hi_.GetCatalog(), hdb.hi_.GetBufferPool(), txn)
	if err := fn(ec); err != nil {
		if abortErr := tm.Abort(txn); abortErr != nil {
			common.ShPrintf(common.ERROR, "abort of txn %d failed: %v\n", txn.GetTransactionId(), abortErr)
			return abortErr
		}
		if errors.IsTransactionAborted(err) {
			common.ShPrintf(common.DEBUG_INFO, "txn %d was a deadlock victim\n", txn.GetTransactionId())
		}
		return err
	}
	return tm.Commit(txn)
}

func (hdb *HeapDB) Shutdown(removeFiles bool) {
	hdb.hi_.Shutdown(removeFiles)
}

func ConvTupleListToValues(schema_ *schema.Schema, result []*tuple.Tuple) [][]types.Value {
	retVals := make([][]types.Value, 0, len(result))
	for _, tuple_ := range result {
		// a scan without projection returns tuples in their table schema
		sc := schema_
		if sc == nil {
			sc = tuple_.GetSchema()
		}
		colNum := sc.GetColumnCount()
		rowVals := make([]types.Value, 0, colNum)
		for idx := uint32(0); idx < colNum; idx++ {
			rowVals = append(rowVals, tuple_.GetValue(sc, idx))
		}
		retVals = append(retVals, rowVals)
	}
	return retVals
}

func PrintExecuteResults(results [][]types.Value) {
	fmt.Println("----")
	for _, valList := range results {
		for _, val := range valList {
			fmt.Printf("%s ", val.String())
		}
		fmt.Println("")
	}
}
