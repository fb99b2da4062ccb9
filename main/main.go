package main

import (
	"context"
	"flag"
	"math/rand"
	"os"
	"os/signal"
	"sync/atomic"

	"github.com/ryogrid/HeapTxnDB/catalog"
	"github.com/ryogrid/HeapTxnDB/common"
	"github.com/ryogrid/HeapTxnDB/errors"
	"github.com/ryogrid/HeapTxnDB/execution/executors"
	"github.com/ryogrid/HeapTxnDB/execution/expression"
	"github.com/ryogrid/HeapTxnDB/execution/plans"
	"github.com/ryogrid/HeapTxnDB/heapdb"
	"github.com/ryogrid/HeapTxnDB/storage/table/column"
	"github.com/ryogrid/HeapTxnDB/storage/table/schema"
	"github.com/ryogrid/HeapTxnDB/types"
)

const initialBalance = 1000

// bank runs random transfers between accounts. Every transfer replaces the two
// account rows, so concurrent transfers meet on the same pages and some of
// them are aborted by deadlock detection and retried.
type bank struct {
	db       *heapdb.HeapDB
	accounts *catalog.TableMetadata
	runs     atomic.Int64
}

func newBank(db *heapdb.HeapDB, numAccounts int) (*bank, error) {
	sc := schema.NewSchema([]*column.Column{
		column.NewColumn("id", types.Integer),
		column.NewColumn("owner", types.Varchar),
		column.NewColumn("balance", types.Integer),
	})
	accounts, err := db.CreateTable("accounts", sc)
	if err != nil {
		return nil, err
	}

	rows := make([][]types.Value, 0, numAccounts)
	for i := 0; i < numAccounts; i++ {
		rows = append(rows, []types.Value{types.NewInteger(int32(i)), types.NewVarchar("owner"), types.NewInteger(initialBalance)})
	}
	if _, err := db.Execute(context.Background(), plans.NewInsertPlanNode(rows, accounts.OID())); err != nil {
		return nil, err
	}
	return &bank{db: db, accounts: accounts}, nil
}

func (b *bank) byID(id int32) expression.Expression {
	return expression.NewComparison(
		expression.NewColumnValueByName(b.accounts.Schema(), "id"),
		expression.NewConstantValue(types.NewInteger(id)),
		expression.Equal)
}

func (b *bank) updateBalance(ec *executors.ExecutorContext, id int32, delta int32) error {
	sc := b.accounts.Schema()
	found, err := b.db.ExecutePlan(ec, plans.NewSeqScanPlanNode(nil, b.byID(id), b.accounts.OID()))
	if err != nil {
		return err
	}
	if len(found) != 1 {
		return errors.Errorf("account %d has %d rows", id, len(found))
	}
	owner := found[0].GetValue(sc, 1)
	balance := found[0].GetValue(sc, 2).ToInteger()

	if _, err := b.db.ExecutePlan(ec, plans.NewDeletePlanNode(
		plans.NewSeqScanPlanNode(nil, b.byID(id), b.accounts.OID()), b.accounts.OID())); err != nil {
		return err
	}
	_, err = b.db.ExecutePlan(ec, plans.NewInsertPlanNode(
		[][]types.Value{{types.NewInteger(id), owner, types.NewInteger(balance + delta)}}, b.accounts.OID()))
	return err
}

// transfer is the body of one transfer transaction. A run aborted by deadlock
// detection is started again by the request manager.
func (b *bank) transfer(ec *executors.ExecutorContext, from int32, to int32, amount int32) error {
	b.runs.Add(1)
	if err := b.updateBalance(ec, from, -amount); err != nil {
		return err
	}
	return b.updateBalance(ec, to, amount)
}

func (b *bank) total(ctx context.Context) (int32, error) {
	plan := plans.NewAggregationPlanNode(
		plans.NewSeqScanPlanNode(nil, nil, b.accounts.OID()),
		nil,
		[]expression.Expression{expression.NewColumnValueByName(b.accounts.Schema(), "balance")},
		[]plans.AggregationType{plans.SUM_AGGREGATE})
	rows, err := b.db.Execute(ctx, plan)
	if err != nil {
		return 0, err
	}
	return rows[0][0].ToInteger(), nil
}

func main() {
	configPath := flag.String("config", "", "ini file with [storage], [log] and [debug] sections")
	workers := flag.Int("workers", 8, "number of transfers running at the same time")
	transfers := flag.Int("transfers", 400, "number of transfers")
	numAccounts := flag.Int("accounts", 16, "number of accounts")
	keep := flag.Bool("keep", false, "keep the heap files after the run")
	flag.Parse()

	cfg := common.NewConfig()
	if *configPath != "" {
		var err error
		if cfg, err = common.LoadConfig(*configPath); err != nil {
			common.ShPrintf(common.FATAL, "%v\n", err)
			os.Exit(1)
		}
	}

	db, err := heapdb.NewHeapDB(cfg)
	if err != nil {
		common.ShPrintf(common.FATAL, "%v\n", err)
		os.Exit(1)
	}
	db.SetMaxRetries(1000)
	defer db.Shutdown(!*keep)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	b, err := newBank(db, *numAccounts)
	if err != nil {
		common.ShPrintf(common.ERROR, "creating accounts failed: %v\n", err)
		return
	}

	rm := heapdb.NewRequestManager(db, *workers)
	rm.StartTh()
	rnd := rand.New(rand.NewSource(1))
	type pending struct {
		from, to int32
		result   <-chan error
	}
	requests := make([]pending, 0, *transfers)
	for i := 0; i < *transfers; i++ {
		from := int32(rnd.Intn(*numAccounts))
		to := int32(rnd.Intn(*numAccounts))
		if from == to {
			continue
		}
		amount := int32(rnd.Intn(100) + 1)
		requests = append(requests, pending{from, to, rm.AppendRequest(ctx, func(ec *executors.ExecutorContext) error {
			return b.transfer(ec, from, to, amount)
		})})
	}

	failed := 0
	for _, req := range requests {
		if err := <-req.result; err != nil {
			failed++
			common.ShPrintf(common.WARN, "transfer %d -> %d failed: %v\n", req.from, req.to, err)
		}
	}
	rm.StopTh()

	total, err := b.total(context.Background())
	if err != nil {
		common.ShPrintf(common.ERROR, "summing balances failed: %v\n", err)
		return
	}
	common.ShPrintf(common.INFO, "total balance %d (expected %d), %d retries after deadlock aborts, %d failed transfers\n",
		total, *numAccounts*initialBalance, b.runs.Load()-int64(len(requests)), failed)

	result, err := db.Execute(context.Background(), plans.NewSeqScanPlanNode(nil, nil, b.accounts.OID()))
	if err == nil {
		heapdb.PrintExecuteResults(result)
	}
}
