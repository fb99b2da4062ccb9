package buffer_test

import (
	"context"
	"testing"

	"github.com/ryogrid/HeapTxnDB/catalog"
	"github.com/ryogrid/HeapTxnDB/common"
	"github.com/ryogrid/HeapTxnDB/errors"
	"github.com/ryogrid/HeapTxnDB/storage/access"
	"github.com/ryogrid/HeapTxnDB/storage/buffer"
	"github.com/ryogrid/HeapTxnDB/storage/table"
	"github.com/ryogrid/HeapTxnDB/storage/table/column"
	"github.com/ryogrid/HeapTxnDB/storage/table/schema"
	"github.com/ryogrid/HeapTxnDB/storage/tuple"
	testingpkg "github.com/ryogrid/HeapTxnDB/testing/testing_assert"
	"github.com/ryogrid/HeapTxnDB/types"
)

// 80 byte pages hold two tuples each
const smallPageSize = 80

func setupPool(t *testing.T, poolPages int) (*buffer.BufferPool, *catalog.TableMetadata) {
	cfg := common.NewConfigForTesting(poolPages)
	cfg.PageSize = smallPageSize
	cfg.DataDir = t.TempDir()
	bpm := buffer.NewBufferPool(cfg.BufferPoolPages, cfg.PageSize, access.NewLockManager())
	c := catalog.NewCatalog(cfg, bpm)
	meta, err := c.CreateTable("accounts", schema.NewSchema([]*column.Column{
		column.NewColumn("id", types.Integer),
		column.NewColumn("owner", types.Varchar),
	}))
	testingpkg.Ok(t, err)
	t.Cleanup(func() { c.Shutdown(true) })
	return bpm, meta
}

func insertRows(t *testing.T, bpm *buffer.BufferPool, meta *catalog.TableMetadata, tid types.TxnID, from int32, n int32) {
	for i := from; i < from+n; i++ {
		tpl := tuple.NewTupleFromSchema([]types.Value{types.NewInteger(i), types.NewVarchar("o")}, meta.Schema())
		testingpkg.Ok(t, bpm.InsertTuple(context.Background(), tid, meta.OID(), tpl))
	}
}

func storedTupleCount(t *testing.T, meta *catalog.TableMetadata, pageNo int32) int {
	pg, err := meta.Table().ReadPage(types.NewPageID(meta.OID(), pageNo))
	testingpkg.Ok(t, err)
	return len(pg.(*table.HeapPage).Tuples())
}

func TestNoCleanPageWhenAllDirty(t *testing.T) {
	bpm, meta := setupPool(t, 2)
	tid := types.NewTxnID()
	insertRows(t, bpm, meta, tid, 0, 4)
	testingpkg.Equals(t, 2, bpm.Size())

	tpl := tuple.NewTupleFromSchema([]types.Value{types.NewInteger(4), types.NewVarchar("o")}, meta.Schema())
	err := bpm.InsertTuple(context.Background(), tid, meta.OID(), tpl)
	testingpkg.ErrorIs(t, err, errors.ErrNoCleanPage)
	testingpkg.SimpleAssert(t, errors.IsOperational(err))
	testingpkg.Equals(t, 2, bpm.Size())
	testingpkg.Equals(t, 2, meta.Table().NumPages())

	testingpkg.Ok(t, bpm.TransactionComplete(tid, false))
	testingpkg.Equals(t, 0, bpm.Size())
	testingpkg.SimpleAssert(t, !bpm.GetLockManager().IsActive(tid))
}

func TestCommitPersistsAbortDiscards(t *testing.T) {
	bpm, meta := setupPool(t, 4)
	pid := types.NewPageID(meta.OID(), 0)

	committer := types.NewTxnID()
	insertRows(t, bpm, meta, committer, 0, 1)
	// NO-STEAL: nothing reaches the file before commit
	testingpkg.Equals(t, 0, storedTupleCount(t, meta, 0))
	testingpkg.Ok(t, bpm.TransactionComplete(committer, true))
	testingpkg.Equals(t, 1, storedTupleCount(t, meta, 0))
	testingpkg.SimpleAssert(t, bpm.IsCached(pid))

	aborter := types.NewTxnID()
	insertRows(t, bpm, meta, aborter, 1, 1)
	testingpkg.Ok(t, bpm.TransactionComplete(aborter, false))
	testingpkg.SimpleAssert(t, !bpm.IsCached(pid))
	testingpkg.Equals(t, 1, storedTupleCount(t, meta, 0))

	// the next reader loads the committed version
	reader := types.NewTxnID()
	pg, err := bpm.GetPage(context.Background(), reader, pid, types.READ_ONLY)
	testingpkg.Ok(t, err)
	testingpkg.Equals(t, 1, len(pg.(*table.HeapPage).Tuples()))
	testingpkg.Equals(t, types.InvalidTxnID, pg.IsDirty())
	testingpkg.Ok(t, bpm.TransactionComplete(reader, true))
}

func TestEvictionSkipsDirtyPages(t *testing.T) {
	bpm, meta := setupPool(t, 2)
	ctx := context.Background()

	setup := types.NewTxnID()
	insertRows(t, bpm, meta, setup, 0, 4)
	testingpkg.Ok(t, bpm.TransactionComplete(setup, true))
	setup2 := types.NewTxnID()
	insertRows(t, bpm, meta, setup2, 4, 2)
	testingpkg.Ok(t, bpm.TransactionComplete(setup2, true))
	testingpkg.Equals(t, 3, meta.Table().NumPages())

	writer := types.NewTxnID()
	page0 := types.NewPageID(meta.OID(), 0)
	pg, err := bpm.GetPage(ctx, writer, page0, types.READ_WRITE)
	testingpkg.Ok(t, err)
	victim := pg.(*table.HeapPage).Tuples()[0]
	testingpkg.Ok(t, bpm.DeleteTuple(ctx, writer, victim))
	testingpkg.Equals(t, writer, pg.IsDirty())

	reader := types.NewTxnID()
	for round := 0; round < 3; round++ {
		for _, pageNo := range []int32{1, 2} {
			_, err := bpm.GetPage(ctx, reader, types.NewPageID(meta.OID(), pageNo), types.READ_ONLY)
			testingpkg.Ok(t, err)
			testingpkg.SimpleAssert(t, bpm.Size() <= bpm.Capacity())
			testingpkg.SimpleAssert(t, bpm.IsCached(page0))
		}
	}
	testingpkg.Ok(t, bpm.TransactionComplete(reader, true))

	testingpkg.Ok(t, bpm.TransactionComplete(writer, true))
	testingpkg.Equals(t, 1, storedTupleCount(t, meta, 0))
}

func TestGetPageLocksAndResolves(t *testing.T) {
	bpm, meta := setupPool(t, 2)
	ctx := context.Background()
	tid := types.NewTxnID()
	pid := types.NewPageID(meta.OID(), 0)

	_, err := bpm.GetPage(ctx, tid, types.NewPageID(meta.OID()+1, 0), types.READ_ONLY)
	testingpkg.ErrorIs(t, err, errors.ErrUnknownTable)

	_, err = bpm.GetPage(ctx, tid, pid, types.Permissions(3))
	testingpkg.ErrorIs(t, err, errors.ErrInvalidPermission)
	testingpkg.SimpleAssert(t, !bpm.HoldsLock(tid, pid))

	first, err := bpm.GetPage(ctx, tid, pid, types.READ_ONLY)
	testingpkg.Ok(t, err)
	testingpkg.SimpleAssert(t, bpm.HoldsLock(tid, pid))
	second, err := bpm.GetPage(ctx, tid, pid, types.READ_WRITE)
	testingpkg.Ok(t, err)
	testingpkg.SimpleAssert(t, first == second)

	bpm.UnsafeReleasePage(tid, pid)
	testingpkg.SimpleAssert(t, !bpm.HoldsLock(tid, pid))

	// the lock is gone, releasing it again is a protocol violation
	func() {
		defer func() {
			testingpkg.Assert(t, recover() != nil, "releasing an unheld page must panic")
		}()
		bpm.UnsafeReleasePage(tid, pid)
	}()
	testingpkg.Ok(t, bpm.TransactionComplete(tid, true))
}

func TestDiscardAndResetPageSize(t *testing.T) {
	bpm, meta := setupPool(t, 2)
	tid := types.NewTxnID()
	pid := types.NewPageID(meta.OID(), 0)

	_, err := bpm.GetPage(context.Background(), tid, pid, types.READ_ONLY)
	testingpkg.Ok(t, err)
	testingpkg.ErrorIs(t, bpm.ResetPageSize(common.DefaultPageSize), errors.ErrPagesCached)
	testingpkg.Equals(t, smallPageSize, bpm.GetPageSize())

	bpm.DiscardPage(pid)
	testingpkg.SimpleAssert(t, !bpm.IsCached(pid))
	testingpkg.Ok(t, bpm.ResetPageSize(2*smallPageSize))
	testingpkg.Equals(t, 2*smallPageSize, bpm.GetPageSize())
	testingpkg.Ok(t, bpm.TransactionComplete(tid, true))
}

func TestFlushAllPages(t *testing.T) {
	bpm, meta := setupPool(t, 4)
	tid := types.NewTxnID()
	insertRows(t, bpm, meta, tid, 0, 3)

	testingpkg.Ok(t, bpm.FlushAllPages())
	testingpkg.Equals(t, 2, storedTupleCount(t, meta, 0))
	testingpkg.Equals(t, 1, storedTupleCount(t, meta, 1))
	testingpkg.Ok(t, bpm.FlushPage(types.NewPageID(meta.OID(), 0)))
	testingpkg.Ok(t, bpm.TransactionComplete(tid, true))
}

func TestDeadlockThroughPool(t *testing.T) {
	bpm, meta := setupPool(t, 4)
	ctx := context.Background()
	setup := types.NewTxnID()
	insertRows(t, bpm, meta, setup, 0, 4)
	testingpkg.Ok(t, bpm.TransactionComplete(setup, true))

	page0, page1 := types.NewPageID(meta.OID(), 0), types.NewPageID(meta.OID(), 1)
	t1, t2 := types.NewTxnID(), types.NewTxnID()
	_, err := bpm.GetPage(ctx, t1, page0, types.READ_WRITE)
	testingpkg.Ok(t, err)
	_, err = bpm.GetPage(ctx, t2, page1, types.READ_WRITE)
	testingpkg.Ok(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := bpm.GetPage(ctx, t1, page1, types.READ_ONLY)
		done <- err
	}()
	lm := bpm.GetLockManager()
	testingpkg.Assert(t, testingpkg.Eventually(t, func() bool { return len(lm.GetEdgeList()) == 1 }, "t1 is not waiting"), "t1 must wait for t2")

	_, err = bpm.GetPage(ctx, t2, page0, types.READ_ONLY)
	testingpkg.ErrorIs(t, err, errors.ErrTxnAborted)
	testingpkg.Ok(t, bpm.TransactionComplete(t2, false))

	testingpkg.Ok(t, <-done)
	testingpkg.Ok(t, bpm.TransactionComplete(t1, true))
	testingpkg.Equals(t, 0, len(lm.GetEdgeList()))
}
