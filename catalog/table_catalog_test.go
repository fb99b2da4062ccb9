package catalog

import (
	"context"
	"testing"

	"github.com/ryogrid/HeapTxnDB/common"
	"github.com/ryogrid/HeapTxnDB/errors"
	"github.com/ryogrid/HeapTxnDB/storage/access"
	"github.com/ryogrid/HeapTxnDB/storage/buffer"
	"github.com/ryogrid/HeapTxnDB/storage/table/column"
	"github.com/ryogrid/HeapTxnDB/storage/table/schema"
	"github.com/ryogrid/HeapTxnDB/storage/tuple"
	testingpkg "github.com/ryogrid/HeapTxnDB/testing/testing_assert"
	"github.com/ryogrid/HeapTxnDB/types"
)

func newTestSchema() *schema.Schema {
	return schema.NewSchema([]*column.Column{
		column.NewColumn("id", types.Integer),
		column.NewColumn("name", types.Varchar),
	})
}

func TestCreateAndResolveTable(t *testing.T) {
	cfg := common.NewConfigForTesting(10)
	cfg.DataDir = t.TempDir()
	bpm := buffer.NewBufferPool(cfg.BufferPoolPages, cfg.PageSize, access.NewLockManager())
	c := NewCatalog(cfg, bpm)

	meta, err := c.CreateTable("accounts", newTestSchema())
	testingpkg.Ok(t, err)
	testingpkg.Equals(t, "accounts", meta.GetTableName())
	testingpkg.Equals(t, meta, c.GetTableByName("accounts"))
	testingpkg.Equals(t, meta, c.GetTableByOID(meta.OID()))
	testingpkg.SimpleAssert(t, c.GetTableByName("nothing") == nil)

	dbFile, err := c.ResolveFile(meta.OID())
	testingpkg.Ok(t, err)
	testingpkg.Equals(t, meta.OID(), dbFile.GetTableID())
	sc, err := c.SchemaOf(meta.OID())
	testingpkg.Ok(t, err)
	testingpkg.SimpleAssert(t, sc.Equals(newTestSchema()))

	_, err = c.ResolveFile(meta.OID() + 1)
	testingpkg.ErrorIs(t, err, errors.ErrUnknownTable)
	_, err = c.SchemaOf(meta.OID() + 1)
	testingpkg.SimpleAssert(t, errors.IsInvalidArgument(err))

	_, err = c.CreateTable("accounts", newTestSchema())
	testingpkg.ErrorIs(t, err, errors.ErrTableExists)

	other, err := c.CreateTable("orders", newTestSchema())
	testingpkg.Ok(t, err)
	testingpkg.SimpleAssert(t, other.OID() != meta.OID())
	testingpkg.Equals(t, []string{"accounts", "orders"}, c.GetTableNames())

	c.Shutdown(true)
}

func TestReopenedFileKeepsIdAndTuples(t *testing.T) {
	cfg := common.NewConfigForTesting(10)
	cfg.DataDir = t.TempDir()
	cfg.UseVirtualDisk = false
	ctx := context.Background()

	bpm := buffer.NewBufferPool(cfg.BufferPoolPages, cfg.PageSize, access.NewLockManager())
	c := NewCatalog(cfg, bpm)
	meta, err := c.CreateTable("people", newTestSchema())
	testingpkg.Ok(t, err)

	tid := types.NewTxnID()
	tpl := tuple.NewTupleFromSchema([]types.Value{types.NewInteger(1), types.NewVarchar("ann")}, meta.Schema())
	testingpkg.Ok(t, bpm.InsertTuple(ctx, tid, meta.OID(), tpl))
	testingpkg.Ok(t, bpm.TransactionComplete(tid, true))
	c.Shutdown(false)

	bpm2 := buffer.NewBufferPool(cfg.BufferPoolPages, cfg.PageSize, access.NewLockManager())
	c2 := NewCatalog(cfg, bpm2)
	meta2, err := c2.CreateTable("people", newTestSchema())
	testingpkg.Ok(t, err)
	testingpkg.Equals(t, meta.OID(), meta2.OID())
	testingpkg.Equals(t, 1, meta2.Table().NumPages())

	tid2 := types.NewTxnID()
	it := meta2.Table().Iterator(tid2)
	testingpkg.Ok(t, it.Open(ctx))
	got, err := it.Next()
	testingpkg.Ok(t, err)
	testingpkg.Equals(t, "(1, ann)", got.String())
	_, err = it.Next()
	testingpkg.ErrorIs(t, err, errors.ErrNoSuchElement)
	it.Close()
	testingpkg.Ok(t, bpm2.TransactionComplete(tid2, true))

	c2.Shutdown(true)
}
