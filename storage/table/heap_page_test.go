package table

import (
	"testing"

	"github.com/ryogrid/HeapTxnDB/common"
	"github.com/ryogrid/HeapTxnDB/errors"
	"github.com/ryogrid/HeapTxnDB/storage/page"
	"github.com/ryogrid/HeapTxnDB/storage/table/column"
	"github.com/ryogrid/HeapTxnDB/storage/table/schema"
	"github.com/ryogrid/HeapTxnDB/storage/tuple"
	testingpkg "github.com/ryogrid/HeapTxnDB/testing/testing_assert"
	"github.com/ryogrid/HeapTxnDB/types"
)

func newPersonSchema() *schema.Schema {
	return schema.NewSchema([]*column.Column{
		column.NewColumn("id", types.Integer),
		column.NewColumn("name", types.Varchar),
	})
}

func newPerson(sc *schema.Schema, id int32, name string) *tuple.Tuple {
	return tuple.NewTupleFromSchema([]types.Value{types.NewInteger(id), types.NewVarchar(name)}, sc)
}

func TestHeapPageLayout(t *testing.T) {
	sc := newPersonSchema()
	// 36 byte tuples: 32768 / 289
	testingpkg.Equals(t, 113, NumSlots(common.DefaultPageSize, sc))
	testingpkg.Equals(t, 2, NumSlots(80, sc))

	pid := types.NewPageID(7, 0)
	hp, err := NewHeapPage(pid, CreateEmptyPageData(common.DefaultPageSize), sc, common.DefaultPageSize)
	testingpkg.Ok(t, err)
	testingpkg.Equals(t, 113, hp.GetNumSlots())
	testingpkg.Equals(t, 15, hp.GetHeaderSize())
	testingpkg.Equals(t, 113, hp.GetNumEmptySlots())
	testingpkg.Equals(t, types.InvalidTxnID, hp.IsDirty())

	tid := types.NewTxnID()
	first := newPerson(sc, 1, "one")
	testingpkg.Ok(t, hp.InsertTuple(tid, first))
	testingpkg.Equals(t, page.NewRID(pid, 0), first.GetRID())
	second := newPerson(sc, 2, "two")
	testingpkg.Ok(t, hp.InsertTuple(tid, second))
	testingpkg.Equals(t, uint32(1), second.GetRID().GetSlot())
	testingpkg.Equals(t, tid, hp.IsDirty())

	data := hp.GetPageData()
	testingpkg.Equals(t, common.DefaultPageSize, len(data))
	testingpkg.Equals(t, byte(0x03), data[0])
	// slot 1 starts right after the header
	restored := tuple.NewTupleFromBytes(nil, sc, data[15+36:])
	testingpkg.Equals(t, "(2, two)", restored.String())

	reparsed, err := NewHeapPage(pid, data, sc, common.DefaultPageSize)
	testingpkg.Ok(t, err)
	tuples := reparsed.Tuples()
	testingpkg.Equals(t, 2, len(tuples))
	testingpkg.SimpleAssert(t, tuples[0].Equals(first))
	testingpkg.Equals(t, page.NewRID(pid, 1), tuples[1].GetRID())
	testingpkg.Equals(t, data, reparsed.GetPageData())
}

func TestHeapPageFillAndDelete(t *testing.T) {
	sc := newPersonSchema()
	pid := types.NewPageID(7, 1)
	hp, err := NewHeapPage(pid, CreateEmptyPageData(80), sc, 80)
	testingpkg.Ok(t, err)
	tid := types.NewTxnID()

	a, b := newPerson(sc, 1, "a"), newPerson(sc, 2, "b")
	testingpkg.Ok(t, hp.InsertTuple(tid, a))
	testingpkg.Ok(t, hp.InsertTuple(tid, b))
	testingpkg.ErrorIs(t, hp.InsertTuple(tid, newPerson(sc, 3, "c")), errors.ErrPageFull)

	stale := tuple.NewTupleFromBytes(page.NewRID(pid, 0), sc, a.Data())
	testingpkg.Ok(t, hp.DeleteTuple(tid, a))
	testingpkg.SimpleAssert(t, a.GetRID() == nil)
	testingpkg.SimpleAssert(t, !hp.IsSlotUsed(0))
	testingpkg.ErrorIs(t, hp.DeleteTuple(tid, stale), errors.ErrTupleAlreadyDeleted)
	testingpkg.ErrorIs(t, hp.DeleteTuple(tid, a), errors.ErrTupleNotLocated)

	elsewhere := tuple.NewTupleFromBytes(page.NewRID(types.NewPageID(7, 2), 0), sc, b.Data())
	testingpkg.ErrorIs(t, hp.DeleteTuple(tid, elsewhere), errors.ErrTupleNotLocated)

	// the freed slot is reused first
	c := newPerson(sc, 3, "c")
	testingpkg.Ok(t, hp.InsertTuple(tid, c))
	testingpkg.Equals(t, uint32(0), c.GetRID().GetSlot())
}

func TestHeapPageSchemaMismatch(t *testing.T) {
	sc := newPersonSchema()
	hp, err := NewHeapPage(types.NewPageID(7, 0), CreateEmptyPageData(common.DefaultPageSize), sc, common.DefaultPageSize)
	testingpkg.Ok(t, err)

	other := schema.NewSchema([]*column.Column{column.NewColumn("flag", types.Boolean)})
	tpl := tuple.NewTupleFromSchema([]types.Value{types.NewBoolean(true)}, other)
	err = hp.InsertTuple(types.NewTxnID(), tpl)
	testingpkg.ErrorIs(t, err, errors.ErrSchemaMismatch)
	testingpkg.SimpleAssert(t, errors.IsInvalidArgument(err))
	testingpkg.Equals(t, types.InvalidTxnID, hp.IsDirty())

	_, err = NewHeapPage(types.NewPageID(7, 0), CreateEmptyPageData(16), sc, 16)
	testingpkg.Nok(t, err)
}

func TestHeapPageBeforeImage(t *testing.T) {
	sc := newPersonSchema()
	hp, err := NewHeapPage(types.NewPageID(7, 0), CreateEmptyPageData(common.DefaultPageSize), sc, common.DefaultPageSize)
	testingpkg.Ok(t, err)
	tid := types.NewTxnID()

	testingpkg.Ok(t, hp.InsertTuple(tid, newPerson(sc, 1, "x")))
	before := hp.GetBeforeImage().(*HeapPage)
	testingpkg.Equals(t, 0, len(before.Tuples()))
	testingpkg.Equals(t, types.InvalidTxnID, before.IsDirty())

	hp.SetBeforeImage()
	hp.MarkDirty(false, types.InvalidTxnID)
	testingpkg.Equals(t, types.InvalidTxnID, hp.IsDirty())
	testingpkg.Equals(t, 1, len(hp.GetBeforeImage().(*HeapPage).Tuples()))
}
