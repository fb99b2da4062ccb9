// this code is from https://github.com/brunocalza/go-bustub
// there is license and copyright notice in licenses/go-bustub dir

package table

import (
	"fmt"

	"github.com/ryogrid/HeapTxnDB/common"
	"github.com/ryogrid/HeapTxnDB/errors"
	"github.com/ryogrid/HeapTxnDB/storage/page"
	"github.com/ryogrid/HeapTxnDB/storage/table/schema"
	"github.com/ryogrid/HeapTxnDB/storage/tuple"
	"github.com/ryogrid/HeapTxnDB/types"
)

// Heap page format:
//  ----------------------------------------------------------------
//  | HEADER BITMAP | SLOT 0 | SLOT 1 | ... | SLOT n-1 | (zeros)   |
//  ----------------------------------------------------------------
//  The bitmap has ceil(n/8) bytes. Bit i%8 (least significant first) of
//  byte i/8 is set when slot i holds a tuple. Every slot is as wide as one
//  tuple of the table schema and n = floor(pageSize*8 / (tupleSize*8 + 1)).
type HeapPage struct {
	pid      types.PageID
	schema   *schema.Schema
	pageSize int
	numSlots int
	header   []byte
	tuples   []*tuple.Tuple
	dirtier  types.TxnID
	oldData  []byte
	// protects header, tuples and dirtier against eviction and flush which
	// read the page without holding its page lock
	latch common.ReaderWriterLatch
}

// NewHeapPage parses data, which holds at least pageSize bytes, as the page pid.
func NewHeapPage(pid types.PageID, data []byte, schema_ *schema.Schema, pageSize int) (*HeapPage, error) {
	if len(data) < pageSize {
		return nil, errors.Errorf("page %v: %d bytes for page size %d", pid, len(data), pageSize)
	}
	numSlots := NumSlots(pageSize, schema_)
	if numSlots <= 0 {
		return nil, errors.Errorf("tuple of %d bytes does not fit a %d byte page", schema_.Length(), pageSize)
	}

	hp := &HeapPage{
		pid:      pid,
		schema:   schema_,
		pageSize: pageSize,
		numSlots: numSlots,
		dirtier:  types.InvalidTxnID,
		latch:    common.NewRWLatch(),
	}
	headerSize := hp.GetHeaderSize()
	hp.header = make([]byte, headerSize)
	copy(hp.header, data[:headerSize])

	tupleSize := int(schema_.Length())
	hp.tuples = make([]*tuple.Tuple, numSlots)
	for i := 0; i < numSlots; i++ {
		if !hp.isSlotUsed(i) {
			continue
		}
		offset := headerSize + i*tupleSize
		hp.tuples[i] = tuple.NewTupleFromBytes(page.NewRID(pid, uint32(i)), schema_, data[offset:offset+tupleSize])
	}

	hp.oldData = make([]byte, pageSize)
	copy(hp.oldData, data[:pageSize])
	return hp, nil
}

// NumSlots is the number of tuples of schema_ one page holds.
func NumSlots(pageSize int, schema_ *schema.Schema) int {
	return (pageSize * 8) / (int(schema_.Length())*8 + 1)
}

// CreateEmptyPageData returns the bytes of a page without tuples.
func CreateEmptyPageData(pageSize int) []byte {
	return make([]byte, pageSize)
}

func (hp *HeapPage) GetPageId() types.PageID {
	return hp.pid
}

func (hp *HeapPage) GetSchema() *schema.Schema {
	return hp.schema
}

func (hp *HeapPage) GetNumSlots() int {
	return hp.numSlots
}

func (hp *HeapPage) GetHeaderSize() int {
	return (hp.numSlots + 7) / 8
}

func (hp *HeapPage) GetPageData() []byte {
	hp.latch.RLock()
	defer hp.latch.RUnlock()
	return hp.serialize()
}

func (hp *HeapPage) serialize() []byte {
	data := make([]byte, hp.pageSize)
	copy(data, hp.header)
	headerSize := hp.GetHeaderSize()
	tupleSize := int(hp.schema.Length())
	for i, t := range hp.tuples {
		if t == nil {
			continue
		}
		copy(data[headerSize+i*tupleSize:], t.Data())
	}
	return data
}

// InsertTuple stores a copy of t in the first free slot, sets the RID of t
// and marks the page dirty by tid.
func (hp *HeapPage) InsertTuple(tid types.TxnID, t *tuple.Tuple) error {
	if !hp.schema.Equals(t.GetSchema()) {
		return errors.Wrapf(errors.ErrSchemaMismatch, "tuple %v into page %v of %v", t.GetSchema(), hp.pid, hp.schema)
	}

	hp.latch.WLock()
	defer hp.latch.WUnlock()

	for i := 0; i < hp.numSlots; i++ {
		if hp.isSlotUsed(i) {
			continue
		}
		hp.tuples[i] = tuple.NewTupleFromBytes(page.NewRID(hp.pid, uint32(i)), hp.schema, t.Data())
		t.SetRID(page.NewRID(hp.pid, uint32(i)))
		hp.markSlotUsed(i, true)
		hp.dirtier = tid
		return nil
	}
	return errors.Wrapf(errors.ErrPageFull, "page %v", hp.pid)
}

// DeleteTuple frees the slot t is stored in and clears the RID of t.
func (hp *HeapPage) DeleteTuple(tid types.TxnID, t *tuple.Tuple) error {
	rid := t.GetRID()
	if rid == nil || rid.GetPageId() != hp.pid || int(rid.GetSlot()) >= hp.numSlots {
		return errors.Wrapf(errors.ErrTupleNotLocated, "tuple at %v is not on page %v", rid, hp.pid)
	}

	hp.latch.WLock()
	defer hp.latch.WUnlock()

	slot := int(rid.GetSlot())
	if !hp.isSlotUsed(slot) {
		return errors.Wrapf(errors.ErrTupleAlreadyDeleted, "slot %v", rid)
	}
	hp.tuples[slot] = nil
	hp.markSlotUsed(slot, false)
	hp.dirtier = tid
	t.SetRID(nil)
	return nil
}

func (hp *HeapPage) GetNumEmptySlots() int {
	hp.latch.RLock()
	defer hp.latch.RUnlock()

	cnt := 0
	for i := 0; i < hp.numSlots; i++ {
		if !hp.isSlotUsed(i) {
			cnt++
		}
	}
	return cnt
}

func (hp *HeapPage) IsSlotUsed(slot int) bool {
	hp.latch.RLock()
	defer hp.latch.RUnlock()
	return hp.isSlotUsed(slot)
}

// Tuples returns the stored tuples in slot order.
func (hp *HeapPage) Tuples() []*tuple.Tuple {
	hp.latch.RLock()
	defer hp.latch.RUnlock()

	ret := make([]*tuple.Tuple, 0, hp.numSlots)
	for _, t := range hp.tuples {
		if t != nil {
			ret = append(ret, t)
		}
	}
	return ret
}

func (hp *HeapPage) MarkDirty(dirty bool, tid types.TxnID) {
	hp.latch.WLock()
	defer hp.latch.WUnlock()
	if dirty {
		hp.dirtier = tid
	} else {
		hp.dirtier = types.InvalidTxnID
	}
}

func (hp *HeapPage) IsDirty() types.TxnID {
	hp.latch.RLock()
	defer hp.latch.RUnlock()
	return hp.dirtier
}

func (hp *HeapPage) GetBeforeImage() page.Page {
	hp.latch.RLock()
	oldData := make([]byte, len(hp.oldData))
	copy(oldData, hp.oldData)
	hp.latch.RUnlock()

	ret, err := NewHeapPage(hp.pid, oldData, hp.schema, hp.pageSize)
	common.SH_Assert(err == nil, fmt.Sprintf("before image of %v is broken: %v", hp.pid, err))
	return ret
}

func (hp *HeapPage) SetBeforeImage() {
	hp.latch.WLock()
	defer hp.latch.WUnlock()
	hp.oldData = hp.serialize()
}

func (hp *HeapPage) isSlotUsed(slot int) bool {
	return hp.header[slot/8]&(1<<uint(slot%8)) != 0
}

func (hp *HeapPage) markSlotUsed(slot int, used bool) {
	if used {
		hp.header[slot/8] |= 1 << uint(slot%8)
	} else {
		hp.header[slot/8] &^= 1 << uint(slot%8)
	}
}
