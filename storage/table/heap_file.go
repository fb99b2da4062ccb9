package table

import (
	"context"

	"github.com/ncw/directio"
	"github.com/ryogrid/HeapTxnDB/common"
	"github.com/ryogrid/HeapTxnDB/errors"
	"github.com/ryogrid/HeapTxnDB/storage/buffer"
	"github.com/ryogrid/HeapTxnDB/storage/disk"
	"github.com/ryogrid/HeapTxnDB/storage/page"
	"github.com/ryogrid/HeapTxnDB/storage/table/schema"
	"github.com/ryogrid/HeapTxnDB/storage/tuple"
	"github.com/ryogrid/HeapTxnDB/types"
)

/**
 * HeapFile stores the tuples of one table in a sequence of HeapPages with no
 * particular order. Page i lives at offset i*pageSize of the backing file and
 * the file only grows.
 *
 * Tuple level operations go through the buffer pool so they take page locks.
 * ReadPage and WritePage are called by the buffer pool itself and touch the
 * disk directly.
 */
type HeapFile struct {
	tableID     uint32
	schema      *schema.Schema
	diskManager disk.DiskManager
	bpm         *buffer.BufferPool
}

func NewHeapFile(tableID uint32, schema_ *schema.Schema, diskManager disk.DiskManager, bpm *buffer.BufferPool) *HeapFile {
	return &HeapFile{
		tableID:     tableID,
		schema:      schema_,
		diskManager: diskManager,
		bpm:         bpm,
	}
}

func (hf *HeapFile) GetTableID() uint32 {
	return hf.tableID
}

func (hf *HeapFile) GetSchema() *schema.Schema {
	return hf.schema
}

func (hf *HeapFile) GetDiskManager() disk.DiskManager {
	return hf.diskManager
}

func (hf *HeapFile) GetFileName() string {
	return hf.diskManager.GetFileName()
}

// NumPages is the number of pages the backing file holds. A partial tail page counts.
func (hf *HeapFile) NumPages() int {
	pageSize := int64(hf.bpm.GetPageSize())
	return int((hf.diskManager.Size() + pageSize - 1) / pageSize)
}

/**
 * ReadPage loads page pid from disk. Asking for the page just past the end
 * appends an empty page to the file and returns it, this is how the file
 * grows. Anything further away returns ErrPageOutOfRange.
 */
func (hf *HeapFile) ReadPage(pid types.PageID) (page.Page, error) {
	pageSize := hf.bpm.GetPageSize()
	numPages := hf.NumPages()
	if pid.TableID != hf.tableID || pid.PageNo < 0 || int(pid.PageNo) > numPages {
		return nil, errors.Wrapf(errors.ErrPageOutOfRange, "page %v of table %d with %d pages", pid, hf.tableID, numPages)
	}

	if int(pid.PageNo) == numPages {
		data := CreateEmptyPageData(pageSize)
		if err := hf.diskManager.WritePage(pid.PageNo, data); err != nil {
			return nil, errors.Wrapf(err, "allocating page %v", pid)
		}
		common.ShPrintf(common.DEBUG_INFO, "HeapFile::ReadPage page %v allocated\n", pid)
		return NewHeapPage(pid, data, hf.schema, pageSize)
	}

	data := directio.AlignedBlock(pageSize)
	if err := hf.diskManager.ReadPage(pid.PageNo, data); err != nil {
		return nil, errors.Wrapf(err, "reading page %v", pid)
	}
	return NewHeapPage(pid, data, hf.schema, pageSize)
}

func (hf *HeapFile) WritePage(pg page.Page) error {
	pid := pg.GetPageId()
	if pid.TableID != hf.tableID || pid.PageNo < 0 {
		return errors.Wrapf(errors.ErrPageOutOfRange, "page %v written to table %d", pid, hf.tableID)
	}
	return hf.diskManager.WritePage(pid.PageNo, pg.GetPageData())
}

/**
 * InsertTuple puts t into the first page with a free slot, locking pages for
 * write on the way. Full pages whose lock this call took are unlocked again
 * right away. When every page is full the page just past the end is fetched,
 * which appends it to the file.
 * The page count is read again on every step: other transactions may grow
 * the file while this one waits for a lock, and the page it was about to
 * append may be an existing full page by then.
 * Returns the page that was modified.
 */
func (hf *HeapFile) InsertTuple(ctx context.Context, tid types.TxnID, t *tuple.Tuple) ([]page.Page, error) {
	if !hf.schema.Equals(t.GetSchema()) {
		return nil, errors.Wrapf(errors.ErrSchemaMismatch, "tuple %v into table %d of %v", t.GetSchema(), hf.tableID, hf.schema)
	}

	// fetching page i makes the file at least i+1 pages long, so i never
	// passes the end and the loop ends once some page has room
	for i := 0; ; i++ {
		pid := types.NewPageID(hf.tableID, int32(i))
		appending := i == hf.NumPages()
		heldBefore := hf.bpm.HoldsLock(tid, pid)
		hp, err := hf.fetchPage(ctx, tid, pid, types.READ_WRITE)
		if err != nil {
			return nil, err
		}
		if hp.GetNumEmptySlots() == 0 {
			if !heldBefore {
				hf.bpm.UnsafeReleasePage(tid, pid)
			}
			continue
		}
		if err := hp.InsertTuple(tid, t); err != nil {
			return nil, err
		}
		if appending {
			common.ShPrintf(common.DEBUG_INFO, "HeapFile::InsertTuple txn %d appended page %v\n", tid, pid)
		}
		return []page.Page{hp}, nil
	}
}

// DeleteTuple removes t from the page its RID points at.
func (hf *HeapFile) DeleteTuple(ctx context.Context, tid types.TxnID, t *tuple.Tuple) ([]page.Page, error) {
	rid := t.GetRID()
	if rid == nil {
		return nil, errors.Wrap(errors.ErrTupleNotLocated, "tuple has no RID")
	}
	if rid.GetPageId().TableID != hf.tableID {
		return nil, errors.Wrapf(errors.ErrTupleNotLocated, "tuple at %v is not in table %d", rid, hf.tableID)
	}

	hp, err := hf.fetchPage(ctx, tid, rid.GetPageId(), types.READ_WRITE)
	if err != nil {
		return nil, err
	}
	if err := hp.DeleteTuple(tid, t); err != nil {
		return nil, err
	}
	return []page.Page{hp}, nil
}

// Iterator returns an unopened iterator over the tuples of this file as seen by tid.
func (hf *HeapFile) Iterator(tid types.TxnID) *HeapFileIterator {
	return NewHeapFileIterator(hf, tid)
}

func (hf *HeapFile) fetchPage(ctx context.Context, tid types.TxnID, pid types.PageID, perm types.Permissions) (*HeapPage, error) {
	pg, err := hf.bpm.GetPage(ctx, tid, pid, perm)
	if err != nil {
		return nil, err
	}
	hp, ok := pg.(*HeapPage)
	if !ok {
		return nil, errors.Errorf("page %v is not a heap page", pid)
	}
	return hp, nil
}
