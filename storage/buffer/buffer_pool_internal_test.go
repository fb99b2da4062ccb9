package buffer

import (
	"context"
	"testing"

	"github.com/ryogrid/HeapTxnDB/common"
	"github.com/ryogrid/HeapTxnDB/errors"
	"github.com/ryogrid/HeapTxnDB/storage/access"
	"github.com/ryogrid/HeapTxnDB/storage/page"
	testingpkg "github.com/ryogrid/HeapTxnDB/testing/testing_assert"
	"github.com/ryogrid/HeapTxnDB/types"
)

func TestEvictFromEmptyPool(t *testing.T) {
	b := NewBufferPool(1, common.DefaultPageSize, access.NewLockManager())
	b.mutex.Lock()
	err := b.evictPage()
	b.mutex.Unlock()
	testingpkg.ErrorIs(t, err, errors.ErrEmptyCache)
}

func TestTransactionCompleteWithoutPages(t *testing.T) {
	b := NewBufferPool(1, common.DefaultPageSize, access.NewLockManager())
	tid := types.NewTxnID()
	testingpkg.Ok(t, b.TransactionComplete(tid, true))
	testingpkg.Ok(t, b.TransactionComplete(tid, false))
	testingpkg.Equals(t, 0, b.Size())

	_, err := b.resolveFileLocked(1)
	testingpkg.ErrorIs(t, err, errors.ErrUnknownTable)
}

type memPage struct {
	pid     types.PageID
	dirtier types.TxnID
}

func (p *memPage) GetPageId() types.PageID { return p.pid }
func (p *memPage) IsDirty() types.TxnID     { return p.dirtier }
func (p *memPage) MarkDirty(dirty bool, tid types.TxnID) {
	if dirty {
		p.dirtier = tid
	} else {
		p.dirtier = types.InvalidTxnID
	}
}
func (p *memPage) GetPageData() []byte       { return make([]byte, common.DefaultPageSize) }
func (p *memPage) GetBeforeImage() page.Page { return &memPage{pid: p.pid} }
func (p *memPage) SetBeforeImage()           {}

func TestCommitRefusedWhenModifiedPageNotCached(t *testing.T) {
	lm := access.NewLockManager()
	b := NewBufferPool(1, common.DefaultPageSize, lm)
	ctx := context.Background()
	t1, t2 := types.NewTxnID(), types.NewTxnID()
	pageA, pageB := types.NewPageID(1, 0), types.NewPageID(1, 1)

	// t1 fills the only frame with a dirty page
	testingpkg.Ok(t, lm.AcquireLock(ctx, t1, pageA, types.READ_WRITE))
	b.pages[pageA] = &memPage{pid: pageA, dirtier: t1}

	// t2 changed pageB after it had been evicted
	testingpkg.Ok(t, lm.AcquireLock(ctx, t2, pageB, types.READ_WRITE))
	err := b.cacheDirtyPages(t2, []page.Page{&memPage{pid: pageB}})
	testingpkg.ErrorIs(t, err, errors.ErrNoCleanPage)
	testingpkg.SimpleAssert(t, !b.IsCached(pageB))

	err = b.TransactionComplete(t2, true)
	testingpkg.ErrorIs(t, err, errors.ErrNoCleanPage)
	testingpkg.SimpleAssert(t, !lm.IsActive(t2))
	testingpkg.SimpleAssert(t, b.IsCached(pageA))
	testingpkg.Equals(t, 0, len(b.uncached))

	// the refusal does not stick to later transactions
	t3 := types.NewTxnID()
	testingpkg.Ok(t, b.TransactionComplete(t3, true))

	lm.ReleaseAllLocks(t1)
}
