// this code is from https://github.com/brunocalza/go-bustub
// there is license and copyright notice in licenses/go-bustub dir

package buffer

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"

	"github.com/ryogrid/HeapTxnDB/catalog/catalog_interface"
	"github.com/ryogrid/HeapTxnDB/common"
	"github.com/ryogrid/HeapTxnDB/errors"
	"github.com/ryogrid/HeapTxnDB/storage/access"
	"github.com/ryogrid/HeapTxnDB/storage/page"
	"github.com/ryogrid/HeapTxnDB/storage/tuple"
	"github.com/ryogrid/HeapTxnDB/types"
	"github.com/sasha-s/go-deadlock"
)

// BufferPool caches pages of heap files and is the only way operators reach
// them. Every page access takes the page lock of the requesting transaction
// first.
//
// Dirty pages stay in memory until their transaction commits (NO-STEAL), so
// a pool full of dirty pages refuses to load more with errors.ErrNoCleanPage.
// Pages are written at commit (FORCE) and thrown away on abort.
type BufferPool struct {
	capacity    int
	pageSize    atomic.Int32
	pages       map[types.PageID]page.Page
	lockManager *access.LockManager
	catalog     catalog_interface.CatalogInterface
	// transactions with a modified page the pool could not cache. their
	// commit is refused
	uncached map[types.TxnID]error
	// guards pages and uncached. never held while waiting for a page lock
	mutex deadlock.Mutex
}

// NewBufferPool returns an empty buffer pool caching at most numPages pages.
// The catalog is set later with SetCatalog because heap files need the pool.
func NewBufferPool(numPages int, pageSize int, lockManager *access.LockManager) *BufferPool {
	common.SH_Assert(numPages > 0, "buffer pool needs at least one page")
	ret := &BufferPool{
		capacity:    numPages,
		pages:       make(map[types.PageID]page.Page),
		uncached:    make(map[types.TxnID]error),
		lockManager: lockManager,
	}
	ret.pageSize.Store(int32(pageSize))
	return ret
}

func (b *BufferPool) SetCatalog(catalog_ catalog_interface.CatalogInterface) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.catalog = catalog_
}

// GetPageSize does not take the pool mutex, heap files call it while
// the pool reads or writes their pages.
func (b *BufferPool) GetPageSize() int {
	return int(b.pageSize.Load())
}

// ResetPageSize is for tests. The size can only change while no page is cached.
func (b *BufferPool) ResetPageSize(pageSize int) error {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	if len(b.pages) > 0 {
		return errors.Wrapf(errors.ErrPagesCached, "%d pages cached", len(b.pages))
	}
	b.pageSize.Store(int32(pageSize))
	return nil
}

func (b *BufferPool) GetLockManager() *access.LockManager {
	return b.lockManager
}

func (b *BufferPool) Capacity() int {
	return b.capacity
}

// Size returns the number of cached pages
func (b *BufferPool) Size() int {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return len(b.pages)
}

func (b *BufferPool) IsCached(pid types.PageID) bool {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	_, ok := b.pages[pid]
	return ok
}

// GetPage locks pid for tid with perm and returns the page, loading it from
// its heap file on a miss. The lock is taken exactly once per call, and it
// is kept even if loading fails afterwards.
func (b *BufferPool) GetPage(ctx context.Context, tid types.TxnID, pid types.PageID, perm types.Permissions) (page.Page, error) {
	if err := b.lockManager.AcquireLock(ctx, tid, pid, perm); err != nil {
		return nil, err
	}

	b.mutex.Lock()
	defer b.mutex.Unlock()

	if pg, ok := b.pages[pid]; ok {
		return pg, nil
	}

	if len(b.pages) >= b.capacity {
		if err := b.evictPage(); err != nil {
			return nil, err
		}
	}

	dbFile, err := b.resolveFile(pid.TableID)
	if err != nil {
		return nil, err
	}
	pg, err := dbFile.ReadPage(pid)
	if err != nil {
		return nil, err
	}
	b.pages[pid] = pg
	common.ShPrintf(common.CACHE_OUT_IN_INFO, "page %v cached for txn %d\n", pid, tid)
	return pg, nil
}

// UnsafeReleasePage gives up the lock of tid on pid before the transaction
// ends. Callers must only do this for pages they have neither read nor
// modified. Releasing a lock tid does not hold is a protocol violation and
// panics.
func (b *BufferPool) UnsafeReleasePage(tid types.TxnID, pid types.PageID) {
	if !b.lockManager.HoldsLock(tid, pid) {
		err := errors.Wrapf(errors.ErrLockNotFound, "txn %d releasing %v", tid, pid)
		common.SH_Assert(false, fmt.Sprintf("UnsafeReleasePage: %v", err))
	}
	b.lockManager.ReleaseLock(tid, pid)
}

func (b *BufferPool) HoldsLock(tid types.TxnID, pid types.PageID) bool {
	return b.lockManager.HoldsLock(tid, pid)
}

// InsertTuple adds t to the table tableID on behalf of tid. Pages touched
// are marked dirty by tid and cached.
func (b *BufferPool) InsertTuple(ctx context.Context, tid types.TxnID, tableID uint32, t *tuple.Tuple) error {
	dbFile, err := b.resolveFileLocked(tableID)
	if err != nil {
		return err
	}
	// the heap file fetches pages through GetPage, so b.mutex must not be held here
	touched, err := dbFile.InsertTuple(ctx, tid, t)
	if err != nil {
		return err
	}
	return b.cacheDirtyPages(tid, touched)
}

// DeleteTuple removes t, located by its RID, on behalf of tid.
func (b *BufferPool) DeleteTuple(ctx context.Context, tid types.TxnID, t *tuple.Tuple) error {
	if t.GetRID() == nil {
		return errors.Wrap(errors.ErrTupleNotLocated, "tuple has no RID")
	}
	dbFile, err := b.resolveFileLocked(t.GetRID().GetPageId().TableID)
	if err != nil {
		return err
	}
	touched, err := dbFile.DeleteTuple(ctx, tid, t)
	if err != nil {
		return err
	}
	return b.cacheDirtyPages(tid, touched)
}

// cacheDirtyPages puts pages modified by tid back into the cache. A page
// evicted after GetPage may find no room any more. Its change can not reach
// the disk then, so tid can only abort.
func (b *BufferPool) cacheDirtyPages(tid types.TxnID, touched []page.Page) error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	for _, pg := range touched {
		pg.MarkDirty(true, tid)
		pid := pg.GetPageId()
		if _, ok := b.pages[pid]; !ok && len(b.pages) >= b.capacity {
			if err := b.evictPage(); err != nil {
				err = errors.Wrapf(err, "txn %d modified %v which is no longer cached", tid, pid)
				b.uncached[tid] = err
				return err
			}
		}
		b.pages[pid] = pg
	}
	return nil
}

/**
 * TransactionComplete ends tid. On commit every cached page tid holds a lock
 * on is written if dirty and gets a fresh before image. On abort those pages
 * are dropped from the cache so the next reader loads the stored version.
 * All locks of tid are released in both cases.
 *
 * When a commit can not write a page, the pages not yet written are dropped
 * like on abort and the error is returned. A commit of a transaction whose
 * modified page could not be cached is turned into an abort the same way.
 */
func (b *BufferPool) TransactionComplete(tid types.TxnID, commit bool) error {
	pids := b.lockManager.PagesHeldBy(tid)
	sort.Slice(pids, func(i, j int) bool {
		if pids[i].TableID != pids[j].TableID {
			return pids[i].TableID < pids[j].TableID
		}
		return pids[i].PageNo < pids[j].PageNo
	})

	var retErr error
	b.mutex.Lock()
	if err, ok := b.uncached[tid]; ok {
		delete(b.uncached, tid)
		if commit {
			retErr = errors.Wrapf(err, "commit of txn %d refused", tid)
			commit = false
		}
	}
	if commit {
		for _, pid := range pids {
			if retErr != nil {
				delete(b.pages, pid)
				continue
			}
			if err := b.flushPage(pid); err != nil {
				retErr = err
				delete(b.pages, pid)
				continue
			}
			if pg, ok := b.pages[pid]; ok {
				pg.SetBeforeImage()
			}
		}
	} else {
		for _, pid := range pids {
			delete(b.pages, pid)
		}
	}
	b.mutex.Unlock()

	b.lockManager.ReleaseAllLocks(tid)

	if commit && retErr == nil {
		common.ShPrintf(common.COMMIT_ABORT_HANDLE_INFO, "txn %d committed, %d pages flushed\n", tid, len(pids))
	} else {
		common.ShPrintf(common.COMMIT_ABORT_HANDLE_INFO, "txn %d rolled back, %d pages discarded\n", tid, len(pids))
	}
	return retErr
}

// FlushAllPages writes every dirty cached page. Uncommitted changes reach the
// disk this way, so it is only for shutdown and tests.
func (b *BufferPool) FlushAllPages() error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	for pid := range b.pages {
		if err := b.flushPage(pid); err != nil {
			return err
		}
	}
	return nil
}

// FlushPage writes pid to its heap file if it is cached and dirty.
func (b *BufferPool) FlushPage(pid types.PageID) error {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.flushPage(pid)
}

// DiscardPage drops pid from the cache without writing it.
func (b *BufferPool) DiscardPage(pid types.PageID) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	delete(b.pages, pid)
}

// mutex must be held
func (b *BufferPool) flushPage(pid types.PageID) error {
	pg, ok := b.pages[pid]
	if !ok || pg.IsDirty() == types.InvalidTxnID {
		return nil
	}
	dbFile, err := b.resolveFile(pid.TableID)
	if err != nil {
		return err
	}
	if err := dbFile.WritePage(pg); err != nil {
		return errors.Wrapf(err, "flushing page %v", pid)
	}
	pg.MarkDirty(false, types.InvalidTxnID)
	return nil
}

// evictPage removes the first clean page found. The order is whatever map
// iteration gives. mutex must be held.
func (b *BufferPool) evictPage() error {
	if len(b.pages) == 0 {
		return errors.ErrEmptyCache
	}
	for pid, pg := range b.pages {
		if pg.IsDirty() != types.InvalidTxnID {
			continue
		}
		if err := b.flushPage(pid); err != nil {
			return err
		}
		delete(b.pages, pid)
		common.ShPrintf(common.CACHE_OUT_IN_INFO, "page %v evicted\n", pid)
		return nil
	}
	common.ShPrintf(common.WARN, "all %d cached pages are dirty\n", len(b.pages))
	return errors.ErrNoCleanPage
}

// mutex must be held
func (b *BufferPool) resolveFile(tableID uint32) (catalog_interface.DbFile, error) {
	if b.catalog == nil {
		return nil, errors.Wrapf(errors.ErrUnknownTable, "no catalog set, table %d", tableID)
	}
	return b.catalog.ResolveFile(tableID)
}

func (b *BufferPool) resolveFileLocked(tableID uint32) (catalog_interface.DbFile, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.resolveFile(tableID)
}
