package access

import (
	"context"
	"sort"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/golang-collections/collections/queue"
	pair "github.com/notEpsilon/go-pair"
	"github.com/ryogrid/HeapTxnDB/common"
	"github.com/ryogrid/HeapTxnDB/errors"
	"github.com/ryogrid/HeapTxnDB/types"
	"github.com/sasha-s/go-deadlock"
)

/**
 * LockManager grants page level shared and exclusive locks to transactions
 * under strict two-phase locking. Locks are only released all together when
 * a transaction completes (ReleaseAllLocks), except for ReleaseLock which
 * callers use on pages they have not read or modified.
 *
 * A request which can not be granted registers wait-for edges from the
 * requester to every current holder it conflicts with. If the graph then has
 * a cycle the requester is aborted, otherwise it parks on the condition
 * variable and re-evaluates its request from scratch on every wakeup.
 */
type LockManager struct {
	mutex deadlock.Mutex
	cond  *sync.Cond

	lock_table map[types.PageID]*PageLock
	// pages each transaction holds a lock on
	txn_pages map[types.TxnID]mapset.Set[types.PageID]
	// waits_for[t] is the set of transactions t is blocked by
	waits_for map[types.TxnID]mapset.Set[types.TxnID]
}

func NewLockManager() *LockManager {
	ret := new(LockManager)
	ret.cond = sync.NewCond(&ret.mutex)
	ret.lock_table = make(map[types.PageID]*PageLock)
	ret.txn_pages = make(map[types.TxnID]mapset.Set[types.PageID])
	ret.waits_for = make(map[types.TxnID]mapset.Set[types.TxnID])
	return ret
}

// HoldsLock reports whether tid holds a shared or exclusive lock on pid.
func (lock_manager *LockManager) HoldsLock(tid types.TxnID, pid types.PageID) bool {
	lock_manager.mutex.Lock()
	defer lock_manager.mutex.Unlock()

	if pl, ok := lock_manager.lock_table[pid]; ok {
		return pl.IsHeldBy(tid)
	}
	return false
}

/**
 * AcquireLock blocks until tid holds pid with perm.
 *
 * READ_ONLY is satisfied by a shared lock or by an exclusive lock of tid
 * itself. READ_WRITE upgrades in place when tid is the only shared holder.
 *
 * Errors:
 *   ErrInvalidPermission  perm is neither READ_ONLY nor READ_WRITE
 *   ErrTxnAborted         waiting would close a cycle in the wait-for graph.
 *                         the caller must roll tid back
 *   ErrInterrupted        ctx was cancelled while waiting. matches ctx.Err() too
 */
func (lock_manager *LockManager) AcquireLock(ctx context.Context, tid types.TxnID, pid types.PageID, perm types.Permissions) error {
	if !perm.IsValid() {
		return errors.Wrapf(errors.ErrInvalidPermission, "txn %d requested %d on %v", tid, perm, pid)
	}

	lock_manager.mutex.Lock()
	defer lock_manager.mutex.Unlock()

	if ctx.Done() != nil {
		// wake up parked waiters so that the cancelled one notices
		stop := context.AfterFunc(ctx, func() {
			lock_manager.mutex.Lock()
			lock_manager.cond.Broadcast()
			lock_manager.mutex.Unlock()
		})
		defer stop()
	}

	pl, ok := lock_manager.lock_table[pid]
	if !ok {
		pl = NewPageLock()
		lock_manager.lock_table[pid] = pl
	}

	for {
		blockers := pl.blockers(tid, perm)
		if blockers.Cardinality() == 0 {
			pl.grant(tid, perm)
			lock_manager.addHeldPage(tid, pid)
			delete(lock_manager.waits_for, tid)
			return nil
		}

		if err := ctx.Err(); err != nil {
			lock_manager.clearWaiting(tid)
			common.ShPrintf(common.LOCK_WAIT_INFO, "txn %d gave up waiting for %v: %v\n", tid, pid, err)
			return errors.NewInterrupted(err)
		}

		lock_manager.waits_for[tid] = blockers
		if lock_manager.isDeadLock() {
			lock_manager.clearWaiting(tid)
			common.ShPrintf(common.DEBUGGING, "deadlock detected: txn %d aborted requesting %v %v held by %v\n",
				tid, perm, pid, blockers.ToSlice())
			if common.IsLogKindActive(common.DEBUGGING) {
				common.RuntimeStack()
			}
			return errors.Wrapf(errors.ErrTxnAborted, "txn %d would deadlock on %v", tid, pid)
		}

		common.ShPrintf(common.LOCK_WAIT_INFO, "txn %d waits for %v on %v\n", tid, blockers.ToSlice(), pid)
		lock_manager.cond.Wait()
	}
}

// ReleaseLock releases whatever lock tid has on pid. Nothing happens when pid
// has no lock state.
func (lock_manager *LockManager) ReleaseLock(tid types.TxnID, pid types.PageID) {
	lock_manager.mutex.Lock()
	defer lock_manager.mutex.Unlock()

	pl, ok := lock_manager.lock_table[pid]
	if !ok {
		return
	}
	pl.release(tid)

	if pages, ok := lock_manager.txn_pages[tid]; ok {
		pages.Remove(pid)
		if pages.Cardinality() == 0 {
			delete(lock_manager.txn_pages, tid)
		}
	}

	lock_manager.cond.Broadcast()
}

// ReleaseAllLocks drops every lock of tid and forgets about it.
func (lock_manager *LockManager) ReleaseAllLocks(tid types.TxnID) {
	lock_manager.mutex.Lock()
	defer lock_manager.mutex.Unlock()

	if pages, ok := lock_manager.txn_pages[tid]; ok {
		for _, pid := range pages.ToSlice() {
			if pl, exist := lock_manager.lock_table[pid]; exist {
				pl.release(tid)
			}
		}
		delete(lock_manager.txn_pages, tid)
	}
	delete(lock_manager.waits_for, tid)

	lock_manager.cond.Broadcast()
}

// IsDeadLock reports whether the current wait-for graph has a cycle.
func (lock_manager *LockManager) IsDeadLock() bool {
	lock_manager.mutex.Lock()
	defer lock_manager.mutex.Unlock()
	return lock_manager.isDeadLock()
}

/**
 * isDeadLock runs Kahn's elimination over the active transactions. A
 * transaction is active while it holds a lock or is registering/parked in
 * AcquireLock. Edges to transactions that are no longer active are ignored.
 * Transactions not waiting on anyone are removed first and removing one
 * frees the transactions waiting only on it. Anything left is on a cycle
 * or waits on one.
 *
 * mutex must be held.
 */
func (lock_manager *LockManager) isDeadLock() bool {
	active := mapset.NewThreadUnsafeSet[types.TxnID]()
	for tid := range lock_manager.txn_pages {
		active.Add(tid)
	}
	for tid := range lock_manager.waits_for {
		active.Add(tid)
	}

	waitCount := make(map[types.TxnID]int)
	waitedBy := make(map[types.TxnID][]types.TxnID)
	for _, tid := range active.ToSlice() {
		waitCount[tid] = 0
		if blockers, ok := lock_manager.waits_for[tid]; ok {
			for _, blocker := range blockers.ToSlice() {
				if blocker == tid || !active.Contains(blocker) {
					continue
				}
				waitCount[tid]++
				waitedBy[blocker] = append(waitedBy[blocker], tid)
			}
		}
	}

	q := queue.New()
	for tid, cnt := range waitCount {
		if cnt == 0 {
			q.Enqueue(tid)
		}
	}

	removed := 0
	for q.Len() > 0 {
		tid := q.Dequeue().(types.TxnID)
		removed++
		for _, waiter := range waitedBy[tid] {
			waitCount[waiter]--
			if waitCount[waiter] == 0 {
				q.Enqueue(waiter)
			}
		}
	}

	return removed < active.Cardinality()
}

// GetEdgeList returns the wait-for edges (waiter, holder) ordered by waiter then holder.
func (lock_manager *LockManager) GetEdgeList() []pair.Pair[types.TxnID, types.TxnID] {
	lock_manager.mutex.Lock()
	defer lock_manager.mutex.Unlock()

	ret := make([]pair.Pair[types.TxnID, types.TxnID], 0)
	for waiter, blockers := range lock_manager.waits_for {
		for _, holder := range blockers.ToSlice() {
			ret = append(ret, pair.Pair[types.TxnID, types.TxnID]{First: waiter, Second: holder})
		}
	}
	sort.Slice(ret, func(i, j int) bool {
		if ret[i].First != ret[j].First {
			return ret[i].First < ret[j].First
		}
		return ret[i].Second < ret[j].Second
	})
	return ret
}

// PagesHeldBy returns a snapshot of the pages tid holds a lock on.
func (lock_manager *LockManager) PagesHeldBy(tid types.TxnID) []types.PageID {
	lock_manager.mutex.Lock()
	defer lock_manager.mutex.Unlock()

	if pages, ok := lock_manager.txn_pages[tid]; ok {
		return pages.ToSlice()
	}
	return []types.PageID{}
}

// IsActive reports whether tid holds any lock or is waiting for one.
func (lock_manager *LockManager) IsActive(tid types.TxnID) bool {
	lock_manager.mutex.Lock()
	defer lock_manager.mutex.Unlock()

	_, holding := lock_manager.txn_pages[tid]
	_, waiting := lock_manager.waits_for[tid]
	return holding || waiting
}

// GetPageLock returns a copy of the holders of pid for inspection.
func (lock_manager *LockManager) GetPageLock(pid types.PageID) (exclusive types.TxnID, shared []types.TxnID) {
	lock_manager.mutex.Lock()
	defer lock_manager.mutex.Unlock()

	if pl, ok := lock_manager.lock_table[pid]; ok {
		return pl.GetExclusiveHolder(), pl.GetSharedHolders()
	}
	return types.InvalidTxnID, []types.TxnID{}
}

func (lock_manager *LockManager) addHeldPage(tid types.TxnID, pid types.PageID) {
	pages, ok := lock_manager.txn_pages[tid]
	if !ok {
		pages = mapset.NewThreadUnsafeSet[types.PageID]()
		lock_manager.txn_pages[tid] = pages
	}
	pages.Add(pid)
}

// clearWaiting drops the speculative edges of tid and lets the others re-check.
func (lock_manager *LockManager) clearWaiting(tid types.TxnID) {
	delete(lock_manager.waits_for, tid)
	lock_manager.cond.Broadcast()
}
