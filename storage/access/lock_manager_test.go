package access

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/ryogrid/HeapTxnDB/errors"
	testingpkg "github.com/ryogrid/HeapTxnDB/testing/testing_assert"
	"github.com/ryogrid/HeapTxnDB/types"
)

func acquireAsync(lm *LockManager, ctx context.Context, tid types.TxnID, pid types.PageID, perm types.Permissions) <-chan error {
	ch := make(chan error, 1)
	go func() {
		ch <- lm.AcquireLock(ctx, tid, pid, perm)
	}()
	return ch
}

func waitEdges(t *testing.T, lm *LockManager, n int) {
	t.Helper()
	testingpkg.Assert(t, testingpkg.Eventually(t, func() bool { return len(lm.GetEdgeList()) == n }, "edges not registered"),
		"expected %d wait-for edges", n)
}

func TestSharedAndExclusive(t *testing.T) {
	lm := NewLockManager()
	ctx := context.Background()
	t1, t2 := types.NewTxnID(), types.NewTxnID()
	pid := types.NewPageID(1, 0)

	testingpkg.Ok(t, lm.AcquireLock(ctx, t1, pid, types.READ_ONLY))
	testingpkg.Ok(t, lm.AcquireLock(ctx, t2, pid, types.READ_ONLY))
	testingpkg.SimpleAssert(t, lm.HoldsLock(t1, pid))
	testingpkg.SimpleAssert(t, lm.HoldsLock(t2, pid))

	ex, shared := lm.GetPageLock(pid)
	testingpkg.Equals(t, types.InvalidTxnID, ex)
	testingpkg.Equals(t, 2, len(shared))

	// t2 has to wait for t1 to go away
	ch := acquireAsync(lm, ctx, t2, pid, types.READ_WRITE)
	waitEdges(t, lm, 1)
	select {
	case err := <-ch:
		t.Fatalf("upgrade should wait, got %v", err)
	default:
	}

	lm.ReleaseLock(t1, pid)
	testingpkg.Ok(t, <-ch)

	ex, shared = lm.GetPageLock(pid)
	testingpkg.Equals(t, t2, ex)
	testingpkg.Equals(t, 0, len(shared))
	testingpkg.SimpleAssert(t, !lm.HoldsLock(t1, pid))
	testingpkg.Equals(t, 0, len(lm.GetEdgeList()))

	// an exclusive holder already satisfies READ_ONLY
	testingpkg.Ok(t, lm.AcquireLock(ctx, t2, pid, types.READ_ONLY))
	ex, shared = lm.GetPageLock(pid)
	testingpkg.Equals(t, t2, ex)
	testingpkg.Equals(t, 0, len(shared))
}

func TestUpgradeOfSoleSharedHolderDoesNotWait(t *testing.T) {
	lm := NewLockManager()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	t1 := types.NewTxnID()
	pid := types.NewPageID(1, 3)

	testingpkg.Ok(t, lm.AcquireLock(ctx, t1, pid, types.READ_ONLY))
	testingpkg.Ok(t, lm.AcquireLock(ctx, t1, pid, types.READ_WRITE))

	ex, shared := lm.GetPageLock(pid)
	testingpkg.Equals(t, t1, ex)
	testingpkg.Equals(t, 0, len(shared))
	testingpkg.Equals(t, []types.PageID{pid}, lm.PagesHeldBy(t1))

	// re-acquiring is a no-op
	testingpkg.Ok(t, lm.AcquireLock(ctx, t1, pid, types.READ_WRITE))
	testingpkg.Equals(t, 1, len(lm.PagesHeldBy(t1)))
}

func TestInvalidPermission(t *testing.T) {
	lm := NewLockManager()
	t1 := types.NewTxnID()
	pid := types.NewPageID(1, 0)

	err := lm.AcquireLock(context.Background(), t1, pid, types.Permissions(7))
	testingpkg.ErrorIs(t, err, errors.ErrInvalidPermission)
	testingpkg.SimpleAssert(t, errors.IsInvalidArgument(err))
	testingpkg.SimpleAssert(t, !lm.IsActive(t1))
	testingpkg.SimpleAssert(t, !lm.HoldsLock(t1, pid))
}

func TestReleaseUnknownLock(t *testing.T) {
	lm := NewLockManager()
	ctx := context.Background()
	t1, t2 := types.NewTxnID(), types.NewTxnID()
	held := types.NewPageID(9, 0)
	testingpkg.Ok(t, lm.AcquireLock(ctx, t1, held, types.READ_WRITE))

	// no lock state for the page, nothing changes
	lm.ReleaseLock(t1, types.NewPageID(9, 9))
	lm.ReleaseLock(t2, types.NewPageID(9, 9))
	testingpkg.SimpleAssert(t, lm.HoldsLock(t1, held))
	testingpkg.SimpleAssert(t, !lm.IsActive(t2))
	testingpkg.Equals(t, []types.PageID{held}, lm.PagesHeldBy(t1))
	lm.ReleaseAllLocks(t1)
}

func TestTwoTxnDeadlock(t *testing.T) {
	lm := NewLockManager()
	ctx := context.Background()
	t1, t2 := types.NewTxnID(), types.NewTxnID()
	pageA, pageB := types.NewPageID(1, 0), types.NewPageID(1, 1)

	testingpkg.Ok(t, lm.AcquireLock(ctx, t1, pageA, types.READ_WRITE))
	testingpkg.Ok(t, lm.AcquireLock(ctx, t2, pageB, types.READ_WRITE))

	ch := acquireAsync(lm, ctx, t1, pageB, types.READ_WRITE)
	waitEdges(t, lm, 1)
	testingpkg.SimpleAssert(t, !lm.IsDeadLock())

	err := lm.AcquireLock(ctx, t2, pageA, types.READ_WRITE)
	testingpkg.ErrorIs(t, err, errors.ErrTxnAborted)
	testingpkg.SimpleAssert(t, errors.IsTransactionAborted(err))
	// the aborted request left neither edges nor a lock behind
	testingpkg.Equals(t, 1, len(lm.GetEdgeList()))
	testingpkg.SimpleAssert(t, !lm.HoldsLock(t2, pageA))
	testingpkg.Equals(t, []types.PageID{pageB}, lm.PagesHeldBy(t2))

	lm.ReleaseAllLocks(t2)
	testingpkg.Ok(t, <-ch)
	testingpkg.SimpleAssert(t, lm.HoldsLock(t1, pageB))
	testingpkg.Equals(t, 0, len(lm.GetEdgeList()))
	testingpkg.SimpleAssert(t, !lm.IsActive(t2))
}

func TestUpgradeDeadlock(t *testing.T) {
	lm := NewLockManager()
	ctx := context.Background()
	t1, t2 := types.NewTxnID(), types.NewTxnID()
	pid := types.NewPageID(2, 0)

	testingpkg.Ok(t, lm.AcquireLock(ctx, t1, pid, types.READ_ONLY))
	testingpkg.Ok(t, lm.AcquireLock(ctx, t2, pid, types.READ_ONLY))

	ch := acquireAsync(lm, ctx, t1, pid, types.READ_WRITE)
	waitEdges(t, lm, 1)

	testingpkg.ErrorIs(t, lm.AcquireLock(ctx, t2, pid, types.READ_WRITE), errors.ErrTxnAborted)
	lm.ReleaseAllLocks(t2)

	testingpkg.Ok(t, <-ch)
	ex, shared := lm.GetPageLock(pid)
	testingpkg.Equals(t, t1, ex)
	testingpkg.Equals(t, 0, len(shared))
}

func TestThreeTxnCycle(t *testing.T) {
	lm := NewLockManager()
	ctx := context.Background()
	t1, t2, t3 := types.NewTxnID(), types.NewTxnID(), types.NewTxnID()
	p1, p2, p3 := types.NewPageID(3, 0), types.NewPageID(3, 1), types.NewPageID(3, 2)

	testingpkg.Ok(t, lm.AcquireLock(ctx, t1, p1, types.READ_WRITE))
	testingpkg.Ok(t, lm.AcquireLock(ctx, t2, p2, types.READ_WRITE))
	testingpkg.Ok(t, lm.AcquireLock(ctx, t3, p3, types.READ_ONLY))

	ch1 := acquireAsync(lm, ctx, t1, p2, types.READ_ONLY)
	waitEdges(t, lm, 1)
	ch2 := acquireAsync(lm, ctx, t2, p3, types.READ_WRITE)
	waitEdges(t, lm, 2)

	testingpkg.ErrorIs(t, lm.AcquireLock(ctx, t3, p1, types.READ_ONLY), errors.ErrTxnAborted)
	lm.ReleaseAllLocks(t3)
	testingpkg.Ok(t, <-ch2)

	lm.ReleaseAllLocks(t2)
	testingpkg.Ok(t, <-ch1)
	testingpkg.Equals(t, 0, len(lm.GetEdgeList()))
}

func TestCancelledWaitLeavesNoEdges(t *testing.T) {
	lm := NewLockManager()
	t1, t2 := types.NewTxnID(), types.NewTxnID()
	pid := types.NewPageID(4, 0)

	testingpkg.Ok(t, lm.AcquireLock(context.Background(), t1, pid, types.READ_WRITE))

	ctx, cancel := context.WithCancel(context.Background())
	ch := acquireAsync(lm, ctx, t2, pid, types.READ_ONLY)
	waitEdges(t, lm, 1)
	cancel()

	err := <-ch
	testingpkg.ErrorIs(t, err, errors.ErrInterrupted)
	testingpkg.ErrorIs(t, err, context.Canceled)
	testingpkg.SimpleAssert(t, errors.IsInterrupted(err))
	testingpkg.SimpleAssert(t, !errors.IsTransactionAborted(err))
	testingpkg.Equals(t, 0, len(lm.GetEdgeList()))
	testingpkg.SimpleAssert(t, !lm.IsActive(t2))
	testingpkg.SimpleAssert(t, lm.HoldsLock(t1, pid))
}

func TestTimeoutWhileWaiting(t *testing.T) {
	lm := NewLockManager()
	t1, t2 := types.NewTxnID(), types.NewTxnID()
	pid := types.NewPageID(4, 1)

	testingpkg.Ok(t, lm.AcquireLock(context.Background(), t1, pid, types.READ_ONLY))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := lm.AcquireLock(ctx, t2, pid, types.READ_WRITE)
	testingpkg.ErrorIs(t, err, errors.ErrInterrupted)
	testingpkg.ErrorIs(t, err, context.DeadlineExceeded)
	testingpkg.Equals(t, 0, len(lm.GetEdgeList()))
}

// random workload: every granted state must keep exclusive and shared holders apart
func TestLockInvariantUnderContention(t *testing.T) {
	lm := NewLockManager()
	const workers = 8
	const rounds = 50
	pages := []types.PageID{types.NewPageID(5, 0), types.NewPageID(5, 1), types.NewPageID(5, 2)}

	var wg sync.WaitGroup
	violations := make(chan string, workers*rounds)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rnd := rand.New(rand.NewSource(seed))
			for r := 0; r < rounds; r++ {
				tid := types.NewTxnID()
				aborted := false
				for i := 0; i < 2 && !aborted; i++ {
					pid := pages[rnd.Intn(len(pages))]
					perm := types.Permissions(rnd.Intn(2))
					if err := lm.AcquireLock(context.Background(), tid, pid, perm); err != nil {
						if !errors.IsTransactionAborted(err) {
							violations <- err.Error()
						}
						aborted = true
						continue
					}
					ex, shared := lm.GetPageLock(pid)
					for _, s := range shared {
						if ex != types.InvalidTxnID && s != ex {
							violations <- "exclusive and shared holders overlap"
						}
					}
				}
				lm.ReleaseAllLocks(tid)
			}
		}(int64(w))
	}
	wg.Wait()
	close(violations)

	for v := range violations {
		t.Error(v)
	}
	testingpkg.Equals(t, 0, len(lm.GetEdgeList()))
	for _, pid := range pages {
		ex, shared := lm.GetPageLock(pid)
		testingpkg.Equals(t, types.InvalidTxnID, ex)
		testingpkg.Equals(t, 0, len(shared))
	}
}
