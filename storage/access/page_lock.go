package access

import (
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/ryogrid/HeapTxnDB/types"
)

// PageLock is the lock state of one page: at most one exclusive holder or
// any number of shared holders. Both are non-empty only while the sole
// shared holder is being upgraded, which happens inside one critical section.
//
// PageLock is not safe for concurrent use. LockManager guards it.
type PageLock struct {
	exclusive types.TxnID
	shared    mapset.Set[types.TxnID]
}

func NewPageLock() *PageLock {
	return &PageLock{types.InvalidTxnID, mapset.NewThreadUnsafeSet[types.TxnID]()}
}

func (pl *PageLock) GetExclusiveHolder() types.TxnID {
	return pl.exclusive
}

func (pl *PageLock) GetSharedHolders() []types.TxnID {
	return pl.shared.ToSlice()
}

func (pl *PageLock) IsExclusiveHolder(tid types.TxnID) bool {
	return pl.exclusive != types.InvalidTxnID && pl.exclusive == tid
}

func (pl *PageLock) IsSharedHolder(tid types.TxnID) bool {
	return pl.shared.Contains(tid)
}

func (pl *PageLock) IsHeldBy(tid types.TxnID) bool {
	return pl.IsExclusiveHolder(tid) || pl.IsSharedHolder(tid)
}

func (pl *PageLock) IsFree() bool {
	return pl.exclusive == types.InvalidTxnID && pl.shared.Cardinality() == 0
}

// blockers returns the transactions tid has to wait for before perm can be
// granted. An empty set means the request can be granted now.
func (pl *PageLock) blockers(tid types.TxnID, perm types.Permissions) mapset.Set[types.TxnID] {
	ret := mapset.NewThreadUnsafeSet[types.TxnID]()
	if pl.exclusive != types.InvalidTxnID && pl.exclusive != tid {
		ret.Add(pl.exclusive)
	}
	if perm == types.READ_WRITE && pl.exclusive != tid {
		for _, holder := range pl.shared.ToSlice() {
			if holder != tid {
				ret.Add(holder)
			}
		}
	}
	return ret
}

// grant must be called only when blockers is empty.
func (pl *PageLock) grant(tid types.TxnID, perm types.Permissions) {
	if pl.exclusive == tid {
		return
	}
	switch perm {
	case types.READ_ONLY:
		pl.shared.Add(tid)
	case types.READ_WRITE:
		// no holder at all, or an upgrade of the sole shared holder
		pl.shared.Remove(tid)
		pl.exclusive = tid
	}
}

func (pl *PageLock) release(tid types.TxnID) {
	pl.shared.Remove(tid)
	if pl.exclusive == tid {
		pl.exclusive = types.InvalidTxnID
	}
}
