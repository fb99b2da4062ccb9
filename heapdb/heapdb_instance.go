package heapdb

import (
	"github.com/ryogrid/HeapTxnDB/catalog"
	"github.com/ryogrid/HeapTxnDB/common"
	"github.com/ryogrid/HeapTxnDB/storage/access"
	"github.com/ryogrid/HeapTxnDB/storage/buffer"
)

type HeapDBInstance struct {
	cfg                 *common.Config
	lock_manager        *access.LockManager
	bpm                 *buffer.BufferPool
	catalog             *catalog.Catalog
	transaction_manager *access.TransactionManager
}

// NewHeapDBInstanceForTesting returns an instance on virtual disks whose pool
// holds poolPages pages
func NewHeapDBInstanceForTesting(poolPages int) *HeapDBInstance {
	ret, err := NewHeapDBInstance(common.NewConfigForTesting(poolPages))
	common.SH_Assert(err == nil, "testing config must be valid")
	return ret
}

// NewHeapDBInstance wires the components of one database process. Every table
// created through the returned catalog shares the buffer pool and lock manager.
func NewHeapDBInstance(cfg *common.Config) (*HeapDBInstance, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	common.SetLogLevel(cfg.LogLevel)
	common.ConfigureMutexDiagnostics(cfg)

	lock_manager := access.NewLockManager()
	bpm := buffer.NewBufferPool(cfg.BufferPoolPages, cfg.PageSize, lock_manager)
	catalog_ := catalog.NewCatalog(cfg, bpm)
	transaction_manager := access.NewTransactionManager(bpm)

	common.ShPrintf(common.INFO, "instance started: page size %d, %d pool pages, data dir %s (virtual %v)\n",
		cfg.PageSize, cfg.BufferPoolPages, cfg.DataDir, cfg.UseVirtualDisk)
	return &HeapDBInstance{cfg, lock_manager, bpm, catalog_, transaction_manager}, nil
}

func (hi *HeapDBInstance) GetConfig() *common.Config {
	return hi.cfg
}

func (hi *HeapDBInstance) GetLockManager() *access.LockManager {
	return hi.lock_manager
}

func (hi *HeapDBInstance) GetBufferPool() *buffer.BufferPool {
	return hi.bpm
}

func (hi *HeapDBInstance) GetCatalog() *catalog.Catalog {
	return hi.catalog
}

func (hi *HeapDBInstance) GetTransactionManager() *access.TransactionManager {
	return hi.transaction_manager
}

// Shutdown waits for running transactions, closes every heap file and
// optionally removes them. Committed data is already on disk, so nothing is
// flushed here. No transaction can begin afterwards.
func (hi *HeapDBInstance) Shutdown(removeFiles bool) {
	hi.transaction_manager.BlockAllTransactions()
	hi.catalog.Shutdown(removeFiles)
	common.ShPrintf(common.INFO, "instance shut down\n")
}
