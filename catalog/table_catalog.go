// this code is from https://github.com/brunocalza/go-bustub
// there is license and copyright notice in licenses/go-bustub dir

package catalog

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/ryogrid/HeapTxnDB/catalog/catalog_interface"
	"github.com/ryogrid/HeapTxnDB/common"
	"github.com/ryogrid/HeapTxnDB/container/hash"
	"github.com/ryogrid/HeapTxnDB/errors"
	"github.com/ryogrid/HeapTxnDB/storage/buffer"
	"github.com/ryogrid/HeapTxnDB/storage/disk"
	"github.com/ryogrid/HeapTxnDB/storage/table"
	"github.com/ryogrid/HeapTxnDB/storage/table/schema"
	"github.com/sasha-s/go-deadlock"
)

// file name suffix of heap files under Config.DataDir
const HeapFileSuffix = ".dat"

// Catalog is a non-persistent catalog that is designed for the executor to use.
// It handles table creation and table lookup, and resolves table ids for the
// buffer pool.
//
// The id of a table is the murmur3 hash of the absolute path of its heap
// file, so reopening the same file yields the same id.
type Catalog struct {
	cfg        *common.Config
	bpm        *buffer.BufferPool
	tableIds   map[uint32]*TableMetadata
	tableNames map[string]*TableMetadata
	mutex      deadlock.RWMutex
}

// NewCatalog returns an empty catalog and registers it with bpm.
func NewCatalog(cfg *common.Config, bpm *buffer.BufferPool) *Catalog {
	ret := &Catalog{
		cfg:        cfg,
		bpm:        bpm,
		tableIds:   make(map[uint32]*TableMetadata),
		tableNames: make(map[string]*TableMetadata),
	}
	bpm.SetCatalog(ret)
	return ret
}

func (c *Catalog) GetTableByName(table string) *TableMetadata {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	if table, ok := c.tableNames[table]; ok {
		return table
	}
	return nil
}

func (c *Catalog) GetTableByOID(oid uint32) *TableMetadata {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	if table, ok := c.tableIds[oid]; ok {
		return table
	}
	return nil
}

// GetTableNames returns the registered table names in sorted order
func (c *Catalog) GetTableNames() []string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	ret := make([]string, 0, len(c.tableNames))
	for name := range c.tableNames {
		ret = append(ret, name)
	}
	sort.Strings(ret)
	return ret
}

/**
 * CreateTable registers the table name backed by the heap file
 * <DataDir>/<name>.dat and returns its metadata. An existing file is opened
 * with its tuples, otherwise an empty one is created. With UseVirtualDisk the
 * file lives in memory only.
 */
func (c *Catalog) CreateTable(name string, schema_ *schema.Schema) (*TableMetadata, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if _, ok := c.tableNames[name]; ok {
		return nil, errors.Wrapf(errors.ErrTableExists, "table %s", name)
	}

	path, err := filepath.Abs(filepath.Join(c.cfg.DataDir, name+HeapFileSuffix))
	if err != nil {
		return nil, errors.Wrapf(err, "resolving path of table %s", name)
	}
	oid := hash.GenHashMurMur([]byte(path))
	if other, ok := c.tableIds[oid]; ok {
		return nil, errors.Wrapf(errors.ErrTableExists, "table %s collides with %s on id %d", name, other.name, oid)
	}

	var dm disk.DiskManager
	if c.cfg.UseVirtualDisk {
		dm = disk.NewVirtualDiskManagerImpl(path)
	} else {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, errors.Wrapf(err, "creating data dir for %s", name)
		}
		if dm, err = disk.NewDiskManagerImpl(path); err != nil {
			return nil, err
		}
	}

	tableMetadata := &TableMetadata{schema_, name, table.NewHeapFile(oid, schema_, dm, c.bpm), oid}
	c.tableIds[oid] = tableMetadata
	c.tableNames[name] = tableMetadata
	common.ShPrintf(common.INFO, "table %s registered as %d at %s\n", name, oid, path)
	return tableMetadata, nil
}

func (c *Catalog) ResolveFile(tableID uint32) (catalog_interface.DbFile, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	if table, ok := c.tableIds[tableID]; ok {
		return table.table, nil
	}
	return nil, errors.Wrapf(errors.ErrUnknownTable, "table id %d", tableID)
}

func (c *Catalog) SchemaOf(tableID uint32) (*schema.Schema, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	if table, ok := c.tableIds[tableID]; ok {
		return table.schema, nil
	}
	return nil, errors.Wrapf(errors.ErrUnknownTable, "table id %d", tableID)
}

// Shutdown closes every heap file. Files are deleted too when removeFiles is set.
func (c *Catalog) Shutdown(removeFiles bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	for _, tableMetadata := range c.tableIds {
		dm := tableMetadata.table.GetDiskManager()
		dm.ShutDown()
		if removeFiles {
			dm.RemoveDBFile()
		}
	}
}
