package disk

import (
	"github.com/dsnet/golib/memfile"
	"github.com/ryogrid/HeapTxnDB/errors"
	"github.com/sasha-s/go-deadlock"
)

// VirtualDiskManagerImpl keeps the heap file in memory. It behaves like
// DiskManagerImpl and is used by tests and the virtual_disk config switch.
type VirtualDiskManagerImpl struct {
	db          *memfile.File
	fileName    string
	numWrites   uint64
	size        int64
	dbFileMutex deadlock.Mutex
}

func NewVirtualDiskManagerImpl(dbFilename string) DiskManager {
	file := memfile.New(make([]byte, 0))
	return &VirtualDiskManagerImpl{db: file, fileName: dbFilename}
}

// ShutDown closes of the database file
func (d *VirtualDiskManagerImpl) ShutDown() {
	// do nothing
}

// Write a page to the database file
func (d *VirtualDiskManagerImpl) WritePage(pageNo int32, pageData []byte) error {
	d.dbFileMutex.Lock()
	defer d.dbFileMutex.Unlock()

	pageSize := int64(len(pageData))
	offset := int64(pageNo) * pageSize

	if offset > d.size {
		if _, err := d.db.WriteAt(make([]byte, offset-d.size), d.size); err != nil {
			return errors.Wrap(err, "extending virtual file failed")
		}
	}

	if _, err := d.db.WriteAt(pageData, offset); err != nil {
		return errors.Wrapf(err, "writing page %d failed", pageNo)
	}

	if offset+pageSize > d.size {
		d.size = offset + pageSize
	}
	d.numWrites++
	return nil
}

// Read a page from the database file
func (d *VirtualDiskManagerImpl) ReadPage(pageNo int32, pageData []byte) error {
	d.dbFileMutex.Lock()
	defer d.dbFileMutex.Unlock()

	offset := int64(pageNo) * int64(len(pageData))
	if pageNo < 0 || offset >= d.size {
		return errors.Errorf("I/O error past end of file: page %d", pageNo)
	}

	for i := range pageData {
		pageData[i] = 0
	}
	// the tail page may be short, ReadAt reports io.EOF for it
	n, err := d.db.ReadAt(pageData, offset)
	if n == 0 && err != nil {
		return errors.Wrapf(err, "reading page %d failed", pageNo)
	}
	return nil
}

// GetNumWrites returns the number of disk writes
func (d *VirtualDiskManagerImpl) GetNumWrites() uint64 {
	d.dbFileMutex.Lock()
	defer d.dbFileMutex.Unlock()
	return d.numWrites
}

// Size returns the size of the file in disk
func (d *VirtualDiskManagerImpl) Size() int64 {
	d.dbFileMutex.Lock()
	defer d.dbFileMutex.Unlock()
	return d.size
}

func (d *VirtualDiskManagerImpl) GetFileName() string {
	return d.fileName
}

// ATTENTION: this method can be call after calling of Shutdown method
func (d *VirtualDiskManagerImpl) RemoveDBFile() {
	// do nothing
}
