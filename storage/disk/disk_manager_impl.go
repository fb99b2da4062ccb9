// this code is from https://github.com/brunocalza/go-bustub
// there is license and copyright notice in licenses/go-bustub dir

package disk

import (
	"io"
	"os"

	"github.com/ryogrid/HeapTxnDB/common"
	"github.com/ryogrid/HeapTxnDB/errors"
	"github.com/sasha-s/go-deadlock"
)

// DiskManagerImpl is the disk implementation of DiskManager
type DiskManagerImpl struct {
	db        *os.File
	fileName  string
	numWrites uint64
	size      int64
	// guards the handle and size, not the page contents
	dbFileMutex deadlock.Mutex
}

// NewDiskManagerImpl returns a DiskManager instance
func NewDiskManagerImpl(dbFilename string) (DiskManager, error) {
	file, err := os.OpenFile(dbFilename, os.O_RDWR|os.O_CREATE, 0666)
	if err != nil {
		return nil, errors.Wrapf(err, "can't open db file %s", dbFilename)
	}

	fileInfo, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, errors.Wrapf(err, "file info error %s", dbFilename)
	}

	return &DiskManagerImpl{db: file, fileName: dbFilename, size: fileInfo.Size()}, nil
}

// ShutDown closes of the database file
func (d *DiskManagerImpl) ShutDown() {
	d.dbFileMutex.Lock()
	defer d.dbFileMutex.Unlock()
	d.db.Close()
}

// Write a page to the database file
func (d *DiskManagerImpl) WritePage(pageNo int32, pageData []byte) error {
	d.dbFileMutex.Lock()
	defer d.dbFileMutex.Unlock()

	pageSize := int64(len(pageData))
	offset := int64(pageNo) * pageSize

	// fill the gap so that skipped pages read back as empty pages
	if offset > d.size {
		if _, err := d.db.WriteAt(make([]byte, offset-d.size), d.size); err != nil {
			return errors.Wrapf(err, "I/O error while extending %s", d.fileName)
		}
	}

	bytesWritten, err := d.db.WriteAt(pageData, offset)
	if err != nil {
		return errors.Wrapf(err, "I/O error while writing page %d", pageNo)
	}

	if int64(bytesWritten) != pageSize {
		return errors.Errorf("bytes written not equals page size: %d", bytesWritten)
	}

	if offset+pageSize > d.size {
		d.size = offset + pageSize
	}
	d.numWrites++

	if err := d.db.Sync(); err != nil {
		return errors.Wrap(err, "sync failed")
	}
	return nil
}

// Read a page from the database file
func (d *DiskManagerImpl) ReadPage(pageNo int32, pageData []byte) error {
	d.dbFileMutex.Lock()
	defer d.dbFileMutex.Unlock()

	offset := int64(pageNo) * int64(len(pageData))
	if pageNo < 0 || offset >= d.size {
		return errors.Errorf("I/O error past end of file: page %d", pageNo)
	}

	bytesRead, err := d.db.ReadAt(pageData, offset)
	if err != nil && err != io.EOF {
		return errors.Wrapf(err, "I/O error while reading page %d", pageNo)
	}

	// a short tail page reads back zero padded
	if bytesRead < len(pageData) {
		common.ShPrintf(common.DEBUG_INFO, "short read of page %d: %d bytes\n", pageNo, bytesRead)
		for i := bytesRead; i < len(pageData); i++ {
			pageData[i] = 0
		}
	}
	return nil
}

// GetNumWrites returns the number of disk writes
func (d *DiskManagerImpl) GetNumWrites() uint64 {
	d.dbFileMutex.Lock()
	defer d.dbFileMutex.Unlock()
	return d.numWrites
}

// Size returns the size of the file in disk
func (d *DiskManagerImpl) Size() int64 {
	d.dbFileMutex.Lock()
	defer d.dbFileMutex.Unlock()
	return d.size
}

func (d *DiskManagerImpl) GetFileName() string {
	return d.fileName
}

// ATTENTION: this method can be call after calling of Shutdown method
func (d *DiskManagerImpl) RemoveDBFile() {
	os.Remove(d.fileName)
}
