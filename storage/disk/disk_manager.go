package disk

// DiskManager is responsible for interacting with disk.
//
// Pages are addressed by their page number inside one file. The page size is
// taken from the length of the buffer handed in, so page pageNo lives at
// byte offset pageNo*len(pageData).
type DiskManager interface {
	ReadPage(pageNo int32, pageData []byte) error
	WritePage(pageNo int32, pageData []byte) error
	GetNumWrites() uint64
	ShutDown()
	// Size is the length of the file in bytes
	Size() int64
	GetFileName() string
	RemoveDBFile()
}
