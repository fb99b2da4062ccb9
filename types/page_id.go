// this code is from https://github.com/brunocalza/go-bustub
// there is license and copyright notice in licenses/go-bustub dir

package types

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// PageID identifies a page by the table it belongs to and its position in
// that table's heap file. It is a value type usable as a map key.
type PageID struct {
	TableID uint32
	PageNo  int32
}

func NewPageID(tableID uint32, pageNo int32) PageID {
	return PageID{TableID: tableID, PageNo: pageNo}
}

// IsValid checks if id is valid
func (id PageID) IsValid() bool {
	return id.PageNo >= 0
}

func (id PageID) String() string {
	return fmt.Sprintf("(%d,%d)", id.TableID, id.PageNo)
}

// Serialize casts it to []byte
func (id PageID) Serialize() []byte {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, id.TableID)
	binary.Write(buf, binary.LittleEndian, id.PageNo)
	return buf.Bytes()
}

// NewPageIDFromBytes creates a page id from []byte
func NewPageIDFromBytes(data []byte) (ret PageID) {
	buf := bytes.NewBuffer(data)
	binary.Read(buf, binary.LittleEndian, &ret.TableID)
	binary.Read(buf, binary.LittleEndian, &ret.PageNo)
	return ret
}
