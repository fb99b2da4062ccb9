// this code is from https://github.com/brunocalza/go-bustub
// there is license and copyright notice in licenses/go-bustub dir

package types

import (
	"bytes"
	"encoding/binary"
	"sync/atomic"
)

// TxnID is the type of the transaction identifier
type TxnID int32

// InvalidTxnID marks a clean page (no dirtier) or an unset holder
const InvalidTxnID = TxnID(-1)

var nextTxnID int32 = 0

// NewTxnID returns a process wide unique transaction id
func NewTxnID() TxnID {
	return TxnID(atomic.AddInt32(&nextTxnID, 1))
}

func (id TxnID) IsValid() bool {
	return id != InvalidTxnID
}

// Serialize casts it to []byte
func (id TxnID) Serialize() []byte {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, id)
	return buf.Bytes()
}

// NewTxnIDFromBytes creates a txn id from []byte
func NewTxnIDFromBytes(data []byte) (ret TxnID) {
	binary.Read(bytes.NewBuffer(data), binary.LittleEndian, &ret)
	return ret
}
