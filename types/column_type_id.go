package types

import "github.com/ryogrid/HeapTxnDB/common"

type TypeID int

const (
	Invalid TypeID = iota
	Boolean
	Integer
	Varchar
)

// Size is the fixed on-page width of a column of this type
func (t TypeID) Size() uint32 {
	switch t {
	case Boolean:
		return 1
	case Integer:
		return 4
	case Varchar:
		return common.VarcharLength
	}
	return 0
}

func (t TypeID) String() string {
	switch t {
	case Boolean:
		return "BOOLEAN"
	case Integer:
		return "INTEGER"
	case Varchar:
		return "VARCHAR"
	}
	return "INVALID"
}
