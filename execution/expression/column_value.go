// this code is from https://github.com/brunocalza/go-bustub
// there is license and copyright notice in licenses/go-bustub dir

package expression

import (
	"github.com/ryogrid/HeapTxnDB/storage/table/schema"
	"github.com/ryogrid/HeapTxnDB/storage/tuple"
	"github.com/ryogrid/HeapTxnDB/types"
)

/**
 * ColumnValue reads one column of the tuple it is evaluated on.
 */
type ColumnValue struct {
	colIndex uint32 // Column index refers to the index within the schema of the tuple, e.g. schema {A,B,C} has indexes {0,1,2}
	colType  types.TypeID
}

func NewColumnValue(colIndex uint32, colType types.TypeID) *ColumnValue {
	return &ColumnValue{colIndex, colType}
}

// NewColumnValueByName resolves name against schema_. It returns nil for an unknown column.
func NewColumnValueByName(schema_ *schema.Schema, name string) *ColumnValue {
	colIndex := schema_.GetColIndex(name)
	if colIndex >= schema_.GetColumnCount() {
		return nil
	}
	return &ColumnValue{colIndex, schema_.GetColumn(colIndex).GetType()}
}

func (c *ColumnValue) Evaluate(tuple *tuple.Tuple, schema *schema.Schema) types.Value {
	return tuple.GetValue(schema, c.colIndex)
}

func (c *ColumnValue) GetColIndex() uint32 { return c.colIndex }

func (c *ColumnValue) GetReturnType() types.TypeID { return c.colType }
