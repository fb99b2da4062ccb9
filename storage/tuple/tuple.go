// this code is from https://github.com/brunocalza/go-bustub
// there is license and copyright notice in licenses/go-bustub dir

package tuple

import (
	"fmt"
	"strings"

	"github.com/ryogrid/HeapTxnDB/common"
	"github.com/ryogrid/HeapTxnDB/storage/page"
	"github.com/ryogrid/HeapTxnDB/storage/table/schema"
	"github.com/ryogrid/HeapTxnDB/types"
)

/**
 * Tuple format:
 * -------------------------------------------------
 * | COLUMN 0 | COLUMN 1 | ... | COLUMN n-1        |
 * -------------------------------------------------
 * every column has the fixed width of its type, so the tuple size is
 * always Schema.Length()
 */
type Tuple struct {
	rid    *page.RID
	schema *schema.Schema
	data   []byte
}

// NewTupleFromSchema creates a new tuple based on input value
func NewTupleFromSchema(values []types.Value, schema_ *schema.Schema) *Tuple {
	common.SH_Assert(uint32(len(values)) == schema_.GetColumnCount(),
		fmt.Sprintf("%d values for %d columns", len(values), schema_.GetColumnCount()))

	tuple_ := &Tuple{schema: schema_}
	tuple_.data = make([]byte, schema_.Length())

	// serialize each attribute base on the input value
	for i := uint32(0); i < schema_.GetColumnCount(); i++ {
		col := schema_.GetColumn(i)
		common.SH_Assert(values[i].ValueType() == col.GetType(),
			fmt.Sprintf("column %s expects %v but got %v", col.GetColumnName(), col.GetType(), values[i].ValueType()))
		tuple_.Copy(col.GetOffset(), values[i].Serialize())
	}
	return tuple_
}

// NewTupleFromBytes builds a tuple over a copy of a slot image read from a page.
func NewTupleFromBytes(rid *page.RID, schema_ *schema.Schema, data []byte) *Tuple {
	buf := make([]byte, schema_.Length())
	copy(buf, data)
	return &Tuple{rid, schema_, buf}
}

func (t *Tuple) GetValue(schema *schema.Schema, colIndex uint32) types.Value {
	column := schema.GetColumn(colIndex)
	offset := column.GetOffset()
	return types.NewValueFromBytes(t.data[offset:offset+column.FixedLength()], column.GetType())
}

func (t *Tuple) Size() uint32 {
	return uint32(len(t.data))
}

func (t *Tuple) Data() []byte {
	return t.data
}

func (t *Tuple) GetSchema() *schema.Schema {
	return t.schema
}

func (t *Tuple) GetRID() *page.RID {
	return t.rid
}

func (t *Tuple) SetRID(rid *page.RID) {
	t.rid = rid
}

func (t *Tuple) Copy(offset uint32, data []byte) {
	copy(t.data[offset:], data)
}

// Equals compares the stored values, ignoring location.
func (t *Tuple) Equals(other *Tuple) bool {
	if other == nil || !t.schema.Equals(other.schema) || len(t.data) != len(other.data) {
		return false
	}
	for i := uint32(0); i < t.schema.GetColumnCount(); i++ {
		if !t.GetValue(t.schema, i).CompareEquals(other.GetValue(other.schema, i)) {
			return false
		}
	}
	return true
}

func (t *Tuple) String() string {
	vals := make([]string, 0, t.schema.GetColumnCount())
	for i := uint32(0); i < t.schema.GetColumnCount(); i++ {
		vals = append(vals, t.GetValue(t.schema, i).String())
	}
	return "(" + strings.Join(vals, ", ") + ")"
}
