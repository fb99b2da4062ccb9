// this code is from https://github.com/brunocalza/go-bustub
// there is license and copyright notice in licenses/go-bustub dir

package schema

import (
	"math"
	"strings"

	"github.com/ryogrid/HeapTxnDB/storage/table/column"
)

type Schema struct {
	length  uint32           // Fixed-length column size, i.e. the number of bytes used by one tuple
	columns []*column.Column // All the columns in the schema
}

func NewSchema(columns []*column.Column) *Schema {
	schema := &Schema{}

	var currentOffset uint32
	currentOffset = 0
	for i := uint32(0); i < uint32(len(columns)); i++ {
		column := columns[i]
		column.SetOffset(currentOffset)
		currentOffset += column.FixedLength()

		schema.columns = append(schema.columns, column)
	}
	schema.length = currentOffset
	return schema
}

func (s *Schema) GetColumn(colIndex uint32) *column.Column {
	return s.columns[colIndex]
}

func (s *Schema) GetColumnCount() uint32 {
	return uint32(len(s.columns))
}

func (s *Schema) Length() uint32 {
	return s.length
}

func (s *Schema) GetColIndex(columnName string) uint32 {
	for i := uint32(0); i < s.GetColumnCount(); i++ {
		if s.columns[i].GetColumnName() == columnName {
			return i
		}
	}

	return math.MaxUint32
}

func (s *Schema) GetColumns() []*column.Column {
	return s.columns
}

// Equals compares column types in order. Column names do not take part.
func (s *Schema) Equals(other *Schema) bool {
	if s == other {
		return true
	}
	if other == nil || s.GetColumnCount() != other.GetColumnCount() {
		return false
	}
	for i, col := range s.columns {
		if col.GetType() != other.columns[i].GetType() {
			return false
		}
	}
	return true
}

func (s *Schema) String() string {
	var sb strings.Builder
	sb.WriteString("(")
	for i, col := range s.columns {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(col.GetColumnName())
		sb.WriteString(" ")
		sb.WriteString(col.GetType().String())
	}
	sb.WriteString(")")
	return sb.String()
}
