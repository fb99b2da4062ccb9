package plans

import (
	"github.com/ryogrid/HeapTxnDB/storage/table/column"
	"github.com/ryogrid/HeapTxnDB/storage/table/schema"
	"github.com/ryogrid/HeapTxnDB/types"
)

// CountSchema is the output of Insert and Delete: one row holding the number
// of affected tuples.
func CountSchema() *schema.Schema {
	return schema.NewSchema([]*column.Column{column.NewColumn("count", types.Integer)})
}

/**
 * InsertPlanNode identifies a table that should be inserted into.
 * The values to be inserted are either embedded into the InsertPlanNode itself, i.e. a "raw insert",
 * or will come from the child of the InsertPlanNode. InsertPlanNode has at most one child.
 */
type InsertPlanNode struct {
	*AbstractPlanNode
	rawValues [][]types.Value
	tableOID  uint32
}

func NewInsertPlanNode(rawValues [][]types.Value, oid uint32) Plan {
	return &InsertPlanNode{&AbstractPlanNode{CountSchema(), nil}, rawValues, oid}
}

// NewInsertFromChildPlanNode inserts every tuple child produces
func NewInsertFromChildPlanNode(child Plan, oid uint32) Plan {
	return &InsertPlanNode{&AbstractPlanNode{CountSchema(), []Plan{child}}, nil, oid}
}

func (p *InsertPlanNode) GetTableOID() uint32 {
	return p.tableOID
}

func (p *InsertPlanNode) GetRawValues() [][]types.Value {
	return p.rawValues
}

func (p *InsertPlanNode) IsRawInsert() bool {
	return len(p.children) == 0
}

func (p *InsertPlanNode) GetType() PlanType {
	return Insert
}
