package plans

import (
	"github.com/ryogrid/HeapTxnDB/execution/expression"
	"github.com/ryogrid/HeapTxnDB/storage/table/schema"
)

// SeqScanPlanNode reads every tuple of a table. predicate may be nil. When
// schema_ is nil the tuples come out as stored, otherwise they are projected
// onto the columns of schema_ by name.
type SeqScanPlanNode struct {
	*AbstractPlanNode
	predicate expression.Expression
	tableOID  uint32
}

func NewSeqScanPlanNode(schema_ *schema.Schema, predicate expression.Expression, tableOID uint32) Plan {
	return &SeqScanPlanNode{&AbstractPlanNode{schema_, nil}, predicate, tableOID}
}

func (p *SeqScanPlanNode) GetPredicate() expression.Expression {
	return p.predicate
}

func (p *SeqScanPlanNode) GetTableOID() uint32 {
	return p.tableOID
}

func (p *SeqScanPlanNode) GetType() PlanType {
	return SeqScan
}
