package plans

import (
	"fmt"

	"github.com/ryogrid/HeapTxnDB/execution/expression"
	"github.com/ryogrid/HeapTxnDB/storage/table/column"
	"github.com/ryogrid/HeapTxnDB/storage/table/schema"
	"github.com/ryogrid/HeapTxnDB/types"
)

/** AggregationType enumerates all the possible aggregation functions in our system. */
type AggregationType int32

const (
	COUNT_AGGREGATE AggregationType = iota
	SUM_AGGREGATE
	MIN_AGGREGATE
	MAX_AGGREGATE
	AVG_AGGREGATE
)

func (t AggregationType) String() string {
	switch t {
	case COUNT_AGGREGATE:
		return "count"
	case SUM_AGGREGATE:
		return "sum"
	case MIN_AGGREGATE:
		return "min"
	case MAX_AGGREGATE:
		return "max"
	case AVG_AGGREGATE:
		return "avg"
	}
	return fmt.Sprintf("agg(%d)", int32(t))
}

/**
 * AggregationPlanNode computes COUNT, SUM, MIN, MAX and AVG over the tuples
 * of its only child, optionally grouped. Every aggregate is an Integer.
 * The output has one column per group by expression followed by one column
 * per aggregate. Without group bys exactly one row is produced.
 */
type AggregationPlanNode struct {
	*AbstractPlanNode
	groupBys   []expression.Expression
	aggregates []expression.Expression
	aggTypes   []AggregationType
}

func NewAggregationPlanNode(child Plan, groupBys []expression.Expression, aggregates []expression.Expression, aggTypes []AggregationType) Plan {
	columns := make([]*column.Column, 0, len(groupBys)+len(aggregates))
	for i, expr := range groupBys {
		columns = append(columns, column.NewColumn(fmt.Sprintf("group_%d", i), expr.GetReturnType()))
	}
	for i, aggType := range aggTypes {
		columns = append(columns, column.NewColumn(fmt.Sprintf("%v_%d", aggType, i), types.Integer))
	}
	return &AggregationPlanNode{&AbstractPlanNode{schema.NewSchema(columns), []Plan{child}}, groupBys, aggregates, aggTypes}
}

func (p *AggregationPlanNode) GetGroupBys() []expression.Expression {
	return p.groupBys
}

func (p *AggregationPlanNode) GetAggregates() []expression.Expression {
	return p.aggregates
}

func (p *AggregationPlanNode) GetAggregateTypes() []AggregationType {
	return p.aggTypes
}

func (p *AggregationPlanNode) GetType() PlanType {
	return Aggregation
}
