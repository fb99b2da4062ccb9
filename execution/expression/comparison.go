// this code is from https://github.com/brunocalza/go-bustub
// there is license and copyright notice in licenses/go-bustub dir

package expression

import (
	"github.com/ryogrid/HeapTxnDB/storage/table/schema"
	"github.com/ryogrid/HeapTxnDB/storage/tuple"
	"github.com/ryogrid/HeapTxnDB/types"
)

type ComparisonType int

/** ComparisonType represents the type of comparison that we want to perform. */
const (
	Equal ComparisonType = iota
	NotEqual
	LessThan
	LessThanOrEqual
	GreaterThan
	GreaterThanOrEqual
)

/**
 * Comparison represents two expressions being compared. It evaluates to a Boolean.
 */
type Comparison struct {
	comparisonType ComparisonType
	left           Expression
	right          Expression
}

func NewComparison(left Expression, right Expression, comparisonType ComparisonType) *Comparison {
	return &Comparison{comparisonType, left, right}
}

func (c *Comparison) Evaluate(tuple *tuple.Tuple, schema *schema.Schema) types.Value {
	lhs := c.left.Evaluate(tuple, schema)
	rhs := c.right.Evaluate(tuple, schema)
	return types.NewBoolean(c.performComparison(lhs, rhs))
}

func (c *Comparison) performComparison(lhs types.Value, rhs types.Value) bool {
	if lhs.ValueType() != rhs.ValueType() {
		return c.comparisonType == NotEqual
	}
	switch c.comparisonType {
	case Equal:
		return lhs.CompareEquals(rhs)
	case NotEqual:
		return lhs.CompareNotEquals(rhs)
	case LessThan:
		return lhs.CompareLessThan(rhs)
	case LessThanOrEqual:
		return !rhs.CompareLessThan(lhs)
	case GreaterThan:
		return rhs.CompareLessThan(lhs)
	case GreaterThanOrEqual:
		return !lhs.CompareLessThan(rhs)
	}
	return false
}

func (c *Comparison) GetComparisonType() ComparisonType {
	return c.comparisonType
}

func (c *Comparison) GetReturnType() types.TypeID { return types.Boolean }
