package executors

import (
	"math"

	"github.com/ryogrid/HeapTxnDB/container/hash"
	"github.com/ryogrid/HeapTxnDB/errors"
	"github.com/ryogrid/HeapTxnDB/execution/plans"
	"github.com/ryogrid/HeapTxnDB/storage/table/schema"
	"github.com/ryogrid/HeapTxnDB/storage/tuple"
	"github.com/ryogrid/HeapTxnDB/types"
)

type AggregateKey struct {
	Group_bys_ []types.Value
}

func (key *AggregateKey) CompareEquals(other *AggregateKey) bool {
	if len(key.Group_bys_) != len(other.Group_bys_) {
		return false
	}
	for i := range key.Group_bys_ {
		if !key.Group_bys_[i].CompareEquals(other.Group_bys_[i]) {
			return false
		}
	}
	return true
}

// AggregateValue holds the running state of every aggregate of one group.
// AVG keeps sum and count and divides at the end.
type AggregateValue struct {
	Aggregates_ []int64
	Counts_     []int64
}

type aggregateEntry struct {
	key *AggregateKey
	val *AggregateValue
}

/**
 * A simplified hash table that has all the necessary functionality for aggregations.
 * Groups keep the order in which they were first seen.
 */
type SimpleAggregationHashTable struct {
	/** murmur3 hash of the group by values to the groups with that hash */
	ht         map[uint32][]*aggregateEntry
	entries    []*aggregateEntry
	agg_types_ []plans.AggregationType
}

func NewSimpleAggregationHashTable(agg_types []plans.AggregationType) *SimpleAggregationHashTable {
	return &SimpleAggregationHashTable{
		ht:         make(map[uint32][]*aggregateEntry),
		entries:    make([]*aggregateEntry, 0),
		agg_types_: agg_types,
	}
}

/** @return the initial aggregrate value for this aggregation executor */
func (aht *SimpleAggregationHashTable) GenerateInitialAggregateValue() *AggregateValue {
	ret := &AggregateValue{make([]int64, len(aht.agg_types_)), make([]int64, len(aht.agg_types_))}
	for i, agg_type := range aht.agg_types_ {
		switch agg_type {
		case plans.MIN_AGGREGATE:
			ret.Aggregates_[i] = math.MaxInt32
		case plans.MAX_AGGREGATE:
			ret.Aggregates_[i] = math.MinInt32
		}
	}
	return ret
}

/** Combines the input into the aggregation result. */
func (aht *SimpleAggregationHashTable) CombineAggregateValues(result *AggregateValue, input []types.Value) {
	for i, agg_type := range aht.agg_types_ {
		result.Counts_[i]++
		switch agg_type {
		case plans.COUNT_AGGREGATE:
			result.Aggregates_[i]++
		case plans.SUM_AGGREGATE, plans.AVG_AGGREGATE:
			result.Aggregates_[i] += int64(input[i].ToInteger())
		case plans.MIN_AGGREGATE:
			if v := int64(input[i].ToInteger()); v < result.Aggregates_[i] {
				result.Aggregates_[i] = v
			}
		case plans.MAX_AGGREGATE:
			if v := int64(input[i].ToInteger()); v > result.Aggregates_[i] {
				result.Aggregates_[i] = v
			}
		}
	}
}

/**
 * Inserts a value into the hash table and then combines it with the current aggregation.
 */
func (aht *SimpleAggregationHashTable) InsertCombine(agg_key *AggregateKey, input []types.Value) {
	hashval := hash.HashValues(agg_key.Group_bys_)
	var entry *aggregateEntry
	for _, cand := range aht.ht[hashval] {
		if cand.key.CompareEquals(agg_key) {
			entry = cand
			break
		}
	}
	if entry == nil {
		entry = &aggregateEntry{agg_key, aht.GenerateInitialAggregateValue()}
		aht.ht[hashval] = append(aht.ht[hashval], entry)
		aht.entries = append(aht.entries, entry)
	}
	aht.CombineAggregateValues(entry.val, input)
}

// Result is the final value of the idx'th aggregate of val
func (aht *SimpleAggregationHashTable) Result(val *AggregateValue, idx int) int32 {
	switch aht.agg_types_[idx] {
	case plans.AVG_AGGREGATE:
		if val.Counts_[idx] == 0 {
			return 0
		}
		return int32(val.Aggregates_[idx] / val.Counts_[idx])
	case plans.MIN_AGGREGATE, plans.MAX_AGGREGATE:
		if val.Counts_[idx] == 0 {
			return 0
		}
	}
	return int32(val.Aggregates_[idx])
}

/**
* AggregationExecutor executes an aggregation operation (e.g. COUNT, SUM, MIN, MAX) on the tuples of a child executor.
 */
type AggregationExecutor struct {
	context *ExecutorContext
	/** The aggregation plan node. */
	plan_ *plans.AggregationPlanNode
	/** The child executor whose tuples we are aggregating. */
	child_ Executor
	/** Simple aggregation hash table. */
	aht_   *SimpleAggregationHashTable
	cursor int
}

func NewAggregationExecutor(exec_ctx *ExecutorContext, plan *plans.AggregationPlanNode, child Executor) *AggregationExecutor {
	return &AggregationExecutor{exec_ctx, plan, child, nil, 0}
}

func (e *AggregationExecutor) GetOutputSchema() *schema.Schema { return e.plan_.OutputSchema() }

// Init drains the child and builds every group
func (e *AggregationExecutor) Init() error {
	aggTypes := e.plan_.GetAggregateTypes()
	if len(aggTypes) != len(e.plan_.GetAggregates()) {
		return errors.Errorf("%d aggregate types for %d aggregates", len(aggTypes), len(e.plan_.GetAggregates()))
	}
	for i, expr := range e.plan_.GetAggregates() {
		if aggTypes[i] != plans.COUNT_AGGREGATE && expr.GetReturnType() != types.Integer {
			return errors.Wrapf(errors.ErrSchemaMismatch, "%v over %v", aggTypes[i], expr.GetReturnType())
		}
	}

	if err := e.child_.Init(); err != nil {
		return err
	}
	e.aht_ = NewSimpleAggregationHashTable(aggTypes)
	e.cursor = 0

	for {
		tuple_, done, err := e.child_.Next()
		if err != nil {
			return err
		}
		if done {
			break
		}
		e.aht_.InsertCombine(e.MakeKey(tuple_), e.MakeVal(tuple_))
	}

	// without grouping an empty input still has one (empty) group
	if len(e.plan_.GetGroupBys()) == 0 && len(e.aht_.entries) == 0 {
		e.aht_.entries = append(e.aht_.entries, &aggregateEntry{&AggregateKey{}, e.aht_.GenerateInitialAggregateValue()})
	}
	return nil
}

func (e *AggregationExecutor) Next() (*tuple.Tuple, Done, error) {
	if e.cursor >= len(e.aht_.entries) {
		return nil, true, nil
	}
	entry := e.aht_.entries[e.cursor]
	e.cursor++

	values := make([]types.Value, 0, e.GetOutputSchema().GetColumnCount())
	values = append(values, entry.key.Group_bys_...)
	for i := range e.plan_.GetAggregateTypes() {
		values = append(values, types.NewInteger(e.aht_.Result(entry.val, i)))
	}
	return tuple.NewTupleFromSchema(values, e.GetOutputSchema()), false, nil
}

func (e *AggregationExecutor) Close() {
	e.child_.Close()
}

/** @return the tuple as an AggregateKey */
func (e *AggregationExecutor) MakeKey(tuple_ *tuple.Tuple) *AggregateKey {
	keys := make([]types.Value, 0, len(e.plan_.GetGroupBys()))
	for _, expr := range e.plan_.GetGroupBys() {
		keys = append(keys, expr.Evaluate(tuple_, e.child_.GetOutputSchema()))
	}
	return &AggregateKey{Group_bys_: keys}
}

/** @return the aggregated input of the tuple */
func (e *AggregationExecutor) MakeVal(tuple_ *tuple.Tuple) []types.Value {
	vals := make([]types.Value, 0, len(e.plan_.GetAggregates()))
	for _, expr := range e.plan_.GetAggregates() {
		vals = append(vals, expr.Evaluate(tuple_, e.child_.GetOutputSchema()))
	}
	return vals
}
