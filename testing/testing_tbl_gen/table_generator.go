package testing_tbl_gen

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/ryogrid/HeapTxnDB/catalog"
	"github.com/ryogrid/HeapTxnDB/storage/access"
	"github.com/ryogrid/HeapTxnDB/storage/buffer"
	"github.com/ryogrid/HeapTxnDB/storage/table/column"
	"github.com/ryogrid/HeapTxnDB/storage/table/schema"
	"github.com/ryogrid/HeapTxnDB/storage/tuple"
	"github.com/ryogrid/HeapTxnDB/types"
)

type ColumnInsertMeta struct {
	/**
	 * Name of the column
	 */
	Name_ string
	/**
	 * Type of the column
	 */
	Type_ types.TypeID
	/**
	 * Distribution of values
	 */
	Dist_ int32
	/**
	 * min value of the column
	 */
	Min_ int32
	/**
	 * max value of the column
	 */
	Max_ int32
	/**
	 * Counter to generate serial data
	 */
	Serial_counter_ int32
}

type TableInsertMeta struct {
	/**
	 * Name of the table
	 */
	Name_ string
	/**
	 * Number of rows
	 */
	Num_rows_ uint32
	/**
	 * Columns
	 */
	Col_meta_ []*ColumnInsertMeta
}

const DistSerial int32 = 0
const DistUniform int32 = 1

const TEST1_SIZE uint32 = 1000
const TEST2_SIZE uint32 = 100

func GenNumericValues(col_meta *ColumnInsertMeta, count uint32, rnd *rand.Rand) []types.Value {
	values := make([]types.Value, 0, count)
	if col_meta.Dist_ == DistSerial {
		for i := 0; i < int(count); i++ {
			values = append(values, types.NewInteger(col_meta.Serial_counter_))
			col_meta.Serial_counter_ += 1
		}
		return values
	}

	for i := 0; i < int(count); i++ {
		values = append(values, types.NewInteger(col_meta.Min_+rnd.Int31n(col_meta.Max_-col_meta.Min_+1)))
	}
	return values
}

func GenVarcharValues(col_meta *ColumnInsertMeta, count uint32, rnd *rand.Rand) []types.Value {
	values := make([]types.Value, 0, count)
	for _, num := range GenNumericValues(col_meta, count, rnd) {
		values = append(values, types.NewVarchar(fmt.Sprintf("%s_%d", col_meta.Name_, num.ToInteger())))
	}
	return values
}

func MakeValues(col_meta *ColumnInsertMeta, count uint32, rnd *rand.Rand) []types.Value {
	switch col_meta.Type_ {
	case types.Integer:
		return GenNumericValues(col_meta, count, rnd)
	case types.Varchar:
		return GenVarcharValues(col_meta, count, rnd)
	default:
		panic(fmt.Sprintf("no generator for %v", col_meta.Type_))
	}
}

// MakeSchema builds the table schema described by table_meta
func MakeSchema(table_meta *TableInsertMeta) *schema.Schema {
	cols := make([]*column.Column, 0, len(table_meta.Col_meta_))
	for _, col_meta := range table_meta.Col_meta_ {
		cols = append(cols, column.NewColumn(col_meta.Name_, col_meta.Type_))
	}
	return schema.NewSchema(cols)
}

// FillTable inserts table_meta.Num_rows_ generated rows through the buffer pool
// as transaction txn. The caller commits.
func FillTable(ctx context.Context, bpm *buffer.BufferPool, info *catalog.TableMetadata, table_meta *TableInsertMeta, txn *access.Transaction, seed int64) error {
	rnd := rand.New(rand.NewSource(seed))
	var num_inserted uint32 = 0
	var batch_size uint32 = 128
	for num_inserted < table_meta.Num_rows_ {
		num_values := min(batch_size, table_meta.Num_rows_-num_inserted)
		var values [][]types.Value
		for _, col_meta := range table_meta.Col_meta_ {
			values = append(values, MakeValues(col_meta, num_values, rnd))
		}

		for i := 0; i < int(num_values); i++ {
			var entry []types.Value
			for idx := range table_meta.Col_meta_ {
				entry = append(entry, values[idx][i])
			}
			tuple_ := tuple.NewTupleFromSchema(entry, info.Schema())
			if err := bpm.InsertTuple(ctx, txn.GetTransactionId(), info.OID(), tuple_); err != nil {
				return err
			}
			num_inserted++
		}
	}
	return nil
}

/**
 * GenerateTestTables creates test_1 with TEST1_SIZE rows of
 * colA (serial from 0), colB (0..9), colC (0..9999) and label (label_<0..99>)
 * and test_2 with TEST2_SIZE rows of col1 (serial from 0), col2 (0..9),
 * col3 (0..1024) and col4 (0..2048).
 */
func GenerateTestTables(ctx context.Context, c *catalog.Catalog, bpm *buffer.BufferPool,
	txn *access.Transaction) (*catalog.TableMetadata, *catalog.TableMetadata, error) {
	tableMeta1 := &TableInsertMeta{"test_1",
		TEST1_SIZE,
		[]*ColumnInsertMeta{
			{"colA", types.Integer, DistSerial, 0, 0, 0},
			{"colB", types.Integer, DistUniform, 0, 9, 0},
			{"colC", types.Integer, DistUniform, 0, 9999, 0},
			{"label", types.Varchar, DistUniform, 0, 99, 0},
		}}
	tableMeta2 := &TableInsertMeta{"test_2",
		TEST2_SIZE,
		[]*ColumnInsertMeta{
			{"col1", types.Integer, DistSerial, 0, 0, 0},
			{"col2", types.Integer, DistUniform, 0, 9, 0},
			{"col3", types.Integer, DistUniform, 0, 1024, 0},
			{"col4", types.Integer, DistUniform, 0, 2048, 0},
		}}

	ret := make([]*catalog.TableMetadata, 0, 2)
	for i, table_meta := range []*TableInsertMeta{tableMeta1, tableMeta2} {
		info, err := c.CreateTable(table_meta.Name_, MakeSchema(table_meta))
		if err != nil {
			return nil, nil, err
		}
		if err := FillTable(ctx, bpm, info, table_meta, txn, int64(i)); err != nil {
			return nil, nil, err
		}
		ret = append(ret, info)
	}
	return ret[0], ret[1], nil
}
