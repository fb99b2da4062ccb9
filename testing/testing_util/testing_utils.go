// this code is from https://github.com/brunocalza/go-bustub
// there is license and copyright notice in licenses/go-bustub dir

package testing_util

import (
	"fmt"

	"github.com/ryogrid/HeapTxnDB/types"
)

func GetValue(data interface{}) (value types.Value) {
	switch v := data.(type) {
	case int:
		value = types.NewInteger(int32(v))
	case int32:
		value = types.NewInteger(v)
	case string:
		value = types.NewVarchar(v)
	case bool:
		value = types.NewBoolean(v)
	case types.Value:
		return v
	case *types.Value:
		return *v
	default:
		panic(fmt.Sprintf("no value type for %T", data))
	}
	return
}

func GetValueType(data interface{}) (value types.TypeID) {
	switch v := data.(type) {
	case int, int32:
		return types.Integer
	case string:
		return types.Varchar
	case bool:
		return types.Boolean
	case types.Value:
		return v.ValueType()
	case *types.Value:
		return v.ValueType()
	}
	panic(fmt.Sprintf("no value type for %T", data))
}

// Row converts go values into one row for an insert plan
func Row(data ...interface{}) []types.Value {
	ret := make([]types.Value, 0, len(data))
	for _, d := range data {
		ret = append(ret, GetValue(d))
	}
	return ret
}
