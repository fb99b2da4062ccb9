// this code is from https://github.com/brunocalza/go-bustub
// there is license and copyright notice in licenses/go-bustub dir

package types

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

type Value struct {
	integer   *int32
	boolean   *bool
	varchar   *string
	valueType TypeID
}

func NewInteger(value int32) Value {
	return Value{&value, nil, nil, Integer}
}

func NewBoolean(value bool) Value {
	return Value{nil, &value, nil, Boolean}
}

// NewVarchar truncates value to the fixed column width
func NewVarchar(value string) Value {
	if uint32(len(value)) > Varchar.Size() {
		value = value[:Varchar.Size()]
	}
	return Value{nil, nil, &value, Varchar}
}

func (v Value) ValueType() TypeID {
	return v.valueType
}

func (v Value) ToInteger() int32 {
	return *v.integer
}

func (v Value) ToBoolean() bool {
	return *v.boolean
}

func (v Value) ToVarchar() string {
	return *v.varchar
}

func (v Value) CompareEquals(right Value) bool {
	if v.valueType != right.valueType {
		return false
	}
	switch v.valueType {
	case Integer:
		return *v.integer == *right.integer
	case Boolean:
		return *v.boolean == *right.boolean
	case Varchar:
		return *v.varchar == *right.varchar
	}
	return false
}

func (v Value) CompareNotEquals(right Value) bool {
	return !v.CompareEquals(right)
}

func (v Value) CompareLessThan(right Value) bool {
	switch v.valueType {
	case Integer:
		return *v.integer < *right.integer
	case Varchar:
		return *v.varchar < *right.varchar
	case Boolean:
		return !*v.boolean && *right.boolean
	}
	return false
}

// Serialize writes the value in its fixed width (little endian, varchar zero padded)
func (v Value) Serialize() []byte {
	buf := new(bytes.Buffer)
	switch v.valueType {
	case Integer:
		binary.Write(buf, binary.LittleEndian, *v.integer)
	case Boolean:
		binary.Write(buf, binary.LittleEndian, *v.boolean)
	case Varchar:
		padded := make([]byte, Varchar.Size())
		copy(padded, *v.varchar)
		buf.Write(padded)
	}
	return buf.Bytes()
}

// NewValueFromBytes is the inverse of Serialize
func NewValueFromBytes(data []byte, valueType TypeID) Value {
	switch valueType {
	case Integer:
		var ret int32
		binary.Read(bytes.NewBuffer(data), binary.LittleEndian, &ret)
		return NewInteger(ret)
	case Boolean:
		var ret bool
		binary.Read(bytes.NewBuffer(data), binary.LittleEndian, &ret)
		return NewBoolean(ret)
	case Varchar:
		raw := data[:Varchar.Size()]
		if idx := bytes.IndexByte(raw, 0); idx >= 0 {
			raw = raw[:idx]
		}
		return NewVarchar(string(raw))
	}
	panic(fmt.Sprintf("not supported type: %v", valueType))
}

func (v Value) String() string {
	switch v.valueType {
	case Integer:
		return fmt.Sprintf("%d", *v.integer)
	case Boolean:
		return fmt.Sprintf("%t", *v.boolean)
	case Varchar:
		return *v.varchar
	}
	return "<invalid>"
}
