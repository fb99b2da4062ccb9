package hash

import (
	"encoding/binary"

	"github.com/ryogrid/HeapTxnDB/types"
	"github.com/spaolacci/murmur3"
)

// GenHashMurMur returns the lower 32 bits of the 128 bit murmur3 hash of key.
func GenHashMurMur(key []byte) uint32 {
	h := murmur3.New128()
	h.Write(key)
	hash := h.Sum(nil)
	return binary.LittleEndian.Uint32(hash)
}

/** @return the hash of the value */
func HashValue(val *types.Value) uint32 {
	return GenHashMurMur(val.Serialize())
}

// HashValues hashes the concatenated serialized form of vals
func HashValues(vals []types.Value) uint32 {
	input := make([]byte, 0)
	for _, val := range vals {
		input = append(input, byte(val.ValueType()))
		input = append(input, val.Serialize()...)
	}
	return GenHashMurMur(input)
}
