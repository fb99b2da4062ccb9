package hash

import (
	"testing"

	testingpkg "github.com/ryogrid/HeapTxnDB/testing/testing_assert"
	"github.com/ryogrid/HeapTxnDB/types"
)

func TestHashStability(t *testing.T) {
	a := types.NewVarchar("/tmp/data/accounts.dat")
	b := types.NewVarchar("/tmp/data/accounts.dat")
	c := types.NewVarchar("/tmp/data/orders.dat")

	testingpkg.Equals(t, HashValue(&a), HashValue(&b))
	testingpkg.SimpleAssert(t, HashValue(&a) != HashValue(&c))
	testingpkg.Equals(t, GenHashMurMur([]byte("x")), GenHashMurMur([]byte("x")))

	// the type takes part in the hash
	testingpkg.SimpleAssert(t, HashValues([]types.Value{types.NewInteger(1)}) != HashValues([]types.Value{types.NewBoolean(true)}))
	testingpkg.Equals(t,
		HashValues([]types.Value{types.NewInteger(7), types.NewVarchar("g")}),
		HashValues([]types.Value{types.NewInteger(7), types.NewVarchar("g")}))
}
