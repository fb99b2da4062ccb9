package table

import (
	"context"

	"github.com/ryogrid/HeapTxnDB/errors"
	"github.com/ryogrid/HeapTxnDB/storage/tuple"
	"github.com/ryogrid/HeapTxnDB/types"
)

// HeapFileIterator walks the tuples of a HeapFile page by page. Each page is
// locked READ_ONLY for the transaction when the iterator reaches it. The page
// count is fixed when the iterator is opened.
type HeapFileIterator struct {
	hf       *HeapFile
	tid      types.TxnID
	ctx      context.Context
	isOpen   bool
	numPages int
	nextPage int
	tuples   []*tuple.Tuple
	pos      int
}

func NewHeapFileIterator(hf *HeapFile, tid types.TxnID) *HeapFileIterator {
	return &HeapFileIterator{hf: hf, tid: tid}
}

// Open starts the iteration. ctx is used for every page lock taken while iterating.
func (it *HeapFileIterator) Open(ctx context.Context) error {
	it.ctx = ctx
	it.numPages = it.hf.NumPages()
	it.nextPage = 0
	it.tuples = nil
	it.pos = 0
	it.isOpen = true
	return nil
}

func (it *HeapFileIterator) HasNext() (bool, error) {
	if !it.isOpen {
		return false, errors.ErrIteratorNotOpen
	}
	for it.pos >= len(it.tuples) {
		if it.nextPage >= it.numPages {
			return false, nil
		}
		pid := types.NewPageID(it.hf.GetTableID(), int32(it.nextPage))
		hp, err := it.hf.fetchPage(it.ctx, it.tid, pid, types.READ_ONLY)
		if err != nil {
			return false, err
		}
		it.tuples = hp.Tuples()
		it.pos = 0
		it.nextPage++
	}
	return true, nil
}

func (it *HeapFileIterator) Next() (*tuple.Tuple, error) {
	ok, err := it.HasNext()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.ErrNoSuchElement
	}
	ret := it.tuples[it.pos]
	it.pos++
	return ret, nil
}

func (it *HeapFileIterator) Rewind(ctx context.Context) error {
	it.Close()
	return it.Open(ctx)
}

func (it *HeapFileIterator) Close() {
	it.isOpen = false
	it.tuples = nil
	it.pos = 0
}
