package page

import (
	"github.com/ryogrid/HeapTxnDB/types"
)

// Page is a fixed size unit of a heap file as the buffer pool sees it.
//
// A page is dirty while some transaction has modified it and not yet
// completed. The dirtier is recorded instead of a plain flag so that commit
// and abort can tell whose change a cached page carries.
type Page interface {
	GetPageId() types.PageID
	// IsDirty returns the transaction which dirtied the page, or
	// types.InvalidTxnID when the page is clean
	IsDirty() types.TxnID
	MarkDirty(dirty bool, tid types.TxnID)
	// GetPageData serializes the page to exactly page size bytes
	GetPageData() []byte
	// GetBeforeImage rebuilds the page as it was at the last SetBeforeImage
	GetBeforeImage() Page
	SetBeforeImage()
}
