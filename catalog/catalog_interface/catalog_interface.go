package catalog_interface

import (
	"context"

	"github.com/ryogrid/HeapTxnDB/storage/page"
	"github.com/ryogrid/HeapTxnDB/storage/table/schema"
	"github.com/ryogrid/HeapTxnDB/storage/tuple"
	"github.com/ryogrid/HeapTxnDB/types"
)

// DbFile is the on-disk representation of one table as the buffer pool
// needs it. It reads and writes whole pages and performs tuple level changes
// by fetching pages through the buffer pool.
type DbFile interface {
	GetTableID() uint32
	GetSchema() *schema.Schema
	NumPages() int
	ReadPage(pid types.PageID) (page.Page, error)
	WritePage(p page.Page) error
	// InsertTuple and DeleteTuple return the pages they modified
	InsertTuple(ctx context.Context, tid types.TxnID, t *tuple.Tuple) ([]page.Page, error)
	DeleteTuple(ctx context.Context, tid types.TxnID, t *tuple.Tuple) ([]page.Page, error)
}

// CatalogInterface resolves table ids for the buffer pool. An unknown id
// results in errors.ErrUnknownTable.
type CatalogInterface interface {
	ResolveFile(tableID uint32) (DbFile, error)
	SchemaOf(tableID uint32) (*schema.Schema, error)
}
