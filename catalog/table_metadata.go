package catalog

import (
	"github.com/ryogrid/HeapTxnDB/storage/table"
	"github.com/ryogrid/HeapTxnDB/storage/table/schema"
)

type TableMetadata struct {
	schema *schema.Schema
	name   string
	table  *table.HeapFile
	oid    uint32
}

func (t *TableMetadata) Schema() *schema.Schema {
	return t.schema
}

func (t *TableMetadata) OID() uint32 {
	return t.oid
}

func (t *TableMetadata) Table() *table.HeapFile {
	return t.table
}

func (t *TableMetadata) GetTableName() string {
	return t.name
}
