package plans

/**
 * DeletePlanNode deletes every tuple its child produces from the table
 * tableOID. The child has to emit tuples which still carry their RID.
 */
type DeletePlanNode struct {
	*AbstractPlanNode
	tableOID uint32
}

func NewDeletePlanNode(child Plan, oid uint32) Plan {
	return &DeletePlanNode{&AbstractPlanNode{CountSchema(), []Plan{child}}, oid}
}

func (p *DeletePlanNode) GetTableOID() uint32 {
	return p.tableOID
}

func (p *DeletePlanNode) GetType() PlanType {
	return Delete
}
