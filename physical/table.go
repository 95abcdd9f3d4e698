package physical

import (
	"github.com/streamsql/streamsql"
	"github.com/streamsql/streamsql/graph"
	"github.com/streamsql/streamsql/streams"
)

// Table is the changelog-backed side of a plan: the lookup target of left
// joins. Like Stream it is immutable and carries its schema and key
// designation.
type Table struct {
	schema   streamsql.Schema
	keyField *streamsql.Field
	table    streams.KeyedTable
	sources  []Node
	nodeType NodeType

	opts []StreamOption
}

func NewTable(schema streamsql.Schema, keyField *streamsql.Field, table streams.KeyedTable, sources []Node, opts ...StreamOption) *Table {
	return &Table{
		schema:   schema,
		keyField: keyField,
		table:    table,
		sources:  sources,
		nodeType: NodeTypeSource,
		opts:     opts,
	}
}

func (t *Table) NodeType() NodeType {
	return t.nodeType
}

func (t *Table) Schema() streamsql.Schema {
	return t.schema
}

func (t *Table) KeyField() *streamsql.Field {
	return t.keyField
}

func (t *Table) Sources() []Node {
	return t.sources
}

// Underlying exposes the runtime table handle this node wraps.
func (t *Table) Underlying() streams.KeyedTable {
	return t.table
}

// ToStream converts the table's changelog into a stream node.
func (t *Table) ToStream() *Stream {
	return NewStream(t.schema, t.keyField, t.table.ToStream(), []Node{t}, NodeTypeToStream, t.opts...)
}

func (t *Table) ExecutionPlan(indent string) string {
	return renderPlan(t, indent)
}

func (t *Table) Visualize() *graph.Node {
	return visualizeNode(t)
}
