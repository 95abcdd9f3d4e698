package physical

import (
	"github.com/streamsql/streamsql"
	"github.com/streamsql/streamsql/streams"
)

// GroupedStream is the hand-off into the runtime's aggregation operators.
// It carries the schema, key field and source of the grouping for plan
// introspection; no row-level logic of this layer runs past it.
type GroupedStream struct {
	schema   streamsql.Schema
	keyField *streamsql.Field
	grouped  streams.GroupedStream
	sources  []Node
}

// GroupByKey delegates to the runtime's grouping primitive with the supplied
// codecs and wraps the result.
func (s *Stream) GroupByKey(keySerde streams.KeySerde, valueSerde streams.RowSerde) *GroupedStream {
	return &GroupedStream{
		schema:   s.schema,
		keyField: s.keyField,
		grouped:  s.stream.GroupByKey(keySerde, valueSerde),
		sources:  []Node{s},
	}
}

func (g *GroupedStream) Schema() streamsql.Schema {
	return g.schema
}

func (g *GroupedStream) KeyField() *streamsql.Field {
	return g.keyField
}

func (g *GroupedStream) Sources() []Node {
	return g.sources
}

// Underlying exposes the runtime's grouped-stream handle for the aggregation
// operators consuming this hand-off.
func (g *GroupedStream) Underlying() streams.GroupedStream {
	return g.grouped
}
