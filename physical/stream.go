// Package physical is the physical-plan layer: it turns logical row
// operators into a tree of immutable nodes, each wrapping a handle to the
// underlying keyed stream together with the schema and key designation of
// the rows flowing through it. Transformations return new nodes recording
// the caller as their source, so the tree doubles as a queryable execution
// plan.
package physical

import (
	"fmt"
	"log"
	"strings"

	"github.com/streamsql/streamsql"
	"github.com/streamsql/streamsql/codegen"
	"github.com/streamsql/streamsql/execution"
	"github.com/streamsql/streamsql/graph"
	"github.com/streamsql/streamsql/streams"
)

type NodeType int

const (
	NodeTypeSource NodeType = iota
	NodeTypeProject
	NodeTypeFilter
	NodeTypeAggregate
	NodeTypeSink
	NodeTypeRekey
	NodeTypeJoin
	NodeTypeToStream
)

func (t NodeType) String() string {
	switch t {
	case NodeTypeSource:
		return "SOURCE"
	case NodeTypeProject:
		return "PROJECT"
	case NodeTypeFilter:
		return "FILTER"
	case NodeTypeAggregate:
		return "AGGREGATE"
	case NodeTypeSink:
		return "SINK"
	case NodeTypeRekey:
		return "REKEY"
	case NodeTypeJoin:
		return "JOIN"
	case NodeTypeToStream:
		return "TOSTREAM"
	}
	return "UNKNOWN"
}

// Node is one stage of the plan, introspectable without knowing whether it is
// a stream or a table.
type Node interface {
	graph.Visualizer

	NodeType() NodeType
	Schema() streamsql.Schema
	KeyField() *streamsql.Field
	Sources() []Node
	ExecutionPlan(indent string) string
}

// Stream wraps one keyed record stream with its schema and key designation.
// A Stream is immutable once constructed: every transformation returns a new
// node wrapping a new underlying stream.
type Stream struct {
	schema   streamsql.Schema
	keyField *streamsql.Field
	stream   streams.KeyedStream
	sources  []Node
	nodeType NodeType

	enforcer *execution.TypeEnforcer
	registry *codegen.Registry
	cache    *codegen.Cache
	logger   *log.Logger
}

type StreamOption func(*Stream)

// WithRegistry supplies the user-defined-function registry expressions
// compile against.
func WithRegistry(registry *codegen.Registry) StreamOption {
	return func(s *Stream) {
		s.registry = registry
	}
}

// WithCompileCache reuses compiled expression metadata across plans.
func WithCompileCache(cache *codegen.Cache) StreamOption {
	return func(s *Stream) {
		s.cache = cache
	}
}

// WithLogger routes per-column evaluation failure logs; defaults to the
// standard logger.
func WithLogger(logger *log.Logger) StreamOption {
	return func(s *Stream) {
		s.logger = logger
	}
}

func NewStream(schema streamsql.Schema, keyField *streamsql.Field, stream streams.KeyedStream, sources []Node, nodeType NodeType, opts ...StreamOption) *Stream {
	s := &Stream{
		schema:   schema,
		keyField: keyField,
		stream:   stream,
		sources:  sources,
		nodeType: nodeType,
		enforcer: execution.NewTypeEnforcer(schema),
		logger:   log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// derive builds the child node for a transformation, inheriting the registry,
// cache and logger.
func (s *Stream) derive(schema streamsql.Schema, keyField *streamsql.Field, stream streams.KeyedStream, nodeType NodeType) *Stream {
	return &Stream{
		schema:   schema,
		keyField: keyField,
		stream:   stream,
		sources:  []Node{s},
		nodeType: nodeType,
		enforcer: execution.NewTypeEnforcer(schema),
		registry: s.registry,
		cache:    s.cache,
		logger:   s.logger,
	}
}

func (s *Stream) compile(expr codegen.Expression) (*codegen.ExpressionMetadata, error) {
	if s.cache != nil {
		return s.cache.Compile(expr, s.schema, s.registry)
	}
	return codegen.Compile(expr, s.schema, s.registry)
}

func (s *Stream) NodeType() NodeType {
	return s.nodeType
}

func (s *Stream) Schema() streamsql.Schema {
	return s.schema
}

func (s *Stream) KeyField() *streamsql.Field {
	return s.keyField
}

func (s *Stream) Sources() []Node {
	return s.sources
}

// Underlying exposes the runtime stream handle this node wraps.
func (s *Stream) Underlying() streams.KeyedStream {
	return s.stream
}

// ExecutionPlan renders this node and, recursively, its sources: one line per
// node, current node first, deepest source last, indented by tree depth.
func (s *Stream) ExecutionPlan(indent string) string {
	return renderPlan(s, indent)
}

func (s *Stream) Visualize() *graph.Node {
	return visualizeNode(s)
}

func renderPlan(node Node, indent string) string {
	builder := &strings.Builder{}
	fmt.Fprintf(builder, "%s > [ %s ] Schema: %s.\n", indent, node.NodeType(), node.Schema().Definition())
	for _, source := range node.Sources() {
		builder.WriteString(source.ExecutionPlan(indent + "\t"))
	}
	return builder.String()
}

func visualizeNode(node Node) *graph.Node {
	out := graph.NewNode(node.NodeType().String())
	if keyField := node.KeyField(); keyField != nil {
		out.AddField("key", keyField.Name)
	}
	out.AddField("schema", node.Schema().Definition())
	for i, source := range node.Sources() {
		out.AddChild(fmt.Sprintf("source_%d", i), source.Visualize())
	}
	return out
}
