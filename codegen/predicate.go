package codegen

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/streamsql/streamsql"
	"github.com/streamsql/streamsql/execution"
)

// Predicate is a compiled boolean test over a row, the row function behind
// filter operators.
type Predicate struct {
	metadata *ExpressionMetadata
	enforcer *execution.TypeEnforcer
}

// NewPredicate wraps compiled metadata as a predicate, requiring a boolean
// output type.
func NewPredicate(expr Expression, metadata *ExpressionMetadata, enforcer *execution.TypeEnforcer) (*Predicate, error) {
	if metadata.OutputType().TypeID != streamsql.TypeIDBoolean {
		return nil, &CompilationError{
			Expression: expr.String(),
			Reason:     fmt.Sprintf("filter expression must produce a BOOLEAN, got %s", metadata.OutputType()),
		}
	}
	return &Predicate{
		metadata: metadata,
		enforcer: enforcer,
	}, nil
}

// CompilePredicate compiles a filter expression against the given schema.
func CompilePredicate(expr Expression, schema streamsql.Schema, registry *Registry) (*Predicate, error) {
	metadata, err := Compile(expr, schema, registry)
	if err != nil {
		return nil, err
	}
	return NewPredicate(expr, metadata, execution.NewTypeEnforcer(schema))
}

// Matches evaluates the predicate for one row. Tombstones never match.
// Evaluation errors are returned, not swallowed; the runtime decides what to
// do with the row.
func (p *Predicate) Matches(key string, row *execution.Row) (bool, error) {
	if row == nil {
		return false, nil
	}
	args, err := p.metadata.ResolveParams(p.enforcer, row)
	if err != nil {
		return false, errors.Wrap(err, "couldn't resolve predicate parameters")
	}
	value, err := p.metadata.Evaluator().Evaluate(args)
	if err != nil {
		return false, errors.Wrap(err, "couldn't evaluate predicate")
	}
	if value.IsNull() {
		return false, nil
	}
	if value.Type.TypeID != streamsql.TypeIDBoolean {
		return false, errors.Errorf("predicate evaluated to %s, expected BOOLEAN", value.Type)
	}
	return value.Boolean, nil
}
