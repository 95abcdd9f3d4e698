package physical

import (
	"github.com/pkg/errors"

	"github.com/streamsql/streamsql"
	"github.com/streamsql/streamsql/codegen"
	"github.com/streamsql/streamsql/execution"
)

// NamedExpression is one output column of an expression projection: the
// column's alias and the expression producing its value.
type NamedExpression struct {
	Name       string
	Expression codegen.Expression
}

func NewNamedExpression(name string, expression codegen.Expression) NamedExpression {
	return NamedExpression{Name: name, Expression: expression}
}

// Map is the expression projection: each named expression is compiled once
// against the current schema and evaluated per row to produce one output
// column. The output schema appends (alias, output type) in expression
// order; the key field is inherited unchanged.
//
// A failing column evaluator never contaminates the rest of the row: the
// column becomes null, the failure is logged with the column index and
// alias, and the remaining columns still evaluate. Failures outside the
// per-column path fail the whole row as a RowTransformationError.
func (s *Stream) Map(expressions []NamedExpression) (*Stream, error) {
	metadata := make([]*codegen.ExpressionMetadata, len(expressions))
	fields := make([]streamsql.Field, len(expressions))
	aliases := make([]string, len(expressions))
	for i, expression := range expressions {
		compiled, err := s.compile(expression.Expression)
		if err != nil {
			return nil, errors.Wrapf(err, "couldn't compile expression for column %s", expression.Name)
		}
		metadata[i] = compiled
		fields[i] = streamsql.Field{Name: expression.Name, Type: compiled.OutputType()}
		aliases[i] = expression.Name
	}
	outSchema := streamsql.NewSchema(fields...)

	enforcer := s.enforcer
	logger := s.logger
	projected := s.stream.MapValues(func(row *execution.Row) (*execution.Row, error) {
		if row == nil {
			return nil, nil
		}
		if row.Columns == nil {
			return nil, execution.NewRowTransformationError(errors.New("malformed input row: no columns"))
		}
		columns := make([]streamsql.Value, len(metadata))
		for i := range metadata {
			value, err := evaluateColumn(metadata[i], enforcer, row)
			if err != nil {
				logger.Printf("couldn't evaluate column with index %d (%s): %s", i, aliases[i], err)
				columns[i] = streamsql.NewNull()
				continue
			}
			columns[i] = value
		}
		return execution.NewRow(columns), nil
	})

	return s.derive(outSchema, s.keyField, projected, NodeTypeProject), nil
}

func evaluateColumn(metadata *codegen.ExpressionMetadata, enforcer *execution.TypeEnforcer, row *execution.Row) (streamsql.Value, error) {
	args, err := metadata.ResolveParams(enforcer, row)
	if err != nil {
		return streamsql.ZeroValue, errors.Wrap(err, "couldn't resolve parameters")
	}
	return metadata.Evaluator().Evaluate(args)
}
