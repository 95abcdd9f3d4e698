package codegen

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/streamsql/streamsql"
	"github.com/streamsql/streamsql/execution"
)

// CompilationError is fatal at plan-build time: the expression references an
// unknown field or its types don't line up.
type CompilationError struct {
	Expression string
	Reason     string
}

func (e *CompilationError) Error() string {
	return fmt.Sprintf("couldn't compile %s: %s", e.Expression, e.Reason)
}

// Evaluator produces one output column value from the resolved parameter
// list. Implementations are shared read-only across all row evaluations.
type Evaluator interface {
	Evaluate(args []interface{}) (streamsql.Value, error)
}

// ExpressionMetadata is a compiled expression: the parameter extraction
// indexes, the user-defined-function instances, the evaluator and the output
// type. Compiled once per projection and reused for every row.
//
// ParamIndexes and Udfs are parallel: a negative index at position j means
// "pass Udfs[j] instead of a column value".
type ExpressionMetadata struct {
	paramIndexes []int
	udfs         []Udf
	evaluator    Evaluator
	outputType   streamsql.Type
}

func (m *ExpressionMetadata) ParamIndexes() []int {
	return m.paramIndexes
}

func (m *ExpressionMetadata) Udfs() []Udf {
	return m.udfs
}

func (m *ExpressionMetadata) Evaluator() Evaluator {
	return m.evaluator
}

func (m *ExpressionMetadata) OutputType() streamsql.Type {
	return m.outputType
}

// ResolveParams builds the evaluator's parameter list for one row: negative
// indexes resolve to the associated UDF instance, the rest fetch the input
// column at that index, enforced to its declared type.
func (m *ExpressionMetadata) ResolveParams(enforcer *execution.TypeEnforcer, row *execution.Row) ([]interface{}, error) {
	args := make([]interface{}, len(m.paramIndexes))
	for j, index := range m.paramIndexes {
		if index < 0 {
			args[j] = m.udfs[j]
			continue
		}
		if index >= len(row.Columns) {
			return nil, errors.Errorf("expression references column %d, row has only %d columns", index, len(row.Columns))
		}
		value, err := enforcer.Enforce(index, row.Columns[index])
		if err != nil {
			return nil, errors.Wrapf(err, "couldn't enforce type of parameter %d", j)
		}
		args[j] = value
	}
	return args, nil
}

// Compile turns a parsed expression into reusable metadata against the given
// input schema. Unknown fields, unknown functions and type mismatches fail
// with a CompilationError naming the offending sub-expression.
func Compile(expr Expression, schema streamsql.Schema, registry *Registry) (*ExpressionMetadata, error) {
	b := &builder{
		columnPositions: make(map[int]int),
	}
	compiled, outputType, err := b.compile(expr, schema, registry)
	if err != nil {
		return nil, err
	}
	return &ExpressionMetadata{
		paramIndexes: b.paramIndexes,
		udfs:         b.udfs,
		evaluator:    &treeEvaluator{root: compiled},
		outputType:   outputType,
	}, nil
}

type builder struct {
	paramIndexes []int
	udfs         []Udf
	// columnPositions dedupes parameters: the same column referenced twice
	// occupies a single parameter slot.
	columnPositions map[int]int
}

func (b *builder) columnParam(schemaIndex int) int {
	if position, ok := b.columnPositions[schemaIndex]; ok {
		return position
	}
	position := len(b.paramIndexes)
	b.paramIndexes = append(b.paramIndexes, schemaIndex)
	b.udfs = append(b.udfs, nil)
	b.columnPositions[schemaIndex] = position
	return position
}

func (b *builder) udfParam(instance Udf) int {
	position := len(b.paramIndexes)
	b.paramIndexes = append(b.paramIndexes, -1)
	b.udfs = append(b.udfs, instance)
	return position
}

func (b *builder) compile(expr Expression, schema streamsql.Schema, registry *Registry) (compiledExpr, streamsql.Type, error) {
	switch expr := expr.(type) {
	case *ColumnRef:
		index, err := schema.FieldIndex(expr.Name)
		if err != nil {
			return nil, streamsql.Null, &CompilationError{Expression: expr.String(), Reason: "unknown field"}
		}
		return &columnParam{position: b.columnParam(index)}, schema.Fields[index].Type, nil

	case *Literal:
		return &literalValue{value: expr.Value}, expr.Value.Type, nil

	case *Binary:
		left, leftType, err := b.compile(expr.Left, schema, registry)
		if err != nil {
			return nil, streamsql.Null, err
		}
		right, rightType, err := b.compile(expr.Right, schema, registry)
		if err != nil {
			return nil, streamsql.Null, err
		}
		outputType, err := binaryOutputType(expr.Op, leftType, rightType)
		if err != nil {
			return nil, streamsql.Null, &CompilationError{Expression: expr.String(), Reason: err.Error()}
		}
		return &binaryExpr{op: expr.Op, left: left, right: right}, outputType, nil

	case *FunctionCall:
		descriptor, ok := registry.Get(expr.Name)
		if !ok {
			return nil, streamsql.Null, &CompilationError{Expression: expr.String(), Reason: "unknown function"}
		}
		args := make([]compiledExpr, len(expr.Args))
		argTypes := make([]streamsql.Type, len(expr.Args))
		for i := range expr.Args {
			compiled, argType, err := b.compile(expr.Args[i], schema, registry)
			if err != nil {
				return nil, streamsql.Null, err
			}
			args[i] = compiled
			argTypes[i] = argType
		}
		outputType, err := descriptor.OutputType(argTypes)
		if err != nil {
			return nil, streamsql.Null, &CompilationError{Expression: expr.String(), Reason: err.Error()}
		}
		return &udfCall{position: b.udfParam(descriptor.New()), args: args}, outputType, nil

	default:
		return nil, streamsql.Null, &CompilationError{Expression: expr.String(), Reason: "unsupported expression"}
	}
}

func binaryOutputType(op BinaryOperator, left, right streamsql.Type) (streamsql.Type, error) {
	switch {
	case op.isArithmetic():
		if !isNumeric(left) || !isNumeric(right) {
			return streamsql.Null, errors.Errorf("operator %s requires numeric operands, got %s and %s", op, left, right)
		}
		if left.TypeID == streamsql.TypeIDInt && right.TypeID == streamsql.TypeIDInt {
			return streamsql.Int, nil
		}
		return streamsql.Float, nil

	case op.isComparison():
		if !left.Equals(right) && !(isNumeric(left) && isNumeric(right)) {
			return streamsql.Null, errors.Errorf("operator %s requires comparable operands, got %s and %s", op, left, right)
		}
		return streamsql.Boolean, nil

	case op.isLogical():
		if left.TypeID != streamsql.TypeIDBoolean || right.TypeID != streamsql.TypeIDBoolean {
			return streamsql.Null, errors.Errorf("operator %s requires boolean operands, got %s and %s", op, left, right)
		}
		return streamsql.Boolean, nil
	}
	return streamsql.Null, errors.Errorf("unsupported operator %s", op)
}

func isNumeric(t streamsql.Type) bool {
	return t.TypeID == streamsql.TypeIDInt || t.TypeID == streamsql.TypeIDFloat
}

type compiledExpr interface {
	evaluate(args []interface{}) (streamsql.Value, error)
}

type treeEvaluator struct {
	root compiledExpr
}

func (e *treeEvaluator) Evaluate(args []interface{}) (streamsql.Value, error) {
	return e.root.evaluate(args)
}

type columnParam struct {
	position int
}

func (c *columnParam) evaluate(args []interface{}) (streamsql.Value, error) {
	value, ok := args[c.position].(streamsql.Value)
	if !ok {
		return streamsql.ZeroValue, errors.Errorf("parameter %d is not a column value", c.position)
	}
	return value, nil
}

type literalValue struct {
	value streamsql.Value
}

func (c *literalValue) evaluate(args []interface{}) (streamsql.Value, error) {
	return c.value, nil
}

type udfCall struct {
	position int
	args     []compiledExpr
}

func (c *udfCall) evaluate(args []interface{}) (streamsql.Value, error) {
	udf, ok := args[c.position].(Udf)
	if !ok {
		return streamsql.ZeroValue, errors.Errorf("parameter %d is not a function instance", c.position)
	}
	values := make([]streamsql.Value, len(c.args))
	for i := range c.args {
		value, err := c.args[i].evaluate(args)
		if err != nil {
			return streamsql.ZeroValue, errors.Wrapf(err, "couldn't evaluate function argument %d", i)
		}
		values[i] = value
	}
	return udf.Evaluate(values...)
}

type binaryExpr struct {
	op    BinaryOperator
	left  compiledExpr
	right compiledExpr
}

func (c *binaryExpr) evaluate(args []interface{}) (streamsql.Value, error) {
	left, err := c.left.evaluate(args)
	if err != nil {
		return streamsql.ZeroValue, errors.Wrap(err, "couldn't evaluate left operand")
	}
	right, err := c.right.evaluate(args)
	if err != nil {
		return streamsql.ZeroValue, errors.Wrap(err, "couldn't evaluate right operand")
	}
	if left.IsNull() || right.IsNull() {
		return streamsql.NewNull(), nil
	}

	switch {
	case c.op.isArithmetic():
		return evaluateArithmetic(c.op, left, right)
	case c.op.isComparison():
		return evaluateComparison(c.op, left, right), nil
	case c.op.isLogical():
		if c.op == OpAnd {
			return streamsql.NewBoolean(left.Boolean && right.Boolean), nil
		}
		return streamsql.NewBoolean(left.Boolean || right.Boolean), nil
	}
	return streamsql.ZeroValue, errors.Errorf("unsupported operator %s", c.op)
}

func evaluateArithmetic(op BinaryOperator, left, right streamsql.Value) (streamsql.Value, error) {
	if left.Type.TypeID == streamsql.TypeIDInt && right.Type.TypeID == streamsql.TypeIDInt {
		switch op {
		case OpAdd:
			return streamsql.NewInt(left.Int + right.Int), nil
		case OpSubtract:
			return streamsql.NewInt(left.Int - right.Int), nil
		case OpMultiply:
			return streamsql.NewInt(left.Int * right.Int), nil
		case OpDivide:
			if right.Int == 0 {
				return streamsql.ZeroValue, errors.New("division by zero")
			}
			return streamsql.NewInt(left.Int / right.Int), nil
		}
	}

	leftFloat := left.Float
	if left.Type.TypeID == streamsql.TypeIDInt {
		leftFloat = float64(left.Int)
	}
	rightFloat := right.Float
	if right.Type.TypeID == streamsql.TypeIDInt {
		rightFloat = float64(right.Int)
	}
	switch op {
	case OpAdd:
		return streamsql.NewFloat(leftFloat + rightFloat), nil
	case OpSubtract:
		return streamsql.NewFloat(leftFloat - rightFloat), nil
	case OpMultiply:
		return streamsql.NewFloat(leftFloat * rightFloat), nil
	case OpDivide:
		if rightFloat == 0 {
			return streamsql.ZeroValue, errors.New("division by zero")
		}
		return streamsql.NewFloat(leftFloat / rightFloat), nil
	}
	return streamsql.ZeroValue, errors.Errorf("unsupported arithmetic operator %s", op)
}

func evaluateComparison(op BinaryOperator, left, right streamsql.Value) streamsql.Value {
	// Numeric operands may arrive with mixed runtime types.
	if left.Type.TypeID == streamsql.TypeIDInt && right.Type.TypeID == streamsql.TypeIDFloat {
		left = streamsql.NewFloat(float64(left.Int))
	}
	if left.Type.TypeID == streamsql.TypeIDFloat && right.Type.TypeID == streamsql.TypeIDInt {
		right = streamsql.NewFloat(float64(right.Int))
	}
	comp := left.Compare(right)
	switch op {
	case OpEqual:
		return streamsql.NewBoolean(comp == 0)
	case OpNotEqual:
		return streamsql.NewBoolean(comp != 0)
	case OpLess:
		return streamsql.NewBoolean(comp < 0)
	case OpLessEqual:
		return streamsql.NewBoolean(comp <= 0)
	case OpGreater:
		return streamsql.NewBoolean(comp > 0)
	case OpGreaterEqual:
		return streamsql.NewBoolean(comp >= 0)
	}
	panic("impossible, operator switch bug")
}
