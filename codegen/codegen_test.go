package codegen

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamsql/streamsql"
	"github.com/streamsql/streamsql/execution"
)

func testSchema() streamsql.Schema {
	return streamsql.NewSchema(
		streamsql.Field{Name: "id", Type: streamsql.Int},
		streamsql.Field{Name: "name", Type: streamsql.String},
		streamsql.Field{Name: "amount", Type: streamsql.Float},
		streamsql.Field{Name: "active", Type: streamsql.Boolean},
	)
}

type upperUdf struct{}

func (upperUdf) Evaluate(args ...streamsql.Value) (streamsql.Value, error) {
	if len(args) != 1 {
		return streamsql.ZeroValue, errors.Errorf("UCASE expects 1 argument, got %d", len(args))
	}
	if args[0].IsNull() {
		return streamsql.NewNull(), nil
	}
	return streamsql.NewString(strings.ToUpper(args[0].Str)), nil
}

type failingUdf struct{}

func (failingUdf) Evaluate(args ...streamsql.Value) (streamsql.Value, error) {
	return streamsql.ZeroValue, errors.New("boom")
}

func testRegistry(t *testing.T) *Registry {
	registry := NewRegistry()
	require.NoError(t, registry.Register("UCASE", UdfDescriptor{
		New: func() Udf { return upperUdf{} },
		OutputType: func(args []streamsql.Type) (streamsql.Type, error) {
			if len(args) != 1 || args[0].TypeID != streamsql.TypeIDString {
				return streamsql.Null, errors.New("UCASE expects a single STRING argument")
			}
			return streamsql.String, nil
		},
	}))
	require.NoError(t, registry.Register("FAIL", UdfDescriptor{
		New: func() Udf { return failingUdf{} },
		OutputType: func(args []streamsql.Type) (streamsql.Type, error) {
			return streamsql.Int, nil
		},
	}))
	return registry
}

func evaluate(t *testing.T, metadata *ExpressionMetadata, schema streamsql.Schema, row *execution.Row) (streamsql.Value, error) {
	t.Helper()
	args, err := metadata.ResolveParams(execution.NewTypeEnforcer(schema), row)
	require.NoError(t, err)
	return metadata.Evaluator().Evaluate(args)
}

func TestCompileColumnRef(t *testing.T) {
	schema := testSchema()
	metadata, err := Compile(NewColumnRef("name"), schema, nil)
	require.NoError(t, err)
	assert.True(t, metadata.OutputType().Equals(streamsql.String))
	assert.Equal(t, []int{1}, metadata.ParamIndexes())

	row := execution.NewRow([]streamsql.Value{
		streamsql.NewInt(1), streamsql.NewString("a"), streamsql.NewFloat(10), streamsql.NewBoolean(true),
	})
	got, err := evaluate(t, metadata, schema, row)
	require.NoError(t, err)
	assert.Equal(t, streamsql.NewString("a"), got)
}

func TestCompileUnknownField(t *testing.T) {
	_, err := Compile(NewColumnRef("missing"), testSchema(), nil)
	var compilationErr *CompilationError
	require.ErrorAs(t, err, &compilationErr)
	assert.Equal(t, "missing", compilationErr.Expression)
}

func TestCompileArithmetic(t *testing.T) {
	schema := testSchema()
	row := execution.NewRow([]streamsql.Value{
		streamsql.NewInt(6), streamsql.NewString("a"), streamsql.NewFloat(2.5), streamsql.NewBoolean(true),
	})

	tests := []struct {
		name string
		expr Expression
		want streamsql.Value
	}{
		{
			name: "int plus int stays int",
			expr: NewBinary(OpAdd, NewColumnRef("id"), NewLiteral(streamsql.NewInt(4))),
			want: streamsql.NewInt(10),
		},
		{
			name: "int times float widens",
			expr: NewBinary(OpMultiply, NewColumnRef("id"), NewColumnRef("amount")),
			want: streamsql.NewFloat(15),
		},
		{
			name: "int division truncates",
			expr: NewBinary(OpDivide, NewColumnRef("id"), NewLiteral(streamsql.NewInt(4))),
			want: streamsql.NewInt(1),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metadata, err := Compile(tt.expr, schema, nil)
			require.NoError(t, err)
			got, err := evaluate(t, metadata, schema, row)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompileDivisionByZero(t *testing.T) {
	schema := testSchema()
	metadata, err := Compile(NewBinary(OpDivide, NewColumnRef("id"), NewLiteral(streamsql.NewInt(0))), schema, nil)
	require.NoError(t, err)

	row := execution.NewRow([]streamsql.Value{
		streamsql.NewInt(1), streamsql.NewString("a"), streamsql.NewFloat(10), streamsql.NewBoolean(true),
	})
	_, err = evaluate(t, metadata, schema, row)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "division by zero")
}

func TestCompileNullPropagation(t *testing.T) {
	schema := testSchema()
	metadata, err := Compile(NewBinary(OpAdd, NewColumnRef("id"), NewLiteral(streamsql.NewInt(1))), schema, nil)
	require.NoError(t, err)

	row := execution.NewRow([]streamsql.Value{
		streamsql.NewNull(), streamsql.NewString("a"), streamsql.NewFloat(10), streamsql.NewBoolean(true),
	})
	got, err := evaluate(t, metadata, schema, row)
	require.NoError(t, err)
	assert.True(t, got.IsNull())
}

func TestCompileTypeMismatch(t *testing.T) {
	_, err := Compile(NewBinary(OpAdd, NewColumnRef("name"), NewLiteral(streamsql.NewInt(1))), testSchema(), nil)
	var compilationErr *CompilationError
	require.ErrorAs(t, err, &compilationErr)
	assert.Contains(t, compilationErr.Reason, "numeric operands")
}

func TestCompileDedupesColumnParams(t *testing.T) {
	metadata, err := Compile(
		NewBinary(OpAdd, NewColumnRef("id"), NewColumnRef("id")),
		testSchema(), nil,
	)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, metadata.ParamIndexes())
}

func TestCompileFunctionCall(t *testing.T) {
	schema := testSchema()
	registry := testRegistry(t)

	metadata, err := Compile(NewFunctionCall("UCASE", NewColumnRef("name")), schema, registry)
	require.NoError(t, err)
	assert.True(t, metadata.OutputType().Equals(streamsql.String))
	// The argument's column slot, then the UDF slot.
	require.Equal(t, []int{1, -1}, metadata.ParamIndexes())
	assert.Nil(t, metadata.Udfs()[0])
	assert.NotNil(t, metadata.Udfs()[1])

	row := execution.NewRow([]streamsql.Value{
		streamsql.NewInt(1), streamsql.NewString("alice"), streamsql.NewFloat(10), streamsql.NewBoolean(true),
	})
	got, err := evaluate(t, metadata, schema, row)
	require.NoError(t, err)
	assert.Equal(t, streamsql.NewString("ALICE"), got)
}

func TestCompileUnknownFunction(t *testing.T) {
	_, err := Compile(NewFunctionCall("NOPE"), testSchema(), testRegistry(t))
	var compilationErr *CompilationError
	require.ErrorAs(t, err, &compilationErr)
	assert.Equal(t, "unknown function", compilationErr.Reason)
}

func TestCompileFunctionArgumentTypeMismatch(t *testing.T) {
	_, err := Compile(NewFunctionCall("UCASE", NewColumnRef("id")), testSchema(), testRegistry(t))
	var compilationErr *CompilationError
	require.ErrorAs(t, err, &compilationErr)
	assert.Contains(t, compilationErr.Reason, "STRING")
}

func TestResolveParamsEnforcesTypes(t *testing.T) {
	schema := testSchema()
	metadata, err := Compile(NewBinary(OpAdd, NewColumnRef("id"), NewLiteral(streamsql.NewInt(1))), schema, nil)
	require.NoError(t, err)

	// The id column arrives as a string; the enforcer coerces it.
	row := execution.NewRow([]streamsql.Value{
		streamsql.NewString("41"), streamsql.NewString("a"), streamsql.NewFloat(10), streamsql.NewBoolean(true),
	})
	got, err := evaluate(t, metadata, schema, row)
	require.NoError(t, err)
	assert.Equal(t, streamsql.NewInt(42), got)
}

func TestResolveParamsShortRow(t *testing.T) {
	schema := testSchema()
	metadata, err := Compile(NewColumnRef("active"), schema, nil)
	require.NoError(t, err)

	row := execution.NewRow([]streamsql.Value{streamsql.NewInt(1)})
	_, err = metadata.ResolveParams(execution.NewTypeEnforcer(schema), row)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row has only 1 columns")
}
