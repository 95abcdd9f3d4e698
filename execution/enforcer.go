package execution

import (
	"strconv"

	"github.com/pkg/errors"

	"github.com/streamsql/streamsql"
)

// TypeEnforcer coerces column values to their declared field types before
// they reach a compiled evaluator. It is built once per schema and shared
// read-only across all row evaluations.
type TypeEnforcer struct {
	schema streamsql.Schema
}

func NewTypeEnforcer(schema streamsql.Schema) *TypeEnforcer {
	return &TypeEnforcer{schema: schema}
}

func (e *TypeEnforcer) Enforce(columnIndex int, value streamsql.Value) (streamsql.Value, error) {
	if columnIndex >= len(e.schema.Fields) {
		return streamsql.ZeroValue, errors.Errorf("column index %d out of range for schema with %d fields", columnIndex, len(e.schema.Fields))
	}
	if value.IsNull() {
		return value, nil
	}

	field := e.schema.Fields[columnIndex]
	switch field.Type.TypeID {
	case streamsql.TypeIDInt:
		return e.enforceInt(field, value)
	case streamsql.TypeIDFloat:
		return e.enforceFloat(field, value)
	case streamsql.TypeIDBoolean:
		return e.enforceBoolean(field, value)
	case streamsql.TypeIDString:
		return e.enforceString(field, value)
	default:
		if value.Type.TypeID == field.Type.TypeID {
			return value, nil
		}
		return streamsql.ZeroValue, e.mismatch(field, value)
	}
}

func (e *TypeEnforcer) enforceInt(field streamsql.Field, value streamsql.Value) (streamsql.Value, error) {
	switch value.Type.TypeID {
	case streamsql.TypeIDInt:
		return value, nil
	case streamsql.TypeIDFloat:
		return streamsql.NewInt(int(value.Float)), nil
	case streamsql.TypeIDString:
		parsed, err := strconv.Atoi(value.Str)
		if err != nil {
			return streamsql.ZeroValue, errors.Wrapf(err, "couldn't parse '%s' as INT for column %s", value.Str, field.Name)
		}
		return streamsql.NewInt(parsed), nil
	}
	return streamsql.ZeroValue, e.mismatch(field, value)
}

func (e *TypeEnforcer) enforceFloat(field streamsql.Field, value streamsql.Value) (streamsql.Value, error) {
	switch value.Type.TypeID {
	case streamsql.TypeIDFloat:
		return value, nil
	case streamsql.TypeIDInt:
		return streamsql.NewFloat(float64(value.Int)), nil
	case streamsql.TypeIDString:
		parsed, err := strconv.ParseFloat(value.Str, 64)
		if err != nil {
			return streamsql.ZeroValue, errors.Wrapf(err, "couldn't parse '%s' as FLOAT for column %s", value.Str, field.Name)
		}
		return streamsql.NewFloat(parsed), nil
	}
	return streamsql.ZeroValue, e.mismatch(field, value)
}

func (e *TypeEnforcer) enforceBoolean(field streamsql.Field, value streamsql.Value) (streamsql.Value, error) {
	switch value.Type.TypeID {
	case streamsql.TypeIDBoolean:
		return value, nil
	case streamsql.TypeIDString:
		parsed, err := strconv.ParseBool(value.Str)
		if err != nil {
			return streamsql.ZeroValue, errors.Wrapf(err, "couldn't parse '%s' as BOOLEAN for column %s", value.Str, field.Name)
		}
		return streamsql.NewBoolean(parsed), nil
	}
	return streamsql.ZeroValue, e.mismatch(field, value)
}

func (e *TypeEnforcer) enforceString(field streamsql.Field, value streamsql.Value) (streamsql.Value, error) {
	if value.Type.TypeID == streamsql.TypeIDString {
		return value, nil
	}
	return streamsql.ZeroValue, e.mismatch(field, value)
}

func (e *TypeEnforcer) mismatch(field streamsql.Field, value streamsql.Value) error {
	return errors.Errorf("couldn't enforce type of column %s: expected %s, got %s", field.Name, field.Type, value.Type)
}
