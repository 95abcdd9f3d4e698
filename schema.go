package streamsql

import (
	"fmt"
	"strings"
)

// Positions of the system columns every source row carries. Rekeying
// overwrites the RowKey column in place to keep it consistent with the
// stream's partitioning key.
const (
	RowTimeIndex = 0
	RowKeyIndex  = 1
)

const (
	RowTimeName = "ROWTIME"
	RowKeyName  = "ROWKEY"
)

type Field struct {
	Name string
	Type Type
}

// Schema is the ordered list of named, typed fields describing the shape of
// every row at one stage of a plan. Field names are unique within a schema.
type Schema struct {
	Fields []Field
}

func NewSchema(fields ...Field) Schema {
	return Schema{Fields: fields}
}

// SystemSchema prepends the reserved ROWTIME and ROWKEY columns to the given
// fields, the shape rows have when they enter a plan from a source.
func SystemSchema(fields ...Field) Schema {
	out := make([]Field, 0, len(fields)+2)
	out = append(out,
		Field{Name: RowTimeName, Type: Int},
		Field{Name: RowKeyName, Type: String},
	)
	out = append(out, fields...)
	return Schema{Fields: out}
}

// SchemaError signals that a field required by a projection, join or rekey is
// absent from the input schema.
type SchemaError struct {
	Field string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("no field with name %s in schema", e.Field)
}

func (s Schema) FieldIndex(name string) (int, error) {
	for i := range s.Fields {
		if s.Fields[i].Name == name {
			return i, nil
		}
	}
	return -1, &SchemaError{Field: name}
}

func (s Schema) Field(name string) (Field, error) {
	i, err := s.FieldIndex(name)
	if err != nil {
		return Field{}, err
	}
	return s.Fields[i], nil
}

func (s Schema) Equals(other Schema) bool {
	if len(s.Fields) != len(other.Fields) {
		return false
	}
	for i := range s.Fields {
		if s.Fields[i].Name != other.Fields[i].Name {
			return false
		}
		if !s.Fields[i].Type.Equals(other.Fields[i].Type) {
			return false
		}
	}
	return true
}

// Definition renders the schema the way execution plans display it.
func (s Schema) Definition() string {
	fields := make([]string, len(s.Fields))
	for i, field := range s.Fields {
		fields[i] = fmt.Sprintf("%s : %s", field.Name, field.Type)
	}
	return fmt.Sprintf("[%s]", strings.Join(fields, ", "))
}
