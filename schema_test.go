package streamsql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaFieldIndex(t *testing.T) {
	schema := NewSchema(
		Field{Name: "id", Type: Int},
		Field{Name: "name", Type: String},
	)

	index, err := schema.FieldIndex("name")
	require.NoError(t, err)
	assert.Equal(t, 1, index)

	_, err = schema.FieldIndex("missing")
	require.Error(t, err)
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "missing", schemaErr.Field)
}

func TestSystemSchema(t *testing.T) {
	schema := SystemSchema(Field{Name: "amount", Type: Float})

	require.Len(t, schema.Fields, 3)
	assert.Equal(t, RowTimeName, schema.Fields[RowTimeIndex].Name)
	assert.Equal(t, RowKeyName, schema.Fields[RowKeyIndex].Name)
	assert.Equal(t, "amount", schema.Fields[2].Name)
}

func TestSchemaDefinition(t *testing.T) {
	schema := NewSchema(
		Field{Name: "id", Type: Int},
		Field{Name: "name", Type: String},
	)
	assert.Equal(t, "[id : INT, name : STRING]", schema.Definition())
}

func TestSchemaEquals(t *testing.T) {
	left := NewSchema(Field{Name: "id", Type: Int})
	assert.True(t, left.Equals(NewSchema(Field{Name: "id", Type: Int})))
	assert.False(t, left.Equals(NewSchema(Field{Name: "id", Type: Float})))
	assert.False(t, left.Equals(NewSchema(Field{Name: "other", Type: Int})))
	assert.False(t, left.Equals(NewSchema()))
}
