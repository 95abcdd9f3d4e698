// Package serialization provides the row codecs handed to the runtime when a
// plan writes to or groups over a topic.
package serialization

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/valyala/fastjson"

	"github.com/streamsql/streamsql"
	"github.com/streamsql/streamsql/execution"
)

// JSONRowSerde encodes rows as JSON objects keyed by field name. It is
// schema-aware: decoding maps JSON values onto the declared field types, and
// columns missing from the payload decode as nulls. Tombstones round-trip as
// nil payloads.
type JSONRowSerde struct {
	schema streamsql.Schema
}

func NewJSONRowSerde(schema streamsql.Schema) *JSONRowSerde {
	return &JSONRowSerde{schema: schema}
}

func (s *JSONRowSerde) Serialize(row *execution.Row) ([]byte, error) {
	if row == nil {
		return nil, nil
	}
	if len(row.Columns) != len(s.schema.Fields) {
		return nil, errors.Errorf("row has %d columns, schema %s has %d fields", len(row.Columns), s.schema.Definition(), len(s.schema.Fields))
	}
	object := make(map[string]interface{}, len(row.Columns))
	for i, field := range s.schema.Fields {
		object[field.Name] = rawValue(row.Columns[i])
	}
	data, err := json.Marshal(object)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't marshal row")
	}
	return data, nil
}

func (s *JSONRowSerde) Deserialize(data []byte) (*execution.Row, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var parser fastjson.Parser
	parsed, err := parser.ParseBytes(data)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't parse json row")
	}
	if parsed.Type() != fastjson.TypeObject {
		return nil, errors.Errorf("expected JSON object, got %s", parsed.Type())
	}

	columns := make([]streamsql.Value, len(s.schema.Fields))
	for i, field := range s.schema.Fields {
		value, err := valueFromJSON(field.Type, parsed.Get(field.Name))
		if err != nil {
			return nil, errors.Wrapf(err, "couldn't decode column %s", field.Name)
		}
		columns[i] = value
	}
	return execution.NewRow(columns), nil
}

func rawValue(value streamsql.Value) interface{} {
	switch value.Type.TypeID {
	case streamsql.TypeIDNull:
		return nil
	case streamsql.TypeIDInt:
		return value.Int
	case streamsql.TypeIDFloat:
		return value.Float
	case streamsql.TypeIDBoolean:
		return value.Boolean
	case streamsql.TypeIDString:
		return value.Str
	case streamsql.TypeIDTime:
		return value.Time.Format(time.RFC3339Nano)
	case streamsql.TypeIDList:
		elements := make([]interface{}, len(value.List))
		for i := range value.List {
			elements[i] = rawValue(value.List[i])
		}
		return elements
	case streamsql.TypeIDStruct:
		fields := make(map[string]interface{}, len(value.FieldValues))
		for i := range value.FieldValues {
			if i < len(value.Type.Struct.Fields) {
				fields[value.Type.Struct.Fields[i].Name] = rawValue(value.FieldValues[i])
			}
		}
		return fields
	}
	return nil
}

func valueFromJSON(t streamsql.Type, value *fastjson.Value) (streamsql.Value, error) {
	if value == nil || value.Type() == fastjson.TypeNull {
		return streamsql.NewNull(), nil
	}

	switch t.TypeID {
	case streamsql.TypeIDInt:
		if value.Type() == fastjson.TypeNumber {
			v, err := value.Int()
			if err != nil {
				return streamsql.ZeroValue, errors.Wrap(err, "couldn't read number as INT")
			}
			return streamsql.NewInt(v), nil
		}

	case streamsql.TypeIDFloat:
		if value.Type() == fastjson.TypeNumber {
			v, err := value.Float64()
			if err != nil {
				return streamsql.ZeroValue, errors.Wrap(err, "couldn't read number as FLOAT")
			}
			return streamsql.NewFloat(v), nil
		}

	case streamsql.TypeIDBoolean:
		if value.Type() == fastjson.TypeTrue {
			return streamsql.NewBoolean(true), nil
		}
		if value.Type() == fastjson.TypeFalse {
			return streamsql.NewBoolean(false), nil
		}

	case streamsql.TypeIDString:
		if value.Type() == fastjson.TypeString {
			v, err := value.StringBytes()
			if err != nil {
				return streamsql.ZeroValue, errors.Wrap(err, "couldn't read string")
			}
			return streamsql.NewString(string(v)), nil
		}

	case streamsql.TypeIDTime:
		if value.Type() == fastjson.TypeString {
			v, err := value.StringBytes()
			if err != nil {
				return streamsql.ZeroValue, errors.Wrap(err, "couldn't read time string")
			}
			parsed, err := time.Parse(time.RFC3339Nano, string(v))
			if err != nil {
				return streamsql.ZeroValue, errors.Wrapf(err, "couldn't parse '%s' as TIME", string(v))
			}
			return streamsql.NewTime(parsed), nil
		}

	case streamsql.TypeIDList:
		if value.Type() == fastjson.TypeArray {
			items, err := value.Array()
			if err != nil {
				return streamsql.ZeroValue, errors.Wrap(err, "couldn't read array")
			}
			elementType := streamsql.Null
			if t.List.Element != nil {
				elementType = *t.List.Element
			}
			elements := make([]streamsql.Value, len(items))
			for i := range items {
				element, err := valueFromJSON(elementType, items[i])
				if err != nil {
					return streamsql.ZeroValue, errors.Wrapf(err, "couldn't decode list element %d", i)
				}
				elements[i] = element
			}
			return streamsql.NewList(elements), nil
		}

	case streamsql.TypeIDStruct:
		if value.Type() == fastjson.TypeObject {
			fieldValues := make([]streamsql.Value, len(t.Struct.Fields))
			for i, field := range t.Struct.Fields {
				fieldValue, err := valueFromJSON(field.Type, value.Get(field.Name))
				if err != nil {
					return streamsql.ZeroValue, errors.Wrapf(err, "couldn't decode struct field %s", field.Name)
				}
				fieldValues[i] = fieldValue
			}
			return streamsql.NewStruct(t, fieldValues), nil
		}
	}

	return streamsql.ZeroValue, errors.Errorf("JSON value of type %s doesn't match field type %s", value.Type(), t)
}
