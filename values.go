package streamsql

import (
	"fmt"
	"strings"
	"time"
)

var ZeroValue = Value{}

// Value is the runtime representation of a single column. Only the payload
// matching the Type is meaningful.
type Value struct {
	Type        Type
	Int         int
	Float       float64
	Boolean     bool
	Str         string
	Time        time.Time
	List        []Value
	FieldValues []Value
}

func NewNull() Value {
	return Value{
		Type: Type{TypeID: TypeIDNull},
	}
}

func NewInt(value int) Value {
	return Value{
		Type: Type{TypeID: TypeIDInt},
		Int:  value,
	}
}

func NewFloat(value float64) Value {
	return Value{
		Type:  Type{TypeID: TypeIDFloat},
		Float: value,
	}
}

func NewBoolean(value bool) Value {
	return Value{
		Type:    Type{TypeID: TypeIDBoolean},
		Boolean: value,
	}
}

func NewString(value string) Value {
	return Value{
		Type: Type{TypeID: TypeIDString},
		Str:  value,
	}
}

func NewTime(value time.Time) Value {
	return Value{
		Type: Type{TypeID: TypeIDTime},
		Time: value,
	}
}

func NewList(values []Value) Value {
	return Value{
		Type: Type{TypeID: TypeIDList},
		List: values,
	}
}

func NewStruct(t Type, fieldValues []Value) Value {
	return Value{
		Type:        t,
		FieldValues: fieldValues,
	}
}

func (value Value) IsNull() bool {
	return value.Type.TypeID == TypeIDNull
}

func (value Value) Compare(other Value) int {
	if value.Type.TypeID != other.Type.TypeID {
		if value.Type.TypeID < other.Type.TypeID {
			return -1
		}
		return 1
	}

	switch value.Type.TypeID {
	case TypeIDNull:
		return 0

	case TypeIDInt:
		if value.Int < other.Int {
			return -1
		} else if value.Int > other.Int {
			return 1
		}
		return 0

	case TypeIDFloat:
		if value.Float < other.Float {
			return -1
		} else if value.Float > other.Float {
			return 1
		}
		return 0

	case TypeIDBoolean:
		if value.Boolean == other.Boolean {
			return 0
		} else if !value.Boolean {
			return -1
		}
		return 1

	case TypeIDString:
		if value.Str < other.Str {
			return -1
		} else if value.Str > other.Str {
			return 1
		}
		return 0

	case TypeIDTime:
		if value.Time.Before(other.Time) {
			return -1
		} else if value.Time.After(other.Time) {
			return 1
		}
		return 0

	case TypeIDList:
		return compareValueSlices(value.List, other.List)

	case TypeIDStruct:
		return compareValueSlices(value.FieldValues, other.FieldValues)

	default:
		panic("impossible, type switch bug")
	}
}

func compareValueSlices(left, right []Value) int {
	maxLen := len(left)
	if len(right) > maxLen {
		maxLen = len(right)
	}
	for i := 0; i < maxLen; i++ {
		if i == len(left) {
			return -1
		} else if i == len(right) {
			return 1
		}
		if comp := left[i].Compare(right[i]); comp != 0 {
			return comp
		}
	}
	return 0
}

func (value Value) String() string {
	builder := &strings.Builder{}
	value.append(builder)
	return builder.String()
}

func (value Value) append(builder *strings.Builder) {
	switch value.Type.TypeID {
	case TypeIDNull:
		builder.WriteString("null")

	case TypeIDInt:
		builder.WriteString(fmt.Sprint(value.Int))

	case TypeIDFloat:
		builder.WriteString(fmt.Sprint(value.Float))

	case TypeIDBoolean:
		builder.WriteString(fmt.Sprint(value.Boolean))

	case TypeIDString:
		builder.WriteString(fmt.Sprintf("'%s'", value.Str))

	case TypeIDTime:
		builder.WriteString(value.Time.Format(time.RFC3339Nano))

	case TypeIDList:
		builder.WriteString("[")
		for i, element := range value.List {
			if i != 0 {
				builder.WriteString(", ")
			}
			element.append(builder)
		}
		builder.WriteString("]")

	case TypeIDStruct:
		builder.WriteString("{")
		for i, fieldValue := range value.FieldValues {
			if i != 0 {
				builder.WriteString(", ")
			}
			if i < len(value.Type.Struct.Fields) {
				builder.WriteString(value.Type.Struct.Fields[i].Name)
				builder.WriteString(": ")
			}
			fieldValue.append(builder)
		}
		builder.WriteString("}")
	}
}

// KeyString is the external form used as a partitioning key. Unlike String,
// strings are rendered raw, without quoting.
func (value Value) KeyString() string {
	if value.Type.TypeID == TypeIDString {
		return value.Str
	}
	return value.String()
}
