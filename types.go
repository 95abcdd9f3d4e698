package streamsql

import (
	"fmt"
	"strings"
)

type TypeID int

const (
	TypeIDNull TypeID = iota
	TypeIDInt
	TypeIDFloat
	TypeIDBoolean
	TypeIDString
	TypeIDTime
	TypeIDList
	TypeIDStruct
)

func (t TypeID) String() string {
	switch t {
	case TypeIDNull:
		return "NULL"
	case TypeIDInt:
		return "INT"
	case TypeIDFloat:
		return "FLOAT"
	case TypeIDBoolean:
		return "BOOLEAN"
	case TypeIDString:
		return "STRING"
	case TypeIDTime:
		return "TIME"
	case TypeIDList:
		return "LIST"
	case TypeIDStruct:
		return "STRUCT"
	}
	return "UNKNOWN"
}

// Type describes the static type of a column. Only the payload matching the
// TypeID is meaningful.
type Type struct {
	TypeID TypeID
	List   struct {
		Element *Type
	}
	Struct struct {
		Fields []Field
	}
}

var (
	Null    = Type{TypeID: TypeIDNull}
	Int     = Type{TypeID: TypeIDInt}
	Float   = Type{TypeID: TypeIDFloat}
	Boolean = Type{TypeID: TypeIDBoolean}
	String  = Type{TypeID: TypeIDString}
	Time    = Type{TypeID: TypeIDTime}
)

func ListOf(element Type) Type {
	t := Type{TypeID: TypeIDList}
	t.List.Element = &element
	return t
}

func StructOf(fields ...Field) Type {
	t := Type{TypeID: TypeIDStruct}
	t.Struct.Fields = fields
	return t
}

func (t Type) Equals(other Type) bool {
	if t.TypeID != other.TypeID {
		return false
	}
	switch t.TypeID {
	case TypeIDList:
		if t.List.Element == nil || other.List.Element == nil {
			return t.List.Element == other.List.Element
		}
		return t.List.Element.Equals(*other.List.Element)
	case TypeIDStruct:
		if len(t.Struct.Fields) != len(other.Struct.Fields) {
			return false
		}
		for i := range t.Struct.Fields {
			if t.Struct.Fields[i].Name != other.Struct.Fields[i].Name {
				return false
			}
			if !t.Struct.Fields[i].Type.Equals(other.Struct.Fields[i].Type) {
				return false
			}
		}
		return true
	}
	return true
}

func (t Type) String() string {
	switch t.TypeID {
	case TypeIDList:
		if t.List.Element != nil {
			return fmt.Sprintf("LIST<%s>", t.List.Element.String())
		}
		return "LIST"
	case TypeIDStruct:
		fields := make([]string, len(t.Struct.Fields))
		for i, field := range t.Struct.Fields {
			fields[i] = fmt.Sprintf("%s %s", field.Name, field.Type)
		}
		return fmt.Sprintf("STRUCT<%s>", strings.Join(fields, ", "))
	}
	return t.TypeID.String()
}
