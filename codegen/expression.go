package codegen

import (
	"fmt"
	"strings"

	"github.com/streamsql/streamsql"
)

// Expression is a parsed expression handed to the compiler. Parsing itself
// happens upstream; this is the compiler's input contract. String renders the
// sub-expression for error messages.
type Expression interface {
	fmt.Stringer
	expression()
}

type ColumnRef struct {
	Name string
}

func NewColumnRef(name string) *ColumnRef {
	return &ColumnRef{Name: name}
}

func (e *ColumnRef) expression() {}

func (e *ColumnRef) String() string {
	return e.Name
}

type Literal struct {
	Value streamsql.Value
}

func NewLiteral(value streamsql.Value) *Literal {
	return &Literal{Value: value}
}

func (e *Literal) expression() {}

func (e *Literal) String() string {
	return e.Value.String()
}

type BinaryOperator int

const (
	OpAdd BinaryOperator = iota
	OpSubtract
	OpMultiply
	OpDivide
	OpEqual
	OpNotEqual
	OpLess
	OpLessEqual
	OpGreater
	OpGreaterEqual
	OpAnd
	OpOr
)

func (op BinaryOperator) String() string {
	switch op {
	case OpAdd:
		return "+"
	case OpSubtract:
		return "-"
	case OpMultiply:
		return "*"
	case OpDivide:
		return "/"
	case OpEqual:
		return "="
	case OpNotEqual:
		return "<>"
	case OpLess:
		return "<"
	case OpLessEqual:
		return "<="
	case OpGreater:
		return ">"
	case OpGreaterEqual:
		return ">="
	case OpAnd:
		return "AND"
	case OpOr:
		return "OR"
	}
	return "?"
}

func (op BinaryOperator) isArithmetic() bool {
	return op == OpAdd || op == OpSubtract || op == OpMultiply || op == OpDivide
}

func (op BinaryOperator) isComparison() bool {
	switch op {
	case OpEqual, OpNotEqual, OpLess, OpLessEqual, OpGreater, OpGreaterEqual:
		return true
	}
	return false
}

func (op BinaryOperator) isLogical() bool {
	return op == OpAnd || op == OpOr
}

type Binary struct {
	Op    BinaryOperator
	Left  Expression
	Right Expression
}

func NewBinary(op BinaryOperator, left, right Expression) *Binary {
	return &Binary{Op: op, Left: left, Right: right}
}

func (e *Binary) expression() {}

func (e *Binary) String() string {
	return fmt.Sprintf("(%s %s %s)", e.Left, e.Op, e.Right)
}

type FunctionCall struct {
	Name string
	Args []Expression
}

func NewFunctionCall(name string, args ...Expression) *FunctionCall {
	return &FunctionCall{Name: name, Args: args}
}

func (e *FunctionCall) expression() {}

func (e *FunctionCall) String() string {
	args := make([]string, len(e.Args))
	for i := range e.Args {
		args[i] = e.Args[i].String()
	}
	return fmt.Sprintf("%s(%s)", e.Name, strings.Join(args, ", "))
}
