package object

import (
	"fmt"
	"lox/internal/util"
	"math"
)

const (
	NIL_OBJ     = "NIL"
	BOOLEAN_OBJ = "BOOLEAN"
	NUMBER_OBJ  = "NUMBER"
	STRING_OBJ  = "STRING"

	FUNCTION_OBJ = "FUNCTION"
	CLASS_OBJ    = "CLASS"
	INSTANCE_OBJ = "INSTANCE"
	NATIVE_OBJ   = "NATIVE"
)

// Epsilon is the tolerance used when comparing numbers for equality.
const Epsilon = 2.220446049250313e-16

var (
	NIL   = &Nil{}
	TRUE  = &Boolean{Value: true}
	FALSE = &Boolean{Value: false}
)

type ObjectType string

type Object interface {
	Type() ObjectType
	Inspect() string
}

type Nil struct{}

func (n *Nil) Type() ObjectType { return NIL_OBJ }
func (n *Nil) Inspect() string  { return "nil" }

type Boolean struct {
	Value bool
}

func (b *Boolean) Type() ObjectType { return BOOLEAN_OBJ }
func (b *Boolean) Inspect() string  { return fmt.Sprintf("%t", b.Value) }

type Number struct {
	Value float64
}

func (n *Number) Type() ObjectType { return NUMBER_OBJ }
func (n *Number) Inspect() string  { return util.FormatNumber(n.Value) }

type String struct {
	Value string
}

func (s *String) Type() ObjectType { return STRING_OBJ }
func (s *String) Inspect() string  { return s.Value }

// ReturnValue is the completion of a `return` statement, carried up to the
// enclosing call. It is not a value and never escapes a function call.
type ReturnValue struct {
	Value Object
}

func NativeBoolToBooleanObject(input bool) *Boolean {
	if input {
		return TRUE
	}
	return FALSE
}

// FromLiteral converts a scanned literal value into a runtime value.
func FromLiteral(v any) Object {
	switch v := v.(type) {
	case bool:
		return NativeBoolToBooleanObject(v)
	case float64:
		return &Number{Value: v}
	case string:
		return &String{Value: v}
	}
	return NIL
}

// IsTruthy reports whether obj counts as true: only nil and false do not.
func IsTruthy(obj Object) bool {
	switch o := obj.(type) {
	case nil, *Nil:
		return false
	case *Boolean:
		return o.Value
	default:
		return true
	}
}

// Equal never fails. Numbers compare with a small tolerance; nil, booleans
// and strings by value; everything else by identity.
func Equal(a, b Object) bool {
	if isNil(a) || isNil(b) {
		return isNil(a) && isNil(b)
	}

	switch l := a.(type) {
	case *Number:
		r, ok := b.(*Number)
		return ok && (l.Value == r.Value || math.Abs(l.Value-r.Value) < Epsilon)
	case *String:
		r, ok := b.(*String)
		return ok && l.Value == r.Value
	case *Boolean:
		r, ok := b.(*Boolean)
		return ok && l.Value == r.Value
	}
	return a == b
}

func isNil(obj Object) bool {
	if obj == nil {
		return true
	}
	_, ok := obj.(*Nil)
	return ok
}
