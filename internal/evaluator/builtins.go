package evaluator

import (
	"lox/internal/object"
	"time"
)

var builtins = map[string]func() *object.Native{
	"clock": fnClock,
}

// fnClock returns the wall clock in seconds, with a fractional part.
func fnClock() *object.Native {
	return &object.Native{
		Name:   "clock",
		Params: 0,
		Fn: func(args []object.Object) (object.Object, error) {
			return &object.Number{Value: float64(time.Now().UnixNano()) / float64(time.Second)}, nil
		},
	}
}
