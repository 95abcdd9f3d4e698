package codegen

import (
	"github.com/pkg/errors"

	"github.com/streamsql/streamsql"
)

// Udf is one user-defined-function instance. A fresh instance is created per
// call site at compile time and passed to the evaluator through a negative
// parameter index, so stateful functions never share state across call sites.
type Udf interface {
	Evaluate(args ...streamsql.Value) (streamsql.Value, error)
}

type UdfDescriptor struct {
	// New creates the per-call-site instance.
	New func() Udf
	// OutputType validates argument types and yields the call's output type.
	OutputType func(args []streamsql.Type) (streamsql.Type, error)
}

type Registry struct {
	udfs map[string]UdfDescriptor
}

func NewRegistry() *Registry {
	return &Registry{
		udfs: make(map[string]UdfDescriptor),
	}
}

func (r *Registry) Register(name string, descriptor UdfDescriptor) error {
	if _, ok := r.udfs[name]; ok {
		return errors.Errorf("function %s already registered", name)
	}
	r.udfs[name] = descriptor
	return nil
}

func (r *Registry) Get(name string) (UdfDescriptor, bool) {
	if r == nil {
		return UdfDescriptor{}, false
	}
	descriptor, ok := r.udfs[name]
	return descriptor, ok
}
