package physical

import (
	"github.com/pkg/errors"

	"github.com/streamsql/streamsql/codegen"
)

// Filter installs a compiled predicate on the underlying stream. The
// returned node keeps the schema and key field of its source. Rows whose
// predicate evaluation fails are surfaced to the runtime as evaluation
// failures, never silently dropped by this layer.
func (s *Stream) Filter(expr codegen.Expression) (*Stream, error) {
	metadata, err := s.compile(expr)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't compile filter expression")
	}
	predicate, err := codegen.NewPredicate(expr, metadata, s.enforcer)
	if err != nil {
		return nil, err
	}

	filtered := s.stream.Filter(predicate.Matches)
	return s.derive(s.schema, s.keyField, filtered, NodeTypeFilter), nil
}
