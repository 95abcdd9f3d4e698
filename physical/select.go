package physical

import (
	"github.com/pkg/errors"

	"github.com/streamsql/streamsql"
	"github.com/streamsql/streamsql/execution"
)

// Select is the schema-only projection: every target field is looked up in
// the current schema by name and its column copied positionally. No
// expressions are evaluated.
func (s *Stream) Select(target streamsql.Schema) (*Stream, error) {
	indexes := make([]int, len(target.Fields))
	for i, field := range target.Fields {
		index, err := s.schema.FieldIndex(field.Name)
		if err != nil {
			return nil, errors.Wrapf(err, "couldn't project field %s", field.Name)
		}
		indexes[i] = index
	}

	projected := s.stream.MapValues(func(row *execution.Row) (*execution.Row, error) {
		if row == nil {
			return nil, nil
		}
		columns := make([]streamsql.Value, len(indexes))
		for i, index := range indexes {
			if index >= len(row.Columns) {
				return nil, execution.NewRowTransformationError(
					errors.Errorf("row %s is missing column %d", row, index))
			}
			columns[i] = row.Columns[index]
		}
		return execution.NewRow(columns), nil
	})

	return s.derive(target, s.keyField, projected, NodeTypeProject), nil
}
