package physical

import (
	"github.com/pkg/errors"

	"github.com/streamsql/streamsql"
	"github.com/streamsql/streamsql/execution"
)

// SelectKey changes the stream's partitioning key to the named field. When
// the field is already the key this is an identity short-circuit: the
// receiver itself is returned and no repartition happens. Otherwise the new
// key is derived per row from the field's column, and the reserved ROWKEY
// column is overwritten in place so the key mirror stays consistent for
// downstream rekeys and sinks.
//
// Rekeying implies a physical repartition: relative ordering between rows
// with different old keys is not preserved past this node.
func (s *Stream) SelectKey(newKeyField streamsql.Field) (*Stream, error) {
	if s.keyField != nil && s.keyField.Name == newKeyField.Name {
		return s, nil
	}
	index, err := s.schema.FieldIndex(newKeyField.Name)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't select new key field")
	}

	rekeyed := s.stream.SelectKey(func(key string, row *execution.Row) (string, error) {
		if row == nil {
			return key, nil
		}
		if index >= len(row.Columns) {
			return "", execution.NewRowTransformationError(
				errors.Errorf("row %s is missing key column %d", row, index))
		}
		return row.Columns[index].KeyString(), nil
	}).Map(func(key string, row *execution.Row) (string, *execution.Row, error) {
		if row == nil {
			return key, nil, nil
		}
		if streamsql.RowKeyIndex < len(row.Columns) {
			row.Columns[streamsql.RowKeyIndex] = streamsql.NewString(key)
		}
		return key, row, nil
	})

	keyField := newKeyField
	return s.derive(s.schema, &keyField, rekeyed, NodeTypeRekey), nil
}
