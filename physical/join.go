package physical

import (
	"github.com/pkg/errors"

	"github.com/streamsql/streamsql"
	"github.com/streamsql/streamsql/execution"
	"github.com/streamsql/streamsql/streams"
)

// LeftJoin enriches every left row with the matching right-side row, looked
// up by the stream's key against the table. Output columns are all left
// columns followed by all right columns; when no match exists the right side
// is padded with nulls up to the join schema's width. The left columns
// always occupy the leading positions regardless of match outcome.
func (s *Stream) LeftJoin(table *Table, joinSchema streamsql.Schema, joinKey streamsql.Field, valueSerde streams.RowSerde) (*Stream, error) {
	leftWidth := len(s.schema.Fields)
	rightWidth := len(table.schema.Fields)
	if len(joinSchema.Fields) != leftWidth+rightWidth {
		return nil, errors.Errorf(
			"join schema has %d fields, expected %d left fields plus %d right fields",
			len(joinSchema.Fields), leftWidth, rightWidth,
		)
	}
	if _, err := joinSchema.FieldIndex(joinKey.Name); err != nil {
		return nil, errors.Wrap(err, "couldn't use join key")
	}

	width := len(joinSchema.Fields)
	joined := s.stream.LeftJoin(table.table, func(left, right *execution.Row) *execution.Row {
		if left == nil {
			return nil
		}
		columns := make([]streamsql.Value, 0, width)
		columns = append(columns, left.Columns...)
		if right == nil {
			for i := len(left.Columns); i < width; i++ {
				columns = append(columns, streamsql.NewNull())
			}
		} else {
			columns = append(columns, right.Columns...)
		}
		return execution.NewRow(columns)
	}, valueSerde)

	joinKeyField := joinKey
	node := s.derive(joinSchema, &joinKeyField, joined, NodeTypeJoin)
	node.sources = []Node{s, table}
	return node, nil
}
