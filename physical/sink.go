package physical

import (
	"github.com/pkg/errors"

	"github.com/streamsql/streamsql"
	"github.com/streamsql/streamsql/config"
	"github.com/streamsql/streamsql/execution"
	"github.com/streamsql/streamsql/streams"
)

// Into writes the stream to a sink topic. The topic is provisioned first
// with the configured partition and replication settings; provisioning
// failures abort before any write. Per row, the columns listed in
// rowkeyIndexes are stripped (they duplicate the key), preserving the
// relative order of the rest, and the result is written keyed by the
// unchanged stream key. Tombstones pass through as null-valued writes.
//
// The returned SINK node carries the same schema and key field: a sink is a
// terminal side effect, not a new logical shape.
func (s *Stream) Into(topicName string, valueSerde streams.RowSerde, rowkeyIndexes map[int]bool, cfg *config.Config, client streams.TopicClient) (*Stream, error) {
	if err := client.EnsureExists(topicName, cfg.Sink.Partitions, cfg.Sink.ReplicationFactor); err != nil {
		return nil, errors.Wrapf(err, "couldn't ensure sink topic %s exists", topicName)
	}

	written := s.stream.Map(func(key string, row *execution.Row) (string, *execution.Row, error) {
		if row == nil {
			return key, nil, nil
		}
		columns := make([]streamsql.Value, 0, len(row.Columns))
		for i := range row.Columns {
			if !rowkeyIndexes[i] {
				columns = append(columns, row.Columns[i])
			}
		}
		return key, execution.NewRow(columns), nil
	})
	if err := written.To(topicName, streams.StringKeySerde{}, valueSerde); err != nil {
		return nil, errors.Wrapf(err, "couldn't write to sink topic %s", topicName)
	}

	return s.derive(s.schema, s.keyField, written, NodeTypeSink), nil
}
