package physical

import (
	"io"
	"log"

	"github.com/streamsql/streamsql"
	"github.com/streamsql/streamsql/execution"
	"github.com/streamsql/streamsql/streams"
	"github.com/streamsql/streamsql/streams/inmemory"
)

func ordersSchema() streamsql.Schema {
	return streamsql.SystemSchema(
		streamsql.Field{Name: "ORDER_ID", Type: streamsql.Int},
		streamsql.Field{Name: "USER_ID", Type: streamsql.String},
		streamsql.Field{Name: "AMOUNT", Type: streamsql.Float},
	)
}

// orderRow builds a row matching ordersSchema, with the ROWKEY mirror set to
// the key.
func orderRow(rowtime int, key string, orderID int, userID string, amount float64) *execution.Row {
	return execution.NewRow([]streamsql.Value{
		streamsql.NewInt(rowtime),
		streamsql.NewString(key),
		streamsql.NewInt(orderID),
		streamsql.NewString(userID),
		streamsql.NewFloat(amount),
	})
}

func sourceStream(broker *inmemory.Broker, records []streams.Record, opts ...StreamOption) *Stream {
	schema := ordersSchema()
	keyField := schema.Fields[streamsql.RowKeyIndex]
	opts = append([]StreamOption{WithLogger(log.New(io.Discard, "", 0))}, opts...)
	return NewStream(schema, &keyField, inmemory.NewStream(broker, records), nil, NodeTypeSource, opts...)
}

func underlying(s *Stream) *inmemory.Stream {
	return s.Underlying().(*inmemory.Stream)
}
