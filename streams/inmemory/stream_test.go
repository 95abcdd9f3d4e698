package inmemory

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamsql/streamsql"
	"github.com/streamsql/streamsql/execution"
	"github.com/streamsql/streamsql/streams"
)

// firstColumnSerde writes the first column's raw string form, enough to
// observe sink output without a full row codec.
type firstColumnSerde struct{}

func (firstColumnSerde) Serialize(row *execution.Row) ([]byte, error) {
	if row == nil {
		return nil, nil
	}
	if len(row.Columns) == 0 {
		return nil, errors.New("row has no columns")
	}
	return []byte(row.Columns[0].KeyString()), nil
}

func (firstColumnSerde) Deserialize(data []byte) (*execution.Row, error) {
	if len(data) == 0 {
		return nil, nil
	}
	return execution.NewRow([]streamsql.Value{streamsql.NewString(string(data))}), nil
}

func intRow(values ...int) *execution.Row {
	columns := make([]streamsql.Value, len(values))
	for i := range values {
		columns[i] = streamsql.NewInt(values[i])
	}
	return execution.NewRow(columns)
}

func TestStreamFilter(t *testing.T) {
	stream := NewStream(nil, []streams.Record{
		{Key: "a", Row: intRow(1)},
		{Key: "b", Row: intRow(10)},
		{Key: "c", Row: intRow(3)},
	})

	filtered := stream.Filter(func(key string, row *execution.Row) (bool, error) {
		return row.Columns[0].Int >= 3, nil
	}).(*Stream)

	require.NoError(t, filtered.Err())
	require.Len(t, filtered.Records(), 2)
	assert.Equal(t, "b", filtered.Records()[0].Key)
	assert.Equal(t, "c", filtered.Records()[1].Key)
	assert.NotEqual(t, stream.ID(), filtered.ID())
}

func TestStreamRowErrorDropsRecord(t *testing.T) {
	stream := NewStream(nil, []streams.Record{
		{Key: "a", Row: intRow(1)},
		{Key: "b", Row: intRow(2)},
	})

	mapped := stream.MapValues(func(row *execution.Row) (*execution.Row, error) {
		if row.Columns[0].Int == 1 {
			return nil, errors.New("malformed")
		}
		return row, nil
	}).(*Stream)

	require.Len(t, mapped.Records(), 1)
	assert.Equal(t, "b", mapped.Records()[0].Key)
	require.Error(t, mapped.Err())
	assert.True(t, strings.Contains(mapped.Err().Error(), "malformed"))
	assert.Len(t, mapped.Errs(), 1)
}

func TestStreamSelectKey(t *testing.T) {
	stream := NewStream(nil, []streams.Record{
		{Key: "a", Row: intRow(7)},
	})

	rekeyed := stream.SelectKey(func(key string, row *execution.Row) (string, error) {
		return row.Columns[0].KeyString(), nil
	}).(*Stream)

	require.Len(t, rekeyed.Records(), 1)
	assert.Equal(t, "7", rekeyed.Records()[0].Key)
}

func TestStreamLeftJoin(t *testing.T) {
	table := NewTable(nil, []streams.Record{
		{Key: "a", Row: intRow(100)},
	})
	stream := NewStream(nil, []streams.Record{
		{Key: "a", Row: intRow(1)},
		{Key: "z", Row: intRow(2)},
		{Key: "t", Row: nil},
	})

	joined := stream.LeftJoin(table, func(left, right *execution.Row) *execution.Row {
		if left == nil {
			return nil
		}
		columns := append([]streamsql.Value{}, left.Columns...)
		if right != nil {
			columns = append(columns, right.Columns...)
		} else {
			columns = append(columns, streamsql.NewNull())
		}
		return execution.NewRow(columns)
	}, nil).(*Stream)

	require.Len(t, joined.Records(), 3)
	assert.Equal(t, intRow(1, 100), joined.Records()[0].Row)
	assert.Equal(t, []streamsql.Value{streamsql.NewInt(2), streamsql.NewNull()}, joined.Records()[1].Row.Columns)
	// Tombstones pass through untouched.
	assert.Nil(t, joined.Records()[2].Row)
}

func TestStreamGroupByKey(t *testing.T) {
	stream := NewStream(nil, []streams.Record{
		{Key: "a", Row: intRow(1)},
		{Key: "b", Row: intRow(2)},
		{Key: "a", Row: intRow(3)},
	})

	grouped := stream.GroupByKey(streams.StringKeySerde{}, nil).(*Grouped)

	assert.Equal(t, []string{"a", "b"}, grouped.Keys())
	require.Len(t, grouped.Groups()["a"], 2)
	assert.Equal(t, intRow(3), grouped.Groups()["a"][1])
}

func TestStreamTo(t *testing.T) {
	broker := NewBroker()
	require.NoError(t, broker.EnsureExists("out", 1, 1))

	stream := NewStream(broker, []streams.Record{
		{Key: "a", Row: intRow(1)},
		{Key: "b", Row: nil},
	})
	require.NoError(t, stream.To("out", streams.StringKeySerde{}, firstColumnSerde{}))

	messages := broker.Messages("out")
	require.Len(t, messages, 2)
	assert.Equal(t, []byte("a"), messages[0].Key)
	assert.Equal(t, []byte("1"), messages[0].Value)
	// Tombstones come out as null-valued writes.
	assert.Equal(t, []byte("b"), messages[1].Key)
	assert.Nil(t, messages[1].Value)
}

func TestStreamToWithoutBroker(t *testing.T) {
	stream := NewStream(nil, []streams.Record{{Key: "a", Row: intRow(1)}})
	require.Error(t, stream.To("out", streams.StringKeySerde{}, firstColumnSerde{}))
}
