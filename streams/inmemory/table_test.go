package inmemory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamsql/streamsql/streams"
)

func TestTableChangelogSemantics(t *testing.T) {
	table := NewTable(nil, []streams.Record{
		{Key: "a", Row: intRow(1)},
		{Key: "b", Row: intRow(2)},
		{Key: "a", Row: intRow(3)},
		{Key: "b", Row: nil},
	})

	assert.Equal(t, 1, table.Len())
	row, ok := table.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, intRow(3), row)

	_, ok = table.Lookup("b")
	assert.False(t, ok)
}

func TestTableFromTopic(t *testing.T) {
	broker := NewBroker()
	require.NoError(t, broker.EnsureExists("users", 1, 1))
	require.NoError(t, broker.write("users", Message{Key: []byte("a"), Value: []byte("alice")}))
	require.NoError(t, broker.write("users", Message{Key: []byte("b"), Value: []byte("bob")}))
	require.NoError(t, broker.write("users", Message{Key: []byte("b"), Value: nil}))

	table, err := TableFromTopic(broker, "users", streams.StringKeySerde{}, firstColumnSerde{})
	require.NoError(t, err)

	assert.Equal(t, 1, table.Len())
	row, ok := table.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, "alice", row.Columns[0].Str)
}

func TestTableToStreamKeyOrder(t *testing.T) {
	table := NewTable(nil, []streams.Record{
		{Key: "c", Row: intRow(3)},
		{Key: "a", Row: intRow(1)},
		{Key: "b", Row: intRow(2)},
	})

	stream := table.ToStream().(*Stream)
	records := stream.Records()
	require.Len(t, records, 3)
	assert.Equal(t, "a", records[0].Key)
	assert.Equal(t, "b", records[1].Key)
	assert.Equal(t, "c", records[2].Key)
}
