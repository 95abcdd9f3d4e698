package inmemory

import (
	"github.com/pkg/errors"
	"github.com/tidwall/btree"

	"github.com/streamsql/streamsql/execution"
	"github.com/streamsql/streamsql/streams"
)

// Table implements streams.KeyedTable with changelog semantics: later records
// for a key overwrite earlier ones, tombstones delete.
type Table struct {
	broker *Broker
	rows   btree.Map[string, *execution.Row]
}

func NewTable(broker *Broker, records []streams.Record) *Table {
	t := &Table{broker: broker}
	for _, record := range records {
		t.apply(record.Key, record.Row)
	}
	return t
}

// TableFromTopic materializes a table from a topic's changelog.
func TableFromTopic(broker *Broker, topicName string, keySerde streams.KeySerde, valueSerde streams.RowSerde) (*Table, error) {
	t := &Table{broker: broker}
	for _, message := range broker.Messages(topicName) {
		key, err := keySerde.Deserialize(message.Key)
		if err != nil {
			return nil, errors.Wrapf(err, "couldn't deserialize key from topic %s", topicName)
		}
		var row *execution.Row
		if message.Value != nil {
			row, err = valueSerde.Deserialize(message.Value)
			if err != nil {
				return nil, errors.Wrapf(err, "couldn't deserialize row for key %s from topic %s", key, topicName)
			}
		}
		t.apply(key, row)
	}
	return t, nil
}

func (t *Table) apply(key string, row *execution.Row) {
	if row == nil {
		t.rows.Delete(key)
		return
	}
	t.rows.Set(key, row)
}

func (t *Table) Lookup(key string) (*execution.Row, bool) {
	return t.rows.Get(key)
}

func (t *Table) Len() int {
	return t.rows.Len()
}

// ToStream converts the table's current contents into a stream, in key order.
func (t *Table) ToStream() streams.KeyedStream {
	records := make([]streams.Record, 0, t.rows.Len())
	t.rows.Scan(func(key string, row *execution.Row) bool {
		records = append(records, streams.Record{Key: key, Row: row})
		return true
	})
	return NewStream(t.broker, records)
}
