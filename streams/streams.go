// Package streams defines the contract between the plan layer and the
// underlying streaming runtime. The plan layer registers per-row functions
// into these primitives and never invokes them itself; the runtime pulls
// every record through them, potentially concurrently across partitions, so
// all row functions must be pure with respect to shared state.
package streams

import (
	"github.com/streamsql/streamsql/execution"
)

// Record is one keyed row in flight. A nil Row is a tombstone.
type Record struct {
	Key string
	Row *execution.Row
}

type PredicateFn func(key string, row *execution.Row) (bool, error)

type ValueMapFn func(row *execution.Row) (*execution.Row, error)

type MapFn func(key string, row *execution.Row) (newKey string, newRow *execution.Row, err error)

type KeySelectorFn func(key string, row *execution.Row) (newKey string, err error)

// JoinerFn combines a left row with its right-side match; right is nil when
// no match exists.
type JoinerFn func(left, right *execution.Row) *execution.Row

// KeyedStream is an opaque handle to one stream in the runtime. Every
// primitive installs a row function and yields a handle to a new stream.
type KeyedStream interface {
	Filter(fn PredicateFn) KeyedStream
	Map(fn MapFn) KeyedStream
	MapValues(fn ValueMapFn) KeyedStream
	SelectKey(fn KeySelectorFn) KeyedStream
	LeftJoin(table KeyedTable, joiner JoinerFn, valueSerde RowSerde) KeyedStream
	GroupByKey(keySerde KeySerde, valueSerde RowSerde) GroupedStream
	To(topic string, keySerde KeySerde, valueSerde RowSerde) error
}

// KeyedTable is the changelog-backed lookup side of a join.
type KeyedTable interface {
	Lookup(key string) (*execution.Row, bool)
	ToStream() KeyedStream
}

// GroupedStream is the opaque hand-off into the runtime's aggregation
// operators; no row-level logic of this layer runs past it.
type GroupedStream interface{}

// KeySerde serializes stream keys. Keys are strings end to end; the serde
// exists so the runtime can store and repartition them.
type KeySerde interface {
	Serialize(key string) ([]byte, error)
	Deserialize(data []byte) (string, error)
}

// RowSerde serializes rows for topics and state stores. Both directions must
// round-trip tombstones as nil.
type RowSerde interface {
	Serialize(row *execution.Row) ([]byte, error)
	Deserialize(data []byte) (*execution.Row, error)
}

// StringKeySerde passes string keys through as raw bytes.
type StringKeySerde struct{}

func (StringKeySerde) Serialize(key string) ([]byte, error) {
	return []byte(key), nil
}

func (StringKeySerde) Deserialize(data []byte) (string, error) {
	return string(data), nil
}
