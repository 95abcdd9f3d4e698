package inmemory

import (
	cryptorand "crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/pkg/errors"

	"github.com/streamsql/streamsql/execution"
	"github.com/streamsql/streamsql/streams"
)

func newStreamID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), cryptorand.Reader).String()
}

// Stream implements streams.KeyedStream over a slice of records. Per-row
// errors follow the runtime's drop policy: the record is dropped and the
// error kept, observable through Err.
type Stream struct {
	id      string
	broker  *Broker
	records []streams.Record
	errs    []error
}

func NewStream(broker *Broker, records []streams.Record) *Stream {
	return &Stream{
		id:      newStreamID(),
		broker:  broker,
		records: records,
	}
}

func (s *Stream) derive(records []streams.Record, errs []error) *Stream {
	return &Stream{
		id:      newStreamID(),
		broker:  s.broker,
		records: records,
		errs:    errs,
	}
}

func (s *Stream) ID() string {
	return s.id
}

func (s *Stream) Records() []streams.Record {
	return s.records
}

// Err returns the first per-row error encountered while applying row
// functions anywhere upstream, nil if every record transformed cleanly.
func (s *Stream) Err() error {
	if len(s.errs) == 0 {
		return nil
	}
	return s.errs[0]
}

func (s *Stream) Errs() []error {
	return s.errs
}

func (s *Stream) Filter(fn streams.PredicateFn) streams.KeyedStream {
	out := make([]streams.Record, 0, len(s.records))
	errs := s.errs
	for _, record := range s.records {
		ok, err := fn(record.Key, record.Row)
		if err != nil {
			errs = append(errs, errors.Wrap(err, "couldn't apply filter"))
			continue
		}
		if ok {
			out = append(out, record)
		}
	}
	return s.derive(out, errs)
}

func (s *Stream) Map(fn streams.MapFn) streams.KeyedStream {
	out := make([]streams.Record, 0, len(s.records))
	errs := s.errs
	for _, record := range s.records {
		key, row, err := fn(record.Key, record.Row)
		if err != nil {
			errs = append(errs, errors.Wrap(err, "couldn't apply map"))
			continue
		}
		out = append(out, streams.Record{Key: key, Row: row})
	}
	return s.derive(out, errs)
}

func (s *Stream) MapValues(fn streams.ValueMapFn) streams.KeyedStream {
	out := make([]streams.Record, 0, len(s.records))
	errs := s.errs
	for _, record := range s.records {
		row, err := fn(record.Row)
		if err != nil {
			errs = append(errs, errors.Wrap(err, "couldn't apply value map"))
			continue
		}
		out = append(out, streams.Record{Key: record.Key, Row: row})
	}
	return s.derive(out, errs)
}

func (s *Stream) SelectKey(fn streams.KeySelectorFn) streams.KeyedStream {
	out := make([]streams.Record, 0, len(s.records))
	errs := s.errs
	for _, record := range s.records {
		key, err := fn(record.Key, record.Row)
		if err != nil {
			errs = append(errs, errors.Wrap(err, "couldn't select new key"))
			continue
		}
		out = append(out, streams.Record{Key: key, Row: record.Row})
	}
	return s.derive(out, errs)
}

func (s *Stream) LeftJoin(table streams.KeyedTable, joiner streams.JoinerFn, valueSerde streams.RowSerde) streams.KeyedStream {
	out := make([]streams.Record, 0, len(s.records))
	for _, record := range s.records {
		if record.Row == nil {
			out = append(out, record)
			continue
		}
		var right *execution.Row
		if match, ok := table.Lookup(record.Key); ok {
			right = match
		}
		out = append(out, streams.Record{Key: record.Key, Row: joiner(record.Row, right)})
	}
	return s.derive(out, s.errs)
}

func (s *Stream) GroupByKey(keySerde streams.KeySerde, valueSerde streams.RowSerde) streams.GroupedStream {
	groups := make(map[string][]*execution.Row)
	order := make([]string, 0)
	for _, record := range s.records {
		if _, ok := groups[record.Key]; !ok {
			order = append(order, record.Key)
		}
		groups[record.Key] = append(groups[record.Key], record.Row)
	}
	return &Grouped{
		id:     newStreamID(),
		groups: groups,
		order:  order,
	}
}

func (s *Stream) To(topicName string, keySerde streams.KeySerde, valueSerde streams.RowSerde) error {
	if s.broker == nil {
		return errors.New("stream has no broker to write to")
	}
	for _, record := range s.records {
		key, err := keySerde.Serialize(record.Key)
		if err != nil {
			return errors.Wrapf(err, "couldn't serialize key %s", record.Key)
		}
		var value []byte
		if record.Row != nil {
			value, err = valueSerde.Serialize(record.Row)
			if err != nil {
				return errors.Wrapf(err, "couldn't serialize row %s", record.Row)
			}
		}
		if err := s.broker.write(topicName, Message{Key: key, Value: value}); err != nil {
			return errors.Wrapf(err, "couldn't write to topic %s", topicName)
		}
	}
	return nil
}

// Grouped implements streams.GroupedStream; aggregation operators consume it
// downstream.
type Grouped struct {
	id     string
	groups map[string][]*execution.Row
	order  []string
}

func (g *Grouped) ID() string {
	return g.id
}

func (g *Grouped) Groups() map[string][]*execution.Row {
	return g.groups
}

// Keys returns group keys in first-seen order.
func (g *Grouped) Keys() []string {
	return g.order
}
