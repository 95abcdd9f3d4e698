// Package inmemory is the reference implementation of the streams interfaces,
// used by tests and tooling. Transformations are applied eagerly: every
// primitive runs its row function over the parent's records at registration
// time, which matches the semantics of a fully drained stream.
package inmemory

import (
	"fmt"
	"sync"

	"github.com/streamsql/streamsql/streams"
)

// Message is one serialized record written to a topic. A nil Value is a
// tombstone.
type Message struct {
	Key   []byte
	Value []byte
}

type topic struct {
	partitions        int
	replicationFactor int
	messages          []Message
}

// Broker keeps topics and their written messages. It implements
// streams.TopicClient.
type Broker struct {
	mu     sync.Mutex
	topics map[string]*topic
}

func NewBroker() *Broker {
	return &Broker{
		topics: make(map[string]*topic),
	}
}

func (b *Broker) EnsureExists(name string, partitions int, replicationFactor int) error {
	if partitions < 1 {
		return &streams.ProvisioningError{Topic: name, Reason: fmt.Sprintf("partitions must be at least 1, got %d", partitions)}
	}
	if replicationFactor < 1 {
		return &streams.ProvisioningError{Topic: name, Reason: fmt.Sprintf("replication factor must be at least 1, got %d", replicationFactor)}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	existing, ok := b.topics[name]
	if !ok {
		b.topics[name] = &topic{
			partitions:        partitions,
			replicationFactor: replicationFactor,
		}
		return nil
	}
	if existing.partitions != partitions || existing.replicationFactor != replicationFactor {
		return &streams.ProvisioningError{
			Topic: name,
			Reason: fmt.Sprintf(
				"exists with %d partitions and replication factor %d, wanted %d and %d",
				existing.partitions, existing.replicationFactor, partitions, replicationFactor,
			),
		}
	}
	return nil
}

func (b *Broker) write(name string, message Message) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, ok := b.topics[name]
	if !ok {
		return fmt.Errorf("topic %s does not exist", name)
	}
	t.messages = append(t.messages, message)
	return nil
}

// Messages returns the messages written to a topic, in write order.
func (b *Broker) Messages(name string) []Message {
	b.mu.Lock()
	defer b.mu.Unlock()

	t, ok := b.topics[name]
	if !ok {
		return nil
	}
	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}
